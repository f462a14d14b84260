package tui

import (
	"context"
	"errors"
	"strings"

	"pdao-registration/internal/client"
	"pdao-registration/internal/schema"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

var loginPaths = []string{"email", "password"}

// LoginModel signs an existing account in. Input is checked against the
// same rules the server applies before anything is sent.
type LoginModel struct {
	ctx      context.Context
	api      API
	pipeline *schema.Pipeline

	inputs     []textinput.Model
	focus      int
	submitting bool
	errs       map[string]string
	errMsg     string
}

func NewLoginModel(ctx context.Context, api API, pipeline *schema.Pipeline) *LoginModel {
	email := textinput.New()
	email.Placeholder = "name@example.com"
	email.CharLimit = 100
	email.Width = 40
	email.Focus()

	password := textinput.New()
	password.Placeholder = "password"
	password.CharLimit = 100
	password.Width = 40
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '*'

	return &LoginModel{
		ctx:      ctx,
		api:      api,
		pipeline: pipeline,
		inputs:   []textinput.Model{email, password},
		errs:     map[string]string{},
	}
}

func (m *LoginModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *LoginModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if result, ok := msg.(loginResultMsg); ok {
		m.submitting = false
		if result.err != nil {
			m.applyError(result.err)
			return m, nil
		}
		m.reset()
		return m, authDone(result.resp)
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if ok {
		switch {
		case key.Matches(keyMsg, keys.esc):
			m.reset()
			return m, func() tea.Msg { return NavigateTo{Page: pageMenu} }
		case key.Matches(keyMsg, keys.tab):
			m.setFocus(m.focus + 1)
			return m, nil
		case key.Matches(keyMsg, keys.backtab):
			m.setFocus(m.focus - 1)
			return m, nil
		case key.Matches(keyMsg, keys.enter):
			if m.focus < len(m.inputs)-1 {
				m.setFocus(m.focus + 1)
				return m, nil
			}
			return m, m.submit()
		}
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m *LoginModel) submit() tea.Cmd {
	if m.submitting {
		return nil
	}

	values := map[string]string{
		"email":    m.inputs[0].Value(),
		"password": m.inputs[1].Value(),
	}
	m.errs = map[string]string{}
	m.errMsg = ""
	if errs := m.pipeline.CheckFields(schema.LoginRules, values, loginPaths...); len(errs) > 0 {
		for _, fe := range errs {
			m.errs[fe.Field] = fe.Message
		}
		m.focusField(errs[0].Field)
		return nil
	}

	m.submitting = true
	ctx, api := m.ctx, m.api
	email := schema.NormalizeEmail(values["email"])
	password := values["password"]
	return func() tea.Msg {
		resp, err := api.Login(ctx, email, password)
		return loginResultMsg{resp: resp, err: err}
	}
}

// applyError shows the server's message and focuses the field it names.
func (m *LoginModel) applyError(err error) {
	m.errMsg = humanizeError(err)

	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.Field != "" {
		m.focusField(apiErr.Field)
	}
}

func (m *LoginModel) focusField(field string) {
	for i, path := range loginPaths {
		if path == field {
			m.setFocus(i)
			return
		}
	}
}

func (m *LoginModel) setFocus(i int) {
	m.inputs[m.focus].Blur()
	m.focus = (i + len(m.inputs)) % len(m.inputs)
	m.inputs[m.focus].Focus()
}

func (m *LoginModel) reset() {
	for i := range m.inputs {
		m.inputs[i].SetValue("")
	}
	m.setFocus(0)
	m.errs = map[string]string{}
	m.errMsg = ""
	m.submitting = false
}

func (m *LoginModel) View() string {
	var b strings.Builder
	for i, path := range loginPaths {
		b.WriteString(label(schemaLabel(schema.LoginRules, path)))
		b.WriteString(m.inputs[i].View())
		b.WriteString("\n")
		if msg := m.errs[path]; msg != "" {
			b.WriteString(errorStyle.Render("  " + msg))
			b.WriteString("\n")
		}
	}

	if m.submitting {
		b.WriteString("\nSigning in...\n")
	}
	if m.errMsg != "" {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(m.errMsg))
		b.WriteString("\n")
	}

	return renderPage("SIGN IN", strings.TrimRight(b.String(), "\n"), "esc: back │ tab: next field │ enter: submit")
}

func schemaLabel(rules []schema.Rule, path string) string {
	if rule, ok := schema.RuleFor(rules, path); ok {
		return rule.Label
	}
	return path
}
