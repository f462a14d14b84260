package tui

import (
	"pdao-registration/internal/dto/response"

	tea "github.com/charmbracelet/bubbletea"
)

const (
	pageMenu     = "menu"
	pageLogin    = "login"
	pageRegister = "register"
	pageSuccess  = "success"
)

// Session is the signed-in user and the token the server issued.
type Session struct {
	User  response.UserResponse
	Token string
}

// RootModel routes between pages and holds the session once a login or
// registration succeeds.
type RootModel struct {
	pages   map[string]tea.Model
	current tea.Model

	session    *Session
	quitByUser bool
}

func NewRootModel(pages map[string]tea.Model, startPage string) RootModel {
	return RootModel{
		pages:   pages,
		current: pages[startPage],
	}
}

func (r RootModel) Init() tea.Cmd {
	if r.current == nil {
		return nil
	}
	return r.current.Init()
}

func (r RootModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "ctrl+c" {
		r.quitByUser = true
		return r, tea.Quit
	}

	switch msg := msg.(type) {
	case NavigateTo:
		next, exists := r.pages[msg.Page]
		if !exists {
			return r, nil
		}
		r.current = next
		if msg.Payload != nil {
			payload := msg.Payload
			return r, func() tea.Msg { return payload }
		}
		return r, r.current.Init()
	case authDoneMsg:
		session := msg.session
		r.session = &session
		return r.Update(NavigateTo{Page: pageSuccess, Payload: sessionMsg{session: session}})
	}

	if r.current == nil {
		return r, nil
	}

	updated, cmd := r.current.Update(msg)
	r.current = updated
	return r, cmd
}

func (r RootModel) View() string {
	if r.current == nil {
		return renderPage("PDAO REGISTRATION", "", "")
	}
	return r.current.View()
}

// Session is the signed-in session, or nil.
func (r RootModel) Session() *Session {
	return r.session
}

func authDone(resp *response.AuthResponse) tea.Cmd {
	session := Session{User: resp.User, Token: resp.Token}
	return func() tea.Msg { return authDoneMsg{session: session} }
}
