package tui

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// writeClipboard is swapped out in tests.
var writeClipboard = clipboard.WriteAll

// SuccessModel shows the PDAO ID of the signed-in applicant.
type SuccessModel struct {
	session *Session
	status  string
}

func NewSuccessModel() *SuccessModel {
	return &SuccessModel{}
}

func (m *SuccessModel) Init() tea.Cmd {
	return nil
}

func (m *SuccessModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case sessionMsg:
		session := msg.session
		m.session = &session
		m.status = ""
		return m, nil
	case copiedMsg:
		if msg.err != nil {
			m.status = "Copy failed: " + msg.err.Error()
		} else {
			m.status = "PDAO ID copied to clipboard"
		}
		return m, nil
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.copy):
			if m.session == nil {
				return m, nil
			}
			id := m.session.User.UserID
			return m, func() tea.Msg { return copiedMsg{err: writeClipboard(id)} }
		case key.Matches(msg, keys.enter), key.Matches(msg, keys.quit):
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m *SuccessModel) View() string {
	if m.session == nil {
		return renderPage("DONE", "", "q: quit")
	}

	u := m.session.User
	var b strings.Builder
	b.WriteString(okStyle.Render(fmt.Sprintf("Welcome, %s %s", u.FirstName, u.LastName)))
	b.WriteString("\n\n")
	b.WriteString(label("PDAO ID"))
	b.WriteString(titleStyle.Render(u.UserID))
	b.WriteString("\n")
	b.WriteString(label("Status"))
	b.WriteString(u.Status)
	b.WriteString("\n")
	b.WriteString(label("Email"))
	b.WriteString(u.Email)
	b.WriteString("\n")
	if u.Status == "Pending" {
		b.WriteString("\nThe account is active from the first sign-in.\n")
	}
	if m.status != "" {
		b.WriteString("\n")
		b.WriteString(m.status)
		b.WriteString("\n")
	}

	return renderPage("REGISTRATION DESK", strings.TrimRight(b.String(), "\n"), "c: copy PDAO ID │ enter: finish")
}
