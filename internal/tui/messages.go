package tui

import (
	"pdao-registration/internal/dto/response"
	"pdao-registration/internal/picker"

	tea "github.com/charmbracelet/bubbletea"
)

// NavigateTo switches the active page. Payload, when set, is delivered to
// the new page as its first message.
type NavigateTo struct {
	Page    string
	Payload tea.Msg
}

type authDoneMsg struct {
	session Session
}

// sessionMsg hands the new session to the success page.
type sessionMsg struct {
	session Session
}

type loginResultMsg struct {
	resp *response.AuthResponse
	err  error
}

type registerResultMsg struct {
	resp *response.AuthResponse
	err  error
}

type geoLoadedMsg struct {
	resp picker.Response
}

type copiedMsg struct {
	err error
}
