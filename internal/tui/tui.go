// Package tui is the terminal registration desk: sign in, or walk a new
// applicant through the three-step form and hand them their PDAO ID.
package tui

import (
	"context"
	"errors"

	"pdao-registration/internal/dto/request"
	"pdao-registration/internal/dto/response"
	"pdao-registration/internal/picker"
	"pdao-registration/internal/schema"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

var ErrUserQuit = errors.New("user quit")

// API is the part of the server the form needs.
type API interface {
	Register(ctx context.Context, req *request.RegisterRequest) (*response.AuthResponse, error)
	Login(ctx context.Context, email, password string) (*response.AuthResponse, error)
}

type TUI struct {
	api    API
	source picker.Source
	log    *zap.Logger
}

func New(api API, source picker.Source, log *zap.Logger) *TUI {
	return &TUI{api: api, source: source, log: log}
}

func (t *TUI) pages(ctx context.Context) map[string]tea.Model {
	return map[string]tea.Model{
		pageMenu:     NewMenuModel(),
		pageLogin:    NewLoginModel(ctx, t.api, schema.Default),
		pageRegister: NewRegisterModel(ctx, t.api, t.source, schema.Default),
		pageSuccess:  NewSuccessModel(),
	}
}

// Run shows the desk until the user quits. It returns the session when one
// was established.
func (t *TUI) Run(ctx context.Context) (*Session, error) {
	root := NewRootModel(t.pages(ctx), pageMenu)
	finalModel, err := tea.NewProgram(root, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if err != nil {
		return nil, err
	}

	result, ok := finalModel.(RootModel)
	if !ok {
		return nil, tea.ErrProgramKilled
	}
	if result.session != nil {
		t.log.Info("session established",
			zap.String("user_id", result.session.User.UserID),
			zap.String("status", result.session.User.Status),
		)
		return result.session, nil
	}
	if result.quitByUser {
		return nil, ErrUserQuit
	}
	return nil, nil
}
