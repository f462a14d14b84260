package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"pdao-registration/internal/data/entity"
	"pdao-registration/internal/data/repository"
	"pdao-registration/internal/dto/request"
	"pdao-registration/internal/dto/response"
	"pdao-registration/internal/schema"
	"pdao-registration/pkg/utils"

	"go.uber.org/zap"
)

// TokenIssuer signs access tokens.
type TokenIssuer interface {
	Generate(userID, role string) (string, time.Time, error)
}

// Unknown emails are still run through bcrypt so both failure paths take
// about the same time.
var (
	missingUserHash = sync.OnceValue(func() string {
		hash, _ := utils.HashPassword("pdao-missing-account")
		return hash
	})
	comparePassword = utils.CheckPasswordHash
)

type AuthService interface {
	Register(ctx context.Context, req *request.RegisterRequest) (*response.AuthResponse, error)
	Login(ctx context.Context, req *request.LoginRequest) (*response.AuthResponse, error)
}

type authService struct {
	users  repository.UserRepository
	tokens TokenIssuer
	log    *zap.Logger
}

func NewAuthService(users repository.UserRepository, tokens TokenIssuer, log *zap.Logger) AuthService {
	return &authService{
		users:  users,
		tokens: tokens,
		log:    log.With(zap.String("service", "auth")),
	}
}

// Register creates a pending account and signs the caller in. req must have
// passed schema validation.
func (s *authService) Register(ctx context.Context, req *request.RegisterRequest) (*response.AuthResponse, error) {
	// 1. Email must be free
	existing, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if existing != nil {
		s.log.Info("Registration rejected, email taken")
		return nil, newDuplicateError("email")
	}

	// 2. Contact number must be free
	contact, err := schema.NormalizeContactNumber(req.ContactNumber)
	if err != nil {
		return nil, newValidationError("contact_number", "Contact number must be 11 digits starting with 09")
	}
	existing, err = s.users.FindByContactNumber(ctx, contact)
	if err != nil {
		return nil, fmt.Errorf("check contact number: %w", err)
	}
	if existing != nil {
		s.log.Info("Registration rejected, contact number taken")
		return nil, newDuplicateError("contact_number")
	}

	// 3. Build and store; the repository runs the pre-save hook
	user, err := entity.NewRegisteredUser(req)
	if err != nil {
		return nil, newValidationError("date_of_birth", "Date of birth must be a valid YYYY-MM-DD date and not in the future")
	}

	if err := s.users.Create(ctx, user); err != nil {
		// another request may have taken the email or number since step 1
		var dup *repository.DuplicateKeyError
		if errors.As(err, &dup) {
			return nil, newDuplicateError(dup.Field)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	// 4. Token
	resp, err := s.issue(user)
	if err != nil {
		return nil, err
	}

	s.log.Info("User registered",
		zap.String("id", user.ID.String()),
		zap.String("user_id", user.UserID),
	)

	return resp, nil
}

// Login checks, in order: account exists, status allows sign-in, password.
func (s *authService) Login(ctx context.Context, req *request.LoginRequest) (*response.AuthResponse, error) {
	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		comparePassword(req.Password, missingUserHash())
		s.log.Info("Login failed, unknown email")
		return nil, &AuthenticationError{Field: "email", Message: MsgInvalidCredentials}
	}

	switch user.Status {
	case entity.StatusSuspended:
		s.log.Warn("Suspended user tried to login", zap.String("id", user.ID.String()))
		return nil, &AuthorizationError{
			Status:  http.StatusForbidden,
			Message: "Your account has been suspended. Please contact the PDAO office.",
		}
	case entity.StatusInactive:
		s.log.Warn("Inactive user tried to login", zap.String("id", user.ID.String()))
		return nil, &AuthorizationError{
			Status:  http.StatusForbidden,
			Message: "Your account is inactive. Please contact the PDAO office.",
		}
	}

	if !user.CheckPassword(req.Password) {
		s.log.Info("Login failed, wrong password", zap.String("id", user.ID.String()))
		return nil, &AuthenticationError{Field: "password", Message: MsgInvalidCredentials}
	}

	activated := user.Activate()
	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("save login: %w", err)
	}

	resp, err := s.issue(user)
	if err != nil {
		return nil, err
	}

	s.log.Info("User logged in",
		zap.String("id", user.ID.String()),
		zap.Bool("activated", activated),
	)

	return resp, nil
}

func (s *authService) issue(user *entity.User) (*response.AuthResponse, error) {
	token, expiresAt, err := s.tokens.Generate(user.ID.String(), string(user.Role))
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	resp := response.AuthToResponse(user, token, expiresAt)
	return &resp, nil
}
