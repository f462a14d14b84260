package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"pdao-registration/internal/data/entity"
	"pdao-registration/pkg/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeParser struct {
	claims *utils.Claims
	err    error
}

func (f fakeParser) Parse(string) (*utils.Claims, error) { return f.claims, f.err }

type fakeFinder struct {
	user *entity.User
	err  error
}

func (f fakeFinder) FindByID(context.Context, uuid.UUID) (*entity.User, error) { return f.user, f.err }

func okHandler(t *testing.T, wantID uuid.UUID, wantRole string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := utils.GetUserIDFromContext(r.Context())
		require.True(t, ok)
		assert.Equal(t, wantID, id)
		role, _ := utils.GetRoleFromContext(r.Context())
		assert.Equal(t, wantRole, role)
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestAuth(t *testing.T) {
	id := uuid.New()
	claims := &utils.Claims{UserID: id.String(), Role: "Admin"}
	user := func(status entity.UserStatus) *entity.User {
		u := &entity.User{Role: entity.RoleUser, Status: status}
		u.ID = id
		return u
	}

	tests := []struct {
		name     string
		header   string
		parser   fakeParser
		finder   fakeFinder
		wantCode int
		wantMsg  string
	}{
		{name: "missing", header: "", wantCode: 401, wantMsg: "Access token is required"},
		{name: "malformed", header: "Token abc", wantCode: 401, wantMsg: "Invalid token format"},
		{name: "expired", header: "Bearer x", parser: fakeParser{err: utils.ErrTokenExpired}, wantCode: 401, wantMsg: "Token has expired"},
		{name: "invalid", header: "Bearer x", parser: fakeParser{err: utils.ErrTokenInvalid}, wantCode: 401, wantMsg: "Invalid token"},
		{name: "bad subject", header: "Bearer x", parser: fakeParser{claims: &utils.Claims{UserID: "nope"}}, wantCode: 401, wantMsg: "Invalid token"},
		{name: "deleted account", header: "Bearer x", parser: fakeParser{claims: claims}, wantCode: 401, wantMsg: "no longer exists"},
		{name: "store failure", header: "Bearer x", parser: fakeParser{claims: claims}, finder: fakeFinder{err: errors.New("down")}, wantCode: 500, wantMsg: "Internal server error"},
		{name: "suspended", header: "Bearer x", parser: fakeParser{claims: claims}, finder: fakeFinder{user: user(entity.StatusSuspended)}, wantCode: 403, wantMsg: "Suspended"},
		{name: "inactive", header: "Bearer x", parser: fakeParser{claims: claims}, finder: fakeFinder{user: user(entity.StatusInactive)}, wantCode: 403, wantMsg: "Inactive"},
		{name: "active", header: "Bearer x", parser: fakeParser{claims: claims}, finder: fakeFinder{user: user(entity.StatusActive)}, wantCode: 204},
		{name: "pending", header: "Bearer x", parser: fakeParser{claims: claims}, finder: fakeFinder{user: user(entity.StatusPending)}, wantCode: 403, wantMsg: "Pending"},
		{name: "unknown status", header: "Bearer x", parser: fakeParser{claims: claims}, finder: fakeFinder{user: user("Archived")}, wantCode: 403, wantMsg: "not active"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// role comes from storage, not from the token claim
			h := Auth(tt.parser, tt.finder, zap.NewNop())(okHandler(t, id, "User"))

			req := httptest.NewRequest(http.MethodGet, "/api/users/profile", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
			if tt.wantMsg != "" {
				assert.Contains(t, rec.Body.String(), tt.wantMsg)
			}
		})
	}
}

func TestAuth_WithRealTokens(t *testing.T) {
	manager := utils.NewJWTManager(utils.JWTConfig{Secret: "0123456789abcdef0123", ExpiryHours: 1, Issuer: "test"})
	u := &entity.User{Role: entity.RoleStaff, Status: entity.StatusActive}
	u.ID = uuid.New()

	token, _, err := manager.Generate(u.ID.String(), string(u.Role))
	require.NoError(t, err)

	h := Auth(manager, fakeFinder{user: u}, zap.NewNop())(okHandler(t, u.ID, "Staff"))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRequireRole(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })
	h := RequireRole(zap.NewNop(), entity.RoleAdmin, entity.RoleSupervisor, entity.RoleStaff)(next)

	for role, want := range map[string]int{
		"Admin":      http.StatusNoContent,
		"Supervisor": http.StatusNoContent,
		"Staff":      http.StatusNoContent,
		"User":       http.StatusForbidden,
	} {
		req := httptest.NewRequest(http.MethodGet, "/api/admin/users", nil)
		req = req.WithContext(utils.SetUserContext(req.Context(), uuid.New(), role))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, want, rec.Code, role)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/admin/users", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
