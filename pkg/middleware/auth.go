package middleware

import (
	"context"
	"errors"
	"net/http"

	"pdao-registration/internal/data/entity"
	"pdao-registration/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TokenParser verifies a bearer token.
type TokenParser interface {
	Parse(token string) (*utils.Claims, error)
}

// UserFinder loads the account a token was issued to.
type UserFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
}

// Auth validates the bearer token and loads its account. Token problems are
// 401 with a message per cause; any account that is not Active is 403.
// The role placed in the context is read from storage, not from the token.
func Auth(tokens TokenParser, users UserFinder, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, err := utils.ParseBearerToken(r.Header.Get("Authorization"))
			if err != nil {
				if errors.Is(err, utils.ErrMissingToken) {
					utils.ResponseUnauthorized(w, "Access token is required")
					return
				}
				utils.ResponseUnauthorized(w, "Invalid token format. Use: Bearer <token>")
				return
			}

			claims, err := tokens.Parse(raw)
			if err != nil {
				if errors.Is(err, utils.ErrTokenExpired) {
					utils.ResponseUnauthorized(w, "Token has expired")
					return
				}
				logger.Debug("Token rejected", zap.Error(err))
				utils.ResponseUnauthorized(w, "Invalid token")
				return
			}

			userID, err := utils.ParseUUID(claims.UserID)
			if err != nil {
				utils.ResponseUnauthorized(w, "Invalid token")
				return
			}

			user, err := users.FindByID(r.Context(), userID)
			if err != nil {
				logger.Error("Auth: failed to load user", zap.Error(err), zap.String("id", userID.String()))
				utils.ResponseInternalError(w, "Internal server error")
				return
			}
			if user == nil {
				utils.ResponseUnauthorized(w, "Account no longer exists")
				return
			}
			if !user.IsActive() {
				logger.Warn("Auth: account not active",
					zap.String("id", userID.String()),
					zap.String("status", string(user.Status)))
				utils.ResponseForbidden(w, inactiveMessage(user.Status))
				return
			}

			ctx := utils.SetUserContext(r.Context(), user.ID, string(user.Role))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func inactiveMessage(status entity.UserStatus) string {
	switch status {
	case entity.StatusPending:
		return "Account is Pending. Sign in to activate it"
	case entity.StatusSuspended:
		return "Account is Suspended. Please contact the PDAO office"
	case entity.StatusInactive:
		return "Account is Inactive. Please contact the PDAO office"
	}
	return "Account is not active"
}

// RequireRole admits only the given roles. It must run after Auth.
func RequireRole(logger *zap.Logger, roles ...entity.UserRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := utils.GetRoleFromContext(r.Context())
			if !ok {
				utils.ResponseUnauthorized(w, "Authentication required")
				return
			}

			for _, allowed := range roles {
				if role == string(allowed) {
					next.ServeHTTP(w, r)
					return
				}
			}

			userID, _ := utils.GetUserIDFromContext(r.Context())
			logger.Warn("Role check: access denied",
				zap.String("user_id", userID.String()),
				zap.String("role", role),
				zap.String("path", r.URL.Path))
			utils.ResponseForbidden(w, "You do not have access to this resource")
		})
	}
}
