package wire

import (
	"net/http"

	"pdao-registration/internal/adaptor"
	"pdao-registration/internal/data/entity"
	"pdao-registration/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// wireUser configures profile routes and the staff-only user listing
func wireUser(r chi.Router, userHandler *adaptor.UserHandler, auth func(http.Handler) http.Handler, log *zap.Logger) {
	r.With(auth).Route("/api/users/profile", func(r chi.Router) {
		r.Get("/", userHandler.GetProfile)
		r.Put("/", userHandler.UpdateProfile)
	})

	r.With(
		auth,
		middleware.RequireRole(log, entity.RoleAdmin, entity.RoleSupervisor, entity.RoleStaff),
	).Get("/api/admin/users", userHandler.ListUsers)
}
