package wire

import (
	"time"

	"pdao-registration/internal/adaptor"
	"pdao-registration/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireAuth(r chi.Router, authHandler *adaptor.AuthHandler, deps Deps) {
	limit := deps.Config.RateLimit
	proxies, err := middleware.ParseTrustedProxies(limit.TrustedProxies)
	if err != nil {
		// config validation normally catches this; key on the peer address only
		deps.Logger.Warn("Ignoring TRUSTED_PROXIES", zap.Error(err))
		proxies = nil
	}

	limiter := middleware.RateLimiter(
		deps.Redis,
		limit.PerMinute,
		time.Minute,
		time.Duration(limit.BlockMinutes)*time.Minute,
		"auth",
		proxies,
		deps.Logger,
	)

	// public, rate limited per client IP
	r.Route("/api/auth", func(r chi.Router) {
		r.Use(limiter)
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
	})
}
