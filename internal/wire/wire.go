package wire

import (
	"net/http"

	"pdao-registration/internal/adaptor"
	"pdao-registration/internal/data/repository"
	"pdao-registration/internal/geo"
	"pdao-registration/internal/schema"
	"pdao-registration/internal/usecase"
	"pdao-registration/pkg/middleware"
	"pdao-registration/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// App holds the wired router
type App struct {
	Router *chi.Mux
}

// Deps are the resources owned by main and shared by every request.
type Deps struct {
	Repo   *repository.Repository
	Geo    *geo.Dataset
	Tokens *utils.JWTManager
	Redis  *redis.Client
	Config *utils.Config
	Logger *zap.Logger
	Schema *schema.Pipeline
}

// Wiring builds services, handlers and the router.
func Wiring(deps Deps) *App {
	if deps.Schema == nil {
		deps.Schema = schema.Default
	}

	service := usecase.NewService(deps.Repo, deps.Geo, deps.Tokens, deps.Logger)
	handler := adaptor.NewHandler(service, deps.Schema, deps.Repo, adaptor.SystemInfo{
		Name:      deps.Config.App.Name,
		Version:   deps.Config.App.Version,
		Endpoints: endpoints,
	}, deps.Logger)

	return &App{
		Router: setupRouter(handler, deps),
	}
}

var endpoints = map[string]string{
	"register":  "POST /api/auth/register",
	"login":     "POST /api/auth/login",
	"profile":   "GET|PUT /api/users/profile",
	"users":     "GET /api/admin/users",
	"regions":   "GET /api/geo/regions",
	"provinces": "GET /api/geo/regions/{code}/provinces",
	"cities":    "GET /api/geo/provinces/{code}/cities",
	"barangays": "GET /api/geo/cities/{code}/barangays",
	"health":    "GET /health",
	"metrics":   "GET /metrics",
}

func setupRouter(handler *adaptor.Handler, deps Deps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(deps.Logger))
	r.Use(middleware.Recover(deps.Logger))
	r.Use(middleware.CORS(deps.Config.CORS.AllowedOrigins))
	r.Use(middleware.Metrics)

	auth := middleware.Auth(deps.Tokens, deps.Repo.User, deps.Logger)

	wireAuth(r, handler.Auth, deps)
	wireUser(r, handler.User, auth, deps.Logger)
	wireGeo(r, handler.Geo)

	r.Get("/", handler.System.Root)
	r.Get("/health", handler.System.Health)
	r.Method(http.MethodGet, "/metrics", middleware.MetricsHandler())

	r.NotFound(handler.System.NotFound)
	r.MethodNotAllowed(handler.System.MethodNotAllowed)

	return r
}
