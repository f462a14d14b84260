package adaptor

import (
	"context"
	"net/http"
	"time"

	"pdao-registration/internal/data/repository"
	"pdao-registration/internal/dto/response"
	"pdao-registration/pkg/utils"

	"go.uber.org/zap"
)

type SystemInfo struct {
	Name      string
	Version   string
	Endpoints map[string]string
}

type SystemHandler struct {
	store  repository.Pinger
	driver string
	info   SystemInfo
	log    *zap.Logger
	now    func() time.Time
}

func NewSystemHandler(store repository.Pinger, driver string, info SystemInfo, log *zap.Logger) *SystemHandler {
	return &SystemHandler{
		store:  store,
		driver: driver,
		info:   info,
		log:    log.With(zap.String("handler", "system")),
		now:    time.Now,
	}
}

// Health handles GET /health. It always answers 200; the storage state is in
// the body.
func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	database := "connected"
	if err := h.store.Ping(ctx); err != nil {
		h.log.Warn("Health check ping failed", zap.Error(err))
		database = "disconnected"
	}

	utils.ResponseSuccess(w, "Service is running", response.HealthResponse{
		Status:    "ok",
		Database:  database,
		Driver:    h.driver,
		Timestamp: h.now().UTC(),
	})
}

// Root handles GET /
func (h *SystemHandler) Root(w http.ResponseWriter, r *http.Request) {
	utils.ResponseSuccess(w, h.info.Name+" API", response.ServiceInfo{
		Name:      h.info.Name,
		Version:   h.info.Version,
		Endpoints: h.info.Endpoints,
	})
}

func (h *SystemHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	utils.ResponseNotFound(w, "Route "+r.URL.Path+" not found")
}

func (h *SystemHandler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	utils.ResponseMethodNotAllowed(w, "Method "+r.Method+" not allowed on "+r.URL.Path)
}
