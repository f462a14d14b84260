package adaptor

import (
	"net/http"

	"pdao-registration/internal/geo"
	"pdao-registration/internal/usecase"
	"pdao-registration/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type GeoHandler struct {
	service usecase.GeoService
	log     *zap.Logger
}

func NewGeoHandler(service usecase.GeoService, log *zap.Logger) *GeoHandler {
	return &GeoHandler{
		service: service,
		log:     log.With(zap.String("handler", "geo")),
	}
}

// Regions handles GET /api/geo/regions
func (h *GeoHandler) Regions(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, geo.LevelRegion, "")
}

// Provinces handles GET /api/geo/regions/{code}/provinces
func (h *GeoHandler) Provinces(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, geo.LevelProvince, chi.URLParam(r, "code"))
}

// Cities handles GET /api/geo/provinces/{code}/cities
func (h *GeoHandler) Cities(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, geo.LevelCity, chi.URLParam(r, "code"))
}

// Barangays handles GET /api/geo/cities/{code}/barangays
func (h *GeoHandler) Barangays(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, geo.LevelBarangay, chi.URLParam(r, "code"))
}

func (h *GeoHandler) list(w http.ResponseWriter, r *http.Request, level geo.Level, parent string) {
	areas, err := h.service.List(r.Context(), level, parent)
	if err != nil {
		handleServiceError(w, h.log, err, "list "+level.String())
		return
	}

	utils.ResponseSuccess(w, "OK", areas)
}
