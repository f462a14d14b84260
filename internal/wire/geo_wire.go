package wire

import (
	"pdao-registration/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

// reference data for the address picker; public
func wireGeo(r chi.Router, geoHandler *adaptor.GeoHandler) {
	r.Route("/api/geo", func(r chi.Router) {
		r.Get("/regions", geoHandler.Regions)
		r.Get("/regions/{code}/provinces", geoHandler.Provinces)
		r.Get("/provinces/{code}/cities", geoHandler.Cities)
		r.Get("/cities/{code}/barangays", geoHandler.Barangays)
	})
}
