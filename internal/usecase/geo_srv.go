package usecase

import (
	"context"

	"pdao-registration/internal/dto/response"
	"pdao-registration/internal/geo"
)

// GeoSource is satisfied by *geo.Dataset.
type GeoSource interface {
	Options(ctx context.Context, level geo.Level, parentCode string) ([]geo.Area, error)
}

type GeoService interface {
	List(ctx context.Context, level geo.Level, parentCode string) ([]response.GeoArea, error)
}

type geoService struct {
	source GeoSource
}

func NewGeoService(source GeoSource) GeoService {
	return &geoService{source: source}
}

// List returns the areas at level below parentCode; unknown parents give an
// empty list, not an error.
func (gs *geoService) List(ctx context.Context, level geo.Level, parentCode string) ([]response.GeoArea, error) {
	areas, err := gs.source.Options(ctx, level, parentCode)
	if err != nil {
		return nil, err
	}

	out := make([]response.GeoArea, len(areas))
	for i, a := range areas {
		out[i] = response.GeoArea{Code: a.Code, Name: a.Name, ParentCode: a.ParentCode}
	}
	return out, nil
}
