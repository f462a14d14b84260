package usecase

import (
	"pdao-registration/internal/data/repository"
	"pdao-registration/internal/geo"

	"go.uber.org/zap"
)

type Service struct {
	Auth AuthService
	User UserService
	Geo  GeoService
}

func NewService(repo *repository.Repository, dataset *geo.Dataset, tokens TokenIssuer, log *zap.Logger) *Service {
	return &Service{
		Auth: NewAuthService(repo.User, tokens, log),
		User: NewUserService(repo.User, log),
		Geo:  NewGeoService(dataset),
	}
}
