package repository

import (
	"context"

	"pdao-registration/pkg/database"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const (
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Repository struct {
	User   UserRepository
	Health Pinger
	Driver string
}

func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	return &Repository{
		User:   NewUserRepository(db, log),
		Health: db,
		Driver: DriverPostgres,
	}
}

func NewMongoRepository(db *mongo.Database, health Pinger, log *zap.Logger) *Repository {
	return &Repository{
		User:   NewUserMongoRepository(db, log),
		Health: health,
		Driver: DriverMongo,
	}
}
