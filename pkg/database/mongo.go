package database

import (
	"context"
	"fmt"
	"time"

	"pdao-registration/pkg/utils"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Mongo owns the client for the document store.
type Mongo struct {
	client *mongo.Client
	DB     *mongo.Database
}

// InitMongo connects to MONGODB_URI and verifies the primary is reachable.
func InitMongo(ctx context.Context, config utils.DatabaseConfig) (*Mongo, error) {
	opts := options.Client().
		ApplyURI(config.MongoURI).
		SetMaxPoolSize(uint64(config.MaxConns)).
		SetServerSelectionTimeout(5 * time.Second).
		SetConnectTimeout(5 * time.Second)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo failed: %w", err)
	}

	return &Mongo{
		client: client,
		DB:     client.Database(config.MongoDatabase),
	}, nil
}

func (m *Mongo) Ping(ctx context.Context) error {
	return m.client.Ping(ctx, readpref.Primary())
}

func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}
