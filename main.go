// main.go
package main

import (
	"context"
	"log"
	"time"

	"pdao-registration/cmd"
	"pdao-registration/internal/data/repository"
	"pdao-registration/internal/geo"
	"pdao-registration/internal/wire"
	"pdao-registration/migrations"
	"pdao-registration/pkg/database"
	"pdao-registration/pkg/utils"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	// Load config
	config, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := utils.InitLogger(config.App.LogPath, "app", config.App.Debug)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using standard log.", err)
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("app", config.App.Name),
		zap.String("version", config.App.Version),
		zap.String("port", config.App.Port),
		zap.String("driver", config.Database.Driver),
		zap.Bool("debug", config.App.Debug),
	)

	ctx := context.Background()

	// Connect to the configured store
	repos, closeStore := openStore(ctx, config, logger)
	defer closeStore()

	logger.Info("Database connected successfully", zap.String("driver", repos.Driver))

	dataset, err := geo.Load(config.Geo.DatasetPath)
	if err != nil {
		logger.Fatal("Failed to load geographic dataset", zap.Error(err))
	}

	// Rate limiting is skipped when no redis address is configured
	var rdb *redis.Client
	if config.RateLimit.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     config.RateLimit.RedisAddr,
			Password: config.RateLimit.RedisPassword,
		})
		defer rdb.Close()

		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			logger.Warn("Redis unreachable, rate limiter will fail open", zap.Error(err))
		}
		cancel()
	} else {
		logger.Warn("REDIS_ADDR not set, rate limiting disabled")
	}

	// Wire all dependencies
	app := wire.Wiring(wire.Deps{
		Repo:   repos,
		Geo:    dataset,
		Tokens: utils.NewJWTManager(config.JWT),
		Redis:  rdb,
		Config: config,
		Logger: logger,
	})

	if err := cmd.APIServer(app.Router, config.App.Port, logger); err != nil {
		logger.Error("Server stopped", zap.Error(err))
		return
	}
	logger.Info("Server stopped")
}

func openStore(ctx context.Context, config *utils.Config, logger *zap.Logger) (*repository.Repository, func()) {
	if config.Database.Driver == utils.DriverMongo {
		m, err := database.InitMongo(ctx, config.Database)
		if err != nil {
			logger.Fatal("Failed to connect to MongoDB", zap.Error(err))
		}
		if err := repository.EnsureIndexes(ctx, m.DB); err != nil {
			logger.Fatal("Failed to create indexes", zap.Error(err))
		}

		return repository.NewMongoRepository(m.DB, m, logger), func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := m.Close(closeCtx); err != nil {
				logger.Warn("Failed to close MongoDB client", zap.Error(err))
			}
		}
	}

	db, err := database.InitDB(ctx, config.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	if config.Database.MigrateOnStart {
		if err := migrations.Migrate(db.SQLDB()); err != nil {
			logger.Fatal("Failed to run migrations", zap.Error(err))
		}
		logger.Info("Migrations applied")
	}

	return repository.NewRepository(db, logger), db.Close
}
