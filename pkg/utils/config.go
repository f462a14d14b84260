package utils

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const (
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
	Geo       GeoConfig
}

type AppConfig struct {
	Name    string
	Version string
	Port    string `validate:"required,numeric"`
	Debug   bool
	LogPath string
}

type DatabaseConfig struct {
	Driver         string `validate:"oneof=postgres mongo"`
	URL            string `validate:"required_if=Driver postgres"`
	MaxConns       int32  `validate:"min=1"`
	MigrateOnStart bool
	MongoURI       string `validate:"required_if=Driver mongo"`
	MongoDatabase  string `validate:"required_if=Driver mongo"`
}

type JWTConfig struct {
	Secret      string `validate:"required,min=16"`
	ExpiryHours int    `validate:"min=1"`
	Issuer      string `validate:"required"`
}

type CORSConfig struct {
	AllowedOrigins []string
}

type RateLimitConfig struct {
	RedisAddr      string
	RedisPassword  string
	PerMinute      int      `validate:"min=1"`
	BlockMinutes   int      `validate:"min=1"`
	TrustedProxies []string `validate:"dive,cidr|ip"`
}

type GeoConfig struct {
	DatasetPath string
}

// envKeys maps config fields to the variable that supplies them, for error messages.
var envKeys = map[string]string{
	"Port":           "PORT",
	"URL":            "DATABASE_URL",
	"MongoURI":       "MONGODB_URI",
	"MongoDatabase":  "MONGODB_DATABASE",
	"Secret":         "JWT_SECRET",
	"Issuer":         "JWT_ISSUER",
	"Driver":         "DB_DRIVER",
	"MaxConns":       "DB_MAX_CONNS",
	"ExpiryHours":    "JWT_EXPIRY_HOURS",
	"PerMinute":      "RATE_LIMIT_PER_MINUTE",
	"BlockMinutes":   "RATE_LIMIT_BLOCK_MINUTES",
	"TrustedProxies": "TRUSTED_PROXIES",
}

// LoadConfig reads .env (when present) and the environment. Secrets and
// connection strings have no defaults: a missing value fails startup.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")

	v.SetDefault("APP_NAME", "pdao-registration")
	v.SetDefault("APP_VERSION", "1.0.0")
	v.SetDefault("DEBUG", false)
	v.SetDefault("LOG_PATH", "logs/")
	v.SetDefault("DB_DRIVER", DriverPostgres)
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("MIGRATE_ON_START", true)
	v.SetDefault("MONGODB_DATABASE", "pdao")
	v.SetDefault("JWT_EXPIRY_HOURS", 7*24)
	v.SetDefault("JWT_ISSUER", "pdao-registration")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("RATE_LIMIT_PER_MINUTE", 20)
	v.SetDefault("RATE_LIMIT_BLOCK_MINUTES", 5)

	if err := v.ReadInConfig(); err != nil && !isMissingFile(err) {
		return nil, fmt.Errorf("read .env: %w", err)
	}

	v.AutomaticEnv()

	config := &Config{
		App: AppConfig{
			Name:    v.GetString("APP_NAME"),
			Version: v.GetString("APP_VERSION"),
			Port:    v.GetString("PORT"),
			Debug:   v.GetBool("DEBUG"),
			LogPath: v.GetString("LOG_PATH"),
		},
		Database: DatabaseConfig{
			Driver:         strings.ToLower(v.GetString("DB_DRIVER")),
			URL:            v.GetString("DATABASE_URL"),
			MaxConns:       v.GetInt32("DB_MAX_CONNS"),
			MigrateOnStart: v.GetBool("MIGRATE_ON_START"),
			MongoURI:       v.GetString("MONGODB_URI"),
			MongoDatabase:  v.GetString("MONGODB_DATABASE"),
		},
		JWT: JWTConfig{
			Secret:      v.GetString("JWT_SECRET"),
			ExpiryHours: v.GetInt("JWT_EXPIRY_HOURS"),
			Issuer:      v.GetString("JWT_ISSUER"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
		RateLimit: RateLimitConfig{
			RedisAddr:      v.GetString("REDIS_ADDR"),
			RedisPassword:  v.GetString("REDIS_PASSWORD"),
			PerMinute:      v.GetInt("RATE_LIMIT_PER_MINUTE"),
			BlockMinutes:   v.GetInt("RATE_LIMIT_BLOCK_MINUTES"),
			TrustedProxies: splitList(v.GetString("TRUSTED_PROXIES")),
		},
		Geo: GeoConfig{
			DatasetPath: v.GetString("GEO_DATASET_PATH"),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate reports every missing or malformed setting by its environment key.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return fmt.Errorf("validate config: %w", err)
	}

	msgs := make([]string, 0, len(validationErrors))
	for _, fe := range validationErrors {
		field := fe.StructField()
		if i := strings.Index(field, "["); i >= 0 {
			field = field[:i]
		}
		key, ok := envKeys[field]
		if !ok {
			key = field
		}
		switch fe.Tag() {
		case "required", "required_if":
			msgs = append(msgs, key+" is required")
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid (%s)", key, getErrorMessage(fe)))
		}
	}

	return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
}

type ClientConfig struct {
	BaseURL        string `validate:"required,url"`
	TimeoutSeconds int    `validate:"min=1"`
	LogPath        string
}

// LoadClientConfig loads settings for the terminal client.
func LoadClientConfig() (*ClientConfig, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")

	v.SetDefault("API_TIMEOUT_SECONDS", 15)
	v.SetDefault("CLIENT_LOG_PATH", "logs/")

	if err := v.ReadInConfig(); err != nil && !isMissingFile(err) {
		return nil, fmt.Errorf("read .env: %w", err)
	}

	v.AutomaticEnv()

	config := &ClientConfig{
		BaseURL:        v.GetString("API_BASE_URL"),
		TimeoutSeconds: v.GetInt("API_TIMEOUT_SECONDS"),
		LogPath:        v.GetString("CLIENT_LOG_PATH"),
	}

	if err := validate.Struct(config); err != nil {
		return nil, fmt.Errorf("invalid client configuration: API_BASE_URL and API_TIMEOUT_SECONDS must be set: %w", err)
	}

	return config, nil
}

func isMissingFile(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist)
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
