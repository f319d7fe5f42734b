// Package config loads all runtime configuration from the environment once
// at startup into an immutable struct. Missing or malformed required values
// fail the process before it accepts a single request.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// minSecretLen is the minimum accepted length for signing secrets.
const minSecretLen = 24

// Config holds every environment-provided value the service consumes.
type Config struct {
	Env  string `envconfig:"APP_ENV" default:"dev"`
	Port string `envconfig:"APP_PORT" default:"8080"`

	DBUser string `envconfig:"DB_USER" required:"true"`
	DBPass string `envconfig:"DB_PASS"`
	DBHost string `envconfig:"DB_HOST" default:"127.0.0.1"`
	DBPort string `envconfig:"DB_PORT" default:"3306"`
	DBName string `envconfig:"DB_NAME" required:"true"`

	// Access and refresh tokens are signed with distinct secrets so that
	// one token class can never be verified as the other.
	AccessSecret  string        `envconfig:"ACCESS_TOKEN_SECRET" required:"true"`
	RefreshSecret string        `envconfig:"REFRESH_TOKEN_SECRET" required:"true"`
	AccessTTL     time.Duration `envconfig:"ACCESS_TOKEN_TTL" default:"1h"`
	RefreshTTL    time.Duration `envconfig:"REFRESH_TOKEN_TTL" default:"168h"`

	BcryptCost int `envconfig:"BCRYPT_COST" default:"12"`

	RedisAddr     string `envconfig:"REDIS_ADDR"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	RabbitURL string `envconfig:"RABBITMQ_URL"`

	GeminiAPIKey string `envconfig:"GEMINI_API_KEY"`
}

// Load reads .env (if present) and the process environment, then enforces
// the secret invariants. Called exactly once from main.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, err
	}
	if len(cfg.AccessSecret) < minSecretLen {
		return Config{}, fmt.Errorf("ACCESS_TOKEN_SECRET must be at least %d characters", minSecretLen)
	}
	if len(cfg.RefreshSecret) < minSecretLen {
		return Config{}, fmt.Errorf("REFRESH_TOKEN_SECRET must be at least %d characters", minSecretLen)
	}
	if cfg.AccessSecret == cfg.RefreshSecret {
		return Config{}, errors.New("ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET must differ")
	}
	if cfg.BcryptCost < 4 || cfg.BcryptCost > 31 {
		return Config{}, fmt.Errorf("BCRYPT_COST out of range: %d", cfg.BcryptCost)
	}
	return cfg, nil
}
