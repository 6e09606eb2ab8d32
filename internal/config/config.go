// Package config loads server configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is everything the server binary needs.
type Config struct {
	// Addr is the HTTP listen address.
	Addr string `env:"ADDR" envDefault:":8080"`

	// BaseURL is the externally reachable URL, used for join links in QR
	// codes.
	BaseURL string `env:"BASE_URL" envDefault:"http://localhost:8080"`

	// DatabasePath selects the SQLite room store; empty keeps rooms in
	// memory.
	DatabasePath string `env:"DATABASE_PATH"`

	// RedisAddr selects the Redis change feed; empty keeps the feed in
	// process.
	RedisAddr string `env:"REDIS_ADDR"`

	// CatalogPath points at the topics JSON file.
	CatalogPath string `env:"CATALOG_PATH" envDefault:"data/topics.json"`

	// TransitionDelay is the round splash duration handed to sessions.
	TransitionDelay time.Duration `env:"ROUND_TRANSITION_DELAY" envDefault:"3s"`

	// Debug enables debug-level logging.
	Debug bool `env:"DEBUG"`
}

// Load reads .env (if present) and then the process environment.
func Load() (Config, error) {
	// A missing .env file is fine; real deployments set the environment
	// directly.
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
