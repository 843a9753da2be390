package config

import (
	"fmt"
	"log/slog"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr      string     `env:"HTTP_ADDR" envDefault:":8080"`
	DBPath        string     `env:"DB_PATH" envDefault:"data/quest.db"`
	LogLevel      slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`
	RedisURL      string     `env:"REDIS_URL"`
	SPADir        string     `env:"SPA_DIR" envDefault:"../web/dist"`
	AdminEmail    string     `env:"ADMIN_EMAIL"`
	AdminPassword string     `env:"ADMIN_PASSWORD"`
	Seed          bool       `env:"SEED" envDefault:"true"`
}

func Load() (*Config, error) {
	// Best-effort: a missing .env file is fine in production.
	_ = godotenv.Load()

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	return &cfg, nil
}
