// Package bootstrap wires configuration, infrastructure and services into a running web server.
package bootstrap

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/freelancehub/web/config"
)

// InitLogger initializes the structured logger.
func InitLogger() *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)
	return logger
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() (config.AppConfig, error) {
	// Load .env file if it exists (development)
	if err := godotenv.Load(); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return config.AppConfig{}, fmt.Errorf("load .env file: %w", err)
		}
	}

	var cfg config.AppConfig
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}

	cfg.Sanitize()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LogStartupInfo records the effective backends without secrets.
func LogStartupInfo(logger *slog.Logger, cfg *config.AppConfig) {
	attrs := []any{
		"addr", cfg.HTTP.Addr,
		"backend_api_url", cfg.Backend.APIURL,
		"session_backend", string(cfg.Session.Backend),
		"jobs_source", string(cfg.Jobs.Source),
		"dev", cfg.IsDev,
	}
	if cfg.NeedsPostgres() {
		attrs = append(attrs, "db_host", cfg.Postgres.Host, "db_name", cfg.Postgres.Name)
	}
	logger.Info("starting freelancehub web", attrs...)
}
