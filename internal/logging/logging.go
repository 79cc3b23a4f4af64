// Package logging builds the application's structured logger.
package logging

import (
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
)

// Config holds the logging configuration
type Config struct {
	Format string     `env:"LOG_FORMAT" envDefault:"text"`
	Level  slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`
}

// New creates a slog logger from the given configuration and installs it
// as the process default. Format "json" selects the JSON handler; anything
// else gets a colorized text handler.
func New(cfg Config) *slog.Logger {
	var handler slog.Handler

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: cfg.Level,
		})
	} else {
		handler = tint.NewHandler(os.Stdout, &tint.Options{
			Level:      cfg.Level,
			TimeFormat: time.RFC3339,
		})
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)

	return logger
}
