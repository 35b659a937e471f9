// Package logger builds the process-wide slog logger.
package logger

import (
	"log/slog"
	"os"
)

// New creates a logger appropriate for the environment: JSON at Info level
// for production log pipelines, human-readable text at Debug otherwise.
func New(appEnv string) *slog.Logger {
	var h slog.Handler
	if appEnv == "production" {
		h = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	} else {
		h = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
	return slog.New(h).With(slog.String("app", "fou-website"))
}
