// Package logx configures the process-wide log/slog logger. Every other
// package calls slog directly against whatever logger Setup installed as
// the default, rather than threading a *slog.Logger through constructors.
package logx

import (
	"log/slog"
	"os"
	"strings"
)

// Config holds logger configuration.
type Config struct {
	Level  slog.Level
	Format string // "text" or "json"
}

// Setup builds a logger from cfg and installs it as slog's default.
func Setup(cfg Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:     cfg.Level,
		AddSource: cfg.Level <= slog.LevelDebug,
	}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// DefaultConfig reads PLAYD_LOG_LEVEL and PLAYD_LOG_FORMAT from the
// environment, falling back to INFO/text. playd has no config file (§6
// is argv-only), so the environment is the only place left for this.
func DefaultConfig() Config {
	level := slog.LevelInfo
	switch strings.ToUpper(os.Getenv("PLAYD_LOG_LEVEL")) {
	case "DEBUG":
		level = slog.LevelDebug
	case "INFO":
		level = slog.LevelInfo
	case "WARN", "WARNING":
		level = slog.LevelWarn
	case "ERROR":
		level = slog.LevelError
	}

	format := "text"
	if strings.ToLower(os.Getenv("PLAYD_LOG_FORMAT")) == "json" {
		format = "json"
	}

	return Config{Level: level, Format: format}
}
