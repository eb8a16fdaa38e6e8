package logx

import (
	"log/slog"
	"testing"
)

func TestDefaultConfigFallsBackToInfoText(t *testing.T) {
	t.Setenv("PLAYD_LOG_LEVEL", "")
	t.Setenv("PLAYD_LOG_FORMAT", "")
	cfg := DefaultConfig()
	if cfg.Level != slog.LevelInfo || cfg.Format != "text" {
		t.Fatalf("got %+v", cfg)
	}
}

func TestDefaultConfigParsesLevelAndFormat(t *testing.T) {
	t.Setenv("PLAYD_LOG_LEVEL", "debug")
	t.Setenv("PLAYD_LOG_FORMAT", "JSON")
	cfg := DefaultConfig()
	if cfg.Level != slog.LevelDebug || cfg.Format != "json" {
		t.Fatalf("got %+v", cfg)
	}
}

func TestSetupReturnsUsableLogger(t *testing.T) {
	logger := Setup(Config{Level: slog.LevelWarn, Format: "text"})
	if logger == nil {
		t.Fatal("expected a non-nil logger")
	}
}
