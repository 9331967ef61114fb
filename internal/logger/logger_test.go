package logger

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		json       bool
		debug      bool
		encoding   string
		level      zapcore.Level
		stacktrace bool
	}{
		{name: "console info", encoding: "console", level: zapcore.InfoLevel},
		{name: "json debug", json: true, debug: true, encoding: "json", level: zapcore.DebugLevel, stacktrace: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := config(tt.json, tt.debug)
			if cfg.Encoding != tt.encoding {
				t.Fatalf("expected encoding %q, got %q", tt.encoding, cfg.Encoding)
			}
			if cfg.Level.Level() != tt.level {
				t.Fatalf("expected level %s, got %s", tt.level, cfg.Level.Level())
			}
			if cfg.DisableStacktrace == tt.stacktrace {
				t.Fatalf("unexpected stacktrace setting %v", cfg.DisableStacktrace)
			}
		})
	}
}

func TestNew(t *testing.T) {
	log, err := New(true, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if log.Core().Enabled(zapcore.DebugLevel) {
		t.Fatal("debug must be disabled without the debug flag")
	}
}
