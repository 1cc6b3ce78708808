package logger

import (
	"testing"

	"github.com/rs/zerolog"

	"github.com/wonseok/quarters/pkg/config"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"fatal", zerolog.FatalLevel},
		{"DEBUG", zerolog.DebugLevel},
		{"unknown", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		if got := parseLogLevel(tt.input); got != tt.want {
			t.Errorf("parseLogLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestNewDoesNotPanic(t *testing.T) {
	cfg := &config.Config{
		Env:       "development",
		LogLevel:  "info",
		LogFormat: "console",
	}

	log := New(cfg)
	log.Info("started")
	log.WithField("entity", "s1").Debug("field logging")
	log.WithFields(map[string]interface{}{"a": 1, "b": "x"}).Warn("fields logging")
}

func TestNopDiscards(t *testing.T) {
	log := Nop()
	log.Error("discarded")
	log.Errorf("discarded %d", 1)
}
