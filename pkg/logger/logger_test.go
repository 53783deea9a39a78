package logger

import (
	"assessment_backend/internal/config"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestLevel(t *testing.T) {
	tests := []struct {
		name  string
		mode  string
		level string
		want  zapcore.Level
	}{
		{"debug mode", "debug", "", zapcore.DebugLevel},
		{"release mode", "release", "", zapcore.InfoLevel},
		{"explicit level wins", "debug", "warn", zapcore.WarnLevel},
		{"unknown level", "release", "loud", zapcore.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{Server: config.ServerConfig{Mode: tt.mode}, Log: config.LogConfig{Level: tt.level}}
			if got := Level(cfg); got != tt.want {
				t.Fatalf("Level = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestInitLogger_WritesConfiguredFile(t *testing.T) {
	prev := Log
	t.Cleanup(func() { Log = prev })

	path := filepath.Join(t.TempDir(), "engine.log")
	InitLogger(&config.Config{
		Server: config.ServerConfig{Mode: "release"},
		Log:    config.LogConfig{File: path, MaxSizeMB: 1},
	})
	Log.Debug("hidden")
	Log.Info("attempt submitted", zap.String("attempt_id", "a-1"))
	Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), `"attempt_id":"a-1"`) || strings.Contains(string(data), "hidden") {
		t.Fatalf("unexpected log file: %s", data)
	}
}
