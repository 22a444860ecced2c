package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/solardesk/profit-forecast/internal/config"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name      string
		cfg       config.LoggingConfig
		override  string
		wantLevel zapcore.Level
		wantErr   bool
	}{
		{"defaults", config.LoggingConfig{}, "", zapcore.InfoLevel, false},
		{"config level", config.LoggingConfig{Level: "warn"}, "", zapcore.WarnLevel, false},
		{"override wins", config.LoggingConfig{Level: "error"}, "debug", zapcore.DebugLevel, false},
		{"warning alias", config.LoggingConfig{Level: "warning"}, "", zapcore.WarnLevel, false},
		{"console format", config.LoggingConfig{Format: "console"}, "", zapcore.InfoLevel, false},
		{"invalid level", config.LoggingConfig{Level: "loud"}, "", zapcore.InfoLevel, true},
		{"invalid format", config.LoggingConfig{Format: "xml"}, "", zapcore.InfoLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.cfg, tt.override)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			if !logger.Core().Enabled(tt.wantLevel) {
				t.Errorf("expected level %s to be enabled", tt.wantLevel)
			}
			if tt.wantLevel > zapcore.DebugLevel && logger.Core().Enabled(tt.wantLevel-1) {
				t.Errorf("expected level below %s to be disabled", tt.wantLevel)
			}
		})
	}
}

func TestNewOutputFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "profit.log")

	logger, err := New(config.LoggingConfig{OutputFile: path}, "")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	logger.Info("written")
	_ = logger.Sync()

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("log file not created: %v", err)
	}
	if info.Size() == 0 {
		t.Error("expected log output in file")
	}
}
