package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"mdsexport/pkg/config"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    zerolog.Level
		wantErr bool
	}{
		{"debug", zerolog.DebugLevel, false},
		{"info", zerolog.InfoLevel, false},
		{"warn", zerolog.WarnLevel, false},
		{"warning", zerolog.WarnLevel, false},
		{"ERROR", zerolog.ErrorLevel, false},
		{"fatal", zerolog.FatalLevel, false},
		{"disabled", zerolog.Disabled, false},
		{"bogus", zerolog.InfoLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseLogLevel(tt.input)
			if tt.wantErr && err == nil {
				t.Error("Expected error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("parseLogLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestNewInvalidLevel(t *testing.T) {
	_, err := New(&config.LoggingConfig{Level: "bogus"})
	if err == nil {
		t.Fatal("Expected error for invalid level")
	}
}

func TestFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "mdsexport.log")

	log, err := New(&config.LoggingConfig{Level: "info", File: path})
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}

	log.WithField("page", 3).Info("page written")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}

	content := string(data)
	if !strings.Contains(content, `"app":"mdsexport"`) {
		t.Errorf("Expected app field in log output, got %s", content)
	}
	if !strings.Contains(content, `"page":3`) {
		t.Errorf("Expected page field in log output, got %s", content)
	}
	if !strings.Contains(content, "page written") {
		t.Errorf("Expected message in log output, got %s", content)
	}
}

func TestWithFieldsDoesNotMutateParent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.log")

	log, err := New(&config.LoggingConfig{Level: "info", File: path})
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}

	child := log.WithField("child", true)
	if child == log {
		t.Error("Expected WithField to return a new logger")
	}

	parent := log.(*zerologLogger)
	if len(parent.fields) != 0 {
		t.Errorf("Parent logger fields mutated: %v", parent.fields)
	}
}

func TestGetLoggerDefault(t *testing.T) {
	globalLogger = nil
	if GetLogger() == nil {
		t.Fatal("Expected default logger")
	}
}
