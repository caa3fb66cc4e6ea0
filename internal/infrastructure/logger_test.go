package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nursabrinaas08/data-cleaning/internal/config"
)

func TestInitializeLogger(t *testing.T) {
	ResetLoggerForTesting()
	defer ResetLoggerForTesting()

	logFile := filepath.Join(t.TempDir(), "logs", "test.log")

	cfg := config.LoggingConfig{
		Level:    "info",
		Format:   "json",
		Output:   "file",
		FilePath: logFile,
	}

	logger, err := InitializeLogger(cfg)
	if err != nil {
		t.Fatalf("Failed to initialize logger: %v", err)
	}
	if logger == nil {
		t.Fatal("Logger is nil")
	}
	if GetLogger() != logger {
		t.Error("GetLogger did not return the initialized logger")
	}

	logger.Info("test message", "key", "value")

	// Close log file to allow reading on Windows
	CloseLogFile()

	content, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}

	var logEntry map[string]interface{}
	if err := json.Unmarshal(content, &logEntry); err != nil {
		t.Errorf("Log output is not valid JSON: %v", err)
	}

	if logEntry["msg"] != "test message" {
		t.Errorf("Expected msg='test message', got %v", logEntry["msg"])
	}
	if logEntry["key"] != "value" {
		t.Errorf("Expected key='value', got %v", logEntry["key"])
	}
	if logEntry["level"] != "INFO" {
		t.Errorf("Expected level='INFO', got %v", logEntry["level"])
	}
}

func TestInitializeLogger_OnlyOnce(t *testing.T) {
	ResetLoggerForTesting()
	defer ResetLoggerForTesting()

	first, err := InitializeLogger(config.LoggingConfig{Level: "info", Output: "console"})
	if err != nil {
		t.Fatalf("Failed to initialize logger: %v", err)
	}
	second, err := InitializeLogger(config.LoggingConfig{Level: "debug", Output: "console"})
	if err != nil {
		t.Fatalf("Failed to initialize logger: %v", err)
	}
	if first != second {
		t.Error("Second InitializeLogger call replaced the global logger")
	}
}

func TestTraceIDInjection(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(&buf, config.LoggingConfig{Level: "debug", Format: "json"})

	ctx := WithTraceID(context.Background(), "test-trace-123")
	logger.InfoContext(ctx, "test with trace")

	var logEntry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
		t.Fatalf("Failed to parse log JSON: %v", err)
	}

	if logEntry["trace_id"] != "test-trace-123" {
		t.Errorf("Expected trace_id='test-trace-123', got %v", logEntry["trace_id"])
	}

	buf.Reset()
	logger.With("component", "x").InfoContext(context.Background(), "no trace")
	if strings.Contains(buf.String(), "trace_id") {
		t.Errorf("Unexpected trace_id in %s", buf.String())
	}
}

func TestLogLevels(t *testing.T) {
	tests := []struct {
		level    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"WARNING", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			if got := parseLogLevel(tt.level); got != tt.expected {
				t.Errorf("Expected level=%v, got %v", tt.expected, got)
			}
		})
	}
}

func TestLogLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(&buf, config.LoggingConfig{Level: "warn", Format: "json"})

	logger.Info("dropped")
	logger.Warn("kept")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("Expected one log line, got %d: %q", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], "kept") {
		t.Errorf("Expected warn line, got %s", lines[0])
	}
}

func TestTextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(&buf, config.LoggingConfig{Level: "info", Format: "text"})

	logger.Info("plain", "rows", 3)

	if !strings.Contains(buf.String(), "msg=plain") || !strings.Contains(buf.String(), "rows=3") {
		t.Errorf("Expected text output, got %s", buf.String())
	}
}

func TestContextHelpers(t *testing.T) {
	if GetTraceID(context.Background()) != "" {
		t.Error("Expected empty trace ID for bare context")
	}
	if GetTraceID(WithTraceID(context.Background(), "abc")) != "abc" {
		t.Error("Expected trace ID to round trip through the context")
	}
}

func TestLoggerHelpers(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	var logEntry map[string]interface{}

	WithComponent(logger, "test-component").Info("test message")
	if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
		t.Fatalf("Failed to parse log JSON: %v", err)
	}
	if logEntry["component"] != "test-component" {
		t.Errorf("Expected component='test-component', got %v", logEntry["component"])
	}

	buf.Reset()
	logEntry = nil
	WithUpload(logger, "sales.csv", 128).Info("upload test")
	if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
		t.Fatalf("Failed to parse log JSON: %v", err)
	}
	upload, ok := logEntry["upload"].(map[string]interface{})
	if !ok {
		t.Fatalf("Expected upload group, got %v", logEntry)
	}
	if upload["filename"] != "sales.csv" || upload["size_bytes"] != float64(128) {
		t.Errorf("Unexpected upload group %v", upload)
	}
}
