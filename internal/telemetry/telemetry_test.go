package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"interview-prep-simulator/internal/config"
)

func TestLoggerFromContextAddsRequestID(t *testing.T) {
	var buf bytes.Buffer
	base := NewLogger(&buf, "info")

	ctx := WithRequestID(context.Background(), "req-123")
	LoggerFromContext(ctx, base).Info("hello")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v (%s)", err, buf.String())
	}
	if entry["request_id"] != "req-123" {
		t.Errorf("request_id = %v", entry["request_id"])
	}

	if LoggerFromContext(context.Background(), base) != base {
		t.Error("logger without request id should be returned unchanged")
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestInitLoggerWritesFile(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	path := filepath.Join(t.TempDir(), "logs", "app.log")
	logger, closeLog, err := InitLogger(config.LogConfig{Level: "info", File: path})
	if err != nil {
		t.Fatalf("InitLogger: %v", err)
	}
	logger.Info("written to file")
	if err := closeLog(); err != nil {
		t.Fatalf("close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !bytes.Contains(data, []byte("written to file")) {
		t.Errorf("log file content = %s", data)
	}
}

func TestInitTelemetryDisabled(t *testing.T) {
	tracer, meter, cleanup, err := InitTelemetry(context.Background(), config.TelemetryConfig{Enabled: false})
	if err != nil {
		t.Fatalf("InitTelemetry: %v", err)
	}
	defer cleanup()

	_, span := tracer.Start(context.Background(), "noop")
	span.End()
	if _, err := meter.Int64Counter("noop"); err != nil {
		t.Errorf("noop meter: %v", err)
	}
}

func TestInitTelemetryEnabled(t *testing.T) {
	dir := t.TempDir()
	tracer, meter, cleanup, err := InitTelemetry(context.Background(), config.TelemetryConfig{Enabled: true, Dir: dir})
	if err != nil {
		t.Fatalf("InitTelemetry: %v", err)
	}

	_, span := tracer.Start(context.Background(), "test_span")
	span.End()
	counter, err := meter.Int64Counter("test.counter")
	if err != nil {
		t.Fatalf("Int64Counter: %v", err)
	}
	counter.Add(context.Background(), 1)
	cleanup()

	data, err := os.ReadFile(filepath.Join(dir, "traces.log"))
	if err != nil {
		t.Fatalf("read traces: %v", err)
	}
	if !bytes.Contains(data, []byte("test_span")) {
		t.Errorf("span not exported: %s", data)
	}
}
