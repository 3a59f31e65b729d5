package logging_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"transcodesched/internal/config"
	"transcodesched/internal/logging"
	"transcodesched/internal/svcctx"
)

func TestNewFromConfigConsole(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = t.TempDir()

	logger, err := logging.NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	if logger == nil {
		t.Fatal("expected logger instance")
	}
	logger.Debug("debug message")
}

func TestConsoleLoggerOmitsCallerForInfo(t *testing.T) {
	tempDir := t.TempDir()
	logPath := filepath.Join(tempDir, "console-info.log")

	opts := logging.Options{
		Format:           "console",
		Level:            "info",
		OutputPaths:      []string{logPath},
		ErrorOutputPaths: []string{logPath},
	}

	logger, err := logging.New(opts)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Info("message without caller")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}

	if strings.Contains(string(content), ".go:") {
		t.Fatalf("expected no caller information in info logs, got %q", content)
	}
}

func TestConsoleLoggerIncludesCallerForDebug(t *testing.T) {
	tempDir := t.TempDir()
	logPath := filepath.Join(tempDir, "console-debug.log")

	opts := logging.Options{
		Format:           "console",
		Level:            "debug",
		OutputPaths:      []string{logPath},
		ErrorOutputPaths: []string{logPath},
	}

	logger, err := logging.New(opts)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Info("message with caller")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}

	if !strings.Contains(string(content), ".go:") {
		t.Fatalf("expected caller information in debug logs, got %q", content)
	}
}

func TestNewJSONLogger(t *testing.T) {
	tempDir := t.TempDir()
	logPath := filepath.Join(tempDir, "json.log")
	opts := logging.Options{Format: "json", Level: "debug", OutputPaths: []string{logPath}, ErrorOutputPaths: []string{logPath}}
	logger, err := logging.New(opts)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("json message", logging.String("k", "v"))

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(content), `"k":"v"`) {
		t.Fatalf("expected json-encoded field, got %q", content)
	}
}

func TestNewInvalidLevelDefaultsToInfo(t *testing.T) {
	opts := logging.Options{Format: "console", Level: "invalid"}
	logger, err := logging.New(opts)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if logger == nil {
		t.Fatal("expected logger instance")
	}
	logger.Info("should use info level")
}

func TestConsoleLoggerLeadsWithSessionSubject(t *testing.T) {
	tempDir := t.TempDir()
	logPath := filepath.Join(tempDir, "subject.log")

	logger, err := logging.New(logging.Options{
		Format:           "console",
		Level:            "info",
		OutputPaths:      []string{logPath},
		ErrorOutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Info("session paused",
		logging.String(logging.FieldComponent, "sessionctl"),
		logging.String(logging.FieldSessionKey, "{client:1, session:2}"),
		logging.Int32(logging.FieldUID, 100),
		logging.String(logging.FieldSessionState, "Paused"),
		logging.Int("progress", 40))

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	line := string(content)

	if !strings.Contains(line, "sessionctl: uid 100 · {client:1, session:2} (Paused): session paused") {
		t.Fatalf("expected subject-prefixed line, got %q", line)
	}
	// Hoisted fields must not repeat in the key=value trailer.
	for _, stray := range []string{"session_key=", "uid=", "session_state="} {
		if strings.Contains(line, stray) {
			t.Fatalf("expected %s to be hoisted out of the trailer, got %q", stray, line)
		}
	}
	if !strings.Contains(line, "progress=40") {
		t.Fatalf("expected remaining fields in trailer, got %q", line)
	}
}

func TestWithContextAddsFields(t *testing.T) {
	tempDir := t.TempDir()
	logPath := filepath.Join(tempDir, "context.log")

	ctx := context.Background()
	ctx = svcctx.WithSessionKey(ctx, "{client:1, session:2}")
	ctx = svcctx.WithUID(ctx, 100)
	ctx = svcctx.WithRequestID(ctx, "req-xyz")

	logger, err := logging.New(logging.Options{Format: "json", Level: "info", OutputPaths: []string{logPath}, ErrorOutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logging.WithContext(ctx, logger).Info("contextual log")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	for _, want := range []string{
		`"session_key":"{client:1, session:2}"`,
		`"uid":100`,
		`"correlation_id":"req-xyz"`,
	} {
		if !strings.Contains(string(content), want) {
			t.Fatalf("expected log line to contain %s, got %q", want, content)
		}
	}
}
