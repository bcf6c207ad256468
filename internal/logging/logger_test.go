package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Oniqq60/task_system_control/taskclient/internal/cfg"
)

func TestNewWithSinkJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithSink("json", zapcore.InfoLevel, zapcore.AddSync(&buf))

	logger.Debug("hidden")
	logger.Info("task_service_request", zap.String("op", "list_tasks"), zap.Int("status", 200))
	_ = logger.Sync()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one line, got %q", buf.String())
	}
	var entry map[string]interface{}
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if entry["message"] != "task_service_request" || entry["op"] != "list_tasks" || entry["level"] != "info" {
		t.Fatalf("unexpected entry %v", entry)
	}
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	if _, err := New(cfg.LogConfig{Level: "loud"}); err == nil {
		t.Fatalf("expected error")
	}
}

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "taskclient.log")
	logger, err := New(cfg.LogConfig{Level: "debug", Format: "console", File: path, MaxSizeMB: 1, MaxBackups: 1})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	logger.Debug("hello file")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "hello file") {
		t.Fatalf("expected entry in file, got %q", data)
	}
}
