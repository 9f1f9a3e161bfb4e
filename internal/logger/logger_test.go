package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestZapLoggerWritesStructuredJSON(t *testing.T) {
	var buf bytes.Buffer
	log := New("info", &buf)

	log.InfoObj("invoice observed", "invoice", map[string]any{"id": "in_123", "status": "open"})
	log.DebugObj("hidden at info level", "x", 1)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 log line, got %d: %q", len(lines), buf.String())
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if entry["msg"] != "invoice observed" || entry["level"] != "info" {
		t.Fatalf("unexpected entry %#v", entry)
	}
	if _, ok := entry["ts"]; !ok {
		t.Fatalf("missing ts key: %#v", entry)
	}
	inv, ok := entry["invoice"].(map[string]any)
	if !ok || inv["id"] != "in_123" {
		t.Fatalf("unexpected invoice field %#v", entry["invoice"])
	}
}

func TestPackageHelpersUseInstalledLogger(t *testing.T) {
	var buf bytes.Buffer
	New("debug", &buf)

	DebugObj("debug helper", "k", "v")
	if !strings.Contains(buf.String(), `"debug helper"`) {
		t.Fatalf("package helper did not log: %q", buf.String())
	}
	if err := Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestParseLevelFallsBackToInfo(t *testing.T) {
	if got := parseLevel("verbose"); got.String() != "info" {
		t.Fatalf("expected info, got %s", got)
	}
	if got := parseLevel(" WARNING "); got.String() != "warn" {
		t.Fatalf("expected warn, got %s", got)
	}
}
