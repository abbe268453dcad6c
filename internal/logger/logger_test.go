package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/classly-hq/classly-networking/internal/config"
)

func TestZapWritesStructuredObjects(t *testing.T) {
	var buf bytes.Buffer
	log := initTo(&config.Config{AppName: "netreq", Env: "test", LogLevel: "debug"}, &buf)
	t.Cleanup(func() { S = nil })

	log.DebugObj("received response", "network_response", map[string]any{"status_code": 201})

	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("decode log line %q: %v", buf.String(), err)
	}
	if entry["msg"] != "received response" || entry["level"] != "debug" || entry["app"] != "netreq" {
		t.Fatalf("unexpected entry %v", entry)
	}
	fields, ok := entry["network_response"].(map[string]any)
	if !ok || fields["status_code"] != float64(201) {
		t.Fatalf("missing structured field: %v", entry)
	}
	if _, ok := entry["ts"]; !ok {
		t.Fatalf("missing ts key: %v", entry)
	}
}

func TestLevelFiltersDebug(t *testing.T) {
	var buf bytes.Buffer
	log := initTo(&config.Config{LogLevel: "warn"}, &buf)
	t.Cleanup(func() { S = nil })

	log.DebugObj("hidden", "k", 1)
	log.InfoObj("hidden", "k", 1)
	WarnObj("shown", "k", 1)

	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown") {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

func TestHelpersAreSafeBeforeInit(t *testing.T) {
	S = nil
	InfoObj("x", "k", 1)
	ErrorObj("x", "k", 1)
	if err := Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}
