package log

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestComponentTagsRecords(t *testing.T) {
	var buf bytes.Buffer
	Setup(Options{Level: "info", Format: FormatJSON, Output: &buf})
	defer Setup(Options{Output: io.Discard})

	Component("engine").Info("calibrated", "frames", 30)

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
	}
	if rec["component"] != "engine" || rec["msg"] != "calibrated" {
		t.Errorf("record = %v", rec)
	}
}

func TestSetLevelAppliesToExistingComponents(t *testing.T) {
	var buf bytes.Buffer
	Setup(Options{Level: "info", Format: FormatText, Output: &buf})
	defer Setup(Options{Output: io.Discard})

	l := Component("session")
	l.Debug("hidden")
	SetLevel("debug")
	l.Debug("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("debug record written at info level")
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "component=session") {
		t.Errorf("output = %q, want the debug record tagged with its component", out)
	}
}
