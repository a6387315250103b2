package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestSlogLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	log := NewSlogLogger(&buf, Options{Format: "json", Level: "info"})

	log.Info("stored build %s", "editor-ubuntu")
	log.Debug("hidden %d", 1)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 line at info level, got %d: %q", len(lines), buf.String())
	}

	var record map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &record); err != nil {
		t.Fatalf("line is not JSON: %v", err)
	}
	if record["msg"] != "stored build editor-ubuntu" {
		t.Errorf("msg = %v", record["msg"])
	}
	if record["level"] != "INFO" {
		t.Errorf("level = %v", record["level"])
	}
}

func TestSlogLogger_DebugLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewSlogLogger(&buf, Options{Format: "text", Level: "debug"})

	log.Debug("app parameters %v", map[string]string{"slug": "versioning"})

	if !strings.Contains(buf.String(), "level=DEBUG") {
		t.Errorf("expected debug line, got %q", buf.String())
	}
}

func TestRecorder(t *testing.T) {
	rec := NewRecorder()
	rec.Error("failed: %v", "boom")
	rec.Info("ok")

	if rec.Count("error") != 1 {
		t.Errorf("Count(error) = %d, want 1", rec.Count("error"))
	}
	entries := rec.Entries()
	if entries[0].Message != "failed: boom" {
		t.Errorf("message = %q", entries[0].Message)
	}
}

func TestNew_SelectsFormat(t *testing.T) {
	tests := []struct {
		name   string
		opts   Options
		want   string
		silent bool
	}{
		{name: "console info", opts: Options{Format: "console", Level: "info"}, want: "[INFO] build started\n"},
		{name: "console hides debug", opts: Options{Format: "console", Level: "info"}, silent: true},
		{name: "console debug", opts: Options{Format: "console", Level: "debug"}, want: "[DEBUG] build started\n"},
		{name: "text", opts: Options{Format: "text", Level: "info"}, want: `msg="build started"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			log := New(&buf, tt.opts)
			switch {
			case tt.silent:
				log.Debug("build started")
			case strings.HasPrefix(tt.want, "[DEBUG]"):
				log.Debug("build %s", "started")
			default:
				log.Info("build %s", "started")
			}

			if tt.silent {
				if buf.Len() != 0 {
					t.Errorf("expected no output, got %q", buf.String())
				}
				return
			}
			if !strings.Contains(buf.String(), tt.want) {
				t.Errorf("output = %q, want substring %q", buf.String(), tt.want)
			}
		})
	}
}
