package logging

import (
	"encoding/json"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"":        slog.LevelInfo,
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNew_UnsupportedFormat(t *testing.T) {
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestNew_JSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "vinyl.log")
	logger, err := New(Options{Level: "info", Format: "json", OutputPaths: []string{path, path}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Debug("hidden")
	logger.Info("export finished", "file", "song.webm")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1 (duplicate path must be opened once): %q", len(lines), data)
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatal(err)
	}
	if entry["level"] != "info" || entry["msg"] != "export finished" || entry["file"] != "song.webm" {
		t.Errorf("entry = %v", entry)
	}
	if _, ok := entry["ts"]; !ok {
		t.Error("missing ts key")
	}
}

func TestNew_ConsoleSource(t *testing.T) {
	dir := t.TempDir()
	for _, tt := range []struct {
		level      string
		wantSource bool
	}{
		{"info", false},
		{"debug", true},
	} {
		path := filepath.Join(dir, tt.level+".log")
		logger, err := New(Options{Level: tt.level, OutputPaths: []string{path}})
		if err != nil {
			t.Fatal(err)
		}
		logger.Info("hello")
		data, _ := os.ReadFile(path)
		if got := strings.Contains(string(data), ".go:"); got != tt.wantSource {
			t.Errorf("level %s: source present = %v, want %v (%q)", tt.level, got, tt.wantSource, data)
		}
	}
}

func TestProgressSampler(t *testing.T) {
	s := NewProgressSampler[string](0)
	if s.step != 5 {
		t.Fatalf("step = %v, want 5", s.step)
	}

	steps := []struct {
		stage   string
		percent float64
		want    bool
	}{
		{"Recording", 0, true},
		{"Recording", 3, false},
		{"Recording", 5, true},
		{"Recording", 7, false},
		{"Recording", 4, false},
		{"Recording", 250, true},
		{"Finalizing", 100, true},
		{"Finalizing", 100, false},
		{"Done", -1, true},
		{"Done", -1, false},
		{"Done", math.NaN(), false},
	}
	for i, st := range steps {
		if got := s.Allow(st.stage, st.percent); got != st.want {
			t.Errorf("step %d Allow(%q, %v) = %v, want %v", i, st.stage, st.percent, got, st.want)
		}
	}

	s.Reset()
	if !s.Allow("Done", -1) {
		t.Error("Allow after Reset should pass")
	}

	var nilSampler *ProgressSampler[string]
	if !nilSampler.Allow("x", 50) {
		t.Error("nil sampler should pass everything")
	}
	nilSampler.Reset()
}

func TestProgressSampler_ZeroStage(t *testing.T) {
	type stage int
	s := NewProgressSampler[stage](10)
	if !s.Allow(0, 0) {
		t.Error("first report with the zero stage should pass")
	}
	if s.Allow(0, 9) {
		t.Error("same step should not pass")
	}
	if !s.Allow(1, 9) {
		t.Error("stage change should pass")
	}
}
