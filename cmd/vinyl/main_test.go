package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/handiism/vinyl-player/internal/bus"
	"github.com/handiism/vinyl-player/internal/config"
)

// runCLI executes the root command with a config file in a temp dir.
func runCLI(t *testing.T, configPath string, args ...string) (string, error) {
	t.Helper()
	return runCLIWithInput(t, configPath, "", args...)
}

func runCLIWithInput(t *testing.T, configPath, input string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetIn(strings.NewReader(input))
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", configPath}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeTestConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	s := config.DefaultSettings()
	s.OutputDir = filepath.Join(dir, "videos")
	s.HistoryPath = filepath.Join(dir, "history.db")
	path := filepath.Join(dir, "config.toml")
	if err := s.Save(path); err != nil {
		t.Fatal(err)
	}
	return path
}

func requireContains(t *testing.T, s, want string) {
	t.Helper()
	if !strings.Contains(s, want) {
		t.Fatalf("output %q does not contain %q", s, want)
	}
}

func TestConfigInitAndValidate(t *testing.T) {
	target := filepath.Join(t.TempDir(), "nested", "config.toml")

	out, err := runCLI(t, target, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote default configuration")

	if _, err := runCLI(t, target, "config", "init", "--path", target); err == nil {
		t.Fatal("second init without --overwrite should fail")
	}
	if _, err := runCLI(t, target, "config", "init", "--path", target, "--overwrite"); err != nil {
		t.Fatalf("init --overwrite: %v", err)
	}

	out, err = runCLI(t, target, "config", "validate")
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration OK")

	out, err = runCLI(t, target, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	requireContains(t, out, "capture_fps = 30")
	requireContains(t, out, "[layout]")
}

func TestInvalidConfigFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("capture_fps = 0\n"), 0644); err != nil {
		t.Fatal(err)
	}
	_, err := runCLI(t, path, "config", "validate")
	if err == nil || !strings.Contains(err.Error(), "capture_fps") {
		t.Errorf("err = %v", err)
	}
}

func TestHistoryEmpty(t *testing.T) {
	out, err := runCLI(t, writeTestConfig(t), "history")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "No exports yet.")
}

func TestPreviewWritesJPEG(t *testing.T) {
	target := filepath.Join(t.TempDir(), "card.jpg")
	out, err := runCLI(t, writeTestConfig(t), "preview", "--title", "Song", "--width", "180", "--height", "320", "--out", target)
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	requireContains(t, out, "180x320")

	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) < 3 || data[0] != 0xFF || data[1] != 0xD8 {
		t.Errorf("not a JPEG: % x", data[:min(len(data), 4)])
	}
}

func TestExportFlagsApply(t *testing.T) {
	base := *config.DefaultSettings()
	f := exportFlags{output: "/out", nameFormat: "{artist} - {title}", timeout: 90 * time.Second, width: 540}
	got := f.apply(base)
	if got.OutputDir != "/out" || got.FileNameFormat != "{artist} - {title}" {
		t.Errorf("apply() = %+v", got)
	}
	if got.ExportTimeoutSeconds != 90 || got.DefaultWidth != 540 || got.DefaultHeight != base.DefaultHeight {
		t.Errorf("apply() timing/size = %d %dx%d", got.ExportTimeoutSeconds, got.DefaultWidth, got.DefaultHeight)
	}
	if base.OutputDir == "/out" {
		t.Error("apply modified its input")
	}
}

func TestBuildExport(t *testing.T) {
	dir := t.TempDir()
	audioPath := filepath.Join(dir, "Late Night.wav")
	lyricsPath := filepath.Join(dir, "lyrics.json")
	if err := os.WriteFile(audioPath, []byte("RIFF"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(lyricsPath, []byte(`[{"start":2,"end":4,"text":"two"},{"start":0,"end":2,"text":"one"}]`), 0644); err != nil {
		t.Fatal(err)
	}
	settings := config.DefaultSettings()

	job, err := buildExport(settings, exportFlags{artist: "Band", lyrics: lyricsPath, color: "#0f0"}, audioPath)
	if err != nil {
		t.Fatalf("buildExport() error = %v", err)
	}
	if job.export.SongTitle != "Late Night" || job.export.ArtistName != "Band" || job.export.AlbumArtFile != nil {
		t.Errorf("export = %+v", job.export)
	}
	if len(job.setup) != 2 {
		t.Fatalf("setup = %+v", job.setup)
	}
	if ul := job.setup[0].(bus.UpdateLyrics); ul.Lyrics[0].Text != "one" {
		t.Errorf("lyrics not sorted: %+v", ul.Lyrics)
	}
	if c := job.setup[1].(bus.UpdateLyricsColor); c.Color != "#0f0" {
		t.Errorf("color = %q", c.Color)
	}

	tests := []struct {
		name  string
		flags exportFlags
		audio string
	}{
		{"missing audio", exportFlags{}, filepath.Join(dir, "nope.mp3")},
		{"missing art", exportFlags{art: filepath.Join(dir, "nope.png")}, audioPath},
		{"bad color", exportFlags{color: "blue"}, audioPath},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := buildExport(settings, tt.flags, tt.audio); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestProgressPrinter_Plain(t *testing.T) {
	var buf bytes.Buffer
	p := newProgressPrinter(&buf)
	for _, pct := range []float64{0, 3, 9, 10, 15, 21} {
		p.update(pct, "Recording")
	}
	p.update(100, "Finalizing video")
	p.finish()

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	want := []string{"  0% Recording", " 10% Recording", " 21% Recording", "100% Finalizing video"}
	if len(lines) != len(want) {
		t.Fatalf("lines = %q", lines)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestPipeCommand(t *testing.T) {
	input := strings.Join([]string{
		`{"type":"UPDATE_SONG_TITLE","payload":{"songTitle":"Hello"}}`,
		`not json`,
		``,
		`{"type":"EXPORT_PROGRESS","payload":{"progress":5,"message":"x"}}`,
		`{"type":"DEBUG_BROWSER_SUPPORT"}`,
	}, "\n")

	out, err := runCLIWithInput(t, writeTestConfig(t), input, "pipe")
	if err == nil || !strings.Contains(err.Error(), "2 of 4 commands rejected") {
		t.Errorf("err = %v", err)
	}

	var kinds []bus.Kind
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		m, err := bus.Decode([]byte(line))
		if err != nil {
			t.Fatalf("output line %q: %v", line, err)
		}
		kinds = append(kinds, m.Kind())
		if st, ok := m.(bus.PlayerState); ok && st.Title != "Hello" {
			t.Errorf("state title = %q", st.Title)
		}
	}
	want := []bus.Kind{bus.KindPlayerState, bus.KindCapabilityReport}
	if len(kinds) != len(want) || kinds[0] != want[0] || kinds[1] != want[1] {
		t.Errorf("events = %v, want %v", kinds, want)
	}
}

func TestWriteEvents_StripsVideo(t *testing.T) {
	ch := make(chan bus.Message, 2)
	ch <- bus.ExportProgress{Progress: 50, Message: "Recording"}
	ch <- bus.ExportComplete{VideoBlob: []byte("webm"), FileName: "a.webm", Path: "/tmp/a.webm"}
	close(ch)

	var buf bytes.Buffer
	writeEvents(&buf, ch, false, func(err error) { t.Error(err) })
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %q", lines)
	}
	m, err := bus.Decode([]byte(lines[1]))
	if err != nil {
		t.Fatal(err)
	}
	done := m.(bus.ExportComplete)
	if done.VideoBlob != nil || done.Path != "/tmp/a.webm" {
		t.Errorf("complete = %+v", done)
	}
}
