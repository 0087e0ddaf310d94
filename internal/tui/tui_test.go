package tui

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/handiism/vinyl-player/internal/bus"
	"github.com/handiism/vinyl-player/internal/config"
)

func newTestModel(t *testing.T) (Model, *bus.Subscription) {
	t.Helper()
	b := bus.New(32)
	t.Cleanup(b.Close)
	commands := b.Subscribe(bus.KindStartPlay, bus.KindUpdateSongTitle, bus.KindUpdateArtistName,
		bus.KindUpdateAlbumArt, bus.KindRemoveAlbumArt, bus.KindUpdateLyrics, bus.KindUpdateLyricsColor,
		bus.KindExportWebM, bus.KindStopExport, bus.KindTogglePlayback, bus.KindDebugBrowserSupport)
	settings := config.DefaultSettings()
	settings.OutputDir = "/videos"
	return NewModel(b, settings), commands
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func next(t *testing.T, sub *bus.Subscription) bus.Message {
	t.Helper()
	select {
	case m := <-sub.C:
		return m
	default:
		t.Fatal("no command published")
		return nil
	}
}

func TestApplyField(t *testing.T) {
	dir := t.TempDir()
	lyricsPath := filepath.Join(dir, "lyrics.json")
	if err := os.WriteFile(lyricsPath, []byte(`[{"start":"00:05","end":8,"text":"b"},{"start":0,"end":5,"text":"a"}]`), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		field Field
		value string
		want  func(bus.Message) bool
	}{
		{"title", FieldTitle, " Song ", func(m bus.Message) bool { return m == bus.UpdateSongTitle{SongTitle: "Song"} }},
		{"artist", FieldArtist, "Band", func(m bus.Message) bool { return m == bus.UpdateArtistName{ArtistName: "Band"} }},
		{"art", FieldArt, "cover.png", func(m bus.Message) bool { return m == bus.UpdateAlbumArt{ImageURL: "cover.png"} }},
		{"no art", FieldArt, "", func(m bus.Message) bool { return m == bus.RemoveAlbumArt{} }},
		{"color", FieldColor, "#FC0", func(m bus.Message) bool { return m == bus.UpdateLyricsColor{Color: "#FC0"} }},
		{"audio", FieldAudio, "song.mp3", func(m bus.Message) bool {
			sp, ok := m.(bus.StartPlay)
			return ok && sp.AudioURL == "song.mp3"
		}},
		{"lyrics", FieldLyrics, lyricsPath, func(m bus.Message) bool {
			ul, ok := m.(bus.UpdateLyrics)
			return ok && len(ul.Lyrics) == 2 && ul.Lyrics[0].Text == "a" && ul.Lyrics[1].Start == 5
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, commands := newTestModel(t)
			m.setFocus(tt.field)
			m.inputs[tt.field].SetValue(tt.value)

			m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
			if cmd == nil {
				t.Fatal("enter produced no command")
			}
			if _, ok := m.applyField(tt.field)().(SentMsg); !ok {
				t.Fatal("command did not publish")
			}
			if got := next(t, commands); !tt.want(got) {
				t.Errorf("published %#v", got)
			}
		})
	}
}

func TestApplyField_Errors(t *testing.T) {
	m, _ := newTestModel(t)
	m.inputs[FieldColor].SetValue("golden")
	if _, ok := m.applyField(FieldColor)().(ErrMsg); !ok {
		t.Error("invalid color should produce ErrMsg")
	}
	m.inputs[FieldLyrics].SetValue(filepath.Join(t.TempDir(), "missing.json"))
	if _, ok := m.applyField(FieldLyrics)().(ErrMsg); !ok {
		t.Error("missing lyrics file should produce ErrMsg")
	}

	m, _ = update(t, m, ErrMsg{Err: os.ErrNotExist})
	if m.state != StateEdit || len(m.logs) != 1 {
		t.Errorf("state = %v logs = %v", m.state, m.logs)
	}
}

func TestFocusCycles(t *testing.T) {
	m, _ := newTestModel(t)
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	if m.focus != FieldColor {
		t.Errorf("focus = %v, want last field", m.focus)
	}
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.focus != FieldArt || !m.inputs[FieldArt].Focused() || m.inputs[FieldColor].Focused() {
		t.Errorf("focus = %v", m.focus)
	}
}

func TestExportFlow(t *testing.T) {
	m, commands := newTestModel(t)
	audioPath := filepath.Join(t.TempDir(), "song.mp3")
	if err := os.WriteFile(audioPath, []byte("audio"), 0644); err != nil {
		t.Fatal(err)
	}
	m.inputs[FieldAudio].SetValue(audioPath)
	m.inputs[FieldTitle].SetValue("Song")
	m.inputs[FieldArt].SetValue("https://example.com/cover.png")

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlE})
	if m.state != StateExporting || cmd == nil {
		t.Fatalf("state = %v", m.state)
	}
	if _, ok := m.exportCmd()().(SentMsg); !ok {
		t.Fatal("export command did not publish")
	}
	req, ok := next(t, commands).(bus.ExportWebM)
	if !ok || string(req.AudioFile.Data) != "audio" || req.SongTitle != "Song" || req.AlbumArtFile != nil {
		t.Errorf("EXPORT_WEBM = %+v", req)
	}

	m, _ = update(t, m, BusMsg{Message: bus.ExportProgress{Progress: 50, Message: "Recording 00:05 / 00:10"}})
	if m.percent != 50 || !strings.Contains(m.View(), "Recording 00:05 / 00:10") {
		t.Errorf("percent = %v view = %s", m.percent, m.View())
	}

	m, cmd = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if cmd == nil {
		t.Fatal("esc produced no command")
	}
	if _, ok := cmd().(SentMsg); !ok {
		t.Fatal("stop did not publish")
	}
	if _, ok := next(t, commands).(bus.StopExport); !ok {
		t.Error("expected STOP_EXPORT")
	}

	m, _ = update(t, m, BusMsg{Message: bus.ExportComplete{VideoBlob: make([]byte, 2<<20), FileName: "Song.webm", Path: "/videos/Song.webm"}})
	if m.state != StateComplete {
		t.Fatalf("state = %v", m.state)
	}
	view := m.View()
	for _, want := range []string{"Export Complete", "Song.webm", "/videos/Song.webm", "2.00 MB"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})
	if m.state != StateEdit || m.fileName != "" {
		t.Errorf("reset state = %v", m.state)
	}
}

func TestExportError(t *testing.T) {
	m, _ := newTestModel(t)
	m.state = StateExporting
	m, _ = update(t, m, BusMsg{Message: bus.ExportError{Error: "export already in progress"}})
	if m.state != StateError || !strings.Contains(m.View(), "export already in progress") {
		t.Errorf("state = %v view = %s", m.state, m.View())
	}

	m.state = StateEdit
	m, _ = update(t, m, BusMsg{Message: bus.ExportError{Error: "late"}})
	if m.state != StateEdit || len(m.logs) == 0 {
		t.Errorf("error outside export should be logged, state = %v", m.state)
	}
}

func TestPlayerStateAndCapabilities(t *testing.T) {
	m, _ := newTestModel(t)
	if !strings.Contains(m.View(), "No song loaded") {
		t.Error("empty player view")
	}
	m, _ = update(t, m, BusMsg{Message: bus.PlayerState{Title: "Song", Artist: "Band", Playing: true, CurrentTime: 65, Duration: 200, ControlsEnabled: true}})
	view := m.View()
	for _, want := range []string{"Song", "Band", "01:05 / 03:20", "/videos"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}

	m, _ = update(t, m, BusMsg{Message: bus.CapabilityReport{
		FFmpegPath: "/usr/bin/ffmpeg", Version: "6.1",
		Types:    []bus.MIMESupport{{MIMEType: "video/webm;codecs=vp9,opus", Supported: true}},
		Selected: "video/webm;codecs=vp9,opus",
	}})
	if len(m.logs) != 3 || !strings.Contains(m.renderLogs(), "Recording as video/webm;codecs=vp9,opus") {
		t.Errorf("logs = %+v", m.logs)
	}
}
