package model

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/handiism/vinyl-player/internal/lyrics"
)

func TestExportRequest_FileName(t *testing.T) {
	tests := []struct {
		name   string
		title  string
		artist string
		format string
		want   string
	}{
		{"plain", "Song", "", "", "Song.webm"},
		{"strips invalid", `What? "Live" <at> Home/Away`, "", "", "What Live at HomeAway.webm"},
		{"colons and pipes", "a:b|c", "", "", "abc.webm"},
		{"empty title", "", "", "", "untitled.webm"},
		{"only invalid", `<>:"/\|?*`, "", "", "untitled.webm"},
		{"artist format", "Song", "Band", "{artist} - {title}", "Band - Song.webm"},
		{"artist format no artist", "Song", "", "{artist} - {title}", "Song.webm"},
	}

	audio := Asset{Name: "a.mp3", Data: []byte{1}}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := NewExportRequest(audio, tt.title, tt.artist, nil)
			if err != nil {
				t.Fatal(err)
			}
			if got := req.FileName(NameConfig{FileNameFormat: tt.format}); got != tt.want {
				t.Errorf("FileName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExportRequest_FileNameLength(t *testing.T) {
	req, _ := NewExportRequest(Asset{Name: "a.mp3", Data: []byte{1}}, strings.Repeat("é", 300), "", nil)
	got := req.FileName(NameConfig{})
	if len(got) > maxFileNameLen+len(VideoExtension) {
		t.Errorf("FileName length = %d", len(got))
	}
	if !strings.HasSuffix(got, VideoExtension) {
		t.Errorf("FileName %q missing extension", got)
	}
}

func TestNewExportRequest(t *testing.T) {
	if _, err := NewExportRequest(Asset{Name: "a.mp3"}, "t", "", nil); !errors.Is(err, ErrNoAudio) {
		t.Errorf("err = %v, want ErrNoAudio", err)
	}

	data := []byte{1, 2, 3}
	art := &Asset{Name: "cover.png", Data: []byte{9}}
	req, err := NewExportRequest(Asset{Name: "a.mp3", Data: data}, " Title ", "", art)
	if err != nil {
		t.Fatal(err)
	}
	data[0] = 42
	if req.Audio.Data[0] != 1 {
		t.Error("request must copy the audio data")
	}
	if req.Title != "Title" {
		t.Errorf("Title = %q", req.Title)
	}
	if !req.HasArtwork() {
		t.Error("HasArtwork() should be true")
	}

	noArt, _ := NewExportRequest(Asset{Name: "a.mp3", Data: data}, "t", "", &Asset{Name: "empty.png"})
	if noArt.HasArtwork() {
		t.Error("empty art should be dropped")
	}
}

func TestLoadAsset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Song.MP3")
	if err := os.WriteFile(path, []byte("abc"), 0644); err != nil {
		t.Fatal(err)
	}
	a, err := LoadAsset(path)
	if err != nil {
		t.Fatal(err)
	}
	if a.Name != "Song.MP3" || a.Ext() != ".mp3" || string(a.Data) != "abc" {
		t.Errorf("LoadAsset = %+v", a)
	}

	if _, err := LoadAsset(filepath.Join(t.TempDir(), "missing.mp3")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestSong_WithLyrics(t *testing.T) {
	cues := []lyrics.Cue{{Start: 0, End: 1, Text: "a"}}
	s := Song{Title: "x"}.WithLyrics(cues)
	cues[0].Text = "changed"
	if s.Lyrics[0].Text != "a" {
		t.Error("WithLyrics must copy the cue list")
	}
	if s.HasArtwork() {
		t.Error("HasArtwork() should be false")
	}
}

func TestExportRequest_WithLyrics(t *testing.T) {
	req, _ := NewExportRequest(Asset{Name: "a.mp3", Data: []byte{1}}, "t", "", nil)
	cues := []lyrics.Cue{{Start: 0, End: 1, Text: "a"}}
	got := req.WithLyrics(cues, "#ff0000")
	cues[0].Text = "changed"
	if got.Lyrics[0].Text != "a" || got.LyricsColor != "#ff0000" {
		t.Errorf("WithLyrics = %+v", got)
	}
	if req.Lyrics != nil {
		t.Error("WithLyrics must not modify the receiver")
	}
}
