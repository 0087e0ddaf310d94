package model

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	ioutils "github.com/handiism/vinyl-player/internal/io"
	"github.com/handiism/vinyl-player/internal/lyrics"
)

// VideoExtension is appended to every exported file name.
const VideoExtension = ".webm"

// UntitledFileName is used when the title sanitizes to an empty string.
const UntitledFileName = "untitled"

// maxFileNameLen keeps generated names well under common path limits.
const maxFileNameLen = 200

// ErrNoAudio is returned when an export request carries no audio data.
var ErrNoAudio = errors.New("export request has no audio")

// Asset is an uploaded file held in memory.
type Asset struct {
	// Name is the original file name, used for format detection.
	Name string `json:"name"`

	// Data is the file content.
	Data []byte `json:"data"`
}

// LoadAsset reads a file from disk into an Asset.
func LoadAsset(path string) (Asset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Asset{}, err
	}
	return Asset{Name: filepath.Base(path), Data: data}, nil
}

// Empty reports whether the asset has no content.
func (a Asset) Empty() bool {
	return len(a.Data) == 0
}

// Ext returns the lower-cased file extension of the asset name, including
// the dot.
func (a Asset) Ext() string {
	return strings.ToLower(filepath.Ext(a.Name))
}

// ExportRequest is one user-initiated export.
//
// A request is created once per export click and consumed exactly once by
// the exporter. Use NewExportRequest; it copies the asset data so later
// edits in the control panel cannot change a request already in flight.
//
// Example:
//
//	audio, _ := LoadAsset("/music/song.mp3")
//	req, err := NewExportRequest(audio, "Song", "Artist", nil)
//	fmt.Println(req.FileName(NameConfig{})) // "Song.webm"
type ExportRequest struct {
	// Audio is the song file to record.
	Audio Asset

	// Title is the song title drawn on the card and used for the file name.
	Title string

	// Artist is the artist name. Optional.
	Artist string

	// AlbumArt is the optional album art file.
	AlbumArt *Asset

	// Lyrics and LyricsColor are the cues shown on the recorded card. They
	// come from the player state at the time of the request.
	Lyrics      []lyrics.Cue
	LyricsColor string
}

// NewExportRequest validates and copies the inputs into a new request.
func NewExportRequest(audio Asset, title, artist string, art *Asset) (ExportRequest, error) {
	if audio.Empty() {
		return ExportRequest{}, ErrNoAudio
	}
	req := ExportRequest{
		Audio:  cloneAsset(audio),
		Title:  strings.TrimSpace(title),
		Artist: strings.TrimSpace(artist),
	}
	if art != nil && !art.Empty() {
		a := cloneAsset(*art)
		req.AlbumArt = &a
	}
	return req, nil
}

// WithLyrics returns a copy of r that records cues in the given color.
func (r ExportRequest) WithLyrics(cues []lyrics.Cue, color string) ExportRequest {
	cp := make([]lyrics.Cue, len(cues))
	copy(cp, cues)
	r.Lyrics = cp
	r.LyricsColor = color
	return r
}

// HasArtwork returns true if the request carries album art.
func (r ExportRequest) HasArtwork() bool {
	return r.AlbumArt != nil && !r.AlbumArt.Empty()
}

// NameConfig holds output file name formatting settings.
//
// FileNameFormat supports placeholders that are replaced with actual values:
//   - {title} - Song title
//   - {artist} - Artist name
//
// An empty format means "{title}".
//
// Example:
//
//	cfg := NameConfig{FileNameFormat: "{artist} - {title}"}
//	// Results in file names like "The Beatles - Come Together.webm"
type NameConfig struct {
	FileNameFormat string
}

// FileName returns the sanitized output file name for the request,
// including the ".webm" extension.
//
// Invalid file name characters (<>:"/\|?*) are stripped. A title that
// sanitizes to nothing yields "untitled.webm".
func (r ExportRequest) FileName(cfg NameConfig) string {
	format := cfg.FileNameFormat
	if format == "" {
		format = "{title}"
	}
	name := strings.ReplaceAll(format, "{title}", r.Title)
	name = strings.ReplaceAll(name, "{artist}", r.Artist)
	name = ioutils.SanitizeFileName(name)
	name = strings.Trim(name, " -")

	if name == "" {
		name = UntitledFileName
	}
	if len(name) > maxFileNameLen {
		name = strings.TrimSpace(truncateUTF8(name, maxFileNameLen))
	}
	return name + VideoExtension
}

// String implements fmt.Stringer for logging.
func (r ExportRequest) String() string {
	art := "none"
	if r.HasArtwork() {
		art = r.AlbumArt.Name
	}
	return fmt.Sprintf("%q by %q (audio %s, %d bytes, art %s)", r.Title, r.Artist, r.Audio.Name, len(r.Audio.Data), art)
}

func cloneAsset(a Asset) Asset {
	data := make([]byte, len(a.Data))
	copy(data, a.Data)
	return Asset{Name: a.Name, Data: data}
}

func truncateUTF8(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !isRuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
