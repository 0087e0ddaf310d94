package bus

import (
	"fmt"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/handiism/vinyl-player/internal/lyrics"
	"github.com/handiism/vinyl-player/internal/model"
)

// Kind is the wire tag of a message.
type Kind string

// Commands, sent by the control panel to the player.
const (
	KindStartPlay           Kind = "START_PLAY"
	KindUpdateSongTitle     Kind = "UPDATE_SONG_TITLE"
	KindUpdateArtistName    Kind = "UPDATE_ARTIST_NAME"
	KindUpdateAlbumArt      Kind = "UPDATE_ALBUM_ART"
	KindRemoveAlbumArt      Kind = "REMOVE_ALBUM_ART"
	KindUpdateLyrics        Kind = "UPDATE_LYRICS"
	KindUpdateLyricsColor   Kind = "UPDATE_LYRICS_COLOR"
	KindExportWebM          Kind = "EXPORT_WEBM"
	KindStopExport          Kind = "STOP_EXPORT"
	KindTogglePlayback      Kind = "TOGGLE_PLAYBACK"
	KindDebugBrowserSupport Kind = "DEBUG_BROWSER_SUPPORT"
)

// Events, published by the player.
const (
	KindExportProgress   Kind = "EXPORT_PROGRESS"
	KindExportComplete   Kind = "EXPORT_COMPLETE"
	KindExportError      Kind = "EXPORT_ERROR"
	KindCapabilityReport Kind = "CAPABILITY_REPORT"
	KindPlayerState      Kind = "PLAYER_STATE"
)

// Message is one protocol message. The set of messages is closed; only the
// types in this package implement it.
type Message interface {
	Kind() Kind
	sealed()
}

// StartPlay loads a song into the player and starts playback.
type StartPlay struct {
	AudioURL    string `json:"audioUrl"`
	SongTitle   string `json:"songTitle"`
	ArtistName  string `json:"artistName,omitempty"`
	AlbumArtURL string `json:"albumArtUrl,omitempty"`
}

// UpdateSongTitle replaces the displayed title.
type UpdateSongTitle struct {
	SongTitle string `json:"songTitle"`
}

// UpdateArtistName replaces the displayed artist.
type UpdateArtistName struct {
	ArtistName string `json:"artistName"`
}

// UpdateAlbumArt replaces the album art.
type UpdateAlbumArt struct {
	ImageURL string `json:"imageUrl"`
}

// RemoveAlbumArt reverts to the placeholder label.
type RemoveAlbumArt struct{}

// UpdateLyrics replaces the whole cue list.
type UpdateLyrics struct {
	Lyrics []lyrics.Cue `json:"lyrics"`
}

// UpdateLyricsColor sets the lyric text color.
type UpdateLyricsColor struct {
	Color string `json:"color"`
}

// ExportWebM requests a video export.
type ExportWebM struct {
	AudioFile    model.Asset  `json:"audioFile"`
	SongTitle    string       `json:"songTitle"`
	ArtistName   string       `json:"artistName,omitempty"`
	AlbumArtFile *model.Asset `json:"albumArtFile,omitempty"`
}

// StopExport finishes the running export early.
type StopExport struct{}

// TogglePlayback plays or pauses the player.
type TogglePlayback struct{}

// DebugBrowserSupport asks the player for a CapabilityReport.
type DebugBrowserSupport struct{}

// ExportProgress reports export progress in percent.
type ExportProgress struct {
	Progress float64 `json:"progress"`
	Message  string  `json:"message"`
}

// ExportComplete carries the finished video.
type ExportComplete struct {
	VideoBlob []byte `json:"videoBlob,omitempty"`
	FileName  string `json:"fileName"`
	Path      string `json:"path,omitempty"`
}

// ExportError reports a failed or rejected export.
type ExportError struct {
	Error string `json:"error"`
}

// MIMESupport is one probed recorder type.
type MIMESupport struct {
	MIMEType  string `json:"mimeType"`
	Supported bool   `json:"supported"`
}

// CapabilityReport answers DebugBrowserSupport.
type CapabilityReport struct {
	FFmpegPath string        `json:"ffmpegPath,omitempty"`
	Version    string        `json:"version,omitempty"`
	Types      []MIMESupport `json:"types"`
	Selected   string        `json:"selected,omitempty"`
	Error      string        `json:"error,omitempty"`
}

// PlayerState is published whenever playback or export state changes.
type PlayerState struct {
	Title           string  `json:"title"`
	Artist          string  `json:"artist"`
	Playing         bool    `json:"playing"`
	CurrentTime     float64 `json:"currentTime"`
	Duration        float64 `json:"duration"`
	ControlsEnabled bool    `json:"controlsEnabled"`
	Exporting       bool    `json:"exporting"`
}

func (StartPlay) Kind() Kind           { return KindStartPlay }
func (UpdateSongTitle) Kind() Kind     { return KindUpdateSongTitle }
func (UpdateArtistName) Kind() Kind    { return KindUpdateArtistName }
func (UpdateAlbumArt) Kind() Kind      { return KindUpdateAlbumArt }
func (RemoveAlbumArt) Kind() Kind      { return KindRemoveAlbumArt }
func (UpdateLyrics) Kind() Kind        { return KindUpdateLyrics }
func (UpdateLyricsColor) Kind() Kind   { return KindUpdateLyricsColor }
func (ExportWebM) Kind() Kind          { return KindExportWebM }
func (StopExport) Kind() Kind          { return KindStopExport }
func (TogglePlayback) Kind() Kind      { return KindTogglePlayback }
func (DebugBrowserSupport) Kind() Kind { return KindDebugBrowserSupport }
func (ExportProgress) Kind() Kind      { return KindExportProgress }
func (ExportComplete) Kind() Kind      { return KindExportComplete }
func (ExportError) Kind() Kind         { return KindExportError }
func (CapabilityReport) Kind() Kind    { return KindCapabilityReport }
func (PlayerState) Kind() Kind         { return KindPlayerState }

func (StartPlay) sealed()           {}
func (UpdateSongTitle) sealed()     {}
func (UpdateArtistName) sealed()    {}
func (UpdateAlbumArt) sealed()      {}
func (RemoveAlbumArt) sealed()      {}
func (UpdateLyrics) sealed()        {}
func (UpdateLyricsColor) sealed()   {}
func (ExportWebM) sealed()          {}
func (StopExport) sealed()          {}
func (TogglePlayback) sealed()      {}
func (DebugBrowserSupport) sealed() {}
func (ExportProgress) sealed()      {}
func (ExportComplete) sealed()      {}
func (ExportError) sealed()         {}
func (CapabilityReport) sealed()    {}
func (PlayerState) sealed()         {}

// Validate checks the start request.
func (m StartPlay) Validate() error {
	if strings.TrimSpace(m.AudioURL) == "" {
		return fmt.Errorf("%s: audioUrl is required", m.Kind())
	}
	return nil
}

// Validate checks the cue list.
func (m UpdateLyrics) Validate() error {
	return lyrics.Validate(m.Lyrics)
}

// Validate checks that the color is a hex color.
func (m UpdateLyricsColor) Validate() error {
	_, err := NormalizeColor(m.Color)
	return err
}

// Validate checks that the export carries audio.
func (m ExportWebM) Validate() error {
	if m.AudioFile.Empty() {
		return fmt.Errorf("%s: %w", m.Kind(), model.ErrNoAudio)
	}
	return nil
}

// Request converts the message into an export request.
func (m ExportWebM) Request() (model.ExportRequest, error) {
	return model.NewExportRequest(m.AudioFile, m.SongTitle, m.ArtistName, m.AlbumArtFile)
}

// NormalizeColor parses "#rgb" or "#rrggbb" and returns the lower-case
// "#rrggbb" form.
func NormalizeColor(hex string) (string, error) {
	c, err := colorful.Hex(strings.TrimSpace(hex))
	if err != nil {
		return "", fmt.Errorf("invalid color %q: %w", hex, err)
	}
	return c.Hex(), nil
}
