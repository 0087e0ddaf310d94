package model

import (
	"github.com/handiism/vinyl-player/internal/lyrics"
)

// DefaultLyricsColor is the lyric text color used until the control panel
// sends UPDATE_LYRICS_COLOR.
const DefaultLyricsColor = "#ffffff"

// Song is the state the vinyl player displays.
//
// Song contains:
//   - Title and Artist shown under the vinyl
//   - AudioURL and AlbumArtURL pointing at the loaded assets
//   - Lyrics and LyricsColor for the lyric line
//
// The player replaces fields wholesale as bus messages arrive; a Song value
// handed to the renderer is never mutated afterwards.
type Song struct {
	// Title is the song title. May be empty before the first START_PLAY.
	Title string

	// Artist is the artist name. Empty string means unknown.
	Artist string

	// AudioURL is a local path, file:// URL or http(s) URL of the audio.
	AudioURL string

	// AlbumArtURL is the album art location. Empty means the placeholder
	// label is drawn.
	AlbumArtURL string

	// Lyrics is the current cue list.
	Lyrics []lyrics.Cue

	// LyricsColor is a hex color such as "#ffcc00".
	LyricsColor string
}

// HasArtwork returns true if the song has album art to load.
func (s Song) HasArtwork() bool {
	return s.AlbumArtURL != ""
}

// WithLyrics returns a copy of s with its cue list replaced.
func (s Song) WithLyrics(cues []lyrics.Cue) Song {
	cp := make([]lyrics.Cue, len(cues))
	copy(cp, cues)
	s.Lyrics = cp
	return s
}
