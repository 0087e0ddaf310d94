package player

import (
	"context"
	"strings"

	"github.com/handiism/vinyl-player/internal/audio"
	"github.com/handiism/vinyl-player/internal/bus"
	"github.com/handiism/vinyl-player/internal/lyrics"
	"github.com/handiism/vinyl-player/internal/media"
	"github.com/handiism/vinyl-player/internal/model"
)

// artCheckSize is the decode size used to verify album art.
const artCheckSize = 64

// StartPlay loads the song and starts playback. Missing title and artist
// are filled from the file's tags, as are missing art and lyrics.
func (p *Player) StartPlay(m bus.StartPlay) {
	ctx := p.context()
	if err := m.Validate(); err != nil {
		p.logger.Warn("start play rejected", "error", err)
		return
	}

	a, err := p.resolve(ctx, m.AudioURL)
	if err != nil {
		p.logger.Warn("load audio", "url", m.AudioURL, "error", err)
		return
	}
	if p.output != nil {
		if err := p.output.Load(a); err != nil {
			p.logger.Warn("decode audio", "url", m.AudioURL, "error", err)
			return
		}
	}

	song := model.Song{
		Title:       strings.TrimSpace(m.SongTitle),
		Artist:      strings.TrimSpace(m.ArtistName),
		AudioURL:    m.AudioURL,
		AlbumArtURL: m.AlbumArtURL,
	}
	var art *model.Asset
	if m.AlbumArtURL != "" {
		if loaded, err := p.loadArt(m.AlbumArtURL); err != nil {
			p.logger.Warn("load album art", "url", m.AlbumArtURL, "error", err)
			song.AlbumArtURL = ""
		} else {
			art = &loaded
		}
	}

	var cues []lyrics.Cue
	if meta, err := audio.ReadMetadata(a); err == nil {
		if song.Title == "" {
			song.Title = meta.Title
		}
		if song.Artist == "" {
			song.Artist = meta.Artist
		}
		if art == nil && meta.Cover != nil {
			art = meta.Cover
			song.AlbumArtURL = "embedded:" + meta.Cover.Name
		}
		cues = meta.Cues
	}
	if song.Title == "" {
		song.Title = strings.TrimSuffix(a.Name, a.Ext())
	}

	p.mu.Lock()
	song.LyricsColor = p.song.LyricsColor
	song.Lyrics = p.song.Lyrics
	if len(song.Lyrics) == 0 {
		song.Lyrics = cues
	}
	p.song = song
	p.audio = a
	p.art = art
	enabled := p.controlsEnabled
	p.mu.Unlock()

	p.logger.Info("song loaded", "title", song.Title, "artist", song.Artist, "audio", a.Name)
	if enabled && p.output != nil {
		if err := p.output.Play(); err != nil {
			p.logger.Warn("start playback", "error", err)
		}
	}
	p.publishState()
}

// UpdateSongTitle replaces the title.
func (p *Player) UpdateSongTitle(m bus.UpdateSongTitle) {
	p.mu.Lock()
	p.song.Title = strings.TrimSpace(m.SongTitle)
	p.mu.Unlock()
	p.publishState()
}

// UpdateArtistName replaces the artist.
func (p *Player) UpdateArtistName(m bus.UpdateArtistName) {
	p.mu.Lock()
	p.song.Artist = strings.TrimSpace(m.ArtistName)
	p.mu.Unlock()
	p.publishState()
}

// UpdateAlbumArt loads and verifies new album art. Art that fails to load
// leaves the current art in place.
func (p *Player) UpdateAlbumArt(m bus.UpdateAlbumArt) {
	art, err := p.loadArt(m.ImageURL)
	if err != nil {
		p.logger.Warn("load album art", "url", m.ImageURL, "error", err)
		return
	}
	p.mu.Lock()
	p.song.AlbumArtURL = m.ImageURL
	p.art = &art
	p.mu.Unlock()
	p.publishState()
}

// RemoveAlbumArt reverts to the placeholder.
func (p *Player) RemoveAlbumArt(bus.RemoveAlbumArt) {
	p.mu.Lock()
	p.song.AlbumArtURL = ""
	p.art = nil
	p.mu.Unlock()
	p.publishState()
}

// UpdateLyrics replaces the cue list.
func (p *Player) UpdateLyrics(m bus.UpdateLyrics) {
	if err := m.Validate(); err != nil {
		p.logger.Warn("lyrics rejected", "error", err)
		return
	}
	p.mu.Lock()
	p.song = p.song.WithLyrics(lyrics.Sorted(m.Lyrics))
	p.mu.Unlock()
}

// UpdateLyricsColor sets the lyric color.
func (p *Player) UpdateLyricsColor(m bus.UpdateLyricsColor) {
	c, err := bus.NormalizeColor(m.Color)
	if err != nil {
		p.logger.Warn("lyrics color rejected", "error", err)
		return
	}
	p.mu.Lock()
	p.song.LyricsColor = c
	p.mu.Unlock()
}

// ExportWebM starts an export. The current lyrics and color go with it,
// as does the loaded album art when the request carries none. A request
// that cannot start is answered with EXPORT_ERROR.
func (p *Player) ExportWebM(m bus.ExportWebM) {
	if p.exporter == nil {
		p.bus.Publish(bus.ExportError{Error: "export is not available"})
		return
	}
	req, err := m.Request()
	if err != nil {
		p.bus.Publish(bus.ExportError{Error: err.Error()})
		return
	}

	p.mu.Lock()
	song := p.song
	art := p.art
	ctx := p.ctx
	p.mu.Unlock()

	if !req.HasArtwork() && art != nil {
		cp := *art
		req.AlbumArt = &cp
	}
	req = req.WithLyrics(song.Lyrics, song.LyricsColor)

	id, err := p.exporter.Start(ctx, req)
	if err != nil {
		p.logger.Log(context.Background(), exportLogLevel(err), "export not started", "title", req.Title, "error", err)
		p.bus.Publish(bus.ExportError{Error: err.Error()})
		return
	}
	p.logger.Info("export started", "session", id, "request", req.String())
}

// StopExport ends the running export early.
func (p *Player) StopExport(bus.StopExport) {
	if p.exporter != nil {
		p.exporter.Stop()
	}
}

// TogglePlayback plays or pauses. It is ignored while controls are locked.
func (p *Player) TogglePlayback(bus.TogglePlayback) {
	if !p.ControlsEnabled() || p.output == nil {
		return
	}
	if p.output.Playing() {
		p.Pause()
		return
	}
	if err := p.Resume(); err != nil {
		p.logger.Warn("resume playback", "error", err)
	}
}

// DebugBrowserSupport publishes a CapabilityReport.
func (p *Player) DebugBrowserSupport(bus.DebugBrowserSupport) {
	report := bus.CapabilityReport{}
	if p.exporter == nil {
		report.Error = "export is not available"
		p.bus.Publish(report)
		return
	}

	caps, err := p.exporter.Capabilities(p.context())
	report.FFmpegPath = caps.FFmpegPath
	report.Version = caps.Version
	for _, mime := range media.PreferredMIMETypes {
		report.Types = append(report.Types, bus.MIMESupport{
			MIMEType:  mime,
			Supported: err == nil && caps.IsTypeSupported(mime),
		})
	}
	if err != nil {
		report.Error = err.Error()
	} else if enc, serr := media.SelectMIMEType(caps); serr != nil {
		report.Error = serr.Error()
	} else {
		report.Selected = enc.MIMEType
	}
	p.bus.Publish(report)
}
