package player

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/handiism/vinyl-player/internal/bus"
	"github.com/handiism/vinyl-player/internal/export"
	"github.com/handiism/vinyl-player/internal/history"
	ioutils "github.com/handiism/vinyl-player/internal/io"
	"github.com/handiism/vinyl-player/internal/media"
	"github.com/handiism/vinyl-player/internal/model"
)

// Output plays the loaded song. audio.SpeakerOutput is the production
// implementation.
type Output interface {
	Load(a model.Asset) error
	Play() error
	Pause()
	Playing() bool
	Position() float64
	Duration() float64
	Close() error
}

// Exporter records the song to video. *export.Exporter implements it.
type Exporter interface {
	Start(ctx context.Context, req model.ExportRequest) (string, error)
	Stop()
	Exporting() bool
	Capabilities(ctx context.Context) (media.Capabilities, error)
}

// Fetcher downloads http(s) assets. *http.Client implements it.
type Fetcher interface {
	DownloadBytes(ctx context.Context, url string, onProgress func(written, total int64)) ([]byte, error)
}

// HistoryRecorder stores export outcomes. *history.Store implements it.
type HistoryRecorder interface {
	Record(ctx context.Context, e history.Entry) error
}

// Options configures a Player.
type Options struct {
	Bus    *bus.Bus
	Output Output

	// Fetcher resolves http(s) asset URLs. Nil rejects remote assets.
	Fetcher Fetcher

	// History, if set, receives every export outcome.
	History HistoryRecorder

	// AssetTimeout bounds loading one asset.
	AssetTimeout time.Duration

	// LyricsColor is the initial lyric color.
	LyricsColor string

	Logger *slog.Logger
}

// Player is the on-screen player. It consumes command messages from the
// bus, keeps the song state, plays through an Output and hosts exports.
//
// Commands are handled one at a time by Run. The HostPlayer methods are
// safe to call from exporter goroutines.
type Player struct {
	bus     *bus.Bus
	output  Output
	fetcher Fetcher
	history HistoryRecorder
	images  *ioutils.ImageService
	logger  *slog.Logger
	timeout time.Duration

	exporter Exporter

	mu              sync.Mutex
	ctx             context.Context
	song            model.Song
	audio           model.Asset
	art             *model.Asset
	controlsEnabled bool
}

// New creates a player with no song loaded.
func New(opts Options) *Player {
	if opts.Bus == nil {
		opts.Bus = bus.New(0)
	}
	if opts.AssetTimeout <= 0 {
		opts.AssetTimeout = export.DefaultAssetTimeout
	}
	if opts.LyricsColor == "" {
		opts.LyricsColor = model.DefaultLyricsColor
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	return &Player{
		bus:             opts.Bus,
		output:          opts.Output,
		fetcher:         opts.Fetcher,
		history:         opts.History,
		images:          ioutils.NewImageService(),
		logger:          opts.Logger.With("component", "player"),
		timeout:         opts.AssetTimeout,
		ctx:             context.Background(),
		song:            model.Song{LyricsColor: opts.LyricsColor},
		controlsEnabled: true,
	}
}

// SetExporter attaches the exporter. It must be called before Run.
func (p *Player) SetExporter(e Exporter) {
	p.exporter = e
}

// Song returns a copy of the current song state.
func (p *Player) Song() model.Song {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.song.WithLyrics(p.song.Lyrics)
}

// ControlsEnabled reports whether transport controls accept input.
func (p *Player) ControlsEnabled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.controlsEnabled
}

// Run handles commands from the bus until ctx is done or the bus closes.
func (p *Player) Run(ctx context.Context) error {
	p.mu.Lock()
	p.ctx = ctx
	p.mu.Unlock()

	sub := p.bus.Subscribe(commandKinds...)
	defer p.bus.Unsubscribe(sub)

	p.publishState()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case m, ok := <-sub.C:
			if !ok {
				return nil
			}
			bus.Dispatch(p, m)
		}
	}
}

// Close stops a running export and releases the output.
func (p *Player) Close() error {
	if p.exporter != nil {
		p.exporter.Stop()
	}
	if p.output != nil {
		return p.output.Close()
	}
	return nil
}

// Playing reports whether the song is audible.
func (p *Player) Playing() bool {
	return p.output != nil && p.output.Playing()
}

// Pause pauses playback.
func (p *Player) Pause() {
	if p.output == nil {
		return
	}
	p.output.Pause()
	p.publishState()
}

// Resume continues playback.
func (p *Player) Resume() error {
	if p.output == nil {
		return nil
	}
	err := p.output.Play()
	p.publishState()
	return err
}

// SetControlsEnabled locks or unlocks the transport controls.
func (p *Player) SetControlsEnabled(enabled bool) {
	p.mu.Lock()
	p.controlsEnabled = enabled
	p.mu.Unlock()
	p.publishState()
}

// State returns the current PLAYER_STATE snapshot.
func (p *Player) State() bus.PlayerState {
	p.mu.Lock()
	st := bus.PlayerState{
		Title:           p.song.Title,
		Artist:          p.song.Artist,
		ControlsEnabled: p.controlsEnabled,
	}
	p.mu.Unlock()

	if p.output != nil {
		st.Playing = p.output.Playing()
		st.CurrentTime = p.output.Position()
		st.Duration = p.output.Duration()
	}
	if p.exporter != nil {
		st.Exporting = p.exporter.Exporting()
	}
	return st
}

// ExportCallbacks returns callbacks that publish export events on the bus
// and record them in the history.
func (p *Player) ExportCallbacks() export.Callbacks {
	return export.Callbacks{
		OnProgress: func(ev export.ProgressEvent) {
			p.bus.Publish(bus.ExportProgress{Progress: ev.Percent, Message: ev.Message})
		},
		OnComplete: func(r export.Result) {
			p.logger.Info("export complete", "session", r.SessionID, "file", r.FileName, "bytes", len(r.Video), "elapsed", r.Elapsed)
			p.record(history.FromResult(r))
			p.bus.Publish(bus.ExportComplete{VideoBlob: r.Video, FileName: r.FileName, Path: r.Path})
			p.publishState()
		},
		OnError: func(f export.Failure) {
			p.logger.Log(context.Background(), exportLogLevel(f.Err), "export failed", "session", f.SessionID, "error", f.Err)
			p.record(history.FromFailure(f))
			p.bus.Publish(bus.ExportError{Error: f.Err.Error()})
			p.publishState()
		},
	}
}

// exportLogLevel logs faults of the recording pipeline as errors and
// problems with the request or environment as warnings.
func exportLogLevel(err error) slog.Level {
	if export.IsUserError(err) {
		return slog.LevelWarn
	}
	return slog.LevelError
}

func (p *Player) record(e history.Entry) {
	if p.history == nil {
		return
	}
	if err := p.history.Record(context.WithoutCancel(p.context()), e); err != nil {
		p.logger.Warn("record export history", "session", e.ID, "error", err)
	}
}

func (p *Player) context() context.Context {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ctx
}

func (p *Player) publishState() {
	p.bus.Publish(p.State())
}

var commandKinds = []bus.Kind{
	bus.KindStartPlay,
	bus.KindUpdateSongTitle,
	bus.KindUpdateArtistName,
	bus.KindUpdateAlbumArt,
	bus.KindRemoveAlbumArt,
	bus.KindUpdateLyrics,
	bus.KindUpdateLyricsColor,
	bus.KindExportWebM,
	bus.KindStopExport,
	bus.KindTogglePlayback,
	bus.KindDebugBrowserSupport,
}
