// Package app wires the player, exporter, bus and history store together
// for the command line entry points.
package app

import (
	"context"
	"log/slog"

	"github.com/handiism/vinyl-player/internal/bus"
	"github.com/handiism/vinyl-player/internal/config"
	"github.com/handiism/vinyl-player/internal/export"
	"github.com/handiism/vinyl-player/internal/history"
	"github.com/handiism/vinyl-player/internal/http"
	"github.com/handiism/vinyl-player/internal/player"
)

// Options configures New.
type Options struct {
	Settings *config.Settings
	Logger   *slog.Logger

	// Output plays the song on screen. Nil runs the player silently.
	Output player.Output

	// Backend overrides the ffmpeg backend.
	Backend *export.Backend

	// NoHistory skips opening the history database.
	NoHistory bool
}

// App is a running player with its exporter.
type App struct {
	Bus      *bus.Bus
	Player   *player.Player
	Exporter *export.Exporter
	History  *history.Store

	logger *slog.Logger
	done   chan struct{}
	cancel context.CancelFunc
}

// New builds the application and starts the player loop. A history
// database that cannot be opened is logged and skipped.
func New(ctx context.Context, opts Options) *App {
	settings := opts.Settings
	if settings == nil {
		settings = config.DefaultSettings()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	a := &App{Bus: bus.New(0), logger: logger, done: make(chan struct{})}

	var recorder player.HistoryRecorder
	if !opts.NoHistory && settings.HistoryPath != "" {
		store, err := history.Open(settings.HistoryPath)
		if err != nil {
			logger.Warn("history disabled", "path", settings.HistoryPath, "error", err)
		} else {
			a.History = store
			recorder = store
		}
	}

	a.Player = player.New(player.Options{
		Bus:          a.Bus,
		Output:       opts.Output,
		Fetcher:      http.NewClient(settings.HTTPOptions()...),
		History:      recorder,
		AssetTimeout: settings.ToExportOptions(nil).AssetTimeout,
		LyricsColor:  settings.LyricsColor,
		Logger:       logger,
	})

	backend := export.FFmpegBackend(settings.FFmpegPath)
	if opts.Backend != nil {
		backend = *opts.Backend
	}
	a.Exporter = export.NewExporter(settings.ToExportOptions(logger), backend, a.Player, a.Player.ExportCallbacks())
	a.Player.SetExporter(a.Exporter)

	runCtx, cancel := context.WithCancel(ctx)
	a.cancel = cancel
	ready := a.Bus.Subscribe(bus.KindPlayerState)
	go func() {
		defer close(a.done)
		if err := a.Player.Run(runCtx); err != nil && runCtx.Err() == nil {
			logger.Error("player stopped", "error", err)
		}
	}()
	// Run publishes its first state once it is subscribed to commands.
	select {
	case <-ready.C:
	case <-ctx.Done():
	}
	a.Bus.Unsubscribe(ready)
	return a
}

// Close stops any export, the player loop and the bus.
func (a *App) Close() error {
	a.Player.Close()
	a.Exporter.Wait()
	a.cancel()
	<-a.done
	if n := a.Bus.Dropped(); n > 0 {
		a.logger.Debug("bus dropped messages for slow subscribers", "count", n)
	}
	a.Bus.Close()
	if a.History != nil {
		return a.History.Close()
	}
	return nil
}
