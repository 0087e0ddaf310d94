package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/handiism/vinyl-player/internal/app"
	"github.com/handiism/vinyl-player/internal/audio"
	"github.com/handiism/vinyl-player/internal/bus"
	"github.com/handiism/vinyl-player/internal/config"
	ioutils "github.com/handiism/vinyl-player/internal/io"
	"github.com/handiism/vinyl-player/internal/lyrics"
	"github.com/handiism/vinyl-player/internal/model"
)

type exportFlags struct {
	title      string
	artist     string
	art        string
	lyrics     string
	color      string
	output     string
	nameFormat string
	ffmpeg     string
	timeout    time.Duration
	width      int
	height     int
	noHistory  bool
	noTags     bool
}

func newExportCommand(ctx *commandContext) *cobra.Command {
	var flags exportFlags

	cmd := &cobra.Command{
		Use:   "export <audio-file>",
		Short: "Record the vinyl card for a song to a WebM video",
		Long: "Record the vinyl player card while the song plays and save it as WebM.\n" +
			"Title, artist, album art and synchronized lyrics are read from the file's\n" +
			"ID3 tags when not given as flags.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			settings := flags.apply(*cfg)
			return runExport(cmd, ctx, &settings, flags, args[0])
		},
	}

	f := cmd.Flags()
	f.StringVarP(&flags.title, "title", "t", "", "Song title (default: from tags or file name)")
	f.StringVarP(&flags.artist, "artist", "a", "", "Artist name (default: from tags)")
	f.StringVar(&flags.art, "art", "", "Album art image (default: embedded cover)")
	f.StringVar(&flags.lyrics, "lyrics", "", "Lyrics JSON file")
	f.StringVar(&flags.color, "lyrics-color", "", "Lyrics color as #rrggbb")
	f.StringVarP(&flags.output, "output", "o", "", "Output directory (overrides config)")
	f.StringVar(&flags.nameFormat, "name-format", "", "File name format, e.g. \"{artist} - {title}\"")
	f.StringVar(&flags.ffmpeg, "ffmpeg", "", "Path to the ffmpeg binary")
	f.DurationVar(&flags.timeout, "timeout", 0, "Abort the export after this long")
	f.IntVar(&flags.width, "width", 0, "Canvas width in pixels")
	f.IntVar(&flags.height, "height", 0, "Canvas height in pixels")
	f.BoolVar(&flags.noHistory, "no-history", false, "Do not record the export in the history")
	f.BoolVar(&flags.noTags, "no-tags", false, "Ignore ID3 tags")
	return cmd
}

// apply returns a copy of s with the flag overrides.
func (f exportFlags) apply(s config.Settings) config.Settings {
	if f.output != "" {
		s.OutputDir = ioutils.ExpandHome(f.output)
	}
	if f.nameFormat != "" {
		s.FileNameFormat = f.nameFormat
	}
	if f.ffmpeg != "" {
		s.FFmpegPath = f.ffmpeg
	}
	if f.timeout > 0 {
		s.ExportTimeoutSeconds = int(f.timeout.Round(time.Second) / time.Second)
	}
	if f.width > 0 {
		s.DefaultWidth = f.width
	}
	if f.height > 0 {
		s.DefaultHeight = f.height
	}
	return s
}

func runExport(cmd *cobra.Command, cctx *commandContext, settings *config.Settings, flags exportFlags, audioPath string) error {
	out := cmd.OutOrStdout()
	logger := cctx.logger()

	req, err := buildExport(settings, flags, audioPath)
	if err != nil {
		return err
	}

	// The player keeps running after an interrupt so the partial video can
	// be finalized.
	a := app.New(context.WithoutCancel(cmd.Context()), app.Options{
		Settings:  settings,
		Logger:    logger,
		NoHistory: flags.noHistory,
	})
	defer a.Close()

	events := a.Bus.Subscribe(bus.KindExportProgress, bus.KindExportComplete, bus.KindExportError)
	for _, m := range req.setup {
		a.Bus.Publish(m)
	}
	a.Bus.Publish(req.export)

	fmt.Fprintf(out, "Exporting %q\n", req.export.SongTitle)
	printer := newProgressPrinter(out)
	interrupted := cmd.Context().Done()
	for {
		select {
		case <-interrupted:
			interrupted = nil
			printer.finish()
			fmt.Fprintln(out, "Interrupted, saving what was recorded...")
			a.Bus.Publish(bus.StopExport{})

		case m := <-events.C:
			switch ev := m.(type) {
			case bus.ExportProgress:
				printer.update(ev.Progress, ev.Message)
			case bus.ExportComplete:
				printer.finish()
				where := ev.Path
				if where == "" {
					where = ev.FileName + " (no output directory set, not written)"
				}
				fmt.Fprintf(out, "Saved %s (%.2f MB)\n", where, float64(len(ev.VideoBlob))/1024/1024)
				return nil
			case bus.ExportError:
				printer.finish()
				return errors.New(ev.Error)
			}
		}
	}
}

type exportJob struct {
	setup  []bus.Message
	export bus.ExportWebM
}

// buildExport reads the assets and turns flags and tags into bus messages.
func buildExport(settings *config.Settings, flags exportFlags, audioPath string) (exportJob, error) {
	var job exportJob

	a, err := model.LoadAsset(ioutils.ExpandHome(audioPath))
	if err != nil {
		return job, fmt.Errorf("read audio: %w", err)
	}

	var meta audio.Metadata
	if !flags.noTags {
		// Untagged and non-MP3 files simply have no metadata.
		meta, _ = audio.ReadMetadata(a)
	}

	title := firstNonEmpty(flags.title, meta.Title, strings.TrimSuffix(a.Name, a.Ext()))
	artist := firstNonEmpty(flags.artist, meta.Artist)
	job.export = bus.ExportWebM{AudioFile: a, SongTitle: title, ArtistName: artist}

	switch {
	case flags.art != "":
		art, err := model.LoadAsset(ioutils.ExpandHome(flags.art))
		if err != nil {
			return job, fmt.Errorf("read album art: %w", err)
		}
		job.export.AlbumArtFile = &art
	case meta.Cover != nil:
		job.export.AlbumArtFile = meta.Cover
	}

	cues := meta.Cues
	if flags.lyrics != "" {
		cues, err = lyrics.LoadFile(ioutils.ExpandHome(flags.lyrics))
		if err != nil {
			return job, err
		}
	}
	if len(cues) > 0 {
		msg := bus.UpdateLyrics{Lyrics: lyrics.Sorted(cues)}
		if err := msg.Validate(); err != nil {
			return job, fmt.Errorf("lyrics: %w", err)
		}
		job.setup = append(job.setup, msg)
	}

	color := firstNonEmpty(flags.color, settings.LyricsColor)
	if _, err := bus.NormalizeColor(color); err != nil {
		return job, err
	}
	job.setup = append(job.setup, bus.UpdateLyricsColor{Color: color})
	return job, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
