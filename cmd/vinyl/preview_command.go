package main

import (
	"fmt"
	"image"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	ioutils "github.com/handiism/vinyl-player/internal/io"
	"github.com/handiism/vinyl-player/internal/lyrics"
	"github.com/handiism/vinyl-player/internal/render"
)

type stillPlayback struct {
	current  float64
	duration float64
}

func (p stillPlayback) CurrentTime() float64 { return p.current }
func (p stillPlayback) Duration() float64    { return p.duration }
func (p stillPlayback) Paused() bool         { return false }

func newPreviewCommand(ctx *commandContext) *cobra.Command {
	var (
		title, artist, artPath, lyricsPath, color, outPath string
		at, length                                         time.Duration
		width, height                                      int
	)

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Render a single frame of the player card to a JPEG",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if width <= 0 {
				width = cfg.DefaultWidth
			}
			if height <= 0 {
				height = cfg.DefaultHeight
			}
			if color == "" {
				color = cfg.LyricsColor
			}

			renderer, err := render.NewRenderer(cfg.Layout)
			if err != nil {
				return err
			}
			defer renderer.Close()

			images := ioutils.NewImageService()
			scene := render.Scene{
				Rotation:    render.Angle(float64(at.Milliseconds()), cfg.RotationSpeedDegPerMs),
				Playback:    stillPlayback{current: at.Seconds(), duration: length.Seconds()},
				LyricsColor: color,
				Title:       title,
				Artist:      artist,
			}
			if artPath != "" {
				data, err := os.ReadFile(ioutils.ExpandHome(artPath))
				if err != nil {
					return fmt.Errorf("read album art: %w", err)
				}
				art, err := images.LoadArt(cmd.Context(), data, cfg.Layout.LabelDiameter(width))
				if err != nil {
					return fmt.Errorf("album art: %w", err)
				}
				scene.Art = art
			}
			if lyricsPath != "" {
				cues, err := lyrics.LoadFile(ioutils.ExpandHome(lyricsPath))
				if err != nil {
					return err
				}
				scene.Lyrics = lyrics.Sorted(cues)
			}

			img := image.NewRGBA(image.Rect(0, 0, width, height))
			renderer.RenderImage(img, scene)

			data, err := images.EncodeThumbnail(cmd.Context(), img, width, height)
			if err != nil {
				return err
			}
			if outPath == "" {
				name := strings.TrimSuffix(ioutils.SanitizeFileName(title), " ")
				if name == "" {
					name = "preview"
				}
				outPath = name + ".jpg"
			}
			if err := ioutils.WriteFile(cmd.Context(), ioutils.ExpandHome(outPath), data); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%dx%d)\n", outPath, width, height)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&title, "title", "t", "Untitled", "Song title")
	f.StringVarP(&artist, "artist", "a", "", "Artist name")
	f.StringVar(&artPath, "art", "", "Album art image")
	f.StringVar(&lyricsPath, "lyrics", "", "Lyrics JSON file")
	f.StringVar(&color, "lyrics-color", "", "Lyrics color as #rrggbb")
	f.StringVarP(&outPath, "out", "o", "", "Output JPEG path (default: <title>.jpg)")
	f.DurationVar(&at, "at", 30*time.Second, "Playback position to draw")
	f.DurationVar(&length, "length", 3*time.Minute, "Song length to draw")
	f.IntVar(&width, "width", 0, "Width in pixels")
	f.IntVar(&height, "height", 0, "Height in pixels")
	return cmd
}
