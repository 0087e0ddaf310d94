package export

import (
	"image"
	"log/slog"
	"time"

	"github.com/handiism/vinyl-player/internal/model"
	"github.com/handiism/vinyl-player/internal/render"
)

// Default export settings.
const (
	DefaultCaptureFPS      = 30
	DefaultRenderFPS       = 60
	DefaultAssetTimeout    = 10 * time.Second
	DefaultFinalizeTimeout = 30 * time.Second
)

// Options configures an Exporter.
type Options struct {
	// OutputDir is where finished videos are written. Empty keeps the video
	// in memory only; it is still delivered in Result.Video.
	OutputDir string

	// Names formats the output file name.
	Names model.NameConfig

	// Size lists canvas size candidates; DefaultSize and MinSize bound the
	// result. See CanvasSize.
	Size        SizeHints
	DefaultSize image.Point
	MinSize     image.Point

	// CaptureFPS is the recorded video frame rate. RenderFPS is the rate of
	// the render loop.
	CaptureFPS int
	RenderFPS  int

	// ProgressInterval is the progress polling period.
	ProgressInterval time.Duration

	// AssetTimeout bounds album art and audio loading.
	AssetTimeout time.Duration

	// ExportTimeout bounds the whole recording.
	ExportTimeout time.Duration

	// FinalizeTimeout bounds how long the recorder may take to flush after
	// it is stopped.
	FinalizeTimeout time.Duration

	// RotationSpeed is the vinyl speed in degrees per millisecond.
	RotationSpeed float64

	// VideoBitrate and AudioBitrate are passed to the recorder.
	VideoBitrate string
	AudioBitrate string

	// Layout is the player card geometry. A zero Layout selects
	// render.DefaultLayout.
	Layout render.Layout

	Logger *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.DefaultSize.X <= 0 || o.DefaultSize.Y <= 0 {
		o.DefaultSize = DefaultCanvasSize
	}
	if o.MinSize.X <= 0 || o.MinSize.Y <= 0 {
		o.MinSize = MinCanvasSize
	}
	if o.CaptureFPS <= 0 {
		o.CaptureFPS = DefaultCaptureFPS
	}
	if o.RenderFPS <= 0 {
		o.RenderFPS = DefaultRenderFPS
	}
	if o.ProgressInterval <= 0 {
		o.ProgressInterval = DefaultProgressInterval
	}
	if o.AssetTimeout <= 0 {
		o.AssetTimeout = DefaultAssetTimeout
	}
	if o.ExportTimeout <= 0 {
		o.ExportTimeout = DefaultExportTimeout
	}
	if o.FinalizeTimeout <= 0 {
		o.FinalizeTimeout = DefaultFinalizeTimeout
	}
	if o.RotationSpeed <= 0 {
		o.RotationSpeed = render.DefaultRotationSpeed
	}
	if o.Layout == (render.Layout{}) {
		o.Layout = render.DefaultLayout()
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.DiscardHandler)
	}
	return o
}
