package config

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/handiism/vinyl-player/internal/bus"
	"github.com/handiism/vinyl-player/internal/export"
	vhttp "github.com/handiism/vinyl-player/internal/http"
	ioutils "github.com/handiism/vinyl-player/internal/io"
	"github.com/handiism/vinyl-player/internal/logging"
	"github.com/handiism/vinyl-player/internal/model"
	"github.com/handiism/vinyl-player/internal/render"
)

// Settings holds all configuration options.
type Settings struct {
	// Output settings
	OutputDir      string `toml:"output_dir"`
	FileNameFormat string `toml:"file_name_format"`
	HistoryPath    string `toml:"history_path"`

	// Recorder settings
	FFmpegPath   string `toml:"ffmpeg_path"`
	CaptureFPS   int    `toml:"capture_fps"`
	RenderFPS    int    `toml:"render_fps"`
	VideoBitrate string `toml:"video_bitrate"`
	AudioBitrate string `toml:"audio_bitrate"`

	// Timing
	ProgressIntervalMs     int     `toml:"progress_interval_ms"`
	AssetTimeoutSeconds    int     `toml:"asset_timeout_seconds"`
	ExportTimeoutSeconds   int     `toml:"export_timeout_seconds"`
	RotationSpeedDegPerMs  float64 `toml:"rotation_speed_deg_per_ms"`
	FinalizeTimeoutSeconds int     `toml:"finalize_timeout_seconds"`

	// Canvas size
	DefaultWidth  int `toml:"default_width"`
	DefaultHeight int `toml:"default_height"`
	MinWidth      int `toml:"min_width"`
	MinHeight     int `toml:"min_height"`

	// Player
	LyricsColor       string `toml:"lyrics_color"`
	MaxAssetMegabytes int    `toml:"max_asset_megabytes"`

	// Logging
	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`
	LogFile   string `toml:"log_file"`

	// Layout overrides individual fields of the default player card.
	Layout render.Layout `toml:"layout"`
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	homeDir, _ := os.UserHomeDir()
	return &Settings{
		OutputDir:      filepath.Join(homeDir, "Videos", "Vinyl"),
		FileNameFormat: "{title}",
		HistoryPath:    filepath.Join(homeDir, ".local", "share", "vinyl-player", "history.db"),

		CaptureFPS:   export.DefaultCaptureFPS,
		RenderFPS:    export.DefaultRenderFPS,
		VideoBitrate: "2500k",
		AudioBitrate: "128k",

		ProgressIntervalMs:     int(export.DefaultProgressInterval / time.Millisecond),
		AssetTimeoutSeconds:    int(export.DefaultAssetTimeout / time.Second),
		ExportTimeoutSeconds:   int(export.DefaultExportTimeout / time.Second),
		RotationSpeedDegPerMs:  render.DefaultRotationSpeed,
		FinalizeTimeoutSeconds: int(export.DefaultFinalizeTimeout / time.Second),

		DefaultWidth:  export.DefaultCanvasSize.X,
		DefaultHeight: export.DefaultCanvasSize.Y,
		MinWidth:      export.MinCanvasSize.X,
		MinHeight:     export.MinCanvasSize.Y,

		LyricsColor:       model.DefaultLyricsColor,
		MaxAssetMegabytes: int(vhttp.DefaultMaxSize >> 20),

		LogLevel:  "info",
		LogFormat: "console",

		Layout: render.DefaultLayout(),
	}
}

// HTTPOptions returns the client options for fetching remote assets.
func (s *Settings) HTTPOptions() []vhttp.Option {
	return []vhttp.Option{
		vhttp.WithTimeout(time.Duration(s.AssetTimeoutSeconds) * time.Second),
		vhttp.WithMaxSize(int64(s.MaxAssetMegabytes) << 20),
	}
}

// DefaultPath returns the default configuration file location.
func DefaultPath() string {
	return ioutils.ExpandHome("~/.config/vinyl-player/config.toml")
}

// Load reads settings from a TOML file. Keys missing from the file keep
// their default values, and a missing file yields the defaults.
func Load(path string) (*Settings, error) {
	settings := DefaultSettings()

	data, err := os.ReadFile(ioutils.ExpandHome(path))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return settings, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(settings); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return nil, fmt.Errorf("parse config: %s", strict.String())
		}
		return nil, fmt.Errorf("parse config: %w", err)
	}

	settings.normalize()
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return settings, nil
}

// Save writes settings to a TOML file.
func (s *Settings) Save(path string) error {
	path = ioutils.ExpandHome(path)
	if err := ioutils.EnsureDir(filepath.Dir(path)); err != nil {
		return err
	}

	data, err := toml.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

func (s *Settings) normalize() {
	s.OutputDir = ioutils.ExpandHome(strings.TrimSpace(s.OutputDir))
	s.HistoryPath = ioutils.ExpandHome(strings.TrimSpace(s.HistoryPath))
	s.FFmpegPath = ioutils.ExpandHome(strings.TrimSpace(s.FFmpegPath))
	s.LogFile = ioutils.ExpandHome(strings.TrimSpace(s.LogFile))
	s.LogLevel = strings.ToLower(strings.TrimSpace(s.LogLevel))
	s.LogFormat = strings.ToLower(strings.TrimSpace(s.LogFormat))
	if c, err := bus.NormalizeColor(s.LyricsColor); err == nil {
		s.LyricsColor = c
	}
}

// Validate reports every invalid setting.
func (s *Settings) Validate() error {
	var errs []error
	positive := []struct {
		name  string
		value int
	}{
		{"capture_fps", s.CaptureFPS},
		{"render_fps", s.RenderFPS},
		{"progress_interval_ms", s.ProgressIntervalMs},
		{"asset_timeout_seconds", s.AssetTimeoutSeconds},
		{"export_timeout_seconds", s.ExportTimeoutSeconds},
		{"finalize_timeout_seconds", s.FinalizeTimeoutSeconds},
		{"default_width", s.DefaultWidth},
		{"default_height", s.DefaultHeight},
		{"min_width", s.MinWidth},
		{"min_height", s.MinHeight},
		{"max_asset_megabytes", s.MaxAssetMegabytes},
	}
	for _, p := range positive {
		if p.value <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %d", p.name, p.value))
		}
	}
	if s.CaptureFPS > 120 {
		errs = append(errs, fmt.Errorf("capture_fps must be at most 120, got %d", s.CaptureFPS))
	}
	if s.RotationSpeedDegPerMs <= 0 {
		errs = append(errs, fmt.Errorf("rotation_speed_deg_per_ms must be positive, got %v", s.RotationSpeedDegPerMs))
	}
	if s.MinWidth > s.DefaultWidth || s.MinHeight > s.DefaultHeight {
		errs = append(errs, errors.New("min canvas size must not exceed the default canvas size"))
	}
	if _, err := bus.NormalizeColor(s.LyricsColor); err != nil {
		errs = append(errs, fmt.Errorf("lyrics_color: %w", err))
	}
	if s.LogLevel != "" && !slices.Contains([]string{"debug", "info", "warn", "warning", "error"}, s.LogLevel) {
		errs = append(errs, fmt.Errorf("log_level %q is not one of debug, info, warn, error", s.LogLevel))
	}
	if s.LogFormat != "" && s.LogFormat != "console" && s.LogFormat != "json" {
		errs = append(errs, fmt.Errorf("log_format %q must be console or json", s.LogFormat))
	}
	if err := s.Layout.Validate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// ToExportOptions converts settings to exporter options.
func (s *Settings) ToExportOptions(logger *slog.Logger) export.Options {
	return export.Options{
		OutputDir:        s.OutputDir,
		Names:            model.NameConfig{FileNameFormat: s.FileNameFormat},
		DefaultSize:      image.Pt(s.DefaultWidth, s.DefaultHeight),
		MinSize:          image.Pt(s.MinWidth, s.MinHeight),
		CaptureFPS:       s.CaptureFPS,
		RenderFPS:        s.RenderFPS,
		ProgressInterval: time.Duration(s.ProgressIntervalMs) * time.Millisecond,
		AssetTimeout:     time.Duration(s.AssetTimeoutSeconds) * time.Second,
		ExportTimeout:    time.Duration(s.ExportTimeoutSeconds) * time.Second,
		FinalizeTimeout:  time.Duration(s.FinalizeTimeoutSeconds) * time.Second,
		RotationSpeed:    s.RotationSpeedDegPerMs,
		VideoBitrate:     s.VideoBitrate,
		AudioBitrate:     s.AudioBitrate,
		Layout:           s.Layout,
		Logger:           logger,
	}
}

// ToLoggingOptions converts settings to logger options.
func (s *Settings) ToLoggingOptions() logging.Options {
	opts := logging.Options{Level: s.LogLevel, Format: s.LogFormat}
	if s.LogFile != "" {
		opts.OutputPaths = []string{"stderr", s.LogFile}
	}
	return opts
}
