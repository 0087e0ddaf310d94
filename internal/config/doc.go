// Package config provides configuration management for vinyl-player.
//
// This package handles:
//   - Loading and saving settings from TOML files
//   - Default configuration values
//   - Conversion to export.Options and logging.Options for other packages
//
// # Default Settings
//
// Use DefaultSettings() to get sensible defaults:
//
//	settings := config.DefaultSettings()
//	// Exports to ~/Videos/Vinyl/{title}.webm
//	// 30 fps capture, 720x1280 canvas
//
// # Loading from File
//
//	settings, err := config.Load(config.DefaultPath())
//	if err != nil {
//	    // The file exists but is malformed or invalid
//	}
//
// A missing file is not an error; the defaults are returned. Keys absent
// from the file keep their defaults, including single fields of the
// [layout] table:
//
//	output_dir = "~/Videos/Vinyl"
//	capture_fps = 30
//	lyrics_color = "#ffcc00"
//
//	[layout]
//	disc_radius = 0.42
//	card = "#1a1a2e"
//
// # Saving Settings
//
//	settings.OutputDir = "/srv/videos"
//	err := settings.Save(config.DefaultPath())
package config
