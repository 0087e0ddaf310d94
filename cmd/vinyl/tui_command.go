package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/handiism/vinyl-player/internal/app"
	"github.com/handiism/vinyl-player/internal/audio"
	"github.com/handiism/vinyl-player/internal/logging"
	"github.com/handiism/vinyl-player/internal/tui"
)

func newTUICommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive control panel",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			a := app.New(cmd.Context(), app.Options{
				Settings: cfg,
				Logger:   fileLogger(cfg.LogFile, cfg.LogLevel, cfg.LogFormat),
				Output:   audio.NewSpeakerOutput(),
			})
			defer a.Close()
			return tui.Run(cmd.Context(), a.Bus, cfg)
		},
	}
}

// fileLogger logs to path only, since console output would draw over the
// full-screen UI. Without a path nothing is logged.
func fileLogger(path, level, format string) *slog.Logger {
	if path == "" {
		return logging.NewNop()
	}
	logger, err := logging.New(logging.Options{Level: level, Format: format, OutputPaths: []string{path}})
	if err != nil {
		return logging.NewNop()
	}
	return logger
}
