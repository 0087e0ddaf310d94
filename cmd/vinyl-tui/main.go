package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/handiism/vinyl-player/internal/app"
	"github.com/handiism/vinyl-player/internal/audio"
	"github.com/handiism/vinyl-player/internal/config"
	"github.com/handiism/vinyl-player/internal/tui"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	settings, err := config.Load(config.DefaultPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	a := app.New(ctx, app.Options{Settings: settings, Output: audio.NewSpeakerOutput()})
	err = tui.Run(ctx, a.Bus, settings)
	a.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
