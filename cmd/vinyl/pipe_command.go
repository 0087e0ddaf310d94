package main

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/spf13/cobra"

	"github.com/handiism/vinyl-player/internal/app"
	"github.com/handiism/vinyl-player/internal/bus"
)

// maxPipeLine bounds one command line. EXPORT_WEBM carries the audio file
// inline, base64 encoded.
const maxPipeLine = 256 << 20

var pipeEvents = []bus.Kind{
	bus.KindExportProgress,
	bus.KindExportComplete,
	bus.KindExportError,
	bus.KindCapabilityReport,
	bus.KindPlayerState,
}

func newPipeCommand(ctx *commandContext) *cobra.Command {
	var includeVideo bool

	cmd := &cobra.Command{
		Use:   "pipe",
		Short: "Drive the player with JSON lines on stdin",
		Long: "Read one {\"type\": ..., \"payload\": ...} command per line from stdin and\n" +
			"write every player event to stdout in the same format. Commands are applied\n" +
			"in order. When stdin ends, a running export is allowed to finish.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger := ctx.logger()
			a := app.New(cmd.Context(), app.Options{Settings: cfg, Logger: logger})
			defer a.Close()
			return runPipe(cmd, a, logger, includeVideo)
		},
	}
	cmd.Flags().BoolVar(&includeVideo, "include-video", false, "Include the video bytes in EXPORT_COMPLETE")
	return cmd
}

func runPipe(cmd *cobra.Command, a *app.App, logger *slog.Logger, includeVideo bool) error {
	events := a.Bus.Subscribe(pipeEvents...)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		writeEvents(cmd.OutOrStdout(), events.C, includeVideo, func(err error) {
			logger.Warn("encode event", "error", err)
		})
	}()

	lines := make(chan []byte)
	readErr := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(cmd.InOrStdin())
		scanner.Buffer(make([]byte, 0, 64<<10), maxPipeLine)
		for scanner.Scan() {
			line := append([]byte(nil), scanner.Bytes()...)
			select {
			case lines <- line:
			case <-cmd.Context().Done():
				return
			}
		}
		readErr <- scanner.Err()
	}()

	var total, rejected int
	var inputErr error
loop:
	for {
		select {
		case <-cmd.Context().Done():
			a.Player.StopExport(bus.StopExport{})
			break loop
		case inputErr = <-readErr:
			break loop
		case line := <-lines:
			if len(line) == 0 {
				continue
			}
			total++
			if err := applyCommand(a.Player, line); err != nil {
				rejected++
				logger.Warn("command rejected", "line", total, "error", err)
			}
		}
	}

	a.Exporter.Wait()
	a.Bus.Unsubscribe(events)
	wg.Wait()

	if inputErr != nil {
		return fmt.Errorf("read commands: %w", inputErr)
	}
	if rejected > 0 {
		return fmt.Errorf("%d of %d commands rejected", rejected, total)
	}
	return nil
}

// applyCommand decodes one envelope and hands it to the player.
func applyCommand(h bus.CommandHandler, line []byte) error {
	m, err := bus.Decode(line)
	if err != nil {
		return err
	}
	if !bus.Dispatch(h, m) {
		return fmt.Errorf("%s is an event, not a command", m.Kind())
	}
	return nil
}

// writeEvents writes each message as one JSON line until ch is closed.
func writeEvents(out io.Writer, ch <-chan bus.Message, includeVideo bool, onErr func(error)) {
	w := bufio.NewWriter(out)
	defer w.Flush()
	for m := range ch {
		if done, ok := m.(bus.ExportComplete); ok && !includeVideo {
			done.VideoBlob = nil
			m = done
		}
		data, err := bus.Encode(m)
		if err != nil {
			onErr(err)
			continue
		}
		w.Write(data)
		w.WriteByte('\n')
		if len(ch) == 0 {
			w.Flush()
		}
	}
}
