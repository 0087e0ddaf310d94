package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/handiism/vinyl-player/internal/app"
	"github.com/handiism/vinyl-player/internal/bus"
)

func newProbeCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Show which WebM formats the recorder supports",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			a := app.New(cmd.Context(), app.Options{Settings: cfg, Logger: ctx.logger(), NoHistory: true})
			defer a.Close()

			reports := a.Bus.Subscribe(bus.KindCapabilityReport)
			a.Bus.Publish(bus.DebugBrowserSupport{})

			waitCtx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			var report bus.CapabilityReport
			select {
			case m := <-reports.C:
				report = m.(bus.CapabilityReport)
			case <-waitCtx.Done():
				return fmt.Errorf("probe: %w", waitCtx.Err())
			}

			out := cmd.OutOrStdout()
			if jsonOut {
				data, err := bus.Encode(report)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, string(data))
				return nil
			}
			printReport(cmd, report)
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the CAPABILITY_REPORT message as JSON")
	return cmd
}

func printReport(cmd *cobra.Command, r bus.CapabilityReport) {
	out := cmd.OutOrStdout()
	if r.FFmpegPath != "" {
		fmt.Fprintf(out, "ffmpeg:   %s\n", r.FFmpegPath)
	}
	if r.Version != "" {
		fmt.Fprintf(out, "version:  %s\n", r.Version)
	}

	rows := make([][]string, 0, len(r.Types))
	for _, t := range r.Types {
		supported := "no"
		if t.Supported {
			supported = "yes"
		}
		rows = append(rows, []string{t.MIMEType, supported})
	}
	fmt.Fprintln(out, renderTable([]string{"MIME type", "Supported"}, rows, []columnAlignment{alignLeft, alignRight}))

	if r.Selected != "" {
		fmt.Fprintf(out, "Exports will use %s\n", r.Selected)
	}
	if r.Error != "" {
		fmt.Fprintf(out, "Recording unavailable: %s\n", r.Error)
	}
}
