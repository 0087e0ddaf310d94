package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/handiism/vinyl-player/internal/logging"
)

const barWidth = 30

// progressPrinter shows export progress. On a terminal it redraws one
// line; otherwise it prints a line per 10% step.
type progressPrinter struct {
	out     io.Writer
	tty     bool
	sampler *logging.ProgressSampler[string]
	drawn   bool
}

func newProgressPrinter(out io.Writer) *progressPrinter {
	return &progressPrinter{
		out:     out,
		tty:     isTerminal(out),
		sampler: logging.NewProgressSampler[string](10),
	}
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func (p *progressPrinter) update(percent float64, message string) {
	if p.tty {
		filled := int(percent / 100 * barWidth)
		filled = min(max(filled, 0), barWidth)
		bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
		fmt.Fprintf(p.out, "\r\033[K%s %3.0f%% %s", bar, percent, message)
		p.drawn = true
		return
	}
	stage, _, _ := strings.Cut(message, " ")
	if p.sampler.Allow(stage, percent) {
		fmt.Fprintf(p.out, "%3.0f%% %s\n", percent, message)
	}
}

// finish ends the progress line so later output starts on a fresh line.
func (p *progressPrinter) finish() {
	if p.tty && p.drawn {
		fmt.Fprintln(p.out)
		p.drawn = false
	}
}
