package history

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/handiism/vinyl-player/internal/lyrics"
)

// Render formats entries as a table for the terminal.
func Render(entries []Entry) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"When", "Title", "Status", "File", "Size", "Length", "Detail"})

	for _, e := range entries {
		detail := e.MIMEType
		if e.Status == StatusFailed {
			detail = e.Error
		}
		size := ""
		if e.Bytes > 0 {
			size = formatBytes(e.Bytes)
		}
		tw.AppendRow(table.Row{
			e.CreatedAt.Format("2006-01-02 15:04"),
			e.Title,
			string(e.Status),
			e.FileName,
			size,
			lyrics.SecondsToTime(e.Elapsed.Seconds()),
			detail,
		})
	}

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 5, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 6, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 7, WidthMax: 48},
	})
	return tw.Render()
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
