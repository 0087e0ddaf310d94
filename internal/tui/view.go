package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/handiism/vinyl-player/internal/export"
	ioutils "github.com/handiism/vinyl-player/internal/io"
	"github.com/handiism/vinyl-player/internal/lyrics"
)

// Styles for the TUI
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B")).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ECDC4"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#95E1A3"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFE66D"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A8DADC"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C757D"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#4ECDC4")).
			Padding(1, 2)

	songStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F8B500"))

	labelStyle = lipgloss.NewStyle().
			Width(14)
)

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	// Header
	b.WriteString(titleStyle.Render("◉ Vinyl Player"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Play a song on the vinyl card and export it as WebM"))
	b.WriteString("\n\n")

	b.WriteString(m.viewPlayer())
	b.WriteString("\n")

	switch m.state {
	case StateEdit:
		b.WriteString(m.viewEdit())
	case StateExporting:
		b.WriteString(m.viewExporting())
	case StateComplete:
		b.WriteString(m.viewComplete())
	case StateError:
		b.WriteString(m.viewError())
	}

	b.WriteString("\n")
	b.WriteString(m.renderLogs())

	// Footer
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.getHelpText()))

	return b.String()
}

func (m Model) viewPlayer() string {
	st := m.player
	if st.Title == "" && st.Duration == 0 {
		return dimStyle.Render("No song loaded") + "\n"
	}
	icon := "▶"
	if !st.Playing {
		icon = "⏸"
	}
	line := fmt.Sprintf("%s %s", icon, st.Title)
	if st.Artist != "" {
		line += " · " + st.Artist
	}
	times := fmt.Sprintf("%s / %s", lyrics.SecondsToTime(st.CurrentTime), lyrics.SecondsToTime(st.Duration))
	out := songStyle.Render(line) + "  " + dimStyle.Render(times)
	if !st.ControlsEnabled {
		out += "  " + warningStyle.Render("controls locked")
	}
	return out + "\n"
}

func (m Model) viewEdit() string {
	var b strings.Builder

	b.WriteString(subtitleStyle.Render("Song:"))
	b.WriteString("\n\n")
	for i, in := range m.inputs {
		label := fieldLabels[i]
		if Field(i) == m.focus {
			label = subtitleStyle.Render("› " + label)
		} else {
			label = "  " + label
		}
		b.WriteString(labelStyle.Render(label))
		b.WriteString(in.View())
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("Output directory: %s", m.settings.OutputDir)))
	b.WriteString("\n")

	return b.String()
}

func (m Model) viewExporting() string {
	var b strings.Builder

	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	b.WriteString(subtitleStyle.Render(m.message))
	b.WriteString("\n\n")
	b.WriteString(m.progress.View())
	b.WriteString("\n")
	b.WriteString(infoStyle.Render(fmt.Sprintf("%.0f%%", m.percent)))
	b.WriteString("\n")

	return b.String()
}

func (m Model) viewComplete() string {
	location := m.path
	if location == "" {
		location = "(kept in memory)"
	}
	return boxStyle.Render(fmt.Sprintf(
		"✨ Export Complete!\n\n"+
			"File: %s\n"+
			"Saved to: %s\n"+
			"Size: %.2f MB",
		m.fileName,
		location,
		float64(m.size)/1024/1024,
	)) + "\n"
}

func (m Model) viewError() string {
	var b strings.Builder

	b.WriteString(errorStyle.Render("❌ Export failed:"))
	b.WriteString("\n\n")
	if m.err != nil {
		b.WriteString(fmt.Sprintf("  %s", m.err.Error()))
	}
	b.WriteString("\n")

	return b.String()
}

func (m Model) renderLogs() string {
	var b strings.Builder

	for _, log := range m.logs {
		var style lipgloss.Style
		prefix := "•"
		switch log.Level {
		case export.LevelError:
			style = errorStyle
			prefix = "✗"
		case export.LevelWarning:
			style = warningStyle
			prefix = "!"
		case export.LevelSuccess:
			style = successStyle
			prefix = "✓"
		case export.LevelInfo:
			style = infoStyle
			prefix = "›"
		default:
			style = dimStyle
		}
		b.WriteString(style.Render(prefix + " " + log.Message))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) getHelpText() string {
	switch m.state {
	case StateEdit:
		return "tab: next field • enter: apply • ctrl+p: play/pause • ctrl+e: export • ctrl+d: formats • esc: quit"
	case StateExporting:
		return "esc: stop and save"
	case StateComplete, StateError:
		return "r: back • q: quit"
	}
	return ""
}

func expand(path string) string {
	return ioutils.ExpandHome(strings.TrimPrefix(path, "file://"))
}

func isRemote(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}
