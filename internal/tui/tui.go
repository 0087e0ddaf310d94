// Package tui provides the Bubble Tea control panel for vinyl-player.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/handiism/vinyl-player/internal/bus"
	"github.com/handiism/vinyl-player/internal/config"
	"github.com/handiism/vinyl-player/internal/export"
	"github.com/handiism/vinyl-player/internal/lyrics"
	"github.com/handiism/vinyl-player/internal/model"
)

// State represents the current UI state.
type State int

const (
	StateEdit State = iota
	StateExporting
	StateComplete
	StateError
)

// Field indexes the control panel inputs.
type Field int

const (
	FieldAudio Field = iota
	FieldArt
	FieldTitle
	FieldArtist
	FieldLyrics
	FieldColor
	fieldCount
)

var fieldLabels = [fieldCount]string{
	FieldAudio:  "Audio",
	FieldArt:    "Album art",
	FieldTitle:  "Title",
	FieldArtist: "Artist",
	FieldLyrics: "Lyrics JSON",
	FieldColor:  "Lyrics color",
}

// LogEntry represents a log message in the UI.
type LogEntry struct {
	Message string
	Level   export.ProgressLevel
}

// Model is the Bubble Tea model for the control panel.
type Model struct {
	state    State
	inputs   []textinput.Model
	focus    Field
	spinner  spinner.Model
	progress progress.Model
	settings *config.Settings
	logs     []LogEntry
	err      error

	bus *bus.Bus
	sub *bus.Subscription

	player   bus.PlayerState
	percent  float64
	message  string
	fileName string
	path     string
	size     int

	width  int
	height int
}

// NewModel creates a control panel that talks to the player over b.
func NewModel(b *bus.Bus, settings *config.Settings) Model {
	if settings == nil {
		settings = config.DefaultSettings()
	}

	inputs := make([]textinput.Model, fieldCount)
	placeholders := [fieldCount]string{
		FieldAudio:  "~/Music/song.mp3 or https://...",
		FieldArt:    "~/Pictures/cover.jpg (optional)",
		FieldTitle:  "Song title",
		FieldArtist: "Artist name (optional)",
		FieldLyrics: "~/lyrics.json (optional)",
		FieldColor:  settings.LyricsColor,
	}
	for i := range inputs {
		ti := textinput.New()
		ti.Placeholder = placeholders[i]
		ti.CharLimit = 500
		ti.Width = 60
		inputs[i] = ti
	}
	inputs[FieldAudio].Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 50

	return Model{
		state:    StateEdit,
		inputs:   inputs,
		spinner:  sp,
		progress: prog,
		settings: settings,
		bus:      b,
		sub: b.Subscribe(bus.KindExportProgress, bus.KindExportComplete, bus.KindExportError,
			bus.KindCapabilityReport, bus.KindPlayerState),
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick, waitForEvent(m.sub))
}

// Message types
type (
	// BusMsg carries an event published by the player.
	BusMsg struct {
		Message bus.Message
	}

	// busClosedMsg is sent when the subscription ends.
	busClosedMsg struct{}

	// ErrMsg reports a local failure, such as an unreadable lyrics file.
	ErrMsg struct {
		Err error
	}

	// SentMsg confirms a command was published.
	SentMsg struct {
		Kind bus.Kind
	}
)

func waitForEvent(sub *bus.Subscription) tea.Cmd {
	return func() tea.Msg {
		m, ok := <-sub.C
		if !ok {
			return busClosedMsg{}
		}
		return BusMsg{Message: m}
	}
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = msg.Width - 20
		if m.progress.Width > 80 {
			m.progress.Width = 80
		}
		if m.progress.Width < 20 {
			m.progress.Width = 20
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, m.quit()

		case "esc":
			switch m.state {
			case StateEdit:
				return m, m.quit()
			case StateExporting:
				m.addLog("Stopping export...", export.LevelWarning)
				return m, m.send(bus.StopExport{})
			}

		case "tab", "down":
			if m.state == StateEdit {
				m.setFocus((m.focus + 1) % fieldCount)
			}
			return m, nil

		case "shift+tab", "up":
			if m.state == StateEdit {
				m.setFocus((m.focus + fieldCount - 1) % fieldCount)
			}
			return m, nil

		case "enter":
			if m.state == StateEdit {
				return m, m.applyField(m.focus)
			}

		case "ctrl+p":
			return m, m.send(bus.TogglePlayback{})

		case "ctrl+e":
			if m.state == StateEdit && m.value(FieldAudio) != "" {
				m.state = StateExporting
				m.percent = 0
				m.message = "Preparing export"
				m.err = nil
				return m, tea.Batch(m.exportCmd(), m.spinner.Tick, m.progress.SetPercent(0))
			}

		case "ctrl+d":
			return m, m.send(bus.DebugBrowserSupport{})

		case "q":
			if m.state == StateComplete || m.state == StateError {
				return m, m.quit()
			}

		case "r":
			if m.state == StateComplete || m.state == StateError {
				m.state = StateEdit
				m.err = nil
				m.fileName, m.path, m.size = "", "", 0
				m.setFocus(FieldAudio)
				return m, nil
			}
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case BusMsg:
		cmds = append(cmds, m.handleEvent(msg.Message), waitForEvent(m.sub))

	case busClosedMsg:
		return m, tea.Quit

	case ErrMsg:
		if m.state == StateExporting {
			m.state = StateError
			m.err = msg.Err
		} else {
			m.addLog(msg.Err.Error(), export.LevelError)
		}

	case SentMsg:
		m.addLog(fmt.Sprintf("Sent %s", msg.Kind), export.LevelVerbose)

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		cmds = append(cmds, cmd)
	}

	// Update the focused input
	if m.state == StateEdit {
		var cmd tea.Cmd
		m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) handleEvent(ev bus.Message) tea.Cmd {
	switch ev := ev.(type) {
	case bus.PlayerState:
		m.player = ev

	case bus.ExportProgress:
		if m.state != StateExporting {
			return nil
		}
		m.percent = ev.Progress
		m.message = ev.Message
		return m.progress.SetPercent(ev.Progress / 100)

	case bus.ExportComplete:
		m.state = StateComplete
		m.percent = 100
		m.fileName = ev.FileName
		m.path = ev.Path
		m.size = len(ev.VideoBlob)
		m.addLog("Saved "+ev.FileName, export.LevelSuccess)

	case bus.ExportError:
		m.err = fmt.Errorf("%s", ev.Error)
		if m.state == StateExporting {
			m.state = StateError
		} else {
			m.addLog(ev.Error, export.LevelError)
		}

	case bus.CapabilityReport:
		if ev.FFmpegPath != "" {
			m.addLog(fmt.Sprintf("ffmpeg %s at %s", ev.Version, ev.FFmpegPath), export.LevelInfo)
		}
		for _, t := range ev.Types {
			level := export.LevelWarning
			if t.Supported {
				level = export.LevelSuccess
			}
			m.addLog(t.MIMEType, level)
		}
		if ev.Selected != "" {
			m.addLog("Recording as "+ev.Selected, export.LevelInfo)
		}
		if ev.Error != "" {
			m.addLog(ev.Error, export.LevelError)
		}
	}
	return nil
}

func (m *Model) addLog(msg string, level export.ProgressLevel) {
	m.logs = append(m.logs, LogEntry{Message: msg, Level: level})
	// Keep only last 10 logs
	if len(m.logs) > 10 {
		m.logs = m.logs[len(m.logs)-10:]
	}
}

func (m *Model) setFocus(f Field) {
	m.inputs[m.focus].Blur()
	m.focus = f
	m.inputs[f].Focus()
}

func (m Model) value(f Field) string {
	return strings.TrimSpace(m.inputs[f].Value())
}

func (m Model) quit() tea.Cmd {
	m.bus.Unsubscribe(m.sub)
	return tea.Quit
}

// send publishes a command to the player.
func (m Model) send(msg bus.Message) tea.Cmd {
	b := m.bus
	return func() tea.Msg {
		b.Publish(msg)
		return SentMsg{Kind: msg.Kind()}
	}
}

// applyField sends the command matching an edited field.
func (m Model) applyField(f Field) tea.Cmd {
	v := m.value(f)
	switch f {
	case FieldAudio:
		if v == "" {
			return nil
		}
		return m.send(bus.StartPlay{
			AudioURL:    v,
			SongTitle:   m.value(FieldTitle),
			ArtistName:  m.value(FieldArtist),
			AlbumArtURL: m.value(FieldArt),
		})
	case FieldArt:
		if v == "" {
			return m.send(bus.RemoveAlbumArt{})
		}
		return m.send(bus.UpdateAlbumArt{ImageURL: v})
	case FieldTitle:
		return m.send(bus.UpdateSongTitle{SongTitle: v})
	case FieldArtist:
		return m.send(bus.UpdateArtistName{ArtistName: v})
	case FieldLyrics:
		if v == "" {
			return m.send(bus.UpdateLyrics{})
		}
		return func() tea.Msg {
			cues, err := lyrics.LoadFile(v)
			if err != nil {
				return ErrMsg{Err: err}
			}
			msg := bus.UpdateLyrics{Lyrics: lyrics.Sorted(cues)}
			if err := msg.Validate(); err != nil {
				return ErrMsg{Err: fmt.Errorf("lyrics %s: %w", v, err)}
			}
			return m.send(msg)()
		}
	case FieldColor:
		if v == "" {
			v = m.settings.LyricsColor
		}
		return func() tea.Msg {
			if _, err := bus.NormalizeColor(v); err != nil {
				return ErrMsg{Err: err}
			}
			return m.send(bus.UpdateLyricsColor{Color: v})()
		}
	}
	return nil
}

// exportCmd reads the assets named in the form and sends EXPORT_WEBM.
func (m Model) exportCmd() tea.Cmd {
	audioPath := m.value(FieldAudio)
	artPath := m.value(FieldArt)
	title := m.value(FieldTitle)
	artist := m.value(FieldArtist)
	return func() tea.Msg {
		audio, err := model.LoadAsset(expand(audioPath))
		if err != nil {
			return ErrMsg{Err: fmt.Errorf("read audio: %w", err)}
		}
		msg := bus.ExportWebM{AudioFile: audio, SongTitle: title, ArtistName: artist}
		if artPath != "" && !isRemote(artPath) {
			art, err := model.LoadAsset(expand(artPath))
			if err != nil {
				return ErrMsg{Err: fmt.Errorf("read album art: %w", err)}
			}
			msg.AlbumArtFile = &art
		}
		return m.send(msg)()
	}
}

// Run starts the control panel and blocks until the user quits.
func Run(ctx context.Context, b *bus.Bus, settings *config.Settings) error {
	p := tea.NewProgram(NewModel(b, settings), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
