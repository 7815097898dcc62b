// Package tui provides a Bubble Tea terminal user interface for the
// collection generator.
package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/exaile/exaile-test-files/internal/config"
	"github.com/exaile/exaile-test-files/internal/generate"
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

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F8B500")).
			Width(12)
)

// State represents the current UI state.
type State int

const (
	StateInput State = iota
	StateGenerating
	StateComplete
	StateError
)

// Form fields, in focus order.
const (
	fieldCount = iota
	fieldSeed
	fieldOutput
	fieldTemplate
	fieldTotal
)

var fieldLabels = [fieldTotal]string{"Count", "Seed", "Output dir", "Template"}

// maxLogs is how many log lines stay on screen.
const maxLogs = 10

// LogEntry represents a log message in the UI.
type LogEntry struct {
	Message string
	Level   generate.ProgressLevel
}

// Model is the Bubble Tea model for the TUI.
type Model struct {
	state    State
	inputs   [fieldTotal]textinput.Model
	focus    int
	spinner  spinner.Model
	progress progress.Model
	settings *config.Settings
	logs     []LogEntry
	result   generate.Result
	err      error

	// Generation context
	ctx    context.Context
	cancel context.CancelFunc

	generator *generate.Generator
	events    chan generate.ProgressEvent

	done  int64
	total int64

	// Options
	playlist bool
	verbose  bool

	width  int
	height int
}

// NewModel creates a new TUI model. Form fields start from settings.
func NewModel(settings *config.Settings) Model {
	if settings == nil {
		settings = config.DefaultSettings()
	}

	var inputs [fieldTotal]textinput.Model
	for i := range inputs {
		ti := textinput.New()
		ti.CharLimit = 500
		ti.Width = 50
		ti.Prompt = ""
		inputs[i] = ti
	}
	inputs[fieldCount].Placeholder = "1000"
	inputs[fieldCount].SetValue(strconv.Itoa(settings.Count))
	inputs[fieldSeed].Placeholder = "random"
	if settings.Seed != nil {
		inputs[fieldSeed].SetValue(strconv.FormatInt(*settings.Seed, 10))
	}
	inputs[fieldOutput].Placeholder = "/tmp/collection"
	inputs[fieldOutput].SetValue(settings.OutputPath)
	inputs[fieldTemplate].Placeholder = "click.mp3"
	inputs[fieldTemplate].SetValue(settings.TemplatePath)
	inputs[fieldCount].Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 50

	ctx, cancel := context.WithCancel(context.Background())

	return Model{
		state:    StateInput,
		inputs:   inputs,
		spinner:  sp,
		progress: prog,
		settings: settings,
		logs:     make([]LogEntry, 0),
		ctx:      ctx,
		cancel:   cancel,
		playlist: settings.CreatePlaylist,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// Message types
type (
	// GenerateDoneMsg is sent when the run ends.
	GenerateDoneMsg struct {
		Result generate.Result
		Err    error
	}

	// TickMsg is for periodic progress updates.
	TickMsg struct{}
)

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
			m.cancel()
			return m, tea.Quit

		case "esc":
			if m.state == StateInput {
				return m, tea.Quit
			}
			if m.state == StateGenerating {
				m.cancel()
			}

		case "tab", "down":
			if m.state == StateInput {
				m.setFocus((m.focus + 1) % fieldTotal)
				return m, nil
			}

		case "shift+tab", "up":
			if m.state == StateInput {
				m.setFocus((m.focus + fieldTotal - 1) % fieldTotal)
				return m, nil
			}

		case "enter":
			if m.state == StateInput {
				if err := m.startRun(); err != nil {
					m.state = StateError
					m.err = err
					return m, nil
				}
				return m, tea.Batch(m.generate(), m.tickProgress(), m.spinner.Tick)
			}

		case "ctrl+p":
			if m.state == StateInput {
				m.playlist = !m.playlist
				return m, nil
			}

		case "ctrl+r":
			if m.state == StateInput {
				m.verbose = !m.verbose
				return m, nil
			}

		case "q":
			if m.state == StateComplete || m.state == StateError {
				return m, tea.Quit
			}

		case "r":
			if m.state == StateComplete || m.state == StateError {
				// Reset for a new run, keeping the form values
				m.state = StateInput
				m.logs = nil
				m.err = nil
				m.result = generate.Result{}
				m.done = 0
				m.total = 0
				m.generator = nil
				m.events = nil
				m.ctx, m.cancel = context.WithCancel(context.Background())
				m.setFocus(fieldCount)
				return m, nil
			}
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case GenerateDoneMsg:
		m.drainEvents()
		m.result = msg.Result
		m.done, m.total = m.generator.GetProgress()
		if msg.Err != nil {
			m.state = StateError
			m.err = msg.Err
			if m.ctx.Err() != nil {
				m.err = fmt.Errorf("cancelled by user (seed %d)", msg.Result.Seed)
			}
		} else {
			m.state = StateComplete
		}

	case TickMsg:
		// Update progress from the generator
		if m.generator != nil && m.state == StateGenerating {
			m.drainEvents()
			m.done, m.total = m.generator.GetProgress()

			var percent float64
			if m.total > 0 {
				percent = float64(m.done) / float64(m.total)
			}
			cmds = append(cmds, m.progress.SetPercent(percent), m.tickProgress())
		}

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		cmds = append(cmds, cmd)
	}

	// Update the focused input
	if m.state == StateInput {
		var cmd tea.Cmd
		m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) setFocus(i int) {
	m.inputs[m.focus].Blur()
	m.focus = i
	m.inputs[m.focus].Focus()
}

// drainEvents moves queued progress events into the log.
func (m *Model) drainEvents() {
	for {
		select {
		case event := <-m.events:
			if event.Level == generate.LevelVerbose && !m.verbose {
				continue
			}
			m.logs = append(m.logs, LogEntry{Message: event.Message, Level: event.Level})
			if len(m.logs) > maxLogs {
				m.logs = m.logs[len(m.logs)-maxLogs:]
			}
		default:
			return
		}
	}
}

// tickProgress returns a command to tick progress updates.
func (m Model) tickProgress() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(_ time.Time) tea.Msg {
		return TickMsg{}
	})
}

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	// Header
	b.WriteString(titleStyle.Render("♪ Collection Generator"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Synthesize a deterministic music collection"))
	b.WriteString("\n\n")

	switch m.state {
	case StateInput:
		b.WriteString(m.viewInput())
	case StateGenerating:
		b.WriteString(m.viewGenerating())
	case StateComplete:
		b.WriteString(m.viewComplete())
	case StateError:
		b.WriteString(m.viewError())
	}

	// Footer
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.getHelpText()))

	return b.String()
}

func (m Model) viewInput() string {
	var b strings.Builder

	b.WriteString(subtitleStyle.Render("Collection:"))
	b.WriteString("\n\n")
	for i := range m.inputs {
		cursor := "  "
		if i == m.focus {
			cursor = "› "
		}
		b.WriteString(cursor + labelStyle.Render(fieldLabels[i]) + m.inputs[i].View())
		b.WriteString("\n")
	}
	b.WriteString("\n")

	// Options
	playlistCheck := "[ ]"
	if m.playlist {
		playlistCheck = "[×]"
	}
	verboseCheck := "[ ]"
	if m.verbose {
		verboseCheck = "[×]"
	}

	b.WriteString(infoStyle.Render("Options:"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  %s Create playlists (ctrl+p)\n", playlistCheck))
	b.WriteString(fmt.Sprintf("  %s Verbose output (ctrl+r)\n", verboseCheck))

	return b.String()
}

func (m Model) viewGenerating() string {
	var b strings.Builder

	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	b.WriteString(subtitleStyle.Render(fmt.Sprintf("Generating into %s...", m.settings.OutputPath)))
	b.WriteString("\n\n")

	b.WriteString(m.progress.View())
	b.WriteString("\n")
	b.WriteString(infoStyle.Render(fmt.Sprintf("Items: %d/%d", m.done, m.total)))
	b.WriteString("\n\n")

	// Logs
	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewComplete() string {
	box := boxStyle.Render(fmt.Sprintf(
		"✨ Generation Complete!\n\n"+
			"Artists: %d\n"+
			"Albums: %d\n"+
			"Tracks: %d\n"+
			"Seed: %d\n"+
			"Time: %s",
		m.result.Artists,
		m.result.Albums,
		m.result.Titles,
		m.result.Seed,
		m.result.Elapsed.Round(time.Millisecond),
	))
	return box + "\n"
}

func (m Model) viewError() string {
	var b strings.Builder

	b.WriteString(errorStyle.Render("✗ Error occurred:"))
	b.WriteString("\n\n")
	if m.err != nil {
		b.WriteString(fmt.Sprintf("  %s", m.err.Error()))
	}
	if m.total > 0 {
		b.WriteString("\n\n")
		b.WriteString(dimStyle.Render(fmt.Sprintf("%d of %d items written", m.done, m.total)))
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
		case generate.LevelError:
			style = errorStyle
			prefix = "✗"
		case generate.LevelWarning:
			style = warningStyle
			prefix = "!"
		case generate.LevelSuccess:
			style = successStyle
			prefix = "✓"
		case generate.LevelInfo:
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
	case StateInput:
		return "enter: start • tab: next field • ctrl+p: playlists • ctrl+r: verbose • esc: quit"
	case StateGenerating:
		return "esc: cancel"
	case StateComplete, StateError:
		return "r: new run • q: quit"
	}
	return ""
}

// formSettings copies the form values over a copy of the base settings.
func (m Model) formSettings() (*config.Settings, error) {
	s := *m.settings
	s.CreatePlaylist = m.playlist

	count := strings.TrimSpace(m.inputs[fieldCount].Value())
	if count != "" {
		n, err := strconv.Atoi(count)
		if err != nil {
			return nil, fmt.Errorf("%w: count: %v", config.ErrInvalidSettings, err)
		}
		s.Count = n
	}

	s.Seed = nil
	if seed := strings.TrimSpace(m.inputs[fieldSeed].Value()); seed != "" {
		n, err := strconv.ParseInt(seed, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: seed: %v", config.ErrInvalidSettings, err)
		}
		s.Seed = &n
	}

	s.OutputPath = strings.TrimSpace(m.inputs[fieldOutput].Value())
	s.TemplatePath = strings.TrimSpace(m.inputs[fieldTemplate].Value())

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// startRun validates the form and prepares the generator.
func (m *Model) startRun() error {
	settings, err := m.formSettings()
	if err != nil {
		return err
	}

	materializer, err := generate.NewMaterializer(m.ctx, settings)
	if err != nil {
		return err
	}

	events := make(chan generate.ProgressEvent, 256)
	m.settings = settings
	m.events = events
	m.generator = generate.NewGenerator(settings, materializer, func(event generate.ProgressEvent) {
		// Dropped when the UI falls behind; the log is only a tail.
		select {
		case events <- event:
		default:
		}
	})
	m.total = int64(settings.Count)
	m.done = 0
	m.state = StateGenerating
	return nil
}

// generate runs the generator in the background.
func (m Model) generate() tea.Cmd {
	gen, ctx, settings := m.generator, m.ctx, m.settings
	return func() tea.Msg {
		result, err := gen.Generate(ctx, settings.Count, settings.TemplatePath)
		return GenerateDoneMsg{Result: result, Err: err}
	}
}

// Run starts the TUI application.
func Run(settings *config.Settings) error {
	p := tea.NewProgram(NewModel(settings), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
