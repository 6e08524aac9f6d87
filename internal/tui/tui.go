// Package tui provides a Bubble Tea terminal user interface for stamping photos.
package tui

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/handiism/photo-timestamper/internal/batch"
	"github.com/handiism/photo-timestamper/internal/config"
	ioutils "github.com/handiism/photo-timestamper/internal/io"
	"github.com/handiism/photo-timestamper/internal/model"
	"github.com/handiism/photo-timestamper/internal/processor"
	"github.com/handiism/photo-timestamper/internal/style"
	"github.com/sirupsen/logrus"
)

// Styles for the TUI
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B35")).
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

	styleNameStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#F8B500"))
)

const maxLogs = 10

// State represents the current UI state.
type State int

const (
	StateInput State = iota
	StateScanning
	StateStamping
	StateComplete
	StateError
)

// LogEntry represents a log message in the UI.
type LogEntry struct {
	Message string
	Level   batch.Level
}

// Options wires the TUI to its settings and collaborators.
type Options struct {
	Settings *config.Settings

	// ConfigPath, when set, receives the last used style and the cleared
	// first-run flag on completion.
	ConfigPath string

	// SessionPath, when set, stores the files of the last batch.
	SessionPath string

	Styles *style.Manager
	Logger logrus.FieldLogger
}

// Model is the Bubble Tea model for the TUI.
type Model struct {
	opts      Options
	state     State
	textInput textinput.Model
	spinner   spinner.Model
	progress  progress.Model
	logs      []LogEntry
	err       error

	styles     []string
	styleIndex int
	session    []string

	ctx    context.Context
	cancel context.CancelFunc

	batch  *batch.Processor
	events <-chan batch.Event
	wait   func() (model.BatchResult, error)

	current int
	total   int
	file    string
	result  model.BatchResult

	recursive bool
	overwrite bool
	verbose   bool

	width  int
	height int
}

// NewModel creates a new TUI model.
func NewModel(opts Options) Model {
	ti := textinput.New()
	ti.Placeholder = "/path/to/photos"
	ti.Focus()
	ti.CharLimit = 1000
	ti.Width = 60

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B35"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 50

	ctx, cancel := context.WithCancel(context.Background())

	m := Model{
		opts:      opts,
		state:     StateInput,
		textInput: ti,
		spinner:   sp,
		progress:  prog,
		styles:    opts.Styles.List(),
		ctx:       ctx,
		cancel:    cancel,
		overwrite: opts.Settings.Output.OverwriteExisting,
	}

	for i, name := range m.styles {
		if name == opts.Settings.UI.LastStyle {
			m.styleIndex = i
		}
	}

	if opts.SessionPath != "" && opts.Settings.General.RestoreLastSession {
		m.session = config.LoadSession(opts.SessionPath)
	}

	return m
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// Message types
type (
	// ScanDoneMsg is sent when the input paths have been expanded.
	ScanDoneMsg struct {
		Paths []string
		Err   error
	}

	// EventMsg carries one batch event.
	EventMsg struct {
		Event batch.Event
	}

	// BatchDoneMsg is sent when the batch has finished or was cancelled.
	BatchDoneMsg struct {
		Result model.BatchResult
		Err    error
	}
)

// Style returns the selected style name, or "" when none are available.
func (m Model) Style() string {
	if len(m.styles) == 0 {
		return ""
	}
	return m.styles[m.styleIndex]
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = max(20, min(80, msg.Width-20))
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.cancelBatch()
			return m, tea.Quit

		case "esc":
			if m.state == StateInput {
				return m, tea.Quit
			}
			if m.state == StateStamping || m.state == StateScanning {
				m.cancelBatch()
				m.logs = appendLog(m.logs, LogEntry{Message: "Cancelling after the current file...", Level: batch.LevelWarning})
			}
			return m, nil

		case "enter":
			if m.state == StateInput {
				if strings.TrimSpace(m.textInput.Value()) == "" && len(m.session) == 0 {
					return m, nil
				}
				if m.Style() == "" {
					m.state = StateError
					m.err = fmt.Errorf("no styles found in %s", m.opts.Styles.StylesDir())
					return m, nil
				}
				m.state = StateScanning
				return m, tea.Batch(m.scan(), m.spinner.Tick)
			}

		case "tab":
			if m.state == StateInput && len(m.styles) > 0 {
				m.styleIndex = (m.styleIndex + 1) % len(m.styles)
				return m, nil
			}

		case "shift+tab":
			if m.state == StateInput && len(m.styles) > 0 {
				m.styleIndex = (m.styleIndex + len(m.styles) - 1) % len(m.styles)
				return m, nil
			}

		case "ctrl+r":
			if m.state == StateInput {
				m.recursive = !m.recursive
				return m, nil
			}

		case "ctrl+o":
			if m.state == StateInput {
				m.overwrite = !m.overwrite
				return m, nil
			}

		case "ctrl+l":
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
				m = m.reset()
				return m, textinput.Blink
			}
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case ScanDoneMsg:
		if msg.Err != nil {
			m.state = StateError
			m.err = msg.Err
			return m, nil
		}
		if len(msg.Paths) == 0 {
			m.state = StateError
			m.err = fmt.Errorf("no JPEG files found")
			return m, nil
		}
		if m.opts.SessionPath != "" {
			if err := config.SaveSession(m.opts.SessionPath, msg.Paths); err != nil {
				m.logs = appendLog(m.logs, LogEntry{Message: fmt.Sprintf("Cannot save session: %v", err), Level: batch.LevelWarning})
			}
		}
		m.state = StateStamping
		m.total = len(msg.Paths)
		m.start(msg.Paths)
		cmds = append(cmds, m.next())

	case EventMsg:
		switch ev := msg.Event; ev.Kind {
		case batch.EventProgress:
			m.current, m.total, m.file = ev.Current, ev.Total, ev.Path
			cmds = append(cmds, m.progress.SetPercent(float64(ev.Current-1)/float64(max(1, ev.Total))))
		case batch.EventMessage:
			if ev.Message.Level != batch.LevelVerbose || m.verbose {
				m.logs = appendLog(m.logs, LogEntry{Message: ev.Message.Text, Level: ev.Message.Level})
			}
		}
		cmds = append(cmds, m.next())

	case BatchDoneMsg:
		m.result = msg.Result
		if msg.Err != nil {
			m.state = StateError
			m.err = msg.Err
			return m, nil
		}
		m.state = StateComplete
		m.saveSettings()
		cmds = append(cmds, m.progress.SetPercent(1))

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		cmds = append(cmds, cmd)
	}

	// Update text input
	if m.state == StateInput {
		var cmd tea.Cmd
		m.textInput, cmd = m.textInput.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func appendLog(logs []LogEntry, entry LogEntry) []LogEntry {
	logs = append(logs, entry)
	if len(logs) > maxLogs {
		logs = logs[len(logs)-maxLogs:]
	}
	return logs
}

func (m *Model) cancelBatch() {
	if m.batch != nil {
		m.batch.Cancel()
	}
	m.cancel()
}

func (m Model) reset() Model {
	m.state = StateInput
	m.logs = nil
	m.err = nil
	m.batch = nil
	m.events = nil
	m.wait = nil
	m.current, m.total, m.file = 0, 0, ""
	m.result = model.BatchResult{}
	m.ctx, m.cancel = context.WithCancel(context.Background())
	m.textInput.SetValue("")
	m.textInput.Focus()
	m.progress.SetPercent(0)
	return m
}

// inputPaths splits the text input on commas. An empty input restores the
// last session.
func (m Model) inputPaths() []string {
	var paths []string
	for _, p := range strings.Split(m.textInput.Value(), ",") {
		if p = strings.TrimSpace(p); p != "" {
			paths = append(paths, p)
		}
	}
	if len(paths) == 0 {
		return m.session
	}
	return paths
}

// scan expands the input into JPEG paths in the background.
func (m Model) scan() tea.Cmd {
	ctx, args, recursive := m.ctx, m.inputPaths(), m.recursive
	return func() tea.Msg {
		paths, err := ioutils.CollectImages(ctx, args, recursive)
		return ScanDoneMsg{Paths: paths, Err: err}
	}
}

// start launches the batch; events are pulled one at a time by next.
func (m *Model) start(paths []string) {
	settings := *m.opts.Settings
	settings.Output.OverwriteExisting = m.overwrite

	files := processor.New(&settings, m.opts.Styles, m.opts.Logger)
	m.batch = batch.New(files, m.opts.Styles, m.opts.Logger)
	m.events, m.wait = m.batch.Events(m.ctx, paths, m.Style())
}

// next waits for the following batch event, or the batch outcome once the
// event stream is closed.
func (m Model) next() tea.Cmd {
	events, wait := m.events, m.wait
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			result, err := wait()
			return BatchDoneMsg{Result: result, Err: err}
		}
		return EventMsg{Event: ev}
	}
}

// saveSettings records the style just used and clears the first-run hint.
func (m Model) saveSettings() {
	m.opts.Settings.UI.LastStyle = m.Style()
	m.opts.Settings.General.FirstRun = false
	if m.opts.ConfigPath == "" {
		return
	}
	if err := m.opts.Settings.Save(m.opts.ConfigPath); err != nil && m.opts.Logger != nil {
		m.opts.Logger.WithError(err).Warn("Cannot save settings")
	}
}

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	// Header
	b.WriteString(titleStyle.Render("Photo Timestamper"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Burn capture dates into your photos"))
	b.WriteString("\n\n")

	switch m.state {
	case StateInput:
		b.WriteString(m.viewInput())
	case StateScanning:
		b.WriteString(m.viewScanning())
	case StateStamping:
		b.WriteString(m.viewStamping())
	case StateComplete:
		b.WriteString(m.viewComplete())
	case StateError:
		b.WriteString(m.viewError())
	}

	// Footer
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.helpText()))

	return b.String()
}

func check(on bool) string {
	if on {
		return "[x]"
	}
	return "[ ]"
}

func (m Model) viewInput() string {
	var b strings.Builder

	if m.opts.Settings.General.FirstRun {
		b.WriteString(boxStyle.Render("Welcome! Enter photos or folders, pick a style with tab and press enter.\nStamped copies are written next to the originals; the originals are never changed."))
		b.WriteString("\n\n")
	}

	b.WriteString(subtitleStyle.Render("Photos (files or folders, comma-separated):"))
	b.WriteString("\n\n")
	b.WriteString(m.textInput.View())
	b.WriteString("\n\n")

	if len(m.session) > 0 {
		b.WriteString(dimStyle.Render(fmt.Sprintf("Leave empty to reuse the last session (%d files)", len(m.session))))
		b.WriteString("\n\n")
	}

	b.WriteString(infoStyle.Render("Style: "))
	if name := m.Style(); name != "" {
		b.WriteString(styleNameStyle.Render(style.DisplayName(name, m.opts.Settings.General.Language)))
		b.WriteString(dimStyle.Render(fmt.Sprintf("  (%d/%d)", m.styleIndex+1, len(m.styles))))
	} else {
		b.WriteString(errorStyle.Render("none found"))
	}
	b.WriteString("\n\n")

	b.WriteString(infoStyle.Render("Options:"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  %s Scan folders recursively (ctrl+r)\n", check(m.recursive)))
	b.WriteString(fmt.Sprintf("  %s Overwrite existing output (ctrl+o)\n", check(m.overwrite)))
	b.WriteString(fmt.Sprintf("  %s Verbose output (ctrl+l)\n", check(m.verbose)))
	b.WriteString("\n")

	out := m.opts.Settings.Output
	dest := "next to each photo"
	if !out.SameDirectory && out.CustomDirectory != "" {
		dest = out.CustomDirectory
	}
	b.WriteString(dimStyle.Render(fmt.Sprintf("Output: %s as %s (time source: %s)", dest, out.FilenamePattern, m.opts.Settings.TimeSource.Primary)))
	b.WriteString("\n")

	return b.String()
}

func (m Model) viewScanning() string {
	var b strings.Builder

	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	b.WriteString(subtitleStyle.Render("Looking for photos..."))
	b.WriteString("\n")

	return b.String()
}

func (m Model) viewStamping() string {
	var b strings.Builder

	b.WriteString(infoStyle.Render("Style: "))
	b.WriteString(styleNameStyle.Render(m.Style()))
	b.WriteString("\n\n")

	b.WriteString(m.progress.View())
	b.WriteString("\n")
	b.WriteString(infoStyle.Render(fmt.Sprintf("Files: %d/%d", m.current, m.total)))
	if m.file != "" {
		b.WriteString(dimStyle.Render("  " + filepath.Base(m.file)))
	}
	b.WriteString("\n\n")

	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewComplete() string {
	var b strings.Builder

	title := "Done!"
	if m.result.Cancelled {
		title = "Cancelled"
	}

	failed := m.result.FailedCount - m.result.SkippedCount
	b.WriteString(boxStyle.Render(fmt.Sprintf(
		"%s\n\nStamped: %d\nFailed:  %d\nSkipped: %d",
		title,
		m.result.SuccessCount,
		failed,
		m.result.SkippedCount,
	)))
	b.WriteString("\n\n")

	for _, e := range m.result.Errors {
		b.WriteString(errorStyle.Render("x " + e))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) viewError() string {
	var b strings.Builder

	b.WriteString(errorStyle.Render("Error occurred:"))
	b.WriteString("\n\n")
	if m.err != nil {
		b.WriteString(fmt.Sprintf("  %s", m.err.Error()))
	}

	return b.String()
}

func (m Model) renderLogs() string {
	var b strings.Builder

	for _, entry := range m.logs {
		var ls lipgloss.Style
		prefix := "•"
		switch entry.Level {
		case batch.LevelError:
			ls = errorStyle
			prefix = "x"
		case batch.LevelWarning:
			ls = warningStyle
			prefix = "!"
		case batch.LevelSuccess:
			ls = successStyle
			prefix = "✓"
		case batch.LevelInfo:
			ls = infoStyle
			prefix = "›"
		default:
			ls = dimStyle
		}
		b.WriteString(ls.Render(prefix + " " + entry.Message))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) helpText() string {
	switch m.state {
	case StateInput:
		return "enter: start • tab: next style • ctrl+r: recursive • ctrl+o: overwrite • ctrl+l: verbose • esc: quit"
	case StateScanning, StateStamping:
		return "esc: cancel"
	case StateComplete, StateError:
		return "r: new batch • q: quit"
	}
	return ""
}

// Run starts the TUI application.
func Run(opts Options) error {
	p := tea.NewProgram(NewModel(opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
