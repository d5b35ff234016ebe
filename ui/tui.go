package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/franksops/shuttle/engine"
	"github.com/franksops/shuttle/event"
)

// maxLogLines bounds the scrollback kept in memory.
const maxLogLines = 200

// EventMsg delivers one telemetry event to the model. The consumer
// goroutine forwards the event stream via tea.Program.Send.
type EventMsg struct {
	Event event.Event
}

// CycleDoneMsg is sent when the current cycle (or watch loop) finishes.
type CycleDoneMsg struct{}

// Model implements the tea.Model interface over the telemetry stream. The
// pause/resume/cancel keys flip the shared RunControl flags; the copy and
// deploy loops observe them at their next checkpoint.
type Model struct {
	control  *engine.RunControl
	spinner  spinner.Model
	progress progress.Model
	viewport viewport.Model

	lines    []string
	current  event.ProgressEvent
	hasRun   bool
	done     bool
	quitting bool

	width  int
	height int

	titleStyle   lipgloss.Style
	infoStyle    lipgloss.Style
	warnStyle    lipgloss.Style
	helpStyle    lipgloss.Style
	errorStyle   lipgloss.Style
	successStyle lipgloss.Style
}

// NewModel creates a Model bound to the run's control flags.
func NewModel(control *engine.RunControl) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	prog := progress.New(progress.WithDefaultGradient())

	return Model{
		control:      control,
		spinner:      s,
		progress:     prog,
		titleStyle:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205")).Padding(0, 1),
		infoStyle:    lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		warnStyle:    lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		helpStyle:    lipgloss.NewStyle().Foreground(lipgloss.Color("241")).MarginTop(1),
		errorStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		successStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true),
	}
}

func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.control.Cancel()
			m.quitting = true
			return m, tea.Quit
		case "c":
			m.control.Cancel()
			m.lines = m.appendLine(m.warnStyle.Render("cancel requested"))
		case "p":
			if !m.control.Paused() {
				m.control.Pause()
				m.lines = m.appendLine(m.warnStyle.Render("paused"))
			}
		case "r":
			if m.control.Paused() {
				m.control.Resume()
				m.lines = m.appendLine(m.infoStyle.Render("resumed"))
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = msg.Width - 14

		headerHeight := 5
		footerHeight := 2
		m.viewport = viewport.New(msg.Width, msg.Height-headerHeight-footerHeight)

	case EventMsg:
		switch e := msg.Event.(type) {
		case event.LogEvent:
			m.lines = m.appendLine(m.renderLog(e))
		case event.ProgressEvent:
			m.current = e
			m.hasRun = true
		}

	case CycleDoneMsg:
		m.done = true

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	var sb strings.Builder

	status := "scanning"
	switch {
	case m.done:
		status = "idle"
	case m.control.Cancelled():
		status = "cancelling"
	case m.control.Paused():
		status = "paused"
	}
	header := fmt.Sprintf("%s Shuttle %s %s", m.spinner.View(), m.titleStyle.Render("Artifact Promotion"), m.infoStyle.Render(status))
	sb.WriteString(header + "\n")

	// Current transfer
	if m.hasRun {
		info := fmt.Sprintf("%s | %s / %s | %s | ETA %s",
			m.current.Label,
			formatBytes(m.current.CopiedBytes), formatBytes(m.current.TotalBytes),
			formatSpeed(m.current.Speed),
			formatETA(m.current.EtaSeconds))
		sb.WriteString(m.infoStyle.Render(info) + "\n")
		sb.WriteString(m.progress.ViewAs(m.current.Percentage/100) + "\n\n")
	} else {
		sb.WriteString(m.infoStyle.Render("No transfer running...") + "\n\n\n")
	}

	m.viewport.SetContent(strings.Join(m.lines, "\n"))
	m.viewport.GotoBottom()
	sb.WriteString(m.viewport.View())

	// Footer
	help := m.helpStyle.Render("p: pause • r: resume • c: cancel • q: quit")
	if m.done {
		help = m.successStyle.Render("Cycle complete.") + " Press 'q' to exit."
	}
	sb.WriteString("\n" + help)

	return sb.String()
}

func (m Model) appendLine(line string) []string {
	lines := append(m.lines, line)
	if len(lines) > maxLogLines {
		lines = lines[len(lines)-maxLogLines:]
	}
	return lines
}

func (m Model) renderLog(e event.LogEvent) string {
	switch e.Level {
	case event.LevelError:
		return m.errorStyle.Render(e.Message)
	case event.LevelWarn:
		return m.warnStyle.Render(e.Message)
	case event.LevelSuccess:
		return m.successStyle.Render(e.Message)
	default:
		return e.Message
	}
}

func formatBytes(n int64) string {
	switch {
	case n >= 1024*1024*1024:
		return fmt.Sprintf("%.2f GB", float64(n)/(1024*1024*1024))
	case n >= 1024*1024:
		return fmt.Sprintf("%.2f MB", float64(n)/(1024*1024))
	case n >= 1024:
		return fmt.Sprintf("%.2f KB", float64(n)/1024)
	}
	return fmt.Sprintf("%d B", n)
}

func formatSpeed(bytesPerSec float64) string {
	if bytesPerSec >= 1024*1024*1024 {
		return fmt.Sprintf("%.2f GB/s", bytesPerSec/(1024*1024*1024))
	} else if bytesPerSec >= 1024*1024 {
		return fmt.Sprintf("%.2f MB/s", bytesPerSec/(1024*1024))
	} else if bytesPerSec >= 1024 {
		return fmt.Sprintf("%.2f KB/s", bytesPerSec/1024)
	}
	return fmt.Sprintf("%.0f B/s", bytesPerSec)
}

func formatETA(seconds float64) string {
	if seconds <= 0 {
		return "0s"
	}
	d := time.Duration(seconds * float64(time.Second))
	if d.Hours() > 24 {
		return "> 1d"
	}
	return d.Round(time.Second).String()
}
