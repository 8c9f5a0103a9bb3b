// ABOUTME: Bubbletea model for the test progress TUI
// ABOUTME: Shows the current color swatch, the current tone and the verdict
package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/RevolutionPi/eol-test-hdmi/pkg/eoltest"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// EventMsg forwards a coordinator event
type EventMsg eoltest.Event

// DoneMsg carries the final outcome
type DoneMsg struct {
	Outcome *eoltest.Outcome
}

type tickMsg time.Time

// lane is the display state of one peripheral
type lane struct {
	device string
	opened bool
	step   int
	total  int
	label  string
	swatch string // hex color for video steps
	done   bool
	err    error
}

// Model represents the TUI state
type Model struct {
	title   string
	video   lane
	audio   lane
	started time.Time
	now     time.Time
	outcome *eoltest.Outcome

	quitting bool
	width    int
}

// NewModel creates a new TUI model
func NewModel(title string) Model {
	now := time.Now()
	return Model{
		title:   title,
		started: now,
		now:     now,
		video:   lane{step: -1},
		audio:   lane{step: -1},
	}
}

func (m Model) Init() tea.Cmd {
	return tickEvery()
}

func tickEvery() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "q" || msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width

	case tickMsg:
		m.now = time.Time(msg)
		if m.outcome != nil {
			return m, nil
		}
		return m, tickEvery()

	case EventMsg:
		m.applyEvent(eoltest.Event(msg))

	case DoneMsg:
		m.outcome = msg.Outcome
		m.now = time.Now()
		return m, tea.Quit
	}

	return m, nil
}

// applyEvent updates the lane the event belongs to
func (m *Model) applyEvent(e eoltest.Event) {
	l := &m.video
	if e.Peripheral == eoltest.Audio {
		l = &m.audio
	}

	switch e.Kind {
	case eoltest.EventOpened:
		l.opened = true
		l.device = e.Device
		l.total = e.Total
	case eoltest.EventStep:
		l.step = e.Step
		l.total = e.Total
		if e.Peripheral == eoltest.Video {
			l.label = e.Color.String()
			l.swatch = e.Color.Hex()
		} else {
			l.label = fmt.Sprintf("%gHz", e.Frequency)
		}
	case eoltest.EventDone:
		l.done = true
		l.err = e.Err
	}
}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			MarginBottom(1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86"))

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("250"))

	passStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	failStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
)

func (m Model) View() string {
	if m.quitting && m.outcome == nil {
		return "Closing display, the test keeps running...\n"
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("\n\n")

	b.WriteString(m.renderLane("Video", m.video))
	b.WriteString(m.renderLane("Audio", m.audio))

	b.WriteString(headerStyle.Render("Elapsed: "))
	b.WriteString(valueStyle.Render(m.now.Sub(m.started).Round(100 * time.Millisecond).String()))
	b.WriteString("\n\n")

	if m.outcome != nil {
		b.WriteString(m.renderVerdict())
		b.WriteString("\n")
	} else {
		b.WriteString(lipgloss.NewStyle().Faint(true).Render("Press 'q' to hide this view"))
	}

	return b.String()
}

func (m Model) renderLane(name string, l lane) string {
	var b strings.Builder

	b.WriteString(headerStyle.Render(fmt.Sprintf("%-6s", name+":")))
	if !l.opened {
		b.WriteString(valueStyle.Render(" waiting for device"))
		b.WriteString("\n\n")
		return b.String()
	}

	device := l.device
	if device == "" {
		device = "default"
	}
	b.WriteString(valueStyle.Render(" " + device))
	b.WriteString("\n       ")

	completed := l.step + 1
	if l.done && l.err == nil {
		completed = l.total
	}
	b.WriteString(renderBar(completed, l.total, 12))
	b.WriteString(valueStyle.Render(fmt.Sprintf(" %d/%d ", max(completed, 0), l.total)))

	if l.swatch != "" && !l.done {
		b.WriteString(lipgloss.NewStyle().Background(lipgloss.Color(l.swatch)).Render("      "))
		b.WriteString(" ")
	}
	if l.label != "" && !l.done {
		b.WriteString(valueStyle.Render(l.label))
	}

	switch {
	case l.done && l.err != nil:
		b.WriteString(failStyle.Render("FAIL"))
		b.WriteString(valueStyle.Render(" " + l.err.Error()))
	case l.done:
		b.WriteString(passStyle.Render("done"))
	}

	b.WriteString("\n\n")
	return b.String()
}

func (m Model) renderVerdict() string {
	if m.outcome.OK() {
		return passStyle.Render("PASS") + valueStyle.Render(" video and audio completed")
	}

	var parts []string
	for _, p := range m.outcome.Failed() {
		parts = append(parts, string(p))
	}
	return failStyle.Render("FAIL") + valueStyle.Render(fmt.Sprintf(" %s (exit %d)",
		strings.Join(parts, ", "), m.outcome.ExitCode()))
}

// renderBar draws value out of total as a fixed width bar
func renderBar(value, total, width int) string {
	filled := 0
	if total > 0 {
		filled = (min(max(value, 0), total) * width) / total
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}
