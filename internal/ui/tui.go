// ABOUTME: TUI initialization and control
// ABOUTME: Wraps the bubbletea program that follows a running test
package ui

import (
	"io"

	"github.com/RevolutionPi/eol-test-hdmi/pkg/eoltest"
	tea "github.com/charmbracelet/bubbletea"
)

// TUI shows test progress in the terminal
type TUI struct {
	program *tea.Program
	done    chan error
}

// Start launches the program in the background. Output goes to w.
func Start(title string, w io.Writer) *TUI {
	t := &TUI{
		program: tea.NewProgram(NewModel(title), tea.WithOutput(w)),
		done:    make(chan error, 1),
	}
	go func() {
		_, err := t.program.Run()
		t.done <- err
	}()
	return t
}

// Event forwards a coordinator event; safe to call from any goroutine
func (t *TUI) Event(e eoltest.Event) {
	t.program.Send(EventMsg(e))
}

// Finish shows the verdict and waits for the program to exit
func (t *TUI) Finish(outcome *eoltest.Outcome) error {
	t.program.Send(DoneMsg{Outcome: outcome})
	return <-t.done
}
