// ABOUTME: Progress events emitted while the test runs
// ABOUTME: Consumed by the log output and the terminal UI
package eoltest

import (
	"time"

	"github.com/RevolutionPi/eol-test-hdmi/pkg/video/pixel"
)

// EventKind identifies what happened
type EventKind string

const (
	EventOpened EventKind = "opened"
	EventStep   EventKind = "step"
	EventDone   EventKind = "done"
)

// Event reports progress of one peripheral
type Event struct {
	Kind       EventKind
	Peripheral Peripheral
	Device     string
	At         time.Time

	// Step is the 0-based index of the step now playing; Total is the list length
	Step  int
	Total int

	Color     pixel.Color // video steps
	Frequency float64     // audio steps

	// Err is set on EventDone when the peripheral failed
	Err error
}

func (c Config) emit(e Event) {
	if c.OnEvent == nil {
		return
	}
	e.At = time.Now()
	c.OnEvent(e)
}
