// ABOUTME: Null audio sink that discards samples at playback speed
// ABOUTME: Used by dry runs and tests in place of real hardware
package output

import (
	"fmt"
	"sync"
	"time"

	"github.com/RevolutionPi/eol-test-hdmi/pkg/audio"
)

// Null is a sink that sleeps for the duration of each buffer instead of playing it
type Null struct {
	format audio.Format

	// Realtime makes Write sleep for the buffer's playback duration
	Realtime bool

	// FailAt makes the Nth Write (0-based) return FailErr; negative disables
	FailAt  int
	FailErr error

	mu      sync.Mutex
	writes  [][]int16
	drained bool
	closed  bool
}

// NewNull creates a real-time paced null sink
func NewNull(format audio.Format) *Null {
	return &Null{
		format:   format,
		Realtime: true,
		FailAt:   -1,
	}
}

func (n *Null) Name() string         { return "null" }
func (n *Null) Format() audio.Format { return n.format }

// Write records the buffer and blocks for its playback duration
func (n *Null) Write(samples []int16) error {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return ErrNotOpen
	}
	index := len(n.writes)
	if n.FailAt >= 0 && index == n.FailAt {
		n.mu.Unlock()
		if n.FailErr != nil {
			return n.FailErr
		}
		return fmt.Errorf("write %d: %w", index, ErrStalled)
	}
	buf := make([]int16, len(samples))
	copy(buf, samples)
	n.writes = append(n.writes, buf)
	n.mu.Unlock()

	if n.Realtime {
		time.Sleep(n.duration(len(samples)))
	}
	return nil
}

func (n *Null) duration(samples int) time.Duration {
	if n.format.SampleRate <= 0 || n.format.Channels <= 0 {
		return 0
	}
	frames := samples / n.format.Channels
	return time.Duration(frames) * time.Second / time.Duration(n.format.SampleRate)
}

func (n *Null) Drain() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return ErrNotOpen
	}
	n.drained = true
	return nil
}

func (n *Null) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.closed = true
	return nil
}

// Writes returns the buffers written so far
func (n *Null) Writes() [][]int16 {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([][]int16, len(n.writes))
	copy(out, n.writes)
	return out
}

// Drained reports whether Drain was called
func (n *Null) Drained() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.drained
}

// Closed reports whether Close was called
func (n *Null) Closed() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.closed
}
