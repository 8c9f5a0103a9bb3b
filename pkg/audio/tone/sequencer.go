// ABOUTME: Tone sequencer that plays each step on an audio sink in order
// ABOUTME: Blocks on the sink so wall-clock time equals the sum of step durations
package tone

import (
	"errors"
	"fmt"
	"time"

	"github.com/RevolutionPi/eol-test-hdmi/pkg/audio"
)

// ErrDeviceWrite marks a buffer the sink refused (underrun, device closed)
var ErrDeviceWrite = errors.New("audio device write failed")

// Error reports which step of the tone sequence failed
type Error struct {
	Step      int
	Frequency float64
	Err       error
}

func (e *Error) Error() string {
	return fmt.Sprintf("tone %d (%gHz): %v", e.Step, e.Frequency, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Sink is the part of an opened audio device the sequencer needs
type Sink interface {
	Format() audio.Format
	// Write blocks until the device has consumed the samples
	Write(samples []int16) error
	// Drain waits for anything still queued in the device
	Drain() error
}

// Sequencer plays tone steps on one sink
type Sequencer struct {
	Sink  Sink
	Level float64

	// OnStep is called before each step is synthesized
	OnStep func(index int, step Step)
}

// Run plays steps on sink at the default level
func Run(sink Sink, steps []Step) error {
	s := &Sequencer{Sink: sink, Level: DefaultLevel}
	return s.Run(steps)
}

// Run plays every step in order. The first failure stops the sequence.
//
// Step lists are validated against a sample rate when built, but the sink may
// have been opened at another rate (oto keeps the first context's format).
// Before playing anything Run rechecks every frequency against the sink's
// Nyquist limit and reports a miss as audio.ErrUnsupportedRate, since it is
// the sink's rate that cannot carry the tone.
func (s *Sequencer) Run(steps []Step) error {
	if len(steps) == 0 {
		return nil
	}

	format := s.Sink.Format()
	for i, step := range steps {
		if err := checkFrequency(step.Frequency, format.SampleRate); err != nil {
			return &Error{Step: i, Frequency: step.Frequency, Err: fmt.Errorf("%v: %w", err, audio.ErrUnsupportedRate)}
		}
	}

	for i, step := range steps {
		if s.OnStep != nil {
			s.OnStep(i, step)
		}

		d := step.Duration
		if d <= 0 {
			d = StepDuration
		}

		samples := Synthesize(step.Frequency, format, d, s.Level)
		if err := s.Sink.Write(samples); err != nil {
			return &Error{Step: i, Frequency: step.Frequency, Err: fmt.Errorf("%w: %w", ErrDeviceWrite, err)}
		}
	}

	if err := s.Sink.Drain(); err != nil {
		last := len(steps) - 1
		return &Error{Step: last, Frequency: steps[last].Frequency, Err: fmt.Errorf("%w: drain: %w", ErrDeviceWrite, err)}
	}

	return nil
}

// Duration returns the nominal wall-clock time of a tone sequence
func Duration(steps []Step) time.Duration {
	var total time.Duration
	for _, s := range steps {
		if s.Duration <= 0 {
			total += StepDuration
			continue
		}
		total += s.Duration
	}
	return total
}
