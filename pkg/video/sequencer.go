// ABOUTME: Video sequencer that shows each color step on a surface in order
// ABOUTME: One frame buffer is reused and refilled for every step
package video

import (
	"fmt"
	"time"

	"github.com/RevolutionPi/eol-test-hdmi/pkg/video/pixel"
)

// Error reports which step of the color sequence failed
type Error struct {
	Step  int
	Color pixel.Color
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("color %d (%s): %v", e.Step, e.Color, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Sequencer shows color steps on one surface
type Sequencer struct {
	Surface Surface

	// OnStep is called once the step's frame is visible, before the hold
	OnStep func(index int, step ColorStep)
}

// Run shows steps on surface
func Run(surface Surface, steps []ColorStep) error {
	s := &Sequencer{Surface: surface}
	return s.Run(steps)
}

// Run shows every step in order and holds it. The first failure stops the sequence.
func (s *Sequencer) Run(steps []ColorStep) error {
	if len(steps) == 0 {
		return nil
	}

	info := s.Surface.Info()
	committer, _ := s.Surface.(Committer)

	var frame []byte
	if size := info.FrameSize(); size > 0 {
		frame = make([]byte, size)
	}

	for i, step := range steps {
		if err := pixel.Fill(frame, info.Geometry, info.Format, step.Color); err != nil {
			return &Error{Step: i, Color: step.Color, Err: err}
		}

		if err := s.Surface.WriteFrame(frame); err != nil {
			return &Error{Step: i, Color: step.Color, Err: fmt.Errorf("%w: %w", ErrDeviceWrite, err)}
		}
		if committer != nil {
			if err := committer.Commit(); err != nil {
				return &Error{Step: i, Color: step.Color, Err: fmt.Errorf("%w: commit: %w", ErrDeviceWrite, err)}
			}
		}

		if s.OnStep != nil {
			s.OnStep(i, step)
		}
		time.Sleep(step.hold())
	}

	return nil
}
