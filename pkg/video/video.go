// ABOUTME: Surface abstraction and color steps for the video path check
// ABOUTME: A surface is an opened display whose geometry and format never change
package video

import (
	"errors"
	"fmt"
	"time"

	"github.com/RevolutionPi/eol-test-hdmi/pkg/video/pixel"
)

// HoldDuration is how long each color stays on screen
const HoldDuration = time.Second

var (
	// ErrDeviceWrite marks a frame the display refused (busy, permission, I/O fault)
	ErrDeviceWrite = errors.New("framebuffer write failed")

	// ErrFormatUnsupported marks a pixel layout colors cannot be encoded in
	ErrFormatUnsupported = pixel.ErrFormatUnsupported
)

// Info describes an opened surface
type Info struct {
	pixel.Geometry
	Format pixel.Format

	// YOffset is the first visible row of the virtual screen
	YOffset int

	// Name is the driver identification, if the device reports one
	Name string
}

func (i Info) String() string {
	return fmt.Sprintf("%dx%d stride %d %s", i.Width, i.Height, i.Stride, i.Format)
}

// Surface represents exclusive access to one display
type Surface interface {
	// Info returns geometry and pixel format fixed at open time
	Info() Info

	// WriteFrame replaces the visible image with frame (Stride*Height bytes)
	WriteFrame(frame []byte) error

	// Close releases the display
	Close() error
}

// Committer is implemented by surfaces that need an explicit flip after a write
type Committer interface {
	Commit() error
}

// ColorStep is one full-screen color of the sequence
type ColorStep struct {
	Color pixel.Color
	Hold  time.Duration
}

func (s ColorStep) String() string {
	return s.Color.String()
}

// DefaultSteps returns red, green and blue, one second each
func DefaultSteps() []ColorStep {
	return []ColorStep{
		{Color: pixel.Red, Hold: HoldDuration},
		{Color: pixel.Green, Hold: HoldDuration},
		{Color: pixel.Blue, Hold: HoldDuration},
	}
}

// Duration returns the nominal wall-clock time of a color sequence
func Duration(steps []ColorStep) time.Duration {
	var total time.Duration
	for _, s := range steps {
		total += s.hold()
	}
	return total
}

func (s ColorStep) hold() time.Duration {
	if s.Hold <= 0 {
		return HoldDuration
	}
	return s.Hold
}
