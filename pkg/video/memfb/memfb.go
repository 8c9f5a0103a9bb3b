// ABOUTME: In-memory video surface recording every frame written to it
// ABOUTME: Stands in for the framebuffer in dry runs and tests
package memfb

import (
	"fmt"
	"sync"
	"time"

	"github.com/RevolutionPi/eol-test-hdmi/pkg/video"
	"github.com/RevolutionPi/eol-test-hdmi/pkg/video/pixel"
)

// DefaultInfo is a 1920x1080 XRGB8888 display
var DefaultInfo = video.Info{
	Geometry: pixel.Geometry{Width: 1920, Height: 1080, Stride: 1920 * 4},
	Format:   pixel.XRGB8888,
	Name:     "memfb",
}

// Frame is one recorded write
type Frame struct {
	Data []byte
	At   time.Time
}

// Surface keeps the last frame and a log of writes
type Surface struct {
	info video.Info

	// FailAt makes the Nth WriteFrame (0-based) return FailErr; negative disables
	FailAt  int
	FailErr error

	// Keep retains a copy of every frame instead of only the last one
	Keep bool

	mu      sync.Mutex
	frames  []Frame
	writes  int
	commits int
	closed  bool
}

// New creates a surface with the given geometry and format
func New(info video.Info) *Surface {
	return &Surface{info: info, FailAt: -1}
}

func (s *Surface) Info() video.Info { return s.info }

// WriteFrame records a copy of frame
func (s *Surface) WriteFrame(frame []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return fmt.Errorf("memfb: write after close")
	}
	index := s.writes
	s.writes++
	if s.FailAt >= 0 && index == s.FailAt {
		if s.FailErr != nil {
			return s.FailErr
		}
		return fmt.Errorf("memfb: injected write failure at frame %d", index)
	}
	if len(frame) != s.info.FrameSize() {
		return fmt.Errorf("memfb: frame is %d bytes, want %d", len(frame), s.info.FrameSize())
	}

	f := Frame{Data: append([]byte(nil), frame...), At: time.Now()}
	if s.Keep || len(s.frames) == 0 {
		s.frames = append(s.frames, f)
	} else {
		s.frames[len(s.frames)-1] = f
	}
	return nil
}

// Commit counts page flips
func (s *Surface) Commit() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commits++
	return nil
}

func (s *Surface) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Frames returns the recorded frames
func (s *Surface) Frames() []Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Frame(nil), s.frames...)
}

// Writes returns how many times WriteFrame was called
func (s *Surface) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

// Commits returns how many times Commit was called
func (s *Surface) Commits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commits
}

// Closed reports whether Close was called
func (s *Surface) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// PixelAt returns the bytes of pixel (x, y) in the last frame
func (s *Surface) PixelAt(x, y int) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.frames) == 0 {
		return nil
	}
	bpp := s.info.Format.BytesPerPixel()
	off := y*s.info.Stride + x*bpp
	return append([]byte(nil), s.frames[len(s.frames)-1].Data[off:off+bpp]...)
}
