//go:build !linux

// ABOUTME: Framebuffer stub for platforms without fbdev
// ABOUTME: Every call fails so the video check reports an open failure
package fbdev

import (
	"errors"

	"github.com/RevolutionPi/eol-test-hdmi/pkg/video"
)

var errUnsupported = errors.New("framebuffer devices are only supported on Linux")

// Device is an opened framebuffer
type Device struct{}

// Open always fails on this platform
func Open(path, tty string) (*Device, error) {
	return nil, errUnsupported
}

// Probe always fails on this platform
func Probe(path string) (video.Info, error) {
	return video.Info{}, errUnsupported
}

func (d *Device) Info() video.Info              { return video.Info{} }
func (d *Device) WriteFrame(frame []byte) error { return errUnsupported }
func (d *Device) Commit() error                 { return errUnsupported }
func (d *Device) Close() error                  { return nil }
