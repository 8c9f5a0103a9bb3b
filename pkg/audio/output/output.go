// ABOUTME: Audio sink interface definition
// ABOUTME: Common interface and backend selection for audio playback devices
package output

import (
	"errors"
	"fmt"
	"strings"

	"github.com/RevolutionPi/eol-test-hdmi/pkg/audio"
)

// Backend names accepted by Open
const (
	BackendMalgo     = "malgo"
	BackendOto       = "oto"
	BackendPortAudio = "portaudio"
	BackendNull      = "null"
)

var (
	// ErrNotOpen is returned when writing to a sink that was closed or never opened
	ErrNotOpen = errors.New("output not initialized")

	// ErrDeviceNotFound is returned when the requested playback device does not exist
	ErrDeviceNotFound = errors.New("playback device not found")

	// ErrStalled is returned when the device stops consuming samples
	ErrStalled = errors.New("playback device stopped consuming samples")
)

// Sink represents exclusive access to one opened audio output device
type Sink interface {
	// Name returns the device name for operator logs
	Name() string

	// Format returns the format the device was opened with
	Format() audio.Format

	// Write outputs samples and blocks until the device has consumed them
	Write(samples []int16) error

	// Drain waits until all queued audio has been played
	Drain() error

	// Close releases output resources
	Close() error
}

// Config selects the device and format to open
type Config struct {
	Format audio.Format

	// Device is a case-insensitive substring of the playback device name.
	// Empty selects the system default device.
	Device string
}

// Open opens a sink on the named backend
func Open(backend string, cfg Config) (Sink, error) {
	if err := cfg.Format.Validate(); err != nil {
		return nil, err
	}

	var (
		sink Sink
		err  error
	)
	switch strings.ToLower(backend) {
	case BackendMalgo, "":
		sink, err = NewMalgo(cfg)
	case BackendOto:
		sink, err = NewOto(cfg)
	case BackendPortAudio:
		sink, err = NewPortAudio(cfg)
	case BackendNull:
		return NewNull(cfg.Format), nil
	default:
		return nil, fmt.Errorf("unknown audio backend %q (supported: %s, %s, %s, %s)",
			backend, BackendMalgo, BackendOto, BackendPortAudio, BackendNull)
	}
	if err != nil {
		return nil, err
	}
	return sink, nil
}

// Devices lists playback device names known to the backend
func Devices(backend string) ([]string, error) {
	switch strings.ToLower(backend) {
	case BackendMalgo, "":
		return malgoDevices()
	case BackendPortAudio:
		return portAudioDevices()
	case BackendOto, BackendNull:
		return []string{"default"}, nil
	default:
		return nil, fmt.Errorf("unknown audio backend %q", backend)
	}
}

// matchDevice reports whether name satisfies the requested device filter
func matchDevice(name, want string) bool {
	if want == "" {
		return false
	}
	return strings.Contains(strings.ToLower(name), strings.ToLower(want))
}
