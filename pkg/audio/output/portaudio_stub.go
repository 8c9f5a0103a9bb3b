//go:build !portaudio

// ABOUTME: PortAudio stub when library not available
// ABOUTME: Provides compile-time placeholder when PortAudio not installed
package output

import (
	"errors"

	"github.com/RevolutionPi/eol-test-hdmi/pkg/audio"
)

var errPortAudioDisabled = errors.New("PortAudio support not enabled (build with -tags portaudio)")

// PortAudio sink implementation (stub)
type PortAudio struct{}

// NewPortAudio always fails without the portaudio build tag
func NewPortAudio(cfg Config) (*PortAudio, error) {
	return nil, errPortAudioDisabled
}

func (p *PortAudio) Name() string                { return "portaudio" }
func (p *PortAudio) Format() audio.Format        { return audio.Format{} }
func (p *PortAudio) Write(samples []int16) error { return errPortAudioDisabled }
func (p *PortAudio) Drain() error                { return errPortAudioDisabled }
func (p *PortAudio) Close() error                { return nil }

func portAudioDevices() ([]string, error) {
	return nil, errPortAudioDisabled
}
