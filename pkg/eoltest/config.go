// ABOUTME: Test configuration: how to open each device and the static step lists
// ABOUTME: DefaultConfig wires red/green/blue and a three tone siren
package eoltest

import (
	"time"

	"github.com/RevolutionPi/eol-test-hdmi/pkg/audio"
	"github.com/RevolutionPi/eol-test-hdmi/pkg/audio/output"
	"github.com/RevolutionPi/eol-test-hdmi/pkg/audio/tone"
	"github.com/RevolutionPi/eol-test-hdmi/pkg/video"
)

// DefaultFrequencies are the siren tones in Hz
var DefaultFrequencies = []float64{440, 880, 1320}

// Config describes one test run
type Config struct {
	// OpenSurface opens the display. Called before OpenSink.
	OpenSurface func() (video.Surface, error)

	// OpenSink opens the audio device
	OpenSink func() (output.Sink, error)

	// VideoDevice and AudioDevice name the devices in errors and reports
	VideoDevice string
	AudioDevice string

	ColorSteps []video.ColorStep
	ToneSteps  []tone.Step

	// Level is the tone amplitude as a fraction of full scale
	Level float64

	// OnEvent receives progress from both sequencers concurrently
	OnEvent func(Event)
}

// DefaultConfig returns the fixed test sequence without device openers
func DefaultConfig() Config {
	return Config{
		ColorSteps: video.DefaultSteps(),
		ToneSteps:  DefaultToneSteps(audio.DefaultSampleRate),
		Level:      tone.DefaultLevel,
	}
}

// DefaultToneSteps returns the siren for a sink running at sampleRate
func DefaultToneSteps(sampleRate int) []tone.Step {
	return tone.MustSteps(sampleRate, tone.StepDuration, DefaultFrequencies...)
}

// Duration returns how long the sequences take when nothing fails
func (c Config) Duration() time.Duration {
	return max(video.Duration(c.ColorSteps), tone.Duration(c.ToneSteps))
}
