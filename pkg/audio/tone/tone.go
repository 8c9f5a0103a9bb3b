// ABOUTME: Sine tone steps and synthesis for the audio path check
// ABOUTME: Pure functions that turn a frequency into a PCM buffer
package tone

import (
	"fmt"
	"math"
	"time"

	"github.com/RevolutionPi/eol-test-hdmi/pkg/audio"
)

const (
	// StepDuration is how long each tone plays
	StepDuration = time.Second

	// DefaultLevel is 50% of full scale, the same headroom the test tone source always used
	DefaultLevel = 0.5

	// MaxLevel keeps the peak strictly below the int16 limit
	MaxLevel = 0.99
)

// Step is one tone of the sequence
type Step struct {
	Frequency float64 // Hz
	Duration  time.Duration
}

func (s Step) String() string {
	return fmt.Sprintf("%gHz", s.Frequency)
}

// NewSteps builds the ordered tone list for a sink running at sampleRate.
// Every frequency must be above zero and below the Nyquist frequency.
func NewSteps(sampleRate int, duration time.Duration, frequencies ...float64) ([]Step, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate %d: %w", sampleRate, audio.ErrUnsupportedRate)
	}
	if duration <= 0 {
		return nil, fmt.Errorf("invalid tone duration %v", duration)
	}

	steps := make([]Step, 0, len(frequencies))
	for i, f := range frequencies {
		if err := checkFrequency(f, sampleRate); err != nil {
			return nil, fmt.Errorf("tone %d: %w", i, err)
		}
		steps = append(steps, Step{Frequency: f, Duration: duration})
	}
	return steps, nil
}

// MustSteps is NewSteps for static lists; it panics on an invalid list
func MustSteps(sampleRate int, duration time.Duration, frequencies ...float64) []Step {
	steps, err := NewSteps(sampleRate, duration, frequencies...)
	if err != nil {
		panic(err)
	}
	return steps
}

func checkFrequency(f float64, sampleRate int) error {
	nyquist := audio.Format{SampleRate: sampleRate}.Nyquist()
	if math.IsNaN(f) || f <= 0 || f >= nyquist {
		return fmt.Errorf("frequency %gHz outside (0, %gHz) for %dHz sample rate", f, nyquist, sampleRate)
	}
	return nil
}

// FrameCount returns the number of frames that cover d at sampleRate
func FrameCount(sampleRate int, d time.Duration) int {
	return int(math.Round(float64(sampleRate) * d.Seconds()))
}

// Synthesize generates an interleaved sine wave:
// sample = level * Max16Bit * sin(2π * frequency * t), t advancing 1/sampleRate per frame.
// The same value is written to every channel. Level above MaxLevel is clamped to it;
// zero, negative or NaN level falls back to DefaultLevel.
func Synthesize(frequency float64, format audio.Format, d time.Duration, level float64) []int16 {
	switch {
	case math.IsNaN(level) || level <= 0:
		level = DefaultLevel
	case level > MaxLevel:
		level = MaxLevel
	}
	channels := format.Channels
	if channels < 1 {
		channels = 1
	}

	frames := FrameCount(format.SampleRate, d)
	samples := make([]int16, frames*channels)
	amplitude := level * audio.Max16Bit
	step := 2 * math.Pi * frequency / float64(format.SampleRate)

	for i := 0; i < frames; i++ {
		pcmValue := audio.FloatToInt16(amplitude * math.Sin(step*float64(i)))
		for ch := 0; ch < channels; ch++ {
			samples[i*channels+ch] = pcmValue
		}
	}

	return samples
}
