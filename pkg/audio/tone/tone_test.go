// ABOUTME: Tests for tone step construction, synthesis and the sequencer
// ABOUTME: Uses the null sink so no audio hardware is touched
package tone

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/RevolutionPi/eol-test-hdmi/pkg/audio"
	"github.com/RevolutionPi/eol-test-hdmi/pkg/audio/output"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSteps(t *testing.T) {
	steps, err := NewSteps(44100, time.Second, 440, 880, 1320)
	require.NoError(t, err)
	require.Len(t, steps, 3)
	assert.Equal(t, Step{Frequency: 880, Duration: time.Second}, steps[1])
	assert.Equal(t, "1320Hz", steps[2].String())
}

func TestNewStepsRejectsInvalidFrequencies(t *testing.T) {
	tests := []struct {
		name string
		freq float64
	}{
		{"zero", 0},
		{"negative", -10},
		{"nyquist", 22050},
		{"above nyquist", 30000},
		{"nan", math.NaN()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSteps(44100, time.Second, 440, tt.freq)
			assert.ErrorContains(t, err, "tone 1")
		})
	}
}

func TestNewStepsRejectsBadRate(t *testing.T) {
	_, err := NewSteps(0, time.Second, 440)
	assert.ErrorIs(t, err, audio.ErrUnsupportedRate)

	_, err = NewSteps(44100, 0, 440)
	assert.Error(t, err)
}

func TestMustStepsPanics(t *testing.T) {
	assert.Panics(t, func() { MustSteps(8000, time.Second, 5000) })
	assert.NotPanics(t, func() { MustSteps(8000, time.Second, 1000) })
}

func TestFrameCount(t *testing.T) {
	assert.Equal(t, 44100, FrameCount(44100, time.Second))
	assert.Equal(t, 4800, FrameCount(48000, 100*time.Millisecond))
	assert.Equal(t, 0, FrameCount(44100, 0))
}

func TestSynthesizeLengthAndPeak(t *testing.T) {
	format := audio.DefaultFormat()
	samples := Synthesize(440, format, time.Second, DefaultLevel)

	require.Len(t, samples, 44100)
	assert.Equal(t, int16(0), samples[0])

	peak := audio.Peak(samples)
	assert.Less(t, peak, int(audio.Max16Bit))
	// 0.5 of full scale, short of the exact crest between samples
	assert.InDelta(t, 16384, peak, 20)
}

func TestSynthesizeMaxLevelStaysBelowLimit(t *testing.T) {
	samples := Synthesize(1000, audio.DefaultFormat(), time.Second, MaxLevel)
	assert.Less(t, audio.Peak(samples), int(audio.Max16Bit))
}

func TestSynthesizeInvalidLevelFallsBack(t *testing.T) {
	a := Synthesize(440, audio.DefaultFormat(), 10*time.Millisecond, 0)
	b := Synthesize(440, audio.DefaultFormat(), 10*time.Millisecond, math.NaN())
	c := Synthesize(440, audio.DefaultFormat(), 10*time.Millisecond, DefaultLevel)
	assert.Equal(t, c, a)
	assert.Equal(t, c, b)
}

func TestSynthesizeClampsLoudLevels(t *testing.T) {
	loudest := Synthesize(1000, audio.DefaultFormat(), 10*time.Millisecond, MaxLevel)
	for _, level := range []float64{0.995, 1, 1.5} {
		samples := Synthesize(1000, audio.DefaultFormat(), 10*time.Millisecond, level)
		assert.Equal(t, loudest, samples, "level %g", level)
		assert.Less(t, audio.Peak(samples), int(audio.Max16Bit))
	}
	assert.Greater(t, audio.Peak(loudest), 32000)
}

func TestSynthesizeStereoDuplicatesChannels(t *testing.T) {
	format := audio.Format{SampleRate: 48000, Channels: 2, BitDepth: 16}
	samples := Synthesize(1000, format, 10*time.Millisecond, DefaultLevel)

	require.Len(t, samples, 960)
	for i := 0; i < len(samples); i += 2 {
		assert.Equal(t, samples[i], samples[i+1])
	}
}

func TestSynthesizeFrequency(t *testing.T) {
	// 1000Hz at 8000Hz: one period is 8 frames, sample 2 is the positive peak
	format := audio.Format{SampleRate: 8000, Channels: 1, BitDepth: 16}
	samples := Synthesize(1000, format, time.Millisecond, DefaultLevel)

	require.Len(t, samples, 8)
	assert.InDelta(t, 16384, samples[2], 1)
	assert.InDelta(t, -16384, samples[6], 1)
	assert.InDelta(t, 0, samples[4], 1)
}

func newSink() *output.Null {
	n := output.NewNull(audio.DefaultFormat())
	n.Realtime = false
	return n
}

func TestSequencerPlaysInOrder(t *testing.T) {
	sink := newSink()
	steps := MustSteps(44100, 100*time.Millisecond, 440, 880, 1320)

	var seen []float64
	s := &Sequencer{
		Sink:  sink,
		Level: DefaultLevel,
		OnStep: func(i int, step Step) {
			assert.Equal(t, len(seen), i)
			seen = append(seen, step.Frequency)
		},
	}
	require.NoError(t, s.Run(steps))

	assert.Equal(t, []float64{440, 880, 1320}, seen)
	writes := sink.Writes()
	require.Len(t, writes, 3)
	for i, w := range writes {
		assert.Len(t, w, 4410)
		assert.Equal(t, Synthesize(steps[i].Frequency, sink.Format(), steps[i].Duration, DefaultLevel), w)
	}
	assert.True(t, sink.Drained())
}

func TestSequencerRealtime(t *testing.T) {
	sink := output.NewNull(audio.DefaultFormat())
	steps := MustSteps(44100, 50*time.Millisecond, 440, 880)

	start := time.Now()
	require.NoError(t, Run(sink, steps))
	assert.GreaterOrEqual(t, time.Since(start), 95*time.Millisecond)
	assert.Equal(t, 100*time.Millisecond, Duration(steps))
}

func TestSequencerEmpty(t *testing.T) {
	sink := newSink()
	require.NoError(t, Run(sink, nil))
	assert.Empty(t, sink.Writes())
	assert.False(t, sink.Drained())
}

func TestSequencerWriteFailure(t *testing.T) {
	sink := newSink()
	sink.FailAt = 1

	err := Run(sink, MustSteps(44100, 10*time.Millisecond, 440, 880, 1320))
	require.Error(t, err)

	var toneErr *Error
	require.True(t, errors.As(err, &toneErr))
	assert.Equal(t, 1, toneErr.Step)
	assert.Equal(t, 880.0, toneErr.Frequency)
	assert.ErrorIs(t, err, ErrDeviceWrite)
	assert.ErrorIs(t, err, output.ErrStalled)

	// Remaining tones are not played
	assert.Len(t, sink.Writes(), 1)
	assert.False(t, sink.Drained())
}

func TestSequencerUnsupportedRate(t *testing.T) {
	sink := output.NewNull(audio.Format{SampleRate: 8000, Channels: 1, BitDepth: 16})
	sink.Realtime = false

	steps := []Step{{Frequency: 440, Duration: time.Millisecond}, {Frequency: 6000, Duration: time.Millisecond}}
	err := Run(sink, steps)

	assert.ErrorIs(t, err, audio.ErrUnsupportedRate)
	var toneErr *Error
	require.True(t, errors.As(err, &toneErr))
	assert.Equal(t, 1, toneErr.Step)
	assert.Empty(t, sink.Writes())
}

func TestSequencerStepsBuiltForAnotherRate(t *testing.T) {
	steps := MustSteps(48000, time.Millisecond, 440, 6000)

	sink := output.NewNull(audio.Format{SampleRate: 8000, Channels: 1, BitDepth: 16})
	sink.Realtime = false
	err := Run(sink, steps)

	assert.ErrorIs(t, err, audio.ErrUnsupportedRate)
	assert.ErrorContains(t, err, "8000Hz sample rate")
	assert.Empty(t, sink.Writes())
}

func TestSequencerDrainFailure(t *testing.T) {
	sink := newSink()
	steps := MustSteps(44100, time.Millisecond, 440)

	s := &Sequencer{Sink: closingSink{sink}}
	err := s.Run(steps)
	assert.ErrorIs(t, err, ErrDeviceWrite)
	assert.ErrorIs(t, err, output.ErrNotOpen)
}

// closingSink closes the underlying sink after the last write so Drain fails
type closingSink struct{ *output.Null }

func (c closingSink) Write(samples []int16) error {
	if err := c.Null.Write(samples); err != nil {
		return err
	}
	return c.Null.Close()
}
