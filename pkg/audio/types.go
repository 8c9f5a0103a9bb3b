// ABOUTME: Audio type definitions
// ABOUTME: Defines the sink format and signed 16-bit sample conversion
package audio

import (
	"errors"
	"fmt"
	"math"
)

const (
	// 16-bit audio range constants
	Max16Bit = math.MaxInt16 // 2^15 - 1
	Min16Bit = math.MinInt16 // -2^15

	// 44.1kHz mono S16 is accepted by every ALSA "default" device we ship
	DefaultSampleRate = 44100
	DefaultChannels   = 1
	DefaultBitDepth   = 16
)

// ErrUnsupportedRate is returned when a device cannot run at the requested sample rate
var ErrUnsupportedRate = errors.New("sample rate not supported by device")

// Format describes the PCM layout a sink was opened with.
// It is fixed for the lifetime of the sink.
type Format struct {
	SampleRate int
	Channels   int
	BitDepth   int
}

// DefaultFormat returns 44.1kHz mono signed 16-bit
func DefaultFormat() Format {
	return Format{
		SampleRate: DefaultSampleRate,
		Channels:   DefaultChannels,
		BitDepth:   DefaultBitDepth,
	}
}

// Validate reports whether the format can be played by the sinks in this module
func (f Format) Validate() error {
	if f.SampleRate <= 0 {
		return fmt.Errorf("invalid sample rate %d: %w", f.SampleRate, ErrUnsupportedRate)
	}
	if f.Channels < 1 || f.Channels > 2 {
		return fmt.Errorf("unsupported channel count: %d (supported: 1, 2)", f.Channels)
	}
	if f.BitDepth != 16 {
		return fmt.Errorf("unsupported bit depth: %d (supported: 16)", f.BitDepth)
	}
	return nil
}

// Nyquist returns the highest frequency (exclusive) the format can carry
func (f Format) Nyquist() float64 {
	return float64(f.SampleRate) / 2
}

// FrameBytes returns the byte size of one interleaved frame
func (f Format) FrameBytes() int {
	return f.Channels * f.BitDepth / 8
}

func (f Format) String() string {
	return fmt.Sprintf("%dHz/%dch/%dbit", f.SampleRate, f.Channels, f.BitDepth)
}

// FloatToInt16 rounds v to the nearest integer and clamps it to the int16 range
func FloatToInt16(v float64) int16 {
	r := math.Round(v)
	if r > Max16Bit {
		return Max16Bit
	}
	if r < Min16Bit {
		return Min16Bit
	}
	return int16(r)
}

// Int16ToBytes packs samples as little-endian signed 16-bit PCM
func Int16ToBytes(samples []int16) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		out[i*2] = byte(s)
		out[i*2+1] = byte(uint16(s) >> 8)
	}
	return out
}

// Peak returns the largest absolute sample magnitude
func Peak(samples []int16) int {
	peak := 0
	for _, s := range samples {
		v := int(s)
		if v < 0 {
			v = -v
		}
		if v > peak {
			peak = v
		}
	}
	return peak
}
