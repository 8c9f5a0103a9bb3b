// ABOUTME: Audio fundamentals package providing core types and utilities
// ABOUTME: Defines Format and sample conversion functions
// Package audio provides the PCM types shared by the tone generator and the
// output sinks.
//
// This package defines:
//   - Format: Describes the sink's sample rate, channel count and bit depth
//   - ErrUnsupportedRate: Returned when a device cannot negotiate a rate
//
// It also provides utilities for converting synthesized floating point
// values into the device's fixed-point representation:
//   - float64 → int16 with round-to-nearest and clamping
//   - int16 → little-endian bytes
//
// Example:
//
//	format := audio.DefaultFormat() // 44100Hz, mono, 16-bit
//	if err := format.Validate(); err != nil {
//	    return err
//	}
//	sample := audio.FloatToInt16(0.5 * audio.Max16Bit)
package audio
