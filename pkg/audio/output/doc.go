// ABOUTME: Audio output package for playing synthesized tones
// ABOUTME: Provides the Sink interface and malgo, oto, PortAudio and null backends
// Package output provides audio playback sinks.
//
// Every sink is opened once with a fixed format and its Write blocks until the
// device has consumed the buffer, so a caller writing one second of samples
// spends one second in Write.
//
// Backends:
//   - malgo (default): miniaudio over ALSA, supports device selection and
//     reports sample rates the device cannot run at
//   - oto: ebitengine/oto, default device only
//   - portaudio: requires building with -tags portaudio
//   - null: discards samples in real time, for dry runs and tests
//
// Example:
//
//	sink, err := output.Open(output.BackendMalgo, output.Config{
//	    Format: audio.DefaultFormat(),
//	})
//	err = sink.Write(samples)
//	err = sink.Drain()
package output
