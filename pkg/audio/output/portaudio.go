//go:build portaudio

// ABOUTME: PortAudio sink implementation
// ABOUTME: Blocking-mode PortAudio stream with device selection and format checks
package output

import (
	"errors"
	"fmt"

	"github.com/RevolutionPi/eol-test-hdmi/pkg/audio"
	"github.com/gordonklaus/portaudio"
	log "github.com/sirupsen/logrus"
)

const portAudioFramesPerBuffer = 1024

// PortAudio sink implementation
type PortAudio struct {
	stream *portaudio.Stream
	format audio.Format
	name   string
	buffer []int16
}

// NewPortAudio initializes PortAudio and opens a blocking output stream
func NewPortAudio(cfg Config) (*PortAudio, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize portaudio: %w", err)
	}

	p, err := openPortAudio(cfg)
	if err != nil {
		portaudio.Terminate()
		return nil, err
	}
	return p, nil
}

func openPortAudio(cfg Config) (*PortAudio, error) {
	device, err := selectPortAudioDevice(cfg.Device)
	if err != nil {
		return nil, err
	}

	p := &PortAudio{
		format: cfg.Format,
		name:   device.Name,
		buffer: make([]int16, portAudioFramesPerBuffer*cfg.Format.Channels),
	}

	params := portaudio.StreamParameters{
		Output: portaudio.StreamDeviceParameters{
			Device:   device,
			Channels: cfg.Format.Channels,
			Latency:  device.DefaultLowOutputLatency,
		},
		SampleRate:      float64(cfg.Format.SampleRate),
		FramesPerBuffer: portAudioFramesPerBuffer,
	}

	if err := portaudio.IsFormatSupported(params, p.buffer); err != nil {
		if errors.Is(err, portaudio.InvalidSampleRate) {
			return nil, fmt.Errorf("device %q at %dHz: %w", p.name, cfg.Format.SampleRate, audio.ErrUnsupportedRate)
		}
		return nil, fmt.Errorf("device %q rejected %s: %w", p.name, cfg.Format, err)
	}

	stream, err := portaudio.OpenStream(params, &p.buffer)
	if err != nil {
		return nil, fmt.Errorf("failed to open stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		return nil, fmt.Errorf("failed to start stream: %w", err)
	}
	p.stream = stream

	log.Printf("Device: %s", p.name)
	log.Printf("Audio output initialized: %dHz, %d channels (portaudio/int16)",
		cfg.Format.SampleRate, cfg.Format.Channels)

	return p, nil
}

func selectPortAudioDevice(want string) (*portaudio.DeviceInfo, error) {
	if want == "" {
		device, err := portaudio.DefaultOutputDevice()
		if err != nil {
			return nil, fmt.Errorf("no default output device: %w", err)
		}
		return device, nil
	}

	devices, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate devices: %w", err)
	}
	for _, d := range devices {
		if d.MaxOutputChannels > 0 && matchDevice(d.Name, want) {
			return d, nil
		}
	}
	return nil, fmt.Errorf("%q: %w", want, ErrDeviceNotFound)
}

func (p *PortAudio) Name() string         { return p.name }
func (p *PortAudio) Format() audio.Format { return p.format }

// Write pushes samples through the stream one buffer at a time
func (p *PortAudio) Write(samples []int16) error {
	if p.stream == nil {
		return ErrNotOpen
	}

	for len(samples) > 0 {
		n := copy(p.buffer, samples)
		// Pad the final partial buffer with silence
		for i := n; i < len(p.buffer); i++ {
			p.buffer[i] = 0
		}
		samples = samples[n:]

		if err := p.stream.Write(); err != nil {
			if errors.Is(err, portaudio.OutputUnderflowed) {
				log.Debugf("PortAudio output underflowed on %q", p.name)
				continue
			}
			return fmt.Errorf("portaudio write to %q: %w", p.name, err)
		}
	}
	return nil
}

// Drain is a no-op: blocking writes return once PortAudio accepted the buffer
// and Stop in Close waits for queued buffers to finish
func (p *PortAudio) Drain() error {
	if p.stream == nil {
		return ErrNotOpen
	}
	return nil
}

// Close stops the stream after pending buffers played and terminates PortAudio
func (p *PortAudio) Close() error {
	if p.stream == nil {
		return nil
	}
	stopErr := p.stream.Stop()
	closeErr := p.stream.Close()
	p.stream = nil
	termErr := portaudio.Terminate()
	return errors.Join(stopErr, closeErr, termErr)
}

func portAudioDevices() ([]string, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize portaudio: %w", err)
	}
	defer portaudio.Terminate()

	devices, err := portaudio.Devices()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(devices))
	for _, d := range devices {
		if d.MaxOutputChannels > 0 {
			names = append(names, d.Name)
		}
	}
	return names, nil
}
