// ABOUTME: Malgo-based audio sink implementation
// ABOUTME: Uses miniaudio via malgo for ALSA playback with device selection
package output

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/RevolutionPi/eol-test-hdmi/pkg/audio"
	"github.com/gen2brain/malgo"
	log "github.com/sirupsen/logrus"
)

const (
	malgoBufferMs   = 500
	malgoPoll       = 5 * time.Millisecond
	malgoStallAfter = 2 * time.Second

	// Device buffer: malgoPeriods periods of malgoPeriodMs each
	malgoPeriodMs = 20
	malgoPeriods  = 3
)

// Malgo sink implementation using malgo/miniaudio library
type Malgo struct {
	malgoCtx *malgo.AllocatedContext
	device   *malgo.Device
	format   audio.Format
	name     string

	// Ring buffer for callback-based playback
	ringBuffer *RingBuffer
	feeder     *feeder
	stopped    atomic.Bool
	mu         sync.Mutex
}

// NewMalgo opens the playback device selected by cfg
func NewMalgo(cfg Config) (*Malgo, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize malgo context: %w", err)
	}

	m := &Malgo{
		malgoCtx: ctx,
		format:   cfg.Format,
		name:     "default",
	}

	if err := m.open(cfg); err != nil {
		m.freeContext()
		return nil, err
	}
	return m, nil
}

func (m *Malgo) open(cfg Config) error {
	infos, err := m.malgoCtx.Devices(malgo.Playback)
	if err != nil {
		return fmt.Errorf("failed to enumerate playback devices: %w", err)
	}

	info, err := selectMalgoDevice(infos, cfg.Device)
	if err != nil {
		return err
	}

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Playback)
	deviceConfig.Playback.Format = malgo.FormatS16
	deviceConfig.Playback.Channels = uint32(cfg.Format.Channels)
	deviceConfig.SampleRate = uint32(cfg.Format.SampleRate)
	deviceConfig.PeriodSizeInMilliseconds = malgoPeriodMs
	deviceConfig.Periods = malgoPeriods
	deviceConfig.Alsa.NoMMap = 1

	if info != nil {
		m.name = info.Name()
		if err := m.checkRate(info.ID, cfg.Format.SampleRate); err != nil {
			return err
		}
		deviceConfig.Playback.DeviceID = info.ID.Pointer()
	}

	// Create ring buffer (500ms capacity)
	bufferSamples := (cfg.Format.SampleRate * cfg.Format.Channels * malgoBufferMs) / 1000
	m.ringBuffer = NewRingBuffer(bufferSamples)
	m.feeder = &feeder{
		rb:      m.ringBuffer,
		poll:    malgoPoll,
		stall:   malgoStallAfter,
		stopped: m.stopped.Load,
		tail:    malgoPeriods * malgoPeriodMs * time.Millisecond,
	}

	deviceCallbacks := malgo.DeviceCallbacks{
		Data: func(pOutputSample, pInputSamples []byte, frameCount uint32) {
			m.dataCallback(pOutputSample, frameCount)
		},
		Stop: func() {
			m.stopped.Store(true)
		},
	}

	device, err := malgo.InitDevice(m.malgoCtx.Context, deviceConfig, deviceCallbacks)
	if err != nil {
		return fmt.Errorf("failed to initialize playback device %q: %w", m.name, err)
	}

	if got := int(device.SampleRate()); got != cfg.Format.SampleRate {
		device.Uninit()
		return fmt.Errorf("device %q runs at %dHz, requested %dHz: %w",
			m.name, got, cfg.Format.SampleRate, audio.ErrUnsupportedRate)
	}

	if err := device.Start(); err != nil {
		device.Uninit()
		return fmt.Errorf("failed to start device: %w", err)
	}

	m.device = device

	log.Printf("Device: %s", m.name)
	log.Printf("Audio output initialized: %dHz, %d channels, %d-bit (malgo/S16)",
		cfg.Format.SampleRate, cfg.Format.Channels, cfg.Format.BitDepth)

	return nil
}

// checkRate rejects the device when it advertises native formats and none runs at rate
func (m *Malgo) checkRate(id malgo.DeviceID, rate int) error {
	info, err := m.malgoCtx.DeviceInfo(malgo.Playback, id, malgo.Shared)
	if err != nil {
		log.Debugf("Could not query formats of %q: %v", m.name, err)
		return nil
	}
	if len(info.Formats) == 0 {
		return nil
	}

	rates := make([]uint32, 0, len(info.Formats))
	for _, f := range info.Formats {
		// Zero means the backend accepts any rate
		if f.SampleRate == 0 || int(f.SampleRate) == rate {
			return nil
		}
		rates = append(rates, f.SampleRate)
	}
	return fmt.Errorf("device %q supports %v, requested %dHz: %w", m.name, rates, rate, audio.ErrUnsupportedRate)
}

// selectMalgoDevice returns the device matching want, or nil for the system default
func selectMalgoDevice(infos []malgo.DeviceInfo, want string) (*malgo.DeviceInfo, error) {
	if want == "" {
		for i := range infos {
			if infos[i].IsDefault != 0 {
				return &infos[i], nil
			}
		}
		return nil, nil
	}

	for i := range infos {
		if matchDevice(infos[i].Name(), want) {
			return &infos[i], nil
		}
	}
	return nil, fmt.Errorf("%q: %w", want, ErrDeviceNotFound)
}

func (m *Malgo) Name() string         { return m.name }
func (m *Malgo) Format() audio.Format { return m.format }

// Write queues samples and blocks until the device callback consumed them
func (m *Malgo) Write(samples []int16) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.device == nil {
		return ErrNotOpen
	}
	if err := m.feeder.write(samples); err != nil {
		return fmt.Errorf("malgo write to %q: %w", m.name, err)
	}
	return nil
}

// Drain waits for the ring buffer to empty and the device buffer to play out
func (m *Malgo) Drain() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.device == nil {
		return ErrNotOpen
	}
	if err := m.feeder.flush(); err != nil {
		return err
	}
	if n := m.ringBuffer.Underruns(); n > 0 {
		log.Warnf("Audio device %q reported %d underruns", m.name, n)
	}
	return nil
}

// dataCallback is called by malgo to fill the audio output buffer
func (m *Malgo) dataCallback(pOutput []byte, frameCount uint32) {
	totalSamples := int(frameCount) * m.format.Channels
	samples := make([]int16, totalSamples)

	m.ringBuffer.Read(samples)

	for i, sample := range samples {
		pOutput[i*2] = byte(sample)
		pOutput[i*2+1] = byte(uint16(sample) >> 8)
	}
}

// Close releases output resources
func (m *Malgo) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.device != nil {
		if err := m.device.Stop(); err != nil {
			log.Printf("Warning: device stop error: %v", err)
		}
		m.device.Uninit()
		m.device = nil
	}
	m.freeContext()
	return nil
}

func (m *Malgo) freeContext() {
	if m.malgoCtx == nil {
		return
	}
	if err := m.malgoCtx.Uninit(); err != nil {
		log.Printf("Warning: malgo context uninit error: %v", err)
	}
	m.malgoCtx.Free()
	m.malgoCtx = nil
}

func malgoDevices() ([]string, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize malgo context: %w", err)
	}
	defer func() {
		_ = ctx.Uninit()
		ctx.Free()
	}()

	infos, err := ctx.Devices(malgo.Playback)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(infos))
	for i := range infos {
		name := infos[i].Name()
		if infos[i].IsDefault != 0 {
			name += " (default)"
		}
		names = append(names, name)
	}
	return names, nil
}
