// ABOUTME: Oto-based audio sink implementation
// ABOUTME: Streams S16LE PCM through a persistent oto player fed by a pipe
package output

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/RevolutionPi/eol-test-hdmi/pkg/audio"
	"github.com/ebitengine/oto/v3"
	log "github.com/sirupsen/logrus"
)

const (
	otoBufferSize = 100 * time.Millisecond
	otoPoll       = 5 * time.Millisecond
	otoStallAfter = 2 * time.Second
)

// oto allows a single context per process
var (
	otoOnce    sync.Once
	otoShared  *oto.Context
	otoFormat  audio.Format
	otoInitErr error
)

// Oto sink implementation using oto library
type Oto struct {
	format     audio.Format
	player     *oto.Player
	pipeReader *io.PipeReader
	pipeWriter *io.PipeWriter
	stream     *pipeStream
	mu         sync.Mutex
}

// NewOto opens the default playback device through oto.
// oto cannot select a device; a non-empty cfg.Device is logged and ignored.
func NewOto(cfg Config) (*Oto, error) {
	if cfg.Device != "" {
		log.Warnf("oto backend cannot select devices, ignoring %q", cfg.Device)
	}

	otoOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   cfg.Format.SampleRate,
			ChannelCount: cfg.Format.Channels,
			Format:       oto.FormatSignedInt16LE,
			BufferSize:   otoBufferSize,
		}
		ctx, readyChan, err := oto.NewContext(op)
		if err != nil {
			otoInitErr = fmt.Errorf("failed to create oto context: %w", err)
			return
		}
		<-readyChan
		otoShared = ctx
		otoFormat = cfg.Format
	})
	if otoInitErr != nil {
		return nil, otoInitErr
	}
	if otoFormat != cfg.Format {
		return nil, fmt.Errorf("oto context already runs %s, requested %s: %w",
			otoFormat, cfg.Format, audio.ErrUnsupportedRate)
	}

	o := &Oto{format: cfg.Format}

	// Persistent player reading from a pipe keeps the stream gapless
	o.pipeReader, o.pipeWriter = io.Pipe()
	o.stream = &pipeStream{
		w:     o.pipeWriter,
		chunk: otoChunkBytes(cfg.Format),
		stall: otoStallAfter,
	}
	o.player = otoShared.NewPlayer(o.pipeReader)
	o.player.Play()

	log.Printf("Device: default")
	log.Printf("Audio output initialized: %dHz, %d channels (oto/S16LE)",
		cfg.Format.SampleRate, cfg.Format.Channels)

	return o, nil
}

func (o *Oto) Name() string         { return "default" }
func (o *Oto) Format() audio.Format { return o.format }

// Write outputs samples and blocks until oto has played them
func (o *Oto) Write(samples []int16) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.player == nil {
		return ErrNotOpen
	}

	if err := o.stream.write(audio.Int16ToBytes(samples)); err != nil {
		if perr := o.player.Err(); perr != nil {
			return fmt.Errorf("oto player: %w", perr)
		}
		return err
	}
	return o.waitBuffered()
}

// Drain waits until the player buffer is empty
func (o *Oto) Drain() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.player == nil {
		return ErrNotOpen
	}
	return o.waitBuffered()
}

// waitBuffered polls the player until its buffer empties or playback stalls
func (o *Oto) waitBuffered() error {
	remaining := o.player.BufferedSize()
	lastProgress := time.Now()
	for remaining > 0 {
		if err := o.player.Err(); err != nil {
			return fmt.Errorf("oto player: %w", err)
		}
		time.Sleep(otoPoll)
		now := o.player.BufferedSize()
		if now < remaining {
			remaining = now
			lastProgress = time.Now()
			continue
		}
		if time.Since(lastProgress) > otoStallAfter {
			return fmt.Errorf("%d bytes left in player: %w", remaining, ErrStalled)
		}
	}
	return o.player.Err()
}

// otoChunkBytes is one player buffer worth of bytes, at least one frame
func otoChunkBytes(f audio.Format) int {
	frames := int(int64(f.SampleRate) * int64(otoBufferSize) / int64(time.Second))
	if frames < 1 {
		frames = 1
	}
	return frames * f.FrameBytes()
}

// pipeStream feeds a pipe one chunk at a time. A chunk the reader does not
// take within the stall timeout closes the pipe with ErrStalled.
type pipeStream struct {
	w     *io.PipeWriter
	chunk int
	stall time.Duration
}

func (p *pipeStream) write(b []byte) error {
	for len(b) > 0 {
		n := min(len(b), p.chunk)
		chunk := b[:n]

		done := make(chan error, 1)
		go func() {
			_, err := p.w.Write(chunk)
			done <- err
		}()

		timer := time.NewTimer(p.stall)
		select {
		case err := <-done:
			timer.Stop()
			if err != nil {
				return fmt.Errorf("pipe write failed: %w", err)
			}
		case <-timer.C:
			// Unblocks the pending Write
			p.w.CloseWithError(ErrStalled)
			<-done
			return fmt.Errorf("%d bytes not taken by player: %w", len(b), ErrStalled)
		}
		b = b[n:]
	}
	return nil
}

// Close releases output resources. The shared oto context stays alive.
func (o *Oto) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.pipeWriter != nil {
		o.pipeWriter.Close()
		o.pipeWriter = nil
	}
	var err error
	if o.player != nil {
		err = o.player.Close()
		o.player = nil
	}
	if o.pipeReader != nil {
		o.pipeReader.Close()
		o.pipeReader = nil
	}
	return err
}
