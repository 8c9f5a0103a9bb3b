// ABOUTME: Tests for audio sink selection, the null sink and the ring buffer feeder
// ABOUTME: Hardware backends are not exercised here
package output

import (
	"errors"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/RevolutionPi/eol-test-hdmi/pkg/audio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenUnknownBackend(t *testing.T) {
	sink, err := Open("pulseaudio", Config{Format: audio.DefaultFormat()})
	assert.Nil(t, sink)
	assert.ErrorContains(t, err, "unknown audio backend")
}

func TestOpenRejectsInvalidFormat(t *testing.T) {
	sink, err := Open(BackendNull, Config{Format: audio.Format{SampleRate: 0, Channels: 1, BitDepth: 16}})
	assert.Nil(t, sink)
	assert.ErrorIs(t, err, audio.ErrUnsupportedRate)
}

func TestOpenNull(t *testing.T) {
	sink, err := Open("NULL", Config{Format: audio.DefaultFormat()})
	require.NoError(t, err)
	assert.Equal(t, "null", sink.Name())
	assert.Equal(t, audio.DefaultFormat(), sink.Format())
	assert.NoError(t, sink.Close())
}

func TestDevicesStaticBackends(t *testing.T) {
	names, err := Devices(BackendNull)
	require.NoError(t, err)
	assert.Equal(t, []string{"default"}, names)

	_, err = Devices("bogus")
	assert.Error(t, err)
}

func TestMatchDevice(t *testing.T) {
	assert.True(t, matchDevice("vc4-hdmi-0, MAI PCM i2s-hifi-0", "HDMI"))
	assert.True(t, matchDevice("default", "def"))
	assert.False(t, matchDevice("bcm2835 Headphones", "hdmi"))
	assert.False(t, matchDevice("anything", ""))
}

func TestNullPacesWrites(t *testing.T) {
	n := NewNull(audio.DefaultFormat())

	// 50ms of mono audio
	samples := make([]int16, audio.DefaultSampleRate/20)
	start := time.Now()
	require.NoError(t, n.Write(samples))
	assert.GreaterOrEqual(t, time.Since(start), 45*time.Millisecond)
	assert.Len(t, n.Writes(), 1)
}

func TestNullRecordsCopies(t *testing.T) {
	n := NewNull(audio.DefaultFormat())
	n.Realtime = false

	buf := []int16{1, 2, 3}
	require.NoError(t, n.Write(buf))
	buf[0] = 99

	assert.Equal(t, [][]int16{{1, 2, 3}}, n.Writes())
}

func TestNullFailAt(t *testing.T) {
	n := NewNull(audio.DefaultFormat())
	n.Realtime = false
	n.FailAt = 1

	require.NoError(t, n.Write([]int16{1}))
	err := n.Write([]int16{2})
	assert.ErrorIs(t, err, ErrStalled)
	assert.Len(t, n.Writes(), 1)

	custom := errors.New("boom")
	n2 := NewNull(audio.DefaultFormat())
	n2.Realtime = false
	n2.FailAt = 0
	n2.FailErr = custom
	assert.ErrorIs(t, n2.Write([]int16{1}), custom)
}

func TestNullClosed(t *testing.T) {
	n := NewNull(audio.DefaultFormat())
	require.NoError(t, n.Drain())
	assert.True(t, n.Drained())

	require.NoError(t, n.Close())
	assert.True(t, n.Closed())
	assert.ErrorIs(t, n.Write([]int16{1}), ErrNotOpen)
	assert.ErrorIs(t, n.Drain(), ErrNotOpen)
}

func TestRingBuffer(t *testing.T) {
	rb := NewRingBuffer(4)

	assert.Equal(t, 4, rb.Write([]int16{1, 2, 3, 4, 5}))
	assert.Equal(t, 4, rb.Available())
	assert.Equal(t, 0, rb.Free())

	out := make([]int16, 2)
	assert.Equal(t, 2, rb.Read(out))
	assert.Equal(t, []int16{1, 2}, out)

	// Wraps around
	assert.Equal(t, 2, rb.Write([]int16{6, 7}))
	out = make([]int16, 6)
	assert.Equal(t, 4, rb.Read(out))
	assert.Equal(t, []int16{3, 4, 6, 7, 0, 0}, out)
	assert.Equal(t, 1, rb.Underruns())

	// Fully empty reads are silence, not underruns
	assert.Equal(t, 0, rb.Read(out))
	assert.Equal(t, 1, rb.Underruns())
}

// consume reads from rb in the background like a device callback
func consume(rb *RingBuffer, period time.Duration, chunk int) (stop func()) {
	done := make(chan struct{})
	go func() {
		buf := make([]int16, chunk)
		ticker := time.NewTicker(period)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				rb.Read(buf)
			}
		}
	}()
	return func() { close(done) }
}

func TestFeederWriteBlocksUntilConsumed(t *testing.T) {
	rb := NewRingBuffer(16)
	stop := consume(rb, time.Millisecond, 8)
	defer stop()

	f := &feeder{rb: rb, poll: time.Millisecond, stall: time.Second}
	require.NoError(t, f.write(make([]int16, 100)))
	assert.Equal(t, 0, rb.Available())
}

func TestFeederStalls(t *testing.T) {
	rb := NewRingBuffer(8)
	f := &feeder{rb: rb, poll: time.Millisecond, stall: 20 * time.Millisecond}

	err := f.write(make([]int16, 20))
	assert.ErrorIs(t, err, ErrStalled)
	assert.ErrorContains(t, err, "8 of 20 samples queued")
}

func TestFeederDrainStalls(t *testing.T) {
	rb := NewRingBuffer(8)
	rb.Write([]int16{1, 2, 3})
	f := &feeder{rb: rb, poll: time.Millisecond, stall: 20 * time.Millisecond}

	assert.ErrorIs(t, f.drain(), ErrStalled)
}

func TestFeederStopped(t *testing.T) {
	var stopped atomic.Bool
	stopped.Store(true)

	rb := NewRingBuffer(8)
	f := &feeder{rb: rb, poll: time.Millisecond, stall: time.Second, stopped: stopped.Load}

	assert.ErrorIs(t, f.write(make([]int16, 4)), ErrNotOpen)
}

func TestFeederFlushWaitsForDeviceBuffer(t *testing.T) {
	rb := NewRingBuffer(8)
	f := &feeder{rb: rb, poll: time.Millisecond, stall: time.Second, tail: 50 * time.Millisecond}

	start := time.Now()
	require.NoError(t, f.flush())
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
}

func TestFeederFlushStalls(t *testing.T) {
	rb := NewRingBuffer(8)
	rb.Write([]int16{1})
	f := &feeder{rb: rb, poll: time.Millisecond, stall: 20 * time.Millisecond, tail: time.Hour}

	assert.ErrorIs(t, f.flush(), ErrStalled)
}

func TestPipeStreamDeliversChunks(t *testing.T) {
	r, w := io.Pipe()
	got := make(chan []byte, 1)
	go func() {
		b, _ := io.ReadAll(r)
		got <- b
	}()

	p := &pipeStream{w: w, chunk: 3, stall: time.Second}
	data := []byte{1, 2, 3, 4, 5, 6, 7}
	require.NoError(t, p.write(data))
	require.NoError(t, w.Close())

	assert.Equal(t, data, <-got)
}

func TestPipeStreamStallsWhenReaderStops(t *testing.T) {
	r, w := io.Pipe()
	defer r.Close()

	p := &pipeStream{w: w, chunk: 4, stall: 20 * time.Millisecond}

	done := make(chan error, 1)
	go func() { done <- p.write(make([]byte, 16)) }()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, ErrStalled)
		assert.ErrorContains(t, err, "16 bytes not taken")
	case <-time.After(time.Second):
		t.Fatal("write blocked on a reader that never reads")
	}

	// The pipe stays closed for later writes
	assert.Error(t, p.write([]byte{1}))
}

func TestOtoChunkBytes(t *testing.T) {
	assert.Equal(t, 4410*2, otoChunkBytes(audio.DefaultFormat()))
	assert.Equal(t, 4, otoChunkBytes(audio.Format{SampleRate: 1, Channels: 2, BitDepth: 16}))
}
