// ABOUTME: Thread-safe ring buffer between the writer and the device callback
// ABOUTME: Counts underruns so a starving device is visible in the logs
package output

import (
	"fmt"
	"sync"
	"time"
)

// RingBuffer provides thread-safe circular buffer for audio samples
type RingBuffer struct {
	buffer    []int16
	readPos   int
	writePos  int
	size      int
	count     int // Number of samples currently in buffer
	underruns int
	mu        sync.Mutex
}

// NewRingBuffer creates a ring buffer with given capacity (in samples)
func NewRingBuffer(capacity int) *RingBuffer {
	if capacity < 1 {
		capacity = 1
	}
	return &RingBuffer{
		buffer: make([]int16, capacity),
		size:   capacity,
	}
}

// Write adds samples to the ring buffer and returns how many fit
func (rb *RingBuffer) Write(samples []int16) int {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	written := 0
	for i := 0; i < len(samples) && rb.count < rb.size; i++ {
		rb.buffer[rb.writePos] = samples[i]
		rb.writePos = (rb.writePos + 1) % rb.size
		rb.count++
		written++
	}
	return written
}

// Read retrieves samples from the ring buffer
func (rb *RingBuffer) Read(samples []int16) int {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	read := 0
	for i := 0; i < len(samples) && rb.count > 0; i++ {
		samples[i] = rb.buffer[rb.readPos]
		rb.readPos = (rb.readPos + 1) % rb.size
		rb.count--
		read++
	}

	// Zero-fill remaining if underrun
	for i := read; i < len(samples); i++ {
		samples[i] = 0
	}
	if read > 0 && read < len(samples) {
		rb.underruns++
	}

	return read
}

// Available returns the number of samples available to read
func (rb *RingBuffer) Available() int {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	return rb.count
}

// Free returns the number of free slots in the buffer
func (rb *RingBuffer) Free() int {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	return rb.size - rb.count
}

// Underruns returns how many device reads found the buffer partially empty
func (rb *RingBuffer) Underruns() int {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	return rb.underruns
}

// feeder pushes samples into a ring buffer that a device callback drains
type feeder struct {
	rb      *RingBuffer
	poll    time.Duration
	stall   time.Duration
	stopped func() bool

	// tail is how much audio the device holds after leaving the ring
	tail time.Duration
}

// write blocks until every sample was queued and consumed by the reader.
// It fails when the reader makes no progress for the stall timeout.
func (f *feeder) write(samples []int16) error {
	written := 0
	lastProgress := time.Now()
	for written < len(samples) {
		if f.stopped != nil && f.stopped() {
			return ErrNotOpen
		}
		n := f.rb.Write(samples[written:])
		written += n
		if n > 0 {
			lastProgress = time.Now()
			continue
		}
		if time.Since(lastProgress) > f.stall {
			return fmt.Errorf("%d of %d samples queued: %w", written, len(samples), ErrStalled)
		}
		time.Sleep(f.poll)
	}
	return f.drain()
}

// flush drains the ring and then waits out the device's own buffer
func (f *feeder) flush() error {
	if err := f.drain(); err != nil {
		return err
	}
	time.Sleep(f.tail)
	return nil
}

// drain blocks until the reader emptied the buffer
func (f *feeder) drain() error {
	remaining := f.rb.Available()
	lastProgress := time.Now()
	for remaining > 0 {
		if f.stopped != nil && f.stopped() {
			return ErrNotOpen
		}
		time.Sleep(f.poll)
		now := f.rb.Available()
		if now < remaining {
			remaining = now
			lastProgress = time.Now()
			continue
		}
		if time.Since(lastProgress) > f.stall {
			return fmt.Errorf("%d samples left in buffer: %w", remaining, ErrStalled)
		}
	}
	return nil
}
