package jitter

import (
	"encoding/binary"
	"sync"

	"github.com/smallnest/ringbuffer"
)

const bytesPerSample = 2

// SampleBuffer is a drop-oldest ring of 16-bit PCM samples. Consumers pop an
// arbitrary number of samples, so a playback period never has to line up with
// the size of the decoded frames that were pushed.
type SampleBuffer struct {
	mu       sync.Mutex
	ring     *ringbuffer.RingBuffer
	capacity int
	scratch  []byte
	stats    Stats
}

// NewSampleBuffer creates a buffer holding at most capacity samples.
func NewSampleBuffer(capacity int) *SampleBuffer {
	if capacity < 1 {
		capacity = 1
	}
	return &SampleBuffer{
		ring:     ringbuffer.New(capacity * bytesPerSample),
		capacity: capacity,
		scratch:  make([]byte, capacity*bytesPerSample),
	}
}

// Push appends samples, evicting the oldest buffered samples when the ring
// would overflow. Returns the number of samples discarded.
func (s *SampleBuffer) Push(samples []int16) int {
	if len(samples) == 0 {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.stats.Pushed += uint64(len(samples))
	dropped := 0

	if len(samples) >= s.capacity {
		dropped += s.ring.Length()/bytesPerSample + len(samples) - s.capacity
		s.ring.Reset()
		samples = samples[len(samples)-s.capacity:]
	} else if need := len(samples) * bytesPerSample; need > s.ring.Free() {
		evict := need - s.ring.Free()
		n, _ := s.ring.Read(s.scratch[:evict])
		dropped += n / bytesPerSample
	}

	buf := s.scratch[:len(samples)*bytesPerSample]
	for i, v := range samples {
		binary.LittleEndian.PutUint16(buf[i*bytesPerSample:], uint16(v))
	}
	_, _ = s.ring.Write(buf)

	s.stats.Dropped += uint64(dropped)
	return dropped
}

// PopInto fills dst from the head of the buffer and returns how many samples
// were copied. A short count is an underrun; the caller pads the remainder.
// It does not allocate, so it is safe inside a real-time audio callback.
func (s *SampleBuffer) PopInto(dst []int16) int {
	if len(dst) == 0 {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.popLocked(dst, len(dst))
}

// PopN removes up to n samples from the head. Fewer than n are returned when
// the buffer runs short.
func (s *SampleBuffer) PopN(n int) []int16 {
	if n <= 0 {
		return []int16{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]int16, min(n, s.ring.Length()/bytesPerSample))
	got := s.popLocked(out, n)
	return out[:got]
}

func (s *SampleBuffer) popLocked(dst []int16, requested int) int {
	n := min(len(dst), s.ring.Length()/bytesPerSample)
	if n < requested {
		s.stats.Underruns++
	}
	if n == 0 {
		return 0
	}

	buf := s.scratch[:n*bytesPerSample]
	read, _ := s.ring.Read(buf)
	n = read / bytesPerSample
	for i := 0; i < n; i++ {
		dst[i] = int16(binary.LittleEndian.Uint16(buf[i*bytesPerSample:]))
	}
	s.stats.Popped += uint64(n)
	return n
}

// Len returns the number of buffered samples.
func (s *SampleBuffer) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ring.Length() / bytesPerSample
}

// Cap returns the capacity in samples.
func (s *SampleBuffer) Cap() int {
	return s.capacity
}

// Stats returns a snapshot of the counters, in samples.
func (s *SampleBuffer) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// Reset discards all buffered samples.
func (s *SampleBuffer) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ring.Reset()
}
