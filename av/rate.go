package av

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// TimeProvider abstracts time for deterministic testing.
type TimeProvider interface {
	Now() time.Time
}

// DefaultTimeProvider uses the system clock.
type DefaultTimeProvider struct{}

// Now returns the current time.
func (DefaultTimeProvider) Now() time.Time { return time.Now() }

// RateTracker reports the average frame rate since Start every N frames.
type RateTracker struct {
	mu     sync.Mutex
	every  int
	tp     TimeProvider
	start  time.Time
	frames int
	fps    float64
}

// NewRateTracker creates a tracker reporting every frames; a nil tp uses the system clock.
func NewRateTracker(every int, tp TimeProvider) *RateTracker {
	if every <= 0 {
		every = DefaultRateEvery
	}
	if tp == nil {
		tp = DefaultTimeProvider{}
	}
	return &RateTracker{every: every, tp: tp}
}

// Start resets the counters and records the reference time.
func (r *RateTracker) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.start = r.tp.Now()
	r.frames = 0
	r.fps = 0
}

// Tick counts one frame. On every Nth frame it computes frames per second
// over the time since Start, logs it and returns it with reported true.
func (r *RateTracker) Tick() (fps float64, reported bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.start.IsZero() {
		r.start = r.tp.Now()
	}
	r.frames++
	if r.frames%r.every != 0 {
		return r.fps, false
	}

	elapsed := r.tp.Now().Sub(r.start).Seconds()
	if elapsed > 0 {
		r.fps = float64(r.frames) / elapsed
	}

	logrus.WithFields(logrus.Fields{
		"function": "RateTracker.Tick",
		"frames":   r.frames,
		"fps":      r.fps,
	}).Info("FPS")

	return r.fps, true
}

// Rate returns the most recently reported frame rate.
func (r *RateTracker) Rate() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.fps
}

// Frames returns the number of frames counted since Start.
func (r *RateTracker) Frames() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frames
}
