package av

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// mockTimeProvider implements TimeProvider for deterministic testing.
type mockTimeProvider struct {
	currentTime time.Time
}

// Now returns the mock current time.
func (m *mockTimeProvider) Now() time.Time {
	return m.currentTime
}

// Advance moves the mock time forward by the specified duration.
func (m *mockTimeProvider) Advance(d time.Duration) {
	m.currentTime = m.currentTime.Add(d)
}

func TestRateTrackerReportsEveryN(t *testing.T) {
	clock := &mockTimeProvider{currentTime: time.Unix(1000, 0)}
	r := NewRateTracker(30, clock)
	r.Start()

	for i := 1; i < 30; i++ {
		clock.Advance(time.Second / 30)
		_, reported := r.Tick()
		assert.False(t, reported, "frame %d", i)
	}

	clock.Advance(time.Second / 30)
	fps, reported := r.Tick()
	assert.True(t, reported)
	assert.InDelta(t, 30.0, fps, 0.01)
	assert.InDelta(t, 30.0, r.Rate(), 0.01)
	assert.Equal(t, 30, r.Frames())
}

func TestRateTrackerCumulativeAverage(t *testing.T) {
	clock := &mockTimeProvider{currentTime: time.Unix(0, 0)}
	r := NewRateTracker(2, clock)
	r.Start()

	r.Tick()
	clock.Advance(time.Second)
	fps, reported := r.Tick()
	assert.True(t, reported)
	assert.InDelta(t, 2.0, fps, 1e-9)

	r.Tick()
	clock.Advance(3 * time.Second)
	fps, _ = r.Tick()
	assert.InDelta(t, 1.0, fps, 1e-9)
}

func TestRateTrackerZeroElapsed(t *testing.T) {
	clock := &mockTimeProvider{currentTime: time.Unix(0, 0)}
	r := NewRateTracker(1, clock)
	r.Start()

	fps, reported := r.Tick()
	assert.True(t, reported)
	assert.Zero(t, fps)
}

func TestRateTrackerDefaults(t *testing.T) {
	r := NewRateTracker(0, nil)
	assert.Equal(t, DefaultRateEvery, r.every)
	assert.IsType(t, DefaultTimeProvider{}, r.tp)

	r.Start()
	r.Tick()
	assert.Equal(t, 1, r.Frames())
}
