package device

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/opd-ai/avlink/interfaces"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func fastConfig() interfaces.AudioDeviceConfig {
	// 48 samples at 48 kHz is a 1 ms period.
	return interfaces.AudioDeviceConfig{SampleRate: 48000, FrameSize: 48, Channels: 1}
}

func TestToneDeviceCallbacks(t *testing.T) {
	defer goleak.VerifyNone(t)

	d := NewToneDevice(fastConfig(), 440)

	var inputs, outputs atomic.Int64
	var sawSignal atomic.Bool
	err := d.Start(func(in []int16) {
		inputs.Add(1)
		assert.Len(t, in, 48)
		for _, s := range in {
			if s != 0 {
				sawSignal.Store(true)
			}
		}
	}, func(out []int16) {
		outputs.Add(1)
		for i := range out {
			out[i] = 100
		}
	})
	require.NoError(t, err)

	require.Eventually(t, func() bool { return outputs.Load() >= 5 }, 2*time.Second, time.Millisecond)
	require.NoError(t, d.Stop())

	assert.True(t, sawSignal.Load())
	stats := d.Stats()
	assert.GreaterOrEqual(t, stats.Periods, uint64(5))
	assert.Zero(t, stats.SilentPeriods)
	assert.InDelta(t, 100.0, stats.LastRMS, 0.001)
	assert.GreaterOrEqual(t, inputs.Load(), int64(5))
}

func TestToneDeviceNoCallbackAfterStop(t *testing.T) {
	defer goleak.VerifyNone(t)

	d := NewToneDevice(fastConfig(), 440)

	var active atomic.Int32
	var after atomic.Bool
	var stopped atomic.Bool
	cb := func(out []int16) {
		if stopped.Load() {
			after.Store(true)
		}
		active.Add(1)
		time.Sleep(200 * time.Microsecond)
		active.Add(-1)
	}
	require.NoError(t, d.Start(nil, cb))
	time.Sleep(10 * time.Millisecond)

	require.NoError(t, d.Stop())
	stopped.Store(true)
	assert.Zero(t, active.Load())

	time.Sleep(10 * time.Millisecond)
	assert.False(t, after.Load())
}

func TestToneDeviceLifecycle(t *testing.T) {
	defer goleak.VerifyNone(t)

	d := NewToneDevice(fastConfig(), 440)
	require.NoError(t, d.Start(nil, nil))
	assert.ErrorIs(t, d.Start(nil, nil), ErrAlreadyStarted)
	require.NoError(t, d.Stop())
	require.NoError(t, d.Stop())

	require.NoError(t, d.Start(nil, nil))
	require.NoError(t, d.Close())
	assert.ErrorIs(t, d.Start(nil, nil), ErrClosed)
}
