package device

import (
	"errors"
	"math"
	"sync"
	"time"

	"github.com/opd-ai/avlink/interfaces"
	"github.com/sirupsen/logrus"
)

// ErrAlreadyStarted is returned when Start is called on a running device.
var ErrAlreadyStarted = errors.New("audio device already started")

// ToneStats summarises what a ToneDevice exchanged with its callbacks.
type ToneStats struct {
	Periods       uint64
	SilentPeriods uint64
	LastRMS       float64
}

// ToneDevice is a headless audio subsystem. A ticker invokes the input
// callback with a sine tone and the output callback with a period to fill,
// once per period, from a dedicated goroutine.
type ToneDevice struct {
	cfg       interfaces.AudioDeviceConfig
	frequency float64

	mu      sync.Mutex
	running bool
	closed  bool
	stop    chan struct{}
	done    chan struct{}
	stats   ToneStats
	phase   float64
}

// NewToneDevice creates a device emitting a frequency Hz tone.
func NewToneDevice(cfg interfaces.AudioDeviceConfig, frequency float64) *ToneDevice {
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = 48000
	}
	if cfg.FrameSize <= 0 {
		cfg.FrameSize = 960
	}
	if cfg.Channels <= 0 {
		cfg.Channels = 1
	}
	return &ToneDevice{cfg: cfg, frequency: frequency}
}

// Start begins the callback loop.
func (d *ToneDevice) Start(in interfaces.InputFunc, out interfaces.OutputFunc) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return ErrClosed
	}
	if d.running {
		return ErrAlreadyStarted
	}

	d.running = true
	d.stop = make(chan struct{})
	d.done = make(chan struct{})

	period := time.Duration(d.cfg.FrameSize) * time.Second / time.Duration(d.cfg.SampleRate)
	go d.loop(period, in, out, d.stop, d.done)

	logrus.WithFields(logrus.Fields{
		"function":    "ToneDevice.Start",
		"sample_rate": d.cfg.SampleRate,
		"frame_size":  d.cfg.FrameSize,
		"period":      period.String(),
	}).Info("Audio device started")
	return nil
}

func (d *ToneDevice) loop(period time.Duration, in interfaces.InputFunc, out interfaces.OutputFunc, stop, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(period)
	defer ticker.Stop()

	n := d.cfg.FrameSize * d.cfg.Channels
	input := make([]int16, n)
	output := make([]int16, n)

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}

		d.fillTone(input)
		if in != nil {
			in(input)
		}
		if out != nil {
			out(output)
			d.record(output)
		}
	}
}

func (d *ToneDevice) fillTone(buf []int16) {
	step := 2 * math.Pi * d.frequency / float64(d.cfg.SampleRate)
	for i := range buf {
		buf[i] = int16(8000 * math.Sin(d.phase))
		d.phase += step
	}
	d.phase = math.Mod(d.phase, 2*math.Pi)
}

func (d *ToneDevice) record(output []int16) {
	var sum float64
	for _, s := range output {
		sum += float64(s) * float64(s)
	}
	rms := math.Sqrt(sum / float64(len(output)))

	d.mu.Lock()
	d.stats.Periods++
	if rms == 0 {
		d.stats.SilentPeriods++
	}
	d.stats.LastRMS = rms
	d.mu.Unlock()
}

// Stats returns a snapshot of the playback statistics.
func (d *ToneDevice) Stats() ToneStats {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stats
}

// Stop halts the callback loop and waits for the in-flight period to finish.
func (d *ToneDevice) Stop() error {
	d.mu.Lock()
	if !d.running {
		d.mu.Unlock()
		return nil
	}
	d.running = false
	stop, done := d.stop, d.done
	d.mu.Unlock()

	close(stop)
	<-done

	logrus.WithFields(logrus.Fields{
		"function": "ToneDevice.Stop",
	}).Info("Audio device stopped")
	return nil
}

// Close stops the device if needed and releases it.
func (d *ToneDevice) Close() error {
	if err := d.Stop(); err != nil {
		return err
	}
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
	return nil
}

var _ interfaces.AudioDevice = (*ToneDevice)(nil)
