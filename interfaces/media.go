package interfaces

import (
	"errors"
	"image"
	"time"
)

// ErrEmptyFrame is returned by a Camera that could not produce a frame.
var ErrEmptyFrame = errors.New("camera returned an empty frame")

// Camera is the local capture device.
type Camera interface {
	// Grab blocks until the next raw frame is available. A nil image or an
	// error means capture failed; the controller treats it as fatal.
	Grab() (image.Image, error)

	// Close releases the device.
	Close() error
}

// Renderer displays frames and reports the user's quit request.
type Renderer interface {
	// Show displays one frame.
	Show(img image.Image) error

	// WaitKey waits up to d for the next frame tick and returns true when
	// the user asked to quit.
	WaitKey(d time.Duration) bool

	// Close tears down the display surface.
	Close() error
}

// InputFunc receives one period of captured samples. The slice is only
// valid for the duration of the call.
type InputFunc func(in []int16)

// OutputFunc fills one period of samples for playback. It must fill every
// element of out before returning.
type OutputFunc func(out []int16)

// AudioDevice is the audio I/O subsystem. It invokes in and out once per
// period from its own real-time context; both must return promptly.
type AudioDevice interface {
	// Start begins invoking the callbacks.
	Start(in InputFunc, out OutputFunc) error

	// Stop halts the callbacks. After Stop returns no callback is running.
	Stop() error

	// Close releases the device.
	Close() error
}

// AudioDeviceConfig describes the period layout a device must use.
type AudioDeviceConfig struct {
	// SampleRate in Hz
	SampleRate int
	// FrameSize is the number of samples per callback period
	FrameSize int
	// Channels is the interleaved channel count
	Channels int
}
