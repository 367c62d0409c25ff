package audio

import (
	"fmt"
	"time"
)

const (
	// SampleRate is the capture, codec and playback rate in Hz.
	SampleRate = 48000
	// Channels is fixed to mono; the codec is tuned for voice.
	Channels = 1
	// FrameSize is the number of samples in one callback period.
	FrameSize = 960
	// FrameDuration is the wall-clock length of one period (20 ms).
	FrameDuration = time.Duration(FrameSize) * time.Second / SampleRate
)

// PadSilence zero-fills buf[filled:] and returns the number of samples padded.
// An output period therefore never contains stale data after an underrun.
func PadSilence(buf []int16, filled int) int {
	if filled < 0 {
		filled = 0
	}
	if filled >= len(buf) {
		return 0
	}
	clear(buf[filled:])
	return len(buf) - filled
}

// ValidateFrameSize checks that frameSize samples at sampleRate is one of the
// frame durations a voice codec accepts: 2.5, 5, 10, 20, 40 or 60 ms.
func ValidateFrameSize(frameSize, sampleRate int) error {
	if frameSize <= 0 || sampleRate <= 0 {
		return fmt.Errorf("invalid frame size %d at %d Hz", frameSize, sampleRate)
	}

	// compare in tenths of a millisecond to keep 2.5 ms exact
	tenths := frameSize * 10000 / sampleRate
	exact := frameSize*10000%sampleRate == 0
	for _, valid := range []int{25, 50, 100, 200, 400, 600} {
		if exact && tenths == valid {
			return nil
		}
	}
	return fmt.Errorf("invalid frame size: %d samples at %d Hz - must be 2.5, 5, 10, 20, 40, or 60 ms",
		frameSize, sampleRate)
}

// PeriodDuration returns the wall-clock length of frameSize samples.
func PeriodDuration(frameSize, sampleRate int) time.Duration {
	if sampleRate <= 0 {
		return 0
	}
	return time.Duration(frameSize) * time.Second / time.Duration(sampleRate)
}
