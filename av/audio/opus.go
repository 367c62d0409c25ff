package audio

import (
	"encoding/binary"
	"fmt"
	"sync"
	"time"

	"github.com/pion/opus"
	"github.com/sirupsen/logrus"
)

// decodedFrame is the size in bytes of one pion/opus Decode output: its
// 320-sample SILK buffer upsampled x3 to s16le.
const decodedFrame = 320 * 3 * 2

// silkUpsample is the fixed factor pion/opus applies to the SILK output rate.
const silkUpsample = 3

// OpusDecoder decodes SILK-only Opus frames with pion/opus and resamples the
// result to the playback rate when needed.
type OpusDecoder struct {
	mu         sync.Mutex
	decoder    opus.Decoder
	output     []byte
	targetRate int
}

// NewOpusDecoder creates a decoder producing mono samples at targetRate.
func NewOpusDecoder(targetRate int) *OpusDecoder {
	if targetRate <= 0 {
		targetRate = SampleRate
	}
	return &OpusDecoder{
		decoder:    opus.NewDecoder(),
		output:     make([]byte, decodedFrame),
		targetRate: targetRate,
	}
}

// Decode decodes one Opus frame.
func (d *OpusDecoder) Decode(data []byte) ([]int16, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFrame
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	bandwidth, _, err := d.decoder.Decode(data, d.output)
	if err != nil {
		return nil, fmt.Errorf("opus decode failed: %w", err)
	}

	rate := bandwidth.SampleRate() * silkUpsample
	samples := min(rate*int(opusFrameDuration(data[0])/time.Millisecond)/1000, len(d.output)/2)
	if samples <= 0 {
		samples = len(d.output) / 2
	}

	pcm := make([]int16, samples)
	for i := range pcm {
		pcm[i] = int16(binary.LittleEndian.Uint16(d.output[i*2:]))
	}

	logrus.WithFields(logrus.Fields{
		"function":  "OpusDecoder.Decode",
		"bandwidth": bandwidth.String(),
		"rate":      rate,
		"samples":   len(pcm),
	}).Debug("Opus frame decoded")

	if rate != d.targetRate {
		return Resample(pcm, rate, d.targetRate), nil
	}
	return pcm, nil
}

// opusFrameDuration reads the frame duration from a TOC byte (RFC 6716 3.1).
func opusFrameDuration(toc byte) time.Duration {
	config := toc >> 3
	switch {
	case config < 12:
		// SILK-only
		return []time.Duration{10, 20, 40, 60}[config%4] * time.Millisecond
	case config < 16:
		// hybrid
		return []time.Duration{10, 20}[config%2] * time.Millisecond
	default:
		// CELT-only
		return []time.Duration{2500 * time.Microsecond, 5 * time.Millisecond, 10 * time.Millisecond, 20 * time.Millisecond}[config%4]
	}
}
