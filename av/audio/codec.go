// Package audio provides the audio codec used by the avlink uplink and
// playback paths.
//
// Encoding is 16-bit little-endian PCM. Decoding is PCM by default, or Opus
// through pion/opus for peers that send real Opus frames.
package audio

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
)

var (
	// ErrEmptyFrame is returned when there is nothing to encode or decode.
	ErrEmptyFrame = errors.New("empty audio frame")

	// ErrOddLength is returned when PCM bytes do not divide into 16-bit samples.
	ErrOddLength = errors.New("pcm data has odd length")

	// ErrUnknownCodec is returned by NewCodec for unsupported decoder names.
	ErrUnknownCodec = errors.New("unknown audio codec")
)

// Encoder turns one period of raw samples into a compressed frame.
type Encoder interface {
	Encode(pcm []int16) ([]byte, error)
}

// Decoder turns one compressed frame into raw samples.
type Decoder interface {
	Decode(data []byte) ([]int16, error)
}

// Codec pairs an encoder for the uplink with a decoder for the downlink.
type Codec interface {
	Encoder
	Decoder
	Close() error
}

// PCMCodec is a passthrough codec carrying 16-bit little-endian samples.
type PCMCodec struct{}

// NewPCMCodec creates a PCM passthrough codec.
func NewPCMCodec() *PCMCodec {
	return &PCMCodec{}
}

// Encode converts samples to little-endian bytes.
func (PCMCodec) Encode(pcm []int16) ([]byte, error) {
	if len(pcm) == 0 {
		return nil, ErrEmptyFrame
	}
	data := make([]byte, len(pcm)*2)
	for i, sample := range pcm {
		data[i*2] = byte(sample)
		data[i*2+1] = byte(sample >> 8)
	}
	return data, nil
}

// Decode converts little-endian bytes back to samples.
func (PCMCodec) Decode(data []byte) ([]int16, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFrame
	}
	if len(data)%2 != 0 {
		return nil, fmt.Errorf("%w: %d bytes", ErrOddLength, len(data))
	}
	pcm := make([]int16, len(data)/2)
	for i := range pcm {
		pcm[i] = int16(data[i*2]) | int16(data[i*2+1])<<8
	}
	return pcm, nil
}

// Close releases nothing; PCMCodec holds no state.
func (PCMCodec) Close() error {
	return nil
}

// pairedCodec sends with one codec and receives with another.
type pairedCodec struct {
	Encoder
	Decoder
	name string
}

func (p *pairedCodec) Close() error {
	logrus.WithFields(logrus.Fields{
		"function": "pairedCodec.Close",
		"codec":    p.name,
	}).Debug("Closing audio codec")
	return nil
}

// NewCodec builds the codec selected by decoder name. The uplink always
// encodes PCM; "opus" only changes how incoming frames are decoded, and its
// output is resampled to sampleRate (0 means SampleRate).
func NewCodec(decoder string, sampleRate int) (Codec, error) {
	switch decoder {
	case "", "pcm":
		return NewPCMCodec(), nil
	case "opus":
		logrus.WithFields(logrus.Fields{
			"function":    "NewCodec",
			"decoder":     decoder,
			"sample_rate": sampleRate,
		}).Info("Using Opus decoder for incoming audio")
		return &pairedCodec{
			Encoder: NewPCMCodec(),
			Decoder: NewOpusDecoder(sampleRate),
			name:    decoder,
		}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCodec, decoder)
	}
}
