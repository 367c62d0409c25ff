// Package video provides the image codec and frame helpers for avlink.
package video

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
)

// ErrEmptyStream is returned when Decode receives no bytes.
var ErrEmptyStream = errors.New("empty image stream")

const (
	// DefaultQuality is the encoder quality used when none is configured.
	DefaultQuality = 85
	// MinQuality and MaxQuality bound the encoder quality setting.
	MinQuality = 1
	MaxQuality = 100
)

// Codec compresses raw frames for the wire and restores them on receipt.
type Codec interface {
	Encode(img image.Image, quality int) ([]byte, error)
	Decode(data []byte) (image.Image, error)
}

// JPEGCodec is a baseline JPEG codec. Its output starts with the FF D8
// start-of-image marker, which is what the transport uses to recognise video.
type JPEGCodec struct{}

// NewJPEGCodec creates a JPEG codec.
func NewJPEGCodec() *JPEGCodec {
	return &JPEGCodec{}
}

// Encode compresses img at quality, clamped to [MinQuality, MaxQuality].
func (JPEGCodec) Encode(img image.Image, quality int) ([]byte, error) {
	if img == nil {
		return nil, errors.New("nil frame")
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: ClampQuality(quality)}); err != nil {
		return nil, fmt.Errorf("jpeg encode: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode decompresses one JPEG stream. Truncated or corrupt streams fail.
func (JPEGCodec) Decode(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, ErrEmptyStream
	}
	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("jpeg decode: %w", err)
	}
	return img, nil
}

// ClampQuality bounds q to the valid encoder range.
func ClampQuality(q int) int {
	switch {
	case q < MinQuality:
		return MinQuality
	case q > MaxQuality:
		return MaxQuality
	default:
		return q
	}
}

// Resolution represents a video resolution.
type Resolution struct {
	Width  int
	Height int
}

// DefaultResolution is the capture resolution, 640x480.
var DefaultResolution = Resolution{Width: 640, Height: 480}

// String returns a string representation of the resolution.
func (r Resolution) String() string {
	return fmt.Sprintf("%dx%d", r.Width, r.Height)
}

// Valid reports whether both dimensions are positive.
func (r Resolution) Valid() bool {
	return r.Width > 0 && r.Height > 0
}

// ResolutionOf returns the pixel dimensions of img.
func ResolutionOf(img image.Image) Resolution {
	b := img.Bounds()
	return Resolution{Width: b.Dx(), Height: b.Dy()}
}
