// Package transport implements the datagram layer of the avlink media pipeline.
//
// This package handles marker framing, UDP sockets with address reuse and
// receive timeouts, and peer endpoint parsing.
//
// Example:
//
//	media, payload, err := transport.Classify(datagram)
//	if err != nil {
//	    // invalid header or size, discard
//	}
package transport

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/opd-ai/avlink/limits"
)

// MediaType identifies the content carried by a datagram.
type MediaType byte

const (
	// MediaVideo is a JPEG byte stream starting with its own SOI marker.
	MediaVideo MediaType = iota + 1
	// MediaAudio is an audio frame prefixed with AudioMarker.
	MediaAudio
)

// String returns the lower-case media name used in log fields.
func (m MediaType) String() string {
	switch m {
	case MediaVideo:
		return "video"
	case MediaAudio:
		return "audio"
	default:
		return fmt.Sprintf("media(%d)", byte(m))
	}
}

var (
	// VideoMarker is the JPEG start-of-image marker.
	VideoMarker = [2]byte{0xFF, 0xD8}
	// AudioMarker is the application marker prefixed to every audio frame.
	AudioMarker = [2]byte{0xAA, 0xBB}
)

// ErrInvalidPacket matches every *InvalidPacketError via errors.Is.
var ErrInvalidPacket = errors.New("invalid packet")

// InvalidPacketError describes a datagram that carries no known marker.
type InvalidPacketError struct {
	Reason string
	Length int
}

func (e *InvalidPacketError) Error() string {
	return fmt.Sprintf("invalid packet: %s (received %d bytes)", e.Reason, e.Length)
}

// Is reports whether target is ErrInvalidPacket.
func (e *InvalidPacketError) Is(target error) bool {
	return target == ErrInvalidPacket
}

// Classify validates the datagram size and identifies its media type by marker.
//
// Video payloads are returned whole because the image decoder consumes the
// marker as part of the stream. Audio payloads have the marker stripped.
// The returned payload aliases data.
func Classify(data []byte) (MediaType, []byte, error) {
	if err := limits.ValidateDatagram(data); err != nil {
		return 0, nil, err
	}

	switch {
	case data[0] == VideoMarker[0] && data[1] == VideoMarker[1]:
		return MediaVideo, data, nil
	case data[0] == AudioMarker[0] && data[1] == AudioMarker[1]:
		return MediaAudio, data[2:], nil
	default:
		return 0, nil, &InvalidPacketError{Reason: "unrecognized header", Length: len(data)}
	}
}

// FrameAudio prefixes an encoded audio frame with AudioMarker.
func FrameAudio(payload []byte) []byte {
	packet := make([]byte, 0, len(payload)+len(AudioMarker))
	packet = append(packet, AudioMarker[:]...)
	return append(packet, payload...)
}

// FrameVideo checks that payload is a self-describing JPEG stream within the
// datagram limit. Video needs no additional framing.
func FrameVideo(payload []byte) ([]byte, error) {
	if err := limits.ValidateDatagram(payload); err != nil {
		return nil, err
	}
	if !bytes.HasPrefix(payload, VideoMarker[:]) {
		return nil, &InvalidPacketError{Reason: "missing image start marker", Length: len(payload)}
	}
	return payload, nil
}
