// Package limits provides the datagram size bounds enforced by the media transport.
// Every datagram read from a socket is validated here before its marker is inspected.
package limits

import (
	"errors"
	"fmt"
)

const (
	// MinDatagramSize is the smallest datagram that can carry a media marker.
	MinDatagramSize = 2

	// MaxDatagramSize is the largest datagram accepted by a receive loop (1,000,000 bytes).
	MaxDatagramSize = 1_000_000

	// ReadBufferSize is the scratch size used by receive loops. One byte larger
	// than MaxDatagramSize so an oversized datagram is observable instead of
	// being silently truncated to a valid length.
	ReadBufferSize = MaxDatagramSize + 1
)

var (
	// ErrDatagramTooSmall indicates the datagram cannot hold a 2-byte marker.
	ErrDatagramTooSmall = errors.New("datagram too small")

	// ErrDatagramTooLarge indicates the datagram exceeds MaxDatagramSize.
	ErrDatagramTooLarge = errors.New("datagram too large")
)

// ValidateDatagram checks data against MinDatagramSize and MaxDatagramSize.
// Returns an error with context including the actual size.
func ValidateDatagram(data []byte) error {
	return ValidateDatagramSize(len(data))
}

// ValidateDatagramSize is ValidateDatagram for callers that only hold a length.
func ValidateDatagramSize(n int) error {
	if n < MinDatagramSize {
		return fmt.Errorf("%w: size %d below minimum %d", ErrDatagramTooSmall, n, MinDatagramSize)
	}
	if n > MaxDatagramSize {
		return fmt.Errorf("%w: size %d exceeds limit %d", ErrDatagramTooLarge, n, MaxDatagramSize)
	}
	return nil
}
