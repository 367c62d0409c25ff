// Package limits provides centralized datagram size constants and validation
// for the avlink media transport.
//
// # Size Bounds
//
//   - MinDatagramSize (2 bytes): every media datagram starts with a 2-byte marker,
//     so anything shorter cannot be classified.
//
//   - MaxDatagramSize (1,000,000 bytes): the absolute maximum accepted by a receive
//     loop. Larger datagrams are rejected before header classification.
//
// Receive loops read into a ReadBufferSize scratch buffer so that a datagram one
// byte over the limit is still detected.
//
// # Validation
//
//	if err := limits.ValidateDatagram(data); err != nil {
//	    // errors.Is(err, limits.ErrDatagramTooSmall) or limits.ErrDatagramTooLarge
//	}
package limits
