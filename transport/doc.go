// Package transport provides the datagram layer for avlink media streams.
//
// # Wire Format
//
// There is no header beyond a 2-byte marker. The marker is the sole content
// type discriminator; identity is arrival order.
//
//	video: FF D8 <rest of JPEG stream>      (the image codec's own SOI marker)
//	audio: AA BB <encoded audio frame>
//
// Datagrams shorter than 2 bytes or longer than limits.MaxDatagramSize are
// rejected before the marker is inspected.
//
// # Sockets
//
// Each media type uses its own fixed port (8080 video, 8081 audio by default)
// so the streams never interleave. Receive sockets are bound with SO_REUSEADDR
// on unix platforms and read with a deadline, so a loop can observe
// cancellation at least once per timeout interval:
//
//	conn, err := transport.Listen(ctx, "", 8080)
//	n, addr, err := conn.ReadPacket(buf, 100*time.Millisecond)
//	if transport.IsTimeout(err) {
//	    // recheck cancellation
//	}
//
// Send sockets are ephemeral and write one unacknowledged datagram per unit.
package transport
