package av

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync/atomic"
	"time"

	"github.com/opd-ai/avlink/limits"
	"github.com/opd-ai/avlink/transport"
	"github.com/sirupsen/logrus"
)

// ReceiverState tracks where a receive loop is in its cycle.
type ReceiverState int32

const (
	// ReceiverIdle indicates the socket has not been bound yet
	ReceiverIdle ReceiverState = iota
	// ReceiverBound indicates the socket is bound but the loop has not started
	ReceiverBound
	// ReceiverListening indicates the loop is waiting for a datagram
	ReceiverListening
	// ReceiverValidating indicates a datagram is being size checked and classified
	ReceiverValidating
	// ReceiverDecoding indicates a valid payload is being decoded
	ReceiverDecoding
	// ReceiverBuffered indicates the last payload reached its buffer
	ReceiverBuffered
	// ReceiverShutdown indicates the loop has exited and released its socket
	ReceiverShutdown
)

// String returns the human-readable receiver state name.
func (s ReceiverState) String() string {
	switch s {
	case ReceiverIdle:
		return "idle"
	case ReceiverBound:
		return "bound"
	case ReceiverListening:
		return "listening"
	case ReceiverValidating:
		return "validating"
	case ReceiverDecoding:
		return "decoding"
	case ReceiverBuffered:
		return "buffered"
	case ReceiverShutdown:
		return "shutdown"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// ReceiverStats counts what a receive loop did with incoming datagrams.
type ReceiverStats struct {
	Received     uint64
	Invalid      uint64
	DecodeFailed uint64
	Buffered     uint64
	ReadErrors   uint64
}

// Receiver is the receive loop for one media type. It owns its socket
// exclusively and hands valid payloads to a Sink.
type Receiver struct {
	media   transport.MediaType
	host    string
	port    int
	sink    Sink
	timeout time.Duration

	conn  *transport.Conn
	state atomic.Int32

	received     atomic.Uint64
	invalid      atomic.Uint64
	decodeFailed atomic.Uint64
	buffered     atomic.Uint64
	readErrors   atomic.Uint64
}

// NewReceiver creates an unbound receiver for media on host:port.
// timeout bounds each blocking read so cancellation is observed promptly.
func NewReceiver(media transport.MediaType, host string, port int, sink Sink, timeout time.Duration) *Receiver {
	if timeout <= 0 {
		timeout = DefaultReceiveTimeout
	}
	return &Receiver{
		media:   media,
		host:    host,
		port:    port,
		sink:    sink,
		timeout: timeout,
	}
}

// Bind opens the receive socket with address reuse.
func (r *Receiver) Bind(ctx context.Context) error {
	if r.State() != ReceiverIdle {
		return fmt.Errorf("%w: %s receiver is %s", ErrBindFailed, r.media, r.State())
	}

	conn, err := transport.Listen(ctx, r.host, r.port)
	if err != nil {
		r.setState(ReceiverShutdown)
		return fmt.Errorf("%w: %s port %d: %v", ErrBindFailed, r.media, r.port, err)
	}

	r.conn = conn
	r.setState(ReceiverBound)

	logrus.WithFields(logrus.Fields{
		"function":   "Receiver.Bind",
		"media":      r.media.String(),
		"local_addr": conn.LocalAddr().String(),
	}).Info("Receive socket bound")
	return nil
}

// Run reads datagrams until ctx is cancelled, then closes the socket.
// Every per-packet failure is logged and discarded; Run only returns an
// error when called on a receiver that was never bound.
func (r *Receiver) Run(ctx context.Context) error {
	if r.State() != ReceiverBound {
		return fmt.Errorf("%w: %s receiver is %s", ErrBindFailed, r.media, r.State())
	}
	defer r.shutdown()

	buf := make([]byte, limits.ReadBufferSize)
	for {
		if ctx.Err() != nil {
			return nil
		}

		r.setState(ReceiverListening)
		n, from, err := r.conn.ReadPacket(buf, r.timeout)
		if err != nil {
			if transport.IsTimeout(err) {
				continue
			}
			if transport.IsClosed(err) {
				return nil
			}
			r.readErrors.Add(1)
			logrus.WithFields(logrus.Fields{
				"function": "Receiver.Run",
				"media":    r.media.String(),
				"error":    err.Error(),
			}).Warn("Receive failed")
			continue
		}

		if ctx.Err() != nil {
			return nil
		}

		r.received.Add(1)
		r.handle(buf[:n], from)
	}
}

func (r *Receiver) handle(datagram []byte, from net.Addr) {
	r.setState(ReceiverValidating)
	media, payload, err := transport.Classify(datagram)
	if err == nil && media != r.media {
		err = &transport.InvalidPacketError{Reason: "unexpected " + media.String() + " packet", Length: len(datagram)}
	}
	if err != nil {
		r.invalid.Add(1)
		logrus.WithFields(logrus.Fields{
			"function": "Receiver.handle",
			"media":    r.media.String(),
			"from":     addrString(from),
			"length":   len(datagram),
			"reason":   err.Error(),
		}).Warn("Discarding invalid packet")
		return
	}

	r.setState(ReceiverDecoding)
	if err := r.sink.Deliver(payload); err != nil {
		r.decodeFailed.Add(1)
		logrus.WithFields(logrus.Fields{
			"function": "Receiver.handle",
			"media":    r.media.String(),
			"length":   len(datagram),
			"reason":   err.Error(),
		}).Warn("Discarding undecodable packet")
		return
	}

	r.buffered.Add(1)
	r.setState(ReceiverBuffered)
	logrus.WithFields(logrus.Fields{
		"function": "Receiver.handle",
		"media":    r.media.String(),
		"length":   len(datagram),
	}).Debug("Packet buffered")
}

func (r *Receiver) shutdown() {
	if err := r.conn.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
		logrus.WithFields(logrus.Fields{
			"function": "Receiver.shutdown",
			"media":    r.media.String(),
			"error":    err.Error(),
		}).Error("Failed to close receive socket")
	}
	r.setState(ReceiverShutdown)

	logrus.WithFields(logrus.Fields{
		"function": "Receiver.shutdown",
		"media":    r.media.String(),
		"received": r.received.Load(),
		"invalid":  r.invalid.Load(),
	}).Info("Receive loop stopped")
}

// Close releases a bound socket whose loop was never started.
func (r *Receiver) Close() error {
	if r.conn == nil {
		return nil
	}
	return r.conn.Close()
}

// State returns the current loop state.
func (r *Receiver) State() ReceiverState {
	return ReceiverState(r.state.Load())
}

func (r *Receiver) setState(s ReceiverState) {
	r.state.Store(int32(s))
}

// Media returns the media type this receiver accepts.
func (r *Receiver) Media() transport.MediaType {
	return r.media
}

// LocalAddr returns the bound address, or nil before Bind.
func (r *Receiver) LocalAddr() net.Addr {
	if r.conn == nil {
		return nil
	}
	return r.conn.LocalAddr()
}

// Stats returns a snapshot of the receive counters.
func (r *Receiver) Stats() ReceiverStats {
	return ReceiverStats{
		Received:     r.received.Load(),
		Invalid:      r.invalid.Load(),
		DecodeFailed: r.decodeFailed.Load(),
		Buffered:     r.buffered.Load(),
		ReadErrors:   r.readErrors.Load(),
	}
}

func addrString(addr net.Addr) string {
	if addr == nil {
		return ""
	}
	return addr.String()
}
