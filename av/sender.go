package av

import (
	"context"
	"fmt"
	"net"
	"sync/atomic"

	"github.com/opd-ai/avlink/transport"
	"github.com/sirupsen/logrus"
)

// SenderStats counts outgoing datagrams.
type SenderStats struct {
	Sent   uint64
	Failed uint64
	Bytes  uint64
}

// Sender owns an unbound UDP socket and transmits framed media to one fixed
// peer endpoint. Each Send writes exactly one datagram and never retries.
type Sender struct {
	media transport.MediaType
	conn  *transport.Conn
	peer  net.Addr

	sent   atomic.Uint64
	failed atomic.Uint64
	bytes  atomic.Uint64
}

// NewSender opens an ephemeral socket for sending media to peer.
func NewSender(ctx context.Context, media transport.MediaType, peer net.Addr) (*Sender, error) {
	conn, err := transport.Listen(ctx, "", 0)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSenderUnavailable, media, err)
	}

	logrus.WithFields(logrus.Fields{
		"function":   "NewSender",
		"media":      media.String(),
		"local_addr": conn.LocalAddr().String(),
		"peer":       peer.String(),
	}).Info("Send socket ready")

	return &Sender{media: media, conn: conn, peer: peer}, nil
}

// Send frames payload for this sender's media type and writes it to the peer.
// Video payloads must already be a complete JPEG stream.
func (s *Sender) Send(payload []byte) error {
	var datagram []byte
	switch s.media {
	case transport.MediaVideo:
		framed, err := transport.FrameVideo(payload)
		if err != nil {
			s.failed.Add(1)
			return err
		}
		datagram = framed
	case transport.MediaAudio:
		datagram = transport.FrameAudio(payload)
	default:
		s.failed.Add(1)
		return fmt.Errorf("send: unsupported media %s", s.media)
	}

	if err := s.conn.WriteTo(datagram, s.peer); err != nil {
		s.failed.Add(1)
		return fmt.Errorf("send %s to %s: %w", s.media, s.peer, err)
	}

	s.sent.Add(1)
	s.bytes.Add(uint64(len(datagram)))
	return nil
}

// Media returns the media type this sender frames.
func (s *Sender) Media() transport.MediaType {
	return s.media
}

// LocalAddr returns the ephemeral address of the send socket.
func (s *Sender) LocalAddr() net.Addr {
	return s.conn.LocalAddr()
}

// Stats returns a snapshot of the send counters.
func (s *Sender) Stats() SenderStats {
	return SenderStats{
		Sent:   s.sent.Load(),
		Failed: s.failed.Load(),
		Bytes:  s.bytes.Load(),
	}
}

// Close releases the send socket.
func (s *Sender) Close() error {
	return s.conn.Close()
}
