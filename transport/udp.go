package transport

import (
	"context"
	"errors"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Conn is a connectionless media socket owned by exactly one loop.
type Conn struct {
	conn      net.PacketConn
	closeOnce sync.Once
	closeErr  error
}

// Listen opens a UDP socket bound to host:port with address reuse enabled.
// Port 0 binds an ephemeral port.
func Listen(ctx context.Context, host string, port int) (*Conn, error) {
	lc := net.ListenConfig{Control: reuseAddrControl}
	address := net.JoinHostPort(host, strconv.Itoa(port))

	conn, err := lc.ListenPacket(ctx, "udp", address)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "Listen",
			"address":  address,
			"error":    err.Error(),
		}).Error("Failed to bind UDP socket")
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"function":   "Listen",
		"local_addr": conn.LocalAddr().String(),
	}).Debug("UDP socket bound")

	return &Conn{conn: conn}, nil
}

// NewConn wraps an existing packet connection. Mainly useful in tests.
func NewConn(pc net.PacketConn) *Conn {
	return &Conn{conn: pc}
}

// ReadPacket blocks for at most timeout waiting for one datagram.
// A timeout is reported as an error satisfying IsTimeout.
func (c *Conn) ReadPacket(buf []byte, timeout time.Duration) (int, net.Addr, error) {
	if timeout > 0 {
		_ = c.conn.SetReadDeadline(time.Now().Add(timeout))
	}
	return c.conn.ReadFrom(buf)
}

// WriteTo sends a single datagram. No retry is attempted.
func (c *Conn) WriteTo(data []byte, addr net.Addr) error {
	_, err := c.conn.WriteTo(data, addr)
	return err
}

// LocalAddr returns the bound address.
func (c *Conn) LocalAddr() net.Addr {
	return c.conn.LocalAddr()
}

// Close releases the socket. Safe to call more than once.
func (c *Conn) Close() error {
	c.closeOnce.Do(func() {
		c.closeErr = c.conn.Close()
	})
	return c.closeErr
}

// IsTimeout reports whether err is a read deadline expiry.
func IsTimeout(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return false
}

// IsClosed reports whether err comes from using a closed socket.
func IsClosed(err error) bool {
	return errors.Is(err, net.ErrClosed)
}
