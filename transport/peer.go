package transport

import (
	"errors"
	"fmt"
	"net"
	"net/netip"
	"strings"
)

// ErrInvalidPeer indicates the user-supplied peer address is not a valid IP.
var ErrInvalidPeer = errors.New("invalid peer address")

// ParsePeer builds the UDP endpoint for ip:port. Surrounding whitespace from a
// line of user input is ignored; host names are rejected.
func ParsePeer(ip string, port int) (net.Addr, error) {
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("%w: port %d out of range", ErrInvalidPeer, port)
	}
	addr, err := netip.ParseAddr(strings.TrimSpace(ip))
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidPeer, strings.TrimSpace(ip), err)
	}
	return net.UDPAddrFromAddrPort(netip.AddrPortFrom(addr.Unmap(), uint16(port))), nil
}

// PeerEndpoints holds the fixed per-media addresses of the remote peer.
// It is built once at startup and never modified.
type PeerEndpoints struct {
	Video net.Addr
	Audio net.Addr
}

// NewPeerEndpoints parses ip once and pairs it with the video and audio ports.
func NewPeerEndpoints(ip string, videoPort, audioPort int) (PeerEndpoints, error) {
	video, err := ParsePeer(ip, videoPort)
	if err != nil {
		return PeerEndpoints{}, err
	}
	audio, err := ParsePeer(ip, audioPort)
	if err != nil {
		return PeerEndpoints{}, err
	}
	return PeerEndpoints{Video: video, Audio: audio}, nil
}
