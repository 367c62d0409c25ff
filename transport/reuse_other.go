//go:build !unix

package transport

import "syscall"

func reuseAddrControl(network, address string, c syscall.RawConn) error {
	return nil
}
