// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package network

import (
	"io"
	"net"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// DatagramSender exposes an interface which sends individual datagrams.
type DatagramSender interface {
	io.Closer
	SendDatagram(b []byte) error

	// MaxDatagramSize returns the maximum allowed packet size.
	//
	// This value is advisory; the DatagramSender is not responsible for
	// enforcing this size.
	MaxDatagramSize() int
}

// UDPDatagramSender returns a DatagramSender that sends through conn.
//
// UDPDatagramSender takes ownership of conn, and will close it when Close is
// called.
func UDPDatagramSender(conn *net.UDPConn) DatagramSender {
	return &udpDatagramSender{conn: conn}
}

type udpDatagramSender struct {
	// conn is the underlying UDP connection.
	conn *net.UDPConn

	// addr, if not nil, is the destination to send each datagram to. If nil,
	// conn must be connected.
	addr *net.UDPAddr
}

// SendDatagram implements DatagramSender.
func (uds *udpDatagramSender) SendDatagram(b []byte) error {
	if uds.addr != nil {
		_, err := uds.conn.WriteToUDP(b, uds.addr)
		return err
	}
	_, _, err := uds.conn.WriteMsgUDP(b, nil, nil)
	return err
}

func (uds *udpDatagramSender) MaxDatagramSize() int { return MaxUDPSize }
func (uds *udpDatagramSender) Close() error         { return uds.conn.Close() }

// UDP4BroadcastSender opens an unbound IPv4 UDP socket with SO_BROADCAST
// enabled, whose datagrams are sent to the limited broadcast address at the
// specified port.
//
// The caller owns the returned sender and is responsible for closing it.
func UDP4BroadcastSender(port int) (DatagramSender, error) {
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{})
	if err != nil {
		return nil, errors.Wrap(err, "opening broadcast socket")
	}

	if err := setBroadcastOption(conn); err != nil {
		_ = conn.Close()
		return nil, errors.Wrap(err, "enabling SO_BROADCAST")
	}

	return &udpDatagramSender{
		conn: conn,
		addr: &net.UDPAddr{
			IP:   BroadcastIP4Address(),
			Port: port,
		},
	}, nil
}

// setBroadcastOption enables the SO_BROADCAST socket option on conn.
func setBroadcastOption(conn *net.UDPConn) error {
	rc, err := conn.SyscallConn()
	if err != nil {
		return err
	}

	var sockErr error
	if err := rc.Control(func(fd uintptr) {
		sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_BROADCAST, 1)
	}); err != nil {
		return err
	}
	return sockErr
}
