// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package network contains generic network constants and utilities.
package network

import (
	"net"

	"github.com/pkg/errors"
)

const (
	// MaxUDPSize is the largest practical UDP packet size with an IPv4
	// header.
	MaxUDPSize = 65507
)

// BroadcastIP4Address generates the IPv4 limited broadcast address.
func BroadcastIP4Address() net.IP { return net.IP{255, 255, 255, 255} }

// ParseIP4Address parses the string, v, into an IPv4 address. If v failed to
// parse, or if v did not parse into an IPv4 address, an error will be
// returned.
func ParseIP4Address(v string) (net.IP, error) {
	ip := net.ParseIP(v)
	if ip == nil {
		return nil, errors.Errorf("could not parse IP address %q", v)
	}

	ip = ip.To4()
	if ip == nil {
		return nil, errors.Errorf("unable to get IPv4 address for %q", v)
	}

	return ip, nil
}

// GetIPNet interprets addr as an IP network, if it is one.
func GetIPNet(addr net.Addr) *net.IPNet {
	switch t := addr.(type) {
	case *net.IPNet:
		return t
	case *net.IPAddr:
		return &net.IPNet{
			IP:   t.IP,
			Mask: t.IP.DefaultMask(),
		}
	case *net.UDPAddr:
		return &net.IPNet{
			IP:   t.IP,
			Mask: t.IP.DefaultMask(),
		}
	default:
		// Not an IP interface.
		return nil
	}
}
