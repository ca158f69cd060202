// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package network

import (
	"net"

	"github.com/pkg/errors"
)

var (
	// ErrInterfaceNotFound is returned by ProbeInterface when no interface
	// with the supplied name exists.
	ErrInterfaceNotFound = errors.New("network interface not found")

	// ErrAddressUnavailable is returned by ProbeInterface when the named
	// interface exists, but its hardware address or IPv4 address could not be
	// determined. This is common during early boot, before the interface has
	// been brought up.
	ErrAddressUnavailable = errors.New("interface address unavailable")
)

// InterfaceInfo is the result of a successful interface probe.
type InterfaceInfo struct {
	// HardwareAddr is the interface's 6-byte MAC address.
	HardwareAddr net.HardwareAddr

	// IP is the interface's IPv4 address.
	IP net.IP
}

// ProbeInterface queries the operating system for the hardware address and
// IPv4 address of the named interface.
//
// ProbeInterface is a one-shot operation; callers that need to tolerate
// init-script races should retry it themselves.
func ProbeInterface(name string) (*InterfaceInfo, error) {
	iface, err := net.InterfaceByName(name)
	if err != nil {
		return nil, errors.Wrapf(ErrInterfaceNotFound, "%q", name)
	}

	if len(iface.HardwareAddr) != 6 {
		return nil, errors.Wrapf(ErrAddressUnavailable, "no hardware address on %q", name)
	}

	addrs, err := iface.Addrs()
	if err != nil {
		return nil, errors.Wrapf(ErrAddressUnavailable, "listing addresses on %q: %s", name, err)
	}

	for _, addr := range addrs {
		ipNet := GetIPNet(addr)
		if ipNet == nil {
			continue
		}
		if ip4 := ipNet.IP.To4(); ip4 != nil {
			return &InterfaceInfo{
				HardwareAddr: iface.HardwareAddr,
				IP:           ip4,
			}, nil
		}
	}

	return nil, errors.Wrapf(ErrAddressUnavailable, "no IPv4 address on %q", name)
}
