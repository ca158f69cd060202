// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package server

import (
	"github.com/danjacques/pixelserver/support/logging"
	"github.com/danjacques/pixelserver/support/network"

	"github.com/pkg/errors"
)

// MinUDPPacketSize is the smallest accepted UDPPacketSize option value.
const MinUDPPacketSize = 200

// Options configures a PixelPusher server.
//
// The zero value is not useful; start from DefaultOptions.
type Options struct {
	// NetworkInterface is the name of the interface, such as eth0 or wlan0,
	// whose MAC and IPv4 address are advertised in the discovery beacon.
	NetworkInterface string

	// UDPPacketSize is the maximum pixel packet size that clients will be
	// told to send, which caps how many strips fit in one packet. Valid
	// values are [MinUDPPacketSize, network.MaxUDPSize].
	//
	// The default of 1460 keeps packets below the typical Ethernet MTU so
	// they don't fragment.
	UDPPacketSize int

	// IsLogarithmic advertises SFLAG_LOGARITHMIC on every strip.
	IsLogarithmic bool

	// Group and Controller are the PixelPusher group and controller
	// ordinals.
	Group      int
	Controller int

	// ArtNetUniverse and ArtNetChannel configure the ArtNet mapping. They
	// are only advertised if both are >= 0.
	ArtNetUniverse int
	ArtNetChannel  int

	// Logger, if not nil, is the logger to use for server events.
	Logger logging.L
}

// DefaultOptions returns the default server configuration.
func DefaultOptions() Options {
	return Options{
		NetworkInterface: "eth0",
		UDPPacketSize:    1460,
		IsLogarithmic:    true,
		Group:            0,
		Controller:       0,
		ArtNetUniverse:   -1,
		ArtNetChannel:    -1,
	}
}

// validate checks option values that don't depend on the output device.
func (o *Options) validate() error {
	if o.UDPPacketSize < MinUDPPacketSize || o.UDPPacketSize > network.MaxUDPSize {
		return errors.Errorf("UDP packet size %d out of range (%d...%d)",
			o.UDPPacketSize, MinUDPPacketSize, network.MaxUDPSize)
	}
	if o.NetworkInterface == "" {
		return errors.New("no network interface configured")
	}
	return nil
}
