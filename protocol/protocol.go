// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package protocol implements the Universal Discovery Protocol structures
// shared by Etherdream and Heroic Robotics lighting devices.
//
// All multi-byte wire values are little-endian, with the exception of the
// IPv4 address embedded in the device header, which is in network byte
// order.
package protocol

import (
	"bytes"
	"fmt"
	"io"
	"net"

	"github.com/lunixbochs/struc"
	"github.com/pkg/errors"
)

const (
	// DefaultProtocolVersion is the protocol version advertised in discovery
	// packets. A value of 1 was observed on modern PixelPusher devices.
	DefaultProtocolVersion = 1

	// DiscoveryUDPPort is the UDP port that devices broadcast their discovery
	// packets to.
	DiscoveryUDPPort = 7331

	// DeviceHeaderSize is the wire size of a DeviceHeader.
	DeviceHeaderSize = 24
)

// DeviceType is an enumeration representing the type of device in a
// DeviceHeader.
type DeviceType uint8

const (
	// EtherDreamDeviceType is the DeviceType for the EtherDream.
	EtherDreamDeviceType DeviceType = 0
	// LumiaBridgeDeviceType is the DeviceType for the LumiaBridge.
	LumiaBridgeDeviceType DeviceType = 1
	// PixelPusherDeviceType is the DeviceType for the PixelPusher.
	PixelPusherDeviceType DeviceType = 2
)

func (dt DeviceType) String() string {
	switch dt {
	case EtherDreamDeviceType:
		return "ETHERDREAM"
	case LumiaBridgeDeviceType:
		return "LUMIABRIDGE"
	case PixelPusherDeviceType:
		return "PIXELPUSHER"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", dt)
	}
}

// DeviceHeader is the header at the beginning of every discovery packet.
//
// /**
//  * Device Header format:
//  * uint8_t mac_address[6];
//  * uint8_t ip_address[4];  // network byte order
//  * uint8_t device_type;
//  * uint8_t protocol_version; // for the device, not the discovery
//  * uint16_t vendor_id;
//  * uint16_t product_id;
//  * uint16_t hw_revision;
//  * uint16_t sw_revision;
//  * uint32_t link_speed; // in bits per second
//  */
type DeviceHeader struct {
	MacAddress       [6]byte
	IPAddress        [4]byte
	DeviceType       DeviceType
	ProtocolVersion  uint8
	VendorID         uint16 `struc:",little"`
	ProductID        uint16 `struc:",little"`
	HardwareRevision uint16 `struc:",little"`
	SoftwareRevision uint16 `struc:",little"`

	// The link speed, in bits-per-second.
	LinkSpeed uint32 `struc:",little"`
}

// IP4Address returns a net.IP derived from the IPAddress field.
func (h *DeviceHeader) IP4Address() net.IP {
	return net.IPv4(h.IPAddress[0], h.IPAddress[1], h.IPAddress[2], h.IPAddress[3])
}

// SetIP4Address sets the IPAddress field from a net.IP.
func (h *DeviceHeader) SetIP4Address(ip net.IP) {
	ip4 := ip.To4()
	if ip4 == nil {
		panic("address is not an IPv4 address")
	}
	copy(h.IPAddress[:], ip4[:4])
}

// HardwareAddr returns the MacAddress field as a net.HardwareAddr.
func (h *DeviceHeader) HardwareAddr() net.HardwareAddr {
	return net.HardwareAddr(h.MacAddress[:])
}

// SetHardwareAddr sets the MacAddress value to addr.
func (h *DeviceHeader) SetHardwareAddr(addr net.HardwareAddr) {
	if len(addr) != 6 {
		panic("invalid hardware address length")
	}
	copy(h.MacAddress[:], addr)
}

// WriteTo writes the packed header to w.
func (h *DeviceHeader) WriteTo(w io.Writer) error {
	return struc.Pack(w, h)
}

// ParseDeviceHeader parses a packed DeviceHeader from the beginning of data.
func ParseDeviceHeader(data []byte) (*DeviceHeader, error) {
	var h DeviceHeader
	if err := struc.Unpack(bytes.NewReader(data), &h); err != nil {
		return nil, errors.Wrap(err, "could not unpack device header")
	}
	return &h, nil
}

// Clone returns a copy of h.
func (h *DeviceHeader) Clone() *DeviceHeader {
	clone := *h
	return &clone
}

func (h *DeviceHeader) String() string {
	return fmt.Sprintf(
		"Device{mac_address=%s, ip_address=%s, device_type=%s, protocol_version=%d, "+
			"vendor_id=0x%x, product_id=0x%x, hardware_revision=%d, software_revision=%d, "+
			"link_speed=%d}",
		h.HardwareAddr(), h.IP4Address(), h.DeviceType, h.ProtocolVersion,
		h.VendorID, h.ProductID, h.HardwareRevision, h.SoftwareRevision,
		h.LinkSpeed)
}
