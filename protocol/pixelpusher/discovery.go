// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package pixelpusher

import (
	"fmt"
	"io"
	"time"

	"github.com/lunixbochs/struc"
	"github.com/pkg/errors"
)

const (
	// ListenPort is the port on which PixelPusher devices accept pixel data.
	ListenPort uint16 = 5078

	// SoftwareRevision is the software revision advertised in discovery
	// packets. 122 is the latest revision this package speaks; it includes
	// the port, strip flag, and extension blocks unconditionally.
	SoftwareRevision uint16 = 122

	// baseHeaderSize is the packed size of BaseHeader.
	baseHeaderSize = 32

	// minStripFlagBytes is the minimum number of strip flag bytes present on
	// the wire, regardless of how many strips are attached.
	minStripFlagBytes = 8

	// ExtSize is the packed size of Ext.
	ExtSize = 20
)

// PixelPusher device flags (software version > 108).
const (
	// PFlagProtected is the PFLAG_PROTECTED device flag.
	PFlagProtected = (1 << iota)
	// PFlagFixedSize is the PFLAG_FIXEDSIZE device flag.
	//
	// It indicates that sent packets must be a fixed size (Photon).
	PFlagFixedSize
	// PFlagGlobalBrightness is the PFLAG_GLOBALBRIGHTNESS device flag.
	PFlagGlobalBrightness
	// PFlagStripBrightness is the PFLAG_STRIPBRIGHTNESS device flag.
	PFlagStripBrightness
	// PFlagDynamics is the PFLAG_DYNAMICS device flag.
	PFlagDynamics
)

// BaseSize returns the wire size of a Base with the given number of attached
// strips: the fixed header plus max(8, strips) strip flag bytes.
func BaseSize(strips int) int {
	flags := strips
	if flags < minStripFlagBytes {
		flags = minStripFlagBytes
	}
	return baseHeaderSize + flags
}

// BaseHeader is the fixed portion of the PixelPusher base block.
//
// /**
//  * uint8_t strips_attached;
//  * uint8_t max_strips_per_packet;
//  * uint16_t pixels_per_strip; // uint16_t used to make alignment work
//  * uint32_t update_period; // in microseconds
//  * uint32_t power_total; // in PWM units
//  * uint32_t delta_sequence; // difference between received and expected
//  * sequence numbers
//  * int32_t controller_ordinal;  // configured order number for controller
//  * int32_t group_ordinal;  // configured group number for this controller
//  * uint16_t artnet_universe;
//  * uint16_t artnet_channel;
//  * uint16_t my_port;
//  * uint16_t padding;
//  */
type BaseHeader struct {
	StripsAttached     uint8
	MaxStripsPerPacket uint8
	PixelsPerStrip     uint16 `struc:",little"`
	UpdatePeriod       uint32 `struc:",little"`
	PowerTotal         uint32 `struc:",little"`
	DeltaSequence      uint32 `struc:",little"`
	ControllerOrdinal  int32  `struc:",little"`
	GroupOrdinal       int32  `struc:",little"`
	ArtNetUniverse     uint16 `struc:",little"`
	ArtNetChannel      uint16 `struc:",little"`
	MyPort             uint16 `struc:",little"`

	Pad0_1 []byte `struc:"[2]pad"`
}

// Base is the variable-length PixelPusher base block: the fixed header
// trailed by one flag byte per strip.
//
// On the wire, a minimum of 8 flag entries is always present; if fewer
// strips are attached, the trailing entries are zero.
type Base struct {
	BaseHeader

	// StripFlags holds the flags for each attached strip. Its length should
	// equal StripsAttached.
	StripFlags []StripFlags
}

// Size returns the wire size of b.
func (b *Base) Size() int { return BaseSize(len(b.StripFlags)) }

// WriteTo writes the packed base block to w, emitting exactly Size() bytes.
func (b *Base) WriteTo(w io.Writer) error {
	if len(b.StripFlags) != int(b.StripsAttached) {
		return errors.Errorf("strip flag count (%d) does not match strips_attached (%d)",
			len(b.StripFlags), b.StripsAttached)
	}

	if err := struc.Pack(w, &b.BaseHeader); err != nil {
		return err
	}

	flags := make([]byte, 0, len(b.StripFlags))
	for _, sf := range b.StripFlags {
		flags = append(flags, byte(sf))
	}
	for len(flags) < minStripFlagBytes {
		flags = append(flags, 0x00)
	}
	_, err := w.Write(flags)
	return err
}

// ReadBase reads a packed base block from r.
//
// The number of flag bytes consumed is determined by the strips_attached
// field; the returned StripFlags vector has exactly strips_attached entries.
func ReadBase(r io.Reader) (*Base, error) {
	var b Base
	if err := struc.Unpack(r, &b.BaseHeader); err != nil {
		return nil, errors.Wrap(err, "reading base header")
	}

	numFlagBytes := int(b.StripsAttached)
	if numFlagBytes < minStripFlagBytes {
		numFlagBytes = minStripFlagBytes
	}
	flagBytes := make([]byte, numFlagBytes)
	if _, err := io.ReadFull(r, flagBytes); err != nil {
		return nil, errors.Wrap(err, "reading strip flags")
	}

	b.StripFlags = make([]StripFlags, b.StripsAttached)
	for i := range b.StripFlags {
		b.StripFlags[i] = StripFlags(flagBytes[i])
	}
	return &b, nil
}

// Clone creates a deep copy of b.
func (b *Base) Clone() *Base {
	clone := *b
	clone.StripFlags = append([]StripFlags(nil), clone.StripFlags...)
	return &clone
}

// UpdatePeriodDuration returns b's update period, expressed in microseconds,
// as a time.Duration.
func (b *Base) UpdatePeriodDuration() time.Duration {
	return time.Microsecond * time.Duration(b.UpdatePeriod)
}

func (b *Base) String() string {
	return fmt.Sprintf(
		"PixelPusher{strips_attached=%d, max_strips_per_packet=%d, pixels_per_strip=%d, "+
			"update_period=%s, power_total=%d, delta_sequence=%d, controller_ordinal=%d, "+
			"group_ordinal=%d, art_net_universe=%d, art_net_channel=%d, my_port=%d, "+
			"strip_flags={%v}}",
		b.StripsAttached, b.MaxStripsPerPacket, b.PixelsPerStrip,
		b.UpdatePeriodDuration(), b.PowerTotal, b.DeltaSequence, b.ControllerOrdinal,
		b.GroupOrdinal, b.ArtNetUniverse, b.ArtNetChannel, b.MyPort,
		b.StripFlags)
}

// Ext is the fixed-size extension block that immediately follows the base
// block in a discovery packet.
type Ext struct {
	Pad0_1 []byte `struc:"[2]pad"`

	PusherFlags uint32 `struc:",little"`
	Segments    uint32 `struc:",little"`
	PowerDomain uint32 `struc:",little"`

	// LastDrivenIP and LastDrivenPort identify the last host to push pixels
	// to this device.
	LastDrivenIP   [4]byte
	LastDrivenPort uint16 `struc:",little"`
}

// WriteTo writes the packed extension block to w.
func (e *Ext) WriteTo(w io.Writer) error {
	return struc.Pack(w, e)
}

// ReadExt reads a packed extension block from r.
func ReadExt(r io.Reader) (*Ext, error) {
	var e Ext
	if err := struc.Unpack(r, &e); err != nil {
		return nil, errors.Wrap(err, "reading extension block")
	}
	return &e, nil
}

// Container bundles a base block with its extension, forming the complete
// PixelPusher portion of a discovery packet.
type Container struct {
	Base *Base
	Ext  Ext
}

// Size returns the wire size of the container: the variable base plus the
// fixed extension.
func (c *Container) Size() int { return c.Base.Size() + ExtSize }

// WriteTo writes the base block followed by the extension block to w.
func (c *Container) WriteTo(w io.Writer) error {
	if err := c.Base.WriteTo(w); err != nil {
		return err
	}
	return c.Ext.WriteTo(w)
}

// ReadContainer reads a base block and its trailing extension from r.
func ReadContainer(r io.Reader) (*Container, error) {
	base, err := ReadBase(r)
	if err != nil {
		return nil, err
	}

	ext, err := ReadExt(r)
	if err != nil {
		return nil, err
	}

	return &Container{Base: base, Ext: *ext}, nil
}
