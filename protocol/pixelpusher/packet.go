// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package pixelpusher

import (
	"bytes"
	"encoding/binary"

	"github.com/danjacques/pixelserver/pixel"
	"github.com/danjacques/pixelserver/support/byteslicereader"

	"github.com/pkg/errors"
)

// ErrShortPacket is returned by ReadPacket when a datagram is too small to
// hold a sequence number.
var ErrShortPacket = errors.New("packet too short for sequence number")

// PixelData is the raw RGB byte region of a single strip record.
type PixelData []byte

// Len returns the number of pixels in pd.
func (pd PixelData) Len() int { return len(pd) / pixel.Bytes }

// Pixel returns the i'th pixel in pd.
func (pd PixelData) Pixel(i int) (p pixel.P) {
	p.FromBytes(pd[i*pixel.Bytes:])
	return
}

// StripState is the pixel state of a single strip, as carried by a data
// packet.
type StripState struct {
	// StripNumber is the strip number that this state addresses. It is taken
	// from the wire verbatim; values outside of the device's strip range are
	// possible.
	StripNumber StripNumber

	// Pixels is the pixel data belonging to this strip.
	Pixels PixelData
}

// Packet is a single decoded PixelPusher data packet.
//
// At most one of Command or Strips is populated; a pixel packet carrying no
// strip records populates neither.
type Packet struct {
	// Sequence is the packet's sequence number.
	Sequence uint32

	// Command is the command payload following the command magic, if this is
	// a command packet. A command packet with no payload yields an empty,
	// non-nil slice.
	Command []byte

	// Strips is the series of strip states carried by this packet.
	Strips []StripState
}

// IsCommand returns whether pkt carries a command.
func (pkt *Packet) IsCommand() bool { return pkt.Command != nil }

// PacketReader decodes inbound data packets for a device with a fixed
// strip geometry.
//
// PacketReader is not safe for concurrent use.
type PacketReader struct {
	// PixelsPerStrip is the number of pixels belonging to a given strip.
	// Every strip record in a packet has exactly this many pixels.
	PixelsPerStrip int
}

// stripDataLen returns the wire size of one strip record.
func (pr *PacketReader) stripDataLen() int { return 1 + (pixel.Bytes * pr.PixelsPerStrip) }

// ReadPacket reads a Packet, pkt, from a source of data.
//
// If the packet could not be read, ReadPacket returns an error.
//
// The returned packet will reference data slices returned by r, and should
// not outlive the underlying buffer.
func (pr *PacketReader) ReadPacket(r *byteslicereader.R, pkt *Packet) error {
	// [0:3] Read the sequence number. Next reports io.EOF when it consumes
	// the final bytes of the buffer, which is fine here; only a short read
	// is an error.
	seq, _ := r.Next(4)
	if len(seq) < 4 {
		return ErrShortPacket
	}
	pkt.Sequence = binary.LittleEndian.Uint32(seq)
	pkt.Command = nil
	pkt.Strips = nil

	// Determine whether this is a command or a pixel packet by scanning the
	// next bytes for CommandMagic.
	if r.Remaining() >= commandMagicLen && bytes.Equal(r.Peek(commandMagicLen), CommandMagic) {
		// Consume the magic; Peek already proved it is fully present.
		r.Next(commandMagicLen)

		// The remainder is the opaque command payload, possibly empty.
		payload := r.Peek(r.Remaining())
		if payload == nil {
			payload = []byte{}
		}
		pkt.Command = payload
		return nil
	}

	// We are reading a pixel packet. The remainder must be a whole number of
	// strip records.
	stripDataLen := pr.stripDataLen()
	if remaining := r.Remaining(); remaining%stripDataLen != 0 {
		return errors.Errorf("payload size %d is not a multiple of strip record size %d (leftover: %d)",
			remaining, stripDataLen, remaining%stripDataLen)
	}

	for r.Remaining() > 0 {
		// [0] Strip number. Not validated against the device's strip count;
		// out-of-range values are the output device's concern.
		stripNumber, err := r.ReadByte()
		if err != nil {
			return err
		}

		// [1...] Pixel data. The alignment check above guarantees a full
		// record remains, so a short read cannot happen here.
		data, _ := r.Next(pixel.Bytes * pr.PixelsPerStrip)

		pkt.Strips = append(pkt.Strips, StripState{
			StripNumber: StripNumber(stripNumber),
			Pixels:      PixelData(data),
		})
	}
	return nil
}
