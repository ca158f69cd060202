// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package pixelpusher

import (
	"bytes"

	"github.com/danjacques/pixelserver/pixel"
	"github.com/danjacques/pixelserver/support/byteslicereader"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Packet Parsing", func() {
	// A packet layout with 2 pixels per strip.
	pr := PacketReader{
		PixelsPerStrip: 2,
	}

	read := func(data []byte) (*Packet, error) {
		var pkt Packet
		err := pr.ReadPacket(&byteslicereader.R{Buffer: data}, &pkt)
		return &pkt, err
	}

	It("reads the sequence number little-endian", func() {
		pkt, err := read([]byte{0x40, 0x30, 0x20, 0x10})
		Expect(err).ToNot(HaveOccurred())
		Expect(pkt.Sequence).To(Equal(uint32(0x10203040)))
		Expect(pkt.IsCommand()).To(BeFalse())
		Expect(pkt.Strips).To(BeEmpty())
	})

	It("rejects a packet too short for a sequence number", func() {
		_, err := read([]byte{0x01, 0x02, 0x03})
		Expect(err).To(Equal(ErrShortPacket))
	})

	It("reads a command packet", func() {
		data := bytes.Join([][]byte{
			{0x10, 0x20, 0x30, 0x40},
			CommandMagic,
			{byte(CommandReset)},
		}, nil)

		pkt, err := read(data)
		Expect(err).ToNot(HaveOccurred())
		Expect(pkt.Sequence).To(Equal(uint32(0x40302010)))
		Expect(pkt.IsCommand()).To(BeTrue())
		Expect(pkt.Command).To(Equal([]byte{byte(CommandReset)}))
		Expect(pkt.Strips).To(BeEmpty())
	})

	It("reads a command packet with an empty payload", func() {
		data := bytes.Join([][]byte{
			{0x00, 0x00, 0x00, 0x00},
			CommandMagic,
		}, nil)

		pkt, err := read(data)
		Expect(err).ToNot(HaveOccurred())
		Expect(pkt.IsCommand()).To(BeTrue())
		Expect(pkt.Command).To(BeEmpty())
	})

	It("requires the full magic for command detection", func() {
		// A truncated magic is treated as pixel data; with 15 bytes after
		// the sequence number it cannot be a whole strip record.
		data := bytes.Join([][]byte{
			{0x00, 0x00, 0x00, 0x00},
			CommandMagic[:15],
		}, nil)

		_, err := read(data)
		Expect(err).To(HaveOccurred())
	})

	It("reads strip records in order", func() {
		data := []byte{
			0xAA, 0x00, 0x00, 0x00,
			0x01, 1, 2, 3, 4, 5, 6,
			0x00, 7, 8, 9, 10, 11, 12,
		}

		pkt, err := read(data)
		Expect(err).ToNot(HaveOccurred())
		Expect(pkt.Strips).To(HaveLen(2))

		Expect(pkt.Strips[0].StripNumber).To(Equal(StripNumber(1)))
		Expect(pkt.Strips[0].Pixels.Len()).To(Equal(2))
		Expect(pkt.Strips[0].Pixels.Pixel(0)).To(Equal(pixel.P{Red: 1, Green: 2, Blue: 3}))
		Expect(pkt.Strips[0].Pixels.Pixel(1)).To(Equal(pixel.P{Red: 4, Green: 5, Blue: 6}))

		Expect(pkt.Strips[1].StripNumber).To(Equal(StripNumber(0)))
		Expect(pkt.Strips[1].Pixels.Pixel(1)).To(Equal(pixel.P{Red: 10, Green: 11, Blue: 12}))
	})

	It("rejects a payload that isn't a whole number of strip records", func() {
		data := append([]byte{0x01, 0x00, 0x00, 0x00}, make([]byte, 10)...)
		_, err := read(data)
		Expect(err).To(HaveOccurred())
	})

	It("returns slices of the input buffer", func() {
		data := []byte{
			0xAA, 0x00, 0x00, 0x00,
			0x00, 1, 2, 3, 4, 5, 6,
		}

		pkt, err := read(data)
		Expect(err).ToNot(HaveOccurred())

		data[5] = 0xFF
		Expect(pkt.Strips[0].Pixels.Pixel(0)).To(Equal(pixel.P{Red: 0xFF, Green: 2, Blue: 3}))
	})
})
