// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package pixelpusher

import (
	"bytes"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Base", func() {
	makeBase := func(strips int) *Base {
		b := Base{
			BaseHeader: BaseHeader{
				StripsAttached:     uint8(strips),
				MaxStripsPerPacket: 2,
				PixelsPerStrip:     64,
				UpdatePeriod:       1000,
				PowerTotal:         1,
				DeltaSequence:      7,
				ControllerOrdinal:  3,
				GroupOrdinal:       4,
				ArtNetUniverse:     0,
				ArtNetChannel:      0,
				MyPort:             uint16(ListenPort),
			},
			StripFlags: make([]StripFlags, strips),
		}
		for i := range b.StripFlags {
			b.StripFlags[i].SetLogarithmic(true)
		}
		return &b
	}

	Describe("BaseSize", func() {
		It("is the fixed header plus max(8, strips) flag bytes", func() {
			for strips := 1; strips <= 255; strips++ {
				expected := 32 + strips
				if strips < 8 {
					expected = 32 + 8
				}
				Expect(BaseSize(strips)).To(Equal(expected), "strips=%d", strips)
			}
		})
	})

	It("serializes its exact wire size", func() {
		for _, strips := range []int{1, 7, 8, 9, 12, 255} {
			var buf bytes.Buffer
			Expect(makeBase(strips).WriteTo(&buf)).To(Succeed())
			Expect(buf.Len()).To(Equal(BaseSize(strips)), "strips=%d", strips)
		}
	})

	It("packs fields little-endian with zeroed trailing flag slots", func() {
		b := makeBase(2)
		b.UpdatePeriod = 0x10111213
		b.DeltaSequence = 0x30313233

		var buf bytes.Buffer
		Expect(b.WriteTo(&buf)).To(Succeed())

		Expect(buf.Bytes()).To(Equal([]byte{
			2,    // strips_attached
			2,    // max_strips_per_packet
			64, 0, // pixels_per_strip
			0x13, 0x12, 0x11, 0x10, // update_period
			1, 0, 0, 0, // power_total
			0x33, 0x32, 0x31, 0x30, // delta_sequence
			3, 0, 0, 0, // controller_ordinal
			4, 0, 0, 0, // group_ordinal
			0, 0, // artnet_universe
			0, 0, // artnet_channel
			0xD6, 0x13, // my_port (5078)
			0, 0, // padding
			0x04, 0x04, 0, 0, 0, 0, 0, 0, // strip flags, padded to 8
		}))
	})

	It("round-trips with a flag vector longer than eight", func() {
		b := makeBase(12)

		var buf bytes.Buffer
		Expect(b.WriteTo(&buf)).To(Succeed())
		Expect(buf.Len()).To(Equal(32 + 12))

		parsed, err := ReadBase(bytes.NewReader(buf.Bytes()))
		Expect(err).ToNot(HaveOccurred())
		Expect(parsed).To(Equal(b))
		Expect(parsed.StripFlags).To(HaveLen(12))
	})

	It("round-trips with fewer than eight strips", func() {
		b := makeBase(3)

		var buf bytes.Buffer
		Expect(b.WriteTo(&buf)).To(Succeed())

		parsed, err := ReadBase(bytes.NewReader(buf.Bytes()))
		Expect(err).ToNot(HaveOccurred())
		Expect(parsed).To(Equal(b))
		Expect(parsed.StripFlags).To(HaveLen(3))
	})

	It("rejects a flag vector that disagrees with strips_attached", func() {
		b := makeBase(4)
		b.StripFlags = b.StripFlags[:2]

		var buf bytes.Buffer
		Expect(b.WriteTo(&buf)).ToNot(Succeed())
	})

	It("clones deeply", func() {
		b := makeBase(4)
		clone := b.Clone()
		clone.StripFlags[0] = 0

		Expect(b.StripFlags[0].IsLogarithmic()).To(BeTrue())
	})
})

var _ = Describe("Ext", func() {
	It("packs to exactly 20 bytes", func() {
		e := Ext{
			PusherFlags:    0xA0A1A2A3,
			Segments:       1,
			PowerDomain:    0,
			LastDrivenIP:   [4]byte{10, 0, 0, 9},
			LastDrivenPort: 0x1234,
		}

		var buf bytes.Buffer
		Expect(e.WriteTo(&buf)).To(Succeed())
		Expect(buf.Bytes()).To(Equal([]byte{
			0, 0, // padding
			0xA3, 0xA2, 0xA1, 0xA0, // pusher_flags
			1, 0, 0, 0, // segments
			0, 0, 0, 0, // power_domain
			10, 0, 0, 9, // last_driven_ip
			0x34, 0x12, // last_driven_port
		}))
		Expect(buf.Len()).To(Equal(ExtSize))
	})

	It("round-trips", func() {
		e := Ext{Segments: 1, LastDrivenPort: 9897}

		var buf bytes.Buffer
		Expect(e.WriteTo(&buf)).To(Succeed())

		parsed, err := ReadExt(bytes.NewReader(buf.Bytes()))
		Expect(err).ToNot(HaveOccurred())
		Expect(*parsed).To(Equal(e))
	})
})

var _ = Describe("Container", func() {
	It("sizes and writes the base followed by the extension", func() {
		c := Container{
			Base: &Base{
				BaseHeader: BaseHeader{
					StripsAttached: 12,
					PixelsPerStrip: 8,
				},
				StripFlags: make([]StripFlags, 12),
			},
			Ext: Ext{Segments: 1},
		}

		Expect(c.Size()).To(Equal((32 + 12) + 20))

		var buf bytes.Buffer
		Expect(c.WriteTo(&buf)).To(Succeed())
		Expect(buf.Len()).To(Equal(c.Size()))

		parsed, err := ReadContainer(bytes.NewReader(buf.Bytes()))
		Expect(err).ToNot(HaveOccurred())
		Expect(parsed.Base).To(Equal(c.Base))
		Expect(parsed.Ext).To(Equal(c.Ext))
	})
})
