// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package server

import (
	"bytes"
	"time"

	"github.com/danjacques/pixelserver/protocol"
	"github.com/danjacques/pixelserver/protocol/pixelpusher"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

func testHeader() protocol.DeviceHeader {
	h := protocol.DeviceHeader{
		DeviceType:       protocol.PixelPusherDeviceType,
		ProtocolVersion:  protocol.DefaultProtocolVersion,
		VendorID:         VendorID,
		SoftwareRevision: pixelpusher.SoftwareRevision,
		LinkSpeed:        LinkSpeed,
	}
	h.MacAddress = [6]byte{0x02, 0x00, 0x00, 0x00, 0x00, 0x01}
	h.IPAddress = [4]byte{192, 168, 1, 40}
	return h
}

func testContainer(strips, pixels int) *pixelpusher.Container {
	return &pixelpusher.Container{
		Base: &pixelpusher.Base{
			BaseHeader: pixelpusher.BaseHeader{
				StripsAttached: uint8(strips),
				PixelsPerStrip: uint16(pixels),
				UpdatePeriod:   1000,
				PowerTotal:     1,
				MyPort:         uint16(pixelpusher.ListenPort),
			},
			StripFlags: make([]pixelpusher.StripFlags, strips),
		},
		Ext: pixelpusher.Ext{Segments: 1},
	}
}

// parseBeaconPacket splits a broadcast discovery packet back into its header
// and container.
func parseBeaconPacket(data []byte) (*protocol.DeviceHeader, *pixelpusher.Container) {
	header, err := protocol.ParseDeviceHeader(data)
	Expect(err).ToNot(HaveOccurred())

	container, err := pixelpusher.ReadContainer(bytes.NewReader(data[protocol.DeviceHeaderSize:]))
	Expect(err).ToNot(HaveOccurred())
	return header, container
}

var _ = Describe("beacon", func() {
	var (
		sender *captureSender
		b      *beacon
	)

	newTestBeacon := func(strips, pixels int) *beacon {
		sender = &captureSender{}
		return newBeacon(nil, sender, testHeader(), testContainer(strips, pixels))
	}

	BeforeEach(func() {
		b = newTestBeacon(1, 2)
	})

	It("precomputes the discovery packet size", func() {
		b12 := newTestBeacon(12, 8)
		Expect(b12.packetSize).To(Equal(24 + (32 + 12) + 20))
	})

	It("broadcasts a parseable packet of the precomputed size", func() {
		Expect(b.broadcast()).To(Succeed())
		Expect(sender.packets).To(HaveLen(1))
		Expect(sender.packets[0]).To(HaveLen(b.packetSize))

		header, container := parseBeaconPacket(sender.packets[0])
		Expect(header.DeviceType).To(Equal(protocol.PixelPusherDeviceType))
		Expect(container.Base.StripsAttached).To(Equal(uint8(1)))
		Expect(container.Ext.Segments).To(Equal(uint32(1)))
	})

	Describe("updateStats", func() {
		It("floors the update period", func() {
			b.updateStats(1, 10)
			Expect(b.container.Base.UpdatePeriod).To(Equal(MinUpdatePeriodUSec))

			b.updateStats(2, 50000)
			Expect(b.container.Base.UpdatePeriod).To(Equal(uint32(50000)))
		})

		It("counts the first sequence number as a gap from -1", func() {
			b.updateStats(1, 10)
			Expect(b.container.Base.DeltaSequence).To(Equal(uint32(1)))
		})

		It("accumulates gaps and ignores reordered sequences", func() {
			b.updateStats(1, 10)
			b.updateStats(5, 10) // missing 2..4
			Expect(b.container.Base.DeltaSequence).To(Equal(uint32(4)))

			b.updateStats(3, 10) // stale; negative diff is ignored
			Expect(b.container.Base.DeltaSequence).To(Equal(uint32(4)))

			b.updateStats(4, 10) // 4 - 3 - 1 == 0; contiguous
			Expect(b.container.Base.DeltaSequence).To(Equal(uint32(4)))
		})
	})

	It("resets the delta sequence with each broadcast", func() {
		b.updateStats(1, 10)
		Expect(b.broadcast()).To(Succeed())

		_, container := parseBeaconPacket(sender.packets[0])
		Expect(container.Base.DeltaSequence).To(Equal(uint32(1)))

		// The advertised delta was consumed; a quiet interval reports zero.
		Expect(b.broadcast()).To(Succeed())
		_, container = parseBeaconPacket(sender.packets[1])
		Expect(container.Base.DeltaSequence).To(Equal(uint32(0)))

		// New gaps start accumulating from scratch.
		b.updateStats(5, 10) // missing 2..4
		Expect(b.broadcast()).To(Succeed())
		_, container = parseBeaconPacket(sender.packets[2])
		Expect(container.Base.DeltaSequence).To(Equal(uint32(3)))
	})

	It("runs until stopped, closing its sender", func() {
		b.period = time.Millisecond

		go b.run()
		Eventually(func() int {
			return len(sender.sent())
		}).Should(BeNumerically(">=", 2))

		b.stop()
		Expect(sender.closed).To(BeTrue())
	})
})
