// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package server

import (
	"bytes"
	"sync"
	"time"

	"github.com/danjacques/pixelserver/protocol"
	"github.com/danjacques/pixelserver/protocol/pixelpusher"
	"github.com/danjacques/pixelserver/support/logging"
	"github.com/danjacques/pixelserver/support/network"
)

// MinUpdatePeriodUSec is the smallest update period, in microseconds, that
// the beacon will advertise.
//
// Say we want 60Hz updates and 9 packets per frame; we don't really need
// clients to push any faster than this.
const MinUpdatePeriodUSec uint32 = 16666 / 9

// DefaultBeaconPeriod is the interval between discovery broadcasts.
const DefaultBeaconPeriod = time.Second

// beacon periodically broadcasts the discovery packet for this device.
//
// The beacon owns the authoritative copy of the advertised telemetry: the
// receiver feeds per-packet statistics in through updateStats, and each
// broadcast consumes the accumulated delta sequence.
type beacon struct {
	logger logging.L

	// sender transmits discovery packets. The beacon owns it and closes it
	// on stop.
	sender network.DatagramSender

	// period is the broadcast interval. It defaults to DefaultBeaconPeriod
	// and exists as a field so tests can tighten it.
	period time.Duration

	header    protocol.DeviceHeader
	container *pixelpusher.Container

	// packetSize is the precomputed wire size of the discovery packet; buf
	// is the reusable serialization buffer.
	packetSize int
	buf        bytes.Buffer

	// mu protects the container's base block and previousSequence.
	mu               sync.Mutex
	previousSequence uint32

	stopC chan struct{}
	doneC chan struct{}
}

func newBeacon(logger logging.L, sender network.DatagramSender, header protocol.DeviceHeader, container *pixelpusher.Container) *beacon {
	b := beacon{
		logger:    logging.Must(logger),
		sender:    sender,
		period:    DefaultBeaconPeriod,
		header:    header,
		container: container,

		packetSize: protocol.DeviceHeaderSize + container.Size(),

		// The first seen sequence number is compared against -1, so its full
		// value counts as a gap.
		previousSequence: ^uint32(0),

		stopC: make(chan struct{}),
		doneC: make(chan struct{}),
	}
	b.buf.Grow(b.packetSize)
	return &b
}

// updateStats records the statistics of one processed pixel packet.
//
// updateStats is safe for concurrent use with the broadcast loop.
func (b *beacon) updateStats(seenSequence uint32, updateMicros uint32) {
	b.mu.Lock()
	defer b.mu.Unlock()

	base := b.container.Base
	if updateMicros < MinUpdatePeriodUSec {
		base.UpdatePeriod = MinUpdatePeriodUSec
	} else {
		base.UpdatePeriod = updateMicros
	}

	sequenceDiff := int32(seenSequence - b.previousSequence - 1)
	if sequenceDiff > 0 {
		base.DeltaSequence += uint32(sequenceDiff)
	}
	b.previousSequence = seenSequence
}

// run broadcasts the discovery packet every period until stop is signaled.
func (b *beacon) run() {
	defer close(b.doneC)

	b.logger.Infof("Starting PixelPusher discovery beacon broadcasting to port %d.",
		protocol.DiscoveryUDPPort)

	for {
		if err := b.broadcast(); err != nil {
			beaconErrors.Inc()
			b.logger.Warnf("Broadcasting problem: %s", err)
		} else {
			beaconBroadcasts.Inc()
		}

		select {
		case <-b.stopC:
			return
		case <-time.After(b.period):
		}
	}
}

// broadcast serializes and sends one discovery packet.
//
// The accumulated delta sequence is zeroed atomically with serialization; it
// reports gaps since the previous broadcast only.
func (b *beacon) broadcast() error {
	b.buf.Reset()

	b.mu.Lock()
	err := b.serializeLocked()
	b.mu.Unlock()
	if err != nil {
		return err
	}

	return b.sender.SendDatagram(b.buf.Bytes())
}

func (b *beacon) serializeLocked() error {
	if err := b.header.WriteTo(&b.buf); err != nil {
		return err
	}
	if err := b.container.WriteTo(&b.buf); err != nil {
		return err
	}

	b.container.Base.DeltaSequence = 0
	return nil
}

// stop signals the broadcast loop, waits for it to exit, and releases the
// sender. The loop observes the signal within one period.
func (b *beacon) stop() {
	close(b.stopC)
	<-b.doneC

	if err := b.sender.Close(); err != nil {
		b.logger.Warnf("Failed to close beacon sender: %s", err)
	}
}
