// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package server

import (
	"net"
	"time"

	"github.com/danjacques/pixelserver/protocol/pixelpusher"
	"github.com/danjacques/pixelserver/support/bufferpool"
	"github.com/danjacques/pixelserver/support/byteslicereader"
	"github.com/danjacques/pixelserver/support/fmtutil"
	"github.com/danjacques/pixelserver/support/logging"
	"github.com/danjacques/pixelserver/support/network"
)

// receiverReadTimeout bounds each blocking read so the receive loop can
// observe a stop signal; it is the receiver's maximum shutdown latency.
const receiverReadTimeout = 200 * time.Millisecond

// receiver listens on the pixel data port, decodes each datagram, and
// drives the output device under the frame protocol.
type receiver struct {
	logger logging.L

	// conn is the pixel ingest socket. The receiver owns it and closes it on
	// stop.
	conn *net.UDPConn

	device OutputDevice
	beacon *beacon

	// reader is configured for the device's geometry. Datagrams are handled
	// one at a time, so sharing it across packets is safe.
	reader    pixelpusher.PacketReader
	numStrips int

	pool *bufferpool.Pool

	stopC chan struct{}
	doneC chan struct{}
}

func newReceiver(logger logging.L, conn *net.UDPConn, device OutputDevice, beacon *beacon) *receiver {
	return &receiver{
		logger: logging.Must(logger),
		conn:   conn,
		device: device,
		beacon: beacon,
		reader: pixelpusher.PacketReader{
			PixelsPerStrip: device.NumPixelsPerStrip(),
		},
		numStrips: device.NumStrips(),
		pool:      &bufferpool.Pool{Size: network.MaxUDPSize},

		stopC: make(chan struct{}),
		doneC: make(chan struct{}),
	}
}

// run receives and processes datagrams until stop is signaled.
//
// Datagrams are processed strictly one at a time; the device observes a
// serialized StartFrame/SetPixel/FlushFrame sequence.
func (r *receiver) run() {
	defer close(r.doneC)

	r.logger.Infof("Listening for pixels pushed to %s.", r.conn.LocalAddr())

	for {
		select {
		case <-r.stopC:
			return
		default:
		}

		if err := r.conn.SetReadDeadline(time.Now().Add(receiverReadTimeout)); err != nil {
			r.logger.Warnf("Failed to set read deadline: %s", err)
		}

		buf := r.pool.Get()
		size, addr, err := r.conn.ReadFromUDP(buf.Bytes())
		if err != nil {
			buf.Release()

			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}

			// A read error is expected if the socket was closed underneath
			// us during shutdown.
			select {
			case <-r.stopC:
				return
			default:
			}

			r.logger.Warnf("Receive problem: %s", err)
			continue
		}

		buf.Truncate(size)
		r.handlePacket(buf.Bytes(), addr)
		buf.Release()
	}
}

// handlePacket decodes and dispatches a single datagram.
//
// Malformed datagrams and command packets do not update beacon statistics.
func (r *receiver) handlePacket(data []byte, addr *net.UDPAddr) {
	start := time.Now()
	packetsReceived.Inc()

	var pkt pixelpusher.Packet
	if err := r.reader.ReadPacket(&byteslicereader.R{Buffer: data}, &pkt); err != nil {
		packetsDropped.Inc()
		r.logger.Warnf("Dropping malformed packet (%d byte(s)) from %s: %s\n%s",
			len(data), addr, err, fmtutil.Hex(data))
		return
	}

	if pkt.IsCommand() {
		commandsReceived.Inc()
		r.device.HandlePusherCommand(pkt.Command)
		return
	}

	fullUpdate := len(pkt.Strips) == r.numStrips
	r.device.StartFrame(fullUpdate)
	for _, ss := range pkt.Strips {
		for x := 0; x < r.reader.PixelsPerStrip; x++ {
			r.device.SetPixel(int(ss.StripNumber), x, ss.Pixels.Pixel(x))
		}
	}
	r.device.FlushFrame()
	framesFlushed.Inc()

	r.beacon.updateStats(pkt.Sequence, uint32(time.Since(start).Microseconds()))
}

// stop signals the receive loop, waits for it to exit, and closes the
// socket. The loop observes the signal within receiverReadTimeout.
func (r *receiver) stop() {
	close(r.stopC)
	<-r.doneC

	if err := r.conn.Close(); err != nil {
		r.logger.Warnf("Failed to close receiver socket: %s", err)
	}
}
