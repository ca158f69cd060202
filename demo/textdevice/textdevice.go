// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package textdevice implements an output device that renders pushed frames
// as text. It is useful for demos and for smoke-testing controller setups
// without LED hardware attached.
package textdevice

import (
	"fmt"
	"io"

	"github.com/danjacques/pixelserver/pixel"
	"github.com/danjacques/pixelserver/protocol/pixelpusher"
	"github.com/danjacques/pixelserver/support/fmtutil"
	"github.com/danjacques/pixelserver/support/logging"
)

// Device is a server.OutputDevice that renders each flushed frame to Out as
// one line of hex cells per strip.
//
// Device is driven by the server's receiver thread and is not safe for
// concurrent use.
type Device struct {
	// Strips and PixelsPerStrip define the device geometry. Both must be > 0.
	Strips         int
	PixelsPerStrip int

	// Out receives the rendered frames.
	Out io.Writer

	// Logger, if not nil, receives command and frame events.
	Logger logging.L

	frameCount int
	fullUpdate bool
	grid       [][]pixel.P
}

// NumStrips implements server.OutputDevice.
func (d *Device) NumStrips() int { return d.Strips }

// NumPixelsPerStrip implements server.OutputDevice.
func (d *Device) NumPixelsPerStrip() int { return d.PixelsPerStrip }

// StartFrame implements server.OutputDevice.
func (d *Device) StartFrame(fullUpdate bool) {
	if d.grid == nil {
		d.grid = make([][]pixel.P, d.Strips)
		for i := range d.grid {
			d.grid[i] = make([]pixel.P, d.PixelsPerStrip)
		}
	}
	d.fullUpdate = fullUpdate
}

// SetPixel implements server.OutputDevice.
//
// Out-of-range coordinates are dropped.
func (d *Device) SetPixel(strip, px int, c pixel.P) {
	if strip < 0 || strip >= d.Strips || px < 0 || px >= d.PixelsPerStrip {
		logging.Must(d.Logger).Debugf("Ignoring out-of-range pixel (%d, %d).", strip, px)
		return
	}
	d.grid[strip][px] = c
}

// FlushFrame implements server.OutputDevice.
func (d *Device) FlushFrame() {
	d.frameCount++

	fmt.Fprintf(d.Out, "frame %d (full=%t):\n", d.frameCount, d.fullUpdate)
	for _, strip := range d.grid {
		for i, p := range strip {
			if i > 0 {
				fmt.Fprint(d.Out, " ")
			}
			fmt.Fprintf(d.Out, "%02X%02X%02X", p.Red, p.Green, p.Blue)
		}
		fmt.Fprintln(d.Out)
	}
}

// HandlePusherCommand implements server.OutputDevice.
//
// Commands are decoded only far enough to log them.
func (d *Device) HandlePusherCommand(data []byte) {
	logger := logging.Must(d.Logger)
	if len(data) == 0 {
		logger.Warn("Received empty pusher command.")
		return
	}

	logger.Infof("Received pusher command %s (%d byte(s)):\n%s",
		pixelpusher.CommandID(data[0]), len(data), fmtutil.Hex(data))
}
