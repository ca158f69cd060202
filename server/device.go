// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package server

import (
	"github.com/danjacques/pixelserver/pixel"
)

// OutputDevice receives the pixel data pushed to the server.
//
// The server borrows the device for its lifetime and never closes it.
//
// For every pixel packet, the device observes exactly one StartFrame, one
// SetPixel per transmitted pixel, and one FlushFrame, in that order. All
// calls are made from the receiver thread, one packet at a time, so
// implementations need not be safe for concurrent use.
type OutputDevice interface {
	// NumStrips returns the number of strips this output device has
	// available.
	//
	// It is queried once at startup and must be constant.
	NumStrips() int

	// NumPixelsPerStrip returns the number of pixels on each strip.
	//
	// It is queried once at startup and must be constant.
	NumPixelsPerStrip() int

	// StartFrame is called on arrival of a pixel packet, before any SetPixel
	// calls. fullUpdate indicates that the packet addresses every strip on
	// the device, a hint that implementations can use for double-buffering.
	StartFrame(fullUpdate bool)

	// SetPixel sets the state of a single pixel.
	//
	// The strip index is taken from the wire without validation; values
	// outside of [0, NumStrips) are possible and are the device's concern.
	SetPixel(strip, pixel int, c pixel.P)

	// FlushFrame is called after all of the pixels for a received packet
	// have been set.
	FlushFrame()

	// HandlePusherCommand receives the payload of an in-band pusher command
	// that the server does not interpret. The payload may be empty.
	// Implementations that don't support commands can ignore it.
	//
	// The payload references the receive buffer and must not be retained
	// after the call returns.
	HandlePusherCommand(data []byte)
}
