// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package pixel defines the pixel state used on the PixelPusher wire.
package pixel

import (
	"fmt"
)

// Bytes is the number of bytes a single pixel occupies on the wire.
const Bytes = 3

// P is the state of a single pixel.
type P struct {
	Red   uint8
	Green uint8
	Blue  uint8
}

func (p P) String() string {
	return fmt.Sprintf("(%d, %d, %d)", p.Red, p.Green, p.Blue)
}

// FromBytes loads p from the first three bytes of d.
//
// d must have at least Bytes bytes.
func (p *P) FromBytes(d []byte) {
	p.Red, p.Green, p.Blue = d[0], d[1], d[2]
}

// PutBytes writes p to the first three bytes of d.
//
// d must have at least Bytes bytes.
func (p P) PutBytes(d []byte) {
	d[0], d[1], d[2] = p.Red, p.Green, p.Blue
}
