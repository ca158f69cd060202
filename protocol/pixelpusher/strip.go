// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package pixelpusher

import (
	"fmt"
	"strings"
)

// StripNumber is the number assigned to an individual Strip.
type StripNumber uint8

// PixelPusher strip flags.
const (
	// SFlagRGBOW is the SFLAG_RGBOW strip flag.
	SFlagRGBOW StripFlags = (1 << iota)
	// SFlagWidePixels is the SFLAG_WIDEPIXELS strip flag.
	SFlagWidePixels
	// SFlagLogarithmic is the SFLAG_LOGARITHMIC strip flag.
	SFlagLogarithmic
	// SFlagMotion is the SFLAG_MOTION strip flag.
	SFlagMotion
	// SFlagNotIdempotent is the SFLAG_NOTIDEMPOTENT strip flag.
	SFlagNotIdempotent
	// SFlagBrightness is the SFLAG_BRIGHTNESS strip flag.
	SFlagBrightness
	// SFlagMonochrome is the SFLAG_MONOCHROME strip flag.
	SFlagMonochrome
)

var flagNames = []struct {
	flag StripFlags
	text string
}{
	{SFlagRGBOW, "RGBOW"},
	{SFlagWidePixels, "WIDEPIXELS"},
	{SFlagLogarithmic, "LOGARITHMIC"},
	{SFlagMotion, "MOTION"},
	{SFlagNotIdempotent, "NOTIDEMPOTENT"},
	{SFlagBrightness, "BRIGHTNESS"},
	{SFlagMonochrome, "MONOCHROME"},
}

// StripFlags represents information about a PixelPusher Strip.
type StripFlags uint8

// IsLogarithmic is true if the SFLAG_LOGARITHMIC strip flag is enabled.
//
// If true, the strip's LEDs have a logarithmic response.
func (sf StripFlags) IsLogarithmic() bool { return sf.getFlag(SFlagLogarithmic) }

// SetLogarithmic sets the value of the SFLAG_LOGARITHMIC strip flag.
func (sf *StripFlags) SetLogarithmic(v bool) { sf.setFlag(SFlagLogarithmic, v) }

// IsRGBOW is true if the SFLAG_RGBOW strip flag is enabled.
func (sf StripFlags) IsRGBOW() bool { return sf.getFlag(SFlagRGBOW) }

// IsMonochrome is true if the SFLAG_MONOCHROME strip flag is enabled.
func (sf StripFlags) IsMonochrome() bool { return sf.getFlag(SFlagMonochrome) }

// SetMonochrome sets the value of the SFLAG_MONOCHROME strip flag.
func (sf *StripFlags) SetMonochrome(v bool) { sf.setFlag(SFlagMonochrome, v) }

// String writes a string version of these flags.
//
// Output looks like:
// 0x04(LOGARITHMIC)
func (sf StripFlags) String() string {
	flags := make([]string, 0, len(flagNames))
	for _, f := range flagNames {
		if sf.getFlag(f.flag) {
			flags = append(flags, f.text)
		}
	}

	if len(flags) > 0 {
		return fmt.Sprintf("0x%02X(%s)", uint8(sf), strings.Join(flags, "|"))
	}
	return fmt.Sprintf("0x%02X", uint8(sf))
}

func (sf StripFlags) getFlag(flag StripFlags) bool { return (sf & flag) != 0 }
func (sf *StripFlags) setFlag(flag StripFlags, v bool) {
	if v {
		*sf = *sf | flag
	} else {
		*sf = *sf & (^flag)
	}
}
