// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package pixelpusher

import (
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("StripFlags", func() {
	It("assigns the documented bit positions", func() {
		Expect(SFlagRGBOW).To(Equal(StripFlags(1 << 0)))
		Expect(SFlagWidePixels).To(Equal(StripFlags(1 << 1)))
		Expect(SFlagLogarithmic).To(Equal(StripFlags(1 << 2)))
		Expect(SFlagMotion).To(Equal(StripFlags(1 << 3)))
		Expect(SFlagNotIdempotent).To(Equal(StripFlags(1 << 4)))
		Expect(SFlagBrightness).To(Equal(StripFlags(1 << 5)))
		Expect(SFlagMonochrome).To(Equal(StripFlags(1 << 6)))
	})

	It("sets and clears flags through the accessors", func() {
		var sf StripFlags

		sf.SetLogarithmic(true)
		Expect(sf.IsLogarithmic()).To(BeTrue())
		Expect(sf).To(Equal(SFlagLogarithmic))

		sf.SetMonochrome(true)
		Expect(sf.IsMonochrome()).To(BeTrue())

		sf.SetLogarithmic(false)
		Expect(sf.IsLogarithmic()).To(BeFalse())
		Expect(sf.IsMonochrome()).To(BeTrue())
	})

	It("names set flags in String", func() {
		var sf StripFlags
		sf.SetLogarithmic(true)
		sf.SetMonochrome(true)

		Expect(sf.String()).To(Equal("0x44(LOGARITHMIC|MONOCHROME)"))
		Expect(StripFlags(0).String()).To(Equal("0x00"))
	})
})
