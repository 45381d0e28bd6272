// SPDX-License-Identifier: Unlicense OR MIT

/*

Package unit implements device independent units.

Device independent pixel, or dp, is the unit for sizes independent of
the underlying display device. Gesture thresholds are expressed in dp
so that a slop or a fling velocity feels the same on every screen.

Pixels, or px, is the unit for display dependent pixels, the unit touch
events are reported in. Their size vary between platforms and displays.

*/
package unit

import "fmt"

// Metric converts Values to device-dependent pixels, px. The zero
// value represents a 1-to-1 scale from dp to device pixels.
type Metric struct {
	// PxPerDp is the device-dependent pixels per dp.
	PxPerDp float32
}

// Dp represents device independent pixels. 1 dp will
// have the same apparent size across platforms and
// display resolutions.
type Dp float32

// DpToPx converts v to fractional pixels. Thresholds compared against
// touch positions use this form to avoid rounding small slops to zero.
func (c Metric) DpToPx(v Dp) float32 {
	return nonZero(c.PxPerDp) * float32(v)
}

func (v Dp) String() string {
	return fmt.Sprintf("%gdp", float32(v))
}

func nonZero(v float32) float32 {
	if v == 0. {
		return 1
	}
	return v
}
