// SPDX-License-Identifier: Unlicense OR MIT

package gesture

import (
	"time"

	"touchflow.org/unit"
)

// Config holds the thresholds of a Classifier. Distances are in
// device independent pixels and converted with the Metric given
// to NewClassifier.
type Config struct {
	// TouchSlop is how far a contact may move from its press
	// location and still be a tap.
	TouchSlop unit.Dp
	// DoubleTapSlop is the maximum distance between two taps
	// counted as one double tap.
	DoubleTapSlop unit.Dp
	// PinchSlop is the span change that starts a pinch.
	PinchSlop unit.Dp
	// MaxSeparationForGestureTouches bounds the distance to an
	// active contact for location based target resolution.
	MaxSeparationForGestureTouches unit.Dp
	// MinFlingVelocity is in dp per second.
	MinFlingVelocity unit.Dp
	// MinSwipeVelocity is in dp per second.
	MinSwipeVelocity unit.Dp
	// SwipeAxisRatio is how many times faster the dominant
	// axis must be than the other for a Swipe.
	SwipeAxisRatio float32
	// LongPressTimeout is the time a contact must stay within
	// TouchSlop for a LongPress. Releases before it are taps.
	LongPressTimeout time.Duration
	// DoubleTapTimeout is the maximum time between two taps
	// counted as one double tap.
	DoubleTapTimeout time.Duration
}

// DefaultConfig returns the default thresholds.
func DefaultConfig() Config {
	return Config{
		TouchSlop:                      8,
		DoubleTapSlop:                  30,
		PinchSlop:                      10,
		MaxSeparationForGestureTouches: 40,
		MinFlingVelocity:               50,
		MinSwipeVelocity:               800,
		SwipeAxisRatio:                 2,
		LongPressTimeout:               500 * time.Millisecond,
		DoubleTapTimeout:               300 * time.Millisecond,
	}
}

// thresholds are the pixel forms of a Config.
type thresholds struct {
	touchSlop     float32
	doubleTapSlop float32
	pinchSlop     float32
	minFling      float32
	minSwipe      float32
}

func (c Config) thresholds(m unit.Metric) thresholds {
	return thresholds{
		touchSlop:     m.DpToPx(c.TouchSlop),
		doubleTapSlop: m.DpToPx(c.DoubleTapSlop),
		pinchSlop:     m.DpToPx(c.PinchSlop),
		minFling:      m.DpToPx(c.MinFlingVelocity),
		minSwipe:      m.DpToPx(c.MinSwipeVelocity),
	}
}
