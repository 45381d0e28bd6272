// SPDX-License-Identifier: Unlicense OR MIT

/*
Package gesture implements touch gesture recognition.

A Classifier accepts low level touch Events for one or more
simultaneous contacts and detects higher level actions such as
taps, long presses, scrolls, flings and pinches.

Contacts that belong to the same consumer are classified together,
so two fingers on one widget form a pinch while two fingers on two
widgets form two independent scrolls.

Results are returned as plain slices of Event. The Classifier never
retains a returned slice; callers own it.
*/
package gesture

import (
	"fmt"
	"time"

	"touchflow.org/f32"
	"touchflow.org/io/event"
	"touchflow.org/io/touch"
)

// Event is a recognized gesture.
type Event struct {
	Kind Kind
	// Target is the consumer the originating contacts were
	// locked to when the gesture was recognized, or nil.
	Target event.Tag
	// Contacts are the contacts that contributed to the
	// gesture, in press order.
	Contacts []touch.ID
	// Time is the timestamp of the touch event that triggered
	// the gesture.
	Time time.Duration
	// Position is the location of the gesture. For multi-contact
	// gestures it is the centroid of the contacts.
	Position f32.Point
	// Delta is the movement since the previous ScrollUpdate, or
	// since ScrollBegin for the first update.
	Delta f32.Point
	// Velocity is the release velocity in pixels per second
	// for Fling and Swipe.
	Velocity f32.Point
	// Scale is the span ratio since the previous PinchUpdate.
	Scale float32
	// Rotation is the angle in radians the pinch contacts turned
	// since the previous PinchUpdate. Positive is clockwise on a
	// screen with y pointing down.
	Rotation float32
	// TapCount is 1 for a single tap, 2 for a double tap and so
	// on.
	TapCount int
	// Direction is set for Swipe.
	Direction Direction
}

// Kind of a gesture Event.
type Kind uint8

// Direction of a Swipe.
type Direction uint8

const (
	// TapDown is reported when the first contact of a
	// sequence is pressed.
	TapDown Kind = iota
	// Tap is reported when a contact is released before the
	// long press timeout without leaving the touch slop.
	Tap
	// LongPress is reported when a contact stays within the
	// touch slop past the long press timeout.
	LongPress
	ScrollBegin
	ScrollUpdate
	ScrollEnd
	// Fling replaces ScrollEnd when the release velocity
	// exceeds the minimum fling velocity.
	Fling
	// Swipe precedes Fling when the release velocity is fast
	// and dominated by one axis.
	Swipe
	PinchBegin
	PinchUpdate
	PinchEnd
	// TwoFingerTap is reported when two contacts are pressed
	// and released together without moving.
	TwoFingerTap
	// Cancel is reported when a scroll or pinch in progress
	// is interrupted before its end.
	Cancel
)

const (
	DirectionNone Direction = iota
	Left
	Right
	Up
	Down
)

func (e Event) String() string {
	return fmt.Sprintf("%v@%v t=%v", e.Kind, e.Position, e.Time)
}

func (k Kind) String() string {
	switch k {
	case TapDown:
		return "TapDown"
	case Tap:
		return "Tap"
	case LongPress:
		return "LongPress"
	case ScrollBegin:
		return "ScrollBegin"
	case ScrollUpdate:
		return "ScrollUpdate"
	case ScrollEnd:
		return "ScrollEnd"
	case Fling:
		return "Fling"
	case Swipe:
		return "Swipe"
	case PinchBegin:
		return "PinchBegin"
	case PinchUpdate:
		return "PinchUpdate"
	case PinchEnd:
		return "PinchEnd"
	case TwoFingerTap:
		return "TwoFingerTap"
	case Cancel:
		return "Cancel"
	default:
		panic("invalid Kind")
	}
}

func (d Direction) String() string {
	switch d {
	case DirectionNone:
		return "None"
	case Left:
		return "Left"
	case Right:
		return "Right"
	case Up:
		return "Up"
	case Down:
		return "Down"
	default:
		panic("invalid Direction")
	}
}
