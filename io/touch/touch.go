// SPDX-License-Identifier: Unlicense OR MIT

/*
Package touch defines the raw contact events reported by the
platform for touch screens.

A contact is one physical finger or stylus tip. Every contact
is assigned an ID when it is pressed; the ID is stable until
the contact is released or cancelled, after which the platform
may reuse it.
*/
package touch

import (
	"strings"
	"time"

	"touchflow.org/f32"
)

// Event is a touch contact event.
type Event struct {
	Kind Kind
	// ID identifies the contact from Press to
	// Release or Cancel.
	ID ID
	// Time is when the event was received. The
	// timestamp is relative to an undefined base.
	Time time.Duration
	// Position is the screen coordinates of the contact
	// in pixels.
	Position f32.Point
}

// ID of a contact.
type ID uint16

// Kind of an Event.
type Kind uint8

// Status reports whether a consumer already handled a raw
// touch event before it was offered for gesture recognition.
type Status uint8

const (
	// A Cancel event is generated when the current contact is
	// interrupted by other consumers or the system.
	Cancel Kind = 1 << iota
	// Press of a contact.
	Press
	// Release of a contact.
	Release
	// Move of a pressed contact.
	Move
)

const (
	// Unconsumed events are available for gestures.
	Unconsumed Status = iota
	// Consumed events were handled by the consumer.
	Consumed
)

// Terminal reports whether k ends a contact.
func (k Kind) Terminal() bool {
	return k&(Release|Cancel) != 0
}

func (k Kind) String() string {
	if k == Cancel {
		return "Cancel"
	}
	var buf strings.Builder
	for kk := Kind(1); kk > 0; kk <<= 1 {
		if k&kk > 0 {
			if buf.Len() > 0 {
				buf.WriteByte('|')
			}
			buf.WriteString((k & kk).string())
		}
	}
	return buf.String()
}

func (k Kind) string() string {
	switch k {
	case Press:
		return "Press"
	case Release:
		return "Release"
	case Cancel:
		return "Cancel"
	case Move:
		return "Move"
	default:
		panic("unknown Kind")
	}
}

func (s Status) String() string {
	switch s {
	case Unconsumed:
		return "Unconsumed"
	case Consumed:
		return "Consumed"
	default:
		panic("unknown Status")
	}
}

// ParseKind returns the single Kind named by s, ignoring case.
// It also accepts "down" for Press and "up" for Release.
func ParseKind(s string) (Kind, bool) {
	switch strings.ToLower(s) {
	case "press", "down":
		return Press, true
	case "move":
		return Move, true
	case "release", "up":
		return Release, true
	case "cancel":
		return Cancel, true
	default:
		return 0, false
	}
}
