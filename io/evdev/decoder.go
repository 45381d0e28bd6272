// SPDX-License-Identifier: Unlicense OR MIT

// Package evdev decodes the Linux multitouch protocol (type B) into
// touch events. Positions are in device units.
package evdev

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"time"

	"touchflow.org/f32"
	"touchflow.org/io/touch"
)

// ErrUnsupported is returned by Open on platforms without evdev.
var ErrUnsupported = errors.New("evdev: unsupported platform")

// Event types and codes from linux/input-event-codes.h.
const (
	evSyn = 0x00
	evAbs = 0x03

	synReport  = 0
	synDropped = 3

	absMTSlot       = 0x2f
	absMTPositionX  = 0x35
	absMTPositionY  = 0x36
	absMTTrackingID = 0x39
)

// RawEventSize is the size of a struct input_event with a 64 bit
// timeval.
const RawEventSize = 24

// RawEvent is a struct input_event.
type RawEvent struct {
	Time  time.Duration
	Type  uint16
	Code  uint16
	Value int32
}

// ParseRawEvent decodes a little endian struct input_event.
func ParseRawEvent(b []byte) (RawEvent, error) {
	if len(b) < RawEventSize {
		return RawEvent{}, fmt.Errorf("evdev: short event (%d bytes)", len(b))
	}
	sec := int64(binary.LittleEndian.Uint64(b[0:]))
	usec := int64(binary.LittleEndian.Uint64(b[8:]))
	return RawEvent{
		Time:  time.Duration(sec)*time.Second + time.Duration(usec)*time.Microsecond,
		Type:  binary.LittleEndian.Uint16(b[16:]),
		Code:  binary.LittleEndian.Uint16(b[18:]),
		Value: int32(binary.LittleEndian.Uint32(b[20:])),
	}, nil
}

// AppendRawEvent appends the encoding of e to b.
func AppendRawEvent(b []byte, e RawEvent) []byte {
	var buf [RawEventSize]byte
	binary.LittleEndian.PutUint64(buf[0:], uint64(e.Time/time.Second))
	binary.LittleEndian.PutUint64(buf[8:], uint64(e.Time%time.Second/time.Microsecond))
	binary.LittleEndian.PutUint16(buf[16:], e.Type)
	binary.LittleEndian.PutUint16(buf[18:], e.Code)
	binary.LittleEndian.PutUint32(buf[20:], uint32(e.Value))
	return append(b, buf[:]...)
}

// Decoder accumulates slot updates and emits touch events for every
// synchronized frame. The zero value is ready for use.
//
// After SYN_DROPPED every active contact is cancelled, and slots stay
// empty until the device reports new tracking ids.
type Decoder struct {
	slots []slot
	cur   int
	// dropped is set after SYN_DROPPED until the next SYN_REPORT.
	dropped bool
}

type slot struct {
	active bool
	id     touch.ID
	pos    f32.Point
	// next is the tracking id assigned in the current frame.
	next touch.ID
	// Changes since the last frame.
	pressed, moved, released bool
}

// Decode processes e. At the end of a frame it returns the touch
// events of the frame in slot order.
func (d *Decoder) Decode(e RawEvent) []touch.Event {
	switch e.Type {
	case evSyn:
		switch e.Code {
		case synReport:
			if d.dropped {
				d.dropped = false
				return nil
			}
			return d.frame(e.Time)
		case synDropped:
			d.dropped = true
			return d.cancelAll(e.Time)
		}
	case evAbs:
		if !d.dropped {
			d.abs(e.Code, e.Value)
		}
	}
	return nil
}

func (d *Decoder) abs(code uint16, v int32) {
	if code == absMTSlot {
		if v >= 0 {
			d.cur = int(v)
		}
		return
	}
	s := d.slot(d.cur)
	switch code {
	case absMTTrackingID:
		// A new tracking id in an active slot replaces its contact.
		s.released = s.active
		if v >= 0 {
			s.next = touch.ID(v)
			s.pressed = true
		} else {
			s.pressed = false
		}
	case absMTPositionX:
		s.pos.X = float32(v)
		s.moved = true
	case absMTPositionY:
		s.pos.Y = float32(v)
		s.moved = true
	}
}

func (d *Decoder) slot(i int) *slot {
	for len(d.slots) <= i {
		d.slots = append(d.slots, slot{})
	}
	return &d.slots[i]
}

func (d *Decoder) frame(t time.Duration) []touch.Event {
	var evts []touch.Event
	for i := range d.slots {
		s := &d.slots[i]
		if s.released {
			evts = append(evts, touch.Event{Kind: touch.Release, ID: s.id, Time: t, Position: s.pos})
			s.active = false
		}
		switch {
		case s.pressed:
			s.id, s.active = s.next, true
			evts = append(evts, touch.Event{Kind: touch.Press, ID: s.id, Time: t, Position: s.pos})
		case s.moved && s.active:
			evts = append(evts, touch.Event{Kind: touch.Move, ID: s.id, Time: t, Position: s.pos})
		}
		s.pressed, s.moved, s.released = false, false, false
	}
	return evts
}

func (d *Decoder) cancelAll(t time.Duration) []touch.Event {
	var evts []touch.Event
	for i := range d.slots {
		s := &d.slots[i]
		if s.active {
			evts = append(evts, touch.Event{Kind: touch.Cancel, ID: s.id, Time: t, Position: s.pos})
		}
		*s = slot{}
	}
	return evts
}

// Reader reads touch events from an evdev stream.
type Reader struct {
	r          io.Reader
	dec        Decoder
	buf        []byte
	start, end int
}

// NewReader returns a Reader decoding the events of r.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r, buf: make([]byte, 64*RawEventSize)}
}

// Read blocks until a frame with at least one touch event is
// decoded, and returns its events.
func (r *Reader) Read() ([]touch.Event, error) {
	for {
		for r.end-r.start >= RawEventSize {
			e, err := ParseRawEvent(r.buf[r.start:r.end])
			if err != nil {
				return nil, err
			}
			r.start += RawEventSize
			if evts := r.dec.Decode(e); len(evts) > 0 {
				return evts, nil
			}
		}
		r.end = copy(r.buf, r.buf[r.start:r.end])
		r.start = 0
		n, err := r.r.Read(r.buf[r.end:])
		r.end += n
		if err != nil && r.end < RawEventSize {
			if errors.Is(err, io.EOF) && r.end > 0 {
				return nil, io.ErrUnexpectedEOF
			}
			return nil, err
		}
	}
}
