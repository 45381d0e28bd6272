// SPDX-License-Identifier: Unlicense OR MIT

package service

import (
	"time"

	"touchflow.org/f32"
	"touchflow.org/gesture"
	"touchflow.org/io/touch"
)

// Message is a client payload. T selects the operation:
//
//	down, move, up, cancel  a touch event of contact ID at (X, Y)
//	ack                     AdvanceTouchQueue for Target
//	flush                   FlushTouchQueue for Target
//	capture                 CancelNonCapturedTouches for Target
//	locate                  TargetForLocation of (X, Y)
//	tick                    Tick at Ts
//	leave                   CleanupConsumer for Target
//
// Timestamps are in milliseconds.
type Message struct {
	T      string  `json:"t"`
	ID     int     `json:"id,omitempty"`
	X      float32 `json:"x,omitempty"`
	Y      float32 `json:"y,omitempty"`
	Ts     int64   `json:"ts,omitempty"`
	Target string  `json:"target,omitempty"`
	// Consumed marks a touch event already handled by Target.
	Consumed bool `json:"consumed,omitempty"`
	// Queue defers a touch event until Target acknowledges it.
	Queue bool `json:"queue,omitempty"`
	// Processed is the acknowledgement of an ack message. It
	// defaults to true.
	Processed *bool `json:"processed,omitempty"`
}

// Reply is a server payload: a recognized gesture (T "gesture"), a
// cancellation of a contact that lost its consumer ("cancel"), the
// answer to locate ("target") or a rejected message ("error").
type Reply struct {
	T        string     `json:"t"`
	Kind     string     `json:"kind,omitempty"`
	Target   string     `json:"target,omitempty"`
	ID       int        `json:"id,omitempty"`
	Contacts []int      `json:"contacts,omitempty"`
	X        float32    `json:"x,omitempty"`
	Y        float32    `json:"y,omitempty"`
	Ts       int64      `json:"ts,omitempty"`
	Delta    *f32.Point `json:"delta,omitempty"`
	Velocity *f32.Point `json:"velocity,omitempty"`
	Scale    float32    `json:"scale,omitempty"`
	Rotation float32    `json:"rotation,omitempty"`
	TapCount int        `json:"tapCount,omitempty"`
	Dir      string     `json:"dir,omitempty"`
	Error    string     `json:"error,omitempty"`
}

var touchKinds = map[string]touch.Kind{
	"down":   touch.Press,
	"move":   touch.Move,
	"up":     touch.Release,
	"cancel": touch.Cancel,
}

func (m Message) touchEvent(k touch.Kind) touch.Event {
	return touch.Event{
		Kind:     k,
		ID:       touch.ID(m.ID),
		Time:     millis(m.Ts),
		Position: f32.Pt(m.X, m.Y),
	}
}

func millis(ms int64) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

func gestureReply(e gesture.Event, target string) Reply {
	r := Reply{
		T:        "gesture",
		Kind:     e.Kind.String(),
		Target:   target,
		X:        e.Position.X,
		Y:        e.Position.Y,
		Ts:       e.Time.Milliseconds(),
		Scale:    e.Scale,
		Rotation: e.Rotation,
		TapCount: e.TapCount,
	}
	for _, id := range e.Contacts {
		r.Contacts = append(r.Contacts, int(id))
	}
	if e.Delta != (f32.Point{}) {
		d := e.Delta
		r.Delta = &d
	}
	if e.Velocity != (f32.Point{}) {
		v := e.Velocity
		r.Velocity = &v
	}
	if e.Direction != gesture.DirectionNone {
		r.Dir = e.Direction.String()
	}
	return r
}
