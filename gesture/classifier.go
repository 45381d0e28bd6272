// SPDX-License-Identifier: Unlicense OR MIT

package gesture

import (
	"math"
	"time"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"touchflow.org/f32"
	"touchflow.org/internal/fling"
	"touchflow.org/io/event"
	"touchflow.org/io/touch"
	"touchflow.org/unit"
)

// Classifier detects gestures in the touch events of all
// contacts. The zero value is not usable; use NewClassifier.
//
// A Classifier is not safe for concurrent use.
type Classifier struct {
	cfg Config
	th  thresholds
	// groups holds the recognition state per consumer.
	groups map[event.Tag]*group
	// contacts maps active contacts to their group.
	contacts map[touch.ID]*group
	// taps holds the last tap per consumer while a following tap
	// can still count as a double tap.
	taps map[event.Tag]tapRecord
	seq  uint64
}

type recognition uint8

// group is the recognition state of the contacts of one
// consumer.
type group struct {
	target   event.Tag
	seq      uint64
	state    recognition
	contacts []*contact
	// start is the time of the first press of the sequence.
	start time.Duration
	// origin is the press location of a single contact, or the
	// press centroid of a two finger tap.
	origin f32.Point
	// last is the position of the most recent scroll update.
	last f32.Point
	// span and angle are the pinch span and the direction from
	// the first to the second pinch contact at the previous update.
	span     float32
	angle    float32
	velocity fling.Tracker
}

type contact struct {
	id    touch.ID
	press f32.Point
	pos   f32.Point
}

type tapRecord struct {
	count int
	time  time.Duration
	pos   f32.Point
}

const (
	stateIdle recognition = iota
	statePossibleTap
	stateLongPressed
	stateScrolling
	statePossibleTwoFingerTap
	statePossiblePinch
	statePinching
	// stateEnd ignores the remaining contacts until they
	// are all released.
	stateEnd
)

// NewClassifier returns a Classifier for the thresholds in cfg,
// converted to pixels by m.
func NewClassifier(cfg Config, m unit.Metric) *Classifier {
	return &Classifier{
		cfg:      cfg,
		th:       cfg.thresholds(m),
		groups:   make(map[event.Tag]*group),
		contacts: make(map[touch.ID]*group),
		taps:     make(map[event.Tag]tapRecord),
	}
}

// Classify processes a touch event for the contacts of target and
// returns the gestures it completes, if any. The target of a contact
// is fixed by its Press; later events for the contact are classified
// with its group regardless of target. Events for unknown contacts
// and duplicate presses are ignored.
func (c *Classifier) Classify(e touch.Event, target event.Tag, status touch.Status) []Event {
	if e.Kind == touch.Press {
		return c.press(e, target, status)
	}
	g, ok := c.contacts[e.ID]
	if !ok {
		return nil
	}
	ct := g.contact(e.ID)
	switch e.Kind {
	case touch.Move:
		ct.pos = e.Position
		if status == touch.Consumed {
			return g.end(e)
		}
		return c.move(g, ct, e)
	case touch.Release:
		ct.pos = e.Position
		var evts []Event
		if status == touch.Consumed {
			evts = g.end(e)
		} else {
			evts = c.release(g, ct, e)
		}
		c.remove(g, e.ID)
		return evts
	case touch.Cancel:
		evts := g.end(e)
		c.remove(g, e.ID)
		return evts
	}
	return nil
}

// Tick evaluates the time thresholds at now for contacts that have
// not moved since the last event, and returns the resulting
// gestures. It lets a caller report a long press while the finger
// is still down and stationary.
func (c *Classifier) Tick(now time.Duration) []Event {
	groups := maps.Values(c.groups)
	slices.SortFunc(groups, func(a, b *group) int {
		switch {
		case a.seq < b.seq:
			return -1
		case a.seq > b.seq:
			return 1
		}
		return 0
	})
	c.pruneTaps(now)
	var evts []Event
	for _, g := range groups {
		if now-g.start < c.cfg.LongPressTimeout {
			continue
		}
		switch g.state {
		case statePossibleTap:
			g.state = stateLongPressed
			evts = append(evts, g.event(LongPress, now, g.origin))
		case statePossibleTwoFingerTap:
			g.state = statePossiblePinch
		}
	}
	return evts
}

// Discard stops tracking the contact id without reporting gestures.
// Other contacts of its group are ignored until released.
func (c *Classifier) Discard(id touch.ID) {
	g, ok := c.contacts[id]
	if !ok {
		return
	}
	g.state = stateEnd
	c.remove(g, id)
}

// Forget drops every contact and all state of target.
func (c *Classifier) Forget(target event.Tag) {
	delete(c.taps, target)
	g, ok := c.groups[target]
	if !ok {
		return
	}
	for _, ct := range g.contacts {
		delete(c.contacts, ct.id)
	}
	delete(c.groups, target)
}

func (c *Classifier) press(e touch.Event, target event.Tag, status touch.Status) []Event {
	if _, dup := c.contacts[e.ID]; dup {
		return nil
	}
	c.pruneTaps(e.Time)
	g := c.groups[target]
	if g == nil {
		c.seq++
		g = &group{target: target, seq: c.seq}
		c.groups[target] = g
	}
	g.contacts = append(g.contacts, &contact{id: e.ID, press: e.Position, pos: e.Position})
	c.contacts[e.ID] = g
	if status == touch.Consumed {
		return g.end(e)
	}
	switch g.state {
	case stateIdle:
		g.state = statePossibleTap
		g.start = e.Time
		g.origin = e.Position
		g.last = e.Position
		g.velocity = fling.Tracker{}
		g.velocity.Sample(e.Time, e.Position)
		return []Event{g.event(TapDown, e.Time, e.Position)}
	case statePossibleTap:
		g.state = statePossibleTwoFingerTap
		g.origin = f32.Centroid(g.pinchPoints()...)
		g.resetPinch()
	case stateScrolling:
		evts := []Event{g.event(ScrollEnd, e.Time, g.last)}
		g.state = statePossiblePinch
		g.resetPinch()
		return evts
	}
	return nil
}

func (c *Classifier) move(g *group, ct *contact, e touch.Event) []Event {
	switch g.state {
	case statePossibleTap:
		g.velocity.Sample(e.Time, e.Position)
		// Distance wins over time when a sample meets both.
		if ct.pos.Dist(ct.press) > c.th.touchSlop {
			g.state = stateScrolling
			evts := []Event{g.event(ScrollBegin, e.Time, ct.press)}
			return append(evts, g.scrollTo(e, ct.pos)...)
		}
		if e.Time-g.start >= c.cfg.LongPressTimeout {
			g.state = stateLongPressed
			return []Event{g.event(LongPress, e.Time, ct.press)}
		}
	case stateScrolling:
		g.velocity.Sample(e.Time, e.Position)
		return g.scrollTo(e, ct.pos)
	case statePossibleTwoFingerTap, statePossiblePinch:
		if len(g.contacts) < 2 {
			// The other contact of a two finger tap was released.
			if ct.pos.Dist(ct.press) > c.th.touchSlop {
				g.state = stateEnd
			}
			return nil
		}
		if !g.pinchContact(ct.id) {
			return nil
		}
		s, a := g.pinchSpan(), g.pinchAngle()
		// Turning counts by the arc the contacts travel.
		if abs(s-g.span) > c.th.pinchSlop || abs(turn(a, g.angle))*s > c.th.pinchSlop {
			g.state = statePinching
			pos := f32.Centroid(g.pinchPoints()...)
			begin := g.event(PinchBegin, e.Time, pos)
			begin.Scale = 1
			return []Event{begin, g.pinchUpdate(e.Time, pos, s, a)}
		}
		if g.state == statePossibleTwoFingerTap {
			if ct.pos.Dist(ct.press) > c.th.touchSlop || e.Time-g.start >= c.cfg.LongPressTimeout {
				g.state = statePossiblePinch
			}
		}
	case statePinching:
		if !g.pinchContact(ct.id) {
			return nil
		}
		s, a := g.pinchSpan(), g.pinchAngle()
		if s == g.span && a == g.angle {
			return nil
		}
		return []Event{g.pinchUpdate(e.Time, f32.Centroid(g.pinchPoints()...), s, a)}
	}
	return nil
}

func (c *Classifier) release(g *group, ct *contact, e touch.Event) []Event {
	// The release location is the final sample of the contact.
	evts := c.move(g, ct, e)
	switch g.state {
	case statePossibleTap:
		g.state = stateEnd
		evts = append(evts, c.tap(g, e))
	case stateScrolling:
		g.state = stateEnd
		evts = append(evts, c.scrollEnd(g, e)...)
	case statePossibleTwoFingerTap:
		if len(g.contacts) > 1 {
			break
		}
		g.state = stateEnd
		if e.Time-g.start < c.cfg.LongPressTimeout {
			evts = append(evts, g.event(TwoFingerTap, e.Time, g.origin))
		}
	case statePossiblePinch:
		if g.pinchContact(ct.id) {
			g.state = stateEnd
		}
	case statePinching:
		if g.pinchContact(ct.id) {
			evts = append(evts, g.event(PinchEnd, e.Time, f32.Centroid(g.pinchPoints()...)))
			g.state = stateEnd
		}
	case stateLongPressed:
		g.state = stateEnd
	}
	return evts
}

func (c *Classifier) tap(g *group, e touch.Event) Event {
	t := g.event(Tap, e.Time, e.Position)
	t.TapCount = 1
	if lt, ok := c.taps[g.target]; ok &&
		e.Time >= lt.time && e.Time-lt.time <= c.cfg.DoubleTapTimeout &&
		e.Position.Dist(lt.pos) <= c.th.doubleTapSlop {
		t.TapCount = lt.count + 1
	}
	c.taps[g.target] = tapRecord{count: t.TapCount, time: e.Time, pos: e.Position}
	return t
}

// pruneTaps forgets the taps that can no longer start a double tap
// at now, including taps recorded after now.
func (c *Classifier) pruneTaps(now time.Duration) {
	for target, lt := range c.taps {
		if now < lt.time || now-lt.time > c.cfg.DoubleTapTimeout {
			delete(c.taps, target)
		}
	}
}

func (c *Classifier) scrollEnd(g *group, e touch.Event) []Event {
	v := g.velocity.Velocity()
	if v.Len() < c.th.minFling {
		return []Event{g.event(ScrollEnd, e.Time, g.last)}
	}
	var evts []Event
	if dir := c.swipeDirection(v); dir != DirectionNone {
		s := g.event(Swipe, e.Time, g.last)
		s.Velocity = v
		s.Direction = dir
		evts = append(evts, s)
	}
	f := g.event(Fling, e.Time, g.last)
	f.Velocity = v
	return append(evts, f)
}

func (c *Classifier) swipeDirection(v f32.Point) Direction {
	if v.Len() < c.th.minSwipe {
		return DirectionNone
	}
	ax, ay := abs(v.X), abs(v.Y)
	switch {
	case ax >= ay*c.cfg.SwipeAxisRatio:
		if v.X < 0 {
			return Left
		}
		return Right
	case ay >= ax*c.cfg.SwipeAxisRatio:
		if v.Y < 0 {
			return Up
		}
		return Down
	}
	return DirectionNone
}

func (c *Classifier) remove(g *group, id touch.ID) {
	delete(c.contacts, id)
	i := g.index(id)
	if i == -1 {
		return
	}
	g.contacts = slices.Delete(g.contacts, i, i+1)
	if len(g.contacts) == 0 {
		// The group holds no state worth keeping; taps are
		// remembered separately.
		delete(c.groups, g.target)
		return
	}
	if i < 2 && len(g.contacts) >= 2 {
		// Another contact joined the pinch pair.
		g.resetPinch()
		if g.state == statePossibleTwoFingerTap {
			g.origin = f32.Centroid(g.pinchPoints()...)
		}
	}
}

// end stops recognition for the group and reports an interrupted
// scroll or pinch.
func (g *group) end(e touch.Event) []Event {
	var evts []Event
	switch g.state {
	case stateScrolling, statePinching:
		evts = append(evts, g.event(Cancel, e.Time, e.Position))
	}
	g.state = stateEnd
	return evts
}

func (g *group) scrollTo(e touch.Event, pos f32.Point) []Event {
	d := pos.Sub(g.last)
	if d == (f32.Point{}) {
		return nil
	}
	g.last = pos
	u := g.event(ScrollUpdate, e.Time, pos)
	u.Delta = d
	return []Event{u}
}

func (g *group) event(k Kind, t time.Duration, pos f32.Point) Event {
	ids := make([]touch.ID, len(g.contacts))
	for i, ct := range g.contacts {
		ids[i] = ct.id
	}
	return Event{
		Kind:     k,
		Target:   g.target,
		Contacts: ids,
		Time:     t,
		Position: pos,
	}
}

func (g *group) index(id touch.ID) int {
	return slices.IndexFunc(g.contacts, func(ct *contact) bool {
		return ct.id == id
	})
}

func (g *group) contact(id touch.ID) *contact {
	return g.contacts[g.index(id)]
}

// pinchContact reports whether id is one of the two contacts
// that define a pinch.
func (g *group) pinchContact(id touch.ID) bool {
	i := g.index(id)
	return i != -1 && i < 2
}

func (g *group) pinchPoints() []f32.Point {
	n := len(g.contacts)
	if n > 2 {
		n = 2
	}
	pts := make([]f32.Point, n)
	for i := range pts {
		pts[i] = g.contacts[i].pos
	}
	return pts
}

func (g *group) pinchSpan() float32 {
	return f32.Span(g.pinchPoints()...)
}

// pinchAngle returns the direction in radians from the first to the
// second pinch contact, or 0 for a single contact.
func (g *group) pinchAngle() float32 {
	if len(g.contacts) < 2 {
		return 0
	}
	d := g.contacts[1].pos.Sub(g.contacts[0].pos)
	return float32(math.Atan2(float64(d.Y), float64(d.X)))
}

func (g *group) resetPinch() {
	g.span = g.pinchSpan()
	g.angle = g.pinchAngle()
}

func (g *group) pinchUpdate(t time.Duration, pos f32.Point, s, a float32) Event {
	u := g.event(PinchUpdate, t, pos)
	u.Scale = ratio(s, g.span)
	u.Rotation = turn(a, g.angle)
	g.span, g.angle = s, a
	return u
}

// turn returns the signed angle from prev to a, in (-π, π].
func turn(a, prev float32) float32 {
	d := float64(a - prev)
	for d > math.Pi {
		d -= 2 * math.Pi
	}
	for d <= -math.Pi {
		d += 2 * math.Pi
	}
	return float32(d)
}

func ratio(s, prev float32) float32 {
	if prev == 0 {
		return 1
	}
	return s / prev
}

func abs(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
