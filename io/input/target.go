// SPDX-License-Identifier: Unlicense OR MIT

package input

import (
	"touchflow.org/f32"
	"touchflow.org/gesture"
	"touchflow.org/io/event"
	"touchflow.org/io/touch"
)

// TouchLockedTarget returns the consumer the contact of e is locked
// to, or nil if it has no lock.
func (r *Router) TouchLockedTarget(e touch.Event) event.Tag {
	return r.locks.target(e.ID)
}

// TargetForGestureEvent returns the consumer that should handle g:
// the consumer its contacts were locked to when it was recognized.
// Gestures of unlocked contacts fall back to the current lock of
// their first contact.
func (r *Router) TargetForGestureEvent(g gesture.Event) event.Tag {
	if g.Target != nil {
		return g.Target
	}
	if len(g.Contacts) > 0 {
		return r.locks.target(g.Contacts[0])
	}
	return nil
}

// TargetForLocation returns the consumer of the locked contact whose
// last position is nearest to p and no farther than
// MaxSeparationForGestureTouches. Equal distances resolve to the
// oldest lock.
func (r *Router) TargetForLocation(p f32.Point) event.Tag {
	radius := r.metric.DpToPx(r.cfg.MaxSeparationForGestureTouches)
	var (
		best  event.Tag
		found bool
		dist  float32
	)
	for _, l := range r.locks.locks {
		d := l.pos.Dist(p)
		if d > radius {
			continue
		}
		if !found || d < dist {
			best, dist, found = l.target, d, true
		}
	}
	return best
}
