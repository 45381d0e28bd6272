// SPDX-License-Identifier: Unlicense OR MIT

package input

import (
	"touchflow.org/gesture"
	"touchflow.org/io/event"
	"touchflow.org/io/touch"
)

// CancelNonCapturedTouches cancels every locked contact whose consumer
// is not capturer. For each one a Cancel event is passed to the
// Helper and classified, the lock is removed and the contact is
// ignored until it is pressed again. The gestures resulting from the
// cancellations are returned.
func (r *Router) CancelNonCapturedTouches(capturer event.Tag) []gesture.Event {
	var cancelled []lock
	for _, l := range r.locks.locks {
		if l.target != capturer {
			cancelled = append(cancelled, l)
		}
	}
	var evts []gesture.Event
	for _, l := range cancelled {
		e := touch.Event{Kind: touch.Cancel, ID: l.id, Time: l.time, Position: l.pos}
		if r.helper != nil {
			r.helper.DispatchCancelTouchEvent(l.target, e)
		}
		evts = append(evts, r.classifier.Classify(e, l.target, touch.Unconsumed)...)
		r.locks.remove(l.id)
		r.ignored[l.id] = true
		r.log.Debug("contact cancelled by capture", "id", l.id, "target", l.target, "capturer", capturer)
	}
	return evts
}
