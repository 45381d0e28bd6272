// SPDX-License-Identifier: Unlicense OR MIT

package input

import (
	"time"

	"golang.org/x/exp/slices"

	"touchflow.org/f32"
	"touchflow.org/io/event"
	"touchflow.org/io/touch"
)

// lockTable binds contacts to the consumer their press was
// routed to.
type lockTable struct {
	// locks is in creation order.
	locks []lock
}

type lock struct {
	id     touch.ID
	target event.Tag
	// pos and time track the last event of the contact.
	pos  f32.Point
	time time.Duration
}

// onTouch updates the table for e and returns the consumer the
// contact is locked to. A lock is created for a Press routed to
// a non-nil target if the contact has none; isNew reports whether
// that happened.
func (t *lockTable) onTouch(e touch.Event, target event.Tag) (locked event.Tag, isNew bool) {
	i := t.index(e.ID)
	if i == -1 {
		if e.Kind != touch.Press || target == nil {
			return nil, false
		}
		t.locks = append(t.locks, lock{id: e.ID, target: target, pos: e.Position, time: e.Time})
		return target, true
	}
	l := &t.locks[i]
	if e.Kind != touch.Cancel {
		l.pos = e.Position
	}
	l.time = e.Time
	return l.target, false
}

func (t *lockTable) target(id touch.ID) event.Tag {
	if i := t.index(id); i != -1 {
		return t.locks[i].target
	}
	return nil
}

// remove drops the lock of id and reports whether there was one.
func (t *lockTable) remove(id touch.ID) bool {
	i := t.index(id)
	if i == -1 {
		return false
	}
	t.locks = slices.Delete(t.locks, i, i+1)
	return true
}

// removeTarget drops every lock of target.
func (t *lockTable) removeTarget(target event.Tag) {
	t.locks = slices.DeleteFunc(t.locks, func(l lock) bool {
		return l.target == target
	})
}

func (t *lockTable) index(id touch.ID) int {
	return slices.IndexFunc(t.locks, func(l lock) bool {
		return l.id == id
	})
}
