// SPDX-License-Identifier: Unlicense OR MIT

package input

import (
	"touchflow.org/gesture"
	"touchflow.org/io/event"
	"touchflow.org/io/touch"
)

// touchQueue is the FIFO of touch events a consumer has yet to
// acknowledge. The event at next is in flight.
type touchQueue struct {
	events []touch.Event
	next   int
}

type touchQueues map[event.Tag]*touchQueue

// QueueTouchEventForGesture appends e to the queue of consumer. It
// is not classified until AdvanceTouchQueue releases it.
func (r *Router) QueueTouchEventForGesture(consumer event.Tag, e touch.Event) {
	r.queues.push(consumer, e)
}

// AdvanceTouchQueue releases the oldest queued event of consumer. If
// processed is set the event is classified as by
// ProcessTouchEventForGesture and its gestures returned. Otherwise
// the event is rejected: no gestures are reported, but a rejected
// Release or Cancel still ends its contact. Advancing an empty queue
// does nothing.
func (r *Router) AdvanceTouchQueue(consumer event.Tag, processed bool) []gesture.Event {
	e, ok := r.queues.pop(consumer)
	if !ok {
		return nil
	}
	if processed {
		return r.ProcessTouchEventForGesture(e, touch.Unconsumed, consumer)
	}
	r.log.Debug("queued event rejected", "id", e.ID, "kind", e.Kind, "target", consumer)
	if e.Kind.Terminal() {
		r.locks.remove(e.ID)
		r.classifier.Discard(e.ID)
	}
	return nil
}

// FlushTouchQueue discards the queued events of consumer without
// classifying them.
func (r *Router) FlushTouchQueue(consumer event.Tag) {
	if n := r.queues.flush(consumer); n > 0 {
		r.log.Debug("touch queue flushed", "target", consumer, "dropped", n)
	}
}

// QueueLen returns the number of events queued for consumer.
func (r *Router) QueueLen(consumer event.Tag) int {
	return r.queues.len(consumer)
}

func (qs touchQueues) push(target event.Tag, e touch.Event) {
	q := qs[target]
	if q == nil {
		q = new(touchQueue)
		qs[target] = q
	}
	q.events = append(q.events, e)
}

// pop removes and returns the in-flight event of target.
func (qs touchQueues) pop(target event.Tag) (touch.Event, bool) {
	q := qs[target]
	if q == nil || q.next == len(q.events) {
		return touch.Event{}, false
	}
	e := q.events[q.next]
	q.next++
	if q.next == len(q.events) {
		delete(qs, target)
	}
	return e, true
}

func (qs touchQueues) len(target event.Tag) int {
	if q := qs[target]; q != nil {
		return len(q.events) - q.next
	}
	return 0
}

func (qs touchQueues) flush(target event.Tag) int {
	n := qs.len(target)
	delete(qs, target)
	return n
}
