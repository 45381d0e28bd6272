// SPDX-License-Identifier: Unlicense OR MIT

package input

import (
	"io"
	"log/slog"
	"time"

	"touchflow.org/f32"
	"touchflow.org/gesture"
	"touchflow.org/io/event"
	"touchflow.org/io/touch"
	"touchflow.org/unit"
)

// Recognizer is the interface between the platform dispatch loop,
// the widgets of a user interface and the gesture recognizer. It is
// implemented by [Router].
type Recognizer interface {
	// ProcessTouchEventForGesture offers a touch event that may
	// contribute to the current gesture and returns the gestures it
	// completes. The caller owns the returned slice.
	ProcessTouchEventForGesture(e touch.Event, status touch.Status, consumer event.Tag) []gesture.Event
	// QueueTouchEventForGesture defers e until consumer acknowledges
	// it with AdvanceTouchQueue.
	QueueTouchEventForGesture(consumer event.Tag, e touch.Event)
	// AdvanceTouchQueue acknowledges the oldest queued event of
	// consumer and returns the gestures it completes.
	AdvanceTouchQueue(consumer event.Tag, processed bool) []gesture.Event
	// FlushTouchQueue discards the queued events of consumer.
	FlushTouchQueue(consumer event.Tag)
	// TouchLockedTarget returns the consumer the contact of e is
	// locked to, or nil.
	TouchLockedTarget(e touch.Event) event.Tag
	// TargetForGestureEvent returns the consumer that should handle
	// g, or nil.
	TargetForGestureEvent(g gesture.Event) event.Tag
	// TargetForLocation returns the consumer of the active contact
	// nearest to p, if one is within the configured separation.
	TargetForLocation(p f32.Point) event.Tag
	// CancelNonCapturedTouches cancels the contacts of every consumer
	// other than capturer. They are ignored until pressed again.
	CancelNonCapturedTouches(capturer event.Tag) []gesture.Event
}

// Helper receives the touch cancellations synthesized by
// [Router.CancelNonCapturedTouches], so the platform can deliver
// them to the consumers losing their contacts.
type Helper interface {
	DispatchCancelTouchEvent(target event.Tag, e touch.Event)
}

// Router tracks touch locks, touch queues and gesture state for
// the consumers of one display.
type Router struct {
	cfg    gesture.Config
	metric unit.Metric
	log    *slog.Logger
	helper Helper

	classifier *gesture.Classifier
	locks      lockTable
	queues     touchQueues
	// ignored tracks the contacts cancelled by a capture. Their
	// events are dropped until the next press.
	ignored map[touch.ID]bool
}

// Option configures a Router.
type Option func(r *Router)

var _ Recognizer = (*Router)(nil)

// WithConfig sets the gesture thresholds. The default is
// gesture.DefaultConfig.
func WithConfig(cfg gesture.Config) Option {
	return func(r *Router) {
		r.cfg = cfg
	}
}

// WithMetric sets the pixel density used to convert thresholds.
func WithMetric(m unit.Metric) Option {
	return func(r *Router) {
		r.metric = m
	}
}

// WithLogger sets the logger for debug records. The default
// discards them.
func WithLogger(l *slog.Logger) Option {
	return func(r *Router) {
		r.log = l
	}
}

// WithHelper sets the receiver of synthesized touch cancellations.
func WithHelper(h Helper) Option {
	return func(r *Router) {
		r.helper = h
	}
}

// New returns a Router configured by opts.
func New(opts ...Option) *Router {
	r := &Router{
		cfg:     gesture.DefaultConfig(),
		queues:  make(touchQueues),
		ignored: make(map[touch.ID]bool),
	}
	for _, o := range opts {
		o(r)
	}
	if r.log == nil {
		r.log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	r.classifier = gesture.NewClassifier(r.cfg, r.metric)
	return r
}

// ProcessTouchEventForGesture locks a pressed contact to consumer,
// classifies e and returns the resulting gestures. The lock of a
// contact is removed once its Release or Cancel is classified.
// Events of unknown contacts are classified as unlocked; events of
// contacts cancelled by a capture are dropped.
func (r *Router) ProcessTouchEventForGesture(e touch.Event, status touch.Status, consumer event.Tag) []gesture.Event {
	if r.ignored[e.ID] {
		if e.Kind != touch.Press {
			r.log.Debug("dropping event of cancelled contact", "id", e.ID, "kind", e.Kind)
			return nil
		}
		delete(r.ignored, e.ID)
	}
	target, isNew := r.locks.onTouch(e, consumer)
	if isNew {
		r.log.Debug("contact locked", "id", e.ID, "target", target)
	}
	evts := r.classifier.Classify(e, target, status)
	if e.Kind.Terminal() && r.locks.remove(e.ID) {
		r.log.Debug("contact unlocked", "id", e.ID, "kind", e.Kind)
	}
	return evts
}

// Tick evaluates time based gestures, such as a long press of a
// stationary contact, at the time now. The platform calls it from
// its own timer; the Router never schedules work.
func (r *Router) Tick(now time.Duration) []gesture.Event {
	return r.classifier.Tick(now)
}

// CleanupConsumer forgets everything the Router tracks for a
// consumer that is going away: queued events, locks and gesture
// state. No gestures are reported.
func (r *Router) CleanupConsumer(consumer event.Tag) {
	n := r.queues.flush(consumer)
	r.locks.removeTarget(consumer)
	r.classifier.Forget(consumer)
	r.log.Debug("consumer removed", "target", consumer, "dropped", n)
}
