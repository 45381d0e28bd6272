// SPDX-License-Identifier: Unlicense OR MIT

// Package trace reads recorded touch sessions and replays them
// through a Router.
//
// A trace is a YAML document listing steps in order:
//
//	events:
//	  - {kind: press, id: 1, x: 10, y: 10, t: 0ms, target: list}
//	  - {kind: release, id: 1, x: 11, y: 10, t: 80ms, target: list, expect: [Tap]}
//	  - {op: queue, kind: press, id: 2, x: 0, y: 0, t: 1s, target: map}
//	  - {op: advance, target: map, processed: false}
//	  - {op: tick, t: 2s}
//	  - {op: capture, target: list}
//
// Targets are names; an empty name is no consumer.
package trace

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"touchflow.org/f32"
	"touchflow.org/gesture"
	"touchflow.org/io/event"
	"touchflow.org/io/input"
	"touchflow.org/io/touch"
)

// ErrMismatch is wrapped by the errors of Run for steps whose
// gestures differ from their expectation.
var ErrMismatch = errors.New("trace: unexpected gestures")

// Op is the operation of a Step.
type Op uint8

const (
	// Touch offers a touch event with ProcessTouchEventForGesture.
	Touch Op = iota
	// Queue defers a touch event with QueueTouchEventForGesture.
	Queue
	Advance
	Flush
	Capture
	Tick
	Cleanup
)

var opNames = map[string]Op{
	"":        Touch,
	"touch":   Touch,
	"queue":   Queue,
	"advance": Advance,
	"flush":   Flush,
	"capture": Capture,
	"tick":    Tick,
	"cleanup": Cleanup,
}

// Step is one parsed trace entry.
type Step struct {
	Op Op
	// Event is the touch event of Touch and Queue steps.
	Event  touch.Event
	Status touch.Status
	Target string
	// Processed is the acknowledgement of an Advance step.
	Processed bool
	// Time is the clock of a Tick step.
	Time time.Duration
	// Expect lists the gesture kinds the step must produce, if
	// not nil.
	Expect []string
}

type rawTrace struct {
	Events []rawStep `yaml:"events"`
}

type rawStep struct {
	Op        string        `yaml:"op"`
	Kind      string        `yaml:"kind"`
	ID        touch.ID      `yaml:"id"`
	X         float32       `yaml:"x"`
	Y         float32       `yaml:"y"`
	T         time.Duration `yaml:"t"`
	Target    string        `yaml:"target"`
	Status    string        `yaml:"status"`
	Processed *bool         `yaml:"processed"`
	Expect    []string      `yaml:"expect"`
}

// Parse reads a YAML trace.
func Parse(r io.Reader) ([]Step, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var raw rawTrace
	if err := dec.Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("trace: %w", err)
	}
	steps := make([]Step, len(raw.Events))
	for i, rs := range raw.Events {
		s, err := rs.step()
		if err != nil {
			return nil, fmt.Errorf("trace: event %d: %w", i, err)
		}
		steps[i] = s
	}
	return steps, nil
}

func (rs rawStep) step() (Step, error) {
	op, ok := opNames[strings.ToLower(rs.Op)]
	if !ok {
		return Step{}, fmt.Errorf("unknown op %q", rs.Op)
	}
	s := Step{Op: op, Target: rs.Target, Processed: true, Expect: rs.Expect}
	switch op {
	case Touch, Queue:
		k, ok := touch.ParseKind(rs.Kind)
		if !ok {
			return Step{}, fmt.Errorf("unknown touch kind %q", rs.Kind)
		}
		s.Event = touch.Event{Kind: k, ID: rs.ID, Time: rs.T, Position: f32.Pt(rs.X, rs.Y)}
		switch strings.ToLower(rs.Status) {
		case "", "unconsumed":
		case "consumed":
			s.Status = touch.Consumed
		default:
			return Step{}, fmt.Errorf("unknown status %q", rs.Status)
		}
	case Advance:
		if rs.Processed != nil {
			s.Processed = *rs.Processed
		}
	case Tick:
		s.Time = rs.T
	}
	return s, nil
}

// Tag returns the consumer named name.
func Tag(name string) event.Tag {
	if name == "" {
		return nil
	}
	return name
}

// Name returns the name of a consumer returned by Tag.
func Name(t event.Tag) string {
	if s, ok := t.(string); ok {
		return s
	}
	return ""
}

// Run replays steps through r, calling fn with the gestures of each
// step if fn is not nil. Steps with expectations are checked; the
// returned error joins every mismatch.
func Run(r *input.Router, steps []Step, fn func(i int, s Step, evts []gesture.Event)) error {
	var errs []error
	for i, s := range steps {
		evts := apply(r, s)
		if fn != nil {
			fn(i, s, evts)
		}
		if s.Expect == nil {
			continue
		}
		if got := kinds(evts); !equal(got, s.Expect) {
			errs = append(errs, fmt.Errorf("%w: event %d: got %v, want %v", ErrMismatch, i, got, s.Expect))
		}
	}
	return errors.Join(errs...)
}

func apply(r *input.Router, s Step) []gesture.Event {
	target := Tag(s.Target)
	switch s.Op {
	case Touch:
		return r.ProcessTouchEventForGesture(s.Event, s.Status, target)
	case Queue:
		r.QueueTouchEventForGesture(target, s.Event)
	case Advance:
		return r.AdvanceTouchQueue(target, s.Processed)
	case Flush:
		r.FlushTouchQueue(target)
	case Capture:
		return r.CancelNonCapturedTouches(target)
	case Tick:
		return r.Tick(s.Time)
	case Cleanup:
		r.CleanupConsumer(target)
	}
	return nil
}

func kinds(evts []gesture.Event) []string {
	names := make([]string, len(evts))
	for i, e := range evts {
		names[i] = e.Kind.String()
	}
	return names
}

func equal(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if !strings.EqualFold(got[i], want[i]) {
			return false
		}
	}
	return true
}
