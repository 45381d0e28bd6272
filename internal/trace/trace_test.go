// SPDX-License-Identifier: Unlicense OR MIT

package trace

import (
	"errors"
	"strings"
	"testing"
	"time"

	"touchflow.org/gesture"
	"touchflow.org/io/input"
	"touchflow.org/io/touch"
)

const session = `
events:
  - {kind: press, id: 1, x: 10, y: 10, t: 0ms, target: list, expect: [TapDown]}
  - {kind: release, id: 1, x: 11, y: 10, t: 80ms, target: list, expect: [Tap]}
  - {op: queue, kind: down, id: 2, x: 200, y: 0, t: 1s, target: map}
  - {op: advance, target: map, expect: [TapDown]}
  - {kind: press, id: 3, x: 0, y: 0, t: 1s, target: list, expect: [TapDown]}
  - {kind: move, id: 3, x: 0, y: 50, t: 1050ms, target: list, expect: [ScrollBegin, ScrollUpdate]}
  - {op: capture, target: map, expect: [Cancel]}
  - {op: tick, t: 3s, expect: [LongPress]}
  - {op: cleanup, target: map}
`

func TestParse(t *testing.T) {
	steps, err := Parse(strings.NewReader(session))
	if err != nil {
		t.Fatal(err)
	}
	if len(steps) != 9 {
		t.Fatalf("got %d steps", len(steps))
	}
	if got := steps[2]; got.Op != Queue || got.Event.Kind != touch.Press || got.Event.Time != time.Second || got.Target != "map" {
		t.Errorf("queue step = %+v", got)
	}
	if got := steps[3]; got.Op != Advance || !got.Processed {
		t.Errorf("advance step = %+v", got)
	}
	if got := steps[7]; got.Op != Tick || got.Time != 3*time.Second {
		t.Errorf("tick step = %+v", got)
	}
}

func TestRun(t *testing.T) {
	steps, err := Parse(strings.NewReader(session))
	if err != nil {
		t.Fatal(err)
	}
	r := input.New()
	var targets []string
	err = Run(r, steps, func(i int, s Step, evts []gesture.Event) {
		for _, e := range evts {
			targets = append(targets, Name(r.TargetForGestureEvent(e)))
		}
	})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"list", "list", "map", "list", "list", "list", "list", "map"}
	if strings.Join(targets, ",") != strings.Join(want, ",") {
		t.Errorf("targets = %v, want %v", targets, want)
	}
}

func TestRunMismatch(t *testing.T) {
	steps, err := Parse(strings.NewReader(`
events:
  - {kind: press, id: 1, target: a, expect: [Tap]}
  - {kind: release, id: 1, t: 10ms, target: a, expect: [tap]}
`))
	if err != nil {
		t.Fatal(err)
	}
	err = Run(input.New(), steps, nil)
	if !errors.Is(err, ErrMismatch) {
		t.Fatalf("got %v, want a mismatch", err)
	}
	if !strings.Contains(err.Error(), "event 0") || strings.Contains(err.Error(), "event 1") {
		t.Errorf("error %q should only report event 0", err)
	}
}

func TestParseErrors(t *testing.T) {
	for _, tc := range []struct {
		name, doc string
	}{
		{"op", "events: [{op: jump}]"},
		{"kind", "events: [{kind: hover}]"},
		{"status", "events: [{kind: press, status: maybe}]"},
		{"field", "events: [{kind: press, pressure: 1}]"},
		{"duration", "events: [{kind: press, t: later}]"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Parse(strings.NewReader(tc.doc)); err == nil {
				t.Error("expected error")
			}
		})
	}
}
