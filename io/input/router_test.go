// SPDX-License-Identifier: Unlicense OR MIT

package input

import (
	"bytes"
	"log/slog"
	"math/rand"
	"reflect"
	"strings"
	"testing"
	"time"

	"touchflow.org/f32"
	"touchflow.org/gesture"
	"touchflow.org/io/event"
	"touchflow.org/io/touch"
)

func TestTapRoundTrip(t *testing.T) {
	c := new(int)
	r := New()
	r.ProcessTouchEventForGesture(press(1, 10, 10, 0), touch.Unconsumed, c)
	if got := r.TouchLockedTarget(move(1, 0, 0, 0)); got != c {
		t.Fatalf("locked target = %v, want %v", got, c)
	}
	r.ProcessTouchEventForGesture(move(1, 12, 10, 40), touch.Unconsumed, c)
	evts := r.ProcessTouchEventForGesture(release(1, 12, 10, 80), touch.Unconsumed, c)
	assertKinds(t, evts, gesture.Tap)
	if got := r.TargetForGestureEvent(evts[0]); got != c {
		t.Errorf("tap target = %v, want %v", got, c)
	}
	if got := r.TouchLockedTarget(release(1, 0, 0, 0)); got != nil {
		t.Errorf("lock survived release: %v", got)
	}
}

func TestLongPressOrScroll(t *testing.T) {
	c := new(int)
	for _, tc := range []struct {
		label string
		moves []touch.Event
		want  gesture.Kind
	}{
		{"long press", []touch.Event{move(1, 1, 0, 600), move(1, 60, 0, 700)}, gesture.LongPress},
		{"scroll", []touch.Event{move(1, 60, 0, 100), move(1, 61, 0, 700)}, gesture.ScrollBegin},
	} {
		t.Run(tc.label, func(t *testing.T) {
			r := New()
			var all []gesture.Event
			all = append(all, r.ProcessTouchEventForGesture(press(1, 0, 0, 0), touch.Unconsumed, c)...)
			for _, m := range tc.moves {
				all = append(all, r.ProcessTouchEventForGesture(m, touch.Unconsumed, c)...)
			}
			all = append(all, r.ProcessTouchEventForGesture(release(1, 61, 0, 800), touch.Unconsumed, c)...)
			var longPress, scroll, tap int
			for _, e := range all {
				switch e.Kind {
				case gesture.LongPress:
					longPress++
				case gesture.ScrollBegin:
					scroll++
				case gesture.Tap:
					tap++
				}
			}
			if tap != 0 || longPress+scroll != 1 {
				t.Fatalf("got %d taps, %d long presses, %d scrolls", tap, longPress, scroll)
			}
			if tc.want == gesture.LongPress && longPress != 1 || tc.want == gesture.ScrollBegin && scroll != 1 {
				t.Errorf("expected %v", tc.want)
			}
		})
	}
}

func TestUnlockedContacts(t *testing.T) {
	r := New()
	evts := r.ProcessTouchEventForGesture(press(1, 0, 0, 0), touch.Unconsumed, nil)
	assertKinds(t, evts, gesture.TapDown)
	if got := r.TouchLockedTarget(press(1, 0, 0, 0)); got != nil {
		t.Errorf("unlocked press created lock for %v", got)
	}
	evts = r.ProcessTouchEventForGesture(release(1, 0, 0, 20), touch.Unconsumed, nil)
	assertKinds(t, evts, gesture.Tap)
	if got := r.TargetForGestureEvent(evts[0]); got != nil {
		t.Errorf("unlocked tap resolved to %v", got)
	}
}

func TestUnknownContact(t *testing.T) {
	r := New()
	c := new(int)
	for _, e := range []touch.Event{move(4, 0, 0, 0), release(4, 0, 0, 10), cancel(4, 20)} {
		if evts := r.ProcessTouchEventForGesture(e, touch.Unconsumed, c); len(evts) != 0 {
			t.Errorf("%v of unknown contact produced %v", e.Kind, evts)
		}
	}
	if got := r.TouchLockedTarget(move(4, 0, 0, 0)); got != nil {
		t.Errorf("unknown contact locked to %v", got)
	}
}

func TestSingleLockPerContact(t *testing.T) {
	a, b := new(int), new(int)
	consumers := []event.Tag{nil, a, b}
	kinds := []touch.Kind{touch.Press, touch.Move, touch.Release, touch.Cancel}
	rnd := rand.New(rand.NewSource(1))
	r := New()
	model := make(map[touch.ID]event.Tag)
	for i := 0; i < 2000; i++ {
		id := touch.ID(rnd.Intn(4))
		e := touch.Event{
			Kind:     kinds[rnd.Intn(len(kinds))],
			ID:       id,
			Time:     time.Duration(i) * 10 * time.Millisecond,
			Position: f32.Pt(float32(rnd.Intn(200)), float32(rnd.Intn(200))),
		}
		c := consumers[rnd.Intn(len(consumers))]
		r.ProcessTouchEventForGesture(e, touch.Unconsumed, c)
		switch e.Kind {
		case touch.Press:
			if _, ok := model[id]; !ok && c != nil {
				model[id] = c
			}
		case touch.Release, touch.Cancel:
			delete(model, id)
		}
		seen := make(map[touch.ID]bool)
		for _, l := range r.locks.locks {
			if seen[l.id] {
				t.Fatalf("step %d: contact %d locked twice", i, l.id)
			}
			seen[l.id] = true
		}
		for id := touch.ID(0); id < 4; id++ {
			if got, want := r.TouchLockedTarget(touch.Event{ID: id}), model[id]; got != want {
				t.Fatalf("step %d: contact %d locked to %v, want %v", i, id, got, want)
			}
		}
	}
}

func TestTargetForLocation(t *testing.T) {
	near, mid, far := new(int), new(int), new(int)
	cfg := gesture.DefaultConfig()
	cfg.MaxSeparationForGestureTouches = 15
	r := New(WithConfig(cfg))
	p := f32.Pt(100, 100)
	r.ProcessTouchEventForGesture(press(1, 120, 100, 0), touch.Unconsumed, far)
	r.ProcessTouchEventForGesture(press(2, 100, 110, 0), touch.Unconsumed, mid)
	r.ProcessTouchEventForGesture(press(3, 95, 100, 0), touch.Unconsumed, near)
	if got := r.TargetForLocation(p); got != near {
		t.Errorf("target = %v, want the lock at distance 5", got)
	}
	if got := r.TargetForLocation(f32.Pt(300, 300)); got != nil {
		t.Errorf("target far from every lock = %v, want nil", got)
	}
	// The last known position counts, not the press location.
	r.ProcessTouchEventForGesture(move(3, 300, 300, 10), touch.Unconsumed, near)
	if got := r.TargetForLocation(p); got != mid {
		t.Errorf("target after move = %v, want the lock at distance 10", got)
	}
}

func TestTargetForLocationTie(t *testing.T) {
	first, second := new(int), new(int)
	r := New()
	r.ProcessTouchEventForGesture(press(1, 10, 0, 0), touch.Unconsumed, first)
	r.ProcessTouchEventForGesture(press(2, -10, 0, 0), touch.Unconsumed, second)
	if got := r.TargetForLocation(f32.Pt(0, 0)); got != first {
		t.Errorf("tie resolved to %v, want the oldest lock", got)
	}
}

func TestCleanupConsumer(t *testing.T) {
	a, b := new(int), new(int)
	r := New()
	r.ProcessTouchEventForGesture(press(1, 0, 0, 0), touch.Unconsumed, a)
	r.ProcessTouchEventForGesture(press(2, 50, 0, 0), touch.Unconsumed, b)
	r.QueueTouchEventForGesture(a, move(1, 5, 0, 10))
	r.CleanupConsumer(a)
	if got := r.TouchLockedTarget(touch.Event{ID: 1}); got != nil {
		t.Errorf("lock of removed consumer survived: %v", got)
	}
	if n := r.QueueLen(a); n != 0 {
		t.Errorf("queue of removed consumer has %d events", n)
	}
	if evts := r.ProcessTouchEventForGesture(release(1, 0, 0, 20), touch.Unconsumed, a); len(evts) != 0 {
		t.Errorf("release of removed consumer's contact produced %v", evts)
	}
	if got := r.TouchLockedTarget(touch.Event{ID: 2}); got != b {
		t.Errorf("other consumer lost its lock")
	}
}

func TestTick(t *testing.T) {
	c := new(int)
	r := New()
	r.ProcessTouchEventForGesture(press(1, 0, 0, 0), touch.Unconsumed, c)
	evts := r.Tick(time.Second)
	assertKinds(t, evts, gesture.LongPress)
	if got := r.TargetForGestureEvent(evts[0]); got != c {
		t.Errorf("long press target = %v, want %v", got, c)
	}
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	r := New(WithLogger(l))
	r.ProcessTouchEventForGesture(press(1, 0, 0, 0), touch.Unconsumed, new(int))
	if !strings.Contains(buf.String(), "contact locked") {
		t.Errorf("missing lock record in %q", buf.String())
	}
}

func press(id touch.ID, x, y float32, ms time.Duration) touch.Event {
	return touch.Event{Kind: touch.Press, ID: id, Position: f32.Pt(x, y), Time: ms * time.Millisecond}
}

func move(id touch.ID, x, y float32, ms time.Duration) touch.Event {
	return touch.Event{Kind: touch.Move, ID: id, Position: f32.Pt(x, y), Time: ms * time.Millisecond}
}

func release(id touch.ID, x, y float32, ms time.Duration) touch.Event {
	return touch.Event{Kind: touch.Release, ID: id, Position: f32.Pt(x, y), Time: ms * time.Millisecond}
}

func cancel(id touch.ID, ms time.Duration) touch.Event {
	return touch.Event{Kind: touch.Cancel, ID: id, Time: ms * time.Millisecond}
}

func assertKinds(t *testing.T, evts []gesture.Event, want ...gesture.Kind) {
	t.Helper()
	var got []gesture.Kind
	for _, e := range evts {
		got = append(got, e.Kind)
	}
	if len(want) == 0 {
		want = nil
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got gestures %v, want %v", got, want)
	}
}
