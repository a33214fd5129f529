package gesture

import (
	"math"
	"testing"
	"time"
)

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

func (c *testClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func TestTrackerMultiTouch(t *testing.T) {
	clock := &testClock{now: epoch}
	tr := NewTracker(TrackerConfig{Clock: clock.Now})

	line := tr.BeginStroke(Point{X: 0.1, Y: 0.5})
	tap := tr.BeginStroke(Point{X: 0.8, Y: 0.2})

	if n := tr.Active(); n != 2 {
		t.Fatalf("expected 2 active strokes, got %d", n)
	}

	for i := 1; i < 20; i++ {
		clock.Advance(10 * time.Millisecond)
		if !tr.ExtendStroke(line, Point{X: 0.1 + 0.04*float64(i), Y: 0.5}) {
			t.Fatal("extend failed")
		}
		if i < 3 {
			tr.ExtendStroke(tap, Point{X: 0.8, Y: 0.2})
		}
	}

	ev, ok := tr.EndStroke(tap)
	if !ok || ev.Shape != ShapeDot {
		t.Fatalf("expected dot, got %s", ev.Shape)
	}

	ev, ok = tr.EndStroke(line)
	if !ok || ev.Shape != ShapeLine {
		t.Fatalf("expected line, got %s", ev.Shape)
	}

	if len(ev.Points) != 20 {
		t.Errorf("expected 20 points, got %d", len(ev.Points))
	}

	if ev.Duration != 190*time.Millisecond {
		t.Errorf("unexpected duration %s", ev.Duration)
	}

	if ev.Velocity <= 0 {
		t.Error("expected positive velocity")
	}

	if tr.Active() != 0 {
		t.Error("strokes left active")
	}

	pending, ok := tr.Pending(clock.Now())
	if !ok || pending.Shape != ShapeLine {
		t.Fatal("expected the line to be pending")
	}

	clock.Advance(Lifetime)
	if _, ok := tr.Pending(clock.Now()); ok {
		t.Error("pending event should have expired")
	}
}

func TestTrackerUnknownStroke(t *testing.T) {
	tr := NewTracker(TrackerConfig{})

	if tr.ExtendStroke(42, Point{}) {
		t.Error("extend of unknown stroke should fail")
	}

	if _, ok := tr.EndStroke(42); ok {
		t.Error("end of unknown stroke should fail")
	}

	id := tr.BeginStroke(Point{X: 2, Y: -1})
	tr.Cancel(id)

	if _, ok := tr.EndStroke(id); ok {
		t.Error("cancelled stroke should not end")
	}

	if _, ok := tr.Pending(time.Now()); ok {
		t.Error("no event should be pending")
	}
}

func TestTrackerClampsAndCaps(t *testing.T) {
	clock := &testClock{now: epoch}
	tr := NewTracker(TrackerConfig{Clock: clock.Now, MaxPoints: 12})

	id := tr.BeginStroke(Point{X: -0.5, Y: 1.5})
	for i := 0; i < 30; i++ {
		tr.ExtendStroke(id, Point{X: 0.5, Y: 0.5})
	}

	ev, _ := tr.EndStroke(id)
	if len(ev.Points) != 12 {
		t.Errorf("expected 12 points, got %d", len(ev.Points))
	}

	if p := ev.Points[0]; p.X != 0 || p.Y != 1 || !p.Time.Equal(epoch) {
		t.Errorf("unexpected first point %+v", p)
	}

	tr.Reset()
	if _, ok := tr.Pending(clock.Now()); ok {
		t.Error("reset should drop the pending event")
	}
}

func TestPinch(t *testing.T) {
	var p Pinch

	if _, _, ok := p.Move(Point{}, Point{X: 1}); ok {
		t.Error("move before begin should fail")
	}

	p.Begin(Point{X: 0, Y: 0}, Point{X: 1, Y: 0})

	scale, rot, ok := p.Move(Point{X: 0, Y: 0}, Point{X: 0, Y: 2})
	if !ok {
		t.Fatal("move failed")
	}

	if math.Abs(scale-2) > 1e-9 || math.Abs(rot-90) > 1e-9 {
		t.Errorf("got scale %f rotation %f", scale, rot)
	}

	// moves are relative to the previous one
	scale, rot, _ = p.Move(Point{X: 0, Y: 0}, Point{X: 0, Y: 2})
	if scale != 1 || rot != 0 {
		t.Errorf("got scale %f rotation %f", scale, rot)
	}

	p.End()
	if p.Active() {
		t.Error("pinch still active")
	}
}

func TestDrag(t *testing.T) {
	var d Drag

	d.Begin(Point{X: 100, Y: 50}, 20, 10)

	x, y, ok := d.Move(Point{X: 130, Y: 40})
	if !ok || x != 50 || y != 0 {
		t.Errorf("got %f,%f,%v", x, y, ok)
	}

	d.End()
	if _, _, ok := d.Move(Point{}); ok {
		t.Error("move after end should fail")
	}
}
