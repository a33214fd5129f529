package gesture

import (
	"sync"
	"time"
)

// StrokeID identifies one pointer stroke.
type StrokeID uint64

type TrackerConfig struct {
	Clock     func() time.Time // time source, time.Now if nil
	MaxPoints int              // points kept per stroke, 0 means 4096
}

// Tracker follows any number of concurrent strokes and keeps the most
// recently completed one as the pending event.
type Tracker struct {
	mu sync.Mutex

	clock     func() time.Time
	maxPoints int

	strokes map[StrokeID]*stroke
	nextID  StrokeID

	pending    Event
	hasPending bool
}

type stroke struct {
	points  []Point
	started time.Time
}

func NewTracker(cfg TrackerConfig) *Tracker {
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}

	if cfg.MaxPoints <= 0 {
		cfg.MaxPoints = 4096
	}

	return &Tracker{
		clock:     cfg.Clock,
		maxPoints: cfg.MaxPoints,
		strokes:   make(map[StrokeID]*stroke),
	}
}

// BeginStroke starts a new stroke at p. A zero p.Time is stamped with the
// tracker clock.
func (t *Tracker) BeginStroke(p Point) StrokeID {
	t.mu.Lock()
	defer t.mu.Unlock()

	p = t.normalize(p)

	t.nextID++
	t.strokes[t.nextID] = &stroke{
		points:  []Point{p},
		started: p.Time,
	}

	return t.nextID
}

// ExtendStroke adds p to a stroke. It returns false for unknown strokes.
func (t *Tracker) ExtendStroke(id StrokeID, p Point) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.strokes[id]
	if !ok {
		return false
	}

	if len(s.points) < t.maxPoints {
		s.points = append(s.points, t.normalize(p))
	}

	return true
}

// EndStroke finishes a stroke and classifies it. The event also becomes the
// pending event until it expires.
func (t *Tracker) EndStroke(id StrokeID) (Event, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.strokes[id]
	if !ok {
		return Event{}, false
	}

	delete(t.strokes, id)

	now := t.clock()

	ev := Event{
		Shape:    Classify(s.points),
		Velocity: Velocity(s.points),
		Points:   s.points,
		Duration: now.Sub(s.started),
		Created:  now,
	}

	if ev.Duration < 0 {
		ev.Duration = 0
	}

	t.pending = ev
	t.hasPending = true

	return ev, true
}

// Cancel drops a stroke without producing an event.
func (t *Tracker) Cancel(id StrokeID) {
	t.mu.Lock()
	delete(t.strokes, id)
	t.mu.Unlock()
}

// Pending returns the latest event if it has not expired at now.
func (t *Tracker) Pending(now time.Time) (Event, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.hasPending {
		return Event{}, false
	}

	if t.pending.Expired(now) {
		t.pending = Event{}
		t.hasPending = false
		return Event{}, false
	}

	return t.pending, true
}

// Active returns the number of strokes in progress.
func (t *Tracker) Active() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.strokes)
}

// Reset drops every stroke and the pending event.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.strokes = make(map[StrokeID]*stroke)
	t.pending = Event{}
	t.hasPending = false
}

func (t *Tracker) normalize(p Point) Point {
	if p.Time.IsZero() {
		p.Time = t.clock()
	}

	p.X = clampUnit(p.X)
	p.Y = clampUnit(p.Y)

	return p
}

func clampUnit(v float64) float64 {
	switch {
	case !(v > 0):
		return 0
	case v > 1:
		return 1
	}
	return v
}
