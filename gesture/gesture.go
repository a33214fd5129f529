// Package gesture turns pointer strokes into classified gesture events.
package gesture

import (
	"strings"
	"time"
)

const (
	// MinPoints is the number of points a stroke needs to be more than a dot.
	MinPoints = 10

	// Lifetime is how long an event stays pending after it is created.
	Lifetime = time.Second

	// FullVelocity is the stroke speed, in surface widths per millisecond,
	// that counts as full speed.
	FullVelocity = 0.004
)

// Shape is the classified form of a stroke.
type Shape int

const (
	ShapeDot Shape = iota
	ShapeLine
	ShapeZigzag
	ShapeCircle
	ShapeSpiral
	ShapeCurve
)

var shapeNames = [...]string{
	ShapeDot:    "dot",
	ShapeLine:   "line",
	ShapeZigzag: "zigzag",
	ShapeCircle: "circle",
	ShapeSpiral: "spiral",
	ShapeCurve:  "curve",
}

func (s Shape) String() string {
	if s < 0 || int(s) >= len(shapeNames) {
		return "unknown"
	}
	return shapeNames[s]
}

// ParseShape returns the shape with the given name.
func ParseShape(name string) (Shape, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for idx, n := range shapeNames {
		if n == name {
			return Shape(idx), true
		}
	}
	return ShapeDot, false
}

// Point is a sample of a stroke. X and Y are normalized to the surface.
type Point struct {
	X, Y float64
	Time time.Time
}

// Event is a completed, classified stroke.
type Event struct {
	Shape    Shape
	Velocity float64 // surface widths per millisecond
	Points   []Point
	Duration time.Duration
	Created  time.Time
}

// Centroid returns the mean stroke position, or the center of the surface
// for an event without points.
func (e Event) Centroid() (x, y float64) {
	if len(e.Points) == 0 {
		return 0.5, 0.5
	}

	for _, p := range e.Points {
		x += p.X
		y += p.Y
	}

	n := float64(len(e.Points))
	return x / n, y / n
}

// NormalizedVelocity maps Velocity onto [0, 1].
func (e Event) NormalizedVelocity() float64 {
	switch {
	case !(e.Velocity > 0):
		return 0
	case e.Velocity >= FullVelocity:
		return 1
	}
	return e.Velocity / FullVelocity
}

// Expired reports whether the event is older than Lifetime at now.
func (e Event) Expired(now time.Time) bool {
	return now.Sub(e.Created) >= Lifetime
}
