package gesture

import "math"

// Pinch follows two pointers and reports how much they spread and turn
// between moves.
type Pinch struct {
	distance float64
	angle    float64 // degrees
	active   bool
}

// Begin starts tracking two pointers.
func (p *Pinch) Begin(a, b Point) {
	p.distance = math.Hypot(a.X-b.X, a.Y-b.Y)
	p.angle = pointerAngle(a, b)
	p.active = p.distance > 0
}

// Move returns the scale factor and rotation in degrees since the last call.
func (p *Pinch) Move(a, b Point) (scale, rotation float64, ok bool) {
	if !p.active {
		return 1, 0, false
	}

	distance := math.Hypot(a.X-b.X, a.Y-b.Y)
	angle := pointerAngle(a, b)

	if distance <= 0 {
		return 1, 0, false
	}

	scale = distance / p.distance
	rotation = angle - p.angle

	p.distance = distance
	p.angle = angle

	return scale, rotation, true
}

// End stops tracking.
func (p *Pinch) End() {
	*p = Pinch{}
}

// Active reports whether two pointers are being tracked.
func (p *Pinch) Active() bool {
	return p.active
}

func pointerAngle(a, b Point) float64 {
	return math.Atan2(b.Y-a.Y, b.X-a.X) * 180 / math.Pi
}

// Drag moves an object with a single pointer, keeping the grab offset.
type Drag struct {
	offX, offY float64
	active     bool
}

// Begin grabs an object positioned at (x, y) with pointer p.
func (d *Drag) Begin(p Point, x, y float64) {
	d.offX = p.X - x
	d.offY = p.Y - y
	d.active = true
}

// Move returns the new object position for pointer p.
func (d *Drag) Move(p Point) (x, y float64, ok bool) {
	if !d.active {
		return 0, 0, false
	}
	return p.X - d.offX, p.Y - d.offY, true
}

// End releases the object.
func (d *Drag) End() {
	*d = Drag{}
}

// Active reports whether an object is grabbed.
func (d *Drag) Active() bool {
	return d.active
}
