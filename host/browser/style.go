// Package browser runs the compositor inside a web page compiled with
// GopherJS. Layer elements are styled from RenderParams and pointer input
// feeds the gesture tracker.
package browser

import (
	"time"

	"github.com/noriah/catvj/effect"
	"github.com/noriah/catvj/gesture"
	"github.com/noriah/catvj/layer"
)

// Style returns the css properties for one resolved layer.
func Style(rp layer.RenderParams) map[string]string {
	return map[string]string{
		"filter":         rp.Filter,
		"transform":      rp.Transform,
		"opacity":        effect.FormatNumber(rp.Opacity),
		"mix-blend-mode": string(rp.Blend),
	}
}

// Rect is an element's client rectangle.
type Rect struct {
	Left, Top     float64
	Width, Height float64
}

// Normalize maps client coordinates into [0, 1] over r.
func Normalize(clientX, clientY float64, r Rect, t time.Time) gesture.Point {
	p := gesture.Point{Time: t, X: 0.5, Y: 0.5}

	if r.Width > 0 {
		p.X = (clientX - r.Left) / r.Width
	}

	if r.Height > 0 {
		p.Y = (clientY - r.Top) / r.Height
	}

	return p
}

// Pointers routes pointer events to strokes on a tracker, one stroke per
// pointer id.
type Pointers struct {
	tracker *gesture.Tracker
	strokes map[int]gesture.StrokeID
}

func NewPointers(tracker *gesture.Tracker) *Pointers {
	return &Pointers{
		tracker: tracker,
		strokes: make(map[int]gesture.StrokeID),
	}
}

// Down starts a stroke for pointer id, ending any stroke it left open.
func (ps *Pointers) Down(id int, p gesture.Point) {
	if old, ok := ps.strokes[id]; ok {
		ps.tracker.Cancel(old)
	}
	ps.strokes[id] = ps.tracker.BeginStroke(p)
}

// Move extends the stroke of pointer id. Moves of pointers that are not
// down are ignored.
func (ps *Pointers) Move(id int, p gesture.Point) bool {
	stroke, ok := ps.strokes[id]
	if !ok {
		return false
	}
	return ps.tracker.ExtendStroke(stroke, p)
}

// Up ends the stroke of pointer id and returns its event.
func (ps *Pointers) Up(id int) (gesture.Event, bool) {
	stroke, ok := ps.strokes[id]
	if !ok {
		return gesture.Event{}, false
	}

	delete(ps.strokes, id)
	return ps.tracker.EndStroke(stroke)
}

// Cancel drops the stroke of pointer id.
func (ps *Pointers) Cancel(id int) {
	if stroke, ok := ps.strokes[id]; ok {
		ps.tracker.Cancel(stroke)
		delete(ps.strokes, id)
	}
}

// Len returns how many pointers are down.
func (ps *Pointers) Len() int {
	return len(ps.strokes)
}

// hsla returns a css color with full saturation.
func hsla(hue, alpha float64) string {
	switch {
	case alpha < 0:
		alpha = 0
	case alpha > 1:
		alpha = 1
	}

	return "hsla(" + effect.FormatNumber(hue) + ", 100%, 60%, " + effect.FormatNumber(alpha) + ")"
}
