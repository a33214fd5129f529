package layer

import "math"

const (
	MinScale = 0.1
	MaxScale = 5
	MaxBlur  = 20
)

// WheelMod picks what a wheel step changes.
type WheelMod int

const (
	WheelScale WheelMod = iota
	WheelRotate
	WheelBlur
)

// ApplyPinch scales and turns a layer by a two finger gesture.
func ApplyPinch(l *Layer, scaleFactor, rotationDelta float64) {
	if scaleFactor > 0 && !math.IsInf(scaleFactor, 0) {
		l.Scale = clampScale(l.Scale * scaleFactor)
	}
	l.Rotation = wrapDegrees(l.Rotation + finite(rotationDelta, 0))
}

// ApplyWheel applies one wheel step. Scrolling down (deltaY > 0) shrinks,
// turns back or sharpens.
func ApplyWheel(l *Layer, mod WheelMod, deltaY float64) {
	down := deltaY > 0

	switch mod {
	case WheelBlur:
		step := 0.5
		if down {
			step = -step
		}
		l.Filters.Blur = between(l.Filters.Blur+step, 0, MaxBlur)

	case WheelRotate:
		step := 5.0
		if down {
			step = -step
		}
		l.Rotation = wrapDegrees(l.Rotation + step)

	default:
		step := 0.05
		if down {
			step = -step
		}
		l.Scale = clampScale(l.Scale + step)
	}
}

// MoveTo sets a layer's position.
func MoveTo(l *Layer, x, y float64) {
	l.Position = Position{X: finite(x, l.Position.X), Y: finite(y, l.Position.Y)}
}

func clampScale(v float64) float64 {
	return between(v, MinScale, MaxScale)
}

// wrapDegrees maps v into [0, 360).
func wrapDegrees(v float64) float64 {
	v = math.Mod(v, 360)
	if v < 0 {
		v += 360
	}
	return v
}
