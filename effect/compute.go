package effect

import (
	"math"
	"time"

	"github.com/noriah/catvj/common/seed"
	"github.com/noriah/catvj/dsp"
	"github.com/noriah/catvj/gesture"
)

// Compute returns the effect parameters for a mode, gesture and audio levels
// at now. Unknown modes return empty parameters. The result only depends on
// its arguments.
func Compute(mode string, ev gesture.Event, bands dsp.Bands, now time.Time) Params {
	m, ok := Lookup(mode)
	if !ok {
		return Params{}
	}
	return m.Compute(ev, bands, now)
}

// Compute runs the mode for one tick.
func (m *Mode) Compute(ev gesture.Event, bands dsp.Bands, now time.Time) Params {
	millis := now.UnixMilli()
	x, y := ev.Centroid()

	in := Input{
		Shape:    ev.Shape,
		Velocity: ev.NormalizedVelocity(),
		X:        finiteOr(x, 0.5),
		Y:        finiteOr(y, 0.5),
		Bands:    bands.Clamp(),
		Millis:   float64(millis),
		rand:     seed.New(seed.Mix(millis, uint32(ev.Shape)+1)),
	}

	p := m.Base

	if m.rule != nil {
		m.rule(&p, in)
	}

	for _, t := range m.Coupling {
		p.Add(t.Field, in.Bands.Get(t.Band)*t.Gain)
	}

	if mod, ok := m.Shapes[in.Shape]; ok {
		if mod.RotationMul != 0 {
			p.Mul(FieldRotation, mod.RotationMul)
		}
		if mod.RotationRate != 0 {
			p.Add(FieldRotation, cycle(in.Millis, 1/mod.RotationRate))
		}
		if mod.ScaleMul != 0 {
			p.Mul(FieldScale, mod.ScaleMul)
		}
		if mod.BlurAdd != 0 {
			p.Add(FieldBlur, mod.BlurAdd)
		}
	}

	if m.finish != nil {
		m.finish(&p, in)
	}

	sanitize(&p)

	return p
}

// IdleEvent is the event used when no gesture is pending. It keeps audio
// reactivity going without touch input.
func IdleEvent(bands dsp.Bands, now time.Time) gesture.Event {
	bands = bands.Clamp()

	return gesture.Event{
		Shape:    gesture.ShapeCircle,
		Velocity: bands.Overall * gesture.FullVelocity / 2,
		Points: []gesture.Point{
			{X: 0.5, Y: 0.5, Time: now},
			{X: 0.5 + bands.Mid*0.1, Y: 0.5 + bands.High*0.1, Time: now},
		},
		Created: now,
	}
}

// sanitize drops non finite values and forces every field into its range.
func sanitize(p *Params) {
	for _, f := range p.Fields() {
		v := p.values[f]

		if math.IsNaN(v) || math.IsInf(v, 0) {
			p.Unset(f)
			continue
		}

		switch f {
		case FieldHueRotate, FieldRotation:
			v = math.Mod(v, 360)
			if v < 0 {
				v += 360
			}
		case FieldOpacity:
			v = math.Max(0, math.Min(1, v))
		case FieldInvert:
			v = math.Max(0, math.Min(100, v))
		case FieldBlur, FieldSaturate, FieldBrightness, FieldContrast,
			FieldScale, FieldScaleX, FieldScaleY:
			v = math.Max(0, v)
		}

		p.values[f] = v
	}
}

func finiteOr(v, def float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return def
	}
	return v
}
