// Package effect maps gestures and audio levels to visual effect parameters.
package effect

import (
	"math"

	"github.com/noriah/catvj/common/seed"
	"github.com/noriah/catvj/dsp"
	"github.com/noriah/catvj/gesture"
)

// Term couples one audio band to one field. The band level times Gain is
// added to the field.
type Term struct {
	Band  dsp.Band
	Field Field
	Gain  float64
}

// ShapeMod adjusts the output for a particular gesture shape.
type ShapeMod struct {
	ScaleMul     float64 // multiplies scale, ignored when 0
	RotationMul  float64 // multiplies rotation, ignored when 0
	RotationRate float64 // degrees per millisecond of continuous spin
	BlurAdd      float64 // added to blur
}

// Input is everything a mode rule can look at.
type Input struct {
	Shape    gesture.Shape
	Velocity float64 // normalized to [0, 1]
	X, Y     float64 // mean stroke position
	Bands    dsp.Bands
	Millis   float64 // wall clock in milliseconds

	rand *seed.RNG
}

// Rand returns a reproducible number in [0, 1) for this input.
func (in Input) Rand() float64 {
	if in.rand == nil {
		return 0.5
	}
	return in.rand.Float()
}

// Mode is a named effect preset.
type Mode struct {
	Name        string
	Description string
	Base        Params                     // always on
	Coupling    []Term                     // audio reactivity
	Shapes      map[gesture.Shape]ShapeMod // per shape modifiers

	rule   func(p *Params, in Input) // runs after Base
	finish func(p *Params, in Input) // runs last, before sanitizing
}

func preset(values map[Field]float64) Params {
	var p Params
	for f, v := range values {
		p.Set(f, v)
	}
	return p
}

// wave is sin(ms / period).
func wave(ms, period float64) float64 {
	return math.Sin(ms / period)
}

// cycle returns ms / div wrapped into [0, 360).
func cycle(ms, div float64) float64 {
	return math.Mod(ms/div, 360)
}

var modes = []*Mode{
	{
		Name:        "psychedelic",
		Description: "explosive colors and fast spins",
		Base:        preset(map[Field]float64{FieldSaturate: 200, FieldBrightness: 110, FieldContrast: 110}),
		Coupling: []Term{
			{dsp.BandBass, FieldScale, 0.8},
			{dsp.BandBass, FieldBlur, 0.5},
			{dsp.BandMid, FieldHueRotate, 180},
			{dsp.BandMid, FieldRotation, 45},
			{dsp.BandHigh, FieldBrightness, 50},
			{dsp.BandHigh, FieldSaturate, 100},
		},
		Shapes: map[gesture.Shape]ShapeMod{
			gesture.ShapeCircle: {RotationRate: 1.0 / 20},
			gesture.ShapeSpiral: {RotationRate: 1.0 / 10, ScaleMul: 1.3},
		},
		rule: func(p *Params, in Input) {
			// color cycling and blur pulses follow the drive so a silent,
			// still scene sits at the base preset
			drive := math.Max(in.Velocity, in.Bands.Overall)

			p.Set(FieldHueRotate, drive*math.Mod(in.X*360+in.Millis/10, 360))
			p.Set(FieldScale, 1+wave(in.Millis, 500)*0.3)
			p.Add(FieldBrightness, in.Velocity*50)
			p.Set(FieldBlur, drive*math.Max(0, 2+wave(in.Millis, 300)*3))
		},
	},
	{
		Name:        "glitch",
		Description: "chaotic digital jitter",
		Base:        preset(map[Field]float64{FieldContrast: 130, FieldSaturate: 120}),
		Coupling: []Term{
			{dsp.BandMid, FieldContrast, 50},
			{dsp.BandHigh, FieldSaturate, 80},
		},
		rule: func(p *Params, in Input) {
			amount := in.Velocity * in.Bands.Bass

			p.Set(FieldTranslateX, (in.Rand()-0.5)*amount*50)
			p.Set(FieldTranslateY, (in.Rand()-0.5)*amount*50)

			if in.Shape == gesture.ShapeZigzag {
				p.Set(FieldHueRotate, in.Rand()*360)
				if in.Rand() > 0.7 {
					p.Set(FieldInvert, 100)
				}
			}
		},
	},
	{
		Name:        "smooth",
		Description: "soft, fluid transitions",
		Base:        preset(map[Field]float64{FieldBlur: 3, FieldBrightness: 105, FieldSaturate: 110}),
		Coupling: []Term{
			{dsp.BandBass, FieldBlur, 5},
			{dsp.BandBass, FieldScale, 0.3},
			{dsp.BandMid, FieldHueRotate, 30},
			{dsp.BandHigh, FieldBrightness, 20},
		},
		Shapes: map[gesture.Shape]ShapeMod{
			gesture.ShapeCircle: {RotationRate: 1.0 / 100},
			gesture.ShapeSpiral: {RotationRate: 1.0 / 60, BlurAdd: 2},
		},
		rule: func(p *Params, in Input) {
			p.Add(FieldBlur, in.Velocity*10)
			p.Set(FieldOpacity, 0.9)
			p.Set(FieldHueRotate, in.X*60)
		},
	},
	{
		Name:        "strobe",
		Description: "flashes and hard contrast",
		Base:        preset(map[Field]float64{FieldContrast: 150, FieldBrightness: 100}),
		Coupling: []Term{
			{dsp.BandHigh, FieldBrightness, 20},
		},
		rule: func(p *Params, in Input) {
			if in.Bands.Bass > 0.6 || in.Velocity > 0.7 {
				p.Set(FieldBrightness, 200)
				p.Set(FieldContrast, 200)
				p.Set(FieldSaturate, 200)

				if in.Rand() > 0.5 {
					p.Set(FieldInvert, 100)
				}
				return
			}

			p.Set(FieldBrightness, 80)
			p.Set(FieldContrast, 100)
			p.Set(FieldSaturate, 80)
		},
	},
	{
		Name:        "vortex",
		Description: "spirals and radial distortion",
		Base:        preset(map[Field]float64{FieldSaturate: 130, FieldContrast: 110}),
		Coupling: []Term{
			{dsp.BandMid, FieldBlur, 8},
			{dsp.BandMid, FieldRotation, 60},
		},
		Shapes: map[gesture.Shape]ShapeMod{
			gesture.ShapeSpiral: {RotationMul: 2, ScaleMul: 1.4},
		},
		rule: func(p *Params, in Input) {
			intensity := in.Velocity + in.Bands.Bass

			p.Set(FieldRotation, cycle(in.Millis, 30))
			p.Set(FieldScale, 1+wave(in.Millis, 400)*0.4*intensity)
			p.Set(FieldBlur, 3)
		},
		finish: func(p *Params, in Input) {
			scale := p.Value(FieldScale)
			warp := wave(in.Millis, 200) * 0.2

			p.Set(FieldScaleX, scale*(1+warp))
			p.Set(FieldScaleY, scale*(1-warp))
		},
	},
	{
		Name:        "painting",
		Description: "watercolor washes",
		Base:        preset(map[Field]float64{FieldBlur: 2, FieldSaturate: 140, FieldBrightness: 105}),
		Coupling: []Term{
			{dsp.BandMid, FieldSaturate, 40},
			{dsp.BandHigh, FieldBrightness, 20},
		},
		Shapes: map[gesture.Shape]ShapeMod{
			gesture.ShapeCircle: {BlurAdd: 2},
			gesture.ShapeSpiral: {BlurAdd: 2},
		},
		rule: func(p *Params, in Input) {
			p.Add(FieldBlur, in.Velocity*3)
			p.Set(FieldHueRotate, in.X*45)
			p.Set(FieldOpacity, 0.95)
		},
	},
}

// Lookup returns the mode with the given name.
func Lookup(name string) (*Mode, bool) {
	for _, m := range modes {
		if m.Name == name {
			return m, true
		}
	}
	return nil, false
}

// Names returns every mode name in registry order.
func Names() []string {
	out := make([]string, len(modes))
	for i, m := range modes {
		out[i] = m.Name
	}
	return out
}

// Modes returns every mode in registry order.
func Modes() []*Mode {
	out := make([]*Mode, len(modes))
	copy(out, modes)
	return out
}
