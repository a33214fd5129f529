package layer

import (
	"image"
	"math"
	"strings"

	"github.com/noriah/catvj/dsp"
	"github.com/noriah/catvj/effect"
)

// Geometry is a resolved transform. It is applied around the layer center
// as translate, then rotate, then scale.
type Geometry struct {
	TranslateX float64
	TranslateY float64
	Rotation   float64 // degrees
	ScaleX     float64
	ScaleY     float64
}

// Matrix is a 2D affine transform in the a b c d e f order of CSS matrix().
// A point maps to (a*x + c*y + e, b*x + d*y + f).
type Matrix [6]float64

// Apply maps a point relative to the layer center.
func (m Matrix) Apply(x, y float64) (float64, float64) {
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}

// Matrix composes the geometry into one affine transform.
func (g Geometry) Matrix() Matrix {
	rad := g.Rotation * math.Pi / 180
	sin, cos := math.Sincos(rad)

	return Matrix{
		cos * g.ScaleX,
		sin * g.ScaleX,
		-sin * g.ScaleY,
		cos * g.ScaleY,
		g.TranslateX,
		g.TranslateY,
	}
}

// RenderParams is what a presentation layer needs to draw one layer for one
// tick.
type RenderParams struct {
	LayerID   string
	Filter    string // css filter syntax, "none" when empty
	Transform string // css transform syntax
	Matrix    Matrix
	Opacity   float64
	Blend     BlendMode
	Filters   Filters
	Geometry  Geometry
	Keyed     image.Image // chroma keyed frame, nil when keying is off
}

// Recompose rebuilds Filter, Transform and Matrix from Filters and Geometry.
func (rp *RenderParams) Recompose() {
	rp.Filter = FilterString(rp.Filters)
	rp.Transform = TransformString(rp.Geometry)
	rp.Matrix = rp.Geometry.Matrix()
}

// Resolve combines a layer's persistent state, the audio levels and the
// active effect into render parameters. It does not modify l.
//
// Effect brightness, contrast and saturate scale the layer values as
// percentages, blur and hue add, invert takes the larger value. Effect scale
// multiplies, rotation and translation add, opacity multiplies.
func Resolve(l *Layer, bands dsp.Bands, fx effect.Params) RenderParams {
	mod := func(p Param, base float64) float64 {
		b := l.Binding(p)
		if !b.Enabled {
			return base
		}
		return b.Modulate(bands)
	}

	f := l.Filters
	f.Blur = mod(ParamBlur, f.Blur)
	f.Brightness = mod(ParamBrightness, f.Brightness)
	f.HueRotate = mod(ParamHueRotate, f.HueRotate)

	if v, ok := fx.Get(effect.FieldBlur); ok {
		f.Blur += v
	}
	if v, ok := fx.Get(effect.FieldBrightness); ok {
		f.Brightness *= v / 100
	}
	if v, ok := fx.Get(effect.FieldContrast); ok {
		f.Contrast *= v / 100
	}
	if v, ok := fx.Get(effect.FieldSaturate); ok {
		f.Saturate *= v / 100
	}
	if v, ok := fx.Get(effect.FieldHueRotate); ok {
		f.HueRotate = math.Mod(f.HueRotate+v, 360)
	}
	if v, ok := fx.Get(effect.FieldInvert); ok {
		f.Invert = math.Max(f.Invert, v)
	}

	scale := mod(ParamScale, l.Scale)
	sx := scale * fx.Value(effect.FieldScale)
	sy := sx
	if v, ok := fx.Get(effect.FieldScaleX); ok {
		sx = scale * v
	}
	if v, ok := fx.Get(effect.FieldScaleY); ok {
		sy = scale * v
	}

	g := Geometry{
		TranslateX: l.Position.X + fx.Value(effect.FieldTranslateX),
		TranslateY: l.Position.Y + fx.Value(effect.FieldTranslateY),
		Rotation:   mod(ParamRotation, l.Rotation) + fx.Value(effect.FieldRotation),
		ScaleX:     sx,
		ScaleY:     sy,
	}

	opacity := mod(ParamOpacity, l.Opacity) * fx.Value(effect.FieldOpacity)

	rp := RenderParams{
		LayerID:  l.ID,
		Opacity:  between(finite(opacity, l.Opacity), 0, 1),
		Blend:    l.Blend,
		Filters:  resolvedFilters(f, l.Filters),
		Geometry: resolvedGeometry(g),
	}

	if rp.Blend == "" {
		rp.Blend = BlendNormal
	}

	rp.Recompose()

	return rp
}

// resolvedFilters keeps modulation overshoot but never goes negative or
// non finite.
func resolvedFilters(f, base Filters) Filters {
	return Filters{
		Blur:       atLeast(finite(f.Blur, base.Blur), 0),
		Brightness: atLeast(finite(f.Brightness, base.Brightness), 0),
		Contrast:   atLeast(finite(f.Contrast, base.Contrast), 0),
		Saturate:   atLeast(finite(f.Saturate, base.Saturate), 0),
		HueRotate:  finite(f.HueRotate, 0),
		Grayscale:  between(f.Grayscale, 0, 100),
		Sepia:      between(f.Sepia, 0, 100),
		Invert:     between(f.Invert, 0, 100),
	}
}

func resolvedGeometry(g Geometry) Geometry {
	return Geometry{
		TranslateX: finite(g.TranslateX, 0),
		TranslateY: finite(g.TranslateY, 0),
		Rotation:   finite(g.Rotation, 0),
		ScaleX:     atLeast(finite(g.ScaleX, 1), 0),
		ScaleY:     atLeast(finite(g.ScaleY, 1), 0),
	}
}

var num = effect.FormatNumber

// FilterString formats f as a css filter list. Neutral terms are left out
// and an empty list is "none".
func FilterString(f Filters) string {
	terms := make([]string, 0, 8)

	add := func(name string, v, neutral float64, unit string) {
		s := num(v)
		if s == num(neutral) {
			return
		}
		terms = append(terms, name+"("+s+unit+")")
	}

	add("blur", f.Blur, 0, "px")
	add("brightness", f.Brightness, 100, "%")
	add("contrast", f.Contrast, 100, "%")
	add("saturate", f.Saturate, 100, "%")
	add("hue-rotate", f.HueRotate, 0, "deg")
	add("grayscale", f.Grayscale, 0, "%")
	add("sepia", f.Sepia, 0, "%")
	add("invert", f.Invert, 0, "%")

	if len(terms) == 0 {
		return "none"
	}

	return strings.Join(terms, " ")
}

// TransformString formats g as a css transform centered on the layer.
func TransformString(g Geometry) string {
	var sb strings.Builder

	sb.WriteString("translate(-50%, -50%) translate(")
	sb.WriteString(num(g.TranslateX))
	sb.WriteString("px, ")
	sb.WriteString(num(g.TranslateY))
	sb.WriteString("px) rotate(")
	sb.WriteString(num(g.Rotation))
	sb.WriteString("deg) scale(")
	sb.WriteString(num(g.ScaleX))

	if num(g.ScaleX) != num(g.ScaleY) {
		sb.WriteString(", ")
		sb.WriteString(num(g.ScaleY))
	}

	sb.WriteString(")")

	return sb.String()
}
