package effect

import (
	"math"
	"strconv"
	"strings"
)

// Field is one of the effect parameters a mode can produce.
type Field int

const (
	FieldHueRotate Field = iota
	FieldSaturate
	FieldBrightness
	FieldContrast
	FieldBlur
	FieldInvert
	FieldScale
	FieldScaleX
	FieldScaleY
	FieldRotation
	FieldTranslateX
	FieldTranslateY
	FieldOpacity

	fieldCount
)

var fieldNames = [fieldCount]string{
	FieldHueRotate:  "hueRotate",
	FieldSaturate:   "saturate",
	FieldBrightness: "brightness",
	FieldContrast:   "contrast",
	FieldBlur:       "blur",
	FieldInvert:     "invert",
	FieldScale:      "scale",
	FieldScaleX:     "scaleX",
	FieldScaleY:     "scaleY",
	FieldRotation:   "rotation",
	FieldTranslateX: "translateX",
	FieldTranslateY: "translateY",
	FieldOpacity:    "opacity",
}

func (f Field) String() string {
	if f < 0 || f >= fieldCount {
		return "unknown"
	}
	return fieldNames[f]
}

// Neutral returns the value of f that has no visible effect.
func (f Field) Neutral() float64 {
	switch f {
	case FieldSaturate, FieldBrightness, FieldContrast:
		return 100
	case FieldScale, FieldScaleX, FieldScaleY, FieldOpacity:
		return 1
	}
	return 0
}

// IsFilter reports whether f is part of the filter chain rather than the
// transform.
func (f Field) IsFilter() bool {
	return f <= FieldInvert
}

// Params is a set of optional effect parameters. The zero value is empty
// and means no effect.
type Params struct {
	values [fieldCount]float64
	set    uint32
}

// Set stores v for f.
func (p *Params) Set(f Field, v float64) {
	if f < 0 || f >= fieldCount {
		return
	}
	p.values[f] = v
	p.set |= 1 << uint(f)
}

// Unset removes f.
func (p *Params) Unset(f Field) {
	if f < 0 || f >= fieldCount {
		return
	}
	p.values[f] = 0
	p.set &^= 1 << uint(f)
}

// Add adds delta to f, starting from the neutral value when f is not set.
func (p *Params) Add(f Field, delta float64) {
	p.Set(f, p.Value(f)+delta)
}

// Mul scales f, starting from the neutral value when f is not set.
func (p *Params) Mul(f Field, k float64) {
	p.Set(f, p.Value(f)*k)
}

// Has reports whether f is set.
func (p Params) Has(f Field) bool {
	if f < 0 || f >= fieldCount {
		return false
	}
	return p.set&(1<<uint(f)) != 0
}

// Get returns the value of f and whether it is set.
func (p Params) Get(f Field) (float64, bool) {
	if !p.Has(f) {
		return 0, false
	}
	return p.values[f], true
}

// Value returns the value of f, or its neutral value when f is not set.
func (p Params) Value(f Field) float64 {
	if v, ok := p.Get(f); ok {
		return v
	}
	return f.Neutral()
}

// Len returns the number of set fields.
func (p Params) Len() int {
	n := 0
	for f := Field(0); f < fieldCount; f++ {
		if p.Has(f) {
			n++
		}
	}
	return n
}

// Fields returns the set fields in a fixed order.
func (p Params) Fields() []Field {
	out := make([]Field, 0, fieldCount)
	for f := Field(0); f < fieldCount; f++ {
		if p.Has(f) {
			out = append(out, f)
		}
	}
	return out
}

// Merge copies every field set in o into p.
func (p *Params) Merge(o Params) {
	for _, f := range o.Fields() {
		p.Set(f, o.values[f])
	}
}

// String formats the set fields as name=value pairs.
func (p Params) String() string {
	var sb strings.Builder
	for i, f := range p.Fields() {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(f.String())
		sb.WriteByte('=')
		sb.WriteString(FormatNumber(p.values[f]))
	}
	return sb.String()
}

// FormatNumber formats v with at most three decimals.
func FormatNumber(v float64) string {
	v = math.Round(v*1000) / 1000
	if v == 0 {
		// no negative zero
		v = 0
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
