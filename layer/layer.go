// Package layer holds the layer model and resolves each layer's render
// parameters for a tick.
package layer

import (
	"math"
	"strings"

	"github.com/noriah/catvj/chroma"
	"github.com/noriah/catvj/dsp"
)

// Kind is the type of media a layer shows.
type Kind int

const (
	KindImage Kind = iota
	KindVideo
	KindAudio
	KindGIF
)

var kindNames = [...]string{
	KindImage: "image",
	KindVideo: "video",
	KindAudio: "audio",
	KindGIF:   "gif",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// ParseKind returns the kind with the given name.
func ParseKind(name string) (Kind, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for idx, n := range kindNames {
		if n == name {
			return Kind(idx), true
		}
	}
	return KindImage, false
}

// Visual reports whether the layer draws anything.
func (k Kind) Visual() bool {
	return k != KindAudio
}

// BlendMode is a compositing operator.
type BlendMode string

const (
	BlendNormal     BlendMode = "normal"
	BlendMultiply   BlendMode = "multiply"
	BlendScreen     BlendMode = "screen"
	BlendOverlay    BlendMode = "overlay"
	BlendDarken     BlendMode = "darken"
	BlendLighten    BlendMode = "lighten"
	BlendColorDodge BlendMode = "color-dodge"
	BlendColorBurn  BlendMode = "color-burn"
	BlendHardLight  BlendMode = "hard-light"
	BlendSoftLight  BlendMode = "soft-light"
	BlendDifference BlendMode = "difference"
	BlendExclusion  BlendMode = "exclusion"
	BlendHue        BlendMode = "hue"
	BlendSaturation BlendMode = "saturation"
	BlendColor      BlendMode = "color"
	BlendLuminosity BlendMode = "luminosity"
)

// BlendModes lists every supported blend mode.
var BlendModes = []BlendMode{
	BlendNormal, BlendMultiply, BlendScreen, BlendOverlay,
	BlendDarken, BlendLighten, BlendColorDodge, BlendColorBurn,
	BlendHardLight, BlendSoftLight, BlendDifference, BlendExclusion,
	BlendHue, BlendSaturation, BlendColor, BlendLuminosity,
}

// ParseBlendMode returns the named blend mode, or BlendNormal.
func ParseBlendMode(name string) (BlendMode, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, m := range BlendModes {
		if string(m) == name {
			return m, true
		}
	}
	return BlendNormal, false
}

// Param is a layer property that can follow the audio.
type Param int

const (
	ParamOpacity Param = iota
	ParamScale
	ParamRotation
	ParamBlur
	ParamBrightness
	ParamHueRotate

	paramCount
)

var paramNames = [paramCount]string{
	ParamOpacity:    "opacity",
	ParamScale:      "scale",
	ParamRotation:   "rotation",
	ParamBlur:       "blur",
	ParamBrightness: "brightness",
	ParamHueRotate:  "hueRotate",
}

func (p Param) String() string {
	if p < 0 || p >= paramCount {
		return "unknown"
	}
	return paramNames[p]
}

// ParseParam returns the param with the given name.
func ParseParam(name string) (Param, bool) {
	for idx, n := range paramNames {
		if strings.EqualFold(n, name) {
			return Param(idx), true
		}
	}
	return ParamOpacity, false
}

// Binding drives a parameter from an audio band.
type Binding struct {
	Enabled   bool
	Band      dsp.Band
	Min       float64
	Max       float64
	Intensity float64 // gain, values above 1 push past Max
}

// Modulate returns Min + level*(Max-Min)*Intensity. It is not clamped to
// [Min, Max].
func (b Binding) Modulate(bands dsp.Bands) float64 {
	level := bands.Get(b.Band)
	return b.Min + level*(b.Max-b.Min)*b.Intensity
}

// Filters is a layer's filter bank.
type Filters struct {
	Blur       float64 // px
	Brightness float64 // %
	Contrast   float64 // %
	Saturate   float64 // %
	HueRotate  float64 // deg
	Grayscale  float64 // %
	Sepia      float64 // %
	Invert     float64 // %
}

// NeutralFilters returns a filter bank with no effect.
func NeutralFilters() Filters {
	return Filters{Brightness: 100, Contrast: 100, Saturate: 100}
}

// Clamp forces every filter into its range.
func (f Filters) Clamp() Filters {
	return Filters{
		Blur:       atLeast(f.Blur, 0),
		Brightness: atLeast(f.Brightness, 0),
		Contrast:   atLeast(f.Contrast, 0),
		Saturate:   atLeast(f.Saturate, 0),
		HueRotate:  finite(f.HueRotate, 0),
		Grayscale:  between(f.Grayscale, 0, 100),
		Sepia:      between(f.Sepia, 0, 100),
		Invert:     between(f.Invert, 0, 100),
	}
}

// Position is a layer offset from the surface center in pixels.
type Position struct {
	X, Y float64
}

// Layer is one composited media item.
type Layer struct {
	ID    string
	Name  string
	Kind  Kind
	Media interface{} // decoded media, released on removal if it is an io.Closer

	Visible  bool
	Opacity  float64
	Blend    BlendMode
	Scale    float64
	Rotation float64 // degrees
	Position Position
	Filters  Filters
	Chroma   chroma.Config
	Bindings map[Param]Binding

	// Last holds the parameters resolved on the last tick.
	Last RenderParams
}

// New returns a visible layer with neutral appearance.
func New(id, name string, kind Kind) *Layer {
	return &Layer{
		ID:       id,
		Name:     name,
		Kind:     kind,
		Visible:  true,
		Opacity:  1,
		Blend:    BlendNormal,
		Scale:    1,
		Filters:  NeutralFilters(),
		Chroma:   chroma.DefaultConfig(),
		Bindings: make(map[Param]Binding),
	}
}

// Binding returns the binding for p. Missing bindings are disabled.
func (l *Layer) Binding(p Param) Binding {
	if l.Bindings == nil {
		return Binding{}
	}
	return l.Bindings[p]
}

// Bind sets the binding for p.
func (l *Layer) Bind(p Param, b Binding) {
	if l.Bindings == nil {
		l.Bindings = make(map[Param]Binding)
	}
	l.Bindings[p] = b
}

// Clamp forces every persistent property into its range.
func (l *Layer) Clamp() {
	l.Opacity = between(l.Opacity, 0, 1)
	l.Scale = atLeast(l.Scale, 0)
	l.Rotation = finite(l.Rotation, 0)
	l.Position.X = finite(l.Position.X, 0)
	l.Position.Y = finite(l.Position.Y, 0)
	l.Filters = l.Filters.Clamp()
	l.Chroma = l.Chroma.Clamp()

	if _, ok := ParseBlendMode(string(l.Blend)); !ok {
		l.Blend = BlendNormal
	}

	for p, b := range l.Bindings {
		if !(b.Intensity >= 0) {
			b.Intensity = 0
		}
		b.Min = finite(b.Min, 0)
		b.Max = finite(b.Max, 0)
		l.Bindings[p] = b
	}
}

// Clone returns a copy that shares no maps with l.
func (l *Layer) Clone() Layer {
	c := *l
	if l.Bindings != nil {
		c.Bindings = make(map[Param]Binding, len(l.Bindings))
		for p, b := range l.Bindings {
			c.Bindings[p] = b
		}
	}
	return c
}

func finite(v, def float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return def
	}
	return v
}

// atLeast also maps NaN and infinities to lo.
func atLeast(v, lo float64) float64 {
	if !(v > lo) || math.IsInf(v, 1) {
		return lo
	}
	return v
}

func between(v, lo, hi float64) float64 {
	switch {
	case !(v > lo):
		return lo
	case v > hi:
		return hi
	}
	return v
}
