package layer

import (
	"math"
	"testing"

	"github.com/noriah/catvj/dsp"
	"github.com/noriah/catvj/effect"
)

func testLayer() *Layer {
	l := New("l1", "clip", KindVideo)
	l.Opacity = 0.8
	l.Scale = 1.5
	l.Rotation = 30
	l.Position = Position{X: 10, Y: -20}
	l.Filters = Filters{
		Blur:       2,
		Brightness: 120,
		Contrast:   90,
		Saturate:   100,
		HueRotate:  45,
		Grayscale:  10,
		Sepia:      0,
		Invert:     0,
	}
	l.Blend = BlendScreen
	return l
}

func TestResolveRoundTrip(t *testing.T) {
	l := testLayer()

	// configured but disabled bindings leave the base values alone
	l.Bind(ParamScale, Binding{Band: dsp.BandBass, Min: 0, Max: 10, Intensity: 1})
	l.Bind(ParamOpacity, Binding{Band: dsp.BandHigh, Min: 0, Max: 1, Intensity: 1})

	rp := Resolve(l, dsp.Bands{Bass: 1, Mid: 1, High: 1, Overall: 1}, effect.Params{})

	if rp.Filters != l.Filters {
		t.Errorf("filters changed: %+v", rp.Filters)
	}

	want := Geometry{TranslateX: 10, TranslateY: -20, Rotation: 30, ScaleX: 1.5, ScaleY: 1.5}
	if rp.Geometry != want {
		t.Errorf("geometry %+v, want %+v", rp.Geometry, want)
	}

	if rp.Opacity != 0.8 {
		t.Errorf("opacity %f", rp.Opacity)
	}

	if rp.Blend != BlendScreen || rp.LayerID != "l1" {
		t.Errorf("unexpected blend %q or id %q", rp.Blend, rp.LayerID)
	}

	if rp.Filter != "blur(2px) brightness(120%) contrast(90%) hue-rotate(45deg) grayscale(10%)" {
		t.Errorf("unexpected filter %q", rp.Filter)
	}

	if rp.Transform != "translate(-50%, -50%) translate(10px, -20px) rotate(30deg) scale(1.5)" {
		t.Errorf("unexpected transform %q", rp.Transform)
	}
}

func TestResolveIdempotent(t *testing.T) {
	l := testLayer()
	l.Bind(ParamBrightness, Binding{Enabled: true, Band: dsp.BandMid, Min: 80, Max: 160, Intensity: 1})

	var fx effect.Params
	fx.Set(effect.FieldHueRotate, 100)
	fx.Set(effect.FieldScaleX, 1.2)
	fx.Set(effect.FieldScaleY, 0.8)

	bands := dsp.Bands{Mid: 0.3}

	a := Resolve(l, bands, fx)
	b := Resolve(l, bands, fx)

	if a != b {
		t.Errorf("resolve not idempotent:\n%+v\n%+v", a, b)
	}
}

func TestResolveModulation(t *testing.T) {
	tests := []struct {
		name    string
		param   Param
		binding Binding
		bands   dsp.Bands
		get     func(RenderParams) float64
		want    float64
	}{
		{
			name:    "scale follows bass",
			param:   ParamScale,
			binding: Binding{Enabled: true, Band: dsp.BandBass, Min: 1, Max: 2, Intensity: 1},
			bands:   dsp.Bands{Bass: 0.5},
			get:     func(rp RenderParams) float64 { return rp.Geometry.ScaleX },
			want:    1.5,
		},
		{
			name:    "intensity overshoots max",
			param:   ParamScale,
			binding: Binding{Enabled: true, Band: dsp.BandBass, Min: 1, Max: 2, Intensity: 3},
			bands:   dsp.Bands{Bass: 1},
			get:     func(rp RenderParams) float64 { return rp.Geometry.ScaleX },
			want:    4,
		},
		{
			name:    "rotation follows overall",
			param:   ParamRotation,
			binding: Binding{Enabled: true, Band: dsp.BandOverall, Min: 0, Max: 360, Intensity: 0.5},
			bands:   dsp.Bands{Overall: 1},
			get:     func(rp RenderParams) float64 { return rp.Geometry.Rotation },
			want:    180,
		},
		{
			name:    "opacity stays in range",
			param:   ParamOpacity,
			binding: Binding{Enabled: true, Band: dsp.BandHigh, Min: 0.5, Max: 1, Intensity: 4},
			bands:   dsp.Bands{High: 1},
			get:     func(rp RenderParams) float64 { return rp.Opacity },
			want:    1,
		},
		{
			name:    "blur overshoot kept",
			param:   ParamBlur,
			binding: Binding{Enabled: true, Band: dsp.BandMid, Min: 0, Max: 10, Intensity: 2},
			bands:   dsp.Bands{Mid: 1},
			get:     func(rp RenderParams) float64 { return rp.Filters.Blur },
			want:    20,
		},
		{
			name:    "negative brightness floored",
			param:   ParamBrightness,
			binding: Binding{Enabled: true, Band: dsp.BandMid, Min: 100, Max: 0, Intensity: 2},
			bands:   dsp.Bands{Mid: 1},
			get:     func(rp RenderParams) float64 { return rp.Filters.Brightness },
			want:    0,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			l := New("l", "l", KindImage)
			l.Bind(test.param, test.binding)

			rp := Resolve(l, test.bands, effect.Params{})
			if got := test.get(rp); math.Abs(got-test.want) > 1e-9 {
				t.Errorf("got %f, want %f", got, test.want)
			}
		})
	}
}

func TestResolveEffect(t *testing.T) {
	l := testLayer()

	var fx effect.Params
	fx.Set(effect.FieldBrightness, 150)
	fx.Set(effect.FieldBlur, 3)
	fx.Set(effect.FieldHueRotate, 330)
	fx.Set(effect.FieldInvert, 100)
	fx.Set(effect.FieldScale, 2)
	fx.Set(effect.FieldRotation, 15)
	fx.Set(effect.FieldTranslateX, 5)
	fx.Set(effect.FieldOpacity, 0.5)

	rp := Resolve(l, dsp.Bands{}, fx)

	f := rp.Filters
	if f.Brightness != 180 || f.Blur != 5 || f.HueRotate != 15 || f.Invert != 100 {
		t.Errorf("unexpected filters %+v", f)
	}

	g := rp.Geometry
	if g.ScaleX != 3 || g.ScaleY != 3 || g.Rotation != 45 || g.TranslateX != 15 {
		t.Errorf("unexpected geometry %+v", g)
	}

	if math.Abs(rp.Opacity-0.4) > 1e-9 {
		t.Errorf("opacity %f", rp.Opacity)
	}
}

func TestFilterString(t *testing.T) {
	tests := []struct {
		name    string
		filters Filters
		want    string
	}{
		{"neutral", NeutralFilters(), "none"},
		{"zero value", Filters{}, "brightness(0%) contrast(0%) saturate(0%)"},
		{"rounding to neutral", Filters{Brightness: 100.0001, Contrast: 100, Saturate: 100}, "none"},
		{
			"all",
			Filters{Blur: 1.5, Brightness: 110, Contrast: 120, Saturate: 130, HueRotate: 90, Grayscale: 20, Sepia: 30, Invert: 100},
			"blur(1.5px) brightness(110%) contrast(120%) saturate(130%) hue-rotate(90deg) grayscale(20%) sepia(30%) invert(100%)",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := FilterString(test.filters); got != test.want {
				t.Errorf("got %q, want %q", got, test.want)
			}
		})
	}
}

func TestTransformOrder(t *testing.T) {
	g := Geometry{TranslateX: 100, TranslateY: 0, Rotation: 90, ScaleX: 2, ScaleY: 1}

	if s := TransformString(g); s != "translate(-50%, -50%) translate(100px, 0px) rotate(90deg) scale(2, 1)" {
		t.Errorf("unexpected transform %q", s)
	}

	// scale first, then rotate, then translate: (1, 0) -> (2, 0) -> (0, 2) -> (100, 2)
	x, y := g.Matrix().Apply(1, 0)
	if math.Abs(x-100) > 1e-9 || math.Abs(y-2) > 1e-9 {
		t.Errorf("point mapped to %f,%f", x, y)
	}

	// (0, 1) -> (0, 1) -> (-1, 0) -> (99, 0)
	x, y = g.Matrix().Apply(0, 1)
	if math.Abs(x-99) > 1e-9 || math.Abs(y) > 1e-9 {
		t.Errorf("point mapped to %f,%f", x, y)
	}
}

func TestRecompose(t *testing.T) {
	rp := Resolve(testLayer(), dsp.Bands{}, effect.Params{})

	rp.Geometry.Rotation = 0
	rp.Filters.Blur = 0
	rp.Recompose()

	if rp.Transform != "translate(-50%, -50%) translate(10px, -20px) rotate(0deg) scale(1.5)" {
		t.Errorf("unexpected transform %q", rp.Transform)
	}

	if rp.Matrix[1] != 0 {
		t.Errorf("matrix not rebuilt: %v", rp.Matrix)
	}
}

func BenchmarkResolve(b *testing.B) {
	l := testLayer()
	l.Bind(ParamScale, Binding{Enabled: true, Band: dsp.BandBass, Min: 1, Max: 2, Intensity: 1})

	var fx effect.Params
	fx.Set(effect.FieldRotation, 15)

	bands := dsp.Bands{Bass: 0.5}

	for i := 0; i < b.N; i++ {
		Resolve(l, bands, fx)
	}
}
