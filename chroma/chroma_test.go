package chroma

import (
	"image"
	"image/color"
	"math"
	"testing"
)

func TestParseKeyColor(t *testing.T) {
	tests := []struct {
		in   string
		want RGB
	}{
		{"#00ff00", Green},
		{"ff0000", RGB{R: 255}},
		{"#1A2b3C", RGB{R: 0x1a, G: 0x2b, B: 0x3c}},
		{"", Green},
		{"#0f0", Green},
		{"#gg0000", Green},
		{"#00ff00ff", Green},
		{"blue", Green},
	}

	for _, test := range tests {
		if got := ParseKeyColor(test.in); got != test.want {
			t.Errorf("%q: got %s, want %s", test.in, got, test.want)
		}
	}

	if hex := (RGB{R: 1, G: 2, B: 255}).Hex(); hex != "#0102ff" {
		t.Errorf("unexpected hex %q", hex)
	}
}

// pixelAt returns a color at distance d from green along the red axis.
func pixelAt(d float64) (uint8, uint8, uint8) {
	return uint8(math.Round(d)), 255, 0
}

func TestAlpha(t *testing.T) {
	cfg := Config{Enabled: true, Key: Green, Threshold: 0.4, Smoothness: 0.1}

	threshold := 0.4 * 255
	smoothness := 0.1 * 255

	tests := []struct {
		name     string
		distance float64
		want     uint8
		slack    uint8
	}{
		{"key color", 0, 0, 0},
		{"deep inside", threshold - smoothness - 10, 0, 0},
		{"fade midpoint", threshold - smoothness/2, 127, 10},
		{"at threshold plus smoothness", threshold + smoothness, 255, 0},
		{"far away", 250, 255, 0},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			r, g, b := pixelAt(test.distance)
			got := cfg.Alpha(r, g, b, 255)

			diff := int(got) - int(test.want)
			if diff < 0 {
				diff = -diff
			}

			if diff > int(test.slack) {
				t.Errorf("alpha %d, want %d", got, test.want)
			}
		})
	}
}

func TestAlphaExactMidpoint(t *testing.T) {
	// a key of black lets us hit the distance exactly on a channel
	cfg := Config{Enabled: true, Key: RGB{}, Threshold: 0.4, Smoothness: 0.2}

	// threshold 102 and smoothness 51 fade out between 51 and 102
	if a := cfg.Alpha(76, 0, 0, 255); a != 125 {
		t.Errorf("alpha at 76: %d", a)
	}

	if a := cfg.Alpha(102, 0, 0, 200); a != 200 {
		t.Errorf("alpha at threshold should keep source alpha, got %d", a)
	}
}

func TestAlphaHardCutoff(t *testing.T) {
	cfg := Config{Enabled: true, Key: Green, Threshold: 0.4}

	if a := cfg.Alpha(100, 255, 0, 255); a != 0 {
		t.Errorf("expected hard cutoff inside threshold, got %d", a)
	}

	if a := cfg.Alpha(110, 255, 0, 255); a != 255 {
		t.Errorf("expected opaque outside threshold, got %d", a)
	}
}

func TestApply(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	img.SetNRGBA(0, 0, color.NRGBA{G: 255, A: 255})
	img.SetNRGBA(1, 0, color.NRGBA{R: 255, A: 255})

	if Apply(img, Config{Key: Green, Threshold: 0.4}) {
		t.Fatal("disabled config should not apply")
	}

	if img.NRGBAAt(0, 0).A != 255 {
		t.Fatal("disabled config touched pixels")
	}

	if !Apply(img, Config{Enabled: true, Key: Green, Threshold: 0.4, Smoothness: 0.1}) {
		t.Fatal("expected apply")
	}

	if a := img.NRGBAAt(0, 0).A; a != 0 {
		t.Errorf("key pixel alpha %d", a)
	}

	if a := img.NRGBAAt(1, 0).A; a != 255 {
		t.Errorf("red pixel alpha %d", a)
	}

	if Apply(nil, Config{Enabled: true}) {
		t.Error("nil image should not apply")
	}
}

func TestApplySubImage(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.SetNRGBA(x, y, color.NRGBA{G: 255, A: 255})
		}
	}

	sub := img.SubImage(image.Rect(1, 1, 3, 3)).(*image.NRGBA)
	Apply(sub, Config{Enabled: true, Key: Green, Threshold: 0.5})

	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			inside := x >= 1 && x < 3 && y >= 1 && y < 3
			a := img.NRGBAAt(x, y).A
			if inside && a != 0 || !inside && a != 255 {
				t.Errorf("pixel %d,%d alpha %d", x, y, a)
			}
		}
	}
}

func BenchmarkApply(b *testing.B) {
	img := image.NewNRGBA(image.Rect(0, 0, 640, 360))
	for i := range img.Pix {
		img.Pix[i] = uint8(i * 7)
	}

	cfg := Config{Enabled: true, Key: Green, Threshold: 0.4, Smoothness: 0.1}

	b.SetBytes(int64(len(img.Pix)))
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		Apply(img, cfg)
	}
}
