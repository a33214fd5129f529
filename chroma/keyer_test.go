package chroma

import (
	"image"
	"image/color"
	"testing"
)

func greenImage(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{G: 255, A: 255})
		}
	}
	return img
}

func TestPrepare(t *testing.T) {
	src := greenImage(40, 20)

	dst, err := Prepare(src, 10)
	if err != nil {
		t.Fatal(err)
	}

	if dst.Rect.Dx() != 10 || dst.Rect.Dy() != 5 {
		t.Errorf("unexpected size %v", dst.Rect)
	}

	same, _ := Prepare(src, 0)
	if same == src {
		t.Error("prepare should copy")
	}

	if same.NRGBAAt(3, 3) != src.NRGBAAt(3, 3) {
		t.Error("copy changed pixels")
	}

	if _, err := Prepare(nil, 0); err != ErrNotReady {
		t.Errorf("expected ErrNotReady, got %v", err)
	}

	if _, err := Prepare(image.NewNRGBA(image.Rectangle{}), 0); err != ErrNotReady {
		t.Errorf("expected ErrNotReady, got %v", err)
	}
}

// flatImage is a by-value image holding a slice, so comparing two of them
// with == panics.
type flatImage struct {
	pix []color.NRGBA
	w   int
}

func (f flatImage) ColorModel() color.Model { return color.NRGBAModel }
func (f flatImage) Bounds() image.Rectangle { return image.Rect(0, 0, f.w, len(f.pix)/f.w) }
func (f flatImage) At(x, y int) color.Color { return f.pix[y*f.w+x] }

func TestKeyerValueImage(t *testing.T) {
	k := NewKeyer(KeyerConfig{})
	cfg := DefaultConfig()
	cfg.Enabled = true

	src := flatImage{
		pix: []color.NRGBA{{G: 255, A: 255}, {R: 255, A: 255}},
		w:   2,
	}

	first, keyed := k.Process(src, cfg, true)
	if !keyed {
		t.Fatal("expected keyed frame")
	}

	// same value again and then a different one, neither may panic
	second, keyed := k.Process(src, cfg, true)
	if !keyed || second == first {
		t.Error("by-value images should be keyed every time")
	}

	src.pix = []color.NRGBA{{R: 255, A: 255}, {G: 255, A: 255}}
	third, _ := k.Process(src, cfg, true)
	if a := third.(*image.NRGBA).NRGBAAt(0, 0).A; a != 255 {
		t.Errorf("stale frame served, alpha %d", a)
	}
}

func TestSameImage(t *testing.T) {
	a, b := greenImage(2, 2), greenImage(2, 2)
	v := flatImage{pix: make([]color.NRGBA, 4), w: 2}

	tests := []struct {
		name string
		x, y image.Image
		want bool
	}{
		{"same pointer", a, a, true},
		{"other pointer", a, b, false},
		{"nil", nil, a, false},
		{"value", v, v, false},
		{"mixed", a, v, false},
	}

	for _, test := range tests {
		if got := sameImage(test.x, test.y); got != test.want {
			t.Errorf("%s: got %v", test.name, got)
		}
	}
}

func TestKeyer(t *testing.T) {
	k := NewKeyer(KeyerConfig{})
	src := greenImage(4, 4)

	cfg := DefaultConfig()

	out, keyed := k.Process(src, cfg, true)
	if keyed || out != image.Image(src) {
		t.Fatal("disabled keying should pass the source through")
	}

	cfg.Enabled = true

	out, keyed = k.Process(src, cfg, true)
	if !keyed {
		t.Fatal("expected keyed frame")
	}

	if a := out.(*image.NRGBA).NRGBAAt(0, 0).A; a != 0 {
		t.Errorf("expected transparent pixel, got %d", a)
	}

	if src.NRGBAAt(0, 0).A != 255 {
		t.Error("source was modified")
	}

	again, _ := k.Process(src, cfg, true)
	if again != out {
		t.Error("still frame should come from the cache")
	}

	cfg.Threshold = 0.1
	changed, _ := k.Process(src, cfg, true)
	if changed == out {
		t.Error("config change should re-key")
	}

	video1, _ := k.Process(src, cfg, false)
	video2, _ := k.Process(src, cfg, false)
	if video1 == video2 {
		t.Error("video frames should be keyed every time")
	}

	if out, keyed := k.Process(nil, cfg, false); out != nil || keyed {
		t.Error("missing frame should be skipped")
	}
}
