// Package chroma removes a key color from image frames.
package chroma

import (
	"fmt"
	"image"
	"math"
	"regexp"
	"strconv"
)

// RGB is a key color.
type RGB struct {
	R, G, B uint8
}

// Green is the key color used when none is given or it can not be parsed.
var Green = RGB{R: 0, G: 255, B: 0}

var hexColor = regexp.MustCompile(`^#?([[:xdigit:]]{2})([[:xdigit:]]{2})([[:xdigit:]]{2})$`)

// ParseKeyColor parses #rrggbb or rrggbb. Malformed input returns Green.
func ParseKeyColor(s string) RGB {
	m := hexColor.FindStringSubmatch(s)
	if m == nil {
		return Green
	}

	var out [3]uint8
	for i := range out {
		v, err := strconv.ParseUint(m[i+1], 16, 8)
		if err != nil {
			return Green
		}
		out[i] = uint8(v)
	}

	return RGB{R: out[0], G: out[1], B: out[2]}
}

// Hex formats the color as #rrggbb.
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func (c RGB) String() string {
	return c.Hex()
}

// Config is the keying setup of one layer.
type Config struct {
	Enabled    bool
	Key        RGB
	Threshold  float64 // [0, 1] of the max channel value
	Smoothness float64 // [0, 1] of the max channel value
}

// DefaultConfig returns a disabled green key.
func DefaultConfig() Config {
	return Config{
		Key:        Green,
		Threshold:  0.4,
		Smoothness: 0.1,
	}
}

// Clamp forces Threshold and Smoothness into [0, 1].
func (c Config) Clamp() Config {
	c.Threshold = unit(c.Threshold)
	c.Smoothness = unit(c.Smoothness)
	return c
}

func unit(v float64) float64 {
	switch {
	case !(v > 0):
		return 0
	case v > 1:
		return 1
	}
	return v
}

// Alpha returns the keyed alpha of one pixel. Pixels at least Threshold away
// from the key keep alpha. Closer pixels fade out over the last Smoothness of
// the threshold, reaching zero at Threshold-Smoothness and below.
func (c Config) Alpha(r, g, b, alpha uint8) uint8 {
	threshold := c.Threshold * 255
	smoothness := c.Smoothness * 255

	dr := float64(r) - float64(c.Key.R)
	dg := float64(g) - float64(c.Key.G)
	db := float64(b) - float64(c.Key.B)

	distance := math.Sqrt(dr*dr + dg*dg + db*db)

	if distance >= threshold {
		return alpha
	}

	if smoothness <= 0 {
		return 0
	}

	a := (distance - threshold + smoothness) / smoothness
	if a <= 0 {
		return 0
	}

	return uint8(a * 255)
}

// Apply keys img in place. It returns false without touching a pixel when
// keying is disabled or img is empty.
func Apply(img *image.NRGBA, cfg Config) bool {
	if !cfg.Enabled || img == nil || img.Rect.Empty() {
		return false
	}

	cfg = cfg.Clamp()

	width := img.Rect.Dx() * 4
	height := img.Rect.Dy()

	for y := 0; y < height; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+width]
		for i := 0; i < len(row); i += 4 {
			row[i+3] = cfg.Alpha(row[i], row[i+1], row[i+2], row[i+3])
		}
	}

	return true
}
