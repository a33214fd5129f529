// Package overlay simulates touch effects drawn above the layers:
// particles, ripples, trails and paint.
package overlay

import (
	"math"
	"strings"
	"time"

	"github.com/noriah/catvj/common/seed"
	"github.com/noriah/catvj/dsp"
)

// Kind is what a touch spawns.
type Kind int

const (
	KindParticles Kind = iota
	KindTrails
	KindRipples
	KindPaint
	KindKaleidoscope
)

var kindNames = [...]string{
	KindParticles:    "particles",
	KindTrails:       "trails",
	KindRipples:      "ripples",
	KindPaint:        "paint",
	KindKaleidoscope: "kaleidoscope",
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
	return KindParticles, false
}

const (
	gravity   = 0.2
	segments  = 8
	trailSize = 5
	paintSize = 20
)

// Particle is a spark that falls and fades.
type Particle struct {
	X, Y     float64
	VX, VY   float64
	Life     float64 // 1 when spawned, removed at 0
	Decay    float64 // life lost per step
	Size     float64
	Hue      float64
	Reactive bool // grows with the bass
}

// Ripple is an expanding ring.
type Ripple struct {
	X, Y      float64
	Radius    float64
	MaxRadius float64
	Speed     float64 // radius gained per step
	Hue       float64
}

// Alpha returns the ring opacity.
func (r Ripple) Alpha() float64 {
	if r.MaxRadius <= 0 {
		return 0
	}
	return math.Max(0, 1-r.Radius/r.MaxRadius)
}

// Dot is a trail point or a paint dab.
type Dot struct {
	X, Y  float64
	Size  float64
	Hue   float64
	Alpha float64
}

type Config struct {
	Kind         Kind
	Width        float64 // surface size in pixels
	Height       float64
	MaxParticles int
	MaxRipples   int
	MaxDots      int
	Seed         uint32
}

// Snapshot is a copy of everything on the canvas.
type Snapshot struct {
	Kind      Kind
	Particles []Particle
	Ripples   []Ripple
	Dots      []Dot
}

// Canvas holds the live effect records. It is not safe for concurrent use.
type Canvas struct {
	cfg Config
	rng *seed.RNG

	particles pool[Particle]
	ripples   pool[Ripple]
	dots      []Dot
}

func NewCanvas(cfg Config) *Canvas {
	if cfg.MaxParticles <= 0 {
		cfg.MaxParticles = 2000
	}
	if cfg.MaxRipples <= 0 {
		cfg.MaxRipples = 64
	}
	if cfg.MaxDots <= 0 {
		cfg.MaxDots = 500
	}

	return &Canvas{
		cfg:       cfg,
		rng:       seed.New(cfg.Seed),
		particles: newPool[Particle](cfg.MaxParticles),
		ripples:   newPool[Ripple](cfg.MaxRipples),
		dots:      make([]Dot, 0, cfg.MaxDots),
	}
}

// Kind returns what touches currently spawn.
func (c *Canvas) Kind() Kind {
	return c.cfg.Kind
}

// SetKind changes what touches spawn. Existing records stay.
func (c *Canvas) SetKind(k Kind) {
	c.cfg.Kind = k
}

// Touch spawns effects at pixel position x, y.
func (c *Canvas) Touch(x, y float64, bands dsp.Bands, now time.Time) {
	bands = bands.Clamp()
	clock := float64(now.UnixMilli()) / 10

	switch c.cfg.Kind {
	case KindParticles:
		c.spawnParticles(x, y, bands, clock)

	case KindKaleidoscope:
		cx, cy := c.cfg.Width/2, c.cfg.Height/2
		rx, ry := x-cx, y-cy
		for i := 0; i < segments; i++ {
			sin, cos := math.Sincos(2 * math.Pi / segments * float64(i))
			c.spawnParticles(cx+rx*cos-ry*sin, cy+rx*sin+ry*cos, bands, clock)
		}

	case KindTrails:
		c.addDot(Dot{
			X:     x,
			Y:     y,
			Size:  trailSize + bands.Overall*10,
			Hue:   math.Mod(clock, 360),
			Alpha: 1,
		})

	case KindPaint:
		c.addDot(Dot{
			X:     x,
			Y:     y,
			Size:  paintSize + bands.Bass*40,
			Hue:   math.Mod(clock+bands.Mid*180, 360),
			Alpha: 0.8,
		})

	case KindRipples:
		r := c.ripples.acquire()
		if r == nil {
			return
		}
		*r = Ripple{
			X:         x,
			Y:         y,
			MaxRadius: 100 + bands.Overall*200,
			Speed:     2 + bands.Bass*5,
			Hue:       math.Mod(clock, 360),
		}
	}
}

func (c *Canvas) spawnParticles(x, y float64, bands dsp.Bands, clock float64) {
	count := 10 + int(bands.Bass*20)

	for i := 0; i < count; i++ {
		p := c.particles.acquire()
		if p == nil {
			return
		}

		*p = Particle{
			X:        x,
			Y:        y,
			VX:       c.rng.Range(-5, 5),
			VY:       c.rng.Range(-5, 5),
			Life:     1,
			Decay:    c.rng.Range(0.01, 0.03),
			Size:     2 + c.rng.Range(0, 4) + bands.Overall*6,
			Hue:      math.Mod(clock+c.rng.Range(0, 60), 360),
			Reactive: bands.Bass > 0.5,
		}
	}
}

// addDot appends a dot, dropping the oldest when full.
func (c *Canvas) addDot(d Dot) {
	if len(c.dots) >= c.cfg.MaxDots {
		copy(c.dots, c.dots[1:])
		c.dots = c.dots[:len(c.dots)-1]
	}
	c.dots = append(c.dots, d)
}

// Step advances every record by one frame.
func (c *Canvas) Step(bands dsp.Bands) {
	bands = bands.Clamp()

	c.particles.each(func(p *Particle) bool {
		return StepParticle(p, bands)
	})

	c.ripples.each(func(r *Ripple) bool {
		return StepRipple(r)
	})
}

// StepParticle moves p by one frame and reports whether it is still alive.
func StepParticle(p *Particle, bands dsp.Bands) bool {
	p.X += p.VX
	p.Y += p.VY
	p.VY += gravity
	p.Life -= p.Decay

	if p.Reactive && bands.Bass > 0.5 {
		p.Size = 2 + bands.Bass*10
	}

	return p.Life > 0
}

// StepRipple grows r by one frame and reports whether it is still visible.
func StepRipple(r *Ripple) bool {
	r.Radius += r.Speed
	return r.Radius < r.MaxRadius
}

// Counts returns the number of live particles, ripples and dots.
func (c *Canvas) Counts() (particles, ripples, dots int) {
	return c.particles.len(), c.ripples.len(), len(c.dots)
}

// Clear removes every record.
func (c *Canvas) Clear() {
	c.particles.clear()
	c.ripples.clear()
	c.dots = c.dots[:0]
}

// Snapshot copies the current records.
func (c *Canvas) Snapshot() Snapshot {
	return Snapshot{
		Kind:      c.cfg.Kind,
		Particles: c.particles.snapshot(),
		Ripples:   c.ripples.snapshot(),
		Dots:      append([]Dot(nil), c.dots...),
	}
}
