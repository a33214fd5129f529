// Package graphic draws a terminal preview of the compositor output.
package graphic

import (
	"context"
	"fmt"
	"sync"

	"github.com/noriah/catvj/compositor"
	"github.com/noriah/catvj/dsp"
	"github.com/noriah/catvj/effect"
	"github.com/noriah/catvj/util"

	"github.com/nsf/termbox-go"
	"github.com/pkg/errors"
)

const (
	meterWidth   = 3
	meterSpace   = 1
	gaugeWidth   = 10
	nameWidth    = 14
	headerRows   = 1
	rateInterval = 30
)

var meterBands = [...]dsp.Band{dsp.BandBass, dsp.BandMid, dsp.BandHigh, dsp.BandOverall}

// ModeTarget receives mode changes from the keyboard.
type ModeTarget interface {
	SetMode(name string) bool
	CycleMode(step int) string
}

type PreviewConfig struct {
	Target ModeTarget // optional
	Styles Styles
}

// Preview is a compositor output drawing band meters and layer state to
// the terminal.
type Preview struct {
	cfg    PreviewConfig
	canvas Canvas

	mu      sync.Mutex
	rate    *util.Rate
	restore func()
}

var _ compositor.Output = (*Preview)(nil)

func NewPreview(cfg PreviewConfig) *Preview {
	return &Preview{
		cfg:    cfg,
		canvas: termboxCanvas{},
		rate:   util.NewRate(rateInterval),
	}
}

// SetTarget sets what the keyboard controls. Call it before Start.
func (p *Preview) SetTarget(t ModeTarget) {
	p.cfg.Target = t
}

// Init sets up the terminal. Call Close when done.
func (p *Preview) Init() error {
	restore, err := normalizeTerminal()
	if err != nil {
		return errors.Wrap(err, "failed to normalize terminal")
	}

	if err = termbox.Init(); err != nil {
		restore()
		return errors.Wrap(err, "failed to init termbox")
	}

	termbox.SetInputMode(termbox.InputEsc)
	termbox.HideCursor()
	termbox.Clear(p.cfg.Styles.Foreground, p.cfg.Styles.Background)

	p.restore = restore

	return nil
}

// Close restores the terminal.
func (p *Preview) Close() error {
	termbox.Close()

	if p.restore != nil {
		p.restore()
		p.restore = nil
	}

	return nil
}

// Start polls keyboard events until ctx is done. The returned context is
// cancelled when the user quits.
func (p *Preview) Start(ctx context.Context) context.Context {
	ctx, cancel := context.WithCancel(ctx)

	go func() {
		<-ctx.Done()
		termbox.Interrupt()
	}()

	go p.eventPoller(ctx, cancel)

	return ctx
}

func (p *Preview) eventPoller(ctx context.Context, cancel context.CancelFunc) {
	defer cancel()

	for {
		ev := termbox.PollEvent()

		select {
		case <-ctx.Done():
			return
		default:
		}

		if ev.Type != termbox.EventKey {
			continue
		}

		if p.HandleKey(ev.Key, ev.Ch) {
			return
		}
	}
}

// HandleKey applies a key press and reports whether the user asked to quit.
// Digits select modes, left and right cycle through them.
func (p *Preview) HandleKey(key termbox.Key, ch rune) (quit bool) {
	switch key {
	case termbox.KeyCtrlC, termbox.KeyEsc:
		return true
	case termbox.KeyArrowLeft:
		p.cycle(-1)
		return false
	case termbox.KeyArrowRight:
		p.cycle(1)
		return false
	}

	switch {
	case ch == 'q' || ch == 'Q':
		return true

	case ch >= '1' && ch <= '9':
		names := effect.Names()
		if idx := int(ch - '1'); idx < len(names) && p.cfg.Target != nil {
			p.cfg.Target.SetMode(names[idx])
		}
	}

	return false
}

func (p *Preview) cycle(step int) {
	if p.cfg.Target != nil {
		p.cfg.Target.CycleMode(step)
	}
}

// Write draws one frame.
func (p *Preview) Write(f compositor.Frame) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	fps := p.rate.Tick(float64(f.Time.UnixNano()) / 1e9)
	jitter := p.rate.Jitter()

	if err := termbox.Clear(p.cfg.Styles.Foreground, p.cfg.Styles.Background); err != nil {
		return errors.Wrap(err, "failed to clear screen")
	}

	p.render(p.canvas, f, fps, jitter)

	return termbox.Flush()
}

// render lays out a frame on c.
func (p *Preview) render(c Canvas, f compositor.Frame, fps, jitter float64) {
	width, height := c.Size()
	if width <= 0 || height <= headerRows+2 {
		return
	}

	fg, bg, accent := p.cfg.Styles.Foreground, p.cfg.Styles.Background, p.cfg.Styles.Accent

	gesture := f.Gesture.Shape.String()
	if f.Idle {
		gesture += " (idle)"
	}

	header := fmt.Sprintf("mode: %s  gesture: %s  layers: %d  fps: %.1f ±%.1fms",
		f.Mode, gesture, len(f.Layers), fps, jitter)
	drawText(c, 0, 0, width, header, accent, bg)

	// band meters on the left, labels on the last row
	bottom := height - 2
	meterHeight := bottom - headerRows + 1

	col := 0
	for _, band := range meterBands {
		drawMeter(c, col, bottom, meterWidth, meterHeight, f.Bands.Get(band), fg, bg)
		drawText(c, col, height-1, col+meterWidth, band.String(), accent, bg)
		col += meterWidth + meterSpace
	}

	// one row per layer, top of the stack first
	left := col + 1
	row := headerRows
	for idx := len(f.Layers) - 1; idx >= 0 && row < height-1; idx-- {
		rp := f.Layers[idx]

		name := rp.LayerID
		if len(name) > nameWidth-1 {
			name = name[:nameWidth-1]
		}

		drawText(c, left, row, left+nameWidth, name, fg, bg)
		if rp.Keyed != nil {
			c.SetCell(left+nameWidth-1, row, '*', accent, bg)
		}
		drawGauge(c, left+nameWidth, row, gaugeWidth, rp.Opacity, accent, bg)
		drawText(c, left+nameWidth+gaugeWidth+1, row, width, rp.Filter, fg, bg)

		row++
	}

	if s := f.Effect.String(); s != "" {
		drawText(c, left, height-1, width, s, fg, bg)
	}
}
