// Package compositor drives the per-frame pipeline: sample audio, pick a
// gesture, compute effect parameters, resolve every visible layer and hand
// the batch to an output.
package compositor

import (
	"context"
	"sync"
	"time"

	"github.com/noriah/catvj/audio"
	"github.com/noriah/catvj/dsp"
	"github.com/noriah/catvj/effect"
	"github.com/noriah/catvj/gesture"
	"github.com/noriah/catvj/layer"
	"github.com/noriah/catvj/overlay"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// DefaultMode is used when no mode is configured.
const DefaultMode = "psychedelic"

// Frame is everything resolved in one tick.
type Frame struct {
	Time    time.Time
	Bands   dsp.Bands
	Mode    string
	Gesture gesture.Event
	Idle    bool // Gesture was synthesized from audio
	Effect  effect.Params
	Layers  []layer.RenderParams
	Overlay overlay.Snapshot
}

// Output receives one frame per tick.
type Output interface {
	Write(Frame) error
}

// OutputFunc adapts a function to Output.
type OutputFunc func(Frame) error

func (fn OutputFunc) Write(f Frame) error {
	return fn(f)
}

// Resolver turns one layer into render parameters.
type Resolver func(l *layer.Layer, bands dsp.Bands, fx effect.Params) layer.RenderParams

// State of the loop.
type State int

const (
	Idle State = iota
	Running
)

func (s State) String() string {
	if s == Running {
		return "running"
	}
	return "idle"
}

type Config struct {
	Analyzer   *audio.Analyzer
	Tracker    *gesture.Tracker
	Stack      *layer.Stack
	Overlay    *overlay.Canvas // optional
	Output     Output          // optional
	Resolver   Resolver        // layer.Resolve if nil
	Mode       string          // effect mode name
	FrameRate  int             // ticks per second for Run
	Transition float64         // spring frequency for geometry easing, 0 disables
	KeyMaxDim  int             // largest side of a chroma keyed frame, 0 for no limit
	Clock      func() time.Time
	Logger     logrus.FieldLogger
}

// Loop is the compositor state machine. Tick is serialized, all other
// methods may be called from any goroutine between ticks.
type Loop struct {
	cfg Config
	log logrus.FieldLogger

	tickMu sync.Mutex // held for the whole tick

	mu        sync.Mutex
	state     State
	released  bool
	mode      string
	lastBands dsp.Bands
	cancel    context.CancelFunc

	springs *springs
	keying  *keying
}

func New(cfg Config) *Loop {
	if cfg.Analyzer == nil {
		cfg.Analyzer = audio.NewAnalyzer(audio.DefaultConfig())
	}

	if cfg.Tracker == nil {
		cfg.Tracker = gesture.NewTracker(gesture.TrackerConfig{Clock: cfg.Clock})
	}

	if cfg.Stack == nil {
		cfg.Stack = layer.NewStack()
	}

	if cfg.Resolver == nil {
		cfg.Resolver = layer.Resolve
	}

	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}

	if cfg.FrameRate <= 0 {
		cfg.FrameRate = 60
	}

	if cfg.Logger == nil {
		cfg.Logger = logrus.StandardLogger()
	}

	mode := cfg.Mode
	if _, ok := effect.Lookup(mode); !ok {
		mode = DefaultMode
	}

	lp := &Loop{
		cfg:    cfg,
		log:    cfg.Logger,
		mode:   mode,
		keying: newKeying(cfg.KeyMaxDim, cfg.Logger),
	}

	if cfg.Transition > 0 {
		lp.springs = newSprings(cfg.FrameRate, cfg.Transition)
	}

	return lp
}

// Analyzer returns the audio analyzer sampled every tick.
func (lp *Loop) Analyzer() *audio.Analyzer { return lp.cfg.Analyzer }

// Tracker returns the gesture tracker read every tick.
func (lp *Loop) Tracker() *gesture.Tracker { return lp.cfg.Tracker }

// Stack returns the layer stack resolved every tick.
func (lp *Loop) Stack() *layer.Stack { return lp.cfg.Stack }

// Start moves the loop into Running and returns a context that is cancelled
// by Stop. A released loop stays Idle and the returned context is done.
func (lp *Loop) Start(ctx context.Context) context.Context {
	ctx, cancel := context.WithCancel(ctx)

	lp.mu.Lock()
	defer lp.mu.Unlock()

	if lp.released {
		cancel()
		return ctx
	}

	if lp.cancel != nil {
		lp.cancel()
	}

	lp.cancel = cancel
	lp.state = Running

	return ctx
}

// Stop halts the loop. When it returns no tick is in progress and none will
// start. The analyzer and tracker are released.
func (lp *Loop) Stop() {
	lp.mu.Lock()
	lp.state = Idle
	if lp.cancel != nil {
		lp.cancel()
		lp.cancel = nil
	}
	alreadyReleased := lp.released
	lp.released = true
	lp.mu.Unlock()

	// wait out a running tick
	lp.tickMu.Lock()
	defer lp.tickMu.Unlock()

	if alreadyReleased {
		return
	}

	lp.cfg.Analyzer.Close()
	lp.cfg.Tracker.Reset()

	if lp.cfg.Overlay != nil {
		lp.cfg.Overlay.Clear()
	}

	if lp.springs != nil {
		lp.springs.reset()
	}

	lp.keying.reset()
}

// State returns the current state.
func (lp *Loop) State() State {
	lp.mu.Lock()
	defer lp.mu.Unlock()
	return lp.state
}

// Mode returns the active effect mode name.
func (lp *Loop) Mode() string {
	lp.mu.Lock()
	defer lp.mu.Unlock()
	return lp.mode
}

// SetMode switches the effect mode. Unknown names are ignored.
func (lp *Loop) SetMode(name string) bool {
	if _, ok := effect.Lookup(name); !ok {
		return false
	}

	lp.mu.Lock()
	lp.mode = name
	lp.mu.Unlock()

	return true
}

// CycleMode moves to the next (or previous, for negative steps) mode in
// registry order and returns its name.
func (lp *Loop) CycleMode(step int) string {
	names := effect.Names()

	lp.mu.Lock()
	defer lp.mu.Unlock()

	cur := 0
	for i, n := range names {
		if n == lp.mode {
			cur = i
			break
		}
	}

	next := (cur + step) % len(names)
	if next < 0 {
		next += len(names)
	}

	lp.mode = names[next]
	return lp.mode
}

// AddLayer adds l to the top of the stack. Audio layers with a source are
// connected to the analyzer under the layer id.
func (lp *Loop) AddLayer(l *layer.Layer, src audio.Source) error {
	if err := lp.cfg.Stack.Add(l); err != nil {
		return errors.Wrapf(err, "failed to add layer %q", l.ID)
	}

	if src != nil && !lp.cfg.Analyzer.Connect(l.ID, src) {
		lp.log.WithField("layer", l.ID).Warn("audio source did not connect")
	}

	return nil
}

// RemoveLayer deletes a layer and disconnects its audio source, if any.
func (lp *Loop) RemoveLayer(id string) bool {
	lp.cfg.Analyzer.Disconnect(id)

	if lp.springs != nil {
		lp.springs.drop(id)
	}

	lp.keying.drop(id)

	return lp.cfg.Stack.Remove(id)
}

// Touch spawns overlay effects at a surface position in pixels, using the
// audio levels of the last tick.
func (lp *Loop) Touch(x, y float64) {
	if lp.cfg.Overlay == nil {
		return
	}

	lp.mu.Lock()
	bands := lp.lastBands
	lp.mu.Unlock()

	lp.tickMu.Lock()
	defer lp.tickMu.Unlock()

	lp.cfg.Overlay.Touch(x, y, bands, lp.cfg.Clock())
}

// Bands returns the audio levels sampled on the last tick.
func (lp *Loop) Bands() dsp.Bands {
	lp.mu.Lock()
	defer lp.mu.Unlock()
	return lp.lastBands
}

// Tick runs one frame. It returns false when the loop is not running.
func (lp *Loop) Tick() bool {
	lp.tickMu.Lock()
	defer lp.tickMu.Unlock()

	lp.mu.Lock()
	if lp.state != Running {
		lp.mu.Unlock()
		return false
	}
	mode := lp.mode
	lp.mu.Unlock()

	now := lp.cfg.Clock()

	// sampled once, shared by every layer this tick
	bands := lp.cfg.Analyzer.Sample()

	ev, ok := lp.cfg.Tracker.Pending(now)
	if !ok {
		ev = effect.IdleEvent(bands, now)
	}

	fx := effect.Compute(mode, ev, bands, now)

	layers := lp.cfg.Stack.Visible()
	params := make([]layer.RenderParams, 0, len(layers))

	for idx := range layers {
		rp, err := lp.resolve(&layers[idx], bands, fx, now)
		if err != nil {
			lp.log.WithFields(logrus.Fields{
				"layer": layers[idx].ID,
				"mode":  mode,
			}).WithError(err).Error("layer skipped")
			continue
		}

		if lp.springs != nil {
			rp.Geometry = lp.springs.ease(rp.LayerID, rp.Geometry)
			rp.Recompose()
		}

		params = append(params, rp)
	}

	lp.cfg.Stack.Publish(params)

	frame := Frame{
		Time:    now,
		Bands:   bands,
		Mode:    mode,
		Gesture: ev,
		Idle:    !ok,
		Effect:  fx,
		Layers:  params,
	}

	if lp.cfg.Overlay != nil {
		lp.cfg.Overlay.Step(bands)
		frame.Overlay = lp.cfg.Overlay.Snapshot()
	}

	lp.mu.Lock()
	lp.lastBands = bands
	lp.mu.Unlock()

	if lp.cfg.Output != nil {
		if err := lp.cfg.Output.Write(frame); err != nil {
			lp.log.WithError(err).Debug("output write failed")
		}
	}

	return true
}

// resolve isolates a single layer so a panic only loses that layer.
func (lp *Loop) resolve(l *layer.Layer, bands dsp.Bands, fx effect.Params, now time.Time) (rp layer.RenderParams, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("resolve panicked: %v", r)
		}
	}()

	rp = lp.cfg.Resolver(l, bands, fx)
	rp.Keyed = lp.keying.frame(l, now)

	return rp, nil
}

// Run ticks at the configured frame rate until ctx is done or the loop is
// stopped. A value on kickChan forces an early tick.
func (lp *Loop) Run(ctx context.Context, kickChan <-chan bool) error {
	dur := time.Second / time.Duration(lp.cfg.FrameRate)
	ticker := time.NewTicker(dur)
	defer ticker.Stop()

	for {
		if !lp.Tick() {
			return nil
		}

		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()
		case <-kickChan:
		case <-ticker.C:
		}
		ticker.Reset(dur)
	}
}
