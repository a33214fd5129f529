package compositor

import (
	"context"
	"io"
	"math"
	"testing"
	"time"

	"github.com/noriah/catvj/audio"
	"github.com/noriah/catvj/dsp"
	"github.com/noriah/catvj/effect"
	"github.com/noriah/catvj/gesture"
	"github.com/noriah/catvj/layer"
	"github.com/noriah/catvj/overlay"

	"github.com/sirupsen/logrus"
)

var epoch = time.UnixMilli(1700000000000)

func fixedClock() time.Time { return epoch }

func quietLogger() logrus.FieldLogger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

var _ audio.Source = (*countingSource)(nil)

// countingSource counts window reads and closes.
type countingSource struct {
	reads  int
	closed int
}

func (cs *countingSource) Window(dst []float64) error {
	cs.reads++
	for i := range dst {
		dst[i] = math.Sin(2 * math.Pi * 8 * float64(i) / float64(len(dst)))
	}
	return nil
}

func (cs *countingSource) Close() error {
	cs.closed++
	return nil
}

type frameRecorder struct {
	frames []Frame
}

func (fr *frameRecorder) Write(f Frame) error {
	fr.frames = append(fr.frames, f)
	return nil
}

func (fr *frameRecorder) last() Frame {
	return fr.frames[len(fr.frames)-1]
}

func newTestLoop(t *testing.T, cfg Config) (*Loop, *frameRecorder) {
	t.Helper()

	rec := &frameRecorder{}
	cfg.Output = rec
	cfg.Clock = fixedClock
	cfg.Logger = quietLogger()

	lp := New(cfg)
	lp.Start(context.Background())

	return lp, rec
}

func addLayers(t *testing.T, lp *Loop, ids ...string) {
	t.Helper()
	for _, id := range ids {
		if err := lp.AddLayer(layer.New(id, id, layer.KindImage), nil); err != nil {
			t.Fatal(err)
		}
	}
}

func TestTickNeedsStart(t *testing.T) {
	lp := New(Config{Logger: quietLogger()})

	if lp.State() != Idle {
		t.Fatalf("expected idle, got %s", lp.State())
	}

	if lp.Tick() {
		t.Error("tick ran on an idle loop")
	}
}

func TestTickFrame(t *testing.T) {
	lp, rec := newTestLoop(t, Config{})
	addLayers(t, lp, "a", "b", "c")

	lp.Stack().Update("b", func(l *layer.Layer) { l.Visible = false })

	if !lp.Tick() {
		t.Fatal("tick did not run")
	}

	f := rec.last()

	if f.Mode != DefaultMode || !f.Idle {
		t.Errorf("unexpected mode %q idle %v", f.Mode, f.Idle)
	}

	if f.Gesture.Shape != gesture.ShapeCircle {
		t.Errorf("idle gesture should be a circle, got %s", f.Gesture.Shape)
	}

	if len(f.Layers) != 2 || f.Layers[0].LayerID != "a" || f.Layers[1].LayerID != "c" {
		t.Fatalf("unexpected layers %+v", f.Layers)
	}

	want := effect.Compute(DefaultMode, f.Gesture, f.Bands, epoch)
	if f.Effect != want {
		t.Errorf("effect params differ:\n%s\n%s", f.Effect, want)
	}

	got, _ := lp.Stack().Get("a")
	if got.Last != f.Layers[0] {
		t.Error("resolved params were not published to the stack")
	}
}

func TestSingleSamplePerTick(t *testing.T) {
	lp, rec := newTestLoop(t, Config{})
	src := &countingSource{}

	if err := lp.AddLayer(layer.New("music", "music", layer.KindAudio), src); err != nil {
		t.Fatal(err)
	}
	addLayers(t, lp, "a", "b", "c", "d")

	for i := 0; i < 3; i++ {
		lp.Tick()
	}

	if src.reads != 3 {
		t.Errorf("expected 3 reads, got %d", src.reads)
	}

	// every layer in a tick sees the same bands
	want := layer.Resolve(layer.New("a", "a", layer.KindImage), rec.last().Bands, rec.last().Effect)
	for _, rp := range rec.last().Layers[1:] {
		want.LayerID = rp.LayerID
		if rp != want {
			t.Errorf("layer %s resolved against different inputs", rp.LayerID)
		}
	}
}

func TestFailingLayerSkipped(t *testing.T) {
	resolver := func(l *layer.Layer, bands dsp.Bands, fx effect.Params) layer.RenderParams {
		if l.ID == "bad" {
			panic("broken media")
		}
		return layer.Resolve(l, bands, fx)
	}

	lp, rec := newTestLoop(t, Config{Resolver: resolver})
	addLayers(t, lp, "a", "bad", "c")

	if !lp.Tick() {
		t.Fatal("tick did not run")
	}

	layers := rec.last().Layers
	if len(layers) != 2 || layers[0].LayerID != "a" || layers[1].LayerID != "c" {
		t.Errorf("expected a and c, got %+v", layers)
	}
}

func TestPendingGesture(t *testing.T) {
	lp, rec := newTestLoop(t, Config{Mode: "glitch"})
	tr := lp.Tracker()

	id := tr.BeginStroke(gesture.Point{X: 0.1, Y: 0.5, Time: epoch})
	for i := 1; i < 20; i++ {
		tr.ExtendStroke(id, gesture.Point{
			X:    0.1 + 0.04*float64(i),
			Y:    0.5,
			Time: epoch.Add(time.Duration(i) * 10 * time.Millisecond),
		})
	}
	tr.EndStroke(id)

	lp.Tick()

	f := rec.last()
	if f.Idle || f.Gesture.Shape != gesture.ShapeLine {
		t.Errorf("expected the pending line, got %s idle %v", f.Gesture.Shape, f.Idle)
	}

	if f.Mode != "glitch" {
		t.Errorf("unexpected mode %q", f.Mode)
	}
}

func TestStop(t *testing.T) {
	lp, _ := newTestLoop(t, Config{})
	src := &countingSource{}

	lp.AddLayer(layer.New("music", "music", layer.KindAudio), src)
	lp.Tracker().BeginStroke(gesture.Point{X: 0.5, Y: 0.5})

	if !lp.Tick() {
		t.Fatal("tick did not run")
	}

	lp.Stop()
	lp.Stop()

	if lp.State() != Idle {
		t.Error("loop still running after stop")
	}

	if lp.Tick() {
		t.Error("tick ran after stop")
	}

	if src.closed != 1 {
		t.Errorf("expected the source closed once, got %d", src.closed)
	}

	if lp.Tracker().Active() != 0 {
		t.Error("tracker still holds strokes")
	}

	ctx := lp.Start(context.Background())
	if ctx.Err() == nil || lp.State() != Idle {
		t.Error("a stopped loop should not restart")
	}
}

func TestRemoveLayerLive(t *testing.T) {
	lp, rec := newTestLoop(t, Config{})
	src := &countingSource{}

	lp.AddLayer(layer.New("music", "music", layer.KindAudio), src)
	addLayers(t, lp, "a")

	lp.Tick()

	if !lp.RemoveLayer("music") {
		t.Fatal("layer not removed")
	}

	if src.closed != 1 || len(lp.Analyzer().Connected()) != 0 {
		t.Error("audio source was not disconnected")
	}

	if !lp.Tick() {
		t.Fatal("loop stopped after removing a layer")
	}

	if f := rec.last(); len(f.Layers) != 1 || f.Bands != (dsp.Bands{}) {
		t.Errorf("unexpected frame after removal: %+v", f)
	}
}

func TestModes(t *testing.T) {
	lp := New(Config{Mode: "nope", Logger: quietLogger()})

	if lp.Mode() != DefaultMode {
		t.Errorf("unknown mode should fall back, got %q", lp.Mode())
	}

	if lp.SetMode("nope") {
		t.Error("unknown mode accepted")
	}

	if !lp.SetMode("strobe") || lp.Mode() != "strobe" {
		t.Error("strobe not selected")
	}

	names := effect.Names()
	first := lp.CycleMode(-len(names))
	if first != "strobe" {
		t.Errorf("full cycle should come back to strobe, got %q", first)
	}

	lp.SetMode(names[0])
	if got := lp.CycleMode(-1); got != names[len(names)-1] {
		t.Errorf("expected wrap to %q, got %q", names[len(names)-1], got)
	}
}

func TestOverlay(t *testing.T) {
	canvas := overlay.NewCanvas(overlay.Config{Kind: overlay.KindRipples})
	lp, rec := newTestLoop(t, Config{Overlay: canvas})

	lp.Touch(10, 10)
	lp.Tick()

	if n := len(rec.last().Overlay.Ripples); n != 1 {
		t.Fatalf("expected one ripple, got %d", n)
	}

	if r := rec.last().Overlay.Ripples[0]; r.Radius != r.Speed {
		t.Errorf("ripple should have stepped once, radius %f", r.Radius)
	}
}

func TestTransition(t *testing.T) {
	lp, rec := newTestLoop(t, Config{Transition: 6, Mode: "smooth"})
	addLayers(t, lp, "a")

	lp.Tick()
	before := rec.last().Layers[0].Geometry.ScaleX

	lp.Stack().Update("a", func(l *layer.Layer) { l.Scale *= 2 })
	lp.Tick()

	got := rec.last().Layers[0].Geometry.ScaleX
	if !(got > before && got < 2*before) {
		t.Errorf("expected eased scale between %f and %f, got %f", before, 2*before, got)
	}

	if rec.last().Layers[0].Transform != layer.TransformString(rec.last().Layers[0].Geometry) {
		t.Error("transform string not recomposed")
	}
}

func TestShortestTurn(t *testing.T) {
	tests := []struct{ a, b, want float64 }{
		{0, 90, 90},
		{350, 10, 20},
		{10, 350, -20},
		{0, 180, 180},
		{180, 0, 180},
	}

	for _, test := range tests {
		if got := shortestTurn(test.a, test.b); math.Abs(got-test.want) > 1e-9 {
			t.Errorf("shortestTurn(%v, %v) = %v, want %v", test.a, test.b, got, test.want)
		}
	}
}

func TestRunStops(t *testing.T) {
	lp := New(Config{Clock: fixedClock, FrameRate: 1000, Logger: quietLogger()})
	ctx := lp.Start(context.Background())

	done := make(chan error, 1)
	go func() { done <- lp.Run(ctx, nil) }()

	time.Sleep(10 * time.Millisecond)
	lp.Stop()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("unexpected error %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("run did not return after stop")
	}
}

func BenchmarkTick(b *testing.B) {
	lp := New(Config{Clock: fixedClock, Logger: quietLogger()})
	lp.Start(context.Background())

	lp.AddLayer(layer.New("music", "music", layer.KindAudio), &countingSource{})
	for _, id := range []string{"a", "b", "c", "d"} {
		lp.AddLayer(layer.New(id, id, layer.KindVideo), nil)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		lp.Tick()
	}
}
