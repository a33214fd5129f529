//go:build js

package browser

import (
	"image"
	"strconv"
	"time"

	"github.com/noriah/catvj/compositor"
	"github.com/noriah/catvj/effect"
	"github.com/noriah/catvj/gesture"
	"github.com/noriah/catvj/layer"
	"github.com/noriah/catvj/overlay"

	"github.com/gopherjs/gopherjs/js"
)

// Host binds a compositor loop to a stage element.
type Host struct {
	loop     *compositor.Loop
	stage    *js.Object
	effects  *js.Object // optional 2d canvas for the overlay
	elements map[string]*js.Object
	painted  map[string]image.Image // last keyed frame put on each canvas
	videos   map[string]*js.Object  // source video of canvases bound by BindVideo
	pointers *Pointers
	pinch    gesture.Pinch
	drag     gesture.Drag
	dragging string // layer moved by the drag
	rafID    int
	running  bool
}

var _ compositor.Output = (*Host)(nil)

// NewHost returns a host drawing into stage. effects may be nil.
func NewHost(stage, effects *js.Object) *Host {
	return &Host{
		stage:    stage,
		effects:  effects,
		elements: make(map[string]*js.Object),
		painted:  make(map[string]image.Image),
		videos:   make(map[string]*js.Object),
	}
}

// Attach connects the loop whose Output is h.
func (h *Host) Attach(loop *compositor.Loop) {
	h.loop = loop
	h.pointers = NewPointers(loop.Tracker())
}

// Bind associates a layer id with the element styled for it.
func (h *Host) Bind(id string, el *js.Object) {
	h.elements[id] = el
}

// videoMaxDim bounds the frames read back from bound videos.
const videoMaxDim = 480

// BindVideo shows a video layer on canvas so it can be keyed. The video
// element is hidden and stays the source; the layer reads its frames.
func (h *Host) BindVideo(id string, video, canvas *js.Object) {
	video.Get("style").Set("display", "none")
	h.elements[id] = canvas
	h.videos[id] = video

	h.loop.Stack().Update(id, func(l *layer.Layer) {
		l.Media = NewVideoFrames(video, videoMaxDim)
	})
}

// Unbind forgets a layer element and removes the layer from the loop.
func (h *Host) Unbind(id string) {
	delete(h.elements, id)
	delete(h.painted, id)
	delete(h.videos, id)
	h.loop.RemoveLayer(id)
}

// Start installs input handlers and schedules the first frame.
func (h *Host) Start() {
	h.setupInput()
	h.running = true
	h.rafID = js.Global.Call("requestAnimationFrame", h.frame).Int()
}

// Stop cancels the next frame and stops the loop.
func (h *Host) Stop() {
	h.running = false
	js.Global.Call("cancelAnimationFrame", h.rafID)
	h.loop.Stop()
}

func (h *Host) frame(float64) {
	if !h.running || !h.loop.Tick() {
		return
	}
	h.rafID = js.Global.Call("requestAnimationFrame", h.frame).Int()
}

// Write styles every bound element from the frame.
func (h *Host) Write(f compositor.Frame) error {
	seen := make(map[string]bool, len(f.Layers))

	for _, rp := range f.Layers {
		el, ok := h.elements[rp.LayerID]
		if !ok {
			continue
		}

		seen[rp.LayerID] = true

		if img, ok := rp.Keyed.(*image.NRGBA); ok {
			h.paintKeyed(rp.LayerID, el, img)
		} else if video, ok := h.videos[rp.LayerID]; ok {
			h.paintVideo(el, video)
		}

		style := el.Get("style")
		style.Set("display", "")
		for k, v := range Style(rp) {
			style.Call("setProperty", k, v)
		}
	}

	for id, el := range h.elements {
		if !seen[id] {
			el.Get("style").Set("display", "none")
		}
	}

	if h.effects != nil {
		h.drawOverlay(f.Overlay)
	}

	return nil
}

func (h *Host) rect() Rect {
	r := h.stage.Call("getBoundingClientRect")
	return Rect{
		Left:   r.Get("left").Float(),
		Top:    r.Get("top").Float(),
		Width:  r.Get("width").Float(),
		Height: r.Get("height").Float(),
	}
}

func (h *Host) point(event *js.Object) gesture.Point {
	return Normalize(event.Get("clientX").Float(), event.Get("clientY").Float(), h.rect(), time.Now())
}

func (h *Host) touch(event *js.Object) {
	r := h.rect()
	h.loop.Touch(event.Get("clientX").Float()-r.Left, event.Get("clientY").Float()-r.Top)
}

// topLayer returns the id of the topmost layer.
func (h *Host) topLayer() (string, bool) {
	layers := h.loop.Stack().Snapshot()
	if len(layers) == 0 {
		return "", false
	}
	return layers[len(layers)-1].ID, true
}

func (h *Host) setupInput() {
	h.stage.Call("addEventListener", "pointerdown", func(event *js.Object) {
		// ctrl drags the top layer instead of drawing
		if event.Get("ctrlKey").Bool() {
			h.beginDrag(event)
			return
		}

		id := event.Get("pointerId").Int()
		p := h.point(event)
		h.pointers.Down(id, p)
		h.touch(event)

		if h.pointers.Len() == 2 {
			h.pinch.End()
		}
	})

	h.stage.Call("addEventListener", "pointermove", func(event *js.Object) {
		if h.drag.Active() {
			h.moveDrag(event)
			return
		}

		id := event.Get("pointerId").Int()
		if h.pointers.Move(id, h.point(event)) {
			h.touch(event)
		}
	})

	end := func(event *js.Object) {
		h.pointers.Up(event.Get("pointerId").Int())
		h.pinch.End()
		h.drag.End()
	}
	h.stage.Call("addEventListener", "pointerup", end)
	h.stage.Call("addEventListener", "pointerleave", end)

	h.stage.Call("addEventListener", "pointercancel", func(event *js.Object) {
		h.pointers.Cancel(event.Get("pointerId").Int())
		h.pinch.End()
	})

	h.stage.Call("addEventListener", "touchmove", func(event *js.Object) {
		touches := event.Get("touches")
		if touches.Length() != 2 {
			return
		}

		event.Call("preventDefault")

		a := h.touchPoint(touches.Index(0))
		b := h.touchPoint(touches.Index(1))

		if !h.pinch.Active() {
			h.pinch.Begin(a, b)
			return
		}

		scale, rotation, ok := h.pinch.Move(a, b)
		if !ok {
			return
		}

		if id, ok := h.topLayer(); ok {
			h.loop.Stack().Update(id, func(l *layer.Layer) {
				layer.ApplyPinch(l, scale, rotation)
			})
		}
	})

	h.stage.Call("addEventListener", "wheel", func(event *js.Object) {
		event.Call("preventDefault")

		mod := layer.WheelScale
		switch {
		case event.Get("shiftKey").Bool():
			mod = layer.WheelRotate
		case event.Get("altKey").Bool():
			mod = layer.WheelBlur
		}

		if id, ok := h.topLayer(); ok {
			deltaY := event.Get("deltaY").Float()
			h.loop.Stack().Update(id, func(l *layer.Layer) {
				layer.ApplyWheel(l, mod, deltaY)
			})
		}
	})

	js.Global.Get("document").Call("addEventListener", "keydown", func(event *js.Object) {
		key := event.Get("key").String()

		switch key {
		case "ArrowLeft":
			h.loop.CycleMode(-1)
		case "ArrowRight":
			h.loop.CycleMode(1)
		default:
			if n, err := strconv.Atoi(key); err == nil && n >= 1 && n <= len(effect.Names()) {
				h.loop.SetMode(effect.Names()[n-1])
			}
		}
	})
}

func (h *Host) pixel(event *js.Object) gesture.Point {
	r := h.rect()
	return gesture.Point{
		X: event.Get("clientX").Float() - r.Left - r.Width/2,
		Y: event.Get("clientY").Float() - r.Top - r.Height/2,
	}
}

func (h *Host) beginDrag(event *js.Object) {
	id, ok := h.topLayer()
	if !ok {
		return
	}

	l, _ := h.loop.Stack().Get(id)
	h.dragging = id
	h.drag.Begin(h.pixel(event), l.Position.X, l.Position.Y)
}

func (h *Host) moveDrag(event *js.Object) {
	x, y, ok := h.drag.Move(h.pixel(event))
	if !ok {
		return
	}

	h.loop.Stack().Update(h.dragging, func(l *layer.Layer) {
		layer.MoveTo(l, x, y)
	})
}

func (h *Host) touchPoint(t *js.Object) gesture.Point {
	return Normalize(t.Get("clientX").Float(), t.Get("clientY").Float(), h.rect(), time.Now())
}

func (h *Host) drawOverlay(snap overlay.Snapshot) {
	ctx := h.effects.Call("getContext", "2d")
	ctx.Call("clearRect", 0, 0, h.effects.Get("width"), h.effects.Get("height"))

	for _, d := range snap.Dots {
		ctx.Set("fillStyle", hsla(d.Hue, d.Alpha))
		ctx.Call("beginPath")
		ctx.Call("arc", d.X, d.Y, d.Size/2, 0, 6.283185307179586)
		ctx.Call("fill")
	}

	for _, p := range snap.Particles {
		ctx.Set("fillStyle", hsla(p.Hue, p.Life))
		ctx.Call("beginPath")
		ctx.Call("arc", p.X, p.Y, p.Size, 0, 6.283185307179586)
		ctx.Call("fill")
	}

	ctx.Set("lineWidth", 3)
	for _, r := range snap.Ripples {
		ctx.Set("strokeStyle", hsla(r.Hue, r.Alpha()))
		ctx.Call("beginPath")
		ctx.Call("arc", r.X, r.Y, r.Radius, 0, 6.283185307179586)
		ctx.Call("stroke")
	}
}

// paintKeyed puts a keyed frame on a bound canvas element. Elements that are
// not canvases keep showing their own media.
func (h *Host) paintKeyed(id string, el *js.Object, img *image.NRGBA) {
	if el.Get("tagName").String() != "CANVAS" || h.painted[id] == image.Image(img) {
		return
	}

	b := img.Bounds()
	if el.Get("width").Int() != b.Dx() || el.Get("height").Int() != b.Dy() {
		el.Set("width", b.Dx())
		el.Set("height", b.Dy())
	}

	pix := js.Global.Get("Uint8ClampedArray").New(js.NewArrayBuffer(img.Pix))
	data := js.Global.Get("ImageData").New(pix, b.Dx(), b.Dy())
	el.Call("getContext", "2d").Call("putImageData", data, 0, 0)

	h.painted[id] = img
}

// paintVideo copies the current frame of an unkeyed video onto its canvas.
func (h *Host) paintVideo(el, video *js.Object) {
	if video.Get("readyState").Int() < haveCurrentData {
		return
	}

	width, height := FitSize(video.Get("videoWidth").Int(), video.Get("videoHeight").Int(), videoMaxDim)
	if width == 0 || height == 0 {
		return
	}

	if el.Get("width").Int() != width || el.Get("height").Int() != height {
		el.Set("width", width)
		el.Set("height", height)
	}

	el.Call("getContext", "2d").Call("drawImage", video, 0, 0, width, height)
}
