//go:build js

package browser

import (
	"image"

	"github.com/noriah/catvj/compositor"

	"github.com/gopherjs/gopherjs/js"
)

// HTMLMediaElement.HAVE_CURRENT_DATA
const haveCurrentData = 2

// VideoFrames reads the frame a video element is showing through an
// offscreen canvas so it can be keyed.
type VideoFrames struct {
	video  *js.Object
	canvas *js.Object
	ctx    *js.Object
	maxDim int
	frame  *image.NRGBA
}

var _ compositor.FrameSource = (*VideoFrames)(nil)

// NewVideoFrames reads frames from video, scaled so neither side exceeds
// maxDim. A maxDim of 0 keeps the video size.
func NewVideoFrames(video *js.Object, maxDim int) *VideoFrames {
	canvas := js.Global.Get("document").Call("createElement", "canvas")
	return &VideoFrames{
		video:  video,
		canvas: canvas,
		ctx:    canvas.Call("getContext", "2d", js.M{"willReadFrequently": true}),
		maxDim: maxDim,
	}
}

// Frame grabs the current frame. It is nil until the video has data.
func (v *VideoFrames) Frame() image.Image {
	if v.video.Get("readyState").Int() < haveCurrentData {
		return nil
	}

	w, h := FitSize(v.video.Get("videoWidth").Int(), v.video.Get("videoHeight").Int(), v.maxDim)
	if w == 0 || h == 0 {
		return nil
	}

	if v.frame == nil || v.frame.Rect.Dx() != w || v.frame.Rect.Dy() != h {
		v.canvas.Set("width", w)
		v.canvas.Set("height", h)
		v.frame = image.NewNRGBA(image.Rect(0, 0, w, h))
	}

	v.ctx.Call("drawImage", v.video, 0, 0, w, h)
	data := v.ctx.Call("getImageData", 0, 0, w, h)

	// canvas pixels are straight alpha RGBA, the same layout as NRGBA
	js.InternalObject(v.frame.Pix).Get("$array").Call("set", data.Get("data"))

	return v.frame
}
