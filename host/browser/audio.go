//go:build js

package browser

import (
	"github.com/noriah/catvj/audio"

	"github.com/gopherjs/gopherjs/js"
	"github.com/pkg/errors"
)

// MediaSource reads the time domain samples of a media element through a
// web audio AnalyserNode.
type MediaSource struct {
	node *js.Object
	buf  *js.Object
}

var _ audio.Source = (*MediaSource)(nil)

// NewMediaSource routes element through an analyser on ctx and on to the
// speakers.
func NewMediaSource(ctx, element *js.Object, fftSize int) (ms *MediaSource, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("failed to create media source: %v", r)
		}
	}()

	src := ctx.Call("createMediaElementSource", element)
	node := ctx.Call("createAnalyser")
	node.Set("fftSize", fftSize)

	src.Call("connect", node)
	node.Call("connect", ctx.Get("destination"))

	return &MediaSource{
		node: node,
		buf:  js.Global.Get("Float32Array").New(fftSize),
	}, nil
}

// Window copies the newest samples into dst.
func (ms *MediaSource) Window(dst []float64) error {
	ms.node.Call("getFloatTimeDomainData", ms.buf)

	n := ms.buf.Length()
	if n > len(dst) {
		n = len(dst)
	}

	for idx := 0; idx < n; idx++ {
		dst[idx] = ms.buf.Index(idx).Float()
	}

	for idx := n; idx < len(dst); idx++ {
		dst[idx] = 0
	}

	return nil
}

// Close disconnects the analyser.
func (ms *MediaSource) Close() error {
	ms.node.Call("disconnect")
	return nil
}
