package compositor

import (
	"image"
	"image/gif"
	"sync"
	"time"

	"github.com/noriah/catvj/chroma"
	"github.com/noriah/catvj/layer"
	"github.com/sirupsen/logrus"
)

// keying holds one chroma keyer per layer so still images are keyed once
// and then served from the keyer's cache.
type keying struct {
	mu     sync.Mutex
	maxDim int
	log    logrus.FieldLogger
	keyers map[string]*chroma.Keyer
}

func newKeying(maxDim int, log logrus.FieldLogger) *keying {
	return &keying{
		maxDim: maxDim,
		log:    log,
		keyers: make(map[string]*chroma.Keyer),
	}
}

// frame returns the keyed frame l shows at now. It is nil when keying is
// off for l, l has no pixels, or the frame is not ready.
func (k *keying) frame(l *layer.Layer, now time.Time) image.Image {
	if !l.Chroma.Enabled || !l.Kind.Visual() {
		k.drop(l.ID)
		return nil
	}

	src, still := MediaFrame(l.Media, now)
	if src == nil {
		return nil
	}

	// only image layers hold still pixels, anything else may repaint
	// the same buffer between ticks
	still = still && l.Kind == layer.KindImage

	k.mu.Lock()
	defer k.mu.Unlock()

	keyer, ok := k.keyers[l.ID]
	if !ok {
		keyer = chroma.NewKeyer(chroma.KeyerConfig{
			MaxDim: k.maxDim,
			Logger: k.log.WithField("layer", l.ID),
		})
		k.keyers[l.ID] = keyer
	}

	out, ok := keyer.Process(src, l.Chroma, still)
	if !ok {
		return nil
	}

	return out
}

func (k *keying) drop(id string) {
	k.mu.Lock()
	delete(k.keyers, id)
	k.mu.Unlock()
}

func (k *keying) reset() {
	k.mu.Lock()
	k.keyers = make(map[string]*chroma.Keyer)
	k.mu.Unlock()
}

// FrameSource is media that decodes its own frames, like a playing video.
// Frame returns nil until the first frame is ready.
type FrameSource interface {
	Frame() image.Image
}

// MediaFrame picks the image media shows at now and reports whether it is a
// still. Animated GIFs loop on their frame delays.
func MediaFrame(media interface{}, now time.Time) (image.Image, bool) {
	switch m := media.(type) {
	case FrameSource:
		if f := m.Frame(); f != nil {
			return f, false
		}
	case *gif.GIF:
		if f := gifFrame(m, now); f != nil {
			return f, false
		}
	case image.Image:
		return m, true
	}

	return nil, false
}

func gifFrame(g *gif.GIF, now time.Time) image.Image {
	count := len(g.Image)
	if count == 0 {
		return nil
	}

	// delays are in hundredths of a second
	total := 0
	for i := 0; i < count && i < len(g.Delay); i++ {
		total += g.Delay[i]
	}

	if total <= 0 {
		return g.Image[0]
	}

	pos := int((now.UnixMilli() / 10) % int64(total))
	for i := 0; i < count && i < len(g.Delay); i++ {
		if pos < g.Delay[i] {
			return g.Image[i]
		}
		pos -= g.Delay[i]
	}

	return g.Image[count-1]
}
