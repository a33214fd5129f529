package chroma

import (
	"image"
	"reflect"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	xdraw "golang.org/x/image/draw"
)

// ErrNotReady is returned for frames that have not been decoded yet.
var ErrNotReady = errors.New("frame not ready")

// Prepare copies src into a fresh NRGBA image, scaling it down so neither
// side exceeds maxDim. A maxDim of 0 keeps the source size.
func Prepare(src image.Image, maxDim int) (*image.NRGBA, error) {
	if src == nil {
		return nil, ErrNotReady
	}

	bounds := src.Bounds()
	if bounds.Empty() {
		return nil, ErrNotReady
	}

	w, h := bounds.Dx(), bounds.Dy()
	if maxDim > 0 && (w > maxDim || h > maxDim) {
		if w >= h {
			h = max(1, h*maxDim/w)
			w = maxDim
		} else {
			w = max(1, w*maxDim/h)
			h = maxDim
		}
	}

	dst := image.NewNRGBA(image.Rect(0, 0, w, h))

	if w == bounds.Dx() && h == bounds.Dy() {
		xdraw.Copy(dst, image.Point{}, src, bounds, xdraw.Src, nil)
	} else {
		xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, bounds, xdraw.Src, nil)
	}

	return dst, nil
}

type KeyerConfig struct {
	MaxDim int // largest side of a keyed frame, 0 for no limit
	Logger logrus.FieldLogger
}

// Keyer keys the frames of one layer. Still images behind a pointer are
// keyed once and served from a cache until the source or the config changes.
type Keyer struct {
	maxDim int
	log    logrus.FieldLogger

	cachedSrc image.Image
	cachedCfg Config
	cached    *image.NRGBA
}

func NewKeyer(cfg KeyerConfig) *Keyer {
	if cfg.Logger == nil {
		cfg.Logger = logrus.StandardLogger()
	}

	return &Keyer{
		maxDim: cfg.MaxDim,
		log:    cfg.Logger.WithField("component", "chroma"),
	}
}

// Process returns the frame to display for src and whether it was keyed.
// Disabled keying returns src untouched. A frame that is not ready returns
// nil and false; the caller skips it for this tick.
func (k *Keyer) Process(src image.Image, cfg Config, still bool) (image.Image, bool) {
	if !cfg.Enabled {
		return src, false
	}

	if still && k.cached != nil && sameImage(k.cachedSrc, src) && k.cachedCfg == cfg {
		return k.cached, true
	}

	frame, err := Prepare(src, k.maxDim)
	if err != nil {
		k.log.WithError(err).Debug("skipping frame")
		return nil, false
	}

	Apply(frame, cfg)

	if still {
		k.cachedSrc = src
		k.cachedCfg = cfg
		k.cached = frame
	} else {
		k.Reset()
	}

	return frame, true
}

// sameImage reports whether a and b point at the same image. Images held by
// value never match, they may not be comparable.
func sameImage(a, b image.Image) bool {
	if a == nil || b == nil {
		return false
	}

	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	return va.Kind() == reflect.Ptr && va.Type() == vb.Type() && va.Pointer() == vb.Pointer()
}

// Reset drops the cached still frame.
func (k *Keyer) Reset() {
	k.cachedSrc = nil
	k.cached = nil
	k.cachedCfg = Config{}
}
