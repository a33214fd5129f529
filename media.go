package catvj

import (
	"fmt"
	"image"
	"image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/noriah/catvj/audio"
	"github.com/noriah/catvj/chroma"
	"github.com/noriah/catvj/input/file"
	"github.com/noriah/catvj/layer"

	"github.com/pkg/errors"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrUnsupportedMedia is returned for files that can not become a layer.
var ErrUnsupportedMedia = errors.New("unsupported media type")

var mediaKinds = map[string]layer.Kind{
	".wav":  layer.KindAudio,
	".mp3":  layer.KindAudio,
	".png":  layer.KindImage,
	".jpg":  layer.KindImage,
	".jpeg": layer.KindImage,
	".webp": layer.KindImage,
	".bmp":  layer.KindImage,
	".tif":  layer.KindImage,
	".tiff": layer.KindImage,
	".gif":  layer.KindGIF,
	".mp4":  layer.KindVideo,
	".webm": layer.KindVideo,
	".mov":  layer.KindVideo,
}

// MediaKind returns the layer kind for a file name.
func MediaKind(path string) (layer.Kind, bool) {
	kind, ok := mediaKinds[strings.ToLower(filepath.Ext(path))]
	return kind, ok
}

// LoadMedia decodes path into a layer with id. Audio files also return the
// source to connect under that id.
func LoadMedia(path, id string, maxDim int, clock func() time.Time) (*layer.Layer, audio.Source, error) {
	kind, ok := MediaKind(path)
	if !ok {
		return nil, nil, errors.Wrapf(ErrUnsupportedMedia, "%s", path)
	}

	name := filepath.Base(path)
	l := layer.New(id, name, kind)

	switch kind {
	case layer.KindAudio:
		clip, err := file.Decode(path)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "failed to decode %s", name)
		}

		l.Media = clip
		return l, audio.NewClipSource(clip, clock), nil

	case layer.KindImage:
		img, err := decodeImage(path, maxDim)
		if err != nil {
			return nil, nil, err
		}

		l.Media = img
		return l, nil, nil

	case layer.KindGIF:
		f, err := os.Open(path)
		if err != nil {
			return nil, nil, errors.Wrap(err, "failed to open media")
		}
		defer f.Close()

		anim, err := gif.DecodeAll(f)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "failed to decode %s", name)
		}

		l.Media = anim
		return l, nil, nil
	}

	return nil, nil, errors.Wrapf(ErrUnsupportedMedia, "%s layers need a browser host", kind)
}

func decodeImage(path string, maxDim int) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open media")
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to decode %s", filepath.Base(path))
	}

	// keyed frames are always NRGBA, bounded in size
	out, err := chroma.Prepare(img, maxDim)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to prepare %s image", format)
	}

	return out, nil
}

// mediaID names the layer for the idx-th media file.
func mediaID(idx int, path string) string {
	return fmt.Sprintf("%d-%s", idx, filepath.Base(path))
}
