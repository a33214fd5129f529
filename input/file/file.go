// Package file decodes audio files into clips for audio layers.
package file

import (
	"encoding/binary"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
	"github.com/pkg/errors"
)

// ErrUnsupported is returned for file types we can not decode.
var ErrUnsupported = errors.New("unsupported audio file type")

// Clip is a decoded mono clip with samples in [-1, 1].
type Clip struct {
	Name       string
	Samples    []float64
	SampleRate float64
	Channels   int // channel count of the source before the down-mix
}

// Duration returns the length of the clip in seconds.
func (c *Clip) Duration() float64 {
	if c == nil || c.SampleRate <= 0 {
		return 0
	}
	return float64(len(c.Samples)) / c.SampleRate
}

// Decode reads a .wav or .mp3 file from path.
func Decode(path string) (*Clip, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open audio file")
	}
	defer f.Close()

	var clip *Clip

	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		clip, err = DecodeWAV(f)
	case ".mp3":
		clip, err = DecodeMP3(f)
	default:
		return nil, errors.Wrapf(ErrUnsupported, "%q", path)
	}

	if err != nil {
		return nil, errors.Wrapf(err, "failed to decode %q", path)
	}

	clip.Name = filepath.Base(path)
	return clip, nil
}

// DecodeWAV decodes PCM wave data.
func DecodeWAV(r io.ReadSeeker) (*Clip, error) {
	decoder := wav.NewDecoder(r)
	if !decoder.IsValidFile() {
		return nil, errors.New("invalid WAV file")
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, errors.Wrap(err, "failed to read pcm data")
	}

	bitDepth := int(decoder.SampleBitDepth())
	if bitDepth == 0 {
		return nil, errors.New("unknown bit depth")
	}

	channels := buf.Format.NumChannels
	if channels < 1 {
		return nil, errors.New("no channels")
	}

	floatBuf := buf.AsFloatBuffer()
	factor := math.Pow(2, float64(bitDepth-1))

	// 8 bit wave data is unsigned
	var offset float64
	if bitDepth == 8 {
		offset = factor
	}

	frames := len(floatBuf.Data) / channels
	clip := &Clip{
		Samples:    make([]float64, frames),
		SampleRate: float64(buf.Format.SampleRate),
		Channels:   channels,
	}

	for i := 0; i < frames; i++ {
		var sum float64
		for c := 0; c < channels; c++ {
			sum += (floatBuf.Data[i*channels+c] - offset) / factor
		}
		clip.Samples[i] = clamp(sum / float64(channels))
	}

	return clip, nil
}

// DecodeMP3 decodes an mp3 stream. go-mp3 always produces 16 bit stereo.
func DecodeMP3(r io.Reader) (*Clip, error) {
	decoder, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create mp3 decoder")
	}

	const channels = 2

	clip := &Clip{
		SampleRate: float64(decoder.SampleRate()),
		Channels:   channels,
	}

	if n := decoder.Length(); n > 0 {
		clip.Samples = make([]float64, 0, n/(2*channels))
	}

	var frame [2]int16
	for {
		err := binary.Read(decoder, binary.LittleEndian, &frame)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				break
			}
			return nil, errors.Wrap(err, "failed to read mp3 frame")
		}

		sum := float64(frame[0])/32768 + float64(frame[1])/32768
		clip.Samples = append(clip.Samples, clamp(sum/channels))
	}

	return clip, nil
}

func clamp(v float64) float64 {
	switch {
	case v < -1:
		return -1
	case v > 1:
		return 1
	}
	return v
}
