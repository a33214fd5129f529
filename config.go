package catvj

import (
	"context"

	"github.com/noriah/catvj/compositor"
	"github.com/noriah/catvj/dsp"
	"github.com/noriah/catvj/dsp/window"
	"github.com/noriah/catvj/effect"
	"github.com/noriah/catvj/overlay"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	// MaxChannelCount is the most capture channels mixed down
	MaxChannelCount = 2
	// MaxSampleSize is the largest capture buffer
	MaxSampleSize = 8192
	// MaxFFTSize is the largest analysis window
	MaxFFTSize = 32768
)

type (
	// SetupFunc is called before the pipeline is built
	SetupFunc func() error
	// StartFunc is called with the running loop before the first tick
	StartFunc func(ctx context.Context, loop *compositor.Loop) (context.Context, error)
	// CleanupFunc is called after the loop stops
	CleanupFunc func() error
)

type Config struct {
	// The name of the capture backend from the input package, empty for none
	Backend string
	// The name of the device to capture from, empty for the default
	Device string
	// The rate that samples are read
	SampleRate float64
	// The number of samples per capture batch
	SampleSize int
	// The number of channels to capture and mix down
	ChannelCount int

	// The number of samples per analysis window, a power of two
	FFTSize int
	// Window function name from dsp/window
	Window string
	// Fractions of the bins that end the bass and mid bands
	BassEnd float64
	MidEnd  float64
	// Analyzer time smoothing [0, 1)
	SmoothingFactor float64
	// Decibel range mapped onto band levels
	MinDecibels float64
	MaxDecibels float64

	// The number of ticks per second
	FrameRate int
	// Effect mode name
	Mode string
	// Spring frequency easing layer geometry, 0 disables
	Transition float64

	// Overlay kind name, empty for none
	Overlay string
	// Overlay surface size in pixels
	OverlayWidth  float64
	OverlayHeight float64

	// MIDI input port name fragment, empty for none
	MidiPort string

	// Media files loaded as layers, bottom first
	Media []string
	// Largest image side kept after loading, 0 keeps the original size
	MaxImageDim int

	// Function to call when setting up the pipeline
	SetupFunc SetupFunc
	// Function to call when starting the pipeline
	StartFunc StartFunc
	// Function to call when cleaning up the pipeline
	CleanupFunc CleanupFunc
	// Where to send each resolved frame
	Output compositor.Output
	// Logger for the pipeline, the standard logger if nil
	Logger logrus.FieldLogger
}

func NewZeroConfig() Config {
	split := dsp.DefaultBandSplit()
	spec := dsp.DefaultAnalyzerConfig()

	return Config{
		SampleRate:      44100,
		SampleSize:      1024,
		ChannelCount:    2,
		FFTSize:         spec.SampleSize,
		Window:          "blackman",
		BassEnd:         split.BassEnd,
		MidEnd:          split.MidEnd,
		SmoothingFactor: spec.SmoothingFactor,
		MinDecibels:     spec.MinDecibels,
		MaxDecibels:     spec.MaxDecibels,
		FrameRate:       60,
		Mode:            compositor.DefaultMode,
		OverlayWidth:    1280,
		OverlayHeight:   720,
		MaxImageDim:     1920,
	}
}

func (cfg *Config) Validate() error {
	if cfg.Backend != "" {
		if cfg.SampleRate < float64(cfg.SampleSize) {
			return errors.New("sample rate lower than sample size")
		}

		switch {
		case cfg.SampleSize < 4:
			return errors.New("sample size too small (4+ required)")

		case cfg.SampleSize > MaxSampleSize:
			return errors.Errorf("sample size too large (%d max)", MaxSampleSize)

		case cfg.ChannelCount > MaxChannelCount:
			return errors.Errorf("too many channels (%d max)", MaxChannelCount)

		case cfg.ChannelCount < 1:
			return errors.New("too few channels (1 min)")
		}
	}

	switch {
	case cfg.FFTSize < 4 || cfg.FFTSize&(cfg.FFTSize-1) != 0:
		return errors.Errorf("fft size must be a power of two (4+), got %d", cfg.FFTSize)

	case cfg.FFTSize > MaxFFTSize:
		return errors.Errorf("fft size too large (%d max)", MaxFFTSize)

	case !validWindow(cfg.Window):
		return errors.Errorf("unknown window %q", cfg.Window)

	case cfg.FrameRate < 1:
		return errors.New("frame rate too low (1 min)")

	case !(cfg.BassEnd > 0 && cfg.BassEnd < cfg.MidEnd && cfg.MidEnd < 1):
		return errors.Errorf("band split must satisfy 0 < bass (%v) < mid (%v) < 1",
			cfg.BassEnd, cfg.MidEnd)

	case cfg.SmoothingFactor < 0 || cfg.SmoothingFactor >= 1:
		return errors.New("smoothing factor must be within [0, 1)")

	case cfg.MinDecibels >= cfg.MaxDecibels:
		return errors.New("min decibels must be below max decibels")

	case cfg.Transition < 0:
		return errors.New("transition can not be negative")
	}

	if _, ok := effect.Lookup(cfg.Mode); !ok {
		return errors.Errorf("unknown effect mode %q", cfg.Mode)
	}

	if cfg.Overlay != "" {
		if _, ok := overlay.ParseKind(cfg.Overlay); !ok {
			return errors.Errorf("unknown overlay %q", cfg.Overlay)
		}
	}

	return nil
}

func validWindow(name string) bool {
	_, ok := window.Lookup(name)
	return ok
}
