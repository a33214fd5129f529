package main

import (
	"strings"

	"github.com/noriah/catvj"
	"github.com/noriah/catvj/graphic"

	"github.com/pkg/errors"
)

// config holds the command line values
type config struct {
	// backend is the backend name from list-backends, "none" disables capture
	backend string
	// device is the device name from list-devices
	device string
	// sampleRate is the rate at which samples are read
	sampleRate float64
	// sampleSize is the capture batch size
	sampleSize int
	// channelCount is the number of capture channels mixed down
	channelCount int
	// fftSize is the analysis window
	fftSize int
	// window is the analysis window function name
	window string
	// smoothFactor factor of smooth, 0 to 100
	smoothFactor float64
	// bassEnd and midEnd split the spectrum, in percent of the bins
	bassEnd float64
	midEnd  float64
	// frameRate is the number of frames to draw every second
	frameRate int
	// mode is the starting effect mode
	mode string
	// transition is the geometry spring frequency, 0 to disable
	transition float64
	// overlay is the touch overlay kind
	overlay string
	// midiPort selects a MIDI controller by name
	midiPort string
	// media files loaded as layers
	media []string
	// raw prints frames as text instead of drawing them
	raw bool
	// verbose enables debug logging
	verbose bool
	// logFile receives log output while the preview owns the terminal
	logFile string
	// styles is the preview color configuration
	styles graphic.Styles
}

func newZeroConfig() config {
	def := catvj.NewZeroConfig()

	return config{
		sampleRate:   def.SampleRate,
		sampleSize:   def.SampleSize,
		channelCount: def.ChannelCount,
		fftSize:      def.FFTSize,
		window:       def.Window,
		smoothFactor: def.SmoothingFactor * 100,
		bassEnd:      def.BassEnd * 100,
		midEnd:       def.MidEnd * 100,
		frameRate:    def.FrameRate,
		mode:         def.Mode,
		styles:       graphic.DefaultStyles(),
	}
}

// Sanitize cleans things up
func (cfg *config) Sanitize() error {
	if strings.EqualFold(cfg.backend, "none") {
		cfg.backend = ""
	}

	if cfg.sampleSize < 4 {
		return errors.New("sample size too small (4+ required)")
	}

	switch {
	case cfg.smoothFactor > 99:
		cfg.smoothFactor = 0.99
	case cfg.smoothFactor < 0:
		cfg.smoothFactor = 0
	default:
		cfg.smoothFactor /= 100.0
	}

	cfg.bassEnd /= 100.0
	cfg.midEnd /= 100.0

	cfg.mode = strings.ToLower(cfg.mode)
	cfg.overlay = strings.ToLower(cfg.overlay)

	return nil
}

// toConfig builds the pipeline config. Hooks and output are set by the caller.
func (cfg *config) toConfig() catvj.Config {
	out := catvj.NewZeroConfig()

	out.Backend = cfg.backend
	out.Device = cfg.device
	out.SampleRate = cfg.sampleRate
	out.SampleSize = cfg.sampleSize
	out.ChannelCount = cfg.channelCount
	out.FFTSize = cfg.fftSize
	out.Window = cfg.window
	out.SmoothingFactor = cfg.smoothFactor
	out.BassEnd = cfg.bassEnd
	out.MidEnd = cfg.midEnd
	out.FrameRate = cfg.frameRate
	out.Mode = cfg.mode
	out.Transition = cfg.transition
	out.Overlay = cfg.overlay
	out.MidiPort = cfg.midiPort
	out.Media = cfg.media

	return out
}
