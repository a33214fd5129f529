// Package catvj wires audio capture, media layers, gestures and effects into
// a running compositor loop.
package catvj

import (
	"context"
	"time"

	"github.com/noriah/catvj/audio"
	"github.com/noriah/catvj/compositor"
	"github.com/noriah/catvj/control"
	"github.com/noriah/catvj/dsp"
	"github.com/noriah/catvj/dsp/window"
	"github.com/noriah/catvj/gesture"
	"github.com/noriah/catvj/input"
	"github.com/noriah/catvj/overlay"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// CaptureID is the analyzer source id of the capture device.
const CaptureID = "capture"

// Run builds the pipeline from cfg and ticks it until ctx is done.
func Run(cfg *Config, ctx context.Context) error {
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "invalid config")
	}

	log := cfg.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}

	if cfg.SetupFunc != nil {
		if err := cfg.SetupFunc(); err != nil {
			return errors.Wrap(err, "setup failed")
		}
	}

	if cfg.CleanupFunc != nil {
		defer func() {
			if err := cfg.CleanupFunc(); err != nil {
				log.WithError(err).Warn("cleanup failed")
			}
		}()
	}

	clock := time.Now

	windower, _ := window.Lookup(cfg.Window)

	analyzer := audio.NewAnalyzer(audio.Config{
		Spectrum: dsp.AnalyzerConfig{
			SampleSize:      cfg.FFTSize,
			MinDecibels:     cfg.MinDecibels,
			MaxDecibels:     cfg.MaxDecibels,
			SmoothingFactor: cfg.SmoothingFactor,
		},
		Split: dsp.BandSplit{
			BassEnd: cfg.BassEnd,
			MidEnd:  cfg.MidEnd,
		},
		Windower: windower,
		Logger:   log,
	})

	var canvas *overlay.Canvas
	if kind, ok := overlay.ParseKind(cfg.Overlay); ok && cfg.Overlay != "" {
		canvas = overlay.NewCanvas(overlay.Config{
			Kind:   kind,
			Width:  cfg.OverlayWidth,
			Height: cfg.OverlayHeight,
			Seed:   uint32(clock().UnixNano()),
		})
	}

	if cfg.Backend != "" {
		backend, err := input.InitBackend(cfg.Backend)
		if err != nil {
			return err
		}
		// registered before the loop so capture sessions end first
		defer backend.Close()

		sessConfig := input.SessionConfig{
			FrameSize:  cfg.ChannelCount,
			SampleSize: cfg.SampleSize,
			SampleRate: cfg.SampleRate,
		}

		if sessConfig.Device, err = input.GetDevice(backend, cfg.Device); err != nil {
			return err
		}

		capture := audio.NewCaptureSource(audio.CaptureConfig{
			Backend: backend,
			Session: sessConfig,
			History: cfg.FFTSize,
			Logger:  log,
		})

		// a failed capture leaves the loop running on media and idle motion
		if !analyzer.Connect(CaptureID, capture) {
			log.WithField("backend", cfg.Backend).Warn("capture unavailable")
		}
	}

	loop := compositor.New(compositor.Config{
		Analyzer:   analyzer,
		Tracker:    gesture.NewTracker(gesture.TrackerConfig{Clock: clock}),
		Overlay:    canvas,
		Output:     cfg.Output,
		Mode:       cfg.Mode,
		FrameRate:  cfg.FrameRate,
		Transition: cfg.Transition,
		KeyMaxDim:  cfg.MaxImageDim,
		Clock:      clock,
		Logger:     log,
	})
	defer loop.Stop()

	for idx, path := range cfg.Media {
		l, src, err := LoadMedia(path, mediaID(idx, path), cfg.MaxImageDim, clock)
		if err != nil {
			return err
		}

		if err = loop.AddLayer(l, src); err != nil {
			return err
		}
	}

	ctx = loop.Start(ctx)

	if cfg.StartFunc != nil {
		var err error
		if ctx, err = cfg.StartFunc(ctx, loop); err != nil {
			return errors.Wrap(err, "start failed")
		}
	}

	if cfg.MidiPort != "" {
		port, err := control.FindInPort(cfg.MidiPort)
		if err != nil {
			return err
		}

		stop, err := control.Listen(port, control.NewMapper(control.DefaultMapperConfig()), loop, log)
		if err != nil {
			return err
		}
		defer stop()
	}

	return loop.Run(ctx, nil)
}
