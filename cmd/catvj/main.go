package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/noriah/catvj"
	"github.com/noriah/catvj/compositor"
	"github.com/noriah/catvj/dsp/window"
	"github.com/noriah/catvj/effect"
	"github.com/noriah/catvj/graphic"
	"github.com/noriah/catvj/input"
	"github.com/noriah/catvj/overlay"

	_ "github.com/noriah/catvj/input/all"

	"github.com/integrii/flaggy"
	"github.com/sirupsen/logrus"
	"gitlab.com/gomidi/midi/v2"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

// AppName is the app name
const AppName = "catvj"

// AppDesc is the app description
const AppDesc = "Audio reactive layer compositor for the terminal"

// AppSite is the app website
const AppSite = "https://github.com/noriah/catvj"

var version = "unknown"

func main() {
	defer midi.CloseDriver()

	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	logrus.SetLevel(logrus.WarnLevel)

	cfg := newZeroConfig()
	cfg.backend = input.DefaultBackend()

	if doFlags(&cfg) {
		return
	}

	chk(cfg.Sanitize(), "invalid config")

	if cfg.verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}

	closeLog := setupLogOutput(&cfg)
	defer closeLog()

	vjCfg := cfg.toConfig()

	if cfg.raw {
		vjCfg.Output = NewFrameWriter(os.Stdout)
	} else {
		preview := graphic.NewPreview(graphic.PreviewConfig{Styles: cfg.styles})

		vjCfg.Output = preview
		vjCfg.SetupFunc = preview.Init
		vjCfg.StartFunc = func(ctx context.Context, loop *compositor.Loop) (context.Context, error) {
			preview.SetTarget(loop)
			return preview.Start(ctx), nil
		}
		vjCfg.CleanupFunc = preview.Close
	}

	// Root Context
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	chk(catvj.Run(&vjCfg, ctx), "failed to run catvj")
}

// setupLogOutput keeps log lines off the terminal while the preview draws.
func setupLogOutput(cfg *config) func() {
	if cfg.logFile != "" {
		f, err := os.OpenFile(cfg.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		chk(err, "failed to open log file")

		logrus.SetOutput(f)
		return func() { f.Close() }
	}

	if !cfg.raw {
		logrus.SetOutput(io.Discard)
	}

	return func() {}
}

func doFlags(cfg *config) bool {

	parser := flaggy.NewParser(AppName)
	parser.Description = AppDesc
	parser.AdditionalHelpPrepend = AppSite
	parser.Version = version

	listBackendsCmd := flaggy.Subcommand{
		Name:                 "list-backends",
		ShortName:            "lb",
		Description:          "list all supported backends",
		AdditionalHelpAppend: "\nuse the full name after the '-'",
	}

	parser.AttachSubcommand(&listBackendsCmd, 1)

	listDevicesCmd := flaggy.Subcommand{
		Name:                 "list-devices",
		ShortName:            "ld",
		Description:          "list all devices for a backend",
		AdditionalHelpAppend: "\nuse the full name after the '-'",
	}

	parser.AttachSubcommand(&listDevicesCmd, 1)

	listModesCmd := flaggy.Subcommand{
		Name:        "list-modes",
		ShortName:   "lm",
		Description: "list all effect modes and overlays",
	}

	parser.AttachSubcommand(&listModesCmd, 1)

	listMidiCmd := flaggy.Subcommand{
		Name:        "list-midi",
		ShortName:   "lx",
		Description: "list all MIDI input ports",
	}

	parser.AttachSubcommand(&listMidiCmd, 1)

	parser.String(&cfg.backend, "b", "backend", "backend name (none to disable capture)")
	parser.String(&cfg.device, "d", "device", "device name")
	parser.Float64(&cfg.sampleRate, "r", "rate", "sample rate")
	parser.Int(&cfg.sampleSize, "n", "samples", "capture sample size")
	parser.Int(&cfg.channelCount, "ch", "channels", "channel count (1 or 2)")
	parser.Int(&cfg.fftSize, "fft", "fft-size", "analysis window, a power of two")
	parser.String(&cfg.window, "w", "window", "window function: "+strings.Join(window.Names(), ", "))
	parser.Float64(&cfg.smoothFactor, "sf", "smoothing", "smooth factor (0-100)")
	parser.Float64(&cfg.bassEnd, "bass", "bass-end", "end of the bass band, percent of bins")
	parser.Float64(&cfg.midEnd, "mid", "mid-end", "end of the mid band, percent of bins")
	parser.Int(&cfg.frameRate, "f", "fps", "frame rate")
	parser.String(&cfg.mode, "m", "mode", "effect mode (see list-modes)")
	parser.Float64(&cfg.transition, "t", "transition", "layer motion spring frequency (0 to disable)")
	parser.String(&cfg.overlay, "o", "overlay", "touch overlay kind (see list-modes)")
	parser.String(&cfg.midiPort, "x", "midi", "MIDI input port name")
	parser.StringSlice(&cfg.media, "i", "media", "media file to add as a layer, repeatable")
	parser.Bool(&cfg.raw, "raw", "raw", "print frames as text instead of drawing")
	parser.Bool(&cfg.verbose, "v", "verbose", "log debug messages")
	parser.String(&cfg.logFile, "l", "log", "log file")

	fg, bg, accent := cfg.styles.AsUInt16s()
	parser.UInt16(&fg, "fg", "foreground",
		"foreground color within the 256-color range [0, 255] with attributes")
	parser.UInt16(&bg, "bg", "background",
		"background color within the 256-color range [0, 255] with attributes")
	parser.UInt16(&accent, "ac", "accent",
		"accent color within the 256-color range [0, 255] with attributes")

	chk(parser.Parse(), "failed to parse arguments")

	// Manually set the styles.
	cfg.styles = graphic.StylesFromUInt16(fg, bg, accent)

	switch {
	case listBackendsCmd.Used:
		for _, backend := range input.Backends() {
			fmt.Printf("- %s\n", backend.Name)
		}

		return true

	case listDevicesCmd.Used:
		backend, err := input.InitBackend(cfg.backend)
		chk(err, "failed to init backend")

		devices, err := backend.Devices()
		chk(err, "failed to get devices")

		// We don't really need the default device to be indicated.
		defaultDevice, _ := backend.DefaultDevice()

		fmt.Printf("all devices for %q backend. '*' marks default\n", cfg.backend)

		for idx := range devices {
			star := ' '
			if defaultDevice != nil && devices[idx].String() == defaultDevice.String() {
				star = '*'
			}

			fmt.Printf("- %v %c\n", devices[idx], star)
		}

		return true

	case listModesCmd.Used:
		fmt.Println("effect modes:")
		for idx, mode := range effect.Modes() {
			fmt.Printf("%d %-12s %s\n", idx+1, mode.Name, mode.Description)
		}

		fmt.Println("overlays:")
		for k := overlay.KindParticles; k <= overlay.KindKaleidoscope; k++ {
			fmt.Printf("- %s\n", k)
		}

		return true

	case listMidiCmd.Used:
		for _, port := range midi.GetInPorts() {
			fmt.Printf("- %s\n", port)
		}

		return true
	}

	return false
}

func chk(err error, wrap string) {
	if err != nil {
		logrus.SetOutput(os.Stderr)
		logrus.WithError(err).Fatal(wrap)
	}
}
