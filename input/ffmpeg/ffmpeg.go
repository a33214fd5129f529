// Package ffmpeg captures audio by running ffmpeg against a platform input.
package ffmpeg

import (
	"strconv"

	"github.com/noriah/catvj/input"
	"github.com/noriah/catvj/input/common/execread"
)

// Device is a capture device ffmpeg knows how to open.
type Device interface {
	input.Device
	InputArgs() []string
}

// Args returns the ffmpeg command line capturing d as raw f64le on stdout.
func Args(d Device, cfg input.SessionConfig) []string {
	args := []string{"ffmpeg", "-hide_banner", "-loglevel", "error", "-nostdin"}
	args = append(args, d.InputArgs()...)

	return append(args,
		"-ar", strconv.FormatFloat(cfg.SampleRate, 'f', 0, 64),
		"-ac", strconv.Itoa(cfg.FrameSize),
		"-f", "f64le",
		"-",
	)
}

func NewSession(d Device, cfg input.SessionConfig) (*execread.Session, error) {
	return execread.NewSession(execread.Config{
		Argv:    Args(d, cfg),
		Format:  execread.Float64LE,
		Session: cfg,
	})
}

// startWith type checks the configured device before starting ffmpeg.
func startWith[D Device](cfg input.SessionConfig) (input.Session, error) {
	d, ok := cfg.Device.(D)
	if !ok {
		return nil, input.ErrDeviceType(cfg.Device)
	}
	return NewSession(d, cfg)
}
