//go:build darwin

package ffmpeg

import (
	"github.com/noriah/catvj/input"
)

func init() {
	input.RegisterBackend("ffmpeg-avfoundation", AVFoundation{})
}

// AVFoundation captures macOS audio devices.
type AVFoundation struct{}

func (AVFoundation) Init() error  { return nil }
func (AVFoundation) Close() error { return nil }

func (AVFoundation) Devices() ([]input.Device, error) {
	out := listDevices("avfoundation")

	found, err := ParseAVFoundationList(out)
	if err != nil {
		return nil, err
	}

	if len(found) == 0 {
		return nil, noDevices(out)
	}

	devices := make([]input.Device, len(found))
	for i, d := range found {
		devices[i] = d
	}

	return devices, nil
}

func (AVFoundation) DefaultDevice() (input.Device, error) {
	return AVFoundationDevice{Index: -1, Name: "default"}, nil
}

func (AVFoundation) Start(cfg input.SessionConfig) (input.Session, error) {
	return startWith[AVFoundationDevice](cfg)
}
