//go:build windows

package ffmpeg

import (
	"github.com/noriah/catvj/input"
	"github.com/pkg/errors"
)

func init() {
	input.RegisterBackend("ffmpeg-dshow", DShow{})
}

// DShow captures through DirectShow on Windows.
type DShow struct{}

func (DShow) Init() error  { return nil }
func (DShow) Close() error { return nil }

func (DShow) Devices() ([]input.Device, error) {
	out := listDevices("dshow")

	found := ParseDShowList(out)
	if len(found) == 0 {
		return nil, noDevices(out)
	}

	devices := make([]input.Device, len(found))
	for i, d := range found {
		devices[i] = d
	}

	return devices, nil
}

// DefaultDevice picks the first listed device, dshow has no default.
func (p DShow) DefaultDevice() (input.Device, error) {
	devices, err := p.Devices()
	if err != nil {
		return nil, errors.Wrap(err, "no default device")
	}
	return devices[0], nil
}

func (DShow) Start(cfg input.SessionConfig) (input.Session, error) {
	return startWith[DShowDevice](cfg)
}
