package ffmpeg

import (
	"github.com/noriah/catvj/input"
	"github.com/noriah/catvj/input/parec"
)

func init() {
	input.RegisterBackend("ffmpeg-pulse", Pulse{})
}

// Pulse reads pulseaudio sources through ffmpeg. Devices are listed the
// same way parec lists them.
type Pulse struct {
	parec.Backend
}

func (Pulse) Start(cfg input.SessionConfig) (input.Session, error) {
	return startWith[parec.PulseDevice](cfg)
}
