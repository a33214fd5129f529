package audio

import (
	"sync"
	"time"

	"github.com/noriah/catvj/input/file"
	"github.com/pkg/errors"
)

// ErrNotReady is returned by sources that have nothing to play yet.
var ErrNotReady = errors.New("source not ready")

// ClipSource plays a decoded clip on a loop. The play position follows the
// clock, so sampling never advances playback by itself.
type ClipSource struct {
	mu sync.Mutex

	clip  *file.Clip
	clock func() time.Time
	gain  float64

	started time.Time
	offset  time.Duration // position held while paused
	paused  bool
}

// NewClipSource starts playing clip from the beginning. A nil clock uses
// time.Now.
func NewClipSource(clip *file.Clip, clock func() time.Time) *ClipSource {
	if clock == nil {
		clock = time.Now
	}

	return &ClipSource{
		clip:    clip,
		clock:   clock,
		gain:    1,
		started: clock(),
	}
}

// SetGain scales every sample read from the clip.
func (cs *ClipSource) SetGain(gain float64) {
	cs.mu.Lock()
	cs.gain = gain
	cs.mu.Unlock()
}

// Pause holds the current position.
func (cs *ClipSource) Pause() {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	if cs.paused {
		return
	}

	cs.offset = cs.position()
	cs.paused = true
}

// Resume continues from the held position.
func (cs *ClipSource) Resume() {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	if !cs.paused {
		return
	}

	cs.started = cs.clock().Add(-cs.offset)
	cs.paused = false
}

// Paused reports whether playback is held.
func (cs *ClipSource) Paused() bool {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return cs.paused
}

func (cs *ClipSource) position() time.Duration {
	if cs.paused {
		return cs.offset
	}
	return cs.clock().Sub(cs.started)
}

// Window fills dst with the samples leading up to the play position. A
// paused clip reads as silence.
func (cs *ClipSource) Window(dst []float64) error {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	if cs.clip == nil || len(cs.clip.Samples) == 0 || cs.clip.SampleRate <= 0 {
		return ErrNotReady
	}

	if cs.paused {
		for idx := range dst {
			dst[idx] = 0
		}
		return nil
	}

	samples := cs.clip.Samples
	count := len(samples)

	end := int(cs.position().Seconds() * cs.clip.SampleRate)
	start := end - len(dst)

	for idx := range dst {
		pos := (start + idx) % count
		if pos < 0 {
			pos += count
		}
		dst[idx] = samples[pos] * cs.gain
	}

	return nil
}
