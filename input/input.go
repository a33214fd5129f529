// Package input provides audio capture backends.
package input

import (
	"context"
	"sync"

	"github.com/pkg/errors"
)

// Sample is the datatype we read from our inputs
type Sample = float64

// Device is an input device a backend can open.
type Device interface {
	// String should return the device name as given to the backend.
	String() string
}

// SessionConfig describes what a session should capture.
type SessionConfig struct {
	Device     Device
	FrameSize  int     // number of channels per frame
	SampleSize int     // number of frames per buffer write
	SampleRate float64 // sample rate
}

// Session is a running capture.
type Session interface {
	// Start blocks until ctx is done or the capture fails. Every time dst is
	// filled it sends on kickChan. Writes to dst happen while mu is held.
	Start(ctx context.Context, dst [][]Sample, kickChan chan bool, mu *sync.Mutex) error
}

// ErrDeviceType is returned when a backend is handed a device it did not list.
func ErrDeviceType(d Device) error {
	return errors.Errorf("invalid device type %T", d)
}

// MakeBuffers allocates a slice of sample buffers, one per channel.
func MakeBuffers(channels, samples int) [][]Sample {
	buf := make([]Sample, channels*samples)
	out := make([][]Sample, channels)
	for i := range out {
		out[i] = buf[i*samples : (i+1)*samples]
	}
	return out
}

// EnsureBufferLen ensures that the given buffer has matching sizes with the
// needed parameters from SessionConfig. It returns true if the buffer is
// valid.
func EnsureBufferLen(cfg SessionConfig, buf [][]Sample) bool {
	if len(buf) != cfg.FrameSize {
		return false
	}

	for _, b := range buf {
		if len(b) != cfg.SampleSize {
			return false
		}
	}

	return true
}
