// Package parec captures audio through the pulseaudio parec tool.
package parec

import (
	"sort"
	"strconv"
	"strings"

	"github.com/lawl/pulseaudio"
	"github.com/noriah/catvj/input"
	"github.com/noriah/catvj/input/common/execread"
	"github.com/pkg/errors"
)

// MonitorSuffix marks a source that records what a sink plays.
const MonitorSuffix = ".monitor"

func init() {
	input.RegisterBackend("parec", Backend{})
}

type Backend struct{}

func (Backend) Init() error  { return nil }
func (Backend) Close() error { return nil }

// Devices lists the pulseaudio sources, sink monitors first.
func (Backend) Devices() ([]input.Device, error) {
	c, err := pulseaudio.NewClient()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create client")
	}
	defer c.Close()

	sources, err := c.Sources()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get sources")
	}

	names := make([]string, len(sources))
	for i, source := range sources {
		names[i] = source.Name
	}

	return SortDevices(names), nil
}

// DefaultDevice is the monitor of the default sink, so the visuals follow
// whatever is playing. Without a server answer it falls back to "default".
func (Backend) DefaultDevice() (input.Device, error) {
	c, err := pulseaudio.NewClient()
	if err != nil {
		return PulseDevice("default"), nil
	}
	defer c.Close()

	info, err := c.ServerInfo()
	if err != nil || info.DefaultSink == "" {
		return PulseDevice("default"), nil
	}

	return PulseDevice(info.DefaultSink + MonitorSuffix), nil
}

func (Backend) Start(cfg input.SessionConfig) (input.Session, error) {
	return NewSession(cfg)
}

// SortDevices orders source names with monitors first, then by name.
func SortDevices(names []string) []input.Device {
	sorted := append([]string(nil), names...)

	sort.SliceStable(sorted, func(i, j int) bool {
		mi := strings.HasSuffix(sorted[i], MonitorSuffix)
		mj := strings.HasSuffix(sorted[j], MonitorSuffix)
		if mi != mj {
			return mi
		}
		return sorted[i] < sorted[j]
	})

	devices := make([]input.Device, len(sorted))
	for i, name := range sorted {
		devices[i] = PulseDevice(name)
	}

	return devices
}

// PulseDevice is a pulseaudio source name.
type PulseDevice string

// InputArgs lets ffmpeg read from the same pulse source.
func (d PulseDevice) InputArgs() []string {
	return []string{"-f", "pulse", "-i", string(d)}
}

func (d PulseDevice) String() string {
	return string(d)
}

// Monitor reports whether the source records a sink.
func (d PulseDevice) Monitor() bool {
	return strings.HasSuffix(string(d), MonitorSuffix)
}

// NewSession starts parec writing float32 samples to stdout.
func NewSession(cfg input.SessionConfig) (*execread.Session, error) {
	dv, ok := cfg.Device.(PulseDevice)
	if !ok {
		return nil, input.ErrDeviceType(cfg.Device)
	}

	if cfg.FrameSize < 1 || cfg.FrameSize > 2 {
		return nil, errors.Errorf("parec: %d channels not supported, mono or stereo only", cfg.FrameSize)
	}

	return execread.NewSession(execread.Config{
		Argv: []string{
			"parec",
			"--format=float32le",
			"--rate=" + strconv.FormatFloat(cfg.SampleRate, 'f', 0, 64),
			"--channels=" + strconv.Itoa(cfg.FrameSize),
			"-d", dv.String(),
		},
		Format:  execread.Float32LE,
		Session: cfg,
	})
}
