package ffmpeg

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/noriah/catvj/input"
	"github.com/pkg/errors"
)

func init() {
	input.RegisterBackend("ffmpeg-alsa", ALSA{})
}

// ALSA captures from ALSA hardware devices.
type ALSA struct{}

func (ALSA) Init() error  { return nil }
func (ALSA) Close() error { return nil }

// Devices lists the capture capable pcm devices.
func (ALSA) Devices() ([]input.Device, error) {
	f, err := os.Open("/proc/asound/pcm")
	if err != nil {
		return nil, errors.Wrap(err, "failed to open pcm")
	}
	defer f.Close()

	return ParsePCMList(f)
}

func (ALSA) DefaultDevice() (input.Device, error) {
	return ALSADevice("default"), nil
}

func (ALSA) Start(cfg input.SessionConfig) (input.Session, error) {
	return startWith[ALSADevice](cfg)
}

// ParsePCMList reads /proc/asound/pcm lines such as
// "00-00: ALC892 Analog : ALC892 Analog : playback 1 : capture 1" and returns
// the devices that can capture.
func ParsePCMList(r io.Reader) ([]input.Device, error) {
	var devices []input.Device

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		fields := strings.Split(scanner.Text(), ":")
		if len(fields) < 2 {
			continue
		}

		capture := false
		for _, field := range fields[1:] {
			if strings.HasPrefix(strings.TrimSpace(field), "capture") {
				capture = true
				break
			}
		}

		if !capture {
			continue
		}

		prefix := strings.TrimSpace(fields[0])

		d, err := ParseALSADevice(prefix)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to parse device %q", prefix)
		}

		devices = append(devices, d)
	}

	return devices, errors.Wrap(scanner.Err(), "failed to read pcm list")
}

// ALSADevice is an ALSA hardware name such as hw:0,0.
type ALSADevice string

// ParseALSADevice turns a card-device pair like 01-03 into hw:1,3.
func ParseALSADevice(hwString string) (ALSADevice, error) {
	parts := strings.Split(hwString, "-")
	if len(parts) == 0 || len(parts) > 2 {
		return "", errors.New("mismatch alsa format")
	}

	name := "hw:" + strings.TrimPrefix(parts[0], "0")
	if len(parts) == 2 {
		name += "," + strings.TrimPrefix(parts[1], "0")
	}

	return ALSADevice(name), nil
}

func (d ALSADevice) InputArgs() []string {
	return []string{"-f", "alsa", "-i", string(d)}
}

func (d ALSADevice) String() string {
	return string(d)
}
