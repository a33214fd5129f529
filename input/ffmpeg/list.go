package ffmpeg

import (
	"bufio"
	"bytes"
	"os/exec"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// listDevices runs ffmpeg's device listing for format. ffmpeg always exits
// non zero here, so only the output matters.
func listDevices(format string) []byte {
	cmd := exec.Command(
		"ffmpeg", "-hide_banner", "-loglevel", "info",
		"-f", format, "-list_devices", "true",
		"-i", "",
	)

	out, _ := cmd.CombinedOutput()
	return out
}

// stripLogPrefix removes the "[avfoundation @ 0x...] " prefix ffmpeg puts in
// front of every log line.
func stripLogPrefix(line string) string {
	if !strings.HasPrefix(line, "[") {
		return line
	}

	if parts := strings.SplitN(line, "] ", 2); len(parts) == 2 && strings.Contains(parts[0], " @ ") {
		return parts[1]
	}

	return line
}

// ParseAVFoundationList pulls the indexed audio devices out of an avfoundation
// device listing.
func ParseAVFoundationList(out []byte) ([]AVFoundationDevice, error) {
	var devices []AVFoundationDevice
	var inAudio bool

	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		text := stripLogPrefix(scanner.Text())

		if strings.HasSuffix(text, "audio devices:") {
			inAudio = true
			continue
		}

		if !inAudio {
			continue
		}

		if !strings.HasPrefix(text, "[") {
			inAudio = false
			continue
		}

		parts := strings.SplitN(text, " ", 2)
		if len(parts) != 2 {
			continue
		}

		n, err := strconv.Atoi(strings.Trim(parts[0], "[]"))
		if err != nil {
			return nil, errors.Wrap(err, "failed to parse device index")
		}

		devices = append(devices, AVFoundationDevice{Index: n, Name: parts[1]})
	}

	return devices, nil
}

// ParseDShowList pulls the audio devices out of a dshow device listing.
// Entries look like `"Microphone (USB Audio)" (audio)`.
func ParseDShowList(out []byte) []DShowDevice {
	var devices []DShowDevice

	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		text := strings.TrimSpace(stripLogPrefix(scanner.Text()))

		if !strings.HasSuffix(text, "(audio)") || !strings.HasPrefix(text, `"`) {
			continue
		}

		end := strings.LastIndex(text, `" (`)
		if end < 1 {
			continue
		}

		devices = append(devices, DShowDevice(text[1:end]))
	}

	return devices
}

func noDevices(out []byte) error {
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	return errors.Errorf("no devices found; ffmpeg output:\n\t%s", strings.Join(lines, "\n\t"))
}

// AVFoundationDevice is an indexed macOS capture device. Index -1 is the
// system default.
type AVFoundationDevice struct {
	Index int
	Name  string
}

func (d AVFoundationDevice) InputArgs() []string {
	in := "none:default"
	if d.Index > -1 {
		in = "none:" + strconv.Itoa(d.Index)
	}
	return []string{"-f", "avfoundation", "-i", in}
}

func (d AVFoundationDevice) String() string {
	return strconv.Itoa(d.Index) + ":" + d.Name
}

// DShowDevice is a DirectShow audio device name.
type DShowDevice string

func (d DShowDevice) InputArgs() []string {
	return []string{"-f", "dshow", "-audio_buffer_size", "20", "-i", "audio=" + string(d)}
}

func (d DShowDevice) String() string {
	return string(d)
}
