package parec

import (
	"strings"
	"testing"

	"github.com/noriah/catvj/input"
)

type otherDevice string

func (d otherDevice) String() string { return string(d) }

func TestNewSession(t *testing.T) {
	tests := []struct {
		name string
		cfg  input.SessionConfig
		ok   bool
		argv string
	}{
		{
			name: "stereo",
			cfg:  input.SessionConfig{Device: PulseDevice("mon"), FrameSize: 2, SampleSize: 256, SampleRate: 48000},
			ok:   true,
			argv: "parec --format=float32le --rate=48000 --channels=2 -d mon",
		},
		{
			name: "too many channels",
			cfg:  input.SessionConfig{Device: PulseDevice("mon"), FrameSize: 3, SampleSize: 256, SampleRate: 48000},
		},
		{
			name: "wrong device",
			cfg:  input.SessionConfig{Device: otherDevice("hw:0"), FrameSize: 1, SampleSize: 256, SampleRate: 48000},
		},
	}

	for _, test := range tests {
		s, err := NewSession(test.cfg)
		if (err == nil) != test.ok {
			t.Errorf("%s: unexpected error %v", test.name, err)
			continue
		}
		if !test.ok {
			continue
		}
		if got := strings.Join(s.Argv(), " "); got != test.argv {
			t.Errorf("%s: argv %q, want %q", test.name, got, test.argv)
		}
	}
}

func TestSortDevices(t *testing.T) {
	devices := SortDevices([]string{
		"alsa_input.usb-mic",
		"alsa_output.hdmi.monitor",
		"alsa_input.analog",
		"alsa_output.analog.monitor",
	})

	var got []string
	for _, d := range devices {
		got = append(got, d.String())
	}

	want := "alsa_output.analog.monitor alsa_output.hdmi.monitor alsa_input.analog alsa_input.usb-mic"
	if strings.Join(got, " ") != want {
		t.Errorf("got %v", got)
	}

	if !devices[0].(PulseDevice).Monitor() || devices[2].(PulseDevice).Monitor() {
		t.Error("monitor detection is wrong")
	}
}
