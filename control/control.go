// Package control maps a MIDI controller onto the compositor: notes pick
// effect modes, faders set layer opacity.
package control

import (
	"fmt"
	"strings"

	"github.com/noriah/catvj/effect"
	"github.com/noriah/catvj/layer"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

// Defaults for a generic pad and fader controller.
const (
	DefaultModeNote    = 36 // first pad, C2
	DefaultPrevNote    = 46
	DefaultNextNote    = 47
	DefaultOpacityCC   = 70 // first fader
	DefaultVisibleNote = 16
	DefaultLayers      = 8
)

// Action is what a command does.
type Action int

const (
	SelectMode Action = iota
	CycleMode
	LayerOpacity
	ToggleLayer
)

// Command is one decoded controller gesture.
type Command struct {
	Action Action
	Mode   string  // SelectMode
	Step   int     // CycleMode
	Layer  int     // stack index for layer actions, bottom is 0
	Value  float64 // LayerOpacity, in [0, 1]
}

func (c Command) String() string {
	switch c.Action {
	case SelectMode:
		return "mode " + c.Mode
	case CycleMode:
		return fmt.Sprintf("cycle %+d", c.Step)
	case LayerOpacity:
		return fmt.Sprintf("layer %d opacity %s", c.Layer, effect.FormatNumber(c.Value))
	case ToggleLayer:
		return fmt.Sprintf("layer %d toggle", c.Layer)
	}
	return "unknown"
}

type MapperConfig struct {
	Channel     int   // channel to listen on, negative for all
	ModeNote    uint8 // note selecting the first mode, following notes select the rest
	PrevNote    uint8
	NextNote    uint8
	OpacityCC   uint8 // controller for layer 0, following controllers for higher layers
	VisibleNote uint8 // note toggling layer 0
	Layers      int   // number of layer controls
}

func DefaultMapperConfig() MapperConfig {
	return MapperConfig{
		Channel:     -1,
		ModeNote:    DefaultModeNote,
		PrevNote:    DefaultPrevNote,
		NextNote:    DefaultNextNote,
		OpacityCC:   DefaultOpacityCC,
		VisibleNote: DefaultVisibleNote,
		Layers:      DefaultLayers,
	}
}

// Mapper decodes MIDI messages into commands.
type Mapper struct {
	cfg   MapperConfig
	modes []string
}

func NewMapper(cfg MapperConfig) *Mapper {
	if cfg.Layers <= 0 {
		cfg.Layers = DefaultLayers
	}

	return &Mapper{
		cfg:   cfg,
		modes: effect.Names(),
	}
}

// Decode returns the command for msg. Messages without a mapping, note
// releases and other channels return false.
func (m *Mapper) Decode(msg midi.Message) (Command, bool) {
	var channel, key, value uint8

	switch {
	case msg.GetNoteOn(&channel, &key, &value):
		if !m.listening(channel) || value == 0 {
			return Command{}, false
		}
		return m.note(key)

	case msg.GetControlChange(&channel, &key, &value):
		if !m.listening(channel) {
			return Command{}, false
		}
		return m.control(key, value)
	}

	return Command{}, false
}

func (m *Mapper) listening(channel uint8) bool {
	return m.cfg.Channel < 0 || int(channel) == m.cfg.Channel
}

func (m *Mapper) note(key uint8) (Command, bool) {
	switch {
	case key == m.cfg.PrevNote:
		return Command{Action: CycleMode, Step: -1}, true

	case key == m.cfg.NextNote:
		return Command{Action: CycleMode, Step: 1}, true

	case key >= m.cfg.ModeNote && int(key-m.cfg.ModeNote) < len(m.modes):
		return Command{Action: SelectMode, Mode: m.modes[key-m.cfg.ModeNote]}, true

	case key >= m.cfg.VisibleNote && int(key-m.cfg.VisibleNote) < m.cfg.Layers:
		return Command{Action: ToggleLayer, Layer: int(key - m.cfg.VisibleNote)}, true
	}

	return Command{}, false
}

func (m *Mapper) control(controller, value uint8) (Command, bool) {
	if controller < m.cfg.OpacityCC || int(controller-m.cfg.OpacityCC) >= m.cfg.Layers {
		return Command{}, false
	}

	return Command{
		Action: LayerOpacity,
		Layer:  int(controller - m.cfg.OpacityCC),
		Value:  float64(value) / 127,
	}, true
}

// Target is what commands act on. *compositor.Loop implements it.
type Target interface {
	SetMode(name string) bool
	CycleMode(step int) string
	Stack() *layer.Stack
}

// Apply runs cmd against t and reports whether anything changed.
func Apply(t Target, cmd Command) bool {
	switch cmd.Action {
	case SelectMode:
		return t.SetMode(cmd.Mode)

	case CycleMode:
		t.CycleMode(cmd.Step)
		return true

	case LayerOpacity, ToggleLayer:
		stack := t.Stack()
		layers := stack.Snapshot()
		if cmd.Layer < 0 || cmd.Layer >= len(layers) {
			return false
		}

		return stack.Update(layers[cmd.Layer].ID, func(l *layer.Layer) {
			if cmd.Action == ToggleLayer {
				l.Visible = !l.Visible
				return
			}
			l.Opacity = cmd.Value
		})
	}

	return false
}

// FindInPort returns the first input port whose name contains substr,
// ignoring case. An empty substr picks the first port.
func FindInPort(substr string) (drivers.In, error) {
	lower := strings.ToLower(substr)
	for _, port := range midi.GetInPorts() {
		if strings.Contains(strings.ToLower(port.String()), lower) {
			return port, nil
		}
	}
	return nil, errors.Errorf("no MIDI input port matching %q", substr)
}

// Listen applies every mapped message from port to t until stop is called.
func Listen(port drivers.In, m *Mapper, t Target, log logrus.FieldLogger) (stop func(), err error) {
	if log == nil {
		log = logrus.StandardLogger()
	}

	log = log.WithField("port", port.String())

	stop, err = midi.ListenTo(port, func(msg midi.Message, timestampms int32) {
		cmd, ok := m.Decode(msg)
		if !ok {
			log.WithField("msg", msg.String()).Debug("unmapped midi message")
			return
		}

		if !Apply(t, cmd) {
			log.WithField("cmd", cmd.String()).Debug("midi command had no effect")
		}
	})

	if err != nil {
		return nil, errors.Wrap(err, "failed to listen on midi port")
	}

	return stop, nil
}
