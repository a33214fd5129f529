package layer

import (
	"io"
	"sync"

	"github.com/pkg/errors"
)

// ErrExists is returned when adding a layer with an id already in the stack.
var ErrExists = errors.New("layer already exists")

// Stack is the ordered layer collection. The first layer is drawn first.
// It is safe to edit from other goroutines between ticks.
type Stack struct {
	mu     sync.RWMutex
	layers []*Layer
}

func NewStack() *Stack {
	return &Stack{}
}

// Add appends l to the top of the stack.
func (s *Stack) Add(l *Layer) error {
	if l == nil || l.ID == "" {
		return errors.New("layer has no id")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.index(l.ID) >= 0 {
		return errors.Wrapf(ErrExists, "%q", l.ID)
	}

	l.Clamp()
	s.layers = append(s.layers, l)

	return nil
}

// Remove deletes a layer and releases its media. It returns false for
// unknown ids.
func (s *Stack) Remove(id string) bool {
	s.mu.Lock()
	idx := s.index(id)
	if idx < 0 {
		s.mu.Unlock()
		return false
	}

	l := s.layers[idx]
	s.layers = append(s.layers[:idx], s.layers[idx+1:]...)
	s.mu.Unlock()

	if c, ok := l.Media.(io.Closer); ok {
		c.Close()
	}

	return true
}

// Get returns a copy of the layer with the given id.
func (s *Stack) Get(id string) (Layer, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.index(id)
	if idx < 0 {
		return Layer{}, false
	}

	return s.layers[idx].Clone(), true
}

// Update edits a layer in place. The id can not change and the layer is
// clamped afterwards.
func (s *Stack) Update(id string, fn func(l *Layer)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.index(id)
	if idx < 0 {
		return false
	}

	l := s.layers[idx]
	fn(l)
	l.ID = id
	l.Clamp()

	return true
}

// Move places a layer at index, clamped to the stack bounds.
func (s *Stack) Move(id string, index int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.index(id)
	if idx < 0 {
		return false
	}

	l := s.layers[idx]
	s.layers = append(s.layers[:idx], s.layers[idx+1:]...)

	switch {
	case index < 0:
		index = 0
	case index > len(s.layers):
		index = len(s.layers)
	}

	s.layers = append(s.layers, nil)
	copy(s.layers[index+1:], s.layers[index:])
	s.layers[index] = l

	return true
}

// Len returns the number of layers.
func (s *Stack) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.layers)
}

// Snapshot returns copies of every layer in stack order.
func (s *Stack) Snapshot() []Layer {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Layer, len(s.layers))
	for i, l := range s.layers {
		out[i] = l.Clone()
	}
	return out
}

// Visible returns copies of the visible layers in stack order.
func (s *Stack) Visible() []Layer {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Layer, 0, len(s.layers))
	for _, l := range s.layers {
		if l.Visible {
			out = append(out, l.Clone())
		}
	}
	return out
}

// Publish stores resolved parameters as each layer's Last value.
func (s *Stack) Publish(params []RenderParams) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, rp := range params {
		if idx := s.index(rp.LayerID); idx >= 0 {
			s.layers[idx].Last = rp
		}
	}
}

// index must be called with mu held.
func (s *Stack) index(id string) int {
	for i, l := range s.layers {
		if l.ID == id {
			return i
		}
	}
	return -1
}
