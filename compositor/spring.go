package compositor

import (
	"math"
	"sync"

	"github.com/charmbracelet/harmonica"
	"github.com/noriah/catvj/layer"
)

const springDamping = 0.9

type springAxis struct {
	pos, vel float64
}

func (a *springAxis) update(s *harmonica.Spring, target float64) float64 {
	a.pos, a.vel = s.Update(a.pos, a.vel, target)
	return a.pos
}

type springState struct {
	tx, ty, rot, sx, sy springAxis
}

// springs eases each layer's geometry toward its resolved target.
type springs struct {
	mu     sync.Mutex
	spring harmonica.Spring
	states map[string]*springState
}

func newSprings(fps int, frequency float64) *springs {
	return &springs{
		spring: harmonica.NewSpring(harmonica.FPS(fps), frequency, springDamping),
		states: make(map[string]*springState),
	}
}

func (s *springs) ease(id string, target layer.Geometry) layer.Geometry {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.states[id]
	if !ok {
		// first sight of a layer starts at rest on its target
		s.states[id] = &springState{
			tx:  springAxis{pos: target.TranslateX},
			ty:  springAxis{pos: target.TranslateY},
			rot: springAxis{pos: target.Rotation},
			sx:  springAxis{pos: target.ScaleX},
			sy:  springAxis{pos: target.ScaleY},
		}
		return target
	}

	// take the short way around the circle
	rot := st.rot.pos + shortestTurn(st.rot.pos, target.Rotation)

	out := layer.Geometry{
		TranslateX: st.tx.update(&s.spring, target.TranslateX),
		TranslateY: st.ty.update(&s.spring, target.TranslateY),
		Rotation:   st.rot.update(&s.spring, rot),
		ScaleX:     math.Max(0, st.sx.update(&s.spring, target.ScaleX)),
		ScaleY:     math.Max(0, st.sy.update(&s.spring, target.ScaleY)),
	}

	st.rot.pos = math.Mod(st.rot.pos, 360)
	out.Rotation = st.rot.pos
	if out.Rotation < 0 {
		out.Rotation += 360
	}

	return out
}

func (s *springs) drop(id string) {
	s.mu.Lock()
	delete(s.states, id)
	s.mu.Unlock()
}

func (s *springs) reset() {
	s.mu.Lock()
	s.states = make(map[string]*springState)
	s.mu.Unlock()
}

// shortestTurn returns the signed angle in (-180, 180] from a to b.
func shortestTurn(a, b float64) float64 {
	d := math.Mod(b-a, 360)
	switch {
	case d > 180:
		d -= 360
	case d <= -180:
		d += 360
	}
	return d
}
