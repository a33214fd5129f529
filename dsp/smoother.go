package dsp

import "math"

// SmootherConfig configures a time smoother
type SmootherConfig struct {
	Bins            int     // number of bins tracked
	SmoothingFactor float64 // weight of the previous value, [0, 1)
}

// Smoother blends each bin with its value from the previous frame.
type Smoother interface {
	SmoothBin(int, float64) float64
	Reset()
}

type smoother struct {
	values       []float64 // old values used for smoothing
	smoothFactor float64   // smothing factor
}

// NewSmoother returns a smoother over cfg.Bins bins.
func NewSmoother(cfg SmootherConfig) Smoother {
	sm := &smoother{
		values: make([]float64, cfg.Bins),
	}

	sm.setSmoothing(cfg.SmoothingFactor)

	return sm
}

func (sm *smoother) SmoothBin(idx int, value float64) float64 {
	if idx < 0 || idx >= len(sm.values) {
		return value
	}

	if math.IsNaN(value) || math.IsInf(value, 0) {
		value = 0.0
	}

	value *= 1.0 - sm.smoothFactor
	value += sm.values[idx] * sm.smoothFactor

	sm.values[idx] = value

	return value
}

// Reset forgets all history.
func (sm *smoother) Reset() {
	for idx := range sm.values {
		sm.values[idx] = 0
	}
}

func (sm *smoother) setSmoothing(factor float64) {
	switch {
	case math.IsNaN(factor), factor < 0.0:
		factor = 0.0
	case factor > 0.99:
		factor = 0.99
	}

	sm.smoothFactor = factor
}
