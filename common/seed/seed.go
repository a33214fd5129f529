// Package seed provides a small seeded pseudo-random generator.
package seed

// RNG is a Mulberry32 generator. The same seed always produces the same
// sequence.
type RNG struct {
	state       uint32
	initialSeed uint32
}

// New creates a generator starting at seed.
func New(seed uint32) *RNG {
	return &RNG{
		state:       seed,
		initialSeed: seed,
	}
}

// SetSeed sets a new seed and resets the generator state.
func (r *RNG) SetSeed(seed uint32) {
	r.state = seed
	r.initialSeed = seed
}

// Reset restarts the sequence from the initial seed.
func (r *RNG) Reset() {
	r.state = r.initialSeed
}

// Float returns a number in [0, 1).
func (r *RNG) Float() float64 {
	r.state += 0x6D2B79F5
	t := r.state
	t = (t ^ (t >> 15)) * (t | 1)
	t ^= t + (t^(t>>7))*(t|61)
	return float64(t^(t>>14)) / 4294967296.0
}

// Range returns a number in [min, max).
func (r *RNG) Range(min, max float64) float64 {
	return r.Float()*(max-min) + min
}

// Mix derives a seed from a timestamp and a salt.
func Mix(millis int64, salt uint32) uint32 {
	s := uint32(millis) ^ uint32(millis>>32) ^ (salt * 2654435761)
	s = (s ^ (s >> 16)) * 0x85ebca6b
	s = (s ^ (s >> 13)) * 0xc2b2ae35
	return s ^ (s >> 16)
}
