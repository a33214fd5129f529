// Package util holds small helpers shared by outputs.
package util

import "math"

// MovingWindow keeps running statistics over the last Cap values.
type MovingWindow struct {
	values []float64
	head   int // next slot to write
	length int

	sum    float64
	sumSq  float64
	mean   float64
	stddev float64
}

// NewMovingWindow returns a window over size values.
func NewMovingWindow(size int) *MovingWindow {
	if size < 1 {
		size = 1
	}

	return &MovingWindow{values: make([]float64, size)}
}

func (mw *MovingWindow) calcFinal() (float64, float64) {
	if mw.length == 0 {
		mw.mean, mw.stddev = 0, 0
		return 0, 0
	}

	n := float64(mw.length)
	mw.mean = mw.sum / n

	if mw.length > 1 {
		// sample variance from the running sums
		mw.stddev = math.Sqrt(math.Abs((mw.sumSq - n*mw.mean*mw.mean) / (n - 1)))
	} else {
		mw.stddev = 0
	}

	return mw.mean, mw.stddev
}

// Update adds value, dropping the oldest one when full.
func (mw *MovingWindow) Update(value float64) (float64, float64) {
	if mw.length == len(mw.values) {
		old := mw.values[mw.head]
		mw.sum -= old
		mw.sumSq -= old * old
	} else {
		mw.length++
	}

	mw.values[mw.head] = value
	mw.head = (mw.head + 1) % len(mw.values)

	mw.sum += value
	mw.sumSq += value * value

	return mw.calcFinal()
}

// Reset empties the window.
func (mw *MovingWindow) Reset() {
	mw.head, mw.length = 0, 0
	mw.sum, mw.sumSq = 0, 0
	mw.mean, mw.stddev = 0, 0
}

// Len returns how many values are in the window
func (mw *MovingWindow) Len() int {
	return mw.length
}

// Mean is the moving window average
func (mw *MovingWindow) Mean() float64 {
	return mw.mean
}

// StdDev is the moving window standard deviation
func (mw *MovingWindow) StdDev() float64 {
	return mw.stddev
}

// Rate tracks how often something happens using a moving window of
// intervals, in events per second.
type Rate struct {
	window *MovingWindow
	last   float64 // seconds
	primed bool
}

// NewRate returns a rate averaged over size intervals.
func NewRate(size int) *Rate {
	return &Rate{window: NewMovingWindow(size)}
}

// Tick records an event at seconds and returns the current rate. A clock
// that moves backwards starts the window over.
func (r *Rate) Tick(seconds float64) float64 {
	switch {
	case r.primed && seconds < r.last:
		r.window.Reset()
	case r.primed && seconds > r.last:
		r.window.Update(seconds - r.last)
	}

	r.last = seconds
	r.primed = true

	return r.Value()
}

// Value returns the current rate, 0 until two events were seen.
func (r *Rate) Value() float64 {
	if r.window.Len() == 0 {
		return 0
	}
	if mean := r.window.Mean(); mean > 0 {
		return 1 / mean
	}
	return 0
}

// Jitter is the standard deviation of the intervals in milliseconds.
func (r *Rate) Jitter() float64 {
	return r.window.StdDev() * 1000
}
