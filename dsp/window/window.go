// Package window provides window functions for signal analysis.
//
// See https://wikipedia.org/wiki/Window_function
package window

import (
	"sort"
	"strings"

	"gonum.org/v1/gonum/dsp/window"
	"gonum.org/v1/gonum/floats"
)

// Function applies a window to buf in place. Functions keep a coefficient
// table for the last buffer size and are not safe for concurrent use.
type Function func(buf []float64)

// Rectangle leaves the buffer untouched.
func Rectangle() Function {
	return func([]float64) {}
}

func Hann() Function     { return table(window.Hann) }
func Hamming() Function  { return table(window.Hamming) }
func Blackman() Function { return table(window.Blackman) }
func Lanczos() Function  { return table(window.Lanczos) }
func Nuttall() Function  { return table(window.Nuttall) }

var byName = map[string]func() Function{
	"rectangle": Rectangle,
	"hann":      Hann,
	"hamming":   Hamming,
	"blackman":  Blackman,
	"lanczos":   Lanczos,
	"nuttall":   Nuttall,
}

// Lookup returns a fresh window function by name.
func Lookup(name string) (Function, bool) {
	fn, ok := byName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, false
	}
	return fn(), true
}

// Names lists the known window names.
func Names() []string {
	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func table(shape func([]float64) []float64) Function {
	var coef []float64

	return func(buf []float64) {
		if len(coef) != len(buf) {
			coef = make([]float64, len(buf))
			for i := range coef {
				coef[i] = 1
			}
			shape(coef)
		}

		floats.Mul(buf, coef)
	}
}
