// Package fft provides generic abstractions around fourier transformers.
package fft

import (
	"gonum.org/v1/gonum/dsp/fourier"
)

// Plan holds a gonum FFT plan.
type Plan struct {
	input  []float64
	output []complex128
	fft    *fourier.FFT
}

// InitPlan sets up a plan over input and output. Output must have room for
// len(input)/2+1 coefficients.
func InitPlan(pointer **Plan, input []float64, output []complex128) {
	(*pointer) = &Plan{
		input:  input,
		output: output,
	}

	(*pointer).init()
}

func (p *Plan) init() {
	if len(p.input) > 0 {
		p.fft = fourier.NewFFT(len(p.input))
	}
}

// Len returns the number of real samples the plan transforms.
func (p *Plan) Len() int {
	return len(p.input)
}

// Execute executes the gonum plan.
func (p *Plan) Execute() {
	if p.fft == nil {
		return
	}
	p.fft.Coefficients(p.output, p.input)
}
