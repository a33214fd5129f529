// Package dsp provides audio analysis
//
// Some notes:
//
// https://webaudio.github.io/web-audio-api/#fft-windowing-and-smoothing-over-time
// https://dlbeer.co.nz/articles/fftvis.html
// https://github.com/hvianna/audioMotion-analyzer/blob/master/src/audioMotion-analyzer.js#L1053
// https://stackoverflow.com/questions/3694918/how-to-extract-frequency-associated-with-fft-values-in-python
//   - https://stackoverflow.com/a/27191172
package dsp

import (
	"math"
	"math/cmplx"
)

// MaxByteValue is the largest magnitude a bin can report.
const MaxByteValue = 255.0

type AnalyzerConfig struct {
	SampleSize      int     // number of samples per fft
	MinDecibels     float64 // decibel value mapped to 0
	MaxDecibels     float64 // decibel value mapped to MaxByteValue
	SmoothingFactor float64 // time smoothing constant [0, 1)
}

// DefaultAnalyzerConfig matches the usual browser analyser settings.
func DefaultAnalyzerConfig() AnalyzerConfig {
	return AnalyzerConfig{
		SampleSize:      512,
		MinDecibels:     -100,
		MaxDecibels:     -30,
		SmoothingFactor: 0.8,
	}
}

// Analyzer turns fft output into normalized byte magnitudes.
type Analyzer interface {
	BinCount() int
	Process(src []complex128, dst []float64)
	Reset()
}

// analyzer is a byte spectrum over one fft frame
type analyzer struct {
	cfg      AnalyzerConfig // the analyzer config
	binCount int            // number of bins we look at
	smth     Smoother       // time smoothing
}

func NewAnalyzer(cfg AnalyzerConfig) Analyzer {
	if cfg.MaxDecibels <= cfg.MinDecibels {
		def := DefaultAnalyzerConfig()
		cfg.MinDecibels, cfg.MaxDecibels = def.MinDecibels, def.MaxDecibels
	}

	binCount := cfg.SampleSize / 2
	if binCount < 0 {
		binCount = 0
	}

	return &analyzer{
		cfg:      cfg,
		binCount: binCount,
		smth: NewSmoother(SmootherConfig{
			Bins:            binCount,
			SmoothingFactor: cfg.SmoothingFactor,
		}),
	}
}

// BinCount returns the number of bins Process writes
func (az *analyzer) BinCount() int {
	return az.binCount
}

// Process writes min(BinCount, len(src), len(dst)) values in [0, 1] into dst.
func (az *analyzer) Process(src []complex128, dst []float64) {
	count := az.binCount
	if len(src) < count {
		count = len(src)
	}
	if len(dst) < count {
		count = len(dst)
	}

	size := float64(az.cfg.SampleSize)
	dbRange := az.cfg.MaxDecibels - az.cfg.MinDecibels

	for idx := 0; idx < count; idx++ {
		mag := cmplx.Abs(src[idx]) / size
		mag = az.smth.SmoothBin(idx, mag)

		if mag <= 0 {
			dst[idx] = 0
			continue
		}

		db := 20 * math.Log10(mag)
		scaled := math.Floor(MaxByteValue * (db - az.cfg.MinDecibels) / dbRange)

		switch {
		case scaled < 0:
			scaled = 0
		case scaled > MaxByteValue:
			scaled = MaxByteValue
		}

		dst[idx] = scaled / MaxByteValue
	}

	for idx := count; idx < len(dst); idx++ {
		dst[idx] = 0
	}
}

// Reset drops the smoothing history.
func (az *analyzer) Reset() {
	az.smth.Reset()
}
