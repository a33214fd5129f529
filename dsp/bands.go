package dsp

import (
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// Band names one of the energy bands derived from a spectrum.
type Band int

// Bands we split the spectrum into
const (
	BandOverall Band = iota
	BandBass
	BandMid
	BandHigh
)

var bandNames = [...]string{
	BandOverall: "overall",
	BandBass:    "bass",
	BandMid:     "mid",
	BandHigh:    "high",
}

func (b Band) String() string {
	if b < 0 || int(b) >= len(bandNames) {
		return "unknown"
	}
	return bandNames[b]
}

// ParseBand returns the band for a name. Unknown names resolve to BandOverall.
func ParseBand(name string) (Band, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for idx, n := range bandNames {
		if n == name {
			return Band(idx), true
		}
	}
	return BandOverall, false
}

// Bands holds the energy of each band, each within [0, 1].
type Bands struct {
	Bass    float64
	Mid     float64
	High    float64
	Overall float64
}

// Get returns the level of a single band.
func (b Bands) Get(band Band) float64 {
	switch band {
	case BandBass:
		return b.Bass
	case BandMid:
		return b.Mid
	case BandHigh:
		return b.High
	default:
		return b.Overall
	}
}

// Clamp forces every band into [0, 1]. NaN becomes 0.
func (b Bands) Clamp() Bands {
	return Bands{
		Bass:    unit(b.Bass),
		Mid:     unit(b.Mid),
		High:    unit(b.High),
		Overall: unit(b.Overall),
	}
}

func unit(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

// BandSplit partitions a bin range into three contiguous bands.
// BassEnd and MidEnd are fractions of the bin count.
type BandSplit struct {
	BassEnd float64
	MidEnd  float64
}

// DefaultBandSplit puts bass in the lowest 15% of bins, mid up to 50%,
// and everything above that in high.
func DefaultBandSplit() BandSplit {
	return BandSplit{BassEnd: 0.15, MidEnd: 0.5}
}

// Bounds returns the exclusive end index of the bass and mid bands for count
// bins. The high band runs from mid to count.
func (bs BandSplit) Bounds(count int) (bassEnd, midEnd int) {
	if count <= 0 {
		return 0, 0
	}

	bassFrac := unit(bs.BassEnd)
	midFrac := math.Max(bassFrac, unit(bs.MidEnd))

	bassEnd = int(math.Floor(float64(count) * bassFrac))
	midEnd = int(math.Floor(float64(count) * midFrac))

	// with enough bins, no band is left empty
	if count >= 3 {
		if bassEnd < 1 {
			bassEnd = 1
		}
		if midEnd <= bassEnd {
			midEnd = bassEnd + 1
		}
		if midEnd >= count {
			midEnd = count - 1
			if bassEnd >= midEnd {
				bassEnd = midEnd - 1
			}
		}
	}

	return bassEnd, midEnd
}

// Split averages normalized bins (each in [0, 1]) into Bands.
func (bs BandSplit) Split(bins []float64) Bands {
	count := len(bins)
	if count == 0 {
		return Bands{}
	}

	bassEnd, midEnd := bs.Bounds(count)

	out := Bands{
		Bass:    mean(bins[:bassEnd]),
		Mid:     mean(bins[bassEnd:midEnd]),
		High:    mean(bins[midEnd:]),
		Overall: mean(bins),
	}

	return out.Clamp()
}

func mean(bins []float64) float64 {
	if len(bins) == 0 {
		return 0
	}
	return floats.Sum(bins) / float64(len(bins))
}
