// Package audio turns connected audio sources into band energies.
package audio

import (
	"io"
	"sort"
	"sync"

	"github.com/noriah/catvj/dsp"
	"github.com/noriah/catvj/dsp/window"
	"github.com/noriah/catvj/fft"
	"github.com/sirupsen/logrus"
)

// Source produces the most recent audio samples without blocking.
type Source interface {
	// Window fills dst with the latest len(dst) mono samples in [-1, 1].
	Window(dst []float64) error
}

// Opener is implemented by sources that need setup when connected.
// A failing Open rejects the connection.
type Opener interface {
	Open() error
}

type Config struct {
	Spectrum dsp.AnalyzerConfig // fft size, decibel range and smoothing
	Split    dsp.BandSplit      // band split points
	Windower window.Function    // data windower, Blackman if nil
	Logger   logrus.FieldLogger
}

// DefaultConfig returns the analyzer defaults.
func DefaultConfig() Config {
	return Config{
		Spectrum: dsp.DefaultAnalyzerConfig(),
		Split:    dsp.DefaultBandSplit(),
		Windower: window.Blackman(),
	}
}

// Analyzer is a shared analysis graph that any number of sources feed.
type Analyzer struct {
	mu sync.Mutex

	sources map[string]Source
	order   []string

	split dsp.BandSplit
	spec  dsp.Analyzer
	wndwr window.Function
	plan  *fft.Plan

	scratch  []float64
	mix      []float64
	spectrum []complex128
	bins     []float64

	closed bool
	log    logrus.FieldLogger
}

// NewAnalyzer creates an analyzer with no sources connected.
func NewAnalyzer(cfg Config) *Analyzer {
	def := DefaultConfig()

	if cfg.Spectrum.SampleSize < 2 {
		cfg.Spectrum = def.Spectrum
	}

	if cfg.Split == (dsp.BandSplit{}) {
		cfg.Split = def.Split
	}

	if cfg.Windower == nil {
		cfg.Windower = def.Windower
	}

	if cfg.Logger == nil {
		cfg.Logger = logrus.StandardLogger()
	}

	size := cfg.Spectrum.SampleSize

	az := &Analyzer{
		sources:  make(map[string]Source),
		split:    cfg.Split,
		spec:     dsp.NewAnalyzer(cfg.Spectrum),
		wndwr:    cfg.Windower,
		scratch:  make([]float64, size),
		mix:      make([]float64, size),
		spectrum: make([]complex128, size/2+1),
		log:      cfg.Logger.WithField("component", "analyzer"),
	}

	az.bins = make([]float64, az.spec.BinCount())

	fft.InitPlan(&az.plan, az.mix, az.spectrum)

	return az
}

// Connect attaches src under id. Connecting an id that is already attached
// detaches the old source first. It returns false when the source can not be
// attached; the caller should treat it as silent.
func (az *Analyzer) Connect(id string, src Source) bool {
	if src == nil {
		return false
	}

	az.mu.Lock()
	defer az.mu.Unlock()

	if az.closed {
		return false
	}

	az.detach(id)

	if o, ok := src.(Opener); ok {
		if err := o.Open(); err != nil {
			az.log.WithError(err).WithField("source", id).Warn("failed to connect source")
			az.spec.Reset()
			return false
		}
	}

	az.sources[id] = src
	az.order = append(az.order, id)
	az.spec.Reset()

	az.log.WithField("source", id).Debug("source connected")

	return true
}

// Disconnect removes the source attached under id. Unknown ids are ignored.
func (az *Analyzer) Disconnect(id string) {
	az.mu.Lock()
	defer az.mu.Unlock()

	if az.detach(id) {
		az.spec.Reset()
		az.log.WithField("source", id).Debug("source disconnected")
	}
}

// detach must be called with mu held.
func (az *Analyzer) detach(id string) bool {
	src, ok := az.sources[id]
	if !ok {
		return false
	}

	delete(az.sources, id)

	for idx, name := range az.order {
		if name == id {
			az.order = append(az.order[:idx], az.order[idx+1:]...)
			break
		}
	}

	if c, ok := src.(io.Closer); ok {
		if err := c.Close(); err != nil {
			az.log.WithError(err).WithField("source", id).Debug("failed to close source")
		}
	}

	return true
}

// Connected returns the ids of all attached sources, sorted.
func (az *Analyzer) Connected() []string {
	az.mu.Lock()
	defer az.mu.Unlock()

	out := make([]string, len(az.order))
	copy(out, az.order)
	sort.Strings(out)

	return out
}

// Sample mixes every connected source and returns the current band levels.
// It returns the zero Bands when nothing is connected or after Close.
func (az *Analyzer) Sample() dsp.Bands {
	az.mu.Lock()
	defer az.mu.Unlock()

	if az.closed || len(az.order) == 0 {
		return dsp.Bands{}
	}

	for idx := range az.mix {
		az.mix[idx] = 0
	}

	for _, id := range az.order {
		for idx := range az.scratch {
			az.scratch[idx] = 0
		}

		if err := az.sources[id].Window(az.scratch); err != nil {
			az.log.WithError(err).WithField("source", id).Debug("skipping source")
			continue
		}

		for idx, v := range az.scratch {
			az.mix[idx] += v
		}
	}

	az.wndwr(az.mix)
	az.plan.Execute()
	az.spec.Process(az.spectrum, az.bins)

	return az.split.Split(az.bins)
}

// Close releases every source. The analyzer can not be used afterwards.
func (az *Analyzer) Close() {
	az.mu.Lock()
	defer az.mu.Unlock()

	if az.closed {
		return
	}

	for len(az.order) > 0 {
		az.detach(az.order[0])
	}

	az.closed = true
}
