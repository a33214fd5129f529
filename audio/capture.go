package audio

import (
	"context"
	"sync"

	"github.com/noriah/catvj/input"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type CaptureConfig struct {
	Backend input.Backend
	Session input.SessionConfig
	History int // number of mono samples kept, at least Session.SampleSize
	Logger  logrus.FieldLogger
}

// CaptureSource feeds samples from a capture backend session.
type CaptureSource struct {
	cfg CaptureConfig
	log logrus.FieldLogger

	// mu guards buffers while the session writes them
	mu      sync.Mutex
	buffers [][]input.Sample

	histMu  sync.Mutex
	history []float64
	err     error

	cancel context.CancelFunc
	done   chan struct{}
}

// NewCaptureSource prepares a capture. The session starts on Open.
func NewCaptureSource(cfg CaptureConfig) *CaptureSource {
	if cfg.History < cfg.Session.SampleSize {
		cfg.History = cfg.Session.SampleSize
	}

	if cfg.Logger == nil {
		cfg.Logger = logrus.StandardLogger()
	}

	return &CaptureSource{
		cfg:     cfg,
		log:     cfg.Logger.WithField("component", "capture"),
		buffers: input.MakeBuffers(cfg.Session.FrameSize, cfg.Session.SampleSize),
		history: make([]float64, cfg.History),
	}
}

// Open starts the backend session.
func (cs *CaptureSource) Open() error {
	if cs.cfg.Backend == nil {
		return errors.New("no capture backend")
	}

	if cs.cfg.Session.FrameSize < 1 || cs.cfg.Session.SampleSize < 1 {
		return errors.New("invalid capture session size")
	}

	if cs.cancel != nil {
		return nil
	}

	session, err := cs.cfg.Backend.Start(cs.cfg.Session)
	if err != nil {
		return errors.Wrap(err, "failed to start input session")
	}

	ctx, cancel := context.WithCancel(context.Background())
	kickChan := make(chan bool, 1)

	cs.cancel = cancel
	cs.done = make(chan struct{})

	cs.histMu.Lock()
	cs.err = nil
	cs.histMu.Unlock()

	go cs.collect(ctx, kickChan)

	go func() {
		defer close(cs.done)

		err := session.Start(ctx, cs.buffers, kickChan, &cs.mu)
		if err != nil && !errors.Is(err, context.Canceled) {
			cs.log.WithError(err).Warn("capture session ended")

			cs.histMu.Lock()
			cs.err = err
			cs.histMu.Unlock()
		}
	}()

	return nil
}

// collect appends each buffer the session fills to the history.
func (cs *CaptureSource) collect(ctx context.Context, kickChan chan bool) {
	channels := len(cs.buffers)
	mono := make([]float64, cs.cfg.Session.SampleSize)

	for {
		select {
		case <-ctx.Done():
			return
		case <-kickChan:
		}

		cs.mu.Lock()
		for idx := range mono {
			var sum float64
			for _, buf := range cs.buffers {
				sum += buf[idx]
			}
			mono[idx] = sum / float64(channels)
		}
		cs.mu.Unlock()

		cs.histMu.Lock()
		n := copy(cs.history, cs.history[len(mono):])
		copy(cs.history[n:], mono)
		cs.histMu.Unlock()
	}
}

// Window copies the newest captured samples into dst.
func (cs *CaptureSource) Window(dst []float64) error {
	cs.histMu.Lock()
	defer cs.histMu.Unlock()

	if cs.err != nil {
		return cs.err
	}

	fill := len(dst) - len(cs.history)
	for idx := 0; idx < fill; idx++ {
		dst[idx] = 0
	}

	if fill < 0 {
		fill = 0
	}

	copy(dst[fill:], cs.history[len(cs.history)-(len(dst)-fill):])

	return nil
}

// Close stops the session and waits for it to exit.
func (cs *CaptureSource) Close() error {
	if cs.cancel == nil {
		return nil
	}

	cs.cancel()
	<-cs.done

	cs.cancel = nil

	return nil
}
