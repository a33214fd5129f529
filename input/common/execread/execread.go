// Package execread runs a capture tool and reads raw interleaved float
// samples from its stdout.
package execread

import (
	"bufio"
	"context"
	"encoding/binary"
	"io"
	"math"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/noriah/catvj/input"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Format is the sample encoding the tool writes.
type Format int

const (
	Float32LE Format = iota
	Float64LE
)

// Size returns the bytes per sample.
func (f Format) Size() int {
	if f == Float64LE {
		return 8
	}
	return 4
}

type Config struct {
	Argv    []string
	Format  Format
	Session input.SessionConfig
	Logger  logrus.FieldLogger // receives the tool's stderr at debug level
}

// Session reads samples from one run of a command.
type Session struct {
	// OnStart is called after the command started. Nil by default.
	OnStart func(ctx context.Context, cmd *exec.Cmd) error

	cfg Config
	log logrus.FieldLogger
}

func NewSession(cfg Config) (*Session, error) {
	if len(cfg.Argv) < 1 {
		return nil, errors.New("argv has no arg0")
	}

	if cfg.Logger == nil {
		cfg.Logger = logrus.StandardLogger()
	}

	return &Session{
		cfg: cfg,
		log: cfg.Logger.WithField("cmd", cfg.Argv[0]),
	}, nil
}

// Argv returns the command line the session runs.
func (s *Session) Argv() []string {
	return append([]string(nil), s.cfg.Argv...)
}

func (s *Session) Start(ctx context.Context, dst [][]input.Sample, kickChan chan bool, mu *sync.Mutex) error {
	scfg := s.cfg.Session

	if !input.EnsureBufferLen(scfg, dst) {
		return errors.New("invalid dst length given")
	}

	cmd := exec.CommandContext(ctx, s.cfg.Argv[0], s.cfg.Argv[1:]...)

	// stderr goes to the log so it never draws over the preview
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return errors.Wrap(err, "failed to get stderr pipe")
	}

	o, err := cmd.StdoutPipe()
	if err != nil {
		return errors.Wrap(err, "failed to get stdout pipe")
	}
	defer o.Close()

	// deadlines need the *os.File
	of, ok := o.(*os.File)
	if !ok {
		return errors.New("stdout pipe is not an *os.File")
	}

	if err := cmd.Start(); err != nil {
		return errors.Wrapf(err, "failed to start %s", s.cfg.Argv[0])
	}

	defer func() {
		cmd.Process.Kill()
		cmd.Wait()
	}()

	go s.logLines(stderr)

	if s.OnStart != nil {
		if err := s.OnStart(ctx, cmd); err != nil {
			return err
		}
	}

	raw := make([]byte, scfg.SampleSize*scfg.FrameSize*s.cfg.Format.Size())

	batch := time.Duration(float64(scfg.SampleSize) / scfg.SampleRate * float64(time.Second))

	// the tool drops audio when it falls behind, so the first wait is long
	// and later waits after a stall are short
	stalled := false

	for {
		timeout := batch
		if !stalled {
			timeout *= 6
		}

		if err := of.SetReadDeadline(time.Now().Add(timeout)); err != nil {
			return errors.Wrap(err, "failed to set read deadline")
		}

		_, err := io.ReadFull(o, raw)

		switch {
		case err == nil:
			stalled = false

			mu.Lock()
			Decode(raw, s.cfg.Format, dst)
			mu.Unlock()

		case errors.Is(err, os.ErrDeadlineExceeded):
			if !stalled {
				s.log.Debug("capture stalled, writing silence")
			}
			stalled = true

			mu.Lock()
			for _, buf := range dst {
				for i := range buf {
					buf[i] = 0
				}
			}
			mu.Unlock()

		case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return errors.Errorf("%s exited", s.cfg.Argv[0])

		default:
			return errors.Wrap(err, "failed to read samples")
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case kickChan <- true:
		}
	}
}

func (s *Session) logLines(r io.Reader) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		s.log.Debug(scanner.Text())
	}
}

// Decode deinterleaves raw little endian samples into one buffer per
// channel. Frames that do not fit in dst are ignored.
func Decode(raw []byte, f Format, dst [][]input.Sample) {
	channels := len(dst)
	if channels == 0 {
		return
	}

	size := f.Size()
	count := len(raw) / size

	for n := 0; n < count; n++ {
		ch, idx := n%channels, n/channels
		if idx >= len(dst[ch]) {
			return
		}

		b := raw[n*size : (n+1)*size]

		if f == Float64LE {
			dst[ch][idx] = math.Float64frombits(binary.LittleEndian.Uint64(b))
		} else {
			dst[ch][idx] = float64(math.Float32frombits(binary.LittleEndian.Uint32(b)))
		}
	}
}
