package audio

import (
	"errors"
	"math"
	"testing"

	"github.com/noriah/catvj/dsp"
)

// sineSource writes the same sine window on every read.
type sineSource struct {
	cycles float64
	amp    float64
	closed int
}

func (s *sineSource) Window(dst []float64) error {
	for i := range dst {
		dst[i] = s.amp * math.Sin(2*math.Pi*s.cycles*float64(i)/float64(len(dst)))
	}
	return nil
}

func (s *sineSource) Close() error {
	s.closed++
	return nil
}

type failingSource struct{}

func (failingSource) Window([]float64) error {
	return errors.New("no frame")
}

type rejectingSource struct {
	sineSource
}

func (*rejectingSource) Open() error {
	return errors.New("unsupported")
}

func inUnit(b dsp.Bands) bool {
	for _, v := range []float64{b.Bass, b.Mid, b.High, b.Overall} {
		if math.IsNaN(v) || v < 0 || v > 1 {
			return false
		}
	}
	return true
}

func TestSampleBounds(t *testing.T) {
	tests := []struct {
		name    string
		sources []*sineSource
	}{
		{"quiet", []*sineSource{{cycles: 10, amp: 0.001}}},
		{"loud", []*sineSource{{cycles: 10, amp: 50}}},
		{"mixed", []*sineSource{{cycles: 3, amp: 1}, {cycles: 90, amp: 4}, {cycles: 220, amp: 20}}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			az := NewAnalyzer(DefaultConfig())
			defer az.Close()

			for i, src := range test.sources {
				if !az.Connect(string(rune('a'+i)), src) {
					t.Fatal("connect failed")
				}
			}

			for i := 0; i < 20; i++ {
				if b := az.Sample(); !inUnit(b) {
					t.Fatalf("sample %d out of range: %+v", i, b)
				}
			}
		})
	}
}

func TestSampleZero(t *testing.T) {
	az := NewAnalyzer(DefaultConfig())

	if b := az.Sample(); b != (dsp.Bands{}) {
		t.Errorf("expected zero bands with no sources, got %+v", b)
	}

	src := &sineSource{cycles: 10, amp: 1}
	az.Connect("a", src)

	if b := az.Sample(); b.Bass == 0 {
		t.Error("expected bass energy")
	}

	az.Close()

	if src.closed != 1 {
		t.Errorf("source closed %d times", src.closed)
	}

	if b := az.Sample(); b != (dsp.Bands{}) {
		t.Errorf("expected zero bands after close, got %+v", b)
	}

	if az.Connect("b", &sineSource{cycles: 10, amp: 1}) {
		t.Error("connect after close should fail")
	}

	// safe to call twice
	az.Close()
}

func TestBandPlacement(t *testing.T) {
	az := NewAnalyzer(DefaultConfig())
	defer az.Close()

	az.Connect("low", &sineSource{cycles: 10, amp: 1})

	var b dsp.Bands
	for i := 0; i < 10; i++ {
		b = az.Sample()
	}

	if b.Bass <= b.High {
		t.Errorf("expected bass > high, got %+v", b)
	}

	az.Connect("low", &sineSource{cycles: 200, amp: 1})
	for i := 0; i < 10; i++ {
		b = az.Sample()
	}

	if b.High <= b.Bass {
		t.Errorf("expected high > bass, got %+v", b)
	}
}

func TestDisconnectLeavesRemaining(t *testing.T) {
	both := NewAnalyzer(DefaultConfig())
	defer both.Close()

	alone := NewAnalyzer(DefaultConfig())
	defer alone.Close()

	both.Connect("keep", &sineSource{cycles: 12, amp: 0.5})
	both.Connect("drop", &sineSource{cycles: 150, amp: 2})

	for i := 0; i < 5; i++ {
		both.Sample()
	}

	both.Disconnect("drop")
	alone.Connect("keep", &sineSource{cycles: 12, amp: 0.5})

	for i := 0; i < 5; i++ {
		got, want := both.Sample(), alone.Sample()
		if got != want {
			t.Fatalf("sample %d: got %+v, want %+v", i, got, want)
		}
	}

	// unknown ids are ignored
	both.Disconnect("drop")
	both.Disconnect("never")

	if ids := both.Connected(); len(ids) != 1 || ids[0] != "keep" {
		t.Errorf("unexpected sources %v", ids)
	}
}

func TestReconnectReplaces(t *testing.T) {
	az := NewAnalyzer(DefaultConfig())
	defer az.Close()

	first := &sineSource{cycles: 10, amp: 1}
	second := &sineSource{cycles: 10, amp: 1}

	az.Connect("a", first)
	az.Connect("a", second)

	if first.closed != 1 {
		t.Errorf("old source closed %d times", first.closed)
	}

	if ids := az.Connected(); len(ids) != 1 {
		t.Errorf("expected one source, got %v", ids)
	}
}

func TestFailingSourceSkipped(t *testing.T) {
	mixed := NewAnalyzer(DefaultConfig())
	defer mixed.Close()

	alone := NewAnalyzer(DefaultConfig())
	defer alone.Close()

	mixed.Connect("good", &sineSource{cycles: 40, amp: 1})
	mixed.Connect("bad", failingSource{})
	alone.Connect("good", &sineSource{cycles: 40, amp: 1})

	for i := 0; i < 5; i++ {
		if got, want := mixed.Sample(), alone.Sample(); got != want {
			t.Fatalf("sample %d: got %+v, want %+v", i, got, want)
		}
	}
}

func TestRejectedSource(t *testing.T) {
	az := NewAnalyzer(DefaultConfig())
	defer az.Close()

	if az.Connect("bad", &rejectingSource{}) {
		t.Fatal("expected connect to fail")
	}

	if az.Connect("nil", nil) {
		t.Fatal("expected nil source to fail")
	}

	if ids := az.Connected(); len(ids) != 0 {
		t.Errorf("unexpected sources %v", ids)
	}
}

func BenchmarkSample(b *testing.B) {
	az := NewAnalyzer(DefaultConfig())
	defer az.Close()

	az.Connect("a", &sineSource{cycles: 10, amp: 1})
	az.Connect("b", &sineSource{cycles: 100, amp: 1})

	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		az.Sample()
	}
}
