package gesture

import (
	"math"
	"testing"
	"time"
)

var epoch = time.Unix(1700000000, 0)

func makeStroke(n int, step time.Duration, f func(i int) (float64, float64)) []Point {
	points := make([]Point, n)
	for i := range points {
		x, y := f(i)
		points[i] = Point{X: x, Y: y, Time: epoch.Add(time.Duration(i) * step)}
	}
	return points
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		points []Point
		want   Shape
	}{
		{
			name: "dot",
			points: makeStroke(9, time.Millisecond, func(i int) (float64, float64) {
				return 0.1 * float64(i), 0.5
			}),
			want: ShapeDot,
		},
		{
			name: "horizontal line",
			points: makeStroke(20, 10*time.Millisecond, func(i int) (float64, float64) {
				return 0.1 + 0.04*float64(i), 0.5
			}),
			want: ShapeLine,
		},
		{
			name: "vertical line",
			points: makeStroke(20, 10*time.Millisecond, func(i int) (float64, float64) {
				return 0.3, 0.1 + 0.04*float64(i)
			}),
			want: ShapeLine,
		},
		{
			name: "closed circle",
			points: makeStroke(40, 10*time.Millisecond, func(i int) (float64, float64) {
				a := 2 * math.Pi * float64(i) / 39
				return 0.5 + 0.2*math.Cos(a), 0.5 + 0.2*math.Sin(a)
			}),
			want: ShapeCircle,
		},
		{
			name: "spiral",
			points: makeStroke(120, 5*time.Millisecond, func(i int) (float64, float64) {
				a := 6 * math.Pi * float64(i) / 119
				r := 0.05 + 0.25*float64(i)/119
				return 0.5 + r*math.Cos(a), 0.5 + r*math.Sin(a)
			}),
			want: ShapeSpiral,
		},
		{
			name: "zigzag",
			points: makeStroke(20, 10*time.Millisecond, func(i int) (float64, float64) {
				return 0.05 + 0.045*float64(i), 0.5 + 0.05*float64(i%2)
			}),
			want: ShapeZigzag,
		},
		{
			name: "quarter arc",
			points: makeStroke(20, 10*time.Millisecond, func(i int) (float64, float64) {
				a := math.Pi / 2 * float64(i) / 19
				return 0.2 + 0.5*math.Cos(a), 0.2 + 0.5*math.Sin(a)
			}),
			want: ShapeCurve,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := Classify(test.points); got != test.want {
				t.Errorf("got %s, want %s (curvature %f)", got, test.want, Curvature(test.points))
			}
		})
	}
}

func TestCurvatureSkipsRepeats(t *testing.T) {
	points := []Point{{X: 0, Y: 0}, {X: 0.1, Y: 0}, {X: 0.1, Y: 0}, {X: 0.2, Y: 0}}
	if c := Curvature(points); c != 0 {
		t.Errorf("expected no curvature, got %f", c)
	}
}

func TestVelocity(t *testing.T) {
	tests := []struct {
		name   string
		points []Point
		want   float64
	}{
		{"empty", nil, 0},
		{"single", []Point{{X: 0.5, Y: 0.5, Time: epoch}}, 0},
		{"no time", []Point{{X: 0, Y: 0, Time: epoch}, {X: 1, Y: 0, Time: epoch}}, 0},
		{
			"steady",
			[]Point{
				{X: 0, Y: 0, Time: epoch},
				{X: 0.3, Y: 0.4, Time: epoch.Add(100 * time.Millisecond)},
				{X: 0.3, Y: 0.9, Time: epoch.Add(250 * time.Millisecond)},
			},
			1.0 / 250,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := Velocity(test.points); math.Abs(got-test.want) > 1e-12 {
				t.Errorf("got %g, want %g", got, test.want)
			}
		})
	}
}

func TestEvent(t *testing.T) {
	ev := Event{
		Points:   []Point{{X: 0.2, Y: 0.4}, {X: 0.6, Y: 0.8}},
		Velocity: FullVelocity / 4,
		Created:  epoch,
	}

	if x, y := ev.Centroid(); math.Abs(x-0.4) > 1e-12 || math.Abs(y-0.6) > 1e-12 {
		t.Errorf("unexpected centroid %f,%f", x, y)
	}

	if x, y := (Event{}).Centroid(); x != 0.5 || y != 0.5 {
		t.Errorf("empty centroid should be the center, got %f,%f", x, y)
	}

	if v := ev.NormalizedVelocity(); v != 0.25 {
		t.Errorf("unexpected normalized velocity %f", v)
	}

	ev.Velocity = math.NaN()
	if v := ev.NormalizedVelocity(); v != 0 {
		t.Errorf("NaN velocity should normalize to 0, got %f", v)
	}

	ev.Velocity = 1
	if v := ev.NormalizedVelocity(); v != 1 {
		t.Errorf("fast velocity should saturate, got %f", v)
	}

	if ev.Expired(epoch.Add(999 * time.Millisecond)) {
		t.Error("expired too early")
	}

	if !ev.Expired(epoch.Add(Lifetime)) {
		t.Error("should be expired after lifetime")
	}
}

func TestParseShape(t *testing.T) {
	for s := ShapeDot; s <= ShapeCurve; s++ {
		got, ok := ParseShape(s.String())
		if !ok || got != s {
			t.Errorf("%s: got %s, %v", s, got, ok)
		}
	}

	if _, ok := ParseShape("triangle"); ok {
		t.Error("expected unknown shape")
	}
}
