package gesture

import "math"

// MinExtent is the smallest bounding box height used for the aspect ratio.
// It keeps flat strokes from dividing by zero.
const MinExtent = 0.01

// Classify returns the shape of a stroke.
//
// Strokes with fewer than MinPoints points are dots. Otherwise the aspect
// ratio of the bounding box and the total turning angle decide:
//
//	elongated (ratio > 3 or < 0.33): line, or zigzag when turning >= pi
//	squarish (0.7 < ratio < 1.3):    spiral above 3pi, circle above 1.5pi
//	anything else:                   zigzag above 2pi, otherwise curve
func Classify(points []Point) Shape {
	if len(points) < MinPoints {
		return ShapeDot
	}

	minX, maxX := points[0].X, points[0].X
	minY, maxY := points[0].Y, points[0].Y

	for _, p := range points[1:] {
		minX = math.Min(minX, p.X)
		maxX = math.Max(maxX, p.X)
		minY = math.Min(minY, p.Y)
		maxY = math.Max(maxY, p.Y)
	}

	aspect := (maxX - minX) / math.Max(maxY-minY, MinExtent)
	curvature := Curvature(points)

	switch {
	case aspect > 3 || aspect < 0.33:
		if curvature < math.Pi {
			return ShapeLine
		}
		return ShapeZigzag

	case aspect > 0.7 && aspect < 1.3:
		if curvature > 3*math.Pi {
			return ShapeSpiral
		}
		if curvature > 1.5*math.Pi {
			return ShapeCircle
		}
	}

	if curvature > 2*math.Pi {
		return ShapeZigzag
	}
	return ShapeCurve
}

// Curvature sums the absolute heading change at each interior point.
// Heading changes are wrapped into [-pi, pi] and zero length segments are
// skipped.
func Curvature(points []Point) float64 {
	var total float64
	var prev float64
	var havePrev bool

	for i := 1; i < len(points); i++ {
		dx := points[i].X - points[i-1].X
		dy := points[i].Y - points[i-1].Y

		if dx == 0 && dy == 0 {
			continue
		}

		heading := math.Atan2(dy, dx)
		if havePrev {
			total += math.Abs(wrapAngle(heading - prev))
		}

		prev = heading
		havePrev = true
	}

	return total
}

func wrapAngle(a float64) float64 {
	for a > math.Pi {
		a -= 2 * math.Pi
	}
	for a < -math.Pi {
		a += 2 * math.Pi
	}
	return a
}

// Velocity returns the path length divided by the elapsed time in
// milliseconds. It is zero for fewer than two points or no elapsed time.
func Velocity(points []Point) float64 {
	if len(points) < 2 {
		return 0
	}

	var dist float64
	for i := 1; i < len(points); i++ {
		dist += math.Hypot(points[i].X-points[i-1].X, points[i].Y-points[i-1].Y)
	}

	elapsed := points[len(points)-1].Time.Sub(points[0].Time)
	ms := float64(elapsed) / float64(1e6)

	if ms <= 0 {
		return 0
	}

	return dist / ms
}
