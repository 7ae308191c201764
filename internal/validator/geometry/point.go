package geometry

import "math"

// ============================================================
// Geometry primitives
// ============================================================

// Point is a floor-plan coordinate: X is world X, Y is world Z.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

func Subtract(a, b Point) Point {
	return Point{X: a.X - b.X, Y: a.Y - b.Y}
}

func Dot(a, b Point) float64 {
	return a.X*b.X + a.Y*b.Y
}

// Cross is the scalar 2D cross product x1*y2 - x2*y1.
func Cross(a, b Point) float64 {
	return a.X*b.Y - b.X*a.Y
}

func MagnitudeSquared(a Point) float64 {
	return a.X*a.X + a.Y*a.Y
}

func Distance(a, b Point) float64 {
	return math.Sqrt(MagnitudeSquared(Subtract(a, b)))
}

// Normalize returns the unit vector of v, or the zero vector.
func Normalize(v Point) Point {
	length := math.Sqrt(MagnitudeSquared(v))
	if length == 0 {
		return Point{}
	}
	return Point{X: v.X / length, Y: v.Y / length}
}

// TransformPoint maps a local (x, z) point into world (X, Z). The caller must
// have checked len(m) == 16.
func TransformPoint(local Point, m []float64) Point {
	return Point{
		X: m[0]*local.X + m[8]*local.Y + m[12],
		Y: m[2]*local.X + m[10]*local.Y + m[14],
	}
}

// TransformAll maps every local point through m.
func TransformAll(local []Point, m []float64) []Point {
	out := make([]Point, len(local))
	for i, p := range local {
		out[i] = TransformPoint(p, m)
	}
	return out
}

// DistToSegment returns the distance from p to the segment [a, b]. The
// endpoints are put in (X, Y) order first so swapping them gives the
// bit-identical result.
func DistToSegment(p, a, b Point) float64 {
	if less(b, a) {
		a, b = b, a
	}
	ab := Subtract(b, a)
	lenSq := MagnitudeSquared(ab)
	if lenSq == 0 {
		return Distance(p, a)
	}

	t := Dot(Subtract(p, a), ab) / lenSq

	// Clamp to the endpoints without re-deriving them, keeps endpoint
	// distances exact.
	var closest Point
	switch {
	case t <= 0:
		closest = a
	case t >= 1:
		closest = b
	default:
		closest = Point{X: a.X + t*ab.X, Y: a.Y + t*ab.Y}
	}
	return Distance(p, closest)
}

func less(a, b Point) bool {
	if a.X != b.X {
		return a.X < b.X
	}
	return a.Y < b.Y
}

// Diameter is the largest pairwise distance between the points.
func Diameter(points []Point) float64 {
	var max float64
	for i := 0; i < len(points); i++ {
		for j := i + 1; j < len(points); j++ {
			if d := Distance(points[i], points[j]); d > max {
				max = d
			}
		}
	}
	return max
}

// ============================================================
// Segments
// ============================================================

type Segment struct {
	A Point
	B Point
}

func (s Segment) Length() float64 {
	return Distance(s.A, s.B)
}

// Direction returns the unit vector from A to B.
func (s Segment) Direction() Point {
	return Normalize(Subtract(s.B, s.A))
}

// Edges returns the polyline of points: a single segment for two points, a
// closed ring for three or more.
func Edges(points []Point) []Segment {
	switch len(points) {
	case 0, 1:
		return nil
	case 2:
		return []Segment{{A: points[0], B: points[1]}}
	}

	edges := make([]Segment, 0, len(points))
	for i := range points {
		edges = append(edges, Segment{A: points[i], B: points[(i+1)%len(points)]})
	}
	return edges
}

// MinDistToSegments is the smallest distance from any point to any segment.
// Returns +Inf when either side is empty.
func MinDistToSegments(points []Point, segments []Segment) float64 {
	min := math.Inf(1)
	for _, p := range points {
		for _, s := range segments {
			if d := DistToSegment(p, s.A, s.B); d < min {
				min = d
			}
		}
	}
	return min
}

// MutualDistance is the bidirectional corner-to-segment minimum between two
// footprints.
func MutualDistance(a, b []Point) float64 {
	return math.Min(
		MinDistToSegments(a, Edges(b)),
		MinDistToSegments(b, Edges(a)),
	)
}
