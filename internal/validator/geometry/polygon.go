package geometry

import "math"

// ============================================================
// Separating axis test
// ============================================================

// PolygonsIntersect reports whether two convex polygons overlap. Touching
// projections count as overlap.
func PolygonsIntersect(a, b []Point) bool {
	if len(a) < 2 || len(b) < 2 {
		return false
	}

	for _, poly := range [2][]Point{a, b} {
		for i := range poly {
			p1 := poly[i]
			p2 := poly[(i+1)%len(poly)]
			axis := Point{X: -(p2.Y - p1.Y), Y: p2.X - p1.X}

			minA, maxA := project(a, axis)
			minB, maxB := project(b, axis)
			if maxA < minB || maxB < minA {
				return false
			}
		}
	}
	return true
}

func project(poly []Point, axis Point) (float64, float64) {
	min, max := math.Inf(1), math.Inf(-1)
	for _, p := range poly {
		v := Dot(p, axis)
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max
}

// ============================================================
// Axis-aligned bounds
// ============================================================

type AABB struct {
	Min Point
	Max Point
}

// BoundsOf returns the bounding box of points; zero AABB when empty.
func BoundsOf(points []Point) AABB {
	if len(points) == 0 {
		return AABB{}
	}
	box := AABB{Min: points[0], Max: points[0]}
	for _, p := range points[1:] {
		box.Min.X = math.Min(box.Min.X, p.X)
		box.Min.Y = math.Min(box.Min.Y, p.Y)
		box.Max.X = math.Max(box.Max.X, p.X)
		box.Max.Y = math.Max(box.Max.Y, p.Y)
	}
	return box
}

func (b AABB) Empty() bool {
	return b.Min == b.Max
}

// Overlaps reports whether the boxes share any area or boundary.
func (b AABB) Overlaps(o AABB) bool {
	return b.Min.X <= o.Max.X && o.Min.X <= b.Max.X &&
		b.Min.Y <= o.Max.Y && o.Min.Y <= b.Max.Y
}

// ============================================================
// Segment conflicts
// ============================================================

const (
	parallelEpsilon  = 1e-9
	collinearEpsilon = 1e-6
	interiorEpsilon  = 1e-6
)

// SegmentsConflict reports whether [a1,a2] and [b1,b2] either cross at a
// point interior to both, or lie on the same line with a real overlap.
// Shared endpoints (corner joins) are not conflicts.
func SegmentsConflict(a1, a2, b1, b2 Point) bool {
	r := Subtract(a2, a1)
	s := Subtract(b2, b1)
	det := Cross(r, s)

	if math.Abs(det) < parallelEpsilon {
		// Twice the triangle area of a1, a2, b1.
		if math.Abs(Cross(r, Subtract(b1, a1))) > collinearEpsilon {
			return false
		}
		lenSq := MagnitudeSquared(r)
		if lenSq == 0 {
			return false
		}
		t0 := Dot(Subtract(b1, a1), r) / lenSq
		t1 := Dot(Subtract(b2, a1), r) / lenSq
		minT, maxT := math.Min(t0, t1), math.Max(t0, t1)
		overlap := math.Min(1, maxT) - math.Max(0, minT)
		return overlap > interiorEpsilon
	}

	diff := Subtract(b1, a1)
	t := Cross(diff, s) / det
	u := Cross(diff, r) / det
	return t > interiorEpsilon && t < 1-interiorEpsilon &&
		u > interiorEpsilon && u < 1-interiorEpsilon
}
