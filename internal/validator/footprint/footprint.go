package footprint

import (
	"math"

	"scan-validator/internal/validator/geometry"
	"scan-validator/internal/validator/models"
)

// ============================================================
// Footprint constants
// ============================================================

const (
	// ObjectTolerance shrinks object footprints on every side so grazing
	// contact is not reported as an intersection.
	ObjectTolerance = 0.0254
	// DefaultWallThickness is used when a wall reports no depth.
	DefaultWallThickness = 0.15
	// DoorEdgeShrink is removed from the door width before sweeping.
	DoorEdgeShrink = 0.1
	// DoorClearance is the swing depth on each side of the door plane.
	DoorClearance = 0.6
)

// ============================================================
// Walls
// ============================================================

// Wall is a wall projected onto the floor plan.
type Wall struct {
	Index   int
	ID      string
	Story   int
	Corners []geometry.Point
}

// Segments returns the wall outline: the centerline for a 2-point wall, the
// closed ring otherwise.
func (w Wall) Segments() []geometry.Segment {
	return geometry.Edges(w.Corners)
}

// Direction is the unit vector of the longest outline edge.
func (w Wall) Direction() geometry.Point {
	var longest geometry.Segment
	var best float64
	for _, s := range w.Segments() {
		if l := s.Length(); l > best {
			best = l
			longest = s
		}
	}
	return longest.Direction()
}

// WallFootprint projects a wall. Polygon corners win over the synthesized
// centerline. ok is false when the wall cannot be placed.
func WallFootprint(w models.Wall, index, scanStory int) (Wall, bool) {
	if !w.Transform.Valid() {
		return Wall{}, false
	}

	fp := Wall{
		Index: index,
		ID:    w.Identifier,
		Story: models.StoryOr(w.Story, scanStory),
	}

	if local := cornerPoints(w.PolygonCorners); len(local) > 0 {
		fp.Corners = geometry.TransformAll(local, w.Transform)
		return fp, true
	}

	if !w.Dimensions.Valid() {
		return Wall{}, false
	}
	half := w.Dimensions.Length() / 2
	fp.Corners = geometry.TransformAll([]geometry.Point{
		geometry.Pt(-half, 0),
		geometry.Pt(half, 0),
	}, w.Transform)
	return fp, true
}

// WallFootprints projects every placeable wall of the scan.
func WallFootprints(scan *models.RawScan) []Wall {
	out := make([]Wall, 0, len(scan.Walls))
	for i, w := range scan.Walls {
		if fp, ok := WallFootprint(w, i, scan.Story); ok {
			out = append(out, fp)
		}
	}
	return out
}

// WallCenterline is the axis segment used for wall-to-wall crossing tests.
// A two-corner polygon is taken as-is, anything else falls back to the
// dimensions.
func WallCenterline(w models.Wall) (geometry.Segment, bool) {
	if !w.Transform.Valid() {
		return geometry.Segment{}, false
	}
	if local := cornerPoints(w.PolygonCorners); len(local) == 2 {
		world := geometry.TransformAll(local, w.Transform)
		return geometry.Segment{A: world[0], B: world[1]}, true
	}
	if !w.Dimensions.Valid() || w.Dimensions.Degenerate() {
		return geometry.Segment{}, false
	}
	half := w.Dimensions.Length() / 2
	return geometry.Segment{
		A: geometry.TransformPoint(geometry.Pt(-half, 0), w.Transform),
		B: geometry.TransformPoint(geometry.Pt(half, 0), w.Transform),
	}, true
}

// WallRectangle gives the wall physical thickness for polygon tests.
func WallRectangle(w models.Wall) ([]geometry.Point, bool) {
	if !w.Transform.Valid() || !w.Dimensions.Valid() || w.Dimensions.Degenerate() {
		return nil, false
	}
	thickness := w.Dimensions.Thickness()
	if thickness <= 0 {
		thickness = DefaultWallThickness
	}
	return rectangle(w.Dimensions.Length()/2, thickness/2, w.Transform), true
}

// WallAngle is the orientation of the wall's local X axis in the floor plane.
func WallAngle(w models.Wall) (float64, bool) {
	if !w.Transform.Valid() {
		return 0, false
	}
	return math.Atan2(w.Transform[2], w.Transform[0]), true
}

// WallOrigin is the translation component of the wall transform.
func WallOrigin(w models.Wall) (geometry.Point, bool) {
	if !w.Transform.Valid() {
		return geometry.Point{}, false
	}
	return geometry.Pt(w.Transform[12], w.Transform[14]), true
}

// ============================================================
// Objects
// ============================================================

// Object is an object's floor-plan footprint.
type Object struct {
	Index    int
	ID       string
	Story    int
	Category models.Category
	Full     []geometry.Point
	Inner    []geometry.Point
	Bounds   geometry.AABB
	// Back is the middle of the back face; appliance backs face local -Z.
	Back geometry.Point
}

// ObjectFootprint projects an object. Malformed or all-zero dimensions give
// ok=false.
func ObjectFootprint(o models.Object, index int) (Object, bool) {
	if !o.Transform.Valid() || !o.Dimensions.Valid() || o.Dimensions.Degenerate() {
		return Object{}, false
	}

	halfW := o.Dimensions.Length() / 2
	halfD := o.Dimensions.Thickness() / 2
	full := rectangle(halfW, halfD, o.Transform)
	inner := rectangle(
		math.Max(0, halfW-ObjectTolerance),
		math.Max(0, halfD-ObjectTolerance),
		o.Transform,
	)

	return Object{
		Index:    index,
		ID:       o.Identifier,
		Story:    o.Story,
		Category: o.Category,
		Full:     full,
		Inner:    inner,
		Bounds:   geometry.BoundsOf(full),
		Back:     geometry.TransformPoint(geometry.Pt(0, -halfD), o.Transform),
	}, true
}

// ObjectFootprints projects every placeable object of the scan.
func ObjectFootprints(scan *models.RawScan) []Object {
	out := make([]Object, 0, len(scan.Objects))
	for i, o := range scan.Objects {
		if fp, ok := ObjectFootprint(o, i); ok {
			out = append(out, fp)
		}
	}
	return out
}

// ============================================================
// Doors
// ============================================================

// DoorSweep is the clearance rectangle a door needs to swing.
func DoorSweep(d models.Door) ([]geometry.Point, bool) {
	if !d.Transform.Valid() || !d.Dimensions.Valid() || d.Dimensions.Degenerate() {
		return nil, false
	}
	half := math.Max(0, d.Dimensions.Length()-DoorEdgeShrink) / 2
	return rectangle(half, DoorClearance, d.Transform), true
}

// ============================================================
// Floors
// ============================================================

// FloorBoundary returns the world outline of a floor.
func FloorBoundary(f models.Floor) []geometry.Point {
	local := cornerPoints(f.PolygonCorners)
	if f.Transform.Valid() {
		return geometry.TransformAll(local, f.Transform)
	}
	return local
}

// ============================================================
// Helpers
// ============================================================

// rectangle returns four corners around the local origin, counter-clockwise
// in local space.
func rectangle(halfX, halfZ float64, m []float64) []geometry.Point {
	return geometry.TransformAll([]geometry.Point{
		geometry.Pt(-halfX, -halfZ),
		geometry.Pt(halfX, -halfZ),
		geometry.Pt(halfX, halfZ),
		geometry.Pt(-halfX, halfZ),
	}, m)
}

// cornerPoints reads local 2D corners, skipping entries with fewer than two
// coordinates.
func cornerPoints(raw [][]float64) []geometry.Point {
	if len(raw) == 0 {
		return nil
	}
	out := make([]geometry.Point, 0, len(raw))
	for _, c := range raw {
		if len(c) < 2 {
			continue
		}
		out = append(out, geometry.Pt(c[0], c[1]))
	}
	return out
}
