package rules

import (
	"scan-validator/internal/validator/footprint"
	"scan-validator/internal/validator/geometry"
	"scan-validator/internal/validator/models"
)

// ============================================================
// Wall-wall
// ============================================================

type storySegment struct {
	story int
	seg   geometry.Segment
}

// WallIntersections reports same-story walls that cross each other or
// overlap along a shared line. Walls meeting end to end are fine.
func WallIntersections(scan *models.RawScan) bool {
	segments := make([]storySegment, 0, len(scan.Walls))
	for _, w := range scan.Walls {
		seg, ok := footprint.WallCenterline(w)
		if !ok {
			continue
		}
		segments = append(segments, storySegment{
			story: models.StoryOr(w.Story, scan.Story),
			seg:   seg,
		})
	}

	for i := 0; i < len(segments); i++ {
		for j := i + 1; j < len(segments); j++ {
			a, b := segments[i], segments[j]
			if a.story != b.story {
				continue
			}
			if geometry.SegmentsConflict(a.seg.A, a.seg.B, b.seg.A, b.seg.B) {
				return true
			}
		}
	}
	return false
}

// ============================================================
// Object-object
// ============================================================

// vanityPair is the sink-on-storage assembly, which always overlaps.
func vanityPair(a, b footprint.Object) bool {
	return (a.Category.Has(models.CategorySink) && b.Category.Has(models.CategoryStorage)) ||
		(a.Category.Has(models.CategoryStorage) && b.Category.Has(models.CategorySink))
}

// ObjectIntersections reports two same-story objects whose inner footprints
// overlap.
func ObjectIntersections(scan *models.RawScan) bool {
	objects := footprint.ObjectFootprints(scan)

	for i := 0; i < len(objects); i++ {
		for j := i + 1; j < len(objects); j++ {
			a, b := objects[i], objects[j]
			if a.Story != b.Story {
				continue
			}
			if vanityPair(a, b) {
				continue
			}
			if !a.Bounds.Overlaps(b.Bounds) {
				continue
			}
			if geometry.PolygonsIntersect(a.Inner, b.Inner) {
				return true
			}
		}
	}
	return false
}

// ============================================================
// Wall-object
// ============================================================

// WallObjectIntersections reports an object pushed into a same-story wall.
func WallObjectIntersections(scan *models.RawScan) bool {
	objects := footprint.ObjectFootprints(scan)
	if len(objects) == 0 {
		return false
	}

	for _, w := range scan.Walls {
		rect, ok := footprint.WallRectangle(w)
		if !ok {
			continue
		}
		story := models.StoryOr(w.Story, scan.Story)
		for _, o := range objects {
			if o.Story != story {
				continue
			}
			if geometry.PolygonsIntersect(rect, o.Inner) {
				return true
			}
		}
	}
	return false
}

// ============================================================
// Door clearance
// ============================================================

// DoorBlocking reports a door whose swing zone hits any object. Stories are
// not compared here.
func DoorBlocking(scan *models.RawScan) bool {
	objects := footprint.ObjectFootprints(scan)
	if len(objects) == 0 {
		return false
	}

	for _, d := range scan.Doors {
		sweep, ok := footprint.DoorSweep(d)
		if !ok {
			continue
		}
		for _, o := range objects {
			if geometry.PolygonsIntersect(sweep, o.Full) {
				return true
			}
		}
	}
	return false
}
