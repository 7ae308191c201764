package rules

import (
	"math"

	"scan-validator/internal/validator/footprint"
	"scan-validator/internal/validator/geometry"
	"scan-validator/internal/validator/models"
)

// ============================================================
// Toilet
// ============================================================

// ToiletGap reports a toilet whose back is more than an inch off the nearest
// same-story wall, or a toilet with no wall on its story at all.
func ToiletGap(scan *models.RawScan) bool {
	walls := footprint.WallFootprints(scan)

	for _, o := range footprint.ObjectFootprints(scan) {
		if !o.Category.Has(models.CategoryToilet) {
			continue
		}

		min := math.Inf(1)
		for _, w := range walls {
			if w.Story != o.Story {
				continue
			}
			min = math.Min(min, geometry.MinDistToSegments([]geometry.Point{o.Back}, w.Segments()))
		}

		// +Inf covers the "no eligible wall" case.
		if min > ToiletGapMax {
			return true
		}
	}
	return false
}

// ============================================================
// Bathtub
// ============================================================

// TubGap reports a tub sitting between one and six inches from a same-story
// wall: too far to be flush, too close to be deliberate.
func TubGap(scan *models.RawScan) bool {
	walls := footprint.WallFootprints(scan)

	for _, o := range footprint.ObjectFootprints(scan) {
		if !o.Category.Has(models.CategoryBathtub) {
			continue
		}

		min := math.Inf(1)
		for _, w := range walls {
			if w.Story != o.Story {
				continue
			}
			min = math.Min(min, geometry.MutualDistance(o.Full, w.Corners))
		}

		if min >= TubGapMin && min <= TubGapMax {
			return true
		}
	}
	return false
}

// ============================================================
// Wall gaps
// ============================================================

// WallGaps reports two walls separated by more than an inch and less than a
// foot. Stories are not compared here.
func WallGaps(scan *models.RawScan) bool {
	walls := footprint.WallFootprints(scan)

	for i := 0; i < len(walls); i++ {
		for j := i + 1; j < len(walls); j++ {
			d := geometry.MutualDistance(walls[i].Corners, walls[j].Corners)
			if d > WallGapMin && d < WallGapMax {
				return true
			}
		}
	}
	return false
}

// ============================================================
// Nib walls
// ============================================================

// NibWalls reports a wall shorter than a foot. Zero-length footprints are
// ignored.
func NibWalls(scan *models.RawScan) bool {
	for _, w := range footprint.WallFootprints(scan) {
		d := geometry.Diameter(w.Corners)
		if d > 0 && d < NibWallMax {
			return true
		}
	}
	return false
}
