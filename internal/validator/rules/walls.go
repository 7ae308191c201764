package rules

import (
	"math"

	"scan-validator/internal/validator/footprint"
	"scan-validator/internal/validator/geometry"
	"scan-validator/internal/validator/models"
)

// ColinearWalls reports two distinct same-story walls that run parallel and
// touch, which is how duplicated or split walls show up. Perpendicular
// corners touch too but fail the parallel gate.
func ColinearWalls(scan *models.RawScan) bool {
	walls := footprint.WallFootprints(scan)
	dirs := make([]geometry.Point, len(walls))
	for i, w := range walls {
		dirs[i] = w.Direction()
	}

	for i := 0; i < len(walls); i++ {
		for j := i + 1; j < len(walls); j++ {
			if walls[i].Story != walls[j].Story {
				continue
			}
			if math.Abs(geometry.Dot(dirs[i], dirs[j])) <= ParallelCosine {
				continue
			}
			if geometry.MutualDistance(walls[i].Corners, walls[j].Corners) < TouchThreshold {
				return true
			}
		}
	}
	return false
}

// CrookedWalls reports a wall that is slightly off the square grid set by
// the first wall. Deviations under CrookedMin are noise, over CrookedMax
// are deliberate diagonals.
func CrookedWalls(scan *models.RawScan) bool {
	var (
		ref    float64
		hasRef bool
	)

	for _, w := range scan.Walls {
		angle, ok := footprint.WallAngle(w)
		if !ok {
			continue
		}
		if !hasRef {
			ref, hasRef = angle, true
			continue
		}

		diff := math.Abs(angle - ref)
		quarter := math.Pi / 2
		deviation := math.Abs(diff - math.Round(diff/quarter)*quarter)
		if deviation > CrookedMin && deviation < CrookedMax {
			return true
		}
	}
	return false
}
