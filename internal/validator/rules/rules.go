// Package rules holds the geometric quality checks run against a room scan.
// Every check is a pure function of the scan; entities that cannot be
// placed are skipped rather than reported.
package rules

import (
	"scan-validator/internal/validator/models"
)

// ============================================================
// Calibration constants (metres / radians)
// ============================================================

const (
	Inch      = 0.0254
	SixInches = 0.1524
	Foot      = 0.3048

	// ToiletGapMax is the largest allowed gap behind a toilet.
	ToiletGapMax = Inch
	// TubGapMin and TubGapMax bound the forbidden tub-to-wall band (inclusive).
	TubGapMin = Inch
	TubGapMax = SixInches
	// WallGapMin and WallGapMax bound the forbidden wall-to-wall band (exclusive).
	WallGapMin = Inch
	WallGapMax = 12 * Inch
	// NibWallMax is the shortest structurally meaningful wall.
	NibWallMax = Foot

	// ParallelCosine is |cos| above which two walls count as parallel (~5 degrees).
	ParallelCosine = 0.996
	// TouchThreshold is the distance under which parallel walls are colinear.
	TouchThreshold = 0.0762

	CrookedMin = 0.05
	CrookedMax = 0.52

	// PerimeterThreshold is how close an opening's wall must be to the floor
	// boundary to count as exterior.
	PerimeterThreshold = 0.5
)

// Check is a single rule over a scan.
type Check func(scan *models.RawScan) bool

// Registry maps every rule to its implementation.
var Registry = map[models.Check]Check{
	models.CheckExternalOpening:         ExternalOpening,
	models.CheckToiletGap:               ToiletGap,
	models.CheckTubGap:                  TubGap,
	models.CheckWallGaps:                WallGaps,
	models.CheckColinearWalls:           ColinearWalls,
	models.CheckNibWalls:                NibWalls,
	models.CheckObjectIntersections:     ObjectIntersections,
	models.CheckWallObjectIntersections: WallObjectIntersections,
	models.CheckWallIntersections:       WallIntersections,
	models.CheckCrookedWalls:            CrookedWalls,
	models.CheckDoorBlocked:             DoorBlocking,
}

// Evaluate runs every registered check in report order and folds the
// results into Flags.
func Evaluate(scan *models.RawScan) models.Flags {
	var flags models.Flags
	if scan == nil {
		return flags
	}
	for _, c := range models.Checks {
		if check, ok := Registry[c]; ok {
			flags.Set(c, check(scan))
		}
	}
	return flags
}
