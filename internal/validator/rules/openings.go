package rules

import (
	"math"

	"scan-validator/internal/validator/footprint"
	"scan-validator/internal/validator/geometry"
	"scan-validator/internal/validator/models"
)

// ExternalOpening reports whether the scan has at least one opening in a
// wall that runs along the floor boundary. Only the first floor is used.
func ExternalOpening(scan *models.RawScan) bool {
	if len(scan.Floors) == 0 {
		return false
	}
	boundary := geometry.Edges(footprint.FloorBoundary(scan.Floors[0]))
	if len(boundary) == 0 {
		return false
	}

	walls := make(map[string]models.Wall, len(scan.Walls))
	for _, w := range scan.Walls {
		if w.Identifier != "" {
			walls[w.Identifier] = w
		}
	}

	for _, o := range scan.Openings {
		if IsExteriorOpening(o, scan.Story, walls, boundary) {
			return true
		}
	}
	return false
}

// IsExteriorOpening classifies a single opening against the floor boundary.
func IsExteriorOpening(o models.Opening, scanStory int, walls map[string]models.Wall, boundary []geometry.Segment) bool {
	if !o.Transform.Valid() {
		return false
	}
	if o.Story != nil && *o.Story != scanStory {
		return false
	}
	wall, ok := walls[o.ParentIdentifier]
	if !ok {
		return false
	}
	origin, ok := footprint.WallOrigin(wall)
	if !ok {
		return false
	}

	min := math.Inf(1)
	for _, edge := range boundary {
		min = math.Min(min, geometry.DistToSegment(origin, edge.A, edge.B))
	}
	return min < PerimeterThreshold
}
