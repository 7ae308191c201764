package models

import (
	"encoding/json"
	"fmt"
	"sort"
)

// ============================================================
// Raw scan document
// ============================================================

// RawScan is one scan artifact as produced by the capture app.
type RawScan struct {
	Story    int       `json:"story"`
	Walls    []Wall    `json:"walls"`
	Objects  []Object  `json:"objects"`
	Doors    []Door    `json:"doors"`
	Openings []Opening `json:"openings"`
	Floors   []Floor   `json:"floors"`
}

// Transform is a flattened 4x4 affine matrix. Local X axis lives in
// (m[0], m[2]), local Z axis in (m[8], m[10]), translation in (m[12], m[14]).
type Transform []float64

// Valid reports whether the matrix has exactly 16 entries.
func (t Transform) Valid() bool {
	return len(t) == 16
}

// Dimensions are local extents: length (X), height (Y), depth/thickness (Z).
type Dimensions []float64

func (d Dimensions) Valid() bool {
	return len(d) == 3
}

// Degenerate reports an all-zero extent.
func (d Dimensions) Degenerate() bool {
	for _, v := range d {
		if v != 0 {
			return false
		}
	}
	return true
}

func (d Dimensions) Length() float64    { return d[0] }
func (d Dimensions) Height() float64    { return d[1] }
func (d Dimensions) Thickness() float64 { return d[2] }

// ============================================================
// Entities
// ============================================================

type Wall struct {
	Identifier     string      `json:"identifier,omitempty"`
	Transform      Transform   `json:"transform"`
	Dimensions     Dimensions  `json:"dimensions"`
	PolygonCorners [][]float64 `json:"polygonCorners,omitempty"`
	Story          *int        `json:"story,omitempty"`
}

type Object struct {
	Identifier string     `json:"identifier,omitempty"`
	Transform  Transform  `json:"transform"`
	Dimensions Dimensions `json:"dimensions"`
	Category   Category   `json:"category"`
	Story      int        `json:"story"`
}

type Door struct {
	Identifier string     `json:"identifier,omitempty"`
	Transform  Transform  `json:"transform"`
	Dimensions Dimensions `json:"dimensions"`
	Story      *int       `json:"story,omitempty"`
}

type Opening struct {
	Identifier       string     `json:"identifier,omitempty"`
	Transform        Transform  `json:"transform"`
	Dimensions       Dimensions `json:"dimensions"`
	ParentIdentifier string     `json:"parentIdentifier,omitempty"`
	Story            *int       `json:"story,omitempty"`
}

// Floor carries the usable floor boundary. Corners are world points unless
// a valid Transform is attached.
type Floor struct {
	PolygonCorners [][]float64 `json:"polygonCorners"`
	Transform      Transform   `json:"transform,omitempty"`
}

// StoryOr returns the explicit story or fallback when unset.
func StoryOr(story *int, fallback int) int {
	if story == nil {
		return fallback
	}
	return *story
}

// ============================================================
// Category tags
// ============================================================

const (
	CategorySink    = "sink"
	CategoryStorage = "storage"
	CategoryToilet  = "toilet"
	CategoryBathtub = "bathtub"
)

// Category is the set of capability tags attached to an object.
type Category map[string]struct{}

// NewCategory builds a tag set.
func NewCategory(tags ...string) Category {
	c := make(Category, len(tags))
	for _, t := range tags {
		c[t] = struct{}{}
	}
	return c
}

func (c Category) Has(tag string) bool {
	_, ok := c[tag]
	return ok
}

// Tags returns the tags in sorted order.
func (c Category) Tags() []string {
	tags := make([]string, 0, len(c))
	for t := range c {
		tags = append(tags, t)
	}
	sort.Strings(tags)
	return tags
}

// UnmarshalJSON accepts the enum encoding ({"toilet": {}}), a tag list or a
// bare string.
func (c *Category) UnmarshalJSON(data []byte) error {
	out := Category{}

	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		if single != "" {
			out[single] = struct{}{}
		}
		*c = out
		return nil
	}

	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		for _, t := range list {
			out[t] = struct{}{}
		}
		*c = out
		return nil
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("category: unsupported encoding: %w", err)
	}
	for t := range obj {
		out[t] = struct{}{}
	}
	*c = out
	return nil
}

// MarshalJSON writes the enum encoding back out.
func (c Category) MarshalJSON() ([]byte, error) {
	obj := make(map[string]struct{}, len(c))
	for t := range c {
		obj[t] = struct{}{}
	}
	return json.Marshal(obj)
}

// ============================================================
// Output flags
// ============================================================

// Flags is the per-artifact verdict. Every field except HasExternalOpening
// is true when the corresponding problem was found.
type Flags struct {
	HasExternalOpening      bool `json:"has_external_opening"`
	ToiletGap               bool `json:"toilet_gap"`
	TubGap                  bool `json:"tub_gap"`
	WallGaps                bool `json:"wall_gaps"`
	ColinearWalls           bool `json:"colinear_walls"`
	NibWalls                bool `json:"nib_walls"`
	ObjectIntersections     bool `json:"object_intersections"`
	WallObjectIntersections bool `json:"wall_object_intersections"`
	WallIntersections       bool `json:"wall_intersections"`
	CrookedWalls            bool `json:"crooked_walls"`
	DoorBlocked             bool `json:"door_blocked"`
}

// Check names a single rule in reports and storage.
type Check string

const (
	CheckExternalOpening         Check = "external_opening"
	CheckToiletGap               Check = "toilet_gap"
	CheckTubGap                  Check = "tub_gap"
	CheckWallGaps                Check = "wall_gaps"
	CheckColinearWalls           Check = "colinear_walls"
	CheckNibWalls                Check = "nib_walls"
	CheckObjectIntersections     Check = "object_intersections"
	CheckWallObjectIntersections Check = "wall_object_intersections"
	CheckWallIntersections       Check = "wall_intersections"
	CheckCrookedWalls            Check = "crooked_walls"
	CheckDoorBlocked             Check = "door_blocked"
)

// Checks lists every check in report order.
var Checks = []Check{
	CheckExternalOpening,
	CheckToiletGap,
	CheckTubGap,
	CheckWallGaps,
	CheckColinearWalls,
	CheckNibWalls,
	CheckObjectIntersections,
	CheckWallObjectIntersections,
	CheckWallIntersections,
	CheckCrookedWalls,
	CheckDoorBlocked,
}

// Failed reports whether the check counts as a failure for this artifact.
// A missing exterior opening is the failing state of CheckExternalOpening.
func (f Flags) Failed(c Check) bool {
	switch c {
	case CheckExternalOpening:
		return !f.HasExternalOpening
	case CheckToiletGap:
		return f.ToiletGap
	case CheckTubGap:
		return f.TubGap
	case CheckWallGaps:
		return f.WallGaps
	case CheckColinearWalls:
		return f.ColinearWalls
	case CheckNibWalls:
		return f.NibWalls
	case CheckObjectIntersections:
		return f.ObjectIntersections
	case CheckWallObjectIntersections:
		return f.WallObjectIntersections
	case CheckWallIntersections:
		return f.WallIntersections
	case CheckCrookedWalls:
		return f.CrookedWalls
	case CheckDoorBlocked:
		return f.DoorBlocked
	}
	return false
}

// Set stores the raw outcome of a check: presence for CheckExternalOpening,
// a found problem for every other check. Unknown checks are ignored.
func (f *Flags) Set(c Check, v bool) {
	switch c {
	case CheckExternalOpening:
		f.HasExternalOpening = v
	case CheckToiletGap:
		f.ToiletGap = v
	case CheckTubGap:
		f.TubGap = v
	case CheckWallGaps:
		f.WallGaps = v
	case CheckColinearWalls:
		f.ColinearWalls = v
	case CheckNibWalls:
		f.NibWalls = v
	case CheckObjectIntersections:
		f.ObjectIntersections = v
	case CheckWallObjectIntersections:
		f.WallObjectIntersections = v
	case CheckWallIntersections:
		f.WallIntersections = v
	case CheckCrookedWalls:
		f.CrookedWalls = v
	case CheckDoorBlocked:
		f.DoorBlocked = v
	}
}

// Clean reports whether no check failed.
func (f Flags) Clean() bool {
	for _, c := range Checks {
		if f.Failed(c) {
			return false
		}
	}
	return true
}
