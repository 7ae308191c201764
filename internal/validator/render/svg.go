// Package render draws the floor-plan footprints of a scan as SVG, the way
// the rule checks see them.
package render

import (
	"fmt"
	"html"
	"strconv"
	"strings"

	"scan-validator/internal/validator/footprint"
	"scan-validator/internal/validator/geometry"
	"scan-validator/internal/validator/models"
)

// ============================================================
// Renderer
// ============================================================

const (
	// DefaultScale is pixels per metre.
	DefaultScale = 100.0
	padding      = 0.25
)

type Renderer struct {
	scale float64
}

func NewRenderer(scale float64) *Renderer {
	if scale <= 0 {
		scale = DefaultScale
	}
	return &Renderer{scale: scale}
}

type shape struct {
	id     string
	class  string
	title  string
	points []geometry.Point
	closed bool
}

// Render builds an SVG document in world metres. Entities that cannot be
// placed are left out, as they are by the checks.
func (r *Renderer) Render(scan *models.RawScan) (string, error) {
	if scan == nil {
		return "", fmt.Errorf("scan is nil")
	}

	var shapes []shape
	shapes = append(shapes, r.floorShapes(scan)...)
	shapes = append(shapes, r.wallShapes(scan)...)
	shapes = append(shapes, r.objectShapes(scan)...)
	shapes = append(shapes, r.doorShapes(scan)...)
	shapes = append(shapes, r.openingShapes(scan)...)

	var all []geometry.Point
	for _, s := range shapes {
		all = append(all, s.points...)
	}
	box := geometry.BoundsOf(all)
	minX, minY := box.Min.X-padding, box.Min.Y-padding
	width := box.Max.X - box.Min.X + 2*padding
	height := box.Max.Y - box.Min.Y + 2*padding

	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString(fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%s" height="%s" viewBox="%s %s %s %s">`,
		formatFloat(width*r.scale), formatFloat(height*r.scale),
		formatFloat(minX), formatFloat(minY), formatFloat(width), formatFloat(height)))
	b.WriteString("\n")
	b.WriteString(`  <style>path{fill:none;stroke-width:1;vector-effect:non-scaling-stroke}` +
		`.floor{stroke:#888;fill:#f4f4f4}.wall{stroke:#000}.object{stroke:#2ca02c}` +
		`.door{stroke:#d62728;stroke-dasharray:4 2}.opening{stroke:#1f77b4;stroke-width:3}</style>`)
	b.WriteString("\n")

	for _, s := range shapes {
		if len(s.points) < 2 {
			continue
		}
		b.WriteString("  ")
		b.WriteString(pathElement(s))
		b.WriteString("\n")
	}

	b.WriteString(`</svg>`)
	return b.String(), nil
}

// ============================================================
// Element collectors
// ============================================================

func (r *Renderer) floorShapes(scan *models.RawScan) []shape {
	var out []shape
	for i, f := range scan.Floors {
		out = append(out, shape{
			id:     fmt.Sprintf("floor-%d", i),
			class:  "floor",
			points: footprint.FloorBoundary(f),
			closed: true,
		})
	}
	return out
}

func (r *Renderer) wallShapes(scan *models.RawScan) []shape {
	var out []shape
	for i, w := range scan.Walls {
		id := entityID("wall", w.Identifier, i)
		if rect, ok := footprint.WallRectangle(w); ok && len(w.PolygonCorners) == 0 {
			out = append(out, shape{id: id, class: "wall", points: rect, closed: true})
			continue
		}
		if fp, ok := footprint.WallFootprint(w, i, scan.Story); ok {
			out = append(out, shape{id: id, class: "wall", points: fp.Corners, closed: len(fp.Corners) > 2})
		}
	}
	return out
}

func (r *Renderer) objectShapes(scan *models.RawScan) []shape {
	var out []shape
	for _, o := range footprint.ObjectFootprints(scan) {
		out = append(out, shape{
			id:     entityID("object", o.ID, o.Index),
			class:  "object",
			title:  strings.Join(o.Category.Tags(), ","),
			points: o.Full,
			closed: true,
		})
	}
	return out
}

func (r *Renderer) doorShapes(scan *models.RawScan) []shape {
	var out []shape
	for i, d := range scan.Doors {
		if sweep, ok := footprint.DoorSweep(d); ok {
			out = append(out, shape{id: entityID("door", d.Identifier, i), class: "door", points: sweep, closed: true})
		}
	}
	return out
}

func (r *Renderer) openingShapes(scan *models.RawScan) []shape {
	var out []shape
	for i, o := range scan.Openings {
		if !o.Transform.Valid() || !o.Dimensions.Valid() {
			continue
		}
		half := o.Dimensions.Length() / 2
		out = append(out, shape{
			id:    entityID("opening", o.Identifier, i),
			class: "opening",
			points: geometry.TransformAll([]geometry.Point{
				geometry.Pt(-half, 0),
				geometry.Pt(half, 0),
			}, o.Transform),
		})
	}
	return out
}

// ============================================================
// Formatting helpers
// ============================================================

func pathElement(s shape) string {
	var path strings.Builder
	path.WriteString(`<path id="`)
	path.WriteString(html.EscapeString(s.id))
	path.WriteString(`" class="`)
	path.WriteString(s.class)
	path.WriteString(`" d="M `)
	path.WriteString(formatPoint(s.points[0]))
	for _, p := range s.points[1:] {
		path.WriteString(" L ")
		path.WriteString(formatPoint(p))
	}
	if s.closed {
		path.WriteString(" Z")
	}
	path.WriteString(`"`)

	if s.title == "" {
		path.WriteString(` />`)
		return path.String()
	}
	path.WriteString(`><title>`)
	path.WriteString(html.EscapeString(s.title))
	path.WriteString(`</title></path>`)
	return path.String()
}

func entityID(kind, identifier string, index int) string {
	if identifier != "" {
		return identifier
	}
	return kind + "-" + strconv.Itoa(index)
}

func formatFloat(val float64) string {
	return strconv.FormatFloat(val, 'f', -1, 64)
}

func formatPoint(p geometry.Point) string {
	return formatFloat(p.X) + " " + formatFloat(p.Y)
}
