// Package geo holds the planar geometry model used by the renderer:
// envelopes, affine transforms and visibility clipping over GeoJSON
// geometry trees.
//
// Positions are []float64 slices as decoded by go.geojson: index 0 is X
// (longitude), index 1 is Y (latitude), index 2, when present, is Z
// (altitude). All operations rebuild geometry trees; none mutate their
// input.
package geo

import (
	"fmt"
	"math"

	geojson "github.com/paulmach/go.geojson"
)

// Envelope is an axis-aligned bounding rectangle. The zero value is the
// empty envelope, which is distinct from a rectangle of zero area: an
// empty envelope contains nothing and folding a point into it seeds the
// bounds instead of widening them.
type Envelope struct {
	MinX, MinY float64
	MaxX, MaxY float64

	set bool
}

// NewEnvelope returns a non-empty envelope with the given bounds.
// Min/max are normalized, so arguments may be given in any order.
func NewEnvelope(x0, y0, x1, y1 float64) Envelope {
	return Envelope{
		MinX: math.Min(x0, x1),
		MinY: math.Min(y0, y1),
		MaxX: math.Max(x0, x1),
		MaxY: math.Max(y0, y1),
		set:  true,
	}
}

// Empty reports whether no coordinate has been folded into e.
func (e Envelope) Empty() bool { return !e.set }

// Width returns the X extent, or 0 for an empty envelope.
func (e Envelope) Width() float64 {
	if !e.set {
		return 0
	}
	return e.MaxX - e.MinX
}

// Height returns the Y extent, or 0 for an empty envelope.
func (e Envelope) Height() float64 {
	if !e.set {
		return 0
	}
	return e.MaxY - e.MinY
}

// AspectRatio returns Width/Height. Degenerate envelopes yield ±Inf or
// NaN; callers that branch on orientation must guard with math.IsInf
// and math.IsNaN.
func (e Envelope) AspectRatio() float64 {
	return e.Width() / e.Height()
}

// ExtendXY folds the coordinate (x, y) into the envelope.
func (e Envelope) ExtendXY(x, y float64) Envelope {
	if !e.set {
		return Envelope{MinX: x, MinY: y, MaxX: x, MaxY: y, set: true}
	}
	if x < e.MinX {
		e.MinX = x
	}
	if y < e.MinY {
		e.MinY = y
	}
	if x > e.MaxX {
		e.MaxX = x
	}
	if y > e.MaxY {
		e.MaxY = y
	}
	return e
}

// Union folds another envelope into e. Folding an empty envelope is a
// no-op.
func (e Envelope) Union(o Envelope) Envelope {
	if o.Empty() {
		return e
	}
	e = e.ExtendXY(o.MinX, o.MinY)
	return e.ExtendXY(o.MaxX, o.MaxY)
}

// Offset returns the envelope shifted by (dx, dy).
func (e Envelope) Offset(dx, dy float64) Envelope {
	if !e.set {
		return e
	}
	e.MinX += dx
	e.MaxX += dx
	e.MinY += dy
	e.MaxY += dy
	return e
}

// ContainsXY reports whether (x, y) lies strictly inside the envelope.
// Points on the boundary are outside.
func (e Envelope) ContainsXY(x, y float64) bool {
	if !e.set {
		return false
	}
	return e.MinX < x && x < e.MaxX && e.MinY < y && y < e.MaxY
}

func (e Envelope) String() string {
	if !e.set {
		return "Envelope(empty)"
	}
	return fmt.Sprintf("Envelope(%g %g, %g %g)", e.MinX, e.MinY, e.MaxX, e.MaxY)
}

// Extend folds every coordinate of g into env and returns the widened
// envelope. A nil geometry leaves env unchanged, as does a geometry of
// an unknown type.
//
// When the geometry carries a decoded bbox member it is trusted and
// folded instead of walking the coordinates. Both the 4-element
// [minX minY maxX maxY] and the 6-element [minX minY minZ maxX maxY maxZ]
// layouts are understood.
func Extend(env Envelope, g *geojson.Geometry) Envelope {
	if g == nil {
		return env
	}
	if e, ok := foldBoundingBox(env, g.BoundingBox); ok {
		return e
	}
	switch g.Type {
	case geojson.GeometryPoint:
		env = extendPosition(env, g.Point)
	case geojson.GeometryMultiPoint:
		for _, p := range g.MultiPoint {
			env = extendPosition(env, p)
		}
	case geojson.GeometryLineString:
		for _, p := range g.LineString {
			env = extendPosition(env, p)
		}
	case geojson.GeometryMultiLineString:
		for _, line := range g.MultiLineString {
			for _, p := range line {
				env = extendPosition(env, p)
			}
		}
	case geojson.GeometryPolygon:
		for _, ring := range g.Polygon {
			for _, p := range ring {
				env = extendPosition(env, p)
			}
		}
	case geojson.GeometryMultiPolygon:
		for _, poly := range g.MultiPolygon {
			for _, ring := range poly {
				for _, p := range ring {
					env = extendPosition(env, p)
				}
			}
		}
	case geojson.GeometryCollection:
		for _, sub := range g.Geometries {
			env = Extend(env, sub)
		}
	}
	return env
}

// ExtendFeature folds a feature's geometry into env. A feature-level
// bbox member, when present, takes precedence over the geometry walk.
func ExtendFeature(env Envelope, f *geojson.Feature) Envelope {
	if f == nil {
		return env
	}
	if e, ok := foldBoundingBox(env, f.BoundingBox); ok {
		return e
	}
	return Extend(env, f.Geometry)
}

func extendPosition(env Envelope, pos []float64) Envelope {
	if len(pos) < 2 {
		return env
	}
	return env.ExtendXY(pos[0], pos[1])
}

func foldBoundingBox(env Envelope, box []float64) (Envelope, bool) {
	switch len(box) {
	case 4:
		env = env.ExtendXY(box[0], box[1])
		return env.ExtendXY(box[2], box[3]), true
	case 6:
		env = env.ExtendXY(box[0], box[1])
		return env.ExtendXY(box[3], box[4]), true
	}
	return env, false
}

// EachPosition calls fn for every coordinate position in g, in encoding
// order. Nil geometries and unknown types yield no calls.
func EachPosition(g *geojson.Geometry, fn func(pos []float64)) {
	if g == nil {
		return
	}
	switch g.Type {
	case geojson.GeometryPoint:
		fn(g.Point)
	case geojson.GeometryMultiPoint:
		for _, p := range g.MultiPoint {
			fn(p)
		}
	case geojson.GeometryLineString:
		for _, p := range g.LineString {
			fn(p)
		}
	case geojson.GeometryMultiLineString:
		for _, line := range g.MultiLineString {
			for _, p := range line {
				fn(p)
			}
		}
	case geojson.GeometryPolygon:
		for _, ring := range g.Polygon {
			for _, p := range ring {
				fn(p)
			}
		}
	case geojson.GeometryMultiPolygon:
		for _, poly := range g.MultiPolygon {
			for _, ring := range poly {
				for _, p := range ring {
					fn(p)
				}
			}
		}
	case geojson.GeometryCollection:
		for _, sub := range g.Geometries {
			EachPosition(sub, fn)
		}
	}
}
