package geo

import (
	"math"

	geojson "github.com/paulmach/go.geojson"
)

// RotateScale returns a copy of g with every position rotated about the
// origin by radians and then multiplied by factor. Rotation happens
// first so that factor can be derived from the rotated extents of the
// input. Z coordinates pass through rotation untouched and are scaled
// like X and Y. The input tree is never modified; a nil input yields
// nil.
//
// Rebuilt trees carry no bbox member. Any cached bbox on the input
// would describe pre-transform bounds, so it is dropped rather than
// carried along stale.
func RotateScale(g *geojson.Geometry, factor, radians float64) *geojson.Geometry {
	sin, cos := math.Sincos(radians)
	return mapPositions(g, func(pos []float64) []float64 {
		out := clonePosition(pos)
		if len(out) < 2 {
			return out
		}
		x, y := pos[0], pos[1]
		out[0] = (cos*x - sin*y) * factor
		out[1] = (sin*x + cos*y) * factor
		for i := 2; i < len(out); i++ {
			out[i] *= factor
		}
		return out
	})
}

// Translate returns a copy of g shifted so that origin.Min becomes
// (0, 0): every X is reduced by origin.MinX and every Y by origin.MinY.
// Z coordinates pass through. An empty origin translates by nothing but
// still rebuilds the tree.
func Translate(g *geojson.Geometry, origin Envelope) *geojson.Geometry {
	dx, dy := 0.0, 0.0
	if !origin.Empty() {
		dx, dy = origin.MinX, origin.MinY
	}
	return mapPositions(g, func(pos []float64) []float64 {
		out := clonePosition(pos)
		if len(out) < 2 {
			return out
		}
		out[0] -= dx
		out[1] -= dy
		return out
	})
}

// Clone returns a structural deep copy of g: fresh coordinate slices at
// every level with no sub-object shared with the input. Unlike the
// transform constructors it preserves the bbox member, which stays
// valid on an exact copy.
func Clone(g *geojson.Geometry) *geojson.Geometry {
	if g == nil {
		return nil
	}
	out := mapPositions(g, clonePosition)
	if out != nil && len(g.BoundingBox) > 0 {
		out.BoundingBox = append([]float64(nil), g.BoundingBox...)
	}
	return out
}

// mapPositions rebuilds the geometry tree with every position replaced
// by f(position). Unknown geometry types collapse to nil so that
// malformed trees are skipped rather than aborting a whole render.
func mapPositions(g *geojson.Geometry, f func(pos []float64) []float64) *geojson.Geometry {
	if g == nil {
		return nil
	}
	switch g.Type {
	case geojson.GeometryPoint:
		return geojson.NewPointGeometry(f(g.Point))
	case geojson.GeometryMultiPoint:
		return geojson.NewMultiPointGeometry(mapLine(g.MultiPoint, f)...)
	case geojson.GeometryLineString:
		return geojson.NewLineStringGeometry(mapLine(g.LineString, f))
	case geojson.GeometryMultiLineString:
		return geojson.NewMultiLineStringGeometry(mapRings(g.MultiLineString, f)...)
	case geojson.GeometryPolygon:
		return geojson.NewPolygonGeometry(mapRings(g.Polygon, f))
	case geojson.GeometryMultiPolygon:
		polys := make([][][][]float64, len(g.MultiPolygon))
		for i, poly := range g.MultiPolygon {
			polys[i] = mapRings(poly, f)
		}
		return geojson.NewMultiPolygonGeometry(polys...)
	case geojson.GeometryCollection:
		subs := make([]*geojson.Geometry, 0, len(g.Geometries))
		for _, sub := range g.Geometries {
			if ng := mapPositions(sub, f); ng != nil {
				subs = append(subs, ng)
			}
		}
		return geojson.NewCollectionGeometry(subs...)
	}
	return nil
}

func mapLine(line [][]float64, f func(pos []float64) []float64) [][]float64 {
	out := make([][]float64, len(line))
	for i, pos := range line {
		out[i] = f(pos)
	}
	return out
}

func mapRings(rings [][][]float64, f func(pos []float64) []float64) [][][]float64 {
	out := make([][][]float64, len(rings))
	for i, ring := range rings {
		out[i] = mapLine(ring, f)
	}
	return out
}

func clonePosition(pos []float64) []float64 {
	if pos == nil {
		return nil
	}
	return append([]float64(nil), pos...)
}

// ShouldRotate reports whether content with extents src should be
// rotated to better fill a target with extents dst: true exactly when
// one of the two is wider than tall and the other is not. Degenerate
// extents on either side disable rotation.
func ShouldRotate(src, dst Envelope) bool {
	sa, da := src.AspectRatio(), dst.AspectRatio()
	if math.IsNaN(sa) || math.IsInf(sa, 0) || math.IsNaN(da) || math.IsInf(da, 0) {
		return false
	}
	return (sa > 1) != (da > 1)
}

// FitScale returns the uniform factor that fits extent inside a
// width × height box: the smaller of the two per-axis ratios, so the
// scaled extent never overflows either axis. A fully degenerate extent
// maps to the identity factor; an extent degenerate on one axis scales
// by the remaining axis alone.
func FitScale(extent Envelope, width, height float64) float64 {
	w, h := extent.Width(), extent.Height()
	switch {
	case w <= 0 && h <= 0:
		return 1
	case w <= 0:
		return height / h
	case h <= 0:
		return width / w
	}
	return math.Min(width/w, height/h)
}

// RotatedExtents returns the envelope of ext's corners after rotation
// about the origin by radians. For quarter-turn angles this is the
// exact post-rotation envelope of any content bounded by ext.
func RotatedExtents(ext Envelope, radians float64) Envelope {
	if ext.Empty() {
		return ext
	}
	sin, cos := math.Sincos(radians)
	var out Envelope
	for _, c := range [4][2]float64{
		{ext.MinX, ext.MinY},
		{ext.MinX, ext.MaxY},
		{ext.MaxX, ext.MinY},
		{ext.MaxX, ext.MaxY},
	} {
		out = out.ExtendXY(cos*c[0]-sin*c[1], sin*c[0]+cos*c[1])
	}
	return out
}
