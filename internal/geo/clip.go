package geo

import (
	geojson "github.com/paulmach/go.geojson"
)

// Intersects reports whether any part of g is visible inside env.
// Points count only when strictly inside; segments count when the
// Liang-Barsky parameter interval against env is non-empty, so an edge
// crossing the boundary is visible even with both endpoints outside.
// Nil geometries, unknown types and empty envelopes are never visible.
func Intersects(g *geojson.Geometry, env Envelope) bool {
	if g == nil || env.Empty() {
		return false
	}
	switch g.Type {
	case geojson.GeometryPoint:
		return positionInside(g.Point, env)
	case geojson.GeometryMultiPoint:
		for _, p := range g.MultiPoint {
			if positionInside(p, env) {
				return true
			}
		}
	case geojson.GeometryLineString:
		return polylineVisible(g.LineString, env)
	case geojson.GeometryMultiLineString:
		for _, line := range g.MultiLineString {
			if polylineVisible(line, env) {
				return true
			}
		}
	case geojson.GeometryPolygon:
		for _, ring := range g.Polygon {
			if polylineVisible(ring, env) {
				return true
			}
		}
	case geojson.GeometryMultiPolygon:
		for _, poly := range g.MultiPolygon {
			for _, ring := range poly {
				if polylineVisible(ring, env) {
					return true
				}
			}
		}
	case geojson.GeometryCollection:
		for _, sub := range g.Geometries {
			if Intersects(sub, env) {
				return true
			}
		}
	}
	return false
}

// IntersectsFeature reports whether f's geometry is visible inside env.
func IntersectsFeature(f *geojson.Feature, env Envelope) bool {
	if f == nil {
		return false
	}
	return Intersects(f.Geometry, env)
}

func positionInside(pos []float64, env Envelope) bool {
	return len(pos) >= 2 && env.ContainsXY(pos[0], pos[1])
}

func polylineVisible(line [][]float64, env Envelope) bool {
	if len(line) == 1 {
		return positionInside(line[0], env)
	}
	for i := 0; i+1 < len(line); i++ {
		a, b := line[i], line[i+1]
		if len(a) < 2 || len(b) < 2 {
			continue
		}
		if segmentVisible(a[0], a[1], b[0], b[1], env) {
			return true
		}
	}
	return false
}

// segmentVisible is the Liang-Barsky visibility test: clip the segment
// parameter interval [t0, t1] against each of the four box boundaries
// and report whether anything remains. An endpoint strictly inside the
// box short-circuits the parametric walk.
func segmentVisible(x0, y0, x1, y1 float64, env Envelope) bool {
	if env.ContainsXY(x0, y0) || env.ContainsXY(x1, y1) {
		return true
	}
	dx := x1 - x0
	dy := y1 - y0
	t0, t1 := 0.0, 1.0

	clip := func(p, q float64) bool {
		if p == 0 {
			// Parallel to this boundary: outside iff offset is negative.
			return q >= 0
		}
		t := q / p
		if p < 0 {
			if t > t1 {
				return false
			}
			if t > t0 {
				t0 = t
			}
		} else {
			if t < t0 {
				return false
			}
			if t < t1 {
				t1 = t
			}
		}
		return true
	}

	if !clip(-dx, x0-env.MinX) {
		return false
	}
	if !clip(dx, env.MaxX-x0) {
		return false
	}
	if !clip(-dy, y0-env.MinY) {
		return false
	}
	if !clip(dy, env.MaxY-y0) {
		return false
	}
	return t0 <= t1
}
