package layer

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	geojson "github.com/paulmach/go.geojson"
)

// ParseWKT parses a subset of WKT into a geometry. Supported:
// POINT(x y), MULTIPOINT(x y, ...), LINESTRING(x y, ...) and
// POLYGON((x y, ...), (x y, ...)). A third number per tuple is kept as
// Z. Multipoint tuples may be individually parenthesized.
func ParseWKT(wkt string) (*geojson.Geometry, error) {
	s := strings.TrimSpace(wkt)
	if s == "" {
		return nil, errors.New("empty wkt")
	}
	up := strings.ToUpper(s)
	switch {
	case strings.HasPrefix(up, "MULTIPOINT"):
		block, err := parenBlock(s, "(", ")")
		if err != nil {
			return nil, fmt.Errorf("wkt multipoint: %w", err)
		}
		pts := parseTuples(block)
		if len(pts) == 0 {
			return nil, errors.New("wkt multipoint: no coordinates")
		}
		return geojson.NewMultiPointGeometry(pts...), nil
	case strings.HasPrefix(up, "POINT"):
		block, err := parenBlock(s, "(", ")")
		if err != nil {
			return nil, fmt.Errorf("wkt point: %w", err)
		}
		pts := parseTuples(block)
		if len(pts) == 0 {
			return nil, errors.New("wkt point: no coordinates")
		}
		return geojson.NewPointGeometry(pts[0]), nil
	case strings.HasPrefix(up, "LINESTRING"):
		block, err := parenBlock(s, "(", ")")
		if err != nil {
			return nil, fmt.Errorf("wkt linestring: %w", err)
		}
		pts := parseTuples(block)
		if len(pts) == 0 {
			return nil, errors.New("wkt linestring: no coordinates")
		}
		return geojson.NewLineStringGeometry(pts), nil
	case strings.HasPrefix(up, "POLYGON"):
		block, err := parenBlock(s, "((", "))")
		if err != nil {
			return nil, fmt.Errorf("wkt polygon: %w", err)
		}
		var rings [][][]float64
		for _, ringPart := range splitRings(block) {
			pts := parseTuples(ringPart)
			if len(pts) > 0 {
				rings = append(rings, pts)
			}
		}
		if len(rings) == 0 {
			return nil, errors.New("wkt polygon: no coordinates")
		}
		return geojson.NewPolygonGeometry(rings), nil
	}
	return nil, errors.New("unsupported wkt type")
}

func parenBlock(s, open, close string) (string, error) {
	i := strings.Index(s, open)
	j := strings.LastIndex(s, close)
	if i < 0 || j <= i {
		return "", errors.New("invalid parentheses")
	}
	return s[i+len(open) : j], nil
}

func parseTuples(block string) [][]float64 {
	var out [][]float64
	for _, tup := range strings.Split(block, ",") {
		parts := strings.Fields(strings.Trim(tup, "() \t"))
		if len(parts) < 2 {
			continue
		}
		x, err1 := strconv.ParseFloat(parts[0], 64)
		y, err2 := strconv.ParseFloat(parts[1], 64)
		if err1 != nil || err2 != nil {
			continue
		}
		pos := []float64{x, y}
		if len(parts) >= 3 {
			if z, err := strconv.ParseFloat(parts[2], 64); err == nil {
				pos = append(pos, z)
			}
		}
		out = append(out, pos)
	}
	return out
}

func splitRings(block string) []string {
	norm := strings.ReplaceAll(block, ") , (", "),(")
	norm = strings.ReplaceAll(norm, "), (", "),(")
	return strings.Split(norm, "),(")
}

// LoadWKT reads a file with one WKT geometry per non-empty line, each
// becoming a feature.
func LoadWKT(path string) (*Layer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	l := New(name)
	sc := bufio.NewScanner(f)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		g, err := ParseWKT(text)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, lineNo, err)
		}
		l.AddFeature(geojson.NewFeature(g))
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(l.Features) == 0 {
		return nil, fmt.Errorf("%s: no wkt geometries found", path)
	}
	return l, nil
}
