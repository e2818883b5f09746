package layer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	geojson "github.com/paulmach/go.geojson"
)

// Decode parses GeoJSON into a layer. Three document shapes are
// accepted at the top level: a FeatureCollection, a single Feature, or
// a bare geometry. A fourth shape wraps one of those inside a named
// container field, with any sibling fields captured as layer
// properties:
//
//	{"name": "ground floor", "level": 0, "floorplan": {"type": "FeatureCollection", ...}}
//
// Exactly one container field may hold geometry; zero or several is an
// error, because picking one silently would drop data.
func Decode(name string, data []byte) (*Layer, error) {
	typ, err := probeType(data)
	if err != nil {
		return nil, fmt.Errorf("layer %q: %w", name, err)
	}
	if typ != "" {
		feats, err := decodeBody(data, typ)
		if err != nil {
			return nil, fmt.Errorf("layer %q: %w", name, err)
		}
		l := New(name)
		l.Features = feats
		return l, nil
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("layer %q: %w", name, err)
	}
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var bodyKey string
	var bodyType string
	for _, k := range keys {
		t, err := probeType(raw[k])
		if err != nil || t == "" {
			continue
		}
		if bodyKey != "" {
			return nil, fmt.Errorf("layer %q: geometry in both %q and %q", name, bodyKey, k)
		}
		bodyKey, bodyType = k, t
	}
	if bodyKey == "" {
		return nil, fmt.Errorf("layer %q: no geojson content found", name)
	}

	feats, err := decodeBody(raw[bodyKey], bodyType)
	if err != nil {
		return nil, fmt.Errorf("layer %q: field %q: %w", name, bodyKey, err)
	}
	l := New(name)
	l.Features = feats
	for _, k := range keys {
		if k == bodyKey {
			continue
		}
		var v any
		if err := json.Unmarshal(raw[k], &v); err != nil {
			return nil, fmt.Errorf("layer %q: field %q: %w", name, k, err)
		}
		l.Properties[k] = v
	}
	return l, nil
}

// probeType returns the "type" member of a JSON object when it names a
// GeoJSON shape, or "" when the object has no usable type.
func probeType(data []byte) (string, error) {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return "", err
	}
	switch probe.Type {
	case "FeatureCollection", "Feature":
		return probe.Type, nil
	}
	if isGeometryType(probe.Type) {
		return probe.Type, nil
	}
	return "", nil
}

func isGeometryType(t string) bool {
	switch geojson.GeometryType(t) {
	case geojson.GeometryPoint, geojson.GeometryMultiPoint,
		geojson.GeometryLineString, geojson.GeometryMultiLineString,
		geojson.GeometryPolygon, geojson.GeometryMultiPolygon,
		geojson.GeometryCollection:
		return true
	}
	return false
}

func decodeBody(data []byte, typ string) ([]*geojson.Feature, error) {
	switch typ {
	case "FeatureCollection":
		fc, err := geojson.UnmarshalFeatureCollection(data)
		if err != nil {
			return nil, err
		}
		return fc.Features, nil
	case "Feature":
		f, err := geojson.UnmarshalFeature(data)
		if err != nil {
			return nil, err
		}
		return []*geojson.Feature{f}, nil
	}
	g, err := geojson.UnmarshalGeometry(data)
	if err != nil {
		return nil, err
	}
	return []*geojson.Feature{geojson.NewFeature(g)}, nil
}

// Load reads a vector file and dispatches on its extension:
// .geojson/.json, .csv, .kml and .wkt are understood. The layer is
// named after the file.
func Load(path string) (*Layer, error) {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	switch strings.ToLower(filepath.Ext(path)) {
	case ".geojson", ".json":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		return Decode(name, data)
	case ".csv":
		return LoadCSV(path)
	case ".kml":
		return LoadKML(path)
	case ".wkt":
		return LoadWKT(path)
	}
	return nil, fmt.Errorf("unsupported file type: %s", path)
}
