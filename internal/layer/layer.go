// Package layer groups decoded vector features with the metadata that
// arrived alongside them. A Layer is the unit the renderer works on:
// transform passes touch every feature of every layer, and draw order
// follows layer order.
package layer

import (
	geojson "github.com/paulmach/go.geojson"

	"mapsheet/internal/geo"
)

// Layer is a named, ordered collection of features. Properties holds
// whatever sibling fields surrounded the feature collection in its
// source document; they are visible to style hooks at render time.
type Layer struct {
	Name       string
	Features   []*geojson.Feature
	Properties map[string]any
}

// New returns an empty layer.
func New(name string) *Layer {
	return &Layer{Name: name, Properties: map[string]any{}}
}

// FromFeatureCollection wraps an already-decoded feature collection.
func FromFeatureCollection(name string, fc *geojson.FeatureCollection) *Layer {
	l := New(name)
	if fc != nil {
		l.Features = fc.Features
	}
	return l
}

// FromGeometry wraps a bare geometry in a single anonymous feature.
func FromGeometry(name string, g *geojson.Geometry) *Layer {
	l := New(name)
	if g != nil {
		l.Features = append(l.Features, geojson.NewFeature(g))
	}
	return l
}

// AddFeature appends f. Nil features are dropped.
func (l *Layer) AddFeature(f *geojson.Feature) {
	if f == nil {
		return
	}
	l.Features = append(l.Features, f)
}

// Extents folds every feature of the layer into env.
func (l *Layer) Extents(env geo.Envelope) geo.Envelope {
	for _, f := range l.Features {
		env = geo.ExtendFeature(env, f)
	}
	return env
}

// Extents returns the union envelope of all layers.
func Extents(layers []*Layer) geo.Envelope {
	var env geo.Envelope
	for _, l := range layers {
		env = l.Extents(env)
	}
	return env
}

// RotateScale replaces every feature's geometry with a rotated and
// scaled rebuild. Feature identity, properties and order are kept.
func (l *Layer) RotateScale(factor, radians float64) {
	for _, f := range l.Features {
		if f == nil {
			continue
		}
		f.Geometry = geo.RotateScale(f.Geometry, factor, radians)
		f.BoundingBox = nil
	}
}

// Translate shifts every feature's geometry so origin.Min lands on
// (0, 0).
func (l *Layer) Translate(origin geo.Envelope) {
	for _, f := range l.Features {
		if f == nil {
			continue
		}
		f.Geometry = geo.Translate(f.Geometry, origin)
		f.BoundingBox = nil
	}
}

// Clone returns a structural deep copy: fresh feature structs, fresh
// geometry trees and fresh property maps, so transforming the clone
// never reaches the original.
func (l *Layer) Clone() *Layer {
	out := &Layer{
		Name:       l.Name,
		Properties: cloneProperties(l.Properties),
	}
	if l.Features != nil {
		out.Features = make([]*geojson.Feature, len(l.Features))
		for i, f := range l.Features {
			out.Features[i] = cloneFeature(f)
		}
	}
	return out
}

func cloneFeature(f *geojson.Feature) *geojson.Feature {
	if f == nil {
		return nil
	}
	nf := geojson.NewFeature(geo.Clone(f.Geometry))
	nf.ID = f.ID
	nf.Properties = cloneProperties(f.Properties)
	if len(f.BoundingBox) > 0 {
		nf.BoundingBox = append([]float64(nil), f.BoundingBox...)
	}
	return nf
}

func cloneProperties(props map[string]any) map[string]any {
	if props == nil {
		return nil
	}
	out := make(map[string]any, len(props))
	for k, v := range props {
		out[k] = cloneValue(v)
	}
	return out
}

// cloneValue deep-copies decoded JSON values. Scalars are immutable and
// pass through.
func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, sub := range val {
			out[k] = cloneValue(sub)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, sub := range val {
			out[i] = cloneValue(sub)
		}
		return out
	}
	return v
}
