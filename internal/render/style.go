package render

import (
	"image/color"

	geojson "github.com/paulmach/go.geojson"
)

// StrokeStyle describes how outlines are drawn. An empty Dash means a
// solid line; a non-positive Width falls back to a hairline of 1.
type StrokeStyle struct {
	Color color.Color
	Width float64
	Dash  []float64
}

// FillStyle describes polygon interior painting. Rings fill under the
// even-odd rule, so inner rings punch holes.
type FillStyle struct {
	Color color.Color
}

// Style is the complete per-feature appearance. A nil Fill leaves
// polygon interiors unpainted.
type Style struct {
	Stroke StrokeStyle
	Fill   *FillStyle
}

// DefaultStyle is a solid black hairline with no fill.
func DefaultStyle() Style {
	return Style{Stroke: StrokeStyle{Color: color.Black, Width: 1}}
}

// StyleFunc chooses the appearance of one feature. It receives the
// feature, the properties of the layer it came from and the renderer's
// default style, and returns the style to use plus whether to draw the
// feature at all. The hook runs once per feature per rendered page, in
// layer order then feature order. A panic inside a StyleFunc aborts
// the render.
type StyleFunc func(f *geojson.Feature, layerProps map[string]any, def Style) (Style, bool)

// FilterFunc decides whether a feature participates in a page at all,
// before styling. Returning false drops the feature. A panic inside a
// FilterFunc is recovered and the feature is kept, so a broken
// predicate degrades to drawing too much rather than losing data.
type FilterFunc func(f *geojson.Feature, layerProps map[string]any) bool
