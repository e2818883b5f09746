// Package render lays vector layers out on raster pages: fitting,
// pagination into print-sized sheets, viewport crops and the actual
// PNG rasterization.
//
// A Renderer owns its layers and mutates them through layout passes:
// FitToPage, Paginate and CropFeatures each rotate, scale and
// translate every feature so the content lands on a canvas anchored at
// the origin. Rendering then tiles the canvas into segments and draws
// each one. The zero Renderer is not usable; construct with New.
package render

import (
	"image/color"
	"log/slog"
	"math"

	"mapsheet/internal/layer"
)

// DefaultRotation is the angle applied when content orientation
// opposes the page: a 270 degree counter-clockwise turn, which maps
// (x, y) to (y, -x).
const DefaultRotation = 3 * math.Pi / 2

// Renderer carries layers plus the layout produced by the most recent
// fit pass. Not safe for concurrent use.
type Renderer struct {
	layers []*layer.Layer

	pageW, pageH int
	border       int
	overlap      int

	canvasW, canvasH float64
	originX, originY float64
	scale            float64

	multiPage   bool
	cropped     bool
	pageRotated bool

	angle      float64
	background color.Color
	style      Style
	styleFn    StyleFunc
	filterFn   FilterFunc
	log        *slog.Logger
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithLayers seeds the renderer with layers, drawn in the given order.
func WithLayers(layers ...*layer.Layer) Option {
	return func(r *Renderer) {
		r.layers = append(r.layers, layers...)
	}
}

// WithBackground sets the page background color. Default is white.
func WithBackground(c color.Color) Option {
	return func(r *Renderer) {
		if c != nil {
			r.background = c
		}
	}
}

// WithStyle sets the default feature style.
func WithStyle(s Style) Option {
	return func(r *Renderer) { r.style = s }
}

// WithStyleFunc installs a per-feature styling hook.
func WithStyleFunc(fn StyleFunc) Option {
	return func(r *Renderer) { r.styleFn = fn }
}

// WithFilter installs a per-feature membership predicate.
func WithFilter(fn FilterFunc) Option {
	return func(r *Renderer) { r.filterFn = fn }
}

// WithRotation overrides the angle used when a fit pass decides to
// rotate, in radians.
func WithRotation(radians float64) Option {
	return func(r *Renderer) { r.angle = radians }
}

// WithLogger directs diagnostics to l. By default the renderer is
// silent; passing nil keeps it that way.
func WithLogger(l *slog.Logger) Option {
	return func(r *Renderer) {
		if l != nil {
			r.log = l
		}
	}
}

// New returns a renderer with white background, black hairline style
// and the default rotation angle.
func New(opts ...Option) *Renderer {
	r := &Renderer{
		angle:      DefaultRotation,
		background: color.White,
		style:      DefaultStyle(),
		scale:      1,
		log:        slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// AddLayer appends a layer; it draws above all earlier layers.
func (r *Renderer) AddLayer(l *layer.Layer) {
	if l != nil {
		r.layers = append(r.layers, l)
	}
}

// Layers returns the renderer's layers in draw order.
func (r *Renderer) Layers() []*layer.Layer { return r.layers }

// Scale returns the factor applied by the most recent layout pass, 1
// before any pass has run.
func (r *Renderer) Scale() float64 { return r.scale }

// PageRotated reports whether pagination settled on sheets turned 90
// degrees relative to the requested page size.
func (r *Renderer) PageRotated() bool { return r.pageRotated }
