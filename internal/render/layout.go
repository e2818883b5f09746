package render

import (
	"errors"
	"fmt"

	"mapsheet/internal/geo"
	"mapsheet/internal/layer"
)

// maxDoublings bounds the pagination growth loop. Growth stalls when
// the border and overlap correction swallows the doubled axis, and a
// threshold above any reachable scale must not spin forever.
const maxDoublings = 64

// FitToPage scales all layers onto a single page of width x height
// pixels with a uniform border. Content is rotated first when its
// orientation opposes the drawable area, then scaled by the smaller of
// the two axis ratios and translated to the canvas origin. Layers with
// no geometry leave the pass as a no-op layout.
func (r *Renderer) FitToPage(width, height, border int) error {
	cw, ch, err := drawableArea(width, height, border, 0)
	if err != nil {
		return err
	}
	r.pageW, r.pageH = width, height
	r.border, r.overlap = border, 0
	r.multiPage, r.cropped, r.pageRotated = false, false, false
	r.originX, r.originY = 0, 0
	r.canvasW, r.canvasH = cw, ch
	r.scale = r.fitLayers(cw, ch, true)
	r.log.Debug("fit to page",
		"page_w", width, "page_h", height, "border", border, "scale", r.scale)
	return nil
}

// Paginate grows the canvas from a single page by repeated
// doubling-with-rotation until the fit factor reaches maxScale, then
// fits all layers onto the final canvas. Each doubling turns the sheet
// grid by 90 degrees; the page-rotated flag records the parity.
// A candidate whose own fit factor would not exceed minScale stops the
// growth one step early, which matters because a doubled-and-rotated
// canvas can fit oblong content worse than its predecessor. Rendering
// afterwards emits one segment per sheet.
func (r *Renderer) Paginate(width, height int, maxScale, minScale float64, border, overlap int) error {
	cw, ch, err := drawableArea(width, height, border, overlap)
	if err != nil {
		return err
	}
	if maxScale <= 0 {
		return errors.New("render: max scale must be positive")
	}
	r.pageW, r.pageH = width, height
	r.border, r.overlap = border, overlap
	r.multiPage, r.cropped = true, false
	r.pageRotated = false
	r.originX, r.originY = 0, 0

	ext := layer.Extents(r.layers)
	if !ext.Empty() {
		fitFor := func(w, h float64) float64 {
			fe := ext
			if geo.ShouldRotate(ext, geo.NewEnvelope(0, 0, w, h)) {
				fe = geo.RotatedExtents(ext, r.angle)
			}
			return geo.FitScale(fe, w, h)
		}
		adjust := float64(2*border + overlap)
		for i := 0; i < maxDoublings && fitFor(cw, ch) < maxScale; i++ {
			candW := 2*ch - adjust
			candH := cw
			if candW <= 0 {
				break
			}
			if fitFor(candW, candH) <= minScale {
				break
			}
			cw, ch = candW, candH
			r.pageRotated = !r.pageRotated
		}
	}

	r.canvasW, r.canvasH = cw, ch
	r.scale = r.fitLayers(cw, ch, true)
	r.log.Debug("paginated",
		"canvas_w", cw, "canvas_h", ch, "scale", r.scale, "page_rotated", r.pageRotated)
	return nil
}

// CropFeatures renders a viewport window of the content onto a single
// width x height image without any rotation. The scale comes from
// fitting the viewport to the output size; the whole content is scaled
// by that factor and the capture origin is placed where the viewport
// landed, so geometry outside the viewport is clipped rather than
// squeezed in.
func (r *Renderer) CropFeatures(viewport geo.Envelope, width, height int) error {
	if viewport.Empty() || viewport.Width() <= 0 || viewport.Height() <= 0 {
		return errors.New("render: crop viewport has no area")
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("render: output size %dx%d is not positive", width, height)
	}
	r.pageW, r.pageH = width, height
	r.border, r.overlap = 0, 0
	r.multiPage, r.pageRotated = false, false
	r.cropped = true

	ext := layer.Extents(r.layers)
	if ext.Empty() {
		r.canvasW, r.canvasH = float64(width), float64(height)
		r.originX, r.originY = 0, 0
		r.scale = 1
		return nil
	}
	vScale := geo.FitScale(viewport, float64(width), float64(height))
	r.canvasW = ext.Width() * vScale
	r.canvasH = ext.Height() * vScale
	r.scale = r.fitLayers(r.canvasW, r.canvasH, false)
	r.originX = (viewport.MinX - ext.MinX) * r.scale
	r.originY = (viewport.MinY - ext.MinY) * r.scale
	r.log.Debug("cropped",
		"viewport", viewport.String(), "scale", r.scale,
		"origin_x", r.originX, "origin_y", r.originY)
	return nil
}

// fitLayers applies one rotate-scale pass and one translate pass to
// every layer, sharing a single extent so all layers transform
// identically. Rotation is decided before scaling because the factor
// derives from the rotated extents. Returns the applied factor;
// layers without geometry stay untouched at factor 1.
func (r *Renderer) fitLayers(cw, ch float64, allowRotate bool) float64 {
	ext := layer.Extents(r.layers)
	if ext.Empty() {
		return 1
	}
	angle := 0.0
	fitExt := ext
	if allowRotate && geo.ShouldRotate(ext, geo.NewEnvelope(0, 0, cw, ch)) {
		angle = r.angle
		fitExt = geo.RotatedExtents(ext, angle)
	}
	scale := geo.FitScale(fitExt, cw, ch)
	for _, l := range r.layers {
		l.RotateScale(scale, angle)
	}
	moved := layer.Extents(r.layers)
	for _, l := range r.layers {
		l.Translate(moved)
	}
	return scale
}

func drawableArea(width, height, border, overlap int) (cw, ch float64, err error) {
	if width <= 0 || height <= 0 {
		return 0, 0, fmt.Errorf("render: page size %dx%d is not positive", width, height)
	}
	if border < 0 || overlap < 0 {
		return 0, 0, errors.New("render: border and overlap must not be negative")
	}
	cw = float64(width - 2*border - overlap)
	ch = float64(height - 2*border - overlap)
	if cw <= 0 || ch <= 0 {
		return 0, 0, fmt.Errorf("render: border %d and overlap %d leave no drawable area on %dx%d",
			border, overlap, width, height)
	}
	return cw, ch, nil
}
