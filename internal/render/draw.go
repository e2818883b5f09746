package render

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gogpu/gg"
	geojson "github.com/paulmach/go.geojson"

	"mapsheet/internal/geo"
)

// RenderPage rasterizes one segment and returns the finished image.
// Canonical layers are cloned per page, so pages can be rendered in
// any order and repeatedly.
func (r *Renderer) RenderPage(seg Segment) (image.Image, error) {
	dc, err := r.renderContext(seg)
	if err != nil {
		return nil, err
	}
	return dc.Image(), nil
}

// EncodePage renders one segment and writes it as PNG to w.
func (r *Renderer) EncodePage(seg Segment, w io.Writer) error {
	dc, err := r.renderContext(seg)
	if err != nil {
		return err
	}
	return dc.EncodePNG(w)
}

// SavePages renders every segment of the current layout and writes one
// PNG per sheet. The pattern must contain a single %s placeholder for
// the segment id, e.g. "out/plan-%s.png". The target directory must
// already exist; nothing is written if it does not. Returns the paths
// written, in sheet order.
func (r *Renderer) SavePages(pattern string) ([]string, error) {
	if strings.Count(pattern, "%s") != 1 {
		return nil, fmt.Errorf("render: pattern %q needs exactly one %%s placeholder", pattern)
	}
	segs := r.Segments()
	if len(segs) == 0 {
		return nil, errors.New("render: no pages to save; run a layout pass first")
	}
	dir := filepath.Dir(fmt.Sprintf(pattern, segs[0].ID))
	if info, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("render: output directory: %w", err)
	} else if !info.IsDir() {
		return nil, fmt.Errorf("render: output path %s is not a directory", dir)
	}

	paths := make([]string, 0, len(segs))
	for _, seg := range segs {
		dc, err := r.renderContext(seg)
		if err != nil {
			return paths, err
		}
		path := fmt.Sprintf(pattern, seg.ID)
		if err := dc.SavePNG(path); err != nil {
			return paths, fmt.Errorf("render: save %s: %w", path, err)
		}
		r.log.Info("page written", "path", path, "segment", seg.ID)
		paths = append(paths, path)
	}
	return paths, nil
}

func (r *Renderer) renderContext(seg Segment) (*gg.Context, error) {
	if seg.Width <= 0 || seg.Height <= 0 {
		return nil, fmt.Errorf("render: segment %s has no pixel area", seg.ID)
	}
	dc := gg.NewContext(seg.Width, seg.Height)
	dc.ClearWithColor(gg.FromColor(r.background))
	dc.SetLineCap(gg.LineCapRound)

	// Window-local coordinates: clone, shift the window onto the
	// origin, cull, draw. The y flip happens at the projection because
	// canvas y grows north while image y grows down.
	local := geo.NewEnvelope(0, 0, seg.Window.Width(), seg.Window.Height())
	padX := float64(r.border) - (seg.AnchorX - seg.Window.MinX)
	padY := float64(r.border) + (seg.AnchorY - seg.Window.MinY)
	px := func(x float64) float64 { return padX + x }
	py := func(y float64) float64 { return padY - y }

	for _, src := range r.layers {
		if src == nil {
			continue
		}
		l := src.Clone()
		l.Translate(seg.Window)
		for _, f := range l.Features {
			if f == nil || f.Geometry == nil {
				continue
			}
			if !geo.IntersectsFeature(f, local) {
				continue
			}
			if r.filterFn != nil && !r.keepFeature(f, src.Properties) {
				continue
			}
			st, draw := r.style, true
			if r.styleFn != nil {
				st, draw = r.styleFn(f, src.Properties, r.style)
			}
			if !draw {
				continue
			}
			if err := drawGeometry(dc, f.Geometry, st, px, py); err != nil {
				return nil, fmt.Errorf("render: segment %s: %w", seg.ID, err)
			}
		}
	}
	return dc, nil
}

// keepFeature runs the filter hook, recovering a panic into "keep".
func (r *Renderer) keepFeature(f *geojson.Feature, props map[string]any) (keep bool) {
	defer func() {
		if v := recover(); v != nil {
			r.log.Warn("filter hook panicked; keeping feature", "panic", v)
			keep = true
		}
	}()
	return r.filterFn(f, props)
}

func drawGeometry(dc *gg.Context, g *geojson.Geometry, st Style, px, py func(float64) float64) error {
	if g == nil {
		return nil
	}
	switch g.Type {
	case geojson.GeometryPoint:
		return drawPoint(dc, g.Point, st, px, py)
	case geojson.GeometryMultiPoint:
		for _, p := range g.MultiPoint {
			if err := drawPoint(dc, p, st, px, py); err != nil {
				return err
			}
		}
	case geojson.GeometryLineString:
		return drawPolyline(dc, g.LineString, st, px, py)
	case geojson.GeometryMultiLineString:
		for _, line := range g.MultiLineString {
			if err := drawPolyline(dc, line, st, px, py); err != nil {
				return err
			}
		}
	case geojson.GeometryPolygon:
		return drawPolygon(dc, g.Polygon, st, px, py)
	case geojson.GeometryMultiPolygon:
		for _, poly := range g.MultiPolygon {
			if err := drawPolygon(dc, poly, st, px, py); err != nil {
				return err
			}
		}
	case geojson.GeometryCollection:
		for _, sub := range g.Geometries {
			if err := drawGeometry(dc, sub, st, px, py); err != nil {
				return err
			}
		}
	}
	return nil
}

// drawPoint renders a dot the size a zero-length round-capped stroke
// would have.
func drawPoint(dc *gg.Context, pos []float64, st Style, px, py func(float64) float64) error {
	if len(pos) < 2 {
		return nil
	}
	radius := st.Stroke.Width / 2
	if radius <= 0 {
		radius = 0.5
	}
	dc.SetColor(strokeColor(st.Stroke))
	dc.DrawPoint(px(pos[0]), py(pos[1]), radius)
	return dc.Fill()
}

func drawPolyline(dc *gg.Context, line [][]float64, st Style, px, py func(float64) float64) error {
	if len(line) == 1 {
		return drawPoint(dc, line[0], st, px, py)
	}
	started := false
	for _, pos := range line {
		if len(pos) < 2 {
			continue
		}
		if !started {
			dc.MoveTo(px(pos[0]), py(pos[1]))
			started = true
			continue
		}
		dc.LineTo(px(pos[0]), py(pos[1]))
	}
	if !started {
		return nil
	}
	applyStroke(dc, st.Stroke)
	return dc.Stroke()
}

func drawPolygon(dc *gg.Context, rings [][][]float64, st Style, px, py func(float64) float64) error {
	drew := false
	for _, ring := range rings {
		started := false
		for _, pos := range ring {
			if len(pos) < 2 {
				continue
			}
			if !started {
				dc.NewSubPath()
				dc.MoveTo(px(pos[0]), py(pos[1]))
				started = true
				continue
			}
			dc.LineTo(px(pos[0]), py(pos[1]))
		}
		if started {
			dc.ClosePath()
			drew = true
		}
	}
	if !drew {
		return nil
	}
	if st.Fill != nil {
		c := st.Fill.Color
		if c == nil {
			c = color.Black
		}
		dc.SetColor(c)
		dc.SetFillRule(gg.FillRuleEvenOdd)
		if err := dc.FillPreserve(); err != nil {
			return err
		}
	}
	applyStroke(dc, st.Stroke)
	return dc.Stroke()
}

func applyStroke(dc *gg.Context, s StrokeStyle) {
	dc.SetColor(strokeColor(s))
	w := s.Width
	if w <= 0 {
		w = 1
	}
	dc.SetLineWidth(w)
	if len(s.Dash) > 0 {
		dc.SetDash(s.Dash...)
	} else {
		dc.ClearDash()
	}
}

func strokeColor(s StrokeStyle) color.Color {
	if s.Color == nil {
		return color.Black
	}
	return s.Color
}
