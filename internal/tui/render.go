package tui

import (
	"sort"
	"strings"

	geojson "github.com/paulmach/go.geojson"

	"mapsheet/internal/geo"
)

// cellToLonLat converts a map cell coordinate back to source
// coordinates using the display extent, zoom, and pan.
func (m Model) cellToLonLat(cx, cy, w, h int) (float64, float64, bool) {
	_, ext := m.viewData()
	if ext.Empty() || ext.Width() <= 0 || ext.Height() <= 0 {
		return 0, 0, false
	}
	if w <= 1 || h <= 1 {
		return 0, 0, false
	}
	zx := float64(cx-m.offsetX) / float64(w-1)
	zy := 1.0 - float64(cy-m.offsetY)/float64(h-1)
	nx := 0.5 + (zx-0.5)/m.zoom
	ny := 0.5 + (zy-0.5)/m.zoom
	lon := ext.MinX + nx*ext.Width()
	lat := ext.MinY + ny*ext.Height()
	return lon, lat, true
}

func (m Model) renderAsciiMap(w, h int) string {
	// Plain background (no grid)
	lines := make([]string, h)
	for y := 0; y < h; y++ {
		lines[y] = strings.Repeat(" ", w)
	}
	// High-resolution braille buffer for crisp lines/edges
	br := newGrid(w, h)

	layers, _ := m.viewData()
	for _, l := range layers {
		if l == nil {
			continue
		}
		for _, f := range l.Features {
			if f == nil || f.Geometry == nil {
				continue
			}
			m.drawGeometry(br, f.Geometry, w, h)
		}
	}

	// Sheet boundaries sit above the content.
	if m.preview != nil {
		for _, seg := range m.preview.segs {
			x0, y0, ok := m.screenXYMicro(seg.Window.MinX, seg.Window.MinY, w, h)
			x1, y1, ok2 := m.screenXYMicro(seg.Window.MaxX, seg.Window.MaxY, w, h)
			if ok && ok2 {
				br.drawRect(x0, y0, x1, y1)
			}
		}
	}

	// Composite braille overlay onto base lines
	braLines := br.toLines()
	for y := 0; y < h && y < len(braLines); y++ {
		if len(braLines[y]) == 0 {
			continue
		}
		base := []rune(lines[y])
		over := []rune(braLines[y])
		for x := 0; x < len(base) && x < len(over); x++ {
			if over[x] != ' ' {
				base[x] = over[x]
			}
		}
		lines[y] = string(base)
	}

	// Hover highlight: draw an orange circle at the hovered vertex cell
	if m.hovering {
		cx := m.hoverMicX / 2
		cy := m.hoverMicY / 4
		if cy >= 0 && cy < len(lines) {
			r := []rune(lines[cy])
			if cx >= 0 && cx < len(r) {
				circle := hoverStyle.Render("◯")
				pre := string(r[:cx])
				post := string(r[cx+1:])
				lines[cy] = pre + circle + post
			}
		}
	}
	return strings.Join(lines, "\n")
}

// drawGeometry rasterizes one geometry into the braille buffer,
// honoring the per-kind visibility toggles.
func (m Model) drawGeometry(br *grid, g *geojson.Geometry, w, h int) {
	switch {
	case g.IsPoint():
		m.drawMarker(br, g.Point, w, h)
	case g.IsMultiPoint():
		for _, p := range g.MultiPoint {
			m.drawMarker(br, p, w, h)
		}
	case g.IsLineString():
		m.drawPolyline(br, g.LineString, w, h)
	case g.IsMultiLineString():
		for _, ls := range g.MultiLineString {
			m.drawPolyline(br, ls, w, h)
		}
	case g.IsPolygon():
		m.drawPolygon(br, g.Polygon, w, h)
	case g.IsMultiPolygon():
		for _, poly := range g.MultiPolygon {
			m.drawPolygon(br, poly, w, h)
		}
	case g.IsCollection():
		for _, member := range g.Geometries {
			if member != nil {
				m.drawGeometry(br, member, w, h)
			}
		}
	}
}

func (m Model) drawMarker(br *grid, pos []float64, w, h int) {
	if !m.showPoints || len(pos) < 2 {
		return
	}
	if mx, my, ok := m.screenXYMicro(pos[0], pos[1], w, h); ok {
		br.setPixel(mx, my)
	}
}

func (m Model) drawPolyline(br *grid, line [][]float64, w, h int) {
	if !m.showLines {
		return
	}
	var prev *[2]int
	for _, p := range line {
		if len(p) < 2 {
			continue
		}
		mx, my, ok := m.screenXYMicro(p[0], p[1], w, h)
		if !ok {
			continue
		}
		if prev != nil {
			br.drawLineMicro(prev[0], prev[1], mx, my)
		}
		prev = &[2]int{mx, my}
	}
}

// drawPolygon fills the outer ring with an even-odd scanline over the
// microgrid and then strokes every ring edge. Holes only get edges;
// the terminal fill is too coarse to punch them out legibly.
func (m Model) drawPolygon(br *grid, rings [][][]float64, w, h int) {
	if !m.showPolys {
		return
	}
	var ringsMic [][][2]int
	for _, ring := range rings {
		var sm [][2]int
		for _, p := range ring {
			if len(p) < 2 {
				continue
			}
			mx, my, ok := m.screenXYMicro(p[0], p[1], w, h)
			if !ok {
				continue
			}
			sm = append(sm, [2]int{mx, my})
		}
		if len(sm) >= 3 {
			ringsMic = append(ringsMic, sm)
		}
	}
	if len(ringsMic) == 0 {
		return
	}
	// fill outer ring per scanline
	outerMic := ringsMic[0]
	hMic := h * 4
	for yMic := 0; yMic < hMic; yMic++ {
		var xs []int
		for i := 0; i < len(outerMic); i++ {
			a := outerMic[i]
			b := outerMic[(i+1)%len(outerMic)]
			if a[1] == b[1] { // horizontal edge: skip
				continue
			}
			y0, y1 := a[1], b[1]
			x0, x1 := a[0], b[0]
			if (yMic >= y0 && yMic < y1) || (yMic >= y1 && yMic < y0) {
				t := float64(yMic-y0) / float64(y1-y0)
				xs = append(xs, int(float64(x0)+t*float64(x1-x0)))
			}
		}
		if len(xs) >= 2 {
			sort.Ints(xs)
			for i := 0; i+1 < len(xs); i += 2 {
				xstart, xend := xs[i], xs[i+1]
				if xstart > xend {
					xstart, xend = xend, xstart
				}
				for xMic := max(0, xstart); xMic <= xend; xMic++ {
					br.setPixel(xMic, yMic)
				}
			}
		}
	}
	// ring edges
	for _, r := range ringsMic {
		for i := 0; i < len(r); i++ {
			a := r[i]
			b := r[(i+1)%len(r)]
			br.drawLineMicro(a[0], a[1], b[0], b[1])
		}
	}
}

// screenXYMicro maps source coordinates into a 2x4 microgrid per cell
// for braille rendering.
func (m Model) screenXYMicro(lon, lat float64, w, h int) (int, int, bool) {
	_, ext := m.viewData()
	if ext.Empty() || ext.Width() <= 0 || ext.Height() <= 0 {
		return 0, 0, false
	}
	nx := (lon - ext.MinX) / ext.Width()
	ny := (lat - ext.MinY) / ext.Height()
	zx := 0.5 + (nx-0.5)*m.zoom
	zy := 0.5 + (ny-0.5)*m.zoom
	wMic := w * 2
	hMic := h * 4
	sx := int(zx*float64(wMic-1)) + m.offsetX*2
	sy := int((1.0-zy)*float64(hMic-1)) + m.offsetY*4
	return sx, sy, true
}

// screenXY maps source coordinates to screen cells considering zoom
// and pan.
func (m Model) screenXY(lon, lat float64, w, h int) (int, int, bool) {
	_, ext := m.viewData()
	if ext.Empty() || ext.Width() <= 0 || ext.Height() <= 0 {
		return 0, 0, false
	}
	nx := (lon - ext.MinX) / ext.Width()
	ny := (lat - ext.MinY) / ext.Height()
	// Apply zoom around center (0.5, 0.5)
	zx := 0.5 + (nx-0.5)*m.zoom
	zy := 0.5 + (ny-0.5)*m.zoom
	sx := int(zx*float64(w-1)) + m.offsetX
	sy := int((1.0-zy)*float64(h-1)) + m.offsetY
	return sx, sy, true
}

// inspectNearest finds the vertex closest to the viewport center.
func (m Model) inspectNearest() (lon, lat float64, ok bool) {
	w, h := m.mapW, m.mapH
	if w <= 0 {
		w = 80
	}
	if h <= 0 {
		h = 24
	}
	cx, cy := w/2, h/2
	bestD := 1<<31 - 1
	var best [2]float64
	layers, _ := m.viewData()
	for _, l := range layers {
		if l == nil {
			continue
		}
		for _, f := range l.Features {
			if f == nil {
				continue
			}
			geo.EachPosition(f.Geometry, func(pos []float64) {
				if len(pos) < 2 {
					return
				}
				sx, sy, ok2 := m.screenXY(pos[0], pos[1], w, h)
				if !ok2 {
					return
				}
				dx := sx - cx
				dy := sy - cy
				if d := dx*dx + dy*dy; d < bestD {
					bestD = d
					best = [2]float64{pos[0], pos[1]}
				}
			})
		}
	}
	if bestD == 1<<31-1 {
		return 0, 0, false
	}
	return best[0], best[1], true
}
