package tui

// grid is a 2x4-per-cell monochrome raster that composites down to
// braille runes. Micro coordinates outside the grid are ignored, so
// callers can draw panned or zoomed geometry without clipping first.
type grid struct {
	w, h int       // in cells
	m    [][]uint8 // per-cell 8-bit mask
}

// brailleBits maps (row, column) within a cell to its dot bit. The
// braille block encodes the bottom row apart from the upper three.
var brailleBits = [4][2]uint8{
	{0x01, 0x08},
	{0x02, 0x10},
	{0x04, 0x20},
	{0x40, 0x80},
}

func newGrid(w, h int) *grid {
	m := make([][]uint8, h)
	for i := range m {
		m[i] = make([]uint8, w)
	}
	return &grid{w: w, h: h, m: m}
}

// setPixel sets a micro-pixel at micro coords (2x4 per cell)
func (b *grid) setPixel(mx, my int) {
	if mx < 0 || my < 0 {
		return
	}
	cx, rx := mx/2, mx%2
	cy, ry := my/4, my%4
	if cy >= b.h || cx >= b.w {
		return
	}
	b.m[cy][cx] |= brailleBits[ry][rx]
}

// drawLineMicro draws a line on the microgrid using Bresenham
func (b *grid) drawLineMicro(x0, y0, x1, y1 int) {
	dx := abs(x1 - x0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	dy := -abs(y1 - y0)
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx + dy
	for {
		b.setPixel(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// drawRect strokes an axis-aligned rectangle between two micro
// corners, in any order.
func (b *grid) drawRect(x0, y0, x1, y1 int) {
	if x0 > x1 {
		x0, x1 = x1, x0
	}
	if y0 > y1 {
		y0, y1 = y1, y0
	}
	b.drawLineMicro(x0, y0, x1, y0)
	b.drawLineMicro(x1, y0, x1, y1)
	b.drawLineMicro(x1, y1, x0, y1)
	b.drawLineMicro(x0, y1, x0, y0)
}

func (b *grid) toLines() []string {
	out := make([]string, b.h)
	for y := 0; y < b.h; y++ {
		row := make([]rune, b.w)
		for x := 0; x < b.w; x++ {
			mask := b.m[y][x]
			if mask == 0 {
				row[x] = ' '
			} else {
				row[x] = rune(0x2800 + int(mask))
			}
		}
		out[y] = string(row)
	}
	return out
}
