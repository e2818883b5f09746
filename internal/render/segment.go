package render

import (
	"math"
	"strconv"

	"mapsheet/internal/geo"
)

// Segment is one output sheet: a capture window in canvas coordinates
// plus the pixel size of the image it renders to. IDs follow
// spreadsheet order: row letters top to bottom, column numbers left to
// right, so a 2x3 grid yields A0 A1 A2 B0 B1 B2.
type Segment struct {
	ID       string
	Row, Col int

	// Window is the canvas region captured by this sheet, overlap
	// included. AnchorX/AnchorY is the canvas point that lands on the
	// image at (border, border); the overlap strip extends past the
	// anchor into the margin.
	Window           geo.Envelope
	AnchorX, AnchorY float64

	// Width and Height are the output image size in pixels.
	Width, Height int
}

// Segments returns the sheets of the current layout in save order.
// Before any layout pass there are no sheets. Single-page layouts and
// crops yield exactly one.
func (r *Renderer) Segments() []Segment {
	if r.pageW <= 0 || r.pageH <= 0 {
		return nil
	}
	outW, outH := r.pageW, r.pageH
	if r.pageRotated {
		outW, outH = outH, outW
	}

	if !r.multiPage {
		w, h := r.canvasW, r.canvasH
		if r.cropped {
			w, h = float64(outW), float64(outH)
		}
		return []Segment{{
			ID:      "A0",
			Window:  geo.NewEnvelope(r.originX, r.originY, r.originX+w, r.originY+h),
			AnchorX: r.originX,
			AnchorY: r.originY + h,
			Width:   outW,
			Height:  outH,
		}}
	}

	// Sheet pitch is the drawable area; the overlap strip repeats the
	// neighbor already printed and is drawn into the margin.
	pitchW := float64(outW - 2*r.border)
	pitchH := float64(outH - 2*r.border)
	cols := int(math.Ceil(r.canvasW / pitchW))
	rows := int(math.Ceil(r.canvasH / pitchH))
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}

	ov := float64(r.overlap)
	segs := make([]Segment, 0, rows*cols)
	for row := 0; row < rows; row++ {
		// Row 0 is the top strip of the canvas.
		yTop := r.canvasH - float64(row)*pitchH
		yBot := math.Max(0, yTop-pitchH)
		capTop := math.Min(r.canvasH, yTop+ov)
		for col := 0; col < cols; col++ {
			x0 := float64(col) * pitchW
			x1 := math.Min(r.canvasW, x0+pitchW)
			capLeft := math.Max(0, x0-ov)
			segs = append(segs, Segment{
				ID:      rowLabel(row) + strconv.Itoa(col),
				Row:     row,
				Col:     col,
				Window:  geo.NewEnvelope(capLeft, yBot, x1, capTop),
				AnchorX: x0,
				AnchorY: yTop,
				Width:   outW,
				Height:  outH,
			})
		}
	}
	return segs
}

// rowLabel converts a 0-based row index to spreadsheet letters:
// 0..25 map to A..Z, 26 to AA and so on.
func rowLabel(row int) string {
	s := ""
	for row >= 0 {
		s = string(rune('A'+row%26)) + s
		row = row/26 - 1
	}
	return s
}
