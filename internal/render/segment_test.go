package render

import (
	"testing"

	"mapsheet/internal/geo"
)

func TestRowLabel(t *testing.T) {
	tests := []struct {
		row  int
		want string
	}{
		{0, "A"}, {1, "B"}, {25, "Z"}, {26, "AA"}, {27, "AB"}, {51, "AZ"}, {52, "BA"},
	}
	for _, tt := range tests {
		if got := rowLabel(tt.row); got != tt.want {
			t.Errorf("rowLabel(%d) = %q, want %q", tt.row, got, tt.want)
		}
	}
}

func TestSegmentsBeforeLayout(t *testing.T) {
	if segs := New().Segments(); segs != nil {
		t.Errorf("segments before any layout = %v, want none", segs)
	}
}

func TestSingleSegmentAfterFit(t *testing.T) {
	r := New(WithLayers(ringLayer("plan", 0, 0, 10, 10)))
	if err := r.FitToPage(120, 100, 10); err != nil {
		t.Fatalf("FitToPage: %v", err)
	}
	segs := r.Segments()
	if len(segs) != 1 {
		t.Fatalf("segment count = %d, want 1", len(segs))
	}
	seg := segs[0]
	if seg.ID != "A0" {
		t.Errorf("id = %q, want A0", seg.ID)
	}
	if seg.Width != 120 || seg.Height != 100 {
		t.Errorf("size = %dx%d, want full page 120x100", seg.Width, seg.Height)
	}
	want := geo.NewEnvelope(0, 0, 100, 80)
	if !approxEnv(seg.Window, want) {
		t.Errorf("window = %v, want %v", seg.Window, want)
	}
	if !approx(seg.AnchorX, 0) || !approx(seg.AnchorY, 80) {
		t.Errorf("anchor = (%g, %g), want (0, 80)", seg.AnchorX, seg.AnchorY)
	}
}

func TestSegmentGridPitchAndShrink(t *testing.T) {
	// White-box tiling: a 250x130 canvas on 100x100 sheets with a 10px
	// border tiles at a pitch of 80. Trailing sheets shrink to the
	// remainder.
	r := New()
	r.pageW, r.pageH = 100, 100
	r.border, r.overlap = 10, 5
	r.multiPage = true
	r.canvasW, r.canvasH = 250, 130

	segs := r.Segments()
	if len(segs) != 8 {
		t.Fatalf("segment count = %d, want 4x2 = 8", len(segs))
	}
	wantIDs := []string{"A0", "A1", "A2", "A3", "B0", "B1", "B2", "B3"}
	for i, id := range wantIDs {
		if segs[i].ID != id {
			t.Fatalf("ids = %v..., want %v", segs[i].ID, wantIDs)
		}
	}

	// Top-left sheet: full pitch, no leading overlap to expand into.
	a0 := segs[0]
	if !approxEnv(a0.Window, geo.NewEnvelope(0, 50, 80, 130)) {
		t.Errorf("A0 window = %v", a0.Window)
	}
	if !approx(a0.AnchorX, 0) || !approx(a0.AnchorY, 130) {
		t.Errorf("A0 anchor = (%g, %g), want (0, 130)", a0.AnchorX, a0.AnchorY)
	}

	// Interior sheet: leading edges expand by the overlap.
	b1 := segs[5]
	if !approxEnv(b1.Window, geo.NewEnvelope(75, 0, 160, 55)) {
		t.Errorf("B1 window = %v, want (75 0, 160 55)", b1.Window)
	}
	if !approx(b1.AnchorX, 80) || !approx(b1.AnchorY, 50) {
		t.Errorf("B1 anchor = (%g, %g), want (80, 50)", b1.AnchorX, b1.AnchorY)
	}

	// Trailing column shrinks to the 10px remainder, overlap clamped
	// to the canvas.
	a3 := segs[3]
	if !approxEnv(a3.Window, geo.NewEnvelope(235, 50, 250, 130)) {
		t.Errorf("A3 window = %v, want (235 50, 250 130)", a3.Window)
	}
}

func TestSegmentOverlapClampAtOrigin(t *testing.T) {
	r := New()
	r.pageW, r.pageH = 100, 100
	r.border, r.overlap = 0, 30
	r.multiPage = true
	r.canvasW, r.canvasH = 150, 150

	segs := r.Segments()
	if len(segs) != 4 {
		t.Fatalf("segment count = %d, want 4", len(segs))
	}
	// Leading expansion of the first column stops at 0.
	if segs[0].Window.MinX != 0 {
		t.Errorf("A0 left edge = %g, want clamp at 0", segs[0].Window.MinX)
	}
	// Second column expands left by the full overlap.
	if !approx(segs[1].Window.MinX, 70) {
		t.Errorf("A1 left edge = %g, want 70", segs[1].Window.MinX)
	}
	// Second row expands up by the full overlap, clamped at the top.
	if !approx(segs[2].Window.MaxY, 80) {
		t.Errorf("B0 top edge = %g, want 80", segs[2].Window.MaxY)
	}
	if !approx(segs[0].Window.MaxY, 150) {
		t.Errorf("A0 top edge = %g, want clamp at the canvas", segs[0].Window.MaxY)
	}
}
