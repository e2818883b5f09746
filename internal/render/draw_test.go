package render

import (
	"bytes"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	geojson "github.com/paulmach/go.geojson"

	"mapsheet/internal/geo"
	"mapsheet/internal/layer"
)

func pixelLight(t *testing.T, img image.Image, x, y int) bool {
	t.Helper()
	r, g, b, _ := img.At(x, y).RGBA()
	return r > 0xc000 && g > 0xc000 && b > 0xc000
}

func pixelDark(t *testing.T, img image.Image, x, y int) bool {
	t.Helper()
	r, g, b, _ := img.At(x, y).RGBA()
	return r < 0x8000 && g < 0x8000 && b < 0x8000
}

func renderFirstPage(t *testing.T, r *Renderer) image.Image {
	t.Helper()
	segs := r.Segments()
	if len(segs) == 0 {
		t.Fatal("no segments to render")
	}
	img, err := r.RenderPage(segs[0])
	if err != nil {
		t.Fatalf("RenderPage: %v", err)
	}
	return img
}

func TestRenderPageBackground(t *testing.T) {
	r := New()
	if err := r.FitToPage(20, 20, 0); err != nil {
		t.Fatalf("FitToPage: %v", err)
	}
	img := renderFirstPage(t, r)
	if b := img.Bounds(); b.Dx() != 20 || b.Dy() != 20 {
		t.Fatalf("image size = %dx%d, want 20x20", b.Dx(), b.Dy())
	}
	if !pixelLight(t, img, 10, 10) {
		t.Errorf("background pixel = %v, want white", img.At(10, 10))
	}

	r = New(WithBackground(color.RGBA{B: 255, A: 255}))
	if err := r.FitToPage(20, 20, 0); err != nil {
		t.Fatalf("FitToPage: %v", err)
	}
	img = renderFirstPage(t, r)
	cr, _, cb, _ := img.At(10, 10).RGBA()
	if cb < 0xc000 || cr > 0x4000 {
		t.Errorf("background pixel = %v, want blue", img.At(10, 10))
	}
}

func TestRenderPageStrokesLine(t *testing.T) {
	l := ringLayer("plan", 0, 0, 10, 10)
	l.AddFeature(geojson.NewLineStringFeature([][]float64{{1, 5}, {9, 5}}))
	r := New(
		WithLayers(l),
		WithStyle(Style{Stroke: StrokeStyle{Color: color.Black, Width: 4}}),
	)
	if err := r.FitToPage(100, 100, 0); err != nil {
		t.Fatalf("FitToPage: %v", err)
	}
	img := renderFirstPage(t, r)
	// Canvas y=50 lands on image row 50 after the flip.
	if !pixelDark(t, img, 50, 50) {
		t.Errorf("line pixel = %v, want stroked", img.At(50, 50))
	}
	if !pixelLight(t, img, 50, 30) {
		t.Errorf("off-line pixel = %v, want background", img.At(50, 30))
	}
}

func TestRenderPageDrawsPointMarker(t *testing.T) {
	l := ringLayer("plan", 0, 0, 10, 10)
	l.AddFeature(geojson.NewPointFeature([]float64{5, 5}))
	r := New(
		WithLayers(l),
		WithStyle(Style{Stroke: StrokeStyle{Color: color.Black, Width: 8}}),
	)
	if err := r.FitToPage(100, 100, 0); err != nil {
		t.Fatalf("FitToPage: %v", err)
	}
	img := renderFirstPage(t, r)
	if !pixelDark(t, img, 50, 50) {
		t.Errorf("marker pixel = %v, want drawn", img.At(50, 50))
	}
}

func TestRenderPagePolygonHole(t *testing.T) {
	l := layer.New("plan")
	l.AddFeature(geojson.NewPolygonFeature([][][]float64{
		{{0, 0}, {10, 0}, {10, 10}, {0, 10}, {0, 0}},
		{{4, 4}, {6, 4}, {6, 6}, {4, 6}, {4, 4}},
	}))
	r := New(
		WithLayers(l),
		WithStyle(Style{
			Stroke: StrokeStyle{Color: color.Black, Width: 1},
			Fill:   &FillStyle{Color: color.Black},
		}),
	)
	if err := r.FitToPage(100, 100, 0); err != nil {
		t.Fatalf("FitToPage: %v", err)
	}
	img := renderFirstPage(t, r)
	if !pixelDark(t, img, 20, 50) {
		t.Errorf("interior pixel = %v, want filled", img.At(20, 50))
	}
	if !pixelLight(t, img, 50, 50) {
		t.Errorf("hole pixel = %v, want background under even-odd", img.At(50, 50))
	}
}

func TestRenderPageLayerOrder(t *testing.T) {
	under := layer.New("under")
	under.AddFeature(geojson.NewPolygonFeature([][][]float64{
		{{0, 0}, {10, 0}, {10, 10}, {0, 10}, {0, 0}},
	}))
	over := layer.New("over")
	over.AddFeature(geojson.NewPolygonFeature([][][]float64{
		{{2, 2}, {8, 2}, {8, 8}, {2, 8}, {2, 2}},
	}))

	red := color.RGBA{R: 255, A: 255}
	r := New(
		WithLayers(under, over),
		WithStyle(Style{
			Stroke: StrokeStyle{Color: color.Black, Width: 1},
			Fill:   &FillStyle{Color: color.Black},
		}),
		WithStyleFunc(func(f *geojson.Feature, props map[string]any, def Style) (Style, bool) {
			if len(f.Geometry.Polygon[0]) > 0 && f.Geometry.Polygon[0][0][0] > 0 {
				// The inner square starts away from the origin.
				def.Fill = &FillStyle{Color: red}
				def.Stroke.Color = red
			}
			return def, true
		}),
	)
	if err := r.FitToPage(100, 100, 0); err != nil {
		t.Fatalf("FitToPage: %v", err)
	}
	img := renderFirstPage(t, r)
	cr, cg, _, _ := img.At(50, 50).RGBA()
	if cr < 0xc000 || cg > 0x4000 {
		t.Errorf("center pixel = %v, want the later layer's red on top", img.At(50, 50))
	}
	if !pixelDark(t, img, 10, 50) {
		t.Errorf("outer pixel = %v, want the base layer's black", img.At(10, 50))
	}
}

func TestStyleHookSelection(t *testing.T) {
	l := layer.New("floors")
	l.Properties["building"] = "annex"
	f1 := geojson.NewPolygonFeature([][][]float64{
		{{0, 0}, {10, 0}, {10, 10}, {0, 10}, {0, 0}},
	})
	f1.SetProperty("FLOOR", "1")
	f2 := geojson.NewPolygonFeature([][][]float64{
		{{2, 2}, {8, 2}, {8, 8}, {2, 8}, {2, 2}},
	})
	f2.SetProperty("FLOOR", "2")
	l.AddFeature(f1)
	l.AddFeature(f2)

	alt, def := 0, 0
	r := New(WithLayers(l), WithStyleFunc(
		func(f *geojson.Feature, props map[string]any, d Style) (Style, bool) {
			if props["building"] != "annex" {
				t.Errorf("layer properties = %v, want building=annex", props)
			}
			if floor, _ := f.PropertyString("FLOOR"); floor == "1" {
				alt++
				d.Stroke.Color = color.RGBA{R: 255, A: 255}
				return d, true
			}
			def++
			return d, true
		},
	))
	if err := r.FitToPage(100, 100, 0); err != nil {
		t.Fatalf("FitToPage: %v", err)
	}
	renderFirstPage(t, r)
	if alt != 1 || def != 1 {
		t.Errorf("hook selections = %d alternate, %d default; want 1 and 1", alt, def)
	}
}

func TestStyleHookCanSkipFeature(t *testing.T) {
	r := New(
		WithLayers(ringLayer("plan", 0, 0, 10, 10)),
		WithStyle(Style{
			Stroke: StrokeStyle{Color: color.Black, Width: 10},
			Fill:   &FillStyle{Color: color.Black},
		}),
		WithStyleFunc(func(f *geojson.Feature, props map[string]any, d Style) (Style, bool) {
			return d, false
		}),
	)
	if err := r.FitToPage(100, 100, 0); err != nil {
		t.Fatalf("FitToPage: %v", err)
	}
	img := renderFirstPage(t, r)
	if !pixelLight(t, img, 50, 50) || !pixelLight(t, img, 1, 50) {
		t.Error("skipped feature still drew pixels")
	}
}

func TestStyleHookPanicAbortsRender(t *testing.T) {
	r := New(
		WithLayers(ringLayer("plan", 0, 0, 10, 10)),
		WithStyleFunc(func(f *geojson.Feature, props map[string]any, d Style) (Style, bool) {
			panic("bad style hook")
		}),
	)
	if err := r.FitToPage(100, 100, 0); err != nil {
		t.Fatalf("FitToPage: %v", err)
	}
	segs := r.Segments()
	defer func() {
		if recover() == nil {
			t.Error("style hook panic should propagate")
		}
	}()
	_, _ = r.RenderPage(segs[0])
}

func TestFilterDropsFeature(t *testing.T) {
	l := ringLayer("plan", 0, 0, 10, 10)
	poi := geojson.NewPointFeature([]float64{5, 5})
	poi.SetProperty("kind", "poi")
	l.AddFeature(poi)

	r := New(
		WithLayers(l),
		WithStyle(Style{Stroke: StrokeStyle{Color: color.Black, Width: 8}}),
		WithFilter(func(f *geojson.Feature, props map[string]any) bool {
			kind, _ := f.PropertyString("kind")
			return kind != "poi"
		}),
	)
	if err := r.FitToPage(100, 100, 0); err != nil {
		t.Fatalf("FitToPage: %v", err)
	}
	img := renderFirstPage(t, r)
	if !pixelLight(t, img, 50, 50) {
		t.Errorf("filtered point still drawn: %v", img.At(50, 50))
	}
}

func TestFilterPanicKeepsFeature(t *testing.T) {
	l := ringLayer("plan", 0, 0, 10, 10)
	l.AddFeature(geojson.NewPointFeature([]float64{5, 5}))

	r := New(
		WithLayers(l),
		WithStyle(Style{Stroke: StrokeStyle{Color: color.Black, Width: 8}}),
		WithFilter(func(f *geojson.Feature, props map[string]any) bool {
			panic("broken predicate")
		}),
	)
	if err := r.FitToPage(100, 100, 0); err != nil {
		t.Fatalf("FitToPage: %v", err)
	}
	img := renderFirstPage(t, r)
	if !pixelDark(t, img, 50, 50) {
		t.Errorf("panicking filter should keep the feature, pixel = %v", img.At(50, 50))
	}
}

func TestRenderPageInvalidSegment(t *testing.T) {
	if _, err := New().RenderPage(Segment{ID: "A0"}); err == nil {
		t.Error("zero-sized segment accepted")
	}
}

func TestEncodePage(t *testing.T) {
	r := New(WithLayers(ringLayer("plan", 0, 0, 10, 10)))
	if err := r.FitToPage(50, 50, 0); err != nil {
		t.Fatalf("FitToPage: %v", err)
	}
	var buf bytes.Buffer
	if err := r.EncodePage(r.Segments()[0], &buf); err != nil {
		t.Fatalf("EncodePage: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")) {
		t.Errorf("output does not look like a png: % x", buf.Bytes()[:8])
	}
}

func TestSavePages(t *testing.T) {
	dir := t.TempDir()
	r := New(WithLayers(ringLayer("plan", 0, 0, 10, 10)))
	if err := r.Paginate(100, 100, 35, 0, 0, 0); err != nil {
		t.Fatalf("Paginate: %v", err)
	}
	paths, err := r.SavePages(filepath.Join(dir, "plan-%s.png"))
	if err != nil {
		t.Fatalf("SavePages: %v", err)
	}
	if len(paths) != 16 {
		t.Fatalf("pages written = %d, want 16", len(paths))
	}
	for _, p := range paths[:2] {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("missing output file: %v", err)
		}
	}
	if filepath.Base(paths[0]) != "plan-A0.png" {
		t.Errorf("first page = %s, want plan-A0.png", paths[0])
	}
}

func TestSavePagesValidation(t *testing.T) {
	dir := t.TempDir()
	r := New(WithLayers(ringLayer("plan", 0, 0, 10, 10)))
	if err := r.FitToPage(50, 50, 0); err != nil {
		t.Fatalf("FitToPage: %v", err)
	}
	if _, err := r.SavePages(filepath.Join(dir, "no-placeholder.png")); err == nil {
		t.Error("pattern missing the page placeholder accepted")
	}
	if _, err := r.SavePages(filepath.Join(dir, "missing", "x-%s.png")); err == nil {
		t.Error("missing output directory accepted")
	}
	if _, err := New().SavePages(filepath.Join(dir, "y-%s.png")); err == nil {
		t.Error("saving before any layout accepted")
	}
}

func TestCropRenderClipsOutside(t *testing.T) {
	// A crop of the ring's lower-left quarter: the ring edges along
	// x=0 and y=0 stay visible, the far edges fall outside.
	l := ringLayer("plan", 0, 0, 10, 10)
	r := New(
		WithLayers(l),
		WithStyle(Style{Stroke: StrokeStyle{Color: color.Black, Width: 4}}),
	)
	if err := r.CropFeatures(geo.NewEnvelope(0, 0, 5, 5), 100, 100); err != nil {
		t.Fatalf("CropFeatures: %v", err)
	}
	img := renderFirstPage(t, r)
	// Left ring edge at canvas x=0 maps to image column 0; row 50 sits
	// mid-viewport.
	if !pixelDark(t, img, 1, 50) {
		t.Errorf("left edge pixel = %v, want stroked", img.At(1, 50))
	}
	if !pixelLight(t, img, 50, 50) {
		t.Errorf("viewport interior = %v, want background", img.At(50, 50))
	}
}
