package layer

import (
	"testing"

	geojson "github.com/paulmach/go.geojson"

	"mapsheet/internal/geo"
)

func TestExtentsUnion(t *testing.T) {
	a := New("a")
	a.AddFeature(geojson.NewPointFeature([]float64{0, 0}))
	a.AddFeature(geojson.NewPointFeature([]float64{5, 5}))
	b := New("b")
	b.AddFeature(geojson.NewPointFeature([]float64{-3, 2}))

	got := Extents([]*Layer{a, b})
	want := geo.NewEnvelope(-3, 0, 5, 5)
	if got != want {
		t.Errorf("Extents = %v, want %v", got, want)
	}
}

func TestExtentsSkipsNilGeometry(t *testing.T) {
	l := New("sparse")
	l.AddFeature(&geojson.Feature{Type: "Feature"})
	l.AddFeature(geojson.NewPointFeature([]float64{1, 2}))
	got := Extents([]*Layer{l})
	want := geo.NewEnvelope(1, 2, 1, 2)
	if got != want {
		t.Errorf("Extents = %v, want %v", got, want)
	}
}

func TestAddFeatureDropsNil(t *testing.T) {
	l := New("x")
	l.AddFeature(nil)
	if len(l.Features) != 0 {
		t.Errorf("nil feature stored, len = %d", len(l.Features))
	}
}

func TestTransformPassesMutateInPlace(t *testing.T) {
	l := New("t")
	l.AddFeature(geojson.NewPointFeature([]float64{2, 3}))
	l.RotateScale(10, 0)
	if p := l.Features[0].Geometry.Point; p[0] != 20 || p[1] != 30 {
		t.Errorf("after scale: %v, want [20 30]", p)
	}
	l.Translate(geo.NewEnvelope(20, 30, 99, 99))
	if p := l.Features[0].Geometry.Point; p[0] != 0 || p[1] != 0 {
		t.Errorf("after translate: %v, want [0 0]", p)
	}
}

func TestTransformDropsFeatureBBox(t *testing.T) {
	l := New("t")
	f := geojson.NewPointFeature([]float64{1, 1})
	f.BoundingBox = []float64{1, 1, 1, 1}
	l.AddFeature(f)
	l.RotateScale(2, 0)
	if f.BoundingBox != nil {
		t.Error("transform pass should drop the stale feature bbox")
	}
}

func TestCloneIsDeep(t *testing.T) {
	l := New("orig")
	l.Properties["level"] = []any{1.0, 2.0}
	f := geojson.NewLineStringFeature([][]float64{{0, 0}, {4, 4}})
	f.SetProperty("tags", map[string]any{"kind": "wall"})
	l.AddFeature(f)

	c := l.Clone()
	c.Features[0].Geometry.LineString[0][0] = 99
	c.Features[0].Properties["tags"].(map[string]any)["kind"] = "door"
	c.Properties["level"].([]any)[0] = 9.0

	if l.Features[0].Geometry.LineString[0][0] != 0 {
		t.Error("clone shares coordinate storage with the original")
	}
	if l.Features[0].Properties["tags"].(map[string]any)["kind"] != "wall" {
		t.Error("clone shares feature properties with the original")
	}
	if l.Properties["level"].([]any)[0] != 1.0 {
		t.Error("clone shares layer properties with the original")
	}
}

func TestCloneKeepsNilFeatureSlots(t *testing.T) {
	l := &Layer{Name: "holes", Features: []*geojson.Feature{nil}}
	c := l.Clone()
	if len(c.Features) != 1 || c.Features[0] != nil {
		t.Errorf("clone reshaped the feature slice: %v", c.Features)
	}
}

func TestFromGeometry(t *testing.T) {
	l := FromGeometry("g", geojson.NewPointGeometry([]float64{1, 1}))
	if len(l.Features) != 1 {
		t.Fatalf("feature count = %d, want 1", len(l.Features))
	}
	if FromGeometry("empty", nil).Features != nil {
		t.Error("nil geometry should produce an empty layer")
	}
}
