package tui

import (
	"os"

	list "github.com/charmbracelet/bubbles/list"
	table "github.com/charmbracelet/bubbles/table"
	textarea "github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	geojson "github.com/paulmach/go.geojson"

	"mapsheet/internal/config"
	"mapsheet/internal/geo"
	"mapsheet/internal/layer"
	"mapsheet/internal/render"
)

// sheetPreview holds a page layout computed over cloned layers. The
// clones live in canvas coordinates, so content and sheet windows
// share one space and the viewer can pan across both.
type sheetPreview struct {
	layers  []*layer.Layer
	extent  geo.Envelope
	segs    []render.Segment
	scale   float64
	rotated bool
}

type Model struct {
	width  int
	height int

	showSidebar bool
	helpVisible bool

	zoom    float64
	offsetX int
	offsetY int

	status string

	cfg *config.Config

	// File explorer
	cwd     string
	l       list.Model
	items   []list.Item
	selPath string

	// Data
	layers []*layer.Layer
	extent geo.Envelope

	// last rendered map size (for inspect)
	mapW int
	mapH int

	// paste mode
	pasteMode bool
	ta        textarea.Model

	// geometry kind visibility
	showPoints bool
	showLines  bool
	showPolys  bool

	// sheet layout preview
	preview *sheetPreview

	// inspect popup
	inspectPopup string

	// hover state
	hovering    bool
	hoverCellX  int
	hoverCellY  int
	hoverMicX   int
	hoverMicY   int
	hoverHasGeo bool
	hoverLon    float64
	hoverLat    float64

	// attributes table
	showAttrs bool
	tbl       table.Model
}

func New() Model {
	m := Model{
		showSidebar: false,
		helpVisible: true,
		zoom:        1.0,
		status:      "mapsheet ready",
		showPoints:  true,
		showLines:   true,
		showPolys:   true,
		cfg:         config.LoadConfig(),
	}
	m.cwd, _ = os.Getwd()
	// list setup
	d := list.NewDefaultDelegate()
	d.ShowDescription = false
	m.l = list.New(nil, d, 0, 0)
	m.l.Title = "Files"
	m.l.SetShowHelp(false)
	m.l.SetShowStatusBar(false)
	m.l.SetFilteringEnabled(true)
	// textarea setup
	m.ta = textarea.New()
	m.ta.Placeholder = "Paste GeoJSON or WKT here. Press Enter to render; Esc to cancel."
	m.ta.CharLimit = 0
	m.ta.SetWidth(50)
	m.ta.SetHeight(6)
	// attributes table setup (columns will be inferred per dataset)
	m.tbl = table.New(table.WithFocused(true))
	m.tbl.SetHeight(12)
	m.refreshDir()
	return m
}

// NewWithPath preloads a file's data at launch.
func NewWithPath(path string) Model {
	m := New()
	m.loadPath(path)
	return m
}

func (m Model) Init() tea.Cmd { return nil }

// viewData returns the layers and extent currently on screen: the
// canvas-space preview when sheet mode is on, the loaded data
// otherwise.
func (m Model) viewData() ([]*layer.Layer, geo.Envelope) {
	if m.preview != nil {
		return m.preview.layers, m.preview.extent
	}
	return m.layers, m.extent
}

// setLayers installs a freshly loaded dataset and resets everything
// derived from the previous one.
func (m *Model) setLayers(layers []*layer.Layer) {
	m.layers = layers
	m.extent = layer.Extents(layers)
	m.preview = nil
	m.zoom = 1.0
	m.offsetX, m.offsetY = 0, 0
	pts, lines, polys := countKinds(layers)
	// polygons dominate the view when present
	m.showPolys = polys > 0
	m.showLines = lines > 0 && !m.showPolys
	m.showPoints = pts > 0 && !m.showPolys
}

// countKinds tallies drawable geometries per kind, descending into
// multi-variants and collections.
func countKinds(layers []*layer.Layer) (pts, lines, polys int) {
	var walk func(g *geojson.Geometry)
	walk = func(g *geojson.Geometry) {
		if g == nil {
			return
		}
		switch {
		case g.IsPoint():
			pts++
		case g.IsMultiPoint():
			pts += len(g.MultiPoint)
		case g.IsLineString():
			lines++
		case g.IsMultiLineString():
			lines += len(g.MultiLineString)
		case g.IsPolygon():
			polys++
		case g.IsMultiPolygon():
			polys += len(g.MultiPolygon)
		case g.IsCollection():
			for _, member := range g.Geometries {
				walk(member)
			}
		}
	}
	for _, l := range layers {
		if l == nil {
			continue
		}
		for _, f := range l.Features {
			if f != nil {
				walk(f.Geometry)
			}
		}
	}
	return pts, lines, polys
}
