package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	list "github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"mapsheet/internal/geo"
	"mapsheet/internal/layer"
	"mapsheet/internal/render"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.showSidebar {
			m.l.SetSize(28-2, m.height-1-2) // provisional; will be refined in View
		}
	case tea.KeyMsg:
		// If list is visible and filtering, send keys to list and ignore global commands
		if m.showSidebar && m.l.FilterState() == list.Filtering {
			var cmd tea.Cmd
			m.l, cmd = m.l.Update(msg)
			return m, cmd
		}
		if m.pasteMode {
			switch msg.String() {
			case "esc":
				m.pasteMode = false
				m.ta.Blur()
				return m, nil
			case "enter":
				raw := strings.TrimSpace(m.ta.Value())
				if raw == "" {
					m.status = "paste: empty"
					return m, nil
				}
				l, err := decodePasted(raw)
				if err != nil {
					m.status = "paste error: " + err.Error()
					return m, nil
				}
				m.selPath = ""
				m.setLayers([]*layer.Layer{l})
				pts, lines, polys := countKinds(m.layers)
				m.status = fmt.Sprintf("rendered paste  counts: pts=%d ls=%d poly=%d", pts, lines, polys)
				m.pasteMode = false
				m.ta.Blur()
				return m, nil
			}
			var cmd tea.Cmd
			m.ta, cmd = m.ta.Update(msg)
			return m, cmd
		}
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "1":
			m.showPoints = !m.showPoints
			m.status = fmt.Sprintf("points: %v", m.showPoints)
		case "2":
			m.showLines = !m.showLines
			m.status = fmt.Sprintf("lines: %v", m.showLines)
		case "3":
			m.showPolys = !m.showPolys
			m.status = fmt.Sprintf("polys: %v", m.showPolys)
		case "+", "=":
			if m.zoom < 64 {
				m.zoom *= 1.2
				m.status = fmt.Sprintf("zoom: %.2fx", m.zoom)
			}
		case "-", "_":
			if m.zoom > 0.05 {
				m.zoom /= 1.2
				m.status = fmt.Sprintf("zoom: %.2fx", m.zoom)
			}
		case "tab":
			m.showSidebar = !m.showSidebar
			if m.showSidebar {
				m.refreshDir()
				m.l.SetSize(28-2, m.height-1-2)
			}
		case "p":
			m.pasteMode = !m.pasteMode
			if m.pasteMode {
				m.ta.SetValue("")
				m.status = "paste mode"
				m.ta.Focus()
			} else {
				m.status = "view mode"
				m.ta.Blur()
			}
		case "s":
			m.togglePreview()
		case "h":
			m.helpVisible = !m.helpVisible
		case "a":
			m.showAttrs = !m.showAttrs
			if m.showAttrs {
				m.refreshAttrsFromCurrent()
			}
		case "i":
			lon, lat, ok := m.inspectNearest()
			if ok {
				name := filepath.Base(m.selPath)
				if name == "" || name == "." {
					name = "<unsaved>"
				}
				pts, lines, polys := countKinds(m.layers)
				meta := []string{
					fmt.Sprintf("name: %s", name),
					fmt.Sprintf("path: %s", m.selPath),
					fmt.Sprintf("extent: %s", m.extent.String()),
					fmt.Sprintf("counts: pts=%d ls=%d poly=%d", pts, lines, polys),
					fmt.Sprintf("nearest: lon=%.6f lat=%.6f", lon, lat),
				}
				m.inspectPopup = strings.Join(meta, "\n")
				m.status = "inspect popup"
			} else {
				m.inspectPopup = "no feature nearby"
				m.status = m.inspectPopup
			}
		case "l":
			// toggle all kinds
			all := m.showPoints && m.showLines && m.showPolys
			m.showPoints = !all
			m.showLines = !all
			m.showPolys = !all
			m.status = fmt.Sprintf("layers: pts=%v ls=%v poly=%v", m.showPoints, m.showLines, m.showPolys)
		case "enter":
			if m.showSidebar {
				if it, ok := m.l.SelectedItem().(fileItem); ok {
					m.loadPath(it.path)
				}
			}
		case "up":
			m.offsetY -= 1
		case "down":
			m.offsetY += 1
		case "left":
			m.offsetX -= 2
		case "right":
			m.offsetX += 2
		}
	case tea.MouseMsg:
		// track hover over map area
		// compute map origin and size (must match View layout)
		sidebarWidth := 0
		if m.showSidebar {
			sidebarWidth = 28
		}
		headerHeight := 1
		footerHeight := 2
		contentHeight := m.height - headerHeight - footerHeight
		if contentHeight < 4 {
			contentHeight = 4
		}
		contentWidth := max(10, m.width)

		// Update list size with accurate content height when sidebar visible
		if m.showSidebar {
			m.l.SetSize(28-2, contentHeight-2)
		}

		mapWidth := contentWidth - sidebarWidth - 1
		if mapWidth < 10 {
			mapWidth = 10
		}
		mapHeight := contentHeight
		mapOriginX := sidebarWidth + func() int {
			if m.showSidebar {
				return 1
			}
			return 0
		}()
		mapOriginY := headerHeight
		// mouse cell within map?
		cx, cy := msg.X, msg.Y
		if cx >= mapOriginX && cx < mapOriginX+mapWidth && cy >= mapOriginY && cy < mapOriginY+mapHeight {
			m.hovering = true
			m.hoverCellX = cx - mapOriginX
			m.hoverCellY = cy - mapOriginY
			// compute lon/lat for footer
			if lon, lat, ok := m.cellToLonLat(m.hoverCellX, m.hoverCellY, mapWidth, mapHeight); ok {
				m.hoverHasGeo = true
				m.hoverLon = lon
				m.hoverLat = lat
			} else {
				m.hoverHasGeo = false
			}
			// snap to the nearest vertex of anything drawn, in micro coords
			hxMic := m.hoverCellX * 2
			hyMic := m.hoverCellY * 4
			best := 1<<31 - 1
			bx, by := hxMic, hyMic
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
						mx, my, ok := m.screenXYMicro(pos[0], pos[1], mapWidth, mapHeight)
						if !ok {
							return
						}
						dx := mx - hxMic
						dy := my - hyMic
						if d := dx*dx + dy*dy; d < best {
							best = d
							bx, by = mx, my
						}
					})
				}
			}
			m.hoverMicX, m.hoverMicY = bx, by
		} else {
			m.hovering = false
		}
	}
	// Pass messages to list when visible
	if m.showSidebar {
		var cmd tea.Cmd
		m.l, cmd = m.l.Update(msg)
		return m, cmd
	}
	return m, nil
}

// decodePasted turns clipboard text into a layer: anything starting
// with a brace is treated as GeoJSON, the rest as WKT.
func decodePasted(raw string) (*layer.Layer, error) {
	if strings.HasPrefix(raw, "{") {
		return layer.Decode("pasted", []byte(raw))
	}
	g, err := layer.ParseWKT(raw)
	if err != nil {
		return nil, err
	}
	return layer.FromGeometry("pasted", g), nil
}

// togglePreview flips sheet layout preview on or off. The layout runs
// on clones so the loaded dataset keeps its source coordinates.
func (m *Model) togglePreview() {
	if m.preview != nil {
		m.preview = nil
		m.status = "sheet preview off"
		return
	}
	if len(m.layers) == 0 {
		m.status = "no content to lay out"
		return
	}
	clones := make([]*layer.Layer, len(m.layers))
	for i, l := range m.layers {
		clones[i] = l.Clone()
	}
	r := render.New(render.WithLayers(clones...))
	var err error
	if m.cfg.MaxScale > 0 {
		err = r.Paginate(m.cfg.PageWidth, m.cfg.PageHeight,
			m.cfg.MaxScale, m.cfg.MinScale, m.cfg.Border, m.cfg.Overlap)
	} else {
		err = r.FitToPage(m.cfg.PageWidth, m.cfg.PageHeight, m.cfg.Border)
	}
	if err != nil {
		m.status = "layout error: " + err.Error()
		return
	}
	segs := r.Segments()
	var ext geo.Envelope
	for _, seg := range segs {
		ext = ext.Union(seg.Window)
	}
	m.preview = &sheetPreview{
		layers:  clones,
		extent:  ext,
		segs:    segs,
		scale:   r.Scale(),
		rotated: r.PageRotated(),
	}
	m.zoom = 1.0
	m.offsetX, m.offsetY = 0, 0
	m.status = fmt.Sprintf("sheets: %d  scale: %.2f", len(segs), r.Scale())
}
