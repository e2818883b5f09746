package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	list "github.com/charmbracelet/bubbles/list"

	"mapsheet/internal/layer"
)

type fileItem struct {
	title, desc string
	path        string
}

func (f fileItem) Title() string       { return f.title }
func (f fileItem) Description() string { return f.desc }
func (f fileItem) FilterValue() string { return f.title }

func (m *Model) refreshDir() {
	entries, err := os.ReadDir(m.cwd)
	if err != nil {
		m.status = "read dir error: " + err.Error()
		return
	}
	var items []list.Item
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		ext := strings.ToLower(filepath.Ext(name))
		switch ext {
		case ".geojson", ".json", ".csv", ".kml", ".wkt":
			items = append(items, fileItem{title: name, desc: ext, path: filepath.Join(m.cwd, name)})
		}
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].(fileItem).Title() < items[j].(fileItem).Title() })
	m.items = items
	m.l.SetItems(items)
	if len(items) == 0 {
		m.status = "no supported files in current directory"
	}
}

// loadPath loads a supported file into the model.
func (m *Model) loadPath(p string) {
	l, err := layer.Load(p)
	if err != nil {
		m.status = "load error: " + err.Error()
		return
	}
	m.selPath = p
	m.setLayers([]*layer.Layer{l})
	pts, lines, polys := countKinds(m.layers)
	m.status = "loaded: " + filepath.Base(p) +
		fmt.Sprintf("  counts: pts=%d ls=%d poly=%d", pts, lines, polys)
	// If attributes are currently shown, verify availability for the new dataset
	if m.showAttrs {
		cols, rows := m.buildAttributes()
		if len(cols) == 0 || len(rows) == 0 {
			m.showAttrs = false
			m.status = "no attributes for current dataset"
		} else {
			m.refreshAttrsFromCurrent()
		}
	}
}
