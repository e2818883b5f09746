package tui

import (
	"encoding/json"
	"fmt"
	"sort"

	table "github.com/charmbracelet/bubbles/table"
)

// refreshAttrsFromCurrent rebuilds the table columns/rows from the
// loaded layers' feature properties.
func (m *Model) refreshAttrsFromCurrent() {
	cols, rows := m.buildAttributes()
	// If there are no columns or rows, disable attributes view to avoid rendering panics
	if len(cols) == 0 || len(rows) == 0 {
		m.showAttrs = false
		m.status = "no attributes for current dataset"
		return
	}
	// map to bubbles table columns/rows
	tcols := make([]table.Column, 0, len(cols)+1)
	tcols = append(tcols, table.Column{Title: "#", Width: 4})
	maxColW := 24
	for _, c := range cols {
		w := len(c) + 2
		if w > maxColW {
			w = maxColW
		}
		tcols = append(tcols, table.Column{Title: c, Width: w})
	}
	trows := make([]table.Row, 0, len(rows))
	for i, r := range rows {
		row := make([]string, 0, len(r)+1)
		row = append(row, fmt.Sprintf("%d", i+1))
		row = append(row, r...)
		trows = append(trows, table.Row(row))
	}
	// Normalize each row to match the number of table columns
	colCount := len(tcols)
	for i := range trows {
		cells := []string(trows[i])
		if len(cells) < colCount {
			pad := make([]string, colCount-len(cells))
			cells = append(cells, pad...)
		} else if len(cells) > colCount {
			cells = cells[:colCount]
		}
		trows[i] = table.Row(cells)
	}
	// Avoid transient mismatch: clear rows, set columns, then set rows
	m.tbl.SetRows(nil)
	m.tbl.SetColumns(tcols)
	m.tbl.SetRows(trows)
}

// buildAttributes unions property keys across all features, in sorted
// first-seen order, and formats one row per feature. Features come
// from whatever loaded the layer, so CSV columns and KML placemark
// names show up the same way GeoJSON properties do.
func (m *Model) buildAttributes() ([]string, [][]string) {
	var order []string
	seen := map[string]bool{}
	var propsList []map[string]any
	for _, l := range m.layers {
		if l == nil {
			continue
		}
		for _, f := range l.Features {
			if f == nil {
				continue
			}
			pm := f.Properties
			if pm == nil {
				pm = map[string]any{}
			}
			propsList = append(propsList, pm)
			keys := make([]string, 0, len(pm))
			for k := range pm {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				if !seen[k] {
					seen[k] = true
					order = append(order, k)
				}
			}
		}
	}
	if len(order) == 0 {
		return nil, nil
	}
	rows := make([][]string, 0, len(propsList))
	for _, pm := range propsList {
		vals := make([]string, 0, len(order))
		for _, k := range order {
			vals = append(vals, formatAttr(pm[k]))
		}
		rows = append(rows, vals)
	}
	return order, rows
}

func formatAttr(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return fmt.Sprintf("%g", t)
	case bool:
		if t {
			return "true"
		}
		return "false"
	default:
		bs, _ := json.Marshal(t)
		return string(bs)
	}
}
