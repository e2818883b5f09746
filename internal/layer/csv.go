package layer

import (
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	geojson "github.com/paulmach/go.geojson"
)

// LoadCSV reads a CSV with latitude/longitude columns into a layer of
// point features. Column detection is case-insensitive: lat|latitude|y
// and lon|lng|long|longitude|x. Every other column becomes a string
// property on the feature. Rows without a parseable coordinate pair
// are skipped.
func LoadCSV(path string) (*Layer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true
	recs, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, errors.New("empty csv")
	}

	header := recs[0]
	idxLat, idxLon := -1, -1
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "lat", "latitude", "y":
			if idxLat == -1 {
				idxLat = i
			}
		case "lon", "lng", "long", "longitude", "x":
			if idxLon == -1 {
				idxLon = i
			}
		}
	}
	if idxLat == -1 || idxLon == -1 {
		return nil, errors.New("csv: latitude/longitude columns not found")
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	l := New(name)
	for _, row := range recs[1:] {
		if idxLon >= len(row) || idxLat >= len(row) {
			continue
		}
		lon, err1 := strconv.ParseFloat(strings.TrimSpace(row[idxLon]), 64)
		lat, err2 := strconv.ParseFloat(strings.TrimSpace(row[idxLat]), 64)
		if err1 != nil || err2 != nil {
			continue
		}
		ft := geojson.NewPointFeature([]float64{lon, lat})
		for i, val := range row {
			if i == idxLat || i == idxLon || i >= len(header) {
				continue
			}
			ft.SetProperty(header[i], val)
		}
		l.AddFeature(ft)
	}
	if len(l.Features) == 0 {
		return nil, errors.New("csv: no valid points parsed")
	}
	return l, nil
}
