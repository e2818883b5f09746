package layer

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	geojson "github.com/paulmach/go.geojson"
)

type kmlPlacemark struct {
	Name  string `xml:"name"`
	Point *struct {
		Coordinates string `xml:"coordinates"`
	} `xml:"Point"`
}

// LoadKML extracts Placemark > Point coordinates from a KML file.
// Placemarks are picked up at any nesting depth, so Document and
// Folder wrappers do not matter. KML tuples are "lon,lat[,alt]";
// altitude, when present, is kept as Z. The placemark name, when
// present, becomes a "name" property.
func LoadKML(path string) (*Layer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	l := New(name)

	dec := xml.NewDecoder(f)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "Placemark" {
			continue
		}
		var pm kmlPlacemark
		if err := dec.DecodeElement(&pm, &start); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		if pm.Point == nil {
			continue
		}
		// coordinates may contain multiple tuples separated by spaces
		for _, tuple := range strings.Fields(pm.Point.Coordinates) {
			vals := strings.Split(tuple, ",")
			if len(vals) < 2 {
				continue
			}
			lon, err1 := strconv.ParseFloat(strings.TrimSpace(vals[0]), 64)
			lat, err2 := strconv.ParseFloat(strings.TrimSpace(vals[1]), 64)
			if err1 != nil || err2 != nil {
				continue
			}
			pos := []float64{lon, lat}
			if len(vals) >= 3 {
				if alt, err := strconv.ParseFloat(strings.TrimSpace(vals[2]), 64); err == nil {
					pos = append(pos, alt)
				}
			}
			ft := geojson.NewPointFeature(pos)
			if pm.Name != "" {
				ft.SetProperty("name", pm.Name)
			}
			l.AddFeature(ft)
		}
	}
	if len(l.Features) == 0 {
		return nil, errors.New("kml: no points found")
	}
	return l, nil
}
