package geo

import (
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"

	"github.com/sells-group/co2-dashboard/internal/model"
)

// ReadShapefile computes centroids from a polygon shapefile. The first part
// of each polygon plays the role of the GeoJSON first ring.
func ReadShapefile(path, nameField string) (model.Centroids, error) {
	reader, err := shp.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "geo: open shapefile %s", path)
	}
	defer func() { _ = reader.Close() }()

	nameIdx := fieldIndex(reader, nameField)
	if nameIdx < 0 {
		return nil, eris.Errorf("geo: shapefile field %q not found", nameField)
	}

	centroids := make(model.Centroids)
	var skipped int
	for reader.Next() {
		_, shape := reader.Shape()
		name := cleanAttr(reader.Attribute(nameIdx))
		if name == "" {
			skipped++
			continue
		}

		poly, ok := shape.(*shp.Polygon)
		if !ok {
			skipped++
			continue
		}
		ring := firstPart(poly)
		lat, lon, ok := RingCentroid(ring)
		if !ok {
			skipped++
			continue
		}
		centroids[name] = model.CountryCentroid{Country: name, Latitude: lat, Longitude: lon}
	}

	if skipped > 0 {
		zap.L().Debug("geo: skipped shapefile records", zap.Int("skipped", skipped))
	}
	return centroids, nil
}

// firstPart converts the first part of a shapefile polygon to a linear ring.
func firstPart(p *shp.Polygon) *geom.LinearRing {
	if p == nil || p.NumParts == 0 || len(p.Points) == 0 {
		return nil
	}

	end := int32(len(p.Points))
	if p.NumParts > 1 {
		end = p.Parts[1]
	}
	start := p.Parts[0]
	if start < 0 || end > int32(len(p.Points)) || start >= end {
		return nil
	}

	flat := make([]float64, 0, (end-start)*2)
	for _, pt := range p.Points[start:end] {
		flat = append(flat, pt.X, pt.Y)
	}
	return geom.NewLinearRingFlat(geom.XY, flat)
}

// fieldIndex returns the index of a named field in the shapefile, or -1 if not found.
func fieldIndex(reader *shp.Reader, name string) int {
	for i, f := range reader.Fields() {
		if strings.EqualFold(strings.TrimRight(f.String(), "\x00"), name) {
			return i
		}
	}
	return -1
}
