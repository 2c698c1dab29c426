package geo

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"

	"github.com/sells-group/co2-dashboard/internal/fetcher"
	"github.com/sells-group/co2-dashboard/internal/model"
)

// DefaultBoundariesURL is the world country boundary feature collection.
const DefaultBoundariesURL = "https://raw.githubusercontent.com/johan/world.geo.json/master/countries.geo.json"

const sourceName = "boundaries"

// Format identifies the encoding of a boundary dataset.
type Format string

const (
	FormatGeoJSON   Format = "geojson"
	FormatShapefile Format = "shapefile"
)

// Source describes where boundaries come from.
type Source struct {
	URL    string
	Format Format
	// NameField is the attribute holding the country name. Defaults to
	// "name" for GeoJSON and "NAME" for shapefiles.
	NameField string
	// TempDir receives downloaded shapefile archives.
	TempDir string
}

// LoadCentroids downloads the boundary dataset and computes one centroid per
// named feature. Any failure is returned as a *model.UnavailableError.
func LoadCentroids(ctx context.Context, dl fetcher.Downloader, src Source) (model.Centroids, error) {
	log := zap.L().With(zap.String("component", "geo.loader"))
	log.Info("downloading country boundaries",
		zap.String("url", src.URL),
		zap.String("format", string(src.Format)),
	)

	var (
		centroids model.Centroids
		err       error
	)
	switch src.Format {
	case FormatShapefile:
		centroids, err = loadShapefile(ctx, dl, src)
	case FormatGeoJSON, "":
		centroids, err = loadGeoJSON(ctx, dl, src)
	default:
		err = eris.Errorf("geo: unsupported boundary format %q", src.Format)
	}
	if err != nil {
		return nil, model.NewUnavailableError(sourceName, err)
	}

	log.Info("country centroids computed", zap.Int("countries", len(centroids)))
	return centroids, nil
}

func loadGeoJSON(ctx context.Context, dl fetcher.Downloader, src Source) (model.Centroids, error) {
	body, err := dl.Download(ctx, src.URL)
	if err != nil {
		return nil, eris.Wrap(err, "geo: download boundaries")
	}
	defer body.Close() //nolint:errcheck

	nameField := src.NameField
	if nameField == "" {
		nameField = "name"
	}
	return ParseGeoJSON(body, nameField)
}

// ParseGeoJSON decodes a FeatureCollection and computes centroids keyed by
// the feature's nameField property. Features without a name or without a
// Polygon/MultiPolygon geometry are skipped.
func ParseGeoJSON(r io.Reader, nameField string) (model.Centroids, error) {
	fc, err := fetcher.DecodeJSONObject[geojson.FeatureCollection](r)
	if err != nil {
		return nil, eris.Wrap(err, "geo: decode feature collection")
	}

	centroids := make(model.Centroids, len(fc.Features))
	var skipped int
	for i, f := range fc.Features {
		if f == nil {
			skipped++
			continue
		}
		name, _ := f.Properties[nameField].(string)
		if name == "" {
			zap.L().Debug("geo: skipping unnamed feature", zap.Int("index", i))
			skipped++
			continue
		}
		lat, lon, ok := Centroid(f.Geometry)
		if !ok {
			zap.L().Debug("geo: skipping feature without polygon ring", zap.String("name", name))
			skipped++
			continue
		}
		centroids[name] = model.CountryCentroid{Country: name, Latitude: lat, Longitude: lon}
	}

	if skipped > 0 {
		zap.L().Debug("geo: skipped boundary features", zap.Int("skipped", skipped))
	}
	return centroids, nil
}

func loadShapefile(ctx context.Context, dl fetcher.Downloader, src Source) (model.Centroids, error) {
	tempDir := src.TempDir
	if tempDir == "" {
		tempDir = os.TempDir()
	}
	workDir, err := os.MkdirTemp(tempDir, "boundaries-")
	if err != nil {
		return nil, eris.Wrap(err, "geo: create work dir")
	}
	defer os.RemoveAll(workDir) //nolint:errcheck

	zipPath := filepath.Join(workDir, "boundaries.zip")
	if _, err := dl.DownloadToFile(ctx, src.URL, zipPath); err != nil {
		return nil, eris.Wrap(err, "geo: download shapefile archive")
	}

	extracted, err := fetcher.ExtractZIP(zipPath, filepath.Join(workDir, "shp"))
	if err != nil {
		return nil, eris.Wrap(err, "geo: extract shapefile archive")
	}
	shpPath, err := fetcher.FindFileByExt(extracted, ".shp")
	if err != nil {
		return nil, eris.Wrap(err, "geo: find .shp file")
	}

	nameField := src.NameField
	if nameField == "" {
		nameField = "NAME"
	}
	return ReadShapefile(shpPath, nameField)
}

// cleanAttr strips the NUL padding dBase attributes carry.
func cleanAttr(s string) string {
	return strings.TrimSpace(strings.TrimRight(s, "\x00"))
}
