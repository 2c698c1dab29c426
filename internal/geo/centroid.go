// Package geo computes approximate country centroids from boundary datasets.
package geo

import (
	"github.com/twpayne/go-geom"
)

// RepresentativeRing returns the ring a centroid is computed from: the first
// ring of a Polygon, or the first ring of the first polygon of a MultiPolygon.
// Other geometry types have no representative ring.
func RepresentativeRing(g geom.T) (*geom.LinearRing, bool) {
	switch t := g.(type) {
	case *geom.Polygon:
		if t == nil || t.NumLinearRings() == 0 {
			return nil, false
		}
		return t.LinearRing(0), true
	case *geom.MultiPolygon:
		if t == nil || t.NumPolygons() == 0 {
			return nil, false
		}
		return RepresentativeRing(t.Polygon(0))
	default:
		return nil, false
	}
}

// RingCentroid returns the unweighted mean of the ring's vertices, closing
// vertex included. It is not an area centroid.
func RingCentroid(ring *geom.LinearRing) (lat, lon float64, ok bool) {
	if ring == nil {
		return 0, 0, false
	}
	n := ring.NumCoords()
	if n == 0 {
		return 0, 0, false
	}

	flat := ring.FlatCoords()
	stride := ring.Stride()
	var sumLon, sumLat float64
	for i := 0; i < n; i++ {
		sumLon += flat[i*stride]
		sumLat += flat[i*stride+1]
	}
	return sumLat / float64(n), sumLon / float64(n), true
}

// Centroid combines RepresentativeRing and RingCentroid.
func Centroid(g geom.T) (lat, lon float64, ok bool) {
	ring, ok := RepresentativeRing(g)
	if !ok {
		return 0, 0, false
	}
	return RingCentroid(ring)
}
