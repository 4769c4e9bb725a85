package domain

import (
	"math"

	"github.com/golang/geo/s2"
)

// Sentinel thresholds above which FARS coordinates mean "unknown".
const (
	maxLongitude = 900
	maxLatitude  = 90
)

// Point is a WGS-84 latitude/longitude pair in degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Valid reports whether both coordinates are known.
func (p Point) Valid() bool {
	return !math.IsNaN(p.Lat) && !math.IsNaN(p.Lon)
}

// Bounds is the latitude/longitude range covered by a set of points.
type Bounds struct {
	MinLat float64 `json:"min_lat"`
	MaxLat float64 `json:"max_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLon float64 `json:"max_lon"`
}

// Contains reports whether p lies inside the bounds, edges included.
func (b Bounds) Contains(p Point) bool {
	return p.Lat >= b.MinLat && p.Lat <= b.MaxLat && p.Lon >= b.MinLon && p.Lon <= b.MaxLon
}

// SanitizeCoordinates maps FARS sentinel values to NaN: a longitude above 900
// or a latitude above 90 is unknown.
func SanitizeCoordinates(lat, lon float64) Point {
	if lon > maxLongitude {
		lon = math.NaN()
	}
	if lat > maxLatitude {
		lat = math.NaN()
	}
	return Point{Lat: lat, Lon: lon}
}

// BoundsOf returns the bounding range of the valid points and false when
// there are none.
func BoundsOf(points []Point) (Bounds, bool) {
	rect := s2.EmptyRect()
	minLon, maxLon := math.Inf(1), math.Inf(-1)
	for _, p := range points {
		if !p.Valid() {
			continue
		}
		rect = rect.AddPoint(s2.LatLngFromDegrees(p.Lat, p.Lon))
		minLon = math.Min(minLon, p.Lon)
		maxLon = math.Max(maxLon, p.Lon)
	}
	if rect.IsEmpty() {
		return Bounds{}, false
	}

	b := Bounds{
		MinLat: rect.Lo().Lat.Degrees(),
		MaxLat: rect.Hi().Lat.Degrees(),
		MinLon: rect.Lo().Lng.Degrees(),
		MaxLon: rect.Hi().Lng.Degrees(),
	}
	// s2 wraps ranges that cross the antimeridian (Alaska's Aleutians);
	// a flat map needs the plain range instead.
	if rect.Lng.IsInverted() {
		b.MinLon, b.MaxLon = minLon, maxLon
	}
	return b, true
}
