// Package geo provides great-circle geometry over WGS84 coordinates.
package geo

import (
	"math"

	"github.com/rotisserie/eris"
)

// EarthRadiusKm is the mean Earth radius used for all great-circle math.
const EarthRadiusKm = 6371.0

// Coordinate is a WGS84 point in decimal degrees.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Validate checks that the coordinate is finite and within WGS84 bounds.
func (c Coordinate) Validate() error {
	if math.IsNaN(c.Lat) || math.IsInf(c.Lat, 0) || c.Lat < -90 || c.Lat > 90 {
		return eris.Errorf("geo: invalid latitude %f (must be between -90 and 90)", c.Lat)
	}
	if math.IsNaN(c.Lng) || math.IsInf(c.Lng, 0) || c.Lng < -180 || c.Lng > 180 {
		return eris.Errorf("geo: invalid longitude %f (must be between -180 and 180)", c.Lng)
	}
	return nil
}

// DistanceKm returns the great-circle distance between a and b in kilometers
// using the haversine formula.
func DistanceKm(a, b Coordinate) float64 {
	latA := radians(a.Lat)
	latB := radians(b.Lat)
	dLat := radians(b.Lat - a.Lat)
	dLng := radians(b.Lng - a.Lng)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(latA)*math.Cos(latB)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * EarthRadiusKm * math.Asin(math.Min(1, math.Sqrt(h)))
}

// BearingDegrees returns the initial bearing from a to b, normalized to [0, 360).
func BearingDegrees(a, b Coordinate) float64 {
	latA := radians(a.Lat)
	latB := radians(b.Lat)
	dLng := radians(b.Lng - a.Lng)

	y := math.Sin(dLng) * math.Cos(latB)
	x := math.Cos(latA)*math.Sin(latB) - math.Sin(latA)*math.Cos(latB)*math.Cos(dLng)
	deg := degrees(math.Atan2(y, x))
	return math.Mod(deg+360, 360)
}

// cardinalLabels are the 8 compass sector names, clockwise from north.
var cardinalLabels = [8]string{
	"north", "northeast", "east", "southeast",
	"south", "southwest", "west", "northwest",
}

// CardinalDirection maps a bearing in degrees to the nearest 45-degree
// compass label.
func CardinalDirection(bearing float64) string {
	b := math.Mod(math.Mod(bearing, 360)+360, 360)
	idx := int(math.Round(b/45)) % 8
	return cardinalLabels[idx]
}

// Destination returns the point reached by travelling distanceKm from origin
// along the given initial bearing.
func Destination(origin Coordinate, bearingDeg, distanceKm float64) Coordinate {
	lat := radians(origin.Lat)
	lng := radians(origin.Lng)
	brg := radians(bearingDeg)
	ang := distanceKm / EarthRadiusKm

	destLat := math.Asin(math.Sin(lat)*math.Cos(ang) +
		math.Cos(lat)*math.Sin(ang)*math.Cos(brg))
	destLng := lng + math.Atan2(
		math.Sin(brg)*math.Sin(ang)*math.Cos(lat),
		math.Cos(ang)-math.Sin(lat)*math.Sin(destLat),
	)

	out := Coordinate{Lat: degrees(destLat), Lng: degrees(destLng)}
	// Normalize longitude to [-180, 180].
	if out.Lng > 180 {
		out.Lng -= 360
	} else if out.Lng < -180 {
		out.Lng += 360
	}
	return out
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }

func degrees(rad float64) float64 { return rad * 180 / math.Pi }
