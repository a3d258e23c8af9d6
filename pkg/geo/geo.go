// Package geo provides great-circle math for flight position display.
// All positions use the WGS84 coordinate system (same as GPS).
package geo

import "math"

// Constants for coordinate calculations
const (
	// DegreesToRadians converts degrees to radians
	DegreesToRadians = math.Pi / 180.0

	// RadiansToDegrees converts radians to degrees
	RadiansToDegrees = 180.0 / math.Pi

	// EarthRadiusMiles is the Earth's mean radius in statute miles
	EarthRadiusMiles = 3959.0
)

// Point represents a position on Earth's surface.
type Point struct {
	// Lat is latitude in decimal degrees (-90 to +90)
	// Positive = North, Negative = South
	Lat float64

	// Lng is longitude in decimal degrees (-180 to +180)
	// Positive = East, Negative = West
	Lng float64
}

// Bearing calculates the initial bearing (forward azimuth) from one point to another.
// Uses spherical trigonometry to calculate the bearing along a great circle.
// Returns bearing in degrees [0, 360), where 0 = North, 90 = East, 180 = South, 270 = West.
func Bearing(from, to Point) float64 {
	lat1 := from.Lat * DegreesToRadians
	lon1 := from.Lng * DegreesToRadians
	lat2 := to.Lat * DegreesToRadians
	lon2 := to.Lng * DegreesToRadians

	dLon := lon2 - lon1
	y := math.Sin(dLon) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLon)
	bearing := math.Atan2(y, x) * RadiansToDegrees

	return NormalizeBearing(bearing)
}

// DistanceMiles calculates the great-circle distance between two points.
// Uses the Haversine formula for accuracy over short and long distances.
// Returns distance in statute miles.
func DistanceMiles(from, to Point) float64 {
	lat1Rad := from.Lat * DegreesToRadians
	lon1Rad := from.Lng * DegreesToRadians
	lat2Rad := to.Lat * DegreesToRadians
	lon2Rad := to.Lng * DegreesToRadians

	dLat := lat2Rad - lat1Rad
	dLon := lon2Rad - lon1Rad

	// Haversine formula
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusMiles * c
}

// Interpolate returns a point a given fraction of the way from one point to another.
// Latitude and longitude are interpolated linearly and independently, NOT along the
// great circle. This is only suitable for approximate display positions over a
// simulated route; it is not a navigation-grade calculation.
func Interpolate(from, to Point, fraction float64) Point {
	return Point{
		Lat: from.Lat + (to.Lat-from.Lat)*fraction,
		Lng: from.Lng + (to.Lng-from.Lng)*fraction,
	}
}

// NormalizeBearing ensures a bearing is in the range [0, 360).
func NormalizeBearing(bearing float64) float64 {
	b := math.Mod(bearing, 360.0)
	if b < 0 {
		b += 360.0
	}
	return b
}
