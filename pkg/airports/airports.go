// Package airports provides a static coordinate lookup table for major airports.
// The table is intentionally small and fixed: it only needs to cover the routes
// the simulated provider serves plus common mobile-client queries. No network
// access, no expiry.
package airports

import (
	"strings"

	"github.com/flyra-app/flyra-server/pkg/geo"
)

// coordinates maps IATA airport codes to their positions.
var coordinates = map[string]geo.Point{
	"SFO": {Lat: 37.6213, Lng: -122.3790}, // San Francisco
	"NRT": {Lat: 35.7720, Lng: 140.3929},  // Narita
	"JFK": {Lat: 40.6413, Lng: -73.7781},  // New York JFK
	"LAX": {Lat: 34.0522, Lng: -118.2437}, // Los Angeles
	"LHR": {Lat: 51.4700, Lng: -0.4543},   // London Heathrow
	"CDG": {Lat: 49.0097, Lng: 2.5479},    // Paris Charles de Gaulle
	"DXB": {Lat: 25.2532, Lng: 55.3657},   // Dubai
	"HKG": {Lat: 22.3080, Lng: 113.9185},  // Hong Kong
	"SIN": {Lat: 1.3644, Lng: 103.9915},   // Singapore
	"ICN": {Lat: 37.4602, Lng: 126.4407},  // Seoul Incheon
	"ORD": {Lat: 41.9742, Lng: -87.9073},  // Chicago O'Hare
	"ATL": {Lat: 33.6407, Lng: -84.4277},  // Atlanta
	"DFW": {Lat: 32.8998, Lng: -97.0403},  // Dallas/Fort Worth
	"DEN": {Lat: 39.8561, Lng: -104.6737}, // Denver
	"SEA": {Lat: 47.4502, Lng: -122.3088}, // Seattle
	"BOS": {Lat: 42.3656, Lng: -71.0096},  // Boston
	"MIA": {Lat: 25.7959, Lng: -80.2870},  // Miami
	"IAH": {Lat: 29.9902, Lng: -95.3368},  // Houston
	"PHX": {Lat: 33.4342, Lng: -112.0116}, // Phoenix
	"LAS": {Lat: 36.0840, Lng: -115.1537}, // Las Vegas
}

// Lookup returns the coordinates for an IATA airport code.
// The code is trimmed and upper-cased before lookup, so " sfo " and "SFO"
// resolve to the same entry. Returns ok=false for unknown or empty codes;
// callers must handle that case themselves (the simulator falls back to a
// placeholder position, display code paths fall back to "Unknown").
func Lookup(iataCode string) (geo.Point, bool) {
	code := strings.ToUpper(strings.TrimSpace(iataCode))
	if code == "" {
		return geo.Point{}, false
	}
	p, ok := coordinates[code]
	return p, ok
}
