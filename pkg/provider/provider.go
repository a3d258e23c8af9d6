// Package provider contains the flight-data source adapters.
//
// Three backends implement the same Provider contract: the FlightRadar24
// live-position API, the AviationStack scheduled-status API, and a
// deterministic-route simulator used when no upstream credentials exist.
// Each adapter normalizes its native response into a FlightData value so
// the aggregation layer never sees provider-specific field names or units.
package provider

import "context"

// Provider is the interface that all flight data sources must implement.
// This abstraction allows switching between live telemetry, scheduled
// status feeds, and the local simulator without touching the aggregator.
type Provider interface {
	// Name returns the data-source label stamped into outgoing records
	// (e.g., "flightradar24", "aviationstack", "simulated").
	Name() string

	// Live reports whether this source returns real-time position telemetry.
	Live() bool

	// Fetch returns normalized data for a single flight identifier.
	// The identifier must be non-empty after trimming; callers pre-normalize
	// to uppercase. Returns ErrNotFound when no flight matches.
	Fetch(ctx context.Context, flightID string) (*FlightData, error)

	// SearchRoute returns flights matching a departure and/or arrival IATA
	// code. Either side may be empty, but not both; with both empty the
	// result is an empty list. limit caps the number of results.
	SearchRoute(ctx context.Context, departure, arrival string, limit int) ([]FlightData, error)
}

// FlightData is the normalized form every provider converts its native
// response into. Fields a source cannot supply are left at their zero
// value (strings) or nil (pointers); the aggregator applies the display
// sentinels and unit conversions.
type FlightData struct {
	// FlightID is the provider-assigned identifier (e.g., FR24 hex ID)
	FlightID string

	// FlightNumber is the carrier + number (e.g., "UA837")
	FlightNumber string

	// Status is one of "Scheduled", "In Flight", "Landed", or "" when unknown
	Status string

	// ScheduledTime is the locale-formatted departure time (e.g., "04:20 AM")
	ScheduledTime string

	// ScheduledDate is the departure date (e.g., "2026-08-30")
	ScheduledDate string

	// Gate and Terminal are departure gate/terminal labels when known
	Gate     string
	Terminal string

	// AircraftType is the aircraft model label when known (e.g., "Boeing 777")
	AircraftType string

	// DepartureAirport and ArrivalAirport are best-available labels,
	// IATA first, then ICAO, then free text
	DepartureAirport string
	ArrivalAirport   string

	// DepartureDelay and ArrivalDelay are delays in minutes
	DepartureDelay *int
	ArrivalDelay   *int

	// Live telemetry block. AltitudeFt, Latitude, Longitude and Direction
	// default to zero when the source omits or garbles them.
	AltitudeFt int
	SpeedKnots *int
	SpeedMph   *int
	Latitude   float64
	Longitude  float64
	Direction  int

	// Route endpoint coordinates, populated by the simulator only
	DepartureLat *float64
	DepartureLng *float64
	ArrivalLat   *float64
	ArrivalLng   *float64

	// ETA is a locale-formatted arrival estimate, simulator only
	ETA string

	// DistanceMiles is the remaining route distance, simulator only
	DistanceMiles *int
}
