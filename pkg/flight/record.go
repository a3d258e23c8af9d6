// Package flight aggregates provider data into the canonical flight
// record the API layer and the AI prompt builder consume. It owns unit
// conversion, sentinel defaults, and the shared not-found semantics;
// providers only normalize field names.
package flight

import (
	"time"

	"github.com/flyra-app/flyra-server/pkg/provider"
)

// Display sentinels. Every textual field carries one of these instead of
// being absent, so clients never branch on presence for display fields.
const (
	SentinelUnknown = "Unknown"
	SentinelTBD     = "TBD"
	SentinelNA      = "N/A"
)

// knotsToMphFactor converts knots to statute miles per hour.
const knotsToMphFactor = 1.15078

// Record is the canonical flight record returned by the API. Field names
// match the mobile client's model. A Record is constructed fresh per
// request and never mutated afterwards.
type Record struct {
	FlightID     string `json:"flight_id"`
	FlightNumber string `json:"flight_number"`
	Status       string `json:"flight_status"`
	Time         string `json:"flight_time"`
	Date         string `json:"flight_date"`
	Gate         string `json:"flight_gate"`
	Terminal     string `json:"flight_terminal"`

	AircraftType     *string `json:"aircraft_type"`
	DepartureAirport string  `json:"departure_airport"`
	ArrivalAirport   string  `json:"arrival_airport"`
	DepartureDelay   *int    `json:"departure_delay"`
	ArrivalDelay     *int    `json:"arrival_delay"`

	// Live tracking block
	AltitudeFt int     `json:"altitude_ft"`
	SpeedMph   int     `json:"speed_mph"`
	SpeedKnots *int    `json:"speed_knots"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	Direction  int     `json:"direction"`

	// Route endpoint coordinates, simulator only
	DepartureLatitude  *float64 `json:"departure_latitude"`
	DepartureLongitude *float64 `json:"departure_longitude"`
	ArrivalLatitude    *float64 `json:"arrival_latitude"`
	ArrivalLongitude   *float64 `json:"arrival_longitude"`

	// Derived fields, simulator only
	ETA           *string `json:"eta"`
	DistanceMiles *int    `json:"distance_miles"`

	// Metadata
	LastUpdated time.Time `json:"last_updated"`
	DataSource  string    `json:"data_source"`
	IsLive      bool      `json:"is_live"`
}

// KnotsToMph converts a ground speed in knots to statute miles per hour.
// The conversion is truncating, monotonic, and zero-preserving.
func KnotsToMph(knots int) int {
	return int(float64(knots) * knotsToMphFactor)
}

// newRecord assembles a canonical Record from normalized provider data,
// applying the speed conversion, every sentinel default, and the source
// metadata stamp. mph is only ever derived from knots when knots are
// present; a provider that reports mph directly (the simulator) must not
// also report knots.
func newRecord(flightNumber string, data *provider.FlightData, source string, isLive bool, now time.Time) *Record {
	rec := &Record{
		FlightID:         data.FlightID,
		FlightNumber:     flightNumber,
		Status:           orSentinel(data.Status, SentinelUnknown),
		Time:             orSentinel(data.ScheduledTime, SentinelTBD),
		Date:             orSentinel(data.ScheduledDate, SentinelTBD),
		Gate:             orSentinel(data.Gate, SentinelNA),
		Terminal:         orSentinel(data.Terminal, SentinelNA),
		DepartureAirport: orSentinel(data.DepartureAirport, SentinelUnknown),
		ArrivalAirport:   orSentinel(data.ArrivalAirport, SentinelUnknown),
		DepartureDelay:   data.DepartureDelay,
		ArrivalDelay:     data.ArrivalDelay,

		AltitudeFt: data.AltitudeFt,
		SpeedKnots: data.SpeedKnots,
		Latitude:   data.Latitude,
		Longitude:  data.Longitude,
		Direction:  normalizeDirection(data.Direction),

		DepartureLatitude:  data.DepartureLat,
		DepartureLongitude: data.DepartureLng,
		ArrivalLatitude:    data.ArrivalLat,
		ArrivalLongitude:   data.ArrivalLng,
		DistanceMiles:      data.DistanceMiles,

		LastUpdated: now,
		DataSource:  source,
		IsLive:      isLive,
	}

	if rec.FlightID == "" {
		rec.FlightID = flightNumber
	}
	if data.AircraftType != "" {
		t := data.AircraftType
		rec.AircraftType = &t
	}
	if data.ETA != "" {
		eta := data.ETA
		rec.ETA = &eta
	}

	switch {
	case data.SpeedKnots != nil:
		rec.SpeedMph = KnotsToMph(*data.SpeedKnots)
	case data.SpeedMph != nil:
		rec.SpeedMph = *data.SpeedMph
	}

	return rec
}

// normalizeDirection wraps a heading into [0, 360).
func normalizeDirection(deg int) int {
	deg %= 360
	if deg < 0 {
		deg += 360
	}
	return deg
}

// orSentinel substitutes a sentinel for an empty display value.
func orSentinel(value, sentinel string) string {
	if value == "" {
		return sentinel
	}
	return value
}
