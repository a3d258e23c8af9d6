package provider

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/flyra-app/flyra-server/pkg/airports"
	"github.com/flyra-app/flyra-server/pkg/geo"
)

// routeProgress is the fixed fraction of the route a simulated flight
// has covered. Every simulated flight is rendered mid-cruise.
const routeProgress = 0.6

// Placeholder position used when a route endpoint is missing from the
// airport table.
var fallbackPosition = geo.Point{Lat: 39.8283, Lng: -98.5795}

// simRoute describes one allow-listed synthetic flight.
type simRoute struct {
	DepIATA  string
	ArrIATA  string
	DepName  string
	ArrName  string
	Aircraft string
}

// simRoutes is the fixed allow-list of flight numbers the simulator
// serves. Identifiers outside this set are not found, never errors.
var simRoutes = map[string]simRoute{
	"AB61510": {
		DepIATA:  "SFO",
		ArrIATA:  "NRT",
		DepName:  "San Francisco International",
		ArrName:  "Narita International Airport",
		Aircraft: "Boeing 777",
	},
	"CD2104": {
		DepIATA:  "JFK",
		ArrIATA:  "LHR",
		DepName:  "John F. Kennedy International",
		ArrName:  "London Heathrow",
		Aircraft: "Airbus A350",
	},
	"EF8823": {
		DepIATA:  "SEA",
		ArrIATA:  "ICN",
		DepName:  "Seattle-Tacoma International",
		ArrName:  "Incheon International Airport",
		Aircraft: "Boeing 787",
	},
}

// simStatuses is the label set simulated flights draw their status from.
var simStatuses = []string{"Scheduled", "In Flight", "Landed"}

// SimulatedProvider implements the Provider interface over a fixed
// allow-list of synthetic flights. It stands in for live telemetry when
// no upstream credentials are configured: positions come from a fixed
// route-progress interpolation and altitude/speed are drawn from
// plausible cruise ranges, so output is intentionally not reproducible
// run to run.
//
// This provider performs no I/O and never fails; the only non-success
// outcome is ErrNotFound for identifiers outside the allow-list.
type SimulatedProvider struct{}

// NewSimulatedProvider creates a simulated flight data source.
func NewSimulatedProvider() *SimulatedProvider {
	return &SimulatedProvider{}
}

// Name returns the data-source label.
func (p *SimulatedProvider) Name() string { return "simulated" }

// Live reports that simulated telemetry is not real.
func (p *SimulatedProvider) Live() bool { return false }

// Fetch returns synthetic data for an allow-listed flight number.
func (p *SimulatedProvider) Fetch(ctx context.Context, flightID string) (*FlightData, error) {
	flightID = strings.ToUpper(strings.TrimSpace(flightID))
	if flightID == "" {
		return nil, fmt.Errorf("flight identifier cannot be empty")
	}

	route, ok := simRoutes[flightID]
	if !ok {
		return nil, fmt.Errorf("%w: %s is not a simulated flight", ErrNotFound, flightID)
	}

	data := p.build(flightID, route)
	return &data, nil
}

// SearchRoute returns allow-listed flights whose endpoints match the
// given IATA codes.
func (p *SimulatedProvider) SearchRoute(ctx context.Context, departure, arrival string, limit int) ([]FlightData, error) {
	departure = strings.ToUpper(strings.TrimSpace(departure))
	arrival = strings.ToUpper(strings.TrimSpace(arrival))
	if departure == "" && arrival == "" {
		return nil, nil
	}

	var results []FlightData
	for flightID, route := range simRoutes {
		if departure != "" && route.DepIATA != departure {
			continue
		}
		if arrival != "" && route.ArrIATA != arrival {
			continue
		}
		results = append(results, p.build(flightID, route))
		if limit > 0 && len(results) >= limit {
			break
		}
	}
	return results, nil
}

// build renders a synthetic mid-route record for an allow-listed flight.
func (p *SimulatedProvider) build(flightID string, route simRoute) FlightData {
	position := fallbackPosition
	heading := 270
	remaining := 1200

	dep, depOK := airports.Lookup(route.DepIATA)
	arr, arrOK := airports.Lookup(route.ArrIATA)
	if depOK && arrOK {
		position = geo.Interpolate(dep, arr, routeProgress)
		heading = int(geo.Bearing(dep, arr))
		remaining = int((1 - routeProgress) * geo.DistanceMiles(dep, arr))
	}

	altitude := 35000 + rand.Intn(5001)   // 35000-40000 ft cruise band
	speedMph := 500 + rand.Intn(101)      // 500-600 mph cruise band
	etaOffset := time.Duration(120+rand.Intn(61)) * time.Minute
	now := time.Now()

	data := FlightData{
		FlightID:         flightID,
		FlightNumber:     flightID,
		Status:           simStatuses[rand.Intn(len(simStatuses))],
		ScheduledTime:    now.Format("03:04 PM"),
		ScheduledDate:    now.Format("2006-01-02"),
		AircraftType:     route.Aircraft,
		DepartureAirport: route.DepName,
		ArrivalAirport:   route.ArrName,
		AltitudeFt:       altitude,
		SpeedMph:         &speedMph,
		Latitude:         position.Lat,
		Longitude:        position.Lng,
		Direction:        heading,
		ETA:              now.Add(etaOffset).Format("03:04 PM"),
		DistanceMiles:    &remaining,
	}

	if depOK {
		data.DepartureLat = &dep.Lat
		data.DepartureLng = &dep.Lng
	}
	if arrOK {
		data.ArrivalLat = &arr.Lat
		data.ArrivalLng = &arr.Lng
	}

	return data
}
