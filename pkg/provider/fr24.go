package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	// FR24BaseURL is the FlightRadar24 API base URL
	FR24BaseURL = "https://fr24api.flightradar24.com/api"

	// fr24DefaultTimeout bounds every upstream request
	fr24DefaultTimeout = 10 * time.Second
)

// FR24Client implements the Provider interface for the FlightRadar24
// live flight-positions API. It returns real-time telemetry (altitude,
// ground speed, position, track) for currently active flights.
//
// API Documentation: https://fr24api.flightradar24.com/docs
type FR24Client struct {
	baseURL    string
	apiToken   string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// FR24Config contains configuration for the FlightRadar24 client.
type FR24Config struct {
	BaseURL           string
	APIToken          string
	Timeout           time.Duration
	RequestsPerMinute int
}

// NewFR24Client creates a new FlightRadar24 API client.
//
// The client includes rate limiting to stay within API quotas and a
// bounded timeout on every request. A missing token is not an error
// here; requests fail with ErrMissingCredentials when the upstream
// rejects them.
func NewFR24Client(cfg FR24Config) *FR24Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = FR24BaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = fr24DefaultTimeout
	}
	if cfg.RequestsPerMinute == 0 {
		cfg.RequestsPerMinute = 15
	}

	limiter := rate.NewLimiter(rate.Limit(float64(cfg.RequestsPerMinute)/60.0), 1)

	return &FR24Client{
		baseURL:  cfg.BaseURL,
		apiToken: cfg.APIToken,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		limiter: limiter,
	}
}

// Name returns the data-source label.
func (c *FR24Client) Name() string { return "flightradar24" }

// Live reports that this source returns real-time telemetry.
func (c *FR24Client) Live() bool { return true }

// Fetch returns live position data for a flight number or callsign.
//
// The identifier is looked up as a flight number first; on an empty
// result it is retried as a callsign (a distinct lookup key on the same
// endpoint) before the flight is declared not found.
func (c *FR24Client) Fetch(ctx context.Context, flightID string) (*FlightData, error) {
	flightID = strings.ToUpper(strings.TrimSpace(flightID))
	if flightID == "" {
		return nil, fmt.Errorf("flight identifier cannot be empty")
	}

	if c.apiToken == "" {
		return nil, fmt.Errorf("%w: FR24 API token not configured", ErrMissingCredentials)
	}

	flights, err := c.positions(ctx, url.Values{"flights": {flightID}})
	if err != nil {
		return nil, err
	}

	if len(flights) == 0 {
		// The identifier may be a callsign rather than a flight number
		flights, err = c.positions(ctx, url.Values{"callsigns": {flightID}})
		if err != nil {
			return nil, err
		}
	}

	if len(flights) == 0 {
		return nil, fmt.Errorf("%w: %s is not in live tracking data", ErrNotFound, flightID)
	}

	data := c.convert(flights[0])
	return &data, nil
}

// SearchRoute returns live flights on a departure/arrival route.
// Either endpoint may be empty; the route query becomes "SFO-NRT",
// "SFO-" or "-NRT" accordingly.
func (c *FR24Client) SearchRoute(ctx context.Context, departure, arrival string, limit int) ([]FlightData, error) {
	departure = strings.ToUpper(strings.TrimSpace(departure))
	arrival = strings.ToUpper(strings.TrimSpace(arrival))
	if departure == "" && arrival == "" {
		return nil, nil
	}

	if c.apiToken == "" {
		return nil, fmt.Errorf("%w: FR24 API token not configured", ErrMissingCredentials)
	}

	params := url.Values{
		"routes": {departure + "-" + arrival},
		"limit":  {strconv.Itoa(limit)},
	}

	flights, err := c.positions(ctx, params)
	if err != nil {
		return nil, err
	}

	results := make([]FlightData, 0, len(flights))
	for _, f := range flights {
		results = append(results, c.convert(f))
	}
	return results, nil
}

// positions issues a live flight-positions query and decodes the result.
func (c *FR24Client) positions(ctx context.Context, params url.Values) ([]fr24Flight, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &UpstreamError{Message: "rate limiter: " + err.Error(), Err: err}
	}

	reqURL := fmt.Sprintf("%s/live/flight-positions/full?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return nil, &UpstreamError{Message: "create request: " + err.Error(), Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+c.apiToken)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Version", "v1")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &UpstreamError{Message: "http request: " + err.Error(), Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%w: FR24 rejected the API token (HTTP %d)", ErrMissingCredentials, resp.StatusCode)
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, &RateLimitError{
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header),
			Message:    "FR24 rate limit exceeded",
		}
	case resp.StatusCode == http.StatusNotFound:
		return nil, nil
	case resp.StatusCode != http.StatusOK:
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Message: "unexpected FR24 response status"}
	}

	var apiResp fr24Response
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, &UpstreamError{Message: "parse FR24 response: " + err.Error(), Err: err}
	}

	return apiResp.Data, nil
}

// fr24Response represents the JSON envelope from the live positions endpoint.
type fr24Response struct {
	Data []fr24Flight `json:"data"`
}

// fr24Flight represents a single flight in the FR24 response. Numeric
// fields decode into interface{} because the upstream occasionally emits
// strings ("ground") or omits values entirely; conversion degrades those
// to zero rather than failing the record.
type fr24Flight struct {
	// FR24ID is the FlightRadar24-assigned flight identifier
	FR24ID *string `json:"fr24_id"`

	// Flight is the commercial flight number (e.g., "UA837")
	Flight *string `json:"flight"`

	// Callsign is the ATC callsign (e.g., "UAL837")
	Callsign *string `json:"callsign"`

	// Lat / Lon is the current position in decimal degrees
	Lat interface{} `json:"lat"`
	Lon interface{} `json:"lon"`

	// Alt is barometric altitude in feet
	Alt interface{} `json:"alt"`

	// GSpeed is ground speed in knots
	GSpeed interface{} `json:"gspeed"`

	// Track is the ground track in degrees (0-360)
	Track interface{} `json:"track"`

	// Origin / destination airports, IATA and ICAO codes
	OrigIATA *string `json:"orig_iata"`
	OrigICAO *string `json:"orig_icao"`
	DestIATA *string `json:"dest_iata"`
	DestICAO *string `json:"dest_icao"`
}

// convert normalizes a FR24 flight into FlightData. Extraction is
// defensive throughout: missing or malformed numerics become zero and
// missing strings become "Unknown" so partial upstream data still
// yields a displayable record.
func (c *FR24Client) convert(f fr24Flight) FlightData {
	knots := safeInt(f.GSpeed)

	return FlightData{
		FlightID:         safeStr(f.FR24ID),
		FlightNumber:     firstNonEmpty(f.Flight, f.Callsign),
		AltitudeFt:       safeInt(f.Alt),
		SpeedKnots:       &knots,
		Latitude:         safeFloat(f.Lat),
		Longitude:        safeFloat(f.Lon),
		Direction:        safeInt(f.Track),
		DepartureAirport: airportLabel(f.OrigIATA, f.OrigICAO),
		ArrivalAirport:   airportLabel(f.DestIATA, f.DestICAO),
	}
}

// airportLabel picks the best-available airport label: IATA, then ICAO,
// then "Unknown".
func airportLabel(iata, icao *string) string {
	if iata != nil && *iata != "" {
		return *iata
	}
	if icao != nil && *icao != "" {
		return *icao
	}
	return "Unknown"
}

// firstNonEmpty returns the first non-empty string, or "Unknown".
func firstNonEmpty(values ...*string) string {
	for _, v := range values {
		if v != nil && strings.TrimSpace(*v) != "" {
			return strings.TrimSpace(*v)
		}
	}
	return "Unknown"
}

// safeInt converts an untyped JSON value to int, defaulting to 0 for
// nil, non-numeric, or unparseable values.
func safeInt(val interface{}) int {
	switch v := val.(type) {
	case float64:
		return int(v)
	case string:
		if n, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return int(n)
		}
		return 0
	case json.Number:
		if n, err := v.Float64(); err == nil {
			return int(n)
		}
		return 0
	default:
		return 0
	}
}

// safeFloat converts an untyped JSON value to float64, defaulting to 0.
func safeFloat(val interface{}) float64 {
	switch v := val.(type) {
	case float64:
		return v
	case string:
		if n, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return n
		}
		return 0
	case json.Number:
		if n, err := v.Float64(); err == nil {
			return n
		}
		return 0
	default:
		return 0
	}
}

// safeStr dereferences a string pointer, defaulting to "Unknown".
func safeStr(val *string) string {
	if val == nil || *val == "" {
		return "Unknown"
	}
	return *val
}
