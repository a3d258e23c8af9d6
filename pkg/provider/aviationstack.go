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
	// AviationStackBaseURL is the AviationStack API base URL
	AviationStackBaseURL = "https://api.aviationstack.com/v1"

	// avsDefaultTimeout bounds every upstream request
	avsDefaultTimeout = 10 * time.Second
)

// AviationStackClient implements the Provider interface for the
// AviationStack flight-status API. Unlike FlightRadar24 it covers
// scheduled and landed flights, with gate, terminal, delay, and
// aircraft details, but carries no position telemetry.
//
// API Documentation: https://aviationstack.com/documentation
type AviationStackClient struct {
	baseURL    string
	accessKey  string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// AviationStackConfig contains configuration for the AviationStack client.
type AviationStackConfig struct {
	BaseURL           string
	AccessKey         string
	Timeout           time.Duration
	RequestsPerMinute int
}

// NewAviationStackClient creates a new AviationStack API client.
func NewAviationStackClient(cfg AviationStackConfig) *AviationStackClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = AviationStackBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = avsDefaultTimeout
	}
	if cfg.RequestsPerMinute == 0 {
		cfg.RequestsPerMinute = 30
	}

	return &AviationStackClient{
		baseURL:   cfg.BaseURL,
		accessKey: cfg.AccessKey,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		limiter: rate.NewLimiter(rate.Limit(float64(cfg.RequestsPerMinute)/60.0), 1),
	}
}

// Name returns the data-source label.
func (c *AviationStackClient) Name() string { return "aviationstack" }

// Live reports that this source has no real-time telemetry.
func (c *AviationStackClient) Live() bool { return false }

// Fetch returns scheduled-status data for a flight number.
// An empty result set from the upstream is absence (ErrNotFound), not a
// provider failure.
func (c *AviationStackClient) Fetch(ctx context.Context, flightID string) (*FlightData, error) {
	flightID = strings.ToUpper(strings.TrimSpace(flightID))
	if flightID == "" {
		return nil, fmt.Errorf("flight identifier cannot be empty")
	}

	flights, err := c.query(ctx, url.Values{"flight_iata": {flightID}})
	if err != nil {
		return nil, err
	}
	if len(flights) == 0 {
		return nil, fmt.Errorf("%w: no status records for %s", ErrNotFound, flightID)
	}

	data := c.convert(flights[0])
	return &data, nil
}

// SearchRoute returns flights filtered by departure and/or arrival IATA code.
func (c *AviationStackClient) SearchRoute(ctx context.Context, departure, arrival string, limit int) ([]FlightData, error) {
	departure = strings.ToUpper(strings.TrimSpace(departure))
	arrival = strings.ToUpper(strings.TrimSpace(arrival))
	if departure == "" && arrival == "" {
		return nil, nil
	}

	params := url.Values{"limit": {strconv.Itoa(limit)}}
	if departure != "" {
		params.Set("dep_iata", departure)
	}
	if arrival != "" {
		params.Set("arr_iata", arrival)
	}

	flights, err := c.query(ctx, params)
	if err != nil {
		return nil, err
	}

	results := make([]FlightData, 0, len(flights))
	for _, f := range flights {
		results = append(results, c.convert(f))
	}
	return results, nil
}

// query issues a /flights request and decodes the result.
func (c *AviationStackClient) query(ctx context.Context, params url.Values) ([]avsFlight, error) {
	if c.accessKey == "" {
		return nil, fmt.Errorf("%w: AviationStack access key not configured", ErrMissingCredentials)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &UpstreamError{Message: "rate limiter: " + err.Error(), Err: err}
	}

	params.Set("access_key", c.accessKey)
	reqURL := fmt.Sprintf("%s/flights?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return nil, &UpstreamError{Message: "create request: " + err.Error(), Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &UpstreamError{Message: "http request: " + err.Error(), Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, fmt.Errorf("%w: AviationStack rejected the access key", ErrMissingCredentials)
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, &RateLimitError{
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header),
			Message:    "AviationStack rate limit exceeded",
		}
	case resp.StatusCode != http.StatusOK:
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Message: "unexpected AviationStack response status"}
	}

	var apiResp avsResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, &UpstreamError{Message: "parse AviationStack response: " + err.Error(), Err: err}
	}

	return apiResp.Data, nil
}

// avsResponse represents the JSON envelope from the /flights endpoint.
type avsResponse struct {
	Data []avsFlight `json:"data"`
}

// avsFlight represents a single flight status record.
type avsFlight struct {
	FlightDate   *string     `json:"flight_date"`
	FlightStatus *string     `json:"flight_status"`
	Departure    avsEndpoint `json:"departure"`
	Arrival      avsEndpoint `json:"arrival"`

	Flight struct {
		Number *string `json:"number"`
		IATA   *string `json:"iata"`
		ICAO   *string `json:"icao"`
	} `json:"flight"`

	Aircraft *struct {
		Registration *string `json:"registration"`
		IATA         *string `json:"iata"`
		ICAO24       *string `json:"icao24"`
	} `json:"aircraft"`
}

// avsEndpoint is the nested departure/arrival block.
type avsEndpoint struct {
	Airport   *string `json:"airport"`
	IATA      *string `json:"iata"`
	ICAO      *string `json:"icao"`
	Terminal  *string `json:"terminal"`
	Gate      *string `json:"gate"`
	Delay     *int    `json:"delay"`
	Scheduled *string `json:"scheduled"`
}

// convert normalizes an AviationStack record into FlightData.
func (c *AviationStackClient) convert(f avsFlight) FlightData {
	schedTime, schedDate := formatSchedule(f.Departure.Scheduled, f.FlightDate)

	data := FlightData{
		FlightNumber:     firstNonEmpty(f.Flight.IATA, f.Flight.Number),
		Status:           mapFlightStatus(f.FlightStatus),
		ScheduledTime:    schedTime,
		ScheduledDate:    schedDate,
		DepartureAirport: endpointLabel(f.Departure),
		ArrivalAirport:   endpointLabel(f.Arrival),
		DepartureDelay:   f.Departure.Delay,
		ArrivalDelay:     f.Arrival.Delay,
	}

	if f.Flight.IATA != nil && *f.Flight.IATA != "" {
		data.FlightID = *f.Flight.IATA
	}
	if f.Departure.Gate != nil {
		data.Gate = *f.Departure.Gate
	}
	if f.Departure.Terminal != nil {
		data.Terminal = *f.Departure.Terminal
	}
	if f.Aircraft != nil && f.Aircraft.IATA != nil {
		data.AircraftType = *f.Aircraft.IATA
	}

	return data
}

// endpointLabel picks the best-available airport label for a nested
// departure/arrival block: IATA, then ICAO, then the free-text airport
// name, then "Unknown".
func endpointLabel(e avsEndpoint) string {
	if e.IATA != nil && *e.IATA != "" {
		return *e.IATA
	}
	if e.ICAO != nil && *e.ICAO != "" {
		return *e.ICAO
	}
	if e.Airport != nil && *e.Airport != "" {
		return *e.Airport
	}
	return "Unknown"
}

// mapFlightStatus translates AviationStack status labels into the
// canonical set. Anything unrecognized maps to "Unknown".
func mapFlightStatus(status *string) string {
	if status == nil {
		return "Unknown"
	}
	switch strings.ToLower(strings.TrimSpace(*status)) {
	case "scheduled":
		return "Scheduled"
	case "active":
		return "In Flight"
	case "landed":
		return "Landed"
	default:
		return "Unknown"
	}
}

// formatSchedule renders a scheduled departure timestamp into display
// time and date strings. Parse failures never propagate: the fallback
// is the raw provider string plus a date-only slice when the value is
// long enough to contain one.
func formatSchedule(scheduled, flightDate *string) (timeLabel, dateLabel string) {
	if scheduled != nil && *scheduled != "" {
		raw := *scheduled
		if ts, err := time.Parse(time.RFC3339, raw); err == nil {
			timeLabel = ts.Format("03:04 PM")
			dateLabel = ts.Format("2006-01-02")
		} else {
			// Keep whatever the provider sent rather than failing the record
			timeLabel = raw
			if len(raw) >= 10 {
				dateLabel = raw[:10]
			}
		}
	}

	if dateLabel == "" && flightDate != nil {
		dateLabel = *flightDate
	}
	return timeLabel, dateLabel
}
