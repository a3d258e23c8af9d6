package flight

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/flyra-app/flyra-server/pkg/config"
	"github.com/flyra-app/flyra-server/pkg/provider"
)

// Service aggregates one configured flight-data provider into canonical
// Records. It is stateless beyond the provider client it wraps, so a
// single instance is safe for concurrent request handling.
type Service struct {
	provider provider.Provider
}

// NewService creates a flight aggregation service over the given
// provider. Tests inject stub providers here; production code normally
// goes through Default.
func NewService(p provider.Provider) *Service {
	return &Service{provider: p}
}

// Source returns the active provider's data-source label.
func (s *Service) Source() string { return s.provider.Name() }

// GetFlightInfo returns the canonical record for a flight number, or
// (nil, nil) when the flight does not exist.
//
// Absence is folded from three signals: an empty identifier after
// trimming, the provider's explicit ErrNotFound, and any error whose
// message contains "not found" in any case. The text match is a
// compatibility net for upstream SDK errors that never grew a typed
// not-found variant; it means an unrelated failure mentioning those
// words is treated as absence, and it is pinned by a regression test.
func (s *Service) GetFlightInfo(ctx context.Context, flightNumber string) (*Record, error) {
	flightNumber = strings.ToUpper(strings.TrimSpace(flightNumber))
	if flightNumber == "" {
		return nil, nil
	}

	data, err := s.provider.Fetch(ctx, flightNumber)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}

	return newRecord(flightNumber, data, s.provider.Name(), s.provider.Live(), time.Now()), nil
}

// SearchByRoute returns canonical records for flights matching a
// departure and/or arrival IATA code. With both sides blank the result
// is an empty list; requiring at least one side is the caller's
// contract, not this layer's.
func (s *Service) SearchByRoute(ctx context.Context, departure, arrival string, limit int) ([]*Record, error) {
	departure = strings.TrimSpace(departure)
	arrival = strings.TrimSpace(arrival)
	if departure == "" && arrival == "" {
		return []*Record{}, nil
	}

	flights, err := s.provider.SearchRoute(ctx, departure, arrival, limit)
	if err != nil {
		if isNotFound(err) {
			return []*Record{}, nil
		}
		return nil, err
	}

	now := time.Now()
	records := make([]*Record, 0, len(flights))
	for i := range flights {
		data := &flights[i]
		// Provider payloads are not trusted for casing
		number := strings.ToUpper(strings.TrimSpace(data.FlightNumber))
		records = append(records, newRecord(number, data, s.provider.Name(), s.provider.Live(), now))
	}
	return records, nil
}

// isNotFound reports whether an error signals flight absence rather
// than provider failure.
func isNotFound(err error) bool {
	if errors.Is(err, provider.ErrNotFound) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "not found")
}

// The process-wide default service. Provider clients hold credentials
// and HTTP connections worth reusing, so exactly one is constructed,
// lazily, on first use.
var (
	defaultOnce    sync.Once
	defaultService *Service
)

// Default returns the shared flight service for the configured provider,
// constructing it on first call. Construction is guarded so concurrent
// first requests yield a single client instance.
func Default(cfg *config.Config) *Service {
	defaultOnce.Do(func() {
		defaultService = NewService(newProvider(cfg))
	})
	return defaultService
}

// newProvider builds the provider the deployment selected. Unknown
// source names fall back to the simulator so a bare config still serves
// demo traffic.
func newProvider(cfg *config.Config) provider.Provider {
	timeout := time.Duration(cfg.Provider.TimeoutSeconds) * time.Second

	switch cfg.Provider.Source {
	case config.SourceFlightRadar24:
		return provider.NewFR24Client(provider.FR24Config{
			BaseURL:           cfg.Provider.FR24.BaseURL,
			APIToken:          cfg.Provider.FR24.APIToken,
			Timeout:           timeout,
			RequestsPerMinute: cfg.Provider.RequestsPerMinute,
		})
	case config.SourceAviationStack:
		return provider.NewAviationStackClient(provider.AviationStackConfig{
			BaseURL:           cfg.Provider.AviationStack.BaseURL,
			AccessKey:         cfg.Provider.AviationStack.AccessKey,
			Timeout:           timeout,
			RequestsPerMinute: cfg.Provider.RequestsPerMinute,
		})
	default:
		return provider.NewSimulatedProvider()
	}
}
