package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/flyra-app/flyra-server/internal/auth"
	"github.com/flyra-app/flyra-server/pkg/ai"
	"github.com/flyra-app/flyra-server/pkg/config"
	"github.com/flyra-app/flyra-server/pkg/flight"
	"github.com/flyra-app/flyra-server/pkg/provider"
)

// stubProvider serves canned flight data for handler tests.
type stubProvider struct {
	data   *provider.FlightData
	search []provider.FlightData
	err    error
}

func (s *stubProvider) Name() string { return "simulated" }
func (s *stubProvider) Live() bool   { return false }

func (s *stubProvider) Fetch(ctx context.Context, flightID string) (*provider.FlightData, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.data == nil {
		return nil, provider.ErrNotFound
	}
	return s.data, nil
}

func (s *stubProvider) SearchRoute(ctx context.Context, departure, arrival string, limit int) ([]provider.FlightData, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.search, nil
}

// newTestServer wires a Server over a stub provider and a mock
// completions backend, returning the chi router ready to serve.
func newTestServer(t *testing.T, stub *stubProvider, aiHandler http.HandlerFunc) *Server {
	t.Helper()

	cfg := config.DefaultConfig()

	var aiClient *ai.Client
	if aiHandler != nil {
		backend := httptest.NewServer(aiHandler)
		t.Cleanup(backend.Close)
		aiClient = ai.NewClient(ai.ClientConfig{APIKey: "test-key", BaseURL: backend.URL})
	} else {
		aiClient = ai.NewClient(ai.ClientConfig{})
	}

	srv := &Server{
		router:  chi.NewRouter(),
		flights: flight.NewService(stub),
		ai:      aiClient,
		authSvc: auth.NewService(auth.Config{JWTSecret: cfg.Auth.JWTSecret}),
		cfg:     cfg,
	}
	srv.setupRoutes()
	return srv
}

// completionResponse writes a minimal chat-completions body.
func completionResponse(w http.ResponseWriter, content string) {
	quoted, _ := json.Marshal(content)
	w.Write([]byte(`{"choices":[{"message":{"content":` + string(quoted) + `}}]}`))
}

// doRequest routes a request through the server and decodes the JSON body.
func doRequest(t *testing.T, srv *Server, method, target, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)

	var decoded map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("Failed to decode response body %q: %v", rec.Body.String(), err)
	}
	return rec, decoded
}

// liveFlightData is a representative provider payload.
func liveFlightData() *provider.FlightData {
	knots := 480
	return &provider.FlightData{
		FlightID:         "3a1b2c3d",
		Status:           "In Flight",
		AltitudeFt:       37000,
		SpeedKnots:       &knots,
		Latitude:         36.5,
		Longitude:        -150.2,
		Direction:        305,
		DepartureAirport: "SFO",
		ArrivalAirport:   "NRT",
	}
}

// TestHealthEndpoints tests the public service endpoints.
func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(t, &stubProvider{}, nil)

	rec, body := doRequest(t, srv, "GET", "/health", "")
	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200 from /health, got %d", rec.Code)
	}
	if body["data_source"] != "simulated" {
		t.Errorf("Expected simulated data source, got %v", body["data_source"])
	}

	rec, body = doRequest(t, srv, "GET", "/", "")
	if rec.Code != http.StatusOK || body["service"] != "flyra-server" {
		t.Errorf("Expected service identification, got %d %v", rec.Code, body)
	}
}

// TestGetFlight tests the flight lookup endpoint.
func TestGetFlight(t *testing.T) {
	t.Run("Successful lookup", func(t *testing.T) {
		srv := newTestServer(t, &stubProvider{data: liveFlightData()}, nil)

		rec, body := doRequest(t, srv, "GET", "/api/flight?flight_id=ua837", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %v", rec.Code, body)
		}
		if body["flight_number"] != "UA837" {
			t.Errorf("Expected uppercased flight number, got %v", body["flight_number"])
		}
		if body["speed_mph"] != float64(552) {
			t.Errorf("Expected derived speed 552 mph, got %v", body["speed_mph"])
		}
		if body["data_source"] != "simulated" {
			t.Errorf("Expected data_source stamp, got %v", body["data_source"])
		}
	})

	t.Run("Missing flight_id parameter", func(t *testing.T) {
		srv := newTestServer(t, &stubProvider{}, nil)
		rec, body := doRequest(t, srv, "GET", "/api/flight", "")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", rec.Code)
		}
		if body["detail"] == nil {
			t.Error("Expected detail message in error body")
		}
	})

	t.Run("Unknown flight is 404", func(t *testing.T) {
		srv := newTestServer(t, &stubProvider{}, nil)
		rec, body := doRequest(t, srv, "GET", "/api/flight?flight_id=ZZ999", "")
		if rec.Code != http.StatusNotFound {
			t.Errorf("Expected 404, got %d", rec.Code)
		}
		if detail, _ := body["detail"].(string); !strings.Contains(detail, "ZZ999") {
			t.Errorf("Expected flight number in detail, got %v", body["detail"])
		}
	})

	t.Run("Missing credentials are 400", func(t *testing.T) {
		srv := newTestServer(t, &stubProvider{err: provider.ErrMissingCredentials}, nil)
		rec, _ := doRequest(t, srv, "GET", "/api/flight?flight_id=UA837", "")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("Expected 400 for missing credentials, got %d", rec.Code)
		}
	})

	t.Run("Upstream failure is 503", func(t *testing.T) {
		srv := newTestServer(t, &stubProvider{err: &provider.UpstreamError{StatusCode: 502}}, nil)
		rec, _ := doRequest(t, srv, "GET", "/api/flight?flight_id=UA837", "")
		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("Expected 503 for upstream failure, got %d", rec.Code)
		}
	})

	t.Run("Rate limit is 503", func(t *testing.T) {
		srv := newTestServer(t, &stubProvider{err: &provider.RateLimitError{StatusCode: 429}}, nil)
		rec, _ := doRequest(t, srv, "GET", "/api/flight?flight_id=UA837", "")
		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("Expected 503 for rate limit, got %d", rec.Code)
		}
	})
}

// TestSearchFlights tests the route search endpoint.
func TestSearchFlights(t *testing.T) {
	t.Run("Successful search", func(t *testing.T) {
		srv := newTestServer(t, &stubProvider{search: []provider.FlightData{
			{FlightNumber: "UA837"},
			{FlightNumber: "JAL57"},
		}}, nil)

		rec, body := doRequest(t, srv, "GET", "/api/flights/search?departure=SFO&arrival=NRT", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d", rec.Code)
		}
		if body["count"] != float64(2) {
			t.Errorf("Expected count 2, got %v", body["count"])
		}
		flights, ok := body["flights"].([]interface{})
		if !ok || len(flights) != 2 {
			t.Errorf("Expected 2 flights in body, got %v", body["flights"])
		}
	})

	t.Run("Both parameters absent is 400", func(t *testing.T) {
		srv := newTestServer(t, &stubProvider{}, nil)
		rec, _ := doRequest(t, srv, "GET", "/api/flights/search", "")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("Expected 400 without route parameters, got %d", rec.Code)
		}
	})

	t.Run("Empty result is 200 with empty list", func(t *testing.T) {
		srv := newTestServer(t, &stubProvider{search: []provider.FlightData{}}, nil)
		rec, body := doRequest(t, srv, "GET", "/api/flights/search?departure=SFO", "")
		if rec.Code != http.StatusOK {
			t.Errorf("Expected 200 for empty result, got %d", rec.Code)
		}
		if body["count"] != float64(0) {
			t.Errorf("Expected count 0, got %v", body["count"])
		}
	})
}

// TestCalmingMessage tests the reassurance endpoint.
func TestCalmingMessage(t *testing.T) {
	t.Run("Successful generation", func(t *testing.T) {
		var prompt string
		srv := newTestServer(t, &stubProvider{data: liveFlightData()}, func(w http.ResponseWriter, r *http.Request) {
			var req struct {
				Messages []ai.Message `json:"messages"`
			}
			json.NewDecoder(r.Body).Decode(&req)
			if len(req.Messages) == 2 {
				prompt = req.Messages[1].Content
			}
			completionResponse(w, "Everything is smooth at 37000 feet.")
		})

		rec, body := doRequest(t, srv, "GET", "/api/flight/UA837/calming-message", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %v", rec.Code, body)
		}
		if body["calming_message"] != "Everything is smooth at 37000 feet." {
			t.Errorf("Unexpected message: %v", body["calming_message"])
		}
		if !strings.Contains(prompt, "CURRENT ALTITUDE: 37000 feet") {
			t.Errorf("Expected flight context in prompt, got %q", prompt)
		}
		if body["flight_status"] == nil {
			t.Error("Expected embedded flight record in response")
		}
	})

	t.Run("Unknown flight is 404 before generation", func(t *testing.T) {
		requested := false
		srv := newTestServer(t, &stubProvider{}, func(w http.ResponseWriter, r *http.Request) {
			requested = true
		})

		rec, _ := doRequest(t, srv, "GET", "/api/flight/ZZ999/calming-message", "")
		if rec.Code != http.StatusNotFound {
			t.Errorf("Expected 404, got %d", rec.Code)
		}
		if requested {
			t.Error("Expected no generation call for unknown flight")
		}
	})

	t.Run("Missing API key is 400", func(t *testing.T) {
		srv := newTestServer(t, &stubProvider{data: liveFlightData()}, nil)
		rec, _ := doRequest(t, srv, "GET", "/api/flight/UA837/calming-message", "")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("Expected 400 without OPENAI_KEY, got %d", rec.Code)
		}
	})

	t.Run("Generation failure is 500", func(t *testing.T) {
		srv := newTestServer(t, &stubProvider{data: liveFlightData()}, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			w.Write([]byte(`{"error":{"message":"upstream down"}}`))
		})
		rec, _ := doRequest(t, srv, "GET", "/api/flight/UA837/calming-message", "")
		if rec.Code != http.StatusInternalServerError {
			t.Errorf("Expected 500 for generation failure, got %d", rec.Code)
		}
	})
}

// TestChat tests the free-form chat endpoint.
func TestChat(t *testing.T) {
	t.Run("Successful chat", func(t *testing.T) {
		var captured struct {
			Messages []ai.Message `json:"messages"`
		}
		srv := newTestServer(t, &stubProvider{}, func(w http.ResponseWriter, r *http.Request) {
			json.NewDecoder(r.Body).Decode(&captured)
			completionResponse(w, "That bump was light turbulence, completely normal.")
		})

		rec, body := doRequest(t, srv, "POST", "/api/ai/chat", `{"message":"what was that bump?"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %v", rec.Code, body)
		}
		if body["response"] != "That bump was light turbulence, completely normal." {
			t.Errorf("Unexpected reply: %v", body["response"])
		}
		if len(captured.Messages) != 2 || captured.Messages[0].Role != "system" {
			t.Errorf("Expected default calming system prompt, got %+v", captured.Messages)
		}
	})

	t.Run("Empty message is 400", func(t *testing.T) {
		srv := newTestServer(t, &stubProvider{}, nil)
		rec, _ := doRequest(t, srv, "POST", "/api/ai/chat", `{"message":"  "}`)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("Expected 400 for blank message, got %d", rec.Code)
		}
	})

	t.Run("Malformed body is 400", func(t *testing.T) {
		srv := newTestServer(t, &stubProvider{}, nil)
		rec, _ := doRequest(t, srv, "POST", "/api/ai/chat", `{not json`)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("Expected 400 for malformed body, got %d", rec.Code)
		}
	})
}

// TestAuthEnforcement tests the optional bearer-token gate.
func TestAuthEnforcement(t *testing.T) {
	newAuthedServer := func(t *testing.T) *Server {
		srv := newTestServer(t, &stubProvider{data: liveFlightData()}, nil)
		srv.cfg.Auth.Enabled = true
		srv.cfg.Auth.JWTSecret = "test-secret"
		srv.authSvc = auth.NewService(auth.Config{JWTSecret: "test-secret"})
		srv.router = chi.NewRouter()
		srv.setupRoutes()
		return srv
	}

	t.Run("Token issuance and authorized request", func(t *testing.T) {
		srv := newAuthedServer(t)

		rec, body := doRequest(t, srv, "POST", "/api/auth/token", `{"device_id":"device-1"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("Expected 200 issuing token, got %d: %v", rec.Code, body)
		}
		token, _ := body["access_token"].(string)
		if token == "" {
			t.Fatal("Expected access_token in response")
		}

		req := httptest.NewRequest("GET", "/api/flight?flight_id=UA837", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		res := httptest.NewRecorder()
		srv.router.ServeHTTP(res, req)
		if res.Code != http.StatusOK {
			t.Errorf("Expected 200 with token, got %d", res.Code)
		}
	})

	t.Run("Unauthorized request is rejected", func(t *testing.T) {
		srv := newAuthedServer(t)
		rec, _ := doRequest(t, srv, "GET", "/api/flight?flight_id=UA837", "")
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("Expected 401 without token, got %d", rec.Code)
		}
	})

	t.Run("Token endpoint is 404 when auth disabled", func(t *testing.T) {
		srv := newTestServer(t, &stubProvider{}, nil)
		rec, _ := doRequest(t, srv, "POST", "/api/auth/token", `{"device_id":"device-1"}`)
		if rec.Code != http.StatusNotFound {
			t.Errorf("Expected 404 when auth disabled, got %d", rec.Code)
		}
	})
}
