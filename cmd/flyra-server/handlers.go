package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/flyra-app/flyra-server/pkg/ai"
	"github.com/flyra-app/flyra-server/pkg/provider"
)

// Route search limit bounds; requests outside them are clamped, not rejected.
const (
	defaultSearchLimit = 10
	maxSearchLimit     = 100
)

// handleRoot returns service identification
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"service": "flyra-server",
		"status":  "ok",
	})
}

// handleHealth returns liveness plus the active data source
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":      "healthy",
		"data_source": s.flights.Source(),
	})
}

// handleIssueToken mints a session token for a device. Returns 404 when
// auth is not enabled so clients can probe for it.
func (s *Server) handleIssueToken(w http.ResponseWriter, r *http.Request) {
	if !s.cfg.Auth.Enabled {
		respondError(w, http.StatusNotFound, "Authentication is not enabled")
		return
	}

	var req struct {
		DeviceID string `json:"device_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.DeviceID) == "" {
		respondError(w, http.StatusBadRequest, "device_id is required")
		return
	}

	token, err := s.authSvc.GenerateToken(strings.TrimSpace(req.DeviceID))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"access_token": token,
		"token_type":   "bearer",
	})
}

// handleGetFlight returns the canonical record for ?flight_id=
func (s *Server) handleGetFlight(w http.ResponseWriter, r *http.Request) {
	flightID := strings.TrimSpace(r.URL.Query().Get("flight_id"))
	if flightID == "" {
		respondError(w, http.StatusBadRequest, "flight_id query parameter is required")
		return
	}

	rec, err := s.flights.GetFlightInfo(r.Context(), flightID)
	if err != nil {
		s.respondFlightError(w, err)
		return
	}
	if rec == nil {
		respondError(w, http.StatusNotFound, fmt.Sprintf("Flight %s not found", strings.ToUpper(flightID)))
		return
	}

	respondJSON(w, http.StatusOK, rec)
}

// handleSearchFlights returns flights matching ?departure= and/or ?arrival=
func (s *Server) handleSearchFlights(w http.ResponseWriter, r *http.Request) {
	departure := strings.TrimSpace(r.URL.Query().Get("departure"))
	arrival := strings.TrimSpace(r.URL.Query().Get("arrival"))
	if departure == "" && arrival == "" {
		respondError(w, http.StatusBadRequest, "At least one of departure or arrival is required")
		return
	}

	limit := defaultSearchLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			limit = n
		}
	}
	if limit < 1 {
		limit = 1
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}

	records, err := s.flights.SearchByRoute(r.Context(), departure, arrival, limit)
	if err != nil {
		s.respondFlightError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"flights": records,
		"count":   len(records),
	})
}

// handleCalmingMessage generates a reassurance message for a tracked flight
func (s *Server) handleCalmingMessage(w http.ResponseWriter, r *http.Request) {
	flightID := chi.URLParam(r, "flight_id")

	rec, err := s.flights.GetFlightInfo(r.Context(), flightID)
	if err != nil {
		s.respondFlightError(w, err)
		return
	}
	if rec == nil {
		respondError(w, http.StatusNotFound, fmt.Sprintf("Flight %s not found", strings.ToUpper(flightID)))
		return
	}

	message, err := s.ai.CalmingMessage(r.Context(), rec)
	if err != nil {
		s.respondAIError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"flight_id":       rec.FlightID,
		"calming_message": message,
		"flight_status":   rec,
	})
}

// handleChat answers a free-form passenger question
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Message      string `json:"message"`
		SystemPrompt string `json:"system_prompt"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		respondError(w, http.StatusBadRequest, "message is required")
		return
	}

	systemPrompt := req.SystemPrompt
	if systemPrompt == "" {
		systemPrompt = ai.CalmingSystemPrompt
	}

	reply, err := s.ai.SimpleChat(r.Context(), req.Message, systemPrompt)
	if err != nil {
		s.respondAIError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"response": reply,
	})
}

// respondFlightError maps provider failures onto HTTP statuses: missing
// credentials are a deployment fault (400), upstream trouble and rate
// limits are transient (503), anything else is a server error.
func (s *Server) respondFlightError(w http.ResponseWriter, err error) {
	if errors.Is(err, provider.ErrMissingCredentials) {
		respondError(w, http.StatusBadRequest, "Flight data provider credentials are not configured")
		return
	}
	if _, ok := provider.IsRateLimitError(err); ok {
		respondError(w, http.StatusServiceUnavailable, "Flight data provider rate limit exceeded, try again shortly")
		return
	}
	if _, ok := provider.IsUpstreamError(err); ok {
		respondError(w, http.StatusServiceUnavailable, "Flight data provider is unavailable")
		return
	}

	log.Printf("❌ Flight lookup failed: %v", err)
	respondError(w, http.StatusInternalServerError, "Internal server error")
}

// respondAIError maps generation failures: a missing key is a
// configuration fault (400), anything the generation upstream does
// wrong is a server error (500).
func (s *Server) respondAIError(w http.ResponseWriter, err error) {
	if errors.Is(err, ai.ErrMissingAPIKey) {
		respondError(w, http.StatusBadRequest, "OPENAI_KEY is not configured")
		return
	}

	log.Printf("❌ Generation failed: %v", err)
	respondError(w, http.StatusInternalServerError, "Failed to generate message")
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError writes a detail-style error body
func respondError(w http.ResponseWriter, status int, detail string) {
	respondJSON(w, status, map[string]string{"detail": detail})
}
