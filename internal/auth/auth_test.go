package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// TestTokenRoundTrip tests token generation and validation.
func TestTokenRoundTrip(t *testing.T) {
	service := NewService(Config{JWTSecret: "test-secret"})

	token, err := service.GenerateToken("device-1234")
	if err != nil {
		t.Fatalf("Expected no error generating token, got: %v", err)
	}
	if token == "" {
		t.Fatal("Expected non-empty token")
	}

	claims, err := service.ValidateToken(token)
	if err != nil {
		t.Fatalf("Expected valid token, got: %v", err)
	}
	if claims.DeviceID != "device-1234" {
		t.Errorf("Expected device-1234, got %q", claims.DeviceID)
	}
	if claims.Issuer != "flyra" {
		t.Errorf("Expected issuer flyra, got %q", claims.Issuer)
	}
}

// TestValidateToken tests rejection paths.
func TestValidateToken(t *testing.T) {
	service := NewService(Config{JWTSecret: "test-secret"})

	t.Run("Garbage token", func(t *testing.T) {
		if _, err := service.ValidateToken("not.a.token"); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Expected ErrInvalidToken, got: %v", err)
		}
	})

	t.Run("Wrong secret", func(t *testing.T) {
		other := NewService(Config{JWTSecret: "different-secret"})
		token, err := other.GenerateToken("device-1234")
		if err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		if _, err := service.ValidateToken(token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Expected ErrInvalidToken for wrong secret, got: %v", err)
		}
	})

	t.Run("Expired token", func(t *testing.T) {
		short := NewService(Config{JWTSecret: "test-secret", TokenDuration: -time.Hour})
		token, err := short.GenerateToken("device-1234")
		if err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		if _, err := service.ValidateToken(token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Expected ErrInvalidToken for expired token, got: %v", err)
		}
	})
}

// TestMiddleware tests bearer-token enforcement.
func TestMiddleware(t *testing.T) {
	okHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("Disabled without a secret", func(t *testing.T) {
		service := NewService(Config{})
		rec := httptest.NewRecorder()
		service.Middleware(okHandler).ServeHTTP(rec, httptest.NewRequest("GET", "/api/flight", nil))
		if rec.Code != http.StatusOK {
			t.Errorf("Expected passthrough without secret, got %d", rec.Code)
		}
	})

	t.Run("Rejects missing token", func(t *testing.T) {
		service := NewService(Config{JWTSecret: "test-secret"})
		rec := httptest.NewRecorder()
		service.Middleware(okHandler).ServeHTTP(rec, httptest.NewRequest("GET", "/api/flight", nil))
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("Expected 401 without token, got %d", rec.Code)
		}
	})

	t.Run("Accepts valid bearer token", func(t *testing.T) {
		service := NewService(Config{JWTSecret: "test-secret"})
		token, err := service.GenerateToken("device-1234")
		if err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}

		req := httptest.NewRequest("GET", "/api/flight", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		service.Middleware(okHandler).ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("Expected 200 with valid token, got %d", rec.Code)
		}
	})

	t.Run("Rejects non-bearer scheme", func(t *testing.T) {
		service := NewService(Config{JWTSecret: "test-secret"})
		req := httptest.NewRequest("GET", "/api/flight", nil)
		req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
		rec := httptest.NewRecorder()
		service.Middleware(okHandler).ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("Expected 401 for non-bearer auth, got %d", rec.Code)
		}
	})
}
