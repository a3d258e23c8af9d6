// Package config loads the Flyra server configuration from a JSON file,
// with environment-variable overrides for credentials. A .env file next
// to the working directory is honored so local development matches the
// mobile team's setup.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// Flight data source names accepted in ProviderConfig.Source.
const (
	SourceFlightRadar24 = "flightradar24"
	SourceAviationStack = "aviationstack"
	SourceSimulated     = "simulated"
)

// Config represents the complete application configuration.
type Config struct {
	Server   ServerConfig   `json:"server"`
	Provider ProviderConfig `json:"provider"`
	OpenAI   OpenAIConfig   `json:"openai"`
	Auth     AuthConfig     `json:"auth"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	// Port is the HTTP server port (default: 8080)
	Port string `json:"port"`

	// Host is the server bind address (default: "0.0.0.0")
	Host string `json:"host"`
}

// ProviderConfig selects and configures the flight data source.
// Exactly one source is active per deployment.
type ProviderConfig struct {
	// Source is the active backend: "flightradar24", "aviationstack",
	// or "simulated"
	Source string `json:"source"`

	// FR24 configures the FlightRadar24 live-positions client
	FR24 FR24Config `json:"fr24"`

	// AviationStack configures the scheduled-status client
	AviationStack AviationStackConfig `json:"aviationstack"`

	// TimeoutSeconds bounds every upstream request (default: 10)
	TimeoutSeconds int `json:"timeout_seconds"`

	// RequestsPerMinute caps upstream call rate (0 = per-client default)
	RequestsPerMinute int `json:"requests_per_minute"`
}

// FR24Config contains FlightRadar24 API settings.
type FR24Config struct {
	// BaseURL is the API base URL (empty = production endpoint)
	BaseURL string `json:"base_url"`

	// APIToken authenticates against the FR24 API
	// (should be loaded from environment)
	APIToken string `json:"api_token"`
}

// AviationStackConfig contains AviationStack API settings.
type AviationStackConfig struct {
	// BaseURL is the API base URL (empty = production endpoint)
	BaseURL string `json:"base_url"`

	// AccessKey authenticates against the AviationStack API
	AccessKey string `json:"access_key"`
}

// OpenAIConfig contains settings for the calming-message generator.
type OpenAIConfig struct {
	// APIKey authenticates against the OpenAI API
	APIKey string `json:"api_key"`

	// Model is the chat model to use (default: gpt-4o-mini)
	Model string `json:"model"`

	// Temperature is the sampling temperature (default: 0.7)
	Temperature float64 `json:"temperature"`
}

// AuthConfig contains optional bearer-token authentication settings.
// With Enabled false the API is open, matching the original deployment.
type AuthConfig struct {
	Enabled bool `json:"enabled"`

	// JWTSecret signs session tokens (should be loaded from environment)
	JWTSecret string `json:"jwt_secret"`

	// TokenDurationHours is how long issued tokens stay valid (default: 24)
	TokenDurationHours int `json:"token_duration_hours"`
}

// Load reads configuration from a JSON file. If the file doesn't exist,
// returns the default configuration. Environment variables override
// file values either way; a .env file is loaded first when present.
func Load(path string) (*Config, error) {
	// Best effort: missing .env just means plain environment variables
	_ = godotenv.Load()

	cfg := DefaultConfig()

	if _, err := os.Stat(path); err == nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.applyEnvironmentOverrides()
	return cfg, nil
}

// Save writes the configuration to a JSON file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// DefaultConfig returns a configuration with sensible defaults.
// The simulated provider is the default so the server works with no
// credentials at all.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8080",
			Host: "0.0.0.0",
		},
		Provider: ProviderConfig{
			Source:         SourceSimulated,
			TimeoutSeconds: 10,
		},
		OpenAI: OpenAIConfig{
			Model:       "gpt-4o-mini",
			Temperature: 0.7,
		},
		Auth: AuthConfig{
			Enabled:            false,
			TokenDurationHours: 24,
		},
	}
}

// applyEnvironmentOverrides applies environment variable overrides.
// This keeps credentials out of config files. FLIGHTRADARAPI_KEY is a
// legacy alias for FR24_API_TOKEN kept for older deployments.
func (c *Config) applyEnvironmentOverrides() {
	if port := os.Getenv("FLYRA_PORT"); port != "" {
		c.Server.Port = port
	}
	if source := os.Getenv("FLYRA_PROVIDER"); source != "" {
		c.Provider.Source = source
	}
	if token := os.Getenv("FR24_API_TOKEN"); token != "" {
		c.Provider.FR24.APIToken = token
	} else if token := os.Getenv("FLIGHTRADARAPI_KEY"); token != "" {
		c.Provider.FR24.APIToken = token
	}
	if key := os.Getenv("AVIATIONSTACK_KEY"); key != "" {
		c.Provider.AviationStack.AccessKey = key
	}
	if key := os.Getenv("OPENAI_KEY"); key != "" {
		c.OpenAI.APIKey = key
	}
	if secret := os.Getenv("FLYRA_JWT_SECRET"); secret != "" {
		c.Auth.JWTSecret = secret
		c.Auth.Enabled = true
	}
}
