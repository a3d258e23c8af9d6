// Package ai generates calming messages for anxious passengers from
// canonical flight records. Prompt assembly is deterministic string
// templating; the OpenAI chat-completions call is the only network
// dependency, treated as an opaque text generator.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	openaiBaseURL      = "https://api.openai.com/v1/chat/completions"
	defaultModel       = "gpt-4o-mini"
	defaultTemperature = 0.7
	defaultTimeout     = 30 * time.Second
)

// ErrMissingAPIKey is returned when no OpenAI credential is configured.
// The API layer maps it to a client-side configuration fault, not a
// server failure.
var ErrMissingAPIKey = errors.New("OPENAI_KEY not configured")

// GenerationError represents a failure from the text-generation
// upstream: transport errors, non-2xx statuses, or unusable responses.
type GenerationError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *GenerationError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("text generation failed (HTTP %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("text generation failed: %s", e.Message)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// Message is one turn of a chat conversation.
type Message struct {
	Role    string `json:"role"` // "system" or "user"
	Content string `json:"content"`
}

// Client calls the OpenAI chat completions API.
type Client struct {
	apiKey      string
	baseURL     string
	model       string
	temperature float64
	httpClient  *http.Client
}

// ClientConfig contains settings for the generation client.
type ClientConfig struct {
	APIKey  string
	BaseURL string
	Model   string

	// Temperature is the sampling temperature; nil means the 0.7
	// default. A pointer so an explicit 0 (deterministic sampling)
	// stays distinguishable from unset.
	Temperature *float64
}

// NewClient creates a chat-completions client. A missing API key is not
// an error here; calls fail with ErrMissingAPIKey so the server can
// start without AI credentials and only the AI endpoints degrade.
func NewClient(cfg ClientConfig) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = openaiBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	temperature := defaultTemperature
	if cfg.Temperature != nil {
		temperature = *cfg.Temperature
	}

	return &Client{
		apiKey:      cfg.APIKey,
		baseURL:     cfg.BaseURL,
		model:       cfg.Model,
		temperature: temperature,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// ChatCompletion sends an ordered message list to the model and returns
// the generated text unmodified.
func (c *Client) ChatCompletion(ctx context.Context, messages []Message) (string, error) {
	if c.apiKey == "" {
		return "", ErrMissingAPIKey
	}

	body, err := json.Marshal(chatRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: c.temperature,
	})
	if err != nil {
		return "", &GenerationError{Message: "marshal request: " + err.Error(), Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL, bytes.NewReader(body))
	if err != nil {
		return "", &GenerationError{Message: "create request: " + err.Error(), Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &GenerationError{Message: "http request: " + err.Error(), Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &GenerationError{Message: "read response: " + err.Error(), Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return "", &GenerationError{StatusCode: resp.StatusCode, Message: string(respBody)}
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", &GenerationError{Message: "parse response: " + err.Error(), Err: err}
	}
	if len(parsed.Choices) == 0 {
		return "", &GenerationError{Message: "response contained no choices"}
	}

	return parsed.Choices[0].Message.Content, nil
}

// SimpleChat sends a single user message with an optional system prompt.
func (c *Client) SimpleChat(ctx context.Context, userMessage, systemPrompt string) (string, error) {
	var messages []Message
	if systemPrompt != "" {
		messages = append(messages, Message{Role: "system", Content: systemPrompt})
	}
	messages = append(messages, Message{Role: "user", Content: userMessage})

	return c.ChatCompletion(ctx, messages)
}
