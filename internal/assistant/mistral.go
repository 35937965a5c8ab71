package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// --- Mistral API Configuration ---
const (
	mistralAPIURL = "https://api.mistral.ai/v1/chat/completions"
	mistralModel  = "mistral-large-latest"

	defaultTemperature = 0.7
	defaultTopP        = 0.9
)

// Sentinel errors for the external-call taxonomy. Callers branch with
// errors.Is to pick the right fallback path.
var (
	// ErrNoAPIKey means the credential is absent; the call was never attempted.
	ErrNoAPIKey = errors.New("api key not configured")

	// ErrBadResponse means the API answered with a non-2xx status.
	ErrBadResponse = errors.New("api returned error status")

	// ErrUnparsable means the API answered 2xx but the payload did not
	// machine-parse into the expected shape.
	ErrUnparsable = errors.New("unparsable api response")
)

// GenerateRequest is one chat-completion call. Timeout bounds the whole
// round trip; a failed call is terminal for that attempt, never retried.
type GenerateRequest struct {
	System      string
	User        string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

// Generator is the narrow seam over the text-generation API. The concrete
// client lives behind it so every fallback path can be unit-tested without
// network access.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (string, error)
	Available() bool
}

// --- Structs for Mistral API Request/Response ---

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatPayload struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
	TopP        float64       `json:"top_p"`
	Stream      bool          `json:"stream"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// MistralClient calls the Mistral chat-completions endpoint.
type MistralClient struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

// NewMistralClient builds a client. An empty apiKey is allowed; every call
// then fails fast with ErrNoAPIKey so callers take their fallback path.
func NewMistralClient(apiKey string) *MistralClient {
	return &MistralClient{
		apiKey:  apiKey,
		baseURL: mistralAPIURL,
		model:   mistralModel,
		client:  &http.Client{},
	}
}

// NewMistralClientWithBaseURL is used by tests to point at a fake server.
func NewMistralClientWithBaseURL(apiKey, baseURL string) *MistralClient {
	c := NewMistralClient(apiKey)
	c.baseURL = baseURL
	return c
}

// Available reports whether a credential is configured.
func (m *MistralClient) Available() bool {
	return m.apiKey != ""
}

// Generate performs one blocking chat-completion round trip.
func (m *MistralClient) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	if m.apiKey == "" {
		return "", fmt.Errorf("mistral: %w", ErrNoAPIKey)
	}

	temperature := req.Temperature
	if temperature == 0 {
		temperature = defaultTemperature
	}
	timeout := req.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	payload := chatPayload{
		Model: m.model,
		Messages: []chatMessage{
			{Role: "system", Content: req.System},
			{Role: "user", Content: req.User},
		},
		MaxTokens:   req.MaxTokens,
		Temperature: temperature,
		TopP:        defaultTopP,
		Stream:      false,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal payload: %w", err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(reqCtx, http.MethodPost, m.baseURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+m.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("mistral request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		log.Warn().Int("status", resp.StatusCode).Str("body", string(detail)).Msg("Mistral API call failed")
		return "", fmt.Errorf("mistral status %d: %w", resp.StatusCode, ErrBadResponse)
	}

	var decoded chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("failed to decode mistral response: %w", ErrUnparsable)
	}
	if len(decoded.Choices) == 0 {
		return "", fmt.Errorf("no choices in mistral response: %w", ErrUnparsable)
	}

	return strings.TrimSpace(decoded.Choices[0].Message.Content), nil
}
