package ai

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
)

const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com"
	DefaultModel   = "gemini-1.5-flash-latest"
)

// GeminiOptions configures a GeminiGateway. Zero values fall back to the defaults.
type GeminiOptions struct {
	APIKey  string
	BaseURL string
	Model   string
	// Timeout bounds the whole HTTP exchange. Zero leaves it to the caller's context.
	Timeout    time.Duration
	Config     *GenerationConfig
	HTTPClient *http.Client
}

// GeminiGateway calls the Gemini generateContent REST endpoint directly so that the
// upstream status and body are available verbatim on failure.
type GeminiGateway struct {
	apiKey   string
	endpoint string
	config   GenerationConfig
	client   *http.Client
}

// NewGeminiGateway builds the REST gateway. apiKey should be provided from the environment.
func NewGeminiGateway(opts GeminiOptions) (*GeminiGateway, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, fmt.Errorf("gemini: missing api key")
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	model := opts.Model
	if model == "" {
		model = DefaultModel
	}
	cfg := DefaultGenerationConfig
	if opts.Config != nil {
		cfg = *opts.Config
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}
	return &GeminiGateway{
		apiKey:   opts.APIKey,
		endpoint: fmt.Sprintf("%s/v1beta/models/%s:generateContent", baseURL, model),
		config:   cfg,
		client:   client,
	}, nil
}

// Generate posts the prompt as a single text part and returns the first reply part.
func (g *GeminiGateway) Generate(ctx context.Context, prompt string) (string, error) {
	reqBody, err := json.Marshal(generateRequest{
		Contents:         []content{{Parts: []part{{Text: prompt}}}},
		GenerationConfig: g.config,
	})
	if err != nil {
		return "", fmt.Errorf("gemini: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return "", fmt.Errorf("gemini: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return "", &GatewayError{Err: err}
	}
	defer resp.Body.Close()

	body, readErr := io.ReadAll(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		details := string(body)
		if readErr != nil {
			details = "Could not read error details."
		}
		return "", &GatewayError{
			Status: resp.StatusCode,
			Body:   details,
			Err:    fmt.Errorf("%s", http.StatusText(resp.StatusCode)),
		}
	}
	if readErr != nil {
		return "", &GatewayError{Status: resp.StatusCode, Err: fmt.Errorf("read response: %w", readErr)}
	}

	var env generateResponse
	if err := json.Unmarshal(body, &env); err != nil {
		return "", &GatewayError{Status: resp.StatusCode, Body: string(body), Err: errors.Join(ErrNoReply, err)}
	}
	text := env.text()
	if text == "" {
		return "", &GatewayError{Status: resp.StatusCode, Body: string(body), Err: ErrNoReply}
	}
	return text, nil
}
