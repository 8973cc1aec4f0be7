package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// SDKGateway implements Gateway on top of Google's generative-ai-go client. It talks
// to the same Gemini model and reports failures with the same GatewayError values as
// GeminiGateway.
type SDKGateway struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewSDKGateway initializes a Gemini SDK client for the given model.
func NewSDKGateway(ctx context.Context, apiKey, modelName string, cfg GenerationConfig) (*SDKGateway, error) {
	if modelName == "" {
		modelName = DefaultModel
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(cfg.Temperature)
	model.SetTopK(cfg.TopK)
	model.SetTopP(cfg.TopP)
	model.SetMaxOutputTokens(cfg.MaxOutputTokens)

	return &SDKGateway{client: client, model: model}, nil
}

// Close cleans up the Gemini client resources.
func (g *SDKGateway) Close() error {
	return g.client.Close()
}

func (g *SDKGateway) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", sdkError(err)
	}

	if text := firstText(resp); text != "" {
		return text, nil
	}
	envelope, _ := json.Marshal(resp)
	return "", &GatewayError{Status: http.StatusOK, Body: string(envelope), Err: ErrNoReply}
}

// firstText mirrors the REST path candidates[0].content.parts[0].text.
func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	parts := resp.Candidates[0].Content.Parts
	if len(parts) == 0 {
		return ""
	}
	txt, ok := parts[0].(genai.Text)
	if !ok {
		return ""
	}
	return string(txt)
}

func sdkError(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return &GatewayError{Status: apiErr.Code, Body: apiErr.Body, Err: err}
	}
	// A blocked prompt or candidate is a successful call without usable text.
	var blocked *genai.BlockedError
	if errors.As(err, &blocked) {
		return &GatewayError{Status: http.StatusOK, Body: blocked.Error(), Err: errors.Join(ErrNoReply, err)}
	}
	return &GatewayError{Err: err}
}
