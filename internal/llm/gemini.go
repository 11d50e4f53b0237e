package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"
)

// geminiTopK matches the generation config the service has always used
// with Gemini models.
const geminiTopK = 40

// GeminiProvider implements Provider using the Google Gemini SDK.
type GeminiProvider struct {
	client *genai.Client
}

// NewGeminiProvider creates a Gemini provider for the given API key.
func NewGeminiProvider(ctx context.Context, apiKey string) (*GeminiProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create Gemini client: %w", err)
	}
	return &GeminiProvider{client: client}, nil
}

func (p *GeminiProvider) Generate(ctx context.Context, model string, req Request) (string, error) {
	config := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(req.MaxTokens),
	}
	if req.Temperature > 0 {
		temp := req.Temperature
		config.Temperature = &temp
	}
	if req.TopP > 0 {
		topP := req.TopP
		config.TopP = &topP
	}
	topK := float32(geminiTopK)
	config.TopK = &topK
	if req.System != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: req.System}},
		}
	}

	result, err := p.client.Models.GenerateContent(ctx, model, genai.Text(req.Prompt), config)
	if err != nil {
		return "", mapGeminiError(model, err)
	}
	return result.Text(), nil
}

// ListModels enumerates generation-capable Gemini models. Model names come
// back as "models/gemini-..."; the prefix is stripped so IDs match what
// GenerateContent expects.
func (p *GeminiProvider) ListModels(ctx context.Context) ([]string, error) {
	var ids []string
	for m, err := range p.client.Models.All(ctx) {
		if err != nil {
			return nil, fmt.Errorf("list Gemini models: %w", err)
		}
		name := strings.TrimPrefix(m.Name, "models/")
		if !supportsGeneration(m.SupportedActions, name) {
			continue
		}
		ids = append(ids, name)
	}
	return ids, nil
}

func (p *GeminiProvider) Name() string { return "gemini" }

// supportsGeneration keeps models that advertise generateContent. Some API
// versions omit the actions list entirely, so gemini-named chat models are
// accepted on name alone while embedding and aqa models are dropped.
func supportsGeneration(actions []string, name string) bool {
	for _, a := range actions {
		if a == "generateContent" {
			return true
		}
	}
	if len(actions) > 0 {
		return false
	}
	if strings.Contains(name, "embedding") || strings.Contains(name, "aqa") {
		return false
	}
	return strings.Contains(name, "gemini")
}

func mapGeminiError(model string, err error) error {
	var apiErr *genai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == http.StatusTooManyRequests:
			return &ErrRateLimit{Model: model, Err: err}
		case apiErr.Code == http.StatusNotFound:
			return &ErrModelNotFound{Model: model, Err: err}
		case apiErr.Code >= 500:
			return &ErrUnavailable{Err: err}
		}
	}
	return fmt.Errorf("gemini generate: %w", err)
}
