package provider

import (
	"context"
	"errors"
	"net/http"

	"github.com/ZaguanLabs/tlrun"
	"google.golang.org/genai"
)

// GeminiProvider translates with Google Gemini.
type GeminiProvider struct {
	client      *genai.Client
	model       string
	temperature float32
}

// GeminiConfig holds configuration for the Gemini provider.
type GeminiConfig struct {
	APIKey      string // Resolved by the caller, e.g. from GEMINI_API_KEY
	Model       string // Default: "gemini-2.5-flash"
	Temperature float32
	BaseURL     string // Test server override
}

// NewGemini creates a Gemini provider.
func NewGemini(ctx context.Context, cfg GeminiConfig) (*GeminiProvider, error) {
	if cfg.APIKey == "" {
		return nil, &tlrun.ProviderError{Provider: "gemini", Message: "API key is required"}
	}

	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, &tlrun.ProviderError{Provider: "gemini", Message: "creating client", Cause: err}
	}

	model := cfg.Model
	if model == "" {
		model = "gemini-2.5-flash"
	}
	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = 0.3
	}

	return &GeminiProvider{client: client, model: model, temperature: temperature}, nil
}

// Translate translates a batch of texts in one generation call.
func (p *GeminiProvider) Translate(ctx context.Context, req TranslateRequest) ([]string, error) {
	if len(req.Texts) == 0 {
		return []string{}, nil
	}

	resp, err := p.client.Models.GenerateContent(ctx, p.model,
		genai.Text(buildUserMessage(req)),
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(buildSystemPrompt(req), genai.RoleUser),
			ResponseMIMEType:  "application/json",
			Temperature:       genai.Ptr(p.temperature),
		},
	)
	if err != nil {
		return nil, &tlrun.ProviderError{
			Provider:  "gemini",
			Message:   "API call failed",
			Cause:     err,
			Retryable: isRetryableGeminiError(err),
		}
	}

	text := resp.Text()
	if text == "" {
		return nil, &tlrun.ProviderError{
			Provider:  "gemini",
			Message:   "empty response",
			Retryable: true,
		}
	}

	return parseTranslations("gemini", text, len(req.Texts))
}

func isRetryableGeminiError(err error) bool {
	var apiErr *genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= 500
	}
	return isRetryableMessage(err)
}

var _ Provider = (*GeminiProvider)(nil)
