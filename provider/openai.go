package provider

import (
	"context"
	"errors"
	"net/http"

	"github.com/ZaguanLabs/tlrun"
	"github.com/sashabaranov/go-openai"
)

// OpenAIProvider translates with OpenAI chat completions.
type OpenAIProvider struct {
	client      *openai.Client
	model       string
	temperature float32
}

// OpenAIConfig holds configuration for the OpenAI provider.
type OpenAIConfig struct {
	APIKey      string  // Resolved by the caller, e.g. from OPENAI_API_KEY
	Model       string  // Default: "gpt-4o-mini"
	Temperature float32 // Default: 0.3
	BaseURL     string  // OpenAI-compatible server (optional)
}

// NewOpenAI creates a new OpenAI provider.
func NewOpenAI(cfg OpenAIConfig) *OpenAIProvider {
	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}

	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = 0.3
	}

	return &OpenAIProvider{
		client:      openai.NewClientWithConfig(config),
		model:       model,
		temperature: temperature,
	}
}

// Translate translates a batch of texts in one completion.
func (p *OpenAIProvider) Translate(ctx context.Context, req TranslateRequest) ([]string, error) {
	if len(req.Texts) == 0 {
		return []string{}, nil
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: buildSystemPrompt(req)},
			{Role: openai.ChatMessageRoleUser, Content: buildUserMessage(req)},
		},
		Temperature: p.temperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, &tlrun.ProviderError{
			Provider:  "openai",
			Message:   "API call failed",
			Cause:     err,
			Retryable: isRetryableOpenAIError(err),
		}
	}

	if len(resp.Choices) == 0 {
		return nil, &tlrun.ProviderError{
			Provider:  "openai",
			Message:   "no response choices",
			Retryable: true,
		}
	}

	return parseTranslations("openai", resp.Choices[0].Message.Content, len(req.Texts))
}

func isRetryableOpenAIError(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == http.StatusTooManyRequests || apiErr.HTTPStatusCode >= 500
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode == http.StatusTooManyRequests || reqErr.HTTPStatusCode >= 500
	}
	return isRetryableMessage(err)
}

var _ Provider = (*OpenAIProvider)(nil)
