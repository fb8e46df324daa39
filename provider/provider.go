// Package provider implements the remote translation backends.
package provider

import (
	"context"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/ZaguanLabs/tlrun"
	"go.uber.org/zap"
)

// Provider is an alias to the main package interface for convenience.
type Provider = tlrun.Provider

// TranslateRequest is an alias to the main package type.
type TranslateRequest = tlrun.TranslateRequest

// Options configures a provider built by New. Zero values select each
// provider's defaults.
type Options struct {
	APIKey     string
	BaseURL    string // Endpoint override (LibreTranslate instance, OpenAI-compatible server, test server)
	Model      string // LLM providers only
	HTTPClient *http.Client
	ChunkDelay time.Duration // MyMemory pause between sentence chunks
	Logger     *zap.Logger
}

const defaultTimeout = 30 * time.Second

func (o Options) httpClient() *http.Client {
	if o.HTTPClient != nil {
		return o.HTTPClient
	}
	return &http.Client{Timeout: defaultTimeout}
}

func (o Options) logger() *zap.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return zap.NewNop()
}

type factory func(ctx context.Context, opts Options) (Provider, error)

var registry = map[string]factory{
	"google": func(_ context.Context, o Options) (Provider, error) { return NewGoogle(o), nil },
	"mymemory": func(_ context.Context, o Options) (Provider, error) {
		return NewMyMemory(o), nil
	},
	"libre": func(_ context.Context, o Options) (Provider, error) { return NewLibre(o), nil },
	"openai": func(_ context.Context, o Options) (Provider, error) {
		return NewOpenAI(OpenAIConfig{APIKey: o.APIKey, Model: o.Model, BaseURL: o.BaseURL}), nil
	},
	"gemini": func(ctx context.Context, o Options) (Provider, error) {
		return NewGemini(ctx, GeminiConfig{APIKey: o.APIKey, Model: o.Model, BaseURL: o.BaseURL})
	},
	"upper": func(context.Context, Options) (Provider, error) { return Upper{}, nil },
	"mock":  func(context.Context, Options) (Provider, error) { return NewMockProvider(), nil },
}

// New builds the named provider. Names are case-insensitive.
func New(ctx context.Context, name string, opts Options) (Provider, error) {
	f, ok := registry[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, &tlrun.UnsupportedProviderError{Name: name}
	}
	return f(ctx, opts)
}

// Names lists the provider names accepted by New.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
