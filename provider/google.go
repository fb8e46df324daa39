package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ZaguanLabs/tlrun"
	"go.uber.org/zap"
)

// DefaultGoogleURL is the keyless Google Translate endpoint.
const DefaultGoogleURL = "https://translate.googleapis.com/translate_a/single"

// Google translates through the public Google Translate endpoint. It needs
// no API key and detects the source itself when given tlrun.AutoLang.
type Google struct {
	endpoint string
	client   *http.Client
	logger   *zap.Logger
}

// NewGoogle creates a Google provider.
func NewGoogle(opts Options) *Google {
	endpoint := opts.BaseURL
	if endpoint == "" {
		endpoint = DefaultGoogleURL
	}
	return &Google{endpoint: endpoint, client: opts.httpClient(), logger: opts.logger()}
}

// Translate sends one request per text.
func (g *Google) Translate(ctx context.Context, req TranslateRequest) ([]string, error) {
	results := make([]string, len(req.Texts))
	for i, text := range req.Texts {
		out, err := g.translate(ctx, text, req.SourceLang, req.TargetLang)
		if err != nil {
			return nil, err
		}
		results[i] = out
	}
	return results, nil
}

func (g *Google) translate(ctx context.Context, text, source, target string) (string, error) {
	if source == "" {
		source = tlrun.AutoLang
	}

	q := url.Values{}
	q.Set("client", "gtx")
	q.Set("sl", source)
	q.Set("tl", target)
	q.Set("dt", "t")
	q.Set("q", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return "", &tlrun.ProviderError{Provider: "google", Message: "building request", Cause: err}
	}

	// [[["Hola","Hello",null,null,10],...],null,"en",...]
	var payload []interface{}
	if err := doJSON(g.client, "google", req, &payload); err != nil {
		return "", err
	}

	out, err := joinGoogleSegments(payload)
	if err != nil {
		return "", err
	}
	g.logger.Debug("google translated", zap.Int("chars", len(text)))
	return out, nil
}

func joinGoogleSegments(payload []interface{}) (string, error) {
	if len(payload) == 0 {
		return "", &tlrun.ProviderError{Provider: "google", Message: "empty response"}
	}
	segments, ok := payload[0].([]interface{})
	if !ok {
		return "", &tlrun.ProviderError{
			Provider: "google",
			Message:  fmt.Sprintf("unexpected response shape %T", payload[0]),
		}
	}

	var b strings.Builder
	for _, s := range segments {
		seg, ok := s.([]interface{})
		if !ok || len(seg) == 0 {
			continue
		}
		if text, ok := seg[0].(string); ok {
			b.WriteString(text)
		}
	}
	return b.String(), nil
}

var _ Provider = (*Google)(nil)
