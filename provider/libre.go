package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/ZaguanLabs/tlrun"
	"go.uber.org/zap"
)

// DefaultLibreURL is the public LibreTranslate instance.
const DefaultLibreURL = "https://libretranslate.com"

// Libre translates through a LibreTranslate server.
type Libre struct {
	baseURL string
	apiKey  string
	client  *http.Client
	logger  *zap.Logger
}

// NewLibre creates a LibreTranslate provider for Options.BaseURL, or the
// public instance when it is empty.
func NewLibre(opts Options) *Libre {
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = DefaultLibreURL
	}
	return &Libre{baseURL: base, apiKey: opts.APIKey, client: opts.httpClient(), logger: opts.logger()}
}

type libreRequest struct {
	Q      []string `json:"q"`
	Source string   `json:"source"`
	Target string   `json:"target"`
	Format string   `json:"format"`
	APIKey string   `json:"api_key,omitempty"`
}

type libreResponse struct {
	TranslatedText json.RawMessage `json:"translatedText"`
}

// Translate sends all texts in one request.
func (l *Libre) Translate(ctx context.Context, req TranslateRequest) ([]string, error) {
	if len(req.Texts) == 0 {
		return []string{}, nil
	}

	source := req.SourceLang
	if source == "" {
		source = tlrun.AutoLang
	}
	format := "text"
	if req.IsHTML {
		format = "html"
	}

	body, err := json.Marshal(libreRequest{
		Q:      req.Texts,
		Source: source,
		Target: req.TargetLang,
		Format: format,
		APIKey: l.apiKey,
	})
	if err != nil {
		return nil, &tlrun.ProviderError{Provider: "libre", Message: "encoding request", Cause: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, l.baseURL+"/translate", bytes.NewReader(body))
	if err != nil {
		return nil, &tlrun.ProviderError{Provider: "libre", Message: "building request", Cause: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	var resp libreResponse
	if err := doJSON(l.client, "libre", httpReq, &resp); err != nil {
		return nil, err
	}

	results, err := decodeLibreText(resp.TranslatedText)
	if err != nil {
		return nil, err
	}
	if len(results) != len(req.Texts) {
		return nil, &tlrun.CountMismatchError{Expected: len(req.Texts), Got: len(results)}
	}
	l.logger.Debug("libre translated", zap.Int("texts", len(results)))
	return results, nil
}

// decodeLibreText accepts both the array form and the single-string form
// older servers return.
func decodeLibreText(raw json.RawMessage) ([]string, error) {
	var many []string
	if err := json.Unmarshal(raw, &many); err == nil {
		return many, nil
	}
	var one string
	if err := json.Unmarshal(raw, &one); err == nil {
		return []string{one}, nil
	}
	return nil, &tlrun.ProviderError{Provider: "libre", Message: "invalid translatedText in response"}
}

var _ Provider = (*Libre)(nil)
