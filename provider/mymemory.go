package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ZaguanLabs/tlrun"
	"go.uber.org/zap"
)

const (
	// DefaultMyMemoryURL is the MyMemory lookup endpoint.
	DefaultMyMemoryURL = "https://api.mymemory.translated.net/get"

	// MyMemoryMaxChars is the per-request text limit of the free tier.
	MyMemoryMaxChars = 500

	// DefaultChunkDelay separates consecutive sentence chunks.
	DefaultChunkDelay = 200 * time.Millisecond

	sentenceSep = ". "
)

// MyMemory translates through the MyMemory API.
type MyMemory struct {
	endpoint   string
	email      string
	client     *http.Client
	chunkDelay time.Duration
	logger     *zap.Logger
}

// NewMyMemory creates a MyMemory provider. Options.APIKey, when set, is sent
// as the "de" contact address that raises the daily quota.
func NewMyMemory(opts Options) *MyMemory {
	endpoint := opts.BaseURL
	if endpoint == "" {
		endpoint = DefaultMyMemoryURL
	}
	delay := opts.ChunkDelay
	if delay == 0 {
		delay = DefaultChunkDelay
	}
	return &MyMemory{
		endpoint:   endpoint,
		email:      opts.APIKey,
		client:     opts.httpClient(),
		chunkDelay: delay,
		logger:     opts.logger(),
	}
}

// Translate translates each text, splitting texts over the length limit
// into sentences that are translated one after another.
func (m *MyMemory) Translate(ctx context.Context, req TranslateRequest) ([]string, error) {
	results := make([]string, len(req.Texts))
	for i, text := range req.Texts {
		var (
			out string
			err error
		)
		if len([]rune(text)) > MyMemoryMaxChars {
			out, err = m.translateChunked(ctx, text, req.SourceLang, req.TargetLang)
		} else {
			out, err = m.translate(ctx, text, req.SourceLang, req.TargetLang)
		}
		if err != nil {
			return nil, err
		}
		results[i] = out
	}
	return results, nil
}

// translateChunked splits on ". ", drops empty pieces and re-joins the
// translated pieces with ". ".
func (m *MyMemory) translateChunked(ctx context.Context, text, source, target string) (string, error) {
	sentences := SplitSentences(text)
	m.logger.Debug("mymemory chunked translation", zap.Int("chunks", len(sentences)))

	translated := make([]string, 0, len(sentences))
	for i, sentence := range sentences {
		if i > 0 {
			if err := sleep(ctx, m.chunkDelay); err != nil {
				return "", err
			}
		}
		out, err := m.translate(ctx, sentence, source, target)
		if err != nil {
			return "", err
		}
		translated = append(translated, out)
	}
	return strings.Join(translated, sentenceSep), nil
}

// SplitSentences splits text on ". " and drops empty pieces.
func SplitSentences(text string) []string {
	var out []string
	for _, s := range strings.Split(text, sentenceSep) {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

type myMemoryResponse struct {
	ResponseData struct {
		TranslatedText string `json:"translatedText"`
	} `json:"responseData"`
	ResponseStatus  json.RawMessage `json:"responseStatus"`
	ResponseDetails string          `json:"responseDetails"`
}

// status reads responseStatus, which the API sends as a number or a string.
func (r *myMemoryResponse) status() int {
	raw := strings.Trim(string(r.ResponseStatus), `"`)
	if raw == "" {
		return http.StatusOK
	}
	code, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return code
}

func (m *MyMemory) translate(ctx context.Context, text, source, target string) (string, error) {
	if source == "" || source == tlrun.AutoLang {
		source = "autodetect"
	}

	q := url.Values{}
	q.Set("q", text)
	q.Set("langpair", source+"|"+target)
	if m.email != "" {
		q.Set("de", m.email)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return "", &tlrun.ProviderError{Provider: "mymemory", Message: "building request", Cause: err}
	}

	var resp myMemoryResponse
	if err := doJSON(m.client, "mymemory", req, &resp); err != nil {
		return "", err
	}

	if code := resp.status(); code != http.StatusOK {
		msg := fmt.Sprintf("status %d", code)
		if resp.ResponseDetails != "" {
			msg += ": " + resp.ResponseDetails
		}
		return "", &tlrun.ProviderError{
			Provider:  "mymemory",
			Message:   msg,
			Retryable: code == http.StatusTooManyRequests || code >= 500,
		}
	}
	return resp.ResponseData.TranslatedText, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

var _ Provider = (*MyMemory)(nil)
