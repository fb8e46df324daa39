package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"

	"github.com/ZaguanLabs/tlrun"
)

const maxErrorBody = 512

// doJSON sends req and decodes a successful JSON response into out.
// 429, 5xx and transport failures come back as retryable ProviderErrors.
func doJSON(client *http.Client, provider string, req *http.Request, out interface{}) error {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", tlrun.UserAgent())

	resp, err := client.Do(req)
	if err != nil {
		return &tlrun.ProviderError{
			Provider:  provider,
			Message:   "request failed",
			Cause:     err,
			Retryable: isTransient(err),
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return statusError(provider, resp.StatusCode, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &tlrun.ProviderError{
			Provider: provider,
			Message:  "invalid response",
			Cause:    err,
		}
	}
	return nil
}

func statusError(provider string, code int, body []byte) error {
	msg := fmt.Sprintf("HTTP %d", code)
	if detail := errorDetail(body); detail != "" {
		msg += ": " + detail
	}
	return &tlrun.ProviderError{
		Provider:  provider,
		Message:   msg,
		Retryable: code == http.StatusTooManyRequests || code >= 500,
	}
}

// errorDetail pulls a message out of a JSON error body, or returns the body text.
func errorDetail(body []byte) string {
	var payload struct {
		Error   interface{} `json:"error"`
		Message string      `json:"message"`
	}
	if json.Unmarshal(body, &payload) == nil {
		switch v := payload.Error.(type) {
		case string:
			return v
		case map[string]interface{}:
			if m, ok := v["message"].(string); ok {
				return m
			}
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	return strings.TrimSpace(string(body))
}

func isTransient(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, context.DeadlineExceeded)
}
