package provider

import (
	"context"
	"fmt"
	"strings"
)

// MockProvider is a table-driven provider for tests.
type MockProvider struct {
	Translations map[string]string // Map of source text to translation
	Err          error             // Returned by every call when set
	CallCount    int
	LastRequest  *TranslateRequest
}

// NewMockProvider creates a new mock provider with default translations.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		Translations: map[string]string{
			"Hello":                "Hola",
			"World":                "Mundo",
			"Hello World":          "Hola Mundo",
			"Welcome to our site.": "Bienvenido a nuestro sitio.",
		},
	}
}

// Translate returns the table entry for each text, or the text in brackets.
func (m *MockProvider) Translate(ctx context.Context, req TranslateRequest) ([]string, error) {
	m.CallCount++
	m.LastRequest = &req

	if m.Err != nil {
		return nil, m.Err
	}

	results := make([]string, len(req.Texts))
	for i, text := range req.Texts {
		if translation, ok := m.Translations[text]; ok {
			results[i] = translation
		} else {
			results[i] = fmt.Sprintf("[%s]", text)
		}
	}
	return results, nil
}

// Reset resets the call count and last request.
func (m *MockProvider) Reset() {
	m.CallCount = 0
	m.LastRequest = nil
}

// Upper "translates" by uppercasing. The runners use it when
// TRANSLATE_FAKE_UPPERCASE=1 so integrations can be exercised without a backend.
type Upper struct{}

// Translate implements Provider.
func (Upper) Translate(ctx context.Context, req TranslateRequest) ([]string, error) {
	results := make([]string, len(req.Texts))
	for i, text := range req.Texts {
		results[i] = strings.ToUpper(text)
	}
	return results, nil
}

var (
	_ Provider = (*MockProvider)(nil)
	_ Provider = Upper{}
)
