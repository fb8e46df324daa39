package tlrun

import (
	"errors"
	"fmt"
)

// ErrEmptyInput is returned when a runner receives no input on stdin.
var ErrEmptyInput = errors.New("No input provided")

// TranslationError is the base error type for translation failures.
type TranslationError struct {
	Message string
	Cause   error
}

func (e *TranslationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *TranslationError) Unwrap() error {
	return e.Cause
}

// ProviderError indicates a translation backend failure (API error, rate limit, missing binary, etc.).
type ProviderError struct {
	Provider  string
	Message   string
	Cause     error
	Retryable bool // Whether the operation can be retried
}

func (e *ProviderError) Error() string {
	name := "provider"
	if e.Provider != "" {
		name = e.Provider
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s error: %s: %v", name, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s error: %s", name, e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// CacheError indicates a cache operation failure.
type CacheError struct {
	Message string
	Cause   error
}

func (e *CacheError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("cache error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("cache error: %s", e.Message)
}

func (e *CacheError) Unwrap() error {
	return e.Cause
}

// ProcessorError indicates a content processing failure (parse error, etc.).
type ProcessorError struct {
	Message     string
	Cause       error
	ContentType string
}

func (e *ProcessorError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("processor error (%s): %s: %v", e.ContentType, e.Message, e.Cause)
	}
	return fmt.Sprintf("processor error (%s): %s", e.ContentType, e.Message)
}

func (e *ProcessorError) Unwrap() error {
	return e.Cause
}

// CountMismatchError indicates a backend returned a different number of translations than requested.
type CountMismatchError struct {
	Expected int
	Got      int
}

func (e *CountMismatchError) Error() string {
	return fmt.Sprintf("translation count mismatch: expected %d, got %d", e.Expected, e.Got)
}

// ModelNotInstalledError indicates that no offline language package covers the pair.
type ModelNotInstalledError struct {
	From string
	To   string
	// AutoInstall reports whether an on-demand install was attempted.
	AutoInstall bool
	Cause       error
}

func (e *ModelNotInstalledError) Error() string {
	msg := fmt.Sprintf("model %s → %s not installed", e.From, e.To)
	if !e.AutoInstall {
		msg += " (auto-download is disabled)"
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *ModelNotInstalledError) Unwrap() error {
	return e.Cause
}

// UnsupportedProviderError is returned for an unknown provider name.
type UnsupportedProviderError struct {
	Name string
}

func (e *UnsupportedProviderError) Error() string {
	return fmt.Sprintf("Unsupported provider: %s", e.Name)
}
