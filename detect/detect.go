// Package detect guesses the source language of a text.
package detect

import (
	"errors"
	"strings"

	"github.com/ZaguanLabs/tlrun"
	"github.com/abadojack/whatlanggo"
)

// ErrUndetermined is returned when no language could be identified.
var ErrUndetermined = errors.New("language could not be determined")

// WhatLang detects languages with whatlanggo (trigram based, pure Go).
type WhatLang struct {
	// MinConfidence rejects detections below this score unless whatlanggo
	// itself flags them as reliable.
	MinConfidence float64
}

// NewWhatLang returns a detector with a permissive confidence threshold,
// so that short mail snippets still get a best guess.
func NewWhatLang() *WhatLang {
	return &WhatLang{MinConfidence: 0.05}
}

// Detect returns the ISO 639-1 code of text, or the ISO 639-3 code for
// languages without a two-letter code.
func (d *WhatLang) Detect(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrUndetermined
	}

	info := whatlanggo.Detect(text)
	if info.Lang < 0 {
		return "", ErrUndetermined
	}
	if !info.IsReliable() && info.Confidence < d.MinConfidence {
		return "", ErrUndetermined
	}

	code := info.Lang.Iso6391()
	if code == "" {
		code = info.Lang.Iso6393()
	}
	if code == "" {
		return "", ErrUndetermined
	}
	return code, nil
}

// Fixed always reports the same language. An empty Lang reports ErrUndetermined.
type Fixed struct {
	Lang string
}

// Detect implements tlrun.Detector.
func (f Fixed) Detect(string) (string, error) {
	if f.Lang == "" {
		return "", ErrUndetermined
	}
	return f.Lang, nil
}

var (
	_ tlrun.Detector = (*WhatLang)(nil)
	_ tlrun.Detector = Fixed{}
)
