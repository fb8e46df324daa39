// Package processor extracts translatable text from structured content and
// splices translations back in. HTML is the only structured format; plain
// text goes to the provider as a single string.
package processor

import "github.com/ZaguanLabs/tlrun"

// WithHTML registers an HTMLProcessor on a translator. Text inside the
// extra tags is left alone on top of tlrun.IgnoredTags.
func WithHTML(extraIgnored ...string) tlrun.TranslatorOption {
	return tlrun.WithProcessor(NewHTMLProcessorIgnoring(extraIgnored...))
}

// NewHTMLProcessorIgnoring returns an HTMLProcessor that skips the default
// ignored tags and extra.
func NewHTMLProcessorIgnoring(extra ...string) *HTMLProcessor {
	if len(extra) == 0 {
		return NewHTMLProcessor()
	}
	tags := make([]string, 0, len(tlrun.IgnoredTags)+len(extra))
	for tag := range tlrun.IgnoredTags {
		tags = append(tags, tag)
	}
	return NewHTMLProcessorWithIgnoredTags(append(tags, extra...))
}
