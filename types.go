package tlrun

// AutoLang is passed to online providers when the source language could not be detected.
const AutoLang = "auto"

// Content types understood by the Translator.
const (
	ContentTypeText = "text"
	ContentTypeHTML = "html"
)

// Request is a single translation request, alive for one process invocation.
type Request struct {
	Text       string
	TargetLang string // ISO 639-1 target code
	SourceLang string // Optional; detected when empty
	IsHTML     bool
}

// Result is what a runner prints on stdout.
type Result struct {
	Translated string `json:"translated"`
	Error      string `json:"error,omitempty"`
	Stats      Stats  `json:"-"`
}

// Stats describes what happened while serving a Request.
type Stats struct {
	SourceLang      string
	Skipped         bool // No translator was invoked
	TotalNodes      int
	TranslatedCount int
	CachedCount     int
	FailedCount     int
}

// TextNode represents a translatable unit of content.
type TextNode struct {
	ID       string            // Position-based identifier ("node-3")
	Text     string            // Original text content (trimmed)
	Hash     string            // SHA-256 hash of Text
	NodeType string            // Content type: "html_text"
	Metadata map[string]string // Additional info (parent tag)
}

// ProcessedContent is the result of a translation operation.
type ProcessedContent struct {
	Content         string // Translated content
	TranslatedCount int    // Number of newly translated items
	CachedCount     int    // Number of cache hits
	FailedCount     int    // Number of items left untranslated after a failure
	TotalNodes      int    // Total translatable nodes found
}

// IgnoredTags contains HTML tags whose content should not be translated.
var IgnoredTags = map[string]bool{
	"script":   true,
	"style":    true,
	"code":     true,
	"pre":      true,
	"textarea": true,
	"noscript": true,
}
