package tlrun

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// Provider is the interface for translation backends, offline or remote.
type Provider interface {
	Translate(ctx context.Context, req TranslateRequest) ([]string, error)
}

// TranslateRequest contains the parameters for a translation request.
type TranslateRequest struct {
	Texts      []string
	SourceLang string // ISO 639-1 code or AutoLang
	TargetLang string
	IsHTML     bool // Texts are raw HTML (fallback path only)
}

// Preparer makes sure a backend can serve a language pair before any text is sent.
// The offline engine uses it to check for, and optionally install, language packages.
type Preparer interface {
	Prepare(ctx context.Context, sourceLang, targetLang string) error
}

// Detector guesses the language of a text and returns its ISO 639-1 code.
type Detector interface {
	Detect(text string) (string, error)
}

// TranslationCache is the interface for translation caching.
type TranslationCache interface {
	Get(key string) (string, bool)
	Set(key string, value string) error
}

// ContentProcessor is the interface for content processing.
type ContentProcessor interface {
	Extract(content string) (interface{}, []TextNode, error)
	Apply(parsed interface{}, nodes []TextNode, translations map[string]string) (string, error)
	ContentType() string
}

// TextExtractor is implemented by processors that can reduce content to
// plain text for language detection.
type TextExtractor interface {
	PlainText(content string) (string, error)
}

// Translator is the main translation engine.
type Translator struct {
	targetLang     string
	sourceLang     string
	autoSource     bool
	provider       Provider
	preparer       Preparer
	detector       Detector
	cache          TranslationCache
	cacheNamespace string
	processors     map[string]ContentProcessor
	breaker        *gobreaker.CircuitBreaker
	logger         *zap.Logger
}

// TranslatorOption is a functional option for configuring the Translator.
type TranslatorOption func(*Translator)

// WithSourceLang fixes the source language and disables detection.
func WithSourceLang(lang string) TranslatorOption {
	return func(t *Translator) {
		t.sourceLang = lang
	}
}

// WithAutoSource makes an undetected source language fall through to the
// provider as AutoLang instead of skipping translation. Remote providers
// detect the language themselves; the offline engine cannot.
func WithAutoSource(enabled bool) TranslatorOption {
	return func(t *Translator) {
		t.autoSource = enabled
	}
}

// WithDetector sets the source language detector.
func WithDetector(d Detector) TranslatorOption {
	return func(t *Translator) {
		t.detector = d
	}
}

// WithPreparer sets the language pair preparer.
func WithPreparer(p Preparer) TranslatorOption {
	return func(t *Translator) {
		t.preparer = p
	}
}

// WithCache sets the translation cache.
func WithCache(cache TranslationCache) TranslatorOption {
	return func(t *Translator) {
		t.cache = cache
	}
}

// WithCacheNamespace sets the backend name that is part of every cache key.
func WithCacheNamespace(ns string) TranslatorOption {
	return func(t *Translator) {
		t.cacheNamespace = ns
	}
}

// WithProcessor registers a content processor.
func WithProcessor(processor ContentProcessor) TranslatorOption {
	return func(t *Translator) {
		t.processors[processor.ContentType()] = processor
	}
}

// WithBreaker replaces the circuit breaker guarding per-node fallback calls.
func WithBreaker(cb *gobreaker.CircuitBreaker) TranslatorOption {
	return func(t *Translator) {
		t.breaker = cb
	}
}

// WithLogger sets the debug logger.
func WithLogger(logger *zap.Logger) TranslatorOption {
	return func(t *Translator) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// NewNodeBreaker returns the default breaker for per-node fallback calls:
// it opens after five consecutive failures so a dead backend is not called
// once per remaining text node.
func NewNodeBreaker() *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name: "per-node",
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})
}

// NewTranslator creates a new Translator with the given default target language and provider.
func NewTranslator(targetLang string, provider Provider, opts ...TranslatorOption) *Translator {
	t := &Translator{
		targetLang:     targetLang,
		provider:       provider,
		cacheNamespace: "default",
		processors:     make(map[string]ContentProcessor),
		breaker:        NewNodeBreaker(),
		logger:         zap.NewNop(),
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// Translate serves one request. It never fails: any error is reported in
// Result.Error while Result.Translated carries the original text.
func (t *Translator) Translate(ctx context.Context, req Request) (res Result) {
	target := req.TargetLang
	if target == "" {
		target = t.targetLang
	}
	target = strings.TrimSpace(target)

	res.Translated = req.Text
	log := t.logger.With(zap.String("target", target), zap.Bool("html", req.IsHTML))
	log.Debug("translate request",
		zap.Int("input_length", len(req.Text)),
		zap.String("input_preview", preview(req.Text)))

	defer func() {
		if r := recover(); r != nil {
			log.Error("panic during translation", zap.Any("panic", r))
			res = Result{Translated: req.Text, Error: fmt.Sprintf("Unexpected exception: %v", r)}
		}
	}()

	if strings.TrimSpace(req.Text) == "" {
		res.Stats.Skipped = true
		return res
	}

	source := req.SourceLang
	if source == "" {
		source = t.sourceLang
	}
	if source == "" {
		source = RemapDetected(t.detectSource(req, log))
	} else {
		source = BaseLang(source)
	}
	res.Stats.SourceLang = source

	if source == "" {
		if !t.autoSource {
			log.Debug("no translation needed", zap.String("reason", "source language unknown"))
			res.Stats.Skipped = true
			return res
		}
		source = AutoLang
	}

	if SameLanguage(source, target) {
		log.Debug("no translation needed", zap.String("from", source))
		res.Stats.Skipped = true
		return res
	}

	if t.preparer != nil {
		if err := t.preparer.Prepare(ctx, source, target); err != nil {
			log.Warn("language pair unavailable", zap.String("from", source), zap.Error(err))
			res.Error = err.Error()
			return res
		}
	}

	contentType := ContentTypeText
	if req.IsHTML {
		contentType = ContentTypeHTML
	}

	pc, err := t.process(ctx, req.Text, contentType, source, target)
	if err != nil {
		log.Warn("translation failed", zap.Error(err))
		res.Error = err.Error()
		return res
	}

	res.Translated = pc.Content
	res.Stats.TotalNodes = pc.TotalNodes
	res.Stats.TranslatedCount = pc.TranslatedCount
	res.Stats.CachedCount = pc.CachedCount
	res.Stats.FailedCount = pc.FailedCount

	log.Debug("translation done",
		zap.Int("output_length", len(pc.Content)),
		zap.String("output_preview", preview(pc.Content)),
		zap.Int("nodes", pc.TotalNodes),
		zap.Int("failed", pc.FailedCount))
	return res
}

// Process translates content of the specified type from the configured
// source language into the default target language.
func (t *Translator) Process(ctx context.Context, content string, contentType string) (*ProcessedContent, error) {
	if t.IsSourceLang() {
		return &ProcessedContent{Content: content}, nil
	}
	source := BaseLang(t.sourceLang)
	if source == "" {
		source = AutoLang
	}
	return t.process(ctx, content, contentType, source, strings.TrimSpace(t.targetLang))
}

// ProcessHTML is a convenience method for processing HTML content.
func (t *Translator) ProcessHTML(ctx context.Context, html string) (*ProcessedContent, error) {
	return t.Process(ctx, html, ContentTypeHTML)
}

func (t *Translator) process(ctx context.Context, content, contentType, source, target string) (*ProcessedContent, error) {
	if contentType == ContentTypeText {
		return t.processText(ctx, content, source, target, false)
	}

	processor, ok := t.processors[contentType]
	if !ok {
		return nil, &ProcessorError{
			Message:     "no processor registered for content type",
			ContentType: contentType,
		}
	}

	parsed, nodes, err := processor.Extract(content)
	if err != nil {
		t.logger.Warn("structured translation failed, falling back to plain translation", zap.Error(err))
		return t.processText(ctx, content, source, target, true)
	}

	if len(nodes) == 0 {
		return &ProcessedContent{Content: content}, nil
	}

	translations, stats := t.translateNodes(ctx, nodes, source, target)

	result, err := processor.Apply(parsed, nodes, translations)
	if err != nil {
		t.logger.Warn("structured translation failed, falling back to plain translation", zap.Error(err))
		return t.processText(ctx, content, source, target, true)
	}

	stats.Content = result
	stats.TotalNodes = len(nodes)
	return stats, nil
}

// processText translates content as one unstructured string.
func (t *Translator) processText(ctx context.Context, content, source, target string, isHTML bool) (*ProcessedContent, error) {
	hash := HashText(content)
	if cached, ok := t.cacheGet(hash, source, target); ok {
		return &ProcessedContent{Content: cached, CachedCount: 1, TotalNodes: 1}, nil
	}

	if t.provider == nil {
		return nil, &TranslationError{Message: "no translation backend configured"}
	}

	out, err := t.translateOne(ctx, content, source, target, isHTML)
	if err != nil {
		return nil, err
	}
	t.cacheSet(hash, source, target, out)

	return &ProcessedContent{Content: out, TranslatedCount: 1, TotalNodes: 1}, nil
}

// translateNodes translates nodes in one batch, using the cache where
// possible. When the batch call fails every node is retried on its own; a
// node that still fails is left out of the map and keeps its original text.
func (t *Translator) translateNodes(ctx context.Context, nodes []TextNode, source, target string) (map[string]string, *ProcessedContent) {
	translations := make(map[string]string)
	stats := &ProcessedContent{}
	var misses []TextNode
	seen := make(map[string]bool)

	for _, node := range nodes {
		if cached, ok := t.cacheGet(node.Hash, source, target); ok {
			translations[node.Hash] = cached
			stats.CachedCount++
			continue
		}
		if !seen[node.Hash] {
			misses = append(misses, node)
			seen[node.Hash] = true
		}
	}

	if len(misses) == 0 {
		return translations, stats
	}
	if t.provider == nil {
		stats.FailedCount = len(misses)
		return translations, stats
	}

	texts := make([]string, len(misses))
	for i, node := range misses {
		texts[i] = node.Text
	}

	results, err := t.provider.Translate(ctx, TranslateRequest{
		Texts:      texts,
		SourceLang: source,
		TargetLang: target,
	})
	if err == nil && len(results) != len(texts) {
		err = &CountMismatchError{Expected: len(texts), Got: len(results)}
	}

	if err == nil {
		for i, node := range misses {
			translations[node.Hash] = results[i]
			t.cacheSet(node.Hash, source, target, results[i])
			stats.TranslatedCount++
		}
		return translations, stats
	}

	t.logger.Warn("batch translation failed, translating node by node",
		zap.Int("nodes", len(misses)), zap.Error(err))

	for _, node := range misses {
		if ctx.Err() != nil {
			stats.FailedCount++
			continue
		}
		out, err := t.translateNode(ctx, node.Text, source, target)
		if err != nil {
			t.logger.Debug("failed to translate text node",
				zap.String("node", node.ID), zap.Error(err))
			stats.FailedCount++
			continue
		}
		translations[node.Hash] = out
		t.cacheSet(node.Hash, source, target, out)
		stats.TranslatedCount++
		t.logger.Debug("translated text node",
			zap.String("from", preview(node.Text)), zap.String("to", preview(out)))
	}

	return translations, stats
}

// translateNode runs a single-node translation through the circuit breaker.
func (t *Translator) translateNode(ctx context.Context, text, source, target string) (string, error) {
	if t.breaker == nil {
		return t.translateOne(ctx, text, source, target, false)
	}
	v, err := t.breaker.Execute(func() (interface{}, error) {
		return t.translateOne(ctx, text, source, target, false)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) {
			return "", &TranslationError{Message: "backend disabled after repeated failures", Cause: err}
		}
		return "", err
	}
	return v.(string), nil
}

func (t *Translator) translateOne(ctx context.Context, text, source, target string, isHTML bool) (string, error) {
	results, err := t.provider.Translate(ctx, TranslateRequest{
		Texts:      []string{text},
		SourceLang: source,
		TargetLang: target,
		IsHTML:     isHTML,
	})
	if err != nil {
		return "", err
	}
	if len(results) != 1 {
		return "", &CountMismatchError{Expected: 1, Got: len(results)}
	}
	return results[0], nil
}

// detectSource returns the detected source language, or "" when unknown.
func (t *Translator) detectSource(req Request, log *zap.Logger) string {
	if t.detector == nil {
		return ""
	}

	text := req.Text
	if req.IsHTML {
		if ex, ok := t.processors[ContentTypeHTML].(TextExtractor); ok {
			if plain, err := ex.PlainText(req.Text); err == nil {
				text = plain
			}
		}
	}

	lang, err := t.detector.Detect(text)
	if err != nil {
		log.Debug("language detection failed", zap.Error(err))
		return ""
	}
	log.Debug("detected language", zap.String("lang", lang))
	return lang
}

func (t *Translator) cacheGet(hash, source, target string) (string, bool) {
	if t.cache == nil {
		return "", false
	}
	return t.cache.Get(CacheKey(hash, source, target, t.cacheNamespace))
}

func (t *Translator) cacheSet(hash, source, target, value string) {
	if t.cache == nil {
		return
	}
	if err := t.cache.Set(CacheKey(hash, source, target, t.cacheNamespace), value); err != nil {
		t.logger.Debug("cache set failed", zap.Error(err))
	}
}

// TargetLang returns the default target language.
func (t *Translator) TargetLang() string {
	return t.targetLang
}

// SourceLang returns the configured source language ("" when detected per request).
func (t *Translator) SourceLang() string {
	return t.sourceLang
}

// IsSourceLang reports whether the configured source matches the target
// language, in which case translation can be bypassed.
func (t *Translator) IsSourceLang(targetLangOverride ...string) bool {
	targetLang := t.targetLang
	if len(targetLangOverride) > 0 && targetLangOverride[0] != "" {
		targetLang = targetLangOverride[0]
	}
	return SameLanguage(t.sourceLang, targetLang)
}
