package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/ZaguanLabs/tlrun"
	"github.com/ZaguanLabs/tlrun/cache"
	"github.com/ZaguanLabs/tlrun/processor"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ReadInput reads all of r. Zero bytes of input yield tlrun.ErrEmptyInput.
func ReadInput(r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	if len(data) == 0 {
		return "", tlrun.ErrEmptyInput
	}
	return string(data), nil
}

// WriteResult writes res as a single JSON line. Markup is not escaped.
func WriteResult(w io.Writer, res tlrun.Result) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return enc.Encode(res)
}

// Serve runs fn and writes its result to stdout. A panic in fn is reported
// in the error field with input as the translation, so exactly one JSON
// line is written either way.
func Serve(stdout io.Writer, logger *zap.Logger, input string, fn func() tlrun.Result) (res tlrun.Result) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("panic in runner", zap.Any("panic", r))
			res = tlrun.Result{Translated: input, Error: fmt.Sprintf("Unexpected exception: %v", r)}
		}
		if err := WriteResult(stdout, res); err != nil {
			logger.Error("writing result", zap.Error(err))
		}
	}()
	return fn()
}

// NewLogger opens the debug log and tags every line with the runner name
// and a fresh run ID. A log that cannot be opened is mentioned on stderr and
// replaced by a no-op logger.
func NewLogger(enabled bool, path, runner string, stderr io.Writer) *zap.Logger {
	logger, err := tlrun.NewDebugLogger(enabled, path)
	if err != nil {
		fmt.Fprintf(stderr, "[translate] WARNING: cannot open debug log %s: %v\n", path, err)
	}
	return logger.With(zap.String("runner", runner), zap.String("run_id", uuid.NewString()))
}

// SignalContext is cancelled on SIGINT or SIGTERM.
func SignalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// OpenCache opens the cache selected by redisURL or f.CacheFile. Failing to
// open it only costs the cache: the warning goes to stderr and the run
// continues uncached.
func OpenCache(ctx context.Context, redisURL string, f Flags, stderr io.Writer, logger *zap.Logger) cache.Store {
	store, err := cache.Open(ctx, cache.Config{
		RedisURL: redisURL,
		File:     f.CacheFile,
		TTL:      f.CacheTTL,
		Logger:   logger,
	})
	if err != nil {
		fmt.Fprintf(stderr, "[translate] WARNING: %v, continuing without cache\n", err)
		logger.Warn("cache unavailable", zap.Error(err))
		return nil
	}
	return store
}

// CloseCache flushes and closes store, which may be nil.
func CloseCache(store cache.Store, stderr io.Writer, logger *zap.Logger) {
	if store == nil {
		return
	}
	if err := store.Close(); err != nil {
		fmt.Fprintf(stderr, "[translate] WARNING: %v\n", err)
		logger.Warn("closing cache", zap.Error(err))
	}
}

// PrintStats writes a one-line summary of res to w.
func PrintStats(w io.Writer, res tlrun.Result) {
	s := res.Stats
	source := s.SourceLang
	if source == "" {
		source = "unknown"
	}
	fmt.Fprintf(w, "[translate] stats: source=%s skipped=%t nodes=%d translated=%d cached=%d failed=%d\n",
		source, s.Skipped, s.TotalNodes, s.TranslatedCount, s.CachedCount, s.FailedCount)
}

// DryRun describes on w what a run with f would translate, without any
// backend. Without --source the language detected by det is shown.
func DryRun(w io.Writer, input string, f Flags, det tlrun.Detector) {
	proc := processor.NewHTMLProcessorIgnoring(f.IgnoreTags...)

	sample := input
	if f.HTML {
		if plain, err := proc.PlainText(input); err == nil {
			sample = plain
		}
	}
	source := "unknown"
	switch {
	case f.Source != "":
		source = tlrun.BaseLang(f.Source)
	case det != nil:
		if lang, err := det.Detect(sample); err == nil {
			source = tlrun.RemapDetected(lang)
		}
	}

	fmt.Fprintf(w, "Dry run: %s -> %s\n", source, strings.TrimSpace(f.Target))
	if !f.HTML {
		fmt.Fprintf(w, "Plain text, %d characters\n", len([]rune(input)))
		return
	}

	_, nodes, err := proc.Extract(input)
	if err != nil {
		fmt.Fprintf(w, "HTML could not be parsed (%v), it would be translated as a whole\n", err)
		return
	}
	fmt.Fprintf(w, "Found %d translatable text nodes:\n\n", len(nodes))
	for i, node := range nodes {
		text := []rune(node.Text)
		if len(text) > 60 {
			text = append(text[:57], []rune("...")...)
		}
		fmt.Fprintf(w, "%3d. %q\n", i+1, string(text))
	}
}
