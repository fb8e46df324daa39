// Command tlrun-online translates text or HTML read from stdin with a remote
// translation service and prints {"translated": ...} as one JSON line on
// stdout.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/ZaguanLabs/tlrun"
	"github.com/ZaguanLabs/tlrun/cache"
	"github.com/ZaguanLabs/tlrun/detect"
	"github.com/ZaguanLabs/tlrun/internal/cli"
	"github.com/ZaguanLabs/tlrun/processor"
	"github.com/ZaguanLabs/tlrun/provider"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// retryConfig is swapped for a fast one in tests.
var retryConfig = tlrun.DefaultRetryConfig

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	ctx, stop := cli.SignalContext()
	defer stop()

	cmd := newCommand(stdin, stdout, stderr)
	cmd.SetArgs(args)
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 2
	}
	return 0
}

func newCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	var flags cli.Flags

	cmd := &cobra.Command{
		Use:   "tlrun-online",
		Short: "Translate stdin with an online translation service",
		Long: `tlrun-online reads text or HTML on stdin and translates it with a
remote provider (` + strings.Join(provider.Names(), ", ") + `).

The result is printed as {"translated": "..."} on a single line. Failures
never change the exit code: the original text is returned and the reason
is reported in an "error" field.

Environment:
  LIBRE_TRANSLATE_URL   LibreTranslate instance (default https://libretranslate.com)
  OPENAI_API_KEY        key for --provider openai
  GEMINI_API_KEY        key for --provider gemini
  TLRUN_<FLAG>          default for any flag, e.g. TLRUN_PROVIDER=libre`,
		Args:          cobra.NoArgs,
		Version:       tlrun.FullVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v, err := cli.NewConfig(cmd)
			if err != nil {
				return err
			}
			translate(cmd.Context(), v, stdin, stdout, stderr)
			return nil
		},
	}

	cli.AddFlags(cmd, &flags)
	cmd.Flags().String("provider", "google", "Translation provider ("+strings.Join(provider.Names(), ", ")+")")
	cmd.Flags().String("api-key", "", "API key for providers that require it")
	cmd.Flags().String("model", "", "Model for the LLM providers")
	cmd.Flags().String("base-url", "", "Override the provider endpoint")
	cmd.Flags().Int("rpm", 0, "Maximum requests per minute (0 = unlimited)")
	cmd.Flags().String("redis-url", "", "Share the translation cache through Redis")
	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	return cmd
}

func translate(ctx context.Context, v *viper.Viper, stdin io.Reader, stdout, stderr io.Writer) {
	f := cli.Resolve(v)
	logger := cli.NewLogger(f.Debug, tlrun.OnlineDebugLog, "online", stderr)
	defer logger.Sync()
	logger.Debug("online translation runner started",
		zap.String("provider", v.GetString("provider")),
		zap.String("target", f.Target),
		zap.Bool("html", f.HTML))

	input, err := cli.ReadInput(stdin)
	if err != nil {
		cli.Serve(stdout, logger, "", func() tlrun.Result { return tlrun.Result{Error: err.Error()} })
		return
	}

	if f.DryRun {
		cli.DryRun(stderr, input, f, detect.NewWhatLang())
		cli.Serve(stdout, logger, input, func() tlrun.Result { return tlrun.Result{Translated: input} })
		return
	}

	store := cli.OpenCache(ctx, v.GetString("redis-url"), f, stderr, logger)
	defer cli.CloseCache(store, stderr, logger)

	res := cli.Serve(stdout, logger, input, func() tlrun.Result {
		p, name, err := buildProvider(ctx, v, logger)
		if err != nil {
			logger.Debug("provider setup failed", zap.Error(err))
			return tlrun.Result{Translated: input, Error: err.Error()}
		}
		t := newTranslator(p, name, f, store, logger)
		return t.Translate(ctx, tlrun.Request{
			Text:       input,
			TargetLang: f.Target,
			SourceLang: f.Source,
			IsHTML:     f.HTML,
		})
	})

	if f.Stats {
		cli.PrintStats(stderr, res)
	}
	logger.Debug("translation complete", zap.Bool("failed", res.Error != ""))
}

// buildProvider resolves the provider and its credentials, then wraps it
// with rate limiting and retries.
func buildProvider(ctx context.Context, v *viper.Viper, logger *zap.Logger) (tlrun.Provider, string, error) {
	name := strings.ToLower(strings.TrimSpace(v.GetString("provider")))
	if cli.FakeUppercase(v) {
		name = "upper"
	}

	opts := provider.Options{
		APIKey:  v.GetString("api-key"),
		BaseURL: v.GetString("base-url"),
		Model:   v.GetString("model"),
		Logger:  logger,
	}
	switch name {
	case "libre":
		if opts.BaseURL == "" {
			opts.BaseURL = v.GetString(cli.KeyLibreURL)
		}
	case "openai":
		if opts.APIKey == "" {
			opts.APIKey = v.GetString(cli.KeyOpenAIKey)
		}
	case "gemini":
		if opts.APIKey == "" {
			opts.APIKey = v.GetString(cli.KeyGeminiKey)
		}
	}

	p, err := provider.New(ctx, name, opts)
	if err != nil {
		return nil, name, err
	}
	logger.Debug("provider created", zap.String("provider", name))

	if rpm := v.GetInt("rpm"); rpm > 0 {
		p = tlrun.NewRateLimitedProvider(p, rpm, 1)
	}

	cfg := retryConfig()
	cfg.OnRetry = func(attempt int, err error, delay time.Duration) {
		logger.Debug("retrying", zap.Int("attempt", attempt), zap.Duration("delay", delay), zap.Error(err))
	}
	return tlrun.NewRetryableProvider(p, cfg), name, nil
}

func newTranslator(p tlrun.Provider, name string, f cli.Flags, store cache.Store, logger *zap.Logger) *tlrun.Translator {
	opts := []tlrun.TranslatorOption{
		tlrun.WithDetector(detect.NewWhatLang()),
		processor.WithHTML(f.IgnoreTags...),
		tlrun.WithAutoSource(true),
		tlrun.WithCacheNamespace(name),
		tlrun.WithLogger(logger),
	}
	if store != nil {
		opts = append(opts, tlrun.WithCache(store))
	}
	return tlrun.NewTranslator(f.Target, p, opts...)
}
