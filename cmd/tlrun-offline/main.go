// Command tlrun-offline translates text or HTML read from stdin with a
// locally installed Argos Translate and prints {"translated": ...} as one
// JSON line on stdout.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ZaguanLabs/tlrun"
	"github.com/ZaguanLabs/tlrun/accel"
	"github.com/ZaguanLabs/tlrun/argos"
	"github.com/ZaguanLabs/tlrun/cache"
	"github.com/ZaguanLabs/tlrun/detect"
	"github.com/ZaguanLabs/tlrun/internal/cli"
	"github.com/ZaguanLabs/tlrun/processor"
	"github.com/ZaguanLabs/tlrun/provider"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// newRunner executes argos-translate and argospm. Tests replace it.
var newRunner = func() argos.Runner { return argos.ExecRunner{} }

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
	var install, noInstall bool

	cmd := &cobra.Command{
		Use:   "tlrun-offline",
		Short: "Translate stdin offline with Argos Translate",
		Long: `tlrun-offline reads text or HTML on stdin, detects its language and
translates it with a local Argos Translate installation.

The result is printed as {"translated": "..."} on a single line. Failures
never change the exit code: the original text is returned and the reason
is reported in an "error" field.

Examples:
  echo 'Hola mundo' | tlrun-offline --target en
  tlrun-offline --html --no-install-on-demand < message.html`,
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
	cmd.Flags().BoolVar(&install, "install-on-demand", true, "Download missing language models automatically")
	cmd.Flags().BoolVar(&noInstall, "no-install-on-demand", false, "Fail instead of downloading missing language models")
	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	return cmd
}

func translate(ctx context.Context, v *viper.Viper, stdin io.Reader, stdout, stderr io.Writer) {
	f := cli.Resolve(v)
	installOnDemand := v.GetBool("install-on-demand") && !v.GetBool("no-install-on-demand")

	logger := cli.NewLogger(f.Debug, tlrun.OfflineDebugLog, "offline", stderr)
	defer logger.Sync()
	logger.Debug("new translation request",
		zap.String("target", f.Target),
		zap.Bool("html", f.HTML),
		zap.Bool("install_on_demand", installOnDemand))

	input, err := cli.ReadInput(stdin)
	if err != nil && !errors.Is(err, tlrun.ErrEmptyInput) {
		cli.Serve(stdout, logger, "", func() tlrun.Result { return tlrun.Result{Error: err.Error()} })
		return
	}
	logger.Debug("read stdin", zap.Int("bytes", len(input)))

	if f.DryRun {
		cli.DryRun(stderr, input, f, detect.NewWhatLang())
		cli.Serve(stdout, logger, input, func() tlrun.Result { return tlrun.Result{Translated: input} })
		return
	}

	store := cli.OpenCache(ctx, "", f, stderr, logger)
	defer cli.CloseCache(store, stderr, logger)

	res := cli.Serve(stdout, logger, input, func() tlrun.Result {
		t := newTranslator(v, f, installOnDemand, store, stderr, logger)
		return t.Translate(ctx, tlrun.Request{
			Text:       input,
			TargetLang: f.Target,
			SourceLang: f.Source,
			IsHTML:     f.HTML,
		})
	})

	if res.Error != "" {
		fmt.Fprintf(stderr, "[translate] ERROR: %s\n", res.Error)
	}
	if f.Stats {
		cli.PrintStats(stderr, res)
	}
	logger.Debug("request done", zap.Int("output_length", len(res.Translated)))
}

func newTranslator(v *viper.Viper, f cli.Flags, installOnDemand bool, store cache.Store, stderr io.Writer, logger *zap.Logger) *tlrun.Translator {
	opts := []tlrun.TranslatorOption{
		processor.WithHTML(f.IgnoreTags...),
		tlrun.WithLogger(logger),
	}
	if store != nil {
		opts = append(opts, tlrun.WithCache(store))
	}

	// Uppercasing stands in for Argos, without detection or model checks.
	if cli.FakeUppercase(v) {
		logger.Debug("fake uppercase mode")
		opts = append(opts, tlrun.WithAutoSource(true), tlrun.WithCacheNamespace("upper"))
		return tlrun.NewTranslator(f.Target, provider.Upper{}, opts...)
	}

	device := accel.NewSelector(stderr, logger).Select()
	engine := argos.NewEngine(argos.EngineConfig{
		Runner:          newRunner(),
		Device:          device,
		InstallOnDemand: installOnDemand,
		Stderr:          stderr,
		Logger:          logger,
	})

	opts = append(opts,
		tlrun.WithDetector(detect.NewWhatLang()),
		tlrun.WithPreparer(engine),
		tlrun.WithCacheNamespace("argos"),
	)
	return tlrun.NewTranslator(f.Target, engine, opts...)
}
