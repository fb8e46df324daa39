// Command tlrun-models lists and installs Argos Translate language models
// for tlrun-offline.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ZaguanLabs/tlrun"
	"github.com/ZaguanLabs/tlrun/accel"
	"github.com/ZaguanLabs/tlrun/argos"
	"github.com/ZaguanLabs/tlrun/internal/cli"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// newRunner executes argospm. Tests replace it.
var newRunner = func() argos.Runner { return argos.ExecRunner{} }

// exitError carries a specific process exit code.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	ctx, stop := cli.SignalContext()
	defer stop()

	cmd := newRootCommand(stdout, stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return 0
	}

	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	fmt.Fprintf(stderr, "Error: %v\n", err)
	return 1
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	var debug bool
	pm := func() *argos.PackageManager {
		logger := cli.NewLogger(debug, tlrun.OfflineDebugLog, "models", stderr)
		return argos.NewPackageManager("", newRunner(), logger)
	}

	root := &cobra.Command{
		Use:   "tlrun-models",
		Short: "Manage Argos Translate language models",
		Long: `tlrun-models lists and installs the Argos Translate language packages
used by tlrun-offline. It needs argospm on PATH.`,
		Version:       tlrun.FullVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List the language pairs available for download",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				m := pm()
				if err := m.Update(cmd.Context()); err != nil {
					return argosHint(err)
				}
				pkgs, err := m.Available(cmd.Context())
				if err != nil {
					return argosHint(err)
				}
				printPackages(stdout, pkgs)
				return nil
			},
		},
		&cobra.Command{
			Use:   "installed",
			Short: "List the installed language pairs",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				pkgs, err := pm().Installed(cmd.Context())
				if err != nil {
					return argosHint(err)
				}
				printPackages(stdout, pkgs)
				return nil
			},
		},
		&cobra.Command{
			Use:     "install FROM TO",
			Short:   "Install the model translating FROM into TO",
			Example: "  tlrun-models install es en",
			Args:    cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				from, to := tlrun.BaseLang(args[0]), tlrun.BaseLang(args[1])
				fmt.Fprintf(stdout, "Downloading and installing %s->%s...\n", from, to)

				err := pm().InstallPair(cmd.Context(), from, to)
				var nf *argos.PackageNotFoundError
				if errors.As(err, &nf) {
					fmt.Fprintf(stdout, "Package %s->%s not found.\n", from, to)
					return &exitError{code: 2, err: err}
				}
				if err != nil {
					return argosHint(err)
				}
				fmt.Fprintln(stdout, "Done.")
				return nil
			},
		},
		&cobra.Command{
			Use:   "install-defaults",
			Short: "Install the default models translating common languages into English",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				report, err := argos.InstallDefaults(cmd.Context(), pm(), tlrun.DefaultModelPairs, stdout)
				if err != nil {
					return argosHint(err)
				}
				if len(report.Failed) > 0 {
					return fmt.Errorf("failed to install %d models", len(report.Failed))
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "device",
			Short: "Show the device tlrun-offline would use",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				logger := cli.NewLogger(debug, tlrun.OfflineDebugLog, "models", stderr)
				device := accel.NewSelector(stderr, logger).Select()
				logger.Debug("device reported", zap.String("device", string(device)))
				fmt.Fprintln(stdout, device)
				return nil
			},
		},
	)
	return root
}

func printPackages(w io.Writer, pkgs []argos.Package) {
	for _, p := range pkgs {
		if p.Description != "" && p.Description != p.Name() {
			fmt.Fprintf(w, "%s->%s: %s\n", p.From, p.To, p.Description)
			continue
		}
		fmt.Fprintf(w, "%s->%s\n", p.From, p.To)
	}
}

// argosHint points at the usual cause when argospm itself is missing.
func argosHint(err error) error {
	if argos.IsUnavailable(err) {
		return fmt.Errorf("%w. Did you install 'argostranslate'?", err)
	}
	return err
}
