package argos

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ZaguanLabs/tlrun"
	"github.com/ZaguanLabs/tlrun/accel"
	"go.uber.org/zap"
)

// EngineConfig configures the offline engine.
type EngineConfig struct {
	TranslateBin    string       // argos-translate binary (default: on PATH)
	Packages        *PackageManager
	Runner          Runner       // Defaults to ExecRunner
	Device          accel.Device // Exported to argos-translate as ARGOS_DEVICE_TYPE
	InstallOnDemand bool
	Stderr          io.Writer // Progress messages; nil discards them
	Logger          *zap.Logger
}

// Engine translates with argos-translate and manages packages with argospm.
// It implements tlrun.Provider and tlrun.Preparer.
type Engine struct {
	bin             string
	packages        *PackageManager
	runner          Runner
	device          accel.Device
	installOnDemand bool
	stderr          io.Writer
	logger          *zap.Logger
}

// NewEngine creates an offline engine.
func NewEngine(cfg EngineConfig) *Engine {
	e := &Engine{
		bin:             cfg.TranslateBin,
		packages:        cfg.Packages,
		runner:          cfg.Runner,
		device:          cfg.Device,
		installOnDemand: cfg.InstallOnDemand,
		stderr:          cfg.Stderr,
		logger:          cfg.Logger,
	}
	if e.bin == "" {
		e.bin = TranslateBin
	}
	if e.runner == nil {
		e.runner = ExecRunner{}
	}
	if e.logger == nil {
		e.logger = zap.NewNop()
	}
	if e.stderr == nil {
		e.stderr = io.Discard
	}
	if e.packages == nil {
		e.packages = NewPackageManager("", e.runner, e.logger)
	}
	return e
}

// Prepare checks that both languages are installed, downloading the pair
// first when install-on-demand is enabled.
func (e *Engine) Prepare(ctx context.Context, from, to string) error {
	from, to = tlrun.BaseLang(from), tlrun.BaseLang(to)

	ok, err := e.languagesInstalled(ctx, from, to)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}

	if !e.installOnDemand {
		fmt.Fprintf(e.stderr, "[translate] ERROR: Model %s → %s not installed\n", from, to)
		fmt.Fprintf(e.stderr, "[translate] Auto-download is disabled. Please install models manually using tlrun-models\n")
		e.logger.Debug("model not installed, auto-download disabled",
			zap.String("from", from), zap.String("to", to))
		return &tlrun.ModelNotInstalledError{From: from, To: to}
	}

	fmt.Fprintf(e.stderr, "[translate] Model %s → %s not installed, attempting auto-download...\n", from, to)
	if err := e.download(ctx, from, to); err != nil {
		return &tlrun.ModelNotInstalledError{From: from, To: to, AutoInstall: true, Cause: err}
	}

	ok, err = e.languagesInstalled(ctx, from, to)
	if err != nil {
		return err
	}
	if !ok {
		return &tlrun.ModelNotInstalledError{From: from, To: to, AutoInstall: true}
	}
	return nil
}

func (e *Engine) languagesInstalled(ctx context.Context, from, to string) (bool, error) {
	langs, err := e.packages.InstalledLanguages(ctx)
	if err != nil {
		return false, err
	}
	e.logger.Debug("installed languages", zap.Strings("codes", sortedKeys(langs)))
	return langs[from] && langs[to], nil
}

func (e *Engine) download(ctx context.Context, from, to string) error {
	e.logger.Debug("auto-download requested", zap.String("from", from), zap.String("to", to))

	fmt.Fprintf(e.stderr, "[translate] Updating package index...\n")
	if err := e.packages.Update(ctx); err != nil {
		fmt.Fprintf(e.stderr, "[translate] ERROR: Failed to update package index: %v\n", err)
		return err
	}

	p, ok, err := e.packages.Find(ctx, from, to)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintf(e.stderr, "[translate] ERROR: No translation model found for %s → %s\n", from, to)
		fmt.Fprintf(e.stderr, "[translate] Available language pairs can be listed with: tlrun-models list\n")
		return &PackageNotFoundError{From: from, To: to}
	}

	fmt.Fprintf(e.stderr, "[translate] Downloading and installing %s → %s translation model...\n", from, to)
	if err := e.packages.Install(ctx, p); err != nil {
		fmt.Fprintf(e.stderr, "[translate] ERROR: Failed to install model: %v\n", err)
		return err
	}

	fmt.Fprintf(e.stderr, "[translate] ✓ Successfully installed %s → %s translation model\n", from, to)
	e.logger.Debug("installed package", zap.String("package", p.Name()))
	return nil
}

// Translate translates each text with a separate argos-translate run.
func (e *Engine) Translate(ctx context.Context, req tlrun.TranslateRequest) ([]string, error) {
	if req.SourceLang == "" || req.SourceLang == tlrun.AutoLang {
		return nil, &tlrun.ProviderError{
			Provider: "argos",
			Message:  "offline translation needs a known source language",
		}
	}

	from, to := tlrun.BaseLang(req.SourceLang), tlrun.BaseLang(req.TargetLang)
	var env []string
	if e.device != "" {
		env = append(env, e.device.Env())
	}

	results := make([]string, len(req.Texts))
	for i, text := range req.Texts {
		out, err := e.runner.Run(ctx, Command{
			Name:  e.bin,
			Args:  []string{"--from-lang", from, "--to-lang", to},
			Stdin: text,
			Env:   env,
		})
		if err != nil {
			return nil, err
		}
		results[i] = strings.TrimSuffix(strings.TrimSuffix(out, "\n"), "\r")
	}
	return results, nil
}

// IsUnavailable reports whether err means Argos itself is missing.
func IsUnavailable(err error) bool {
	var pe *tlrun.ProviderError
	return errors.As(err, &pe) && strings.Contains(pe.Message, "not available")
}

var (
	_ tlrun.Provider = (*Engine)(nil)
	_ tlrun.Preparer = (*Engine)(nil)
)
