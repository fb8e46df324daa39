package argos

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"go.uber.org/zap"
)

var packagePattern = regexp.MustCompile(`translate-([a-z]{2,3})_([a-z]{2,3})`)

// Package is an Argos language package translating From into To.
type Package struct {
	From        string
	To          string
	Description string
}

// Name returns the argospm package name, e.g. "translate-es_en".
func (p Package) Name() string {
	return "translate-" + p.From + "_" + p.To
}

// PackageManager wraps the argospm command.
type PackageManager struct {
	bin    string
	runner Runner
	logger *zap.Logger
}

// NewPackageManager returns a manager running bin (argospm when empty) through runner.
func NewPackageManager(bin string, runner Runner, logger *zap.Logger) *PackageManager {
	if bin == "" {
		bin = PackageBin
	}
	if runner == nil {
		runner = ExecRunner{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PackageManager{bin: bin, runner: runner, logger: logger}
}

// Update refreshes the package index.
func (m *PackageManager) Update(ctx context.Context) error {
	m.logger.Debug("updating package index")
	if _, err := m.runner.Run(ctx, Command{Name: m.bin, Args: []string{"update"}}); err != nil {
		return err
	}
	m.logger.Debug("package index updated")
	return nil
}

// Available lists the translation packages in the index.
func (m *PackageManager) Available(ctx context.Context) ([]Package, error) {
	out, err := m.runner.Run(ctx, Command{Name: m.bin, Args: []string{"search"}})
	if err != nil {
		return nil, err
	}
	pkgs := parsePackages(out)
	m.logger.Debug("available packages", zap.Int("count", len(pkgs)))
	return pkgs, nil
}

// Installed lists the installed translation packages.
func (m *PackageManager) Installed(ctx context.Context) ([]Package, error) {
	out, err := m.runner.Run(ctx, Command{Name: m.bin, Args: []string{"list"}})
	if err != nil {
		return nil, err
	}
	return parsePackages(out), nil
}

// InstalledLanguages returns the set of language codes covered by installed packages.
func (m *PackageManager) InstalledLanguages(ctx context.Context) (map[string]bool, error) {
	pkgs, err := m.Installed(ctx)
	if err != nil {
		return nil, err
	}
	langs := make(map[string]bool)
	for _, p := range pkgs {
		langs[p.From] = true
		langs[p.To] = true
	}
	return langs, nil
}

// IsInstalled reports whether the exact pair is installed.
func (m *PackageManager) IsInstalled(ctx context.Context, from, to string) (bool, error) {
	pkgs, err := m.Installed(ctx)
	if err != nil {
		return false, err
	}
	for _, p := range pkgs {
		if p.From == from && p.To == to {
			return true, nil
		}
	}
	return false, nil
}

// Find looks up a pair in the index. The index should be updated first.
func (m *PackageManager) Find(ctx context.Context, from, to string) (Package, bool, error) {
	pkgs, err := m.Available(ctx)
	if err != nil {
		return Package{}, false, err
	}
	return findPackage(pkgs, from, to)
}

// Install installs a package that exists in the index.
func (m *PackageManager) Install(ctx context.Context, p Package) error {
	m.logger.Debug("installing package", zap.String("package", p.Name()))
	_, err := m.runner.Run(ctx, Command{Name: m.bin, Args: []string{"install", p.Name()}})
	return err
}

// PackageNotFoundError reports a language pair missing from the package index.
// InstallPair and the engine's on-demand download both return it.
type PackageNotFoundError struct {
	From, To string
}

func (e *PackageNotFoundError) Error() string {
	return fmt.Sprintf("No translation model found for %s → %s", e.From, e.To)
}

// InstallPair updates the index, finds the pair and installs it.
func (m *PackageManager) InstallPair(ctx context.Context, from, to string) error {
	if err := m.Update(ctx); err != nil {
		return err
	}
	p, ok, err := m.Find(ctx, from, to)
	if err != nil {
		return err
	}
	if !ok {
		return &PackageNotFoundError{From: from, To: to}
	}
	return m.Install(ctx, p)
}

func findPackage(pkgs []Package, from, to string) (Package, bool, error) {
	for _, p := range pkgs {
		if p.From == from && p.To == to {
			return p, true, nil
		}
	}
	return Package{}, false, nil
}

// parsePackages extracts translate-xx_yy entries, one per line, keeping any
// text after a colon as the description.
func parsePackages(out string) []Package {
	seen := make(map[string]bool)
	var pkgs []Package
	for _, line := range strings.Split(out, "\n") {
		m := packagePattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		p := Package{From: m[1], To: m[2]}
		if seen[p.Name()] {
			continue
		}
		seen[p.Name()] = true
		if i := strings.Index(line, ":"); i >= 0 {
			p.Description = strings.TrimSpace(line[i+1:])
		}
		pkgs = append(pkgs, p)
	}
	sort.Slice(pkgs, func(i, j int) bool { return pkgs[i].Name() < pkgs[j].Name() })
	return pkgs
}
