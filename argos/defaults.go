package argos

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/ZaguanLabs/tlrun"
)

// InstallReport summarizes an InstallDefaults run.
type InstallReport struct {
	Installed []string
	Skipped   []string // Already installed
	Missing   []string // Not in the index
	Failed    []string
}

// InstallDefaults installs every pair that is not installed yet, printing
// progress to w. Only a failed index update aborts the run.
func InstallDefaults(ctx context.Context, pm *PackageManager, pairs []tlrun.ModelPair, w io.Writer) (*InstallReport, error) {
	fmt.Fprintln(w, "Updating package index...")
	if err := pm.Update(ctx); err != nil {
		return nil, fmt.Errorf("Failed to update package index: %w", err)
	}

	available, err := pm.Available(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing available packages: %w", err)
	}

	report := &InstallReport{}
	for _, pair := range pairs {
		fmt.Fprintf(w, "\n[%s] Checking %s → %s...\n", pair.Name, pair.From, pair.To)

		installed, err := pm.IsInstalled(ctx, pair.From, pair.To)
		if err != nil {
			fmt.Fprintf(w, "  ✗ Failed to list installed packages: %v\n", err)
			report.Failed = append(report.Failed, pair.From+"_"+pair.To)
			continue
		}
		if installed {
			fmt.Fprintln(w, "  ✓ Already installed")
			report.Skipped = append(report.Skipped, pair.From+"_"+pair.To)
			continue
		}

		p, ok, _ := findPackage(available, pair.From, pair.To)
		if !ok {
			fmt.Fprintln(w, "  ✗ Package not found in repository")
			report.Missing = append(report.Missing, pair.From+"_"+pair.To)
			continue
		}

		fmt.Fprintln(w, "  Downloading and installing...")
		if err := pm.Install(ctx, p); err != nil {
			fmt.Fprintf(w, "  ✗ Failed to install: %v\n", err)
			report.Failed = append(report.Failed, pair.From+"_"+pair.To)
			continue
		}
		fmt.Fprintf(w, "  ✓ Successfully installed %s → %s\n", pair.From, pair.To)
		report.Installed = append(report.Installed, pair.From+"_"+pair.To)
	}

	line := strings.Repeat("=", 60)
	fmt.Fprintf(w, "\n%s\nInstallation complete! Installed %d new models.\n%s\n", line, len(report.Installed), line)
	return report, nil
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
