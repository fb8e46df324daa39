// Package argos drives a locally installed Argos Translate through its
// command-line tools: argos-translate for translation and argospm for
// language packages.
package argos

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/ZaguanLabs/tlrun"
)

// Default binary names, looked up on PATH.
const (
	TranslateBin = "argos-translate"
	PackageBin   = "argospm"
)

// Command is one invocation of an external tool.
type Command struct {
	Name  string
	Args  []string
	Stdin string
	Env   []string // Extra KEY=value pairs on top of the current environment
}

// Runner executes commands and returns their stdout.
type Runner interface {
	Run(ctx context.Context, cmd Command) (string, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

// Run implements Runner.
func (ExecRunner) Run(ctx context.Context, c Command) (string, error) {
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	if c.Stdin != "" {
		cmd.Stdin = strings.NewReader(c.Stdin)
	}
	if len(c.Env) > 0 {
		cmd.Env = append(os.Environ(), c.Env...)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return stdout.String(), commandError(c.Name, err, stderr.String())
	}
	return stdout.String(), nil
}

// commandError maps exec failures onto the provider error taxonomy:
// a missing binary means Argos is not installed.
func commandError(name string, err error, stderr string) error {
	if errors.Is(err, exec.ErrNotFound) {
		return &tlrun.ProviderError{
			Provider: "argos",
			Message:  fmt.Sprintf("ArgosTranslate not available (%s not found)", name),
			Cause:    err,
		}
	}

	msg := fmt.Sprintf("%s failed", name)
	if s := strings.TrimSpace(stderr); s != "" {
		msg += ": " + lastLine(s)
	}
	return &tlrun.ProviderError{
		Provider: "argos",
		Message:  msg,
		Cause:    err,
	}
}

func lastLine(s string) string {
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	return s
}
