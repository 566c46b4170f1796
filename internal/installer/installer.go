package installer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// Installer installs a dependency set into a project root.
type Installer interface {
	Install(ctx context.Context, root string, deps []string, verbose bool) error
}

// InstallError reports a package-manager run that did not exit cleanly.
// ExitCode is -1 when the process could not be started at all.
type InstallError struct {
	ExitCode    int
	CommandLine string
	Err         error
}

func (e *InstallError) Error() string {
	if e.ExitCode < 0 {
		return fmt.Sprintf("could not run `%s`: %v", e.CommandLine, e.Err)
	}
	return fmt.Sprintf("`%s` exited with code %d", e.CommandLine, e.ExitCode)
}

func (e *InstallError) Unwrap() error { return e.Err }

// PackageManager runs `<Binary> install` with npm-compatible flags.
type PackageManager struct {
	// Binary is the executable name or path. Defaults to "npm".
	Binary string

	// Stdin, Stdout and Stderr default to the process's own streams.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// New returns a PackageManager for binary ("npm" when empty).
func New(binary string) *PackageManager {
	return &PackageManager{Binary: binary}
}

func (p *PackageManager) binary() string {
	if p.Binary == "" {
		return "npm"
	}
	return p.Binary
}

// Args returns the package-manager arguments for installing deps.
func Args(deps []string, verbose bool) []string {
	args := []string{"install", "--no-audit", "--save", "--save-exact", "--loglevel", "error"}
	if verbose {
		args = append(args, "--verbose")
	}
	return append(args, deps...)
}

// CommandLine renders the invocation for diagnostics.
func (p *PackageManager) CommandLine(deps []string, verbose bool) string {
	return strings.Join(append([]string{p.binary()}, Args(deps, verbose)...), " ")
}

// Install runs the package manager in root and blocks until it exits. A zero
// exit code is success; anything else is an *InstallError.
func (p *PackageManager) Install(ctx context.Context, root string, deps []string, verbose bool) error {
	commandLine := p.CommandLine(deps, verbose)

	bin, err := exec.LookPath(p.binary())
	if err != nil {
		return &InstallError{ExitCode: -1, CommandLine: commandLine, Err: err}
	}

	cmd := exec.CommandContext(ctx, bin, Args(deps, verbose)...)
	cmd.Dir = root
	cmd.Env = os.Environ()

	cmd.Stdin = p.Stdin
	if cmd.Stdin == nil {
		cmd.Stdin = os.Stdin
	}
	cmd.Stdout = p.Stdout
	if cmd.Stdout == nil {
		cmd.Stdout = os.Stdout
	}
	cmd.Stderr = p.Stderr
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return &InstallError{ExitCode: exitErr.ExitCode(), CommandLine: commandLine, Err: err}
		}
		return &InstallError{ExitCode: -1, CommandLine: commandLine, Err: err}
	}
	return nil
}
