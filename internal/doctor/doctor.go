// Package doctor inspects the local toolchain. It backs the --info report and
// the pre-flight gate that refuses to scaffold when Node.js is too old or the
// package manager is missing.
package doctor

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/fatih/color"
	"golang.org/x/term"
)

// MinNodeVersion is the oldest Node.js release templates are expected to run on.
const MinNodeVersion = ">= 14.0.0"

// MinNPMVersion is the oldest npm that understands the install flags used.
const MinNPMVersion = ">= 6.0.0"

// EnvironmentError reports a missing or unsupported tool.
type EnvironmentError struct {
	Tool     string
	Found    string // empty when the tool is not installed
	Required string
	Err      error
}

func (e *EnvironmentError) Error() string {
	if e.Found == "" {
		return fmt.Sprintf("%s is required but was not found: %v", e.Tool, e.Err)
	}
	return fmt.Sprintf("you are running %s %s; %s %s is required", e.Tool, e.Found, e.Tool, e.Required)
}

func (e *EnvironmentError) Unwrap() error { return e.Err }

// Runner executes a tool and returns its trimmed standard output.
type Runner func(ctx context.Context, name string, args ...string) (string, error)

// LookPath resolves a tool to its absolute path.
type LookPath func(name string) (string, error)

// Checker checks node and the configured package manager.
type Checker struct {
	PackageManager string
	Run            Runner
	LookPath       LookPath
}

// NewChecker returns a Checker that shells out to the real tools.
func NewChecker(packageManager string) *Checker {
	if packageManager == "" {
		packageManager = "npm"
	}
	return &Checker{
		PackageManager: packageManager,
		Run:            execRunner,
		LookPath:       exec.LookPath,
	}
}

func execRunner(ctx context.Context, name string, args ...string) (string, error) {
	out, err := exec.CommandContext(ctx, name, args...).Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// ToolVersion returns the version a tool reports for --version, without a
// leading "v".
func (c *Checker) ToolVersion(ctx context.Context, tool string) (string, error) {
	out, err := c.Run(ctx, tool, "--version")
	if err != nil {
		return "", err
	}
	return strings.TrimPrefix(strings.TrimSpace(out), "v"), nil
}

// Check returns an *EnvironmentError when node is missing or older than
// MinNodeVersion, when the package manager cannot be run, or when npm is
// older than MinNPMVersion.
func (c *Checker) Check(ctx context.Context) error {
	nodeVersion, err := c.ToolVersion(ctx, "node")
	if err != nil {
		return &EnvironmentError{Tool: "node", Required: MinNodeVersion, Err: err}
	}
	if err := requireVersion("node", nodeVersion, MinNodeVersion); err != nil {
		return err
	}

	pmVersion, err := c.ToolVersion(ctx, c.PackageManager)
	if err != nil {
		return &EnvironmentError{Tool: c.PackageManager, Err: err}
	}
	if isNPM(c.PackageManager) {
		return requireVersion(c.PackageManager, pmVersion, MinNPMVersion)
	}
	return nil
}

func requireVersion(tool, found, required string) error {
	constraint, err := semver.NewConstraint(required)
	if err != nil {
		return fmt.Errorf("parsing %s constraint: %w", tool, err)
	}
	v, err := semver.NewVersion(found)
	if err != nil {
		return &EnvironmentError{Tool: tool, Found: found, Required: required, Err: err}
	}
	if !constraint.Check(v) {
		return &EnvironmentError{Tool: tool, Found: found, Required: required}
	}
	return nil
}

// isNPM reports whether the package manager binary is npm, given by name or path.
func isNPM(packageManager string) bool {
	base := strings.TrimSuffix(filepath.Base(packageManager), filepath.Ext(packageManager))
	return base == "npm"
}

// Report writes the environment banner printed by --info.
func (c *Checker) Report(ctx context.Context, w io.Writer, cliName, cliVersion string) {
	bold := color.New(color.Bold)

	bold.Fprintln(w, "Environment Info:")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  current version of %s: %s\n", cliName, cliVersion)
	if exe, err := os.Executable(); err == nil {
		fmt.Fprintf(w, "  running from %s\n", exe)
	}
	fmt.Fprintln(w)

	bold.Fprintln(w, "  System:")
	fmt.Fprintf(w, "    OS: %s %s\n", runtime.GOOS, runtime.GOARCH)
	fmt.Fprintf(w, "    Interactive terminal: %t\n", IsInteractive())

	bold.Fprintln(w, "  Binaries:")
	for _, tool := range []string{"node", c.PackageManager, "git"} {
		c.reportBinary(ctx, w, tool)
	}
}

func (c *Checker) reportBinary(ctx context.Context, w io.Writer, name string) {
	path, err := c.LookPath(name)
	if err != nil {
		fmt.Fprintf(w, "    [MISS] %s not found\n", name)
		return
	}
	version, err := c.ToolVersion(ctx, name)
	if err != nil {
		fmt.Fprintf(w, "    [WARN] %s found at %s but --version failed: %v\n", name, path, err)
		return
	}
	fmt.Fprintf(w, "    [ OK ] %s %s at %s\n", name, version, path)
}

// IsInteractive reports whether stdin and stdout are both terminals.
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}
