package scaffold

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"

	"github.com/reactcs/create-react-cs/internal/archive"
	"github.com/reactcs/create-react-cs/internal/branding"
	"github.com/reactcs/create-react-cs/internal/config"
	"github.com/reactcs/create-react-cs/internal/installer"
	"github.com/reactcs/create-react-cs/internal/manifest"
	"github.com/reactcs/create-react-cs/internal/registry"
	"github.com/reactcs/create-react-cs/internal/safedir"
)

// Files the package manager may create even when it fails.
const (
	lockFile   = "package-lock.json"
	modulesDir = "node_modules"
)

// Registry resolves template versions and streams template archives.
type Registry interface {
	ResolveLatestVersion(ctx context.Context, templateID string) (string, error)
	OpenArchiveStream(ctx context.Context, templateID, version string) (io.ReadCloser, error)
}

// Extractor unpacks a gzipped tar stream into a directory.
type Extractor interface {
	Extract(r io.Reader, destDir string, prepare archive.PrepareFunc) (*archive.Result, error)
}

// EnvChecker verifies the tools the pipeline shells out to are usable.
type EnvChecker interface {
	Check(ctx context.Context) error
}

// Request is one invocation of the pipeline.
type Request struct {
	ProjectDir     string
	Template       string // empty selects the configured default
	ScriptsVersion string // empty selects the registry's latest
	Verbose        bool
}

// Pipeline wires the collaborators of a run. Env may be nil to skip the
// environment gate.
type Pipeline struct {
	Settings  config.Settings
	Registry  Registry
	Extractor Extractor
	Installer installer.Installer
	Env       EnvChecker
	Out       io.Writer
	Err       io.Writer
	Cwd       string
}

// Outcome describes how a run ended. Err is nil on success and a *Error
// otherwise.
type Outcome struct {
	State       State
	History     []State
	Target      *Target
	Template    TemplateRef
	Removed     []string
	Restored    []string
	RootRemoved bool
	Err         error
}

// Succeeded reports whether the run reached Done.
func (o *Outcome) Succeeded() bool { return o.State == StateDone && o.Err == nil }

type run struct {
	p       *Pipeline
	req     Request
	m       *machine
	target  *Target
	ref     TemplateRef
	ledger  *Ledger
	deps    []string
	scripts map[string]bool
}

// Run executes the pipeline for req. The returned error is the Outcome's
// Err and is always a *Error when non-nil.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Outcome, error) {
	r := &run{p: p, req: req, m: newMachine()}
	out := r.execute(ctx)
	out.State = r.m.current
	out.History = append([]State(nil), r.m.history...)
	out.Target = r.target
	out.Template = r.ref
	return out, out.Err
}

func (r *run) execute(ctx context.Context) *Outcome {
	p := r.p

	target, err := NewTarget(r.req.ProjectDir, p.cwd())
	if err != nil {
		hint := ""
		if errors.Is(err, ErrMissingProjectDir) {
			hint = fmt.Sprintf("For example:\n  %s my-react-app", branding.CLIName())
		}
		return r.fail(KindUsage, err, hint)
	}
	r.target = target

	templateID, err := p.Settings.ResolveTemplate(r.req.Template)
	if err != nil {
		return r.fail(KindUsage, err, "")
	}
	r.ref = TemplateRef{Identifier: templateID, RequestedVersion: r.req.ScriptsVersion}

	if r.req.ScriptsVersion != "" {
		if err := registry.ValidateVersion(r.req.ScriptsVersion); err != nil {
			return r.fail(KindUsage, fmt.Errorf("invalid --scripts-version %q: %w", r.req.ScriptsVersion, err), "")
		}
	}

	if p.Env != nil {
		if err := p.Env.Check(ctx); err != nil {
			return r.fail(KindEnvironment, err, "")
		}
	}

	ok, err := safedir.EnsureSafeToCreate(target.Root, target.Name, p.errOut())
	if err != nil {
		return r.fail(KindUnexpected, err, "")
	}
	if !ok {
		return r.fail(KindDirectoryConflict, fmt.Errorf("directory %s is not empty", target.Root), "")
	}
	if err := r.m.transition(StateDirectoryChecked); err != nil {
		return r.fail(KindUnexpected, err, "")
	}

	fmt.Fprintf(p.out(), "\nCreating a new React app in %s.\n\n", color.GreenString(target.Root))

	latest, err := p.Registry.ResolveLatestVersion(ctx, templateID)
	if err != nil {
		return r.fail(KindRegistry, err, "Check the template name, your network connection and the configured registry.")
	}
	version, err := registry.EffectiveVersion(r.req.ScriptsVersion, latest)
	if err != nil {
		return r.fail(KindRegistry, err, "")
	}
	if r.isOlderThanLatest(latest) {
		fmt.Fprintf(p.errOut(), "%s %s@%s is older than the latest release; using %s instead.\n",
			color.YellowString("warning"), templateID, r.req.ScriptsVersion, version)
	}
	r.ref.ResolvedVersion = version
	r.logf("Resolved %s", r.ref)
	if err := r.m.transition(StateVersionResolved); err != nil {
		return r.fail(KindUnexpected, err, "")
	}

	r.ledger = NewLedger(target.Root)
	if err := r.ledger.Snapshot(); err != nil {
		return r.fail(KindUnexpected, err, "")
	}
	if err := r.m.transition(StateFetching); err != nil {
		return r.fail(KindUnexpected, err, "")
	}

	if out := r.fetch(ctx); out != nil {
		return out
	}
	if out := r.rewriteManifest(); out != nil {
		return out
	}
	if out := r.install(ctx); out != nil {
		return out
	}

	if err := r.m.transition(StateDone); err != nil {
		return r.fail(KindUnexpected, err, "")
	}
	if err := r.ledger.Commit(); err != nil {
		fmt.Fprintf(p.errOut(), "%s %v\n", color.YellowString("warning"), err)
	}
	r.reportSuccess()
	return &Outcome{}
}

func (r *run) fetch(ctx context.Context) *Outcome {
	p := r.p

	r.logf("Downloading %s", r.ref)
	stream, err := p.Registry.OpenArchiveStream(ctx, r.ref.Identifier, r.ref.ResolvedVersion)
	if err != nil {
		return r.fail(KindRegistry, err, "")
	}

	res, err := p.Extractor.Extract(stream, r.target.Root, r.ledger.Prepare)
	closeErr := stream.Close()
	// Whatever made it to disk belongs to this run, even on failure.
	if recErr := r.ledger.RecordNew(); recErr != nil && err == nil {
		err = recErr
	}
	if err == nil && closeErr != nil {
		err = fmt.Errorf("closing template stream: %w", closeErr)
	}
	if err != nil {
		return r.fail(KindExtraction, err, "")
	}
	r.logf("Extracted %d files and %d directories", len(res.Files), len(res.Dirs))

	if err := r.m.transition(StateExtracted); err != nil {
		return r.fail(KindUnexpected, err, "")
	}
	return nil
}

func (r *run) rewriteManifest() *Outcome {
	root := r.target.Root

	desc, err := manifest.ReadDescriptor(root)
	if err != nil {
		return r.fail(KindManifest, err, "")
	}
	deps, err := desc.DependencySet()
	if err != nil {
		return r.fail(KindManifest, err, "")
	}

	r.ledger.Expect(manifest.FileName)
	pm := manifest.BuildProjectManifest(r.target.Name, desc)
	if err := manifest.Write(root, pm); err != nil {
		return r.fail(KindManifest, err, "")
	}
	// The template's license never stays; a license the user already had
	// goes back in place.
	if r.ledger.Contains(manifest.LicenseFile) || r.ledger.HasBackup(manifest.LicenseFile) {
		if err := manifest.RemoveLicense(root); err != nil {
			return r.fail(KindManifest, err, "")
		}
		if err := r.ledger.Restore(manifest.LicenseFile); err != nil {
			return r.fail(KindManifest, err, "")
		}
	}
	r.scripts = scriptNames(desc)
	r.logf("Wrote %s with %d dependencies", manifest.FileName, len(deps))

	if err := r.m.transition(StateManifestWritten); err != nil {
		return r.fail(KindUnexpected, err, "")
	}
	r.deps = deps
	return nil
}

func (r *run) install(ctx context.Context) *Outcome {
	p := r.p

	r.ledger.Expect(lockFile, modulesDir)
	if err := r.m.transition(StateInstalling); err != nil {
		return r.fail(KindUnexpected, err, "")
	}

	fmt.Fprintln(p.out(), "Installing packages. This might take a couple of minutes.")
	if err := p.Installer.Install(ctx, r.target.Root, r.deps, r.req.Verbose); err != nil {
		hint := ""
		var ie *installer.InstallError
		if errors.As(err, &ie) && ie.ExitCode >= 0 {
			hint = fmt.Sprintf("`%s` failed. Run with --verbose for the full package manager output.", ie.CommandLine)
		}
		return r.fail(KindInstall, err, hint)
	}
	return nil
}

// fail ends the run with kind. Failures from Fetching onwards roll back
// everything the ledger recorded; earlier failures leave the disk alone.
func (r *run) fail(kind Kind, err error, hint string) *Outcome {
	out := &Outcome{Err: newError(kind, err, hint)}
	if r.ledger == nil || !isAllowedTransition(r.m.current, StateAborting) {
		return out
	}
	_ = r.m.transition(StateAborting)

	w := r.p.errOut()
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Aborting installation.")

	res := r.ledger.Rollback()
	out.Removed = res.Removed
	out.Restored = res.Restored
	out.RootRemoved = res.RootRemoved
	if len(res.Removed) > 0 {
		fmt.Fprintln(w, "Deleting generated file...")
		for _, name := range res.Removed {
			fmt.Fprintf(w, "  %s\n", color.CyanString(name))
		}
	}
	if len(res.Restored) > 0 {
		fmt.Fprintln(w, "Restoring overwritten file...")
		for _, name := range res.Restored {
			fmt.Fprintf(w, "  %s\n", color.CyanString(name))
		}
	}
	if res.RootRemoved {
		fmt.Fprintf(w, "Deleting %s from %s\n", color.CyanString(r.target.Name+"/"), color.CyanString(parentDir(r.target.Root)))
	}
	if res.Err != nil {
		fmt.Fprintf(w, "%s could not remove everything: %v\n", color.YellowString("warning"), res.Err)
	}
	fmt.Fprintln(w, "Done.")
	return out
}

// isOlderThanLatest reports whether the requested version loses to latest.
func (r *run) isOlderThanLatest(latest string) bool {
	if r.req.ScriptsVersion == "" {
		return false
	}
	cmp, err := registry.CompareVersions(r.req.ScriptsVersion, latest)
	return err == nil && cmp < 0
}

func (r *run) logf(format string, args ...any) {
	if !r.req.Verbose {
		return
	}
	fmt.Fprintf(r.p.out(), format+"\n", args...)
}

func (p *Pipeline) out() io.Writer {
	if p.Out == nil {
		return os.Stdout
	}
	return p.Out
}

func (p *Pipeline) errOut() io.Writer {
	if p.Err == nil {
		return os.Stderr
	}
	return p.Err
}

func (p *Pipeline) cwd() string {
	if p.Cwd != "" {
		return p.Cwd
	}
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return wd
}
