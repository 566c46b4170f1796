//go:build integration

package integration_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/reactcs/create-react-cs/internal/archive"
	"github.com/reactcs/create-react-cs/internal/config"
	"github.com/reactcs/create-react-cs/internal/installer"
	"github.com/reactcs/create-react-cs/internal/registry"
	"github.com/reactcs/create-react-cs/internal/scaffold"
)

const craTemplate = `{
  "name": "cra-template",
  "version": "1.2.0",
  "scripts": {"start": "react-scripts start", "build": "react-scripts build", "test": "react-scripts test"},
  "dependencies": {"react": "^18.2.0", "react-dom": "^18.2.0", "react-scripts": "5.0.1"},
  "browserslist": {"production": [">0.2%"], "development": ["last 1 chrome version"]}
}`

func defaultRegistry(t *testing.T) *fakeRegistry {
	return &fakeRegistry{
		latest: map[string]string{"cra-template": "1.2.0"},
		tarballs: map[string][]byte{
			"cra-template@1.2.0": tarball(t, map[string]string{
				"package.json":        craTemplate,
				"LICENSE":             "MIT",
				"template/src/App.js": "export default function App() {}\n",
				"template/gitignore":  "node_modules\n",
				"README.md":           "# cra-template\n",
			}),
		},
	}
}

func newPipeline(env *testEnv, out, errOut *bytes.Buffer) *scaffold.Pipeline {
	pm := installer.New(env.NPM)
	pm.Stdout = out
	pm.Stderr = errOut

	return &scaffold.Pipeline{
		Settings: config.Settings{
			DefaultType:    config.DefaultTemplate,
			Templates:      config.DefaultTemplates,
			Registry:       env.Registry.URL,
			PackageManager: "npm",
		},
		Registry:  registry.New(registry.WithBaseURL(env.Registry.URL)),
		Extractor: archive.New(),
		Installer: pm,
		Out:       out,
		Err:       errOut,
		Cwd:       env.Cwd,
	}
}

// TestCreateProject runs the whole pipeline against an HTTP registry and a
// scripted package manager.
func TestCreateProject(t *testing.T) {
	env := setupTestEnv(t, defaultRegistry(t), 0)
	var out, errOut bytes.Buffer

	outcome, err := newPipeline(env, &out, &errOut).Run(context.Background(), scaffold.Request{ProjectDir: "hello-world"})
	if err != nil {
		t.Fatalf("Run() error: %v\nstderr: %s", err, errOut.String())
	}
	if outcome.State != scaffold.StateDone {
		t.Fatalf("State = %s", outcome.State)
	}

	root := filepath.Join(env.Cwd, "hello-world")
	assertFileExists(t, filepath.Join(root, "template", "src", "App.js"))
	assertFileExists(t, filepath.Join(root, "node_modules", "react"))
	assertNotExists(t, filepath.Join(root, "LICENSE"))

	data, err := os.ReadFile(filepath.Join(root, "package.json"))
	if err != nil {
		t.Fatal(err)
	}
	var pkg map[string]any
	if err := json.Unmarshal(data, &pkg); err != nil {
		t.Fatal(err)
	}
	if pkg["name"] != "hello-world" || pkg["version"] != "0.1.0" || pkg["private"] != true {
		t.Errorf("unexpected manifest header: %s", data)
	}
	if !strings.HasPrefix(string(data), "{\n  \"name\": \"hello-world\",\n  \"version\": \"0.1.0\",\n  \"private\": true,") {
		t.Errorf("manifest key order wrong:\n%s", data)
	}

	args, err := os.ReadFile(env.NPMLog)
	if err != nil {
		t.Fatal(err)
	}
	want := "install --no-audit --save --save-exact --loglevel error react react-dom react-scripts"
	if strings.TrimSpace(string(args)) != want {
		t.Errorf("npm args = %q, want %q", strings.TrimSpace(string(args)), want)
	}

	if !strings.Contains(out.String(), "Success! Created hello-world") {
		t.Errorf("missing success report:\n%s", out.String())
	}
}

// TestCreateProject_InstallFailure checks that a failing install leaves no
// trace of the run behind.
func TestCreateProject_InstallFailure(t *testing.T) {
	env := setupTestEnv(t, defaultRegistry(t), 1)
	var out, errOut bytes.Buffer

	outcome, err := newPipeline(env, &out, &errOut).Run(context.Background(), scaffold.Request{ProjectDir: "hello-world"})

	var se *scaffold.Error
	if !errors.As(err, &se) || se.Kind != scaffold.KindInstall {
		t.Fatalf("expected InstallError, got %v", err)
	}
	var ie *installer.InstallError
	if !errors.As(err, &ie) || ie.ExitCode != 1 {
		t.Fatalf("expected exit code 1, got %v", err)
	}
	if !outcome.RootRemoved {
		t.Errorf("root should be removed, removed entries: %v", outcome.Removed)
	}
	assertNotExists(t, filepath.Join(env.Cwd, "hello-world"))
}

// TestCreateProject_UnknownVersion checks a tarball 404 is reported as a
// registry failure before anything is extracted.
func TestCreateProject_UnknownVersion(t *testing.T) {
	reg := defaultRegistry(t)
	env := setupTestEnv(t, reg, 0)
	var out, errOut bytes.Buffer

	_, err := newPipeline(env, &out, &errOut).Run(context.Background(), scaffold.Request{
		ProjectDir:     "hello-world",
		ScriptsVersion: "9.9.9",
	})

	var soe *registry.StreamOpenError
	if !errors.As(err, &soe) || soe.Status != 404 {
		t.Fatalf("expected 404 StreamOpenError, got %v", err)
	}
	assertNotExists(t, filepath.Join(env.Cwd, "hello-world"))
}

// TestCreateProject_UnknownTemplate checks a missing template leaves only
// the empty directory the gate created.
func TestCreateProject_UnknownTemplate(t *testing.T) {
	reg := defaultRegistry(t)
	delete(reg.latest, "cra-template")
	env := setupTestEnv(t, reg, 0)
	var out, errOut bytes.Buffer

	_, err := newPipeline(env, &out, &errOut).Run(context.Background(), scaffold.Request{ProjectDir: "hello-world"})

	var nf *registry.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	entries, err := os.ReadDir(filepath.Join(env.Cwd, "hello-world"))
	if err != nil || len(entries) != 0 {
		t.Errorf("expected empty project directory, got %v, %v", entries, err)
	}
}
