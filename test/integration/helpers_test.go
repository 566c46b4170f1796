//go:build integration

package integration_test

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// testEnv holds the sandbox a scaffold run works in.
type testEnv struct {
	Cwd      string // working directory the project is created under
	Registry *httptest.Server
	NPM      string // fake package manager script
	NPMLog   string // arguments the fake package manager received
}

// fakeRegistry serves dist-tags and tarballs for the given packages the way
// registry.npmjs.org lays them out.
type fakeRegistry struct {
	latest   map[string]string
	tarballs map[string][]byte // keyed by "name@version"
}

func (f *fakeRegistry) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := r.URL.EscapedPath()
	if strings.HasPrefix(path, "/-/package/") && strings.HasSuffix(path, "/dist-tags") {
		name := strings.TrimSuffix(strings.TrimPrefix(path, "/-/package/"), "/dist-tags")
		latest, ok := f.latest[name]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"latest": latest})
		return
	}

	for key, body := range f.tarballs {
		name, version, _ := strings.Cut(key, "@")
		if path == fmt.Sprintf("/%s/-/%s-%s.tgz", name, name, version) {
			_, _ = w.Write(body)
			return
		}
	}
	http.NotFound(w, r)
}

// setupTestEnv starts a registry serving reg and writes a package manager
// script that exits with npmExit after leaving a lockfile and node_modules.
func setupTestEnv(t *testing.T, reg *fakeRegistry, npmExit int) *testEnv {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake package manager is a shell script")
	}

	env := &testEnv{Cwd: t.TempDir()}
	env.Registry = httptest.NewServer(reg)
	t.Cleanup(env.Registry.Close)

	bin := t.TempDir()
	env.NPMLog = filepath.Join(bin, "args.log")
	env.NPM = filepath.Join(bin, "npm")
	script := fmt.Sprintf(`#!/bin/sh
echo "$@" > %q
echo '{"lockfileVersion": 3}' > package-lock.json
mkdir -p node_modules/react
exit %d
`, env.NPMLog, npmExit)
	if err := os.WriteFile(env.NPM, []byte(script), 0755); err != nil {
		t.Fatalf("writing fake npm: %v", err)
	}
	return env
}

// tarball packs files under the "package/" prefix npm uses.
func tarball(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	for name, body := range files {
		hdr := &tar.Header{Name: "package/" + name, Mode: 0644, Size: int64(len(body)), Typeflag: tar.TypeReg}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatal(err)
		}
		if _, err := tw.Write([]byte(body)); err != nil {
			t.Fatal(err)
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := gz.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func assertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected %s to exist: %v", path, err)
	}
}

func assertNotExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Lstat(path); !os.IsNotExist(err) {
		t.Errorf("expected %s to be absent, got err=%v", path, err)
	}
}
