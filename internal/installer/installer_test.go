package installer

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// writeFakePM writes a shell script that records its working directory and
// arguments, prints a line to each stream, and exits with exitCode.
func writeFakePM(t *testing.T, exitCode string) (bin, logPath string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake package manager is a POSIX shell script")
	}
	dir := t.TempDir()
	logPath = filepath.Join(dir, "invocation.log")
	bin = filepath.Join(dir, "fakepm")
	script := "#!/bin/sh\n" +
		"pwd > '" + logPath + "'\n" +
		"echo \"$@\" >> '" + logPath + "'\n" +
		"echo installing\n" +
		"echo warning >&2\n" +
		"exit " + exitCode + "\n"
	if err := os.WriteFile(bin, []byte(script), 0755); err != nil {
		t.Fatal(err)
	}
	return bin, logPath
}

func TestArgs(t *testing.T) {
	got := strings.Join(Args([]string{"react", "react-dom"}, false), " ")
	want := "install --no-audit --save --save-exact --loglevel error react react-dom"
	if got != want {
		t.Errorf("Args() = %q, want %q", got, want)
	}

	got = strings.Join(Args(nil, true), " ")
	want = "install --no-audit --save --save-exact --loglevel error --verbose"
	if got != want {
		t.Errorf("Args(verbose) = %q, want %q", got, want)
	}
}

func TestInstall_Success(t *testing.T) {
	bin, logPath := writeFakePM(t, "0")
	root := t.TempDir()

	var stdout, stderr bytes.Buffer
	pm := &PackageManager{Binary: bin, Stdout: &stdout, Stderr: &stderr, Stdin: strings.NewReader("")}
	if err := pm.Install(context.Background(), root, []string{"react"}, false); err != nil {
		t.Fatalf("Install() error: %v", err)
	}

	if strings.TrimSpace(stdout.String()) != "installing" {
		t.Errorf("stdout = %q, want streamed child output", stdout.String())
	}
	if strings.TrimSpace(stderr.String()) != "warning" {
		t.Errorf("stderr = %q", stderr.String())
	}

	log, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(log)), "\n")
	gotDir, _ := filepath.EvalSymlinks(lines[0])
	wantDir, _ := filepath.EvalSymlinks(root)
	if gotDir != wantDir {
		t.Errorf("working directory = %q, want %q", gotDir, wantDir)
	}
	if lines[1] != "install --no-audit --save --save-exact --loglevel error react" {
		t.Errorf("args = %q", lines[1])
	}
}

func TestInstall_NonZeroExit(t *testing.T) {
	bin, _ := writeFakePM(t, "1")

	pm := &PackageManager{Binary: bin, Stdout: &bytes.Buffer{}, Stderr: &bytes.Buffer{}, Stdin: strings.NewReader("")}
	err := pm.Install(context.Background(), t.TempDir(), []string{"react", "react-dom"}, true)

	var ie *InstallError
	if !errors.As(err, &ie) {
		t.Fatalf("expected InstallError, got %T: %v", err, err)
	}
	if ie.ExitCode != 1 {
		t.Errorf("ExitCode = %d, want 1", ie.ExitCode)
	}
	want := bin + " install --no-audit --save --save-exact --loglevel error --verbose react react-dom"
	if ie.CommandLine != want {
		t.Errorf("CommandLine = %q, want %q", ie.CommandLine, want)
	}
}

func TestInstall_MissingBinary(t *testing.T) {
	pm := New("definitely-not-a-package-manager-xyz")
	err := pm.Install(context.Background(), t.TempDir(), nil, false)

	var ie *InstallError
	if !errors.As(err, &ie) {
		t.Fatalf("expected InstallError, got %T: %v", err, err)
	}
	if ie.ExitCode != -1 {
		t.Errorf("ExitCode = %d, want -1", ie.ExitCode)
	}
}

func TestNew_DefaultsToNPM(t *testing.T) {
	if got := New("").CommandLine(nil, false); !strings.HasPrefix(got, "npm install") {
		t.Errorf("CommandLine() = %q, want npm prefix", got)
	}
}
