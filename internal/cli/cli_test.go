package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reactcs/create-react-cs/internal/scaffold"
)

// execute runs the root command with args against a private config file.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	configPath, verbose, scriptsVersion, templateName, showInfo = "", false, "", "", false
	versionShort, versionJSON = false, false

	cfg := filepath.Join(t.TempDir(), "config.yaml")
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(append([]string{"--config", cfg}, args...))
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func TestVersionCommand(t *testing.T) {
	buildVersion, buildCommit, buildDate = "1.4.0", "abc123", "2026-01-01"

	out, _, err := execute(t, "version", "--json")
	require.NoError(t, err)

	var info map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, "1.4.0", info["version"])
	assert.Equal(t, "abc123", info["commit"])

	out, _, err = execute(t, "version", "--short")
	require.NoError(t, err)
	assert.Equal(t, "1.4.0\n", out)
}

func TestConfigSetGet(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "cfg", "config.yaml")

	rootCmd.SetArgs([]string{"--config", configPath, "config", "set", "templates", "cra-template, my-template"})
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	t.Cleanup(func() { rootCmd.SetOut(nil); rootCmd.SetArgs(nil) })
	require.NoError(t, rootCmd.ExecuteContext(context.Background()))
	assert.FileExists(t, configPath)

	out.Reset()
	rootCmd.SetArgs([]string{"--config", configPath, "config", "get", "templates"})
	require.NoError(t, rootCmd.ExecuteContext(context.Background()))
	assert.Equal(t, "cra-template,my-template\n", out.String())
}

func TestConfigRemoveViaAlias(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	t.Cleanup(func() { rootCmd.SetOut(nil); rootCmd.SetArgs(nil) })

	run := func(args ...string) {
		t.Helper()
		out.Reset()
		rootCmd.SetArgs(append([]string{"--config", configPath}, args...))
		require.NoError(t, rootCmd.ExecuteContext(context.Background()))
	}

	run("cfg", "set", "packageManager", "pnpm")
	run("cfg", "get", "packageManager")
	assert.Equal(t, "pnpm\n", out.String())

	run("config", "remove", "packageManager")
	assert.Equal(t, "Removed packageManager\n", out.String())

	run("cfg", "get", "packageManager")
	assert.Equal(t, "npm\n", out.String())
}

func TestConfigGetDefault(t *testing.T) {
	out, _, err := execute(t, "config", "get", "packageManager")
	require.NoError(t, err)
	assert.Equal(t, "npm\n", out)
}

func TestRootMissingProjectDirectory(t *testing.T) {
	buildVersion = "dev"
	_, _, err := execute(t)

	var se *scaffold.Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, scaffold.KindUsage, se.Kind)
	assert.ErrorIs(t, err, scaffold.ErrMissingProjectDir)
}

func TestRootUnknownTemplate(t *testing.T) {
	buildVersion = "dev"
	_, _, err := execute(t, "my-app", "--template", "not-a-template")

	var se *scaffold.Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, scaffold.KindUsage, se.Kind)
}

func TestRootRejectsExtraArgs(t *testing.T) {
	_, _, err := execute(t, "one", "two")
	require.Error(t, err)
}

func TestPrintError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		contains []string
		excludes []string
	}{
		{
			name:     "plain error",
			err:      errors.New("boom"),
			contains: []string{"boom"},
		},
		{
			name:     "hint follows message",
			err:      &scaffold.Error{Kind: scaffold.KindInstall, Err: errors.New("install failed"), Hint: "try --verbose"},
			contains: []string{"install failed", "try --verbose"},
		},
		{
			name:     "conflict message not repeated",
			err:      &scaffold.Error{Kind: scaffold.KindDirectoryConflict, Err: errors.New("directory not empty")},
			excludes: []string{"directory not empty"},
		},
		{
			name:     "unexpected shows detail",
			err:      &scaffold.Error{Kind: scaffold.KindUnexpected, Err: errors.New("disk on fire")},
			contains: []string{"Please report it as a bug", "disk on fire"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			printError(&buf, tt.err)
			for _, s := range tt.contains {
				assert.Contains(t, buf.String(), s)
			}
			for _, s := range tt.excludes {
				assert.NotContains(t, buf.String(), s)
			}
		})
	}
}
