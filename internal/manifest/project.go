package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/reactcs/create-react-cs/internal/platform"
)

// InitialVersion is the version every new project starts at.
const InitialVersion = "0.1.0"

// LicenseFile is the template license removed from new projects.
const LicenseFile = "LICENSE"

// ProjectManifest is the package.json written at the project root. Field
// order is the order keys appear in the file.
type ProjectManifest struct {
	Name            string          `json:"name"`
	Version         string          `json:"version"`
	Private         bool            `json:"private"`
	Main            json.RawMessage `json:"main,omitempty"`
	Scripts         json.RawMessage `json:"scripts,omitempty"`
	DevDependencies json.RawMessage `json:"devDependencies,omitempty"`
	Dependencies    json.RawMessage `json:"dependencies,omitempty"`
	Browserslist    json.RawMessage `json:"browserslist,omitempty"`
}

// BuildProjectManifest merges the template fields into a fresh manifest for
// appName. Fields the template lacks are omitted, never defaulted.
func BuildProjectManifest(appName string, d *Descriptor) *ProjectManifest {
	return &ProjectManifest{
		Name:            appName,
		Version:         InitialVersion,
		Private:         true,
		Main:            d.Main,
		Scripts:         d.Scripts,
		DevDependencies: d.DevDependencies,
		Dependencies:    d.Dependencies,
		Browserslist:    d.Browserslist,
	}
}

// Marshal renders m the way npm formats package.json: two-space indent and
// a trailing newline.
func (m *ProjectManifest) Marshal() ([]byte, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling %s: %w", FileName, err)
	}
	return append(data, '\n'), nil
}

// Write replaces root/package.json with m. The content goes to a temporary
// file in root first and is renamed into place, so a failure leaves the
// previous file (or its absence) untouched.
func Write(root string, m *ProjectManifest) error {
	data, err := m.Marshal()
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(root, "."+FileName+"-*")
	if err != nil {
		return fmt.Errorf("creating temporary manifest: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing temporary manifest: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temporary manifest: %w", err)
	}
	if err := platform.Chmod(tmpPath, platform.FilePerm); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("setting manifest permissions: %w", err)
	}

	dest := filepath.Join(root, FileName)
	if err := os.Rename(tmpPath, dest); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replacing %s: %w", dest, err)
	}
	return nil
}

// RemoveLicense deletes the template's LICENSE from root. A missing file is
// not an error.
func RemoveLicense(root string) error {
	path := filepath.Join(root, LicenseFile)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing template license: %w", err)
	}
	return nil
}
