package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// FileName is the manifest file name at a project or template root.
const FileName = "package.json"

// ErrMissingManifest is returned when the extracted template has no package.json.
var ErrMissingManifest = errors.New("template has no " + FileName)

// Descriptor holds the template package.json fields the project manifest is
// built from. Fields are kept as raw JSON so they are copied verbatim;
// a nil field was absent in the template.
type Descriptor struct {
	Name            string          `json:"name,omitempty"`
	Version         string          `json:"version,omitempty"`
	Main            json.RawMessage `json:"main,omitempty"`
	Scripts         json.RawMessage `json:"scripts,omitempty"`
	DevDependencies json.RawMessage `json:"devDependencies,omitempty"`
	Dependencies    json.RawMessage `json:"dependencies,omitempty"`
	Browserslist    json.RawMessage `json:"browserslist,omitempty"`
}

// ReadDescriptor reads and validates root/package.json.
func ReadDescriptor(root string) (*Descriptor, error) {
	path := filepath.Join(root, FileName)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w (looked in %s)", ErrMissingManifest, root)
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return ParseDescriptor(data)
}

// ParseDescriptor validates data against the descriptor schema and decodes it.
func ParseDescriptor(data []byte) (*Descriptor, error) {
	result, err := Validate(data)
	if err != nil {
		return nil, err
	}
	if !result.Valid {
		return nil, &InvalidError{Issues: result.Issues}
	}

	var d Descriptor
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, &InvalidError{Issues: []ValidationIssue{{Message: err.Error()}}}
	}
	return &d, nil
}

// DependencySet returns the sorted union of dependency and devDependency
// names. Versions are left to the package manager.
func (d *Descriptor) DependencySet() ([]string, error) {
	seen := make(map[string]bool)
	for _, raw := range []json.RawMessage{d.Dependencies, d.DevDependencies} {
		if len(raw) == 0 {
			continue
		}
		var deps map[string]json.RawMessage
		if err := json.Unmarshal(raw, &deps); err != nil {
			return nil, fmt.Errorf("decoding dependencies: %w", err)
		}
		for name := range deps {
			seen[name] = true
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
