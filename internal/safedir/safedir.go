// Package safedir decides whether a directory can receive a new project.
// A handful of files commonly present in a freshly created repository are
// tolerated; anything else is a conflict and stops the run before it writes
// a single byte.
package safedir

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fatih/color"
)

// allowed lists entries that may already exist in the target directory.
var allowed = []string{
	".DS_Store",
	".git",
	".gitattributes",
	".gitignore",
	".gitlab-ci.yml",
	".hg",
	".hgcheck",
	".hgignore",
	".idea",
	".npmignore",
	".travis.yml",
	"docs",
	"LICENSE",
	"README.md",
	"mkdocs.yml",
	"Thumbs.db",
	"*.iml",
}

// errorLogs match logs left behind by an earlier failed install. They are
// tolerated and removed once the directory is found safe.
var errorLogs = []string{
	"npm-debug.log*",
	"yarn-error.log*",
	"yarn-debug.log*",
}

// Conflict is an existing entry that blocks project creation.
type Conflict struct {
	Name  string
	IsDir bool
}

func (c Conflict) String() string {
	if c.IsDir {
		return c.Name + "/"
	}
	return c.Name
}

// Conflicts lists the entries of root that are neither allow-listed nor
// error logs, sorted by name. It never modifies root.
func Conflicts(root string) ([]Conflict, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", root, err)
	}

	var conflicts []Conflict
	for _, e := range entries {
		if matchesAny(allowed, e.Name()) || matchesAny(errorLogs, e.Name()) {
			continue
		}
		conflicts = append(conflicts, Conflict{Name: e.Name(), IsDir: e.IsDir()})
	}
	sort.Slice(conflicts, func(i, j int) bool { return conflicts[i].Name < conflicts[j].Name })
	return conflicts, nil
}

// EnsureSafeToCreate creates root if needed and checks it for conflicts.
// When conflicts exist they are written to w with a corrective hint and the
// result is false; nothing is touched. Otherwise stale error logs are
// removed and the result is true.
func EnsureSafeToCreate(root, displayName string, w io.Writer) (bool, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return false, fmt.Errorf("creating %s: %w", root, err)
	}

	conflicts, err := Conflicts(root)
	if err != nil {
		return false, err
	}

	if len(conflicts) > 0 {
		ReportConflicts(w, displayName, conflicts)
		return false, nil
	}

	if err := RemoveErrorLogs(root); err != nil {
		return false, err
	}
	return true, nil
}

// ReportConflicts prints the conflict list in the format users see when the
// target directory is not empty.
func ReportConflicts(w io.Writer, displayName string, conflicts []Conflict) {
	fmt.Fprintf(w, "The directory %s contains files that could conflict:\n\n", color.GreenString(displayName))
	for _, c := range conflicts {
		if c.IsDir {
			fmt.Fprintf(w, "  %s\n", color.BlueString(c.String()))
		} else {
			fmt.Fprintf(w, "  %s\n", c.String())
		}
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Either try using a new directory name, or remove the files listed above.")
}

// RemoveErrorLogs deletes npm/yarn error logs left in root by a previous run.
func RemoveErrorLogs(root string) error {
	entries, err := os.ReadDir(root)
	if err != nil {
		return fmt.Errorf("reading %s: %w", root, err)
	}
	for _, e := range entries {
		if e.IsDir() || !matchesAny(errorLogs, e.Name()) {
			continue
		}
		path := filepath.Join(root, e.Name())
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("removing stale log %s: %w", path, err)
		}
	}
	return nil
}

func matchesAny(patterns []string, name string) bool {
	for _, p := range patterns {
		if ok, err := doublestar.Match(p, name); err == nil && ok {
			return true
		}
	}
	return false
}
