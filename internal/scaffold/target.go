package scaffold

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"slices"
	"strings"
)

// Target is the project being created.
type Target struct {
	Name        string // package name, the base of Root
	Root        string // absolute project directory
	OriginalCwd string // working directory the tool was started from
}

// TemplateRef identifies the template package and the version installed.
type TemplateRef struct {
	Identifier       string
	RequestedVersion string
	ResolvedVersion  string
}

func (r TemplateRef) String() string {
	if r.ResolvedVersion == "" {
		return r.Identifier
	}
	return r.Identifier + "@" + r.ResolvedVersion
}

// ErrMissingProjectDir is returned when no project directory was given.
var ErrMissingProjectDir = errors.New("please specify the project directory")

// Names npm refuses for packages, besides core module names.
var reservedNames = []string{"node_modules", "favicon.ico"}

// Node.js core modules; a project named after one cannot be required.
var coreModules = []string{
	"assert", "buffer", "child_process", "cluster", "console", "constants",
	"crypto", "dgram", "dns", "domain", "events", "fs", "http", "http2",
	"https", "module", "net", "os", "path", "process", "punycode",
	"querystring", "readline", "repl", "stream", "string_decoder", "sys",
	"timers", "tls", "tty", "url", "util", "v8", "vm", "worker_threads", "zlib",
}

// NewTarget resolves projectDir against cwd and validates the resulting
// directory name as an npm package name.
func NewTarget(projectDir, cwd string) (*Target, error) {
	if strings.TrimSpace(projectDir) == "" {
		return nil, ErrMissingProjectDir
	}
	root := projectDir
	if !filepath.IsAbs(root) {
		root = filepath.Join(cwd, projectDir)
	}
	root = filepath.Clean(root)

	name := filepath.Base(root)
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	return &Target{Name: name, Root: root, OriginalCwd: cwd}, nil
}

// ValidateName applies npm's naming rules for new packages.
func ValidateName(name string) error {
	var problems []string

	switch {
	case name == "":
		problems = append(problems, "name length must be greater than zero")
	case len(name) > 214:
		problems = append(problems, "name can no longer contain more than 214 characters")
	}
	if strings.HasPrefix(name, ".") {
		problems = append(problems, "name cannot start with a period")
	}
	if strings.HasPrefix(name, "_") {
		problems = append(problems, "name cannot start with an underscore")
	}
	if strings.TrimSpace(name) != name {
		problems = append(problems, "name cannot contain leading or trailing spaces")
	}
	if strings.ToLower(name) != name {
		problems = append(problems, "name can no longer contain capital letters")
	}
	if strings.ContainsAny(name, "~'!()*") {
		problems = append(problems, `name can no longer contain special characters ("~'!()*")`)
	}
	if url.PathEscape(name) != name {
		problems = append(problems, "name can only contain URL-friendly characters")
	}
	if slices.Contains(reservedNames, strings.ToLower(name)) {
		problems = append(problems, fmt.Sprintf("%s is a blacklisted name", name))
	}
	if slices.Contains(coreModules, name) {
		problems = append(problems, fmt.Sprintf("%s is a core module name", name))
	}

	if len(problems) == 0 {
		return nil
	}
	return &NameError{Name: name, Problems: problems}
}

// NameError lists the npm naming rules a project name breaks.
type NameError struct {
	Name     string
	Problems []string
}

func (e *NameError) Error() string {
	return fmt.Sprintf("cannot create a project named %q because of npm naming restrictions: %s",
		e.Name, strings.Join(e.Problems, "; "))
}
