package scaffold

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fatih/color"

	"github.com/reactcs/create-react-cs/internal/config"
	"github.com/reactcs/create-react-cs/internal/manifest"
)

type nextStep struct {
	script string
	help   string
}

var nextSteps = []nextStep{
	{"start", "Starts the development server."},
	{"build", "Bundles the app into static files for production."},
	{"test", "Starts the test runner."},
}

func (r *run) reportSuccess() {
	w := r.p.out()
	pm := r.p.Settings.PackageManager
	if pm == "" {
		pm = config.DefaultPackageManager
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Success! Created %s at %s\n", r.target.Name, r.target.Root)

	var available []nextStep
	for _, s := range nextSteps {
		if r.scripts[s.script] {
			available = append(available, s)
		}
	}
	if len(available) > 0 {
		fmt.Fprintln(w, "Inside that directory, you can run several commands:")
		for _, s := range available {
			fmt.Fprintln(w)
			fmt.Fprintf(w, "  %s\n", color.CyanString(scriptCommand(pm, s.script)))
			fmt.Fprintf(w, "    %s\n", s.help)
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "We suggest that you begin by typing:")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s %s\n", color.CyanString("cd"), cdPath(r.target))
	if r.scripts["start"] {
		fmt.Fprintf(w, "  %s\n", color.CyanString(scriptCommand(pm, "start")))
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Happy hacking!")
}

// scriptCommand is how the user runs script with pm. npm only has
// shorthands for start and test.
func scriptCommand(pm, script string) string {
	if pm == "npm" && script != "start" && script != "test" {
		return pm + " run " + script
	}
	return pm + " " + script
}

// cdPath is the project path relative to where the tool was started, or the
// absolute path when the project lives outside it.
func cdPath(t *Target) string {
	rel, err := filepath.Rel(t.OriginalCwd, t.Root)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return t.Root
	}
	return rel
}

func scriptNames(d *manifest.Descriptor) map[string]bool {
	names := make(map[string]bool)
	if len(d.Scripts) == 0 {
		return names
	}
	var scripts map[string]json.RawMessage
	if err := json.Unmarshal(d.Scripts, &scripts); err != nil {
		return names
	}
	for name := range scripts {
		names[name] = true
	}
	return names
}

func parentDir(path string) string {
	return filepath.Dir(path)
}
