// Package cli defines the Cobra command tree for create-react-cs. The root
// command creates a project; the version and config subcommands report build
// info and manage user settings. Commands only parse flags and format
// output; the work is delegated to internal packages.
package cli
