// Package installer installs a project's dependencies by running an external
// package manager (npm by default) in the project directory. Output is
// streamed straight through to the user; only the exit code is interpreted.
package installer
