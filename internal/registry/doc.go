// Package registry talks to an npm-compatible package registry. It resolves
// the "latest" dist-tag of a template package, applies the version policy
// that decides which version is installed, and opens the template tarball as
// a byte stream for the archive extractor.
package registry
