// Package archive unpacks npm-style template tarballs (gzip-compressed tar
// with every entry under a single top-level directory, usually "package/")
// from a byte stream into a destination directory.
package archive

import (
	"archive/tar"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/reactcs/create-react-cs/internal/platform"
)

// Error reports a failure while unpacking. Entry is empty when the failure
// is not tied to a specific archive member.
type Error struct {
	Entry string
	Err   error
}

func (e *Error) Error() string {
	if e.Entry == "" {
		return fmt.Sprintf("extracting archive: %v", e.Err)
	}
	return fmt.Sprintf("extracting %s: %v", e.Entry, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// ErrUnsafePath is returned for entries that would land outside the
// destination directory.
var ErrUnsafePath = errors.New("entry escapes destination directory")

// Result lists what an extraction wrote, as slash-separated paths relative
// to the destination.
type Result struct {
	Files []string
	Dirs  []string
}

// Extractor unpacks template archives.
type Extractor struct {
	// StripComponents is the number of leading path elements removed from
	// every entry name. npm tarballs need 1.
	StripComponents int
}

// New returns an Extractor configured for npm tarballs.
func New() *Extractor {
	return &Extractor{StripComponents: 1}
}

// PrepareFunc is called with the slash-separated relative path of each
// directory or regular file entry before it is written to disk.
type PrepareFunc func(rel string, isDir bool) error

// Extract reads a gzip-compressed tar stream from r and materializes it under
// destDir, which must already exist. Symlinks, hard links and device entries
// are skipped; a template has no business shipping them. prepare may be nil.
func (x *Extractor) Extract(r io.Reader, destDir string, prepare PrepareFunc) (*Result, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, &Error{Err: fmt.Errorf("creating gzip reader: %w", err)}
	}
	defer gz.Close()

	result := &Result{}
	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return result, &Error{Err: fmt.Errorf("reading tar entry: %w", err)}
		}

		rel, ok, err := x.relativeName(hdr.Name)
		if err != nil {
			return result, &Error{Entry: hdr.Name, Err: err}
		}
		if !ok {
			continue
		}
		target, err := safeJoin(destDir, rel)
		if err != nil {
			return result, &Error{Entry: hdr.Name, Err: err}
		}

		if prepare != nil && (hdr.Typeflag == tar.TypeDir || hdr.Typeflag == tar.TypeReg) {
			if err := prepare(rel, hdr.Typeflag == tar.TypeDir); err != nil {
				return result, &Error{Entry: hdr.Name, Err: err}
			}
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, platform.DirPerm); err != nil {
				return result, &Error{Entry: hdr.Name, Err: err}
			}
			result.Dirs = append(result.Dirs, rel)
		case tar.TypeReg:
			if err := writeFile(target, tr, platform.ArchiveFileMode(hdr.Mode)); err != nil {
				return result, &Error{Entry: hdr.Name, Err: err}
			}
			result.Files = append(result.Files, rel)
		default:
			// Links, devices, pax/global headers handled by archive/tar.
		}
	}

	return result, nil
}

// relativeName strips the configured number of leading components and
// cleans the result. It reports false for entries that vanish entirely
// (the top-level directory itself) and an error for absolute names or names
// containing "..".
func (x *Extractor) relativeName(name string) (string, bool, error) {
	name = strings.ReplaceAll(name, "\\", "/")
	if path.IsAbs(name) {
		return "", false, ErrUnsafePath
	}
	var parts []string
	for _, p := range strings.Split(name, "/") {
		switch p {
		case "", ".":
			continue
		case "..":
			return "", false, ErrUnsafePath
		}
		parts = append(parts, p)
	}
	if len(parts) <= x.StripComponents {
		return "", false, nil
	}
	return strings.Join(parts[x.StripComponents:], "/"), true, nil
}

// safeJoin joins rel onto destDir and refuses anything that escapes it.
func safeJoin(destDir, rel string) (string, error) {
	target := filepath.Join(destDir, filepath.FromSlash(rel))
	within, err := filepath.Rel(destDir, target)
	if err != nil || within == ".." || strings.HasPrefix(within, ".."+string(filepath.Separator)) {
		return "", ErrUnsafePath
	}
	return target, nil
}

func writeFile(target string, r io.Reader, mode os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(target), platform.DirPerm); err != nil {
		return err
	}
	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		return fmt.Errorf("writing file: %w", err)
	}
	if err := out.Close(); err != nil {
		return err
	}
	// OpenFile honours umask; make the archived executable bit stick.
	return platform.Chmod(target, mode)
}
