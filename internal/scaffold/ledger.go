package scaffold

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// backupPrefix names the hidden directory inside the root that holds
// originals of files the run overwrote.
const backupPrefix = ".create-react-cs-backup-"

// Ledger records what the current run did to a project root: the paths it
// created and the pre-existing files it overwrote. Only created paths are
// ever removed on rollback, and overwritten files get their original content
// back, so files the user already had in the directory survive a failed run.
//
// Paths are slash-separated and relative to the root.
type Ledger struct {
	root      string
	entries   []string
	before    map[string]bool
	backupDir string
	backups   []string
}

// RollbackResult describes what a rollback removed and restored.
type RollbackResult struct {
	Removed     []string
	Restored    []string
	RootRemoved bool
	Err         error
}

// NewLedger returns an empty ledger for root.
func NewLedger(root string) *Ledger {
	return &Ledger{root: root}
}

// Snapshot remembers which entries exist in root right now.
func (l *Ledger) Snapshot() error {
	names, err := l.list()
	if err != nil {
		return err
	}
	l.before = make(map[string]bool, len(names))
	for _, n := range names {
		l.before[n] = true
	}
	return nil
}

// RecordNew appends every top-level entry that appeared since the last
// Snapshot.
func (l *Ledger) RecordNew() error {
	names, err := l.list()
	if err != nil {
		return err
	}
	for _, n := range names {
		if !l.before[n] && !l.isBackupDir(n) {
			l.add(n)
		}
	}
	return nil
}

// Prepare is called before rel is written. A missing path is recorded as
// created (its highest missing ancestor, so new directories inside
// pre-existing ones are tracked). A pre-existing file is moved aside so
// Rollback or Restore can put it back.
func (l *Ledger) Prepare(rel string, isDir bool) error {
	if l.created(rel) || l.HasBackup(rel) {
		return nil
	}

	info, err := os.Lstat(l.abs(rel))
	switch {
	case os.IsNotExist(err):
		l.add(l.firstMissing(rel))
		return nil
	case err != nil:
		return fmt.Errorf("inspecting %s: %w", rel, err)
	case isDir || info.IsDir():
		return nil
	}
	return l.backup(rel)
}

// Expect records names that do not exist yet but may be created by the next
// step, even if that step fails half way.
func (l *Ledger) Expect(names ...string) {
	for _, n := range names {
		if _, err := os.Lstat(l.abs(n)); os.IsNotExist(err) {
			l.add(n)
		}
	}
}

// Contains reports whether name was recorded as created.
func (l *Ledger) Contains(name string) bool {
	return slices.Contains(l.entries, name)
}

// HasBackup reports whether the original of rel was moved aside.
func (l *Ledger) HasBackup(rel string) bool {
	return slices.Contains(l.backups, rel)
}

// Entries returns the recorded paths in recording order.
func (l *Ledger) Entries() []string {
	return slices.Clone(l.entries)
}

// Restore puts the original of rel back, replacing whatever the run wrote
// there. It is a no-op when rel has no backup.
func (l *Ledger) Restore(rel string) error {
	i := slices.Index(l.backups, rel)
	if i < 0 {
		return nil
	}
	if err := l.restore(rel); err != nil {
		return err
	}
	l.backups = slices.Delete(l.backups, i, i+1)
	return nil
}

// Commit keeps everything the run wrote and discards the saved originals.
func (l *Ledger) Commit() error {
	l.backups = nil
	return l.dropBackupDir()
}

// Rollback removes created paths in reverse order, restores overwritten
// files, then removes the root itself if nothing else is left in it. It
// keeps going past individual failures.
func (l *Ledger) Rollback() RollbackResult {
	var res RollbackResult
	var errs []error

	for i := len(l.entries) - 1; i >= 0; i-- {
		name := l.entries[i]
		path := l.abs(name)
		if _, err := os.Lstat(path); err != nil {
			continue
		}
		if err := os.RemoveAll(path); err != nil {
			errs = append(errs, fmt.Errorf("removing %s: %w", path, err))
			continue
		}
		res.Removed = append(res.Removed, name)
	}

	for i := len(l.backups) - 1; i >= 0; i-- {
		rel := l.backups[i]
		if err := l.restore(rel); err != nil {
			errs = append(errs, err)
			continue
		}
		res.Restored = append(res.Restored, rel)
	}
	l.backups = nil
	if err := l.dropBackupDir(); err != nil {
		errs = append(errs, err)
	}

	if remaining, err := os.ReadDir(l.root); err == nil && len(remaining) == 0 {
		if err := os.Remove(l.root); err != nil {
			errs = append(errs, fmt.Errorf("removing %s: %w", l.root, err))
		} else {
			res.RootRemoved = true
		}
	}

	res.Err = errors.Join(errs...)
	return res
}

func (l *Ledger) backup(rel string) error {
	if l.backupDir == "" {
		dir, err := os.MkdirTemp(l.root, backupPrefix)
		if err != nil {
			return fmt.Errorf("creating backup directory: %w", err)
		}
		l.backupDir = dir
	}

	saved := filepath.Join(l.backupDir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(saved), 0755); err != nil {
		return fmt.Errorf("creating backup directory: %w", err)
	}
	if err := os.Rename(l.abs(rel), saved); err != nil {
		return fmt.Errorf("backing up %s: %w", rel, err)
	}
	l.backups = append(l.backups, rel)
	return nil
}

func (l *Ledger) restore(rel string) error {
	target := l.abs(rel)
	saved := filepath.Join(l.backupDir, filepath.FromSlash(rel))

	if err := os.RemoveAll(target); err != nil {
		return fmt.Errorf("clearing %s: %w", target, err)
	}
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("restoring %s: %w", target, err)
	}
	if err := os.Rename(saved, target); err != nil {
		return fmt.Errorf("restoring %s: %w", target, err)
	}
	return nil
}

func (l *Ledger) dropBackupDir() error {
	if l.backupDir == "" {
		return nil
	}
	dir := l.backupDir
	l.backupDir = ""
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("removing %s: %w", dir, err)
	}
	return nil
}

// created reports whether rel is a recorded path or lies inside one.
func (l *Ledger) created(rel string) bool {
	for _, e := range l.entries {
		if rel == e || strings.HasPrefix(rel, e+"/") {
			return true
		}
	}
	return false
}

// firstMissing returns the shortest prefix of rel that does not exist.
func (l *Ledger) firstMissing(rel string) string {
	parts := strings.Split(rel, "/")
	for i := 1; i < len(parts); i++ {
		prefix := strings.Join(parts[:i], "/")
		if _, err := os.Lstat(l.abs(prefix)); os.IsNotExist(err) {
			return prefix
		}
	}
	return rel
}

func (l *Ledger) isBackupDir(name string) bool {
	return l.backupDir != "" && name == filepath.Base(l.backupDir)
}

func (l *Ledger) abs(rel string) string {
	return filepath.Join(l.root, filepath.FromSlash(rel))
}

func (l *Ledger) add(name string) {
	if !slices.Contains(l.entries, name) {
		l.entries = append(l.entries, name)
	}
}

func (l *Ledger) list() ([]string, error) {
	entries, err := os.ReadDir(l.root)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", l.root, err)
	}
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name()
	}
	return names, nil
}
