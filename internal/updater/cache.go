package updater

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	cacheFileName = "version-check.json"
	// DefaultCacheMaxAge is how long a registry answer stays fresh.
	DefaultCacheMaxAge = 24 * time.Hour
)

// VersionCache is the last registry answer for the tool's own package.
type VersionCache struct {
	Package         string    `json:"package"`
	LatestVersion   string    `json:"latest_version"`
	CurrentVersion  string    `json:"current_version"`
	CheckedAt       time.Time `json:"checked_at"`
	UpdateAvailable bool      `json:"update_available"`
}

// LoadCache reads the answer cached for pkg in configDir. A missing file, or
// one written for a different package (a renamed fork sharing the config
// directory), yields nil, nil so the caller refreshes.
func LoadCache(configDir, pkg string) (*VersionCache, error) {
	data, err := os.ReadFile(cachePath(configDir))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading version cache: %w", err)
	}

	var cache VersionCache
	if err := json.Unmarshal(data, &cache); err != nil {
		return nil, fmt.Errorf("parsing version cache: %w", err)
	}
	if cache.Package != pkg {
		return nil, nil
	}
	return &cache, nil
}

// SaveCache writes cache to configDir, creating the directory if needed. The
// file is replaced atomically so a concurrent run never reads half of it.
func SaveCache(configDir string, cache *VersionCache) error {
	if cache.Package == "" {
		return fmt.Errorf("version cache has no package name")
	}
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := json.MarshalIndent(cache, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling version cache: %w", err)
	}

	tmp, err := os.CreateTemp(configDir, cacheFileName+".*")
	if err != nil {
		return fmt.Errorf("writing version cache: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing version cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing version cache: %w", err)
	}
	if err := os.Rename(tmp.Name(), cachePath(configDir)); err != nil {
		return fmt.Errorf("writing version cache: %w", err)
	}
	return nil
}

func cachePath(configDir string) string {
	return filepath.Join(configDir, cacheFileName)
}

// isStale reports whether cache must be refreshed: missing, older than
// maxAge, or written by a different version of the tool.
func (u *Updater) isStale(cache *VersionCache) bool {
	if cache == nil || cache.CurrentVersion != u.currentVersion {
		return true
	}
	return u.now().Sub(cache.CheckedAt) > u.maxAge
}
