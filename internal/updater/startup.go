package updater

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/reactcs/create-react-cs/internal/registry"
)

// CheckAndPrintNotice prints an update notice from the cached answer and,
// when that answer is stale, refreshes it in a background goroutine for the
// next invocation. It never blocks on the network and never fails loudly.
func (u *Updater) CheckAndPrintNotice(ctx context.Context, w io.Writer, configDir string) {
	if registry.ValidateVersion(u.currentVersion) != nil {
		// Development builds have nothing to compare against.
		return
	}

	cache, err := LoadCache(configDir, u.packageName)
	if err != nil {
		cache = nil
	}

	if cache != nil && cache.UpdateAvailable && cache.CurrentVersion == u.currentVersion {
		PrintUpdateNotice(w, u.packageName, cache.CurrentVersion, cache.LatestVersion)
	}

	if u.isStale(cache) {
		go func() { _ = u.Refresh(context.WithoutCancel(ctx), configDir) }()
	}
}

// PrintUpdateNotice prints the update notification to w.
func PrintUpdateNotice(w io.Writer, pkg, current, latest string) {
	fmt.Fprintf(w, "\n%s %s -> %s\n", color.YellowString("Update available:"), current, latest)
	fmt.Fprintf(w, "    Run `npm install -g %s` to upgrade\n\n", pkg)
}

// Refresh queries the registry and rewrites the cache.
func (u *Updater) Refresh(ctx context.Context, configDir string) error {
	latest, err := u.resolver.ResolveLatestVersion(ctx, u.packageName)
	if err != nil {
		return err
	}

	cmp, err := registry.CompareVersions(u.currentVersion, latest)
	if err != nil {
		return err
	}

	return SaveCache(configDir, &VersionCache{
		Package:         u.packageName,
		LatestVersion:   latest,
		CurrentVersion:  u.currentVersion,
		CheckedAt:       u.now(),
		UpdateAvailable: cmp < 0,
	})
}
