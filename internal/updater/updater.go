package updater

import (
	"context"
	"time"
)

// LatestResolver returns the latest published version of a package.
// *registry.Client satisfies it.
type LatestResolver interface {
	ResolveLatestVersion(ctx context.Context, pkg string) (string, error)
}

// Updater checks whether the running version is behind the registry.
type Updater struct {
	currentVersion string
	packageName    string
	resolver       LatestResolver
	maxAge         time.Duration
	now            func() time.Time
}

// Option configures an Updater.
type Option func(*Updater)

// WithMaxAge sets how long a cached answer is trusted.
func WithMaxAge(d time.Duration) Option {
	return func(u *Updater) {
		u.maxAge = d
	}
}

// WithClock replaces time.Now (useful for testing).
func WithClock(now func() time.Time) Option {
	return func(u *Updater) {
		u.now = now
	}
}

// New creates an Updater for packageName at currentVersion.
func New(currentVersion, packageName string, resolver LatestResolver, opts ...Option) *Updater {
	u := &Updater{
		currentVersion: currentVersion,
		packageName:    packageName,
		resolver:       resolver,
		maxAge:         DefaultCacheMaxAge,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// CurrentVersion returns the version this updater was created with.
func (u *Updater) CurrentVersion() string {
	return u.currentVersion
}
