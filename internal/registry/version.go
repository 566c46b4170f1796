package registry

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// EffectiveVersion decides which template version to install. With no
// request the registry's latest wins. A requested version is honoured only
// when it is greater than or equal to latest; an older request is replaced
// by latest so nobody scaffolds from a template the publisher has moved past.
func EffectiveVersion(requested, latest string) (string, error) {
	lv, err := parseSemver(latest)
	if err != nil {
		return "", fmt.Errorf("parsing latest version %q: %w", latest, err)
	}
	if requested == "" {
		return lv.Original(), nil
	}
	rv, err := parseSemver(requested)
	if err != nil {
		return "", fmt.Errorf("parsing requested version %q: %w", requested, err)
	}
	if rv.Compare(lv) >= 0 {
		return rv.Original(), nil
	}
	return lv.Original(), nil
}

// ValidateVersion reports whether version is a usable semantic version.
func ValidateVersion(version string) error {
	_, err := parseSemver(version)
	return err
}

// CompareVersions compares two version strings using semver.
// Returns -1 if a < b, 0 if equal, 1 if a > b.
func CompareVersions(a, b string) (int, error) {
	av, err := parseSemver(a)
	if err != nil {
		return 0, fmt.Errorf("parsing version %q: %w", a, err)
	}
	bv, err := parseSemver(b)
	if err != nil {
		return 0, fmt.Errorf("parsing version %q: %w", b, err)
	}
	return av.Compare(bv), nil
}

// parseSemver strips a leading "v" and parses the version string strictly.
func parseSemver(version string) (*semver.Version, error) {
	return semver.StrictNewVersion(strings.TrimPrefix(strings.TrimSpace(version), "v"))
}
