package domain

import (
	"strings"

	"golang.org/x/mod/semver"
)

// NormalizeVersion strips every leading "v"/"V" and surrounding whitespace
func NormalizeVersion(v string) string {
	return strings.TrimLeft(strings.TrimSpace(v), "vV")
}

// CompareVersions compares two version strings semantically after normalization.
// Returns -1, 0 or 1. Versions that do not parse compare equal to anything.
func CompareVersions(v1, v2 string) int {
	a, okA := canonical(v1)
	b, okB := canonical(v2)
	if !okA || !okB {
		return 0
	}
	return semver.Compare(a, b)
}

// IsNewerVersion reports whether newVersion is strictly greater than currentVersion
func IsNewerVersion(currentVersion, newVersion string) bool {
	return CompareVersions(newVersion, currentVersion) > 0
}

func canonical(v string) (string, bool) {
	n := NormalizeVersion(v)
	if n == "" {
		return "", false
	}
	sv := "v" + n
	if !semver.IsValid(sv) {
		return "", false
	}
	return sv, true
}
