package apt

import (
	"strings"

	"golang.org/x/mod/semver"
)

// IsNewerVersion reports whether candidate is strictly newer than
// current. Debian revisions ("1.18.0-1ubuntu1") are compared on their
// upstream part only; unparsable current versions are treated as
// outdated, unparsable candidates as not newer.
func IsNewerVersion(current, candidate string) bool {
	cur := normalizeVersion(current)
	cand := normalizeVersion(candidate)

	if !semver.IsValid(cur) {
		return true
	}
	if !semver.IsValid(cand) {
		return false
	}
	return semver.Compare(cand, cur) > 0
}

// normalizeVersion maps a Debian package version onto a semver token:
// strip the epoch and revision, keep the upstream version, add the "v"
// prefix semver.Compare requires.
func normalizeVersion(v string) string {
	v = strings.TrimSpace(v)
	if i := strings.Index(v, ":"); i >= 0 {
		v = v[i+1:]
	}
	if i := strings.Index(v, "-"); i >= 0 {
		v = v[:i]
	}
	v = strings.TrimPrefix(v, "v")
	if v == "" {
		return ""
	}
	return "v" + v
}
