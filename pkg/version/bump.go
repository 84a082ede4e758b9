package version

import (
	"fmt"
	"strings"
)

// BumpLevel selects which component of a version is incremented.
type BumpLevel string

const (
	Major BumpLevel = "major"
	Minor BumpLevel = "minor"
	Patch BumpLevel = "patch"
)

// Levels returns every valid bump level in order of significance.
func Levels() []BumpLevel {
	return []BumpLevel{Major, Minor, Patch}
}

// ParseBumpLevel converts a case-insensitive name into a BumpLevel.
func ParseBumpLevel(s string) (BumpLevel, error) {
	level := BumpLevel(strings.ToLower(strings.TrimSpace(s)))
	switch level {
	case Major, Minor, Patch:
		return level, nil
	}
	return "", fmt.Errorf("%w: %q (must be: major, minor, or patch)", ErrInvalidBumpLevel, s)
}

// Bump returns the version that follows v at the given level. Lower
// components are reset to zero. An unknown level returns v unchanged.
func (v Version) Bump(level BumpLevel) Version {
	switch level {
	case Major:
		return Version{Major: v.Major + 1}
	case Minor:
		return Version{Major: v.Major, Minor: v.Minor + 1}
	case Patch:
		return Version{Major: v.Major, Minor: v.Minor, Patch: v.Patch + 1}
	default:
		return v
	}
}

// ResolveNext computes the tag to create from the most recent tag text.
// A nil or unparsable latest tag counts as v0.0.0, so the result is always
// well formed.
func ResolveNext(latest *string, level BumpLevel) Version {
	var base Version
	if latest != nil {
		base = ParseOrZero(*latest)
	}
	return base.Bump(level)
}
