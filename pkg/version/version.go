// Package version parses release tags of the form vMAJOR.MINOR.PATCH and
// computes the next tag for a bump level.
package version

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrInvalidVersion is returned when a tag is not a vMAJOR.MINOR.PATCH triple.
	ErrInvalidVersion = errors.New("invalid version")

	// ErrInvalidBumpLevel is returned for anything other than major, minor or patch.
	ErrInvalidBumpLevel = errors.New("invalid bump level")
)

// Version is a semantic version triple. The zero value is v0.0.0.
type Version struct {
	Major int `json:"major" yaml:"major"`
	Minor int `json:"minor" yaml:"minor"`
	Patch int `json:"patch" yaml:"patch"`
}

// String returns the tag form, e.g. "v1.2.3".
func (v Version) String() string {
	return fmt.Sprintf("v%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// IsZero reports whether v is v0.0.0.
func (v Version) IsZero() bool {
	return v == Version{}
}

// Compare returns -1, 0 or +1 depending on whether a sorts before, equal to
// or after b.
func Compare(a, b Version) int {
	switch {
	case a.Major != b.Major:
		return cmpInt(a.Major, b.Major)
	case a.Minor != b.Minor:
		return cmpInt(a.Minor, b.Minor)
	default:
		return cmpInt(a.Patch, b.Patch)
	}
}

// Less reports whether v sorts before w.
func (v Version) Less(w Version) bool {
	return Compare(v, w) < 0
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Parse parses a tag such as "v1.2.3" or "1.2.3". A single leading "v" is
// stripped; the remainder must be exactly three dot-separated non-negative
// decimal integers.
func Parse(text string) (Version, error) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(text), "v")

	parts := strings.Split(trimmed, ".")
	if len(parts) != 3 {
		return Version{}, fmt.Errorf("%w: %q: expected 3 components, got %d", ErrInvalidVersion, text, len(parts))
	}

	var nums [3]int
	for i, part := range parts {
		n, err := parseComponent(part)
		if err != nil {
			return Version{}, fmt.Errorf("%w: %q: %v", ErrInvalidVersion, text, err)
		}
		nums[i] = n
	}

	return Version{Major: nums[0], Minor: nums[1], Patch: nums[2]}, nil
}

// parseComponent accepts digits only, so "+1" and "-0" are rejected even
// though strconv would take them.
func parseComponent(s string) (int, error) {
	if s == "" {
		return 0, errors.New("empty component")
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("non-numeric component %q", s)
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("component %q: %w", s, err)
	}
	return n, nil
}

// ParseOrZero is Parse with the release fallback: anything unparsable is
// treated as v0.0.0.
func ParseOrZero(text string) Version {
	v, err := Parse(text)
	if err != nil {
		return Version{}
	}
	return v
}

// MustParse is like Parse but panics on error. Intended for tests and
// constants.
func MustParse(text string) Version {
	v, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return v
}
