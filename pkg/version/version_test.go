package version

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type Suite struct {
	suite.Suite
}

func TestSuite(t *testing.T) {
	suite.Run(t, &Suite{})
}

func (s *Suite) TestParseRoundTrip() {
	for _, in := range []string{"v0.0.0", "v0.0.1", "v1.2.3", "v10.20.30", "v2024.1.0"} {
		s.Run(in, func() {
			v, err := Parse(in)
			s.Require().NoError(err)
			s.Equal(in, v.String())
		})
	}
}

func (s *Suite) TestParseWithoutPrefix() {
	v, err := Parse("1.2.3")
	s.Require().NoError(err)
	s.Equal(Version{1, 2, 3}, v)
}

func (s *Suite) TestParseInvalid() {
	cases := []string{
		"",
		"v",
		"v1",
		"v1.2",
		"v1.2.3.4",
		"v1.x.3",
		"v1.2.-3",
		"v+1.2.3",
		"v1..3",
		"vv1.2.3",
		"release-1.2.3",
		"v1.2.3-rc1",
	}
	for _, in := range cases {
		s.Run(fmt.Sprintf("parse_%q", in), func() {
			_, err := Parse(in)
			s.Require().Error(err)
			s.True(errors.Is(err, ErrInvalidVersion), "error %v should wrap ErrInvalidVersion", err)
		})
	}
}

func (s *Suite) TestCompare() {
	cases := []struct {
		a, b string
		want int
	}{
		{"v1.2.3", "v1.2.3", 0},
		{"v1.2.3", "v1.2.4", -1},
		{"v1.3.0", "v1.2.9", 1},
		{"v2.0.0", "v1.99.99", 1},
		{"v0.0.1", "v0.1.0", -1},
	}
	for _, tc := range cases {
		s.Run(tc.a+"_"+tc.b, func() {
			s.Equal(tc.want, Compare(MustParse(tc.a), MustParse(tc.b)))
		})
	}
	s.True(MustParse("v1.0.0").Less(MustParse("v1.0.1")))
}

func TestBump(t *testing.T) {
	base := Version{1, 2, 3}

	tests := []struct {
		level BumpLevel
		want  Version
	}{
		{Major, Version{2, 0, 0}},
		{Minor, Version{1, 3, 0}},
		{Patch, Version{1, 2, 4}},
	}
	for _, tt := range tests {
		t.Run(string(tt.level), func(t *testing.T) {
			assert.Equal(t, tt.want, base.Bump(tt.level))
		})
	}

	assert.Equal(t, Version{0, 0, 1}, Version{}.Bump(Patch))
	assert.Equal(t, base, base.Bump(BumpLevel("huge")))
}

func TestParseBumpLevel(t *testing.T) {
	for _, in := range []string{"major", "Minor", " PATCH "} {
		_, err := ParseBumpLevel(in)
		assert.NoError(t, err, in)
	}

	_, err := ParseBumpLevel("build")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidBumpLevel)
}

func TestResolveNext(t *testing.T) {
	str := func(s string) *string { return &s }

	tests := []struct {
		name   string
		latest *string
		level  BumpLevel
		want   string
	}{
		{"no tags", nil, Patch, "v0.0.1"},
		{"no tags major", nil, Major, "v1.0.0"},
		{"valid tag", str("v1.2.3"), Minor, "v1.3.0"},
		{"valid tag without prefix", str("1.2.3"), Patch, "v1.2.4"},
		{"trailing newline", str("v1.2.3\n"), Patch, "v1.2.4"},
		{"two components", str("v1.2"), Patch, "v0.0.1"},
		{"four components", str("v1.2.3.4"), Minor, "v0.1.0"},
		{"non numeric", str("latest"), Major, "v1.0.0"},
		{"negative looking", str("v-1.2.3"), Patch, "v0.0.1"},
		{"empty", str(""), Patch, "v0.0.1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveNext(tt.latest, tt.level)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestParseOrZero(t *testing.T) {
	assert.True(t, ParseOrZero("garbage").IsZero())
	assert.Equal(t, Version{3, 1, 4}, ParseOrZero("v3.1.4"))
}

func TestMustParsePanics(t *testing.T) {
	assert.Panics(t, func() { MustParse("nope") })
}
