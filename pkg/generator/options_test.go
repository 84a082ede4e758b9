package generator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJSONOptions(t *testing.T) {
	tests := []struct {
		name string
		blob string
		want Options
	}{
		{
			name: "empty object keeps defaults",
			blob: `{}`,
			want: DefaultOptions(),
		},
		{
			name: "all fields",
			blob: `{"python_version": "3.9", "test_path": "tests", "output_filename": "ci.yml",
				"release_on_main_push": true, "verbose_publish": true, "package_name": "demo"}`,
			want: Options{
				PythonVersion:     "3.9",
				TestPath:          "tests",
				OutputFilename:    "ci.yml",
				ReleaseOnMainPush: true,
				VerbosePublish:    true,
			},
		},
		{
			name: "dashed keys",
			blob: `{"python-version": "3.12", "release-on-main-push": true}`,
			want: Options{PythonVersion: "3.12", TestPath: ".", ReleaseOnMainPush: true},
		},
		{
			name: "numeric python version",
			blob: `{"python_version": 3.10}`,
			want: Options{PythonVersion: "3.10", TestPath: "."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseJSONOptions(tt.blob, DefaultOptions())
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseJSONOptionsMatchesFlags(t *testing.T) {
	fromFlags := Options{PythonVersion: "3.9", TestPath: "tests", VerbosePublish: true}

	fromJSON, err := ParseJSONOptions(`{"python_version":"3.9","test_path":"tests","verbose_publish":true}`, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, fromFlags, fromJSON)
}

func TestParseJSONOptionsInvalid(t *testing.T) {
	for _, blob := range []string{
		`{not json`,
		`["python_version"]`,
		`{"release_on_main_push": "yes"}`,
		`{"python_version": {"major": 3}}`,
	} {
		t.Run(blob, func(t *testing.T) {
			_, err := ParseJSONOptions(blob, DefaultOptions())
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestJSONString(t *testing.T) {
	name, err := JSONString(`{"package-name": "demo"}`, "package_name")
	require.NoError(t, err)
	assert.Equal(t, "demo", name)

	name, err = JSONString(`{}`, "package_name")
	require.NoError(t, err)
	assert.Empty(t, name)

	_, err = JSONString(`nope`, "package_name")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestSingleFile(t *testing.T) {
	assert.False(t, DefaultOptions().SingleFile())
	assert.True(t, Options{OutputFilename: "x.yml"}.SingleFile())
}
