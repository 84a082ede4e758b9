package generator

import (
	"encoding/json"
	"fmt"
	"strings"
)

const (
	DefaultPythonVersion  = "3.11"
	DefaultTestPath       = "."
	DefaultOutputFilename = "pypi-publish.yml"
)

// Options are the inputs to a render. Values are copied into templates as
// given; PythonVersion in particular is not validated.
type Options struct {
	PythonVersion     string `json:"python_version" yaml:"python_version"`
	TestPath          string `json:"test_path" yaml:"test_path"`
	OutputFilename    string `json:"output_filename,omitempty" yaml:"output_filename,omitempty"`
	ReleaseOnMainPush bool   `json:"release_on_main_push" yaml:"release_on_main_push"`
	VerbosePublish    bool   `json:"verbose_publish" yaml:"verbose_publish"`
}

// DefaultOptions returns the options used when nothing is specified. An
// empty OutputFilename selects the three-file workflow suite.
func DefaultOptions() Options {
	return Options{
		PythonVersion: DefaultPythonVersion,
		TestPath:      DefaultTestPath,
	}
}

// SingleFile reports whether a single named workflow is rendered instead of
// the suite.
func (o Options) SingleFile() bool {
	return o.OutputFilename != ""
}

// withDefaults fills empty string fields.
func (o Options) withDefaults() Options {
	if o.PythonVersion == "" {
		o.PythonVersion = DefaultPythonVersion
	}
	if o.TestPath == "" {
		o.TestPath = DefaultTestPath
	}
	return o
}

// ParseJSONOptions decodes the alternate JSON input form. Keys use the flag
// names with underscores or dashes; missing keys keep the values in base.
func ParseJSONOptions(blob string, base Options) (Options, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(blob), &raw); err != nil {
		return Options{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	opts := base
	for key, value := range raw {
		var err error
		switch strings.ReplaceAll(key, "-", "_") {
		case "python_version":
			err = decodeString(value, &opts.PythonVersion)
		case "test_path":
			err = decodeString(value, &opts.TestPath)
		case "output_filename":
			err = decodeString(value, &opts.OutputFilename)
		case "release_on_main_push":
			err = json.Unmarshal(value, &opts.ReleaseOnMainPush)
		case "verbose_publish":
			err = json.Unmarshal(value, &opts.VerbosePublish)
		default:
			// package_name and any other keys are consumed by the caller.
			continue
		}
		if err != nil {
			return Options{}, fmt.Errorf("%w: field %q: %v", ErrInvalidInput, key, err)
		}
	}

	return opts, nil
}

// decodeString accepts JSON strings and numbers, so {"python_version": 3.9}
// behaves like "3.9".
func decodeString(raw json.RawMessage, dst *string) error {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		*dst = s
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return fmt.Errorf("expected string, got %s", string(raw))
	}
	*dst = n.String()
	return nil
}

// JSONString returns the value of a string key from a JSON options blob.
// Used for keys the generator itself ignores, like package_name.
func JSONString(blob, key string) (string, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(blob), &raw); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	for k, v := range raw {
		if strings.ReplaceAll(k, "-", "_") != key {
			continue
		}
		var s string
		if err := decodeString(v, &s); err != nil {
			return "", fmt.Errorf("%w: field %q: %v", ErrInvalidInput, k, err)
		}
		return s, nil
	}
	return "", nil
}
