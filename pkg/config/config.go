// Package config loads the optional per-project settings file.
package config

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/wonderfulspam/pypi-workflow-generator/pkg/generator"
)

// FileName is the settings file looked up in the project directory.
const FileName = ".pypi-workflow.yml"

// Backends accepted in release.backend.
const (
	BackendGit   = "git"
	BackendGoGit = "go-git"
)

// Config holds project defaults. Command-line flags override every field.
type Config struct {
	Version   string            `yaml:"version" json:"version"`
	Package   string            `yaml:"package_name,omitempty" json:"package_name,omitempty"`
	Workflows generator.Options `yaml:"workflows" json:"workflows"`
	Release   ReleaseConfig     `yaml:"release" json:"release"`
}

// ReleaseConfig holds defaults for the release command.
type ReleaseConfig struct {
	Remote  string `yaml:"remote" json:"remote"`
	Push    bool   `yaml:"push" json:"push"`
	Backend string `yaml:"backend" json:"backend"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Version:   "1.0",
		Workflows: generator.DefaultOptions(),
		Release: ReleaseConfig{
			Remote:  "origin",
			Backend: BackendGit,
		},
	}
}

// Load reads a configuration file from fsys. YAML is tried first, then
// JSON. Fields missing from the file keep their defaults.
func Load(fsys afero.Fs, filename string) (*Config, error) {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	data, err := afero.ReadFile(fsys, filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		config = Default()
		if jsonErr := json.Unmarshal(data, config); jsonErr != nil {
			return nil, fmt.Errorf("failed to parse config file as YAML or JSON: %w", err)
		}
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", filename, err)
	}
	return config, nil
}

// LoadOrDefault loads FileName from dir, returning the defaults when the
// file does not exist.
func LoadOrDefault(fsys afero.Fs, dir string) (*Config, error) {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	path := filepath.Join(dir, FileName)
	exists, err := afero.Exists(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("checking %s: %w", path, err)
	}
	if !exists {
		return Default(), nil
	}
	return Load(fsys, path)
}

// Validate checks enumerated fields.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Release.Backend) {
	case "", BackendGit, BackendGoGit:
	default:
		return fmt.Errorf("unknown release backend %q (must be: %s or %s)", c.Release.Backend, BackendGit, BackendGoGit)
	}
	return nil
}

// Marshal renders c as YAML.
func (c *Config) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}

// Example is the commented file written by "config init".
const Example = `# pypi-workflow-generator configuration
# Command-line flags override every value in this file.

version: "1.0"

# Name of the Python package. Used for the pre-flight check in "generate".
# package_name: my-package

workflows:
  # Python version pinned in the generated workflows (quoted verbatim)
  python_version: "3.11"

  # Path passed to pytest
  test_path: "."

  # Render a single workflow with this name instead of the
  # _reusable-build-publish.yml / release.yml / test-pr.yml suite
  # output_filename: pypi-publish.yml

  # Publish on every push to main instead of on v*.*.* tags
  release_on_main_push: false

  # Add "verbose: true" to the publish steps
  verbose_publish: false

release:
  # Remote used for --push and for deleting overwritten tags
  remote: origin

  # Push the new tag after creating it
  push: false

  # Tag backend: git (runs the git executable) or go-git (in-process)
  backend: git
`
