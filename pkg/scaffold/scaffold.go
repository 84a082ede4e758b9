// Package scaffold writes the packaging files the generated workflows
// expect: a setuptools_scm pyproject.toml and a setup.py whose local
// version scheme appends .dev<run id> on pull request builds.
package scaffold

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"path/filepath"
	"text/template"

	"github.com/spf13/afero"
)

// DefaultPackageName is used when no package name is given.
const DefaultPackageName = "your-package-name"

// ErrAlreadyInitialized is returned when a file exists and Force is not set.
var ErrAlreadyInitialized = errors.New("project already initialized")

//go:embed templates/*.tmpl
var bundled embed.FS

var files = []string{"pyproject.toml", "setup.py"}

// Options controls Init.
type Options struct {
	PackageName   string
	PythonVersion string
	Force         bool
}

// Init writes pyproject.toml and setup.py into dir and returns their paths.
func Init(fsys afero.Fs, dir string, opts Options) ([]string, error) {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	if opts.PackageName == "" {
		opts.PackageName = DefaultPackageName
	}
	if opts.PythonVersion == "" {
		opts.PythonVersion = "3.8"
	}

	if !opts.Force {
		for _, name := range files {
			path := filepath.Join(dir, name)
			exists, err := afero.Exists(fsys, path)
			if err != nil {
				return nil, fmt.Errorf("checking %s: %w", path, err)
			}
			if exists {
				return nil, fmt.Errorf("%w: %s exists (use --force to overwrite)", ErrAlreadyInitialized, path)
			}
		}
	}

	tmpl, err := template.ParseFS(bundled, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parsing scaffold templates: %w", err)
	}

	if err := fsys.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating %s: %w", dir, err)
	}

	var written []string
	for _, name := range files {
		var buf bytes.Buffer
		if err := tmpl.ExecuteTemplate(&buf, name+".tmpl", opts); err != nil {
			return nil, fmt.Errorf("rendering %s: %w", name, err)
		}
		path := filepath.Join(dir, name)
		if err := afero.WriteFile(fsys, path, buf.Bytes(), 0644); err != nil {
			return nil, fmt.Errorf("writing %s: %w", path, err)
		}
		written = append(written, path)
	}
	return written, nil
}
