// Package generator renders GitHub Actions workflows for publishing Python
// packages to PyPI.
package generator

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/samber/lo"
	"github.com/spf13/afero"
)

var (
	// ErrTemplateNotFound is returned when a workflow template is missing.
	ErrTemplateNotFound = errors.New("template not found")

	// ErrWriteFailed is returned when the output directory or a file cannot be written.
	ErrWriteFailed = errors.New("write failed")

	// ErrInvalidInput is returned for a malformed JSON options blob.
	ErrInvalidInput = errors.New("invalid input")

	// ErrProjectNotInitialized is returned when pyproject.toml or setup.py is missing.
	ErrProjectNotInitialized = errors.New("project not initialized")
)

// InitHint is shown to users when templates or project files are missing.
const InitHint = "Run 'pypi-workflow-generator init' to initialize your project first."

// Suite file names, in the order they are written.
const (
	ReusableWorkflow = "_reusable-build-publish.yml"
	ReleaseWorkflow  = "release.yml"
	TestPRWorkflow   = "test-pr.yml"
)

// SuiteFiles lists the workflows written when no output filename is given.
var SuiteFiles = []string{ReusableWorkflow, ReleaseWorkflow, TestPRWorkflow}

// ProjectFiles must exist in the project directory before generating.
var ProjectFiles = []string{"pyproject.toml", "setup.py"}

// DefaultOutputDir returns <projectDir>/.github/workflows.
func DefaultOutputDir(projectDir string) string {
	return filepath.Join(projectDir, ".github", "workflows")
}

//go:embed all:templates
var bundled embed.FS

// Result describes a completed generation.
type Result struct {
	FilesCreated []string `json:"files_created"`
	Message      string   `json:"message"`
}

// Generator renders workflow templates onto a filesystem.
type Generator struct {
	fs        afero.Fs
	templates fs.FS
}

// New creates a Generator writing to fsys. A nil fsys uses the OS filesystem.
func New(fsys afero.Fs) *Generator {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	sub, _ := fs.Sub(bundled, "templates")
	return &Generator{fs: fsys, templates: sub}
}

// WithTemplates replaces the bundled templates, e.g. with a project-local
// override directory.
func (g *Generator) WithTemplates(templates fs.FS) *Generator {
	g.templates = templates
	return g
}

// Render returns the rendered documents keyed by output file name.
func (g *Generator) Render(opts Options) (map[string][]byte, error) {
	opts = opts.withDefaults()

	tmpl, err := g.parse()
	if err != nil {
		return nil, err
	}

	names := SuiteFiles
	sources := lo.Map(names, func(name string, _ int) string { return name + ".tmpl" })
	if opts.SingleFile() {
		names = []string{opts.OutputFilename}
		sources = []string{DefaultOutputFilename + ".tmpl"}
	}

	docs := make(map[string][]byte, len(names))
	for i, name := range names {
		t := tmpl.Lookup(sources[i])
		if t == nil {
			return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, sources[i])
		}
		var buf bytes.Buffer
		if err := t.Execute(&buf, opts); err != nil {
			return nil, fmt.Errorf("rendering %s: %w", sources[i], err)
		}
		docs[name] = buf.Bytes()
	}
	return docs, nil
}

func (g *Generator) parse() (*template.Template, error) {
	matches, err := fs.Glob(g.templates, "*.tmpl")
	if err != nil || len(matches) == 0 {
		return nil, fmt.Errorf("%w: no workflow templates available", ErrTemplateNotFound)
	}
	tmpl, err := template.New("workflows").
		Delims("[[", "]]").
		Option("missingkey=error").
		ParseFS(g.templates, "*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}
	return tmpl, nil
}

// Generate renders the workflows for opts and writes them into outputDir,
// creating it if needed. Existing files are overwritten.
func (g *Generator) Generate(opts Options, outputDir string) (*Result, error) {
	docs, err := g.Render(opts)
	if err != nil {
		return nil, err
	}

	if err := g.fs.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("%w: creating %s: %v", ErrWriteFailed, outputDir, err)
	}

	names := SuiteFiles
	if opts.SingleFile() {
		names = []string{opts.OutputFilename}
	}

	result := &Result{}
	for _, name := range names {
		path := filepath.Join(outputDir, name)
		if err := afero.WriteFile(g.fs, path, docs[name], 0644); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrWriteFailed, path, err)
		}
		result.FilesCreated = append(result.FilesCreated, path)
	}
	result.Message = summary(result.FilesCreated)

	return result, nil
}

func summary(files []string) string {
	if len(files) == 1 {
		return fmt.Sprintf("Successfully generated %s", files[0])
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Successfully generated %d workflow files:\n", len(files))
	for _, f := range files {
		fmt.Fprintf(&b, "  - %s\n", f)
	}
	return strings.TrimRight(b.String(), "\n")
}

// CheckProject verifies that the packaging files exist in projectDir. Their
// content is not inspected.
func CheckProject(fsys afero.Fs, projectDir string) error {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	missing := lo.Filter(ProjectFiles, func(name string, _ int) bool {
		_, err := fsys.Stat(filepath.Join(projectDir, name))
		return errors.Is(err, os.ErrNotExist)
	})
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s in %s", ErrProjectNotInitialized, strings.Join(missing, ", "), projectDir)
	}
	return nil
}
