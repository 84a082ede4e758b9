package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/MakeNowJust/heredoc"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/wonderfulspam/pypi-workflow-generator/pkg/config"
	"github.com/wonderfulspam/pypi-workflow-generator/pkg/generator"
)

type generateFlags struct {
	pythonVersion     string
	testPath          string
	outputFilename    string
	releaseOnMainPush bool
	verbosePublish    bool
	packageName       string
	jsonInput         string
	projectDir        string
	outputDir         string
	templatesDir      string
	format            string
}

func newGenerateCmd(a *app) *cobra.Command {
	f := &generateFlags{}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate the PyPI publishing workflows",
		Long: heredoc.Doc(`
			Generate GitHub Actions workflows for automated PyPI publishing.

			By default three files are written to .github/workflows:
			_reusable-build-publish.yml, release.yml and test-pr.yml. With
			--output-filename a single self-contained workflow is written instead.

			Options can also be given as one JSON object with --json, using the
			flag names with underscores. Flags given explicitly take precedence.
		`),
		Example: heredoc.Doc(`
			pypi-workflow-generator generate --package-name mypackage
			pypi-workflow-generator generate --package-name mypackage --release-on-main-push
			pypi-workflow-generator generate --json '{"package_name": "mypackage", "python_version": "3.12"}'
		`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, a, f)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.pythonVersion, "python-version", generator.DefaultPythonVersion, "Python version to use in workflows")
	flags.StringVar(&f.testPath, "test-path", generator.DefaultTestPath, "Path to tests passed to pytest")
	flags.StringVar(&f.outputFilename, "output-filename", "", "Write a single workflow with this file name instead of the three-file suite")
	flags.BoolVar(&f.releaseOnMainPush, "release-on-main-push", false, "Release on every push to main instead of on v*.*.* tags")
	flags.BoolVar(&f.verbosePublish, "verbose-publish", false, "Enable verbose mode for the PyPI publishing actions")
	flags.StringVar(&f.packageName, "package-name", "", "Name of the Python package (required)")
	flags.StringVar(&f.jsonInput, "json", "", "JSON object with the same options, as an alternative to flags")
	flags.StringVar(&f.projectDir, "project-dir", "", "Project directory containing pyproject.toml and setup.py (default: current directory)")
	flags.StringVar(&f.outputDir, "output-dir", "", "Directory to write workflows to (default: <project-dir>/.github/workflows)")
	flags.StringVar(&f.templatesDir, "templates-dir", "", "Directory with custom *.tmpl workflow templates")
	flags.StringVar(&f.format, "format", "text", "Output format: text, json")

	return cmd
}

// resolveOptions merges configuration file, JSON blob and explicit flags,
// in increasing order of precedence.
func resolveOptions(cmd *cobra.Command, f *generateFlags, cfg *config.Config) (generator.Options, string, error) {
	opts := cfg.Workflows
	packageName := cfg.Package

	if f.jsonInput != "" {
		var err error
		opts, err = generator.ParseJSONOptions(f.jsonInput, opts)
		if err != nil {
			return generator.Options{}, "", err
		}
		name, err := generator.JSONString(f.jsonInput, "package_name")
		if err != nil {
			return generator.Options{}, "", err
		}
		if name != "" {
			packageName = name
		}
	}

	flags := cmd.Flags()
	if flags.Changed("python-version") {
		opts.PythonVersion = f.pythonVersion
	}
	if flags.Changed("test-path") {
		opts.TestPath = f.testPath
	}
	if flags.Changed("output-filename") {
		opts.OutputFilename = f.outputFilename
	}
	if flags.Changed("release-on-main-push") {
		opts.ReleaseOnMainPush = f.releaseOnMainPush
	}
	if flags.Changed("verbose-publish") {
		opts.VerbosePublish = f.verbosePublish
	}
	if flags.Changed("package-name") {
		packageName = f.packageName
	}

	return opts, packageName, nil
}

func runGenerate(cmd *cobra.Command, a *app, f *generateFlags) error {
	projectDir := f.projectDir
	if projectDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return errors.Wrap(err, "determining current directory")
		}
		projectDir = wd
	}

	cfg, err := config.LoadOrDefault(a.fs, projectDir)
	if err != nil {
		return errors.WithStack(err)
	}

	opts, packageName, err := resolveOptions(cmd, f, cfg)
	if err != nil {
		return errors.WithStack(err)
	}
	if packageName == "" {
		return errors.New(`required flag "package-name" not set`)
	}

	a.log.WithField("package", packageName).WithField("options", fmt.Sprintf("%+v", opts)).Debug("generating workflows")

	if err := generator.CheckProject(a.fs, projectDir); err != nil {
		return errors.WithStack(err)
	}

	outputDir := f.outputDir
	if outputDir == "" {
		outputDir = generator.DefaultOutputDir(projectDir)
	}

	gen := generator.New(a.fs)
	if f.templatesDir != "" {
		gen.WithTemplates(afero.NewIOFS(afero.NewBasePathFs(a.fs, filepath.Clean(f.templatesDir))))
	}

	result, err := gen.Generate(opts, outputDir)
	if err != nil {
		return errors.WithStack(err)
	}

	switch f.format {
	case "json":
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(struct {
			Success bool `json:"success"`
			*generator.Result
		}{true, result})
	case "text", "":
		fmt.Fprintln(cmd.OutOrStdout(), "✅ "+result.Message)
		return nil
	default:
		return errors.Errorf("unsupported format: %s (supported: text, json)", f.format)
	}
}
