package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/MakeNowJust/heredoc"
	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/wonderfulspam/pypi-workflow-generator/pkg/generator"
	"github.com/wonderfulspam/pypi-workflow-generator/pkg/release"
)

// buildVersion is set at build time with -ldflags "-X main.buildVersion=...".
var buildVersion = "dev"

// app carries the state shared by all commands.
type app struct {
	debug bool
	log   *logrus.Logger
	fs    afero.Fs

	// newRepository opens the tag backend for the release command.
	newRepository func(backend, dir, remote string) (release.Repository, error)
}

func newApp(stderr io.Writer) *app {
	log := logrus.New()
	log.SetOutput(stderr)
	log.SetLevel(logrus.InfoLevel)

	return &app{
		log:           log,
		fs:            afero.NewOsFs(),
		newRepository: openRepository,
	}
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "pypi-workflow-generator",
		Short: "Generate GitHub Actions workflows for publishing Python packages to PyPI",
		Long: heredoc.Doc(`
			pypi-workflow-generator writes GitHub Actions workflows that build, test
			and publish a Python package through PyPI Trusted Publishing, and
			creates semantic version release tags.

			Generated files:
			  .github/workflows/_reusable-build-publish.yml  shared build/test/publish logic
			  .github/workflows/release.yml                  release trigger
			  .github/workflows/test-pr.yml                  pull request builds to TestPyPI
		`),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if a.debug {
				a.log.SetLevel(logrus.DebugLevel)
			}
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&a.debug, "debug", "d", false, "print debug output")

	rootCmd.AddCommand(
		newGenerateCmd(a),
		newReleaseCmd(a),
		newInitCmd(a),
		newConfigCmd(a),
		newVersionCmd(),
	)
	rootCmd.CompletionOptions.HiddenDefaultCmd = true

	return rootCmd
}

// run executes the CLI and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	return runApp(newApp(stderr), args, stdout, stderr)
}

func runApp(a *app, args []string, stdout, stderr io.Writer) int {
	rootCmd := newRootCmd(a)
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	if err := rootCmd.Execute(); err != nil {
		reportError(stderr, err, a.debug)
		return 1
	}
	return 0
}

func reportError(w io.Writer, err error, debug bool) {
	color.New(color.FgRed).Fprintf(w, "Error: %v\n", err)
	if hint := hintFor(err); hint != "" {
		fmt.Fprintf(w, "\nHint: %s\n", hint)
	}
	if debug {
		fmt.Fprintf(w, "\n%+v\n", err)
	}
}

func hintFor(err error) string {
	switch {
	case errors.Is(err, release.ErrToolNotFound):
		return release.ToolNotFoundHint + " Alternatively use --backend=go-git."
	case errors.Is(err, generator.ErrTemplateNotFound), errors.Is(err, generator.ErrProjectNotInitialized):
		return generator.InitHint
	case errors.Is(err, generator.ErrInvalidInput):
		return "The --json value must be a JSON object, e.g. '{\"python_version\": \"3.11\"}'."
	default:
		return release.Hint(err)
	}
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}
