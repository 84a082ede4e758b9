package main

import (
	"fmt"
	"os"

	"github.com/MakeNowJust/heredoc"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/wonderfulspam/pypi-workflow-generator/pkg/scaffold"
)

type initFlags struct {
	packageName   string
	pythonVersion string
	dir           string
	force         bool
}

func newInitCmd(a *app) *cobra.Command {
	f := &initFlags{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create pyproject.toml and setup.py for setuptools_scm versioning",
		Long: heredoc.Doc(`
			Initialize a Python project for the generated workflows.

			Writes pyproject.toml and setup.py configured for setuptools_scm, so
			package versions are derived from git tags and pull request builds get
			a .dev<run id> suffix.
		`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := f.dir
			if dir == "" {
				wd, err := os.Getwd()
				if err != nil {
					return errors.Wrap(err, "determining current directory")
				}
				dir = wd
			}

			written, err := scaffold.Init(a.fs, dir, scaffold.Options{
				PackageName:   f.packageName,
				PythonVersion: f.pythonVersion,
				Force:         f.force,
			})
			if err != nil {
				return errors.WithStack(err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "✅ Successfully initialized project with pyproject.toml and setup.py.\n")
			for _, path := range written {
				fmt.Fprintf(out, "  - %s\n", path)
			}
			fmt.Fprintf(out, "\nNext steps:\n")
			fmt.Fprintf(out, "1. Review the package metadata in setup.py\n")
			fmt.Fprintf(out, "2. Generate workflows with: pypi-workflow-generator generate --package-name <name>\n")
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.packageName, "package-name", scaffold.DefaultPackageName, "Package name written to setup.py and pyproject.toml")
	flags.StringVar(&f.pythonVersion, "python-version", "3.8", "Minimum supported Python version")
	flags.StringVar(&f.dir, "dir", "", "Project directory (default: current directory)")
	flags.BoolVar(&f.force, "force", false, "Overwrite existing files")

	return cmd
}
