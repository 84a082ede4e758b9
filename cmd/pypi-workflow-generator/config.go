package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/wonderfulspam/pypi-workflow-generator/pkg/config"
)

func newConfigCmd(a *app) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage pypi-workflow-generator configuration",
		Long:  `Manage the optional ` + config.FileName + ` file holding project defaults.`,
	}

	configCmd.AddCommand(
		&cobra.Command{
			Use:   "init [file]",
			Short: "Write an example configuration file",
			Long: `Write a commented configuration file with every option at its default.
If no file is specified, creates ` + config.FileName + ` in the current directory.`,
			Args: cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runConfigInit(cmd, a, args)
			},
		},
		&cobra.Command{
			Use:   "show [file]",
			Short: "Print the effective configuration",
			Long:  `Load a configuration file, or the defaults when none exists, and print it as YAML.`,
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runConfigShow(cmd, a, args)
			},
		},
	)

	return configCmd
}

func runConfigInit(cmd *cobra.Command, a *app, args []string) error {
	outputFile := config.FileName
	if len(args) > 0 {
		outputFile = args[0]
	}

	exists, err := afero.Exists(a.fs, outputFile)
	if err != nil {
		return errors.Wrapf(err, "checking %s", outputFile)
	}
	if exists {
		return errors.Errorf("configuration file %s already exists", outputFile)
	}

	if err := afero.WriteFile(a.fs, outputFile, []byte(config.Example), 0644); err != nil {
		return errors.Wrap(err, "failed to write configuration file")
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✅ Configuration file created: %s\n", outputFile)
	fmt.Fprintf(cmd.OutOrStdout(), "\nYou can now:\n")
	fmt.Fprintf(cmd.OutOrStdout(), "1. Set package_name and adjust the workflow defaults\n")
	fmt.Fprintf(cmd.OutOrStdout(), "2. Run: pypi-workflow-generator generate\n")
	return nil
}

func runConfigShow(cmd *cobra.Command, a *app, args []string) error {
	var (
		cfg *config.Config
		err error
	)
	if len(args) > 0 {
		cfg, err = config.Load(a.fs, args[0])
	} else {
		cfg, err = config.LoadOrDefault(a.fs, ".")
	}
	if err != nil {
		return errors.WithStack(err)
	}

	data, err := cfg.Marshal()
	if err != nil {
		return errors.WithStack(err)
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}
