package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/MakeNowJust/heredoc"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/wonderfulspam/pypi-workflow-generator/pkg/config"
	"github.com/wonderfulspam/pypi-workflow-generator/pkg/gitcli"
	"github.com/wonderfulspam/pypi-workflow-generator/pkg/gogit"
	"github.com/wonderfulspam/pypi-workflow-generator/pkg/release"
	"github.com/wonderfulspam/pypi-workflow-generator/pkg/version"
)

type releaseFlags struct {
	overwrite bool
	push      bool
	remote    string
	backend   string
	dir       string
	dryRun    bool
}

func newReleaseCmd(a *app) *cobra.Command {
	f := &releaseFlags{}
	levels := lo.Map(version.Levels(), func(l version.BumpLevel, _ int) string { return string(l) })

	cmd := &cobra.Command{
		Use:   fmt.Sprintf("release {%s}", strings.Join(levels, "|")),
		Short: "Create a semantic version release tag",
		Long: heredoc.Doc(`
			Create the next vX.Y.Z tag from the latest reachable tag.

			The latest tag is bumped at the given level. A repository without
			tags, or whose latest tag is not a version, starts from v0.0.0.
			Pushing the tag triggers the release workflow when the workflows
			were generated for tag-based releases.
		`),
		Example: heredoc.Doc(`
			pypi-workflow-generator release patch
			pypi-workflow-generator release minor --push
			pypi-workflow-generator release major --overwrite --backend go-git
		`),
		Args:      cobra.ExactArgs(1),
		ValidArgs: levels,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRelease(cmd, a, f, args[0])
		},
	}

	flags := cmd.Flags()
	flags.BoolVar(&f.overwrite, "overwrite", false, "Replace the tag if it already exists, locally and on the remote")
	flags.BoolVar(&f.push, "push", false, "Push the tag to the remote after creating it")
	flags.StringVar(&f.remote, "remote", "", "Remote to push to and delete overwritten tags from (default: origin)")
	flags.StringVar(&f.backend, "backend", "", "Tag backend: git or go-git (default: git)")
	flags.StringVar(&f.dir, "dir", "", "Repository directory (default: current directory)")
	flags.BoolVar(&f.dryRun, "dry-run", false, "Print the next version without creating a tag")

	return cmd
}

func runRelease(cmd *cobra.Command, a *app, f *releaseFlags, arg string) error {
	level, err := version.ParseBumpLevel(arg)
	if err != nil {
		return errors.WithStack(err)
	}

	dir := f.dir
	if dir == "" {
		if dir, err = os.Getwd(); err != nil {
			return errors.Wrap(err, "determining current directory")
		}
	}

	cfg, err := config.LoadOrDefault(a.fs, dir)
	if err != nil {
		return errors.WithStack(err)
	}

	backend := lo.Ternary(f.backend != "", f.backend, cfg.Release.Backend)
	remote := lo.Ternary(f.remote != "", f.remote, cfg.Release.Remote)
	push := cfg.Release.Push
	if cmd.Flags().Changed("push") {
		push = f.push
	}

	log := a.log.WithField("backend", backend).WithField("remote", remote)
	log.WithField("level", level).Debug("preparing release")

	repo, err := a.newRepository(backend, dir, remote)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	manager := release.New(repo, cmd.OutOrStdout()).WithLogger(log)

	if f.dryRun {
		next := manager.NextVersion(ctx, level)
		fmt.Fprintf(cmd.OutOrStdout(), "Next version: %s\n", next)
		return nil
	}

	next, err := manager.Release(ctx, level, release.Options{Overwrite: f.overwrite, Push: push})
	if err != nil {
		return errors.WithStack(err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✅ Released %s\n", next)
	if !push {
		fmt.Fprintf(cmd.OutOrStdout(), "\nPush it with: git push %s %s\n", remote, next)
	}
	return nil
}

// openRepository returns the tag backend selected by name.
func openRepository(backend, dir, remote string) (release.Repository, error) {
	switch strings.ToLower(backend) {
	case "", config.BackendGit:
		return gitcli.New(&gitcli.Config{Binary: "git", Dir: dir, Remote: remote}), nil
	case config.BackendGoGit:
		repo, err := gogit.Open(dir, gogit.WithRemote(remote))
		if err != nil {
			return nil, errors.WithStack(err)
		}
		return repo, nil
	default:
		return nil, errors.Errorf("unknown backend %q (must be: %s or %s)", backend, config.BackendGit, config.BackendGoGit)
	}
}
