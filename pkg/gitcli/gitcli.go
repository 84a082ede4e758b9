// Package gitcli implements release.Repository by running the git executable.
package gitcli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/wonderfulspam/pypi-workflow-generator/pkg/release"
)

// Config configures the git command runner.
type Config struct {
	Binary string // executable name or path
	Dir    string // working tree, empty for the current directory
	Remote string // remote used for remote tag operations
	Env    []string
}

// DefaultConfig returns the configuration used when none is given.
func DefaultConfig() *Config {
	return &Config{
		Binary: "git",
		Remote: "origin",
	}
}

// Client runs git subcommands.
type Client struct {
	config *Config
}

var _ release.Repository = (*Client)(nil)

// New creates a Client. Missing fields fall back to DefaultConfig.
func New(config *Config) *Client {
	def := DefaultConfig()
	if config == nil {
		config = def
	}
	if config.Binary == "" {
		config.Binary = def.Binary
	}
	if config.Remote == "" {
		config.Remote = def.Remote
	}
	return &Client{config: config}
}

// Available reports whether the git executable can be found.
func (c *Client) Available() error {
	if _, err := exec.LookPath(c.config.Binary); err != nil {
		return fmt.Errorf("%w: %v", release.ErrToolNotFound, err)
	}
	return nil
}

// CommandError carries the exit status and captured stderr of a failed run.
type CommandError struct {
	Args     []string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("git %s: %v", strings.Join(e.Args, " "), e.Err)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

func (e *CommandError) Unwrap() error { return e.Err }

// run executes git with args and returns trimmed stdout.
func (c *Client) run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, c.config.Binary, args...)
	cmd.Dir = c.config.Dir
	if len(c.config.Env) > 0 {
		cmd.Env = append(cmd.Environ(), c.config.Env...)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var execErr *exec.Error
		if errors.As(err, &execErr) {
			return "", fmt.Errorf("%w: %v", release.ErrToolNotFound, err)
		}
		cmdErr := &CommandError{
			Args:     args,
			ExitCode: -1,
			Stderr:   strings.TrimSpace(stderr.String()),
			Err:      err,
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			cmdErr.ExitCode = exitErr.ExitCode()
		}
		return "", cmdErr
	}

	return strings.TrimSpace(stdout.String()), nil
}

// exitCode returns the exit status carried by err, or -1.
func exitCode(err error) int {
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.ExitCode
	}
	return -1
}

func tagRef(name string) string {
	return "refs/tags/" + name
}

// TagExists checks the local tag namespace with rev-parse, or the remote
// with ls-remote. Both exit non-zero (1 or 2) when the ref is absent.
func (c *Client) TagExists(ctx context.Context, name string, remote bool) (bool, error) {
	var err error
	if remote {
		_, err = c.run(ctx, "ls-remote", "--exit-code", "--tags", c.config.Remote, tagRef(name))
	} else {
		_, err = c.run(ctx, "rev-parse", "--verify", "--quiet", tagRef(name))
	}
	if err == nil {
		return true, nil
	}
	if errors.Is(err, release.ErrToolNotFound) {
		return false, err
	}

	switch code := exitCode(err); {
	case !remote && code == 1:
		return false, nil
	case remote && code == 2:
		return false, nil
	default:
		return false, err
	}
}

// DeleteTag removes the tag locally or deletes it on the remote.
func (c *Client) DeleteTag(ctx context.Context, name string, remote bool) error {
	if remote {
		_, err := c.run(ctx, "push", c.config.Remote, ":"+tagRef(name))
		return err
	}
	_, err := c.run(ctx, "tag", "-d", name)
	return err
}

// CreateTag creates a lightweight tag at HEAD.
func (c *Client) CreateTag(ctx context.Context, name string) error {
	_, err := c.run(ctx, "tag", name)
	return err
}

// PushTag pushes the tag to the configured remote.
func (c *Client) PushTag(ctx context.Context, name string) error {
	_, err := c.run(ctx, "push", c.config.Remote, tagRef(name))
	return err
}

// DescribeLatestTag returns the nearest tag reachable from HEAD.
func (c *Client) DescribeLatestTag(ctx context.Context) (string, error) {
	out, err := c.run(ctx, "describe", "--tags", "--abbrev=0")
	if err != nil {
		if exitCode(err) == 128 {
			return "", fmt.Errorf("%w: %v", release.ErrNoTags, err)
		}
		return "", err
	}
	return out, nil
}
