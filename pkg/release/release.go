// Package release creates git release tags for the next semantic version.
package release

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/wonderfulspam/pypi-workflow-generator/pkg/version"
)

// Repository is the narrow set of tag operations the manager needs from a
// version control backend. Every call is a fresh query; nothing is cached.
type Repository interface {
	// TagExists reports whether name exists locally, or on the remote when
	// remote is true.
	TagExists(ctx context.Context, name string, remote bool) (bool, error)
	// DeleteTag removes name locally, or from the remote when remote is true.
	DeleteTag(ctx context.Context, name string, remote bool) error
	// CreateTag creates a lightweight local tag at HEAD.
	CreateTag(ctx context.Context, name string) error
	// PushTag publishes a local tag to the remote.
	PushTag(ctx context.Context, name string) error
	// DescribeLatestTag returns the most recent tag reachable from HEAD.
	DescribeLatestTag(ctx context.Context) (string, error)
}

// Options controls Release.
type Options struct {
	Overwrite bool
	Push      bool
}

// Manager drives tag creation against a Repository and reports progress to
// a writer.
type Manager struct {
	repo Repository
	out  io.Writer
	log  logrus.FieldLogger
}

// New creates a Manager. A nil out discards status lines.
func New(repo Repository, out io.Writer) *Manager {
	if out == nil {
		out = io.Discard
	}
	return &Manager{
		repo: repo,
		out:  out,
		log:  logrus.StandardLogger(),
	}
}

// WithLogger replaces the debug logger.
func (m *Manager) WithLogger(log logrus.FieldLogger) *Manager {
	m.log = log
	return m
}

// LatestTag returns the most recent tag, or nil when there is none or the
// query failed.
func (m *Manager) LatestTag(ctx context.Context) *string {
	tag, err := m.repo.DescribeLatestTag(ctx)
	if err != nil {
		m.log.WithError(err).Debug("no latest tag, starting from v0.0.0")
		return nil
	}
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return nil
	}
	return &tag
}

// NextVersion resolves the version that follows the latest tag at level.
// It never fails: a missing or unparsable tag counts as v0.0.0.
func (m *Manager) NextVersion(ctx context.Context, level version.BumpLevel) version.Version {
	latest := m.LatestTag(ctx)
	next := version.ResolveNext(latest, level)
	m.log.WithFields(logrus.Fields{
		"latest": deref(latest),
		"level":  level,
		"next":   next.String(),
	}).Debug("resolved next version")
	return next
}

// CreateReleaseTag creates the local tag for v. When the tag exists it is
// replaced only if overwrite is set; the remote copy is removed on a best
// effort basis because it has often never been pushed.
func (m *Manager) CreateReleaseTag(ctx context.Context, v version.Version, overwrite bool) error {
	name := v.String()

	exists, err := m.repo.TagExists(ctx, name, false)
	if err != nil {
		if errors.Is(err, ErrToolNotFound) {
			return err
		}
		return fmt.Errorf("%w: checking tag %s: %v", ErrTagCreationFailed, name, err)
	}

	if exists {
		if !overwrite {
			return fmt.Errorf("%w: %s", ErrTagAlreadyExists, name)
		}

		fmt.Fprintf(m.out, "Tag %s already exists. Overwriting.\n", name)
		if err := m.repo.DeleteTag(ctx, name, false); err != nil {
			if errors.Is(err, ErrToolNotFound) {
				return err
			}
			return fmt.Errorf("%w: %s: %v", ErrTagDeletionFailed, name, err)
		}

		if err := m.repo.DeleteTag(ctx, name, true); err != nil {
			m.log.WithError(err).WithField("tag", name).Debug("remote tag not deleted, continuing")
		}
	}

	fmt.Fprintf(m.out, "Creating git tag: %s\n", name)
	if err := m.repo.CreateTag(ctx, name); err != nil {
		if errors.Is(err, ErrToolNotFound) {
			return err
		}
		return fmt.Errorf("%w: %s: %v", ErrTagCreationFailed, name, err)
	}

	fmt.Fprintf(m.out, "Successfully created tag %s\n", name)
	return nil
}

// PushReleaseTag publishes an existing local tag to the remote.
func (m *Manager) PushReleaseTag(ctx context.Context, v version.Version) error {
	name := v.String()

	fmt.Fprintf(m.out, "Pushing git tag: %s\n", name)
	if err := m.repo.PushTag(ctx, name); err != nil {
		if errors.Is(err, ErrToolNotFound) {
			return err
		}
		return fmt.Errorf("%w: %s: %v", ErrTagPushFailed, name, err)
	}

	fmt.Fprintf(m.out, "Successfully pushed tag %s\n", name)
	return nil
}

// Release resolves the next version at level, tags it and optionally
// pushes it. The created version is returned even when the push fails.
func (m *Manager) Release(ctx context.Context, level version.BumpLevel, opts Options) (version.Version, error) {
	next := m.NextVersion(ctx, level)

	if err := m.CreateReleaseTag(ctx, next, opts.Overwrite); err != nil {
		return next, err
	}

	if opts.Push {
		if err := m.PushReleaseTag(ctx, next); err != nil {
			return next, err
		}
	}

	return next, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
