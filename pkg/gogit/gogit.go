// Package gogit implements release.Repository in-process with go-git, for
// machines without a git executable.
package gogit

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"golang.org/x/mod/semver"

	"github.com/wonderfulspam/pypi-workflow-generator/pkg/release"
)

// DefaultRemoteName is the remote used when none is configured.
const DefaultRemoteName = "origin"

// Repo wraps a go-git repository.
type Repo struct {
	repo   *git.Repository
	remote string
	auth   transport.AuthMethod
}

var _ release.Repository = (*Repo)(nil)

// Option customizes a Repo.
type Option func(*Repo)

// WithRemote sets the remote used for remote tag operations.
func WithRemote(name string) Option {
	return func(r *Repo) {
		if name != "" {
			r.remote = name
		}
	}
}

// WithAuth sets credentials for remote operations.
func WithAuth(auth transport.AuthMethod) Option {
	return func(r *Repo) {
		r.auth = auth
	}
}

// Open opens the repository containing dir, searching parent directories.
func Open(dir string, opts ...Option) (*Repo, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("opening repository at %s: %w", dir, err)
	}
	return Wrap(repo, opts...), nil
}

// Wrap adapts an already opened go-git repository.
func Wrap(repo *git.Repository, opts ...Option) *Repo {
	r := &Repo{repo: repo, remote: DefaultRemoteName}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Repo) TagExists(ctx context.Context, name string, remote bool) (bool, error) {
	if remote {
		return r.remoteTagExists(ctx, name)
	}

	_, err := r.repo.Tag(name)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, git.ErrTagNotFound):
		return false, nil
	default:
		return false, fmt.Errorf("looking up tag %s: %w", name, err)
	}
}

func (r *Repo) remoteTagExists(ctx context.Context, name string) (bool, error) {
	rem, err := r.repo.Remote(r.remote)
	if err != nil {
		return false, fmt.Errorf("remote %s: %w", r.remote, err)
	}

	refs, err := rem.ListContext(ctx, &git.ListOptions{Auth: r.auth})
	if err != nil {
		if errors.Is(err, transport.ErrEmptyRemoteRepository) {
			return false, nil
		}
		return false, fmt.Errorf("listing remote %s: %w", r.remote, err)
	}

	want := plumbing.NewTagReferenceName(name)
	for _, ref := range refs {
		if ref.Name() == want {
			return true, nil
		}
	}
	return false, nil
}

func (r *Repo) DeleteTag(ctx context.Context, name string, remote bool) error {
	if !remote {
		if err := r.repo.DeleteTag(name); err != nil {
			return fmt.Errorf("deleting tag %s: %w", name, err)
		}
		return nil
	}

	exists, err := r.remoteTagExists(ctx, name)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("unable to delete '%s': remote ref does not exist", name)
	}

	spec := config.RefSpec(":" + plumbing.NewTagReferenceName(name).String())
	return r.push(ctx, spec)
}

// CreateTag creates a lightweight tag at HEAD.
func (r *Repo) CreateTag(_ context.Context, name string) error {
	head, err := r.repo.Head()
	if err != nil {
		return fmt.Errorf("resolving HEAD: %w", err)
	}
	if _, err := r.repo.CreateTag(name, head.Hash(), nil); err != nil {
		return fmt.Errorf("creating tag %s: %w", name, err)
	}
	return nil
}

func (r *Repo) PushTag(ctx context.Context, name string) error {
	ref := plumbing.NewTagReferenceName(name).String()
	return r.push(ctx, config.RefSpec(ref+":"+ref))
}

func (r *Repo) push(ctx context.Context, spec config.RefSpec) error {
	if err := spec.Validate(); err != nil {
		return fmt.Errorf("refspec %s: %w", spec, err)
	}
	err := r.repo.PushContext(ctx, &git.PushOptions{
		RemoteName: r.remote,
		RefSpecs:   []config.RefSpec{spec},
		Auth:       r.auth,
	})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return fmt.Errorf("pushing %s to %s: %w", spec, r.remote, err)
	}
	return nil
}

// DescribeLatestTag walks history breadth-first from HEAD and returns a tag
// on the nearest tagged commit. When a commit carries several tags the
// highest semantic version wins.
func (r *Repo) DescribeLatestTag(ctx context.Context) (string, error) {
	tagged, err := r.tagsByCommit()
	if err != nil {
		return "", err
	}
	if len(tagged) == 0 {
		return "", release.ErrNoTags
	}

	head, err := r.repo.Head()
	if err != nil {
		return "", fmt.Errorf("resolving HEAD: %w", err)
	}

	iter, err := r.repo.Log(&git.LogOptions{From: head.Hash(), Order: git.LogOrderBSF})
	if err != nil {
		return "", fmt.Errorf("reading history: %w", err)
	}
	defer iter.Close()

	var found string
	err = iter.ForEach(func(c *object.Commit) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if names, ok := tagged[c.Hash]; ok {
			found = highest(names)
			return storer.ErrStop
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("walking history: %w", err)
	}
	if found == "" {
		return "", release.ErrNoTags
	}
	return found, nil
}

// tagsByCommit maps commit hashes to the tag names pointing at them,
// peeling annotated tags.
func (r *Repo) tagsByCommit() (map[plumbing.Hash][]string, error) {
	iter, err := r.repo.Tags()
	if err != nil {
		return nil, fmt.Errorf("listing tags: %w", err)
	}
	defer iter.Close()

	tagged := make(map[plumbing.Hash][]string)
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		hash := ref.Hash()
		if obj, err := r.repo.TagObject(hash); err == nil {
			commit, err := obj.Commit()
			if err != nil {
				return nil
			}
			hash = commit.Hash
		}
		tagged[hash] = append(tagged[hash], ref.Name().Short())
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing tags: %w", err)
	}
	return tagged, nil
}

// highest picks the greatest tag by semantic version order. Tags that are
// not valid semver sort below valid ones and fall back to name order.
func highest(names []string) string {
	best := names[0]
	for _, n := range names[1:] {
		switch c := semver.Compare(n, best); {
		case c > 0:
			best = n
		case c == 0 && n > best:
			best = n
		}
	}
	return best
}
