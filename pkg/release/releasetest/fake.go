// Package releasetest provides an in-memory release.Repository for tests.
package releasetest

import (
	"context"
	"fmt"
	"sort"

	"github.com/wonderfulspam/pypi-workflow-generator/pkg/release"
)

// Call records one mutating operation performed on a Repository.
type Call struct {
	Op     string
	Tag    string
	Remote bool
}

// Repository keeps local and remote tag namespaces in maps. Err fields
// inject failures into the matching operation.
type Repository struct {
	Local  map[string]bool
	Remote map[string]bool
	Latest string

	ExistsErr       error
	DeleteLocalErr  error
	DeleteRemoteErr error
	CreateErr       error
	PushErr         error
	DescribeErr     error

	Calls []Call
}

var _ release.Repository = (*Repository)(nil)

// New returns a repository with the given local tags. The last tag is
// reported as the latest.
func New(tags ...string) *Repository {
	r := &Repository{
		Local:  map[string]bool{},
		Remote: map[string]bool{},
	}
	for _, t := range tags {
		r.Local[t] = true
		r.Latest = t
	}
	return r
}

func (r *Repository) namespace(remote bool) map[string]bool {
	if remote {
		return r.Remote
	}
	return r.Local
}

func (r *Repository) TagExists(_ context.Context, name string, remote bool) (bool, error) {
	if r.ExistsErr != nil {
		return false, r.ExistsErr
	}
	return r.namespace(remote)[name], nil
}

func (r *Repository) DeleteTag(_ context.Context, name string, remote bool) error {
	r.Calls = append(r.Calls, Call{Op: "delete", Tag: name, Remote: remote})
	if remote && r.DeleteRemoteErr != nil {
		return r.DeleteRemoteErr
	}
	if !remote && r.DeleteLocalErr != nil {
		return r.DeleteLocalErr
	}
	ns := r.namespace(remote)
	if !ns[name] {
		return fmt.Errorf("tag '%s' not found", name)
	}
	delete(ns, name)
	return nil
}

func (r *Repository) CreateTag(_ context.Context, name string) error {
	r.Calls = append(r.Calls, Call{Op: "create", Tag: name})
	if r.CreateErr != nil {
		return r.CreateErr
	}
	if r.Local[name] {
		return fmt.Errorf("tag '%s' already exists", name)
	}
	r.Local[name] = true
	return nil
}

func (r *Repository) PushTag(_ context.Context, name string) error {
	r.Calls = append(r.Calls, Call{Op: "push", Tag: name, Remote: true})
	if r.PushErr != nil {
		return r.PushErr
	}
	if !r.Local[name] {
		return fmt.Errorf("src refspec %s does not match any", name)
	}
	r.Remote[name] = true
	return nil
}

func (r *Repository) DescribeLatestTag(_ context.Context) (string, error) {
	if r.DescribeErr != nil {
		return "", r.DescribeErr
	}
	if r.Latest == "" {
		return "", release.ErrNoTags
	}
	return r.Latest, nil
}

// Mutations returns the recorded calls, or nil when none were made.
func (r *Repository) Mutations() []Call {
	return r.Calls
}

// LocalTags returns the sorted local tag names.
func (r *Repository) LocalTags() []string {
	tags := make([]string, 0, len(r.Local))
	for t := range r.Local {
		tags = append(tags, t)
	}
	sort.Strings(tags)
	return tags
}
