package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/wonderfulspam/pypi-workflow-generator/pkg/config"
	"github.com/wonderfulspam/pypi-workflow-generator/pkg/gitcli"
	"github.com/wonderfulspam/pypi-workflow-generator/pkg/gogit"
	"github.com/wonderfulspam/pypi-workflow-generator/pkg/release"
	"github.com/wonderfulspam/pypi-workflow-generator/pkg/release/releasetest"
)

func TestReleaseCommand(t *testing.T) {
	tests := []struct {
		name       string
		tags       []string
		args       []string
		wantTags   []string
		wantRemote bool
		contains   []string
	}{
		{
			name:     "patch bump",
			tags:     []string{"v1.2.3"},
			args:     []string{"patch"},
			wantTags: []string{"v1.2.3", "v1.2.4"},
			contains: []string{"Creating git tag: v1.2.4", "✅ Released v1.2.4", "git push origin v1.2.4"},
		},
		{
			name:     "minor bump",
			tags:     []string{"v1.2.3"},
			args:     []string{"minor"},
			wantTags: []string{"v1.2.3", "v1.3.0"},
		},
		{
			name:     "major bump without tags",
			args:     []string{"major"},
			wantTags: []string{"v1.0.0"},
		},
		{
			name:     "unparsable latest tag",
			tags:     []string{"nightly"},
			args:     []string{"patch"},
			wantTags: []string{"nightly", "v0.0.1"},
		},
		{
			name:       "push",
			tags:       []string{"v0.1.0"},
			args:       []string{"minor", "--push"},
			wantTags:   []string{"v0.1.0", "v0.2.0"},
			wantRemote: true,
			contains:   []string{"Successfully pushed tag v0.2.0"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := releasetest.New(tt.tags...)
			args := append([]string{"release", "--dir", t.TempDir()}, tt.args...)

			code, stdout, stderr := execute(testApp(repo), args...)
			if code != 0 {
				t.Fatalf("Expected success, got exit code %d: %s", code, stderr)
			}

			if got := repo.LocalTags(); !reflect.DeepEqual(got, tt.wantTags) {
				t.Errorf("Expected local tags %v, got %v", tt.wantTags, got)
			}
			created := tt.wantTags[len(tt.wantTags)-1]
			if repo.Remote[created] != tt.wantRemote {
				t.Errorf("Expected remote tag presence %v for %s", tt.wantRemote, created)
			}
			for _, want := range tt.contains {
				if !strings.Contains(stdout, want) {
					t.Errorf("Expected output to contain %q, got:\n%s", want, stdout)
				}
			}
		})
	}
}

func TestReleaseExistingTag(t *testing.T) {
	// Latest reachable tag is v1.0.0 but v1.0.1 was created earlier.
	repo := releasetest.New("v1.0.1", "v1.0.0")

	code, _, stderr := execute(testApp(repo), "release", "patch", "--dir", t.TempDir())
	if code != 1 {
		t.Fatalf("Expected exit code 1, got %d", code)
	}
	if !strings.Contains(stderr, "tag already exists: v1.0.1") || !strings.Contains(stderr, "--overwrite") {
		t.Errorf("Unexpected stderr:\n%s", stderr)
	}
	if len(repo.Mutations()) != 0 {
		t.Errorf("Expected no mutations, got %v", repo.Mutations())
	}

	repo.Remote["v1.0.1"] = true
	code, stdout, stderr := execute(testApp(repo), "release", "patch", "--overwrite", "--dir", t.TempDir())
	if code != 0 {
		t.Fatalf("Expected success with --overwrite, got exit code %d: %s", code, stderr)
	}
	if !strings.Contains(stdout, "Tag v1.0.1 already exists. Overwriting.") {
		t.Errorf("Expected overwrite notice, got:\n%s", stdout)
	}
	if repo.Remote["v1.0.1"] {
		t.Error("Expected remote tag to be deleted on overwrite")
	}
}

func TestReleaseDryRun(t *testing.T) {
	repo := releasetest.New("v2.4.9")

	code, stdout, stderr := execute(testApp(repo), "release", "minor", "--dry-run", "--dir", t.TempDir())
	if code != 0 {
		t.Fatalf("Expected success, got exit code %d: %s", code, stderr)
	}
	if strings.TrimSpace(stdout) != "Next version: v2.5.0" {
		t.Errorf("Unexpected output: %q", stdout)
	}
	if len(repo.Mutations()) != 0 {
		t.Errorf("Expected no mutations, got %v", repo.Mutations())
	}
}

func TestReleaseInvalidLevel(t *testing.T) {
	for _, args := range [][]string{{"release"}, {"release", "huge"}, {"release", "patch", "minor"}} {
		code, _, _ := execute(testApp(releasetest.New()), args...)
		if code != 1 {
			t.Errorf("Expected exit code 1 for %v, got %d", args, code)
		}
	}
}

func TestReleaseToolNotFound(t *testing.T) {
	repo := releasetest.New()
	repo.ExistsErr = fmt.Errorf("%w: exec: \"git\": executable file not found in $PATH", release.ErrToolNotFound)

	code, _, stderr := execute(testApp(repo), "release", "patch", "--dir", t.TempDir())
	if code != 1 {
		t.Fatalf("Expected exit code 1, got %d", code)
	}
	if !strings.Contains(stderr, release.ToolNotFoundHint) || !strings.Contains(stderr, "--backend=go-git") {
		t.Errorf("Expected tool hint, got:\n%s", stderr)
	}
}

func TestReleaseUsesConfig(t *testing.T) {
	dir := t.TempDir()
	cfg := "release:\n  remote: upstream\n  push: true\n  backend: go-git\n"
	if err := os.WriteFile(filepath.Join(dir, config.FileName), []byte(cfg), 0644); err != nil {
		t.Fatal(err)
	}

	repo := releasetest.New("v0.0.1")
	var gotBackend, gotRemote string
	a := testApp(repo)
	a.newRepository = func(backend, _, remote string) (release.Repository, error) {
		gotBackend, gotRemote = backend, remote
		return repo, nil
	}

	code, _, stderr := execute(a, "release", "patch", "--dir", dir)
	if code != 0 {
		t.Fatalf("Expected success, got exit code %d: %s", code, stderr)
	}
	if gotBackend != config.BackendGoGit || gotRemote != "upstream" {
		t.Errorf("Expected go-git/upstream from config, got %s/%s", gotBackend, gotRemote)
	}
	if !repo.Remote["v0.0.2"] {
		t.Error("Expected push enabled by config")
	}

	repo.Latest = "v0.0.2"

	code, _, stderr = execute(a, "release", "patch", "--dir", dir, "--push=false", "--backend", "git", "--remote", "fork")
	if code != 0 {
		t.Fatalf("Expected success, got exit code %d: %s", code, stderr)
	}
	if gotBackend != config.BackendGit || gotRemote != "fork" {
		t.Errorf("Expected flags to override config, got %s/%s", gotBackend, gotRemote)
	}
	if repo.Remote["v0.0.3"] {
		t.Error("Expected --push=false to disable push")
	}
}

func TestOpenRepository(t *testing.T) {
	repo, err := openRepository("git", t.TempDir(), "origin")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if _, ok := repo.(*gitcli.Client); !ok {
		t.Errorf("Expected *gitcli.Client, got %T", repo)
	}

	if _, err := openRepository("go-git", t.TempDir(), "origin"); err == nil {
		t.Error("Expected error opening a directory without a repository")
	}

	_, err = openRepository("svn", t.TempDir(), "origin")
	if err == nil || !strings.Contains(err.Error(), "unknown backend") {
		t.Errorf("Expected unknown backend error, got %v", err)
	}
	if errors.Is(err, release.ErrToolNotFound) {
		t.Error("Unknown backend must not be reported as a missing tool")
	}

	var _ release.Repository = (*gogit.Repo)(nil)
}

func TestReleaseLevelCaseInsensitive(t *testing.T) {
	tests := []struct {
		arg  string
		want string
	}{
		{"Minor", "v1.3.0"},
		{" PATCH ", "v1.2.4"},
		{"MAJOR", "v2.0.0"},
	}

	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			repo := releasetest.New("v1.2.3")

			code, stdout, stderr := execute(testApp(repo), "release", tt.arg, "--dir", t.TempDir())
			if code != 0 {
				t.Fatalf("Expected success, got exit code %d: %s", code, stderr)
			}
			if !strings.Contains(stdout, "✅ Released "+tt.want) {
				t.Errorf("Expected release of %s, got:\n%s", tt.want, stdout)
			}
		})
	}

	code, _, stderr := execute(testApp(releasetest.New()), "release", "huge", "--dir", t.TempDir())
	if code != 1 || !strings.Contains(stderr, "invalid bump level") {
		t.Errorf("Expected invalid bump level error, got exit code %d: %s", code, stderr)
	}
}
