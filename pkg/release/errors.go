package release

import "errors"

var (
	// ErrToolNotFound means the version control executable could not be run.
	ErrToolNotFound = errors.New("git command not found")

	// ErrTagAlreadyExists is returned when the tag exists and overwrite was not requested.
	ErrTagAlreadyExists = errors.New("tag already exists")

	// ErrTagDeletionFailed is returned when an existing local tag could not be removed.
	ErrTagDeletionFailed = errors.New("tag deletion failed")

	// ErrTagCreationFailed is returned when the new tag could not be created.
	ErrTagCreationFailed = errors.New("tag creation failed")

	// ErrTagPushFailed is returned when the tag could not be pushed to the remote.
	ErrTagPushFailed = errors.New("tag push failed")

	// ErrNoTags is returned by Repository.DescribeLatestTag when nothing is tagged.
	ErrNoTags = errors.New("no tags found")
)

// ToolNotFoundHint is the remediation shown to users for ErrToolNotFound.
const ToolNotFoundHint = "Please ensure Git is installed and in your PATH."

// Hint returns a remediation message for err, or an empty string.
func Hint(err error) string {
	switch {
	case errors.Is(err, ErrToolNotFound):
		return ToolNotFoundHint
	case errors.Is(err, ErrTagAlreadyExists):
		return "Use --overwrite to replace it."
	default:
		return ""
	}
}
