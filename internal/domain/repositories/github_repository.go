package repositories

import (
	"context"

	"github.com/rios0rios0/gerritops/internal/domain/entities"
)

// GitHubRepository administers the GitHub mirror organizations.
type GitHubRepository interface {
	// EnsureMirror creates or updates the GitHub repository matching the
	// spec and makes sure the "gerrit" team has push access. Projects whose
	// organization is not managed by the authenticated account are skipped.
	EnsureMirror(ctx context.Context, spec entities.MirrorSpec) (entities.MirrorResult, error)

	// CloseOpenPullRequests comments message on every open pull request of
	// the project's mirror and closes it, returning how many were closed.
	CloseOpenPullRequests(ctx context.Context, project, message string) (int, error)
}

// GitHubFactory builds a GitHub repository from the secure-config file
// (oauth_token, or username/password).
type GitHubFactory func(secureConfigPath string) (GitHubRepository, error)
