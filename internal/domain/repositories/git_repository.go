package repositories

import (
	"context"
	"errors"

	"github.com/rios0rios0/gerritops/internal/domain/entities"
)

// ErrFsckFailed marks a repository that failed integrity verification and
// must not be pushed to Gerrit.
var ErrFsckFailed = errors.New("repository failed fsck")

// Runner executes git (and auxiliary) commands with a merged environment,
// returning combined output. A non-zero exit status is reported through the
// status code, not an error; errors mean the command could not be started.
type Runner interface {
	Run(ctx context.Context, dir string, env map[string]string, name string, args ...string) (output string, status int, err error)
}

// GitWorkspace manages the local git copies the sync pipeline works on.
type GitWorkspace interface {
	// MakeLocalCopy creates the local repository for a project: clone from
	// Gerrit, clone from the project's upstream, or initialize an empty
	// repo, in that order. A .gitreview file is committed when the
	// repository starts empty.
	MakeLocalCopy(ctx context.Context, project entities.Project, settings entities.SiteSettings) error

	// UpdateLocalCopy refreshes the remotes of an existing local copy,
	// (re)configuring the upstream remote when the project tracks one.
	UpdateLocalCopy(ctx context.Context, project entities.Project, settings entities.SiteSettings) error

	// SyncUpstream fetches the upstream remote and pushes its branches and
	// tags into Gerrit, honoring the project's upstream-prefix.
	SyncUpstream(ctx context.Context, project entities.Project, settings entities.SiteSettings) error

	// Fsck verifies the repository. A non-zero status fails, and so does a
	// zeroPaddedFilemode warning even on success: C git tolerates those
	// objects but jgit refuses them, so the repo must not reach Gerrit.
	Fsck(ctx context.Context, path string) error

	// PushToGerrit pushes all branches and tags. Failures are logged but do
	// not abort the project; push is retried on the next run.
	PushToGerrit(ctx context.Context, project entities.Project, settings entities.SiteSettings) error

	// FetchMetaConfig checks out refs/meta/config, polling until the ref is
	// replicated.
	FetchMetaConfig(ctx context.Context, path, remoteURL string) error

	// CopyACL installs the ACL source file as project.config, normalizing
	// trailing whitespace. It reports whether the file changed.
	CopyACL(ctx context.Context, aclSource, repoPath string) (bool, error)

	// ListACLGroups extracts every group name referenced by project.config.
	ListACLGroups(path string) ([]string, error)

	// WriteGroupsFile writes the groups lookup file from a group-name to
	// UUID mapping.
	WriteGroupsFile(repoPath string, uuids map[string]string) error

	// CommitAndPushACL commits project.config and pushes it to
	// refs/meta/config.
	CommitAndPushACL(ctx context.Context, repoPath, remoteURL, committer string) error

	// CleanupACLBranch drops the local meta/config state so a failed push
	// does not poison the next run.
	CleanupACLBranch(ctx context.Context, repoPath string) error

	// RemoveRepo deletes a local copy that was left half-created.
	RemoveRepo(path string) error

	// Close removes the temporary SSH wrapper script.
	Close() error
}

// WorkspaceFactory builds a workspace bound to one runner and SSH identity.
type WorkspaceFactory func(runner Runner, settings entities.SiteSettings) (GitWorkspace, error)
