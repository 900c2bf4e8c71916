package repositories

import (
	"context"

	"github.com/rios0rios0/gerritops/internal/domain/entities"
)

// BugTrackerRepository abstracts the Launchpad REST surface the hook
// handlers drive.
type BugTrackerRepository interface {
	// TaskFor returns the bug's task whose target name is one of targets,
	// or nil when the bug exists but has no matching task.
	TaskFor(ctx context.Context, bugNumber string, targets []string) (*entities.BugTask, error)

	// RelatedTasks returns the other tasks of the task's bug.
	RelatedTasks(ctx context.Context, task entities.BugTask) ([]entities.BugTask, error)

	// AddMessage posts a comment on the task's bug.
	AddMessage(ctx context.Context, task entities.BugTask, subject, body string) error

	// SetStatus updates a task's status.
	SetStatus(ctx context.Context, task entities.BugTask, status string) error

	// SetAssigneeByOpenID assigns the task to the person matching the
	// OpenID identifier; unknown identifiers are ignored.
	SetAssigneeByOpenID(ctx context.Context, task entities.BugTask, openID string) error

	// AddTag tags the task's bug.
	AddTag(ctx context.Context, task entities.BugTask, tag string) error

	// CreateBug files a new bug against a target project.
	CreateBug(ctx context.Context, target, title, description string, tags []string) (entities.CreatedBug, error)

	// Subscribe adds a person to a bug's subscriber list.
	Subscribe(ctx context.Context, bug entities.CreatedBug, person string) error

	// HasBugWithTitle reports whether the target project already has a bug
	// with the exact title (duplicate avoidance).
	HasBugWithTitle(ctx context.Context, target, title string) (bool, error)
}

// BugTrackerConfig locates the credentials and cache of the tracker client.
type BugTrackerConfig struct {
	CredentialsFile string
	CacheDir        string
}

// BugTrackerFactory builds a bug-tracker repository.
type BugTrackerFactory func(cfg BugTrackerConfig) (BugTrackerRepository, error)
