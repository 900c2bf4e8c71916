package commands

import (
	"context"
	"fmt"
	"strings"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/gerritops/internal/domain/entities"
	"github.com/rios0rios0/gerritops/internal/domain/repositories"
)

// UpdateBug is the interface for the bug-reference hook handler.
type UpdateBug interface {
	Execute(ctx context.Context, event entities.HookEvent) error
}

// UpdateBugCommand reacts to Gerrit hook events by updating the bug
// tracker: bug references in the commit log drive comments, status
// transitions, and assignee changes on the matching bug tasks. A hook
// failure never blocks Gerrit, so errors are logged per bug and the handler
// keeps going.
type UpdateBugCommand struct {
	mirror            repositories.MirrorRepository
	dbFactory         repositories.GerritDBFactory
	bugTrackerFactory repositories.BugTrackerFactory
}

// NewUpdateBugCommand creates a new UpdateBugCommand.
func NewUpdateBugCommand(
	mirror repositories.MirrorRepository,
	dbFactory repositories.GerritDBFactory,
	bugTrackerFactory repositories.BugTrackerFactory,
) *UpdateBugCommand {
	return &UpdateBugCommand{
		mirror:            mirror,
		dbFactory:         dbFactory,
		bugTrackerFactory: bugTrackerFactory,
	}
}

func (it *UpdateBugCommand) Execute(ctx context.Context, event entities.HookEvent) error {
	registry, err := entities.NewRegistry(entities.RegistryPaths())
	if err != nil {
		return err
	}
	if registry.NoLaunchpadBugs(event.Project) {
		logger.Debugf("%s does not use the bug tracker, nothing to do", event.Project)
		return nil
	}
	settings := entities.NewSiteSettings(registry.Defaults())

	gitLog, err := it.commitLog(ctx, settings, event)
	if err != nil {
		return err
	}
	refs := entities.ParseBugRefs(gitLog)
	if len(refs) == 0 {
		return nil
	}

	tracker, err := it.bugTrackerFactory(repositories.BugTrackerConfig{
		CredentialsFile: entities.EnvOr(entities.EnvGerritCredentials, ""),
		CacheDir:        settings.CacheDir,
	})
	if err != nil {
		return err
	}

	project, err := registry.Lookup(event.Project)
	if err != nil {
		project = entities.Project{Name: event.Project}
	}
	for _, ref := range refs {
		if err = it.processRef(ctx, tracker, settings, event, ref, project, gitLog); err != nil {
			logger.Errorf("Failed to update bug %s: %v", ref.Number, err)
		}
	}
	return nil
}

// commitLog collects the messages the change introduced, merge commits
// excluded; bug references are parsed from it and the merge comment quotes
// it.
func (it *UpdateBugCommand) commitLog(ctx context.Context, settings *entities.SiteSettings, event entities.HookEvent) (string, error) {
	messages, err := it.mirror.CommitLog(ctx, settings.HookRepoPath(event.Project), event.Commit)
	if err != nil {
		return "", err
	}
	return strings.Join(messages, "\n"), nil
}

func (it *UpdateBugCommand) processRef(
	ctx context.Context,
	tracker repositories.BugTrackerRepository,
	settings *entities.SiteSettings,
	event entities.HookEvent,
	ref entities.BugRef,
	project entities.Project,
	gitLog string,
) error {
	targets := project.BugGroups()
	task, err := tracker.TaskFor(ctx, ref.Number, targets)
	if err != nil {
		return err
	}
	if task == nil {
		logger.Debugf("Bug %s has no task for %v, skipping", ref.Number, targets)
		return nil
	}

	actions := ref.ActionsFor()
	switch event.Hook {
	case entities.HookPatchsetCreated:
		return it.onPatchsetCreated(ctx, tracker, settings, event, *task, actions)
	case entities.HookChangeMerged:
		return it.onChangeMerged(ctx, tracker, event, *task, actions,
			project.HasOption("delay-release"), gitLog)
	case entities.HookChangeAbandoned:
		return it.onChangeAbandoned(ctx, tracker, event, *task)
	default:
		return fmt.Errorf("unknown hook %q", event.Hook)
	}
}

func (it *UpdateBugCommand) onPatchsetCreated(
	ctx context.Context,
	tracker repositories.BugTrackerRepository,
	settings *entities.SiteSettings,
	event entities.HookEvent,
	task entities.BugTask,
	actions entities.BugActions,
) error {
	if event.Branch == "master" {
		if actions.InProgress && !fixLanded(task.Status) {
			if err := it.setInProgress(ctx, tracker, settings, event, task); err != nil {
				return err
			}
		}
	} else if series := event.SeriesBranch(); series != "" && actions.InProgress {
		// A fix proposed to a series branch moves the series-targeted task
		// of the same bug, when there is one.
		related, err := tracker.RelatedTasks(ctx, task)
		if err != nil {
			return err
		}
		for _, candidate := range related {
			if strings.HasSuffix(candidate.TargetName, "/"+series) && !fixLanded(candidate.Status) {
				if err = it.setInProgress(ctx, tracker, settings, event, candidate); err != nil {
					return err
				}
				break
			}
		}
	}

	// Only the first patch set announces itself; later iterations would
	// spam the bug.
	if event.Patchset != "1" || (!actions.Comment && !actions.SideNote) {
		return nil
	}
	fix := "Fix"
	if actions.SideNote {
		fix = "Related fix"
	}
	subject := fmt.Sprintf("%s proposed to %s (%s)", fix, event.Project, event.Branch)
	body := fmt.Sprintf("%s proposed to branch: %s\nReview: %s",
		fix, event.Branch, event.ChangeURL)
	return tracker.AddMessage(ctx, task, subject, body)
}

func fixLanded(status string) bool {
	return status == entities.StatusFixCommitted || status == entities.StatusFixReleased
}

// setInProgress moves a task to In Progress and assigns it to the uploader,
// resolved through the OpenID external id Gerrit recorded for their e-mail
// address.
func (it *UpdateBugCommand) setInProgress(
	ctx context.Context,
	tracker repositories.BugTrackerRepository,
	settings *entities.SiteSettings,
	event entities.HookEvent,
	task entities.BugTask,
) error {
	if err := tracker.SetStatus(ctx, task, entities.StatusInProgress); err != nil {
		return err
	}
	if settings.GerritDBDSN == "" {
		return nil
	}
	db, err := it.dbFactory(settings.GerritDBDSN)
	if err != nil {
		return err
	}
	defer db.Close()

	openID, err := db.LaunchpadOpenID(ctx, event.UploaderEmail())
	if err != nil || openID == "" {
		logger.Debugf("No openid for uploader %s: %v", event.Uploader, err)
		return nil
	}
	return tracker.SetAssigneeByOpenID(ctx, task, openID)
}

func (it *UpdateBugCommand) onChangeMerged(
	ctx context.Context,
	tracker repositories.BugTrackerRepository,
	event entities.HookEvent,
	task entities.BugTask,
	actions entities.BugActions,
	delayRelease bool,
	gitLog string,
) error {
	series := ""
	switch {
	case event.Branch == "master":
		// delay-release projects hold bugs at Fix Committed until the
		// release tooling flips them; everyone else releases on merge.
		if !delayRelease && actions.FixReleased {
			if err := tracker.SetStatus(ctx, task, entities.StatusFixReleased); err != nil {
				return err
			}
		} else if task.Status != entities.StatusFixReleased && actions.FixCommitted {
			if err := tracker.SetStatus(ctx, task, entities.StatusFixCommitted); err != nil {
				return err
			}
		}
	case strings.HasPrefix(event.Branch, "proposed/"):
		// The release branch merging means committed fixes are shipping.
		if task.Status == entities.StatusFixCommitted {
			if err := tracker.SetStatus(ctx, task, entities.StatusFixReleased); err != nil {
				return err
			}
		}
	default:
		series = event.SeriesBranch()
	}

	if series != "" {
		if err := it.markSeriesFixed(ctx, tracker, event, task, actions, series); err != nil {
			return err
		}
	}

	if !actions.Comment && !actions.SideNote {
		return nil
	}
	fix := "Fix"
	if actions.SideNote {
		fix = "Related fix"
	}
	subject := fmt.Sprintf("%s merged to %s (%s)", fix, event.Project, event.Branch)
	gitBase := entities.EnvOr(entities.EnvGitBase, "https://git.example.org")
	body := fmt.Sprintf("Reviewed:  %s\nCommitted: %s/cgit/%s/commit/?id=%s\nSubmitter: %s\nBranch:    %s\n\n%s",
		event.ChangeURL, gitBase, event.Project, event.Commit, event.Submitter, event.Branch, gitLog)
	return tracker.AddMessage(ctx, task, subject, body)
}

// markSeriesFixed handles merges to stable and feature branches: a
// series-targeted task of the same bug moves to Fix Committed; without one
// the bug is tagged in-<branch> so release notes can find it.
func (it *UpdateBugCommand) markSeriesFixed(
	ctx context.Context,
	tracker repositories.BugTrackerRepository,
	event entities.HookEvent,
	task entities.BugTask,
	actions entities.BugActions,
	series string,
) error {
	related, err := tracker.RelatedTasks(ctx, task)
	if err != nil {
		return err
	}
	for _, candidate := range related {
		if strings.HasSuffix(candidate.TargetName, "/"+series) &&
			candidate.Status != entities.StatusFixReleased && actions.FixCommitted {
			return tracker.SetStatus(ctx, candidate, entities.StatusFixCommitted)
		}
	}

	tag := strings.ReplaceAll(event.Branch, "/", "-")
	if !isTaggable(tag) {
		return nil
	}
	return tracker.AddTag(ctx, task, "in-"+tag)
}

// isTaggable reports whether a branch name makes a valid bug tag once its
// slashes are folded to hyphens.
func isTaggable(tag string) bool {
	stripped := strings.ReplaceAll(tag, "-", "")
	if stripped == "" {
		return false
	}
	for _, r := range stripped {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}

func (it *UpdateBugCommand) onChangeAbandoned(
	ctx context.Context,
	tracker repositories.BugTrackerRepository,
	event entities.HookEvent,
	task entities.BugTask,
) error {
	subject := fmt.Sprintf("Change abandoned on %s (%s)", event.Project, event.Branch)
	body := fmt.Sprintf("Change abandoned by %s on branch: %s\nReview: %s",
		event.Abandoner, event.Branch, event.ChangeURL)
	if event.Reason != "" {
		body += "\nReason: " + event.Reason
	}
	return tracker.AddMessage(ctx, task, subject, body)
}
