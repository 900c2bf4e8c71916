package commands

import (
	"context"
	"os"
	"path/filepath"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/gerritops/internal/domain/entities"
	"github.com/rios0rios0/gerritops/internal/domain/repositories"
)

// TrackUpstream is the interface for the continuous upstream import run.
type TrackUpstream interface {
	Execute(ctx context.Context, opts TrackUpstreamOptions) error
}

// TrackUpstreamOptions holds runtime options for a single run.
type TrackUpstreamOptions struct {
	Projects []string // If set, only track these projects (CLI override)
}

// TrackUpstreamCommand keeps Gerrit up to date with the upstreams of
// track-upstream projects. It works on dedicated import clones under
// <cache>/import/ so the sync workflow's working copies stay untouched.
type TrackUpstreamCommand struct {
	runner           repositories.Runner
	workspaceFactory repositories.WorkspaceFactory
}

// NewTrackUpstreamCommand creates a new TrackUpstreamCommand.
func NewTrackUpstreamCommand(
	runner repositories.Runner,
	workspaceFactory repositories.WorkspaceFactory,
) *TrackUpstreamCommand {
	return &TrackUpstreamCommand{runner: runner, workspaceFactory: workspaceFactory}
}

func (it *TrackUpstreamCommand) Execute(ctx context.Context, opts TrackUpstreamOptions) error {
	registry, err := entities.NewRegistry(entities.RegistryPaths())
	if err != nil {
		return err
	}
	settings := entities.NewSiteSettings(registry.Defaults())

	cache, err := entities.LoadProgressCache(settings.ProgressCachePath())
	if err != nil {
		return err
	}

	workspace, err := it.workspaceFactory(it.runner, *settings)
	if err != nil {
		return err
	}
	defer workspace.Close()

	only := map[string]bool{}
	for _, name := range opts.Projects {
		only[name] = true
	}

	var summary entities.RunSummary
	for _, project := range registry.Active() {
		if !project.HasOption("track-upstream") {
			continue
		}
		if len(only) > 0 && !only[project.Name] {
			summary.Skipped++
			continue
		}

		// An upstream import before the initial push would race the sync
		// workflow's seeding of the project.
		if !cache.Entry(project.Name).State.AtLeast(entities.StatePushed) {
			logger.Debugf("%s has not been pushed to gerrit yet, skipping", project.Name)
			summary.Skipped++
			continue
		}

		summary.Processed++
		if err = it.trackProject(ctx, workspace, project, settings); err != nil {
			logger.Errorf("Failed to track upstream of %s: %v", project.Name, err)
			summary.Record(project.Name, entities.StageUpstream, err)
		}
	}

	logger.Infof("Run complete: %d projects tracked, %d skipped, %d errors",
		summary.Processed, summary.Skipped, len(summary.Errors))
	return nil
}

func (it *TrackUpstreamCommand) trackProject(
	ctx context.Context,
	workspace repositories.GitWorkspace,
	project entities.Project,
	settings *entities.SiteSettings,
) error {
	// Import clones live in their own tree, keyed like the cache dir.
	importSettings := *settings
	importSettings.CacheDir = filepath.Join(settings.CacheDir, "import")

	repoPath := importSettings.CachePath(project.Name)
	if _, err := os.Stat(repoPath); os.IsNotExist(err) {
		if err = workspace.MakeLocalCopy(ctx, project, importSettings); err != nil {
			return err
		}
	} else if err := workspace.UpdateLocalCopy(ctx, project, importSettings); err != nil {
		return err
	}

	if err := workspace.Fsck(ctx, repoPath); err != nil {
		return err
	}
	return workspace.SyncUpstream(ctx, project, importSettings)
}
