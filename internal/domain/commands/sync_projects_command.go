package commands

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/gerritops/internal/domain/entities"
	"github.com/rios0rios0/gerritops/internal/domain/repositories"
)

const (
	groupUUIDAttempts = 10
	groupUUIDDelay    = time.Second
)

// gerritSystemGroups maps the built-in Gerrit group names an ACL may
// reference to their well-known UUIDs; they never exist in the database.
var gerritSystemGroups = map[string]string{
	"Anonymous Users":  "global:Anonymous-Users",
	"Project Owners":   "global:Project-Owners",
	"Registered Users": "global:Registered-Users",
	"Change Owner":     "global:Change-Owner",
}

// SyncProjects is the interface for the project fleet reconciliation run.
type SyncProjects interface {
	Execute(ctx context.Context, opts SyncProjectsOptions) error
}

// SyncProjectsOptions holds runtime options for a single run.
type SyncProjectsOptions struct {
	Projects []string // If set, only reconcile these projects (CLI override)
}

// SyncProjectsCommand reconciles every registry project against Gerrit and
// the GitHub mirrors: create, seed, verify, push, sync ACLs, mirror. Each
// project advances through a persisted state so interrupted runs resume
// where they stopped instead of redoing remote work.
type SyncProjectsCommand struct {
	runner           repositories.Runner
	mirror           repositories.MirrorRepository
	workspaceFactory repositories.WorkspaceFactory
	gerritFactory    repositories.GerritFactory
	dbFactory        repositories.GerritDBFactory
	githubFactory    repositories.GitHubFactory
}

// NewSyncProjectsCommand creates a new SyncProjectsCommand.
func NewSyncProjectsCommand(
	runner repositories.Runner,
	mirror repositories.MirrorRepository,
	workspaceFactory repositories.WorkspaceFactory,
	gerritFactory repositories.GerritFactory,
	dbFactory repositories.GerritDBFactory,
	githubFactory repositories.GitHubFactory,
) *SyncProjectsCommand {
	return &SyncProjectsCommand{
		runner:           runner,
		mirror:           mirror,
		workspaceFactory: workspaceFactory,
		gerritFactory:    gerritFactory,
		dbFactory:        dbFactory,
		githubFactory:    githubFactory,
	}
}

// syncContext bundles the per-run collaborators so the stage methods stay
// readable.
type syncContext struct {
	registry  *entities.Registry
	settings  *entities.SiteSettings
	cache     *entities.ProgressCache
	workspace repositories.GitWorkspace
	gerrit    repositories.GerritRepository
	db        repositories.GerritDBRepository
	github    repositories.GitHubRepository
	known     map[string]bool // projects Gerrit already has
}

func (it *SyncProjectsCommand) Execute(ctx context.Context, opts SyncProjectsOptions) error {
	registry, err := entities.NewRegistry(entities.RegistryPaths())
	if err != nil {
		return err
	}
	settings := entities.NewSiteSettings(registry.Defaults())

	cache, err := entities.LoadProgressCache(settings.ProgressCachePath())
	if err != nil {
		return err
	}
	defer func() {
		if saveErr := cache.Save(); saveErr != nil {
			logger.Errorf("Failed to save progress cache: %v", saveErr)
		}
	}()

	run, err := it.newSyncContext(ctx, registry, settings, cache)
	if err != nil {
		return err
	}
	defer run.close()

	only := map[string]bool{}
	for _, name := range opts.Projects {
		only[name] = true
	}

	var summary entities.RunSummary
	for _, project := range registry.Active() {
		if len(only) > 0 && !only[project.Name] {
			summary.Skipped++
			continue
		}

		summary.Processed++
		if stageErr := it.processProject(ctx, run, project); stageErr != nil {
			logger.Errorf("Failed to reconcile %v", stageErr)
			summary.Record(stageErr.Project, stageErr.Stage, stageErr.Err)
		}
	}

	logger.Infof("Run complete: %d projects processed, %d skipped, %d errors",
		summary.Processed, summary.Skipped, len(summary.Errors))
	if failed := summary.Failed(); failed > 0 {
		return fmt.Errorf("%d of %d projects failed", failed, summary.Processed)
	}
	return nil
}

func (it *SyncProjectsCommand) newSyncContext(
	ctx context.Context,
	registry *entities.Registry,
	settings *entities.SiteSettings,
	cache *entities.ProgressCache,
) (*syncContext, error) {
	workspace, err := it.workspaceFactory(it.runner, *settings)
	if err != nil {
		return nil, err
	}

	run := &syncContext{
		registry:  registry,
		settings:  settings,
		cache:     cache,
		workspace: workspace,
		known:     map[string]bool{},
	}

	if settings.GerritHost != "" {
		run.gerrit, err = it.gerritFactory(repositories.GerritConfig{
			Host:    settings.GerritHost,
			Port:    settings.GerritPort,
			User:    settings.GerritUser,
			KeyFile: settings.GerritKey,
		})
		if err != nil {
			run.close()
			return nil, err
		}

		projects, listErr := run.gerrit.ListProjects(ctx)
		if listErr != nil {
			run.close()
			return nil, listErr
		}
		for _, name := range projects {
			run.known[name] = true
		}
	}

	if settings.GerritDBDSN != "" {
		run.db, err = it.dbFactory(settings.GerritDBDSN)
		if err != nil {
			run.close()
			return nil, err
		}
	}

	if settings.HasGitHub {
		run.github, err = it.githubFactory(settings.GitHubSecureConfig)
		if err != nil {
			// Mirroring is best-effort; Gerrit reconciliation still runs.
			logger.Warnf("GitHub is unavailable, mirrors will not be updated: %v", err)
			run.github = nil
		}
	}

	return run, nil
}

func (run *syncContext) close() {
	if run.workspace != nil {
		if err := run.workspace.Close(); err != nil {
			logger.Debugf("Failed to remove ssh wrapper: %v", err)
		}
	}
	if run.db != nil {
		run.db.Close()
	}
}

func (it *SyncProjectsCommand) processProject(ctx context.Context, run *syncContext, project entities.Project) *entities.StageError {
	entry := run.cache.Entry(project.Name)

	fail := func(stage entities.Stage, err error) *entities.StageError {
		return &entities.StageError{Project: project.Name, Stage: stage, Err: err}
	}

	if err := it.ensureCreated(ctx, run, project, entry); err != nil {
		return fail(entities.StageCreateProject, err)
	}
	if err := it.ensureLocalCopy(ctx, run, project); err != nil {
		return fail(entities.StageLocalCopy, err)
	}
	if err := run.workspace.Fsck(ctx, run.settings.CachePath(project.Name)); err != nil {
		return fail(entities.StageFsck, err)
	}
	if err := it.ensurePushed(ctx, run, project, entry); err != nil {
		return fail(entities.StagePush, err)
	}
	if project.HasOption("track-upstream") {
		if err := run.workspace.SyncUpstream(ctx, project, *run.settings); err != nil {
			return fail(entities.StageUpstream, err)
		}
	}
	if err := it.ensureLocalMirror(ctx, run, project); err != nil {
		return fail(entities.StageLocalMirror, err)
	}
	if err := it.ensureACL(ctx, run, project, entry); err != nil {
		return fail(entities.StageACL, err)
	}
	if err := it.ensureMirror(ctx, run, project, entry); err != nil {
		return fail(entities.StageMirror, err)
	}

	entry.Advance(entities.StateDone)
	return nil
}

// ensureCreated registers the project in Gerrit when it is missing there.
func (it *SyncProjectsCommand) ensureCreated(ctx context.Context, run *syncContext, project entities.Project, entry *entities.ProjectProgress) error {
	if entry.State.AtLeast(entities.StateCreated) {
		return nil
	}
	if run.gerrit == nil {
		// No Gerrit configured; nothing to register against.
		entry.Advance(entities.StateCreated)
		return nil
	}

	if !run.known[project.Name] {
		if err := run.gerrit.CreateProject(ctx, project.Name); err != nil {
			return err
		}
		run.known[project.Name] = true
		logger.Infof("Created %s in gerrit", project.Name)
	}
	entry.Advance(entities.StateCreated)
	return nil
}

func (it *SyncProjectsCommand) ensureLocalCopy(ctx context.Context, run *syncContext, project entities.Project) error {
	repoPath := run.settings.CachePath(project.Name)
	if _, err := os.Stat(repoPath); os.IsNotExist(err) {
		return run.workspace.MakeLocalCopy(ctx, project, *run.settings)
	}
	return run.workspace.UpdateLocalCopy(ctx, project, *run.settings)
}

func (it *SyncProjectsCommand) ensurePushed(ctx context.Context, run *syncContext, project entities.Project, entry *entities.ProjectProgress) error {
	if entry.State.AtLeast(entities.StatePushed) {
		return nil
	}
	if run.gerrit == nil {
		entry.Advance(entities.StatePushed)
		return nil
	}

	if err := run.workspace.PushToGerrit(ctx, project, *run.settings); err != nil {
		// The next run retries the push; the project stays short of pushed.
		return err
	}
	if run.settings.GerritReplicate {
		if err := run.gerrit.Replicate(ctx, project.Name); err != nil {
			logger.Warnf("Failed to trigger replication of %s: %v", project.Name, err)
		}
	}
	entry.Advance(entities.StatePushed)
	return nil
}

// ensureLocalMirror bare-initializes the server-side mirror the replication
// and cgit paths serve from, handing fresh repositories to the Gerrit
// system account.
func (it *SyncProjectsCommand) ensureLocalMirror(ctx context.Context, run *syncContext, project entities.Project) error {
	mirrorPath := filepath.Join(run.settings.LocalGitDir, project.Name+".git")
	created, err := it.mirror.InitBare(mirrorPath)
	if err != nil {
		return err
	}
	if !created {
		return nil
	}

	owner := run.settings.GerritSystemUser + ":" + run.settings.GerritSystemGroup
	out, status, err := it.runner.Run(ctx, "", nil, "chown", "-R", owner, mirrorPath)
	if err != nil {
		return err
	}
	if status != 0 {
		return fmt.Errorf("failed to chown %s: %s", mirrorPath, out)
	}
	logger.Infof("Created local mirror of %s", project.Name)
	return nil
}

// ensureACL pushes the project's ACL to refs/meta/config when the source
// file changed since the last successful sync.
func (it *SyncProjectsCommand) ensureACL(ctx context.Context, run *syncContext, project entities.Project, entry *entities.ProjectProgress) error {
	aclPath := run.settings.ACLPath(project)
	raw, err := os.ReadFile(aclPath)
	if os.IsNotExist(err) {
		logger.Debugf("No ACL for %s at %s", project.Name, aclPath)
		entry.Advance(entities.StateACLSynced)
		return nil
	}
	if err != nil {
		return err
	}

	sum := sha256.Sum256(raw)
	sha := hex.EncodeToString(sum[:])
	if sha == entry.ACLSHA {
		entry.Advance(entities.StateACLSynced)
		return nil
	}
	if run.gerrit == nil {
		return fmt.Errorf("gerrit is not configured, cannot sync ACL of %s", project.Name)
	}

	repoPath := run.settings.CachePath(project.Name)
	remoteURL := run.settings.RemoteURL(project.Name)
	defer run.workspace.CleanupACLBranch(ctx, repoPath)

	if err = run.workspace.FetchMetaConfig(ctx, repoPath, remoteURL); err != nil {
		return err
	}
	changed, err := run.workspace.CopyACL(ctx, aclPath, repoPath)
	if err != nil {
		return err
	}
	if !changed {
		entry.ACLSHA = sha
		entry.Advance(entities.StateACLSynced)
		return nil
	}

	groups, err := run.workspace.ListACLGroups(repoPath)
	if err != nil {
		return err
	}
	uuids := map[string]string{}
	for _, group := range groups {
		uuid, uuidErr := it.groupUUID(ctx, run, group)
		if uuidErr != nil {
			return uuidErr
		}
		uuids[group] = uuid
	}
	if err = run.workspace.WriteGroupsFile(repoPath, uuids); err != nil {
		return err
	}

	if err = run.workspace.CommitAndPushACL(ctx, repoPath, remoteURL, run.settings.GerritCommitter); err != nil {
		return err
	}

	entry.ACLSHA = sha
	entry.Advance(entities.StateACLSynced)
	logger.Infof("Synced ACL of %s", project.Name)
	return nil
}

// groupUUID resolves an ACL group reference to its UUID, creating missing
// groups in Gerrit and polling until the creation lands in the database.
func (it *SyncProjectsCommand) groupUUID(ctx context.Context, run *syncContext, group string) (string, error) {
	if uuid, ok := gerritSystemGroups[group]; ok {
		return uuid, nil
	}
	if run.db == nil {
		return "", fmt.Errorf("gerrit database is not configured, cannot resolve group %s", group)
	}

	uuid, err := run.db.GroupUUID(ctx, group)
	if err != nil {
		return "", err
	}
	if uuid != "" {
		return uuid, nil
	}

	if err = run.gerrit.CreateGroup(ctx, group); err != nil {
		return "", err
	}
	return entities.PollErr(groupUUIDAttempts, groupUUIDDelay, func() (string, error) {
		uuid, err := run.db.GroupUUID(ctx, group)
		if err != nil {
			return "", err
		}
		if uuid == "" {
			return "", fmt.Errorf("group %s did not appear in the gerrit database", group)
		}
		return uuid, nil
	})
}

// ensureMirror creates or refreshes the GitHub mirror for projects that
// want one. The cached flags gate the API calls: a mirror already created,
// in the gerrit team, and matching the desired feature flags is left alone.
func (it *SyncProjectsCommand) ensureMirror(ctx context.Context, run *syncContext, project entities.Project, entry *entities.ProjectProgress) error {
	if run.github == nil || !run.registry.HasGitHub(project.Name) {
		entry.Advance(entities.StateMirrored)
		return nil
	}

	hasIssues := project.HasOption("has-issues") || run.settings.HasIssues
	hasDownloads := project.HasOption("has-downloads") || run.settings.HasDownloads
	hasWiki := project.HasOption("has-wiki") || run.settings.HasWiki
	if entry.CreatedInGitHub && entry.GerritInTeam &&
		flagMatches(entry.HasIssues, hasIssues) &&
		flagMatches(entry.HasDownloads, hasDownloads) &&
		flagMatches(entry.HasWiki, hasWiki) {
		entry.Advance(entities.StateMirrored)
		return nil
	}

	homepage := project.Homepage
	if homepage == "" {
		homepage = run.settings.Homepage
	}
	result, err := run.github.EnsureMirror(ctx, entities.MirrorSpec{
		Project:      project.Name,
		Description:  project.Description,
		Homepage:     homepage,
		HasIssues:    hasIssues,
		HasDownloads: hasDownloads,
		HasWiki:      hasWiki,
	})
	if err != nil {
		return err
	}

	if result.Created {
		logger.Infof("Created GitHub mirror of %s", project.Name)
	}
	if !result.Skipped {
		entry.CreatedInGitHub = true
		entry.GerritInTeam = entry.GerritInTeam || result.GerritInTeam
		entry.HasIssues = &hasIssues
		entry.HasDownloads = &hasDownloads
		entry.HasWiki = &hasWiki
	}
	entry.Advance(entities.StateMirrored)
	return nil
}

func flagMatches(cached *bool, desired bool) bool {
	return cached != nil && *cached == desired
}
