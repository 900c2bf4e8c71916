//go:build unit

package commands_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rios0rios0/gerritops/internal/domain/commands"
	"github.com/rios0rios0/gerritops/internal/domain/entities"
	"github.com/rios0rios0/gerritops/internal/domain/repositories"
	"github.com/rios0rios0/gerritops/test/infrastructure/repositorydoubles"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// syncFixture wires a SyncProjectsCommand against spies and a throwaway
// registry plus cache directory.
type syncFixture struct {
	cacheDir  string
	gitDir    string
	runner    *repositorydoubles.StubRunner
	gerrit    *repositorydoubles.SpyGerritRepository
	db        *repositorydoubles.SpyGerritDBRepository
	github    *repositorydoubles.SpyGitHubRepository
	workspace *repositorydoubles.SpyGitWorkspace
	mirror    *repositorydoubles.SpyMirrorRepository
	command   *commands.SyncProjectsCommand
}

// newSyncFixture writes projects.yaml with the given project entries and
// points the process environment at it. Uses t.Setenv, so callers must not
// run in parallel.
func newSyncFixture(t *testing.T, extraDefaults, projectDoc string) *syncFixture {
	t.Helper()

	cacheDir := t.TempDir()
	gitDir := t.TempDir()
	registry := "gerrit-host: review.example.org\n" +
		"gerrit-user: gerritops\n" +
		"gerrit-db-dsn: user:pass@/reviewdb\n" +
		"cache-dir: " + cacheDir + "\n" +
		"local-git-dir: " + gitDir + "\n" +
		extraDefaults +
		"---\n" +
		projectDoc

	setRegistryEnv(t, registry)

	fixture := &syncFixture{
		cacheDir:  cacheDir,
		gitDir:    gitDir,
		runner:    &repositorydoubles.StubRunner{},
		gerrit:    &repositorydoubles.SpyGerritRepository{},
		db:        &repositorydoubles.SpyGerritDBRepository{},
		github:    &repositorydoubles.SpyGitHubRepository{},
		workspace: &repositorydoubles.SpyGitWorkspace{},
		mirror:    &repositorydoubles.SpyMirrorRepository{},
	}
	fixture.command = commands.NewSyncProjectsCommand(
		fixture.runner,
		fixture.mirror,
		func(_ repositories.Runner, _ entities.SiteSettings) (repositories.GitWorkspace, error) {
			return fixture.workspace, nil
		},
		func(_ repositories.GerritConfig) (repositories.GerritRepository, error) {
			return fixture.gerrit, nil
		},
		func(_ string) (repositories.GerritDBRepository, error) {
			return fixture.db, nil
		},
		func(_ string) (repositories.GitHubRepository, error) {
			return fixture.github, nil
		},
	)
	return fixture
}

func (f *syncFixture) reloadCache(t *testing.T) *entities.ProgressCache {
	t.Helper()
	cache, err := entities.LoadProgressCache(filepath.Join(f.cacheDir, "project.cache"))
	require.NoError(t, err)
	return cache
}

func TestSyncProjectsCommand_Execute(t *testing.T) {
	t.Run("should take a fresh project through every stage", func(t *testing.T) {
		// given
		fixture := newSyncFixture(t, "", "- project: openstack/nova\n")

		// when
		err := fixture.command.Execute(context.Background(), commands.SyncProjectsOptions{})

		// then
		require.NoError(t, err)
		assert.Equal(t, []string{"openstack/nova"}, fixture.gerrit.CreatedProjects)
		assert.Equal(t, []string{"openstack/nova"}, fixture.workspace.MadeLocalCopies)
		assert.Len(t, fixture.workspace.FsckedPaths, 1)
		assert.Equal(t, []string{"openstack/nova"}, fixture.workspace.PushedProjects)
		assert.Equal(t, []string{"openstack/nova"}, fixture.gerrit.ReplicatedProjects)
		assert.Equal(t, []string{filepath.Join(fixture.gitDir, "openstack/nova.git")},
			fixture.mirror.InitializedPaths)
		require.Len(t, fixture.github.MirrorSpecs, 1)
		assert.Equal(t, "openstack/nova", fixture.github.MirrorSpecs[0].Project)
		assert.Equal(t, entities.StateDone, fixture.reloadCache(t).Entry("openstack/nova").State)
		assert.True(t, fixture.workspace.Closed)
		assert.True(t, fixture.db.Closed)
	})

	t.Run("should not recreate projects gerrit already knows", func(t *testing.T) {
		// given
		fixture := newSyncFixture(t, "", "- project: openstack/nova\n")
		fixture.gerrit.Projects = []string{"openstack/nova"}

		// when
		err := fixture.command.Execute(context.Background(), commands.SyncProjectsOptions{})

		// then
		require.NoError(t, err)
		assert.Empty(t, fixture.gerrit.CreatedProjects)
		assert.Equal(t, []string{"openstack/nova"}, fixture.workspace.PushedProjects)
	})

	t.Run("should resume from the persisted state on a second run", func(t *testing.T) {
		// given
		fixture := newSyncFixture(t, "", "- project: openstack/nova\n")
		cache, err := entities.LoadProgressCache(filepath.Join(fixture.cacheDir, "project.cache"))
		require.NoError(t, err)
		cache.Entry("openstack/nova").Advance(entities.StatePushed)
		require.NoError(t, cache.Save())

		// when
		err = fixture.command.Execute(context.Background(), commands.SyncProjectsOptions{})

		// then
		require.NoError(t, err)
		assert.Empty(t, fixture.gerrit.CreatedProjects)
		assert.Empty(t, fixture.workspace.PushedProjects)
		// The local copy is still refreshed and verified every run.
		assert.Equal(t, []string{"openstack/nova"}, fixture.workspace.MadeLocalCopies)
		assert.Len(t, fixture.workspace.FsckedPaths, 1)
	})

	t.Run("should only reconcile the requested projects", func(t *testing.T) {
		// given
		fixture := newSyncFixture(t, "",
			"- project: openstack/nova\n- project: openstack/glance\n")

		// when
		err := fixture.command.Execute(context.Background(), commands.SyncProjectsOptions{
			Projects: []string{"openstack/glance"},
		})

		// then
		require.NoError(t, err)
		assert.Equal(t, []string{"openstack/glance"}, fixture.gerrit.CreatedProjects)
	})

	t.Run("should keep processing after a project fails a stage", func(t *testing.T) {
		// given
		fixture := newSyncFixture(t, "",
			"- project: openstack/nova\n- project: openstack/glance\n")
		fixture.workspace.FsckErr = errors.New("zero-padded file modes")

		// when
		err := fixture.command.Execute(context.Background(), commands.SyncProjectsOptions{})

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), "2 of 2 projects failed")
		// Both projects were created before the verification stage failed.
		assert.Len(t, fixture.gerrit.CreatedProjects, 2)
		assert.Empty(t, fixture.workspace.PushedProjects)
	})

	t.Run("should sync the upstream branches of tracked projects", func(t *testing.T) {
		// given
		fixture := newSyncFixture(t, "", `
- project: openstack/imported
  upstream: https://example.org/imported.git
  options:
    - track-upstream
- project: openstack/native
`)

		// when
		err := fixture.command.Execute(context.Background(), commands.SyncProjectsOptions{})

		// then
		require.NoError(t, err)
		assert.Equal(t, []string{"openstack/imported"}, fixture.workspace.SyncedUpstreams)
	})
}

func TestSyncProjectsCommand_ACL(t *testing.T) {
	t.Run("should resolve groups and push a changed ACL to the meta ref", func(t *testing.T) {
		// given
		aclDir := t.TempDir()
		aclPath := filepath.Join(aclDir, "openstack", "nova.config")
		require.NoError(t, os.MkdirAll(filepath.Dir(aclPath), 0o755))
		require.NoError(t, os.WriteFile(aclPath,
			[]byte("[access \"refs/heads/*\"]\npush = group nova-core\n"), 0o644))

		fixture := newSyncFixture(t, "acl-dir: "+aclDir+"\n", "- project: openstack/nova\n")
		fixture.workspace.ACLChanged = true
		fixture.workspace.ACLGroups = []string{"nova-core", "Registered Users"}
		fixture.db.UUIDs = map[string]string{"nova-core": "abc123"}

		// when
		err := fixture.command.Execute(context.Background(), commands.SyncProjectsOptions{})

		// then
		require.NoError(t, err)
		assert.Equal(t, map[string]string{
			"nova-core":        "abc123",
			"Registered Users": "global:Registered-Users",
		}, fixture.workspace.GroupsWritten)
		assert.True(t, fixture.workspace.ACLCommitted)
		assert.Equal(t, []string{filepath.Join(fixture.cacheDir, "openstack/nova")},
			fixture.workspace.CleanedACL)
		assert.NotEmpty(t, fixture.reloadCache(t).Entry("openstack/nova").ACLSHA)
	})

	t.Run("should skip the meta push when the ACL hash is unchanged", func(t *testing.T) {
		// given
		aclDir := t.TempDir()
		aclPath := filepath.Join(aclDir, "openstack", "nova.config")
		require.NoError(t, os.MkdirAll(filepath.Dir(aclPath), 0o755))
		aclContent := []byte("[access]\nread = group Anonymous Users\n")
		require.NoError(t, os.WriteFile(aclPath, aclContent, 0o644))

		fixture := newSyncFixture(t, "acl-dir: "+aclDir+"\n", "- project: openstack/nova\n")
		first := fixture.command.Execute(context.Background(), commands.SyncProjectsOptions{})
		require.NoError(t, first)
		fetchedOnce := len(fixture.workspace.FetchedMeta)

		// when
		err := fixture.command.Execute(context.Background(), commands.SyncProjectsOptions{})

		// then
		require.NoError(t, err)
		assert.Equal(t, fetchedOnce, len(fixture.workspace.FetchedMeta))
	})

	t.Run("should create missing groups in gerrit before writing the groups file", func(t *testing.T) {
		// given
		aclDir := t.TempDir()
		aclPath := filepath.Join(aclDir, "openstack", "nova.config")
		require.NoError(t, os.MkdirAll(filepath.Dir(aclPath), 0o755))
		require.NoError(t, os.WriteFile(aclPath, []byte("push = group brand-new\n"), 0o644))

		fixture := newSyncFixture(t, "acl-dir: "+aclDir+"\n", "- project: openstack/nova\n")
		fixture.workspace.ACLChanged = true
		fixture.workspace.ACLGroups = []string{"brand-new"}
		fixture.db.UUIDs = map[string]string{}
		created := false
		fixture.gerrit.CreateGroupHook = func(name string) {
			if !created {
				created = true
				fixture.db.UUIDs[name] = "fresh-uuid"
			}
		}

		// when
		err := fixture.command.Execute(context.Background(), commands.SyncProjectsOptions{})

		// then
		require.NoError(t, err)
		assert.Equal(t, []string{"brand-new"}, fixture.gerrit.CreatedGroups)
		assert.Equal(t, map[string]string{"brand-new": "fresh-uuid"}, fixture.workspace.GroupsWritten)
	})
}

func TestSyncProjectsCommand_LocalMirror(t *testing.T) {
	t.Run("should hand a fresh local mirror to the gerrit system account", func(t *testing.T) {
		// given
		fixture := newSyncFixture(t, "gerrit-system-user: gerrit2\n",
			"- project: openstack/nova\n")
		fixture.mirror.InitCreated = true

		// when
		err := fixture.command.Execute(context.Background(), commands.SyncProjectsOptions{})

		// then
		require.NoError(t, err)
		mirrorPath := filepath.Join(fixture.gitDir, "openstack/nova.git")
		assert.Equal(t, []string{mirrorPath}, fixture.mirror.InitializedPaths)
		assert.Contains(t, fixture.runner.CommandLines(),
			"chown -R gerrit2:gerrit2 "+mirrorPath)
	})

	t.Run("should leave an existing local mirror alone", func(t *testing.T) {
		// given
		fixture := newSyncFixture(t, "", "- project: openstack/nova\n")

		// when
		err := fixture.command.Execute(context.Background(), commands.SyncProjectsOptions{})

		// then
		require.NoError(t, err)
		assert.Len(t, fixture.mirror.InitializedPaths, 1)
		assert.Empty(t, fixture.runner.Calls)
	})

	t.Run("should fail the project when the mirror cannot be created", func(t *testing.T) {
		// given
		fixture := newSyncFixture(t, "", "- project: openstack/nova\n")
		fixture.mirror.InitErr = errors.New("disk full")

		// when
		err := fixture.command.Execute(context.Background(), commands.SyncProjectsOptions{})

		// then
		require.Error(t, err)
		assert.Empty(t, fixture.github.MirrorSpecs)
	})
}

func TestSyncProjectsCommand_Mirror(t *testing.T) {
	t.Run("should skip the mirror stage when github is disabled for the project", func(t *testing.T) {
		// given
		fixture := newSyncFixture(t, "has-github: false\n", `
- project: openstack/nova
  options:
    - has-github
- project: openstack/internal
`)

		// when
		err := fixture.command.Execute(context.Background(), commands.SyncProjectsOptions{})

		// then
		require.NoError(t, err)
		require.Len(t, fixture.github.MirrorSpecs, 1)
		assert.Equal(t, "openstack/nova", fixture.github.MirrorSpecs[0].Project)
		assert.Equal(t, entities.StateDone,
			fixture.reloadCache(t).Entry("openstack/internal").State)
	})

	t.Run("should record the mirror creation in the progress cache", func(t *testing.T) {
		// given
		fixture := newSyncFixture(t, "", "- project: openstack/nova\n")
		fixture.github.MirrorResult = entities.MirrorResult{Created: true, GerritInTeam: true}

		// when
		err := fixture.command.Execute(context.Background(), commands.SyncProjectsOptions{})

		// then
		require.NoError(t, err)
		entry := fixture.reloadCache(t).Entry("openstack/nova")
		assert.True(t, entry.CreatedInGitHub)
		assert.True(t, entry.GerritInTeam)
	})

	t.Run("should not touch github again when the cached flags match", func(t *testing.T) {
		// given
		fixture := newSyncFixture(t, "", "- project: openstack/nova\n")
		fixture.github.MirrorResult = entities.MirrorResult{Created: true, GerritInTeam: true}
		first := fixture.command.Execute(context.Background(), commands.SyncProjectsOptions{})
		require.NoError(t, first)
		require.Len(t, fixture.github.MirrorSpecs, 1)

		// when
		err := fixture.command.Execute(context.Background(), commands.SyncProjectsOptions{})

		// then
		require.NoError(t, err)
		assert.Len(t, fixture.github.MirrorSpecs, 1)
	})

	t.Run("should refresh the mirror when the desired feature flags change", func(t *testing.T) {
		// given
		fixture := newSyncFixture(t, "", "- project: openstack/nova\n")
		fixture.github.MirrorResult = entities.MirrorResult{Created: true, GerritInTeam: true}
		first := fixture.command.Execute(context.Background(), commands.SyncProjectsOptions{})
		require.NoError(t, first)

		cache := fixture.reloadCache(t)
		wiki := true
		cache.Entry("openstack/nova").HasWiki = &wiki
		require.NoError(t, cache.Save())

		// when
		err := fixture.command.Execute(context.Background(), commands.SyncProjectsOptions{})

		// then
		require.NoError(t, err)
		require.Len(t, fixture.github.MirrorSpecs, 2)
		assert.False(t, fixture.github.MirrorSpecs[1].HasWiki)
	})
}
