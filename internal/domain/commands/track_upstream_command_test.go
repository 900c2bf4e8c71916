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

func trackedRegistry(cacheDir string) string {
	return "cache-dir: " + cacheDir + "\n" +
		"---\n" +
		`- project: openstack/imported
  upstream: https://example.org/imported.git
  options:
    - track-upstream
- project: openstack/native
`
}

func markPushed(t *testing.T, cacheDir, project string) {
	t.Helper()
	cache, err := entities.LoadProgressCache(filepath.Join(cacheDir, "project.cache"))
	require.NoError(t, err)
	cache.Entry(project).Advance(entities.StatePushed)
	require.NoError(t, cache.Save())
}

func newTrackUpstreamCommand(workspace *repositorydoubles.SpyGitWorkspace) *commands.TrackUpstreamCommand {
	return commands.NewTrackUpstreamCommand(
		&repositorydoubles.StubRunner{},
		func(_ repositories.Runner, _ entities.SiteSettings) (repositories.GitWorkspace, error) {
			return workspace, nil
		})
}

func TestTrackUpstreamCommand_Execute(t *testing.T) {
	t.Run("should import, verify, and sync tracked projects", func(t *testing.T) {
		// given
		cacheDir := t.TempDir()
		setRegistryEnv(t, trackedRegistry(cacheDir))
		markPushed(t, cacheDir, "openstack/imported")
		workspace := &repositorydoubles.SpyGitWorkspace{}

		// when
		err := newTrackUpstreamCommand(workspace).Execute(context.Background(),
			commands.TrackUpstreamOptions{})

		// then
		require.NoError(t, err)
		assert.Equal(t, []string{"openstack/imported"}, workspace.MadeLocalCopies)
		assert.Equal(t, []string{filepath.Join(cacheDir, "import", "openstack/imported")},
			workspace.FsckedPaths)
		assert.Equal(t, []string{"openstack/imported"}, workspace.SyncedUpstreams)
		assert.True(t, workspace.Closed)
	})

	t.Run("should refresh an existing import clone instead of recloning", func(t *testing.T) {
		// given
		cacheDir := t.TempDir()
		setRegistryEnv(t, trackedRegistry(cacheDir))
		markPushed(t, cacheDir, "openstack/imported")
		require.NoError(t, os.MkdirAll(
			filepath.Join(cacheDir, "import", "openstack", "imported"), 0o755))
		workspace := &repositorydoubles.SpyGitWorkspace{}

		// when
		err := newTrackUpstreamCommand(workspace).Execute(context.Background(),
			commands.TrackUpstreamOptions{})

		// then
		require.NoError(t, err)
		assert.Empty(t, workspace.MadeLocalCopies)
		assert.Equal(t, []string{"openstack/imported"}, workspace.UpdatedCopies)
	})

	t.Run("should skip projects that were never pushed to gerrit", func(t *testing.T) {
		// given
		cacheDir := t.TempDir()
		setRegistryEnv(t, trackedRegistry(cacheDir))
		workspace := &repositorydoubles.SpyGitWorkspace{}

		// when
		err := newTrackUpstreamCommand(workspace).Execute(context.Background(),
			commands.TrackUpstreamOptions{})

		// then
		require.NoError(t, err)
		assert.Empty(t, workspace.MadeLocalCopies)
		assert.Empty(t, workspace.SyncedUpstreams)
	})

	t.Run("should never sync a corrupt clone", func(t *testing.T) {
		// given
		cacheDir := t.TempDir()
		setRegistryEnv(t, trackedRegistry(cacheDir))
		markPushed(t, cacheDir, "openstack/imported")
		workspace := &repositorydoubles.SpyGitWorkspace{
			FsckErr: errors.New("object corruption"),
		}

		// when
		err := newTrackUpstreamCommand(workspace).Execute(context.Background(),
			commands.TrackUpstreamOptions{})

		// then
		require.NoError(t, err)
		assert.Empty(t, workspace.SyncedUpstreams)
	})
}
