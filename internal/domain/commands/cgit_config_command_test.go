//go:build unit

package commands_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rios0rios0/gerritops/internal/domain/commands"
	"github.com/rios0rios0/gerritops/test/infrastructure/repositorydoubles"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCgitConfigCommand_Execute(t *testing.T) {
	t.Run("should write sorted sections with one entry group per repository", func(t *testing.T) {
		// given
		setRegistryEnv(t, `
- project: openstack/nova
  description: Compute service
- project: stackforge/widget
- project: openstack/glance
`)
		output := filepath.Join(t.TempDir(), "cgitrepos")
		repoPath := t.TempDir()
		mirror := &repositorydoubles.SpyMirrorRepository{}
		command := commands.NewCgitConfigCommand(&repositorydoubles.StubRunner{}, mirror)

		// when
		err := command.Execute(context.Background(), commands.CgitConfigOptions{
			Output:   output,
			RepoPath: repoPath,
		})

		// then
		require.NoError(t, err)
		raw, readErr := os.ReadFile(output)
		require.NoError(t, readErr)
		expected := "# Autogenerated by gerritops; do not edit.\n" +
			"\n" +
			"section=openstack\n" +
			"\n" +
			"repo.url=openstack/glance\n" +
			"repo.path=" + repoPath + "/openstack/glance.git/\n" +
			"repo.desc=glance\n" +
			"\n" +
			"repo.url=openstack/nova\n" +
			"repo.path=" + repoPath + "/openstack/nova.git/\n" +
			"repo.desc=Compute service\n" +
			"\n" +
			"section=stackforge\n" +
			"\n" +
			"repo.url=stackforge/widget\n" +
			"repo.path=" + repoPath + "/stackforge/widget.git/\n" +
			"repo.desc=widget\n"
		assert.Equal(t, expected, string(raw))
	})

	t.Run("should initialize missing bare repositories and hand them over", func(t *testing.T) {
		// given
		setRegistryEnv(t, `
cgit-user: cgit
cgit-group: cgit
---
- project: openstack/nova
`)
		output := filepath.Join(t.TempDir(), "cgitrepos")
		repoPath := t.TempDir()
		mirror := &repositorydoubles.SpyMirrorRepository{InitCreated: true}
		runner := &repositorydoubles.StubRunner{}
		command := commands.NewCgitConfigCommand(runner, mirror)

		// when
		err := command.Execute(context.Background(), commands.CgitConfigOptions{
			Output:   output,
			RepoPath: repoPath,
		})

		// then
		require.NoError(t, err)
		assert.Equal(t, []string{filepath.Join(repoPath, "openstack", "nova") + ".git"},
			mirror.InitializedPaths)
		require.Len(t, runner.Calls, 1)
		assert.Equal(t, "chown", runner.Calls[0].Name)
		assert.Equal(t, []string{"-R", "cgit:cgit",
			filepath.Join(repoPath, "openstack", "nova") + ".git"}, runner.Calls[0].Args)
	})

	t.Run("should fall back to the default organization", func(t *testing.T) {
		// given
		setRegistryEnv(t, "- project: bare-repo\n")
		output := filepath.Join(t.TempDir(), "cgitrepos")
		command := commands.NewCgitConfigCommand(&repositorydoubles.StubRunner{},
			&repositorydoubles.SpyMirrorRepository{})

		// when
		err := command.Execute(context.Background(), commands.CgitConfigOptions{
			Output:     output,
			RepoPath:   t.TempDir(),
			DefaultOrg: "openstack",
		})

		// then
		require.NoError(t, err)
		raw, readErr := os.ReadFile(output)
		require.NoError(t, readErr)
		assert.Contains(t, string(raw), "section=openstack\n")
		assert.Contains(t, string(raw), "repo.url=openstack/bare-repo\n")
	})

	t.Run("should fail when a project has no organization at all", func(t *testing.T) {
		// given
		setRegistryEnv(t, "- project: bare-repo\n")
		command := commands.NewCgitConfigCommand(&repositorydoubles.StubRunner{},
			&repositorydoubles.SpyMirrorRepository{})

		// when
		err := command.Execute(context.Background(), commands.CgitConfigOptions{
			Output:   filepath.Join(t.TempDir(), "cgitrepos"),
			RepoPath: t.TempDir(),
		})

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no organization")
	})

	t.Run("should fail on colliding short names", func(t *testing.T) {
		// given
		setRegistryEnv(t, "- project: openstack/nova\n- project: stackforge/nova\n")
		command := commands.NewCgitConfigCommand(&repositorydoubles.StubRunner{},
			&repositorydoubles.SpyMirrorRepository{})

		// when
		err := command.Execute(context.Background(), commands.CgitConfigOptions{
			Output:   filepath.Join(t.TempDir(), "cgitrepos"),
			RepoPath: t.TempDir(),
		})

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), "duplicate project name")
	})

	t.Run("should list existing scratch repositories", func(t *testing.T) {
		// given
		repoPath := t.TempDir()
		require.NoError(t, os.MkdirAll(filepath.Join(repoPath, "scratch", "sandbox.git"), 0o755))
		setRegistryEnv(t, `
scratch-subpath: scratch
---
- project: openstack/nova
`)
		output := filepath.Join(t.TempDir(), "cgitrepos")
		command := commands.NewCgitConfigCommand(&repositorydoubles.StubRunner{},
			&repositorydoubles.SpyMirrorRepository{})

		// when
		err := command.Execute(context.Background(), commands.CgitConfigOptions{
			Output:   output,
			RepoPath: repoPath,
		})

		// then
		require.NoError(t, err)
		raw, readErr := os.ReadFile(output)
		require.NoError(t, readErr)
		assert.Contains(t, string(raw), "section=scratch\n")
		assert.Contains(t, string(raw), "repo.url=scratch/sandbox\n")
		assert.Contains(t, string(raw), "repo.desc=Scratch repo for sandbox\n")
	})

	t.Run("should write alias site files and their symlink farm", func(t *testing.T) {
		// given
		repoPath := t.TempDir()
		setRegistryEnv(t, `
- project: openstack/nova
  description: Compute service
  cgit-alias:
    site: legacy
    path: compute/nova
`)
		output := filepath.Join(t.TempDir(), "cgitrepos")
		command := commands.NewCgitConfigCommand(&repositorydoubles.StubRunner{},
			&repositorydoubles.SpyMirrorRepository{})

		// when
		err := command.Execute(context.Background(), commands.CgitConfigOptions{
			Output:   output,
			RepoPath: repoPath,
		})

		// then
		require.NoError(t, err)
		raw, readErr := os.ReadFile(output + ".legacy")
		require.NoError(t, readErr)
		assert.Contains(t, string(raw), "repo.url=compute/nova\n")

		link := filepath.Join(repoPath, "legacy", "compute", "nova") + ".git"
		target, linkErr := os.Readlink(link)
		require.NoError(t, linkErr)
		assert.Equal(t, filepath.Join(repoPath, "openstack", "nova")+".git", target)
	})
}
