//go:build unit

package commands_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rios0rios0/gerritops/internal/domain/commands"
	"github.com/rios0rios0/gerritops/internal/domain/repositories"
	"github.com/rios0rios0/gerritops/test/infrastructure/repositorydoubles"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClosePullRequestsCommand(github *repositorydoubles.SpyGitHubRepository) *commands.ClosePullRequestsCommand {
	return commands.NewClosePullRequestsCommand(
		func(_ string) (repositories.GitHubRepository, error) {
			return github, nil
		})
}

func TestClosePullRequestsCommand_Execute(t *testing.T) {
	t.Run("should sweep every mirrored project with the templated message", func(t *testing.T) {
		// given
		setRegistryEnv(t, "- project: openstack/nova\n- project: openstack/glance\n")
		github := &repositorydoubles.SpyGitHubRepository{ClosedCount: 2}

		// when
		err := newClosePullRequestsCommand(github).Execute(context.Background(),
			commands.ClosePullRequestsOptions{})

		// then
		require.NoError(t, err)
		require.Len(t, github.SweepCalls, 2)
		assert.Equal(t, "openstack/nova", github.SweepCalls[0].Project)
		assert.Contains(t, github.SweepCalls[0].Message,
			"Thank you for contributing to openstack/nova!")
		assert.Contains(t, github.SweepCalls[0].Message, "uses Gerrit for code review")
	})

	t.Run("should skip projects that accept pull requests", func(t *testing.T) {
		// given
		setRegistryEnv(t, `
- project: openstack/nova
- project: openstack/experimental
  options:
    - has-pull-requests
`)
		github := &repositorydoubles.SpyGitHubRepository{}

		// when
		err := newClosePullRequestsCommand(github).Execute(context.Background(),
			commands.ClosePullRequestsOptions{})

		// then
		require.NoError(t, err)
		require.Len(t, github.SweepCalls, 1)
		assert.Equal(t, "openstack/nova", github.SweepCalls[0].Project)
	})

	t.Run("should skip projects without a github mirror", func(t *testing.T) {
		// given
		setRegistryEnv(t, `
has-github: false
---
- project: openstack/nova
  options:
    - has-github
- project: openstack/internal
`)
		github := &repositorydoubles.SpyGitHubRepository{}

		// when
		err := newClosePullRequestsCommand(github).Execute(context.Background(),
			commands.ClosePullRequestsOptions{})

		// then
		require.NoError(t, err)
		require.Len(t, github.SweepCalls, 1)
		assert.Equal(t, "openstack/nova", github.SweepCalls[0].Project)
	})

	t.Run("should honor a site-specific message template", func(t *testing.T) {
		// given
		setRegistryEnv(t, `
pull-request-message: "%s is read-only. %s lives on Gerrit."
---
- project: openstack/nova
`)
		github := &repositorydoubles.SpyGitHubRepository{}

		// when
		err := newClosePullRequestsCommand(github).Execute(context.Background(),
			commands.ClosePullRequestsOptions{})

		// then
		require.NoError(t, err)
		require.Len(t, github.SweepCalls, 1)
		assert.Equal(t, "openstack/nova is read-only. openstack/nova lives on Gerrit.",
			github.SweepCalls[0].Message)
	})

	t.Run("should read the message template from the command line file", func(t *testing.T) {
		// given
		setRegistryEnv(t, `
pull-request-message: "%s is read-only. %s lives on Gerrit."
---
- project: openstack/nova
`)
		messagePath := filepath.Join(t.TempDir(), "close.txt")
		require.NoError(t, os.WriteFile(messagePath,
			[]byte("Pull requests on %s are closed; %s reviews happen on Gerrit."), 0o644))
		github := &repositorydoubles.SpyGitHubRepository{}

		// when
		err := newClosePullRequestsCommand(github).Execute(context.Background(),
			commands.ClosePullRequestsOptions{MessageFile: messagePath})

		// then
		require.NoError(t, err)
		require.Len(t, github.SweepCalls, 1)
		assert.Equal(t,
			"Pull requests on openstack/nova are closed; openstack/nova reviews happen on Gerrit.",
			github.SweepCalls[0].Message)
	})

	t.Run("should fail when the command line message file is missing", func(t *testing.T) {
		// given
		setRegistryEnv(t, "- project: openstack/nova\n")
		github := &repositorydoubles.SpyGitHubRepository{}

		// when
		err := newClosePullRequestsCommand(github).Execute(context.Background(),
			commands.ClosePullRequestsOptions{MessageFile: filepath.Join(t.TempDir(), "absent.txt")})

		// then
		require.Error(t, err)
		assert.Empty(t, github.SweepCalls)
	})

	t.Run("should only sweep the requested projects", func(t *testing.T) {
		// given
		setRegistryEnv(t, "- project: openstack/nova\n- project: openstack/glance\n")
		github := &repositorydoubles.SpyGitHubRepository{}

		// when
		err := newClosePullRequestsCommand(github).Execute(context.Background(),
			commands.ClosePullRequestsOptions{Projects: []string{"openstack/glance"}})

		// then
		require.NoError(t, err)
		require.Len(t, github.SweepCalls, 1)
		assert.Equal(t, "openstack/glance", github.SweepCalls[0].Project)
	})
}
