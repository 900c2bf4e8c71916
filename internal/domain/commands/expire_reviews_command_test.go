//go:build unit

package commands_test

import (
	"context"
	"testing"

	"github.com/rios0rios0/gerritops/internal/domain/commands"
	"github.com/rios0rios0/gerritops/internal/domain/entities"
	"github.com/rios0rios0/gerritops/internal/domain/repositories"
	"github.com/rios0rios0/gerritops/test/infrastructure/repositorydoubles"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newExpireReviewsCommand(gerrit *repositorydoubles.SpyGerritRepository) *commands.ExpireReviewsCommand {
	return commands.NewExpireReviewsCommand(
		func(_ repositories.GerritConfig) (repositories.GerritRepository, error) {
			return gerrit, nil
		})
}

func TestExpireReviewsCommand_Execute(t *testing.T) {
	t.Run("should abandon only changes with a negative vote", func(t *testing.T) {
		// given
		setRegistryEnv(t, "gerrit-host: review.example.org\n---\n- project: openstack/nova\n")
		gerrit := &repositorydoubles.SpyGerritRepository{
			Reviews: []entities.Review{
				{
					ID:      "I111",
					Subject: "Stalled change",
					CurrentPatchSet: entities.PatchSet{
						Revision:  "deadbeef",
						Approvals: []entities.Approval{{Type: "Code-Review", Value: "-1"}},
					},
				},
				{
					ID:      "I222",
					Subject: "Approved change",
					CurrentPatchSet: entities.PatchSet{
						Revision:  "cafebabe",
						Approvals: []entities.Approval{{Type: "Code-Review", Value: "2"}},
					},
				},
				{
					ID:      "I333",
					Subject: "Unvoted change",
					CurrentPatchSet: entities.PatchSet{
						Revision: "abad1dea",
					},
				},
			},
		}

		// when
		err := newExpireReviewsCommand(gerrit).Execute(context.Background(),
			commands.ExpireReviewsOptions{})

		// then
		require.NoError(t, err)
		require.Len(t, gerrit.ReviewCalls, 1)
		assert.Equal(t, "deadbeef", gerrit.ReviewCalls[0].Target)
		assert.True(t, gerrit.ReviewCalls[0].Abandon)
		assert.Contains(t, gerrit.ReviewCalls[0].Message, "can be restored")
	})

	t.Run("should default the inactivity window to one week", func(t *testing.T) {
		// given
		setRegistryEnv(t, "gerrit-host: review.example.org\n---\n- project: openstack/nova\n")
		gerrit := &repositorydoubles.SpyGerritRepository{}

		// when
		err := newExpireReviewsCommand(gerrit).Execute(context.Background(),
			commands.ExpireReviewsOptions{})

		// then
		require.NoError(t, err)
		assert.Equal(t, []string{"1w"}, gerrit.QueriedAges)
	})

	t.Run("should pass a custom age through to the query", func(t *testing.T) {
		// given
		setRegistryEnv(t, "gerrit-host: review.example.org\n---\n- project: openstack/nova\n")
		gerrit := &repositorydoubles.SpyGerritRepository{}

		// when
		err := newExpireReviewsCommand(gerrit).Execute(context.Background(),
			commands.ExpireReviewsOptions{Age: "2d"})

		// then
		require.NoError(t, err)
		assert.Equal(t, []string{"2d"}, gerrit.QueriedAges)
	})

	t.Run("should not touch anything on a dry run", func(t *testing.T) {
		// given
		setRegistryEnv(t, "gerrit-host: review.example.org\n---\n- project: openstack/nova\n")
		gerrit := &repositorydoubles.SpyGerritRepository{
			Reviews: []entities.Review{
				{
					ID: "I111",
					CurrentPatchSet: entities.PatchSet{
						Revision:  "deadbeef",
						Approvals: []entities.Approval{{Value: "-2"}},
					},
				},
			},
		}

		// when
		err := newExpireReviewsCommand(gerrit).Execute(context.Background(),
			commands.ExpireReviewsOptions{DryRun: true})

		// then
		require.NoError(t, err)
		assert.Empty(t, gerrit.ReviewCalls)
	})
}
