//go:build unit

package gerrit_test

import (
	"testing"

	"github.com/rios0rios0/gerritops/internal/infrastructure/repositories/gerrit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseReviewRows(t *testing.T) {
	t.Parallel()

	t.Run("should parse change rows and drop the stats row", func(t *testing.T) {
		t.Parallel()

		// given
		out := `{"project":"openstack/nova","branch":"master","id":"I111","subject":"Fix it","url":"https://review.example.org/1","currentPatchSet":{"number":3,"revision":"deadbeef","approvals":[{"type":"Code-Review","value":"-1"}]}}
{"project":"openstack/glance","id":"I222","currentPatchSet":{"revision":"cafebabe"}}
{"type":"stats","rowCount":2,"runTimeMilliseconds":12}
`

		// when
		reviews := gerrit.ParseReviewRows(out)

		// then
		require.Len(t, reviews, 2)
		assert.Equal(t, "I111", reviews[0].ID)
		assert.Equal(t, "deadbeef", reviews[0].CurrentPatchSet.Revision)
		assert.True(t, reviews[0].HasNegativeVote())
		assert.Equal(t, "I222", reviews[1].ID)
		assert.False(t, reviews[1].HasNegativeVote())
	})

	t.Run("should skip blank and malformed lines", func(t *testing.T) {
		t.Parallel()

		// given
		out := "\nnot json at all\n{\"id\":\"I333\"}\n\n"

		// when
		reviews := gerrit.ParseReviewRows(out)

		// then
		require.Len(t, reviews, 1)
		assert.Equal(t, "I333", reviews[0].ID)
	})
}

func TestShellQuote(t *testing.T) {
	t.Parallel()

	t.Run("should single-quote values and escape embedded quotes", func(t *testing.T) {
		t.Parallel()

		// given / when / then
		assert.Equal(t, "'openstack/nova'", gerrit.ShellQuote("openstack/nova"))
		assert.Equal(t, `'it'"'"'s fine'`, gerrit.ShellQuote("it's fine"))
	})
}
