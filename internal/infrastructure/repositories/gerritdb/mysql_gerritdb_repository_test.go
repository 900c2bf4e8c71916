//go:build unit

package gerritdb_test

import (
	"context"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/rios0rios0/gerritops/internal/infrastructure/repositories/gerritdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMySQLGerritDBRepository_GroupUUID(t *testing.T) {
	t.Parallel()

	t.Run("should return the uuid of an existing group", func(t *testing.T) {
		t.Parallel()

		// given
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		mock.ExpectQuery("SELECT group_uuid FROM account_groups").
			WithArgs("nova-core").
			WillReturnRows(sqlmock.NewRows([]string{"group_uuid"}).AddRow("abc123"))

		// when
		uuid, err := gerritdb.NewFromDB(db).GroupUUID(context.Background(), "nova-core")

		// then
		require.NoError(t, err)
		assert.Equal(t, "abc123", uuid)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("should return an empty uuid for an unknown group", func(t *testing.T) {
		t.Parallel()

		// given
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		mock.ExpectQuery("SELECT group_uuid FROM account_groups").
			WithArgs("missing").
			WillReturnRows(sqlmock.NewRows([]string{"group_uuid"}))

		// when
		uuid, err := gerritdb.NewFromDB(db).GroupUUID(context.Background(), "missing")

		// then
		require.NoError(t, err)
		assert.Empty(t, uuid)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestMySQLGerritDBRepository_DistinctPatchSetCount(t *testing.T) {
	t.Parallel()

	t.Run("should count the uploader's patch sets", func(t *testing.T) {
		t.Parallel()

		// given
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		mock.ExpectQuery("SELECT COUNT").
			WithArgs("jane@example.org").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

		// when
		count, err := gerritdb.NewFromDB(db).
			DistinctPatchSetCount(context.Background(), "jane@example.org")

		// then
		require.NoError(t, err)
		assert.Equal(t, 1, count)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestMySQLGerritDBRepository_LaunchpadOpenID(t *testing.T) {
	t.Parallel()

	t.Run("should resolve the launchpad openid of an address", func(t *testing.T) {
		t.Parallel()

		// given
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		mock.ExpectQuery("SELECT external_id FROM account_external_ids").
			WithArgs("jane@example.org").
			WillReturnRows(sqlmock.NewRows([]string{"external_id"}).
				AddRow("https://login.launchpad.net/+id/abc"))

		// when
		openID, err := gerritdb.NewFromDB(db).
			LaunchpadOpenID(context.Background(), "jane@example.org")

		// then
		require.NoError(t, err)
		assert.Equal(t, "https://login.launchpad.net/+id/abc", openID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("should return an empty openid when none is recorded", func(t *testing.T) {
		t.Parallel()

		// given
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		mock.ExpectQuery("SELECT external_id FROM account_external_ids").
			WithArgs("jane@example.org").
			WillReturnRows(sqlmock.NewRows([]string{"external_id"}))

		// when
		openID, err := gerritdb.NewFromDB(db).
			LaunchpadOpenID(context.Background(), "jane@example.org")

		// then
		require.NoError(t, err)
		assert.Empty(t, openID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
