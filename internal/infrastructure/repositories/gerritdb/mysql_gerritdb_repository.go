package gerritdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/go-sql-driver/mysql"

	"github.com/rios0rios0/gerritops/internal/domain/repositories"
)

// MySQLGerritDBRepository reads Gerrit's own schema directly. Only three
// lookups are needed; everything else goes through the SSH channel.
type MySQLGerritDBRepository struct {
	db *sql.DB
}

// NewMySQLGerritDBRepository opens the Gerrit database from a DSN.
func NewMySQLGerritDBRepository(dsn string) (repositories.GerritDBRepository, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open gerrit database: %w", err)
	}
	return &MySQLGerritDBRepository{db: db}, nil
}

// NewFromDB wraps an already open handle; used by tests.
func NewFromDB(db *sql.DB) repositories.GerritDBRepository {
	return &MySQLGerritDBRepository{db: db}
}

func (it *MySQLGerritDBRepository) GroupUUID(ctx context.Context, group string) (string, error) {
	var uuid string
	err := it.db.QueryRowContext(ctx,
		"SELECT group_uuid FROM account_groups WHERE name = ?", group).Scan(&uuid)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to resolve uuid of group %s: %w", group, err)
	}
	return uuid, nil
}

func (it *MySQLGerritDBRepository) DistinctPatchSetCount(ctx context.Context, email string) (int, error) {
	var count int
	err := it.db.QueryRowContext(ctx,
		`SELECT COUNT(DISTINCT p.change_id + p.patch_set_id)
		 FROM patch_sets p, account_external_ids a
		 WHERE a.email_address = ?
		   AND a.account_id = p.uploader_account_id`, email).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count patch sets of %s: %w", email, err)
	}
	return count, nil
}

func (it *MySQLGerritDBRepository) LaunchpadOpenID(ctx context.Context, email string) (string, error) {
	var openID string
	err := it.db.QueryRowContext(ctx,
		`SELECT external_id FROM account_external_ids
		 WHERE account_id = (
		     SELECT account_id FROM account_external_ids
		     WHERE email_address = ?)
		   AND external_id LIKE 'https://login.launchpad.net%'`, email).Scan(&openID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to resolve openid of %s: %w", email, err)
	}
	return openID, nil
}

func (it *MySQLGerritDBRepository) Close() error {
	return it.db.Close()
}
