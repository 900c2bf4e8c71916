package repositories

import "context"

// GerritDBRepository reads the relational database backing Gerrit. The
// schema is Gerrit's own (account_groups, patch_sets, account_external_ids).
type GerritDBRepository interface {
	// GroupUUID resolves an internal group name to its UUID, or returns an
	// empty string when the group does not exist (yet).
	GroupUUID(ctx context.Context, group string) (string, error)

	// DistinctPatchSetCount counts the distinct patch sets uploaded by the
	// account owning the given e-mail address.
	DistinctPatchSetCount(ctx context.Context, email string) (int, error)

	// LaunchpadOpenID returns the Launchpad OpenID external id recorded for
	// the account owning the given e-mail address, or an empty string.
	LaunchpadOpenID(ctx context.Context, email string) (string, error)

	Close() error
}

// GerritDBFactory opens the Gerrit database from a DSN.
type GerritDBFactory func(dsn string) (GerritDBRepository, error)
