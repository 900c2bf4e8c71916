//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"

	"github.com/rios0rios0/gerritops/internal/domain/repositories"
)

// SpyGerritDBRepository implements repositories.GerritDBRepository as a
// configurable spy.
type SpyGerritDBRepository struct {
	// --- GroupUUID ---
	UUIDs        map[string]string
	GroupUUIDErr error
	QueriedGroups []string

	// --- DistinctPatchSetCount ---
	PatchSetCounts   map[string]int
	PatchSetCountErr error

	// --- LaunchpadOpenID ---
	OpenIDs   map[string]string
	OpenIDErr error

	Closed bool
}

var _ repositories.GerritDBRepository = (*SpyGerritDBRepository)(nil)

func (s *SpyGerritDBRepository) GroupUUID(_ context.Context, group string) (string, error) {
	s.QueriedGroups = append(s.QueriedGroups, group)
	return s.UUIDs[group], s.GroupUUIDErr
}

func (s *SpyGerritDBRepository) DistinctPatchSetCount(_ context.Context, email string) (int, error) {
	return s.PatchSetCounts[email], s.PatchSetCountErr
}

func (s *SpyGerritDBRepository) LaunchpadOpenID(_ context.Context, email string) (string, error) {
	return s.OpenIDs[email], s.OpenIDErr
}

func (s *SpyGerritDBRepository) Close() error {
	s.Closed = true
	return nil
}
