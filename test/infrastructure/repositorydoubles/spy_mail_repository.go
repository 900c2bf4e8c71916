//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"

	"github.com/rios0rios0/gerritops/internal/domain/repositories"
)

// SpyMailRepository implements repositories.MailRepository as a
// configurable spy.
type SpyMailRepository struct {
	Sent    []repositories.MailInput
	SendErr error
}

var _ repositories.MailRepository = (*SpyMailRepository)(nil)

func (s *SpyMailRepository) Send(_ context.Context, input repositories.MailInput) error {
	s.Sent = append(s.Sent, input)
	return s.SendErr
}
