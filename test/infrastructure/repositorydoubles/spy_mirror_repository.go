//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"

	"github.com/rios0rios0/gerritops/internal/domain/repositories"
)

// SpyMirrorRepository implements repositories.MirrorRepository as a
// configurable spy.
type SpyMirrorRepository struct {
	// --- InitBare ---
	InitializedPaths []string
	InitCreated      bool
	InitErr          error

	// --- CommitMessage ---
	Message          string
	CommitMessageErr error

	// --- CommitLog ---
	Log          []string
	CommitLogErr error
}

var _ repositories.MirrorRepository = (*SpyMirrorRepository)(nil)

func (s *SpyMirrorRepository) InitBare(path string) (bool, error) {
	s.InitializedPaths = append(s.InitializedPaths, path)
	return s.InitCreated, s.InitErr
}

func (s *SpyMirrorRepository) CommitMessage(_, _ string) (string, error) {
	return s.Message, s.CommitMessageErr
}

func (s *SpyMirrorRepository) CommitLog(_ context.Context, _, _ string) ([]string, error) {
	return s.Log, s.CommitLogErr
}
