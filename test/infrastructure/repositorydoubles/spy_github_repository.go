//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"

	"github.com/rios0rios0/gerritops/internal/domain/entities"
	"github.com/rios0rios0/gerritops/internal/domain/repositories"
)

// SweepCall records one CloseOpenPullRequests invocation.
type SweepCall struct {
	Project string
	Message string
}

// SpyGitHubRepository implements repositories.GitHubRepository as a
// configurable spy.
type SpyGitHubRepository struct {
	// --- EnsureMirror ---
	MirrorResult entities.MirrorResult
	MirrorErr    error
	MirrorSpecs  []entities.MirrorSpec

	// --- CloseOpenPullRequests ---
	ClosedCount int
	SweepErr    error
	SweepCalls  []SweepCall
}

var _ repositories.GitHubRepository = (*SpyGitHubRepository)(nil)

func (s *SpyGitHubRepository) EnsureMirror(_ context.Context, spec entities.MirrorSpec) (entities.MirrorResult, error) {
	s.MirrorSpecs = append(s.MirrorSpecs, spec)
	return s.MirrorResult, s.MirrorErr
}

func (s *SpyGitHubRepository) CloseOpenPullRequests(_ context.Context, project, message string) (int, error) {
	s.SweepCalls = append(s.SweepCalls, SweepCall{Project: project, Message: message})
	return s.ClosedCount, s.SweepErr
}
