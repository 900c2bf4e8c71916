//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"

	"github.com/rios0rios0/gerritops/internal/domain/repositories"
)

// SpyTranslationRepository implements repositories.TranslationRepository as
// a configurable spy.
type SpyTranslationRepository struct {
	ExistingProjects   map[string]bool
	ExistingIterations map[string]bool // keyed "project/iteration"
	ExistsErr          error

	CreatedProjects   []string
	CreateProjectErr  error
	CreatedIterations []string
	CreateIterationErr error
}

var _ repositories.TranslationRepository = (*SpyTranslationRepository)(nil)

func (s *SpyTranslationRepository) ProjectExists(_ context.Context, id string) (bool, error) {
	return s.ExistingProjects[id], s.ExistsErr
}

func (s *SpyTranslationRepository) IterationExists(_ context.Context, id, iteration string) (bool, error) {
	return s.ExistingIterations[id+"/"+iteration], s.ExistsErr
}

func (s *SpyTranslationRepository) CreateProject(_ context.Context, id string) error {
	s.CreatedProjects = append(s.CreatedProjects, id)
	return s.CreateProjectErr
}

func (s *SpyTranslationRepository) CreateIteration(_ context.Context, id, iteration string) error {
	s.CreatedIterations = append(s.CreatedIterations, id+"/"+iteration)
	return s.CreateIterationErr
}
