//go:build integration || unit || test

// Package repositorydoubles provides test doubles (spies, stubs, dummies) for
// repository interfaces. These are hand-crafted implementations — no mock frameworks.
package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"

	"github.com/rios0rios0/gerritops/internal/domain/entities"
	"github.com/rios0rios0/gerritops/internal/domain/repositories"
)

// ReviewCall records one Review invocation.
type ReviewCall struct {
	Target  string
	Message string
	Abandon bool
}

// SpyGerritRepository implements repositories.GerritRepository as a
// configurable spy.
type SpyGerritRepository struct {
	// --- ListProjects ---
	Projects        []string
	ListProjectsErr error

	// --- CreateProject ---
	CreatedProjects  []string
	CreateProjectErr error

	// --- CreateGroup ---
	CreatedGroups   []string
	CreateGroupErr  error
	CreateGroupHook func(name string) // runs after recording, for test-side effects

	// --- Replicate ---
	ReplicatedProjects []string
	ReplicateErr       error

	// --- Review ---
	ReviewCalls []ReviewCall
	ReviewErr   error

	// --- QueryReviewed ---
	Reviews          []entities.Review
	QueryReviewedErr error
	QueriedAges      []string
}

var _ repositories.GerritRepository = (*SpyGerritRepository)(nil)

func (s *SpyGerritRepository) ListProjects(_ context.Context) ([]string, error) {
	return s.Projects, s.ListProjectsErr
}

func (s *SpyGerritRepository) CreateProject(_ context.Context, name string) error {
	s.CreatedProjects = append(s.CreatedProjects, name)
	return s.CreateProjectErr
}

func (s *SpyGerritRepository) CreateGroup(_ context.Context, name string) error {
	s.CreatedGroups = append(s.CreatedGroups, name)
	if s.CreateGroupHook != nil {
		s.CreateGroupHook(name)
	}
	return s.CreateGroupErr
}

func (s *SpyGerritRepository) Replicate(_ context.Context, project string) error {
	s.ReplicatedProjects = append(s.ReplicatedProjects, project)
	return s.ReplicateErr
}

func (s *SpyGerritRepository) Review(_ context.Context, target, message string, abandon bool) error {
	s.ReviewCalls = append(s.ReviewCalls, ReviewCall{Target: target, Message: message, Abandon: abandon})
	return s.ReviewErr
}

func (s *SpyGerritRepository) QueryReviewed(_ context.Context, age string) ([]entities.Review, error) {
	s.QueriedAges = append(s.QueriedAges, age)
	return s.Reviews, s.QueryReviewedErr
}
