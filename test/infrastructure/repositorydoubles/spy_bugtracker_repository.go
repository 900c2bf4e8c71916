//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"

	"github.com/rios0rios0/gerritops/internal/domain/entities"
	"github.com/rios0rios0/gerritops/internal/domain/repositories"
)

// MessageCall records one AddMessage invocation.
type MessageCall struct {
	Task    entities.BugTask
	Subject string
	Body    string
}

// StatusCall records one SetStatus invocation.
type StatusCall struct {
	Task   entities.BugTask
	Status string
}

// CreatedBugCall records one CreateBug invocation.
type CreatedBugCall struct {
	Target      string
	Title       string
	Description string
	Tags        []string
}

// SpyBugTrackerRepository implements repositories.BugTrackerRepository as a
// configurable spy.
type SpyBugTrackerRepository struct {
	// --- TaskFor ---
	Tasks      map[string]*entities.BugTask // keyed by bug number
	TaskForErr error

	// --- RelatedTasks ---
	Related         []entities.BugTask
	RelatedTasksErr error

	// --- AddMessage ---
	Messages      []MessageCall
	AddMessageErr error

	// --- SetStatus ---
	StatusCalls  []StatusCall
	SetStatusErr error

	// --- SetAssigneeByOpenID ---
	AssignedOpenIDs []string
	AssigneeErr     error

	// --- AddTag ---
	AddedTags []string
	AddTagErr error

	// --- CreateBug ---
	CreatedBug   entities.CreatedBug
	CreateBugErr error
	CreateCalls  []CreatedBugCall

	// --- Subscribe ---
	Subscribed   []string
	SubscribeErr error

	// --- HasBugWithTitle ---
	DuplicateTitle bool
	DuplicateErr   error
}

var _ repositories.BugTrackerRepository = (*SpyBugTrackerRepository)(nil)

func (s *SpyBugTrackerRepository) TaskFor(_ context.Context, bugNumber string, _ []string) (*entities.BugTask, error) {
	return s.Tasks[bugNumber], s.TaskForErr
}

func (s *SpyBugTrackerRepository) RelatedTasks(_ context.Context, _ entities.BugTask) ([]entities.BugTask, error) {
	return s.Related, s.RelatedTasksErr
}

func (s *SpyBugTrackerRepository) AddMessage(_ context.Context, task entities.BugTask, subject, body string) error {
	s.Messages = append(s.Messages, MessageCall{Task: task, Subject: subject, Body: body})
	return s.AddMessageErr
}

func (s *SpyBugTrackerRepository) SetStatus(_ context.Context, task entities.BugTask, status string) error {
	s.StatusCalls = append(s.StatusCalls, StatusCall{Task: task, Status: status})
	return s.SetStatusErr
}

func (s *SpyBugTrackerRepository) SetAssigneeByOpenID(_ context.Context, _ entities.BugTask, openID string) error {
	s.AssignedOpenIDs = append(s.AssignedOpenIDs, openID)
	return s.AssigneeErr
}

func (s *SpyBugTrackerRepository) AddTag(_ context.Context, _ entities.BugTask, tag string) error {
	s.AddedTags = append(s.AddedTags, tag)
	return s.AddTagErr
}

func (s *SpyBugTrackerRepository) CreateBug(_ context.Context, target, title, description string, tags []string) (entities.CreatedBug, error) {
	s.CreateCalls = append(s.CreateCalls, CreatedBugCall{
		Target: target, Title: title, Description: description, Tags: tags,
	})
	return s.CreatedBug, s.CreateBugErr
}

func (s *SpyBugTrackerRepository) Subscribe(_ context.Context, _ entities.CreatedBug, person string) error {
	s.Subscribed = append(s.Subscribed, person)
	return s.SubscribeErr
}

func (s *SpyBugTrackerRepository) HasBugWithTitle(_ context.Context, _, _ string) (bool, error) {
	return s.DuplicateTitle, s.DuplicateErr
}
