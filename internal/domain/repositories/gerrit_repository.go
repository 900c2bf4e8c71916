package repositories

import (
	"context"

	"github.com/rios0rios0/gerritops/internal/domain/entities"
)

// GerritRepository abstracts the Gerrit administrative SSH command channel.
type GerritRepository interface {
	// ListProjects returns every project name Gerrit knows about.
	ListProjects(ctx context.Context) ([]string, error)

	// CreateProject creates an empty project.
	CreateProject(ctx context.Context, name string) error

	// CreateGroup creates an internal account group.
	CreateGroup(ctx context.Context, name string) error

	// Replicate triggers replication for a project.
	Replicate(ctx context.Context, project string) error

	// Review posts a message on the change identified by a commit or
	// change id, optionally abandoning it.
	Review(ctx context.Context, target, message string, abandon bool) error

	// QueryReviewed returns all open reviewed changes with no activity for
	// the given age (e.g. "1w"), current patch set and approvals included.
	QueryReviewed(ctx context.Context, age string) ([]entities.Review, error)
}

// GerritConfig carries the connection parameters for the SSH channel.
type GerritConfig struct {
	Host    string
	Port    int
	User    string
	KeyFile string
}

// GerritFactory builds a Gerrit repository for one site.
type GerritFactory func(cfg GerritConfig) (GerritRepository, error)
