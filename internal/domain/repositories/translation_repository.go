package repositories

import "context"

// TranslationRepository abstracts the translation platform's REST API.
type TranslationRepository interface {
	ProjectExists(ctx context.Context, id string) (bool, error)
	IterationExists(ctx context.Context, id, iteration string) (bool, error)
	CreateProject(ctx context.Context, id string) error
	CreateIteration(ctx context.Context, id, iteration string) error
}

// TranslationConfig carries the platform endpoint and credentials.
type TranslationConfig struct {
	URL      string
	Username string
	APIKey   string
}

// TranslationFactory builds a translation repository.
type TranslationFactory func(cfg TranslationConfig) (TranslationRepository, error)
