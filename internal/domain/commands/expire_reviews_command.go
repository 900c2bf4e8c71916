package commands

import (
	"context"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/gerritops/internal/domain/entities"
	"github.com/rios0rios0/gerritops/internal/domain/repositories"
)

const expiryMessage = "This change has been in code review without activity " +
	"after a negative review and has expired. It can be restored using the " +
	"`Restore Change` button under the patch set on the web interface."

// ExpireReviews is the interface for the stale-review sweeper.
type ExpireReviews interface {
	Execute(ctx context.Context, opts ExpireReviewsOptions) error
}

// ExpireReviewsOptions holds runtime options for a single run.
type ExpireReviewsOptions struct {
	Age    string // inactivity window, gerrit age syntax (default 1w)
	DryRun bool
}

// ExpireReviewsCommand abandons reviewed changes that sat on a negative
// vote past the inactivity window. Abandoning is reversible from the web
// interface, which the expiry message points out.
type ExpireReviewsCommand struct {
	gerritFactory repositories.GerritFactory
}

// NewExpireReviewsCommand creates a new ExpireReviewsCommand.
func NewExpireReviewsCommand(gerritFactory repositories.GerritFactory) *ExpireReviewsCommand {
	return &ExpireReviewsCommand{gerritFactory: gerritFactory}
}

func (it *ExpireReviewsCommand) Execute(ctx context.Context, opts ExpireReviewsOptions) error {
	registry, err := entities.NewRegistry(entities.RegistryPaths())
	if err != nil {
		return err
	}
	settings := entities.NewSiteSettings(registry.Defaults())

	gerrit, err := it.gerritFactory(repositories.GerritConfig{
		Host:    settings.GerritHost,
		Port:    settings.GerritPort,
		User:    settings.GerritUser,
		KeyFile: settings.GerritKey,
	})
	if err != nil {
		return err
	}

	age := opts.Age
	if age == "" {
		age = "1w"
	}

	reviews, err := gerrit.QueryReviewed(ctx, age)
	if err != nil {
		return err
	}

	expired := 0
	for _, review := range reviews {
		if !review.HasNegativeVote() {
			continue
		}
		if opts.DryRun {
			logger.Infof("Would expire %s (%s)", review.ID, review.Subject)
			continue
		}
		if err = gerrit.Review(ctx, review.CurrentPatchSet.Revision, expiryMessage, true); err != nil {
			logger.Errorf("Failed to expire %s: %v", review.ID, err)
			continue
		}
		expired++
		logger.Infof("Expired %s (%s)", review.ID, review.Subject)
	}

	logger.Infof("Run complete: %d of %d stale reviews expired", expired, len(reviews))
	return nil
}
