package controllers

import (
	"context"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/gerritops/internal/domain/commands"
	"github.com/rios0rios0/gerritops/internal/domain/entities"
)

// ExpireReviewsController handles the "expire-reviews" subcommand.
type ExpireReviewsController struct {
	command commands.ExpireReviews
}

// NewExpireReviewsController creates a new ExpireReviewsController.
func NewExpireReviewsController(command commands.ExpireReviews) *ExpireReviewsController {
	return &ExpireReviewsController{command: command}
}

// GetBind returns the Cobra command metadata for the expiry controller.
func (it *ExpireReviewsController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "expire-reviews",
		Short: "Abandon reviewed changes stuck on a negative vote",
		Long: `Query Gerrit for reviewed changes with no activity inside the age
window and abandon those carrying a -1 or -2, leaving a message explaining
how to restore the change.`,
	}
}

// Execute runs the expiry sweep.
func (it *ExpireReviewsController) Execute(cmd *cobra.Command, _ []string) {
	age, _ := cmd.Flags().GetString("age")
	dryRun, _ := cmd.Flags().GetBool("dryrun")

	if err := it.command.Execute(context.Background(), commands.ExpireReviewsOptions{
		Age:    age,
		DryRun: dryRun,
	}); err != nil {
		logger.Errorf("Run failed: %v", err)
	}
}

// AddFlags adds the expiry flags to the given Cobra command.
func (it *ExpireReviewsController) AddFlags(cmd *cobra.Command) {
	cmd.Flags().String("age", "1w", "Inactivity window (gerrit age syntax)")
	cmd.Flags().Bool("dryrun", false, "Log intended actions without performing them")
}
