package controllers

import (
	"context"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/gerritops/internal/domain/commands"
	"github.com/rios0rios0/gerritops/internal/domain/entities"
)

// ClosePullRequestsController handles the "close-pull-requests" subcommand.
type ClosePullRequestsController struct {
	command commands.ClosePullRequests
}

// NewClosePullRequestsController creates a new ClosePullRequestsController.
func NewClosePullRequestsController(command commands.ClosePullRequests) *ClosePullRequestsController {
	return &ClosePullRequestsController{command: command}
}

// GetBind returns the Cobra command metadata for the sweeper controller.
func (it *ClosePullRequestsController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "close-pull-requests",
		Short: "Close open pull requests on the read-only GitHub mirrors",
		Long: `Comment on and close every open pull request of each mirrored project,
pointing the author at the code review workflow. Projects flagged
has-pull-requests are left alone.`,
	}
}

// Execute runs the sweep.
func (it *ClosePullRequestsController) Execute(cmd *cobra.Command, _ []string) {
	projects, _ := cmd.Flags().GetStringSlice("project")
	messageFile, _ := cmd.Flags().GetString("message-file")

	if err := it.command.Execute(context.Background(), commands.ClosePullRequestsOptions{
		Projects:    projects,
		MessageFile: messageFile,
	}); err != nil {
		logger.Errorf("Run failed: %v", err)
	}
}

// AddFlags adds the sweeper-specific flags to the given Cobra command.
func (it *ClosePullRequestsController) AddFlags(cmd *cobra.Command) {
	cmd.Flags().StringSlice("project", nil, "Only sweep the named projects (repeatable)")
	cmd.Flags().String("message-file", "", "File containing the close-comment template")
}
