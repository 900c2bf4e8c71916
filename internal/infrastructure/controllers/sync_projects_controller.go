package controllers

import (
	"context"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/gerritops/internal/domain/commands"
	"github.com/rios0rios0/gerritops/internal/domain/entities"
)

// SyncProjectsController handles the "sync-projects" subcommand.
type SyncProjectsController struct {
	command commands.SyncProjects
}

// NewSyncProjectsController creates a new SyncProjectsController.
func NewSyncProjectsController(command commands.SyncProjects) *SyncProjectsController {
	return &SyncProjectsController{command: command}
}

// GetBind returns the Cobra command metadata for the sync controller.
func (it *SyncProjectsController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "sync-projects",
		Short: "Reconcile the project registry against Gerrit and the mirrors",
		Long: `Walk every active project of the registry and converge it: create it
in Gerrit, seed a local copy, verify repository integrity, push branches
and tags, sync the access-control file to refs/meta/config, and create or
refresh the GitHub mirror.

Progress is cached per project, so an interrupted run resumes where it
stopped. This is the main command intended to be used in a cronjob.`,
	}
}

// Execute runs the reconciliation.
func (it *SyncProjectsController) Execute(cmd *cobra.Command, _ []string) {
	projects, _ := cmd.Flags().GetStringSlice("project")

	if err := it.command.Execute(context.Background(), commands.SyncProjectsOptions{
		Projects: projects,
	}); err != nil {
		logger.Errorf("Run failed: %v", err)
	}
}

// AddFlags adds the sync-specific flags to the given Cobra command.
func (it *SyncProjectsController) AddFlags(cmd *cobra.Command) {
	cmd.Flags().StringSlice("project", nil, "Only reconcile the named projects (repeatable)")
}
