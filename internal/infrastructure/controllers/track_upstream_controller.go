package controllers

import (
	"context"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/gerritops/internal/domain/commands"
	"github.com/rios0rios0/gerritops/internal/domain/entities"
)

// TrackUpstreamController handles the "track-upstream" subcommand.
type TrackUpstreamController struct {
	command commands.TrackUpstream
}

// NewTrackUpstreamController creates a new TrackUpstreamController.
func NewTrackUpstreamController(command commands.TrackUpstream) *TrackUpstreamController {
	return &TrackUpstreamController{command: command}
}

// GetBind returns the Cobra command metadata for the tracker controller.
func (it *TrackUpstreamController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "track-upstream",
		Short: "Import upstream branches into Gerrit for track-upstream projects",
		Long: `Maintain import clones for every project flagged track-upstream and
push the upstream's branches and tags into Gerrit, applying the project's
upstream-prefix. Projects that have not completed their initial push are
skipped.`,
	}
}

// Execute runs the upstream import.
func (it *TrackUpstreamController) Execute(cmd *cobra.Command, _ []string) {
	projects, _ := cmd.Flags().GetStringSlice("project")

	if err := it.command.Execute(context.Background(), commands.TrackUpstreamOptions{
		Projects: projects,
	}); err != nil {
		logger.Errorf("Run failed: %v", err)
	}
}

// AddFlags adds the tracker-specific flags to the given Cobra command.
func (it *TrackUpstreamController) AddFlags(cmd *cobra.Command) {
	cmd.Flags().StringSlice("project", nil, "Only track the named projects (repeatable)")
}
