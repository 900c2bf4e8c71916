package controllers

import (
	"context"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/gerritops/internal/domain/commands"
	"github.com/rios0rios0/gerritops/internal/domain/entities"
)

// NotifyImpactController handles the "notify-impact" hook subcommand.
type NotifyImpactController struct {
	command commands.NotifyImpact
}

// NewNotifyImpactController creates a new NotifyImpactController.
func NewNotifyImpactController(command commands.NotifyImpact) *NotifyImpactController {
	return &NotifyImpactController{command: command}
}

// GetBind returns the Cobra command metadata for the impact controller.
func (it *NotifyImpactController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "notify-impact",
		Short: "React to impact flags in commit messages (Gerrit hook)",
		Long: `Watch for an impact flag (DocImpact, SecurityImpact, ...) in the
triggering commit's message. A merged DocImpact change files a
documentation bug on the tracker; any other impact flag notifies the
configured address by mail.`,
	}
}

// Execute handles one hook firing.
func (it *NotifyImpactController) Execute(cmd *cobra.Command, _ []string) {
	hook, _ := cmd.Flags().GetString("hook")
	impact, _ := cmd.Flags().GetString("impact")
	destAddress, _ := cmd.Flags().GetString("dest-address")
	dryRun, _ := cmd.Flags().GetBool("dryrun")
	event := hookEventFromFlags(hook, cmd)

	if err := it.command.Execute(context.Background(), event, commands.NotifyImpactOptions{
		Impact:      impact,
		DestAddress: destAddress,
		DryRun:      dryRun,
	}); err != nil {
		logger.Errorf("Hook failed: %v", err)
	}
}

// AddFlags adds the impact flags to the given Cobra command.
func (it *NotifyImpactController) AddFlags(cmd *cobra.Command) {
	cmd.Flags().String("hook", entities.HookChangeMerged, "Hook that fired")
	cmd.Flags().String("impact", "DocImpact", "Impact flag to look for")
	cmd.Flags().String("dest-address", "", "Notification address for non-doc impacts")
	cmd.Flags().Bool("dryrun", false, "Log intended actions without performing them")
	addHookFlags(cmd)
}
