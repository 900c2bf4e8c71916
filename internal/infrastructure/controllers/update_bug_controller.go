package controllers

import (
	"context"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/gerritops/internal/domain/commands"
	"github.com/rios0rios0/gerritops/internal/domain/entities"
)

// UpdateBugController handles the "update-bug" hook subcommand.
type UpdateBugController struct {
	command commands.UpdateBug
}

// NewUpdateBugController creates a new UpdateBugController.
func NewUpdateBugController(command commands.UpdateBug) *UpdateBugController {
	return &UpdateBugController{command: command}
}

// GetBind returns the Cobra command metadata for the bug-update controller.
func (it *UpdateBugController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "update-bug",
		Short: "Update bug-tracker tasks referenced by a change (Gerrit hook)",
		Long: `Scan the triggering commit's message for bug references and update the
matching tracker tasks: comments on proposal, merge, and abandonment,
status transitions driven by the reference prefix (Closes-Bug,
Partial-Bug, Related-Bug), and assignment to the uploader.

Wire this subcommand into Gerrit's patchset-created, change-merged, and
change-abandoned hooks with --hook set accordingly.`,
	}
}

// Execute handles one hook firing.
func (it *UpdateBugController) Execute(cmd *cobra.Command, _ []string) {
	hook, _ := cmd.Flags().GetString("hook")
	event := hookEventFromFlags(hook, cmd)

	if err := it.command.Execute(context.Background(), event); err != nil {
		// Hooks must not block Gerrit; report and exit clean.
		logger.Errorf("Hook failed: %v", err)
	}
}

// AddFlags adds the hook flags to the given Cobra command.
func (it *UpdateBugController) AddFlags(cmd *cobra.Command) {
	cmd.Flags().String("hook", entities.HookPatchsetCreated, "Hook that fired (patchset-created, change-merged, change-abandoned)")
	addHookFlags(cmd)
}
