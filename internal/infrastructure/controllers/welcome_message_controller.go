package controllers

import (
	"context"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/gerritops/internal/domain/commands"
	"github.com/rios0rios0/gerritops/internal/domain/entities"
)

// WelcomeMessageController handles the "welcome-message" hook subcommand.
type WelcomeMessageController struct {
	command commands.WelcomeMessage
}

// NewWelcomeMessageController creates a new WelcomeMessageController.
func NewWelcomeMessageController(command commands.WelcomeMessage) *WelcomeMessageController {
	return &WelcomeMessageController{command: command}
}

// GetBind returns the Cobra command metadata for the greeter controller.
func (it *WelcomeMessageController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "welcome-message",
		Short: "Greet first-time contributors (Gerrit hook)",
		Long: `Post a welcome review comment on a change when its uploader has never
uploaded a patch set before. Wire this subcommand into Gerrit's
patchset-created hook.`,
	}
}

// Execute handles one hook firing.
func (it *WelcomeMessageController) Execute(cmd *cobra.Command, _ []string) {
	event := hookEventFromFlags(entities.HookPatchsetCreated, cmd)
	messageFile, _ := cmd.Flags().GetString("message-file")

	if err := it.command.Execute(context.Background(), event, commands.WelcomeMessageOptions{
		MessageFile: messageFile,
	}); err != nil {
		logger.Errorf("Hook failed: %v", err)
	}
}

// AddFlags adds the hook flags to the given Cobra command.
func (it *WelcomeMessageController) AddFlags(cmd *cobra.Command) {
	addHookFlags(cmd)
	cmd.Flags().String("message-file", "", "File containing the greeting to post")
}
