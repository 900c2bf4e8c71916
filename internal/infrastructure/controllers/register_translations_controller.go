package controllers

import (
	"context"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/gerritops/internal/domain/commands"
	"github.com/rios0rios0/gerritops/internal/domain/entities"
)

// RegisterTranslationsController handles the "register-translations"
// subcommand.
type RegisterTranslationsController struct {
	command commands.RegisterTranslations
}

// NewRegisterTranslationsController creates a new RegisterTranslationsController.
func NewRegisterTranslationsController(command commands.RegisterTranslations) *RegisterTranslationsController {
	return &RegisterTranslationsController{command: command}
}

// GetBind returns the Cobra command metadata for the translations controller.
func (it *RegisterTranslationsController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "register-translations",
		Short: "Register translate-flagged projects on the translation platform",
		Long: `Make sure every project carrying the translate option exists on the
translation platform with a master iteration.`,
	}
}

// Execute runs the registration.
func (it *RegisterTranslationsController) Execute(cmd *cobra.Command, _ []string) {
	projects, _ := cmd.Flags().GetStringSlice("project")

	if err := it.command.Execute(context.Background(), commands.RegisterTranslationsOptions{
		Projects: projects,
	}); err != nil {
		logger.Errorf("Run failed: %v", err)
	}
}

// AddFlags adds the registration flags to the given Cobra command.
func (it *RegisterTranslationsController) AddFlags(cmd *cobra.Command) {
	cmd.Flags().StringSlice("project", nil, "Only register the named projects (repeatable)")
}
