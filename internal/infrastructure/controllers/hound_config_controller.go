package controllers

import (
	"context"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/gerritops/internal/domain/commands"
	"github.com/rios0rios0/gerritops/internal/domain/entities"
)

// HoundConfigController handles the "create-hound-config" subcommand.
type HoundConfigController struct {
	command commands.HoundConfig
}

// NewHoundConfigController creates a new HoundConfigController.
func NewHoundConfigController(command commands.HoundConfig) *HoundConfigController {
	return &HoundConfigController{command: command}
}

// GetBind returns the Cobra command metadata for the hound controller.
func (it *HoundConfigController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "create-hound-config",
		Short: "Regenerate the hound code-search configuration",
		Long: `Write the hound config.json listing every active project, with source
links pointing back at the cgit browser.`,
	}
}

// Execute runs the generator.
func (it *HoundConfigController) Execute(cmd *cobra.Command, _ []string) {
	output, _ := cmd.Flags().GetString("output")
	gitBase, _ := cmd.Flags().GetString("git-base")

	if err := it.command.Execute(context.Background(), commands.HoundConfigOptions{
		Output:  output,
		GitBase: gitBase,
	}); err != nil {
		logger.Errorf("Run failed: %v", err)
	}
}

// AddFlags adds the generator flags to the given Cobra command.
func (it *HoundConfigController) AddFlags(cmd *cobra.Command) {
	cmd.Flags().String("output", "", "Config file location (default hound/config.json)")
	cmd.Flags().String("git-base", "", "Clone URL base (default $GIT_BASE)")
}
