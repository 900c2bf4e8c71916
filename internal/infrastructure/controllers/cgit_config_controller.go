package controllers

import (
	"context"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/gerritops/internal/domain/commands"
	"github.com/rios0rios0/gerritops/internal/domain/entities"
)

// CgitConfigController handles the "create-cgitrepos" subcommand.
type CgitConfigController struct {
	command commands.CgitConfig
}

// NewCgitConfigController creates a new CgitConfigController.
func NewCgitConfigController(command commands.CgitConfig) *CgitConfigController {
	return &CgitConfigController{command: command}
}

// GetBind returns the Cobra command metadata for the cgit controller.
func (it *CgitConfigController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "create-cgitrepos",
		Short: "Regenerate the cgit repository list from the registry",
		Long: `Write the cgitrepos file grouping every project by organization,
initialize missing bare repositories, and maintain the alias-site config
files and symlink farms.`,
	}
}

// Execute runs the generator.
func (it *CgitConfigController) Execute(cmd *cobra.Command, _ []string) {
	output, _ := cmd.Flags().GetString("output")
	repoPath, _ := cmd.Flags().GetString("repo-path")
	defaultOrg, _ := cmd.Flags().GetString("default-org")

	if err := it.command.Execute(context.Background(), commands.CgitConfigOptions{
		Output:     output,
		RepoPath:   repoPath,
		DefaultOrg: defaultOrg,
	}); err != nil {
		logger.Errorf("Run failed: %v", err)
	}
}

// AddFlags adds the generator flags to the given Cobra command.
func (it *CgitConfigController) AddFlags(cmd *cobra.Command) {
	cmd.Flags().String("output", "", "cgitrepos file location (default $CGIT_REPOS)")
	cmd.Flags().String("repo-path", "", "Bare repository tree (default $REPO_PATH)")
	cmd.Flags().String("default-org", "", "Organization for projects without one")
}
