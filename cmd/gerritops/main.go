package main

import (
	"os"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/gerritops/internal"
)

func buildRootCommand() *cobra.Command {
	//nolint:exhaustruct // Minimal Command initialization with required fields only
	return &cobra.Command{
		Use:   "gerritops",
		Short: "Administer a Gerrit project fleet and its mirrors",
		Long: `Tooling for running a Gerrit site from a declarative project registry:
reconcile projects and ACLs, mirror to GitHub, react to review events
through Gerrit hooks, and regenerate the cgit and code-search configs.

Batch subcommands (sync-projects, track-upstream, close-pull-requests,
expire-reviews, create-cgitrepos, create-hound-config,
register-translations) are intended for cronjobs; the hook subcommands
(update-bug, welcome-message, notify-impact) are wired into Gerrit's
hook scripts.`,
		RunE: func(command *cobra.Command, _ []string) error {
			return command.Help()
		},
	}
}

func addSubcommands(rootCmd *cobra.Command, appContext *internal.AppInternal) {
	for _, controller := range appContext.GetControllers() {
		bind := controller.GetBind()
		ctrl := controller // capture for closure
		//nolint:exhaustruct // Minimal Command initialization with required fields only
		subCmd := &cobra.Command{
			Use:   bind.Use,
			Short: bind.Short,
			Long:  bind.Long,
			Run: func(command *cobra.Command, arguments []string) {
				ctrl.Execute(command, arguments)
			},
		}
		ctrl.AddFlags(subCmd)

		rootCmd.AddCommand(subCmd)
	}
}

func main() {
	//nolint:exhaustruct // Minimal TextFormatter initialization with required fields only
	logger.SetFormatter(&logger.TextFormatter{
		ForceColors:   true,
		FullTimestamp: true,
	})
	if os.Getenv("DEBUG") == "true" {
		logger.SetLevel(logger.DebugLevel)
	}

	// Inject controllers via DIG
	cobraRoot := buildRootCommand()
	appContext := injectAppContext()
	addSubcommands(cobraRoot, appContext)

	if err := cobraRoot.Execute(); err != nil {
		logger.Fatalf("Error executing 'gerritops': %s", err)
	}
}
