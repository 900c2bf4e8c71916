package repositories

import (
	"go.uber.org/dig"

	domainRepos "github.com/rios0rios0/gerritops/internal/domain/repositories"
	"github.com/rios0rios0/gerritops/internal/infrastructure/repositories/gerrit"
	"github.com/rios0rios0/gerritops/internal/infrastructure/repositories/gerritdb"
	"github.com/rios0rios0/gerritops/internal/infrastructure/repositories/gitcmd"
	"github.com/rios0rios0/gerritops/internal/infrastructure/repositories/github"
	"github.com/rios0rios0/gerritops/internal/infrastructure/repositories/gitmirror"
	"github.com/rios0rios0/gerritops/internal/infrastructure/repositories/launchpad"
	"github.com/rios0rios0/gerritops/internal/infrastructure/repositories/mail"
	"github.com/rios0rios0/gerritops/internal/infrastructure/repositories/zanata"
)

// RegisterProviders registers all repository providers with the DIG
// container. Clients needing runtime configuration (credentials files,
// DSNs, site settings) are provided as factories the commands invoke once
// the registry has been loaded.
func RegisterProviders(container *dig.Container) error {
	providers := []any{
		gitcmd.NewCommandRunner,
		gitmirror.NewGitMirrorRepository,
		func() domainRepos.WorkspaceFactory { return gitcmd.NewWorkspace },
		func() domainRepos.GerritFactory { return gerrit.NewSSHGerritRepository },
		func() domainRepos.GerritDBFactory { return gerritdb.NewMySQLGerritDBRepository },
		func() domainRepos.GitHubFactory { return github.NewGitHubMirrorRepository },
		func() domainRepos.BugTrackerFactory { return launchpad.NewLaunchpadRepository },
		func() domainRepos.TranslationFactory { return zanata.NewZanataRepository },
		func() domainRepos.MailFactory { return mail.NewSMTPMailRepository },
	}

	for _, provider := range providers {
		if err := container.Provide(provider); err != nil {
			return err
		}
	}
	return nil
}
