package commands

import (
	"go.uber.org/dig"
)

// RegisterProviders registers all command providers with the DIG container.
func RegisterProviders(container *dig.Container) error {
	// Register command constructors
	constructors := []any{
		NewSyncProjectsCommand,
		NewTrackUpstreamCommand,
		NewClosePullRequestsCommand,
		NewUpdateBugCommand,
		NewWelcomeMessageCommand,
		NewNotifyImpactCommand,
		NewExpireReviewsCommand,
		NewCgitConfigCommand,
		NewHoundConfigCommand,
		NewRegisterTranslationsCommand,
	}
	for _, constructor := range constructors {
		if err := container.Provide(constructor); err != nil {
			return err
		}
	}

	// Bind interfaces to implementations
	bindings := []any{
		func(impl *SyncProjectsCommand) SyncProjects { return impl },
		func(impl *TrackUpstreamCommand) TrackUpstream { return impl },
		func(impl *ClosePullRequestsCommand) ClosePullRequests { return impl },
		func(impl *UpdateBugCommand) UpdateBug { return impl },
		func(impl *WelcomeMessageCommand) WelcomeMessage { return impl },
		func(impl *NotifyImpactCommand) NotifyImpact { return impl },
		func(impl *ExpireReviewsCommand) ExpireReviews { return impl },
		func(impl *CgitConfigCommand) CgitConfig { return impl },
		func(impl *HoundConfigCommand) HoundConfig { return impl },
		func(impl *RegisterTranslationsCommand) RegisterTranslations { return impl },
	}
	for _, binding := range bindings {
		if err := container.Provide(binding); err != nil {
			return err
		}
	}

	return nil
}
