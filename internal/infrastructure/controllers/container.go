package controllers

import (
	"go.uber.org/dig"

	"github.com/rios0rios0/gerritops/internal/domain/entities"
)

// RegisterProviders registers all controller providers with the DIG container.
func RegisterProviders(container *dig.Container) error {
	constructors := []any{
		NewSyncProjectsController,
		NewTrackUpstreamController,
		NewClosePullRequestsController,
		NewUpdateBugController,
		NewWelcomeMessageController,
		NewNotifyImpactController,
		NewExpireReviewsController,
		NewCgitConfigController,
		NewHoundConfigController,
		NewRegisterTranslationsController,
		NewControllers,
	}
	for _, constructor := range constructors {
		if err := container.Provide(constructor); err != nil {
			return err
		}
	}

	return nil
}

// NewControllers aggregates all controllers into a slice for the AppInternal.
func NewControllers(
	syncProjects *SyncProjectsController,
	trackUpstream *TrackUpstreamController,
	closePullRequests *ClosePullRequestsController,
	updateBug *UpdateBugController,
	welcomeMessage *WelcomeMessageController,
	notifyImpact *NotifyImpactController,
	expireReviews *ExpireReviewsController,
	cgitConfig *CgitConfigController,
	houndConfig *HoundConfigController,
	registerTranslations *RegisterTranslationsController,
) *[]entities.Controller {
	return &[]entities.Controller{
		syncProjects,
		trackUpstream,
		closePullRequests,
		updateBug,
		welcomeMessage,
		notifyImpact,
		expireReviews,
		cgitConfig,
		houndConfig,
		registerTranslations,
	}
}
