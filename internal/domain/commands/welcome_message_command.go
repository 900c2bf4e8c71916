package commands

import (
	"context"
	"os"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/gerritops/internal/domain/entities"
	"github.com/rios0rios0/gerritops/internal/domain/repositories"
)

const defaultWelcomeMessage = `Thank you for your first contribution!

Your patch will now be tested automatically by the continuous integration
system. Reviewers will get to it as soon as they can. In the meantime,
please make sure the tests pass and read up on the review workflow, which
explains how patches are reviewed and approved.

If this change is urgent or stuck, ask for help in the project's chat
channel or on the development mailing list.`

// WelcomeMessage is the interface for the first-contribution greeter.
type WelcomeMessage interface {
	Execute(ctx context.Context, event entities.HookEvent, opts WelcomeMessageOptions) error
}

// WelcomeMessageOptions holds runtime options for one hook invocation.
type WelcomeMessageOptions struct {
	MessageFile string // greeting text file (CLI override)
}

// WelcomeMessageCommand greets first-time contributors: when the uploader
// of a brand-new change has exactly one patch set on record, a welcome
// review comment is posted on the change.
type WelcomeMessageCommand struct {
	dbFactory     repositories.GerritDBFactory
	gerritFactory repositories.GerritFactory
}

// NewWelcomeMessageCommand creates a new WelcomeMessageCommand.
func NewWelcomeMessageCommand(
	dbFactory repositories.GerritDBFactory,
	gerritFactory repositories.GerritFactory,
) *WelcomeMessageCommand {
	return &WelcomeMessageCommand{dbFactory: dbFactory, gerritFactory: gerritFactory}
}

func (it *WelcomeMessageCommand) Execute(ctx context.Context, event entities.HookEvent, opts WelcomeMessageOptions) error {
	if event.Hook != entities.HookPatchsetCreated || event.Patchset != "1" {
		return nil
	}

	registry, err := entities.NewRegistry(entities.RegistryPaths())
	if err != nil {
		return err
	}
	settings := entities.NewSiteSettings(registry.Defaults())
	if settings.GerritDBDSN == "" {
		logger.Debug("No gerrit database configured, cannot detect first contributions")
		return nil
	}

	db, err := it.dbFactory(settings.GerritDBDSN)
	if err != nil {
		return err
	}
	defer db.Close()

	count, err := db.DistinctPatchSetCount(ctx, event.UploaderEmail())
	if err != nil {
		return err
	}
	// The patch set that fired this hook is already in the database; one
	// means this is the uploader's very first upload.
	if count != 1 {
		return nil
	}

	gerrit, err := it.gerritFactory(repositories.GerritConfig{
		Host:    settings.GerritHost,
		Port:    settings.GerritPort,
		User:    settings.GerritUser,
		KeyFile: settings.GerritKey,
	})
	if err != nil {
		return err
	}

	logger.Infof("Welcoming first contribution by %s on %s", event.Uploader, event.Change)
	return gerrit.Review(ctx, event.Commit, welcomeMessage(registry.Defaults(), opts), false)
}

// welcomeMessage resolves the greeting text: the command-line file wins
// over the file named in the defaults, which wins over the inline default
// override, which wins over the canned text.
func welcomeMessage(defaults entities.Defaults, opts WelcomeMessageOptions) string {
	path := opts.MessageFile
	if path == "" {
		path = defaults.GetString("welcome-message-file", "")
	}
	if path != "" {
		if raw, err := os.ReadFile(path); err == nil {
			return string(raw)
		}
		logger.Warnf("Failed to read welcome message file %s, using default", path)
	}
	return defaults.GetString("welcome-message", defaultWelcomeMessage)
}
