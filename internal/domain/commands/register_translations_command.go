package commands

import (
	"context"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/gerritops/internal/domain/entities"
	"github.com/rios0rios0/gerritops/internal/domain/repositories"
)

// RegisterTranslations is the interface for the translation platform
// registration run.
type RegisterTranslations interface {
	Execute(ctx context.Context, opts RegisterTranslationsOptions) error
}

// RegisterTranslationsOptions holds runtime options for a single run.
type RegisterTranslationsOptions struct {
	Projects []string // If set, only register these projects (CLI override)
}

// RegisterTranslationsCommand makes sure every translate-flagged project
// exists on the translation platform with a master iteration, so the
// translation update jobs have somewhere to push.
type RegisterTranslationsCommand struct {
	translationFactory repositories.TranslationFactory
}

// NewRegisterTranslationsCommand creates a new RegisterTranslationsCommand.
func NewRegisterTranslationsCommand(translationFactory repositories.TranslationFactory) *RegisterTranslationsCommand {
	return &RegisterTranslationsCommand{translationFactory: translationFactory}
}

func (it *RegisterTranslationsCommand) Execute(ctx context.Context, opts RegisterTranslationsOptions) error {
	registry, err := entities.NewRegistry(entities.RegistryPaths())
	if err != nil {
		return err
	}
	defaults := registry.Defaults()

	translation, err := it.translationFactory(repositories.TranslationConfig{
		URL:      defaults.GetString("translation-url", ""),
		Username: defaults.GetString("translation-username", ""),
		APIKey:   defaults.GetString("translation-api-key", ""),
	})
	if err != nil {
		return err
	}

	only := map[string]bool{}
	for _, name := range opts.Projects {
		only[name] = true
	}

	var summary entities.RunSummary
	for _, project := range registry.Active() {
		if !project.HasOption("translate") {
			continue
		}
		if len(only) > 0 && !only[project.Name] {
			summary.Skipped++
			continue
		}

		summary.Processed++
		if err = it.registerProject(ctx, translation, project.ShortName()); err != nil {
			logger.Errorf("Failed to register %s for translation: %v", project.Name, err)
			summary.Record(project.Name, entities.StageCreateProject, err)
		}
	}

	logger.Infof("Run complete: %d projects registered, %d skipped, %d errors",
		summary.Processed, summary.Skipped, len(summary.Errors))
	return nil
}

func (it *RegisterTranslationsCommand) registerProject(ctx context.Context, translation repositories.TranslationRepository, id string) error {
	exists, err := translation.ProjectExists(ctx, id)
	if err != nil {
		return err
	}
	if !exists {
		if err = translation.CreateProject(ctx, id); err != nil {
			return err
		}
		logger.Infof("Registered %s on the translation platform", id)
	}

	exists, err = translation.IterationExists(ctx, id, "master")
	if err != nil {
		return err
	}
	if !exists {
		return translation.CreateIteration(ctx, id, "master")
	}
	return nil
}
