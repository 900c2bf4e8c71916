package commands

import (
	"context"
	"fmt"
	"os"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/gerritops/internal/domain/entities"
	"github.com/rios0rios0/gerritops/internal/domain/repositories"
)

const defaultPullRequestMessage = `Thank you for contributing to %s!

%s uses Gerrit for code review.

Please visit the project's contributor documentation and follow the
instructions there to upload your change to Gerrit.`

// ClosePullRequests is the interface for the mirror pull-request sweeper.
type ClosePullRequests interface {
	Execute(ctx context.Context, opts ClosePullRequestsOptions) error
}

// ClosePullRequestsOptions holds runtime options for a single run.
type ClosePullRequestsOptions struct {
	Projects    []string // If set, only sweep these projects (CLI override)
	MessageFile string   // close-message template file (CLI override)
}

// ClosePullRequestsCommand walks the GitHub mirrors and closes every open
// pull request with a pointer to the review workflow. Mirrors are
// read-only; pull requests against them would otherwise linger unanswered.
type ClosePullRequestsCommand struct {
	githubFactory repositories.GitHubFactory
}

// NewClosePullRequestsCommand creates a new ClosePullRequestsCommand.
func NewClosePullRequestsCommand(githubFactory repositories.GitHubFactory) *ClosePullRequestsCommand {
	return &ClosePullRequestsCommand{githubFactory: githubFactory}
}

func (it *ClosePullRequestsCommand) Execute(ctx context.Context, opts ClosePullRequestsOptions) error {
	registry, err := entities.NewRegistry(entities.RegistryPaths())
	if err != nil {
		return err
	}
	settings := entities.NewSiteSettings(registry.Defaults())

	github, err := it.githubFactory(settings.GitHubSecureConfig)
	if err != nil {
		return err
	}

	only := map[string]bool{}
	for _, name := range opts.Projects {
		only[name] = true
	}

	template, err := closeMessageTemplate(registry.Defaults(), opts)
	if err != nil {
		return err
	}

	var summary entities.RunSummary
	for _, project := range registry.Active() {
		if len(only) > 0 && !only[project.Name] {
			continue
		}
		// Projects that accept pull requests keep them open.
		if !registry.HasGitHub(project.Name) || project.HasOption("has-pull-requests") {
			summary.Skipped++
			continue
		}

		summary.Processed++
		message := fmt.Sprintf(template, project.Name, project.Name)
		closed, sweepErr := github.CloseOpenPullRequests(ctx, project.Name, message)
		if sweepErr != nil {
			logger.Errorf("Failed to sweep pull requests of %s: %v", project.Name, sweepErr)
			summary.Record(project.Name, entities.StageGitHub, sweepErr)
			continue
		}
		if closed > 0 {
			logger.Infof("Closed %d pull requests on %s", closed, project.Name)
		}
	}

	logger.Infof("Run complete: %d projects swept, %d skipped, %d errors",
		summary.Processed, summary.Skipped, len(summary.Errors))
	return nil
}

// closeMessageTemplate resolves the close-comment template: the
// command-line file wins over the inline default override, which wins over
// the canned text.
func closeMessageTemplate(defaults entities.Defaults, opts ClosePullRequestsOptions) (string, error) {
	if opts.MessageFile != "" {
		raw, err := os.ReadFile(opts.MessageFile)
		if err != nil {
			return "", fmt.Errorf("failed to read message file %s: %w", opts.MessageFile, err)
		}
		return string(raw), nil
	}
	return defaults.GetString("pull-request-message", defaultPullRequestMessage), nil
}
