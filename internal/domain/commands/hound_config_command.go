package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/gerritops/internal/domain/entities"
)

// HoundConfig is the interface for the code-search config generator.
type HoundConfig interface {
	Execute(ctx context.Context, opts HoundConfigOptions) error
}

// HoundConfigOptions holds runtime options for a single run.
type HoundConfigOptions struct {
	Output  string // config file location (default hound/config.json)
	GitBase string // clone URL base (default GIT_BASE env)
}

// houndRepo is one indexed repository of the generated config.
type houndRepo struct {
	URL        string          `json:"url"`
	URLPattern houndURLPattern `json:"url-pattern"`
}

type houndURLPattern struct {
	BaseURL string `json:"base-url"`
	Anchor  string `json:"anchor"`
}

type houndFile struct {
	MaxConcurrentIndexers int                  `json:"max-concurrent-indexers"`
	DBPath                string               `json:"dbpath"`
	Repos                 map[string]houndRepo `json:"repos"`
}

// HoundConfigCommand regenerates the hound code-search configuration from
// the registry, pointing source links back at the cgit browser.
type HoundConfigCommand struct{}

// NewHoundConfigCommand creates a new HoundConfigCommand.
func NewHoundConfigCommand() *HoundConfigCommand {
	return &HoundConfigCommand{}
}

func (it *HoundConfigCommand) Execute(_ context.Context, opts HoundConfigOptions) error {
	registry, err := entities.NewRegistry(entities.RegistryPaths())
	if err != nil {
		return err
	}

	gitBase := opts.GitBase
	if gitBase == "" {
		gitBase = entities.EnvOr(entities.EnvGitBase, "https://git.example.org")
	}
	output := opts.Output
	if output == "" {
		output = "hound/config.json"
	}

	config := houndFile{
		MaxConcurrentIndexers: 2,
		DBPath:                "data",
		Repos:                 map[string]houndRepo{},
	}
	for _, project := range registry.Active() {
		config.Repos[project.ShortName()] = houndRepo{
			URL: fmt.Sprintf("%s/%s.git", gitBase, project.Name),
			URLPattern: houndURLPattern{
				BaseURL: fmt.Sprintf("%s/cgit/%s/tree/{path}{anchor}", gitBase, project.Name),
				Anchor:  "#n{line}",
			},
		}
	}

	// Keys marshal sorted, so regeneration is deterministic.
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}
	if err = os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		return err
	}
	if err = os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", output, err)
	}

	logger.Infof("Wrote %d repositories to %s", len(config.Repos), output)
	return nil
}
