package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/gerritops/internal/domain/entities"
	"github.com/rios0rios0/gerritops/internal/domain/repositories"
)

// CgitConfig is the interface for the cgit repository list generator.
type CgitConfig interface {
	Execute(ctx context.Context, opts CgitConfigOptions) error
}

// CgitConfigOptions holds runtime options for a single run.
type CgitConfigOptions struct {
	Output     string // cgitrepos file location (default CGIT_REPOS env)
	RepoPath   string // bare repository tree (default REPO_PATH env)
	DefaultOrg string // org for projects without one
}

// CgitConfigCommand regenerates the cgit repository list from the
// registry: one section per organization, repositories sorted, plus the
// scratch tree and alias-site files. Missing bare repositories are
// initialized so cgit and the git daemon never 404 on a listed repo.
type CgitConfigCommand struct {
	runner repositories.Runner
	mirror repositories.MirrorRepository
}

// NewCgitConfigCommand creates a new CgitConfigCommand.
func NewCgitConfigCommand(runner repositories.Runner, mirror repositories.MirrorRepository) *CgitConfigCommand {
	return &CgitConfigCommand{runner: runner, mirror: mirror}
}

// cgitEntry is one repository line group of the generated file.
type cgitEntry struct {
	name        string
	description string
	path        string // bare repo location on disk
	url         string
}

func (it *CgitConfigCommand) Execute(ctx context.Context, opts CgitConfigOptions) error {
	registry, err := entities.NewRegistry(entities.RegistryPaths())
	if err != nil {
		return err
	}
	defaults := registry.Defaults()

	output := opts.Output
	if output == "" {
		output = entities.EnvOr(entities.EnvCgitRepos, "/etc/cgitrepos")
	}
	repoPath := opts.RepoPath
	if repoPath == "" {
		repoPath = entities.EnvOr(entities.EnvRepoPath, "/var/lib/git")
	}
	defaultOrg := opts.DefaultOrg
	if defaultOrg == "" {
		defaultOrg = defaults.GetString("default-org", "")
	}

	sections, err := groupByOrg(registry.Active(), defaultOrg, repoPath)
	if err != nil {
		return err
	}
	if err = it.addScratchRepos(sections, defaults, repoPath); err != nil {
		return err
	}

	content := renderCgitConfig(sections)
	if err = os.WriteFile(output, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", output, err)
	}
	logger.Infof("Wrote %d sections to %s", len(sections), output)

	if err = it.ensureRepos(ctx, sections, defaults); err != nil {
		return err
	}
	return it.writeAliasSites(registry.Active(), defaultOrg, repoPath, output)
}

// groupByOrg buckets projects per organization. Short names must be unique
// across the whole site because cgit serves them at the repo level.
func groupByOrg(projects []entities.Project, defaultOrg, repoPath string) (map[string][]cgitEntry, error) {
	sections := map[string][]cgitEntry{}
	seen := map[string]bool{}

	for _, project := range projects {
		org := project.Org()
		if org == "" {
			org = defaultOrg
		}
		if org == "" {
			return nil, fmt.Errorf("project %s has no organization and no default is set", project.Name)
		}

		name := project.ShortName()
		if seen[name] {
			return nil, fmt.Errorf("duplicate project name %s", name)
		}
		seen[name] = true

		description := project.Description
		if description == "" {
			description = name
		}
		sections[org] = append(sections[org], cgitEntry{
			name:        name,
			description: description,
			path:        filepath.Join(repoPath, org, name) + ".git",
			url:         org + "/" + name,
		})
	}
	return sections, nil
}

// addScratchRepos lists the already-existing repos of the scratch tree;
// they are served but never created from the registry.
func (it *CgitConfigCommand) addScratchRepos(sections map[string][]cgitEntry, defaults entities.Defaults, repoPath string) error {
	scratchSubpath := defaults.GetString("scratch-subpath", "")
	if scratchSubpath == "" {
		return nil
	}
	if _, clash := sections[scratchSubpath]; clash {
		return fmt.Errorf("scratch subpath %s collides with an organization", scratchSubpath)
	}

	entries, err := os.ReadDir(filepath.Join(repoPath, scratchSubpath))
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasSuffix(entry.Name(), ".git") {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), ".git")
		sections[scratchSubpath] = append(sections[scratchSubpath], cgitEntry{
			name:        name,
			description: fmt.Sprintf("Scratch repo for %s", name),
			path:        filepath.Join(repoPath, scratchSubpath, entry.Name()),
			url:         scratchSubpath + "/" + name,
		})
	}
	return nil
}

// renderCgitConfig emits the cgitrepos file. Sections and repositories are
// sorted so regeneration is deterministic and diffs stay readable.
func renderCgitConfig(sections map[string][]cgitEntry) string {
	orgs := make([]string, 0, len(sections))
	for org := range sections {
		orgs = append(orgs, org)
	}
	sort.Strings(orgs)

	var buf strings.Builder
	buf.WriteString("# Autogenerated by gerritops; do not edit.\n")
	for _, org := range orgs {
		buf.WriteString("\n")
		fmt.Fprintf(&buf, "section=%s\n", org)

		entries := append([]cgitEntry(nil), sections[org]...)
		sort.Slice(entries, func(i, j int) bool { return entries[i].name < entries[j].name })
		for _, entry := range entries {
			buf.WriteString("\n")
			fmt.Fprintf(&buf, "repo.url=%s\n", entry.url)
			fmt.Fprintf(&buf, "repo.path=%s/\n", entry.path)
			fmt.Fprintf(&buf, "repo.desc=%s\n", strings.ReplaceAll(entry.description, "\n", " "))
		}
	}
	return buf.String()
}

// ensureRepos bare-initializes listed repositories that do not exist on
// disk yet and hands them to the serving user.
func (it *CgitConfigCommand) ensureRepos(ctx context.Context, sections map[string][]cgitEntry, defaults entities.Defaults) error {
	owner := defaults.GetString("cgit-user", "")
	group := defaults.GetString("cgit-group", owner)

	for _, entries := range sections {
		for _, entry := range entries {
			created, err := it.mirror.InitBare(entry.path)
			if err != nil {
				return err
			}
			if !created || owner == "" {
				continue
			}

			out, status, err := it.runner.Run(ctx, "", nil,
				"chown", "-R", owner+":"+group, entry.path)
			if err != nil {
				return err
			}
			if status != 0 {
				return fmt.Errorf("failed to chown %s: %s", entry.path, out)
			}
		}
	}
	return nil
}

// writeAliasSites generates one extra cgitrepos file per alias site and a
// symlink farm pointing the aliased paths at the real repositories.
func (it *CgitConfigCommand) writeAliasSites(projects []entities.Project, defaultOrg, repoPath, output string) error {
	sites := map[string][]entities.Project{}
	for _, project := range projects {
		if project.CgitAlias != nil {
			sites[project.CgitAlias.Site] = append(sites[project.CgitAlias.Site], project)
		}
	}

	siteNames := make([]string, 0, len(sites))
	for site := range sites {
		siteNames = append(siteNames, site)
	}
	sort.Strings(siteNames)

	for _, site := range siteNames {
		var buf strings.Builder
		buf.WriteString("# Autogenerated by gerritops; do not edit.\n")

		aliased := sites[site]
		sort.Slice(aliased, func(i, j int) bool {
			return aliased[i].CgitAlias.Path < aliased[j].CgitAlias.Path
		})
		for _, project := range aliased {
			org := project.Org()
			if org == "" {
				org = defaultOrg
			}
			target := filepath.Join(repoPath, org, project.ShortName()) + ".git"
			link := filepath.Join(repoPath, site, project.CgitAlias.Path) + ".git"

			buf.WriteString("\n")
			fmt.Fprintf(&buf, "repo.url=%s\n", project.CgitAlias.Path)
			fmt.Fprintf(&buf, "repo.path=%s/\n", link)
			fmt.Fprintf(&buf, "repo.desc=%s\n", strings.ReplaceAll(project.Description, "\n", " "))

			if err := os.MkdirAll(filepath.Dir(link), 0o755); err != nil {
				return err
			}
			if _, err := os.Lstat(link); os.IsNotExist(err) {
				if err = os.Symlink(target, link); err != nil {
					return err
				}
			}
		}

		if err := os.WriteFile(output+"."+site, []byte(buf.String()), 0o644); err != nil {
			return fmt.Errorf("failed to write alias site file for %s: %w", site, err)
		}
	}
	return nil
}
