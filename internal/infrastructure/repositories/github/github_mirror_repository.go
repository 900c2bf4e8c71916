package github

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	gh "github.com/google/go-github/v66/github"
	log "github.com/sirupsen/logrus"
	"gopkg.in/ini.v1"

	"github.com/rios0rios0/gerritops/internal/domain/entities"
	"github.com/rios0rios0/gerritops/internal/domain/repositories"
)

const (
	perPage        = 100
	gerritTeamName = "gerrit"
)

// GitHubMirrorRepository implements repositories.GitHubRepository on the
// GitHub REST API. The set of organizations the authenticated account
// belongs to is fetched once and cached for the run.
type GitHubMirrorRepository struct {
	client *gh.Client
	orgs   map[string]bool
}

// NewGitHubMirrorRepository reads the secure-config file and authenticates
// with its oauth_token, falling back to username/password.
func NewGitHubMirrorRepository(secureConfigPath string) (repositories.GitHubRepository, error) {
	cfg, err := ini.Load(secureConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", secureConfigPath, err)
	}

	section := cfg.Section("github")
	client := gh.NewClient(nil)
	if token := section.Key("oauth_token").String(); token != "" {
		client = client.WithAuthToken(token)
	} else {
		transport := &gh.BasicAuthTransport{
			Username:  section.Key("username").String(),
			Password:  section.Key("password").String(),
			Transport: http.DefaultTransport,
		}
		client = gh.NewClient(&http.Client{Transport: transport})
	}

	return &GitHubMirrorRepository{client: client}, nil
}

// managedOrgs lists the organizations of the authenticated account, keyed
// by lowercased login.
func (it *GitHubMirrorRepository) managedOrgs(ctx context.Context) (map[string]bool, error) {
	if it.orgs != nil {
		return it.orgs, nil
	}

	orgs := map[string]bool{}
	opts := &gh.ListOptions{PerPage: perPage}
	for {
		page, resp, err := it.client.Organizations.List(ctx, "", opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list organizations: %w", err)
		}
		for _, org := range page {
			orgs[strings.ToLower(org.GetLogin())] = true
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	it.orgs = orgs
	return orgs, nil
}

// EnsureMirror creates or updates the mirror repository and grants the
// gerrit replication team push access. Projects living in organizations
// the account does not manage are skipped, not failed.
func (it *GitHubMirrorRepository) EnsureMirror(ctx context.Context, spec entities.MirrorSpec) (entities.MirrorResult, error) {
	var result entities.MirrorResult

	org := orgOf(spec.Project)
	name := entities.ShortProjectName(spec.Project)

	orgs, err := it.managedOrgs(ctx)
	if err != nil {
		return result, err
	}
	if !orgs[strings.ToLower(org)] {
		log.Debugf("organization %s is not managed by this account, skipping %s", org, spec.Project)
		result.Skipped = true
		return result, nil
	}

	repo, _, err := it.client.Repositories.Get(ctx, org, name)
	if err != nil {
		repo, _, err = it.client.Repositories.Create(ctx, org, &gh.Repository{
			Name:         gh.String(name),
			Description:  gh.String(spec.Description),
			Homepage:     gh.String(spec.Homepage),
			HasIssues:    gh.Bool(spec.HasIssues),
			HasDownloads: gh.Bool(spec.HasDownloads),
			HasWiki:      gh.Bool(spec.HasWiki),
		})
		if err != nil {
			return result, fmt.Errorf("failed to create mirror %s: %w", spec.Project, err)
		}
		result.Created = true
	} else {
		_, _, err = it.client.Repositories.Edit(ctx, org, name, &gh.Repository{
			Description:  gh.String(spec.Description),
			Homepage:     gh.String(spec.Homepage),
			HasIssues:    gh.Bool(spec.HasIssues),
			HasDownloads: gh.Bool(spec.HasDownloads),
			HasWiki:      gh.Bool(spec.HasWiki),
		})
		if err != nil {
			return result, fmt.Errorf("failed to update mirror %s: %w", spec.Project, err)
		}
	}

	team, err := it.gerritTeam(ctx, org)
	if err != nil {
		return result, err
	}
	if team == nil {
		log.Warnf("organization %s has no %s team, replication will not work", org, gerritTeamName)
		return result, nil
	}

	_, err = it.client.Teams.AddTeamRepoBySlug(ctx, org, team.GetSlug(), org, repo.GetName(),
		&gh.TeamAddTeamRepoOptions{Permission: "push"})
	if err != nil {
		return result, fmt.Errorf("failed to grant %s team access to %s: %w",
			gerritTeamName, spec.Project, err)
	}
	result.GerritInTeam = true
	return result, nil
}

func (it *GitHubMirrorRepository) gerritTeam(ctx context.Context, org string) (*gh.Team, error) {
	opts := &gh.ListOptions{PerPage: perPage}
	for {
		teams, resp, err := it.client.Teams.ListTeams(ctx, org, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list teams of %s: %w", org, err)
		}
		for _, team := range teams {
			if team.GetName() == gerritTeamName {
				return team, nil
			}
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return nil, nil
}

// CloseOpenPullRequests comments on and closes every open pull request of
// the project's mirror.
func (it *GitHubMirrorRepository) CloseOpenPullRequests(ctx context.Context, project, message string) (int, error) {
	org := orgOf(project)
	name := entities.ShortProjectName(project)
	closed := 0

	opts := &gh.PullRequestListOptions{
		State:       "open",
		ListOptions: gh.ListOptions{PerPage: perPage},
	}
	for {
		pulls, resp, err := it.client.PullRequests.List(ctx, org, name, opts)
		if err != nil {
			return closed, fmt.Errorf("failed to list pull requests of %s: %w", project, err)
		}

		for _, pull := range pulls {
			number := pull.GetNumber()
			_, _, err = it.client.Issues.CreateComment(ctx, org, name, number,
				&gh.IssueComment{Body: gh.String(message)})
			if err != nil {
				return closed, fmt.Errorf("failed to comment on %s#%d: %w", project, number, err)
			}
			pull.State = gh.String("closed")
			if _, _, err = it.client.PullRequests.Edit(ctx, org, name, number, pull); err != nil {
				return closed, fmt.Errorf("failed to close %s#%d: %w", project, number, err)
			}
			closed++
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return closed, nil
}

func orgOf(project string) string {
	if idx := strings.Index(project, "/"); idx >= 0 {
		return project[:idx]
	}
	return project
}
