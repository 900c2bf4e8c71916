package entities

import (
	"fmt"
	"os"
	"path/filepath"
)

// Environment variable overrides honored across subcommands.
const (
	EnvProjectsYAML       = "PROJECTS_YAML"
	EnvProjectsINI        = "PROJECTS_INI"
	EnvGitHubSecureConfig = "GITHUB_SECURE_CONFIG"
	EnvGerritCacheDir     = "GERRIT_CACHE_DIR"
	EnvGerritCredentials  = "GERRIT_CREDENTIALS"
	EnvCgitRepos          = "CGIT_REPOS"
	EnvRepoPath           = "REPO_PATH"
	EnvGitBase            = "GIT_BASE"
	EnvSMTPUser           = "SMTP_USER"
	EnvSMTPPass           = "SMTP_PASS"
)

// SiteSettings is the resolved site-wide configuration for one run, built
// from the registry defaults plus environment overrides. It replaces the
// scattered module-level constants of older revisions: constructed once per
// process and passed explicitly.
type SiteSettings struct {
	LocalGitDir        string
	CacheDir           string
	ACLDir             string
	GerritHost         string
	GerritPort         int
	GerritUser         string
	GerritKey          string
	GerritCommitter    string
	GerritReplicate    bool
	GerritSystemUser   string
	GerritSystemGroup  string
	GerritDBDSN        string
	Homepage           string
	HasGitHub          bool
	HasIssues          bool
	HasDownloads       bool
	HasWiki            bool
	GitHubSecureConfig string
}

// NewSiteSettings resolves site settings from the defaults overlay.
func NewSiteSettings(defaults Defaults) *SiteSettings {
	return &SiteSettings{
		LocalGitDir:       defaults.GetString("local-git-dir", "/var/lib/git"),
		CacheDir:          defaults.GetString("cache-dir", "/var/lib/gerritops"),
		ACLDir:            defaults.GetString("acl-dir", ""),
		GerritHost:        defaults.GetString("gerrit-host", ""),
		GerritPort:        defaults.GetInt("gerrit-port", 29418),
		GerritUser:        defaults.GetString("gerrit-user", ""),
		GerritKey:         defaults.GetString("gerrit-key", ""),
		GerritCommitter:   defaults.GetString("gerrit-committer", ""),
		GerritReplicate:   defaults.GetBool("gerrit-replicate", true),
		GerritSystemUser:  defaults.GetString("gerrit-system-user", "gerrit2"),
		GerritSystemGroup: defaults.GetString("gerrit-system-group", "gerrit2"),
		GerritDBDSN:       defaults.GetString("gerrit-db-dsn", ""),
		Homepage:          defaults.GetString("homepage", ""),
		HasGitHub:         defaults.GetBool("has-github", true),
		HasIssues:         defaults.GetBool("has-issues", false),
		HasDownloads:      defaults.GetBool("has-downloads", false),
		HasWiki:           defaults.GetBool("has-wiki", false),
		GitHubSecureConfig: EnvOr(EnvGitHubSecureConfig,
			defaults.GetString("github-config", "/etc/github/github-projects.secure.config")),
	}
}

// RemoteURL returns the Gerrit ssh remote for a project.
func (s *SiteSettings) RemoteURL(project string) string {
	return fmt.Sprintf("ssh://%s:%d/%s", s.GerritHost, s.GerritPort, project)
}

// CachePath returns the per-project working-copy path under the cache root.
func (s *SiteSettings) CachePath(project string) string {
	return filepath.Join(s.CacheDir, project)
}

// ProgressCachePath returns the location of the persisted progress cache.
func (s *SiteSettings) ProgressCachePath() string {
	return filepath.Join(s.CacheDir, "project.cache")
}

// ACLPath returns the ACL source file for a project: the explicit
// acl-config when set, else <acl-dir>/<project>.config.
func (s *SiteSettings) ACLPath(p Project) string {
	if p.ACLConfig != "" {
		return p.ACLConfig
	}
	return filepath.Join(s.ACLDir, p.Name) + ".config"
}

// HookRepoPath returns the server-side bare repository the hook fired for,
// honoring the REPO_PATH override Gerrit's hook environment may carry.
func (s *SiteSettings) HookRepoPath(project string) string {
	return EnvOr(EnvRepoPath, filepath.Join(s.LocalGitDir, project+".git"))
}

// EnvOr returns the environment variable's value when set, else fallback.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// RegistryPaths resolves the projects.yaml / projects.ini locations from
// the environment, falling back to the conventional home of the review
// site.
func RegistryPaths() (string, string) {
	return EnvOr(EnvProjectsYAML, "/home/gerrit2/projects.yaml"),
		EnvOr(EnvProjectsINI, "/home/gerrit2/projects.ini")
}
