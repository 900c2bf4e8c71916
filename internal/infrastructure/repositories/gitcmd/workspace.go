package gitcmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/rios0rios0/gerritops/internal/domain/entities"
	"github.com/rios0rios0/gerritops/internal/domain/repositories"
)

const (
	metaConfigFetchAttempts = 10
	metaConfigFetchDelay    = 2 * time.Second
)

var aclGroupPattern = regexp.MustCompile(`^.*\sgroup\s+(.*)$`)

// Workspace drives local git working copies through the shell git binary,
// authenticating pushes to Gerrit with a throwaway GIT_SSH wrapper.
type Workspace struct {
	runner  repositories.Runner
	env     map[string]string
	wrapper string

	// pushRefs records, per repo created in this run, the refspec the
	// initial push to Gerrit must use. Empty string means Gerrit already
	// holds the history and nothing gets pushed.
	pushRefs map[string]string
}

// NewWorkspace builds a workspace bound to the site's Gerrit identity. The
// returned workspace owns a temporary SSH wrapper; call Close to remove it.
func NewWorkspace(runner repositories.Runner, settings entities.SiteSettings) (repositories.GitWorkspace, error) {
	wrapper, err := writeSSHWrapper(settings.GerritKey, settings.GerritUser)
	if err != nil {
		return nil, err
	}

	env := map[string]string{"GIT_SSH": wrapper}
	if name, email := splitCommitter(settings.GerritCommitter); name != "" {
		env["GIT_AUTHOR_NAME"] = name
		env["GIT_AUTHOR_EMAIL"] = email
		env["GIT_COMMITTER_NAME"] = name
		env["GIT_COMMITTER_EMAIL"] = email
	}

	return &Workspace{
		runner:   runner,
		env:      env,
		wrapper:  wrapper,
		pushRefs: map[string]string{},
	}, nil
}

func (it *Workspace) Close() error {
	if it.wrapper == "" {
		return nil
	}
	err := os.Remove(it.wrapper)
	it.wrapper = ""
	return err
}

func (it *Workspace) git(ctx context.Context, dir string, args ...string) (string, int, error) {
	return it.runner.Run(ctx, dir, it.env, "git", args...)
}

// mustGit runs a git command and converts a non-zero status into an error.
func (it *Workspace) mustGit(ctx context.Context, dir string, args ...string) (string, error) {
	out, status, err := it.git(ctx, dir, args...)
	if err != nil {
		return out, err
	}
	if status != 0 {
		return out, fmt.Errorf("git %s exited %d: %s", strings.Join(args, " "), status, out)
	}
	return out, nil
}

// MakeLocalCopy creates the local repository for a project. Preference
// order: clone from Gerrit (it may already hold history), clone from the
// project's upstream, or initialize an empty repo seeded with a .gitreview.
func (it *Workspace) MakeLocalCopy(ctx context.Context, project entities.Project, settings entities.SiteSettings) error {
	repoPath := settings.CachePath(project.Name)
	if err := os.MkdirAll(filepath.Dir(repoPath), 0o755); err != nil {
		return fmt.Errorf("failed to prepare cache dir for %s: %w", project.Name, err)
	}

	remoteURL := settings.RemoteURL(project.Name)
	out, status, err := it.git(ctx, "", "clone", remoteURL, repoPath)
	if err != nil {
		return err
	}
	if status == 0 {
		// Gerrit already holds the history, nothing to push back.
		it.pushRefs[repoPath] = ""
		if project.Upstream != "" {
			_, err = it.mustGit(ctx, repoPath, "remote", "add", "-f", "upstream", project.Upstream)
		}
		return err
	}

	// A failed clone leaves a partial directory behind.
	log.Debugf("clone of %s from gerrit failed: %s", project.Name, out)
	if err = it.RemoveRepo(repoPath); err != nil {
		return err
	}

	if project.Upstream != "" {
		if _, err = it.mustGit(ctx, "", "clone", project.Upstream, repoPath); err != nil {
			return err
		}
		// Snapshot the upstream heads under refs/copy before the remote is
		// renamed; only the snapshot gets pushed to Gerrit, so upstream
		// branches that show up later wait for an explicit sync.
		if _, err = it.mustGit(ctx, repoPath, "fetch", "origin",
			"+refs/heads/*:refs/copy/heads/*"); err != nil {
			return err
		}
		if _, err = it.mustGit(ctx, repoPath, "remote", "rename", "origin", "upstream"); err != nil {
			return err
		}
		if _, err = it.mustGit(ctx, repoPath, "remote", "add", "origin", remoteURL); err != nil {
			return err
		}
		it.pushRefs[repoPath] = "+refs/copy/heads/*:refs/heads/*"
		return nil
	}

	if err = os.MkdirAll(repoPath, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", repoPath, err)
	}
	if _, err = it.mustGit(ctx, "", "init", repoPath); err != nil {
		return err
	}
	if _, err = it.mustGit(ctx, repoPath, "remote", "add", "origin", remoteURL); err != nil {
		return err
	}
	if err = writeGitreview(repoPath, settings.GerritHost, settings.GerritPort, project.Name); err != nil {
		return err
	}
	if _, err = it.mustGit(ctx, repoPath, "add", ".gitreview"); err != nil {
		return err
	}
	if _, err = it.mustGit(ctx, repoPath, "commit", "-a", "-m", "Added .gitreview"); err != nil {
		return err
	}
	it.pushRefs[repoPath] = "HEAD:refs/heads/master"
	return nil
}

// UpdateLocalCopy refreshes an existing local copy. Projects tracking an
// upstream get the upstream remote (re)pointed at the registry URL before
// all remotes are updated; everything else only refreshes origin.
func (it *Workspace) UpdateLocalCopy(ctx context.Context, project entities.Project, settings entities.SiteSettings) error {
	repoPath := settings.CachePath(project.Name)

	if project.HasOption("track-upstream") {
		remotes, err := it.mustGit(ctx, repoPath, "remote")
		if err != nil {
			return err
		}
		verb := "add"
		if containsLine(remotes, "upstream") {
			verb = "set-url"
		}
		if _, err = it.mustGit(ctx, repoPath, "remote", verb, "upstream", project.Upstream); err != nil {
			return err
		}
		_, err = it.mustGit(ctx, repoPath, "remote", "update", "--prune")
		return err
	}

	_, err := it.mustGit(ctx, repoPath, "remote", "update", "origin", "--prune")
	return err
}

// SyncUpstream checks out a local branch for every upstream branch,
// prefixed when the project declares an upstream-prefix, then pushes all
// branches and tags to Gerrit.
func (it *Workspace) SyncUpstream(ctx context.Context, project entities.Project, settings entities.SiteSettings) error {
	repoPath := settings.CachePath(project.Name)

	if _, err := it.mustGit(ctx, repoPath, "remote", "update", "upstream", "--prune"); err != nil {
		return err
	}

	branches, err := it.mustGit(ctx, repoPath, "branch", "-a")
	if err != nil {
		return err
	}
	for _, line := range strings.Split(branches, "\n") {
		branch := strings.TrimSpace(line)
		if !strings.HasPrefix(branch, "remotes/upstream") || strings.Contains(branch, "->") {
			continue
		}
		local := strings.TrimPrefix(strings.Fields(branch)[0], "remotes/upstream/")
		if project.UpstreamPrefix != "" {
			local = project.UpstreamPrefix + "/" + local
		}
		if _, err = it.mustGit(ctx, repoPath, "checkout", "-B", local, branch); err != nil {
			return err
		}
	}

	if _, err = it.mustGit(ctx, repoPath, "push", "origin", "refs/heads/*:refs/heads/*"); err != nil {
		return err
	}
	_, err = it.mustGit(ctx, repoPath, "push", "origin", "--tags")
	return err
}

func (it *Workspace) Fsck(ctx context.Context, path string) error {
	out, status, err := it.git(ctx, path, "fsck", "--full")
	if err != nil {
		return err
	}
	if status != 0 || strings.Contains(out, "zeroPaddedFilemode") {
		log.Errorf("git fsck of %s failed:\n%s", path, out)
		return repositories.ErrFsckFailed
	}
	return nil
}

// PushToGerrit pushes the refspec the local copy was created with. Repos
// cloned straight from Gerrit push nothing; resumed runs that never called
// MakeLocalCopy fall back to pushing all heads.
func (it *Workspace) PushToGerrit(ctx context.Context, project entities.Project, settings entities.SiteSettings) error {
	repoPath := settings.CachePath(project.Name)
	remoteURL := settings.RemoteURL(project.Name)

	refspec, known := it.pushRefs[repoPath]
	if known && refspec == "" {
		return nil
	}
	if !known {
		refspec = "+refs/heads/*:refs/heads/*"
	}

	if _, err := it.mustGit(ctx, repoPath, "push", remoteURL, refspec); err != nil {
		return err
	}
	_, err := it.mustGit(ctx, repoPath, "push", "--tags", remoteURL)
	return err
}

// FetchMetaConfig polls for refs/meta/config, which Gerrit may not have
// written out yet for a fresh project, then checks it out on a local
// config branch. Run it at most once per repo: the checkout fails when the
// branch already exists with diverged state.
func (it *Workspace) FetchMetaConfig(ctx context.Context, path, remoteURL string) error {
	fetched := entities.Poll(metaConfigFetchAttempts, metaConfigFetchDelay, func() bool {
		_, status, err := it.git(ctx, path, "fetch", remoteURL,
			"+refs/meta/config:refs/remotes/gerrit-meta/config")
		if err != nil || status != 0 {
			log.Debugf("failed to fetch refs/meta/config from %s", remoteURL)
			return false
		}
		return true
	})
	if !fetched {
		return fmt.Errorf("failed to fetch refs/meta/config from %s", remoteURL)
	}

	_, err := it.mustGit(ctx, path, "checkout", "-B", "config", "remotes/gerrit-meta/config")
	return err
}

// CopyACL installs the ACL source as project.config with trailing
// whitespace stripped, reporting whether the working tree changed.
func (it *Workspace) CopyACL(ctx context.Context, aclSource, repoPath string) (bool, error) {
	raw, err := os.ReadFile(aclSource)
	if err != nil {
		return false, fmt.Errorf("failed to read ACL %s: %w", aclSource, err)
	}

	var normalized strings.Builder
	for _, line := range strings.Split(strings.TrimRight(string(raw), "\n"), "\n") {
		normalized.WriteString(strings.TrimRight(line, " \t"))
		normalized.WriteByte('\n')
	}

	dest := filepath.Join(repoPath, "project.config")
	if err = os.WriteFile(dest, []byte(normalized.String()), 0o644); err != nil {
		return false, fmt.Errorf("failed to write %s: %w", dest, err)
	}

	_, status, err := it.git(ctx, repoPath, "diff", "--quiet")
	if err != nil {
		return false, err
	}
	return status != 0, nil
}

func (it *Workspace) ListACLGroups(path string) ([]string, error) {
	raw, err := os.ReadFile(filepath.Join(path, "project.config"))
	if err != nil {
		return nil, err
	}

	var groups []string
	seen := map[string]bool{}
	for _, line := range strings.Split(string(raw), "\n") {
		m := aclGroupPattern.FindStringSubmatch(line)
		if m == nil || seen[m[1]] {
			continue
		}
		seen[m[1]] = true
		groups = append(groups, m[1])
	}
	return groups, nil
}

func (it *Workspace) WriteGroupsFile(repoPath string, uuids map[string]string) error {
	if len(uuids) == 0 {
		return nil
	}

	groups := make([]string, 0, len(uuids))
	for group := range uuids {
		groups = append(groups, group)
	}
	sort.Strings(groups)

	var buf strings.Builder
	for _, group := range groups {
		fmt.Fprintf(&buf, "%s\t%s\n", uuids[group], group)
	}
	return os.WriteFile(filepath.Join(repoPath, "groups"), []byte(buf.String()), 0o644)
}

func (it *Workspace) CommitAndPushACL(ctx context.Context, repoPath, remoteURL, committer string) error {
	if _, err := it.mustGit(ctx, repoPath, "add", "."); err != nil {
		return err
	}
	args := []string{"commit", "-a", "-m", "Update project config."}
	if committer != "" {
		args = append(args, "--author="+committer)
	}
	if _, err := it.mustGit(ctx, repoPath, args...); err != nil {
		return err
	}
	_, err := it.mustGit(ctx, repoPath, "push", remoteURL, "HEAD:refs/meta/config")
	return err
}

// CleanupACLBranch discards whatever the ACL stage left in the working
// tree, returns the repo to master, and drops the config branch, so
// unpushed meta commits cannot leak into the next run.
func (it *Workspace) CleanupACLBranch(ctx context.Context, repoPath string) error {
	it.git(ctx, repoPath, "reset", "--hard")
	it.git(ctx, repoPath, "checkout", "master")
	it.git(ctx, repoPath, "branch", "-D", "config")
	return nil
}

func (it *Workspace) RemoveRepo(path string) error {
	if path == "" || path == "/" {
		return fmt.Errorf("refusing to remove %q", path)
	}
	return os.RemoveAll(path)
}

func writeGitreview(repoPath, host string, port int, project string) error {
	content := fmt.Sprintf("[gerrit]\nhost=%s\nport=%d\nproject=%s.git\n", host, port, project)
	return os.WriteFile(filepath.Join(repoPath, ".gitreview"), []byte(content), 0o644)
}

func containsLine(output, want string) bool {
	for _, line := range strings.Split(output, "\n") {
		if strings.TrimSpace(line) == want {
			return true
		}
	}
	return false
}

func splitCommitter(committer string) (string, string) {
	open := strings.LastIndex(committer, "<")
	end := strings.LastIndex(committer, ">")
	if open < 0 || end < open {
		return strings.TrimSpace(committer), ""
	}
	return strings.TrimSpace(committer[:open]), committer[open+1 : end]
}
