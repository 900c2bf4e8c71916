//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"

	"github.com/rios0rios0/gerritops/internal/domain/entities"
	"github.com/rios0rios0/gerritops/internal/domain/repositories"
)

// SpyGitWorkspace implements repositories.GitWorkspace as a configurable
// spy.
type SpyGitWorkspace struct {
	// --- recorded calls ---
	MadeLocalCopies []string
	UpdatedCopies   []string
	SyncedUpstreams []string
	FsckedPaths     []string
	PushedProjects  []string
	FetchedMeta     []string
	CleanedACL      []string
	RemovedRepos    []string
	GroupsWritten   map[string]string
	ACLCommitted    bool
	Closed          bool

	// --- canned results ---
	MakeLocalCopyErr   error
	UpdateLocalCopyErr error
	SyncUpstreamErr    error
	FsckErr            error
	PushErr            error
	FetchMetaErr       error
	ACLChanged         bool
	CopyACLErr         error
	ACLGroups          []string
	ListACLGroupsErr   error
	WriteGroupsErr     error
	CommitACLErr       error
}

var _ repositories.GitWorkspace = (*SpyGitWorkspace)(nil)

func (s *SpyGitWorkspace) MakeLocalCopy(_ context.Context, project entities.Project, _ entities.SiteSettings) error {
	s.MadeLocalCopies = append(s.MadeLocalCopies, project.Name)
	return s.MakeLocalCopyErr
}

func (s *SpyGitWorkspace) UpdateLocalCopy(_ context.Context, project entities.Project, _ entities.SiteSettings) error {
	s.UpdatedCopies = append(s.UpdatedCopies, project.Name)
	return s.UpdateLocalCopyErr
}

func (s *SpyGitWorkspace) SyncUpstream(_ context.Context, project entities.Project, _ entities.SiteSettings) error {
	s.SyncedUpstreams = append(s.SyncedUpstreams, project.Name)
	return s.SyncUpstreamErr
}

func (s *SpyGitWorkspace) Fsck(_ context.Context, path string) error {
	s.FsckedPaths = append(s.FsckedPaths, path)
	return s.FsckErr
}

func (s *SpyGitWorkspace) PushToGerrit(_ context.Context, project entities.Project, _ entities.SiteSettings) error {
	s.PushedProjects = append(s.PushedProjects, project.Name)
	return s.PushErr
}

func (s *SpyGitWorkspace) FetchMetaConfig(_ context.Context, path, _ string) error {
	s.FetchedMeta = append(s.FetchedMeta, path)
	return s.FetchMetaErr
}

func (s *SpyGitWorkspace) CopyACL(_ context.Context, _, _ string) (bool, error) {
	return s.ACLChanged, s.CopyACLErr
}

func (s *SpyGitWorkspace) ListACLGroups(_ string) ([]string, error) {
	return s.ACLGroups, s.ListACLGroupsErr
}

func (s *SpyGitWorkspace) WriteGroupsFile(_ string, uuids map[string]string) error {
	s.GroupsWritten = uuids
	return s.WriteGroupsErr
}

func (s *SpyGitWorkspace) CommitAndPushACL(_ context.Context, _, _, _ string) error {
	s.ACLCommitted = true
	return s.CommitACLErr
}

func (s *SpyGitWorkspace) CleanupACLBranch(_ context.Context, repoPath string) error {
	s.CleanedACL = append(s.CleanedACL, repoPath)
	return nil
}

func (s *SpyGitWorkspace) RemoveRepo(path string) error {
	s.RemovedRepos = append(s.RemovedRepos, path)
	return nil
}

func (s *SpyGitWorkspace) Close() error {
	s.Closed = true
	return nil
}
