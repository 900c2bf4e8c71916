package gitmirror

import (
	"context"
	"fmt"
	"os"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/rios0rios0/gerritops/internal/domain/repositories"
)

// GitMirrorRepository implements repositories.MirrorRepository with go-git,
// avoiding a shell-out for the read-only history operations.
type GitMirrorRepository struct{}

func NewGitMirrorRepository() repositories.MirrorRepository {
	return &GitMirrorRepository{}
}

// InitBare creates a bare repository at path when none exists yet.
func (it *GitMirrorRepository) InitBare(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, err
	}

	if err := os.MkdirAll(path, 0o755); err != nil {
		return false, err
	}
	if _, err := git.PlainInit(path, true); err != nil {
		return false, fmt.Errorf("failed to init bare repo %s: %w", path, err)
	}
	return true, nil
}

func (it *GitMirrorRepository) CommitMessage(path, hash string) (string, error) {
	commit, err := lookupCommit(path, hash)
	if err != nil {
		return "", err
	}
	return commit.Message, nil
}

// CommitLog returns the messages of the commits the given commit introduced
// relative to its first parent, newest first, merges excluded.
func (it *GitMirrorRepository) CommitLog(ctx context.Context, path, hash string) ([]string, error) {
	commit, err := lookupCommit(path, hash)
	if err != nil {
		return nil, err
	}

	ignore := []plumbing.Hash{}
	if commit.NumParents() > 0 {
		parent, perr := commit.Parent(0)
		if perr != nil {
			return nil, perr
		}
		ignore = append(ignore, parent.Hash)
	}

	var messages []string
	iter := object.NewCommitPreorderIter(commit, nil, ignore)
	err = iter.ForEach(func(c *object.Commit) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if c.NumParents() > 1 {
			return nil
		}
		messages = append(messages, c.Message)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return messages, nil
}

func lookupCommit(path, hash string) (*object.Commit, error) {
	repo, err := git.PlainOpen(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open repo %s: %w", path, err)
	}
	commit, err := repo.CommitObject(plumbing.NewHash(hash))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve commit %s in %s: %w", hash, path, err)
	}
	return commit, nil
}
