package repositories

import "context"

// MirrorRepository covers the pure-git operations that do not shell out:
// initializing bare local mirrors and reading commit history.
type MirrorRepository interface {
	// InitBare creates a bare repository at path if none exists. It reports
	// whether the repository was created by this call.
	InitBare(path string) (bool, error)

	// CommitMessage returns the full message of a commit.
	CommitMessage(path, hash string) (string, error)

	// CommitLog returns the messages of the commits introduced by the given
	// commit relative to its first parent, merges excluded.
	CommitLog(ctx context.Context, path, hash string) ([]string, error)
}
