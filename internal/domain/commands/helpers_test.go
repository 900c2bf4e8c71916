//go:build unit

package commands_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rios0rios0/gerritops/internal/domain/entities"
	"github.com/stretchr/testify/require"
)

// setRegistryEnv writes a throwaway projects.yaml and points the process
// environment at it. Uses t.Setenv, so callers must not run in parallel.
func setRegistryEnv(t *testing.T, content string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "projects.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	t.Setenv(entities.EnvProjectsYAML, path)
	t.Setenv(entities.EnvProjectsINI, filepath.Join(t.TempDir(), "missing.ini"))
}
