//go:build unit

package commands_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rios0rios0/gerritops/internal/domain/commands"
	"github.com/rios0rios0/gerritops/internal/domain/entities"
	"github.com/rios0rios0/gerritops/internal/domain/repositories"
	"github.com/rios0rios0/gerritops/test/infrastructure/repositorydoubles"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newWelcomeMessageCommand(
	db *repositorydoubles.SpyGerritDBRepository,
	gerrit *repositorydoubles.SpyGerritRepository,
) *commands.WelcomeMessageCommand {
	return commands.NewWelcomeMessageCommand(
		func(_ string) (repositories.GerritDBRepository, error) {
			return db, nil
		},
		func(_ repositories.GerritConfig) (repositories.GerritRepository, error) {
			return gerrit, nil
		})
}

func firstUploadEvent() entities.HookEvent {
	return entities.HookEvent{
		Hook:     entities.HookPatchsetCreated,
		Change:   "I111",
		Project:  "openstack/nova",
		Commit:   "deadbeef",
		Uploader: "Jane Doe (jane@example.org)",
		Patchset: "1",
	}
}

func TestWelcomeMessageCommand_Execute(t *testing.T) {
	t.Run("should greet an uploader with a single patch set on record", func(t *testing.T) {
		// given
		setRegistryEnv(t,
			"gerrit-host: review.example.org\ngerrit-db-dsn: user:pass@/reviewdb\n"+
				"---\n- project: openstack/nova\n")
		db := &repositorydoubles.SpyGerritDBRepository{
			PatchSetCounts: map[string]int{"jane@example.org": 1},
		}
		gerrit := &repositorydoubles.SpyGerritRepository{}

		// when
		err := newWelcomeMessageCommand(db, gerrit).Execute(context.Background(),
			firstUploadEvent(), commands.WelcomeMessageOptions{})

		// then
		require.NoError(t, err)
		require.Len(t, gerrit.ReviewCalls, 1)
		assert.Equal(t, "deadbeef", gerrit.ReviewCalls[0].Target)
		assert.False(t, gerrit.ReviewCalls[0].Abandon)
		assert.Contains(t, gerrit.ReviewCalls[0].Message, "Thank you for your first contribution!")
		assert.True(t, db.Closed)
	})

	t.Run("should stay silent for returning contributors", func(t *testing.T) {
		// given
		setRegistryEnv(t,
			"gerrit-host: review.example.org\ngerrit-db-dsn: user:pass@/reviewdb\n"+
				"---\n- project: openstack/nova\n")
		db := &repositorydoubles.SpyGerritDBRepository{
			PatchSetCounts: map[string]int{"jane@example.org": 7},
		}
		gerrit := &repositorydoubles.SpyGerritRepository{}

		// when
		err := newWelcomeMessageCommand(db, gerrit).Execute(context.Background(),
			firstUploadEvent(), commands.WelcomeMessageOptions{})

		// then
		require.NoError(t, err)
		assert.Empty(t, gerrit.ReviewCalls)
	})

	t.Run("should ignore later patch sets of a change", func(t *testing.T) {
		// given
		db := &repositorydoubles.SpyGerritDBRepository{}
		gerrit := &repositorydoubles.SpyGerritRepository{}
		event := firstUploadEvent()
		event.Patchset = "2"

		// when
		err := newWelcomeMessageCommand(db, gerrit).Execute(context.Background(),
			event, commands.WelcomeMessageOptions{})

		// then
		require.NoError(t, err)
		assert.Empty(t, gerrit.ReviewCalls)
	})

	t.Run("should do nothing without a gerrit database", func(t *testing.T) {
		// given
		setRegistryEnv(t, "gerrit-host: review.example.org\n---\n- project: openstack/nova\n")
		db := &repositorydoubles.SpyGerritDBRepository{}
		gerrit := &repositorydoubles.SpyGerritRepository{}

		// when
		err := newWelcomeMessageCommand(db, gerrit).Execute(context.Background(),
			firstUploadEvent(), commands.WelcomeMessageOptions{})

		// then
		require.NoError(t, err)
		assert.Empty(t, gerrit.ReviewCalls)
	})

	t.Run("should prefer the configured welcome message file", func(t *testing.T) {
		// given
		messagePath := filepath.Join(t.TempDir(), "welcome.txt")
		require.NoError(t, os.WriteFile(messagePath, []byte("Custom greeting.\n"), 0o644))
		setRegistryEnv(t,
			"gerrit-host: review.example.org\ngerrit-db-dsn: user:pass@/reviewdb\n"+
				"welcome-message-file: "+messagePath+"\n"+
				"---\n- project: openstack/nova\n")
		db := &repositorydoubles.SpyGerritDBRepository{
			PatchSetCounts: map[string]int{"jane@example.org": 1},
		}
		gerrit := &repositorydoubles.SpyGerritRepository{}

		// when
		err := newWelcomeMessageCommand(db, gerrit).Execute(context.Background(),
			firstUploadEvent(), commands.WelcomeMessageOptions{})

		// then
		require.NoError(t, err)
		require.Len(t, gerrit.ReviewCalls, 1)
		assert.Equal(t, "Custom greeting.\n", gerrit.ReviewCalls[0].Message)
	})

	t.Run("should prefer the message file given on the command line", func(t *testing.T) {
		// given
		messageDir := t.TempDir()
		configuredPath := filepath.Join(messageDir, "configured.txt")
		require.NoError(t, os.WriteFile(configuredPath, []byte("Configured greeting.\n"), 0o644))
		flagPath := filepath.Join(messageDir, "flag.txt")
		require.NoError(t, os.WriteFile(flagPath, []byte("Flag greeting.\n"), 0o644))
		setRegistryEnv(t,
			"gerrit-host: review.example.org\ngerrit-db-dsn: user:pass@/reviewdb\n"+
				"welcome-message-file: "+configuredPath+"\n"+
				"---\n- project: openstack/nova\n")
		db := &repositorydoubles.SpyGerritDBRepository{
			PatchSetCounts: map[string]int{"jane@example.org": 1},
		}
		gerrit := &repositorydoubles.SpyGerritRepository{}

		// when
		err := newWelcomeMessageCommand(db, gerrit).Execute(context.Background(),
			firstUploadEvent(), commands.WelcomeMessageOptions{MessageFile: flagPath})

		// then
		require.NoError(t, err)
		require.Len(t, gerrit.ReviewCalls, 1)
		assert.Equal(t, "Flag greeting.\n", gerrit.ReviewCalls[0].Message)
	})
}
