package controllers

import (
	"github.com/spf13/cobra"

	"github.com/rios0rios0/gerritops/internal/domain/entities"
)

// addHookFlags declares the flag set Gerrit passes to every hook script.
// Hooks receive the full set regardless of type; unused ones stay empty.
func addHookFlags(cmd *cobra.Command) {
	cmd.Flags().String("change", "", "Change-Id of the change")
	cmd.Flags().String("change-url", "", "URL of the change")
	cmd.Flags().String("project", "", "Project the change belongs to")
	cmd.Flags().String("branch", "", "Branch the change targets")
	cmd.Flags().String("commit", "", "SHA of the commit")
	cmd.Flags().String("topic", "", "Topic of the change")
	cmd.Flags().String("change-owner", "", "Owner of the change (Name (email))")
	cmd.Flags().String("uploader", "", "Uploader of the patch set (Name (email))")
	cmd.Flags().String("patchset", "", "Patch set number")
	cmd.Flags().String("is-draft", "", "Whether the patch set is a draft")
	cmd.Flags().String("kind", "", "Kind of patch set upload")
	cmd.Flags().String("abandoner", "", "Who abandoned the change (Name (email))")
	cmd.Flags().String("reason", "", "Abandon reason")
	cmd.Flags().String("submitter", "", "Who submitted the change (Name (email))")
	cmd.Flags().String("newrev", "", "SHA the branch moved to")
}

// hookEventFromFlags builds the event record for one hook firing.
func hookEventFromFlags(hook string, cmd *cobra.Command) entities.HookEvent {
	get := func(name string) string {
		value, _ := cmd.Flags().GetString(name)
		return value
	}
	return entities.HookEvent{
		Hook:        hook,
		Change:      get("change"),
		ChangeURL:   get("change-url"),
		Project:     get("project"),
		Branch:      get("branch"),
		Commit:      get("commit"),
		Topic:       get("topic"),
		ChangeOwner: get("change-owner"),
		Uploader:    get("uploader"),
		Patchset:    get("patchset"),
		IsDraft:     get("is-draft"),
		Kind:        get("kind"),
		Abandoner:   get("abandoner"),
		Reason:      get("reason"),
		Submitter:   get("submitter"),
		NewRev:      get("newrev"),
	}
}
