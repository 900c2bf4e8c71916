package entities

import "strings"

// Hook names as delivered by Gerrit.
const (
	HookPatchsetCreated = "patchset-created"
	HookChangeMerged    = "change-merged"
	HookChangeAbandoned = "change-abandoned"
)

// HookEvent is the ephemeral record of one Gerrit hook firing, populated
// from the hook's command-line parameters. Consumed once per process and
// never persisted.
type HookEvent struct {
	Hook        string
	Change      string
	ChangeURL   string
	Project     string
	Branch      string
	Commit      string
	Topic       string
	ChangeOwner string

	// change-abandoned
	Abandoner string
	Reason    string

	// change-merged
	Submitter string
	NewRev    string

	// patchset-created
	Uploader string
	Patchset string
	IsDraft  string
	Kind     string
}

// UploaderEmail extracts the e-mail address from the "Full Name
// (email@host)" form Gerrit passes for uploader/submitter fields. When the
// field carries no parenthesized address the raw value is returned.
func (e HookEvent) UploaderEmail() string {
	return emailFromIdentity(e.Uploader)
}

// OwnerEmail extracts the e-mail address of the change owner.
func (e HookEvent) OwnerEmail() string {
	return emailFromIdentity(e.ChangeOwner)
}

func emailFromIdentity(identity string) string {
	open := strings.LastIndex(identity, "(")
	if open < 0 || !strings.HasSuffix(identity, ")") {
		return identity
	}
	return identity[open+1 : len(identity)-1]
}

// SeriesBranch returns the series component of a branch name such as
// stable/queens ("queens").
func (e HookEvent) SeriesBranch() string {
	idx := strings.LastIndex(e.Branch, "/")
	if idx < 0 {
		return e.Branch
	}
	return e.Branch[idx+1:]
}
