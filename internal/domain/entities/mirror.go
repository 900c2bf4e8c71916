package entities

// MirrorSpec is the desired GitHub state for one project's mirror.
type MirrorSpec struct {
	Project      string // slash-qualified name; the org half selects the GitHub organization
	Description  string
	Homepage     string
	HasIssues    bool
	HasDownloads bool
	HasWiki      bool
}

// MirrorResult reports what the GitHub reconciliation actually did.
type MirrorResult struct {
	// Skipped is set when the project's organization is not under our
	// management; such projects are silently left alone.
	Skipped      bool
	Created      bool
	GerritInTeam bool
}
