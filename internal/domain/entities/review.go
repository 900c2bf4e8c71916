package entities

// Approval is one review vote on a patch set.
type Approval struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// PatchSet is the current patch set of a queried change.
type PatchSet struct {
	Number    int        `json:"number"`
	Revision  string     `json:"revision"`
	Ref       string     `json:"ref"`
	Approvals []Approval `json:"approvals"`
}

// Review is one row of a `gerrit query --format JSON` response stream.
// Gerrit terminates the stream with a stats row carrying rowCount, which
// the parser drops.
type Review struct {
	Project         string   `json:"project"`
	Branch          string   `json:"branch"`
	ID              string   `json:"id"`
	Subject         string   `json:"subject"`
	URL             string   `json:"url"`
	CurrentPatchSet PatchSet `json:"currentPatchSet"`
}

// HasNegativeVote reports whether the current patch set carries a -1 or -2
// approval value.
func (r Review) HasNegativeVote() bool {
	for _, a := range r.CurrentPatchSet.Approvals {
		if a.Value == "-1" || a.Value == "-2" {
			return true
		}
	}
	return false
}
