package entities

// Bug task statuses used by the bug updater.
const (
	StatusNew          = "New"
	StatusInProgress   = "In Progress"
	StatusFixCommitted = "Fix Committed"
	StatusFixReleased  = "Fix Released"
)

// BugTask is one task of a bug on the bug tracker, scoped to a target
// project (possibly a series-specific target such as "nova/queens").
type BugTask struct {
	BugNumber  string
	TargetName string
	Status     string
	SelfLink   string
	WebLink    string
}

// CreatedBug is the result of filing a new bug.
type CreatedBug struct {
	ID      string
	WebLink string
}
