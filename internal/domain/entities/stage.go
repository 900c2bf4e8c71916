package entities

import "fmt"

// Stage identifies one step of the per-project synchronization workflow.
type Stage string

const (
	StageCreateProject Stage = "create-project"
	StageLocalCopy     Stage = "local-copy"
	StageFsck          Stage = "fsck"
	StagePush          Stage = "push"
	StageLocalMirror   Stage = "local-mirror"
	StageMirror        Stage = "mirror"
	StageACL           Stage = "acl"
	StageGitHub        Stage = "github"
	StageUpstream      Stage = "upstream"
)

// StageError is a typed per-stage failure. The project loop aggregates
// these instead of swallowing exceptions, so partial-failure reporting is
// structured.
type StageError struct {
	Project string
	Stage   Stage
	Err     error
}

func (e StageError) Error() string {
	return fmt.Sprintf("%s: stage %s: %v", e.Project, e.Stage, e.Err)
}

func (e StageError) Unwrap() error { return e.Err }

// RunSummary aggregates the outcome of one batch run over the registry.
type RunSummary struct {
	Processed int
	Skipped   int
	Errors    []StageError
}

// Record appends a stage failure for a project.
func (s *RunSummary) Record(project string, stage Stage, err error) {
	s.Errors = append(s.Errors, StageError{Project: project, Stage: stage, Err: err})
}

// Failed returns the number of projects that recorded at least one error.
func (s *RunSummary) Failed() int {
	seen := map[string]bool{}
	for _, e := range s.Errors {
		seen[e.Project] = true
	}
	return len(seen)
}
