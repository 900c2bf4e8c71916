package entities

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// ProjectState is the explicit per-project synchronization state persisted
// in the progress cache. Earlier revisions tracked the same information as
// loose boolean cache flags; the ordered enum makes resumability explicit.
type ProjectState string

const (
	StateUnregistered ProjectState = "unregistered"
	StateCreated      ProjectState = "created"
	StatePushed       ProjectState = "pushed"
	StateACLSynced    ProjectState = "acl-synced"
	StateMirrored     ProjectState = "mirrored"
	StateDone         ProjectState = "done"
)

var stateRank = map[ProjectState]int{
	StateUnregistered: 0,
	StateCreated:      1,
	StatePushed:       2,
	StateACLSynced:    3,
	StateMirrored:     4,
	StateDone:         5,
}

// AtLeast reports whether the state has reached the given stage.
func (s ProjectState) AtLeast(other ProjectState) bool {
	return stateRank[s] >= stateRank[other]
}

// ProjectProgress is the cache record for one project. ACLSHA and the
// GitHub fields gate re-entry independently of the linear state because
// they depend on external inputs (ACL file content, desired feature flags).
type ProjectProgress struct {
	State           ProjectState `json:"state"`
	ACLSHA          string       `json:"acl-sha,omitempty"`
	CreatedInGitHub bool         `json:"created-in-github,omitempty"`
	GerritInTeam    bool         `json:"gerrit-in-team,omitempty"`
	HasIssues       *bool        `json:"has-issues,omitempty"`
	HasDownloads    *bool        `json:"has-downloads,omitempty"`
	HasWiki         *bool        `json:"has-wiki,omitempty"`
}

// Advance moves the state forward; it never regresses.
func (p *ProjectProgress) Advance(to ProjectState) {
	if !p.State.AtLeast(to) {
		p.State = to
	}
}

// ProgressCache is the persisted project-id -> progress mapping. It is read
// once at the start of a run and written once at the end; concurrent runs
// are not supported (external serialization is assumed).
type ProgressCache struct {
	path    string
	entries map[string]*ProjectProgress
}

// LoadProgressCache reads the cache file, returning an empty cache when the
// file does not exist yet.
func LoadProgressCache(path string) (*ProgressCache, error) {
	cache := &ProgressCache{path: path, entries: map[string]*ProjectProgress{}}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cache, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read progress cache %q: %w", path, err)
	}
	if err := json.Unmarshal(data, &cache.entries); err != nil {
		return nil, fmt.Errorf("failed to parse progress cache %q: %w", path, err)
	}
	for _, e := range cache.entries {
		if e.State == "" {
			e.State = StateUnregistered
		}
	}
	return cache, nil
}

// Entry returns the progress record for a project, creating it on first
// access.
func (c *ProgressCache) Entry(project string) *ProjectProgress {
	if e, ok := c.entries[project]; ok {
		return e
	}
	e := &ProjectProgress{State: StateUnregistered}
	c.entries[project] = e
	return e
}

// Save writes the cache back to disk, creating parent directories as
// needed. Keys serialize in sorted order so successive runs diff cleanly.
func (c *ProgressCache) Save() error {
	data, err := json.MarshalIndent(c.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode progress cache: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}
	if err := os.WriteFile(c.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write progress cache %q: %w", c.path, err)
	}
	return nil
}
