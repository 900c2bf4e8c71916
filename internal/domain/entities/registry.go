package entities

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	logger "github.com/sirupsen/logrus"
	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"
)

// ErrProjectNotFound is returned when a project id is not in the registry.
var ErrProjectNotFound = errors.New("project not found in registry")

// CgitAlias points a project at an additional cgit site under another path.
type CgitAlias struct {
	Site string `yaml:"site"`
	Path string `yaml:"path"`
}

// Project is one entry of the projects.yaml registry. Records are loaded
// once at process start and never mutated afterwards.
type Project struct {
	Name           string     `yaml:"project"`
	Description    string     `yaml:"description"`
	Homepage       string     `yaml:"homepage"`
	Upstream       string     `yaml:"upstream"`
	UpstreamPrefix string     `yaml:"upstream-prefix"`
	ACLConfig      string     `yaml:"acl-config"`
	Options        []string   `yaml:"options"`
	Groups         []string   `yaml:"groups"`
	Group          string     `yaml:"group"`
	DocImpactGroup string     `yaml:"docimpact-group"`
	CgitAlias      *CgitAlias `yaml:"cgit-alias"`
}

// HasOption reports whether a free-form option flag is set on the record.
func (p Project) HasOption(option string) bool {
	for _, o := range p.Options {
		if o == option {
			return true
		}
	}
	return false
}

// ShortName returns the repository part of a slash-qualified project name.
func (p Project) ShortName() string {
	return ShortProjectName(p.Name)
}

// Org returns the organization part of a slash-qualified project name, or
// an empty string when the name has no organization.
func (p Project) Org() string {
	if idx := strings.Index(p.Name, "/"); idx >= 0 {
		return p.Name[:idx]
	}
	return ""
}

// BugGroups returns the bug-tracker target names associated with the
// project: the explicit groups list, else the single group, else the
// project short name.
func (p Project) BugGroups() []string {
	if len(p.Groups) > 0 {
		return p.Groups
	}
	if p.Group != "" {
		return []string{p.Group}
	}
	return []string{p.ShortName()}
}

// Retired reports whether the project has been retired: either its ACL file
// lives under retired.config, or its organization carries the -attic suffix.
func (p Project) Retired() bool {
	if strings.HasSuffix(p.ACLConfig, "/retired.config") {
		return true
	}
	if org := p.Org(); strings.HasSuffix(org, "-attic") {
		return true
	}
	return false
}

// ShortProjectName returns the part after the last slash.
func ShortProjectName(fullName string) string {
	parts := strings.Split(fullName, "/")
	return parts[len(parts)-1]
}

// Defaults is the flat key/value overlay supplying fallback values for
// options absent on a project record. Values come from the [projects]
// section of an INI file when one exists, else from the registry's first
// YAML document.
type Defaults struct {
	section *ini.Section
	values  map[string]any
}

// GetString returns the default for key, or fallback when unset.
func (d Defaults) GetString(key, fallback string) string {
	if d.section != nil && d.section.HasKey(key) {
		return d.section.Key(key).String()
	}
	if v, ok := d.values[key]; ok {
		return fmt.Sprintf("%v", v)
	}
	return fallback
}

// GetBool returns the boolean default for key, coercing the stored value.
func (d Defaults) GetBool(key string, fallback bool) bool {
	if d.section != nil && d.section.HasKey(key) {
		if v, err := d.section.Key(key).Bool(); err == nil {
			return v
		}
		return fallback
	}
	if v, ok := d.values[key]; ok {
		switch t := v.(type) {
		case bool:
			return t
		case string:
			if parsed, err := strconv.ParseBool(strings.ToLower(t)); err == nil {
				return parsed
			}
		}
	}
	return fallback
}

// GetInt returns the integer default for key, or fallback when unset or
// not a number.
func (d Defaults) GetInt(key string, fallback int) int {
	raw := d.GetString(key, "")
	if raw == "" {
		return fallback
	}
	if v, err := strconv.Atoi(raw); err == nil {
		return v
	}
	return fallback
}

// Registry is the parsed project registry: an ordered collection of project
// records plus the defaults overlay.
type Registry struct {
	projects []Project
	byName   map[string]Project
	defaults Defaults
}

// NewRegistry loads the registry from yamlPath. The file may be a single
// document whose root is the project list, or a two-document stream where
// the first document carries defaults. When iniPath exists it takes
// precedence as the defaults source.
func NewRegistry(yamlPath, iniPath string) (*Registry, error) {
	data, err := os.ReadFile(yamlPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read registry %q: %w", yamlPath, err)
	}

	docs, err := decodeDocuments(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse registry %q: %w", yamlPath, err)
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("registry %q contains no documents", yamlPath)
	}

	reg := &Registry{byName: map[string]Project{}}

	// Single-document registries put the list first; two-document streams
	// lead with a defaults map.
	projectDoc := docs[0]
	if len(docs) > 1 {
		projectDoc = docs[1]
		if err := unmarshalDefaults(docs[0], &reg.defaults); err != nil {
			return nil, err
		}
	}

	if err := projectDoc.Decode(&reg.projects); err != nil {
		return nil, fmt.Errorf("failed to decode project list: %w", err)
	}

	for _, p := range reg.projects {
		if _, dup := reg.byName[p.Name]; dup {
			return nil, fmt.Errorf("duplicate project %q in registry", p.Name)
		}
		reg.byName[p.Name] = p
	}

	if iniPath != "" {
		if _, statErr := os.Stat(iniPath); statErr == nil {
			cfg, loadErr := ini.Load(iniPath)
			if loadErr != nil {
				return nil, fmt.Errorf("failed to load defaults %q: %w", iniPath, loadErr)
			}
			reg.defaults.section = cfg.Section("projects")
			logger.Debugf("Loaded defaults from %s", iniPath)
		}
	}

	return reg, nil
}

func decodeDocuments(data []byte) ([]*yaml.Node, error) {
	var docs []*yaml.Node
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	for {
		var node yaml.Node
		err := decoder.Decode(&node)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		docs = append(docs, &node)
	}
	return docs, nil
}

func unmarshalDefaults(doc *yaml.Node, out *Defaults) error {
	// The defaults document is either a bare map or a one-element list
	// containing the map (the original registry used both shapes).
	var asMap map[string]any
	if err := doc.Decode(&asMap); err == nil {
		out.values = asMap
		return nil
	}
	var asList []map[string]any
	if err := doc.Decode(&asList); err != nil {
		return fmt.Errorf("failed to decode defaults document: %w", err)
	}
	if len(asList) > 0 {
		out.values = asList[0]
	}
	return nil
}

// Defaults returns the registry's defaults overlay.
func (r *Registry) Defaults() Defaults { return r.defaults }

// Lookup returns the record for a project id, retired or not.
func (r *Registry) Lookup(name string) (Project, error) {
	p, ok := r.byName[name]
	if !ok {
		return Project{}, fmt.Errorf("%w: %s", ErrProjectNotFound, name)
	}
	return p, nil
}

// Active returns all project records excluding retired entries, in file
// order.
func (r *Registry) Active() []Project {
	var out []Project
	for _, p := range r.projects {
		if p.Retired() {
			continue
		}
		out = append(out, p)
	}
	return out
}

// HasGitHub reports whether the project should be mirrored to GitHub.
// When the global default disables GitHub, the per-project option decides;
// otherwise GitHub is on.
func (r *Registry) HasGitHub(name string) bool {
	if !r.defaults.GetBool("has-github", true) {
		p, err := r.Lookup(name)
		if err != nil {
			return false
		}
		return p.HasOption("has-github")
	}
	return true
}

// NoLaunchpadBugs reports whether bug-tracker updates are disabled for the
// project.
func (r *Registry) NoLaunchpadBugs(name string) bool {
	p, err := r.Lookup(name)
	if err != nil {
		return false
	}
	return p.HasOption("no-launchpad-bugs")
}

// DocImpactTarget returns the bug-tracker project that receives doc-impact
// bugs, or "unknown" when none is configured.
func (r *Registry) DocImpactTarget(name string) string {
	p, err := r.Lookup(name)
	if err != nil || p.DocImpactGroup == "" {
		return "unknown"
	}
	return p.DocImpactGroup
}
