// Package manifest loads the deployment manifest: the lesson id space, the
// group/priority table, the per-range name registries, and the loader tuning.
// The manifest is plain YAML so curriculum editors can change grouping and
// naming without touching code.
package manifest

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"lessonforge/internal/catalog"
	"lessonforge/internal/loader"
	"lessonforge/internal/registry"
)

// Manifest mirrors the YAML deployment manifest.
type Manifest struct {
	Version int           `yaml:"version"`
	Lessons LessonsConfig `yaml:"lessons"`
	Loader  LoaderConfig  `yaml:"loader"`
	Groups  []GroupEntry  `yaml:"groups"`
	Tables  []TableEntry  `yaml:"registry"`
}

// LessonsConfig bounds the id space and names the content directory.
type LessonsConfig struct {
	MaxID      int    `yaml:"max_id"`
	ContentDir string `yaml:"content_dir"`
}

// LoaderConfig carries the loader tuning. Durations are strings
// ("10m", "100ms") parsed with time.ParseDuration.
type LoaderConfig struct {
	TTL            string `yaml:"ttl"`
	SweepInterval  string `yaml:"sweep_interval"`
	BatchSize      int    `yaml:"batch_size"`
	BatchPause     string `yaml:"batch_pause"`
	MediumDelay    string `yaml:"medium_delay"`
	LowDelay       string `yaml:"low_delay"`
	DedupeInFlight bool   `yaml:"dedupe_in_flight"`
}

// GroupEntry defines one named id range with a preload priority.
type GroupEntry struct {
	Name     string `yaml:"name"`
	Range    []int  `yaml:"range"` // [lo, hi] inclusive
	Priority string `yaml:"priority"`
}

// TableEntry defines one registry name table covering an id sub-range.
type TableEntry struct {
	Range []int          `yaml:"range"` // [lo, hi] inclusive
	Names map[int]string `yaml:"names"`
}

// Load reads and parses the manifest at path.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest %s: %w", path, err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", path, err)
	}
	if err := m.check(); err != nil {
		return nil, fmt.Errorf("invalid manifest %s: %w", path, err)
	}
	return &m, nil
}

// check enforces the structural rules a manifest must satisfy to be usable.
// Soft conventions (group overlap) are reported by Validate instead.
func (m *Manifest) check() error {
	if m.Lessons.MaxID <= 0 {
		return fmt.Errorf("lessons.max_id must be positive, got %d", m.Lessons.MaxID)
	}
	seen := make(map[string]bool)
	for i, g := range m.Groups {
		if g.Name == "" {
			return fmt.Errorf("groups[%d]: name is required", i)
		}
		if seen[g.Name] {
			return fmt.Errorf("groups[%d]: duplicate group name %q", i, g.Name)
		}
		seen[g.Name] = true
		if len(g.Range) != 2 {
			return fmt.Errorf("group %q: range must be [lo, hi]", g.Name)
		}
		if g.Range[0] > g.Range[1] {
			return fmt.Errorf("group %q: range lo %d exceeds hi %d", g.Name, g.Range[0], g.Range[1])
		}
		if _, err := catalog.ParsePriority(g.Priority); err != nil {
			return fmt.Errorf("group %q: %w", g.Name, err)
		}
	}
	for i, t := range m.Tables {
		if len(t.Range) != 2 {
			return fmt.Errorf("registry[%d]: range must be [lo, hi]", i)
		}
		if t.Range[0] > t.Range[1] {
			return fmt.Errorf("registry[%d]: range lo %d exceeds hi %d", i, t.Range[0], t.Range[1])
		}
	}
	return nil
}

// Validate returns soft warnings: group ranges outside the id bounds, groups
// that overlap (allowed by convention but usually a mistake), and named ids
// outside their table's range.
func (m *Manifest) Validate() []string {
	var warnings []string
	for _, g := range m.Groups {
		if g.Range[0] < 1 || g.Range[1] > m.Lessons.MaxID {
			warnings = append(warnings, fmt.Sprintf(
				"group %q range [%d, %d] exceeds lesson bounds [1, %d]",
				g.Name, g.Range[0], g.Range[1], m.Lessons.MaxID))
		}
	}
	for i := 0; i < len(m.Groups); i++ {
		for j := i + 1; j < len(m.Groups); j++ {
			a, b := m.Groups[i], m.Groups[j]
			if a.Range[0] <= b.Range[1] && b.Range[0] <= a.Range[1] {
				warnings = append(warnings, fmt.Sprintf(
					"groups %q and %q overlap; first match wins", a.Name, b.Name))
			}
		}
	}
	for i, t := range m.Tables {
		for id := range t.Names {
			if id < t.Range[0] || id > t.Range[1] {
				warnings = append(warnings, fmt.Sprintf(
					"registry[%d]: lesson %d named outside table range [%d, %d]",
					i, id, t.Range[0], t.Range[1]))
			}
		}
	}
	return warnings
}

// Catalog builds the catalog from the manifest's group table. Ids no group
// claims fall back to a low-priority "extras" group spanning the whole space.
func (m *Manifest) Catalog() *catalog.Catalog {
	groups := make([]catalog.Group, 0, len(m.Groups))
	for _, g := range m.Groups {
		prio, _ := catalog.ParsePriority(g.Priority) // checked at Load time
		groups = append(groups, catalog.Group{
			Name:     g.Name,
			Lo:       g.Range[0],
			Hi:       g.Range[1],
			Priority: prio,
		})
	}
	fallback := catalog.Group{
		Name:     "extras",
		Lo:       1,
		Hi:       m.Lessons.MaxID,
		Priority: catalog.PriorityLow,
	}
	return catalog.New(groups, fallback)
}

// Registry builds the resolver tables from the manifest.
func (m *Manifest) Registry() *registry.Registry {
	tables := make([]registry.Table, 0, len(m.Tables))
	for _, t := range m.Tables {
		names := make(map[int]string, len(t.Names))
		for id, name := range t.Names {
			names[id] = name
		}
		tables = append(tables, registry.Table{Lo: t.Range[0], Hi: t.Range[1], Names: names})
	}
	return registry.New(tables...)
}

// ServiceConfig merges the manifest's loader section over the defaults.
func (m *Manifest) ServiceConfig() (loader.Config, error) {
	cfg := loader.DefaultConfig()
	cfg.MaxID = m.Lessons.MaxID
	cfg.DedupeInFlight = m.Loader.DedupeInFlight
	if m.Loader.BatchSize > 0 {
		cfg.BatchSize = m.Loader.BatchSize
	}

	for _, d := range []struct {
		raw  string
		dst  *time.Duration
		name string
	}{
		{m.Loader.TTL, &cfg.TTL, "ttl"},
		{m.Loader.SweepInterval, &cfg.SweepInterval, "sweep_interval"},
		{m.Loader.BatchPause, &cfg.BatchPause, "batch_pause"},
		{m.Loader.MediumDelay, &cfg.MediumDelay, "medium_delay"},
		{m.Loader.LowDelay, &cfg.LowDelay, "low_delay"},
	} {
		if d.raw == "" {
			continue
		}
		parsed, err := time.ParseDuration(d.raw)
		if err != nil {
			return loader.Config{}, fmt.Errorf("loader.%s: invalid duration %q: %w", d.name, d.raw, err)
		}
		*d.dst = parsed
	}
	return cfg, nil
}
