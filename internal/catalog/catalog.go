// Package catalog defines the static partitioning of the lesson id space into
// named groups with preload priorities. The table is fixed at startup; lookups
// are total over all integers, falling back to a designated default group.
package catalog

import "fmt"

// Priority controls how eagerly a group is preloaded.
type Priority int

const (
	// PriorityHigh - preload starts immediately and the caller waits for it
	PriorityHigh Priority = iota
	// PriorityMedium - preload is deferred by a short delay
	PriorityMedium
	// PriorityLow - preload is deferred by a longer delay
	PriorityLow
)

func (p Priority) String() string {
	switch p {
	case PriorityHigh:
		return "high"
	case PriorityMedium:
		return "medium"
	case PriorityLow:
		return "low"
	default:
		return fmt.Sprintf("unknown(%d)", int(p))
	}
}

// ParsePriority converts a manifest string to a Priority.
func ParsePriority(s string) (Priority, error) {
	switch s {
	case "high":
		return PriorityHigh, nil
	case "medium":
		return PriorityMedium, nil
	case "low":
		return PriorityLow, nil
	default:
		return PriorityLow, fmt.Errorf("unknown priority %q (want high, medium, or low)", s)
	}
}

// Group is a named inclusive range of lesson ids with a preload priority.
type Group struct {
	Name     string
	Lo, Hi   int
	Priority Priority
}

// Contains reports whether id falls inside the group's range.
func (g Group) Contains(id int) bool {
	return id >= g.Lo && id <= g.Hi
}

// Size returns the number of ids in the group's range.
func (g Group) Size() int {
	if g.Hi < g.Lo {
		return 0
	}
	return g.Hi - g.Lo + 1
}

// Catalog maps lesson ids to groups by scanning a static range table in order.
// Ranges are non-overlapping by convention; the first match wins.
type Catalog struct {
	groups   []Group
	fallback Group
}

// New creates a catalog from a group table and a default group returned for
// ids no range claims.
func New(groups []Group, fallback Group) *Catalog {
	gs := make([]Group, len(groups))
	copy(gs, groups)
	return &Catalog{groups: gs, fallback: fallback}
}

// GroupOf returns the first group whose range contains id, or the default
// group. Total over all integers, including ids outside the nominal bounds.
func (c *Catalog) GroupOf(id int) Group {
	for _, g := range c.groups {
		if g.Contains(id) {
			return g
		}
	}
	return c.fallback
}

// Lookup finds a group by name.
func (c *Catalog) Lookup(name string) (Group, bool) {
	for _, g := range c.groups {
		if g.Name == name {
			return g, true
		}
	}
	if name == c.fallback.Name {
		return c.fallback, true
	}
	return Group{}, false
}

// Groups returns the group table in declaration order, without the fallback.
func (c *Catalog) Groups() []Group {
	gs := make([]Group, len(c.groups))
	copy(gs, c.groups)
	return gs
}

// Fallback returns the default group.
func (c *Catalog) Fallback() Group {
	return c.fallback
}
