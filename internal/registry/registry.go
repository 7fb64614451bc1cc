// Package registry resolves a lesson id to the descriptor the loader needs.
// The id space is covered by two or more name tables with different naming
// conventions; ids that fall into a gap resolve to ErrNotFound. The registry
// never loads content itself.
package registry

import "errors"

// ErrNotFound is returned when no descriptor exists for an id, either because
// the id sits in a gap of its table or outside every table's range.
var ErrNotFound = errors.New("registry: no descriptor for id")

// Descriptor is the resolved reference a loader needs to produce an artifact.
type Descriptor struct {
	ID   int
	Name string
}

// Table names the lessons of one inclusive id sub-range. Different sub-ranges
// of the deployment use different naming conventions, hence separate tables.
type Table struct {
	Lo, Hi int
	Names  map[int]string
}

// Registry is an ordered set of name tables, fixed at configuration time.
type Registry struct {
	tables []Table
}

// New creates a registry from tables scanned in declaration order.
func New(tables ...Table) *Registry {
	ts := make([]Table, len(tables))
	copy(ts, tables)
	return &Registry{tables: ts}
}

// Resolve returns the descriptor for id, or ErrNotFound when the id is in a
// table's range but unnamed, or outside all known ranges.
func (r *Registry) Resolve(id int) (Descriptor, error) {
	for _, t := range r.tables {
		if id < t.Lo || id > t.Hi {
			continue
		}
		name, ok := t.Names[id]
		if !ok {
			return Descriptor{}, ErrNotFound
		}
		return Descriptor{ID: id, Name: name}, nil
	}
	return Descriptor{}, ErrNotFound
}

// Len returns the number of named ids across all tables.
func (r *Registry) Len() int {
	n := 0
	for _, t := range r.tables {
		n += len(t.Names)
	}
	return n
}
