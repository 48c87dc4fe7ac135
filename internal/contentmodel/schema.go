package contentmodel

import (
	"fmt"
	"slices"
)

// Schema maps roles to datastream ids. Single roles hold at most one id; multi-valued roles
// hold an ordered set.
type Schema struct {
	single  map[Role]string
	multi   map[Role][]string
	unknown map[string][]string
}

// Conflict records a single-valued role declared with different datastreams by two schemas.
type Conflict struct {
	Role     Role
	Previous string
	Current  string
}

// NewSchema returns an empty schema.
func NewSchema() *Schema {
	return &Schema{
		single:  make(map[Role]string),
		multi:   make(map[Role][]string),
		unknown: make(map[string][]string),
	}
}

// FromDocument turns the string-keyed document into a schema. A single-valued role bound to
// two different datastreams within one document is an error.
func FromDocument(doc *Document) (*Schema, error) {
	s := NewSchema()
	for _, m := range doc.Mappings {
		role, ok := ParseRole(m.Role)
		if !ok {
			s.unknown[m.Role] = appendUnique(s.unknown[m.Role], m.DatastreamID)
			continue
		}
		if role.Multi() {
			s.multi[role] = appendUnique(s.multi[role], m.DatastreamID)
			continue
		}
		if prev, dup := s.single[role]; dup && prev != m.DatastreamID {
			return nil, fmt.Errorf("%w: role %s mapped to both %s and %s", ErrInvalidDocument, role, prev, m.DatastreamID)
		}
		s.single[role] = m.DatastreamID
	}
	return s, nil
}

func appendUnique(ids []string, id string) []string {
	if slices.Contains(ids, id) {
		return ids
	}
	return append(ids, id)
}

// Datastream returns the datastream of a single-valued role.
func (s *Schema) Datastream(r Role) (string, bool) {
	id, ok := s.single[r]
	return id, ok
}

// Datastreams returns the datastreams of a multi-valued role in declaration order.
func (s *Schema) Datastreams(r Role) []string {
	return slices.Clone(s.multi[r])
}

// Unknown returns role names the engine does not handle, with their datastreams.
func (s *Schema) Unknown() map[string][]string {
	out := make(map[string][]string, len(s.unknown))
	for k, v := range s.unknown {
		out[k] = slices.Clone(v)
	}
	return out
}

// Merge folds other into s. Roles missing from s are added, multi-valued roles accumulate
// the union, and for a single-valued role present in both the later schema wins; each such
// case is reported as a Conflict.
func (s *Schema) Merge(other *Schema) []Conflict {
	var conflicts []Conflict
	for _, r := range Roles {
		id, ok := other.single[r]
		if !ok {
			continue
		}
		if prev, exists := s.single[r]; exists && prev != id {
			conflicts = append(conflicts, Conflict{Role: r, Previous: prev, Current: id})
		}
		s.single[r] = id
	}
	for _, r := range Roles {
		for _, id := range other.multi[r] {
			s.multi[r] = appendUnique(s.multi[r], id)
		}
	}
	for name, ids := range other.unknown {
		for _, id := range ids {
			s.unknown[name] = appendUnique(s.unknown[name], id)
		}
	}
	return conflicts
}
