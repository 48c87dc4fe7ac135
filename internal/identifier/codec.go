// Package identifier encodes domain identifiers into the role-tagged strings the repository
// keeps in its reverse-searchable identifier field, and parses them back.
package identifier

import (
	"errors"
	"fmt"
	"strings"

	"domsync/internal/model"
)

var (
	// ErrNotFound is returned by Parse when no string carries the requested role tag.
	ErrNotFound = errors.New("identifier not found")
	// ErrEmpty is returned when formatting an identifier with no value.
	ErrEmpty = errors.New("identifier is empty")
)

// Role tags an identifier with the level of the object graph it belongs to.
type Role string

const (
	RoleEntity         Role = "entity"
	RoleRepresentation Role = "representation"
	RoleFile           Role = "file"
)

// DefaultNamespace prefixes every tagged identifier unless configured otherwise.
const DefaultNamespace = "scape"

// Codec formats identifiers as "<namespace>:<role>:<value>".
// The value is kept verbatim, so values containing ':' round-trip.
type Codec struct {
	Namespace string
}

// NewCodec returns a Codec for namespace, falling back to DefaultNamespace.
func NewCodec(namespace string) Codec {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return Codec{Namespace: namespace}
}

func (c Codec) prefix(role Role) string {
	return c.Namespace + ":" + string(role) + ":"
}

// Format tags id with role.
func (c Codec) Format(id model.Identifier, role Role) (string, error) {
	if id.Value == "" {
		return "", fmt.Errorf("%w: %s", ErrEmpty, role)
	}
	return c.prefix(role) + id.Value, nil
}

// Parse returns the first of values that carries the role tag.
func (c Codec) Parse(values []string, role Role) (model.Identifier, error) {
	p := c.prefix(role)
	for _, v := range values {
		if rest, ok := strings.CutPrefix(v, p); ok && rest != "" {
			return model.Identifier{Value: rest}, nil
		}
	}
	return model.Identifier{}, fmt.Errorf("%w: no %s identifier", ErrNotFound, role)
}

// Owns reports whether v is a tagged identifier of this codec's namespace.
func (c Codec) Owns(v string) bool {
	for _, role := range []Role{RoleEntity, RoleRepresentation, RoleFile} {
		if strings.HasPrefix(v, c.prefix(role)) {
			return true
		}
	}
	return false
}

// FormatAll returns the tagged identifiers of the entity and all its representations and files,
// in graph order and without duplicates.
func (c Codec) FormatAll(e model.IntellectualEntity) ([]string, error) {
	seen := make(map[string]struct{})
	out := make([]string, 0, 3)
	add := func(id model.Identifier, role Role) error {
		s, err := c.Format(id, role)
		if err != nil {
			return err
		}
		if _, ok := seen[s]; !ok {
			seen[s] = struct{}{}
			out = append(out, s)
		}
		return nil
	}

	if err := add(e.Identifier, RoleEntity); err != nil {
		return nil, err
	}
	for _, rep := range e.Representations {
		if err := add(rep.Identifier, RoleRepresentation); err != nil {
			return nil, err
		}
		for _, f := range rep.Files {
			if err := add(f.Identifier, RoleFile); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}
