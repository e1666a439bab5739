package entity

import (
	"strings"

	"github.com/matsen/artool/internal/identity"
)

// Merge appends the rows of other that are not already present, judged by
// the schema's identity columns. On a collision the receiver's row and its
// derived attributes are kept. Identifiers are regenerated afterwards.
// It panics when the kinds differ.
func (s *Store) Merge(other *Store) {
	if other == nil || other.Len() == 0 {
		return
	}
	if other.Kind() != s.Kind() {
		panic("entity: merging " + other.Kind().String() + " store into " + s.Kind().String() + " store")
	}

	seen := make(map[string]bool, len(s.rows)+len(other.rows))
	for _, r := range s.rows {
		seen[s.identityKey(r)] = true
	}

	added := 0
	for _, r := range other.rows {
		key := s.identityKey(r)
		if seen[key] {
			continue
		}
		seen[key] = true

		c := r.Clone()
		c.lex = s.lex
		e := &Entity{Record: c}
		if oe, ok := other.entities[r]; ok {
			e.Works = oe.Works
			e.Cooccurrences = oe.Cooccurrences
		}
		s.rows = append(s.rows, c)
		s.entities[c] = e
		added++
	}

	s.index = nil
	s.UpdateIDs()
	s.log.Debug().Int("added", added).Int("offered", other.Len()).Msg("merged stores")
}

func (s *Store) identityKey(r *Record) string {
	parts := make([]string, len(s.schema.IdentityColumns))
	for i, col := range s.schema.IdentityColumns {
		if col == s.schema.IDField {
			parts[i] = identity.Generate(s.Kind(), r.Fields(), s.lex)
			continue
		}
		parts[i] = r.comparable(col)
	}
	return strings.Join(parts, "\x1e")
}
