package entity

import (
	"github.com/rs/zerolog"

	"github.com/matsen/artool/internal/identity"
	"github.com/matsen/artool/internal/lexicon"
)

// Entity is a row plus the attributes derived for it by cross-reference
// resolution. Entities are attached to rows by pointer, so re-keying a row
// keeps its derived attributes.
type Entity struct {
	Record        *Record
	Works         []*Record
	Cooccurrences []Cooccurrence
}

// ID returns the entity's current identifier.
func (e *Entity) ID() string { return e.Record.ID() }

// Cooccurrence counts how many works an entity shares with another entity
// of the same kind.
type Cooccurrence struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Frequency int    `json:"frequency"`
}

// Store is an ordered collection of records of one kind. The row slice is
// the only source of truth; the ID index is derived from it on demand.
//
// A Store is not safe for concurrent use.
type Store struct {
	schema *Schema
	lex    *lexicon.Lexicon
	log    zerolog.Logger

	rows     []*Record
	entities map[*Record]*Entity

	index map[string]*Entity // nil when stale
}

// Option configures a Store.
type Option func(*Store)

// WithLexicon sets the lexicon used to derive identifiers.
func WithLexicon(lex *lexicon.Lexicon) Option {
	return func(s *Store) {
		if lex != nil {
			s.lex = lex
		}
	}
}

// WithLogger sets the logger for store operations.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Store) { s.log = log }
}

// NewStore creates an empty store of kind.
func NewStore(kind identity.Kind, opts ...Option) *Store {
	s := &Store{
		schema:   SchemaFor(kind),
		lex:      lexicon.Default(),
		log:      zerolog.Nop(),
		entities: make(map[*Record]*Entity),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With().Str("kind", kind.String()).Logger()
	return s
}

// Kind returns the store's entity kind.
func (s *Store) Kind() identity.Kind { return s.schema.Kind }

// Schema returns the store's schema.
func (s *Store) Schema() *Schema { return s.schema }

// Lexicon returns the lexicon used for identifiers.
func (s *Store) Lexicon() *lexicon.Lexicon { return s.lex }

// Len returns the number of rows.
func (s *Store) Len() int {
	if s == nil {
		return 0
	}
	return len(s.rows)
}

// Rows returns the rows in table order. The slice is a copy; the records
// are shared.
func (s *Store) Rows() []*Record {
	if s == nil {
		return nil
	}
	return append([]*Record(nil), s.rows...)
}

// Add normalizes raw input and appends the resulting record.
func (s *Store) Add(in Input, format SourceFormat) *Entity {
	return s.AddRecord(Normalize(s.Kind(), in, format, s.lex))
}

// AddAll normalizes input into one or more records and appends them.
func (s *Store) AddAll(in Input, format SourceFormat) []*Entity {
	var out []*Entity
	for _, r := range NormalizeAll(s.Kind(), in, format, s.lex) {
		out = append(out, s.AddRecord(r))
	}
	return out
}

// AddRecord appends a record, deriving its identifier. It panics when the
// record's kind differs from the store's.
func (s *Store) AddRecord(r *Record) *Entity {
	if r.Kind() != s.Kind() {
		panic("entity: adding " + r.Kind().String() + " record to " + s.Kind().String() + " store")
	}
	r.lex = s.lex
	r.AssignID()
	return s.attach(r, &Entity{Record: r})
}

// AddEntity appends an entity's record together with its derived
// attributes.
func (s *Store) AddEntity(e *Entity) *Entity {
	if e.Record.Kind() != s.Kind() {
		panic("entity: adding " + e.Record.Kind().String() + " entity to " + s.Kind().String() + " store")
	}
	e.Record.lex = s.lex
	e.Record.AssignID()
	return s.attach(e.Record, e)
}

func (s *Store) attach(r *Record, e *Entity) *Entity {
	s.rows = append(s.rows, r)
	s.entities[r] = e
	s.index = nil
	return e
}

// entity returns the entity for a row, creating an empty one if needed.
func (s *Store) entity(r *Record) *Entity {
	e, ok := s.entities[r]
	if !ok {
		e = &Entity{Record: r}
		s.entities[r] = e
	}
	return e
}

func (s *Store) ensureIndex() {
	if s.index != nil {
		return
	}
	s.index = make(map[string]*Entity, len(s.rows))
	for _, r := range s.rows {
		id := r.ID()
		if _, seen := s.index[id]; !seen {
			s.index[id] = s.entity(r)
		}
	}
}

// Get returns the entity with the given identifier. When several rows share
// an identifier the first one wins.
func (s *Store) Get(id string) (*Entity, bool) {
	if s == nil {
		return nil, false
	}
	s.ensureIndex()
	e, ok := s.index[id]
	return e, ok
}

// Contains reports whether a row with the identifier exists.
func (s *Store) Contains(id string) bool {
	_, ok := s.Get(id)
	return ok
}

// EntityOf returns the entity attached to a row of this store.
func (s *Store) EntityOf(r *Record) (*Entity, bool) {
	e, ok := s.entities[r]
	return e, ok
}

// Entities returns one entity per distinct identifier, in table order.
func (s *Store) Entities() []*Entity {
	if s == nil {
		return nil
	}
	s.ensureIndex()
	out := make([]*Entity, 0, len(s.index))
	seen := make(map[string]bool, len(s.index))
	for _, r := range s.rows {
		id := r.ID()
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, s.index[id])
	}
	return out
}

// IDs returns the distinct identifiers in table order.
func (s *Store) IDs() []string {
	if s == nil {
		return nil
	}
	var ids []string
	for _, e := range s.Entities() {
		ids = append(ids, e.ID())
	}
	return ids
}

// DropByID removes every row with the identifier and returns how many were
// removed.
func (s *Store) DropByID(id string) int {
	n := s.filter(func(r *Record) bool { return r.ID() != id })
	if n > 0 {
		s.log.Debug().Str("id", id).Int("dropped", n).Msg("dropped rows by id")
	}
	return n
}

// filter keeps rows for which keep returns true and reports how many were
// removed.
func (s *Store) filter(keep func(*Record) bool) int {
	kept := s.rows[:0]
	removed := 0
	for _, r := range s.rows {
		if keep(r) {
			kept = append(kept, r)
			continue
		}
		delete(s.entities, r)
		removed++
	}
	// clear the tail so dropped records can be collected
	for i := len(kept); i < len(s.rows); i++ {
		s.rows[i] = nil
	}
	s.rows = kept
	if removed > 0 {
		s.index = nil
	}
	return removed
}

// DropEmptyRows removes rows whose fields are all null, ignoring the
// identifier and nested-entity fields. A name of "no_name_given" counts as
// null.
func (s *Store) DropEmptyRows() int {
	n := s.filter(func(r *Record) bool { return !s.isEmptyRow(r) })
	if n > 0 {
		s.log.Debug().Int("dropped", n).Msg("dropped empty rows")
	}
	return n
}

func (s *Store) isEmptyRow(r *Record) bool {
	for _, f := range s.schema.Fields {
		if f.Name == s.schema.IDField || f.Type == FieldTypeNested {
			continue
		}
		if f.Name == s.schema.NameField && r.Text(f.Name) == identity.NoNameGiven {
			continue
		}
		if !r.IsNull(f.Name) {
			return false
		}
	}
	return true
}

// UpdateIDs regenerates every identifier, recursing into nested stores, and
// returns how many top-level rows changed. Derived attributes follow their
// rows to the new keys.
func (s *Store) UpdateIDs() int {
	changed := 0
	for _, r := range s.rows {
		for _, f := range s.schema.Fields {
			if nested := r.Nested(f.Name); nested != nil {
				nested.UpdateIDs()
			}
		}
		if r.AssignID() {
			changed++
		}
	}
	if changed > 0 {
		s.index = nil
		s.log.Debug().Int("changed", changed).Msg("re-keyed identifiers")
	}
	return changed
}

// SyncReport describes a Synchronize pass.
type SyncReport struct {
	Rows    int `json:"rows"`
	Keys    int `json:"keys"`
	Renamed int `json:"renamed"`
}

// Synchronize regenerates identifiers and rebuilds the index so that every
// row is reachable by its current identifier. It is idempotent: a second
// call reports no renames and leaves the store unchanged.
func (s *Store) Synchronize() SyncReport {
	renamed := s.UpdateIDs()
	s.index = nil
	s.ensureIndex()
	return SyncReport{Rows: len(s.rows), Keys: len(s.index), Renamed: renamed}
}

// Clone returns a deep copy of the store. Derived attributes are copied
// shallowly.
func (s *Store) Clone() *Store {
	c := &Store{
		schema:   s.schema,
		lex:      s.lex,
		log:      s.log,
		rows:     make([]*Record, 0, len(s.rows)),
		entities: make(map[*Record]*Entity, len(s.rows)),
	}
	for _, r := range s.rows {
		cr := r.Clone()
		c.rows = append(c.rows, cr)
		ce := &Entity{Record: cr}
		if e, ok := s.entities[r]; ok {
			ce.Works = e.Works
			ce.Cooccurrences = e.Cooccurrences
		}
		c.entities[cr] = ce
	}
	return c
}
