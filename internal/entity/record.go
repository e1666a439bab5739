package entity

import (
	"strings"

	"github.com/segmentio/encoding/json"

	"github.com/matsen/artool/internal/identity"
	"github.com/matsen/artool/internal/lexicon"
)

// Record is one normalized row. Every schema field is present; absent values
// are nil. Values are string (text), []string (list), float64 (number),
// *Store (nested) or the decoded payload (raw).
type Record struct {
	schema *Schema
	lex    *lexicon.Lexicon
	format SourceFormat
	values map[string]any
}

// NewRecord returns an empty record of kind.
func NewRecord(kind identity.Kind) *Record {
	return newRecord(SchemaFor(kind), nil, Generic)
}

func newRecord(s *Schema, lex *lexicon.Lexicon, format SourceFormat) *Record {
	if lex == nil {
		lex = lexicon.Default()
	}
	return &Record{schema: s, lex: lex, format: format, values: make(map[string]any, len(s.Fields))}
}

// Kind returns the record's entity kind.
func (r *Record) Kind() identity.Kind { return r.schema.Kind }

// Schema returns the record's schema.
func (r *Record) Schema() *Schema { return r.schema }

// ID returns the record's current identifier.
func (r *Record) ID() string { return r.Text(r.schema.IDField) }

// Name returns the record's display name (title for works).
func (r *Record) Name() string { return r.Text(r.schema.NameField) }

// Get returns the raw value of a field, or nil.
func (r *Record) Get(field string) any { return r.values[field] }

// Text returns a field rendered as a string.
func (r *Record) Text(field string) string {
	return identity.Scalar(r.values[field])
}

// List returns a list field, or nil.
func (r *Record) List(field string) []string {
	l, _ := r.values[field].([]string)
	return l
}

// Number returns a numeric field and whether it was set.
func (r *Record) Number(field string) (float64, bool) {
	n, ok := r.values[field].(float64)
	return n, ok
}

// Nested returns the nested store held by field, or nil.
func (r *Record) Nested(field string) *Store {
	s, _ := r.values[field].(*Store)
	return s
}

// Set assigns a field value without coercion. Unknown fields are ignored.
func (r *Record) Set(field string, v any) {
	if !r.schema.Has(field) {
		return
	}
	if v == nil {
		delete(r.values, field)
		return
	}
	r.values[field] = v
}

// IsNull reports whether field holds no usable value.
func (r *Record) IsNull(field string) bool {
	return isNull(r.values[field])
}

func isNull(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return identity.IsNA(x)
	case []string:
		return len(x) == 0
	case []any:
		return len(x) == 0
	case map[string]any:
		return len(x) == 0
	case *Store:
		return x == nil || x.Len() == 0
	}
	return false
}

// Fields returns a shallow copy of the non-null values keyed by field name.
func (r *Record) Fields() map[string]any {
	out := make(map[string]any, len(r.values))
	for k, v := range r.values {
		if !isNull(v) {
			out[k] = v
		}
	}
	return out
}

// GenerateID derives the identifier from the record's current fields.
func (r *Record) GenerateID() string {
	return identity.Generate(r.schema.Kind, r.Fields(), r.lex)
}

// AssignID regenerates and stores the identifier. It reports whether the
// identifier changed.
func (r *Record) AssignID() bool {
	id := r.GenerateID()
	if id == r.ID() {
		return false
	}
	r.values[r.schema.IDField] = id
	return true
}

// Citations returns the work's bibliography. On first access the raw
// citations_data payload is parsed into the citations field.
func (r *Record) Citations() *Store {
	if r.schema.Kind != identity.Work {
		return nil
	}
	if s := r.Nested("citations"); s != nil && s.Len() > 0 {
		return s
	}
	data := r.values["citations_data"]
	if isNull(data) {
		return nil
	}
	s := NewStore(identity.Work, WithLexicon(r.lex))
	for _, rec := range NormalizeAll(identity.Work, AsInput(data), r.format, r.lex) {
		s.AddRecord(rec)
	}
	if s.Len() == 0 {
		return nil
	}
	r.values["citations"] = s
	return s
}

// Clone returns a deep copy. Nested stores are cloned; raw payloads are
// shared.
func (r *Record) Clone() *Record {
	c := newRecord(r.schema, r.lex, r.format)
	for k, v := range r.values {
		c.values[k] = cloneValue(v)
	}
	return c
}

func cloneValue(v any) any {
	switch x := v.(type) {
	case []string:
		return append([]string(nil), x...)
	case *Store:
		return x.Clone()
	}
	return v
}

// Map returns the record as a flat mapping with every schema field present.
// Nested stores become lists of mappings.
func (r *Record) Map() map[string]any {
	out := make(map[string]any, len(r.schema.Fields))
	for _, f := range r.schema.Fields {
		v := r.values[f.Name]
		if s, ok := v.(*Store); ok {
			rows := make([]map[string]any, 0, s.Len())
			for _, row := range s.Rows() {
				rows = append(rows, row.Map())
			}
			v = rows
		}
		out[f.Name] = v
	}
	return out
}

// MarshalJSON encodes the record as its flat mapping.
func (r *Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Map())
}

// comparable returns the value used when comparing rows: lowercased text,
// boilerplate-stripped strong identifiers, sorted lists.
func (r *Record) comparable(field string) string {
	v := r.values[field]
	if isNull(v) {
		return ""
	}
	if r.schema.isStrongID(field) {
		return identity.NormalizeKey(identity.Scalar(v))
	}
	if l, ok := v.([]string); ok {
		lowered := make([]string, len(l))
		for i, s := range l {
			lowered[i] = strings.ToLower(strings.TrimSpace(s))
		}
		return strings.Join(sortedCopy(lowered), "\x1f")
	}
	return strings.ToLower(identity.Scalar(v))
}
