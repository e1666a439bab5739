// Package entity normalizes raw bibliographic records into fixed per-kind
// schemas and holds them in ordered, deduplicating stores.
package entity

import (
	"github.com/matsen/artool/internal/identity"
)

// FieldType represents how a field's value is stored.
type FieldType string

const (
	FieldTypeText     FieldType = "text"      // short scalar, compared during deduplication
	FieldTypeFreeText FieldType = "free_text" // long prose, ignored by exact-duplicate detection
	FieldTypeList     FieldType = "list"      // []string
	FieldTypeNumber   FieldType = "number"    // float64
	FieldTypeNested   FieldType = "nested"    // *Store of another kind
	FieldTypeRaw      FieldType = "raw"       // opaque payload kept as decoded
)

// Field defines a single field in a schema.
type Field struct {
	Name   string
	Type   FieldType
	Nested identity.Kind // only meaningful for FieldTypeNested
}

// Schema is the fixed, ordered field list of one entity kind.
type Schema struct {
	Kind      identity.Kind
	IDField   string
	NameField string
	Fields    []Field

	// StrongIDs are deduplication keys, consulted in order.
	StrongIDs []string

	// IdentityColumns decide which rows Merge treats as already present.
	IdentityColumns []string

	byName map[string]int
}

func text(name string) Field     { return Field{Name: name, Type: FieldTypeText} }
func freeText(name string) Field { return Field{Name: name, Type: FieldTypeFreeText} }
func list(name string) Field     { return Field{Name: name, Type: FieldTypeList} }
func number(name string) Field   { return Field{Name: name, Type: FieldTypeNumber} }
func raw(name string) Field      { return Field{Name: name, Type: FieldTypeRaw} }
func nested(name string, k identity.Kind) Field {
	return Field{Name: name, Type: FieldTypeNested, Nested: k}
}

var workSchema = newSchema(&Schema{
	Kind:      identity.Work,
	IDField:   "work_id",
	NameField: "title",
	Fields: []Field{
		text("work_id"), text("title"),
		nested("authors", identity.Author), nested("editors", identity.Author),
		text("date"), text("source"), text("type"), text("publisher"), text("publisher_location"),
		nested("funder", identity.Funder), list("keywords"),
		freeText("abstract"), freeText("description"), freeText("extract"), freeText("full_text"),
		text("volume"), text("issue"), text("pages"), text("language"), text("license"),
		text("doi"), text("isbn"), text("issn"), text("uri"), text("link"),
		text("pubmed_id"), text("crossref_id"), text("scopus_id"), text("wos_id"),
		number("citation_count"), raw("citations_data"), nested("citations", identity.Work),
		text("repository"), text("medium"), nested("affiliations", identity.Affiliation),
		freeText("notes"), list("tags"),
	},
	// "issn" identifies a journal, so two articles from one journal that share
	// no earlier key are folded together. This is a known false-merge source.
	StrongIDs: []string{
		"doi", "isbn", "issn", "uri", "crossref_id", "scopus_id", "wos_id", "pubmed_id", "link",
	},
	IdentityColumns: []string{"work_id", "title", "date", "doi"},
})

var authorSchema = newSchema(&Schema{
	Kind:      identity.Author,
	IDField:   "author_id",
	NameField: "full_name",
	Fields: []Field{
		text("author_id"), text("full_name"), text("given_name"), text("family_name"),
		text("email"), nested("affiliations", identity.Affiliation), list("publications"),
		text("orcid"), text("google_scholar"), text("scopus"), text("crossref"), text("wos_id"),
		text("website"), list("other_links"), freeText("notes"),
	},
	StrongIDs: []string{
		"orcid", "crossref", "scopus", "wos_id", "google_scholar", "website",
	},
	IdentityColumns: []string{"author_id", "full_name", "orcid"},
})

var funderSchema = newSchema(&Schema{
	Kind:      identity.Funder,
	IDField:   "funder_id",
	NameField: "name",
	Fields: []Field{
		text("funder_id"), text("name"), list("alt_names"), text("location"),
		list("funded_works"), text("crossref_id"), text("uri"), text("website"),
		list("other_links"), freeText("notes"),
	},
	StrongIDs:       []string{"uri", "crossref_id", "website"},
	IdentityColumns: []string{"funder_id", "name", "uri"},
})

var affiliationSchema = newSchema(&Schema{
	Kind:      identity.Affiliation,
	IDField:   "affiliation_id",
	NameField: "name",
	Fields: []Field{
		text("affiliation_id"), text("name"), list("alt_names"), text("location"),
		text("address"), text("parent_organization"), text("uri"), text("crossref_id"),
		text("website"), list("other_links"), freeText("notes"),
	},
	StrongIDs:       []string{"uri", "crossref_id", "website"},
	IdentityColumns: []string{"affiliation_id", "name", "uri"},
})

var schemas = map[identity.Kind]*Schema{
	identity.Work:        workSchema,
	identity.Author:      authorSchema,
	identity.Funder:      funderSchema,
	identity.Affiliation: affiliationSchema,
}

func newSchema(s *Schema) *Schema {
	s.byName = make(map[string]int, len(s.Fields))
	for i, f := range s.Fields {
		s.byName[f.Name] = i
	}
	return s
}

// SchemaFor returns the schema of kind. It panics on an unknown kind.
func SchemaFor(kind identity.Kind) *Schema {
	s, ok := schemas[kind]
	if !ok {
		panic("entity: unknown kind " + kind.String())
	}
	return s
}

// Field returns the named field definition.
func (s *Schema) Field(name string) (Field, bool) {
	i, ok := s.byName[name]
	if !ok {
		return Field{}, false
	}
	return s.Fields[i], true
}

// Has reports whether name is a field of the schema.
func (s *Schema) Has(name string) bool {
	_, ok := s.byName[name]
	return ok
}

// Names returns the field names in schema order.
func (s *Schema) Names() []string {
	names := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		names[i] = f.Name
	}
	return names
}

// isStrongID reports whether name is one of the schema's strong identifiers.
func (s *Schema) isStrongID(name string) bool {
	for _, f := range s.StrongIDs {
		if f == name {
			return true
		}
	}
	return false
}
