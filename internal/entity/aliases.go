package entity

import (
	"github.com/matsen/artool/internal/identity"
)

// SourceFormat names the origin of raw records and selects the field alias
// table used when normalizing them.
type SourceFormat string

const (
	Generic     SourceFormat = "generic"
	CrossRef    SourceFormat = "crossref"
	Scopus      SourceFormat = "scopus"
	WoS         SourceFormat = "wos"
	ORCID       SourceFormat = "orcid"
	Spreadsheet SourceFormat = "spreadsheet"
	JSONL       SourceFormat = "jsonl"
)

// SourceFormats lists the accepted formats.
var SourceFormats = []SourceFormat{Generic, CrossRef, Scopus, WoS, ORCID, Spreadsheet, JSONL}

// alias maps a (possibly dotted) source path onto a schema field.
type alias struct {
	path  string
	field string
}

// commonAliases apply to every format after the format-specific table.
var commonAliases = map[identity.Kind][]alias{
	identity.Work: {
		{"year", "date"},
		{"published", "date"},
		{"issued", "date"},
		{"publication_date", "date"},
		{"journal", "source"},
		{"venue", "source"},
		{"container-title", "source"},
		{"url", "link"},
		{"author", "authors"},
		{"editor", "editors"},
		{"funders", "funder"},
		{"references", "citations_data"},
		{"reference", "citations_data"},
		{"cited_by", "citation_count"},
		{"keyword", "keywords"},
		{"subject", "keywords"},
		{"page", "pages"},
		{"pmid", "pubmed_id"},
		{"affiliation", "affiliations"},
	},
	identity.Author: {
		{"name", "full_name"},
		{"given", "given_name"},
		{"first", "given_name"},
		{"family", "family_name"},
		{"last", "family_name"},
		{"surname", "family_name"},
		{"affiliation", "affiliations"},
		{"url", "website"},
	},
	identity.Funder: {
		{"doi", "uri"},
		{"alt-names", "alt_names"},
		{"url", "website"},
	},
	identity.Affiliation: {
		{"organization", "name"},
		{"institution", "name"},
		{"alt-names", "alt_names"},
		{"city", "location"},
		{"country", "location"},
		{"url", "website"},
	},
}

var formatAliases = map[SourceFormat]map[identity.Kind][]alias{
	CrossRef: {
		identity.Work: {
			{"is-referenced-by-count", "citation_count"},
			{"published-print", "date"},
			{"published-online", "date"},
			{"created", "date"},
			{"publisher-location", "publisher_location"},
			{"article-title", "title"},
			{"volume-title", "title"},
			{"journal-title", "source"},
			{"unstructured", "notes"},
		},
		identity.Funder: {
			{"id", "crossref_id"},
			{"location", "location"},
		},
	},
	Scopus: {
		identity.Work: {
			{"dc:title", "title"},
			{"prism:doi", "doi"},
			{"prism:coverdate", "date"},
			{"prism:publicationname", "source"},
			{"citedby-count", "citation_count"},
			{"dc:creator", "authors"},
			{"prism:issn", "issn"},
			{"prism:isbn", "isbn"},
			{"prism:volume", "volume"},
			{"prism:issueidentifier", "issue"},
			{"prism:pagerange", "pages"},
			{"dc:description", "abstract"},
			{"eid", "scopus_id"},
			{"prism:url", "link"},
			{"subtypedescription", "type"},
			{"authkeywords", "keywords"},
			{"pubmed-id", "pubmed_id"},
		},
		identity.Author: {
			{"authname", "full_name"},
			{"authid", "scopus"},
			{"given-name", "given_name"},
			{"preferred-name.given-name", "given_name"},
			{"preferred-name.surname", "family_name"},
		},
		identity.Affiliation: {
			{"affilname", "name"},
			{"affiliation-city", "location"},
			{"affiliation-country", "location"},
		},
	},
	WoS: {
		identity.Work: {
			{"ti", "title"},
			{"di", "doi"},
			{"py", "date"},
			{"so", "source"},
			{"af", "authors"},
			{"au", "authors"},
			{"ab", "abstract"},
			{"de", "keywords"},
			{"sn", "issn"},
			{"bn", "isbn"},
			{"vl", "volume"},
			{"is", "issue"},
			{"tc", "citation_count"},
			{"ut", "wos_id"},
			{"pu", "publisher"},
			{"pi", "publisher_location"},
			{"fu", "funder"},
			{"c1", "affiliations"},
			{"pm", "pubmed_id"},
			{"la", "language"},
			{"dt", "type"},
			{"cr", "citations_data"},
		},
	},
	ORCID: {
		identity.Work: {
			{"title.title.value", "title"},
			{"publication-date.year.value", "date"},
			{"journal-title.value", "source"},
			{"url.value", "link"},
			{"put-code", "notes"},
		},
		identity.Author: {
			{"orcid-identifier.path", "orcid"},
			{"orcid-identifier.uri", "orcid"},
			{"person.name.given-names.value", "given_name"},
			{"person.name.family-name.value", "family_name"},
			{"name.given-names.value", "given_name"},
			{"name.family-name.value", "family_name"},
			{"person.biography.content", "notes"},
		},
		identity.Affiliation: {
			{"organization.name", "name"},
			{"organization.address.city", "location"},
			{"department-name", "notes"},
		},
	},
}

// aliasesFor returns the ordered alias list for a format and kind.
func aliasesFor(format SourceFormat, kind identity.Kind) []alias {
	out := append([]alias(nil), formatAliases[format][kind]...)
	return append(out, commonAliases[kind]...)
}
