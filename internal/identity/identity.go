// Package identity derives deterministic identifiers for bibliographic
// entities.
//
// An identifier is a kind prefix ("W:", "A:", "F:", "AFFIL:") followed by a
// dash-joined body built from name tokens, the publication year (works only)
// and a fragment of the strongest available external identifier:
//
//	W:deep-learning-b-2020-10.1000/xyz123
//	A:jane-doe-0000-0001-2345-6789
//
// Records with no external identifier fall back to name (and year) alone, so
// two distinct records with the same name tokens and year share an
// identifier. Collisions are not detected here.
package identity

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/matsen/artool/internal/author"
	"github.com/matsen/artool/internal/lexicon"
)

// NoNameGiven is the name fragment used when a record carries no usable name.
const NoNameGiven = "no_name_given"

const maxWorkNameLen = 15

// uniqueFields lists the strong identifier fields consulted for the
// uniqueness fragment, in priority order, and the fragment length.
var uniqueFields = map[Kind]struct {
	fields []string
	maxLen int
}{
	Work:        {[]string{"doi", "isbn", "issn", "link"}, 30},
	Author:      {[]string{"orcid", "google_scholar", "scopus", "crossref"}, 23},
	Funder:      {[]string{"uri", "crossref_id", "website"}, 25},
	Affiliation: {[]string{"uri", "crossref_id", "website"}, 25},
}

// Generate derives the identifier for a record of the given kind. It is pure
// and never panics; an empty record yields the kind's sentinel.
func Generate(kind Kind, fields map[string]any, lex *lexicon.Lexicon) string {
	if lex == nil {
		lex = lexicon.Default()
	}
	v := newView(fields)

	var frags []string
	switch kind {
	case Work:
		frags = append(frags, workName(v, lex), Year(v.get("date", "year", "published")))
	case Author:
		frags = append(frags, authorName(v, lex))
	case Funder, Affiliation:
		frags = append(frags, orgName(v, lex))
	}
	frags = append(frags, UniqueFragment(kind, fields))

	body := assemble(frags)
	if body == "" || body == NoNameGiven {
		return kind.Sentinel()
	}
	return kind.Prefix() + body
}

// WorkID derives a work identifier.
func WorkID(fields map[string]any, lex *lexicon.Lexicon) string {
	return Generate(Work, fields, lex)
}

// AuthorID derives an author identifier.
func AuthorID(fields map[string]any, lex *lexicon.Lexicon) string {
	return Generate(Author, fields, lex)
}

// FunderID derives a funder identifier.
func FunderID(fields map[string]any, lex *lexicon.Lexicon) string {
	return Generate(Funder, fields, lex)
}

// AffiliationID derives an affiliation identifier.
func AffiliationID(fields map[string]any, lex *lexicon.Lexicon) string {
	return Generate(Affiliation, fields, lex)
}

// UniqueFragment returns the boilerplate-stripped, lowercased and truncated
// value of the first strong identifier present for kind, or "".
func UniqueFragment(kind Kind, fields map[string]any) string {
	u, ok := uniqueFields[kind]
	if !ok {
		return ""
	}
	v := newView(fields)
	for _, f := range u.fields {
		s := v.get(f)
		if s == "" {
			continue
		}
		s = strings.ToLower(StripBoilerplate(s))
		if s == "" {
			continue
		}
		return truncate(s, u.maxLen)
	}
	return ""
}

// Tokens lowercases s and splits it on anything that is not a letter or digit.
func Tokens(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func distinctive(s string, lex *lexicon.Lexicon) []string {
	var out []string
	for _, t := range Tokens(s) {
		if !lex.IsStopword(t) {
			out = append(out, t)
		}
	}
	return out
}

// firstPlusLast takes the first n tokens and appends the last token unless it
// is already among them.
func firstPlusLast(tokens []string, n int) []string {
	if len(tokens) <= n {
		return tokens
	}
	out := append([]string(nil), tokens[:n]...)
	last := tokens[len(tokens)-1]
	for _, t := range out {
		if t == last {
			return out
		}
	}
	return append(out, last)
}

func workName(v view, lex *lexicon.Lexicon) string {
	name := strings.Join(firstPlusLast(distinctive(v.get("title"), lex), 2), "-")
	return strings.TrimRight(truncate(name, maxWorkNameLen), "-")
}

func orgName(v view, lex *lexicon.Lexicon) string {
	name := strings.Join(firstPlusLast(distinctive(v.get("name"), lex), 3), "-")
	if name == "" {
		return NoNameGiven
	}
	return name
}

func authorName(v view, lex *lexicon.Lexicon) string {
	given := v.get("given_name")
	family := v.get("family_name")

	var n author.Name
	switch {
	case given != "" && family != "":
		n = author.Name{Given: given, Family: family}
	case family != "":
		if split, ok := author.SplitFamilyComma(family); ok {
			n = split
		} else {
			n = author.Name{Family: family}
		}
	case v.get("full_name", "name") != "":
		n = author.ParseFullName(v.get("full_name", "name"), lex)
	case given != "":
		n = author.Name{Given: given}
	}

	var tokens []string
	for _, t := range Tokens(n.Full()) {
		if !lex.IsHonorific(t) {
			tokens = append(tokens, t)
		}
	}
	if len(tokens) == 0 {
		return NoNameGiven
	}
	return strings.Join(tokens, "-")
}

var yearPattern = regexp.MustCompile(`(?:^|\D)(1[5-9]\d{2}|20\d{2})(?:\D|$)`)

// Year extracts the first plausible four-digit year from a date string.
func Year(date string) string {
	m := yearPattern.FindStringSubmatch(date)
	if m == nil {
		return ""
	}
	return m[1]
}

var (
	punctuation = strings.NewReplacer(
		",", "", ";", "", ":", "", "'", "", "\"", "", "`", "",
		"(", "", ")", "", "[", "", "]", "", "{", "", "}", "",
		"?", "", "!", "", "*", "", "#", "", "&", "", "=", "", "|", "",
		"<", "", ">", "", "‘", "", "’", "", "“", "", "”", "", "«", "", "»", "",
	)
	dashRun = regexp.MustCompile(`-{2,}`)
)

func assemble(frags []string) string {
	var parts []string
	for _, f := range frags {
		if f = strings.TrimSpace(f); f != "" {
			parts = append(parts, f)
		}
	}
	body := strings.Join(parts, "-")
	body = strings.Join(strings.Fields(body), "-")
	body = punctuation.Replace(body)
	body = dashRun.ReplaceAllString(body, "-")
	return strings.Trim(body, "-")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
