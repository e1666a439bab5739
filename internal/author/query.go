// Package author provides personal name parsing and matching.
package author

import (
	"strings"

	"github.com/matsen/artool/internal/lexicon"
)

// Name is a personal name split into given and family parts.
type Name struct {
	Given  string
	Family string
}

// Full returns "Given Family", or whichever part is present.
func (n Name) Full() string {
	return strings.TrimSpace(n.Given + " " + n.Family)
}

// IsZero reports whether both parts are empty.
func (n Name) IsZero() bool {
	return n.Given == "" && n.Family == ""
}

// ParseFullName splits a free-form personal name.
//
// Supported formats:
//   - "Doe"            → family="Doe"
//   - "Jane Doe"       → given="Jane", family="Doe"
//   - "Doe, Jane"      → given="Jane", family="Doe"
//   - "Dr. Jane Doe"   → honorifics are dropped
//   - "Martin Luther King Jr." → suffix stays with the family name
//   - "Ludwig van Beethoven"   → particles stay with the family name
func ParseFullName(input string, lex *lexicon.Lexicon) Name {
	input = strings.TrimSpace(input)
	if input == "" {
		return Name{}
	}
	if lex == nil {
		lex = lexicon.Default()
	}

	if idx := strings.Index(input, ","); idx > 0 {
		family := strings.TrimSpace(input[:idx])
		given := strings.Join(dropHonorifics(strings.Fields(input[idx+1:]), lex), " ")
		// "King, Jr." style: the part after the comma is only a suffix
		if lex.IsNameSuffix(given) {
			return Name{Family: family + " " + given}
		}
		return Name{Given: given, Family: family}
	}

	parts := dropHonorifics(strings.Fields(input), lex)
	if len(parts) == 0 {
		return Name{}
	}
	if len(parts) == 1 {
		return Name{Family: parts[0]}
	}

	end := len(parts) - 1
	if lex.IsNameSuffix(parts[end]) && len(parts) > 2 {
		end--
	}
	start := end
	for start > 1 && lex.IsNameParticle(parts[start-1]) {
		start--
	}
	return Name{
		Given:  strings.Join(parts[:start], " "),
		Family: strings.Join(parts[start:], " "),
	}
}

// SplitFamilyComma infers given/family from a family name that contains a
// comma ("Smith, John"). It reports false when family has no comma.
//
// The inference also fires on incidental commas in a family name.
func SplitFamilyComma(family string) (Name, bool) {
	idx := strings.Index(family, ",")
	if idx < 0 {
		return Name{}, false
	}
	return Name{
		Given:  strings.TrimSpace(family[idx+1:]),
		Family: strings.TrimSpace(family[:idx]),
	}, true
}

func dropHonorifics(parts []string, lex *lexicon.Lexicon) []string {
	for len(parts) > 0 && lex.IsHonorific(parts[0]) {
		parts = parts[1:]
	}
	return parts
}

// Query represents a parsed author search query.
type Query struct {
	First string // First name (may be empty for last-name-only queries)
	Last  string // Last name (required)
}

// ParseQuery parses an author search string into a structured Query.
// It accepts the same formats as ParseFullName.
func ParseQuery(input string) Query {
	n := ParseFullName(input, nil)
	return Query{First: n.Given, Last: n.Family}
}

// Matches checks if the query matches a given name.
//
// Matching rules:
//   - Last name: case-insensitive exact match (required)
//   - First name: case-insensitive prefix match (if query has first name)
//
// This lets "Tim Yu" match "Timothy C Yu" while "Yu" does not match "Yujia".
func (q Query) Matches(n Name) bool {
	if q.Last == "" || !strings.EqualFold(q.Last, n.Family) {
		return false
	}
	if q.First == "" {
		return true
	}
	return strings.HasPrefix(
		strings.ToLower(n.Given),
		strings.ToLower(q.First),
	)
}

// MatchesAny checks if the query matches any name in the list.
func (q Query) MatchesAny(names []Name) bool {
	for _, n := range names {
		if q.Matches(n) {
			return true
		}
	}
	return false
}
