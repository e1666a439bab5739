package identity

import (
	"regexp"
	"strings"
)

// boilerplatePrefixes are removed from the front of identifier values, in
// order, until none applies. Matching is case-insensitive and anchored.
var boilerplatePrefixes = []string{
	"doi:",
	"isbn:",
	"issn:",
	"https://",
	"http://",
	"www.",
	"dx.doi.org/",
	"doi.org/",
	"orcid.org/",
	"scholar.google.com/citations?user=",
	"scholar.google.com/",
	"scopus.com/authid/detail.uri?authorid=",
	"api.crossref.org/funders/",
	"api.crossref.org/works/",
	"api.crossref.org/",
	"data.crossref.org/fundingdata/funder/",
	"ror.org/",
}

// StripBoilerplate removes scheme, host and resolver prefixes from a URL-ish
// identifier ("https://doi.org/10.1/x" → "10.1/x"). Only leading occurrences
// are removed: "10.1000/doi.org/x" is returned unchanged.
func StripBoilerplate(s string) string {
	s = strings.TrimSpace(s)
	for {
		lower := strings.ToLower(s)
		stripped := false
		for _, p := range boilerplatePrefixes {
			if strings.HasPrefix(lower, p) {
				s = strings.TrimSpace(s[len(p):])
				stripped = true
				break
			}
		}
		if !stripped {
			break
		}
	}
	return strings.TrimRight(s, "/")
}

var suffixPattern = regexp.MustCompile(`#\d+$`)

// StripSuffix removes a trailing "#N" disambiguation suffix from an
// identifier. The author sentinel "A:#NA#" is left intact.
func StripSuffix(id string) string {
	return suffixPattern.ReplaceAllString(id, "")
}

// NormalizeKey returns the comparison form of a strong identifier value:
// boilerplate stripped and lowercased.
func NormalizeKey(s string) string {
	return strings.ToLower(StripBoilerplate(s))
}
