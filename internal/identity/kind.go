package identity

import (
	"fmt"
	"strings"
)

// Kind is one of the four entity kinds the tool reconciles.
type Kind int

const (
	Work Kind = iota
	Author
	Funder
	Affiliation
)

// Kinds lists every kind in a stable order.
var Kinds = []Kind{Work, Author, Funder, Affiliation}

var kindNames = map[Kind]string{
	Work:        "work",
	Author:      "author",
	Funder:      "funder",
	Affiliation: "affiliation",
}

var kindPrefixes = map[Kind]string{
	Work:        "W:",
	Author:      "A:",
	Funder:      "F:",
	Affiliation: "AFFIL:",
}

// String returns the lowercase kind name.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Plural returns the collection name used for files and tables ("works").
func (k Kind) Plural() string {
	return k.String() + "s"
}

// Prefix returns the identifier prefix for the kind, e.g. "W:".
func (k Kind) Prefix() string {
	return kindPrefixes[k]
}

// Sentinel returns the identifier minted for a record with no usable fields.
func (k Kind) Sentinel() string {
	if k == Author {
		return "A:#NA#"
	}
	return k.Prefix()
}

// ParseKind accepts a kind name in singular or plural form.
func ParseKind(s string) (Kind, error) {
	s = strings.TrimSuffix(strings.ToLower(strings.TrimSpace(s)), "s")
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown entity kind %q (expected work, author, funder or affiliation)", s)
}

// KindOf returns the kind encoded in an identifier's prefix.
func KindOf(id string) (Kind, bool) {
	// AFFIL: must be tested before A:
	switch {
	case strings.HasPrefix(id, "AFFIL:"):
		return Affiliation, true
	case strings.HasPrefix(id, "W:"):
		return Work, true
	case strings.HasPrefix(id, "A:"):
		return Author, true
	case strings.HasPrefix(id, "F:"):
		return Funder, true
	}
	return 0, false
}

// IsSentinel reports whether id carries no information beyond its prefix.
func IsSentinel(id string) bool {
	k, ok := KindOf(id)
	if !ok {
		return id == ""
	}
	return id == k.Sentinel() || id == k.Prefix()
}
