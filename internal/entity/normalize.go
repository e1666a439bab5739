package entity

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/araddon/dateparse"

	"github.com/matsen/artool/internal/author"
	"github.com/matsen/artool/internal/identity"
	"github.com/matsen/artool/internal/lexicon"
)

// Normalize converts raw input into a record of kind with every schema field
// present and a freshly derived identifier. A ListInput yields its first
// usable element; use NormalizeAll for one record per element. Normalize
// never fails: unusable input produces an empty record with the kind's
// sentinel identifier.
func Normalize(kind identity.Kind, in Input, format SourceFormat, lex *lexicon.Lexicon) *Record {
	r := newRecord(SchemaFor(kind), lex, format)

	switch x := in.(type) {
	case StringInput:
		r.fromString(string(x))
	case MappingInput:
		r.fromMapping(x)
	case ListInput:
		for _, e := range x {
			if sub := AsInput(e); sub != nil {
				return Normalize(kind, sub, format, lex)
			}
		}
	case StructuredInput:
		if x.Record != nil && x.Record.Kind() == kind {
			r = x.Record.Clone()
		}
	}

	r.finish()
	r.AssignID()
	return r
}

// NormalizeAll converts input into zero or more records. Lists yield one
// record per element, and strings are split on ";" so that "Doe, J; Roe, R"
// becomes two authors.
func NormalizeAll(kind identity.Kind, in Input, format SourceFormat, lex *lexicon.Lexicon) []*Record {
	switch x := in.(type) {
	case nil:
		return nil
	case StringInput:
		var out []*Record
		for _, part := range strings.Split(string(x), ";") {
			if identity.IsNA(part) {
				continue
			}
			out = append(out, Normalize(kind, StringInput(part), format, lex))
		}
		return out
	case ListInput:
		var out []*Record
		for _, e := range x {
			out = append(out, NormalizeAll(kind, AsInput(e), format, lex)...)
		}
		return out
	case StructuredInput:
		if x.Record == nil {
			return nil
		}
	}
	return []*Record{Normalize(kind, in, format, lex)}
}

// doiPattern matches a bare DOI inside free text.
var doiPattern = regexp.MustCompile(`10\.\d{4,9}/[^\s<>"{}|\\^~\[\]` + "`" + `;,]+`)

func (r *Record) fromString(s string) {
	s = strings.TrimSpace(s)
	if identity.IsNA(s) {
		return
	}
	switch r.schema.Kind {
	case identity.Work:
		if doi := doiPattern.FindString(s); doi != "" {
			r.values["doi"] = doi
			if s != doi {
				r.values["notes"] = s
			}
			return
		}
		r.values["title"] = s
	case identity.Author:
		r.values["full_name"] = s
	default:
		r.values["name"] = s
	}
}

func (r *Record) fromMapping(m map[string]any) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	// Exact schema names win over aliases.
	for _, k := range keys {
		field := normKey(k)
		if field == r.schema.IDField || !r.schema.Has(field) {
			continue
		}
		if _, set := r.values[field]; set {
			continue
		}
		r.setCoerced(field, m[k])
	}

	for _, a := range aliasesFor(r.format, r.schema.Kind) {
		if _, set := r.values[a.field]; set {
			continue
		}
		if v, ok := lookupPath(m, a.path); ok {
			r.setCoerced(a.field, v)
		}
	}
}

// normKey lowercases a source key and turns internal whitespace into "_",
// so spreadsheet headers such as " Family Name " match schema fields.
func normKey(k string) string {
	return strings.Join(strings.Fields(strings.ToLower(k)), "_")
}

// lookupPath resolves a dotted path through nested mappings, matching each
// segment case-insensitively.
func lookupPath(m map[string]any, path string) (any, bool) {
	var cur any = m
	for _, seg := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		v, found := obj[seg]
		if !found {
			for k, candidate := range obj {
				if normKey(k) == seg {
					v, found = candidate, true
					break
				}
			}
		}
		if !found {
			return nil, false
		}
		cur = v
	}
	return cur, true
}

// setCoerced stores v in field after converting it to the field's type. It
// leaves the field unset when nothing usable remains.
func (r *Record) setCoerced(field string, v any) {
	f, ok := r.schema.Field(field)
	if !ok || isNull(v) {
		return
	}

	var out any
	switch f.Type {
	case FieldTypeText:
		if field == "date" {
			out = normalizeDate(v)
		} else {
			out = identity.Scalar(v)
		}
	case FieldTypeFreeText:
		s := identity.Scalar(v)
		if field == "abstract" {
			s = stripMarkup(s)
		}
		out = s
	case FieldTypeList:
		if l := toStrings(v); len(l) > 0 {
			out = l
		}
	case FieldTypeNumber:
		if n, ok := toNumber(v); ok {
			out = n
		}
	case FieldTypeNested:
		s := NewStore(f.Nested, WithLexicon(r.lex))
		for _, rec := range NormalizeAll(f.Nested, AsInput(v), r.format, r.lex) {
			s.AddRecord(rec)
		}
		if s.Len() > 0 {
			out = s
		}
	case FieldTypeRaw:
		out = v
	}

	if !isNull(out) {
		r.values[field] = out
	}
}

// finish applies the per-kind policies once all fields are populated.
func (r *Record) finish() {
	switch r.schema.Kind {
	case identity.Work:
		doi := r.Text("doi")
		if doi == "" {
			doi = r.Text("uri")
		}
		if canonical, ok := canonicalDOI(doi); ok {
			r.values["doi"] = canonical
		}
	case identity.Author:
		r.finishAuthor()
	case identity.Funder, identity.Affiliation:
		if r.IsNull("name") {
			for _, from := range []string{"alt_names", "other_links"} {
				if l := r.List(from); len(l) > 0 {
					r.values["name"] = l[0]
					break
				}
			}
		}
		if canonical, ok := canonicalDOI(r.Text("uri")); ok {
			r.values["uri"] = canonical
		}
	}
}

func (r *Record) finishAuthor() {
	given, family, full := r.Text("given_name"), r.Text("family_name"), r.Text("full_name")

	if given == "" && family != "" {
		if n, ok := author.SplitFamilyComma(family); ok {
			given, family = n.Given, n.Family
		}
	}
	if given == "" && family == "" && full != "" {
		n := author.ParseFullName(full, r.lex)
		given, family = n.Given, n.Family
	}
	if full == "" {
		full = author.Name{Given: given, Family: family}.Full()
	}

	for field, v := range map[string]string{"given_name": given, "family_name": family, "full_name": full} {
		if v == "" {
			delete(r.values, field)
		} else {
			r.values[field] = v
		}
	}
}

// canonicalDOI rewrites any DOI spelling as https://doi.org/<id>. It
// reports false when s is not a DOI.
func canonicalDOI(s string) (string, bool) {
	stripped := identity.StripBoilerplate(s)
	if !strings.HasPrefix(stripped, "10.") {
		return s, false
	}
	return "https://doi.org/" + stripped, true
}

var (
	bareYear  = regexp.MustCompile(`^\d{4}$`)
	yearMonth = regexp.MustCompile(`^\d{4}-\d{2}$`)
)

// normalizeDate renders a date in any source shape as a string. Full dates
// become YYYY-MM-DD; bare years, year-months and unparseable strings are
// kept as given.
func normalizeDate(v any) string {
	switch x := v.(type) {
	case map[string]any:
		if parts, ok := x["date-parts"]; ok {
			return dateFromParts(parts)
		}
		if y, ok := lookupPath(x, "year.value"); ok {
			return identity.Scalar(y)
		}
		return ""
	case []any:
		if len(x) > 0 {
			if _, isNum := x[0].(float64); isNum {
				return dateFromParts([]any{x})
			}
		}
	}

	s := identity.Scalar(v)
	if s == "" || bareYear.MatchString(s) || yearMonth.MatchString(s) {
		return s
	}
	if t, err := dateparse.ParseAny(s); err == nil {
		return t.Format("2006-01-02")
	}
	return s
}

// dateFromParts handles CrossRef's [[year, month, day]] encoding.
func dateFromParts(v any) string {
	outer, ok := v.([]any)
	if !ok || len(outer) == 0 {
		return ""
	}
	inner, ok := outer[0].([]any)
	if !ok || len(inner) == 0 {
		return ""
	}
	var parts []string
	for i, p := range inner {
		s := identity.Scalar(p)
		if s == "" {
			break
		}
		if i > 0 && len(s) == 1 {
			s = "0" + s
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, "-")
}

var markup = regexp.MustCompile(`<[^>]+>`)

func stripMarkup(s string) string {
	return strings.Join(strings.Fields(markup.ReplaceAllString(s, " ")), " ")
}

func toStrings(v any) []string {
	var out []string
	add := func(s string) {
		if s = strings.TrimSpace(s); !identity.IsNA(s) {
			out = append(out, s)
		}
	}
	switch x := v.(type) {
	case string:
		for _, part := range strings.Split(x, ";") {
			add(part)
		}
	case []string:
		for _, s := range x {
			add(s)
		}
	case []any:
		for _, e := range x {
			add(identity.Scalar(e))
		}
	default:
		add(identity.Scalar(v))
	}
	return out
}

func toNumber(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	}
	s := strings.ReplaceAll(identity.Scalar(v), ",", "")
	if s == "" {
		return 0, false
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// ParseSourceFormat validates a format name.
func ParseSourceFormat(s string) (SourceFormat, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return Generic, nil
	}
	for _, f := range SourceFormats {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown source format %q", s)
}
