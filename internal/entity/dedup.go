package entity

import (
	"strings"
)

// MergeGroup records one set of rows folded together by deduplication.
type MergeGroup struct {
	Field   string   `json:"field"` // "" for exact duplicates
	Key     string   `json:"key,omitempty"`
	Kept    string   `json:"kept"`
	Dropped []string `json:"dropped"`
}

// DedupReport summarizes a Deduplicate pass.
type DedupReport struct {
	Before  int          `json:"before"`
	After   int          `json:"after"`
	Exact   int          `json:"exact_duplicates"`
	Merged  int          `json:"merged"`
	Renamed int          `json:"renamed"`
	Groups  []MergeGroup `json:"groups,omitempty"`
}

// Deduplicate removes duplicate rows in two phases.
//
// Phase 1 drops rows identical to an earlier row on every compared field.
// Compared values are lowercased, strong identifiers have their boilerplate
// stripped, and the identifier, nested-entity and free-text fields are
// ignored.
//
// Phase 2 groups rows by each strong identifier field in schema order. The
// earliest row of a group survives; every null field of the survivor is
// filled from the later rows (first non-null wins), nested stores are merged
// and deduplicated recursively, and the later rows are dropped.
//
// Identifiers are regenerated afterwards. Running Deduplicate twice yields
// the same rows as running it once.
func (s *Store) Deduplicate() DedupReport {
	report := DedupReport{Before: len(s.rows)}

	s.dedupExact(&report)
	// Folding can give a survivor a value another row already carries, so
	// repeat until a full pass merges nothing.
	for {
		before := report.Merged
		for _, field := range s.schema.StrongIDs {
			s.dedupByField(field, &report)
		}
		if report.Merged == before {
			break
		}
	}

	report.Renamed = s.UpdateIDs()
	report.After = len(s.rows)
	s.index = nil

	s.log.Debug().
		Int("before", report.Before).
		Int("after", report.After).
		Int("exact", report.Exact).
		Int("merged", report.Merged).
		Msg("deduplicated")
	return report
}

// PlanDeduplicate reports what Deduplicate would do without changing the
// store.
func (s *Store) PlanDeduplicate() DedupReport {
	return s.Clone().Deduplicate()
}

func (s *Store) exactKey(r *Record) string {
	var b strings.Builder
	for _, f := range s.schema.Fields {
		switch {
		case f.Name == s.schema.IDField:
			continue
		case f.Type == FieldTypeNested, f.Type == FieldTypeFreeText, f.Type == FieldTypeRaw:
			continue
		}
		b.WriteString(r.comparable(f.Name))
		b.WriteByte('\x1e')
	}
	return b.String()
}

func (s *Store) dedupExact(report *DedupReport) {
	first := make(map[string]*Record, len(s.rows))
	groups := make(map[*Record]*MergeGroup)
	var order []*Record
	drop := make(map[*Record]bool)

	for _, r := range s.rows {
		key := s.exactKey(r)
		survivor, seen := first[key]
		if !seen {
			first[key] = r
			continue
		}
		s.fold(survivor, r)
		drop[r] = true
		g, ok := groups[survivor]
		if !ok {
			g = &MergeGroup{Kept: survivor.ID()}
			groups[survivor] = g
			order = append(order, survivor)
		}
		g.Dropped = append(g.Dropped, r.ID())
	}

	report.Exact += s.filter(func(r *Record) bool { return !drop[r] })
	for _, r := range order {
		report.Groups = append(report.Groups, *groups[r])
	}
}

func (s *Store) dedupByField(field string, report *DedupReport) {
	first := make(map[string]*Record)
	groups := make(map[*Record]*MergeGroup)
	var order []*Record
	drop := make(map[*Record]bool)

	for _, r := range s.rows {
		key := r.comparable(field)
		if key == "" {
			continue
		}
		survivor, seen := first[key]
		if !seen {
			first[key] = r
			continue
		}
		s.fold(survivor, r)
		drop[r] = true
		g, ok := groups[survivor]
		if !ok {
			g = &MergeGroup{Field: field, Key: key, Kept: survivor.ID()}
			groups[survivor] = g
			order = append(order, survivor)
		}
		g.Dropped = append(g.Dropped, r.ID())
	}

	report.Merged += s.filter(func(r *Record) bool { return !drop[r] })
	for _, r := range order {
		report.Groups = append(report.Groups, *groups[r])
	}
}

// fold fills the null fields of dst from src and merges nested stores.
// Derived attributes of src are appended to dst's entity.
func (s *Store) fold(dst, src *Record) {
	for _, f := range s.schema.Fields {
		if f.Name == s.schema.IDField {
			continue
		}
		if f.Type == FieldTypeNested {
			foldNested(dst, src, f.Name)
			continue
		}
		if dst.IsNull(f.Name) && !src.IsNull(f.Name) {
			dst.values[f.Name] = cloneValue(src.values[f.Name])
		}
	}

	if se, ok := s.entities[src]; ok {
		de := s.entity(dst)
		de.Works = append(de.Works, se.Works...)
		de.Cooccurrences = append(de.Cooccurrences, se.Cooccurrences...)
	}
}

func foldNested(dst, src *Record, field string) {
	from := src.Nested(field)
	if from.Len() == 0 {
		return
	}
	into := dst.Nested(field)
	if into.Len() == 0 {
		dst.values[field] = from.Clone()
		return
	}
	into.Merge(from)
	into.Deduplicate()
}
