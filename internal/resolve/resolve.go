// Package resolve links the authors, funders and affiliations embedded in
// works to top-level entity stores and derives co-occurrence counts.
package resolve

import (
	"sort"
	"strings"

	"github.com/matsen/artool/internal/author"
	"github.com/matsen/artool/internal/entity"
	"github.com/matsen/artool/internal/identity"
)

// Resolver reconciles nested entities against top-level stores.
type Resolver struct {
	Authors      *entity.Store
	Funders      *entity.Store
	Affiliations *entity.Store
}

// New creates a resolver. Nil stores are replaced with empty ones.
func New(authors, funders, affiliations *entity.Store) *Resolver {
	if authors == nil {
		authors = entity.NewStore(identity.Author)
	}
	if funders == nil {
		funders = entity.NewStore(identity.Funder)
	}
	if affiliations == nil {
		affiliations = entity.NewStore(identity.Affiliation)
	}
	return &Resolver{Authors: authors, Funders: funders, Affiliations: affiliations}
}

// Resolution lists the top-level identifiers a work was linked to.
type Resolution struct {
	WorkID       string   `json:"work_id"`
	Authors      []string `json:"authors,omitempty"`
	Funders      []string `json:"funders,omitempty"`
	Affiliations []string `json:"affiliations,omitempty"`
	Created      int      `json:"created"`
}

// ResolveWork links the work's authors, funders and affiliations (including
// the affiliations of its authors) to the resolver's stores, adding entities
// that are not yet known. The work's identifier is recorded in each author's
// publications and each funder's funded_works.
func (r *Resolver) ResolveWork(work *entity.Record) Resolution {
	res := Resolution{WorkID: work.ID()}

	for _, row := range work.Nested("authors").Rows() {
		e, created := r.link(r.Authors, row)
		res.Authors = appendUnique(res.Authors, e.ID())
		appendListValue(e.Record, "publications", work.ID())
		if created {
			res.Created++
		}
		for _, aff := range row.Nested("affiliations").Rows() {
			ae, created := r.link(r.Affiliations, aff)
			res.Affiliations = appendUnique(res.Affiliations, ae.ID())
			if created {
				res.Created++
			}
		}
	}
	for _, row := range work.Nested("funder").Rows() {
		e, created := r.link(r.Funders, row)
		res.Funders = appendUnique(res.Funders, e.ID())
		appendListValue(e.Record, "funded_works", work.ID())
		if created {
			res.Created++
		}
	}
	for _, row := range work.Nested("affiliations").Rows() {
		e, created := r.link(r.Affiliations, row)
		res.Affiliations = appendUnique(res.Affiliations, e.ID())
		if created {
			res.Created++
		}
	}
	return res
}

// ResolveAll resolves every work in the store.
func (r *Resolver) ResolveAll(works *entity.Store) []Resolution {
	var out []Resolution
	for _, w := range works.Rows() {
		out = append(out, r.ResolveWork(w))
	}
	return out
}

// link finds row in store or appends a copy of it.
func (r *Resolver) link(store *entity.Store, row *entity.Record) (*entity.Entity, bool) {
	if e, ok := Find(store, row); ok {
		return e, false
	}
	return store.AddRecord(row.Clone()), true
}

// Find locates the entity in store that row refers to: by identifier, then
// by any strong identifier, then by case-insensitive name.
func Find(store *entity.Store, row *entity.Record) (*entity.Entity, bool) {
	if id := row.ID(); !identity.IsSentinel(id) {
		if e, ok := store.Get(id); ok {
			return e, true
		}
	}

	schema := store.Schema()
	for _, field := range schema.StrongIDs {
		key := identity.NormalizeKey(row.Text(field))
		if key == "" {
			continue
		}
		for _, cand := range store.Rows() {
			if identity.NormalizeKey(cand.Text(field)) == key {
				return store.EntityOf(cand)
			}
		}
	}

	name := usableName(row)
	if name == "" {
		return nil, false
	}
	for _, cand := range store.Rows() {
		if strings.EqualFold(usableName(cand), name) {
			return store.EntityOf(cand)
		}
	}
	return nil, false
}

func usableName(r *entity.Record) string {
	name := strings.TrimSpace(r.Name())
	if name == identity.NoNameGiven {
		return ""
	}
	return name
}

// Match is a work linked to an entity and the field that linked them.
type Match struct {
	Work *entity.Record
	By   string
}

// WorksOf returns the works that mention e and attaches them to the entity.
// Identifying fields are tried in priority order: identifier, strong
// identifiers, then name containment.
func WorksOf(e *entity.Entity, works *entity.Store) []Match {
	var matches []Match
	var recs []*entity.Record
	for _, w := range works.Rows() {
		for _, cand := range candidates(e.Record.Kind(), w) {
			if by := matchBy(e.Record, cand); by != "" {
				matches = append(matches, Match{Work: w, By: by})
				recs = append(recs, w)
				break
			}
		}
	}
	e.Works = recs
	return matches
}

// candidates returns the nested rows of w that could refer to an entity of
// kind.
func candidates(kind identity.Kind, w *entity.Record) []*entity.Record {
	switch kind {
	case identity.Author:
		return w.Nested("authors").Rows()
	case identity.Funder:
		return w.Nested("funder").Rows()
	case identity.Affiliation:
		rows := w.Nested("affiliations").Rows()
		for _, a := range w.Nested("authors").Rows() {
			rows = append(rows, a.Nested("affiliations").Rows()...)
		}
		return rows
	}
	return nil
}

// matchBy reports which identifying field of self matches cand, or "".
func matchBy(self, cand *entity.Record) string {
	if id := self.ID(); !identity.IsSentinel(id) && strings.EqualFold(id, cand.ID()) {
		return self.Schema().IDField
	}
	for _, field := range self.Schema().StrongIDs {
		key := identity.NormalizeKey(self.Text(field))
		if key != "" && key == identity.NormalizeKey(cand.Text(field)) {
			return field
		}
	}

	name := strings.ToLower(usableName(self))
	if name == "" {
		return ""
	}
	candName := strings.ToLower(usableName(cand))
	if candName != "" && strings.Contains(candName, name) {
		return self.Schema().NameField
	}
	if self.Kind() == identity.Author {
		q := author.Query{First: self.Text("given_name"), Last: self.Text("family_name")}
		n := author.Name{Given: cand.Text("given_name"), Family: cand.Text("family_name")}
		if q.Matches(n) {
			return self.Schema().NameField
		}
	}
	return ""
}

// Cooccurrences counts, for every other entity appearing alongside e on the
// works that mention e, the number of distinct works they share. Rows that
// match e itself are excluded. Co-occurring rows are mapped onto the
// resolver's stores when possible so that variants of one person count
// together. The result is sorted by descending frequency, ties in
// first-seen order, and attached to e.
func (r *Resolver) Cooccurrences(e *entity.Entity, works *entity.Store) []entity.Cooccurrence {
	store := r.storeFor(e.Record.Kind())

	counts := make(map[string]*entity.Cooccurrence)
	var order []string
	for _, m := range WorksOf(e, works) {
		seen := make(map[string]bool)
		for _, cand := range candidates(e.Record.Kind(), m.Work) {
			if matchBy(e.Record, cand) != "" {
				continue
			}
			id, name := cand.ID(), cand.Name()
			if store != nil {
				if ce, ok := Find(store, cand); ok {
					if ce.Record == e.Record {
						continue
					}
					id, name = ce.ID(), ce.Record.Name()
				}
			}
			key := id
			if identity.IsSentinel(id) {
				key = strings.ToLower(name)
			}
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true

			c, ok := counts[key]
			if !ok {
				c = &entity.Cooccurrence{ID: id, Name: name}
				counts[key] = c
				order = append(order, key)
			}
			c.Frequency++
		}
	}

	out := make([]entity.Cooccurrence, 0, len(order))
	for _, key := range order {
		out = append(out, *counts[key])
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Frequency > out[j].Frequency })
	e.Cooccurrences = out
	return out
}

// Coauthors returns the co-authors of an author entity.
func (r *Resolver) Coauthors(e *entity.Entity, works *entity.Store) []entity.Cooccurrence {
	return r.Cooccurrences(e, works)
}

// Cofunders returns the funders that co-fund works with a funder entity.
func (r *Resolver) Cofunders(e *entity.Entity, works *entity.Store) []entity.Cooccurrence {
	return r.Cooccurrences(e, works)
}

func (r *Resolver) storeFor(kind identity.Kind) *entity.Store {
	switch kind {
	case identity.Author:
		return r.Authors
	case identity.Funder:
		return r.Funders
	case identity.Affiliation:
		return r.Affiliations
	}
	return nil
}

func appendUnique(list []string, v string) []string {
	for _, x := range list {
		if x == v {
			return list
		}
	}
	return append(list, v)
}

func appendListValue(r *entity.Record, field, v string) {
	if identity.IsSentinel(v) {
		return
	}
	list := r.List(field)
	for _, x := range list {
		if x == v {
			return
		}
	}
	r.Set(field, append(append([]string(nil), list...), v))
}
