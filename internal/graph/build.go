package graph

import (
	"maps"

	"github.com/matsen/artool/internal/entity"
	"github.com/matsen/artool/internal/identity"
	"github.com/matsen/artool/internal/resolve"
)

// attrFields are copied from records onto vertices.
var attrFields = map[identity.Kind][]string{
	identity.Work:        {"title", "date", "source", "type", "doi", "citation_count"},
	identity.Author:      {"full_name", "orcid", "email"},
	identity.Funder:      {"name", "location", "uri"},
	identity.Affiliation: {"name", "location", "uri"},
}

var categories = map[identity.Kind]string{
	identity.Work:        CategoryWork,
	identity.Author:      CategoryAuthor,
	identity.Funder:      CategoryFunder,
	identity.Affiliation: CategoryAffiliation,
}

func recordAttrs(r *entity.Record) map[string]any {
	attrs := make(map[string]any)
	for _, f := range attrFields[r.Kind()] {
		if !r.IsNull(f) {
			attrs[f] = r.Get(f)
		}
	}
	return attrs
}

func addRecordVertex(g *Graph, name string, r *entity.Record) {
	// AddVertex only fails on an empty name, which callers exclude.
	_, _ = g.AddVertex(name, categories[r.Kind()], recordAttrs(r))
}

// CitationGraph builds a directed graph with an edge from each work to every
// work it cites. Citations that cannot be identified or that point back at
// the citing work are skipped. A citation with neither a title nor a strong
// identifier counts as unidentified even though its date alone yields an ID. A cited work found in works (by identifier,
// strong identifier or title) takes that row's identifier and attributes.
func CitationGraph(works *entity.Store) *Graph {
	g := New(true)
	for _, w := range works.Rows() {
		if identity.IsSentinel(w.ID()) {
			continue
		}
		addRecordVertex(g, w.ID(), w)
	}

	for _, w := range works.Rows() {
		source := w.ID()
		if identity.IsSentinel(source) {
			continue
		}
		for _, c := range w.Citations().Rows() {
			if unidentified(c) {
				continue
			}
			target, row := c.ID(), c
			if e, ok := resolve.Find(works, c); ok {
				target, row = e.ID(), e.Record
			}
			if identity.IsSentinel(target) || target == source {
				continue
			}
			addRecordVertex(g, target, row)
			_, _ = g.AddEdge(source, target, TypeCites, 1, nil)
		}
	}
	return g
}

// unidentified reports whether r has no name and no strong identifier, so its
// ID is at most a bare year shared by unrelated works.
func unidentified(r *entity.Record) bool {
	return r.Name() == "" && identity.UniqueFragment(r.Kind(), r.Fields()) == ""
}

// CoauthorshipGraph builds an undirected graph joining authors who share
// works, weighted by the number of shared works.
func CoauthorshipGraph(authors, works *entity.Store) *Graph {
	r := resolve.New(authors, nil, nil)
	return cooccurrenceGraph(authors, works, TypeCoauthor, r.Coauthors)
}

// CofunderGraph builds an undirected graph joining funders of the same
// works, weighted by the number of shared works.
func CofunderGraph(funders, works *entity.Store) *Graph {
	r := resolve.New(nil, funders, nil)
	return cooccurrenceGraph(funders, works, TypeCofunder, r.Cofunders)
}

type cooccurrenceFunc func(*entity.Entity, *entity.Store) []entity.Cooccurrence

func cooccurrenceGraph(store, works *entity.Store, typ string, cooccur cooccurrenceFunc) *Graph {
	g := New(false)
	for _, e := range store.Entities() {
		if identity.IsSentinel(e.ID()) {
			continue
		}
		addRecordVertex(g, e.ID(), e.Record)
	}
	for _, e := range store.Entities() {
		if identity.IsSentinel(e.ID()) {
			continue
		}
		for _, c := range cooccur(e, works) {
			if identity.IsSentinel(c.ID) {
				continue
			}
			if _, ok := g.Vertex(c.ID); !ok {
				_, _ = g.AddVertex(c.ID, categories[store.Kind()], map[string]any{"name": c.Name})
			}
			_, _ = g.AddEdge(e.ID(), c.ID, typ, float64(c.Frequency), nil)
		}
	}
	g.Simplify()
	return g
}

// AuthorWorkGraph builds a bipartite graph between works and their authors.
func AuthorWorkGraph(works *entity.Store) *Graph {
	return bipartite(works, "authors", TypeAuthored)
}

// FunderWorkGraph builds a bipartite graph between works and their funders.
func FunderWorkGraph(works *entity.Store) *Graph {
	return bipartite(works, "funder", TypeFunded)
}

// AuthorAffiliationGraph builds a bipartite graph between authors and their
// affiliations.
func AuthorAffiliationGraph(authors *entity.Store) *Graph {
	return bipartite(authors, "affiliations", TypeAffiliated)
}

// bipartite joins each row of store to the rows of its nested field.
// Identifiers are stripped of "#N" suffixes so that disambiguated copies
// share a vertex.
func bipartite(store *entity.Store, field, typ string) *Graph {
	g := New(false)
	for _, r := range store.Rows() {
		source := identity.StripSuffix(r.ID())
		if identity.IsSentinel(source) {
			continue
		}
		addRecordVertex(g, source, r)
		for _, n := range r.Nested(field).Rows() {
			target := identity.StripSuffix(n.ID())
			if identity.IsSentinel(target) {
				continue
			}
			addRecordVertex(g, target, n)
			_, _ = g.AddEdge(source, target, typ, 1, nil)
		}
	}
	g.Simplify()
	return g
}

// Cocitation derives an undirected graph from a citation graph in which two
// works are joined when some work cites both. The weight is the number of
// distinct works citing the pair.
func Cocitation(citation *Graph) *Graph {
	return sharedNeighbours(citation, TypeCocitation, citation.Successors)
}

// BibliographicCoupling derives an undirected graph from a citation graph in
// which two works are joined when they cite a common work. The weight is the
// number of distinct works both cite.
func BibliographicCoupling(citation *Graph) *Graph {
	return sharedNeighbours(citation, TypeCoupling, citation.Predecessors)
}

// sharedNeighbours joins every pair in group(v) for each vertex v, counting
// each distinct v once per pair.
func sharedNeighbours(citation *Graph, typ string, group func(string) []string) *Graph {
	g := New(false)
	for _, v := range citation.vertices {
		_, _ = g.AddVertex(v.Name, v.Category, maps.Clone(v.Attrs))
	}

	shared := make(map[EdgeKey]map[string]bool)
	var order []EdgeKey
	for _, v := range citation.vertices {
		members := group(v.Name)
		for i := 0; i < len(members); i++ {
			for j := i + 1; j < len(members); j++ {
				k := (&Edge{Source: members[i], Target: members[j]}).Key(false)
				if shared[k] == nil {
					shared[k] = make(map[string]bool)
					order = append(order, k)
				}
				shared[k][v.Name] = true
			}
		}
	}

	for _, k := range order {
		_, _ = g.AddEdge(k.Source, k.Target, typ, float64(len(shared[k])), nil)
	}
	return g
}
