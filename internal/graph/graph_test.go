package graph

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/segmentio/encoding/json"

	"github.com/matsen/artool/internal/entity"
	"github.com/matsen/artool/internal/identity"
	"github.com/matsen/artool/internal/resolve"
)

func citingWorks() *entity.Store {
	works := entity.NewStore(identity.Work)
	works.Add(entity.MappingInput{"title": "Alpha", "citations_data": []any{"Bravo", "Charlie"}}, entity.Generic)
	works.Add(entity.MappingInput{"title": "Delta", "citations_data": []any{"Bravo", "Charlie"}}, entity.Generic)
	works.Add(entity.MappingInput{"title": "Bravo"}, entity.Generic)
	return works
}

type edgeSummary struct {
	Source, Target, Type string
	Weight               float64
}

func summarize(g *Graph) []edgeSummary {
	var out []edgeSummary
	for _, e := range g.Edges() {
		out = append(out, edgeSummary{e.Source, e.Target, e.Type, e.Weight})
	}
	return out
}

func TestCitationGraph(t *testing.T) {
	g := CitationGraph(citingWorks())
	if !g.Directed {
		t.Fatal("citation graph should be directed")
	}

	want := []edgeSummary{
		{"W:alpha", "W:bravo", TypeCites, 1},
		{"W:alpha", "W:charlie", TypeCites, 1},
		{"W:delta", "W:bravo", TypeCites, 1},
		{"W:delta", "W:charlie", TypeCites, 1},
	}
	if diff := cmp.Diff(want, summarize(g)); diff != "" {
		t.Errorf("edges (-want +got):\n%s", diff)
	}
	if g.VertexCount() != 4 {
		t.Errorf("VertexCount() = %d, want 4", g.VertexCount())
	}
	v, _ := g.Vertex("W:charlie")
	if v.Category != CategoryWork {
		t.Errorf("cited-only vertex category = %q, want %q", v.Category, CategoryWork)
	}
}

func TestCitationGraph_SkipsSelfAndUnidentified(t *testing.T) {
	works := entity.NewStore(identity.Work)
	works.Add(entity.MappingInput{
		"title":          "Alpha",
		"citations_data": []any{"Alpha", map[string]any{"volume": "3"}, "Echo"},
	}, entity.Generic)

	g := CitationGraph(works)
	want := []edgeSummary{{"W:alpha", "W:echo", TypeCites, 1}}
	if diff := cmp.Diff(want, summarize(g)); diff != "" {
		t.Errorf("edges (-want +got):\n%s", diff)
	}
	for _, v := range g.Vertices() {
		if identity.IsSentinel(v.Name) {
			t.Errorf("sentinel vertex %q in graph", v.Name)
		}
	}
}

func TestCitationGraph_ResolvesCitedDOI(t *testing.T) {
	works := entity.NewStore(identity.Work)
	works.Add(entity.MappingInput{"title": "Alpha", "citations_data": []any{"10.1000/bravo"}}, entity.Generic)
	bravo := works.Add(entity.MappingInput{"title": "Bravo", "doi": "10.1000/bravo", "date": "2020"}, entity.Generic)

	g := CitationGraph(works)
	if _, ok := g.EdgeBetween("W:alpha", bravo.ID()); !ok {
		t.Errorf("citation by DOI not resolved to %q; edges %v", bravo.ID(), summarize(g))
	}
}

func TestCitationGraph_SkipsYearOnlyCitations(t *testing.T) {
	works := entity.NewStore(identity.Work)
	alpha := works.Add(entity.MappingInput{
		"title": "Alpha",
		"doi":   "10.1/a",
		"citations_data": []any{
			map[string]any{"author": "Smith", "journal-title": "Nature", "year": "2019"},
			map[string]any{"article-title": "Graph Methods", "year": "2019"},
		},
	}, entity.CrossRef)
	works.Add(entity.MappingInput{
		"title": "Delta",
		"doi":   "10.1/d",
		"citations_data": []any{
			map[string]any{"author": "Jones", "journal-title": "Cell", "year": "2019"},
		},
	}, entity.CrossRef)

	citation := CitationGraph(works)
	want := []edgeSummary{{alpha.ID(), "W:graph-methods-2019", TypeCites, 1}}
	if diff := cmp.Diff(want, summarize(citation)); diff != "" {
		t.Errorf("edges (-want +got):\n%s", diff)
	}
	if _, ok := citation.Vertex("W:2019"); ok {
		t.Error("year-only citation added as a vertex")
	}
	if n := BibliographicCoupling(citation).EdgeCount(); n != 0 {
		t.Errorf("coupling edges = %d, want 0", n)
	}
}

func TestBibliographicCoupling(t *testing.T) {
	g := BibliographicCoupling(CitationGraph(citingWorks()))
	if g.Directed {
		t.Fatal("coupling graph should be undirected")
	}
	want := []edgeSummary{{"W:alpha", "W:delta", TypeCoupling, 2}}
	if diff := cmp.Diff(want, summarize(g)); diff != "" {
		t.Errorf("edges (-want +got):\n%s", diff)
	}
}

func TestCocitation(t *testing.T) {
	g := Cocitation(CitationGraph(citingWorks()))
	want := []edgeSummary{{"W:bravo", "W:charlie", TypeCocitation, 2}}
	if diff := cmp.Diff(want, summarize(g)); diff != "" {
		t.Errorf("edges (-want +got):\n%s", diff)
	}
}

func TestCocitation_CopiesVertexAttrs(t *testing.T) {
	citation := CitationGraph(citingWorks())
	derived := Cocitation(citation)

	if _, err := derived.AddVertex("W:bravo", "", map[string]any{"label": "B"}); err != nil {
		t.Fatal(err)
	}
	v, _ := citation.Vertex("W:bravo")
	if _, ok := v.Attrs["label"]; ok {
		t.Errorf("citation graph vertex attrs changed: %v", v.Attrs)
	}
}

func coauthoredWorks() *entity.Store {
	works := entity.NewStore(identity.Work)
	works.Add(entity.MappingInput{"title": "Paper One", "authors": "Jane Doe; John Smith; Ann Lee", "funder": "NIH; NSF"}, entity.Generic)
	works.Add(entity.MappingInput{"title": "Paper Two", "authors": "Jane Doe; John Smith", "funder": "NIH; Wellcome Trust"}, entity.Generic)
	works.Add(entity.MappingInput{"title": "Paper Three", "authors": "Ann Lee; Bob Roe", "funder": "NSF"}, entity.Generic)
	return works
}

func TestCoauthorshipGraph(t *testing.T) {
	works := coauthoredWorks()
	r := resolve.New(nil, nil, nil)
	r.ResolveAll(works)

	g := CoauthorshipGraph(r.Authors, works)
	if g.Directed {
		t.Fatal("coauthorship graph should be undirected")
	}

	tests := []struct {
		a, b   string
		weight float64
	}{
		{"A:jane-doe", "A:john-smith", 2},
		{"A:jane-doe", "A:ann-lee", 1},
		{"A:john-smith", "A:ann-lee", 1},
		{"A:ann-lee", "A:bob-roe", 1},
	}
	for _, tt := range tests {
		t.Run(tt.a+"/"+tt.b, func(t *testing.T) {
			e, ok := g.EdgeBetween(tt.b, tt.a)
			if !ok {
				t.Fatal("edge missing")
			}
			if e.Weight != tt.weight {
				t.Errorf("weight = %v, want %v", e.Weight, tt.weight)
			}
		})
	}
	if g.EdgeCount() != len(tests) {
		t.Errorf("EdgeCount() = %d, want %d", g.EdgeCount(), len(tests))
	}
}

func TestCoauthorshipGraph_NilAuthors(t *testing.T) {
	g := CoauthorshipGraph(nil, coauthoredWorks())
	if g.VertexCount() != 0 || g.EdgeCount() != 0 {
		t.Errorf("graph = %d vertices, %d edges; want empty", g.VertexCount(), g.EdgeCount())
	}
}

func TestCofunderGraph(t *testing.T) {
	works := coauthoredWorks()
	r := resolve.New(nil, nil, nil)
	r.ResolveAll(works)

	g := CofunderGraph(r.Funders, works)
	want := map[string]float64{"F:nih|F:nsf": 1, "F:nih|F:wellcome-trust": 1}
	got := map[string]float64{}
	for _, e := range g.Edges() {
		k := e.Key(false)
		got[k.Source+"|"+k.Target] = e.Weight
		if e.Type != TypeCofunder {
			t.Errorf("edge type = %q", e.Type)
		}
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("edges (-want +got):\n%s", diff)
	}
}

func TestAuthorWorkGraph(t *testing.T) {
	works := coauthoredWorks()
	// A disambiguated copy should collapse onto its base vertex.
	works.Rows()[1].Nested("authors").Rows()[0].Set("author_id", "A:jane-doe#2")

	g := AuthorWorkGraph(works)
	if _, ok := g.Vertex("A:jane-doe#2"); ok {
		t.Error("suffixed identifier not stripped")
	}
	if got := g.Degree("A:jane-doe"); got != 2 {
		t.Errorf("Degree(A:jane-doe) = %d, want 2", got)
	}
	v, _ := g.Vertex("A:bob-roe")
	if v.Category != CategoryAuthor {
		t.Errorf("author category = %q", v.Category)
	}
	if g.EdgeCount() != 7 {
		t.Errorf("EdgeCount() = %d, want 7", g.EdgeCount())
	}
}

func TestFunderWorkGraph(t *testing.T) {
	g := FunderWorkGraph(coauthoredWorks())
	if g.EdgeCount() != 5 {
		t.Errorf("EdgeCount() = %d, want 5", g.EdgeCount())
	}
	if e, ok := g.EdgeBetween("F:nsf", "W:paper-three"); !ok || e.Type != TypeFunded {
		t.Errorf("funded edge missing or mistyped: %+v", e)
	}
}

func TestAuthorAffiliationGraph(t *testing.T) {
	authors := entity.NewStore(identity.Author)
	authors.Add(entity.MappingInput{"full_name": "Jane Doe", "affiliations": "Example University; Other Lab"}, entity.Generic)
	authors.Add(entity.MappingInput{"full_name": "John Smith", "affiliations": "Example University"}, entity.Generic)

	g := AuthorAffiliationGraph(authors)
	if got := g.Degree("AFFIL:example-university"); got != 2 {
		t.Errorf("Degree = %d, want 2", got)
	}
	v, _ := g.Vertex("AFFIL:other-lab")
	if v == nil || v.Category != CategoryAffiliation {
		t.Errorf("affiliation vertex = %+v", v)
	}
}

func TestGraph_AddEdge(t *testing.T) {
	tests := []struct {
		name    string
		source  string
		target  string
		wantErr error
	}{
		{"valid", "a", "b", nil},
		{"empty source", "", "b", ErrEmptyVertexName},
		{"empty target", "a", "", ErrEmptyVertexName},
		{"self edge", "a", "a", ErrSelfEdge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := New(true)
			_, err := g.AddEdge(tt.source, tt.target, "", 1, nil)
			if err != tt.wantErr {
				t.Errorf("AddEdge() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestGraph_Simplify(t *testing.T) {
	g := New(false)
	_, _ = g.AddEdge("a", "b", TypeCoauthor, 2, map[string]any{"first": true})
	_, _ = g.AddEdge("b", "a", TypeCoauthor, 2, nil)
	_, _ = g.AddEdge("a", "c", TypeCoauthor, 1, nil)

	if removed := g.Simplify(); removed != 1 {
		t.Errorf("Simplify() removed %d, want 1", removed)
	}
	e, _ := g.EdgeBetween("b", "a")
	if e.Attrs["first"] != true {
		t.Error("Simplify should keep the first edge's attributes")
	}

	d := New(true)
	_, _ = d.AddEdge("a", "b", TypeCites, 1, nil)
	_, _ = d.AddEdge("b", "a", TypeCites, 1, nil)
	if removed := d.Simplify(); removed != 0 {
		t.Errorf("directed Simplify() removed %d, want 0", removed)
	}
}

func TestGraph_AddVertexFillsAttrs(t *testing.T) {
	g := New(false)
	_, _ = g.AddVertex("a", CategoryWork, map[string]any{"title": "First"})
	_, _ = g.AddVertex("a", CategoryAuthor, map[string]any{"title": "Second", "date": "2020"})

	v, _ := g.Vertex("a")
	want := &Vertex{Name: "a", Category: CategoryWork, Attrs: map[string]any{"title": "First", "date": "2020"}}
	if diff := cmp.Diff(want, v); diff != "" {
		t.Errorf("vertex (-want +got):\n%s", diff)
	}
}

func TestData_RoundTrip(t *testing.T) {
	g := CitationGraph(citingWorks())
	data, err := g.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}

	var d GraphData
	if err := json.Unmarshal(data, &d); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if !d.Directed || len(d.Nodes) != 4 || len(d.Edges) != 4 {
		t.Fatalf("decoded graph = %d nodes, %d edges, directed %v", len(d.Nodes), len(d.Edges), d.Directed)
	}
	if d.Nodes[0].Label != "Alpha" {
		t.Errorf("label = %q, want Alpha", d.Nodes[0].Label)
	}

	back := FromData(&d)
	if diff := cmp.Diff(summarize(g), summarize(back)); diff != "" {
		t.Errorf("FromData (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{CategoryWork}, d.Categories()); diff != "" {
		t.Errorf("Categories (-want +got):\n%s", diff)
	}
}

func TestToCytoscapeJSON(t *testing.T) {
	d := CitationGraph(citingWorks()).Data()
	out, err := d.ToCytoscapeJSON()
	if err != nil {
		t.Fatalf("ToCytoscapeJSON() error = %v", err)
	}

	var elements CytoscapeElements
	if err := json.Unmarshal([]byte(out), &elements); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if len(elements.Nodes) != 4 || len(elements.Edges) != 4 {
		t.Errorf("elements = %d nodes, %d edges", len(elements.Nodes), len(elements.Edges))
	}
	if got := elements.Edges[0].Data.ID; got != "W:alpha-W:bravo-cites-0" {
		t.Errorf("edge id = %q", got)
	}
}

func TestGenerateHTML(t *testing.T) {
	d := CitationGraph(citingWorks()).Data()

	t.Run("renders graph", func(t *testing.T) {
		html, err := GenerateHTML(d, DefaultOptions())
		if err != nil {
			t.Fatalf("GenerateHTML() error = %v", err)
		}
		for _, want := range []string{"cytoscape", "W:alpha", `name: layout`, `"cose"`} {
			if !strings.Contains(html, want) {
				t.Errorf("output missing %q", want)
			}
		}
	})

	t.Run("empty graph", func(t *testing.T) {
		html, err := GenerateHTML(&GraphData{}, DefaultOptions())
		if err != nil {
			t.Fatalf("GenerateHTML() error = %v", err)
		}
		if !strings.Contains(html, "art import") {
			t.Error("empty page should point at art import")
		}
	})

	t.Run("invalid layout", func(t *testing.T) {
		if _, err := GenerateHTML(d, HTMLOptions{Layout: "spiral"}); err == nil {
			t.Error("expected error for invalid layout")
		}
	})

	t.Run("nil graph", func(t *testing.T) {
		if _, err := GenerateHTML(nil, DefaultOptions()); err == nil {
			t.Error("expected error for nil graph")
		}
	})
}

func TestCheck(t *testing.T) {
	valid := map[string]bool{"W:a": true, "W:b": true}
	edges := []Link{
		{Source: "W:a", Target: "W:b", Type: TypeCites},
		{Source: "W:a", Target: "W:b", Type: TypeCites},
		{Source: "W:a", Target: "W:gone", Type: TypeCites},
		{Source: "W:gone", Target: "W:b", Type: TypeCites},
		{Source: "W:x", Target: "W:y", Type: TypeCites},
	}

	report := Check(edges, valid)
	if report.OK() {
		t.Fatal("report should not be OK")
	}
	wantReasons := []string{MissingTarget, MissingSource, MissingBoth}
	var gotReasons []string
	for _, o := range report.Orphaned {
		gotReasons = append(gotReasons, o.Reason)
	}
	if diff := cmp.Diff(wantReasons, gotReasons); diff != "" {
		t.Errorf("orphan reasons (-want +got):\n%s", diff)
	}
	wantDup := []DuplicateEdge{{Source: "W:a", Target: "W:b", Type: TypeCites, Count: 2}}
	if diff := cmp.Diff(wantDup, report.Duplicates); diff != "" {
		t.Errorf("duplicates (-want +got):\n%s", diff)
	}

	if !Check(edges[:1], valid).OK() {
		t.Error("single valid edge should be OK")
	}
}
