// Package graph builds citation, co-occurrence, bipartite and
// shared-neighbour networks over reconciled entities.
package graph

import (
	"errors"
)

// Vertex categories.
const (
	CategoryWork        = "work"
	CategoryAuthor      = "author"
	CategoryFunder      = "funder"
	CategoryAffiliation = "affiliation"
)

// Edge types.
const (
	TypeCites       = "cites"
	TypeCoauthor    = "coauthor"
	TypeCofunder    = "cofunder"
	TypeAuthored    = "authored"
	TypeFunded      = "funded"
	TypeAffiliated  = "affiliated"
	TypeCocitation  = "cocitation"
	TypeCoupling    = "coupling"
	defaultEdgeType = "related"
)

// Validation errors.
var (
	ErrEmptyVertexName = errors.New("vertex name is required")
	ErrSelfEdge        = errors.New("source and target cannot be the same")
)

// Vertex is a named node with a category and free-form attributes.
type Vertex struct {
	Name     string         `json:"name"`
	Category string         `json:"category"`
	Attrs    map[string]any `json:"attrs,omitempty"`
}

// Edge connects two vertices by name.
type Edge struct {
	Source string         `json:"source"`
	Target string         `json:"target"`
	Type   string         `json:"type"`
	Weight float64        `json:"weight"`
	Attrs  map[string]any `json:"attrs,omitempty"`
}

// Key returns the identity of the edge's endpoints. Undirected keys are
// order-independent.
func (e *Edge) Key(directed bool) EdgeKey {
	if !directed && e.Target < e.Source {
		return EdgeKey{Source: e.Target, Target: e.Source}
	}
	return EdgeKey{Source: e.Source, Target: e.Target}
}

// EdgeKey identifies a pair of endpoints.
type EdgeKey struct {
	Source string
	Target string
}

// Graph is a directed or undirected multigraph with named vertices. Vertex
// and edge order is insertion order.
type Graph struct {
	Directed bool

	vertices []*Vertex
	byName   map[string]*Vertex
	edges    []*Edge

	out map[string][]string
	in  map[string][]string
}

// New creates an empty graph.
func New(directed bool) *Graph {
	return &Graph{
		Directed: directed,
		byName:   make(map[string]*Vertex),
		out:      make(map[string][]string),
		in:       make(map[string][]string),
	}
}

// AddVertex adds a vertex or returns the existing one with that name.
// Attributes of an existing vertex are only filled, never overwritten.
func (g *Graph) AddVertex(name, category string, attrs map[string]any) (*Vertex, error) {
	if name == "" {
		return nil, ErrEmptyVertexName
	}
	if v, ok := g.byName[name]; ok {
		if v.Category == "" {
			v.Category = category
		}
		for k, val := range attrs {
			if _, set := v.Attrs[k]; !set {
				if v.Attrs == nil {
					v.Attrs = make(map[string]any)
				}
				v.Attrs[k] = val
			}
		}
		return v, nil
	}
	v := &Vertex{Name: name, Category: category, Attrs: attrs}
	g.vertices = append(g.vertices, v)
	g.byName[name] = v
	return v, nil
}

// Vertex returns the named vertex.
func (g *Graph) Vertex(name string) (*Vertex, bool) {
	v, ok := g.byName[name]
	return v, ok
}

// Vertices returns the vertices in insertion order.
func (g *Graph) Vertices() []*Vertex { return append([]*Vertex(nil), g.vertices...) }

// Edges returns the edges in insertion order.
func (g *Graph) Edges() []*Edge { return append([]*Edge(nil), g.edges...) }

// VertexCount returns the number of vertices.
func (g *Graph) VertexCount() int { return len(g.vertices) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// AddEdge connects source and target, adding missing endpoints as
// uncategorized vertices. Self-loops are rejected.
func (g *Graph) AddEdge(source, target, typ string, weight float64, attrs map[string]any) (*Edge, error) {
	if source == "" || target == "" {
		return nil, ErrEmptyVertexName
	}
	if source == target {
		return nil, ErrSelfEdge
	}
	if typ == "" {
		typ = defaultEdgeType
	}
	if _, err := g.AddVertex(source, "", nil); err != nil {
		return nil, err
	}
	if _, err := g.AddVertex(target, "", nil); err != nil {
		return nil, err
	}
	e := &Edge{Source: source, Target: target, Type: typ, Weight: weight, Attrs: attrs}
	g.edges = append(g.edges, e)
	g.out[source] = appendUnique(g.out[source], target)
	g.in[target] = appendUnique(g.in[target], source)
	return e, nil
}

// Successors returns the distinct targets of edges leaving name. For an
// undirected graph it returns the neighbours.
func (g *Graph) Successors(name string) []string {
	if !g.Directed {
		return g.Neighbors(name)
	}
	return append([]string(nil), g.out[name]...)
}

// Predecessors returns the distinct sources of edges entering name. For an
// undirected graph it returns the neighbours.
func (g *Graph) Predecessors(name string) []string {
	if !g.Directed {
		return g.Neighbors(name)
	}
	return append([]string(nil), g.in[name]...)
}

// Neighbors returns the distinct vertices adjacent to name in either
// direction.
func (g *Graph) Neighbors(name string) []string {
	out := append([]string(nil), g.out[name]...)
	for _, n := range g.in[name] {
		out = appendUnique(out, n)
	}
	return out
}

// Degree returns the number of distinct neighbours of name.
func (g *Graph) Degree(name string) int {
	return len(g.Neighbors(name))
}

// EdgeBetween returns the first edge joining source and target, honouring
// direction for directed graphs.
func (g *Graph) EdgeBetween(source, target string) (*Edge, bool) {
	want := (&Edge{Source: source, Target: target}).Key(g.Directed)
	for _, e := range g.edges {
		if e.Key(g.Directed) == want {
			return e, true
		}
	}
	return nil, false
}

// Simplify merges parallel edges, keeping the first edge seen for each pair
// of endpoints with its attributes, and returns how many edges were removed.
func (g *Graph) Simplify() int {
	seen := make(map[EdgeKey]bool, len(g.edges))
	kept := g.edges[:0]
	removed := 0
	for _, e := range g.edges {
		k := e.Key(g.Directed)
		if seen[k] {
			removed++
			continue
		}
		seen[k] = true
		kept = append(kept, e)
	}
	for i := len(kept); i < len(g.edges); i++ {
		g.edges[i] = nil
	}
	g.edges = kept
	return removed
}

func appendUnique(list []string, v string) []string {
	for _, x := range list {
		if x == v {
			return list
		}
	}
	return append(list, v)
}
