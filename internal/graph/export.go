package graph

import (
	"fmt"
	"sort"

	"github.com/segmentio/encoding/json"

	"github.com/matsen/artool/internal/identity"
)

// GraphData is the serializable form of a graph.
type GraphData struct {
	Directed bool   `json:"directed"`
	Nodes    []Node `json:"nodes"`
	Edges    []Link `json:"edges"`
}

// Node is a vertex prepared for export.
type Node struct {
	ID       string         `json:"id"`
	Category string         `json:"category"`
	Label    string         `json:"label"`
	Degree   int            `json:"degree"`
	Attrs    map[string]any `json:"attrs,omitempty"`
}

// Link is an edge prepared for export.
type Link struct {
	Source string  `json:"source"`
	Target string  `json:"target"`
	Type   string  `json:"type"`
	Weight float64 `json:"weight"`
}

// IsEmpty returns true if the graph has no nodes.
func (d *GraphData) IsEmpty() bool {
	return len(d.Nodes) == 0
}

// Data converts the graph to its serializable form.
func (g *Graph) Data() *GraphData {
	d := &GraphData{
		Directed: g.Directed,
		Nodes:    make([]Node, 0, len(g.vertices)),
		Edges:    make([]Link, 0, len(g.edges)),
	}
	for _, v := range g.vertices {
		d.Nodes = append(d.Nodes, Node{
			ID:       v.Name,
			Category: v.Category,
			Label:    label(v),
			Degree:   g.Degree(v.Name),
			Attrs:    v.Attrs,
		})
	}
	for _, e := range g.edges {
		d.Edges = append(d.Edges, Link{Source: e.Source, Target: e.Target, Type: e.Type, Weight: e.Weight})
	}
	return d
}

// label picks a short display name for a vertex.
func label(v *Vertex) string {
	for _, k := range []string{"title", "full_name", "name"} {
		if s := identity.Scalar(v.Attrs[k]); s != "" {
			if r := []rune(s); len(r) > 40 {
				return string(r[:37]) + "..."
			}
			return s
		}
	}
	return v.Name
}

// ToJSON encodes the graph as GraphData JSON.
func (g *Graph) ToJSON() ([]byte, error) {
	data, err := json.Marshal(g.Data())
	if err != nil {
		return nil, fmt.Errorf("marshaling graph to JSON: %w", err)
	}
	return data, nil
}

// FromData rebuilds a graph from its serializable form.
func FromData(d *GraphData) *Graph {
	g := New(d.Directed)
	for _, n := range d.Nodes {
		_, _ = g.AddVertex(n.ID, n.Category, n.Attrs)
	}
	for _, l := range d.Edges {
		_, _ = g.AddEdge(l.Source, l.Target, l.Type, l.Weight, nil)
	}
	return g
}

// CytoscapeElements represents the Cytoscape.js data format.
type CytoscapeElements struct {
	Nodes []CytoscapeNode `json:"nodes"`
	Edges []CytoscapeEdge `json:"edges"`
}

// CytoscapeNode represents a node in Cytoscape.js format.
type CytoscapeNode struct {
	Data Node `json:"data"`
}

// CytoscapeEdge represents an edge in Cytoscape.js format.
type CytoscapeEdge struct {
	Data CytoscapeEdgeData `json:"data"`
}

// CytoscapeEdgeData contains the edge data fields.
type CytoscapeEdgeData struct {
	ID     string  `json:"id"`
	Source string  `json:"source"`
	Target string  `json:"target"`
	Type   string  `json:"type"`
	Weight float64 `json:"weight"`
}

// ToCytoscapeJSON converts GraphData to Cytoscape.js JSON format.
func (d *GraphData) ToCytoscapeJSON() (string, error) {
	elements := CytoscapeElements{
		Nodes: make([]CytoscapeNode, 0, len(d.Nodes)),
		Edges: make([]CytoscapeEdge, 0, len(d.Edges)),
	}
	for _, n := range d.Nodes {
		elements.Nodes = append(elements.Nodes, CytoscapeNode{Data: n})
	}
	for i, e := range d.Edges {
		elements.Edges = append(elements.Edges, CytoscapeEdge{
			Data: CytoscapeEdgeData{
				ID:     edgeID(e.Source, e.Target, e.Type, i),
				Source: e.Source,
				Target: e.Target,
				Type:   e.Type,
				Weight: e.Weight,
			},
		})
	}

	jsonBytes, err := json.Marshal(elements)
	if err != nil {
		return "", fmt.Errorf("marshaling Cytoscape elements to JSON: %w", err)
	}
	return string(jsonBytes), nil
}

// edgeID generates an edge ID for one export. IDs are based on slice
// position and are not stable across builds.
func edgeID(source, target, typ string, index int) string {
	return fmt.Sprintf("%s-%s-%s-%d", source, target, typ, index)
}

// Categories returns the distinct vertex categories, sorted.
func (d *GraphData) Categories() []string {
	seen := make(map[string]bool)
	var out []string
	for _, n := range d.Nodes {
		if n.Category != "" && !seen[n.Category] {
			seen[n.Category] = true
			out = append(out, n.Category)
		}
	}
	sort.Strings(out)
	return out
}
