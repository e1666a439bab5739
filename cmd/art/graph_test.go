package main

import (
	"strings"
	"testing"

	"github.com/segmentio/encoding/json"

	"github.com/matsen/artool/internal/graph"
)

func TestBuildGraph(t *testing.T) {
	ws := newTestWorkspace(t)
	addReviewWorks(ws)
	resolveWorks(ws)

	tests := []struct {
		name      string
		wantEdges int
		directed  bool
	}{
		{"citation", 4, true},
		{"cocitation", 1, false},
		{"coupling", 1, false},
		{"coauthorship", 2, false},
		{"cofunder", 1, false},
		{"author-work", 4, false},
		{"funder-work", 3, false},
		{"author-affiliation", 0, false},
	}
	if len(tests) != len(graphBuilders) {
		t.Fatalf("%d graph types tested, %d registered", len(tests), len(graphBuilders))
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := buildGraph(ws, tt.name)
			if err != nil {
				t.Fatalf("buildGraph() error = %v", err)
			}
			if g.EdgeCount() != tt.wantEdges {
				t.Errorf("EdgeCount() = %d, want %d", g.EdgeCount(), tt.wantEdges)
			}
			if g.Directed != tt.directed {
				t.Errorf("Directed = %v, want %v", g.Directed, tt.directed)
			}
		})
	}

	if _, err := buildGraph(ws, "citations"); err == nil || !strings.Contains(err.Error(), "author-work") {
		t.Errorf("buildGraph(unknown) error = %v, want list of valid types", err)
	}
}

func TestRenderGraph(t *testing.T) {
	ws := newTestWorkspace(t)
	addReviewWorks(ws)
	g, err := buildGraph(ws, "citation")
	if err != nil {
		t.Fatal(err)
	}

	t.Run("json", func(t *testing.T) {
		out, err := renderGraph(g, "citation", "json", "force")
		if err != nil {
			t.Fatalf("renderGraph() error = %v", err)
		}
		var d graph.GraphData
		if err := json.Unmarshal([]byte(out), &d); err != nil {
			t.Fatalf("output is not GraphData JSON: %v", err)
		}
		if len(d.Nodes) != 4 || len(d.Edges) != 4 || !d.Directed {
			t.Errorf("decoded %d nodes, %d edges, directed %v", len(d.Nodes), len(d.Edges), d.Directed)
		}
	})

	t.Run("cytoscape", func(t *testing.T) {
		out, err := renderGraph(g, "citation", "cytoscape", "force")
		if err != nil {
			t.Fatalf("renderGraph() error = %v", err)
		}
		var el graph.CytoscapeElements
		if err := json.Unmarshal([]byte(out), &el); err != nil {
			t.Fatalf("output is not Cytoscape JSON: %v", err)
		}
		if len(el.Edges) != 4 {
			t.Errorf("decoded %d edges, want 4", len(el.Edges))
		}
	})

	t.Run("html", func(t *testing.T) {
		out, err := renderGraph(g, "citation", "html", "circle")
		if err != nil {
			t.Fatalf("renderGraph() error = %v", err)
		}
		if !strings.Contains(out, "<title>citation network</title>") {
			t.Error("html output missing title")
		}
	})

	t.Run("errors", func(t *testing.T) {
		if _, err := renderGraph(g, "citation", "graphml", "force"); err == nil {
			t.Error("unknown format should fail")
		}
		if _, err := renderGraph(g, "citation", "html", "spiral"); err == nil {
			t.Error("unknown layout should fail")
		}
	})
}
