package main

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matsen/artool/internal/entity"
	"github.com/matsen/artool/internal/graph"
)

func TestCheckWorkspace(t *testing.T) {
	ws := newTestWorkspace(t)
	addReviewWorks(ws)
	g, err := buildGraph(ws, "citation")
	if err != nil {
		t.Fatal(err)
	}
	edges := g.Data().Edges

	t.Run("clean", func(t *testing.T) {
		got := checkWorkspace(ws, edges)
		if got.Status != "ok" {
			t.Errorf("Status = %q, want ok: %+v", got.Status, got)
		}
		if got.Edges.Edges != 4 {
			t.Errorf("Edges.Edges = %d, want 4", got.Edges.Edges)
		}
	})

	t.Run("stale and repeated edges", func(t *testing.T) {
		stale := append(append([]graph.Link(nil), edges...),
			graph.Link{Source: "W:alpha", Target: "W:gone", Type: graph.TypeCites, Weight: 1},
			edges[0],
		)
		got := checkWorkspace(ws, stale)
		if got.Status != "issues_found" {
			t.Errorf("Status = %q, want issues_found", got.Status)
		}
		wantOrphans := []graph.OrphanedEdge{{Source: "W:alpha", Target: "W:gone", Type: graph.TypeCites, Reason: graph.MissingTarget}}
		if diff := cmp.Diff(wantOrphans, got.Edges.Orphaned); diff != "" {
			t.Errorf("Orphaned (-want +got):\n%s", diff)
		}
		if len(got.Edges.Duplicates) != 1 || got.Edges.Duplicates[0].Count != 2 {
			t.Errorf("Duplicates = %+v, want one edge counted twice", got.Edges.Duplicates)
		}
	})

	t.Run("shared identifiers", func(t *testing.T) {
		ws.works().Add(entity.MappingInput{"title": "Bravo"}, entity.Generic)
		got := checkWorkspace(ws, nil)
		if diff := cmp.Diff([]SharedID{{ID: "W:bravo", Rows: 2}}, got.SharedIDs); diff != "" {
			t.Errorf("SharedIDs (-want +got):\n%s", diff)
		}
		if diff := cmp.Diff(map[string]int{"works": 1}, got.PendingMerges); diff != "" {
			t.Errorf("PendingMerges (-want +got):\n%s", diff)
		}
		if got.Status != "issues_found" {
			t.Errorf("Status = %q, want issues_found", got.Status)
		}
		if ws.works().Len() != 4 {
			t.Error("checkWorkspace() modified the store")
		}
	})
}
