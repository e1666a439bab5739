package storage

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/segmentio/encoding/json"

	"github.com/matsen/artool/internal/entity"
	"github.com/matsen/artool/internal/graph"
	"github.com/matsen/artool/internal/identity"
)

func setupTestDB(t *testing.T) (*DB, *entity.Store, *entity.Store) {
	t.Helper()

	db, err := OpenDB(filepath.Join(t.TempDir(), "art.db"))
	if err != nil {
		t.Fatalf("Failed to open test DB: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	works := testWorks()
	authors := entity.NewStore(identity.Author)
	authors.Add(entity.MappingInput{"full_name": "Jane Doe", "orcid": "https://orcid.org/0000-0001-2345-6789"}, entity.Generic)
	authors.Add(entity.MappingInput{"full_name": "John Smith"}, entity.Generic)

	n, err := db.Rebuild(works, authors)
	if err != nil {
		t.Fatalf("Rebuild() error = %v", err)
	}
	if n != 4 {
		t.Fatalf("Rebuild() = %d, want 4", n)
	}
	return db, works, authors
}

func TestDB_Count(t *testing.T) {
	db, _, _ := setupTestDB(t)

	tests := []struct {
		kind identity.Kind
		want int
	}{
		{identity.Work, 2},
		{identity.Author, 2},
		{identity.Funder, 0},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			got, err := db.Count(tt.kind)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("Count() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestDB_RebuildReplaces(t *testing.T) {
	db, works, _ := setupTestDB(t)

	if _, err := db.Rebuild(works); err != nil {
		t.Fatal(err)
	}
	if n, _ := db.Count(identity.Author); n != 0 {
		t.Errorf("authors after rebuild = %d, want 0", n)
	}
	ids, err := db.ListIDs(identity.Work)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(works.IDs(), ids); diff != "" {
		t.Errorf("ListIDs (-want +got):\n%s", diff)
	}
}

func TestDB_GetRecordJSON(t *testing.T) {
	db, works, _ := setupTestDB(t)
	id := works.IDs()[0]

	data, err := db.GetRecordJSON(id)
	if err != nil {
		t.Fatalf("GetRecordJSON() error = %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("stored JSON invalid: %v", err)
	}
	if m["title"] != "Deep Learning Basics" || m["work_id"] != id {
		t.Errorf("record = %v", m)
	}

	data, err = db.GetRecordJSON("W:missing")
	if err != nil || data != nil {
		t.Errorf("GetRecordJSON(missing) = %q, %v; want nil, nil", data, err)
	}

	if _, err := db.GetRecordJSON("X:bad"); err == nil {
		t.Error("GetRecordJSON() should reject unknown prefixes")
	}
}

func TestDB_FindByStrongID(t *testing.T) {
	db, works, authors := setupTestDB(t)

	tests := []struct {
		name  string
		value string
		want  []string
	}{
		{"bare doi", "10.1000/xyz123", []string{works.IDs()[0]}},
		{"doi url", "https://doi.org/10.1000/XYZ123", []string{works.IDs()[0]}},
		{"orcid", "0000-0001-2345-6789", []string{authors.IDs()[0]}},
		{"unknown", "10.9999/none", nil},
		{"empty", "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hits, err := db.FindByStrongID(tt.value)
			if err != nil {
				t.Fatal(err)
			}
			var got []string
			for _, h := range hits {
				got = append(got, h.ID)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("FindByStrongID (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDB_SearchByName(t *testing.T) {
	db, _, _ := setupTestDB(t)
	author := identity.Author

	tests := []struct {
		name  string
		query string
		kind  *identity.Kind
		want  []string
	}{
		{"prefix", "deep learn", nil, []string{"Deep Learning Basics"}},
		{"author", "jane", &author, []string{"Jane Doe"}},
		{"kind filter", "deep", &author, nil},
		{"quotes escaped", `"graph`, nil, []string{"Graph Methods"}},
		{"empty", "  ", nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hits, err := db.SearchByName(tt.query, tt.kind, 10)
			if err != nil {
				t.Fatalf("SearchByName() error = %v", err)
			}
			var got []string
			for _, h := range hits {
				got = append(got, h.Name)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("SearchByName (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDB_InsertGraph(t *testing.T) {
	db, _, _ := setupTestDB(t)

	g := graph.New(true)
	_, _ = g.AddEdge("W:a", "W:b", graph.TypeCites, 1, nil)
	_, _ = g.AddEdge("W:a", "W:c", graph.TypeCites, 1, nil)

	n, err := db.InsertGraph("citation", g)
	if err != nil {
		t.Fatalf("InsertGraph() error = %v", err)
	}
	if n != 2 {
		t.Errorf("InsertGraph() = %d, want 2", n)
	}

	coupling := graph.New(false)
	_, _ = coupling.AddEdge("W:b", "W:c", graph.TypeCoupling, 3, nil)
	if _, err := db.InsertGraph("coupling", coupling); err != nil {
		t.Fatal(err)
	}

	// Re-inserting replaces the stored graph.
	g2 := graph.New(true)
	_, _ = g2.AddEdge("W:a", "W:d", graph.TypeCites, 1, nil)
	if _, err := db.InsertGraph("citation", g2); err != nil {
		t.Fatal(err)
	}

	edges, err := db.EdgesByGraph("citation")
	if err != nil {
		t.Fatal(err)
	}
	want := []graph.Link{{Source: "W:a", Target: "W:d", Type: graph.TypeCites, Weight: 1}}
	if diff := cmp.Diff(want, edges); diff != "" {
		t.Errorf("EdgesByGraph (-want +got):\n%s", diff)
	}

	byType, err := db.EdgesByType(graph.TypeCoupling)
	if err != nil {
		t.Fatal(err)
	}
	if len(byType) != 1 || byType[0].Weight != 3 {
		t.Errorf("EdgesByType() = %+v", byType)
	}

	names, err := db.GraphNames()
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"citation", "coupling"}, names); diff != "" {
		t.Errorf("GraphNames (-want +got):\n%s", diff)
	}

	count, err := db.CountEdges()
	if err != nil || count != 2 {
		t.Errorf("CountEdges() = %d, %v; want 2", count, err)
	}
	all, _ := db.GetAllEdges()
	if len(all) != 2 {
		t.Errorf("GetAllEdges() = %d edges, want 2", len(all))
	}

	// Graphs survive a record rebuild.
	if _, err := db.Rebuild(); err != nil {
		t.Fatal(err)
	}
	if count, _ := db.CountEdges(); count != 2 {
		t.Errorf("CountEdges() after Rebuild = %d, want 2", count)
	}
}

func TestPrepareFTSQuery(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"deep", `("deep"*)`},
		{"deep learning", `("deep"* AND "learning"*)`},
		{`say "hi"`, `("say"* AND """hi"""*)`},
	}
	for _, tt := range tests {
		if got := prepareFTSQuery(tt.in); got != tt.want {
			t.Errorf("prepareFTSQuery(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
