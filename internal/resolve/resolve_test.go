package resolve

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matsen/artool/internal/entity"
	"github.com/matsen/artool/internal/identity"
)

func testWorks() *entity.Store {
	works := entity.NewStore(identity.Work)
	works.Add(entity.MappingInput{
		"title":   "Paper One",
		"authors": "Jane Doe; John Smith; Ann Lee",
		"funder":  []any{map[string]any{"name": "NIH"}, map[string]any{"name": "NSF"}},
	}, entity.Generic)
	works.Add(entity.MappingInput{
		"title":   "Paper Two",
		"authors": []any{"Jane Doe", "John Smith", "John Smith"},
		"funder":  "NIH; Wellcome Trust",
	}, entity.Generic)
	works.Add(entity.MappingInput{
		"title":   "Paper Three",
		"authors": "Ann Lee; Bob Roe",
		"funder":  "NSF",
	}, entity.Generic)
	return works
}

func TestResolveAll(t *testing.T) {
	works := testWorks()
	r := New(nil, nil, nil)

	res := r.ResolveAll(works)
	if len(res) != 3 {
		t.Fatalf("ResolveAll() = %d resolutions, want 3", len(res))
	}

	if diff := cmp.Diff([]string{"A:jane-doe", "A:john-smith", "A:ann-lee", "A:bob-roe"}, r.Authors.IDs()); diff != "" {
		t.Errorf("authors (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"F:nih", "F:nsf", "F:wellcome-trust"}, r.Funders.IDs()); diff != "" {
		t.Errorf("funders (-want +got):\n%s", diff)
	}

	jane, _ := r.Authors.Get("A:jane-doe")
	if diff := cmp.Diff([]string{"W:paper-one", "W:paper-two"}, jane.Record.List("publications")); diff != "" {
		t.Errorf("publications (-want +got):\n%s", diff)
	}
	nih, _ := r.Funders.Get("F:nih")
	if got := nih.Record.List("funded_works"); len(got) != 2 {
		t.Errorf("funded_works = %v", got)
	}

	again := r.ResolveAll(works)
	for _, rr := range again {
		if rr.Created != 0 {
			t.Errorf("second resolution of %s created %d entities", rr.WorkID, rr.Created)
		}
	}
}

func TestFind(t *testing.T) {
	authors := entity.NewStore(identity.Author)
	authors.Add(entity.MappingInput{"full_name": "Jane Doe", "orcid": "0000-0001-2345-6789"}, entity.Generic)
	authors.Add(entity.MappingInput{"full_name": "John Smith"}, entity.Generic)

	tests := []struct {
		name   string
		row    entity.MappingInput
		wantID string
		found  bool
	}{
		{"by identifier", entity.MappingInput{"full_name": "John Smith"}, "A:john-smith", true},
		{"by strong identifier", entity.MappingInput{"full_name": "J. Doe", "orcid": "https://orcid.org/0000-0001-2345-6789"}, "A:jane-doe-0000-0001-2345-6789", true},
		{"by name case-insensitive", entity.MappingInput{"full_name": "JANE DOE"}, "A:jane-doe-0000-0001-2345-6789", true},
		{"unknown", entity.MappingInput{"full_name": "Nobody Here"}, "", false},
		{"empty", entity.MappingInput{}, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := entity.Normalize(identity.Author, tt.row, entity.Generic, nil)
			e, ok := Find(authors, row)
			if ok != tt.found {
				t.Fatalf("Find() found = %v, want %v", ok, tt.found)
			}
			if ok && e.ID() != tt.wantID {
				t.Errorf("Find() = %q, want %q", e.ID(), tt.wantID)
			}
		})
	}
}

func TestWorksOf(t *testing.T) {
	works := testWorks()
	authors := entity.NewStore(identity.Author)
	ann := authors.Add(entity.StringInput("Ann Lee"), entity.Generic)

	matches := WorksOf(ann, works)
	var titles []string
	for _, m := range matches {
		titles = append(titles, m.Work.Name())
		if m.By != "author_id" {
			t.Errorf("match by %q, want author_id", m.By)
		}
	}
	if diff := cmp.Diff([]string{"Paper One", "Paper Three"}, titles); diff != "" {
		t.Errorf("WorksOf (-want +got):\n%s", diff)
	}
	if len(ann.Works) != 2 {
		t.Error("matched works not attached to entity")
	}
}

func TestWorksOf_ByStrongIDAndName(t *testing.T) {
	works := entity.NewStore(identity.Work)
	works.Add(entity.MappingInput{
		"title":   "Orcid Paper",
		"authors": []any{map[string]any{"full_name": "J Doe", "orcid": "0000-0001-2345-6789"}},
	}, entity.Generic)
	works.Add(entity.MappingInput{
		"title":   "Name Paper",
		"authors": []any{map[string]any{"given_name": "Jane Alice", "family_name": "Doe"}},
	}, entity.Generic)

	authors := entity.NewStore(identity.Author)
	jane := authors.Add(entity.MappingInput{
		"given_name": "Jane", "family_name": "Doe", "orcid": "https://orcid.org/0000-0001-2345-6789",
	}, entity.Generic)

	got := map[string]string{}
	for _, m := range WorksOf(jane, works) {
		got[m.Work.Name()] = m.By
	}
	want := map[string]string{"Orcid Paper": "orcid", "Name Paper": "full_name"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("WorksOf (-want +got):\n%s", diff)
	}
}

func TestCoauthors(t *testing.T) {
	works := testWorks()
	r := New(nil, nil, nil)
	r.ResolveAll(works)

	jane, _ := r.Authors.Get("A:jane-doe")
	got := r.Coauthors(jane, works)
	want := []entity.Cooccurrence{
		{ID: "A:john-smith", Name: "John Smith", Frequency: 2},
		{ID: "A:ann-lee", Name: "Ann Lee", Frequency: 1},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Coauthors (-want +got):\n%s", diff)
	}
	for _, c := range got {
		if c.ID == jane.ID() {
			t.Error("author listed as own coauthor")
		}
	}
	if diff := cmp.Diff(want, jane.Cooccurrences); diff != "" {
		t.Error("coauthors not attached to entity")
	}
}

func TestCofunders(t *testing.T) {
	works := testWorks()
	r := New(nil, nil, nil)
	r.ResolveAll(works)

	nsf, _ := r.Funders.Get("F:nsf")
	got := r.Cofunders(nsf, works)
	want := []entity.Cooccurrence{{ID: "F:nih", Name: "NIH", Frequency: 1}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Cofunders (-want +got):\n%s", diff)
	}
}

func TestCoauthors_VariantsCountTogether(t *testing.T) {
	works := entity.NewStore(identity.Work)
	works.Add(entity.MappingInput{
		"title": "One",
		"authors": []any{
			map[string]any{"full_name": "Jane Doe"},
			map[string]any{"full_name": "Bob Roe", "orcid": "0000-0002-0000-0001"},
		},
	}, entity.Generic)
	works.Add(entity.MappingInput{
		"title": "Two",
		"authors": []any{
			map[string]any{"full_name": "Jane Doe"},
			map[string]any{"full_name": "Robert Roe", "orcid": "https://orcid.org/0000-0002-0000-0001"},
		},
	}, entity.Generic)

	r := New(nil, nil, nil)
	r.ResolveAll(works)
	jane, _ := r.Authors.Get("A:jane-doe")

	got := r.Coauthors(jane, works)
	if len(got) != 1 || got[0].Frequency != 2 {
		t.Errorf("Coauthors = %+v, want one coauthor with frequency 2", got)
	}
}
