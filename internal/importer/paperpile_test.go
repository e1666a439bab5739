package importer

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/segmentio/encoding/json"
)

func TestFlexibleString_String(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"string year", `"2026"`, "2026"},
		{"number year", `2026`, "2026"},
		{"null value", `null`, ""},
		{"float number", `2026.0`, "2026.0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var f FlexibleString
			if err := json.Unmarshal([]byte(tt.input), &f); err != nil {
				t.Fatalf("UnmarshalJSON() error = %v", err)
			}
			if got := f.String(); got != tt.want {
				t.Errorf("String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFlexibleString_InvalidInput(t *testing.T) {
	for _, input := range []string{`[1,2,3]`, `{"key": "value"}`} {
		var f FlexibleString
		if err := json.Unmarshal([]byte(input), &f); err == nil {
			t.Errorf("UnmarshalJSON() expected error for input %s", input)
		}
	}
}

func TestParsePaperpile_ValidEntry(t *testing.T) {
	data := []byte(`[{
		"_id": "abc123",
		"citekey": "Doe2020-ab",
		"doi": "10.1000/xyz123",
		"title": "Deep Learning Basics",
		"abstract": "An introduction.",
		"journal": "Nature",
		"volume": 12,
		"number": "3",
		"published": {"year": 2020, "month": "5", "day": 1},
		"author": [
			{"first": "Jane", "last": "Doe", "orcid": "0000-0001-2345-6789"},
			{"first": "John", "last": "Smith"}
		],
		"url": ["https://example.org/paper"],
		"labelsNamed": ["review"]
	}]`)

	records, errs := ParsePaperpile(data, nil)
	if len(errs) > 0 {
		t.Fatalf("ParsePaperpile() errors = %v", errs)
	}
	if len(records) != 1 {
		t.Fatalf("ParsePaperpile() returned %d records, want 1", len(records))
	}

	r := records[0]
	if got, want := r.ID(), "W:deep-learning-b-2020-10.1000/xyz123"; got != want {
		t.Errorf("ID() = %q, want %q", got, want)
	}
	checks := map[string]string{
		"title":  "Deep Learning Basics",
		"date":   "2020-05-01",
		"source": "Nature",
		"volume": "12",
		"issue":  "3",
		"link":   "https://example.org/paper",
	}
	for field, want := range checks {
		if got := r.Text(field); got != want {
			t.Errorf("%s = %q, want %q", field, got, want)
		}
	}
	if diff := cmp.Diff([]string{"review"}, r.List("tags")); diff != "" {
		t.Errorf("tags (-want +got):\n%s", diff)
	}

	authors := r.Nested("authors")
	if authors.Len() != 2 {
		t.Fatalf("authors = %d, want 2", authors.Len())
	}
	if got := authors.Rows()[0].Text("full_name"); got != "Jane Doe" {
		t.Errorf("first author = %q, want Jane Doe", got)
	}
	if got := authors.Rows()[0].Text("orcid"); got == "" {
		t.Error("ORCID not carried onto author")
	}
}

func TestParsePaperpile_Dates(t *testing.T) {
	tests := []struct {
		name      string
		published string
		want      string
	}{
		{"year only", `{"year": "2019"}`, "2019"},
		{"year month", `{"year": 2019, "month": 7}`, "2019-07"},
		{"bad month dropped", `{"year": 2019, "month": 13, "day": 2}`, "2019"},
		{"bad day dropped", `{"year": 2019, "month": 2, "day": 40}`, "2019-02"},
		{"missing", `{}`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := []byte(`[{"title": "Some Paper Title", "published": ` + tt.published + `}]`)
			records, errs := ParsePaperpile(data, nil)
			if len(errs) > 0 {
				t.Fatalf("ParsePaperpile() errors = %v", errs)
			}
			if got := records[0].Text("date"); got != tt.want {
				t.Errorf("date = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParsePaperpile_PartialErrors(t *testing.T) {
	data := []byte(`[
		{"citekey": "NoTitle", "published": {"year": 2020}},
		{"title": "Bad Year", "published": {"year": "soon"}},
		{"title": "Good Entry", "published": {"year": 2021}}
	]`)

	records, errs := ParsePaperpile(data, nil)
	if len(records) != 1 {
		t.Errorf("ParsePaperpile() returned %d records, want 1", len(records))
	}
	if len(errs) != 2 {
		t.Errorf("ParsePaperpile() returned %d errors, want 2", len(errs))
	}
}

func TestParsePaperpile_InvalidJSON(t *testing.T) {
	records, errs := ParsePaperpile([]byte(`{not json`), nil)
	if len(errs) != 1 || records != nil {
		t.Errorf("ParsePaperpile() = %v, %v; want a single error", records, errs)
	}
}

func TestParsePaperpile_EmptyArray(t *testing.T) {
	records, errs := ParsePaperpile([]byte(`[]`), nil)
	if len(records) != 0 || len(errs) != 0 {
		t.Errorf("ParsePaperpile([]) = %d records, %d errors", len(records), len(errs))
	}
}
