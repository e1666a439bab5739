package importer

import (
	"fmt"
	"strconv"

	"github.com/segmentio/encoding/json"

	"github.com/matsen/artool/internal/entity"
	"github.com/matsen/artool/internal/identity"
	"github.com/matsen/artool/internal/lexicon"
)

// FlexibleString can unmarshal from either string or number JSON values.
type FlexibleString string

func (f *FlexibleString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = ""
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = FlexibleString(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*f = FlexibleString(n.String())
		return nil
	}

	return fmt.Errorf("cannot unmarshal %s into FlexibleString", string(data))
}

func (f FlexibleString) String() string {
	return string(f)
}

// PaperpileEntry represents a single entry from a Paperpile JSON export.
type PaperpileEntry struct {
	ID        string         `json:"_id"`
	Citekey   string         `json:"citekey"`
	DOI       string         `json:"doi"`
	Title     string         `json:"title"`
	Abstract  string         `json:"abstract"`
	Journal   string         `json:"journal"`
	Publisher string         `json:"publisher"`
	Volume    FlexibleString `json:"volume"`
	Issue     FlexibleString `json:"number"`
	Pages     string         `json:"pages"`
	URL       []string       `json:"url"`
	Keywords  []string       `json:"keywords"`
	Published struct {
		Year  FlexibleString `json:"year"`
		Month FlexibleString `json:"month"`
		Day   FlexibleString `json:"day"`
	} `json:"published"`
	Author []struct {
		First string `json:"first"`
		Last  string `json:"last"`
		ORCID string `json:"orcid"`
	} `json:"author"`
	Labels []string `json:"labelsNamed"`
}

// ParsePaperpile parses a Paperpile JSON export into work records. Entries
// that cannot be used are reported and skipped.
func ParsePaperpile(data []byte, lex *lexicon.Lexicon) ([]*entity.Record, []error) {
	var entries []PaperpileEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, []error{fmt.Errorf("parsing Paperpile JSON: %w", err)}
	}

	var records []*entity.Record
	var errs []error

	for i, entry := range entries {
		m, err := paperpileEntryToMapping(entry)
		if err != nil {
			errs = append(errs, fmt.Errorf("entry %d (%s): %w", i+1, entry.Citekey, err))
			continue
		}
		records = append(records, entity.Normalize(identity.Work, m, entity.Generic, lex))
	}

	return records, errs
}

// paperpileEntryToMapping converts a Paperpile entry to raw work fields.
func paperpileEntryToMapping(entry PaperpileEntry) (entity.MappingInput, error) {
	if entry.Title == "" {
		return nil, fmt.Errorf("missing required field 'title'")
	}

	m := entity.MappingInput{
		"title":     entry.Title,
		"doi":       entry.DOI,
		"abstract":  entry.Abstract,
		"source":    entry.Journal,
		"publisher": entry.Publisher,
		"volume":    entry.Volume.String(),
		"issue":     entry.Issue.String(),
		"pages":     entry.Pages,
	}

	if date, err := paperpileDate(entry); err != nil {
		return nil, err
	} else if date != "" {
		m["date"] = date
	}

	if len(entry.Author) > 0 {
		authors := make([]any, 0, len(entry.Author))
		for _, a := range entry.Author {
			authors = append(authors, map[string]any{
				"given_name":  a.First,
				"family_name": a.Last,
				"orcid":       a.ORCID,
			})
		}
		m["authors"] = authors
	}
	if len(entry.URL) > 0 {
		m["link"] = entry.URL[0]
	}
	if len(entry.Keywords) > 0 {
		m["keywords"] = entry.Keywords
	}
	if len(entry.Labels) > 0 {
		m["tags"] = entry.Labels
	}
	if entry.Citekey != "" {
		m["notes"] = "paperpile citekey: " + entry.Citekey
	}

	return m, nil
}

// paperpileDate builds an ISO date from the published parts. Out-of-range
// months and days are dropped.
func paperpileDate(entry PaperpileEntry) (string, error) {
	if entry.Published.Year.String() == "" {
		return "", nil
	}
	year, err := strconv.Atoi(entry.Published.Year.String())
	if err != nil {
		return "", fmt.Errorf("invalid year: %s", entry.Published.Year.String())
	}

	month, err := strconv.Atoi(entry.Published.Month.String())
	if err != nil || month < 1 || month > 12 {
		return fmt.Sprintf("%04d", year), nil
	}
	day, err := strconv.Atoi(entry.Published.Day.String())
	if err != nil || day < 1 || day > 31 {
		return fmt.Sprintf("%04d-%02d", year, month), nil
	}
	return fmt.Sprintf("%04d-%02d-%02d", year, month, day), nil
}
