// Package importer reads records from external export files.
package importer

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/segmentio/encoding/json"

	"github.com/matsen/artool/internal/entity"
	"github.com/matsen/artool/internal/identity"
	"github.com/matsen/artool/internal/lexicon"
)

// FormatPaperpile selects the Paperpile JSON importer. It is not a
// normalizer source format because Paperpile entries are mapped before
// normalization.
const FormatPaperpile = "paperpile"

// Options controls how a file is parsed.
type Options struct {
	Kind    identity.Kind
	Format  string // a source format name, "paperpile", or "" to detect
	Lexicon *lexicon.Lexicon
}

// Result holds the records parsed from a file.
type Result struct {
	Records []*entity.Record
	Format  string
	// Errors lists entries that were skipped.
	Errors []error
}

// ErrEmptyInput is returned when a file holds no records.
var ErrEmptyInput = errors.New("no records found")

// ParseFile parses path according to its extension: .json and .jsonl as
// JSON, .csv and .tsv as spreadsheets, .pdf as a single work.
func ParseFile(path string, opts Options) (*Result, error) {
	ext := strings.ToLower(filepath.Ext(path))

	if ext == ".pdf" {
		if opts.Kind != identity.Work {
			return nil, fmt.Errorf("PDF import only produces works, not %s", opts.Kind.Plural())
		}
		r, err := FromPDF(path, opts.Lexicon)
		if err != nil {
			return nil, err
		}
		return &Result{Records: []*entity.Record{r}, Format: "pdf"}, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening import file: %w", err)
	}
	defer f.Close()

	switch ext {
	case ".csv", ".tsv":
		format, err := sourceFormat(opts.Format, entity.Spreadsheet)
		if err != nil {
			return nil, err
		}
		comma := ','
		if ext == ".tsv" {
			comma = '\t'
		}
		records, err := ParseCSV(f, comma, opts.Kind, format, opts.Lexicon)
		if err != nil {
			return nil, err
		}
		return &Result{Records: records, Format: string(format)}, nil
	}

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("reading import file: %w", err)
	}

	if opts.Format == FormatPaperpile {
		if opts.Kind != identity.Work {
			return nil, fmt.Errorf("Paperpile import only produces works, not %s", opts.Kind.Plural())
		}
		records, errs := ParsePaperpile(data, opts.Lexicon)
		if len(records) == 0 && len(errs) > 0 {
			return nil, errs[0]
		}
		return &Result{Records: records, Format: FormatPaperpile, Errors: errs}, nil
	}

	format, err := sourceFormat(opts.Format, "")
	if err != nil {
		return nil, err
	}
	records, detected, err := ParseJSON(data, opts.Kind, format, opts.Lexicon)
	if err != nil {
		return nil, err
	}
	return &Result{Records: records, Format: string(detected)}, nil
}

func sourceFormat(name string, fallback entity.SourceFormat) (entity.SourceFormat, error) {
	if name == "" {
		return fallback, nil
	}
	return entity.ParseSourceFormat(name)
}

// ParseJSON decodes a JSON array, a single JSON object, a CrossRef API
// response or JSON Lines, and normalizes every item as kind. When format is
// empty a CrossRef envelope selects the CrossRef aliases and anything else
// is read as generic. The format actually used is returned.
func ParseJSON(data []byte, kind identity.Kind, format entity.SourceFormat, lex *lexicon.Lexicon) ([]*entity.Record, entity.SourceFormat, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, format, ErrEmptyInput
	}

	var items []any
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		if data[0] != '{' {
			return nil, format, fmt.Errorf("parsing JSON: %w", err)
		}
		if items, err = parseJSONLines(data); err != nil {
			return nil, format, err
		}
	} else {
		var envelope bool
		items, envelope = unwrap(doc)
		if envelope && format == "" {
			format = entity.CrossRef
		}
	}
	if format == "" {
		format = entity.Generic
	}

	records := entity.NormalizeAll(kind, entity.AsInput(items), format, lex)
	if len(records) == 0 {
		return nil, format, ErrEmptyInput
	}
	return records, format, nil
}

// unwrap returns the record items in a decoded document and whether it was
// a CrossRef API envelope.
func unwrap(doc any) ([]any, bool) {
	switch x := doc.(type) {
	case []any:
		return x, false
	case map[string]any:
		msg, ok := x["message"].(map[string]any)
		if !ok {
			return []any{x}, false
		}
		if list, ok := msg["items"].([]any); ok {
			return list, true
		}
		return []any{msg}, true
	case string:
		return []any{x}, false
	}
	return nil, false
}

func parseJSONLines(data []byte) ([]any, error) {
	var items []any
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var m map[string]any
		if err := json.Unmarshal(line, &m); err != nil {
			return nil, fmt.Errorf("parsing line %d: %w", lineNum, err)
		}
		items = append(items, m)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading JSON lines: %w", err)
	}
	return items, nil
}

// ParseCSV reads a spreadsheet with a header row. Each row becomes one
// record of kind; empty cells are left unset.
func ParseCSV(r io.Reader, comma rune, kind identity.Kind, format entity.SourceFormat, lex *lexicon.Lexicon) ([]*entity.Record, error) {
	reader := csv.NewReader(r)
	reader.Comma = comma
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, ErrEmptyInput
		}
		return nil, fmt.Errorf("reading header: %w", err)
	}
	for i, h := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}

	var records []*entity.Record
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading row %d: %w", line, err)
		}

		m := make(entity.MappingInput, len(header))
		for i, cell := range row {
			if i >= len(header) || header[i] == "" {
				continue
			}
			if cell = strings.TrimSpace(cell); cell != "" {
				m[header[i]] = cell
			}
		}
		if len(m) == 0 {
			continue
		}
		records = append(records, entity.Normalize(kind, m, format, lex))
	}

	if len(records) == 0 {
		return nil, ErrEmptyInput
	}
	return records, nil
}
