// Package storage handles data persistence in JSONL and SQLite formats.
package storage

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"github.com/segmentio/encoding/json"

	"github.com/matsen/artool/internal/entity"
	"github.com/matsen/artool/internal/identity"
)

// MaxJSONLLineCapacity is the maximum buffer size for reading JSONL lines.
// Works carrying their full bibliography can be large, so this is 16MB.
const MaxJSONLLineCapacity = 16 * 1024 * 1024

// ReadStore reads every record of kind from a JSONL file into a new store.
// Rows are passed back through the normalizer, so identifiers are
// regenerated under the store's lexicon. A missing file yields an empty
// store.
func ReadStore(path string, kind identity.Kind, opts ...entity.Option) (*entity.Store, error) {
	store := entity.NewStore(kind, opts...)

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return store, nil
		}
		return nil, fmt.Errorf("opening %s file: %w", kind.Plural(), err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)

	// Increase buffer size for long lines
	buf := make([]byte, 64*1024)
	scanner.Buffer(buf, MaxJSONLLineCapacity)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue // Skip empty lines
		}

		var m map[string]any
		if err := json.Unmarshal(line, &m); err != nil {
			return nil, fmt.Errorf("parsing line %d: %w", lineNum, err)
		}
		store.Add(entity.MappingInput(m), entity.JSONL)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s file: %w", kind.Plural(), err)
	}

	return store, nil
}

// Append adds records to the end of a JSONL file.
func Append(path string, records ...*entity.Record) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("opening %s for append: %w", filepath.Base(path), err)
	}
	defer f.Close()

	for _, r := range records {
		if err := writeRecord(f, r); err != nil {
			return fmt.Errorf("writing %s: %w", r.ID(), err)
		}
	}
	return nil
}

// WriteStore writes every row of store to a JSONL file, replacing existing
// content. The file is written beside path and renamed into place.
func WriteStore(path string, store *entity.Store) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("creating %s file: %w", store.Kind().Plural(), err)
	}

	for i, r := range store.Rows() {
		if err := writeRecord(f, r); err != nil {
			f.Close()
			os.Remove(tmp)
			return fmt.Errorf("writing record %d: %w", i, err)
		}
	}

	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("closing %s file: %w", store.Kind().Plural(), err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replacing %s file: %w", store.Kind().Plural(), err)
	}
	return nil
}

// writeRecord parses a work's raw citations before encoding it. The raw
// payload is only readable with the aliases of its source format, which is
// not stored, so the normalized citations are written alongside it.
func writeRecord(f *os.File, r *entity.Record) error {
	r.Citations()
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encoding record: %w", err)
	}
	data = append(data, '\n')
	_, err = f.Write(data)
	return err
}
