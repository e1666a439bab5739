package storage

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/segmentio/encoding/json"
	_ "modernc.org/sqlite"

	"github.com/matsen/artool/internal/entity"
	"github.com/matsen/artool/internal/identity"
)

// DB wraps a SQLite database connection. The database is a query cache over
// the JSONL stores and can always be rebuilt from them.
type DB struct {
	db *sql.DB
}

// OpenDB opens or creates a SQLite database at the given path.
func OpenDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

func createSchema(db *sql.DB) error {
	schema := `
		-- One row per record; seq preserves store order.
		CREATE TABLE IF NOT EXISTS records (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			kind TEXT NOT NULL,
			id TEXT NOT NULL,
			name TEXT,
			year INTEGER,
			record_json TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_records_id ON records(kind, id);

		-- Boilerplate-stripped strong identifiers for lookups by DOI, ORCID, etc.
		CREATE TABLE IF NOT EXISTS strong_ids (
			kind TEXT NOT NULL,
			id TEXT NOT NULL,
			field TEXT NOT NULL,
			key TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_strong_ids_key ON strong_ids(key);

		CREATE VIRTUAL TABLE IF NOT EXISTS records_fts USING fts5(
			kind UNINDEXED,
			id UNINDEXED,
			name
		);

		CREATE TABLE IF NOT EXISTS edges (
			graph TEXT NOT NULL,
			source_id TEXT NOT NULL,
			target_id TEXT NOT NULL,
			edge_type TEXT NOT NULL,
			weight REAL NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_edges_graph ON edges(graph);
		CREATE INDEX IF NOT EXISTS idx_edges_type ON edges(edge_type);
	`

	_, err := db.Exec(schema)
	return err
}

// Rebuild clears the record tables and reloads them from the given stores.
// Stored graphs are kept. It returns the number of records written.
func (d *DB) Rebuild(stores ...*entity.Store) (int, error) {
	tx, err := d.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("starting rebuild: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"records", "strong_ids", "records_fts"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return 0, fmt.Errorf("clearing %s table: %w", table, err)
		}
	}

	recStmt, err := tx.Prepare(`
		INSERT INTO records (kind, id, name, year, record_json)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing records insert: %w", err)
	}
	defer recStmt.Close()

	idStmt, err := tx.Prepare(`INSERT INTO strong_ids (kind, id, field, key) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("preparing strong id insert: %w", err)
	}
	defer idStmt.Close()

	ftsStmt, err := tx.Prepare(`INSERT INTO records_fts (kind, id, name) VALUES (?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("preparing fts insert: %w", err)
	}
	defer ftsStmt.Close()

	count := 0
	for _, s := range stores {
		kind := s.Kind().String()
		for _, r := range s.Rows() {
			data, err := json.Marshal(r)
			if err != nil {
				return 0, fmt.Errorf("marshaling %s: %w", r.ID(), err)
			}
			if _, err := recStmt.Exec(kind, r.ID(), nullableStringValue(r.Name()), recordYear(r), string(data)); err != nil {
				return 0, fmt.Errorf("inserting %s: %w", r.ID(), err)
			}
			for _, field := range s.Schema().StrongIDs {
				if r.IsNull(field) {
					continue
				}
				key := identity.NormalizeKey(identity.Scalar(r.Get(field)))
				if key == "" {
					continue
				}
				if _, err := idStmt.Exec(kind, r.ID(), field, key); err != nil {
					return 0, fmt.Errorf("inserting strong id for %s: %w", r.ID(), err)
				}
			}
			if name := r.Name(); name != "" {
				if _, err := ftsStmt.Exec(kind, r.ID(), name); err != nil {
					return 0, fmt.Errorf("inserting fts for %s: %w", r.ID(), err)
				}
			}
			count++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing rebuild: %w", err)
	}
	return count, nil
}

func recordYear(r *entity.Record) sql.NullInt64 {
	if r.Kind() != identity.Work {
		return sql.NullInt64{}
	}
	y, err := strconv.Atoi(identity.Year(r.Text("date")))
	if err != nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(y), Valid: true}
}

// GetRecordJSON returns the stored JSON of the first record with the given
// identifier, or nil if there is none. The kind is taken from the
// identifier's prefix.
func (d *DB) GetRecordJSON(id string) ([]byte, error) {
	kind, ok := identity.KindOf(id)
	if !ok {
		return nil, fmt.Errorf("unrecognised identifier prefix: %s", id)
	}

	var data string
	err := d.db.QueryRow(`
		SELECT record_json FROM records
		WHERE kind = ? AND id = ?
		ORDER BY seq LIMIT 1
	`, kind.String(), id).Scan(&data)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("querying %s: %w", id, err)
	}
	return []byte(data), nil
}

// Hit is a record matched by a lookup.
type Hit struct {
	Kind string `json:"kind"`
	ID   string `json:"id"`
	Name string `json:"name"`
}

// FindByStrongID returns the records carrying value as any strong
// identifier. Boilerplate such as "https://doi.org/" is ignored.
func (d *DB) FindByStrongID(value string) ([]Hit, error) {
	key := identity.NormalizeKey(value)
	if key == "" {
		return nil, nil
	}

	rows, err := d.db.Query(`
		SELECT r.kind, r.id, COALESCE(r.name, '')
		FROM strong_ids s JOIN records r ON r.kind = s.kind AND r.id = s.id
		WHERE s.key = ?
		GROUP BY r.seq
		ORDER BY r.seq
	`, key)
	if err != nil {
		return nil, fmt.Errorf("querying strong ids: %w", err)
	}
	defer rows.Close()

	return scanHits(rows)
}

// SearchByName performs a full-text search over display names, optionally
// restricted to one kind.
func (d *DB) SearchByName(query string, kind *identity.Kind, limit int) ([]Hit, error) {
	ftsQuery := prepareFTSQuery(query)
	if ftsQuery == "" {
		return nil, nil
	}

	sqlQuery := `SELECT kind, id, name FROM records_fts WHERE records_fts MATCH ?`
	args := []any{ftsQuery}
	if kind != nil {
		sqlQuery += " AND kind = ?"
		args = append(args, kind.String())
	}
	sqlQuery += " ORDER BY rank LIMIT ?"
	args = append(args, limit)

	rows, err := d.db.Query(sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("searching: %w", err)
	}
	defer rows.Close()

	return scanHits(rows)
}

// ListIDs returns the identifiers of kind in store order.
func (d *DB) ListIDs(kind identity.Kind) ([]string, error) {
	rows, err := d.db.Query(`SELECT id FROM records WHERE kind = ? ORDER BY seq`, kind.String())
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", kind.Plural(), err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Count returns the number of records of kind.
func (d *DB) Count(kind identity.Kind) (int, error) {
	var count int
	err := d.db.QueryRow("SELECT COUNT(*) FROM records WHERE kind = ?", kind.String()).Scan(&count)
	return count, err
}

func scanHits(rows *sql.Rows) ([]Hit, error) {
	var hits []Hit
	for rows.Next() {
		var h Hit
		if err := rows.Scan(&h.Kind, &h.ID, &h.Name); err != nil {
			return nil, err
		}
		hits = append(hits, h)
	}
	return hits, rows.Err()
}

// nullableStringValue converts a string to sql.NullString, treating empty as NULL.
func nullableStringValue(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// prepareFTSQuery turns free text into an FTS5 query matching every word as
// a prefix.
func prepareFTSQuery(query string) string {
	var terms []string
	for _, part := range strings.Fields(query) {
		escaped := strings.ReplaceAll(part, "\"", "\"\"")
		terms = append(terms, "\""+escaped+"\"*")
	}
	if len(terms) == 0 {
		return ""
	}
	return "(" + strings.Join(terms, " AND ") + ")"
}
