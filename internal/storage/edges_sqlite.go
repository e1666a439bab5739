package storage

import (
	"database/sql"
	"fmt"

	"github.com/matsen/artool/internal/graph"
)

// InsertGraph stores the edges of g under name, replacing any graph
// previously stored under that name. It returns the number of edges written.
func (d *DB) InsertGraph(name string, g *graph.Graph) (int, error) {
	tx, err := d.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("starting graph insert: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM edges WHERE graph = ?", name); err != nil {
		return 0, fmt.Errorf("clearing graph %s: %w", name, err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO edges (graph, source_id, target_id, edge_type, weight)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing edges insert: %w", err)
	}
	defer stmt.Close()

	edges := g.Edges()
	for _, e := range edges {
		if _, err := stmt.Exec(name, e.Source, e.Target, e.Type, e.Weight); err != nil {
			return 0, fmt.Errorf("inserting edge %s -> %s: %w", e.Source, e.Target, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing graph %s: %w", name, err)
	}
	return len(edges), nil
}

// EdgesByGraph returns the edges stored under name in insertion order.
func (d *DB) EdgesByGraph(name string) ([]graph.Link, error) {
	rows, err := d.db.Query(`
		SELECT source_id, target_id, edge_type, weight
		FROM edges
		WHERE graph = ?
		ORDER BY rowid
	`, name)
	if err != nil {
		return nil, fmt.Errorf("querying edges by graph: %w", err)
	}
	defer rows.Close()

	return scanEdges(rows)
}

// EdgesByType returns all stored edges of the given type.
func (d *DB) EdgesByType(edgeType string) ([]graph.Link, error) {
	rows, err := d.db.Query(`
		SELECT source_id, target_id, edge_type, weight
		FROM edges
		WHERE edge_type = ?
		ORDER BY source_id, target_id
	`, edgeType)
	if err != nil {
		return nil, fmt.Errorf("querying edges by type: %w", err)
	}
	defer rows.Close()

	return scanEdges(rows)
}

// GetAllEdges returns all stored edges.
func (d *DB) GetAllEdges() ([]graph.Link, error) {
	rows, err := d.db.Query(`
		SELECT source_id, target_id, edge_type, weight
		FROM edges
		ORDER BY graph, rowid
	`)
	if err != nil {
		return nil, fmt.Errorf("querying all edges: %w", err)
	}
	defer rows.Close()

	return scanEdges(rows)
}

// GraphNames lists the names of stored graphs.
func (d *DB) GraphNames() ([]string, error) {
	rows, err := d.db.Query(`SELECT DISTINCT graph FROM edges ORDER BY graph`)
	if err != nil {
		return nil, fmt.Errorf("listing graphs: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

// CountEdges returns the total number of stored edges.
func (d *DB) CountEdges() (int, error) {
	var count int
	err := d.db.QueryRow("SELECT COUNT(*) FROM edges").Scan(&count)
	return count, err
}

func scanEdges(rows *sql.Rows) ([]graph.Link, error) {
	var edges []graph.Link
	for rows.Next() {
		var e graph.Link
		if err := rows.Scan(&e.Source, &e.Target, &e.Type, &e.Weight); err != nil {
			return nil, err
		}
		edges = append(edges, e)
	}
	return edges, rows.Err()
}
