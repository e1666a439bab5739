package main

import (
	"github.com/spf13/cobra"

	"github.com/matsen/artool/internal/entity"
)

var (
	listKind  string
	listLimit int
)

func init() {
	listCmd.Flags().StringVar(&listKind, "kind", "work", "Entity kind: work, author, funder or affiliation")
	listCmd.Flags().IntVar(&listLimit, "limit", 0, "Maximum number of entities (0 for all)")
	rootCmd.AddCommand(listCmd)
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the entities of one kind",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

// ListItem is one entity in list output.
type ListItem struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Rows int    `json:"rows,omitempty"` // set when several rows share the identifier
}

// ListResult is the response for the list command.
type ListResult struct {
	Kind     string     `json:"kind"`
	Rows     int        `json:"rows"`
	Entities []ListItem `json:"entities"`
}

func runList(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	ws := mustLoadWorkspace(repoRoot)
	kind := parseKindFlag(listKind)

	result := listEntities(ws.store(kind), listLimit)

	if humanOutput {
		if len(result.Entities) == 0 {
			outputHuman("No %s\n", kind.Plural())
			return nil
		}
		for _, it := range result.Entities {
			outputHuman("%-40s %s\n", it.ID, truncateString(it.Name, ListNameMaxLen))
		}
		outputHuman("\n%d %s in %d rows\n", len(result.Entities), kind.Plural(), result.Rows)
	} else {
		outputJSON(result)
	}
	return nil
}

// listEntities returns one item per distinct identifier in table order.
func listEntities(store *entity.Store, limit int) ListResult {
	counts := make(map[string]int)
	for _, r := range store.Rows() {
		counts[r.ID()]++
	}

	result := ListResult{Kind: store.Kind().String(), Rows: store.Len(), Entities: []ListItem{}}
	for _, e := range store.Entities() {
		if limit > 0 && len(result.Entities) >= limit {
			break
		}
		it := ListItem{ID: e.ID(), Name: e.Record.Name()}
		if n := counts[e.ID()]; n > 1 {
			it.Rows = n
		}
		result.Entities = append(result.Entities, it)
	}
	return result
}
