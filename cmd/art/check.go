package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/matsen/artool/internal/graph"
	"github.com/matsen/artool/internal/identity"
)

func init() {
	rootCmd.AddCommand(checkCmd)
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify repository integrity",
	Long: `Verify repository integrity.

Reports stored graph edges whose endpoints no longer exist (for example after
a dedupe renamed them), edges stored more than once, rows that share an
identifier, and duplicates that 'art dedupe --merge' would fold.`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

// CheckResult is the response for the check command.
type CheckResult struct {
	Status        string            `json:"status"`
	Graphs        []string          `json:"graphs"`
	Edges         graph.CheckReport `json:"edges"`
	SharedIDs     []SharedID        `json:"shared_ids"`
	PendingMerges map[string]int    `json:"pending_merges"`
}

// SharedID is an identifier carried by more than one row.
type SharedID struct {
	ID   string `json:"id"`
	Rows int    `json:"rows"`
}

func runCheck(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	ws := mustLoadWorkspace(repoRoot)

	db := mustOpenDatabase(repoRoot)
	defer db.Close()

	edges, err := db.GetAllEdges()
	if err != nil {
		exitWithError(ExitDataError, "reading edges: %v", err)
	}
	names, err := db.GraphNames()
	if err != nil {
		exitWithError(ExitDataError, "reading graph names: %v", err)
	}

	result := checkWorkspace(ws, edges)
	result.Graphs = names
	if result.Graphs == nil {
		result.Graphs = []string{}
	}

	if humanOutput {
		printCheckHuman(result)
	} else {
		outputJSON(result)
	}
	if result.Status != "ok" {
		os.Exit(ExitCheckFailed)
	}
	return nil
}

// checkWorkspace inspects stored edges against the identifiers currently in
// the repository, and each store for shared identifiers and pending merges.
func checkWorkspace(ws *workspace, edges []graph.Link) CheckResult {
	result := CheckResult{
		Edges:         graph.Check(edges, ws.knownIDs()),
		SharedIDs:     []SharedID{},
		PendingMerges: make(map[string]int, len(identity.Kinds)),
	}

	ok := result.Edges.OK()
	for _, kind := range identity.Kinds {
		store := ws.store(kind)
		counts := make(map[string]int)
		var order []string
		for _, r := range store.Rows() {
			id := r.ID()
			if counts[id] == 0 {
				order = append(order, id)
			}
			counts[id]++
		}
		for _, id := range order {
			if counts[id] > 1 {
				result.SharedIDs = append(result.SharedIDs, SharedID{ID: id, Rows: counts[id]})
				ok = false
			}
		}

		report := store.PlanDeduplicate()
		if n := report.Before - report.After; n > 0 {
			result.PendingMerges[kind.Plural()] = n
			ok = false
		}
	}

	result.Status = "ok"
	if !ok {
		result.Status = "issues_found"
	}
	return result
}

func printCheckHuman(r CheckResult) {
	if r.Status == "ok" {
		outputHuman("OK: %d stored edges in %d graphs, no issues\n", r.Edges.Edges, len(r.Graphs))
		return
	}
	for _, o := range r.Edges.Orphaned {
		outputHuman("orphaned edge  %s -> %s (%s): %s\n", o.Source, o.Target, o.Type, o.Reason)
	}
	for _, d := range r.Edges.Duplicates {
		outputHuman("duplicate edge %s -> %s (%s) x%d\n", d.Source, d.Target, d.Type, d.Count)
	}
	for _, s := range r.SharedIDs {
		outputHuman("shared id      %s (%d rows)\n", s.ID, s.Rows)
	}
	for kind, n := range r.PendingMerges {
		outputHuman("pending merges %s: %d rows\n", kind, n)
	}
}
