package main

import (
	"github.com/spf13/cobra"

	"github.com/matsen/artool/internal/identity"
)

func init() {
	rootCmd.AddCommand(rebuildCmd)
}

var rebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Rebuild the query cache from the stores",
	Long: `Rebuild the SQLite query cache from the JSONL stores.

Use this after pulling changes from git or if the cache becomes corrupted.
Graphs saved with 'art graph --store' are kept.`,
	Args: cobra.NoArgs,
	RunE: runRebuild,
}

// RebuildResult is the response for the rebuild command.
type RebuildResult struct {
	Status       string `json:"status"`
	Records      int    `json:"records"`
	Works        int    `json:"works"`
	Authors      int    `json:"authors"`
	Funders      int    `json:"funders"`
	Affiliations int    `json:"affiliations"`
	Edges        int    `json:"edges"`
}

func runRebuild(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	ws := mustLoadWorkspace(repoRoot)

	db := mustOpenDatabase(repoRoot)
	defer db.Close()

	n, err := db.Rebuild(ws.all()...)
	if err != nil {
		exitWithError(ExitDataError, "rebuilding database: %v", err)
	}
	edges, err := db.CountEdges()
	if err != nil {
		exitWithError(ExitError, "counting edges: %v", err)
	}

	result := RebuildResult{
		Status:       "rebuilt",
		Records:      n,
		Works:        ws.store(identity.Work).Len(),
		Authors:      ws.store(identity.Author).Len(),
		Funders:      ws.store(identity.Funder).Len(),
		Affiliations: ws.store(identity.Affiliation).Len(),
		Edges:        edges,
	}

	if humanOutput {
		outputHuman("Rebuilt query database with %d works, %d authors, %d funders, %d affiliations and %d stored edges\n",
			result.Works, result.Authors, result.Funders, result.Affiliations, result.Edges)
	} else {
		outputJSON(result)
	}
	return nil
}
