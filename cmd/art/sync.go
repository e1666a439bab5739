package main

import (
	"github.com/spf13/cobra"

	"github.com/matsen/artool/internal/entity"
	"github.com/matsen/artool/internal/identity"
)

func init() {
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(cleanCmd)
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Regenerate identifiers in every store",
	Long: `Regenerate every identifier from the current field values and the
lexicon, and rewrite the stores. Run after editing the lexicon or the JSONL
files by hand. Running sync twice changes nothing the second time.`,
	Args: cobra.NoArgs,
	RunE: runSync,
}

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Drop rows with no data",
	Long:  `Drop rows whose fields are all empty, ignoring identifiers and nested entities.`,
	Args:  cobra.NoArgs,
	RunE:  runClean,
}

// SyncResult is the response for the sync command.
type SyncResult struct {
	Stores map[string]entity.SyncReport `json:"stores"`
}

// CleanResult is the response for the clean command.
type CleanResult struct {
	Dropped map[string]int `json:"dropped"`
}

func runSync(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	ws := mustLoadWorkspace(repoRoot)

	result := SyncResult{Stores: make(map[string]entity.SyncReport, len(identity.Kinds))}
	for _, kind := range identity.Kinds {
		result.Stores[kind.Plural()] = ws.store(kind).Synchronize()
	}
	if err := ws.save(); err != nil {
		exitWithError(ExitError, "%v", err)
	}

	if humanOutput {
		for _, kind := range identity.Kinds {
			r := result.Stores[kind.Plural()]
			outputHuman("%s: %d rows, %d identifiers, %d renamed\n", kind.Plural(), r.Rows, r.Keys, r.Renamed)
		}
	} else {
		outputJSON(result)
	}
	return nil
}

func runClean(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	ws := mustLoadWorkspace(repoRoot)

	result := CleanResult{Dropped: make(map[string]int, len(identity.Kinds))}
	for _, kind := range identity.Kinds {
		result.Dropped[kind.Plural()] = ws.store(kind).DropEmptyRows()
	}
	if err := ws.save(); err != nil {
		exitWithError(ExitError, "%v", err)
	}

	if humanOutput {
		for _, kind := range identity.Kinds {
			outputHuman("%s: dropped %d empty rows\n", kind.Plural(), result.Dropped[kind.Plural()])
		}
	} else {
		outputJSON(result)
	}
	return nil
}
