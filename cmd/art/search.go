package main

import (
	"github.com/spf13/cobra"

	"github.com/matsen/artool/internal/identity"
	"github.com/matsen/artool/internal/storage"
)

var (
	searchKind  string
	searchLimit int
)

func init() {
	searchCmd.Flags().StringVar(&searchKind, "kind", "", "Restrict to one entity kind")
	searchCmd.Flags().IntVar(&searchLimit, "limit", DefaultListLimit, "Maximum number of results")
	rootCmd.AddCommand(searchCmd)
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search entity names in the query cache",
	Long: `Full-text search over titles and names. Every word must match as a
prefix. Reads the SQLite cache; run 'art rebuild' after changing the stores.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	db := mustOpenDatabase(repoRoot)
	defer db.Close()

	var kind *identity.Kind
	if searchKind != "" {
		k := parseKindFlag(searchKind)
		kind = &k
	}

	hits, err := db.SearchByName(args[0], kind, searchLimit)
	if err != nil {
		exitWithError(ExitError, "searching: %v", err)
	}

	if humanOutput {
		if len(hits) == 0 {
			outputHuman("No matches\n")
			return nil
		}
		printHitsHuman(hits)
	} else {
		if hits == nil {
			hits = []storage.Hit{}
		}
		outputJSON(hits)
	}
	return nil
}
