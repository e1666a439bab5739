package main

import (
	"github.com/spf13/cobra"

	"github.com/matsen/artool/internal/entity"
	"github.com/matsen/artool/internal/identity"
)

var (
	dedupeKind   string
	dedupeDryRun bool
	dedupeMerge  bool
)

func init() {
	dedupeCmd.Flags().StringVar(&dedupeKind, "kind", "", "Only deduplicate one entity kind (default: all)")
	dedupeCmd.Flags().BoolVar(&dedupeDryRun, "dry-run", false, "Report duplicate groups without writing")
	dedupeCmd.Flags().BoolVar(&dedupeMerge, "merge", false, "Fold duplicates together and write the stores")
	dedupeCmd.MarkFlagsMutuallyExclusive("dry-run", "merge")
	rootCmd.AddCommand(dedupeCmd)
}

var dedupeCmd = &cobra.Command{
	Use:   "dedupe",
	Short: "Find and merge duplicate entities",
	Long: `Find and merge duplicate entities.

Rows identical on every compared field are dropped first. Rows sharing a
strong identifier (DOI, ISBN, ORCID, ROR link, ...) are then folded into
the earliest row, whose empty fields are filled from the others. Identifiers
are regenerated afterwards.

Without --merge nothing is written.

Usage:
  art dedupe --dry-run
  art dedupe --merge --kind author`,
	RunE: runDedupe,
}

// DedupeResult is the response for the dedupe command.
type DedupeResult struct {
	Merged  bool                          `json:"merged"`
	Reports map[string]entity.DedupReport `json:"reports"`
}

func runDedupe(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	ws := mustLoadWorkspace(repoRoot)

	kinds := identity.Kinds
	if dedupeKind != "" {
		kinds = []identity.Kind{parseKindFlag(dedupeKind)}
	}

	result := dedupeStores(ws, kinds, dedupeMerge)
	if dedupeMerge {
		if err := ws.save(kinds...); err != nil {
			exitWithError(ExitError, "%v", err)
		}
	}

	if humanOutput {
		for _, kind := range kinds {
			r := result.Reports[kind.Plural()]
			outputHuman("%s: %d rows, %d exact duplicates, %d merged, %d after\n",
				kind.Plural(), r.Before, r.Exact, r.Merged, r.After)
			for _, g := range r.Groups {
				field := g.Field
				if field == "" {
					field = "exact"
				}
				outputHuman("  %s [%s] <- %v\n", g.Kept, field, g.Dropped)
			}
		}
		if !dedupeMerge {
			outputHuman("\nRun with --merge to apply.\n")
		}
	} else {
		outputJSON(result)
	}
	return nil
}

// dedupeStores deduplicates the given stores in place when merge is set and
// only plans the changes otherwise.
func dedupeStores(ws *workspace, kinds []identity.Kind, merge bool) DedupeResult {
	result := DedupeResult{Merged: merge, Reports: make(map[string]entity.DedupReport, len(kinds))}
	for _, kind := range kinds {
		store := ws.store(kind)
		if merge {
			result.Reports[kind.Plural()] = store.Deduplicate()
		} else {
			result.Reports[kind.Plural()] = store.PlanDeduplicate()
		}
	}
	return result
}
