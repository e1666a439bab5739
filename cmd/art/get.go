package main

import (
	"sort"

	"github.com/spf13/cobra"

	"github.com/matsen/artool/internal/entity"
	"github.com/matsen/artool/internal/identity"
	"github.com/matsen/artool/internal/storage"
)

func init() {
	rootCmd.AddCommand(getCmd)
}

var getCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show an entity",
	Long: `Show an entity by identifier (W:..., A:..., F:..., AFFIL:...).

Any other argument is treated as a strong identifier such as a DOI, ORCID,
ISSN or ROR link and looked up in the query cache; run 'art rebuild' first.`,
	Args: cobra.ExactArgs(1),
	RunE: runGet,
}

// GetResult is the response for the get command.
type GetResult struct {
	ID     string         `json:"id"`
	Kind   string         `json:"kind"`
	Record map[string]any `json:"record"`
	Rows   int            `json:"rows"`
}

func runGet(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	id := args[0]

	if _, ok := identity.KindOf(id); !ok {
		return runLookup(repoRoot, id)
	}

	ws := mustLoadWorkspace(repoRoot)
	result, ok := getEntity(ws, id)
	if !ok {
		exitWithError(ExitNotFound, "entity not found: %s", id)
	}

	if humanOutput {
		printRecordHuman(result)
	} else {
		outputJSON(result)
	}
	return nil
}

// getEntity looks up id in the store its prefix names.
func getEntity(ws *workspace, id string) (GetResult, bool) {
	kind, ok := identity.KindOf(id)
	if !ok {
		return GetResult{}, false
	}
	store := ws.store(kind)
	e, ok := store.Get(id)
	if !ok {
		return GetResult{}, false
	}
	rows := 0
	for _, r := range store.Rows() {
		if r.ID() == id {
			rows++
		}
	}
	return GetResult{ID: id, Kind: kind.String(), Record: e.Record.Map(), Rows: rows}, true
}

func runLookup(repoRoot, value string) error {
	db := mustOpenDatabase(repoRoot)
	defer db.Close()

	hits, err := db.FindByStrongID(value)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}
	if len(hits) == 0 {
		exitWithError(ExitNotFound, "no entity with identifier %s", value)
	}

	if humanOutput {
		printHitsHuman(hits)
	} else {
		outputJSON(hits)
	}
	return nil
}

func printRecordHuman(r GetResult) {
	outputHuman("%s (%s)\n", r.ID, r.Kind)
	schema := entity.SchemaFor(mustKind(r.Kind))
	for _, name := range schema.Names() {
		v, ok := r.Record[name]
		if !ok || v == nil || name == schema.IDField {
			continue
		}
		if rows, ok := v.([]map[string]any); ok {
			outputHuman("  %-16s %d entries\n", name+":", len(rows))
			continue
		}
		outputHuman("  %-16s %v\n", name+":", v)
	}
	if r.Rows > 1 {
		outputHuman("  (%d rows share this identifier)\n", r.Rows)
	}
}

func printHitsHuman(hits []storage.Hit) {
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Kind < hits[j].Kind })
	for _, h := range hits {
		outputHuman("%-12s %-40s %s\n", h.Kind, h.ID, truncateString(h.Name, ListNameMaxLen))
	}
}

func mustKind(name string) identity.Kind {
	k, err := identity.ParseKind(name)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}
	return k
}
