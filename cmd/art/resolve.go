package main

import (
	"github.com/spf13/cobra"

	"github.com/matsen/artool/internal/entity"
	"github.com/matsen/artool/internal/identity"
	"github.com/matsen/artool/internal/resolve"
)

func init() {
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(coauthorsCmd)
	rootCmd.AddCommand(cofundersCmd)
	rootCmd.AddCommand(worksOfCmd)
}

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Link the authors, funders and affiliations of every work",
	Long: `Link the authors, funders and affiliations embedded in every work to the
top-level stores, adding the ones that are not yet known. Each author's
publications and each funder's funded_works record the linked works.`,
	Args: cobra.NoArgs,
	RunE: runResolve,
}

var coauthorsCmd = &cobra.Command{
	Use:   "coauthors <author>",
	Short: "List an author's coauthors",
	Long: `List the authors who share works with <author>, most frequent first.
<author> is an identifier (A:...) or a name.`,
	Args: cobra.ExactArgs(1),
	RunE: runCoauthors,
}

var cofundersCmd = &cobra.Command{
	Use:   "cofunders <funder>",
	Short: "List a funder's cofunders",
	Long: `List the funders who fund works alongside <funder>, most frequent first.
<funder> is an identifier (F:...) or a name.`,
	Args: cobra.ExactArgs(1),
	RunE: runCofunders,
}

var worksOfCmd = &cobra.Command{
	Use:   "works-of <id>",
	Short: "List the works mentioning an author, funder or affiliation",
	Args:  cobra.ExactArgs(1),
	RunE:  runWorksOf,
}

// ResolveResult is the response for the resolve command.
type ResolveResult struct {
	Works        int `json:"works"`
	Created      int `json:"created"`
	Authors      int `json:"authors"`
	Funders      int `json:"funders"`
	Affiliations int `json:"affiliations"`
}

// CooccurrenceResult is the response for the coauthors and cofunders commands.
type CooccurrenceResult struct {
	ID       string                `json:"id"`
	Name     string                `json:"name"`
	Resolved bool                  `json:"resolved"`
	Results  []entity.Cooccurrence `json:"results"`
}

// WorkMatch is one work in works-of output.
type WorkMatch struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	By    string `json:"by"`
}

func runResolve(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	ws := mustLoadWorkspace(repoRoot)

	result := resolveWorks(ws)
	if err := ws.save(identity.Author, identity.Funder, identity.Affiliation); err != nil {
		exitWithError(ExitError, "%v", err)
	}

	if humanOutput {
		outputHuman("Resolved %d works: %d new entities (%d authors, %d funders, %d affiliations)\n",
			result.Works, result.Created, result.Authors, result.Funders, result.Affiliations)
	} else {
		outputJSON(result)
	}
	return nil
}

// resolveWorks cross-references every work against the workspace stores.
func resolveWorks(ws *workspace) ResolveResult {
	r := resolve.New(ws.authors(), ws.funders(), ws.affiliations())
	result := ResolveResult{}
	for _, res := range r.ResolveAll(ws.works()) {
		result.Works++
		result.Created += res.Created
	}
	result.Authors = ws.authors().Len()
	result.Funders = ws.funders().Len()
	result.Affiliations = ws.affiliations().Len()
	ws.log.Info().Int("works", result.Works).Int("created", result.Created).Msg("resolved works")
	return result
}

// lookupEntity finds the entity arg refers to. An identifier must exist in
// the store. Anything else is normalized as a name and matched the way
// nested rows are; when nothing matches, the normalized row itself is
// returned unresolved.
func lookupEntity(ws *workspace, kind identity.Kind, arg string) (*entity.Entity, bool, bool) {
	store := ws.store(kind)
	if k, ok := identity.KindOf(arg); ok {
		if k != kind {
			return nil, false, false
		}
		e, ok := store.Get(arg)
		return e, ok, ok
	}

	probe := entity.Normalize(kind, entity.StringInput(arg), entity.Generic, ws.lex)
	if e, ok := resolve.Find(store, probe); ok {
		return e, true, true
	}
	return &entity.Entity{Record: probe}, false, true
}

func runCoauthors(cmd *cobra.Command, args []string) error {
	return runCooccurrences(identity.Author, args[0], func(r *resolve.Resolver) cooccurFunc { return r.Coauthors })
}

func runCofunders(cmd *cobra.Command, args []string) error {
	return runCooccurrences(identity.Funder, args[0], func(r *resolve.Resolver) cooccurFunc { return r.Cofunders })
}

type cooccurFunc func(*entity.Entity, *entity.Store) []entity.Cooccurrence

func runCooccurrences(kind identity.Kind, arg string, pick func(*resolve.Resolver) cooccurFunc) error {
	repoRoot := mustFindRepository()
	ws := mustLoadWorkspace(repoRoot)

	result, ok := cooccurrences(ws, kind, arg, pick)
	if !ok {
		exitWithError(ExitNotFound, "%s not found: %s", kind, arg)
	}

	if humanOutput {
		if len(result.Results) == 0 {
			outputHuman("No co-occurring %s for %s\n", kind.Plural(), result.Name)
			return nil
		}
		for _, c := range result.Results {
			outputHuman("%4d  %-40s %s\n", c.Frequency, c.ID, c.Name)
		}
	} else {
		outputJSON(result)
	}
	return nil
}

func cooccurrences(ws *workspace, kind identity.Kind, arg string, pick func(*resolve.Resolver) cooccurFunc) (CooccurrenceResult, bool) {
	e, resolved, ok := lookupEntity(ws, kind, arg)
	if !ok {
		return CooccurrenceResult{}, false
	}
	r := resolve.New(ws.authors(), ws.funders(), ws.affiliations())
	results := pick(r)(e, ws.works())
	if results == nil {
		results = []entity.Cooccurrence{}
	}
	return CooccurrenceResult{
		ID:       e.ID(),
		Name:     e.Record.Name(),
		Resolved: resolved,
		Results:  results,
	}, true
}

func runWorksOf(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	ws := mustLoadWorkspace(repoRoot)

	kind, ok := identity.KindOf(args[0])
	if !ok || kind == identity.Work {
		exitWithError(ExitError, "expected an author, funder or affiliation identifier, got %s", args[0])
	}
	matches, ok := worksOf(ws, kind, args[0])
	if !ok {
		exitWithError(ExitNotFound, "%s not found: %s", kind, args[0])
	}

	if humanOutput {
		for _, m := range matches {
			outputHuman("%-40s %-14s %s\n", m.ID, m.By, truncateString(m.Title, ListNameMaxLen))
		}
		outputHuman("\n%d works\n", len(matches))
	} else {
		outputJSON(matches)
	}
	return nil
}

func worksOf(ws *workspace, kind identity.Kind, id string) ([]WorkMatch, bool) {
	e, ok := ws.store(kind).Get(id)
	if !ok {
		return nil, false
	}
	out := []WorkMatch{}
	for _, m := range resolve.WorksOf(e, ws.works()) {
		out = append(out, WorkMatch{ID: m.Work.ID(), Title: m.Work.Name(), By: m.By})
	}
	return out, true
}
