package main

import (
	"github.com/spf13/cobra"

	"github.com/matsen/artool/internal/entity"
	"github.com/matsen/artool/internal/importer"
)

var (
	importKind   string
	importFormat string
	importDedupe bool
	importDryRun bool
)

func init() {
	importCmd.Flags().StringVar(&importKind, "kind", "work", "Entity kind: work, author, funder or affiliation")
	importCmd.Flags().StringVar(&importFormat, "format", "", "Source format (generic, crossref, scopus, wos, orcid, spreadsheet, jsonl, paperpile)")
	importCmd.Flags().BoolVar(&importDedupe, "dedupe", true, "Deduplicate the store after merging")
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "Show what would be imported without writing")
	rootCmd.AddCommand(importCmd)
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import records from an export file",
	Long: `Import records from an export file into the repository.

The file type is taken from its extension: .json and .jsonl (JSON arrays,
objects, CrossRef API responses or JSON lines), .csv and .tsv (one record per
row, headers matched against field aliases) and .pdf (a single work from the
DOI and title found in its first pages).

Records already present (same identity columns) are skipped; the rest are
appended and, unless --dedupe=false, duplicates sharing a strong identifier
are folded together.

Usage:
  art import crossref.json
  art import --kind author --format orcid people.json
  art import --format paperpile export.json --dry-run`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

// ImportResult is the response for the import command.
type ImportResult struct {
	Kind    string              `json:"kind"`
	Format  string              `json:"format"`
	Parsed  int                 `json:"parsed"`
	Added   int                 `json:"added"`
	Skipped int                 `json:"skipped"`
	Total   int                 `json:"total"`
	DryRun  bool                `json:"dry_run,omitempty"`
	Dedupe  *entity.DedupReport `json:"dedupe,omitempty"`
	Errors  []string            `json:"errors"`
}

func runImport(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	cfg := mustLoadConfig(repoRoot)
	ws := mustLoadWorkspace(repoRoot)
	kind := parseKindFlag(importKind)

	format := importFormat
	if format == "" {
		format = cfg.DefaultSource
	}

	parsed, err := importer.ParseFile(args[0], importer.Options{Kind: kind, Format: format, Lexicon: ws.lex})
	if err != nil {
		exitWithError(ExitDataError, "parsing %s: %v", args[0], err)
	}

	target := ws.store(kind)
	if importDryRun {
		target = target.Clone()
	}
	result := importRecords(ws, target, parsed.Records, importDedupe)
	result.Format = parsed.Format
	result.DryRun = importDryRun
	for _, e := range parsed.Errors {
		result.Errors = append(result.Errors, e.Error())
	}

	if !importDryRun {
		if err := ws.save(kind); err != nil {
			exitWithError(ExitError, "%v", err)
		}
	}

	if humanOutput {
		verb := "Imported"
		if importDryRun {
			verb = "Would import"
		}
		outputHuman("%s %d of %d %s (%d already present), %d total\n",
			verb, result.Added, result.Parsed, kind.Plural(), result.Skipped, result.Total)
		if result.Dedupe != nil && result.Dedupe.Before != result.Dedupe.After {
			outputHuman("Merged %d duplicate rows\n", result.Dedupe.Before-result.Dedupe.After)
		}
		for _, e := range result.Errors {
			outputHuman("  skipped: %s\n", e)
		}
	} else {
		outputJSON(result)
	}
	return nil
}

// importRecords merges records into store and optionally deduplicates it.
func importRecords(ws *workspace, store *entity.Store, records []*entity.Record, dedupe bool) ImportResult {
	kind := store.Kind()
	incoming := ws.newStore(kind)
	for _, r := range records {
		if r.Kind() != kind {
			continue
		}
		incoming.AddRecord(r)
	}

	before := store.Len()
	store.Merge(incoming)
	result := ImportResult{
		Kind:   kind.String(),
		Parsed: len(records),
		Added:  store.Len() - before,
		Errors: []string{},
	}
	result.Skipped = result.Parsed - result.Added

	if dedupe {
		report := store.Deduplicate()
		result.Dedupe = &report
	}
	result.Total = store.Len()

	ws.log.Info().
		Str("kind", kind.Plural()).
		Int("parsed", result.Parsed).
		Int("added", result.Added).
		Int("total", result.Total).
		Msg("imported records")
	return result
}
