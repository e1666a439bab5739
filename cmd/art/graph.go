package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matsen/artool/internal/graph"
)

var (
	graphFormat string
	graphOutput string
	graphLayout string
	graphStore  bool
)

func init() {
	graphCmd.Flags().StringVar(&graphFormat, "format", "json", "Output format: json, cytoscape or html")
	graphCmd.Flags().StringVarP(&graphOutput, "output", "o", "", "Output file path (default: stdout)")
	graphCmd.Flags().StringVar(&graphLayout, "layout", "force", "HTML layout: force, circle, grid or concentric")
	graphCmd.Flags().BoolVar(&graphStore, "store", false, "Save the edges in the query cache for 'art check'")
	rootCmd.AddCommand(graphCmd)
}

var graphCmd = &cobra.Command{
	Use:   "graph <type>",
	Short: "Build a network from the repository",
	Long: `Build a network from the repository.

Types:
  citation            works -> cited works (directed)
  cocitation          works cited together by the same work
  coupling            works citing the same work (bibliographic coupling)
  coauthorship        authors sharing works, weighted by shared works
  cofunder            funders of the same works, weighted by shared works
  author-work         bipartite: works and their authors
  funder-work         bipartite: works and their funders
  author-affiliation  bipartite: authors and their affiliations

Examples:
  art graph citation > citation.json
  art graph coauthorship --format html -o coauthors.html
  art graph coupling --format cytoscape --store`,
	Args: cobra.ExactArgs(1),
	RunE: runGraph,
}

// graphBuilders maps graph type names to their constructors.
var graphBuilders = map[string]func(*workspace) *graph.Graph{
	"citation": func(ws *workspace) *graph.Graph { return graph.CitationGraph(ws.works()) },
	"cocitation": func(ws *workspace) *graph.Graph {
		return graph.Cocitation(graph.CitationGraph(ws.works()))
	},
	"coupling": func(ws *workspace) *graph.Graph {
		return graph.BibliographicCoupling(graph.CitationGraph(ws.works()))
	},
	"coauthorship":       func(ws *workspace) *graph.Graph { return graph.CoauthorshipGraph(ws.authors(), ws.works()) },
	"cofunder":           func(ws *workspace) *graph.Graph { return graph.CofunderGraph(ws.funders(), ws.works()) },
	"author-work":        func(ws *workspace) *graph.Graph { return graph.AuthorWorkGraph(ws.works()) },
	"funder-work":        func(ws *workspace) *graph.Graph { return graph.FunderWorkGraph(ws.works()) },
	"author-affiliation": func(ws *workspace) *graph.Graph { return graph.AuthorAffiliationGraph(ws.authors()) },
}

// graphTypes returns the graph type names, sorted.
func graphTypes() []string {
	names := make([]string, 0, len(graphBuilders))
	for name := range graphBuilders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// buildGraph builds the named network.
func buildGraph(ws *workspace, name string) (*graph.Graph, error) {
	build, ok := graphBuilders[name]
	if !ok {
		return nil, fmt.Errorf("unknown graph type %q (valid: %s)", name, strings.Join(graphTypes(), ", "))
	}
	g := build(ws)
	ws.log.Debug().Str("graph", name).Int("vertices", g.VertexCount()).Int("edges", g.EdgeCount()).Msg("built graph")
	return g, nil
}

// renderGraph encodes g in the requested format.
func renderGraph(g *graph.Graph, name, format, layout string) (string, error) {
	switch format {
	case "json":
		data, err := g.ToJSON()
		if err != nil {
			return "", err
		}
		return string(data) + "\n", nil
	case "cytoscape":
		s, err := g.Data().ToCytoscapeJSON()
		if err != nil {
			return "", err
		}
		return s + "\n", nil
	case "html":
		return graph.GenerateHTML(g.Data(), graph.HTMLOptions{Layout: layout, Title: name + " network"})
	}
	return "", fmt.Errorf("unknown format %q (valid: json, cytoscape, html)", format)
}

// GraphResult is the response for graph commands writing to a file.
type GraphResult struct {
	Graph    string `json:"graph"`
	Output   string `json:"output,omitempty"`
	Vertices int    `json:"vertices"`
	Edges    int    `json:"edges"`
	Stored   bool   `json:"stored,omitempty"`
}

func runGraph(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	ws := mustLoadWorkspace(repoRoot)
	name := args[0]

	g, err := buildGraph(ws, name)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}
	out, err := renderGraph(g, name, graphFormat, graphLayout)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}

	result := GraphResult{Graph: name, Output: graphOutput, Vertices: g.VertexCount(), Edges: g.EdgeCount()}
	if graphStore {
		db := mustOpenDatabase(repoRoot)
		defer db.Close()
		if _, err := db.InsertGraph(name, g); err != nil {
			exitWithError(ExitError, "storing graph: %v", err)
		}
		result.Stored = true
	}

	if graphOutput == "" {
		fmt.Print(out)
		return nil
	}
	if err := os.WriteFile(graphOutput, []byte(out), 0644); err != nil {
		exitWithError(ExitError, "writing output file: %v", err)
	}
	if humanOutput {
		outputHuman("Wrote %s network (%d vertices, %d edges) to %s\n", name, result.Vertices, result.Edges, graphOutput)
	} else {
		outputJSON(result)
	}
	return nil
}
