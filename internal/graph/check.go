package graph

import "sort"

// Orphan reasons.
const (
	MissingSource = "missing_source"
	MissingTarget = "missing_target"
	MissingBoth   = "missing_both"
)

// OrphanedEdge is an edge with an endpoint outside the known identifiers.
type OrphanedEdge struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Type   string `json:"type"`
	Reason string `json:"reason"`
}

// DuplicateEdge is an edge recorded more than once.
type DuplicateEdge struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Type   string `json:"type"`
	Count  int    `json:"count"`
}

// CheckReport summarizes the integrity of a set of edges.
type CheckReport struct {
	Edges      int             `json:"edges"`
	Orphaned   []OrphanedEdge  `json:"orphaned"`
	Duplicates []DuplicateEdge `json:"duplicates"`
}

// OK reports whether no problems were found.
func (r CheckReport) OK() bool {
	return len(r.Orphaned) == 0 && len(r.Duplicates) == 0
}

// Check finds edges whose endpoints are not in validIDs, and edges that
// repeat the same source, target and type.
func Check(edges []Link, validIDs map[string]bool) CheckReport {
	report := CheckReport{
		Edges:      len(edges),
		Orphaned:   []OrphanedEdge{},
		Duplicates: []DuplicateEdge{},
	}

	for _, e := range edges {
		sourceOK := validIDs[e.Source]
		targetOK := validIDs[e.Target]
		if sourceOK && targetOK {
			continue
		}
		o := OrphanedEdge{Source: e.Source, Target: e.Target, Type: e.Type}
		switch {
		case !sourceOK && !targetOK:
			o.Reason = MissingBoth
		case !sourceOK:
			o.Reason = MissingSource
		default:
			o.Reason = MissingTarget
		}
		report.Orphaned = append(report.Orphaned, o)
	}

	type key struct{ source, target, typ string }
	counts := make(map[key]int)
	var order []key
	for _, e := range edges {
		k := key{e.Source, e.Target, e.Type}
		if counts[k] == 0 {
			order = append(order, k)
		}
		counts[k]++
	}
	for _, k := range order {
		if counts[k] > 1 {
			report.Duplicates = append(report.Duplicates, DuplicateEdge{
				Source: k.source, Target: k.target, Type: k.typ, Count: counts[k],
			})
		}
	}
	sort.SliceStable(report.Duplicates, func(i, j int) bool {
		return report.Duplicates[i].Count > report.Duplicates[j].Count
	})
	return report
}
