// Package export renders summarization results to external formats.
package export

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/awalterschulze/gographviz"

	"github.com/callsight/callsight/internal/summary"
)

// DOT renders a summarization result as a Graphviz digraph.
//
// Nodes are labeled with the merged name and total duration; edge labels
// carry the edge type and summed count. Edges follow the wire graph's
// deterministic order so output is stable across runs.
func DOT(name string, result *summary.Result, graph *summary.Graph) (string, error) {
	g := gographviz.NewGraph()
	if err := g.SetName(name); err != nil {
		return "", fmt.Errorf("dot graph name: %w", err)
	}
	if err := g.SetDir(true); err != nil {
		return "", fmt.Errorf("dot graph direction: %w", err)
	}

	for _, node := range result.Nodes {
		var total int64
		for _, d := range node.Duration {
			total += d
		}
		attrs := map[string]string{
			"label": strconv.Quote(fmt.Sprintf("%s\\n%dus", node.Name, total)),
			"shape": "box",
		}
		if err := g.AddNode(name, nodeID(node.Index), attrs); err != nil {
			return "", fmt.Errorf("dot node %d: %w", node.Index, err)
		}
	}

	for _, edge := range graph.Edges {
		var count int64
		for _, c := range edge.Count {
			count += c
		}
		attrs := map[string]string{
			"label": strconv.Quote(fmt.Sprintf("%s x%d", edge.Type, count)),
		}
		if edge.Type == summary.EdgeReturn || edge.Type == summary.EdgeSequence {
			attrs["style"] = "dashed"
		}
		if err := g.AddEdge(nodeID(edge.Source), nodeID(edge.Target), true, attrs); err != nil {
			return "", fmt.Errorf("dot edge %d->%d: %w", edge.Source, edge.Target, err)
		}
	}

	return g.String(), nil
}

// TrialColors builds a deterministic trial->color-slot mapping for a set of
// trial ids, lowest id first.
func TrialColors(trialIDs ...int) map[int]int {
	sorted := append([]int(nil), trialIDs...)
	sort.Ints(sorted)
	colors := make(map[int]int, len(sorted))
	for i, id := range sorted {
		colors[id] = i
	}
	return colors
}

func nodeID(index int) string {
	return fmt.Sprintf("n%d", index)
}
