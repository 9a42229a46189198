// Package diff aligns two trials' summarized call graphs for cross-trial
// comparison.
//
// The alignment walks both node trees top-down, pairing children by merged
// name within a bounded sibling window (the neighborhood radius) and under a
// wall-clock budget (the time limit). Exceeding either bound truncates the
// search: whatever remains unmatched is treated as a pure addition or
// removal. Matched nodes merge into one combined node whose per-trial
// aggregates keep both trials apart; the wire contract marks multi-trial
// edges with the sentinel aggregate trial 0 as usual.
//
// The exact alignment algorithm is provisional: the bounds are honored as
// documented, but the pairing heuristic (name equality within a sibling
// window) may be tightened once real diff behavior is pinned down.
package diff

import (
	"sort"
	"time"

	"github.com/callsight/callsight/internal/export"
	"github.com/callsight/callsight/internal/summary"
)

// DefaultTimeLimit bounds the alignment search when the caller passes no
// explicit budget.
const DefaultTimeLimit = time.Second

// DefaultNeighborhoods is the default sibling-window radius.
const DefaultNeighborhoods = 2

// Options bound how aggressively structurally dissimilar subtrees are still
// aligned.
type Options struct {
	// TimeLimit is the wall-clock alignment budget. Zero means
	// DefaultTimeLimit; negative disables the bound.
	TimeLimit time.Duration

	// Neighborhoods is the sibling-window radius: children further apart in
	// sibling order than this are never paired. Negative means
	// DefaultNeighborhoods.
	Neighborhoods int
}

// Graph is the diff wire contract: the combined graph plus the collections
// present only in one trial.
type Graph struct {
	Diff   *summary.Graph `json:"diff"`
	Trial1 Only           `json:"trial1"`
	Trial2 Only           `json:"trial2"`
}

// Only lists combined-graph node indexes and edges contributed by a single
// trial.
type Only struct {
	Nodes []int          `json:"nodes"`
	Edges []summary.Edge `json:"edges"`
}

// Graphs aligns two summarization results into a combined graph.
// trial1 and trial2 are the owning trial ids; they must differ.
func Graphs(trial1, trial2 int, r1, r2 *summary.Result, opts Options) *Graph {
	a := newAligner(opts)

	switch {
	case r1.Root == nil && r2.Root == nil:
		// Two empty trials diff to an empty graph.
	case r1.Root == nil:
		a.addUnmatched(r2.Root, nil)
	case r2.Root == nil:
		a.addUnmatched(r1.Root, nil)
	case matched(r1.Root, r2.Root):
		a.align(r1.Root, r2.Root, nil)
	default:
		// Roots disagree: everything is an addition/removal.
		a.addUnmatched(r1.Root, nil)
		a.addUnmatched(r2.Root, nil)
	}

	combined := &summary.Result{Root: a.root, Nodes: a.nodes, Edges: a.edges}
	graph := combined.Graph(export.TrialColors(trial1, trial2))

	out := &Graph{Diff: graph}
	out.Trial1 = a.onlyFor(trial1, graph)
	out.Trial2 = a.onlyFor(trial2, graph)
	return out
}

// matched reports whether two nodes pair up. Names are already
// NFC-canonical, so byte equality suffices.
func matched(a, b *summary.Node) bool {
	return a.Name == b.Name
}

type aligner struct {
	deadline time.Time // zero = unbounded
	radius   int
	expired  bool

	root  *summary.Node
	nodes []*summary.Node
	edges map[summary.EdgeKey]int64
}

func newAligner(opts Options) *aligner {
	limit := opts.TimeLimit
	if limit == 0 {
		limit = DefaultTimeLimit
	}
	radius := opts.Neighborhoods
	if radius < 0 {
		radius = DefaultNeighborhoods
	}

	a := &aligner{
		radius: radius,
		edges:  make(map[summary.EdgeKey]int64),
	}
	if limit > 0 {
		a.deadline = time.Now().Add(limit)
	}
	return a
}

// overBudget reports whether the alignment budget is spent. Once expired it
// stays expired: the remaining unmatched subtrees become pure
// additions/removals.
func (a *aligner) overBudget() bool {
	if a.expired {
		return true
	}
	if !a.deadline.IsZero() && time.Now().After(a.deadline) {
		a.expired = true
	}
	return a.expired
}

// align merges a matched pair into one combined node and pairs up their
// children.
func (a *aligner) align(n1, n2 *summary.Node, parent *summary.Node) {
	combined := a.mergeNode(n1, n2, parent)

	used := make([]bool, len(n2.Children))
	for i, c1 := range n1.Children {
		j := a.findPartner(c1, n2.Children, used, i)
		if j >= 0 {
			used[j] = true
			a.align(c1, n2.Children[j], combined)
		} else {
			a.addUnmatched(c1, combined)
		}
	}
	for j, c2 := range n2.Children {
		if !used[j] {
			a.addUnmatched(c2, combined)
		}
	}
}

// findPartner looks for an unused matching child within the sibling window
// around position. Returns -1 when none qualifies or the budget is spent.
func (a *aligner) findPartner(c *summary.Node, candidates []*summary.Node, used []bool, position int) int {
	if a.overBudget() {
		return -1
	}
	lo := position - a.radius
	if lo < 0 {
		lo = 0
	}
	hi := position + a.radius
	if hi > len(candidates)-1 {
		hi = len(candidates) - 1
	}
	for j := lo; j <= hi; j++ {
		if !used[j] && matched(c, candidates[j]) {
			return j
		}
	}
	return -1
}

// addUnmatched clones a whole subtree into the combined graph unchanged:
// its aggregates already carry exactly one trial, which marks it as an
// addition or removal.
func (a *aligner) addUnmatched(n *summary.Node, parent *summary.Node) {
	combined := a.mergeNode(n, nil, parent)
	for _, child := range n.Children {
		a.addUnmatched(child, combined)
	}
}

// mergeNode creates the combined node for n1 (and n2 when matched) under
// parent, wiring a call edge from the parent and the synthetic initial
// self-loop for the combined root.
func (a *aligner) mergeNode(n1, n2 *summary.Node, parent *summary.Node) *summary.Node {
	combined := &summary.Node{
		Index:         len(a.nodes),
		ParentIndex:   -1,
		Name:          n1.Name,
		CallerID:      n1.CallerID,
		ChildrenIndex: -1,
		Activations:   make(map[int][]int64),
		Duration:      make(map[int]int64),
		Tooltip:       make(map[int]string),
		Repr:          n1.Repr,
	}
	copyAggregates(combined, n1)
	if n2 != nil {
		copyAggregates(combined, n2)
	}

	if parent != nil {
		combined.ParentIndex = parent.Index
		combined.ChildrenIndex = len(parent.Children)
		parent.Children = append(parent.Children, combined)
	}
	a.nodes = append(a.nodes, combined)

	if parent == nil {
		if a.root == nil {
			a.root = combined
			a.addEdge(combined, combined, summary.EdgeInitial)
		}
	} else {
		a.addEdge(parent, combined, summary.EdgeCall)
	}
	return combined
}

func (a *aligner) addEdge(source, target *summary.Node, typ summary.EdgeType) {
	trial := 0
	if len(target.TrialIDs) == 1 {
		trial = target.TrialIDs[0]
	}
	a.edges[summary.EdgeKey{Source: source.Index, Target: target.Index, Type: typ, Trial: trial}]++
}

func copyAggregates(dst, src *summary.Node) {
	for _, trialID := range src.TrialIDs {
		if !containsInt(dst.TrialIDs, trialID) {
			dst.TrialIDs = append(dst.TrialIDs, trialID)
		}
		dst.Activations[trialID] = append(dst.Activations[trialID], src.Activations[trialID]...)
		dst.Duration[trialID] += src.Duration[trialID]
		dst.Tooltip[trialID] += src.Tooltip[trialID]
	}
}

// onlyFor derives one trial's exclusive collections from the combined
// graph: nodes whose aggregates came from that trial alone, and edges whose
// count map carries that trial alone.
func (a *aligner) onlyFor(trialID int, graph *summary.Graph) Only {
	only := Only{Nodes: []int{}, Edges: []summary.Edge{}}
	for _, n := range a.nodes {
		if len(n.TrialIDs) == 1 && n.TrialIDs[0] == trialID {
			only.Nodes = append(only.Nodes, n.Index)
		}
	}
	sort.Ints(only.Nodes)
	for _, e := range graph.Edges {
		if len(e.Count) == 1 {
			if _, ok := e.Count[trialID]; ok {
				only.Edges = append(only.Edges, e)
			}
		}
	}
	return only
}

func containsInt(list []int, v int) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
