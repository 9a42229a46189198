package summary

// EdgeType classifies a graph edge.
type EdgeType string

const (
	// EdgeInitial is the synthetic root self-loop.
	EdgeInitial EdgeType = "initial"

	// EdgeCall links a caller to a callee.
	EdgeCall EdgeType = "call"

	// EdgeReturn links the last node of a subtree back to its caller.
	EdgeReturn EdgeType = "return"

	// EdgeSequence links consecutive siblings.
	EdgeSequence EdgeType = "sequence"
)

// EdgeKey is the composite key of the sparse edge accumulator
// (source x target x type x trial). A flat map keyed by this struct avoids
// the accidental default-insertion that nested auto-creating containers
// invite.
type EdgeKey struct {
	Source int
	Target int
	Type   EdgeType
	Trial  int
}

// addEdge accumulates count onto the edge identified by (source, target,
// type) under the target's trial bin. Contributions from more than one trial
// collapse into the sentinel aggregate trial 0; a single-trial target keeps
// its own trial id. Counts only increase within one pass.
func (s *summarizer) addEdge(source, target *Node, typ EdgeType, count int64) {
	trial := 0
	if len(target.TrialIDs) == 1 {
		trial = target.TrialIDs[0]
	}
	s.edges[EdgeKey{Source: source.Index, Target: target.Index, Type: typ, Trial: trial}] += count
}
