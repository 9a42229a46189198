package summary

// reprKey matches nodes whose entire subtree shape is identical,
// independent of where the shape occurs.
type reprKey string

// structureStrategy implements the second pass of the exact_match mode.
// Its input records are the nodes produced by a no_match pass, each already
// carrying a repr and its own per-trial aggregates.
type structureStrategy struct{}

func (structureStrategy) matchKey(rec record) matchKey {
	return reprKey(rec.(*Node).Repr)
}

// merge folds a source node's aggregates into the target: activation id
// lists concatenate per trial, durations sum, tooltips concatenate, trial
// ids union. The repr carries over so the merged node stays matchable.
func (structureStrategy) merge(n *Node, rec record) {
	src := rec.(*Node)
	if n.Repr == "" {
		n.Repr = src.Repr
	}
	for _, trialID := range src.TrialIDs {
		n.addTrial(trialID)
		n.Activations[trialID] = append(n.Activations[trialID], src.Activations[trialID]...)
		n.Duration[trialID] += src.Duration[trialID]
		n.Tooltip[trialID] += src.Tooltip[trialID] + "<br>"
	}
}
