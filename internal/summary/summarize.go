package summary

import "github.com/callsight/callsight/internal/trace"

// Summarize collapses one trial's ordered activation sequence (or several
// trials' sequences already merged by the caller) into a call graph using
// the given mode's matching strategy.
//
// Empty input is valid and yields an empty result. Sequences violating the
// preorder contract fail with a TraceError; an invalid mode fails with an
// UnknownModeError.
func Summarize(mode Mode, activations []trace.Activation) (*Result, error) {
	switch mode {
	case ModeNamespaceMatch:
		return runActivations(lineNameStrategy{}, activations)

	case ModeNoMatch:
		return runActivations(&noMatchStrategy{}, activations)

	case ModeTree:
		s := newSummarizer(&noMatchStrategy{})
		if err := s.run(wrapActivations(activations)); err != nil {
			return nil, err
		}
		s.rebuildTreeEdges()
		return s.result(), nil

	case ModeExactMatch:
		// First pass assigns every node its repr; the second re-traverses
		// the node list with repr equality as the merge key.
		first, err := runActivations(&noMatchStrategy{}, activations)
		if err != nil {
			return nil, err
		}
		second := newSummarizer(structureStrategy{})
		records := make([]record, len(first.Nodes))
		for i, n := range first.Nodes {
			records[i] = n
		}
		if err := second.run(records); err != nil {
			return nil, err
		}
		return second.result(), nil

	default:
		return nil, &UnknownModeError{Mode: mode.String()}
	}
}

func runActivations(strat strategy, activations []trace.Activation) (*Result, error) {
	s := newSummarizer(strat)
	if err := s.run(wrapActivations(activations)); err != nil {
		return nil, err
	}
	return s.result(), nil
}

func wrapActivations(activations []trace.Activation) []record {
	records := make([]record, len(activations))
	for i, act := range activations {
		records[i] = actRecord{act: act}
	}
	return records
}
