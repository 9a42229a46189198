package summary

import (
	"fmt"

	"github.com/callsight/callsight/internal/trace"
)

// lineNameKey merges any two activations sharing source line and name
// within the same match-table scope.
type lineNameKey struct {
	line int
	name string
}

// lineNameStrategy implements the namespace_match mode.
type lineNameStrategy struct{}

func (lineNameStrategy) matchKey(rec record) matchKey {
	a := rec.(actRecord).act
	return lineNameKey{line: a.Line, name: trace.CanonicalName(a.Name)}
}

// merge folds one activation into a node: trial ids union, activation id
// lists concatenate, durations sum, tooltips concatenate.
func (lineNameStrategy) merge(n *Node, rec record) {
	a := rec.(actRecord).act
	n.addTrial(a.TrialID)
	n.Activations[a.TrialID] = append(n.Activations[a.TrialID], a.ID)
	n.Duration[a.TrialID] += a.Duration
	n.Tooltip[a.TrialID] += fmt.Sprintf("T%d - %d<br>Line %d<br>", a.TrialID, a.ID, a.Line)
}
