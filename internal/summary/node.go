package summary

// Node is one merged call-graph node with per-trial aggregates.
//
// Index is assigned monotonically at creation and never reused.
// ChildrenIndex records the node's position among its siblings at creation
// time; it never changes even if siblings are added later.
//
// The per-trial maps are keyed by trial id. TrialIDs lists the contributing
// trials without duplicates, in first-contribution order.
type Node struct {
	Index         int
	ParentIndex   int // -1 for parentless nodes
	Name          string
	CallerID      int64
	Children      []*Node
	ChildrenIndex int

	Activations map[int][]int64 // contributing activation ids per trial
	Duration    map[int]int64   // summed duration per trial, microseconds
	Tooltip     map[int]string  // concatenated tooltip text per trial
	TrialIDs    []int

	// Repr is the canonical subtree signature assigned by the no_match
	// strategy and consumed as the exact_match merge key.
	Repr string
}

func newNode(index int, name string, callerID int64) *Node {
	return &Node{
		Index:         index,
		ParentIndex:   -1,
		Name:          name,
		CallerID:      callerID,
		ChildrenIndex: -1,
		Activations:   make(map[int][]int64),
		Duration:      make(map[int]int64),
		Tooltip:       make(map[int]string),
	}
}

// hasTrial reports whether the trial already contributed to this node.
func (n *Node) hasTrial(trialID int) bool {
	for _, id := range n.TrialIDs {
		if id == trialID {
			return true
		}
	}
	return false
}

// addTrial records a contributing trial, once.
func (n *Node) addTrial(trialID int) {
	if !n.hasTrial(trialID) {
		n.TrialIDs = append(n.TrialIDs, trialID)
	}
}

// recordName and recordCaller let a Node act as traversal input for the
// exact_match second pass, which re-runs the traversal over the node list
// produced by no_match.
func (n *Node) recordName() string  { return n.Name }
func (n *Node) recordCaller() int64 { return n.CallerID }
