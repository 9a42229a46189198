package summary

import "fmt"

// noMatchStrategy implements the no_match mode: the key is a strictly
// increasing counter, so every activation gets its own node and zero merges
// occur. Data folding is shared with namespace_match.
//
// The strategy also builds each node's repr bottom-up via the traversal
// hooks: "(" opens a call, the child's finished repr plus ")" closes it on
// return, and a childless sibling's repr plus "," is appended to the parent
// before the cursor advances. Two structurally identical subtrees produce
// character-identical reprs, which is the invariant exact_match depends on.
type noMatchStrategy struct {
	lineNameStrategy
	counter int
}

func (s *noMatchStrategy) matchKey(record) matchKey {
	s.counter++
	return s.counter
}

func (s *noMatchStrategy) onInsert(n *Node, rec record) {
	a := rec.(actRecord).act
	n.Repr = fmt.Sprintf("%d-%s", a.Line, n.Name)
}

func (s *noMatchStrategy) onCall(caller *Node) {
	caller.Repr += "("
}

func (s *noMatchStrategy) onReturn(parent, child *Node) {
	parent.Repr += child.Repr + ")"
}

func (s *noMatchStrategy) onSequence(parent, prev *Node) {
	if parent != nil && len(prev.Children) == 0 {
		parent.Repr += prev.Repr + ","
	}
}
