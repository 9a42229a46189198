package summary

// rebuildTreeEdges discards every edge produced by the traversal and
// replaces them with a fresh depth-first walk over the node tree, emitting
// only call edges. Each edge's count is the child's sibling position, which
// the renderer uses to order branches.
func (s *summarizer) rebuildTreeEdges() {
	s.edges = make(map[EdgeKey]int64)
	if s.root == nil {
		return
	}
	stack := []*Node{s.root}
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for i, child := range current.Children {
			s.addEdge(current, child, EdgeCall, int64(i))
			stack = append(stack, child)
		}
	}
}
