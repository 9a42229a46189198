package summary

import "github.com/callsight/callsight/internal/trace"

// record is one unit of traversal input: a raw activation on the first pass,
// or a node produced by no_match when exact_match re-traverses.
type record interface {
	recordName() string
	recordCaller() int64
}

// actRecord adapts a trace.Activation to the record interface.
type actRecord struct {
	act trace.Activation
}

func (r actRecord) recordName() string  { return r.act.Name }
func (r actRecord) recordCaller() int64 { return r.act.CallerID }

// matchKey is a strategy-defined key. Every concrete key type is comparable;
// the traversal only tests exact equality via map lookup - no fuzzy or
// partial matching.
type matchKey any

// strategy supplies the two variation points of the traversal template:
// how records are keyed for merging, and how a record's data folds into a
// node.
type strategy interface {
	matchKey(rec record) matchKey
	merge(n *Node, rec record)
}

// reprHooks is implemented by the no_match strategy to build the canonical
// subtree signature bottom-up as the traversal runs. Checked by type
// assertion; the other strategies don't implement it.
type reprHooks interface {
	onInsert(n *Node, rec record)
	onCall(caller *Node)
	onReturn(parent, child *Node)
	onSequence(parent, prev *Node)
}

// frame is one open call: the caller node plus the caller_id depth the
// traversal was at when the call pushed it. The depth travels with the
// frame instead of being re-read from the node, because a node reused
// across call sites keeps the caller_id of its first creation record.
type frame struct {
	node  *Node
	depth int64
}

// summarizer runs the stack-based traversal for one strategy.
//
// INVARIANTS:
//   - nextID only increases; node indexes are never reused
//   - the matches table is scoped to this pass and discarded with it
//   - all mutation is single-threaded; independent passes share nothing
type summarizer struct {
	strat   strategy
	nextID  int
	root    *Node
	stack   []frame
	nodes   []*Node
	matches map[int]map[matchKey]*Node // parent index (-1 = parentless) -> key -> node
	edges   map[EdgeKey]int64
}

func newSummarizer(strat strategy) *summarizer {
	return &summarizer{
		strat:   strat,
		matches: make(map[int]map[matchKey]*Node),
		edges:   make(map[EdgeKey]int64),
	}
}

// run consumes the record sequence once, in order.
//
// The first record must open at depth zero; empty input is valid and leaves
// an empty graph. Any caller_id inconsistent with the preorder contract
// fails fast with a TraceError rather than producing a partial graph.
func (s *summarizer) run(records []record) error {
	var (
		last  *Node
		depth int64
	)

	for i, rec := range records {
		if last == nil {
			if rec.recordCaller() != 0 {
				return &TraceError{
					Code:     ErrCodeBadStart,
					Message:  "first record must open at depth zero",
					Position: i,
					CallerID: rec.recordCaller(),
				}
			}
			last = s.insertFirst(rec)
			continue
		}

		caller := rec.recordCaller()
		if caller > depth {
			last = s.insertCall(rec, last, depth)
			depth = caller
			continue
		}

		for caller < depth {
			if len(s.stack) == 0 {
				return &TraceError{
					Code:     ErrCodeBadOrdering,
					Message:  "caller_id dropped below root depth",
					Position: i,
					CallerID: caller,
				}
			}
			last, depth = s.insertReturn(last)
		}
		if caller != depth {
			return &TraceError{
				Code:     ErrCodeBadOrdering,
				Message:  "caller_id landed between open stack frames",
				Position: i,
				CallerID: caller,
			}
		}
		last = s.insertSequence(rec, last)
	}

	// Drain: close every still-open frame.
	for len(s.stack) > 0 {
		last, _ = s.insertReturn(last)
	}
	return nil
}

// insertNode creates a node for rec under parent (nil for parentless nodes)
// and registers it in the match table under key (nil to skip registration).
//
// ChildrenIndex is fixed at creation: it records insertion order among
// siblings, not live position.
func (s *summarizer) insertNode(rec record, parent *Node, key matchKey) *Node {
	n := newNode(s.nextID, trace.CanonicalName(rec.recordName()), rec.recordCaller())
	s.strat.merge(n, rec)
	if h, ok := s.strat.(reprHooks); ok {
		h.onInsert(n, rec)
	}
	s.nextID++

	scope := -1
	if parent != nil {
		n.ParentIndex = parent.Index
		n.ChildrenIndex = len(parent.Children)
		parent.Children = append(parent.Children, n)
		scope = parent.Index
	}
	if key != nil {
		s.matchesFor(scope)[key] = n
	}

	s.nodes = append(s.nodes, n)
	return n
}

// insertFirst creates the root node and its synthetic self-loop edge.
// The root's own key is not registered: later depth-zero records become
// parentless siblings, never merge back into the root.
func (s *summarizer) insertFirst(rec record) *Node {
	n := s.insertNode(rec, nil, nil)
	s.root = n
	s.addEdge(n, n, EdgeInitial, 1)
	return n
}

// insertCall pushes the cursor and creates-or-reuses a child under it.
// A key already registered in the caller's scope means the same child was
// produced by an earlier visit; the record merges into it instead of
// creating a duplicate. The caller's depth is saved with the frame so a
// later return restores the depth this call was made from.
func (s *summarizer) insertCall(rec record, last *Node, depth int64) *Node {
	s.stack = append(s.stack, frame{node: last, depth: depth})
	if h, ok := s.strat.(reprHooks); ok {
		h.onCall(last)
	}
	key := s.strat.matchKey(rec)
	node := s.matchesFor(last.Index)[key]
	if node == nil {
		node = s.insertNode(rec, last, key)
	} else {
		s.strat.merge(node, rec)
	}
	s.addEdge(last, node, EdgeCall, 1)
	return node
}

// insertReturn pops the stack top and emits a return edge from the cursor
// back to it, restoring the depth saved when the frame was pushed.
func (s *summarizer) insertReturn(last *Node) (*Node, int64) {
	f := s.stack[len(s.stack)-1]
	s.stack = s.stack[:len(s.stack)-1]
	s.addEdge(last, f.node, EdgeReturn, 1)
	if h, ok := s.strat.(reprHooks); ok {
		h.onReturn(f.node, last)
	}
	return f.node, f.depth
}

// insertSequence creates-or-reuses a sibling of last under last's parent and
// emits a sequence edge to it. Parentless cursors (depth-zero siblings)
// match in the global -1 scope, keeping depth-zero nodes parentless so the
// root-conservation property holds.
func (s *summarizer) insertSequence(rec record, last *Node) *Node {
	parent := s.parentOf(last)
	if h, ok := s.strat.(reprHooks); ok {
		h.onSequence(parent, last)
	}
	key := s.strat.matchKey(rec)
	scope := -1
	if parent != nil {
		scope = parent.Index
	}
	node := s.matchesFor(scope)[key]
	if node == nil {
		node = s.insertNode(rec, parent, key)
	} else {
		s.strat.merge(node, rec)
	}
	s.addEdge(last, node, EdgeSequence, 1)
	return node
}

func (s *summarizer) parentOf(n *Node) *Node {
	if n.ParentIndex < 0 {
		return nil
	}
	return s.nodes[n.ParentIndex]
}

func (s *summarizer) matchesFor(scope int) map[matchKey]*Node {
	m, ok := s.matches[scope]
	if !ok {
		m = make(map[matchKey]*Node)
		s.matches[scope] = m
	}
	return m
}

// result packages the pass output. The matches table is deliberately not
// part of it: match state never outlives the pass that built it.
func (s *summarizer) result() *Result {
	return &Result{Root: s.root, Nodes: s.nodes, Edges: s.edges}
}
