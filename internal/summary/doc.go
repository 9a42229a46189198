// Package summary implements the activation-trace summarization engine.
//
// The engine consumes one trial's ordered activation sequence and produces a
// call graph: nodes plus typed edges (initial, call, return, sequence). A
// pluggable matching strategy decides when two activations collapse into the
// same node.
//
// ARCHITECTURE:
//
// Single-Pass Stack Traversal:
// The traversal walks the preorder sequence exactly once, maintaining a call
// stack of currently open nodes and a cursor on the most recently processed
// node. Each record's caller_id is compared against the cursor's to classify
// it as a call (push), one or more returns (pop), or a sibling (sequence).
//
// Matching Strategies:
// Four strategies plug into the traversal via matchKey/merge:
//   - namespace_match: merge key is (line, name)
//   - no_match: strictly increasing counter key, so nothing ever merges;
//     also builds the canonical subtree signature ("repr") bottom-up
//   - exact_match: two passes - no_match assigns reprs, then the traversal
//     re-runs over the produced nodes with repr equality as the merge key
//   - tree: no_match traversal, then edges are rebuilt as a pure call tree
//
// Determinism:
// Traversal order alone decides which match-table candidate is found first.
// Only exact key equality is used, and the emitted edge list is sorted, so
// the same input always produces byte-identical wire output.
//
// The engine is synchronous and batch-style: each invocation recomputes from
// the full sequence it is handed. There is no incremental update; whole-result
// reuse lives in the graphcache package.
package summary
