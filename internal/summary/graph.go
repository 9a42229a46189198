package summary

import "sort"

// Graph is the wire-format call graph handed to external consumers.
//
// Root is null for an empty trace. Duration maps are keyed by trial id;
// the color mapping is caller-supplied and echoed unchanged.
type Graph struct {
	Root        *int          `json:"root"`
	Edges       []Edge        `json:"edges"`
	MinDuration map[int]int64 `json:"min_duration"`
	MaxDuration map[int]int64 `json:"max_duration"`
	Colors      map[int]int   `json:"colors"`
}

// Edge is one flattened edge. Count maps trial id to count; contributions
// from more than one trial appear once under the sentinel aggregate trial 0.
type Edge struct {
	Source int           `json:"source"`
	Target int           `json:"target"`
	Type   EdgeType      `json:"type"`
	Count  map[int]int64 `json:"count"`
}

// Result is the internal output of one summarization pass. Graph renders it
// to the wire format; the export and diff packages consume the node list
// directly.
type Result struct {
	Root  *Node
	Nodes []*Node
	Edges map[EdgeKey]int64
}

// Graph renders the result to the wire format. Pure: it never mutates the
// underlying nodes or edges, so a result can be rendered more than once.
//
// Edges are grouped by (source, target, type) and sorted on that triple so
// output is deterministic regardless of map iteration order.
func (r *Result) Graph(colors map[int]int) *Graph {
	g := &Graph{
		Edges:       []Edge{},
		MinDuration: make(map[int]int64),
		MaxDuration: make(map[int]int64),
		Colors:      colors,
	}
	if r.Root != nil {
		root := r.Root.Index
		g.Root = &root
	}

	for _, node := range r.Nodes {
		for trialID, duration := range node.Duration {
			if cur, ok := g.MinDuration[trialID]; !ok || duration < cur {
				g.MinDuration[trialID] = duration
			}
			if cur, ok := g.MaxDuration[trialID]; !ok || duration > cur {
				g.MaxDuration[trialID] = duration
			}
		}
	}

	type triple struct {
		source int
		target int
		typ    EdgeType
	}
	grouped := make(map[triple]map[int]int64)
	for key, count := range r.Edges {
		t := triple{source: key.Source, target: key.Target, typ: key.Type}
		counts, ok := grouped[t]
		if !ok {
			counts = make(map[int]int64)
			grouped[t] = counts
		}
		counts[key.Trial] += count
	}

	for t, counts := range grouped {
		g.Edges = append(g.Edges, Edge{
			Source: t.source,
			Target: t.target,
			Type:   t.typ,
			Count:  counts,
		})
	}
	sort.Slice(g.Edges, func(i, j int) bool {
		a, b := g.Edges[i], g.Edges[j]
		if a.Source != b.Source {
			return a.Source < b.Source
		}
		if a.Target != b.Target {
			return a.Target < b.Target
		}
		return a.Type < b.Type
	})

	return g
}
