// Package graphs orchestrates summarization over stored trials: it resolves
// a trial's activation sequence, runs the requested strategy, and memoizes
// the wire graph in the result cache.
package graphs

import (
	"context"
	"fmt"

	"github.com/callsight/callsight/internal/graphcache"
	"github.com/callsight/callsight/internal/summary"
	"github.com/callsight/callsight/internal/trace"
)

// TrialSource supplies canonical trial data. Implemented by store.Store.
// The source remains the sole owner of trial records; graphs hold trials
// by id only.
type TrialSource interface {
	ReadTrial(ctx context.Context, trialID int) (trace.Trial, error)
	ReadActivations(ctx context.Context, trialID int) ([]trace.Activation, error)
}

// TrialGraph computes call graphs for one trial, identified by a non-owning
// trial id.
//
// UseCache is consulted per call: when false the graph is recomputed from
// the stored sequence even if a memoized entry exists. The memoized entry
// is still refreshed, so a later cached call observes the newest result.
type TrialGraph struct {
	source   TrialSource
	cache    *graphcache.Cache[*summary.Graph]
	trialID  int
	UseCache bool
}

// New creates a TrialGraph for the given trial id. cache may be nil, in
// which case every call recomputes.
func New(source TrialSource, cache *graphcache.Cache[*summary.Graph], trialID int) *TrialGraph {
	return &TrialGraph{
		source:   source,
		cache:    cache,
		trialID:  trialID,
		UseCache: true,
	}
}

// TrialID returns the id of the trial this graph summarizes.
func (g *TrialGraph) TrialID() int { return g.trialID }

// identity is the stable cache identity for this trial.
func (g *TrialGraph) identity() string {
	return fmt.Sprintf("trial %d", g.trialID)
}

// ByMode returns the wire graph for the requested mode, plus whether the
// trial was finished when the graph was computed. A cached call with caching
// enabled returns the prior result without recomputation.
//
// Unknown trials surface the store's not-found error; unknown modes an
// UnknownModeError.
func (g *TrialGraph) ByMode(ctx context.Context, mode summary.Mode) (bool, *summary.Graph, error) {
	if !mode.Valid() {
		return false, nil, &summary.UnknownModeError{Mode: mode.String()}
	}

	if g.UseCache && g.cache != nil {
		if e, ok := g.cache.Lookup(g.identity(), mode); ok {
			return e.Finished, e.Graph, nil
		}
	}

	finished, result, err := g.compute(ctx, mode)
	if err != nil {
		return false, nil, err
	}

	graph := result.Graph(map[int]int{g.trialID: 0})
	if g.cache != nil {
		g.cache.Store(g.identity(), mode, graphcache.Entry[*summary.Graph]{Finished: finished, Graph: graph})
	}
	return finished, graph, nil
}

// Result recomputes the internal node/edge result for the requested mode,
// bypassing the cache, and reports whether the trial was finished when the
// result was computed. Consumers that need node detail (DOT export, diff
// alignment) use this instead of the wire graph.
func (g *TrialGraph) Result(ctx context.Context, mode summary.Mode) (bool, *summary.Result, error) {
	return g.compute(ctx, mode)
}

func (g *TrialGraph) compute(ctx context.Context, mode summary.Mode) (bool, *summary.Result, error) {
	trial, err := g.source.ReadTrial(ctx, g.trialID)
	if err != nil {
		return false, nil, err
	}
	activations, err := g.source.ReadActivations(ctx, g.trialID)
	if err != nil {
		return false, nil, err
	}
	result, err := summary.Summarize(mode, activations)
	if err != nil {
		return false, nil, fmt.Errorf("summarize trial %d: %w", g.trialID, err)
	}
	return trial.Finished, result, nil
}
