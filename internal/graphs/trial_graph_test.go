package graphs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/callsight/callsight/internal/graphcache"
	"github.com/callsight/callsight/internal/store"
	"github.com/callsight/callsight/internal/summary"
	"github.com/callsight/callsight/internal/trace"
)

// fakeSource serves one in-memory trial and counts reads, so tests can tell
// a cache hit from a recomputation.
type fakeSource struct {
	trial       trace.Trial
	activations []trace.Activation
	reads       int
}

func (f *fakeSource) ReadTrial(ctx context.Context, trialID int) (trace.Trial, error) {
	if trialID != f.trial.ID {
		return trace.Trial{}, &store.NotFoundError{TrialID: trialID}
	}
	return f.trial, nil
}

func (f *fakeSource) ReadActivations(ctx context.Context, trialID int) ([]trace.Activation, error) {
	if trialID != f.trial.ID {
		return nil, &store.NotFoundError{TrialID: trialID}
	}
	f.reads++
	return f.activations, nil
}

func newFakeSource(finished bool) *fakeSource {
	return &fakeSource{
		trial: trace.Trial{ID: 7, Script: "run.py", Finished: finished},
		activations: []trace.Activation{
			{ID: 1, Name: "main", Line: 1, CallerID: 0, TrialID: 7, Duration: 30},
			{ID: 2, Name: "step", Line: 4, CallerID: 1, TrialID: 7, Duration: 10},
		},
	}
}

func TestTrialGraph_ByMode(t *testing.T) {
	source := newFakeSource(true)
	g := New(source, graphcache.New[*summary.Graph](), 7)

	finished, graph, err := g.ByMode(context.Background(), summary.ModeNamespaceMatch)
	require.NoError(t, err)
	assert.True(t, finished)
	require.NotNil(t, graph.Root)
	assert.Equal(t, 0, *graph.Root)
	assert.Equal(t, map[int]int{7: 0}, graph.Colors)
	assert.Equal(t, map[int]int64{7: 10}, graph.MinDuration)
	assert.Equal(t, map[int]int64{7: 30}, graph.MaxDuration)
}

func TestTrialGraph_CachedCallReturnsSameGraph(t *testing.T) {
	source := newFakeSource(true)
	g := New(source, graphcache.New[*summary.Graph](), 7)
	ctx := context.Background()

	_, first, err := g.ByMode(ctx, summary.ModeNamespaceMatch)
	require.NoError(t, err)
	_, second, err := g.ByMode(ctx, summary.ModeNamespaceMatch)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, source.reads)
}

func TestTrialGraph_BypassRecomputesAndRefreshes(t *testing.T) {
	source := newFakeSource(false)
	cache := graphcache.New[*summary.Graph]()
	g := New(source, cache, 7)
	ctx := context.Background()

	_, first, err := g.ByMode(ctx, summary.ModeNamespaceMatch)
	require.NoError(t, err)

	g.UseCache = false
	_, second, err := g.ByMode(ctx, summary.ModeNamespaceMatch)
	require.NoError(t, err)

	assert.NotSame(t, first, second)
	assert.Equal(t, 2, source.reads)

	// The bypassing call still refreshed the memoized entry.
	g.UseCache = true
	_, third, err := g.ByMode(ctx, summary.ModeNamespaceMatch)
	require.NoError(t, err)
	assert.Same(t, second, third)
}

func TestTrialGraph_ModesCachedIndependently(t *testing.T) {
	source := newFakeSource(true)
	cache := graphcache.New[*summary.Graph]()
	g := New(source, cache, 7)
	ctx := context.Background()

	_, _, err := g.ByMode(ctx, summary.ModeNamespaceMatch)
	require.NoError(t, err)
	_, _, err = g.ByMode(ctx, summary.ModeTree)
	require.NoError(t, err)

	assert.Equal(t, 2, cache.Len())
	assert.Equal(t, 2, source.reads)
}

func TestTrialGraph_UnknownMode(t *testing.T) {
	g := New(newFakeSource(true), nil, 7)

	_, _, err := g.ByMode(context.Background(), summary.Mode(42))
	assert.True(t, summary.IsUnknownMode(err))
}

func TestTrialGraph_UnknownTrial(t *testing.T) {
	g := New(newFakeSource(true), nil, 99)

	_, _, err := g.ByMode(context.Background(), summary.ModeNamespaceMatch)
	assert.True(t, store.IsNotFound(err))
}

func TestTrialGraph_ResultBypassesCache(t *testing.T) {
	source := newFakeSource(true)
	cache := graphcache.New[*summary.Graph]()
	g := New(source, cache, 7)
	ctx := context.Background()

	finished, result, err := g.Result(ctx, summary.ModeNoMatch)
	require.NoError(t, err)
	assert.True(t, finished)
	require.Len(t, result.Nodes, 2)
	assert.Equal(t, "main", result.Root.Name)
	assert.Equal(t, 0, cache.Len())
}
