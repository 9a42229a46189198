package graphcache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/callsight/callsight/internal/summary"
)

func TestCache_LookupMiss(t *testing.T) {
	c := New[*summary.Graph]()

	_, ok := c.Lookup("trial 1", summary.ModeNamespaceMatch)
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestCache_StoreAndLookup(t *testing.T) {
	c := New[*summary.Graph]()
	graph := &summary.Graph{Edges: []summary.Edge{}}

	c.Store("trial 1", summary.ModeNamespaceMatch, Entry[*summary.Graph]{Finished: true, Graph: graph})

	e, ok := c.Lookup("trial 1", summary.ModeNamespaceMatch)
	require.True(t, ok)
	assert.True(t, e.Finished)
	assert.Same(t, graph, e.Graph)
}

func TestCache_KeyedByIdentityAndMode(t *testing.T) {
	c := New[*summary.Graph]()

	c.Store("trial 1", summary.ModeNamespaceMatch, Entry[*summary.Graph]{})

	_, ok := c.Lookup("trial 1", summary.ModeTree)
	assert.False(t, ok, "mode is part of the key")
	_, ok = c.Lookup("trial 2", summary.ModeNamespaceMatch)
	assert.False(t, ok, "identity is part of the key")

	c.Store("trial 1", summary.ModeTree, Entry[*summary.Graph]{})
	assert.Equal(t, 2, c.Len())
}

func TestCache_StoreReplaces(t *testing.T) {
	c := New[*summary.Graph]()

	c.Store("trial 1", summary.ModeNamespaceMatch, Entry[*summary.Graph]{Finished: false})
	c.Store("trial 1", summary.ModeNamespaceMatch, Entry[*summary.Graph]{Finished: true})

	e, ok := c.Lookup("trial 1", summary.ModeNamespaceMatch)
	require.True(t, ok)
	assert.True(t, e.Finished)
	assert.Equal(t, 1, c.Len())
}
