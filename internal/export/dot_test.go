package export

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/callsight/callsight/internal/summary"
	"github.com/callsight/callsight/internal/testutil"
)

func TestDOT(t *testing.T) {
	b := testutil.NewTraceBuilder(1)
	b.Call("main", 1, 100)
	b.Call("step", 4, 10)

	result, err := summary.Summarize(summary.ModeNamespaceMatch, b.Records())
	require.NoError(t, err)
	graph := result.Graph(TrialColors(1))

	out, err := DOT("trial_1", result, graph)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "digraph trial_1 {"), "got:\n%s", out)
	assert.Contains(t, out, `label="main\n100us"`)
	assert.Contains(t, out, `label="step\n10us"`)
	assert.Contains(t, out, "shape=box")
	assert.Contains(t, out, "n0->n0")
	assert.Contains(t, out, `label="initial x1"`)
	assert.Contains(t, out, "n0->n1")
	assert.Contains(t, out, `label="call x1"`)
	assert.Contains(t, out, "style=dashed")
}

func TestDOT_EmptyResult(t *testing.T) {
	result, err := summary.Summarize(summary.ModeNamespaceMatch, nil)
	require.NoError(t, err)
	graph := result.Graph(TrialColors(1))

	out, err := DOT("trial_1", result, graph)
	require.NoError(t, err)
	assert.Contains(t, out, "digraph trial_1 {")
	assert.NotContains(t, out, "n0")
}

func TestTrialColors(t *testing.T) {
	assert.Equal(t, map[int]int{3: 0}, TrialColors(3))
	assert.Equal(t, map[int]int{2: 0, 7: 1}, TrialColors(7, 2))
	assert.Empty(t, TrialColors())
}
