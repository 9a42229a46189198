package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/callsight/callsight/internal/graphcache"
	"github.com/callsight/callsight/internal/store"
	"github.com/callsight/callsight/internal/summary"
	"github.com/callsight/callsight/internal/trace"
)

// newTestServer builds a server over a seeded temp-dir store and returns the
// ids of two stored trials.
func newTestServer(t *testing.T) (*httptest.Server, int, int) {
	t.Helper()

	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	first := seedTrial(t, s, "first.py", []trace.Activation{
		{ID: 1, Name: "main", Line: 1, CallerID: 0, Duration: 100},
		{ID: 2, Name: "step", Line: 4, CallerID: 1, Duration: 10},
	})
	second := seedTrial(t, s, "second.py", []trace.Activation{
		{ID: 1, Name: "main", Line: 1, CallerID: 0, Duration: 80},
		{ID: 2, Name: "other", Line: 6, CallerID: 1, Duration: 5},
	})

	srv := New(Config{Store: s, Cache: graphcache.New[*summary.Graph]()})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, first, second
}

func seedTrial(t *testing.T, s *store.Store, script string, activations []trace.Activation) int {
	t.Helper()
	ctx := context.Background()
	id, err := s.WriteTrial(ctx, trace.Trial{Script: script, Finished: true})
	require.NoError(t, err)
	require.NoError(t, s.WriteActivations(ctx, id, activations))
	return id
}

func get(t *testing.T, url string, out any) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestServer_ListTrials(t *testing.T) {
	ts, first, second := newTestServer(t)

	var body struct {
		Trials []trace.Trial `json:"trials"`
	}
	status := get(t, ts.URL+"/trials", &body)

	assert.Equal(t, http.StatusOK, status)
	require.Len(t, body.Trials, 2)
	assert.Equal(t, first, body.Trials[0].ID)
	assert.Equal(t, second, body.Trials[1].ID)
	assert.Equal(t, "first.py", body.Trials[0].Script)
}

func TestServer_TrialGraph(t *testing.T) {
	ts, first, _ := newTestServer(t)

	var graph struct {
		Root  *int             `json:"root"`
		Edges []map[string]any `json:"edges"`
		Max   map[string]int64 `json:"max_duration"`
	}
	status := get(t, ts.URL+"/trials/"+strconv.Itoa(first)+"/namespace_match/1.json", &graph)

	assert.Equal(t, http.StatusOK, status)
	require.NotNil(t, graph.Root)
	assert.Equal(t, 0, *graph.Root)
	assert.Len(t, graph.Edges, 3)
	assert.Equal(t, int64(100), graph.Max[strconv.Itoa(first)])
}

func TestServer_TrialGraphNumericMode(t *testing.T) {
	ts, first, _ := newTestServer(t)

	status := get(t, ts.URL+"/trials/"+strconv.Itoa(first)+"/3/0.json", nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestServer_TrialGraphUnknownMode(t *testing.T) {
	ts, first, _ := newTestServer(t)

	status := get(t, ts.URL+"/trials/"+strconv.Itoa(first)+"/sideways/1.json", nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestServer_TrialGraphUnknownTrial(t *testing.T) {
	ts, _, _ := newTestServer(t)

	status := get(t, ts.URL+"/trials/999/namespace_match/1.json", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestServer_TrialGraphBadCacheFlag(t *testing.T) {
	ts, first, _ := newTestServer(t)

	status := get(t, ts.URL+"/trials/"+strconv.Itoa(first)+"/namespace_match/2.json", nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status = get(t, ts.URL+"/trials/"+strconv.Itoa(first)+"/namespace_match/1", nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestServer_TrialGraphBadTrace(t *testing.T) {
	s, err := store.Open(filepath.Join(t.TempDir(), "bad.db"))
	require.NoError(t, err)
	defer s.Close()

	// First record opens above depth zero.
	id := seedTrial(t, s, "bad.py", []trace.Activation{
		{ID: 1, Name: "main", Line: 1, CallerID: 7, Duration: 10},
	})

	srv := New(Config{Store: s, Cache: graphcache.New[*summary.Graph]()})
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	status := get(t, ts.URL+"/trials/"+strconv.Itoa(id)+"/namespace_match/1.json", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
}

func TestServer_Embed(t *testing.T) {
	ts, first, _ := newTestServer(t)

	var body struct {
		UID    string          `json:"uid"`
		Trial  int             `json:"trial"`
		Width  int             `json:"width"`
		Height int             `json:"height"`
		Data   json.RawMessage `json:"data"`
	}
	status := get(t, ts.URL+"/trials/"+strconv.Itoa(first)+"/namespace_match/embed", &body)

	assert.Equal(t, http.StatusOK, status)
	assert.NotEmpty(t, body.UID)
	assert.Equal(t, first, body.Trial)
	assert.Equal(t, 500, body.Width)
	assert.Equal(t, 500, body.Height)
	assert.NotEmpty(t, body.Data)
}

func TestServer_Diff(t *testing.T) {
	ts, first, second := newTestServer(t)

	var body struct {
		Diff struct {
			Root *int `json:"root"`
		} `json:"diff"`
		Trial1 struct {
			Nodes []int `json:"nodes"`
		} `json:"trial1"`
		Trial2 struct {
			Nodes []int `json:"nodes"`
		} `json:"trial2"`
	}
	url := ts.URL + "/diff/" + strconv.Itoa(first) + "/" + strconv.Itoa(second) + "/namespace_match/1000-2-1.json"
	status := get(t, url, &body)

	assert.Equal(t, http.StatusOK, status)
	require.NotNil(t, body.Diff.Root)
	// main matched across trials; step and other are exclusive.
	assert.Len(t, body.Trial1.Nodes, 1)
	assert.Len(t, body.Trial2.Nodes, 1)
}

func TestServer_DiffCacheFlag(t *testing.T) {
	s, err := store.Open(filepath.Join(t.TempDir(), "diffcache.db"))
	require.NoError(t, err)
	defer s.Close()

	first := seedTrial(t, s, "first.py", []trace.Activation{
		{ID: 1, Name: "main", Line: 1, CallerID: 0, Duration: 100},
		{ID: 2, Name: "step", Line: 4, CallerID: 1, Duration: 10},
	})
	second := seedTrial(t, s, "second.py", []trace.Activation{
		{ID: 1, Name: "main", Line: 1, CallerID: 0, Duration: 80},
		{ID: 2, Name: "other", Line: 6, CallerID: 1, Duration: 5},
	})

	srv := New(Config{Store: s, Cache: graphcache.New[*summary.Graph]()})
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	type diffBody struct {
		Trial2 struct {
			Nodes []int `json:"nodes"`
		} `json:"trial2"`
	}
	base := ts.URL + "/diff/" + strconv.Itoa(first) + "/" + strconv.Itoa(second) + "/namespace_match/"

	var fresh diffBody
	require.Equal(t, http.StatusOK, get(t, base+"1000-2-1.json", &fresh))
	assert.Len(t, fresh.Trial2.Nodes, 1)

	// Grow the second trial after the diff was memoized.
	require.NoError(t, s.WriteActivations(context.Background(), second, []trace.Activation{
		{ID: 3, Name: "late", Line: 9, CallerID: 1, Duration: 2},
	}))

	// cache=1 serves the memoized diff unchanged.
	var cached diffBody
	require.Equal(t, http.StatusOK, get(t, base+"1000-2-1.json", &cached))
	assert.Len(t, cached.Trial2.Nodes, 1)

	// cache=0 recomputes from the store and refreshes the memoized entry.
	var recomputed diffBody
	require.Equal(t, http.StatusOK, get(t, base+"1000-2-0.json", &recomputed))
	assert.Len(t, recomputed.Trial2.Nodes, 2)

	var refreshed diffBody
	require.Equal(t, http.StatusOK, get(t, base+"1000-2-1.json", &refreshed))
	assert.Len(t, refreshed.Trial2.Nodes, 2)
}

func TestServer_DiffBadParams(t *testing.T) {
	ts, first, second := newTestServer(t)

	base := ts.URL + "/diff/" + strconv.Itoa(first) + "/" + strconv.Itoa(second) + "/namespace_match/"
	assert.Equal(t, http.StatusBadRequest, get(t, base+"1000-2-1", nil))
	assert.Equal(t, http.StatusBadRequest, get(t, base+"1000-1.json", nil))
	assert.Equal(t, http.StatusBadRequest, get(t, base+"soon-2-1.json", nil))
}

