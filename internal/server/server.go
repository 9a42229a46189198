// Package server exposes trial graphs over HTTP.
//
// The server is explicitly configured and carries no process-wide state:
// construct one with New and run it, or mount Handler() under a parent mux
// in tests. Endpoints serve the wire-format graph JSON consumed by the
// browser renderer:
//
//	GET /trials                                    - list stored trials
//	GET /trials/{tid}/{mode}/{cache}.json          - one trial's graph
//	GET /trials/{tid}/{mode}/embed                 - display-wrapped graph
//	GET /diff/{t1}/{t2}/{mode}/{tl}-{nh}-{cache}.json - two-trial diff
//
// mode accepts wire names or numeric codes; the cache flag is 0 or 1.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/callsight/callsight/internal/diff"
	"github.com/callsight/callsight/internal/graphcache"
	"github.com/callsight/callsight/internal/graphs"
	"github.com/callsight/callsight/internal/store"
	"github.com/callsight/callsight/internal/summary"
)

// Config holds everything a Server needs. No defaults are read from global
// state; zero fields fall back to the documented values here.
type Config struct {
	Addr   string // listen address, default ":8000"
	Store  *store.Store
	Cache  *graphcache.Cache[*summary.Graph]
	Width  int // embed display width, default 500
	Height int // embed display height, default 500
}

// Server serves trial graphs over HTTP. Diff results are memoized in a
// server-owned cache, keyed by the trial pair and the alignment bounds.
type Server struct {
	cfg   Config
	mux   *http.ServeMux
	diffs *graphcache.Cache[*diff.Graph]
}

// New creates a Server from an explicit configuration.
func New(cfg Config) *Server {
	if cfg.Addr == "" {
		cfg.Addr = ":8000"
	}
	if cfg.Width == 0 {
		cfg.Width = 500
	}
	if cfg.Height == 0 {
		cfg.Height = 500
	}

	s := &Server{cfg: cfg, mux: http.NewServeMux(), diffs: graphcache.New[*diff.Graph]()}
	s.mux.HandleFunc("GET /trials", s.handleListTrials)
	s.mux.HandleFunc("GET /trials/{tid}/{mode}/embed", s.handleEmbed)
	s.mux.HandleFunc("GET /trials/{tid}/{mode}/{cache}", s.handleTrialGraph)
	s.mux.HandleFunc("GET /diff/{t1}/{t2}/{mode}/{params}", s.handleDiff)
	return s
}

// Handler returns the server's HTTP handler with request logging attached.
func (s *Server) Handler() http.Handler {
	return requestLogger(s.mux)
}

// ListenAndServe runs the server until the context is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{Addr: s.cfg.Addr, Handler: s.Handler()}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", s.cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		slog.Info("server stopping: context cancelled")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) handleListTrials(w http.ResponseWriter, r *http.Request) {
	trials, err := s.cfg.Store.ListTrials(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"trials": trials})
}

func (s *Server) handleTrialGraph(w http.ResponseWriter, r *http.Request) {
	trialID, err := strconv.Atoi(r.PathValue("tid"))
	if err != nil {
		writeError(w, &store.NotFoundError{TrialID: -1})
		return
	}
	mode, err := summary.ParseMode(r.PathValue("mode"))
	if err != nil {
		writeError(w, err)
		return
	}
	useCache, err := parseCacheFlag(r.PathValue("cache"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	tg := graphs.New(s.cfg.Store, s.cfg.Cache, trialID)
	tg.UseCache = useCache
	_, graph, err := tg.ByMode(r.Context(), mode)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, graph)
}

// handleEmbed wraps the graph with the display metadata an embedded
// renderer needs: dimensions plus a unique display identifier.
func (s *Server) handleEmbed(w http.ResponseWriter, r *http.Request) {
	trialID, err := strconv.Atoi(r.PathValue("tid"))
	if err != nil {
		writeError(w, &store.NotFoundError{TrialID: -1})
		return
	}
	mode, err := summary.ParseMode(r.PathValue("mode"))
	if err != nil {
		writeError(w, err)
		return
	}

	tg := graphs.New(s.cfg.Store, s.cfg.Cache, trialID)
	_, graph, err := tg.ByMode(r.Context(), mode)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"uid":    uuid.NewString(),
		"trial":  trialID,
		"width":  s.cfg.Width,
		"height": s.cfg.Height,
		"data":   graph,
	})
}

func (s *Server) handleDiff(w http.ResponseWriter, r *http.Request) {
	t1, err1 := strconv.Atoi(r.PathValue("t1"))
	t2, err2 := strconv.Atoi(r.PathValue("t2"))
	if err1 != nil || err2 != nil {
		writeJSONError(w, http.StatusBadRequest, "trial ids must be integers")
		return
	}
	mode, err := summary.ParseMode(r.PathValue("mode"))
	if err != nil {
		writeError(w, err)
		return
	}
	opts, useCache, err := parseDiffParams(r.PathValue("params"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	identity := diffIdentity(t1, t2, opts)
	if useCache {
		if e, ok := s.diffs.Lookup(identity, mode); ok {
			writeJSON(w, http.StatusOK, e.Graph)
			return
		}
	}

	fin1, r1, err := graphs.New(s.cfg.Store, s.cfg.Cache, t1).Result(r.Context(), mode)
	if err != nil {
		writeError(w, err)
		return
	}
	fin2, r2, err := graphs.New(s.cfg.Store, s.cfg.Cache, t2).Result(r.Context(), mode)
	if err != nil {
		writeError(w, err)
		return
	}

	g := diff.Graphs(t1, t2, r1, r2, opts)
	s.diffs.Store(identity, mode, graphcache.Entry[*diff.Graph]{Finished: fin1 && fin2, Graph: g})
	writeJSON(w, http.StatusOK, g)
}

// diffIdentity is the stable cache identity for one diff request. The
// alignment bounds are part of the identity: different budgets can align
// the same trial pair differently.
func diffIdentity(t1, t2 int, opts diff.Options) string {
	return fmt.Sprintf("diff %d:%d %d-%d", t1, t2, opts.TimeLimit.Milliseconds(), opts.Neighborhoods)
}

// parseCacheFlag parses the trailing "{0|1}.json" path segment.
func parseCacheFlag(segment string) (bool, error) {
	flag, ok := strings.CutSuffix(segment, ".json")
	if !ok {
		return false, fmt.Errorf("graph path must end in .json")
	}
	switch flag {
	case "0":
		return false, nil
	case "1":
		return true, nil
	default:
		return false, fmt.Errorf("cache flag must be 0 or 1, got %q", flag)
	}
}

// parseDiffParams parses the "{tl}-{nh}-{cache}.json" path segment:
// time limit in milliseconds, neighborhood radius, cache flag.
func parseDiffParams(segment string) (diff.Options, bool, error) {
	rest, ok := strings.CutSuffix(segment, ".json")
	if !ok {
		return diff.Options{}, false, fmt.Errorf("diff path must end in .json")
	}
	parts := strings.Split(rest, "-")
	if len(parts) != 3 {
		return diff.Options{}, false, fmt.Errorf("diff params must be tl-nh-cache, got %q", rest)
	}
	tl, err := strconv.Atoi(parts[0])
	if err != nil {
		return diff.Options{}, false, fmt.Errorf("time limit must be an integer: %w", err)
	}
	nh, err := strconv.Atoi(parts[1])
	if err != nil {
		return diff.Options{}, false, fmt.Errorf("neighborhood radius must be an integer: %w", err)
	}
	useCache := parts[2] == "1"

	return diff.Options{
		TimeLimit:     time.Duration(tl) * time.Millisecond,
		Neighborhoods: nh,
	}, useCache, nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": message})
}

// writeError maps domain errors to HTTP statuses: unknown trial is 404,
// unknown mode is 400, a trace contract violation is 422, everything else
// is 500.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case store.IsNotFound(err):
		writeJSONError(w, http.StatusNotFound, err.Error())
	case summary.IsUnknownMode(err):
		writeJSONError(w, http.StatusBadRequest, err.Error())
	case summary.IsTraceError(err):
		writeJSONError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		slog.Error("request failed", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "internal error")
	}
}

// statusRecorder captures the response status for request logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// requestLogger logs one line per request with a correlation id.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		requestID := uuid.NewString()
		start := time.Now()

		next.ServeHTTP(rec, r)

		slog.Info("request",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}
