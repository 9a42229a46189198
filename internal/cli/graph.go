package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/callsight/callsight/internal/export"
	"github.com/callsight/callsight/internal/graphcache"
	"github.com/callsight/callsight/internal/graphs"
	"github.com/callsight/callsight/internal/store"
	"github.com/callsight/callsight/internal/summary"
)

// GraphOptions holds flags for the graph command.
type GraphOptions struct {
	*RootOptions
	Mode    string
	Out     string // "json" | "yaml" | "dot"
	NoCache bool
}

// NewGraphCommand creates the graph command.
func NewGraphCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GraphOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "graph TRIAL_ID",
		Short: "Summarize one trial into a call graph",
		Long: `Summarize a trial's activation sequence into a call graph.

Modes: tree, no_match, exact_match, namespace_match (default), or their
numeric codes 0-3.

Examples:
  callsight graph 1
  callsight graph 1 --mode exact_match
  callsight graph 1 --out dot > trial1.dot`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGraph(cmd, opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.Mode, "mode", "namespace_match", "summarization mode")
	cmd.Flags().StringVar(&opts.Out, "out", "json", "output rendering (json|yaml|dot)")
	cmd.Flags().BoolVar(&opts.NoCache, "no-cache", false, "force recomputation")
	return cmd
}

func runGraph(cmd *cobra.Command, opts *GraphOptions, trialArg string) error {
	trialID, err := parseTrialID(trialArg)
	if err != nil {
		return WrapExitError(ExitCommandError, "trial id", err)
	}
	mode, err := summary.ParseMode(opts.Mode)
	if err != nil {
		return WrapExitError(ExitCommandError, "mode", err)
	}

	s, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "open database", err)
	}
	defer s.Close()

	tg := graphs.New(s, graphcache.New[*summary.Graph](), trialID)
	tg.UseCache = !opts.NoCache

	w := cmd.OutOrStdout()
	switch opts.Out {
	case "dot":
		_, result, err := tg.Result(cmd.Context(), mode)
		if err != nil {
			return graphError(err)
		}
		graph := result.Graph(map[int]int{trialID: 0})
		dot, err := export.DOT(fmt.Sprintf("trial_%d", trialID), result, graph)
		if err != nil {
			return WrapExitError(ExitFailure, "render dot", err)
		}
		_, err = fmt.Fprint(w, dot)
		return err

	case "yaml":
		_, graph, err := tg.ByMode(cmd.Context(), mode)
		if err != nil {
			return graphError(err)
		}
		return yaml.NewEncoder(w).Encode(graph)

	case "json":
		_, graph, err := tg.ByMode(cmd.Context(), mode)
		if err != nil {
			return graphError(err)
		}
		out := &OutputFormatter{Format: "json", Writer: w}
		return out.PrintJSON(graph)

	default:
		return WrapExitError(ExitCommandError, "output rendering", fmt.Errorf("unknown --out %q (json|yaml|dot)", opts.Out))
	}
}

// graphError classifies a summarization failure: missing trials and bad
// trace data are different exit codes.
func graphError(err error) error {
	if store.IsNotFound(err) {
		return WrapExitError(ExitCommandError, "trial", err)
	}
	return WrapExitError(ExitFailure, "summarize", err)
}

func parseTrialID(s string) (int, error) {
	var id int
	if _, err := fmt.Sscanf(s, "%d", &id); err != nil {
		return 0, fmt.Errorf("trial id must be an integer, got %q", s)
	}
	return id, nil
}
