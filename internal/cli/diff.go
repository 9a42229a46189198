package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/callsight/callsight/internal/diff"
	"github.com/callsight/callsight/internal/graphcache"
	"github.com/callsight/callsight/internal/graphs"
	"github.com/callsight/callsight/internal/store"
	"github.com/callsight/callsight/internal/summary"
)

// DiffOptions holds flags for the diff command.
type DiffOptions struct {
	*RootOptions
	Mode          string
	TimeLimitMS   int
	Neighborhoods int
}

// NewDiffCommand creates the diff command.
func NewDiffCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DiffOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "diff TRIAL_1 TRIAL_2",
		Short: "Compare two trials' call graphs",
		Long: `Align two trials' summarized call graphs and report the combined graph
plus the nodes and edges present in only one of the trials.

The time limit (milliseconds) and neighborhood radius bound how hard the
alignment tries before treating unmatched subtrees as pure
additions/removals.

Examples:
  callsight diff 1 2
  callsight diff 1 2 --mode exact_match --time-limit 500 --neighborhoods 3`,
		Args:         cobra.ExactArgs(2),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiff(cmd, opts, args[0], args[1])
		},
	}

	cmd.Flags().StringVar(&opts.Mode, "mode", "namespace_match", "summarization mode")
	cmd.Flags().IntVar(&opts.TimeLimitMS, "time-limit", 0, "alignment budget in milliseconds (0 = default)")
	cmd.Flags().IntVar(&opts.Neighborhoods, "neighborhoods", -1, "sibling-window radius (-1 = default)")
	return cmd
}

func runDiff(cmd *cobra.Command, opts *DiffOptions, arg1, arg2 string) error {
	t1, err := parseTrialID(arg1)
	if err != nil {
		return WrapExitError(ExitCommandError, "trial id", err)
	}
	t2, err := parseTrialID(arg2)
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

	cache := graphcache.New[*summary.Graph]()
	_, r1, err := graphs.New(s, cache, t1).Result(cmd.Context(), mode)
	if err != nil {
		return graphError(err)
	}
	_, r2, err := graphs.New(s, cache, t2).Result(cmd.Context(), mode)
	if err != nil {
		return graphError(err)
	}

	result := diff.Graphs(t1, t2, r1, r2, diff.Options{
		TimeLimit:     time.Duration(opts.TimeLimitMS) * time.Millisecond,
		Neighborhoods: opts.Neighborhoods,
	})

	out := &OutputFormatter{Format: "json", Writer: cmd.OutOrStdout()}
	return out.PrintJSON(result)
}
