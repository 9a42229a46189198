package cli

import (
	"fmt"
	"io"

	"github.com/expr-lang/expr"
	"github.com/spf13/cobra"

	"github.com/callsight/callsight/internal/store"
	"github.com/callsight/callsight/internal/trace"
)

// ListOptions holds flags for the list command.
type ListOptions struct {
	*RootOptions
	Where string
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ListOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List trials in the provenance store",
		Long: `List all trials registered in the trial database.

The optional --where flag filters trials with a boolean expression over
the fields id, script, arguments, finished, and duration_ms.

Examples:
  callsight list
  callsight list --where 'finished && duration_ms > 1000'
  callsight list --where 'script == "simulation.py"' --format json`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Where, "where", "", "boolean filter expression")
	return cmd
}

func runList(cmd *cobra.Command, opts *ListOptions) error {
	s, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "open database", err)
	}
	defer s.Close()

	trials, err := s.ListTrials(cmd.Context())
	if err != nil {
		return WrapExitError(ExitCommandError, "list trials", err)
	}

	if opts.Where != "" {
		trials, err = filterTrials(trials, opts.Where)
		if err != nil {
			return WrapExitError(ExitCommandError, "filter trials", err)
		}
	}

	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	return out.Print(map[string]any{"trials": trials}, func(w io.Writer) error {
		return printTrials(w, trials)
	})
}

// filterTrials keeps trials for which the expression evaluates true.
func filterTrials(trials []trace.Trial, where string) ([]trace.Trial, error) {
	program, err := expr.Compile(where, expr.AsBool(), expr.AllowUndefinedVariables())
	if err != nil {
		return nil, fmt.Errorf("compile --where expression: %w", err)
	}

	kept := []trace.Trial{}
	for _, t := range trials {
		env := map[string]any{
			"id":          t.ID,
			"script":      t.Script,
			"arguments":   t.Arguments,
			"finished":    t.Finished,
			"duration_ms": t.Duration().Milliseconds(),
		}
		keep, err := expr.Run(program, env)
		if err != nil {
			return nil, fmt.Errorf("evaluate --where for trial %d: %w", t.ID, err)
		}
		if keep == true {
			kept = append(kept, t)
		}
	}
	return kept, nil
}

func printTrials(w io.Writer, trials []trace.Trial) error {
	if len(trials) == 0 {
		_, err := fmt.Fprintln(w, "no trials in the provenance store")
		return err
	}
	fmt.Fprintln(w, "trials available in the provenance store:")
	for _, t := range trials {
		fmt.Fprintf(w, "  Trial %d: %s %s\n", t.ID, t.Script, t.Arguments)
		if t.CodeHash != "" {
			fmt.Fprintf(w, "    with code hash %s\n", t.CodeHash)
		}
		if t.Finished {
			fmt.Fprintf(w, "    ran from %s to %s\n", t.Start.Format("2006-01-02 15:04:05"), t.Finish.Format("2006-01-02 15:04:05"))
			fmt.Fprintf(w, "    duration: %d ms\n", t.Duration().Milliseconds())
		} else {
			fmt.Fprintf(w, "    started %s (still running)\n", t.Start.Format("2006-01-02 15:04:05"))
		}
	}
	return nil
}
