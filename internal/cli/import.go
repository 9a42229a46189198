package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/callsight/callsight/internal/store"
	"github.com/callsight/callsight/internal/tracefile"
)

// ImportOptions holds flags for the import command.
type ImportOptions struct {
	*RootOptions
}

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ImportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "import TRACE_FILE",
		Short: "Import a trace file as a new trial",
		Long: `Import an activation trace (YAML or JSON) into the trial database.

The file is validated against the trace schema before any record is
written; a malformed file imports nothing.

Examples:
  callsight import run1.yaml
  callsight import run2.json --db ./traces.db`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, opts, args[0])
		},
	}
	return cmd
}

func runImport(cmd *cobra.Command, opts *ImportOptions, path string) error {
	f, err := tracefile.Load(path)
	if err != nil {
		return WrapExitError(ExitFailure, "load trace file", err)
	}

	trial, err := f.TrialRecord()
	if err != nil {
		return WrapExitError(ExitFailure, "trial metadata", err)
	}
	if trial.Start.IsZero() {
		trial.Start = time.Now().UTC()
	}

	s, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "open database", err)
	}
	defer s.Close()

	trialID, err := s.WriteTrial(cmd.Context(), trial)
	if err != nil {
		return WrapExitError(ExitCommandError, "write trial", err)
	}
	if err := s.WriteActivations(cmd.Context(), trialID, f.Records(trialID)); err != nil {
		return WrapExitError(ExitCommandError, "write activations", err)
	}

	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	result := map[string]any{
		"trial_id":    trialID,
		"script":      trial.Script,
		"activations": len(f.Activations),
	}
	return out.Print(result, func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "imported trial %d (%s, %d activations)\n", trialID, trial.Script, len(f.Activations))
		return err
	})
}
