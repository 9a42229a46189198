package cli

import (
	"github.com/spf13/cobra"

	"github.com/callsight/callsight/internal/graphcache"
	"github.com/callsight/callsight/internal/server"
	"github.com/callsight/callsight/internal/store"
	"github.com/callsight/callsight/internal/summary"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Addr   string
	Width  int
	Height int
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve trial graphs over HTTP",
		Long: `Serve the wire-format graph JSON for a browser renderer.

Examples:
  callsight serve
  callsight serve --addr :9000 --db ./traces.db`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", ":8000", "listen address")
	cmd.Flags().IntVar(&opts.Width, "width", 500, "embed display width")
	cmd.Flags().IntVar(&opts.Height, "height", 500, "embed display height")
	return cmd
}

func runServe(cmd *cobra.Command, opts *ServeOptions) error {
	s, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "open database", err)
	}
	defer s.Close()

	srv := server.New(server.Config{
		Addr:   opts.Addr,
		Store:  s,
		Cache:  graphcache.New[*summary.Graph](),
		Width:  opts.Width,
		Height: opts.Height,
	})
	return srv.ListenAndServe(cmd.Context())
}
