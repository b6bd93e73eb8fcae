package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/matzehuels/masonry/pkg/cache"
	"github.com/matzehuels/masonry/pkg/pipeline"
	"github.com/matzehuels/masonry/pkg/server"
)

// serveCommand creates the serve command for the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the layout pipeline over HTTP",
		Long: `Serve the layout pipeline over HTTP.

Endpoints:
  GET  /healthz           liveness probe
  GET  /v1/items/sample   deterministic sample items (?start=, ?n=)
  POST /v1/layout         lay out and render {"items": ..., "options": ...}

Request options default to the config file. The server shuts down
gracefully on SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := c.config()
			if !cmd.Flags().Changed("addr") {
				addr = cfg.Server.Addr
			}

			runner, err := c.newServerRunner(ctx, noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			opts := c.defaultOptions()
			opts.Formats = nil
			read, write := cfg.ServerTimeouts()
			srv := server.New(runner, opts, loggerFromContext(ctx),
				server.WithAddr(addr),
				server.WithTimeouts(read, write),
			)
			printInfo("Listening on %s", styleCommand.Render(srv.Addr()))
			return srv.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", server.DefaultAddr, "listen address")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

// newServerRunner creates the runner behind the HTTP API. Its cache keys
// carry serverKeyPrefix.
func (c *CLI) newServerRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	return c.newRunner(ctx, noCache, cache.NewScopedKeyer(cache.NewDefaultKeyer(), serverKeyPrefix))
}
