package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/tracegantt/pkg/cache"
	"github.com/matzehuels/tracegantt/pkg/observability"
	"github.com/matzehuels/tracegantt/pkg/pipeline"
	"github.com/matzehuels/tracegantt/pkg/server"
	"github.com/matzehuels/tracegantt/pkg/source"
)

// shutdownTimeout bounds the flush of pending telemetry on exit.
const shutdownTimeout = 5 * time.Second

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr   string
		search searchFlags
		f      chartFlags
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve charts over HTTP",
		Long: `Serve charts over HTTP.

Routes:
  GET  /trace?trace_id=<id>                   interactive chart page
  GET  /api/traces/{id}/timeline.{format}     chart of a trace from the search service
  POST /api/timeline?format=svg               chart of a posted span tree
  POST /theme                                 switch the page theme (cookie)
  GET  /healthz                               liveness

Trace routes need a search endpoint (--endpoint or source.endpoint). With
telemetry.endpoint set, the server exports its own spans over OTLP/HTTP.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.resolve(cmd, &f)
			if err != nil {
				return err
			}
			return c.runServe(cmd.Context(), c.screen(cmd), addr, search, opts)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: server.addr from config)")
	search.register(cmd)
	_ = cmd.Flags().MarkHidden("refresh")
	f.registerRender(cmd)

	return cmd
}

func (c *CLI) runServe(ctx context.Context, out screen, addr string, search searchFlags, opts pipeline.Options) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	addr = firstNonEmpty(addr, cfg.Server.Addr)

	if cfg.Telemetry.Enabled() {
		tp, err := observability.NewTracerProvider(ctx, cfg.Telemetry)
		if err != nil {
			return fmt.Errorf("telemetry: %w", err)
		}
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := tp.Shutdown(sctx); err != nil {
				c.Logger.Warn("telemetry shutdown", "err", err)
			}
		}()
		observability.Register(observability.NewOTelHooks(tp.Tracer(appName)))
		defer observability.Reset()
		c.Logger.Info("exporting telemetry", "endpoint", cfg.Telemetry.Endpoint)
	}

	backend, err := c.newCache(ctx, search.noCache)
	if err != nil {
		return err
	}
	runner := pipeline.NewRunner(backend, nil, c.Logger)
	defer runner.Close()

	var src source.Source
	if search.endpoint != "" || cfg.Source.Endpoint != "" {
		s, err := searchFromConfig(cfg.Source, search, cache.NewNullCache())
		if err != nil {
			return err
		}
		src = s
	} else {
		c.Logger.Warn("no search endpoint configured, trace routes are disabled")
	}

	srv := server.New(server.Options{
		Runner:     runner,
		Source:     src,
		Defaults:   opts,
		SearchPage: cfg.Server.SearchPage,
		Logger:     c.Logger,
	})

	out.note("Serving on %s", StyleHighlight.Render(addr))
	return srv.ListenAndServe(ctx, addr)
}
