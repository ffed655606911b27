package cli

import (
	"context"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/matzehuels/tracegantt/pkg/cache"
	"github.com/matzehuels/tracegantt/pkg/config"
	errs "github.com/matzehuels/tracegantt/pkg/errors"
	"github.com/matzehuels/tracegantt/pkg/source"
	"github.com/matzehuels/tracegantt/pkg/trace"
)

// searchFlags override the [source] section of the config file.
type searchFlags struct {
	endpoint string
	start    string
	end      string
	refresh  bool
	noCache  bool
}

func (f *searchFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.endpoint, "endpoint", "", "base URL of the trace search service (default: source.endpoint from config)")
	cmd.Flags().StringVar(&f.start, "start", "", "start of the search window (default: "+source.DefaultStartEpoch+")")
	cmd.Flags().StringVar(&f.end, "end", "", "end of the search window (default: "+source.DefaultEndEpoch+")")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "bypass cached search responses")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
}

// newSearch builds the search source from config and flags. The returned
// cache backend must be closed by the caller.
func (c *CLI) newSearch(ctx context.Context, f searchFlags) (*source.Search, cache.Cache, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, nil, err
	}
	backend, err := c.newCache(ctx, f.noCache)
	if err != nil {
		return nil, nil, err
	}
	src, err := searchFromConfig(cfg.Source, f, backend)
	if err != nil {
		backend.Close()
		return nil, nil, err
	}
	c.Logger.Debug("search source", "endpoint", firstNonEmpty(f.endpoint, cfg.Source.Endpoint))
	return src, backend, nil
}

func searchFromConfig(sc config.Source, f searchFlags, backend cache.Cache) (*source.Search, error) {
	endpoint := firstNonEmpty(f.endpoint, sc.Endpoint)
	if endpoint == "" {
		return nil, errs.New(errs.ErrCodeInvalidConfig, "no search endpoint: pass --endpoint or set source.endpoint in the config file")
	}

	opts := []source.SearchOption{
		source.WithCache(backend, cache.TTLHTTP),
		source.WithWindow(firstNonEmpty(f.start, sc.StartEpoch, source.DefaultStartEpoch), firstNonEmpty(f.end, sc.EndEpoch, source.DefaultEndEpoch)),
		source.WithRefresh(f.refresh),
	}
	if sc.Timeout > 0 {
		opts = append(opts, source.WithHTTPClient(&http.Client{Timeout: sc.Timeout}))
	}
	return source.NewSearch(endpoint, opts...)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// fetchCommand creates the fetch command, which downloads a span tree.
func (c *CLI) fetchCommand() *cobra.Command {
	var (
		f      searchFlags
		output string
	)

	cmd := &cobra.Command{
		Use:   "fetch [trace-id]",
		Short: "Download the span tree of a trace",
		Long: `Download the span tree of a trace from the trace search service.

The result is written as JSON (default: <trace-id>.json) and can be passed
to 'render', 'layout' or 'inspect'.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runFetch(cmd, args[0], f, output)
		},
	}

	f.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <trace-id>.json, - for stdout)")

	return cmd
}

func (c *CLI) runFetch(cmd *cobra.Command, traceID string, f searchFlags, output string) error {
	ctx := cmd.Context()
	src, backend, err := c.newSearch(ctx, f)
	if err != nil {
		return err
	}
	defer backend.Close()

	timer := startStage(c.Logger)
	spinner := newSpinnerWithContext(ctx, "Fetching trace "+traceID+"...")
	spinner.Start()

	root, err := src.Fetch(ctx, traceID)
	if err != nil {
		spinner.StopWithError("Fetch failed")
		return err
	}
	spinner.Stop()

	data, err := trace.Marshal(root)
	if err != nil {
		return fmt.Errorf("encode span tree: %w", err)
	}

	if output == "" {
		output = traceID + ".json"
	}
	if err := writeFile(output, append(data, '\n'), c.out(cmd)); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}
	if output == "-" {
		return nil
	}

	timer.done("Fetched trace", "trace_id", traceID, "spans", trace.Count(root))
	out := c.screen(cmd)
	out.success("Fetch complete")
	out.file(output)
	out.stats(trace.Count(root), 0, false)
	out.nextStep("Render", appName+" render "+output)
	return nil
}
