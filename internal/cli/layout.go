package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/tracegantt/pkg/pipeline"
	"github.com/matzehuels/tracegantt/pkg/timeline"
	"github.com/matzehuels/tracegantt/pkg/trace"
)

// layoutCommand creates the layout command for computing a trace's rows and
// time domain.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		f       chartFlags
		otlp    bool
		traceID string
	)

	cmd := &cobra.Command{
		Use:   "layout [trace.json]",
		Short: "Compute the Gantt layout of a trace",
		Long: `Compute the Gantt layout of a trace.

The layout command takes a span tree (or OTLP/JSON export) and assigns each
span its row and the chart its time domain. The output is a layout.json file
(same format as 'render -f json') that 'visualize' renders to SVG/PNG/PDF.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.resolve(cmd, &f)
			if err != nil {
				return err
			}
			src, err := fileSource(args[0], otlp)
			if err != nil {
				return err
			}
			opts.Source = src
			opts.TraceID = traceID
			return c.runLayout(cmd, args[0], opts, f)
		},
	}

	cmd.Flags().StringVarP(&f.output, "output", "o", "", "output file (default: <input>.layout.json, - for stdout)")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
	cmd.Flags().Float64Var(&f.opts.Width, "width", pipeline.DefaultWidth, "canvas width recorded in the layout")
	f.registerLayout(cmd)
	cmd.Flags().BoolVar(&otlp, "otlp", false, "read the input as an OTLP/JSON trace export")
	cmd.Flags().StringVar(&traceID, "trace-id", "", "trace to select from the input")

	return cmd
}

// runLayout loads the trace, computes the layout, and writes output.
func (c *CLI) runLayout(cmd *cobra.Command, input string, opts pipeline.Options, f chartFlags) error {
	ctx := cmd.Context()
	runner, err := c.newRunner(ctx, f.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	root, _, err := runner.FetchWithCacheInfo(ctx, opts)
	if err != nil {
		return err
	}

	spinner := newSpinnerWithContext(ctx, "Computing layout...")
	spinner.Start()

	layout, cacheHit, err := runner.GenerateLayoutWithCacheInfo(ctx, root, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return fmt.Errorf("compute layout: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	outputPath := f.output
	if outputPath == "" {
		outputPath = basePath("", input) + ".layout.json"
	}

	if outputPath == "-" {
		data, err := timeline.Marshal(layout)
		if err != nil {
			return err
		}
		return writeFile(outputPath, append(data, '\n'), c.out(cmd))
	}
	if err := timeline.WriteFile(layout, outputPath); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	out := c.screen(cmd)
	out.success("Layout complete")
	out.file(outputPath)
	out.stats(trace.Count(root), layout.RowCount, cacheHit)
	out.window(layout.Domain)
	out.nextStep("Render", appName+" visualize "+outputPath)

	return nil
}
