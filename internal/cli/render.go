package cli

import (
	"bufio"
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/tracegantt/pkg/pipeline"
	"github.com/matzehuels/tracegantt/pkg/source"
)

// renderCommand creates the render command: trace file to chart files in one
// step.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		f       chartFlags
		otlp    bool
		traceID string
	)

	cmd := &cobra.Command{
		Use:   "render [trace.json]",
		Short: "Render a trace as a Gantt chart",
		Long: `Render a trace as a Gantt chart.

The input is a span tree as returned by the trace search service (see
'fetch') or an OTLP/JSON export. OTLP input is detected automatically; use
--otlp to force it. Exports holding several traces need --trace-id.

This runs layout and visualize in one step. Results are cached.`,
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
			return c.runRender(cmd, args[0], opts, f)
		},
	}

	f.registerOutput(cmd)
	f.registerLayout(cmd)
	f.registerRender(cmd)
	cmd.Flags().BoolVar(&otlp, "otlp", false, "read the input as an OTLP/JSON trace export")
	cmd.Flags().StringVar(&traceID, "trace-id", "", "trace to select from the input")

	return cmd
}

// runRender executes the full pipeline and writes the artifacts.
func (c *CLI) runRender(cmd *cobra.Command, input string, opts pipeline.Options, f chartFlags) error {
	ctx := cmd.Context()
	runner, err := c.newRunner(ctx, f.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	timer := startStage(c.Logger)
	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %s...", input))
	spinner.Start()

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()
	if ctx.Err() != nil {
		return ctx.Err()
	}

	written, err := writeArtifacts(artifactWriteParams{
		artifacts: result.Artifacts,
		formats:   opts.Formats,
		input:     input,
		output:    f.output,
		stdout:    c.out(cmd),
	})
	if err != nil {
		return err
	}
	if f.output == "-" {
		return nil
	}

	timer.done("Rendered", "formats", len(written), "spans", result.Stats.SpanCount)
	out := c.screen(cmd)
	out.success("Render complete")
	out.written(written)
	cached := result.CacheInfo.LayoutHit && result.CacheInfo.RenderHit
	out.stats(result.Stats.SpanCount, result.Stats.RowCount, cached)
	return nil
}

// fileSource picks the reader for a local trace file.
func fileSource(path string, otlp bool) (source.Source, error) {
	if otlp {
		return source.OTLP{Path: path}, nil
	}
	isOTLP, err := sniffOTLP(path)
	if err != nil {
		return nil, err
	}
	if isOTLP {
		return source.OTLP{Path: path}, nil
	}
	return source.File{Path: path}, nil
}

// sniffOTLP reports whether the head of the file looks like an OTLP/JSON
// export. Missing files are left for the source to report.
func sniffOTLP(path string) (bool, error) {
	fh, err := os.Open(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	defer fh.Close()

	head, err := bufio.NewReader(fh).Peek(4096)
	if err != nil && len(head) == 0 {
		return false, nil
	}
	return bytes.Contains(head, []byte(`"resourceSpans"`)) || bytes.Contains(head, []byte(`"resource_spans"`)), nil
}
