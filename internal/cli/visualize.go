package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/tracegantt/pkg/pipeline"
	"github.com/matzehuels/tracegantt/pkg/timeline"
)

// visualizeCommand creates the visualize command for rendering from a layout.
func (c *CLI) visualizeCommand() *cobra.Command {
	var f chartFlags

	cmd := &cobra.Command{
		Use:   "visualize [layout.json]",
		Short: "Render a chart from a computed layout",
		Long: `Render a chart from a computed layout.

The visualize command takes a layout.json file (produced by 'layout' or
'render -f json') and renders it to SVG, PNG, PDF or DOT. The layout holds
the rows and time domain, so this step is purely about drawing.

Use 'render' as a shortcut to go directly from a trace to chart files.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.resolve(cmd, &f)
			if err != nil {
				return err
			}
			return c.runVisualize(cmd, args[0], opts, f)
		},
	}

	f.registerOutput(cmd)
	f.registerRender(cmd)

	return cmd
}

// runVisualize loads the layout and renders it.
func (c *CLI) runVisualize(cmd *cobra.Command, input string, opts pipeline.Options, f chartFlags) error {
	ctx := cmd.Context()
	layout, err := timeline.ReadFile(input)
	if err != nil {
		return fmt.Errorf("load layout %s: %w", input, err)
	}
	if !cmd.Flags().Changed("width") && layout.Width > 0 {
		opts.Width = layout.Width
	}

	runner, err := c.newRunner(ctx, f.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %s...", opts.VizType))
	spinner.Start()

	artifacts, cacheHit, err := runner.RenderWithCacheInfo(ctx, layout, opts)
	if err != nil {
		spinner.StopWithError("Visualization failed")
		return fmt.Errorf("visualize: %w", err)
	}
	spinner.Stop()

	written, err := writeArtifacts(artifactWriteParams{
		artifacts: artifacts,
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

	out := c.screen(cmd)
	out.success("Visualization complete")
	out.written(written)
	out.stats(len(layout.Spans), layout.RowCount, cacheHit)
	return nil
}
