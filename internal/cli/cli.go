package cli

import (
	"context"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/tracegantt/pkg/buildinfo"
	"github.com/matzehuels/tracegantt/pkg/cache"
	"github.com/matzehuels/tracegantt/pkg/config"
	"github.com/matzehuels/tracegantt/pkg/pipeline"
	"github.com/matzehuels/tracegantt/pkg/render"
	"github.com/matzehuels/tracegantt/pkg/render/styles"
	"github.com/matzehuels/tracegantt/pkg/timeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "tracegantt"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// ConfigPath is the --config flag. Empty loads the default path.
	ConfigPath string

	cfg    *config.Config
	stdout io.Writer
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Tracegantt draws distributed traces as Gantt charts",
		Long: `Tracegantt turns the span tree of a distributed trace into a Gantt chart:
one row per span in depth-first order, bars placed on a shared time axis.

Charts are written as SVG (with hover tooltips), PNG, PDF, layout JSON or
Graphviz DOT, or served over HTTP with 'tracegantt serve'.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.ConfigPath, "config", "", "config file (.toml, .yaml); default: $XDG_CONFIG_HOME/tracegantt/config.toml")

	root.AddCommand(c.renderCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.visualizeCommand())
	root.AddCommand(c.fetchCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// out is where command results go when they are written to stdout.
func (c *CLI) out(cmd *cobra.Command) io.Writer {
	if c.stdout != nil {
		return c.stdout
	}
	return cmd.OutOrStdout()
}

// =============================================================================
// Configuration
// =============================================================================

// loadConfig loads the configuration once per process.
func (c *CLI) loadConfig() (config.Config, error) {
	if c.cfg != nil {
		return *c.cfg, nil
	}
	cfg, err := config.Load(c.ConfigPath)
	if err != nil {
		return config.Config{}, err
	}
	c.Logger.Debug("loaded config", "path", c.ConfigPath, "cache", cfg.Cache.Backend, "theme", cfg.Render.Theme)
	c.cfg = &cfg
	return cfg, nil
}

// chartFlags are the chart options shared by render, layout, visualize and
// inspect.
type chartFlags struct {
	opts    pipeline.Options
	formats string
	output  string
	noCache bool
}

func (f *chartFlags) registerOutput(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&f.formats, "format", "f", "", "output format(s): svg (default), png, pdf, json, dot (comma-separated)")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
}

func (f *chartFlags) registerLayout(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.opts.MaxDepth, "max-depth", timeline.DefaultMaxDepth, "maximum tree depth before the trace is rejected as cyclic")
	cmd.Flags().IntVar(&f.opts.MaxSpans, "max-spans", timeline.DefaultMaxSpans, "maximum number of spans")
}

func (f *chartFlags) registerRender(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.opts.VizType, "type", "t", pipeline.DefaultVizType, "visualization type: timeline (default), nodelink")
	cmd.Flags().Float64Var(&f.opts.Width, "width", pipeline.DefaultWidth, "chart width in pixels")
	cmd.Flags().StringVar(&f.opts.Theme, "theme", pipeline.DefaultTheme, "theme: "+strings.Join(styles.Names(), ", "))
	cmd.Flags().IntVar(&f.opts.TickCount, "ticks", render.DefaultTickCount, "number of time axis ticks")
	cmd.Flags().Float64Var(&f.opts.LabelGutter, "label-gutter", render.DefaultLabelGutter, "left edge of the plot area in pixels")
	cmd.Flags().Float64Var(&f.opts.RightMargin, "right-margin", render.DefaultRightMargin, "space right of the plot area in pixels")
	cmd.Flags().BoolVar(&f.opts.NoTooltips, "no-tooltips", false, "omit hover tooltips from SVG output")
	cmd.Flags().BoolVar(&f.opts.Detailed, "detailed", false, "show timing details in nodelink output")
	cmd.Flags().Float64Var(&f.opts.Scale, "scale", pipeline.DefaultScale, "PNG scale factor")
}

// resolve applies the [render] section of the config file to every chart
// option whose flag was not given, then validates the formats.
func (c *CLI) resolve(cmd *cobra.Command, f *chartFlags) (pipeline.Options, error) {
	opts := f.opts
	if cmd.Flags().Lookup("format") != nil {
		opts.Formats = parseFormats(f.formats)
		if err := pipeline.ValidateFormats(opts.Formats); err != nil {
			return opts, err
		}
	}
	cfg, err := c.loadConfig()
	if err != nil {
		return opts, err
	}
	applyConfig(cmd, &opts, cfg.Render)
	opts.Logger = c.Logger
	return opts, nil
}

func applyConfig(cmd *cobra.Command, opts *pipeline.Options, r config.Render) {
	unset := func(name string) bool {
		fl := cmd.Flags().Lookup(name)
		return fl == nil || !fl.Changed
	}
	if unset("width") && r.Width > 0 {
		opts.Width = r.Width
	}
	if unset("theme") && r.Theme != "" {
		opts.Theme = r.Theme
	}
	if unset("ticks") && r.TickCount > 0 {
		opts.TickCount = r.TickCount
	}
	if unset("label-gutter") && r.LabelGutter > 0 {
		opts.LabelGutter = r.LabelGutter
	}
	if unset("right-margin") && r.RightMargin > 0 {
		opts.RightMargin = r.RightMargin
	}
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	cache, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cache, nil, c.Logger), nil
}

// newCache opens the configured cache backend. A file cache that cannot be
// created degrades to no caching.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	cc, err := cache.Open(ctx, cfg.Cache)
	if err != nil {
		if cfg.Cache.Backend == "" || cfg.Cache.Backend == cache.BackendFile {
			logFrom(ctx).Warn("file cache unavailable, continuing without cache", "dir", cfg.Cache.Dir, "err", err)
			return cache.NewNullCache(), nil
		}
		return nil, err
	}
	return cc, nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	parts := strings.Split(s, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}
