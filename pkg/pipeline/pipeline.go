// Package pipeline runs the fetch → layout → render pipeline for the CLI and
// the HTTP server.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Fetch: Obtain the span tree of a trace from a [source.Source]
//  2. Layout: Assign rows and the time domain ([timeline.Compute])
//  3. Render: Generate output in various formats (SVG, PNG, PDF, JSON, DOT)
//
// Each stage can be run independently or as part of the complete pipeline.
// A [Runner] adds caching: fetched trees are keyed by source and trace ID,
// layouts and artifacts by content hash and options.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Source:  source.File{Path: "trace.json"},
//	    Formats: []string{"svg"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/tracegantt/pkg/cache"
	errs "github.com/matzehuels/tracegantt/pkg/errors"
	"github.com/matzehuels/tracegantt/pkg/render"
	"github.com/matzehuels/tracegantt/pkg/render/styles"
	"github.com/matzehuels/tracegantt/pkg/source"
	"github.com/matzehuels/tracegantt/pkg/timeline"
	"github.com/matzehuels/tracegantt/pkg/trace"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Server
// =============================================================================

const (
	// DefaultWidth is the default chart width in pixels.
	DefaultWidth = timeline.DefaultWidth

	// DefaultScale is the PNG scale factor.
	DefaultScale = 2.0

	// DefaultTheme is the default visual theme.
	DefaultTheme = styles.ThemeLight
)

// Visualization types.
const (
	VizTimeline = "timeline"
	VizNodelink = "nodelink"
)

// DefaultVizType is the default visualization type.
const DefaultVizType = VizTimeline

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
	FormatDOT  = "dot"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
	FormatJSON: true,
	FormatDOT:  true,
}

// ValidVizTypes is the set of supported visualization types.
var ValidVizTypes = map[string]bool{
	VizTimeline: true,
	VizNodelink: true,
}

// ContentTypes maps output formats to MIME types.
var ContentTypes = map[string]string{
	FormatSVG:  "image/svg+xml",
	FormatPNG:  "image/png",
	FormatPDF:  "application/pdf",
	FormatJSON: "application/json",
	FormatDOT:  "text/vnd.graphviz",
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Fetch options
	TraceID string `json:"trace_id,omitempty"`
	Refresh bool   `json:"refresh,omitempty"`

	// Layout options
	MaxDepth int `json:"max_depth,omitempty"`
	MaxSpans int `json:"max_spans,omitempty"`

	// Render options
	VizType     string   `json:"viz_type,omitempty"`
	Formats     []string `json:"formats,omitempty"`
	Theme       string   `json:"theme,omitempty"`
	Width       float64  `json:"width,omitempty"`
	TickCount   int      `json:"tick_count,omitempty"`
	LabelGutter float64  `json:"label_gutter,omitempty"`
	RightMargin float64  `json:"right_margin,omitempty"`
	NoTooltips  bool     `json:"no_tooltips,omitempty"`
	Detailed    bool     `json:"detailed,omitempty"`
	Scale       float64  `json:"scale,omitempty"`

	// Runtime options (not serialized)
	Source source.Source `json:"-"`
	Logger *log.Logger   `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Root is the fetched span tree.
	Root *trace.Span

	// TraceHash is the content hash of the serialized span tree.
	TraceHash string

	// Layout is the computed layout.
	Layout timeline.Layout

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	SpanCount  int
	RowCount   int
	FetchTime  time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	FetchHit  bool // Whether the span tree came from cache
	LayoutHit bool // Whether the layout came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errs.New(errs.ErrCodeInvalidFormat, "invalid format: %q (must be one of: svg, png, pdf, json, dot)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateTheme checks that a theme is known.
func ValidateTheme(theme string) error {
	_, err := styles.ByName(theme)
	return err
}

// ValidateVizType checks that a visualization type is valid.
func ValidateVizType(vizType string) error {
	if !ValidVizTypes[vizType] {
		return errs.New(errs.ErrCodeInvalidViz, "invalid viz_type: %q (must be one of: timeline, nodelink)", vizType)
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateForFetch checks that a source is set.
func (o *Options) ValidateForFetch() error {
	if o.Source == nil {
		return errs.New(errs.ErrCodeInvalidInput, "a trace source is required")
	}
	o.setLoggerDefault()
	return nil
}

// SetLayoutDefaults sets default values for layout computation.
func (o *Options) SetLayoutDefaults() {
	if o.MaxDepth == 0 {
		o.MaxDepth = timeline.DefaultMaxDepth
	}
	if o.MaxSpans == 0 {
		o.MaxSpans = timeline.DefaultMaxSpans
	}
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	o.setLoggerDefault()
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if o.VizType == "" {
		o.VizType = DefaultVizType
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Theme == "" {
		o.Theme = DefaultTheme
	}
	if o.TickCount == 0 {
		o.TickCount = render.DefaultTickCount
	}
	if o.LabelGutter == 0 {
		o.LabelGutter = render.DefaultLabelGutter
	}
	if o.RightMargin == 0 {
		o.RightMargin = render.DefaultRightMargin
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	o.setLoggerDefault()
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if err := ValidateVizType(o.VizType); err != nil {
		return err
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.Width < 0 {
		return errs.New(errs.ErrCodeInvalidInput, "width must be positive, got %g", o.Width)
	}
	return ValidateTheme(o.Theme)
}

// ValidateAndSetDefaults checks required fields and applies defaults for the
// full pipeline.
func (o *Options) ValidateAndSetDefaults() error {
	if err := o.ValidateForFetch(); err != nil {
		return err
	}
	o.SetLayoutDefaults()
	return o.ValidateForRender()
}

// IsNodelink returns true if this is a node-link visualization.
func (o *Options) IsNodelink() bool {
	return o.VizType == VizNodelink
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		MaxDepth: o.MaxDepth,
		MaxSpans: o.MaxSpans,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:      o.VizType + "/" + format,
		Theme:       o.Theme,
		Width:       o.Width,
		TickCount:   o.TickCount,
		LabelGutter: o.LabelGutter,
		RightMargin: o.RightMargin,
		Tooltips:    !o.NoTooltips,
		Detailed:    o.Detailed,
		Scale:       scaleFor(format, o.Scale),
	}
}

// scaleFor keeps the scale out of keys of formats it does not affect.
func scaleFor(format string, scale float64) float64 {
	if format == FormatPNG {
		return scale
	}
	return 0
}

func (o *Options) setLoggerDefault() {
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}
