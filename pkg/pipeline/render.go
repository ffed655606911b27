package pipeline

import (
	"context"
	"fmt"

	errs "github.com/matzehuels/tracegantt/pkg/errors"
	"github.com/matzehuels/tracegantt/pkg/render"
	"github.com/matzehuels/tracegantt/pkg/render/nodelink"
	"github.com/matzehuels/tracegantt/pkg/render/sink"
	"github.com/matzehuels/tracegantt/pkg/render/styles"
	"github.com/matzehuels/tracegantt/pkg/timeline"
)

// RenderFromLayout generates output artifacts in the requested formats.
// A zero opts.Width draws the layout at its recorded width.
func RenderFromLayout(ctx context.Context, l timeline.Layout, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}
	if opts.Width == 0 {
		opts.Width = l.Width
	}
	if opts.IsNodelink() {
		return renderNodelink(ctx, l, opts)
	}
	return renderTimeline(ctx, l, opts)
}

// renderTimeline generates Gantt chart outputs.
func renderTimeline(ctx context.Context, l timeline.Layout, opts Options) (map[string][]byte, error) {
	svgOpts, err := buildSVGOptions(l, opts)
	if err != nil {
		return nil, err
	}
	res := l.Result()
	artifacts := make(map[string][]byte, len(opts.Formats))

	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatSVG:
			data, err = sink.RenderSVG(res, opts.Width, svgOpts...)
		case FormatPNG:
			data, err = sink.RenderPNG(ctx, res, opts.Width, sink.WithScale(opts.Scale), sink.WithPNGSVGOptions(svgOpts...))
		case FormatPDF:
			data, err = sink.RenderPDF(ctx, res, opts.Width, sink.WithPDFSVGOptions(svgOpts...))
		case FormatJSON:
			data, err = sink.RenderJSON(res, sink.WithJSONTraceID(l.TraceID), sink.WithJSONWidth(opts.Width))
		case FormatDOT:
			data = []byte(nodelink.ToDOT(res, nodelink.Options{Detailed: opts.Detailed}))
		default:
			return nil, errs.New(errs.ErrCodeInvalidFormat, "unsupported timeline format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

// renderNodelink generates call-tree outputs through Graphviz.
func renderNodelink(ctx context.Context, l timeline.Layout, opts Options) (map[string][]byte, error) {
	dot := nodelink.ToDOT(l.Result(), nodelink.Options{Detailed: opts.Detailed})
	artifacts := make(map[string][]byte, len(opts.Formats))

	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatSVG:
			data, err = nodelink.RenderSVG(ctx, dot)
		case FormatPNG:
			data, err = nodelink.RenderPNG(ctx, dot, opts.Scale)
		case FormatPDF:
			data, err = nodelink.RenderPDF(ctx, dot)
		case FormatJSON:
			data, err = timeline.Marshal(l)
		case FormatDOT:
			data = []byte(dot)
		default:
			return nil, errs.New(errs.ErrCodeInvalidFormat, "unsupported nodelink format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

// buildSVGOptions builds SVG rendering options.
func buildSVGOptions(l timeline.Layout, opts Options) ([]sink.SVGOption, error) {
	style, err := styles.ByName(opts.Theme)
	if err != nil {
		return nil, err
	}
	svgOpts := []sink.SVGOption{
		sink.WithStyle(style),
		sink.WithRenderOptions(
			render.WithTickCount(opts.TickCount),
			render.WithLabelGutter(opts.LabelGutter),
			render.WithRightMargin(opts.RightMargin),
		),
	}
	if l.TraceID != "" {
		svgOpts = append(svgOpts, sink.WithTitle("trace "+l.TraceID))
	}
	if opts.NoTooltips {
		svgOpts = append(svgOpts, sink.WithoutTooltips())
	}
	return svgOpts, nil
}

// RenderFromLayoutData renders output from serialized layout data.
func RenderFromLayoutData(ctx context.Context, data []byte, opts Options) (map[string][]byte, error) {
	l, err := timeline.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}
	return RenderFromLayout(ctx, l, opts)
}
