// Package nodelink renders a trace as a call-tree diagram.
//
// # Overview
//
// The Gantt chart shows when spans ran; the call tree shows who called whom.
// Each span becomes a box labelled with its service, operation and duration,
// connected to its parent by an arrow. The diagram is built from a computed
// [timeline.Result], so node order follows the chart's row order.
//
// # Usage
//
//	dot := nodelink.ToDOT(res, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// For PDF or PNG output:
//
//	pdf, err := nodelink.RenderPDF(ctx, dot)
//	png, err := nodelink.RenderPNG(ctx, dot, 2.0)  // 2x scale
//
// The generated DOT uses left-to-right layout (rankdir=LR) so deep traces
// grow sideways like the chart's indentation.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion requires librsvg (rsvg-convert).
//
// [timeline.Result]: github.com/matzehuels/tracegantt/pkg/timeline.Result
package nodelink
