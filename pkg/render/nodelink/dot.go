package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/tracegantt/pkg/render"
	"github.com/matzehuels/tracegantt/pkg/timeline"
)

// Options configures call-tree rendering.
type Options struct {
	// Detailed adds the span ID and start time to node labels.
	Detailed bool
}

// ToDOT converts a timeline into a Graphviz call tree. Nodes are named by
// row and appear in row order; edges run from parent to child.
// The resulting DOT string can be rendered using [RenderSVG], [RenderPDF], or [RenderPNG].
//
// Spans ending before they start are drawn dashed.
func ToDOT(res timeline.Result, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, p := range res.Positioned {
		label := fmtLabel(p, opts.Detailed)
		attrs := fmtAttrs(p, label)
		fmt.Fprintf(&buf, "  %q [%s];\n", nodeID(p.Row), strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, p := range res.Positioned {
		if p.ParentRow < 0 {
			continue
		}
		fmt.Fprintf(&buf, "  %q -> %q;\n", nodeID(p.ParentRow), nodeID(p.Row))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeID(row int) string { return "row" + strconv.Itoa(row) }

func fmtLabel(p timeline.PositionedSpan, detailed bool) string {
	head := fmt.Sprintf("%s\n%s (%s)", p.ServiceName, p.OperationName, render.FormatDuration(max(0, p.Duration())))
	if !detailed {
		return head
	}
	parts := []string{
		"span: " + p.SpanID,
		"start: " + render.FormatTimestamp(p.StartTime),
	}
	return head + "\n" + strings.Join(parts, "\n")
}

func fmtAttrs(p timeline.PositionedSpan, label string) []string {
	attrs := []string{fmt.Sprintf("label=%q", label), fmt.Sprintf("tooltip=%q", strings.Join(render.Tooltip(p), "\n"))}
	if p.EndTime < p.StartTime {
		attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=lightgrey", "fontcolor=black")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
// Returns the SVG bytes ready for display or further conversion with [render.ToPDF] or [render.ToPNG].
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}

// RenderPDF renders a DOT graph as PDF via SVG conversion.
// This is a convenience wrapper around [RenderSVG] and [render.ToPDF].
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(ctx context.Context, dot string) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(ctx, svg)
}

// RenderPNG renders a DOT graph as PNG via SVG conversion.
// This is a convenience wrapper around [RenderSVG] and [render.ToPNG].
//
// A scale of 2.0 produces a 2x resolution image suitable for high-DPI displays.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPNG(ctx context.Context, dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(ctx, svg, scale)
}
