// Package sink writes timelines to output formats.
//
// # SVG
//
// [SVGSurface] implements render.Surface and produces a standalone document.
// [RenderSVG] wraps the common case:
//
//	svg, err := sink.RenderSVG(res, 1110, sink.WithStyle(styles.Dark()))
//
// Bars carry their tooltip text in a data-tooltip attribute; an embedded
// script shows it next to the pointer on hover. Use [WithoutTooltips] for
// static output such as PNG and PDF.
//
// # PNG and PDF
//
// [RenderPNG] and [RenderPDF] convert the SVG with rsvg-convert.
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
//
// # JSON
//
// [RenderJSON] serializes a [timeline.Layout] for the visualize command and
// external tools.
//
// [timeline.Layout]: github.com/matzehuels/tracegantt/pkg/timeline.Layout
package sink
