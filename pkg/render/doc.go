// Package render draws a computed timeline onto a drawing surface.
//
// # Overview
//
// [Render] is the adapter between the layout engine in
// [github.com/matzehuels/tracegantt/pkg/timeline] and whatever displays the
// chart. It knows the chart geometry (label gutter, row pitch, bar height,
// tick count) and issues draw calls to a [Surface]; it does not know how
// pixels are produced.
//
// Surfaces shipped with tracegantt:
//
//   - [sink.SVGSurface]: standalone SVG document with a browser tooltip
//   - [headless.Recorder]: records draw calls, used in tests and the TUI
//
// # Hover
//
// Interactivity is optional. A surface that also implements [HoverSurface]
// receives one [Hover] per bar through BindHover and forwards pointer
// events to it. The adapter's [HoverHandler] turns those events into
// tooltip show/move/hide calls on the surface:
//
//	OnHoverEnter(span) -> ShowTooltip(Tooltip(span))
//	OnHoverMove(x, y)  -> MoveTooltip(x+10, y-28)
//	OnHoverLeave()     -> HideTooltip()
//
// # Format Conversion
//
// [ToPDF] and [ToPNG] convert any SVG using the external rsvg-convert tool
// (from librsvg).
//
// [sink.SVGSurface]: github.com/matzehuels/tracegantt/pkg/render/sink
// [headless.Recorder]: github.com/matzehuels/tracegantt/pkg/render/headless
package render
