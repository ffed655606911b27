// Package timeline computes the row layout and time scale of a trace Gantt
// chart.
//
// # Overview
//
// [Compute] walks a [trace.Span] tree depth first and assigns every span a
// row. Children are visited in ascending start_time order; spans with equal
// start times keep their input order. The walk is pre-order, so a span's
// descendants occupy a contiguous block of rows directly beneath it:
//
//	root {0,160}              row 0
//	├── c {10,40}             row 1
//	├── b {50,90}             row 2
//	│   └── b1 {60,70}        row 3
//	└── a {110,150}           row 4
//
// The input tree is never modified. Sorting happens on a copy of each
// children slice and the row counter is local to one call, so concurrent
// calls on the same tree are safe.
//
// # Time scale
//
// [Scale] maps a timestamp linearly from the trace [Domain] (the root span's
// interval) onto a pixel [Range]. [Extent] turns a span into an x offset and
// a width, clamping inverted spans to zero width. [Ticks] picks "nice" grid
// values (1, 2 or 5 times a power of ten) for the time axis.
//
// # Safety bounds
//
// Span trees arrive from external backends. A node reachable twice, a depth
// above [DefaultMaxDepth] or more than [DefaultMaxSpans] spans stops the walk
// with a CYCLIC_TRACE error instead of exhausting memory. Both bounds can be
// changed with [WithMaxDepth] and [WithMaxSpans].
//
// # Serialization
//
// [Layout] is the portable form of a [Result] together with canvas
// dimensions. It is what the layout command writes, what the visualize
// command reads back and what the render cache stores.
package timeline
