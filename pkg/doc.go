// Package pkg provides the core libraries for tracegantt, a Gantt chart
// renderer for distributed traces.
//
// # Overview
//
// A trace is a tree of spans: each span names a service and an operation and
// carries start and end timestamps in nanoseconds. Tracegantt flattens the
// tree into rows in depth-first order, siblings sorted by start time, and
// places each span as a bar on a time axis shared by the whole trace.
//
// # Architecture
//
// The typical data flow:
//
//	Trace search service / span-tree JSON / OTLP export
//	         ↓
//	    [source] package (fetch the span tree)
//	         ↓
//	    [trace] package (span tree model + OTLP assembly)
//	         ↓
//	    [timeline] package (rows, time domain, scale, ticks)
//	         ↓
//	    [render] package (drawing surface + hover interaction)
//	         ↓
//	    SVG/PNG/PDF/JSON/DOT output
//
// # Quick Start
//
//	import (
//	    "github.com/matzehuels/tracegantt/pkg/render/sink"
//	    "github.com/matzehuels/tracegantt/pkg/timeline"
//	    "github.com/matzehuels/tracegantt/pkg/trace"
//	)
//
//	// 1. Load the span tree
//	root, _ := trace.ReadFile("trace.json")
//
//	// 2. Compute rows and the time domain
//	res, _ := timeline.Compute(root)
//
//	// 3. Render to SVG
//	svg, _ := sink.RenderSVG(res, timeline.DefaultWidth)
//
// # Main Packages
//
// ## Core Domain Logic
//
// [trace] - The span tree: JSON decoding with children normalization and
// assembly of trees from OTLP data (pdata ptrace).
//
// [timeline] - Row assignment (iterative depth-first walk), time domain,
// linear scale, tick generation and the serialized Layout.
//
// ## Visualization
//
// [render] - The Surface and HoverSurface capabilities, the drawing walk,
// tooltips, and SVG to PDF/PNG conversion.
//
//   - [render/sink]: Output formats (SVG, PDF, PNG, JSON)
//   - [render/styles]: Light and dark themes
//   - [render/nodelink]: Call tree diagrams using Graphviz
//   - [render/headless]: In-memory surface for tests and the terminal inspector
//
// ## Infrastructure
//
// [source] - Trace sources: span-tree files, OTLP exports, and the trace
// search service over HTTP.
//
// [pipeline] - Complete pipeline (fetch → layout → render) used by the CLI
// and the HTTP server. Ensures consistent behavior across entry points.
//
// [cache] - Cache backends: file (CLI), Redis and MongoDB (shared), null.
//
// [server] - HTTP server for charts and the interactive trace page.
//
// [config] - TOML/YAML configuration files.
//
// [observability] - Pipeline, cache and HTTP hooks with an OpenTelemetry
// implementation.
//
// [errors] - Error codes shared by all packages.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...                    # All tests
//	go test ./pkg/timeline/...           # Specific package
//	go test -run Example                 # Examples only
//	go test -tags integration ./pkg/...  # Include Redis/MongoDB tests
//
// [trace]: https://pkg.go.dev/github.com/matzehuels/tracegantt/pkg/trace
// [timeline]: https://pkg.go.dev/github.com/matzehuels/tracegantt/pkg/timeline
// [render]: https://pkg.go.dev/github.com/matzehuels/tracegantt/pkg/render
// [render/sink]: https://pkg.go.dev/github.com/matzehuels/tracegantt/pkg/render/sink
// [render/styles]: https://pkg.go.dev/github.com/matzehuels/tracegantt/pkg/render/styles
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/tracegantt/pkg/render/nodelink
// [render/headless]: https://pkg.go.dev/github.com/matzehuels/tracegantt/pkg/render/headless
// [source]: https://pkg.go.dev/github.com/matzehuels/tracegantt/pkg/source
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/tracegantt/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/tracegantt/pkg/cache
// [server]: https://pkg.go.dev/github.com/matzehuels/tracegantt/pkg/server
// [config]: https://pkg.go.dev/github.com/matzehuels/tracegantt/pkg/config
// [observability]: https://pkg.go.dev/github.com/matzehuels/tracegantt/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/tracegantt/pkg/errors
package pkg
