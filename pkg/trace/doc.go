// Package trace defines the span tree consumed by the timeline layout engine.
//
// # Overview
//
// A trace is a root [Span] with nested children. Each span carries display
// labels (service and operation name), an identifier and a start/end
// timestamp in nanoseconds since the Unix epoch.
//
// # Decoding
//
// [Parse], [Decode] and [ReadFile] read the JSON shape served by the trace
// search endpoint:
//
//	{
//	  "span_id": "a1", "service_name": "frontend", "operation_name": "GET /",
//	  "start_time": 1700000000000000000, "end_time": 1700000000160000000,
//	  "children": [ ... ]
//	}
//
// "children": null, "children": [] and a missing key are all decoded to a nil
// slice, so consumers only ever test len(Children). A span decoded without
// start_time or end_time reports the gap through [Span.Missing]; the layout
// engine rejects such a root.
//
// # OTLP
//
// [FromOTLP] assembles a span tree from OpenTelemetry ptrace data, linking
// spans through their parent span IDs.
package trace
