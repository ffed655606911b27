package sink

import (
	"github.com/matzehuels/tracegantt/pkg/timeline"
)

// JSONOption configures JSON rendering via [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	traceID string
	width   float64
}

// WithJSONTraceID records the trace ID in the output.
func WithJSONTraceID(id string) JSONOption { return func(r *jsonRenderer) { r.traceID = id } }

// WithJSONWidth sets the canvas width recorded in the output.
func WithJSONWidth(w float64) JSONOption { return func(r *jsonRenderer) { r.width = w } }

// RenderJSON serializes res as a pretty-printed timeline.Layout.
func RenderJSON(res timeline.Result, opts ...JSONOption) ([]byte, error) {
	r := jsonRenderer{width: timeline.DefaultWidth}
	for _, opt := range opts {
		opt(&r)
	}
	l := res.Export(r.width)
	l.TraceID = r.traceID
	return timeline.Marshal(l)
}
