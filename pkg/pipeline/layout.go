package pipeline

import (
	"github.com/matzehuels/tracegantt/pkg/timeline"
	"github.com/matzehuels/tracegantt/pkg/trace"
)

// GenerateLayout computes the row assignment of root and exports it for a
// canvas of opts.Width. The layout carries the trace ID of opts, or of the
// root span when opts has none.
func GenerateLayout(root *trace.Span, opts Options) (timeline.Layout, error) {
	opts.SetLayoutDefaults()
	res, err := timeline.Compute(root,
		timeline.WithMaxDepth(opts.MaxDepth),
		timeline.WithMaxSpans(opts.MaxSpans))
	if err != nil {
		return timeline.Layout{}, err
	}
	l := res.Export(opts.Width)
	l.TraceID = opts.TraceID
	if l.TraceID == "" {
		l.TraceID = root.TraceID
	}
	return l, nil
}
