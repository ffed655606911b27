package timeline

import (
	"slices"
	"strings"

	errs "github.com/matzehuels/tracegantt/pkg/errors"
	"github.com/matzehuels/tracegantt/pkg/trace"
)

const (
	// DefaultMaxDepth is the deepest nesting Compute accepts.
	DefaultMaxDepth = 10_000
	// DefaultMaxSpans is the largest tree Compute accepts.
	DefaultMaxSpans = 1_000_000
)

// PositionedSpan is a span with its assigned row.
type PositionedSpan struct {
	SpanID        string `json:"span_id" bson:"span_id"`
	ServiceName   string `json:"service_name" bson:"service_name"`
	OperationName string `json:"operation_name" bson:"operation_name"`
	StartTime     int64  `json:"start_time" bson:"start_time"`
	EndTime       int64  `json:"end_time" bson:"end_time"`
	Row           int    `json:"row" bson:"row"`
	Depth         int    `json:"depth" bson:"depth"`
	ParentRow     int    `json:"parent_row" bson:"parent_row"` // -1 for the root
	ChildCount    int    `json:"child_count,omitempty" bson:"child_count,omitempty"`
}

// Duration returns EndTime - StartTime in nanoseconds.
func (p PositionedSpan) Duration() int64 { return p.EndTime - p.StartTime }

// Domain is the time interval of a trace in nanoseconds.
type Domain struct {
	Start int64 `json:"start" bson:"start"`
	End   int64 `json:"end" bson:"end"`
}

// Result is the output of Compute. Positioned is ordered by row, so
// Positioned[i].Row == i.
type Result struct {
	Positioned []PositionedSpan
	RowCount   int
	Domain     Domain
}

// Option configures Compute.
type Option func(*options)

type options struct {
	maxDepth int
	maxSpans int
}

// WithMaxDepth bounds the nesting depth of the tree. The root has depth 0.
// Values <= 0 are ignored.
func WithMaxDepth(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxDepth = n
		}
	}
}

// WithMaxSpans bounds the number of spans in the tree. Values <= 0 are
// ignored.
func WithMaxSpans(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxSpans = n
		}
	}
}

type frame struct {
	span      *trace.Span
	depth     int
	parentRow int
}

// Compute assigns a row to every span of the tree rooted at root.
//
// It fails with INVALID_TRACE when root is nil or lacks a start or end time,
// and with CYCLIC_TRACE when a span is reachable twice or a safety bound is
// exceeded. On error no partial result is returned.
func Compute(root *trace.Span, opts ...Option) (Result, error) {
	o := options{maxDepth: DefaultMaxDepth, maxSpans: DefaultMaxSpans}
	for _, opt := range opts {
		opt(&o)
	}

	if root == nil {
		return Result{}, errs.InvalidTrace("trace has no root span")
	}
	if missing := root.Missing(); len(missing) > 0 {
		return Result{}, errs.InvalidTrace("root span %q has no %s", root.SpanID, strings.Join(missing, " or "))
	}

	var (
		positioned []PositionedSpan
		visited    = make(map[*trace.Span]struct{})
		stack      = []frame{{span: root, parentRow: -1}}
		row        int
	)
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if _, seen := visited[f.span]; seen {
			return Result{}, errs.CyclicTrace("span %q is reachable more than once", f.span.SpanID)
		}
		if f.depth > o.maxDepth {
			return Result{}, errs.CyclicTrace("span %q exceeds maximum depth %d", f.span.SpanID, o.maxDepth)
		}
		if row >= o.maxSpans {
			return Result{}, errs.CyclicTrace("trace exceeds maximum of %d spans", o.maxSpans)
		}
		visited[f.span] = struct{}{}

		children := sortedChildren(f.span)
		positioned = append(positioned, PositionedSpan{
			SpanID:        f.span.SpanID,
			ServiceName:   f.span.ServiceName,
			OperationName: f.span.OperationName,
			StartTime:     f.span.StartTime,
			EndTime:       f.span.EndTime,
			Row:           row,
			Depth:         f.depth,
			ParentRow:     f.parentRow,
			ChildCount:    len(children),
		})

		// Reverse push so the earliest child is popped first.
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, frame{span: children[i], depth: f.depth + 1, parentRow: row})
		}
		row++
	}

	return Result{
		Positioned: positioned,
		RowCount:   row,
		Domain:     Domain{Start: root.StartTime, End: root.EndTime},
	}, nil
}

// sortedChildren returns the non-nil children of s in a new slice, stably
// sorted by start time.
func sortedChildren(s *trace.Span) []*trace.Span {
	if len(s.Children) == 0 {
		return nil
	}
	out := make([]*trace.Span, 0, len(s.Children))
	for _, c := range s.Children {
		if c != nil {
			out = append(out, c)
		}
	}
	slices.SortStableFunc(out, func(a, b *trace.Span) int {
		switch {
		case a.StartTime < b.StartTime:
			return -1
		case a.StartTime > b.StartTime:
			return 1
		}
		return 0
	})
	return out
}
