package trace

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"github.com/eapache/queue"
	"go.opentelemetry.io/collector/pdata/pcommon"
	"go.opentelemetry.io/collector/pdata/ptrace"

	errs "github.com/matzehuels/tracegantt/pkg/errors"
)

// ServiceNameAttr is the resource attribute holding the service name.
const ServiceNameAttr = "service.name"

// UnknownService labels spans whose resource carries no service.name.
const UnknownService = "unknown_service"

// SyntheticRootID is the span ID given to the root that joins several
// top-level spans of one trace.
const SyntheticRootID = "__root__"

type flatSpan struct {
	span     *Span
	parentID string
}

// FromOTLP assembles the span tree of one trace from OTLP data.
//
// If traceID is empty the first trace ID encountered is used. Spans whose
// parent is absent from td become roots; when there is more than one root
// they are joined under a synthetic span covering all of them. Children keep
// the order in which they appear in td.
func FromOTLP(td ptrace.Traces, traceID string) (*Span, error) {
	flat := flatten(td, traceID)
	if len(flat) == 0 {
		if traceID == "" {
			return nil, errs.New(errs.ErrCodeTraceNotFound, "no spans in OTLP payload")
		}
		return nil, errs.New(errs.ErrCodeTraceNotFound, "trace %s not found in OTLP payload", traceID)
	}

	byID := make(map[string]*flatSpan, len(flat))
	for _, f := range flat {
		if _, dup := byID[f.span.SpanID]; dup {
			return nil, errs.InvalidTrace("duplicate span ID %s", f.span.SpanID)
		}
		byID[f.span.SpanID] = f
	}

	var roots []*Span
	for _, f := range flat {
		parent, ok := byID[f.parentID]
		if f.parentID == "" || !ok {
			roots = append(roots, f.span)
			continue
		}
		parent.span.Children = append(parent.span.Children, f.span)
	}

	if reached := reachable(roots); reached != len(flat) {
		return nil, errs.CyclicTrace("%d of %d spans are unreachable from a root span", len(flat)-reached, len(flat))
	}

	if len(roots) == 1 {
		return roots[0], nil
	}
	return joinRoots(roots), nil
}

func flatten(td ptrace.Traces, traceID string) []*flatSpan {
	var out []*flatSpan
	rss := td.ResourceSpans()
	for i := 0; i < rss.Len(); i++ {
		rs := rss.At(i)
		service := UnknownService
		if v, ok := rs.Resource().Attributes().Get(ServiceNameAttr); ok && v.AsString() != "" {
			service = v.AsString()
		}
		sss := rs.ScopeSpans()
		for j := 0; j < sss.Len(); j++ {
			spans := sss.At(j).Spans()
			for k := 0; k < spans.Len(); k++ {
				sp := spans.At(k)
				tid := sp.TraceID().String()
				if traceID == "" {
					traceID = tid
				}
				if tid != traceID {
					continue
				}
				out = append(out, &flatSpan{
					span: &Span{
						TraceID:       tid,
						SpanID:        sp.SpanID().String(),
						ServiceName:   service,
						OperationName: sp.Name(),
						StartTime:     timestamp(sp.StartTimestamp()),
						EndTime:       timestamp(sp.EndTimestamp()),
					},
					parentID: parentID(sp),
				})
			}
		}
	}
	return out
}

func parentID(sp ptrace.Span) string {
	if sp.ParentSpanID().IsEmpty() {
		return ""
	}
	return sp.ParentSpanID().String()
}

// timestamp clamps values past MaxInt64 instead of wrapping them negative.
func timestamp(ts pcommon.Timestamp) int64 {
	if uint64(ts) > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(ts)
}

// reachable counts the spans reachable from roots with a breadth-first walk.
// Spans whose parent chain loops never hang off a root and are not counted.
func reachable(roots []*Span) int {
	q := queue.New()
	for _, r := range roots {
		q.Add(r)
	}
	n := 0
	for q.Length() > 0 {
		s := q.Remove().(*Span)
		n++
		for _, c := range s.Children {
			q.Add(c)
		}
	}
	return n
}

func joinRoots(roots []*Span) *Span {
	start := slices.MinFunc(roots, func(a, b *Span) int { return cmp.Compare(a.StartTime, b.StartTime) }).StartTime
	end := slices.MaxFunc(roots, func(a, b *Span) int { return cmp.Compare(a.EndTime, b.EndTime) }).EndTime
	return &Span{
		TraceID:       roots[0].TraceID,
		SpanID:        SyntheticRootID,
		ServiceName:   roots[0].ServiceName,
		OperationName: fmt.Sprintf("%d root spans", len(roots)),
		StartTime:     start,
		EndTime:       end,
		Children:      roots,
	}
}

// ParseOTLP decodes OTLP/JSON trace data and assembles the tree of traceID.
func ParseOTLP(data []byte, traceID string) (*Span, error) {
	u := ptrace.JSONUnmarshaler{}
	td, err := u.UnmarshalTraces(data)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidTrace, err, "decode OTLP traces")
	}
	return FromOTLP(td, traceID)
}
