package trace

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"

	errs "github.com/matzehuels/tracegantt/pkg/errors"
)

// Span is one timed operation in a trace. The root Span is the trace.
//
// Timestamps are nanoseconds since the Unix epoch. EndTime < StartTime is
// tolerated; consumers treat such a span as zero width.
type Span struct {
	TraceID       string  `json:"trace_id,omitempty" bson:"trace_id,omitempty"`
	SpanID        string  `json:"span_id" bson:"span_id"`
	ServiceName   string  `json:"service_name" bson:"service_name"`
	OperationName string  `json:"operation_name" bson:"operation_name"`
	StartTime     int64   `json:"start_time" bson:"start_time"`
	EndTime       int64   `json:"end_time" bson:"end_time"`
	Children      []*Span `json:"children,omitempty" bson:"children,omitempty"`

	// missing is only ever set by UnmarshalJSON, so spans built in code are
	// always considered complete.
	missing fieldMask
}

type fieldMask uint8

const (
	missingStart fieldMask = 1 << iota
	missingEnd
)

// Duration returns EndTime - StartTime in nanoseconds. It may be negative
// for malformed spans.
func (s *Span) Duration() int64 { return s.EndTime - s.StartTime }

// IsLeaf reports whether the span has no children.
func (s *Span) IsLeaf() bool { return len(s.Children) == 0 }

// Missing lists required timestamp fields absent from the decoded document.
func (s *Span) Missing() []string {
	var out []string
	if s.missing&missingStart != 0 {
		out = append(out, "start_time")
	}
	if s.missing&missingEnd != 0 {
		out = append(out, "end_time")
	}
	return out
}

// wireSpan mirrors Span with pointer/raw fields so that absent keys,
// explicit nulls and empty arrays can be told apart.
type wireSpan struct {
	TraceID       string          `json:"trace_id"`
	SpanID        string          `json:"span_id"`
	ServiceName   string          `json:"service_name"`
	OperationName string          `json:"operation_name"`
	StartTime     *json.Number    `json:"start_time"`
	EndTime       *json.Number    `json:"end_time"`
	Children      json.RawMessage `json:"children"`
}

// UnmarshalJSON decodes a span and normalizes "children": null, [] and an
// absent key all become a nil slice.
func (s *Span) UnmarshalJSON(data []byte) error {
	var w wireSpan
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&w); err != nil {
		return err
	}

	*s = Span{
		TraceID:       w.TraceID,
		SpanID:        w.SpanID,
		ServiceName:   w.ServiceName,
		OperationName: w.OperationName,
	}

	var err error
	if w.StartTime == nil {
		s.missing |= missingStart
	} else if s.StartTime, err = parseTimestamp(*w.StartTime); err != nil {
		return fmt.Errorf("span %q start_time: %w", w.SpanID, err)
	}
	if w.EndTime == nil {
		s.missing |= missingEnd
	} else if s.EndTime, err = parseTimestamp(*w.EndTime); err != nil {
		return fmt.Errorf("span %q end_time: %w", w.SpanID, err)
	}

	raw := bytes.TrimSpace(w.Children)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	var children []*Span
	if err := json.Unmarshal(raw, &children); err != nil {
		return fmt.Errorf("span %q children: %w", w.SpanID, err)
	}
	if len(children) > 0 {
		s.Children = children
	}
	return nil
}

// parseTimestamp accepts integer nanoseconds, and floats for backends that
// serialize large integers in exponent form.
func parseTimestamp(n json.Number) (int64, error) {
	if v, err := n.Int64(); err == nil {
		return v, nil
	}
	f, err := strconv.ParseFloat(string(n), 64)
	if err != nil {
		return 0, err
	}
	// -2^63 is exact in float64; 2^63 is the first value past MaxInt64.
	if math.IsNaN(f) || f < math.MinInt64 || f >= -math.MinInt64 {
		return 0, fmt.Errorf("%s out of range for int64 nanoseconds", n)
	}
	return int64(f), nil
}

// Parse decodes a span tree from JSON. A document consisting of "null"
// yields a nil root and no error; callers that need a trace reject it.
func Parse(data []byte) (*Span, error) {
	var root *Span
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidTrace, err, "decode span tree")
	}
	return root, nil
}

// Decode reads a span tree from r.
func Decode(r io.Reader) (*Span, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// ReadFile reads a span tree from a JSON file.
func ReadFile(path string) (*Span, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errs.Wrap(errs.ErrCodeFileNotFound, err, "read %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return Parse(data)
}

// Marshal serializes a span tree to compact JSON. The output is stable for
// equal trees and is used as cache-key input.
func Marshal(root *Span) ([]byte, error) {
	return json.Marshal(root)
}

// Count returns the number of distinct spans reachable from root. Nil
// children are not counted and a span reached twice counts once.
func Count(root *Span) int {
	if root == nil {
		return 0
	}
	seen := map[*Span]bool{root: true}
	stack := []*Span{root}
	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, c := range s.Children {
			if c != nil && !seen[c] {
				seen[c] = true
				stack = append(stack, c)
			}
		}
	}
	return len(seen)
}
