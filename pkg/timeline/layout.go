package timeline

import (
	"encoding/json"
	"fmt"
	"os"

	errs "github.com/matzehuels/tracegantt/pkg/errors"
)

// DefaultWidth is the canvas width used when none is configured.
const DefaultWidth = 1110.0

// =============================================================================
// Layout - Serialized Timeline
// =============================================================================

// Layout is the serialized form of a Result plus canvas dimensions.
//
// Spans are stored in row order. A Layout carries no pixel coordinates;
// surfaces derive them from Domain and Width so that one layout can be drawn
// at several widths.
type Layout struct {
	TraceID  string           `json:"trace_id,omitempty" bson:"trace_id,omitempty"`
	Width    float64          `json:"width" bson:"width"`
	Height   float64          `json:"height" bson:"height"`
	Domain   Domain           `json:"domain" bson:"domain"`
	RowCount int              `json:"row_count" bson:"row_count"`
	Spans    []PositionedSpan `json:"spans" bson:"spans"`
}

// Export converts r into a Layout for a canvas of the given width.
func (r Result) Export(width float64) Layout {
	if width <= 0 {
		width = DefaultWidth
	}
	spans := r.Positioned
	if spans == nil {
		spans = []PositionedSpan{}
	}
	return Layout{
		Width:    width,
		Height:   Height(r.RowCount),
		Domain:   r.Domain,
		RowCount: r.RowCount,
		Spans:    spans,
	}
}

// Result converts l back into the Result it was exported from.
func (l Layout) Result() Result {
	return Result{Positioned: l.Spans, RowCount: l.RowCount, Domain: l.Domain}
}

// Validate checks that the spans of l are a consistent row assignment.
func (l Layout) Validate() error {
	if l.RowCount != len(l.Spans) {
		return errs.New(errs.ErrCodeInvalidInput, "layout has %d spans but row_count %d", len(l.Spans), l.RowCount)
	}
	for i, s := range l.Spans {
		if s.Row != i {
			return errs.New(errs.ErrCodeInvalidInput, "span %q at index %d has row %d", s.SpanID, i, s.Row)
		}
		if i == 0 {
			if s.ParentRow != -1 {
				return errs.New(errs.ErrCodeInvalidInput, "root span %q has parent row %d, want -1", s.SpanID, s.ParentRow)
			}
			continue
		}
		if s.ParentRow < 0 || s.ParentRow >= s.Row {
			return errs.New(errs.ErrCodeInvalidInput, "span %q at row %d has parent row %d outside [0, %d)", s.SpanID, s.Row, s.ParentRow, s.Row)
		}
	}
	return nil
}

// =============================================================================
// Layout Serialization API
// =============================================================================

// Marshal serializes a Layout to pretty-printed JSON.
func Marshal(l Layout) ([]byte, error) {
	return json.MarshalIndent(l, "", "  ")
}

// Unmarshal decodes and validates a Layout.
func Unmarshal(data []byte) (Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return Layout{}, fmt.Errorf("unmarshal layout: %w", err)
	}
	if l.Width <= 0 {
		l.Width = DefaultWidth
	}
	if l.Height <= 0 {
		l.Height = Height(l.RowCount)
	}
	if err := l.Validate(); err != nil {
		return Layout{}, err
	}
	return l, nil
}

// WriteFile writes a Layout to a JSON file.
func WriteFile(l Layout, path string) error {
	data, err := Marshal(l)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadFile reads a Layout from a JSON file.
func ReadFile(path string) (Layout, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Layout{}, errs.Wrap(errs.ErrCodeFileNotFound, err, "read %s", path)
	}
	if err != nil {
		return Layout{}, fmt.Errorf("read %s: %w", path, err)
	}
	return Unmarshal(data)
}
