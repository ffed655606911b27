package timeline

import (
	"path/filepath"
	"testing"

	errs "github.com/matzehuels/tracegantt/pkg/errors"
)

func TestLayoutFileRoundTrip(t *testing.T) {
	res, err := Compute(span("root", 0, 160, span("a", 110, 150), span("c", 10, 40)))
	if err != nil {
		t.Fatalf("Compute() error: %v", err)
	}
	l := res.Export(800)
	l.TraceID = "abc"

	path := filepath.Join(t.TempDir(), "layout.json")
	if err := WriteFile(l, path); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}
	got, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error: %v", err)
	}

	if got.TraceID != "abc" || got.Width != 800 || got.Height != Height(3) {
		t.Errorf("header = %q %v %v", got.TraceID, got.Width, got.Height)
	}
	back := got.Result()
	if back.RowCount != 3 || back.Domain != res.Domain {
		t.Errorf("Result() = %+v", back)
	}
	if back.Positioned[1].SpanID != "c" || back.Positioned[2].ParentRow != 0 {
		t.Errorf("spans = %+v", back.Positioned)
	}
}

func TestExportDefaults(t *testing.T) {
	l := Result{}.Export(0)
	if l.Width != DefaultWidth {
		t.Errorf("Width = %v, want %v", l.Width, DefaultWidth)
	}
	if l.Spans == nil {
		t.Error("Spans should be an empty slice so JSON encodes []")
	}
}

func TestUnmarshalValidates(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"row count mismatch", `{"row_count":2,"spans":[{"span_id":"r","row":0,"parent_row":-1}]}`},
		{"row out of order", `{"row_count":1,"spans":[{"span_id":"r","row":3,"parent_row":-1}]}`},
		{"parent after child", `{"row_count":2,"spans":[{"span_id":"r","row":0,"parent_row":-1},{"span_id":"a","row":1,"parent_row":1}]}`},
		{"negative parent row", `{"row_count":2,"spans":[{"span_id":"r","row":0,"parent_row":-1},{"span_id":"a","row":1,"parent_row":-5}]}`},
		{"second root", `{"row_count":2,"spans":[{"span_id":"r","row":0,"parent_row":-1},{"span_id":"a","row":1,"parent_row":-1}]}`},
		{"root with parent", `{"row_count":1,"spans":[{"span_id":"r","row":0,"parent_row":0}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Unmarshal([]byte(tt.doc))
			if !errs.Is(err, errs.ErrCodeInvalidInput) {
				t.Errorf("Unmarshal() error = %v, want %s", err, errs.ErrCodeInvalidInput)
			}
		})
	}

	l, err := Unmarshal([]byte(`{"row_count":1,"spans":[{"span_id":"r","row":0,"parent_row":-1}]}`))
	if err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if l.Width != DefaultWidth || l.Height != Height(1) {
		t.Errorf("defaults not applied: %v x %v", l.Width, l.Height)
	}
}

func TestReadFileMissing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "nope.json"))
	if !errs.Is(err, errs.ErrCodeFileNotFound) {
		t.Errorf("ReadFile() error = %v, want %s", err, errs.ErrCodeFileNotFound)
	}
}
