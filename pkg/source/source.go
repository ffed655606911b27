package source

import (
	"context"
	"fmt"
	"os"

	errs "github.com/matzehuels/tracegantt/pkg/errors"
	"github.com/matzehuels/tracegantt/pkg/trace"
)

// Source fetches the span tree of a trace.
type Source interface {
	// Name identifies the source in cache keys and logs.
	Name() string
	// Fetch returns the root span of traceID. An empty traceID selects
	// whatever single trace the source holds.
	Fetch(ctx context.Context, traceID string) (*trace.Span, error)
}

// File reads a span-tree JSON document.
type File struct {
	Path string
}

func (f File) Name() string { return "file" }

// Fetch reads the document. When both traceID and the root's trace_id are
// set they must match.
func (f File) Fetch(ctx context.Context, traceID string) (*trace.Span, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	root, err := trace.ReadFile(f.Path)
	if err != nil {
		return nil, err
	}
	if root == nil {
		return nil, errs.InvalidTrace("%s holds no span tree", f.Path)
	}
	if traceID != "" && root.TraceID != "" && root.TraceID != traceID {
		return nil, errs.New(errs.ErrCodeTraceNotFound, "%s holds trace %s, not %s", f.Path, root.TraceID, traceID)
	}
	return root, nil
}

// OTLP reads an OTLP/JSON trace export, as written by the collector's file
// exporter or returned by OTLP/HTTP with JSON encoding.
type OTLP struct {
	Path string
}

func (o OTLP) Name() string { return "otlp" }

func (o OTLP) Fetch(ctx context.Context, traceID string) (*trace.Span, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(o.Path)
	if os.IsNotExist(err) {
		return nil, errs.Wrap(errs.ErrCodeFileNotFound, err, "read %s", o.Path)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", o.Path, err)
	}
	return trace.ParseOTLP(data, traceID)
}

var (
	_ Source = File{}
	_ Source = OTLP{}
)
