package sink

import (
	"context"

	"github.com/matzehuels/tracegantt/pkg/render"
	"github.com/matzehuels/tracegantt/pkg/timeline"
)

// PDFOption configures PDF rendering.
type PDFOption func(*pdfRenderer)

type pdfRenderer struct {
	svgOpts []SVGOption
}

// WithPDFSVGOptions passes options through to the underlying SVG renderer.
func WithPDFSVGOptions(opts ...SVGOption) PDFOption {
	return func(r *pdfRenderer) { r.svgOpts = opts }
}

// RenderPDF renders the timeline as PDF via SVG conversion.
func RenderPDF(ctx context.Context, res timeline.Result, width float64, opts ...PDFOption) ([]byte, error) {
	r := pdfRenderer{}
	for _, opt := range opts {
		opt(&r)
	}
	svg, err := RenderSVG(res, width, append([]SVGOption{WithoutTooltips()}, r.svgOpts...)...)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(ctx, svg)
}
