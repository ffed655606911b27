package sink

import (
	"bytes"
	"fmt"

	"github.com/matzehuels/tracegantt/pkg/render"
	"github.com/matzehuels/tracegantt/pkg/render/styles"
	"github.com/matzehuels/tracegantt/pkg/timeline"
)

// DefaultPadding surrounds the chart on every side.
const DefaultPadding = 20.0

const tooltipJS = `
    (function () {
      var svg = document.getElementById('%[1]s');
      var tip = svg.getElementById ? svg.getElementById('tooltip') : document.getElementById('tooltip');
      var box = tip.querySelector('rect');
      var text = tip.querySelector('text');
      function toSVG(e) {
        var p = svg.createSVGPoint();
        p.x = e.clientX; p.y = e.clientY;
        return p.matrixTransform(svg.getScreenCTM().inverse());
      }
      function move(e) {
        var p = toSVG(e);
        tip.setAttribute('transform', 'translate(' + (p.x + %[2]g) + ',' + (p.y + %[3]g) + ')');
      }
      svg.querySelectorAll('.span-bar').forEach(function (bar) {
        bar.addEventListener('mouseenter', function (e) {
          while (text.firstChild) text.removeChild(text.firstChild);
          bar.getAttribute('data-tooltip').split('\n').forEach(function (line) {
            var ts = document.createElementNS('http://www.w3.org/2000/svg', 'tspan');
            ts.setAttribute('x', 5);
            ts.setAttribute('dy', '1.2em');
            ts.textContent = line;
            text.appendChild(ts);
          });
          var bb = text.getBBox();
          box.setAttribute('width', bb.width + 10);
          box.setAttribute('height', bb.height + 10);
          move(e);
          tip.setAttribute('visibility', 'visible');
        });
        bar.addEventListener('mousemove', move);
        bar.addEventListener('mouseleave', function () {
          tip.setAttribute('visibility', 'hidden');
        });
      });
    })();`

// SVGOption configures the SVG surface.
type SVGOption func(*SVGSurface)

// WithStyle sets the visual theme (default styles.Light).
func WithStyle(s styles.Style) SVGOption { return func(r *SVGSurface) { r.style = s } }

// WithPadding sets the margin around the chart.
func WithPadding(px float64) SVGOption { return func(r *SVGSurface) { r.padding = px } }

// WithoutTooltips drops the tooltip element and its script.
func WithoutTooltips() SVGOption { return func(r *SVGSurface) { r.tooltips = false } }

// WithTitle sets the document <title>, typically the trace ID.
func WithTitle(title string) SVGOption { return func(r *SVGSurface) { r.title = title } }

// WithDocumentID sets the id attribute of the root <svg> element. Pages
// embedding several charts need distinct IDs for the tooltip script.
func WithDocumentID(id string) SVGOption { return func(r *SVGSurface) { r.docID = id } }

// WithTooltipOffset sets the tooltip position relative to the pointer.
func WithTooltipOffset(dx, dy float64) SVGOption {
	return func(r *SVGSurface) { r.tipDX, r.tipDY = dx, dy }
}

// WithRenderOptions passes chart geometry options through to render.Render.
func WithRenderOptions(opts ...render.Option) SVGOption {
	return func(r *SVGSurface) { r.renderOpts = append(r.renderOpts, opts...) }
}

// SVGSurface is a render.Surface producing a standalone SVG document.
//
// Hover is handled in the browser: every bar carries its tooltip in a
// data attribute and an embedded script shows it next to the pointer.
type SVGSurface struct {
	style      styles.Style
	padding    float64
	tooltips   bool
	title      string
	docID      string
	tipDX      float64
	tipDY      float64
	renderOpts []render.Option

	buf  bytes.Buffer
	done bool
}

var _ render.Surface = (*SVGSurface)(nil)

// NewSVG returns an empty SVG surface.
func NewSVG(opts ...SVGOption) *SVGSurface {
	s := &SVGSurface{
		style:    styles.Light(),
		padding:  DefaultPadding,
		tooltips: true,
		docID:    "timeline",
		tipDX:    render.DefaultTooltipDX,
		tipDY:    render.DefaultTooltipDY,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ready fails when no style is configured.
func (s *SVGSurface) Ready() error {
	if s.style == nil {
		return fmt.Errorf("svg surface has no style")
	}
	return nil
}

func (s *SVGSurface) Begin(c render.Canvas) error {
	s.buf.Reset()
	s.done = false
	w, h := c.Width+2*s.padding, c.Height+2*s.padding
	fmt.Fprintf(&s.buf, `<svg xmlns="http://www.w3.org/2000/svg" id="%s" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f" data-theme="%s">`+"\n",
		styles.EscapeXML(s.docID), w, h, w, h, styles.EscapeXML(s.style.Name()))
	if s.title != "" {
		fmt.Fprintf(&s.buf, "  <title>%s</title>\n", styles.EscapeXML(s.title))
	}
	s.style.RenderDefs(&s.buf, render.Canvas{Width: w, Height: h})
	fmt.Fprintf(&s.buf, `  <g transform="translate(%.1f,%.1f)">`+"\n", s.padding, s.padding)
	return nil
}

func (s *SVGSurface) DrawTick(t render.Tick)   { s.style.RenderTick(&s.buf, t) }
func (s *SVGSurface) DrawLabel(l render.Label) { s.style.RenderLabel(&s.buf, l) }
func (s *SVGSurface) DrawBar(b render.Bar)     { s.style.RenderBar(&s.buf, b) }

func (s *SVGSurface) End() error {
	s.buf.WriteString("  </g>\n")
	if s.tooltips {
		s.style.RenderTooltip(&s.buf)
		fmt.Fprintf(&s.buf, "  <script type=\"text/javascript\"><![CDATA[%s\n  ]]></script>\n",
			fmt.Sprintf(tooltipJS, s.docID, s.tipDX, s.tipDY))
	}
	s.buf.WriteString("</svg>\n")
	s.done = true
	return nil
}

// Bytes returns the finished document, or nil before End.
func (s *SVGSurface) Bytes() []byte {
	if !s.done {
		return nil
	}
	return s.buf.Bytes()
}

// RenderSVG draws res as an SVG document of the given width.
func RenderSVG(res timeline.Result, width float64, opts ...SVGOption) ([]byte, error) {
	s := NewSVG(opts...)
	if err := render.Render(s, res, width, s.renderOpts...); err != nil {
		return nil, err
	}
	return s.Bytes(), nil
}

// RenderLayoutSVG draws a serialized layout at its recorded width.
func RenderLayoutSVG(l timeline.Layout, opts ...SVGOption) ([]byte, error) {
	if l.TraceID != "" {
		opts = append([]SVGOption{WithTitle("trace " + l.TraceID)}, opts...)
	}
	return RenderSVG(l.Result(), l.Width, opts...)
}
