package render

import (
	"fmt"

	errs "github.com/matzehuels/tracegantt/pkg/errors"
	"github.com/matzehuels/tracegantt/pkg/timeline"
)

// Default chart geometry.
const (
	DefaultLabelGutter = 400.0
	DefaultRightMargin = 100.0
	DefaultTickCount   = 4
	LabelBaseline      = 12.0 // label y relative to its bar
)

// Canvas is the size of the area a surface must provide.
type Canvas struct {
	Width, Height float64
}

// Tick is one vertical grid line with its time label.
type Tick struct {
	Value  int64   // nanoseconds since the epoch
	Label  string  // Value formatted with FormatTimestamp
	X      float64 // line and label x
	Y1, Y2 float64 // line extent; the label sits at Y1
}

// Bar is the rectangle of one span.
type Bar struct {
	ID                  string // unique per render, see BarID
	X, Y, Width, Height float64
	Span                timeline.PositionedSpan
	Tooltip             []string
}

// Label is the service name drawn in the left gutter.
type Label struct {
	X, Y       float64
	Text       string
	ChildCount int
	Depth      int
}

// Surface is a drawing target. Calls arrive in order: Begin, every DrawTick,
// then DrawLabel/DrawBar pairs in row order, then End.
type Surface interface {
	// Ready reports whether the surface can be drawn on.
	Ready() error
	Begin(c Canvas) error
	DrawTick(t Tick)
	DrawLabel(l Label)
	DrawBar(b Bar)
	End() error
}

// BarID returns the identifier of the bar in the given row.
func BarID(row int) string { return fmt.Sprintf("bar-%d", row) }

// Option configures Render.
type Option func(*options)

type options struct {
	labelGutter float64
	rightMargin float64
	tickCount   int
	rowPitch    float64
	barHeight   float64
	topOffset   float64
	axisY       float64
	chrome      float64
	tooltipDX   float64
	tooltipDY   float64
}

func defaultOptions() options {
	return options{
		labelGutter: DefaultLabelGutter,
		rightMargin: DefaultRightMargin,
		tickCount:   DefaultTickCount,
		rowPitch:    timeline.RowPitch,
		barHeight:   timeline.BarHeight,
		topOffset:   timeline.TopOffset,
		axisY:       timeline.AxisY,
		chrome:      timeline.Chrome,
		tooltipDX:   DefaultTooltipDX,
		tooltipDY:   DefaultTooltipDY,
	}
}

// WithLabelGutter sets the left edge of the plot area.
func WithLabelGutter(px float64) Option { return func(o *options) { o.labelGutter = px } }

// WithRightMargin sets the gap between the plot area and the right edge.
func WithRightMargin(px float64) Option { return func(o *options) { o.rightMargin = px } }

// WithTickCount sets the approximate number of time grid lines.
func WithTickCount(n int) Option { return func(o *options) { o.tickCount = n } }

// WithRowPitch sets the vertical distance between rows.
func WithRowPitch(px float64) Option {
	return func(o *options) {
		if px > 0 {
			o.rowPitch = px
		}
	}
}

// WithBarHeight sets the height of span bars.
func WithBarHeight(px float64) Option {
	return func(o *options) {
		if px > 0 {
			o.barHeight = px
		}
	}
}

// WithTooltipOffset sets the tooltip position relative to the pointer.
func WithTooltipOffset(dx, dy float64) Option {
	return func(o *options) { o.tooltipDX, o.tooltipDY = dx, dy }
}

// PlotRange returns the x range spans are scaled onto for a canvas of the
// given width.
func PlotRange(width float64, opts ...Option) timeline.Range {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o.plotRange(width)
}

func (o options) plotRange(width float64) timeline.Range {
	return timeline.Range{Min: o.labelGutter, Max: width - o.rightMargin}
}

func (o options) height(rows int) float64 {
	return float64(rows)*o.rowPitch + o.chrome
}

// Render draws res onto s at the given canvas width.
//
// A nil surface, or one whose Ready fails, yields a
// RENDER_TARGET_UNAVAILABLE error and nothing is drawn. An empty result
// still draws the time grid.
func Render(s Surface, res timeline.Result, width float64, opts ...Option) error {
	if s == nil {
		return errs.RenderTargetUnavailable(nil, "no drawing surface")
	}
	if err := s.Ready(); err != nil {
		return errs.RenderTargetUnavailable(err, "drawing surface not ready")
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if width <= 0 {
		width = timeline.DefaultWidth
	}
	plot := o.plotRange(width)
	total := o.height(res.RowCount)

	if err := s.Begin(Canvas{Width: width, Height: total}); err != nil {
		return errs.RenderTargetUnavailable(err, "begin drawing")
	}

	for _, v := range timeline.Ticks(res.Domain, o.tickCount) {
		s.DrawTick(Tick{
			Value: v,
			Label: FormatTimestamp(v),
			X:     timeline.Scale(v, res.Domain, plot),
			Y1:    o.axisY,
			Y2:    o.axisY + total,
		})
	}

	hs, interactive := s.(HoverSurface)
	for _, p := range res.Positioned {
		y := o.topOffset + float64(p.Row)*o.rowPitch
		x, w := timeline.Extent(p, res.Domain, plot)

		s.DrawLabel(Label{X: 0, Y: y + LabelBaseline, Text: p.ServiceName, ChildCount: p.ChildCount, Depth: p.Depth})
		bar := Bar{
			ID:      BarID(p.Row),
			X:       x,
			Y:       y,
			Width:   w,
			Height:  o.barHeight,
			Span:    p,
			Tooltip: Tooltip(p),
		}
		s.DrawBar(bar)
		if interactive {
			hs.BindHover(bar.ID, &HoverHandler{View: hs, DX: o.tooltipDX, DY: o.tooltipDY})
		}
	}

	return s.End()
}
