package render

import (
	"fmt"
	"time"

	"github.com/matzehuels/tracegantt/pkg/timeline"
)

// Tooltip placement relative to the pointer.
const (
	DefaultTooltipDX = 10.0
	DefaultTooltipDY = -28.0
)

// TimestampLayout is the time format of tick labels and tooltips.
const TimestampLayout = "2006-01-02 15:04:05"

// Hover receives pointer events for one bar.
type Hover interface {
	OnHoverEnter(span timeline.PositionedSpan)
	OnHoverMove(x, y float64)
	OnHoverLeave()
}

// TooltipView displays a single floating tooltip.
type TooltipView interface {
	ShowTooltip(lines []string)
	MoveTooltip(x, y float64)
	HideTooltip()
}

// HoverSurface is a Surface that dispatches pointer events to bars.
type HoverSurface interface {
	Surface
	TooltipView
	BindHover(barID string, h Hover)
}

// HoverHandler shows the span tooltip while the pointer is over a bar.
type HoverHandler struct {
	View   TooltipView
	DX, DY float64
}

// OnHoverEnter shows the tooltip of span.
func (h *HoverHandler) OnHoverEnter(span timeline.PositionedSpan) {
	h.View.ShowTooltip(Tooltip(span))
}

// OnHoverMove moves the tooltip next to the pointer.
func (h *HoverHandler) OnHoverMove(x, y float64) {
	h.View.MoveTooltip(x+h.DX, y+h.DY)
}

// OnHoverLeave hides the tooltip.
func (h *HoverHandler) OnHoverLeave() {
	h.View.HideTooltip()
}

// Tooltip returns the tooltip lines of a span. The duration is in
// nanoseconds.
func Tooltip(s timeline.PositionedSpan) []string {
	return []string{
		"SpanId : " + s.SpanID,
		fmt.Sprintf("Name: %s : %s", s.ServiceName, s.OperationName),
		"Start Time: " + FormatTimestamp(s.StartTime),
		"End Time: " + FormatTimestamp(s.EndTime),
		fmt.Sprintf("Duration: %d", s.Duration()),
	}
}

// FormatTimestamp formats nanoseconds since the epoch in UTC.
func FormatTimestamp(ns int64) string {
	return time.Unix(0, ns).UTC().Format(TimestampLayout)
}

// FormatDuration renders a nanosecond duration for humans, e.g. "1.5ms".
func FormatDuration(ns int64) string {
	return time.Duration(ns).String()
}
