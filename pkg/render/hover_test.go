package render

import (
	"strings"
	"testing"

	"github.com/matzehuels/tracegantt/pkg/timeline"
)

type fakeView struct {
	lines   []string
	x, y    float64
	visible bool
}

func (v *fakeView) ShowTooltip(lines []string) { v.lines, v.visible = lines, true }
func (v *fakeView) MoveTooltip(x, y float64)   { v.x, v.y = x, y }
func (v *fakeView) HideTooltip()               { v.visible = false }

func TestTooltip(t *testing.T) {
	lines := Tooltip(timeline.PositionedSpan{SpanID: "s1", ServiceName: "svc", OperationName: "op", StartTime: 10, EndTime: 40})

	want := []string{
		"SpanId : s1",
		"Name: svc : op",
		"Start Time: 1970-01-01 00:00:00",
		"End Time: 1970-01-01 00:00:00",
		"Duration: 30",
	}
	if len(lines) != len(want) {
		t.Fatalf("got %d lines, want %d", len(lines), len(want))
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
	if !strings.Contains(strings.Join(lines, "\n"), "30") {
		t.Error("tooltip does not mention the duration")
	}
}

func TestFormatTimestamp(t *testing.T) {
	tests := []struct {
		ns   int64
		want string
	}{
		{0, "1970-01-01 00:00:00"},
		{1_700_000_000_000_000_000, "2023-11-14 22:13:20"},
		{1_700_000_000_999_999_999, "2023-11-14 22:13:20"},
	}
	for _, tt := range tests {
		if got := FormatTimestamp(tt.ns); got != tt.want {
			t.Errorf("FormatTimestamp(%d) = %q, want %q", tt.ns, got, tt.want)
		}
	}
}

func TestHoverHandler(t *testing.T) {
	v := &fakeView{}
	h := &HoverHandler{View: v, DX: DefaultTooltipDX, DY: DefaultTooltipDY}

	h.OnHoverEnter(timeline.PositionedSpan{SpanID: "x", StartTime: 0, EndTime: 5})
	if !v.visible || v.lines[0] != "SpanId : x" {
		t.Errorf("after enter: visible=%v lines=%v", v.visible, v.lines)
	}
	h.OnHoverMove(100, 100)
	if v.x != 110 || v.y != 72 {
		t.Errorf("after move: (%v, %v), want (110, 72)", v.x, v.y)
	}
	h.OnHoverLeave()
	if v.visible {
		t.Error("visible after leave")
	}
}

func TestPlotRange(t *testing.T) {
	r := PlotRange(1110)
	if r.Min != 400 || r.Max != 1010 {
		t.Errorf("PlotRange(1110) = %+v", r)
	}
	r = PlotRange(500, WithLabelGutter(50), WithRightMargin(10))
	if r.Min != 50 || r.Max != 490 {
		t.Errorf("PlotRange(500, ...) = %+v", r)
	}
}
