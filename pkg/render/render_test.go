package render_test

import (
	"errors"
	"slices"
	"strings"
	"testing"

	errs "github.com/matzehuels/tracegantt/pkg/errors"
	"github.com/matzehuels/tracegantt/pkg/render"
	"github.com/matzehuels/tracegantt/pkg/render/headless"
	"github.com/matzehuels/tracegantt/pkg/timeline"
	"github.com/matzehuels/tracegantt/pkg/trace"
)

func exampleResult(t *testing.T) timeline.Result {
	t.Helper()
	root := &trace.Span{
		SpanID: "root", ServiceName: "frontend", OperationName: "GET /", StartTime: 0, EndTime: 160,
		Children: []*trace.Span{
			{SpanID: "a", ServiceName: "cart", OperationName: "load", StartTime: 110, EndTime: 150},
			{SpanID: "b", ServiceName: "auth", OperationName: "check", StartTime: 50, EndTime: 90},
			{SpanID: "c", ServiceName: "search", OperationName: "query", StartTime: 10, EndTime: 40},
		},
	}
	res, err := timeline.Compute(root)
	if err != nil {
		t.Fatalf("Compute() error: %v", err)
	}
	return res
}

func TestRenderDrawsBarsAndLabels(t *testing.T) {
	rec := headless.New()
	if err := render.Render(rec, exampleResult(t), 1110); err != nil {
		t.Fatalf("Render() error: %v", err)
	}

	if rec.Canvas != (render.Canvas{Width: 1110, Height: 400}) {
		t.Errorf("Canvas = %+v", rec.Canvas)
	}
	if len(rec.Bars) != 4 || len(rec.Labels) != 4 {
		t.Fatalf("bars=%d labels=%d, want 4", len(rec.Bars), len(rec.Labels))
	}

	wantLabels := []string{"frontend", "search", "auth", "cart"}
	for i, l := range rec.Labels {
		if l.Text != wantLabels[i] {
			t.Errorf("label %d = %q, want %q", i, l.Text, wantLabels[i])
		}
		if l.X != 0 || l.Y != 100+50*float64(i)+12 {
			t.Errorf("label %d at (%v, %v)", i, l.X, l.Y)
		}
	}

	root := rec.Bars[0]
	if root.X != 400 || root.Width != 610 || root.Y != 100 || root.Height != 20 {
		t.Errorf("root bar = %+v", root)
	}
	if rec.Bars[3].Y != 250 {
		t.Errorf("last bar y = %v, want 250", rec.Bars[3].Y)
	}
	if !rec.Ended {
		t.Error("End was not called")
	}
}

func TestRenderTicks(t *testing.T) {
	rec := headless.New()
	if err := render.Render(rec, exampleResult(t), 1110); err != nil {
		t.Fatalf("Render() error: %v", err)
	}

	var values []int64
	for _, tk := range rec.Ticks {
		values = append(values, tk.Value)
		if tk.Y1 != 50 || tk.Y2 != 450 {
			t.Errorf("tick %d spans %v..%v, want 50..450", tk.Value, tk.Y1, tk.Y2)
		}
	}
	if !slices.Equal(values, []int64{0, 50, 100, 150}) {
		t.Errorf("tick values = %v", values)
	}
	if rec.Ticks[0].Label != "1970-01-01 00:00:00" {
		t.Errorf("tick label = %q", rec.Ticks[0].Label)
	}
}

func TestRenderDrawOrder(t *testing.T) {
	rec := headless.New()
	res := exampleResult(t)
	res.Positioned = res.Positioned[:1]
	res.RowCount = 1
	if err := render.Render(rec, res, 1110); err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	want := []string{"begin", "tick", "tick", "tick", "tick", "label", "bar", "end"}
	if !slices.Equal(rec.Ops, want) {
		t.Errorf("Ops = %v, want %v", rec.Ops, want)
	}
}

func TestRenderEmptyResult(t *testing.T) {
	rec := headless.New()
	if err := render.Render(rec, timeline.Result{}, 800); err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if len(rec.Bars) != 0 || len(rec.Labels) != 0 {
		t.Errorf("bars=%d labels=%d, want none", len(rec.Bars), len(rec.Labels))
	}
	if len(rec.Ticks) != 1 {
		t.Errorf("ticks = %d, want 1", len(rec.Ticks))
	}
	if rec.Canvas.Height != timeline.Chrome {
		t.Errorf("Height = %v, want %v", rec.Canvas.Height, timeline.Chrome)
	}
}

func TestRenderUnavailableSurface(t *testing.T) {
	if err := render.Render(nil, timeline.Result{}, 800); !errs.Is(err, errs.ErrCodeRenderTarget) {
		t.Errorf("Render(nil) error = %v, want %s", err, errs.ErrCodeRenderTarget)
	}

	cause := errors.New("container detached")
	rec := headless.New()
	rec.Err = cause
	err := render.Render(rec, exampleResult(t), 800)
	if !errs.Is(err, errs.ErrCodeRenderTarget) || !errors.Is(err, cause) {
		t.Errorf("Render() error = %v, want wrapped %v", err, cause)
	}
	if len(rec.Ops) != 0 {
		t.Errorf("drew on an unavailable surface: %v", rec.Ops)
	}
}

func TestRenderInvertedSpanHasZeroWidth(t *testing.T) {
	root := &trace.Span{SpanID: "r", StartTime: 0, EndTime: 200,
		Children: []*trace.Span{{SpanID: "bad", StartTime: 100, EndTime: 80}}}
	res, err := timeline.Compute(root)
	if err != nil {
		t.Fatalf("Compute() error: %v", err)
	}
	rec := headless.New()
	if err := render.Render(rec, res, 1110); err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if w := rec.Bars[1].Width; w != 0 {
		t.Errorf("width = %v, want 0", w)
	}
}

func TestRenderOptions(t *testing.T) {
	rec := headless.New()
	err := render.Render(rec, exampleResult(t), 1000,
		render.WithLabelGutter(200),
		render.WithRightMargin(0),
		render.WithTickCount(2),
		render.WithRowPitch(30),
		render.WithBarHeight(10),
	)
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if b := rec.Bars[0]; b.X != 200 || b.Width != 800 || b.Height != 10 {
		t.Errorf("root bar = %+v", b)
	}
	if y := rec.Bars[1].Y; y != 130 {
		t.Errorf("row 1 y = %v, want 130", y)
	}
	if len(rec.Ticks) != 2 || rec.Ticks[1].Value != 100 {
		t.Errorf("ticks = %+v, want 0 and 100", rec.Ticks)
	}
}

func TestHoverShowsTooltip(t *testing.T) {
	rec := headless.New()
	if err := render.Render(rec, exampleResult(t), 1110); err != nil {
		t.Fatalf("Render() error: %v", err)
	}

	if err := rec.Enter(render.BarID(1)); err != nil {
		t.Fatalf("Enter() error: %v", err)
	}
	if !rec.Tip.Visible {
		t.Fatal("tooltip not visible after enter")
	}
	if got := rec.Tip.Lines[0]; got != "SpanId : c" {
		t.Errorf("first line = %q", got)
	}

	rec.Move(500, 300)
	if rec.Tip.X != 510 || rec.Tip.Y != 272 {
		t.Errorf("tooltip at (%v, %v), want (510, 272)", rec.Tip.X, rec.Tip.Y)
	}

	rec.Leave()
	if rec.Tip.Visible {
		t.Error("tooltip visible after leave")
	}
}

func TestPointerAt(t *testing.T) {
	rec := headless.New()
	if err := render.Render(rec, exampleResult(t), 1110); err != nil {
		t.Fatalf("Render() error: %v", err)
	}

	// row 2 is auth {50,90}: x 590.6..743.1, y 200..220
	rec.PointerAt(600, 210)
	if rec.Active() != render.BarID(2) || !strings.Contains(rec.Tip.Lines[1], "auth : check") {
		t.Errorf("active = %q, tip = %v", rec.Active(), rec.Tip.Lines)
	}

	rec.PointerAt(10, 10)
	if rec.Active() != "" || rec.Tip.Visible {
		t.Errorf("pointer outside bars: active = %q, visible = %v", rec.Active(), rec.Tip.Visible)
	}
}

func TestRenderNonInteractiveSurface(t *testing.T) {
	s := &plainSurface{}
	if err := render.Render(s, exampleResult(t), 1110); err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if s.bars != 4 {
		t.Errorf("bars = %d, want 4", s.bars)
	}
}

// plainSurface draws but has no hover capability.
type plainSurface struct{ bars int }

func (*plainSurface) Ready() error              { return nil }
func (*plainSurface) Begin(render.Canvas) error { return nil }
func (*plainSurface) DrawTick(render.Tick)      {}
func (*plainSurface) DrawLabel(render.Label)    {}
func (s *plainSurface) DrawBar(render.Bar)      { s.bars++ }
func (*plainSurface) End() error                { return nil }
