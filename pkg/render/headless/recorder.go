// Package headless provides a render surface that records draw calls
// instead of producing pixels.
//
// A [Recorder] keeps every tick, label and bar it receives and tracks the
// state of the tooltip, so tests and non-graphical consumers (the terminal
// inspector) can drive hover interaction without a browser:
//
//	rec := headless.New()
//	_ = render.Render(rec, res, 1110)
//	rec.Enter(rec.Bars[2].ID)
//	fmt.Println(rec.Tip.Lines)
package headless

import (
	"fmt"

	"github.com/matzehuels/tracegantt/pkg/render"
)

// TooltipState is the tooltip as last set by the hover handlers.
type TooltipState struct {
	Visible bool
	Lines   []string
	X, Y    float64
}

// Recorder is an in-memory render.HoverSurface.
type Recorder struct {
	// Err, when set, is returned by Ready to simulate an unusable surface.
	Err error

	Canvas render.Canvas
	Ticks  []render.Tick
	Labels []render.Label
	Bars   []render.Bar
	Tip    TooltipState
	Ended  bool

	// Ops lists draw calls in the order received, e.g. "begin", "tick",
	// "label", "bar", "end".
	Ops []string

	hovers map[string]render.Hover
	active string
}

var _ render.HoverSurface = (*Recorder)(nil)

// New returns an empty Recorder.
func New() *Recorder {
	return &Recorder{hovers: make(map[string]render.Hover)}
}

func (r *Recorder) Ready() error { return r.Err }

func (r *Recorder) Begin(c render.Canvas) error {
	r.Canvas = c
	r.Ticks, r.Labels, r.Bars = nil, nil, nil
	r.Tip = TooltipState{}
	r.Ended = false
	r.active = ""
	if r.hovers == nil {
		r.hovers = make(map[string]render.Hover)
	}
	clear(r.hovers)
	r.Ops = append(r.Ops[:0], "begin")
	return nil
}

func (r *Recorder) DrawTick(t render.Tick) {
	r.Ticks = append(r.Ticks, t)
	r.Ops = append(r.Ops, "tick")
}

func (r *Recorder) DrawLabel(l render.Label) {
	r.Labels = append(r.Labels, l)
	r.Ops = append(r.Ops, "label")
}

func (r *Recorder) DrawBar(b render.Bar) {
	r.Bars = append(r.Bars, b)
	r.Ops = append(r.Ops, "bar")
}

func (r *Recorder) End() error {
	r.Ended = true
	r.Ops = append(r.Ops, "end")
	return nil
}

func (r *Recorder) BindHover(barID string, h render.Hover) { r.hovers[barID] = h }

func (r *Recorder) ShowTooltip(lines []string) {
	r.Tip.Visible = true
	r.Tip.Lines = lines
}

func (r *Recorder) MoveTooltip(x, y float64) { r.Tip.X, r.Tip.Y = x, y }

func (r *Recorder) HideTooltip() {
	r.Tip.Visible = false
	r.Tip.Lines = nil
}

// Bar returns the recorded bar with the given ID.
func (r *Recorder) Bar(id string) (render.Bar, bool) {
	for _, b := range r.Bars {
		if b.ID == id {
			return b, true
		}
	}
	return render.Bar{}, false
}

// Active returns the ID of the bar under the simulated pointer, or "".
func (r *Recorder) Active() string { return r.active }

// Enter simulates the pointer entering bar id. The previously entered bar, if
// any, receives a leave event first.
func (r *Recorder) Enter(id string) error {
	h, ok := r.hovers[id]
	if !ok {
		return fmt.Errorf("no hover bound to %q", id)
	}
	b, _ := r.Bar(id)
	if r.active != "" && r.active != id {
		r.Leave()
	}
	r.active = id
	h.OnHoverEnter(b.Span)
	return nil
}

// Move simulates pointer motion over the active bar.
func (r *Recorder) Move(x, y float64) {
	if h, ok := r.hovers[r.active]; ok {
		h.OnHoverMove(x, y)
	}
}

// Leave simulates the pointer leaving the active bar.
func (r *Recorder) Leave() {
	if h, ok := r.hovers[r.active]; ok {
		h.OnHoverLeave()
	}
	r.active = ""
}

// PointerAt moves the simulated pointer to (x, y), dispatching enter, move
// and leave events like a browser would.
func (r *Recorder) PointerAt(x, y float64) {
	id := r.hit(x, y)
	switch {
	case id == "":
		if r.active != "" {
			r.Leave()
		}
		return
	case id != r.active:
		_ = r.Enter(id)
	}
	r.Move(x, y)
}

func (r *Recorder) hit(x, y float64) string {
	for _, b := range r.Bars {
		if x >= b.X && x <= b.X+b.Width && y >= b.Y && y <= b.Y+b.Height {
			return b.ID
		}
	}
	return ""
}
