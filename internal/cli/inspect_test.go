package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/tracegantt/pkg/pipeline"
	"github.com/matzehuels/tracegantt/pkg/render"
	"github.com/matzehuels/tracegantt/pkg/timeline"
	"github.com/matzehuels/tracegantt/pkg/trace"
)

func newTestModel(t *testing.T) InspectModel {
	t.Helper()
	root, err := trace.Parse([]byte(sampleTrace))
	if err != nil {
		t.Fatal(err)
	}
	l, err := pipeline.GenerateLayout(root, pipeline.Options{})
	if err != nil {
		t.Fatal(err)
	}
	rec, plot, err := drawHeadless(l, pipeline.Options{Width: 1110})
	if err != nil {
		t.Fatal(err)
	}
	return NewInspectModel(rec, plot)
}

func press(m InspectModel, key string) (InspectModel, tea.Cmd) {
	var msg tea.KeyMsg
	switch key {
	case "up":
		msg = tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		msg = tea.KeyMsg{Type: tea.KeyDown}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
	next, cmd := m.Update(msg)
	return next.(InspectModel), cmd
}

func TestInspectModelHoversFirstRow(t *testing.T) {
	m := newTestModel(t)

	if !m.Rec.Tip.Visible {
		t.Fatal("tooltip should be visible on start")
	}
	if got := m.Rec.Tip.Lines[0]; got != "SpanId : a" {
		t.Errorf("first tooltip line = %q, want %q", got, "SpanId : a")
	}
	if m.Rec.Active() != render.BarID(0) {
		t.Errorf("active bar = %q, want %q", m.Rec.Active(), render.BarID(0))
	}
}

func TestInspectModelNavigation(t *testing.T) {
	m := newTestModel(t)

	m, _ = press(m, "down")
	if m.Cursor != 1 {
		t.Fatalf("Cursor = %d, want 1", m.Cursor)
	}
	if got := m.Rec.Tip.Lines[1]; got != "Name: db : query" {
		t.Errorf("tooltip name line = %q, want %q", got, "Name: db : query")
	}

	m, _ = press(m, "j")
	m, _ = press(m, "down") // clamps at the last row
	if m.Cursor != 2 {
		t.Fatalf("Cursor = %d, want 2", m.Cursor)
	}
	if got := m.Rec.Tip.Lines[4]; got != "Duration: 100000000" {
		t.Errorf("duration line = %q, want %q", got, "Duration: 100000000")
	}

	m, _ = press(m, "g")
	if m.Cursor != 0 {
		t.Errorf("Cursor after g = %d, want 0", m.Cursor)
	}
	m, _ = press(m, "up")
	if m.Cursor != 0 {
		t.Errorf("Cursor after up at top = %d, want 0", m.Cursor)
	}
}

func TestInspectModelQuitHidesTooltip(t *testing.T) {
	m := newTestModel(t)

	m, cmd := press(m, "q")
	if cmd == nil {
		t.Fatal("q should return a quit command")
	}
	if m.Rec.Tip.Visible {
		t.Error("tooltip should be hidden after quit")
	}
}

func TestInspectModelView(t *testing.T) {
	m := newTestModel(t)
	m, _ = press(m, "down")

	view := m.View()
	for _, want := range []string{"Trace Timeline", "frontend", "query", "SpanId : c", "[2/3]"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestInspectModelWindowSize(t *testing.T) {
	m := newTestModel(t)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 10})
	if got := next.(InspectModel).Height; got != 5 {
		t.Errorf("Height = %d, want minimum 5", got)
	}
}

func TestTrack(t *testing.T) {
	plot := timeline.Range{Min: 400, Max: 1010}

	tests := []struct {
		name string
		bar  render.Bar
		want string
	}{
		{"full width", render.Bar{X: 400, Width: 610}, strings.Repeat("█", 10)},
		{"second half", render.Bar{X: 705, Width: 305}, strings.Repeat("·", 5) + strings.Repeat("█", 5)},
		{"zero width is one cell", render.Bar{X: 400, Width: 0}, "█" + strings.Repeat("·", 9)},
		{"right edge stays inside", render.Bar{X: 1010, Width: 0}, strings.Repeat("·", 9) + "█"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := track(tt.bar, plot, 10); got != tt.want {
				t.Errorf("track() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestInspectDump(t *testing.T) {
	env := newTestEnv(t, "")
	path := env.writeTrace(t, "trace.json", sampleTrace)

	if err := env.run("inspect", path, "--dump"); err != nil {
		t.Fatalf("inspect: %v", err)
	}
	out := env.out.String()
	for _, want := range []string{
		"SpanId : a",
		"Name: frontend : GET /checkout",
		"Start Time: 2023-11-14 22:13:20",
		"Name: cart : load",
		"Duration: 40000000",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("dump missing %q:\n%s", want, out)
		}
	}
}
