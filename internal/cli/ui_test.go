package cli

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/tracegantt/pkg/timeline"
)

func TestScreenStats(t *testing.T) {
	tests := []struct {
		name   string
		spans  int
		rows   int
		cached bool
		want   []string
		absent []string
	}{
		{"fresh", 3, 3, false, []string{"3 spans", "fresh"}, []string{"rows", "cached"}},
		{"cached", 3, 3, true, []string{"3 spans", "cached"}, []string{"fresh"}},
		{"truncated", 10, 4, false, []string{"10 spans", "4 rows"}, nil},
		{"fetch only", 5, 0, false, []string{"5 spans"}, []string{"rows"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			screen{w: &buf}.stats(tt.spans, tt.rows, tt.cached)
			got := buf.String()
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("stats missing %q: %q", w, got)
				}
			}
			for _, a := range tt.absent {
				if strings.Contains(got, a) {
					t.Errorf("stats should not contain %q: %q", a, got)
				}
			}
		})
	}
}

func TestScreenWindow(t *testing.T) {
	var buf bytes.Buffer
	screen{w: &buf}.window(timeline.Domain{Start: 1700000000000000000, End: 1700000000500000000})

	got := buf.String()
	for _, want := range []string{"Window", "2023-11-14 22:13:20", "Duration", "500ms"} {
		if !strings.Contains(got, want) {
			t.Errorf("window missing %q: %q", want, got)
		}
	}
}

func TestScreenWrittenSkipsStdout(t *testing.T) {
	var buf bytes.Buffer
	screen{w: &buf}.written([]string{"chart.svg", "-", "chart.json"})

	got := buf.String()
	if strings.Count(got, "\n") != 2 {
		t.Errorf("written lines = %q, want 2 lines", got)
	}
	if !strings.Contains(got, "chart.svg") || !strings.Contains(got, "chart.json") {
		t.Errorf("written = %q", got)
	}
}

func TestLayoutSummaryShowsWindow(t *testing.T) {
	env := newTestEnv(t, "")
	path := env.writeTrace(t, "trace.json", sampleTrace)

	if err := env.run("layout", path); err != nil {
		t.Fatalf("layout: %v", err)
	}
	out := env.out.String()
	for _, want := range []string{
		"Layout complete",
		filepath.Join(env.dir, "trace.layout.json"),
		"3 spans",
		"2023-11-14 22:13:20",
		"500ms",
		appName + " visualize ",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestRenderToStdoutHasNoSummary(t *testing.T) {
	env := newTestEnv(t, "")
	path := env.writeTrace(t, "trace.json", sampleTrace)

	if err := env.run("render", path, "-f", "svg", "-o", "-"); err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(env.out.String(), "Render complete") {
		t.Error("summary mixed into stdout artifact")
	}
}
