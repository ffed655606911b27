package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/tracegantt/pkg/render"
	"github.com/matzehuels/tracegantt/pkg/timeline"
)

// =============================================================================
// Palette
// =============================================================================

var (
	colorTeal  = lipgloss.Color("36")
	colorGreen = lipgloss.Color("35")
	colorRed   = lipgloss.Color("167")
	colorBlue  = lipgloss.Color("75")
	colorWhite = lipgloss.Color("255")
	colorGray  = lipgloss.Color("245")
	colorDim   = lipgloss.Color("240")
)

var (
	// StyleTitle is the inspector heading.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorTeal)

	// StyleHighlight marks addresses and the selected row's labels.
	StyleHighlight = lipgloss.NewStyle().Foreground(colorTeal)

	// StyleDim is secondary text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleBar draws the selected span's track in the inspector.
	StyleBar = lipgloss.NewStyle().Foreground(colorTeal).Bold(true)

	styleOK      = lipgloss.NewStyle().Foreground(colorGreen)
	styleFail    = lipgloss.NewStyle().Foreground(colorRed)
	styleNote    = lipgloss.NewStyle().Foreground(colorGray)
	styleSpinner = lipgloss.NewStyle().Foreground(colorTeal)
	styleValue   = lipgloss.NewStyle().Foreground(colorWhite)
	styleCommand = lipgloss.NewStyle().Foreground(colorBlue)
	styleKey     = lipgloss.NewStyle().Foreground(colorGray).Width(10)
)

const (
	markOK    = "✓"
	markFail  = "✗"
	markNote  = "›"
	markArrow = "→"
)

// =============================================================================
// Screen
// =============================================================================

// screen prints the human-readable summary of a command. Data written with
// -o - never goes through a screen.
type screen struct {
	w io.Writer
}

func (c *CLI) screen(cmd *cobra.Command) screen { return screen{w: c.out(cmd)} }

func (s screen) line(parts ...string) { fmt.Fprintln(s.w, strings.Join(parts, " ")) }

func (s screen) success(format string, args ...any) {
	s.line(styleOK.Render(markOK), fmt.Sprintf(format, args...))
}

func (s screen) failure(format string, args ...any) {
	s.line(styleFail.Render(markFail), fmt.Sprintf(format, args...))
}

func (s screen) note(format string, args ...any) {
	s.line(styleNote.Render(markNote), fmt.Sprintf(format, args...))
}

func (s screen) detail(format string, args ...any) {
	s.line(" ", StyleDim.Render(fmt.Sprintf(format, args...)))
}

func (s screen) file(path string) {
	s.line(" ", StyleDim.Render(markArrow), styleValue.Render(path))
}

// written lists artifact paths, skipping stdout.
func (s screen) written(paths []string) {
	for _, p := range paths {
		if p != "-" {
			s.file(p)
		}
	}
}

// stats prints "3 spans · fresh". Rows are shown only when they differ from
// spans, which happens for truncated layouts.
func (s screen) stats(spans, rows int, cached bool) {
	var parts []string
	if spans > 0 {
		parts = append(parts, StyleDim.Render(fmt.Sprintf("%d spans", spans)))
	}
	if rows > 0 && rows != spans {
		parts = append(parts, StyleDim.Render(fmt.Sprintf("%d rows", rows)))
	}
	if cached {
		parts = append(parts, styleOK.Render("cached"))
	} else {
		parts = append(parts, styleNote.Render("fresh"))
	}
	s.line(" ", strings.Join(parts, StyleDim.Render(" · ")))
}

// window prints the time domain of a trace and its duration.
func (s screen) window(d timeline.Domain) {
	s.keyValue("Window", render.FormatTimestamp(d.Start)+" "+markArrow+" "+render.FormatTimestamp(d.End))
	s.keyValue("Duration", time.Duration(d.End-d.Start).String())
}

func (s screen) keyValue(key, value string) {
	s.line(" ", styleKey.Render(key), styleValue.Render(value))
}

func (s screen) nextStep(description, cmd string) {
	fmt.Fprintln(s.w)
	s.line(StyleDim.Render(description+":"), styleCommand.Render(cmd))
}
