// Package styles defines the visual themes of SVG timelines.
//
// A [Style] writes the SVG fragments of one chart element at a time. The
// sink decides what is drawn and in which order; the style only decides how
// it looks. Two themes ship with tracegantt, [Light] and [Dark], matching the
// theme toggle of the web page.
package styles

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"

	errs "github.com/matzehuels/tracegantt/pkg/errors"
	"github.com/matzehuels/tracegantt/pkg/render"
)

// Theme names.
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// Style controls how timeline elements are drawn.
type Style interface {
	// Name returns the theme name stored in the theme cookie.
	Name() string
	// RenderDefs writes the <style> block and any <defs>.
	RenderDefs(buf *bytes.Buffer, c render.Canvas)
	// RenderTick writes a grid line and its time label.
	RenderTick(buf *bytes.Buffer, t render.Tick)
	// RenderLabel writes a service name in the label gutter.
	RenderLabel(buf *bytes.Buffer, l render.Label)
	// RenderBar writes a span bar. The tooltip lines go in data attributes.
	RenderBar(buf *bytes.Buffer, b render.Bar)
	// RenderTooltip writes the hidden tooltip element.
	RenderTooltip(buf *bytes.Buffer)
}

// Palette is a flat-color Style.
type Palette struct {
	ThemeName  string
	Background string
	Bar        string
	BarHover   string
	Grid       string
	Text       string
	Muted      string
	TipFill    string
	TipBorder  string
	TipText    string
}

// Light is the default theme: steel-blue bars on white.
func Light() Palette {
	return Palette{
		ThemeName:  ThemeLight,
		Background: "#ffffff",
		Bar:        "steelblue",
		BarHover:   "#2b5d87",
		Grid:       "#ccc",
		Text:       "#222",
		Muted:      "gray",
		TipFill:    "#fff",
		TipBorder:  "#ddd",
		TipText:    "#222",
	}
}

// Dark mirrors Light for dark backgrounds.
func Dark() Palette {
	return Palette{
		ThemeName:  ThemeDark,
		Background: "#1e1f24",
		Bar:        "#5b9bd5",
		BarHover:   "#8cbbe6",
		Grid:       "#444",
		Text:       "#e6e6e6",
		Muted:      "#999",
		TipFill:    "#2a2c33",
		TipBorder:  "#555",
		TipText:    "#e6e6e6",
	}
}

// ByName returns the theme with the given name. The empty name selects
// Light.
func ByName(name string) (Style, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", ThemeLight:
		return Light(), nil
	case ThemeDark:
		return Dark(), nil
	}
	return nil, errs.New(errs.ErrCodeInvalidTheme, "unknown theme %q (want %s or %s)", name, ThemeLight, ThemeDark)
}

// Names lists the available themes.
func Names() []string { return []string{ThemeLight, ThemeDark} }

func (p Palette) Name() string { return p.ThemeName }

func (p Palette) RenderDefs(buf *bytes.Buffer, c render.Canvas) {
	fmt.Fprintf(buf, `  <rect class="background" x="0" y="0" width="%.2f" height="%.2f" fill="%s"/>`+"\n",
		c.Width, c.Height, p.Background)
	fmt.Fprintf(buf, `  <style>
    .time-tick { stroke: %s; stroke-width: 1; shape-rendering: crispEdges; }
    .time-label { fill: %s; font-size: 15px; text-anchor: middle; }
    .span-label { fill: %s; font-size: 15px; }
    .span-label tspan { fill: %s; font-size: 10px; }
    .span-bar { fill: %s; cursor: default; }
    .span-bar:hover { fill: %s; cursor: pointer; }
    .tooltip rect { fill: %s; stroke: %s; rx: 3px; }
    .tooltip text { fill: %s; font-size: 12px; }
  </style>
`, p.Grid, p.Text, p.Text, p.Muted, p.Bar, p.BarHover, p.TipFill, p.TipBorder, p.TipText)
}

func (p Palette) RenderTick(buf *bytes.Buffer, t render.Tick) {
	fmt.Fprintf(buf, `  <line class="time-tick" x1="%.2f" x2="%.2f" y1="%.2f" y2="%.2f"/>`+"\n", t.X, t.X, t.Y1, t.Y2)
	fmt.Fprintf(buf, `  <text class="time-label" x="%.2f" y="%.2f">%s</text>`+"\n", t.X, t.Y1, EscapeXML(t.Label))
}

func (p Palette) RenderLabel(buf *bytes.Buffer, l render.Label) {
	fmt.Fprintf(buf, `  <text class="span-label" x="%.2f" y="%.2f">%s`, l.X, l.Y, EscapeXML(l.Text))
	if l.ChildCount > 0 {
		fmt.Fprintf(buf, `<tspan dx="5">(%d)</tspan>`, l.ChildCount)
	}
	buf.WriteString("</text>\n")
}

func (p Palette) RenderBar(buf *bytes.Buffer, b render.Bar) {
	fmt.Fprintf(buf, `  <rect id="%s" class="span-bar" x="%.2f" y="%.2f" width="%.2f" height="%.2f" data-span="%s" data-tooltip="%s"/>`+"\n",
		EscapeXML(b.ID), b.X, b.Y, b.Width, b.Height, EscapeXML(b.Span.SpanID), EscapeXML(strings.Join(b.Tooltip, "\n")))
}

func (p Palette) RenderTooltip(buf *bytes.Buffer) {
	buf.WriteString(`  <g id="tooltip" class="tooltip" visibility="hidden" pointer-events="none"><rect x="0" y="0" width="10" height="10"/><text x="5" y="0"></text></g>` + "\n")
}

// EscapeXML escapes s for use in SVG text and attribute values. Newlines are
// kept as character references so they survive attribute normalization.
func EscapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
