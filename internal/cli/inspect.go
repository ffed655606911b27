package cli

import (
	"fmt"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/tracegantt/pkg/pipeline"
	"github.com/matzehuels/tracegantt/pkg/render"
	"github.com/matzehuels/tracegantt/pkg/render/headless"
	"github.com/matzehuels/tracegantt/pkg/timeline"
)

// trackWidth is the number of terminal cells of the bar column.
const trackWidth = 40

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorTeal)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	tooltipStyle      = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorDim).
				Padding(0, 1)
)

// =============================================================================
// InspectModel - Interactive span browser
// =============================================================================

// InspectModel is the bubbletea model of the inspect command. Moving the
// cursor hovers the bar of the selected row on a headless surface, so the
// tooltip shown is exactly the one the SVG would show.
type InspectModel struct {
	Rec    *headless.Recorder
	Plot   timeline.Range
	Cursor int
	Offset int
	Height int
}

// NewInspectModel creates a model over a recorder that has been drawn on.
func NewInspectModel(rec *headless.Recorder, plot timeline.Range) InspectModel {
	m := InspectModel{Rec: rec, Plot: plot, Height: 15}
	m.hover()
	return m
}

func (m InspectModel) Init() tea.Cmd {
	return nil
}

func (m InspectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.Rec.Leave()
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Rec.Bars)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "home", "g":
			m.Cursor, m.Offset = 0, 0
		case "end", "G":
			m.Cursor = max(len(m.Rec.Bars)-1, 0)
			m.Offset = max(m.Cursor-m.Height+1, 0)
		}
		m.hover()
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 14
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

// hover moves the simulated pointer to the middle of the selected bar.
func (m InspectModel) hover() {
	if m.Cursor >= len(m.Rec.Bars) {
		return
	}
	b := m.Rec.Bars[m.Cursor]
	m.Rec.PointerAt(b.X+b.Width/2, b.Y+b.Height/2)
}

func (m InspectModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Trace Timeline"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  g/G first/last  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Rec.Bars))
	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		bar := m.Rec.Bars[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		name := strings.Repeat("  ", bar.Span.Depth) + bar.Span.ServiceName
		rows = append(rows, []string{cursor, name, bar.Span.OperationName, track(bar, m.Plot, trackWidth)})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Service", "Operation", "Timeline").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if m.Offset+row == m.Cursor {
				if col == 3 {
					return StyleBar
				}
				return listSelectedStyle
			}
			if col == 3 {
				return StyleHighlight
			}
			return listNormalStyle
		})

	b.WriteString(t.Render())
	b.WriteString("\n")
	if m.Rec.Tip.Visible {
		b.WriteString(tooltipStyle.Render(strings.Join(m.Rec.Tip.Lines, "\n")))
		b.WriteString("\n")
	}
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", min(m.Cursor+1, len(m.Rec.Bars)), len(m.Rec.Bars))))

	return b.String()
}

// track draws a bar as a run of block characters within width cells that
// span the plot range.
func track(b render.Bar, plot timeline.Range, width int) string {
	span := plot.Max - plot.Min
	if span <= 0 || width <= 0 {
		return ""
	}
	start := int((b.X - plot.Min) / span * float64(width))
	n := int(b.Width / span * float64(width))
	start = min(max(start, 0), width-1)
	n = min(max(n, 1), width-start)
	return strings.Repeat("·", start) + strings.Repeat("█", n) + strings.Repeat("·", width-start-n)
}

// =============================================================================
// Command
// =============================================================================

// inspectCommand creates the inspect command.
func (c *CLI) inspectCommand() *cobra.Command {
	var (
		f       chartFlags
		otlp    bool
		traceID string
		dump    bool
	)

	cmd := &cobra.Command{
		Use:   "inspect [trace.json]",
		Short: "Browse a trace in the terminal",
		Long: `Browse a trace in the terminal.

Each row shows a span and its bar on the time axis. Moving the selection
hovers the bar and shows its tooltip: span ID, service and operation, start
and end time and duration in nanoseconds.

When stdout is not a terminal, or with --dump, the tooltip of every span is
printed instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.resolve(cmd, &f)
			if err != nil {
				return err
			}
			src, err := fileSource(args[0], otlp)
			if err != nil {
				return err
			}
			opts.Source = src
			opts.TraceID = traceID
			return c.runInspect(cmd, opts, f, dump)
		},
	}

	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
	cmd.Flags().Float64Var(&f.opts.Width, "width", pipeline.DefaultWidth, "chart width in pixels")
	f.registerLayout(cmd)
	cmd.Flags().BoolVar(&otlp, "otlp", false, "read the input as an OTLP/JSON trace export")
	cmd.Flags().StringVar(&traceID, "trace-id", "", "trace to select from the input")
	cmd.Flags().BoolVar(&dump, "dump", false, "print every tooltip instead of starting the browser")

	return cmd
}

func (c *CLI) runInspect(cmd *cobra.Command, opts pipeline.Options, f chartFlags, dump bool) error {
	ctx := cmd.Context()
	runner, err := c.newRunner(ctx, f.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	root, _, err := runner.FetchWithCacheInfo(ctx, opts)
	if err != nil {
		return err
	}
	layout, err := runner.GenerateLayout(ctx, root, opts)
	if err != nil {
		return err
	}

	rec, plot, err := drawHeadless(layout, opts)
	if err != nil {
		return err
	}

	out := c.out(cmd)
	if dump || !isTerminal(out) {
		c.screen(cmd).window(layout.Domain)
		fmt.Fprintln(out)
		return dumpTooltips(out, rec)
	}

	_, err = tea.NewProgram(NewInspectModel(rec, plot), tea.WithContext(ctx), tea.WithOutput(out)).Run()
	return err
}

// drawHeadless renders layout onto a recorder with the chart geometry of
// opts.
func drawHeadless(l timeline.Layout, opts pipeline.Options) (*headless.Recorder, timeline.Range, error) {
	width := opts.Width
	if width <= 0 {
		width = l.Width
	}
	ropts := []render.Option{}
	if opts.LabelGutter > 0 {
		ropts = append(ropts, render.WithLabelGutter(opts.LabelGutter))
	}
	if opts.RightMargin > 0 {
		ropts = append(ropts, render.WithRightMargin(opts.RightMargin))
	}
	rec := headless.New()
	if err := render.Render(rec, l.Result(), width, ropts...); err != nil {
		return nil, timeline.Range{}, err
	}
	return rec, render.PlotRange(width, ropts...), nil
}

// dumpTooltips hovers every bar in turn and prints the tooltip shown.
func dumpTooltips(w io.Writer, rec *headless.Recorder) error {
	for i, b := range rec.Bars {
		if err := rec.Enter(b.ID); err != nil {
			return err
		}
		if i > 0 {
			fmt.Fprintln(w)
		}
		for _, line := range rec.Tip.Lines {
			fmt.Fprintln(w, line)
		}
	}
	rec.Leave()
	return nil
}
