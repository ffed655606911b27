// Package cli implements the tracegantt command-line interface.
//
// The commands mirror the pipeline stages: fetch a span tree, compute its
// layout, and render the layout to SVG, PNG, PDF, JSON or DOT. The render
// command runs all three at once; serve exposes them over HTTP.
//
// # Commands
//
//   - render: Span tree (or OTLP export) to chart files
//   - layout: Span tree to layout JSON
//   - visualize: Layout JSON to chart files
//   - fetch: Download a span tree from the trace search service
//   - inspect: Browse a trace in the terminal with live tooltips
//   - serve: HTTP server for charts and the trace page
//   - cache: Manage the render cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context so helpers can log without a CLI handle.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger writes leveled, timestamped records ("14:32:01.45 INFO ...") to w.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// stageTimer reports how long a fetch or render took.
type stageTimer struct {
	logger *log.Logger
	start  time.Time
}

func startStage(l *log.Logger) *stageTimer {
	return &stageTimer{logger: l, start: time.Now()}
}

// done logs msg with keyvals and the elapsed time, e.g.
// "Rendered formats=3 elapsed=1.234s".
func (s *stageTimer) done(msg string, keyvals ...any) {
	keyvals = append(keyvals, "elapsed", time.Since(s.start).Round(time.Millisecond))
	s.logger.Info(msg, keyvals...)
}

type loggerKey struct{}

// withLogger attaches l to ctx for helpers that have no CLI handle.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// logFrom returns the logger attached by withLogger, or log.Default().
func logFrom(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
