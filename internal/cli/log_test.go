package cli

import (
	"bytes"
	"context"
	"os"
	"regexp"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestNewLoggerFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, LogInfo)

	logger.Info("computed layout", "rows", 3)

	line := buf.String()
	if !regexp.MustCompile(`^\d{2}:\d{2}:\d{2}\.\d{2} INFO computed layout rows=3`).MatchString(line) {
		t.Errorf("log line = %q", line)
	}
}

func TestSetLogLevel(t *testing.T) {
	var buf bytes.Buffer
	c := New(&buf, LogInfo)

	c.Logger.Debug("search source", "endpoint", "http://localhost")
	if buf.Len() != 0 {
		t.Fatalf("debug record written at info level: %q", buf.String())
	}

	c.SetLogLevel(LogDebug)
	c.Logger.Debug("search source", "endpoint", "http://localhost")
	if !strings.Contains(buf.String(), "endpoint=http://localhost") {
		t.Errorf("debug record missing after SetLogLevel: %q", buf.String())
	}
}

func TestStageTimerDone(t *testing.T) {
	var buf bytes.Buffer
	timer := startStage(newLogger(&buf, LogInfo))

	timer.done("Fetched trace", "trace_id", "4bf92f3577b34da6", "spans", 3)

	out := buf.String()
	for _, want := range []string{"Fetched trace", "trace_id=4bf92f3577b34da6", "spans=3", "elapsed="} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q: %q", want, out)
		}
	}
}

func TestRenderLogsTiming(t *testing.T) {
	env := newTestEnv(t, "")
	path := env.writeTrace(t, "trace.json", sampleTrace)

	if err := env.run("render", path, "-f", "svg,json"); err != nil {
		t.Fatalf("render: %v", err)
	}
	logs := env.logs.String()
	for _, want := range []string{"INFO Rendered", "formats=2", "spans=3", "elapsed="} {
		if !strings.Contains(logs, want) {
			t.Errorf("logs missing %q:\n%s", want, logs)
		}
	}
}

func TestRenderToStdoutSkipsTiming(t *testing.T) {
	env := newTestEnv(t, "")
	path := env.writeTrace(t, "trace.json", sampleTrace)

	if err := env.run("render", path, "-f", "json", "-o", "-"); err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(env.logs.String(), "Rendered") {
		t.Errorf("stdout render should not log timing:\n%s", env.logs.String())
	}
}

func TestLogFrom(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, LogInfo)

	if got := logFrom(withLogger(context.Background(), logger)); got != logger {
		t.Error("logFrom did not return the attached logger")
	}
	if got := logFrom(context.Background()); got != log.Default() {
		t.Error("logFrom without a logger should return log.Default()")
	}
}

func TestCacheFallbackWarnsThroughContext(t *testing.T) {
	env := newTestEnv(t, "")
	// A regular file cannot be the cache directory.
	cfg := "[cache]\nbackend = \"file\"\ndir = \"" + env.config + "\"\n"
	if err := os.WriteFile(env.config, []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}
	path := env.writeTrace(t, "trace.json", sampleTrace)

	if err := env.run("render", path); err != nil {
		t.Fatalf("render should continue without cache: %v", err)
	}
	if !strings.Contains(env.logs.String(), "WARN file cache unavailable") {
		t.Errorf("missing fallback warning:\n%s", env.logs.String())
	}
}
