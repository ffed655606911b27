package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

// DefaultServiceName is reported when TelemetryOptions.ServiceName is empty.
const DefaultServiceName = "tracegantt"

// TelemetryOptions configures span export over OTLP/HTTP.
type TelemetryOptions struct {
	// Endpoint is host:port of the OTLP/HTTP receiver. Empty disables export.
	Endpoint    string  `json:"endpoint,omitempty" yaml:"endpoint,omitempty" toml:"endpoint"`
	ServiceName string  `json:"service_name,omitempty" yaml:"service_name,omitempty" toml:"service_name"`
	Insecure    bool    `json:"insecure,omitempty" yaml:"insecure,omitempty" toml:"insecure"`
	SampleRatio float64 `json:"sample_ratio,omitempty" yaml:"sample_ratio,omitempty" toml:"sample_ratio"`
}

// Enabled reports whether an endpoint is configured.
func (o TelemetryOptions) Enabled() bool { return o.Endpoint != "" }

// NewTracerProvider creates a batching tracer provider exporting to
// opts.Endpoint. Call Shutdown on the result to flush pending spans.
func NewTracerProvider(ctx context.Context, opts TelemetryOptions) (*sdktrace.TracerProvider, error) {
	if !opts.Enabled() {
		return nil, fmt.Errorf("telemetry endpoint not configured")
	}
	expOpts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(opts.Endpoint)}
	if opts.Insecure {
		expOpts = append(expOpts, otlptracehttp.WithInsecure())
	}
	exporter, err := otlptracehttp.New(ctx, expOpts...)
	if err != nil {
		return nil, fmt.Errorf("create otlp exporter: %w", err)
	}
	return newTracerProvider(sdktrace.WithBatcher(exporter), opts), nil
}

func newTracerProvider(processor sdktrace.TracerProviderOption, opts TelemetryOptions) *sdktrace.TracerProvider {
	name := opts.ServiceName
	if name == "" {
		name = DefaultServiceName
	}
	sampler := sdktrace.AlwaysSample()
	if opts.SampleRatio > 0 && opts.SampleRatio < 1 {
		sampler = sdktrace.ParentBased(sdktrace.TraceIDRatioBased(opts.SampleRatio))
	}
	return sdktrace.NewTracerProvider(
		processor,
		sdktrace.WithSampler(sampler),
		sdktrace.WithResource(resource.NewWithAttributes(semconv.SchemaURL, semconv.ServiceName(name))),
	)
}

// OTelHooks turns hook events into OpenTelemetry spans. Each completed stage
// becomes one span starting at the stage's start time; cache events become
// events on the span found in the context.
type OTelHooks struct {
	tracer trace.Tracer
}

// NewOTelHooks returns hooks recording to tracer.
func NewOTelHooks(tracer trace.Tracer) *OTelHooks {
	return &OTelHooks{tracer: tracer}
}

func (h *OTelHooks) record(ctx context.Context, name string, d time.Duration, err error, attrs ...attribute.KeyValue) {
	end := time.Now()
	_, span := h.tracer.Start(ctx, name,
		trace.WithTimestamp(end.Add(-d)),
		trace.WithAttributes(attrs...))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End(trace.WithTimestamp(end))
}

func (h *OTelHooks) OnFetchStart(context.Context, string, string) {}

func (h *OTelHooks) OnFetchComplete(ctx context.Context, source, traceID string, spanCount int, d time.Duration, err error) {
	h.record(ctx, "fetch", d, err,
		attribute.String("tracegantt.source", source),
		attribute.String("tracegantt.trace_id", traceID),
		attribute.Int("tracegantt.span_count", spanCount))
}

func (h *OTelHooks) OnLayoutStart(context.Context, int) {}

func (h *OTelHooks) OnLayoutComplete(ctx context.Context, rowCount int, d time.Duration, err error) {
	h.record(ctx, "layout", d, err, attribute.Int("tracegantt.row_count", rowCount))
}

func (h *OTelHooks) OnRenderStart(context.Context, []string) {}

func (h *OTelHooks) OnRenderComplete(ctx context.Context, formats []string, d time.Duration, err error) {
	h.record(ctx, "render", d, err, attribute.StringSlice("tracegantt.formats", formats))
}

func (h *OTelHooks) OnCacheHit(ctx context.Context, keyType string) {
	trace.SpanFromContext(ctx).AddEvent("cache.hit", trace.WithAttributes(attribute.String("cache.key_type", keyType)))
}

func (h *OTelHooks) OnCacheMiss(ctx context.Context, keyType string) {
	trace.SpanFromContext(ctx).AddEvent("cache.miss", trace.WithAttributes(attribute.String("cache.key_type", keyType)))
}

func (h *OTelHooks) OnCacheSet(ctx context.Context, keyType string, size int) {
	trace.SpanFromContext(ctx).AddEvent("cache.set", trace.WithAttributes(
		attribute.String("cache.key_type", keyType),
		attribute.Int("cache.size", size)))
}

func (h *OTelHooks) OnRequest(context.Context, string, string) {}

func (h *OTelHooks) OnResponse(ctx context.Context, method, path string, status int, d time.Duration) {
	var err error
	if status >= 500 {
		err = fmt.Errorf("status %d", status)
	}
	h.record(ctx, method+" "+path, d, err,
		attribute.String("http.request.method", method),
		attribute.String("url.path", path),
		attribute.Int("http.response.status_code", status))
}

func (h *OTelHooks) OnError(ctx context.Context, method, path string, err error) {
	trace.SpanFromContext(ctx).RecordError(err, trace.WithAttributes(
		attribute.String("http.request.method", method),
		attribute.String("url.path", path)))
}

var (
	_ PipelineHooks = (*OTelHooks)(nil)
	_ CacheHooks    = (*OTelHooks)(nil)
	_ HTTPHooks     = (*OTelHooks)(nil)
)
