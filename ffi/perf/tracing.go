package perf

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/obinexus/libpolycall/ffi/perf"

// Tracer wraps an OTel tracer with the span conventions dispatch calls
// follow: one span per Call, tagged with function name and source
// language, marked errored on failure.
type Tracer struct {
	tracer trace.Tracer
}

// NewTracer returns a Tracer backed by the global OTel tracer provider.
func NewTracer() *Tracer {
	return &Tracer{tracer: otel.Tracer(tracerName)}
}

// StartCall begins a span for a dispatch call. The caller must call End
// on the returned CallSpan when the call completes.
func (t *Tracer) StartCall(ctx context.Context, functionName, sourceLanguage, targetLanguage string) (context.Context, *CallSpan) {
	ctx, span := t.tracer.Start(ctx, "ffi.call",
		trace.WithAttributes(
			attribute.String("ffi.function", functionName),
			attribute.String("ffi.source_language", sourceLanguage),
			attribute.String("ffi.target_language", targetLanguage),
		),
	)
	return ctx, &CallSpan{span: span}
}

// CallSpan wraps an in-flight span for one dispatch call.
type CallSpan struct {
	span trace.Span
}

// End closes the span, marking it errored if err is non-nil.
func (c *CallSpan) End(err error) {
	if err != nil {
		c.span.RecordError(err)
		c.span.SetStatus(codes.Error, err.Error())
	} else {
		c.span.SetStatus(codes.Ok, "")
	}
	c.span.End()
}

// SetCacheHit annotates the span with whether the call was served from
// the result cache.
func (c *CallSpan) SetCacheHit(hit bool) {
	c.span.SetAttributes(attribute.Bool("ffi.cache_hit", hit))
}
