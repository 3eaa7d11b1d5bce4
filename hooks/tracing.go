package hooks

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Skryldev/image-compressor/core"
)

const tracerName = "github.com/Skryldev/image-compressor"

// TracingHook records one OpenTelemetry span per pipeline stage, parented
// to whatever span the caller's context carries.  Spans are emitted when a
// stage finishes, backdated to its start, so the hook keeps no per-call
// state and can be shared by concurrent calls.
type TracingHook struct {
	tracer trace.Tracer
}

// NewTracingHook creates a TracingHook on tp.  A nil tp uses the global
// provider.
func NewTracingHook(tp trace.TracerProvider) *TracingHook {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return &TracingHook{tracer: tp.Tracer(tracerName)}
}

func (h *TracingHook) BeforeStep(context.Context, string, *core.ImageData) {}

func (h *TracingHook) AfterStep(ctx context.Context, stepName string, img *core.ImageData, d time.Duration, err error) {
	end := time.Now()
	_, span := h.tracer.Start(ctx, "imagecompressor."+stepName,
		trace.WithTimestamp(end.Add(-d)),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
	span.SetAttributes(attribute.String("imagecompressor.stage", stepName))
	if img != nil {
		w, ht := img.Dimensions()
		span.SetAttributes(
			attribute.String("image.format", string(img.Format)),
			attribute.Int("image.width", w),
			attribute.Int("image.height", ht),
			attribute.Int("image.input_bytes", len(img.Input)),
		)
		if len(img.Output) > 0 {
			span.SetAttributes(attribute.Int("image.output_bytes", len(img.Output)))
		}
	}
	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.String("error.kind", kindLabel(err)))
		span.SetStatus(codes.Error, err.Error())
	}
	span.End(trace.WithTimestamp(end))
}
