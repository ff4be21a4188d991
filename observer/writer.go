package observer

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/codes"
	otellog "go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/stratalab/strata"
)

// ObservedWriter wraps a strata.IndexWriter with OTEL instrumentation.
type ObservedWriter struct {
	inner   strata.IndexWriter
	inst    *Instruments
	backend string
}

// WrapWriter returns an instrumented index writer. backend names the
// underlying store ("postgres", "sqlite", "qdrant", "memory").
func WrapWriter(inner strata.IndexWriter, backend string, inst *Instruments) *ObservedWriter {
	return &ObservedWriter{inner: inner, inst: inst, backend: backend}
}

func (o *ObservedWriter) Upsert(ctx context.Context, records []strata.IndexRecord) ([]strata.UpsertResult, error) {
	ctx, span := o.inst.Tracer.Start(ctx, "index.upsert", trace.WithAttributes(
		AttrIndexBackend.String(o.backend),
		AttrRecordCount.Int(len(records)),
	))
	defer span.End()
	start := time.Now()

	results, err := o.inner.Upsert(ctx, records)

	durationMs := float64(time.Since(start).Milliseconds())
	failures := 0
	for _, r := range results {
		if r.Err != nil {
			failures++
		}
	}
	status := "ok"
	if err != nil {
		status = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.SetAttributes(AttrFailureCount.Int(failures))

	attrs := metric.WithAttributes(AttrIndexBackend.String(o.backend))
	o.inst.IndexWrites.Add(ctx, int64(len(records)-failures), attrs)
	if failures > 0 {
		o.inst.IndexFailures.Add(ctx, int64(failures), attrs)
	}
	o.inst.WriteDuration.Record(ctx, durationMs, attrs)

	var rec otellog.Record
	rec.SetSeverity(otellog.SeverityInfo)
	rec.SetBody(otellog.StringValue("index upsert completed"))
	rec.AddAttributes(
		otellog.String("index.backend", o.backend),
		otellog.Int("index.record_count", len(records)),
		otellog.Int("index.failure_count", failures),
		otellog.Float64("index.duration_ms", durationMs),
		otellog.String("status", status),
	)
	o.inst.Logger.Emit(ctx, rec)

	return results, err
}
