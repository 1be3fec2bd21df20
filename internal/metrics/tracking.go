package metrics

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Carrier call outcomes.
const (
	CarrierOutcomeSuccess  = "success"
	CarrierOutcomeNotFound = "not_found"
	CarrierOutcomeTimeout  = "timeout"
	CarrierOutcomeError    = "error"
)

// Reconciliation pass outcomes.
const (
	PassOutcomeCompleted = "completed"
	PassOutcomeFailed    = "failed"
	PassOutcomeSkipped   = "skipped"
	PassOutcomeDiscarded = "discarded"
)

// TrackingMetrics records carrier traffic and reconciliation pass results.
type TrackingMetrics interface {
	// RecordCarrierRequest records one carrier lookup and how long it took.
	RecordCarrierRequest(ctx context.Context, outcome string, duration time.Duration)

	// RecordStatusChanges records the changes produced by a pass.
	RecordStatusChanges(ctx context.Context, changes, critical int)

	// RecordPass records a scheduler pass. Trigger is "schedule" or "manual".
	RecordPass(ctx context.Context, trigger, outcome string, duration time.Duration)
}

type trackingMetrics struct {
	carrier       instrumentPair
	passes        instrumentPair
	changeCounter metric.Int64Counter
}

// NewTrackingMetrics creates TrackingMetrics on the given meter provider.
func NewTrackingMetrics(meterProvider metric.MeterProvider, namespace string) (TrackingMetrics, error) {
	meter := meterProvider.Meter(namespace)

	carrier, err := newInstrumentPair(meter, namespace, "carrier_requests", "carrier tracking requests", "{request}")
	if err != nil {
		return nil, err
	}

	passes, err := newInstrumentPair(meter, namespace, "reconcile_passes", "reconciliation passes", "{pass}")
	if err != nil {
		return nil, err
	}

	changeCounter, err := meter.Int64Counter(
		fmt.Sprintf("%s_status_changes_total", namespace),
		metric.WithDescription("Total number of detected tracking status changes"),
		metric.WithUnit("{change}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create status change counter: %w", err)
	}

	return &trackingMetrics{carrier: carrier, passes: passes, changeCounter: changeCounter}, nil
}

func (m *trackingMetrics) RecordCarrierRequest(ctx context.Context, outcome string, duration time.Duration) {
	attrs := metric.WithAttributes(attribute.String("outcome", outcome))
	m.carrier.counter.Add(ctx, 1, attrs)
	m.carrier.seconds.Record(ctx, duration.Seconds(), attrs)
}

func (m *trackingMetrics) RecordStatusChanges(ctx context.Context, changes, critical int) {
	if regular := changes - critical; regular > 0 {
		m.changeCounter.Add(ctx, int64(regular), metric.WithAttributes(attribute.Bool("critical", false)))
	}
	if critical > 0 {
		m.changeCounter.Add(ctx, int64(critical), metric.WithAttributes(attribute.Bool("critical", true)))
	}
}

func (m *trackingMetrics) RecordPass(ctx context.Context, trigger, outcome string, duration time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("trigger", trigger),
		attribute.String("outcome", outcome),
	)
	m.passes.counter.Add(ctx, 1, attrs)
	if outcome != PassOutcomeSkipped {
		m.passes.seconds.Record(ctx, duration.Seconds(), attrs)
	}
}

// NoOpTrackingMetrics discards everything. Used when metrics are disabled and in tests.
type NoOpTrackingMetrics struct{}

// NewNoOpTrackingMetrics creates a no-op TrackingMetrics implementation.
func NewNoOpTrackingMetrics() TrackingMetrics {
	return &NoOpTrackingMetrics{}
}

func (n *NoOpTrackingMetrics) RecordCarrierRequest(context.Context, string, time.Duration) {}

func (n *NoOpTrackingMetrics) RecordStatusChanges(context.Context, int, int) {}

func (n *NoOpTrackingMetrics) RecordPass(context.Context, string, string, time.Duration) {}
