package usecase

import (
	"context"
	"time"

	"github.com/allisson/parceltrack/internal/metrics"
	"github.com/allisson/parceltrack/internal/tracking/domain"
)

const metricsDomain = "tracking"

// trackingUseCaseWithMetrics decorates TrackingUseCase with metrics instrumentation.
type trackingUseCaseWithMetrics struct {
	next    TrackingUseCase
	metrics metrics.BusinessMetrics
}

// NewTrackingUseCaseWithMetrics wraps a TrackingUseCase with metrics recording.
func NewTrackingUseCaseWithMetrics(useCase TrackingUseCase, m metrics.BusinessMetrics) TrackingUseCase {
	return &trackingUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (t *trackingUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := metrics.StatusSuccess
	if err != nil {
		status = metrics.StatusError
	}

	t.metrics.RecordOperation(ctx, metricsDomain, operation, status)
	t.metrics.RecordDuration(ctx, metricsDomain, operation, time.Since(start), status)
}

// Track records metrics for single lookups.
func (t *trackingUseCaseWithMetrics) Track(ctx context.Context, trackingCode string) (*domain.TrackingInfo, error) {
	start := time.Now()
	info, err := t.next.Track(ctx, trackingCode)
	t.record(ctx, "track", start, err)
	return info, err
}

// TrackBatch records metrics for batch lookups.
func (t *trackingUseCaseWithMetrics) TrackBatch(
	ctx context.Context,
	trackingCodes []string,
) (map[string]*domain.TrackingInfo, error) {
	start := time.Now()
	results, err := t.next.TrackBatch(ctx, trackingCodes)
	t.record(ctx, "track_batch", start, err)
	return results, err
}

// CheckCritical records metrics for critical checks.
func (t *trackingUseCaseWithMetrics) CheckCritical(
	ctx context.Context,
	trackingCodes []string,
) ([]*domain.TrackingInfo, error) {
	start := time.Now()
	critical, err := t.next.CheckCritical(ctx, trackingCodes)
	t.record(ctx, "check_critical", start, err)
	return critical, err
}

// APIStatus records an error status when the carrier is offline.
func (t *trackingUseCaseWithMetrics) APIStatus(ctx context.Context) *domain.APIStatus {
	start := time.Now()
	status := t.next.APIStatus(ctx)

	var err error
	if status.Status != domain.APIStatusOnline {
		err = domain.ErrCarrierUnavailable
	}
	t.record(ctx, "api_status", start, err)
	return status
}

func (t *trackingUseCaseWithMetrics) ListHistory(ctx context.Context, limit int) ([]*domain.HistoryEntry, error) {
	start := time.Now()
	entries, err := t.next.ListHistory(ctx, limit)
	t.record(ctx, "history_list", start, err)
	return entries, err
}

func (t *trackingUseCaseWithMetrics) ClearHistory(ctx context.Context) (int64, error) {
	start := time.Now()
	count, err := t.next.ClearHistory(ctx)
	t.record(ctx, "history_clear", start, err)
	return count, err
}

func (t *trackingUseCaseWithMetrics) CleanHistory(ctx context.Context, days int, dryRun bool) (int64, error) {
	start := time.Now()
	count, err := t.next.CleanHistory(ctx, days, dryRun)
	t.record(ctx, "history_clean", start, err)
	return count, err
}
