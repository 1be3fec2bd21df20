package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	apperrors "github.com/allisson/parceltrack/internal/errors"
	"github.com/allisson/parceltrack/internal/metrics"
	"github.com/allisson/parceltrack/internal/tracking/domain"
	"github.com/allisson/parceltrack/internal/tracking/service"
)

// ReconcilerConfig bounds the carrier traffic of a single pass.
type ReconcilerConfig struct {
	// MaxConcurrency caps in-flight carrier calls. Zero means unbounded.
	MaxConcurrency int
	// CallTimeout bounds every carrier call. Zero means no per-call timeout.
	CallTimeout time.Duration
}

// BatchReconciler fans out one carrier lookup per tracked order and reports the
// orders whose latest carrier status differs from the stored one.
type BatchReconciler struct {
	carrier    service.CarrierClient
	classifier *domain.Classifier
	config     ReconcilerConfig
	metrics    metrics.TrackingMetrics
	logger     *slog.Logger
	now        func() time.Time
}

// NewBatchReconciler creates a BatchReconciler.
func NewBatchReconciler(
	carrier service.CarrierClient,
	classifier *domain.Classifier,
	config ReconcilerConfig,
	trackingMetrics metrics.TrackingMetrics,
	logger *slog.Logger,
) *BatchReconciler {
	return &BatchReconciler{
		carrier:    carrier,
		classifier: classifier,
		config:     config,
		metrics:    trackingMetrics,
		logger:     logger,
		now:        time.Now,
	}
}

// Reconcile returns one result per changed order, in input order.
//
// Refs with a blank tracking code are ignored. A failed or timed out lookup is logged
// and skipped without affecting the others, so a full carrier outage yields an empty
// result and a nil error. An error is returned only when ctx is done.
func (r *BatchReconciler) Reconcile(
	ctx context.Context,
	refs []domain.TrackedOrderRef,
) ([]domain.StatusChangeResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pending := make([]domain.TrackedOrderRef, 0, len(refs))
	for _, ref := range refs {
		ref.TrackingCode = strings.TrimSpace(ref.TrackingCode)
		if ref.TrackingCode != "" {
			pending = append(pending, ref)
		}
	}
	if len(pending) == 0 {
		return []domain.StatusChangeResult{}, nil
	}

	slots := make([]*domain.StatusChangeResult, len(pending))
	var failures atomic.Int64

	// Lookups never return an error to the group so one failure cannot cancel its siblings.
	var group errgroup.Group
	if r.config.MaxConcurrency > 0 {
		group.SetLimit(r.config.MaxConcurrency)
	}

	for i, ref := range pending {
		group.Go(func() error {
			change, err := r.reconcileOne(ctx, ref)
			if err != nil {
				failures.Add(1)
				r.logger.Warn("tracking lookup failed",
					slog.String("order_id", ref.OrderID),
					slog.String("tracking_code", ref.TrackingCode),
					slog.Any("error", err),
				)
				return nil
			}
			slots[i] = change
			return nil
		})
	}
	_ = group.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	changes := make([]domain.StatusChangeResult, 0, len(pending))
	critical := 0
	for _, change := range slots {
		if change == nil {
			continue
		}
		if change.IsCritical {
			critical++
		}
		changes = append(changes, *change)
	}

	r.metrics.RecordStatusChanges(ctx, len(changes), critical)

	failed := int(failures.Load())
	attrs := []any{
		slog.Int("orders", len(pending)),
		slog.Int("changes", len(changes)),
		slog.Int("critical", critical),
		slog.Int("failures", failed),
	}
	if failed == len(pending) {
		r.logger.Warn("reconciliation produced no data, every carrier lookup failed", attrs...)
	} else {
		r.logger.Info("reconciliation completed", attrs...)
	}

	return changes, nil
}

// reconcileOne returns nil, nil when the order has no events or did not change.
func (r *BatchReconciler) reconcileOne(
	ctx context.Context,
	ref domain.TrackedOrderRef,
) (*domain.StatusChangeResult, error) {
	callCtx := ctx
	if r.config.CallTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, r.config.CallTimeout)
		defer cancel()
	}

	start := time.Now()
	info, err := r.carrier.Track(callCtx, ref.TrackingCode)
	r.metrics.RecordCarrierRequest(ctx, carrierOutcome(err), time.Since(start))
	if err != nil {
		return nil, err
	}

	if len(info.Events) == 0 {
		return nil, nil
	}

	latest := info.Events[0]
	if latest.Status == ref.LastKnownStatus {
		return nil, nil
	}

	classification := r.classifier.Classify(latest.Status)
	return &domain.StatusChangeResult{
		OrderID:        ref.OrderID,
		TrackingCode:   ref.TrackingCode,
		PreviousStatus: ref.LastKnownStatus,
		NewStatus:      latest.Status,
		IsCritical:     classification.IsCritical,
		IsDelivered:    classification.IsDelivered,
		Location:       latest.Location,
		Timestamp:      r.now().UTC(),
	}, nil
}

func carrierOutcome(err error) string {
	switch {
	case err == nil:
		return metrics.CarrierOutcomeSuccess
	case errors.Is(err, context.DeadlineExceeded):
		return metrics.CarrierOutcomeTimeout
	case apperrors.Is(err, apperrors.ErrNotFound):
		return metrics.CarrierOutcomeNotFound
	default:
		return metrics.CarrierOutcomeError
	}
}
