package usecase

import (
	"context"
	"time"

	"github.com/allisson/parceltrack/internal/metrics"
	"github.com/allisson/parceltrack/internal/order/domain"
	trackingDomain "github.com/allisson/parceltrack/internal/tracking/domain"
)

// orderUseCaseWithMetrics decorates OrderUseCase with metrics instrumentation.
type orderUseCaseWithMetrics struct {
	next    OrderUseCase
	metrics metrics.BusinessMetrics
}

// NewOrderUseCaseWithMetrics wraps an OrderUseCase with metrics recording.
func NewOrderUseCaseWithMetrics(useCase OrderUseCase, m metrics.BusinessMetrics) OrderUseCase {
	return &orderUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (o *orderUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := metrics.StatusSuccess
	if err != nil {
		status = metrics.StatusError
	}

	o.metrics.RecordOperation(ctx, "orders", operation, status)
	o.metrics.RecordDuration(ctx, "orders", operation, time.Since(start), status)
}

func (o *orderUseCaseWithMetrics) Create(ctx context.Context, order *domain.Order) error {
	start := time.Now()
	err := o.next.Create(ctx, order)
	o.record(ctx, "order_create", start, err)
	return err
}

func (o *orderUseCaseWithMetrics) Get(ctx context.Context, orderID string) (*domain.Order, error) {
	start := time.Now()
	order, err := o.next.Get(ctx, orderID)
	o.record(ctx, "order_get", start, err)
	return order, err
}

func (o *orderUseCaseWithMetrics) List(ctx context.Context, offset, limit int) ([]*domain.Order, error) {
	start := time.Now()
	orders, err := o.next.List(ctx, offset, limit)
	o.record(ctx, "order_list", start, err)
	return orders, err
}

func (o *orderUseCaseWithMetrics) Update(
	ctx context.Context,
	orderID string,
	patch domain.OrderPatch,
) (*domain.Order, error) {
	start := time.Now()
	order, err := o.next.Update(ctx, orderID, patch)
	o.record(ctx, "order_update", start, err)
	return order, err
}

func (o *orderUseCaseWithMetrics) ListTrackedRefs(ctx context.Context) ([]trackingDomain.TrackedOrderRef, error) {
	start := time.Now()
	refs, err := o.next.ListTrackedRefs(ctx)
	o.record(ctx, "order_list_tracked", start, err)
	return refs, err
}

func (o *orderUseCaseWithMetrics) ApplyStatusChanges(
	ctx context.Context,
	changes []trackingDomain.StatusChangeResult,
) (int, error) {
	start := time.Now()
	applied, err := o.next.ApplyStatusChanges(ctx, changes)
	o.record(ctx, "order_apply_status_changes", start, err)
	return applied, err
}

func (o *orderUseCaseWithMetrics) ReclassifyCritical(ctx context.Context) (int, error) {
	start := time.Now()
	corrected, err := o.next.ReclassifyCritical(ctx)
	o.record(ctx, "order_reclassify_critical", start, err)
	return corrected, err
}
