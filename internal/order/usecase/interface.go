// Package usecase implements order management and the transactional application of
// carrier status changes to stored orders.
package usecase

import (
	"context"

	"github.com/allisson/parceltrack/internal/order/domain"
	outboxDomain "github.com/allisson/parceltrack/internal/outbox/domain"
	trackingDomain "github.com/allisson/parceltrack/internal/tracking/domain"
)

// OrderRepository defines order persistence.
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	GetByOrderID(ctx context.Context, orderID string) (*domain.Order, error)
	GetByOrderIDForUpdate(ctx context.Context, orderID string) (*domain.Order, error)
	List(ctx context.Context, offset, limit int) ([]*domain.Order, error)
	Update(ctx context.Context, order *domain.Order) error

	// ListTrackedRefs returns the orders that carry a tracking code.
	ListTrackedRefs(ctx context.Context) ([]trackingDomain.TrackedOrderRef, error)

	// GetForTrackingUpdate locks and returns the orders matching any of the order ids or
	// tracking codes.
	GetForTrackingUpdate(ctx context.Context, orderIDs, trackingCodes []string) ([]*domain.Order, error)

	// UpdateTracking writes only the tracking status columns.
	UpdateTracking(ctx context.Context, order *domain.Order) error
}

// OutboxEventRepository stores notification events in the caller's transaction.
type OutboxEventRepository interface {
	Create(ctx context.Context, event *outboxDomain.OutboxEvent) error
}

// KeywordMatcher classifies statuses against the configured critical keywords.
type KeywordMatcher interface {
	Classify(status string) trackingDomain.Classification
	MatchedKeyword(status string) string
}

// OrderUseCase manages orders and applies reconciliation results to them.
type OrderUseCase interface {
	// Create stores a new order. SaleStatus defaults to pending.
	Create(ctx context.Context, order *domain.Order) error

	// Get returns the order with the given order id.
	Get(ctx context.Context, orderID string) (*domain.Order, error)

	// List returns orders, newest first.
	List(ctx context.Context, offset, limit int) ([]*domain.Order, error)

	// Update applies a patch to an order under a row lock.
	Update(ctx context.Context, orderID string, patch domain.OrderPatch) (*domain.Order, error)

	// ListTrackedRefs returns the reconciler input for every tracked order.
	ListTrackedRefs(ctx context.Context) ([]trackingDomain.TrackedOrderRef, error)

	// ApplyStatusChanges merges changes into the stored orders and queues one notification per
	// applied change, all in one transaction. It returns the number of applied changes.
	ApplyStatusChanges(ctx context.Context, changes []trackingDomain.StatusChangeResult) (int, error)

	// ReclassifyCritical recomputes the critical flag of every order with a stored status
	// and writes the ones that disagree with the current keywords. No notification is
	// queued. It returns the number of corrected orders.
	ReclassifyCritical(ctx context.Context) (int, error)
}
