// Package usecase implements tracking reconciliation, scheduled polling and on-demand lookups.
package usecase

import (
	"context"
	"time"

	"github.com/allisson/parceltrack/internal/tracking/domain"
)

// HistoryRepository persists the lookup history.
type HistoryRepository interface {
	Create(ctx context.Context, entry *domain.HistoryEntry) error
	List(ctx context.Context, limit int) ([]*domain.HistoryEntry, error)
	DeleteAll(ctx context.Context) (int64, error)
	DeleteOlderThan(ctx context.Context, olderThan time.Time, dryRun bool) (int64, error)
}

// Reconciler compares carrier statuses against the statuses stored for a batch of orders.
type Reconciler interface {
	Reconcile(ctx context.Context, refs []domain.TrackedOrderRef) ([]domain.StatusChangeResult, error)
}

// BatchSource loads the current tracked orders at the start of every pass.
type BatchSource func(ctx context.Context) ([]domain.TrackedOrderRef, error)

// ResultSink receives the changes of a pass that was not cancelled.
type ResultSink func(ctx context.Context, changes []domain.StatusChangeResult) error

// TrackingUseCase serves on-demand lookups and the lookup history.
type TrackingUseCase interface {
	// Track looks up one code and records the lookup in the history.
	Track(ctx context.Context, trackingCode string) (*domain.TrackingInfo, error)

	// TrackBatch looks up several codes. Per-code failures are reported in TrackingInfo.Error.
	TrackBatch(ctx context.Context, trackingCodes []string) (map[string]*domain.TrackingInfo, error)

	// CheckCritical returns the lookups whose latest status is critical.
	CheckCritical(ctx context.Context, trackingCodes []string) ([]*domain.TrackingInfo, error)

	// APIStatus probes the carrier.
	APIStatus(ctx context.Context) *domain.APIStatus

	// ListHistory returns the most recent lookups, newest first.
	ListHistory(ctx context.Context, limit int) ([]*domain.HistoryEntry, error)

	// ClearHistory deletes the whole lookup history.
	ClearHistory(ctx context.Context) (int64, error)

	// CleanHistory deletes lookups older than days. dryRun only counts them.
	CleanHistory(ctx context.Context, days int, dryRun bool) (int64, error)
}
