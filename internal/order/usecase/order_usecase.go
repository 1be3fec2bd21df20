package usecase

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/parceltrack/internal/database"
	apperrors "github.com/allisson/parceltrack/internal/errors"
	"github.com/allisson/parceltrack/internal/order/domain"
	outboxDomain "github.com/allisson/parceltrack/internal/outbox/domain"
	trackingDomain "github.com/allisson/parceltrack/internal/tracking/domain"
)

type orderUseCase struct {
	txManager  database.TxManager
	orderRepo  OrderRepository
	outboxRepo OutboxEventRepository
	keywords   KeywordMatcher
	logger     *slog.Logger
	now        func() time.Time
}

// NewOrderUseCase creates a new OrderUseCase.
func NewOrderUseCase(
	txManager database.TxManager,
	orderRepo OrderRepository,
	outboxRepo OutboxEventRepository,
	keywords KeywordMatcher,
	logger *slog.Logger,
) OrderUseCase {
	return &orderUseCase{
		txManager:  txManager,
		orderRepo:  orderRepo,
		outboxRepo: outboxRepo,
		keywords:   keywords,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (o *orderUseCase) Create(ctx context.Context, order *domain.Order) error {
	now := o.now()
	order.ID = uuid.Must(uuid.NewV7())
	order.OrderID = strings.TrimSpace(order.OrderID)
	order.TrackingCode = strings.TrimSpace(order.TrackingCode)
	if order.SaleStatus == "" {
		order.SaleStatus = domain.SaleStatusPending
	}
	order.TrackingStatus = ""
	order.TrackingCritical = false
	order.TrackingUpdatedAt = nil
	order.CreatedAt = now
	order.UpdatedAt = now

	if err := o.orderRepo.Create(ctx, order); err != nil {
		return err
	}

	o.logger.Info("order created",
		slog.String("order_id", order.OrderID),
		slog.Bool("tracked", order.IsTracked()),
	)
	return nil
}

func (o *orderUseCase) Get(ctx context.Context, orderID string) (*domain.Order, error) {
	return o.orderRepo.GetByOrderID(ctx, orderID)
}

func (o *orderUseCase) List(ctx context.Context, offset, limit int) ([]*domain.Order, error) {
	return o.orderRepo.List(ctx, offset, limit)
}

func (o *orderUseCase) Update(
	ctx context.Context,
	orderID string,
	patch domain.OrderPatch,
) (*domain.Order, error) {
	var updated *domain.Order

	err := o.txManager.WithTx(ctx, func(ctx context.Context) error {
		order, err := o.orderRepo.GetByOrderIDForUpdate(ctx, orderID)
		if err != nil {
			return err
		}

		patch.Apply(order, o.now())

		if err := o.orderRepo.Update(ctx, order); err != nil {
			return err
		}

		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

func (o *orderUseCase) ListTrackedRefs(ctx context.Context) ([]trackingDomain.TrackedOrderRef, error) {
	return o.orderRepo.ListTrackedRefs(ctx)
}

func (o *orderUseCase) ApplyStatusChanges(
	ctx context.Context,
	changes []trackingDomain.StatusChangeResult,
) (int, error) {
	if len(changes) == 0 {
		return 0, nil
	}

	orderIDs := make([]string, 0, len(changes))
	trackingCodes := make([]string, 0, len(changes))
	for _, change := range changes {
		orderIDs = append(orderIDs, change.OrderID)
		trackingCodes = append(trackingCodes, change.TrackingCode)
	}

	applied := 0
	err := o.txManager.WithTx(ctx, func(ctx context.Context) error {
		current, err := o.orderRepo.GetForTrackingUpdate(ctx, orderIDs, trackingCodes)
		if err != nil {
			return err
		}

		result := domain.MergeDetailed(current, o.dropStale(current, changes))
		for _, dropped := range result.Dropped {
			o.logger.Debug("dropping status change for unknown order",
				slog.String("order_id", dropped.OrderID),
				slog.String("tracking_code", dropped.TrackingCode),
			)
		}

		written := make(map[int]bool, len(result.Applied))
		for _, change := range result.Applied {
			if written[change.Index] {
				continue
			}
			if err := o.orderRepo.UpdateTracking(ctx, result.Orders[change.Index]); err != nil {
				return err
			}
			written[change.Index] = true
		}

		for _, change := range result.Applied {
			event, err := o.notificationEvent(result.Orders[change.Index], change.Change)
			if err != nil {
				return err
			}
			if err := o.outboxRepo.Create(ctx, event); err != nil {
				return err
			}
		}

		applied = len(result.Applied)
		return nil
	})
	if err != nil {
		return 0, err
	}

	o.logger.Info("applied tracking status changes",
		slog.Int("received", len(changes)),
		slog.Int("applied", applied),
	)
	return applied, nil
}

func (o *orderUseCase) ReclassifyCritical(ctx context.Context) (int, error) {
	refs, err := o.orderRepo.ListTrackedRefs(ctx)
	if err != nil {
		return 0, err
	}

	orderIDs := make([]string, 0, len(refs))
	trackingCodes := make([]string, 0, len(refs))
	for _, ref := range refs {
		if ref.LastKnownStatus == "" {
			continue
		}
		orderIDs = append(orderIDs, ref.OrderID)
		trackingCodes = append(trackingCodes, ref.TrackingCode)
	}
	if len(orderIDs) == 0 {
		return 0, nil
	}

	corrected := 0
	err = o.txManager.WithTx(ctx, func(ctx context.Context) error {
		current, err := o.orderRepo.GetForTrackingUpdate(ctx, orderIDs, trackingCodes)
		if err != nil {
			return err
		}

		for _, order := range current {
			if order.TrackingStatus == "" {
				continue
			}
			critical := o.keywords.Classify(order.TrackingStatus).IsCritical
			if critical == order.TrackingCritical {
				continue
			}

			updated := *order
			updated.TrackingCritical = critical
			if err := o.orderRepo.UpdateTracking(ctx, &updated); err != nil {
				return err
			}
			corrected++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	if corrected > 0 {
		o.logger.Info("reclassified critical tracking statuses", slog.Int("corrected", corrected))
	}
	return corrected, nil
}

// dropStale removes changes computed for a tracking code the order no longer carries and
// changes whose status is already stored. Orders are matched the way Merge matches them.
func (o *orderUseCase) dropStale(
	current []*domain.Order,
	changes []trackingDomain.StatusChangeResult,
) []trackingDomain.StatusChangeResult {
	index := domain.NewOrderIndex(current)

	fresh := make([]trackingDomain.StatusChangeResult, 0, len(changes))
	for _, change := range changes {
		i, byOrderID, ok := index.Match(change)
		if !ok {
			fresh = append(fresh, change)
			continue
		}

		order := current[i]
		if byOrderID && order.TrackedRef().TrackingCode != strings.TrimSpace(change.TrackingCode) {
			o.logger.Debug("dropping status change for replaced tracking code",
				slog.String("order_id", change.OrderID),
				slog.String("tracking_code", change.TrackingCode),
			)
			continue
		}
		if order.TrackingStatus == change.NewStatus {
			continue
		}
		fresh = append(fresh, change)
	}
	return fresh
}

func (o *orderUseCase) notificationEvent(
	order *domain.Order,
	change trackingDomain.StatusChangeResult,
) (*outboxDomain.OutboxEvent, error) {
	notification := outboxDomain.TrackingNotification{
		OrderID:        order.OrderID,
		TrackingCode:   change.TrackingCode,
		Customer:       order.Customer,
		Phone:          order.Phone,
		PreviousStatus: change.PreviousStatus,
		NewStatus:      change.NewStatus,
		IsCritical:     change.IsCritical,
		IsDelivered:    change.IsDelivered,
		Location:       change.Location,
		Timestamp:      change.Timestamp,
	}
	if change.IsCritical {
		notification.MatchedKeyword = o.keywords.MatchedKeyword(change.NewStatus)
	}

	payload, err := json.Marshal(notification)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to encode tracking notification")
	}

	return &outboxDomain.OutboxEvent{
		ID:        uuid.Must(uuid.NewV7()),
		EventType: outboxDomain.TrackingEventType(change.IsCritical),
		Payload:   string(payload),
		Status:    outboxDomain.OutboxEventStatusPending,
	}, nil
}
