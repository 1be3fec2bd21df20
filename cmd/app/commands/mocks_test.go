package commands

import (
	"context"

	"github.com/stretchr/testify/mock"

	orderDomain "github.com/allisson/parceltrack/internal/order/domain"
	"github.com/allisson/parceltrack/internal/tracking/domain"
)

type mockTrackingUseCase struct {
	mock.Mock
}

func (m *mockTrackingUseCase) Track(ctx context.Context, trackingCode string) (*domain.TrackingInfo, error) {
	args := m.Called(ctx, trackingCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TrackingInfo), args.Error(1)
}

func (m *mockTrackingUseCase) TrackBatch(
	ctx context.Context,
	trackingCodes []string,
) (map[string]*domain.TrackingInfo, error) {
	args := m.Called(ctx, trackingCodes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]*domain.TrackingInfo), args.Error(1)
}

func (m *mockTrackingUseCase) CheckCritical(
	ctx context.Context,
	trackingCodes []string,
) ([]*domain.TrackingInfo, error) {
	args := m.Called(ctx, trackingCodes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.TrackingInfo), args.Error(1)
}

func (m *mockTrackingUseCase) APIStatus(ctx context.Context) *domain.APIStatus {
	args := m.Called(ctx)
	return args.Get(0).(*domain.APIStatus)
}

func (m *mockTrackingUseCase) ListHistory(ctx context.Context, limit int) ([]*domain.HistoryEntry, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.HistoryEntry), args.Error(1)
}

func (m *mockTrackingUseCase) ClearHistory(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockTrackingUseCase) CleanHistory(ctx context.Context, days int, dryRun bool) (int64, error) {
	args := m.Called(ctx, days, dryRun)
	return args.Get(0).(int64), args.Error(1)
}

type mockOrderUseCase struct {
	mock.Mock
}

func (m *mockOrderUseCase) Create(ctx context.Context, order *orderDomain.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *mockOrderUseCase) Get(ctx context.Context, orderID string) (*orderDomain.Order, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*orderDomain.Order), args.Error(1)
}

func (m *mockOrderUseCase) List(ctx context.Context, offset, limit int) ([]*orderDomain.Order, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*orderDomain.Order), args.Error(1)
}

func (m *mockOrderUseCase) Update(
	ctx context.Context,
	orderID string,
	patch orderDomain.OrderPatch,
) (*orderDomain.Order, error) {
	args := m.Called(ctx, orderID, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*orderDomain.Order), args.Error(1)
}

func (m *mockOrderUseCase) ListTrackedRefs(ctx context.Context) ([]domain.TrackedOrderRef, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TrackedOrderRef), args.Error(1)
}

func (m *mockOrderUseCase) ApplyStatusChanges(
	ctx context.Context,
	changes []domain.StatusChangeResult,
) (int, error) {
	args := m.Called(ctx, changes)
	return args.Int(0), args.Error(1)
}

func (m *mockOrderUseCase) ReclassifyCritical(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type mockReconciler struct {
	mock.Mock
}

func (m *mockReconciler) Reconcile(
	ctx context.Context,
	refs []domain.TrackedOrderRef,
) ([]domain.StatusChangeResult, error) {
	args := m.Called(ctx, refs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.StatusChangeResult), args.Error(1)
}
