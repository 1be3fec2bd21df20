package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/allisson/parceltrack/internal/metrics"
	"github.com/allisson/parceltrack/internal/tracking/domain"
)

type mockBusinessMetrics struct {
	mock.Mock
}

func (m *mockBusinessMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {
	m.Called(ctx, domain, operation, status)
}

func (m *mockBusinessMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
	m.Called(ctx, domain, operation, duration, status)
}

var _ metrics.BusinessMetrics = (*mockBusinessMetrics)(nil)

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

func (m *mockTrackingUseCase) CheckCritical(ctx context.Context, trackingCodes []string) ([]*domain.TrackingInfo, error) {
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

func expectMetrics(ctx context.Context, m *mockBusinessMetrics, operation, status string) {
	m.On("RecordOperation", ctx, "tracking", operation, status).Return().Once()
	m.On("RecordDuration", ctx, "tracking", operation, mock.AnythingOfType("time.Duration"), status).Return().Once()
}

func TestNewTrackingUseCaseWithMetrics(t *testing.T) {
	decorator := NewTrackingUseCaseWithMetrics(&mockTrackingUseCase{}, &mockBusinessMetrics{})

	assert.NotNil(t, decorator)
	assert.Implements(t, (*TrackingUseCase)(nil), decorator)
}

func TestTrackingMetricsDecorator(t *testing.T) {
	ctx := context.Background()

	t.Run("Track_Success", func(t *testing.T) {
		next := &mockTrackingUseCase{}
		m := &mockBusinessMetrics{}
		info := &domain.TrackingInfo{Code: "AA123456789BR"}

		next.On("Track", ctx, "AA123456789BR").Return(info, nil).Once()
		expectMetrics(ctx, m, "track", "success")

		got, err := NewTrackingUseCaseWithMetrics(next, m).Track(ctx, "AA123456789BR")

		require.NoError(t, err)
		assert.Equal(t, info, got)
		next.AssertExpectations(t)
		m.AssertExpectations(t)
	})

	t.Run("Track_Error", func(t *testing.T) {
		next := &mockTrackingUseCase{}
		m := &mockBusinessMetrics{}

		next.On("Track", ctx, "AA123456789BR").Return(nil, domain.ErrTrackingNotFound).Once()
		expectMetrics(ctx, m, "track", "error")

		_, err := NewTrackingUseCaseWithMetrics(next, m).Track(ctx, "AA123456789BR")

		assert.ErrorIs(t, err, domain.ErrTrackingNotFound)
		m.AssertExpectations(t)
	})

	t.Run("TrackBatch", func(t *testing.T) {
		next := &mockTrackingUseCase{}
		m := &mockBusinessMetrics{}
		codes := []string{"AA123456789BR"}
		results := map[string]*domain.TrackingInfo{"AA123456789BR": {Code: "AA123456789BR"}}

		next.On("TrackBatch", ctx, codes).Return(results, nil).Once()
		expectMetrics(ctx, m, "track_batch", "success")

		got, err := NewTrackingUseCaseWithMetrics(next, m).TrackBatch(ctx, codes)

		require.NoError(t, err)
		assert.Equal(t, results, got)
		m.AssertExpectations(t)
	})

	t.Run("CheckCritical", func(t *testing.T) {
		next := &mockTrackingUseCase{}
		m := &mockBusinessMetrics{}
		codes := []string{"AA123456789BR"}

		next.On("CheckCritical", ctx, codes).Return([]*domain.TrackingInfo{}, nil).Once()
		expectMetrics(ctx, m, "check_critical", "success")

		_, err := NewTrackingUseCaseWithMetrics(next, m).CheckCritical(ctx, codes)

		require.NoError(t, err)
		m.AssertExpectations(t)
	})

	t.Run("APIStatus_Offline", func(t *testing.T) {
		next := &mockTrackingUseCase{}
		m := &mockBusinessMetrics{}

		next.On("APIStatus", ctx).Return(&domain.APIStatus{Status: domain.APIStatusOffline}).Once()
		expectMetrics(ctx, m, "api_status", "error")

		status := NewTrackingUseCaseWithMetrics(next, m).APIStatus(ctx)

		assert.Equal(t, domain.APIStatusOffline, status.Status)
		m.AssertExpectations(t)
	})

	t.Run("History", func(t *testing.T) {
		next := &mockTrackingUseCase{}
		m := &mockBusinessMetrics{}

		next.On("ListHistory", ctx, 10).Return([]*domain.HistoryEntry{}, nil).Once()
		next.On("ClearHistory", ctx).Return(int64(2), nil).Once()
		next.On("CleanHistory", ctx, 30, false).Return(int64(1), nil).Once()
		expectMetrics(ctx, m, "history_list", "success")
		expectMetrics(ctx, m, "history_clear", "success")
		expectMetrics(ctx, m, "history_clean", "success")

		decorator := NewTrackingUseCaseWithMetrics(next, m)
		_, err := decorator.ListHistory(ctx, 10)
		require.NoError(t, err)
		_, err = decorator.ClearHistory(ctx)
		require.NoError(t, err)
		_, err = decorator.CleanHistory(ctx, 30, false)
		require.NoError(t, err)

		next.AssertExpectations(t)
		m.AssertExpectations(t)
	})
}
