package usecase

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/allisson/parceltrack/internal/tracking/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type carrierFunc func(ctx context.Context, trackingCode string) (*domain.TrackingInfo, error)

func (f carrierFunc) Track(ctx context.Context, trackingCode string) (*domain.TrackingInfo, error) {
	return f(ctx, trackingCode)
}

type reconcilerFunc func(ctx context.Context, refs []domain.TrackedOrderRef) ([]domain.StatusChangeResult, error)

func (f reconcilerFunc) Reconcile(
	ctx context.Context,
	refs []domain.TrackedOrderRef,
) ([]domain.StatusChangeResult, error) {
	return f(ctx, refs)
}

type recordingMetrics struct {
	mu       sync.Mutex
	carrier  map[string]int
	changes  int
	critical int
	passes   map[string]int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{
		carrier: make(map[string]int),
		passes:  make(map[string]int),
	}
}

func (m *recordingMetrics) RecordCarrierRequest(_ context.Context, outcome string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.carrier[outcome]++
}

func (m *recordingMetrics) RecordStatusChanges(_ context.Context, changes, critical int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.changes += changes
	m.critical += critical
}

func (m *recordingMetrics) RecordPass(_ context.Context, trigger, outcome string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.passes[trigger+":"+outcome]++
}

func (m *recordingMetrics) carrierCount(outcome string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.carrier[outcome]
}

func (m *recordingMetrics) passCount(trigger, outcome string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.passes[trigger+":"+outcome]
}

func infoWithStatus(code, status, location string) *domain.TrackingInfo {
	return &domain.TrackingInfo{
		Code: code,
		Events: []domain.TrackingEvent{
			{Date: "10/03/2025", Time: "14:30", Location: location, Status: status},
			{Date: "08/03/2025", Time: "09:00", Location: "Curitiba - PR", Status: "Objeto postado"},
		},
	}
}
