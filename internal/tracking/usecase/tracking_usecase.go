package usecase

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	apperrors "github.com/allisson/parceltrack/internal/errors"
	"github.com/allisson/parceltrack/internal/tracking/domain"
	"github.com/allisson/parceltrack/internal/tracking/service"
)

const (
	// probeTrackingCode is looked up by APIStatus. Not-found answers still mean the carrier is up.
	probeTrackingCode = "AA123456789BR"

	defaultHistoryLimit = 50
)

// TrackingConfig holds tracking use case configuration.
type TrackingConfig struct {
	// Simulated reports that the carrier client serves generated data.
	Simulated bool
	// MaxConcurrency caps in-flight carrier calls of a batch lookup. Zero means unbounded.
	MaxConcurrency int
}

// trackingUseCase implements TrackingUseCase.
type trackingUseCase struct {
	carrier     service.CarrierClient
	probe       service.CarrierClient
	classifier  *domain.Classifier
	historyRepo HistoryRepository
	config      TrackingConfig
	logger      *slog.Logger
	now         func() time.Time
}

// NewTrackingUseCase creates a TrackingUseCase. Lookups go through carrier while APIStatus
// uses probe, which should bypass any cache.
func NewTrackingUseCase(
	carrier service.CarrierClient,
	probe service.CarrierClient,
	classifier *domain.Classifier,
	historyRepo HistoryRepository,
	config TrackingConfig,
	logger *slog.Logger,
) TrackingUseCase {
	return &trackingUseCase{
		carrier:     carrier,
		probe:       probe,
		classifier:  classifier,
		historyRepo: historyRepo,
		config:      config,
		logger:      logger,
		now:         time.Now,
	}
}

func (t *trackingUseCase) Track(ctx context.Context, trackingCode string) (*domain.TrackingInfo, error) {
	trackingCode = strings.TrimSpace(trackingCode)
	if trackingCode == "" {
		return nil, domain.ErrInvalidTrackingCode
	}

	info, err := t.lookup(ctx, trackingCode)
	if err != nil {
		t.recordFailure(ctx, trackingCode, err)
		return nil, err
	}

	t.recordSuccess(ctx, info)
	return info, nil
}

func (t *trackingUseCase) TrackBatch(
	ctx context.Context,
	trackingCodes []string,
) (map[string]*domain.TrackingInfo, error) {
	codes := uniqueCodes(trackingCodes)
	if len(codes) == 0 {
		return nil, domain.ErrInvalidTrackingCode
	}

	results, err := t.lookupAll(ctx, codes)
	if err != nil {
		return nil, err
	}

	for _, code := range codes {
		info := results[code]
		if info.Error != "" {
			t.recordHistory(ctx, code, "Erro: "+info.Error, false, info.Error)
			continue
		}
		t.recordSuccess(ctx, info)
	}

	return results, nil
}

func (t *trackingUseCase) CheckCritical(ctx context.Context, trackingCodes []string) ([]*domain.TrackingInfo, error) {
	codes := uniqueCodes(trackingCodes)
	if len(codes) == 0 {
		return nil, domain.ErrInvalidTrackingCode
	}

	results, err := t.lookupAll(ctx, codes)
	if err != nil {
		return nil, err
	}

	critical := make([]*domain.TrackingInfo, 0)
	for _, code := range codes {
		info := results[code]
		if info.Error != "" || len(info.Events) == 0 {
			continue
		}
		if t.classifier.Classify(info.LatestStatus()).IsCritical {
			critical = append(critical, info)
		}
	}

	return critical, nil
}

func (t *trackingUseCase) APIStatus(ctx context.Context) *domain.APIStatus {
	if t.config.Simulated {
		return &domain.APIStatus{
			Status:    domain.APIStatusOnline,
			Message:   "Using simulated data",
			CheckedAt: t.now().UTC(),
		}
	}

	start := time.Now()
	_, err := t.probe.Track(ctx, probeTrackingCode)
	elapsed := time.Since(start)

	if err != nil && !apperrors.Is(err, apperrors.ErrNotFound) {
		return &domain.APIStatus{
			Status:    domain.APIStatusOffline,
			Message:   err.Error(),
			CheckedAt: t.now().UTC(),
		}
	}

	return &domain.APIStatus{
		Status:         domain.APIStatusOnline,
		Message:        "API is responding normally",
		ResponseTimeMS: elapsed.Milliseconds(),
		CheckedAt:      t.now().UTC(),
	}
}

func (t *trackingUseCase) ListHistory(ctx context.Context, limit int) ([]*domain.HistoryEntry, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	return t.historyRepo.List(ctx, limit)
}

func (t *trackingUseCase) ClearHistory(ctx context.Context) (int64, error) {
	count, err := t.historyRepo.DeleteAll(ctx)
	if err != nil {
		return 0, err
	}

	t.logger.Info("tracking history cleared", slog.Int64("count", count))
	return count, nil
}

func (t *trackingUseCase) CleanHistory(ctx context.Context, days int, dryRun bool) (int64, error) {
	if days < 0 {
		return 0, apperrors.Wrapf(apperrors.ErrInvalidInput, "days must be a positive number, got: %d", days)
	}

	olderThan := t.now().UTC().Add(-time.Duration(days) * 24 * time.Hour)
	return t.historyRepo.DeleteOlderThan(ctx, olderThan, dryRun)
}

func (t *trackingUseCase) lookup(ctx context.Context, trackingCode string) (*domain.TrackingInfo, error) {
	info, err := t.carrier.Track(ctx, trackingCode)
	if err != nil {
		return nil, err
	}
	info.Delivered = t.classifier.IsDelivered(info.Events)
	return info, nil
}

// lookupAll returns one entry per code. Failures are reported in TrackingInfo.Error.
func (t *trackingUseCase) lookupAll(ctx context.Context, codes []string) (map[string]*domain.TrackingInfo, error) {
	var mu sync.Mutex
	results := make(map[string]*domain.TrackingInfo, len(codes))

	var group errgroup.Group
	if t.config.MaxConcurrency > 0 {
		group.SetLimit(t.config.MaxConcurrency)
	}

	for _, code := range codes {
		group.Go(func() error {
			info, err := t.lookup(ctx, code)
			if err != nil {
				info = &domain.TrackingInfo{
					Code:   code,
					Events: []domain.TrackingEvent{},
					Error:  err.Error(),
				}
			}

			mu.Lock()
			results[code] = info
			mu.Unlock()
			return nil
		})
	}
	_ = group.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func (t *trackingUseCase) recordSuccess(ctx context.Context, info *domain.TrackingInfo) {
	status := info.LatestStatus()
	if status == "" {
		status = domain.NoEventsStatus
	}
	t.recordHistory(ctx, info.Code, status, true, "")
}

func (t *trackingUseCase) recordFailure(ctx context.Context, trackingCode string, err error) {
	t.recordHistory(ctx, trackingCode, "Erro: "+err.Error(), false, err.Error())
}

// recordHistory never fails the lookup it describes.
func (t *trackingUseCase) recordHistory(ctx context.Context, trackingCode, status string, success bool, details string) {
	entry := &domain.HistoryEntry{
		ID:           uuid.Must(uuid.NewV7()),
		TrackingCode: trackingCode,
		Status:       status,
		Success:      success,
		Details:      details,
		CreatedAt:    t.now().UTC(),
	}

	if err := t.historyRepo.Create(ctx, entry); err != nil {
		t.logger.Warn("failed to record tracking history",
			slog.String("tracking_code", trackingCode),
			slog.Any("error", err),
		)
	}
}

func uniqueCodes(trackingCodes []string) []string {
	seen := make(map[string]struct{}, len(trackingCodes))
	codes := make([]string, 0, len(trackingCodes))
	for _, code := range trackingCodes {
		code = strings.TrimSpace(code)
		if code == "" {
			continue
		}
		if _, ok := seen[code]; ok {
			continue
		}
		seen[code] = struct{}{}
		codes = append(codes, code)
	}
	return codes
}
