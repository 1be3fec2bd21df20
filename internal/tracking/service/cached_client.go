package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/allisson/parceltrack/internal/tracking/domain"
)

// CachedCarrierClient serves recent lookups from an EventCache before calling the carrier.
// Only successful lookups are cached. Cache failures are logged and bypassed.
type CachedCarrierClient struct {
	next   CarrierClient
	cache  EventCache
	ttl    time.Duration
	logger *slog.Logger
}

// NewCachedCarrierClient decorates next with cache.
func NewCachedCarrierClient(
	next CarrierClient,
	cache EventCache,
	ttl time.Duration,
	logger *slog.Logger,
) *CachedCarrierClient {
	return &CachedCarrierClient{next: next, cache: cache, ttl: ttl, logger: logger}
}

// Track implements CarrierClient.
func (c *CachedCarrierClient) Track(ctx context.Context, trackingCode string) (*domain.TrackingInfo, error) {
	code := strings.TrimSpace(trackingCode)
	if code == "" {
		return nil, domain.ErrInvalidTrackingCode
	}

	info, hit, err := c.cache.Get(ctx, code)
	if err != nil {
		c.logger.Warn("tracking cache read failed", slog.String("tracking_code", code), slog.Any("error", err))
	}
	if hit {
		return info, nil
	}

	info, err = c.next.Track(ctx, code)
	if err != nil {
		return nil, err
	}

	if err := c.cache.Set(ctx, code, info, c.ttl); err != nil {
		c.logger.Warn("tracking cache write failed", slog.String("tracking_code", code), slog.Any("error", err))
	}
	return info, nil
}
