// Package service provides carrier tracking clients and their supporting infrastructure.
package service

import (
	"context"

	"github.com/allisson/parceltrack/internal/tracking/domain"
)

// CarrierClient looks up the tracking events of one parcel.
//
// Implementations return events ordered most recent first, reject blank codes with
// domain.ErrInvalidTrackingCode and report every failure as an error. They never retry
// and never substitute fake data for a failed call.
type CarrierClient interface {
	Track(ctx context.Context, trackingCode string) (*domain.TrackingInfo, error)
}
