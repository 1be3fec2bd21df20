package domain

import (
	apperrors "github.com/allisson/parceltrack/internal/errors"
)

// Tracking errors.
var (
	// ErrInvalidTrackingCode is returned for blank or malformed tracking codes.
	ErrInvalidTrackingCode = apperrors.Wrap(apperrors.ErrInvalidInput, "invalid tracking code")

	// ErrTrackingNotFound is returned when the carrier does not know the tracking code.
	ErrTrackingNotFound = apperrors.Wrap(apperrors.ErrNotFound, "tracking code not found")

	// ErrCarrierUnavailable is returned when the carrier could not be reached or answered with a server error.
	ErrCarrierUnavailable = apperrors.Wrap(apperrors.ErrUnavailable, "carrier unavailable")

	// ErrInvalidCarrierResponse is returned when the carrier answer cannot be decoded.
	ErrInvalidCarrierResponse = apperrors.New("invalid carrier response")

	// ErrSchedulerRunning is returned when starting a scheduler that is already running.
	ErrSchedulerRunning = apperrors.Wrap(apperrors.ErrConflict, "polling scheduler already running")

	// ErrPassInProgress is returned when a manual refresh finds a pass already in flight.
	ErrPassInProgress = apperrors.Wrap(apperrors.ErrConflict, "reconciliation pass already in progress")

	// ErrSchedulerNotRunning is returned when a manual refresh is requested without a running scheduler.
	ErrSchedulerNotRunning = apperrors.Wrap(apperrors.ErrUnavailable, "polling scheduler not running")
)
