// Package dto provides data transfer objects for tracking HTTP requests and responses.
package dto

import (
	"strings"

	validation "github.com/jellydator/validation"

	customValidation "github.com/allisson/parceltrack/internal/validation"
)

// MaxBatchCodes bounds the number of codes accepted by one batch or critical-check request.
const MaxBatchCodes = 50

// TrackBatchRequest contains the codes of a batch lookup.
type TrackBatchRequest struct {
	TrackingCodes []string `json:"tracking_codes"`
}

// Validate checks if the batch request is valid.
func (r *TrackBatchRequest) Validate() error {
	return ValidateTrackingCodes(r.TrackingCodes)
}

// ValidateTrackingCodes checks a list of codes received in a body or a query string.
func ValidateTrackingCodes(codes []string) error {
	return validation.Validate(codes,
		validation.Required,
		validation.Length(1, MaxBatchCodes),
		validation.Each(customValidation.NotBlank, customValidation.TrackingCode),
	)
}

// ValidateTrackingCode checks a single code taken from the URL.
func ValidateTrackingCode(code string) error {
	return validation.Validate(strings.TrimSpace(code),
		validation.Required,
		customValidation.TrackingCode,
	)
}
