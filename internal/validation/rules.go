// Package validation provides custom validation rules for the application.
package validation

import (
	"regexp"
	"strings"

	validation "github.com/jellydator/validation"
	"github.com/shopspring/decimal"

	apperrors "github.com/allisson/parceltrack/internal/errors"
)

var (
	// trackingCodeRegex accepts carrier object codes such as "AA123456789BR".
	trackingCodeRegex = regexp.MustCompile(`^[A-Za-z0-9]{8,40}$`)

	// phoneRegex accepts digits with optional separators and a leading plus sign.
	phoneRegex = regexp.MustCompile(`^\+?[0-9 ()\-]{8,20}$`)
)

// WrapValidationError wraps validation errors as domain ErrInvalidInput
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// NotBlank validates that a string is not empty after trimming whitespace
var NotBlank = validation.NewStringRuleWithError(
	func(s string) bool {
		return strings.TrimSpace(s) != ""
	},
	validation.NewError("validation_not_blank", "must not be blank"),
)

// NoWhitespace validates that string doesn't contain leading/trailing whitespace
var NoWhitespace = validation.NewStringRuleWithError(
	func(s string) bool {
		return s == strings.TrimSpace(s)
	},
	validation.NewError("validation_no_whitespace", "must not contain leading or trailing whitespace"),
)

// TrackingCode validates the shape of a carrier tracking code.
// Empty strings pass so optional fields can combine it with Required.
var TrackingCode = validation.NewStringRuleWithError(
	func(s string) bool {
		return trackingCodeRegex.MatchString(s)
	},
	validation.NewError("validation_tracking_code", "must be an alphanumeric tracking code (8 to 40 characters)"),
)

// Phone validates a loosely formatted phone number.
var Phone = validation.NewStringRuleWithError(
	func(s string) bool {
		return phoneRegex.MatchString(s)
	},
	validation.NewError("validation_phone", "must be a valid phone number"),
)

// NonNegativeDecimal validates that a decimal amount is zero or positive.
var NonNegativeDecimal = validation.By(func(value interface{}) error {
	var amount decimal.Decimal
	switch v := value.(type) {
	case decimal.Decimal:
		amount = v
	case *decimal.Decimal:
		if v == nil {
			return nil
		}
		amount = *v
	default:
		return validation.NewError("validation_decimal_type", "must be a decimal amount")
	}
	if amount.IsNegative() {
		return validation.NewError("validation_decimal_negative", "must not be negative")
	}
	return nil
})
