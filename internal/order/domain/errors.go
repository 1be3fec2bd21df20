package domain

import (
	apperrors "github.com/allisson/parceltrack/internal/errors"
)

var (
	// ErrOrderNotFound is returned when no order carries the requested order id.
	ErrOrderNotFound = apperrors.Wrap(apperrors.ErrNotFound, "order not found")

	// ErrOrderAlreadyExists is returned when creating an order with a taken order id.
	ErrOrderAlreadyExists = apperrors.Wrap(apperrors.ErrConflict, "order already exists")
)
