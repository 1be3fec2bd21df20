// Package domain defines the order entity and the merge of carrier status changes into it.
package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	trackingDomain "github.com/allisson/parceltrack/internal/tracking/domain"
)

// SaleStatus is the collection state of an order.
type SaleStatus string

const (
	SaleStatusPending       SaleStatus = "pending"
	SaleStatusInProgress    SaleStatus = "in_progress"
	SaleStatusPaid          SaleStatus = "paid"
	SaleStatusPartiallyPaid SaleStatus = "partially_paid"
	SaleStatusNegotiating   SaleStatus = "negotiating"
	SaleStatusCancelled     SaleStatus = "cancelled"
	SaleStatusDelivered     SaleStatus = "delivered"
)

// SaleStatuses lists every valid SaleStatus.
var SaleStatuses = []SaleStatus{
	SaleStatusPending,
	SaleStatusInProgress,
	SaleStatusPaid,
	SaleStatusPartiallyPaid,
	SaleStatusNegotiating,
	SaleStatusCancelled,
	SaleStatusDelivered,
}

// Order is a sale followed by the collections team.
//
// TrackingStatus, TrackingCritical and TrackingUpdatedAt are owned by the reconciliation
// flow. TrackingCritical always matches the classification of TrackingStatus.
type Order struct {
	ID            uuid.UUID
	OrderID       string
	Customer      string
	Phone         string
	Offer         string
	SaleValue     decimal.Decimal
	ReceivedValue decimal.Decimal
	SaleStatus    SaleStatus
	Seller        string
	Operator      string

	TrackingCode      string
	TrackingStatus    string
	TrackingCritical  bool
	TrackingUpdatedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsTracked reports whether the order carries a tracking code.
func (o *Order) IsTracked() bool {
	return strings.TrimSpace(o.TrackingCode) != ""
}

// TrackedRef returns the reconciler input for the order.
func (o *Order) TrackedRef() trackingDomain.TrackedOrderRef {
	return trackingDomain.TrackedOrderRef{
		OrderID:         o.OrderID,
		TrackingCode:    strings.TrimSpace(o.TrackingCode),
		LastKnownStatus: o.TrackingStatus,
	}
}

// OrderPatch holds the editable fields of an order. Nil fields are left unchanged.
type OrderPatch struct {
	Customer      *string
	Phone         *string
	Offer         *string
	SaleValue     *decimal.Decimal
	ReceivedValue *decimal.Decimal
	SaleStatus    *SaleStatus
	Seller        *string
	Operator      *string
	TrackingCode  *string
}

// Apply writes the patch onto o. Changing the tracking code clears the tracking status,
// which is then filled by the next reconciliation pass.
func (p OrderPatch) Apply(o *Order, now time.Time) {
	if p.Customer != nil {
		o.Customer = *p.Customer
	}
	if p.Phone != nil {
		o.Phone = *p.Phone
	}
	if p.Offer != nil {
		o.Offer = *p.Offer
	}
	if p.SaleValue != nil {
		o.SaleValue = *p.SaleValue
	}
	if p.ReceivedValue != nil {
		o.ReceivedValue = *p.ReceivedValue
	}
	if p.SaleStatus != nil {
		o.SaleStatus = *p.SaleStatus
	}
	if p.Seller != nil {
		o.Seller = *p.Seller
	}
	if p.Operator != nil {
		o.Operator = *p.Operator
	}
	if p.TrackingCode != nil {
		code := strings.TrimSpace(*p.TrackingCode)
		if code != o.TrackingCode {
			o.TrackingCode = code
			o.TrackingStatus = ""
			o.TrackingCritical = false
			o.TrackingUpdatedAt = nil
		}
	}
	o.UpdatedAt = now
}
