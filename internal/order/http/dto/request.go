// Package dto provides data transfer objects for order HTTP requests and responses.
package dto

import (
	"strings"

	validation "github.com/jellydator/validation"
	"github.com/shopspring/decimal"

	"github.com/allisson/parceltrack/internal/order/domain"
	customValidation "github.com/allisson/parceltrack/internal/validation"
)

func saleStatusValues() []interface{} {
	values := make([]interface{}, 0, len(domain.SaleStatuses))
	for _, status := range domain.SaleStatuses {
		values = append(values, string(status))
	}
	return values
}

// CreateOrderRequest contains the fields of a new order.
type CreateOrderRequest struct {
	OrderID       string          `json:"order_id"`
	Customer      string          `json:"customer"`
	Phone         string          `json:"phone"`
	Offer         string          `json:"offer"`
	SaleValue     decimal.Decimal `json:"sale_value"`
	ReceivedValue decimal.Decimal `json:"received_value"`
	SaleStatus    string          `json:"sale_status"`
	Seller        string          `json:"seller"`
	Operator      string          `json:"operator"`
	TrackingCode  string          `json:"tracking_code"`
}

// Validate checks if the create request is valid.
func (r *CreateOrderRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.OrderID, validation.Required, customValidation.NotBlank, validation.Length(1, 64)),
		validation.Field(&r.Customer, validation.Required, customValidation.NotBlank, validation.Length(1, 255)),
		validation.Field(&r.Phone, customValidation.Phone),
		validation.Field(&r.Offer, validation.Length(0, 255)),
		validation.Field(&r.SaleValue, customValidation.NonNegativeDecimal),
		validation.Field(&r.ReceivedValue, customValidation.NonNegativeDecimal),
		validation.Field(&r.SaleStatus, validation.In(saleStatusValues()...)),
		validation.Field(&r.Seller, validation.Length(0, 255)),
		validation.Field(&r.Operator, validation.Length(0, 255)),
		validation.Field(&r.TrackingCode, customValidation.TrackingCode),
	)
}

// ToDomain converts the request into a new order.
func (r *CreateOrderRequest) ToDomain() *domain.Order {
	return &domain.Order{
		OrderID:       strings.TrimSpace(r.OrderID),
		Customer:      strings.TrimSpace(r.Customer),
		Phone:         strings.TrimSpace(r.Phone),
		Offer:         r.Offer,
		SaleValue:     r.SaleValue,
		ReceivedValue: r.ReceivedValue,
		SaleStatus:    domain.SaleStatus(r.SaleStatus),
		Seller:        r.Seller,
		Operator:      r.Operator,
		TrackingCode:  r.TrackingCode,
	}
}

// UpdateOrderRequest contains the fields to change. Omitted fields are left unchanged and
// an empty tracking_code removes the order from tracking.
type UpdateOrderRequest struct {
	Customer      *string          `json:"customer"`
	Phone         *string          `json:"phone"`
	Offer         *string          `json:"offer"`
	SaleValue     *decimal.Decimal `json:"sale_value"`
	ReceivedValue *decimal.Decimal `json:"received_value"`
	SaleStatus    *string          `json:"sale_status"`
	Seller        *string          `json:"seller"`
	Operator      *string          `json:"operator"`
	TrackingCode  *string          `json:"tracking_code"`
}

// Validate checks if the update request is valid.
func (r *UpdateOrderRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Customer, validation.NilOrNotEmpty, customValidation.NotBlank, validation.Length(1, 255)),
		validation.Field(&r.Phone, customValidation.Phone),
		validation.Field(&r.Offer, validation.Length(0, 255)),
		validation.Field(&r.SaleValue, customValidation.NonNegativeDecimal),
		validation.Field(&r.ReceivedValue, customValidation.NonNegativeDecimal),
		validation.Field(&r.SaleStatus, validation.NilOrNotEmpty, validation.In(saleStatusValues()...)),
		validation.Field(&r.Seller, validation.Length(0, 255)),
		validation.Field(&r.Operator, validation.Length(0, 255)),
		validation.Field(&r.TrackingCode, customValidation.TrackingCode),
	)
}

// ToPatch converts the request into an order patch.
func (r *UpdateOrderRequest) ToPatch() domain.OrderPatch {
	patch := domain.OrderPatch{
		Customer:      trimmed(r.Customer),
		Phone:         trimmed(r.Phone),
		Offer:         r.Offer,
		SaleValue:     r.SaleValue,
		ReceivedValue: r.ReceivedValue,
		Seller:        r.Seller,
		Operator:      r.Operator,
		TrackingCode:  trimmed(r.TrackingCode),
	}
	if r.SaleStatus != nil {
		status := domain.SaleStatus(*r.SaleStatus)
		patch.SaleStatus = &status
	}
	return patch
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
