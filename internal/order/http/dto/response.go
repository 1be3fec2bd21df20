package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/allisson/parceltrack/internal/order/domain"
)

// OrderResponse is the API representation of an order.
type OrderResponse struct {
	ID                string          `json:"id"`
	OrderID           string          `json:"order_id"`
	Customer          string          `json:"customer"`
	Phone             string          `json:"phone"`
	Offer             string          `json:"offer"`
	SaleValue         decimal.Decimal `json:"sale_value"`
	ReceivedValue     decimal.Decimal `json:"received_value"`
	SaleStatus        string          `json:"sale_status"`
	Seller            string          `json:"seller"`
	Operator          string          `json:"operator"`
	TrackingCode      string          `json:"tracking_code"`
	TrackingStatus    string          `json:"tracking_status"`
	TrackingCritical  bool            `json:"tracking_critical"`
	TrackingUpdatedAt *time.Time      `json:"tracking_updated_at"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// OrderListResponse wraps a page of orders.
type OrderListResponse struct {
	Items  []OrderResponse `json:"items"`
	Offset int             `json:"offset"`
	Limit  int             `json:"limit"`
}

// MapOrderToResponse converts an order to its API representation.
func MapOrderToResponse(order *domain.Order) OrderResponse {
	return OrderResponse{
		ID:                order.ID.String(),
		OrderID:           order.OrderID,
		Customer:          order.Customer,
		Phone:             order.Phone,
		Offer:             order.Offer,
		SaleValue:         order.SaleValue,
		ReceivedValue:     order.ReceivedValue,
		SaleStatus:        string(order.SaleStatus),
		Seller:            order.Seller,
		Operator:          order.Operator,
		TrackingCode:      order.TrackingCode,
		TrackingStatus:    order.TrackingStatus,
		TrackingCritical:  order.TrackingCritical,
		TrackingUpdatedAt: order.TrackingUpdatedAt,
		CreatedAt:         order.CreatedAt,
		UpdatedAt:         order.UpdatedAt,
	}
}

// MapOrdersToListResponse converts a page of orders.
func MapOrdersToListResponse(orders []*domain.Order, offset, limit int) OrderListResponse {
	items := make([]OrderResponse, 0, len(orders))
	for _, order := range orders {
		items = append(items, MapOrderToResponse(order))
	}
	return OrderListResponse{Items: items, Offset: offset, Limit: limit}
}
