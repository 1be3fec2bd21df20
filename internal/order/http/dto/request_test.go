package dto

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/parceltrack/internal/order/domain"
)

func strPtr(s string) *string {
	return &s
}

func TestCreateOrderRequest_Validate(t *testing.T) {
	valid := func() CreateOrderRequest {
		return CreateOrderRequest{
			OrderID:      "1001",
			Customer:     "Maria Silva",
			Phone:        "+55 11 99999-0000",
			SaleValue:    decimal.RequireFromString("197.00"),
			SaleStatus:   "in_progress",
			TrackingCode: "AA123456789BR",
		}
	}

	tests := []struct {
		name    string
		mutate  func(r *CreateOrderRequest)
		wantErr bool
	}{
		{name: "valid", mutate: func(r *CreateOrderRequest) {}},
		{name: "without tracking code", mutate: func(r *CreateOrderRequest) { r.TrackingCode = "" }},
		{name: "without sale status", mutate: func(r *CreateOrderRequest) { r.SaleStatus = "" }},
		{name: "blank order id", mutate: func(r *CreateOrderRequest) { r.OrderID = "   " }, wantErr: true},
		{name: "missing customer", mutate: func(r *CreateOrderRequest) { r.Customer = "" }, wantErr: true},
		{name: "bad phone", mutate: func(r *CreateOrderRequest) { r.Phone = "abc" }, wantErr: true},
		{
			name:    "negative received value",
			mutate:  func(r *CreateOrderRequest) { r.ReceivedValue = decimal.RequireFromString("-0.01") },
			wantErr: true,
		},
		{name: "unknown sale status", mutate: func(r *CreateOrderRequest) { r.SaleStatus = "shipped" }, wantErr: true},
		{name: "bad tracking code", mutate: func(r *CreateOrderRequest) { r.TrackingCode = "AA-1" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid()
			tt.mutate(&req)

			err := req.Validate()

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestUpdateOrderRequest_Validate(t *testing.T) {
	assert.NoError(t, (&UpdateOrderRequest{}).Validate())
	assert.NoError(t, (&UpdateOrderRequest{TrackingCode: strPtr("")}).Validate())
	assert.Error(t, (&UpdateOrderRequest{Customer: strPtr("")}).Validate())
	assert.Error(t, (&UpdateOrderRequest{SaleStatus: strPtr("shipped")}).Validate())

	negative := decimal.RequireFromString("-5")
	assert.Error(t, (&UpdateOrderRequest{SaleValue: &negative}).Validate())
}

func TestUpdateOrderRequest_ToPatch(t *testing.T) {
	req := UpdateOrderRequest{
		Customer:     strPtr("  Maria  "),
		SaleStatus:   strPtr("paid"),
		TrackingCode: strPtr(" AA123456789BR "),
	}

	patch := req.ToPatch()

	require.NotNil(t, patch.Customer)
	assert.Equal(t, "Maria", *patch.Customer)
	require.NotNil(t, patch.SaleStatus)
	assert.Equal(t, domain.SaleStatusPaid, *patch.SaleStatus)
	require.NotNil(t, patch.TrackingCode)
	assert.Equal(t, "AA123456789BR", *patch.TrackingCode)
	assert.Nil(t, patch.Phone)
}
