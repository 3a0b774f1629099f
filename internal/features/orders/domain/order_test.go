package domain

import (
	"testing"

	"microshop/internal/core/apperr"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validInput() OrderInput {
	return OrderInput{
		CustomerName:    "John Doe",
		CustomerEmail:   "john@example.com",
		CustomerPhone:   "08123456789",
		ShippingAddress: "Jl. Sudirman No. 123, Jakarta",
		Items: []ItemInput{
			{ProductID: 1, ProductName: "Laptop Gaming", Price: decimal.NewFromInt(15000000), Quantity: 1},
			{ProductID: 3, ProductName: "Headphone Wireless", Price: decimal.NewFromInt(2500000), Quantity: 1},
		},
	}
}

func TestNewOrder(t *testing.T) {
	order, err := NewOrder(42, validInput())
	require.NoError(t, err)

	assert.Equal(t, int64(42), order.UserID)
	assert.Equal(t, OrderStatusPending, order.Status)
	assert.Len(t, order.Items, 2)
	assert.True(t, decimal.NewFromInt(17500000).Equal(order.TotalAmount))
}

func TestTotal_ExactDecimal(t *testing.T) {
	items := []OrderItem{
		{Price: decimal.RequireFromString("0.10"), Quantity: 3},
		{Price: decimal.RequireFromString("19.99"), Quantity: 2},
	}

	// 0.30 + 39.98, no binary floating point drift
	assert.Equal(t, "40.28", Total(items).StringFixed(2))
	assert.True(t, Total(nil).IsZero())
}

func TestOrderInput_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(in *OrderInput)
		problem string
	}{
		{"ShortName", func(in *OrderInput) { in.CustomerName = "J" }, "Customer name is required"},
		{"EmailWithoutAt", func(in *OrderInput) { in.CustomerEmail = "john.example.com" }, "Valid email is required"},
		{"ShortAddress", func(in *OrderInput) { in.ShippingAddress = "Jakarta" }, "Shipping address is required"},
		{"NoItems", func(in *OrderInput) { in.Items = nil }, "At least one item is required"},
		{"ZeroQuantity", func(in *OrderInput) { in.Items[0].Quantity = 0 }, "Item 1: quantity must be at least 1"},
		{"NegativePrice", func(in *OrderInput) { in.Items[1].Price = decimal.NewFromInt(-1) }, "Item 2: price cannot be negative"},
		{"MissingProduct", func(in *OrderInput) { in.Items[0].ProductID = 0 }, "Item 1: product_id is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)

			err := in.Validate()
			require.ErrorIs(t, err, apperr.ErrValidation)

			var ve *apperr.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Contains(t, ve.Problems, tt.problem)
		})
	}

	t.Run("Valid", func(t *testing.T) {
		assert.NoError(t, validInput().Validate())
	})
}

func TestParseStatus(t *testing.T) {
	for _, st := range Statuses {
		got, err := ParseStatus(string(st))
		assert.NoError(t, err)
		assert.Equal(t, st, got)
	}

	_, err := ParseStatus("lost")
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = ParseStatus("PENDING")
	assert.ErrorIs(t, err, apperr.ErrValidation)
}
