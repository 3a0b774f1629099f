package domain

import (
	"fmt"
	"strings"
	"time"

	"microshop/internal/core/apperr"

	"github.com/shopspring/decimal"
)

// OrderStatus represents the current state of an order.
type OrderStatus string

const (
	// OrderStatusPending is the status of every new order.
	OrderStatusPending OrderStatus = "pending"
	// OrderStatusConfirmed indicates the order has been accepted.
	OrderStatusConfirmed OrderStatus = "confirmed"
	// OrderStatusShipped indicates the order has been handed to the carrier.
	OrderStatusShipped OrderStatus = "shipped"
	// OrderStatusDelivered indicates the order reached the customer.
	OrderStatusDelivered OrderStatus = "delivered"
	// OrderStatusCancelled indicates the order will not be fulfilled.
	OrderStatusCancelled OrderStatus = "cancelled"
)

// Statuses lists every legal order status in lifecycle order.
var Statuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

// ErrOrderNotFound is returned when no order has the requested id.
var ErrOrderNotFound = fmt.Errorf("order %w", apperr.ErrNotFound)

// ParseStatus accepts any of the legal statuses. There is no transition
// table: any legal status may replace any other.
func ParseStatus(s string) (OrderStatus, error) {
	for _, st := range Statuses {
		if string(st) == s {
			return st, nil
		}
	}

	names := make([]string, len(Statuses))
	for i, st := range Statuses {
		names[i] = string(st)
	}
	return "", apperr.NewValidation("Invalid status. Must be one of: " + strings.Join(names, ", "))
}

// Order represents a customer order with its line items.
type Order struct {
	// ID is the unique identifier for the order.
	ID int64 `json:"id"`
	// UserID is the account that placed the order, taken from the verified token.
	UserID int64 `json:"user_id"`
	// CustomerName is the full name of the recipient.
	CustomerName string `json:"customer_name"`
	// CustomerEmail is the contact email for the customer.
	CustomerEmail string `json:"customer_email"`
	// CustomerPhone is optional.
	CustomerPhone string `json:"customer_phone"`
	// TotalAmount is the sum of price × quantity over Items, fixed at creation.
	TotalAmount decimal.Decimal `json:"total_amount"`
	// Status is the current state of the order.
	Status OrderStatus `json:"status"`
	// ShippingAddress is the delivery address.
	ShippingAddress string `json:"shipping_address"`
	// CreatedAt is the timestamp when the order was created.
	CreatedAt time.Time `json:"created_at"`
	// Items contains the products included in the order.
	Items []OrderItem `json:"items"`
}

// OrderItem is a product snapshot taken when the order was placed.
type OrderItem struct {
	ID          int64           `json:"id"`
	OrderID     int64           `json:"order_id"`
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
}

// Subtotal returns price × quantity.
func (i OrderItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// ItemInput is a line item as submitted by the caller.
type ItemInput struct {
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
}

// OrderInput is the customer part of a new order.
type OrderInput struct {
	CustomerName    string      `json:"customer_name"`
	CustomerEmail   string      `json:"customer_email"`
	CustomerPhone   string      `json:"customer_phone"`
	ShippingAddress string      `json:"shipping_address"`
	Items           []ItemInput `json:"items"`
}

// Validate reports every rule the input breaks.
func (in OrderInput) Validate() error {
	var problems []string

	if len(strings.TrimSpace(in.CustomerName)) < 2 {
		problems = append(problems, "Customer name is required")
	}
	if !strings.Contains(in.CustomerEmail, "@") {
		problems = append(problems, "Valid email is required")
	}
	if len(strings.TrimSpace(in.ShippingAddress)) < 10 {
		problems = append(problems, "Shipping address is required")
	}
	if len(in.Items) == 0 {
		problems = append(problems, "At least one item is required")
	}

	for i, item := range in.Items {
		n := i + 1
		if item.ProductID < 1 {
			problems = append(problems, fmt.Sprintf("Item %d: product_id is required", n))
		}
		if item.Quantity < 1 {
			problems = append(problems, fmt.Sprintf("Item %d: quantity must be at least 1", n))
		}
		if item.Price.IsNegative() {
			problems = append(problems, fmt.Sprintf("Item %d: price cannot be negative", n))
		}
	}

	return apperr.NewValidation(problems...)
}

// NewOrder validates the input and builds a pending order for userID with
// its total computed from the submitted items.
func NewOrder(userID int64, in OrderInput) (*Order, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	items := make([]OrderItem, len(in.Items))
	for i, item := range in.Items {
		items[i] = OrderItem{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Price:       item.Price,
			Quantity:    item.Quantity,
		}
	}

	return &Order{
		UserID:          userID,
		CustomerName:    strings.TrimSpace(in.CustomerName),
		CustomerEmail:   strings.TrimSpace(in.CustomerEmail),
		CustomerPhone:   strings.TrimSpace(in.CustomerPhone),
		ShippingAddress: strings.TrimSpace(in.ShippingAddress),
		Status:          OrderStatusPending,
		TotalAmount:     Total(items),
		Items:           items,
	}, nil
}

// Total returns Σ price × quantity.
func Total(items []OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// CatalogEntry is the current catalog name and price of a product.
type CatalogEntry struct {
	Name  string
	Price decimal.Decimal
}
