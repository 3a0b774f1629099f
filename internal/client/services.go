package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	auth "microshop/internal/features/auth/domain"
	catalog "microshop/internal/features/catalog/domain"
	orders "microshop/internal/features/orders/domain"
	shipping "microshop/internal/features/shipping/domain"
)

// Session is a token issued by the auth service.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      struct {
		ID       int64  `json:"id"`
		Username string `json:"username"`
	} `json:"user"`
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, username, password string) (*Session, error) {
	var s Session
	creds := auth.Credentials{Username: username, Password: password}
	if err := c.do(ctx, http.MethodPost, c.endpoints.Auth+"/token", creds, &s); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	return &s, nil
}

// Register creates an account.
func (c *Client) Register(ctx context.Context, r auth.Registration) (*auth.User, error) {
	var out struct {
		User auth.User `json:"user"`
	}
	if err := c.do(ctx, http.MethodPost, c.endpoints.Auth+"/register", r, &out); err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	return &out.User, nil
}

// ListProducts returns the catalog, newest first.
func (c *Client) ListProducts(ctx context.Context) ([]catalog.Product, error) {
	var products []catalog.Product
	if err := c.data(ctx, http.MethodGet, c.endpoints.Catalog+"/", nil, &products); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

// GetProduct returns one product.
func (c *Client) GetProduct(ctx context.Context, id int64) (*catalog.Product, error) {
	var p catalog.Product
	if err := c.data(ctx, http.MethodGet, c.endpoints.Catalog+"/"+strconv.FormatInt(id, 10), nil, &p); err != nil {
		return nil, fmt.Errorf("get product %d: %w", id, err)
	}
	return &p, nil
}

// CreateProduct adds a product to the catalog.
func (c *Client) CreateProduct(ctx context.Context, in catalog.ProductInput) (*catalog.Product, error) {
	var p catalog.Product
	if err := c.data(ctx, http.MethodPost, c.endpoints.Catalog+"/", in, &p); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	return &p, nil
}

// ListOrders returns every order with its items.
func (c *Client) ListOrders(ctx context.Context) ([]orders.Order, error) {
	var list []orders.Order
	if err := c.data(ctx, http.MethodGet, c.endpoints.Orders+"/", nil, &list); err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return list, nil
}

// GetOrder returns one order with its items.
func (c *Client) GetOrder(ctx context.Context, id int64) (*orders.Order, error) {
	var o orders.Order
	if err := c.data(ctx, http.MethodGet, c.endpoints.Orders+"/"+strconv.FormatInt(id, 10), nil, &o); err != nil {
		return nil, fmt.Errorf("get order %d: %w", id, err)
	}
	return &o, nil
}

// CreateOrder places an order for the token's user.
func (c *Client) CreateOrder(ctx context.Context, in orders.OrderInput) (*orders.Order, error) {
	var o orders.Order
	if err := c.data(ctx, http.MethodPost, c.endpoints.Orders+"/", in, &o); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	return &o, nil
}

// UpdateOrderStatus overwrites the status of an order.
func (c *Client) UpdateOrderStatus(ctx context.Context, id int64, status string) (*orders.Order, error) {
	var o orders.Order
	body := map[string]string{"status": status}
	if err := c.data(ctx, http.MethodPut, c.endpoints.Orders+"/"+strconv.FormatInt(id, 10)+"/status", body, &o); err != nil {
		return nil, fmt.Errorf("update order %d: %w", id, err)
	}
	return &o, nil
}

// QuoteCost prices a parcel.
func (c *Client) QuoteCost(ctx context.Context, destination string, weightGrams float64, shippingType string) (*shipping.Quote, error) {
	q := url.Values{}
	q.Set("destination", destination)
	q.Set("weight", strconv.FormatFloat(weightGrams, 'f', -1, 64))
	if shippingType != "" {
		q.Set("shippingType", shippingType)
	}

	var quote shipping.Quote
	if err := c.data(ctx, http.MethodGet, c.endpoints.Shipping+"/calculate-cost?"+q.Encode(), nil, &quote); err != nil {
		return nil, fmt.Errorf("quote cost: %w", err)
	}
	return &quote, nil
}

// CreateShipment registers a parcel and returns it with its tracking number.
func (c *Client) CreateShipment(ctx context.Context, in shipping.ShipmentInput) (*shipping.Shipment, error) {
	var s shipping.Shipment
	if err := c.data(ctx, http.MethodPost, c.endpoints.Shipping+"/shipments", in, &s); err != nil {
		return nil, fmt.Errorf("create shipment: %w", err)
	}
	return &s, nil
}

// AdvanceShipment appends a status to the shipment history.
func (c *Client) AdvanceShipment(ctx context.Context, id, status, notes string) (*shipping.Shipment, error) {
	var s shipping.Shipment
	body := map[string]string{"status": status, "notes": notes}
	if err := c.data(ctx, http.MethodPut, c.endpoints.Shipping+"/shipments/"+url.PathEscape(id)+"/status", body, &s); err != nil {
		return nil, fmt.Errorf("advance shipment %s: %w", id, err)
	}
	return &s, nil
}

// Track returns the public view of a shipment. No token is needed.
func (c *Client) Track(ctx context.Context, trackingNumber string) (*shipping.TrackingView, error) {
	var view shipping.TrackingView
	if err := c.data(ctx, http.MethodGet, c.endpoints.Shipping+"/track/"+url.PathEscape(trackingNumber), nil, &view); err != nil {
		return nil, fmt.Errorf("track %s: %w", trackingNumber, err)
	}
	return &view, nil
}
