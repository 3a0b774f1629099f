package ports

import (
	"context"

	"microshop/internal/features/orders/domain"
)

// OrderService defines the primary port for order operations.
type OrderService interface {
	ListOrders(ctx context.Context) ([]domain.Order, error)
	GetOrder(ctx context.Context, id int64) (*domain.Order, error)
	// CreateOrder places an order on behalf of userID. A bearer token
	// attached to ctx is forwarded to the catalog when prices are checked.
	CreateOrder(ctx context.Context, userID int64, in domain.OrderInput) (*domain.Order, error)
	UpdateStatus(ctx context.Context, id int64, status string) (*domain.Order, error)
	DeleteOrder(ctx context.Context, id int64) error
}

// OrderRepository defines the secondary port for order storage.
// Get, UpdateStatus and Delete return domain.ErrOrderNotFound for unknown ids.
type OrderRepository interface {
	List(ctx context.Context) ([]domain.Order, error)
	Get(ctx context.Context, id int64) (*domain.Order, error)
	// Create stores the order and its items atomically.
	Create(ctx context.Context, order *domain.Order) error
	UpdateStatus(ctx context.Context, id int64, status domain.OrderStatus) (*domain.Order, error)
	Delete(ctx context.Context, id int64) error
}

// PriceCatalog returns the current catalog entry of a product.
// Unknown products yield an error satisfying errors.Is(err, apperr.ErrNotFound).
type PriceCatalog interface {
	Lookup(ctx context.Context, productID int64) (domain.CatalogEntry, error)
}

// Notifier tells the customer about a placed order.
type Notifier interface {
	OrderPlaced(ctx context.Context, order *domain.Order) error
}
