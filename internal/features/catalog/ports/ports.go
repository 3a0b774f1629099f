package ports

import (
	"context"

	"microshop/internal/features/catalog/domain"
)

// ProductService defines the primary port for catalog operations.
type ProductService interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	CreateProduct(ctx context.Context, in domain.ProductInput) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id int64, in domain.ProductInput) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
}

// ProductRepository defines the secondary port for product storage.
// Get, Update and Delete return domain.ErrProductNotFound for unknown ids.
type ProductRepository interface {
	List(ctx context.Context) ([]domain.Product, error)
	Get(ctx context.Context, id int64) (*domain.Product, error)
	Create(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, id int64, product *domain.Product) (*domain.Product, error)
	Delete(ctx context.Context, id int64) error
}
