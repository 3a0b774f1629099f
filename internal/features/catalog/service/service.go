package service

import (
	"context"
	"fmt"

	"microshop/internal/features/catalog/domain"
	"microshop/internal/features/catalog/ports"
)

// CatalogService implements ports.ProductService.
type CatalogService struct {
	repo ports.ProductRepository
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(repo ports.ProductRepository) *CatalogService {
	return &CatalogService{
		repo: repo,
	}
}

// ListProducts returns every product, newest first.
func (s *CatalogService) ListProducts(ctx context.Context) ([]domain.Product, error) {
	products, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list products: %w", err)
	}

	return products, nil
}

// GetProduct returns a single product.
func (s *CatalogService) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	product, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get product %d: %w", id, err)
	}

	return product, nil
}

// CreateProduct validates and stores a new product.
func (s *CatalogService) CreateProduct(ctx context.Context, in domain.ProductInput) (*domain.Product, error) {
	product, err := domain.NewProduct(in)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("service: failed to create product: %w", err)
	}

	return product, nil
}

// UpdateProduct replaces every writable field of an existing product.
func (s *CatalogService) UpdateProduct(ctx context.Context, id int64, in domain.ProductInput) (*domain.Product, error) {
	product, err := domain.NewProduct(in)
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.Update(ctx, id, product)
	if err != nil {
		return nil, fmt.Errorf("service: failed to update product %d: %w", id, err)
	}

	return updated, nil
}

// DeleteProduct removes a product.
func (s *CatalogService) DeleteProduct(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("service: failed to delete product %d: %w", id, err)
	}

	return nil
}
