package adapters

import (
	"context"
	"fmt"

	catalog "microshop/internal/features/catalog/domain"
	"microshop/internal/features/orders/domain"
)

// ProductLookup fetches a product from the catalog service.
// *client.Client satisfies it.
type ProductLookup interface {
	GetProduct(ctx context.Context, id int64) (*catalog.Product, error)
}

// CatalogPrices implements ports.PriceCatalog against the catalog service.
type CatalogPrices struct {
	products ProductLookup
}

// NewCatalogPrices creates a new CatalogPrices.
func NewCatalogPrices(products ProductLookup) *CatalogPrices {
	return &CatalogPrices{products: products}
}

// Lookup returns the current catalog name and price of a product.
func (c *CatalogPrices) Lookup(ctx context.Context, productID int64) (domain.CatalogEntry, error) {
	p, err := c.products.GetProduct(ctx, productID)
	if err != nil {
		return domain.CatalogEntry{}, fmt.Errorf("catalog lookup of product %d: %w", productID, err)
	}
	return domain.CatalogEntry{Name: p.Name, Price: p.Price}, nil
}
