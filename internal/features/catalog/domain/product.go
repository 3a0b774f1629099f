package domain

import (
	"fmt"
	"strings"
	"time"

	"microshop/internal/core/apperr"

	"github.com/shopspring/decimal"
)

// DefaultImageURL is used when a product is created without an image.
const DefaultImageURL = "https://via.placeholder.com/300x200?text=Product"

// ErrProductNotFound is returned when no product has the requested id.
var ErrProductNotFound = fmt.Errorf("product %w", apperr.ErrNotFound)

// Product is a catalog entry. It has no lifecycle beyond CRUD.
type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Category    string          `json:"category"`
	ImageURL    string          `json:"image_url"`
	CreatedAt   time.Time       `json:"created_at"`
}

// ProductInput is the writable part of a product, used by create and update.
type ProductInput struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Category    string          `json:"category"`
	ImageURL    string          `json:"image_url"`
}

// Validate reports every rule the input breaks.
func (in ProductInput) Validate() error {
	var problems []string

	if len(strings.TrimSpace(in.Name)) < 3 {
		problems = append(problems, "Product name must be at least 3 characters")
	}
	if !in.Price.IsPositive() {
		problems = append(problems, "Product price must be greater than 0")
	}
	if in.Stock < 0 {
		problems = append(problems, "Product stock cannot be negative")
	}

	return apperr.NewValidation(problems...)
}

// NewProduct validates the input and builds a product ready to be stored.
func NewProduct(in ProductInput) (*Product, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	image := strings.TrimSpace(in.ImageURL)
	if image == "" {
		image = DefaultImageURL
	}

	return &Product{
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Price:       in.Price,
		Stock:       in.Stock,
		Category:    in.Category,
		ImageURL:    image,
	}, nil
}
