package adapters

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"microshop/internal/core/database"
	"microshop/internal/features/catalog/domain"

	"github.com/shopspring/decimal"
)

//go:embed schema.sql
var schemaSQL string

// SQLiteProductRepository implements ports.ProductRepository on SQLite.
type SQLiteProductRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteProductRepository creates the products table if needed and returns the repository.
func NewSQLiteProductRepository(ctx context.Context, db *sql.DB) (*SQLiteProductRepository, error) {
	if err := database.ApplySchema(ctx, db, schemaSQL); err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	return &SQLiteProductRepository{db: db, now: time.Now}, nil
}

const productColumns = `id, name, description, price, stock, category, image_url, created_at`

// List returns every product, newest first.
func (r *SQLiteProductRepository) List(ctx context.Context) ([]domain.Product, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+productColumns+` FROM products ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	products := []domain.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("list products: %w", err)
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	return products, nil
}

// Get returns one product.
func (r *SQLiteProductRepository) Get(ctx context.Context, id int64) (*domain.Product, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id = ?`, id)

	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get product %d: %w", id, err)
	}
	return p, nil
}

// Create inserts the product and fills in its id and creation time.
func (r *SQLiteProductRepository) Create(ctx context.Context, p *domain.Product) error {
	createdAt := r.now().UTC()

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO products (name, description, price, stock, category, image_url, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, p.Name, p.Description, p.Price.String(), p.Stock, p.Category, p.ImageURL, createdAt)
	if err != nil {
		return fmt.Errorf("create product: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("create product: %w", err)
	}

	p.ID = id
	p.CreatedAt = createdAt
	return nil
}

// Update replaces every writable field of the product and returns the stored row.
func (r *SQLiteProductRepository) Update(ctx context.Context, id int64, p *domain.Product) (*domain.Product, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE products
		SET name = ?, description = ?, price = ?, stock = ?, category = ?, image_url = ?
		WHERE id = ?
	`, p.Name, p.Description, p.Price.String(), p.Stock, p.Category, p.ImageURL, id)
	if err != nil {
		return nil, fmt.Errorf("update product %d: %w", id, err)
	}

	if err := requireAffected(res); err != nil {
		return nil, err
	}

	return r.Get(ctx, id)
}

// Delete removes the product.
func (r *SQLiteProductRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete product %d: %w", id, err)
	}
	return requireAffected(res)
}

// Seed inserts the demo catalog when the table is empty.
func (r *SQLiteProductRepository) Seed(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&count); err != nil {
		return 0, fmt.Errorf("seed products: %w", err)
	}
	if count > 0 {
		return 0, nil
	}

	for i := range sampleProducts {
		p := sampleProducts[i]
		if err := r.Create(ctx, &p); err != nil {
			return i, fmt.Errorf("seed products: %w", err)
		}
	}
	return len(sampleProducts), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*domain.Product, error) {
	var (
		p     domain.Product
		price string
	)

	if err := row.Scan(&p.ID, &p.Name, &p.Description, &price, &p.Stock, &p.Category, &p.ImageURL, &p.CreatedAt); err != nil {
		return nil, err
	}

	parsed, err := decimal.NewFromString(price)
	if err != nil {
		return nil, fmt.Errorf("product %d has malformed price %q: %w", p.ID, price, err)
	}
	p.Price = parsed

	return &p, nil
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

var sampleProducts = []domain.Product{
	{Name: "Laptop Gaming", Description: "High performance gaming laptop", Price: decimal.NewFromInt(15000000), Stock: 10, Category: "Electronics", ImageURL: "https://via.placeholder.com/300x200?text=Laptop+Gaming"},
	{Name: "Smartphone", Description: "Latest smartphone with an advanced camera", Price: decimal.NewFromInt(8000000), Stock: 25, Category: "Electronics", ImageURL: "https://via.placeholder.com/300x200?text=Smartphone"},
	{Name: "Headphone Wireless", Description: "Wireless headphones with noise cancellation", Price: decimal.NewFromInt(2500000), Stock: 15, Category: "Electronics", ImageURL: "https://via.placeholder.com/300x200?text=Headphone"},
	{Name: "Smart Watch", Description: "Smart watch with health tracking", Price: decimal.NewFromInt(3000000), Stock: 20, Category: "Electronics", ImageURL: "https://via.placeholder.com/300x200?text=Smart+Watch"},
	{Name: "Tablet", Description: "Tablet for work and entertainment", Price: decimal.NewFromInt(6000000), Stock: 12, Category: "Electronics", ImageURL: "https://via.placeholder.com/300x200?text=Tablet"},
}
