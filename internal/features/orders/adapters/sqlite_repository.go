package adapters

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"microshop/internal/core/database"
	"microshop/internal/features/orders/domain"

	"github.com/shopspring/decimal"
)

//go:embed schema.sql
var schemaSQL string

// SQLiteOrderRepository implements ports.OrderRepository on SQLite.
type SQLiteOrderRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteOrderRepository creates the orders tables if needed and returns the repository.
func NewSQLiteOrderRepository(ctx context.Context, db *sql.DB) (*SQLiteOrderRepository, error) {
	if err := database.ApplySchema(ctx, db, schemaSQL); err != nil {
		return nil, fmt.Errorf("orders: %w", err)
	}
	return &SQLiteOrderRepository{db: db, now: time.Now}, nil
}

const (
	orderColumns = `id, user_id, customer_name, customer_email, customer_phone, total_amount, status, shipping_address, created_at`
	itemColumns  = `id, order_id, product_id, product_name, price, quantity`
)

// List returns every order with its items, newest first.
func (r *SQLiteOrderRepository) List(ctx context.Context) ([]domain.Order, error) {
	orders, err := r.listOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	// Rows of the first query are closed before the second one runs: the pool
	// holds a single connection.
	items, err := r.listItems(ctx, `SELECT `+itemColumns+` FROM order_items ORDER BY order_id, id`)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	byOrder := make(map[int64][]domain.OrderItem, len(orders))
	for _, item := range items {
		byOrder[item.OrderID] = append(byOrder[item.OrderID], item)
	}
	for i := range orders {
		if found, ok := byOrder[orders[i].ID]; ok {
			orders[i].Items = found
		}
	}

	return orders, nil
}

func (r *SQLiteOrderRepository) listOrders(ctx context.Context) ([]domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := []domain.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		o.Items = []domain.OrderItem{}
		orders = append(orders, *o)
	}
	return orders, rows.Err()
}

func (r *SQLiteOrderRepository) listItems(ctx context.Context, query string, args ...any) ([]domain.OrderItem, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []domain.OrderItem{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// Get returns one order with its items.
func (r *SQLiteOrderRepository) Get(ctx context.Context, id int64) (*domain.Order, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = ?`, id)

	order, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get order %d: %w", id, err)
	}

	order.Items, err = r.listItems(ctx, `SELECT `+itemColumns+` FROM order_items WHERE order_id = ? ORDER BY id`, id)
	if err != nil {
		return nil, fmt.Errorf("get order %d items: %w", id, err)
	}

	return order, nil
}

// Create inserts the order row and its item rows in one transaction. On
// success the ids and creation time are filled in.
func (r *SQLiteOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	createdAt := r.now().UTC()
	if !order.CreatedAt.IsZero() {
		createdAt = order.CreatedAt.UTC()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("create order: begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO orders (user_id, customer_name, customer_email, customer_phone, total_amount, status, shipping_address, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, order.UserID, order.CustomerName, order.CustomerEmail, order.CustomerPhone,
		order.TotalAmount.String(), string(order.Status), order.ShippingAddress, createdAt)
	if err != nil {
		return fmt.Errorf("create order: %w", err)
	}

	orderID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("create order: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO order_items (order_id, product_id, product_name, price, quantity)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("create order items: %w", err)
	}
	defer stmt.Close()

	itemIDs := make([]int64, len(order.Items))
	for i, item := range order.Items {
		res, err := stmt.ExecContext(ctx, orderID, item.ProductID, item.ProductName, item.Price.String(), item.Quantity)
		if err != nil {
			return fmt.Errorf("create order item %d: %w", i+1, err)
		}
		if itemIDs[i], err = res.LastInsertId(); err != nil {
			return fmt.Errorf("create order item %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("create order: commit: %w", err)
	}

	order.ID = orderID
	order.CreatedAt = createdAt
	for i := range order.Items {
		order.Items[i].ID = itemIDs[i]
		order.Items[i].OrderID = orderID
	}
	return nil
}

// UpdateStatus overwrites the status and returns the stored order.
func (r *SQLiteOrderRepository) UpdateStatus(ctx context.Context, id int64, status domain.OrderStatus) (*domain.Order, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE orders SET status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return nil, fmt.Errorf("update order %d status: %w", id, err)
	}

	if err := requireAffected(res); err != nil {
		return nil, err
	}

	return r.Get(ctx, id)
}

// Delete removes the order. Its items go with it.
func (r *SQLiteOrderRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM orders WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete order %d: %w", id, err)
	}
	return requireAffected(res)
}

// Seed inserts the demo orders when the table is empty.
func (r *SQLiteOrderRepository) Seed(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders`).Scan(&count); err != nil {
		return 0, fmt.Errorf("seed orders: %w", err)
	}
	if count > 0 {
		return 0, nil
	}

	orders := sampleOrders()
	for i := range orders {
		if err := r.Create(ctx, &orders[i]); err != nil {
			return i, fmt.Errorf("seed orders: %w", err)
		}
	}
	return len(orders), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var (
		o      domain.Order
		total  string
		status string
	)

	if err := row.Scan(&o.ID, &o.UserID, &o.CustomerName, &o.CustomerEmail, &o.CustomerPhone,
		&total, &status, &o.ShippingAddress, &o.CreatedAt); err != nil {
		return nil, err
	}

	parsed, err := decimal.NewFromString(total)
	if err != nil {
		return nil, fmt.Errorf("order %d has malformed total %q: %w", o.ID, total, err)
	}
	o.TotalAmount = parsed
	o.Status = domain.OrderStatus(status)

	return &o, nil
}

func scanItem(row rowScanner) (*domain.OrderItem, error) {
	var (
		item  domain.OrderItem
		price string
	)

	if err := row.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.ProductName, &price, &item.Quantity); err != nil {
		return nil, err
	}

	parsed, err := decimal.NewFromString(price)
	if err != nil {
		return nil, fmt.Errorf("order item %d has malformed price %q: %w", item.ID, price, err)
	}
	item.Price = parsed

	return &item, nil
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

func sampleOrders() []domain.Order {
	laptop := domain.OrderItem{ProductID: 1, ProductName: "Laptop Gaming", Price: decimal.NewFromInt(15000000), Quantity: 1}
	phone := domain.OrderItem{ProductID: 2, ProductName: "Smartphone", Price: decimal.NewFromInt(8000000), Quantity: 1}
	headphone := domain.OrderItem{ProductID: 3, ProductName: "Headphone Wireless", Price: decimal.NewFromInt(2500000), Quantity: 1}

	build := func(userID int64, name, email, phoneNo, address string, status domain.OrderStatus, items ...domain.OrderItem) domain.Order {
		return domain.Order{
			UserID:          userID,
			CustomerName:    name,
			CustomerEmail:   email,
			CustomerPhone:   phoneNo,
			ShippingAddress: address,
			Status:          status,
			TotalAmount:     domain.Total(items),
			Items:           items,
		}
	}

	return []domain.Order{
		build(1, "John Doe", "john@example.com", "08123456789", "Jl. Sudirman No. 123, Jakarta", domain.OrderStatusConfirmed, laptop, headphone),
		build(2, "Jane Smith", "jane@example.com", "08987654321", "Jl. Thamrin No. 456, Jakarta", domain.OrderStatusShipped, phone),
		build(1, "John Doe", "john@example.com", "08123456789", "Jl. Sudirman No. 123, Jakarta", domain.OrderStatusDelivered, headphone),
	}
}
