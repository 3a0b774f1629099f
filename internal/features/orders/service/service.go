package service

import (
	"context"
	"errors"
	"fmt"

	"microshop/internal/core/apperr"
	"microshop/internal/core/logger"
	"microshop/internal/features/orders/domain"
	"microshop/internal/features/orders/ports"

	"go.uber.org/zap"
)

// OrderServiceImpl implements ports.OrderService.
type OrderServiceImpl struct {
	repo     ports.OrderRepository
	catalog  ports.PriceCatalog
	notifier ports.Notifier
}

// NewOrderService creates a new OrderServiceImpl. A nil catalog keeps the
// submitted prices; a nil notifier sends nothing.
func NewOrderService(repo ports.OrderRepository, catalog ports.PriceCatalog, notifier ports.Notifier) *OrderServiceImpl {
	return &OrderServiceImpl{
		repo:     repo,
		catalog:  catalog,
		notifier: notifier,
	}
}

// ListOrders returns every order with its items, newest first.
func (s *OrderServiceImpl) ListOrders(ctx context.Context) ([]domain.Order, error) {
	orders, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list orders: %w", err)
	}
	return orders, nil
}

// GetOrder returns an order with its items.
func (s *OrderServiceImpl) GetOrder(ctx context.Context, id int64) (*domain.Order, error) {
	order, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get order %d: %w", id, err)
	}
	return order, nil
}

// CreateOrder validates the input, re-prices the items against the catalog
// when one is configured, stores the order and notifies the customer.
func (s *OrderServiceImpl) CreateOrder(ctx context.Context, userID int64, in domain.OrderInput) (*domain.Order, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	if s.catalog != nil {
		in.Items = append([]domain.ItemInput(nil), in.Items...)
		if err := s.reprice(ctx, in.Items); err != nil {
			return nil, err
		}
	}

	order, err := domain.NewOrder(userID, in)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("service: failed to create order: %w", err)
	}

	if s.notifier != nil {
		if err := s.notifier.OrderPlaced(ctx, order); err != nil {
			logger.Get().Warn("Order confirmation not sent",
				zap.Int64("order_id", order.ID),
				zap.Error(err),
			)
		}
	}

	return order, nil
}

// reprice replaces each item's name and price with the catalog's current
// values. Products unknown to the catalog are reported as validation problems.
func (s *OrderServiceImpl) reprice(ctx context.Context, items []domain.ItemInput) error {
	var problems []string

	for i := range items {
		entry, err := s.catalog.Lookup(ctx, items[i].ProductID)
		if errors.Is(err, apperr.ErrNotFound) {
			problems = append(problems, fmt.Sprintf("Item %d: product %d does not exist", i+1, items[i].ProductID))
			continue
		}
		if err != nil {
			return fmt.Errorf("service: failed to price product %d: %w", items[i].ProductID, err)
		}

		items[i].ProductName = entry.Name
		items[i].Price = entry.Price
	}

	return apperr.NewValidation(problems...)
}

// UpdateStatus overwrites the order status with any legal value.
func (s *OrderServiceImpl) UpdateStatus(ctx context.Context, id int64, status string) (*domain.Order, error) {
	st, err := domain.ParseStatus(status)
	if err != nil {
		return nil, err
	}

	order, err := s.repo.UpdateStatus(ctx, id, st)
	if err != nil {
		return nil, fmt.Errorf("service: failed to update order %d: %w", id, err)
	}
	return order, nil
}

// DeleteOrder removes an order and its items.
func (s *OrderServiceImpl) DeleteOrder(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("service: failed to delete order %d: %w", id, err)
	}
	return nil
}
